// Package tcp serves a lobby over plain TCP sockets.
package tcp

import (
	"context"
	"fmt"
	"net"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/server"
	transport "github.com/luciancaetano/lobby/internal/transport/tcp"
)

type Config = server.Config
type ReadErrorPolicy = server.ReadErrorPolicy
type ReadRetryConfig = server.ReadRetryConfig

const (
	RetryReads        = server.RetryReads
	DisconnectOnError = server.DisconnectOnError
)

// New binds addr and starts accepting clients in the background.
//
// Parameters:
//   - addr: The address to listen on (e.g., ":8080" or "127.0.0.1:0")
//   - cfg: Server configuration. Use DefaultConfig() or nil for defaults
//
// A bind failure is returned as an error wrapping lobby.ErrBind.
//
// Example:
//
//	server, err := tcp.New("127.0.0.1:8080", tcp.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(addr string, cfg *Config) (lobby.Lobby, error) {
	ln, err := transport.Listen(addr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", lobby.ErrBind, addr, err)
	}
	return server.New(ln, cfg), nil
}

// Serve runs a lobby on an existing listener.
func Serve(ln net.Listener, cfg *Config) lobby.Lobby {
	return server.New(transport.Wrap(ln), cfg)
}

// Dial connects to the lobby at addr and sends the handshake for name.
// Everything written to the returned connection afterwards reaches the
// server as Data.
func Dial(ctx context.Context, addr, name string) (net.Conn, error) {
	return transport.Dial(ctx, addr, name)
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return server.DefaultConfig()
}

// DefaultReadRetryConfig returns the default read retry throttle
func DefaultReadRetryConfig() *ReadRetryConfig {
	return server.DefaultReadRetryConfig()
}

// NoReadRetryLimit returns a configuration with read retry throttling disabled
func NoReadRetryLimit() *ReadRetryConfig {
	return server.NoReadRetryLimit()
}
