package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/server"
	"github.com/luciancaetano/lobby/internal/transport/websocket"
)

type ServerConfig = server.Config
type TransportConfig = websocket.Config
type CheckOriginFn = websocket.CheckOriginFn
type Conn = websocket.Conn

// Config combines the lobby settings with the WebSocket transport settings.
type Config struct {
	Server    *ServerConfig
	Transport *TransportConfig
}

// New binds addr and starts accepting WebSocket clients in the background.
//
// Parameters:
//   - addr: The server address (e.g., ":8080" or "localhost:8080")
//   - cfg: Server and transport configuration. Either part, or cfg itself, may be nil
//
// Clients connect to ws://addr/ws (see TransportConfig.Path) and speak the same
// protocol as TCP clients: the first bytes they send are the NUL-terminated
// name, and every message afterwards is delivered as Data.
//
// Example:
//
//	server, err := ws.New(":8080", &ws.Config{
//	    Transport: &ws.TransportConfig{CheckOrigin: ws.AllOrigins()},
//	})
func New(addr string, cfg *Config) (lobby.Lobby, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	ln, err := websocket.Listen(addr, cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", lobby.ErrBind, addr, err)
	}
	return server.New(ln, cfg.Server), nil
}

// Dial connects to the lobby served at url and sends the handshake for name.
func Dial(ctx context.Context, url, name string) (*Conn, error) {
	return websocket.Dial(ctx, url, name, nil)
}

// URL returns the URL clients should dial for a lobby created by New with the given transport config.
func URL(l lobby.Lobby, cfg *TransportConfig) string {
	path := websocket.DefaultConfig().Path
	if cfg != nil && cfg.Path != "" {
		path = cfg.Path
	}
	return "ws://" + l.Addr().String() + path
}

// AllOrigins returns the default checkOrigin function that allows all origins
func AllOrigins() CheckOriginFn {
	return func(r *http.Request) bool {
		return true
	}
}

// DefaultTransportConfig returns the default WebSocket transport configuration
func DefaultTransportConfig() *TransportConfig {
	return websocket.DefaultConfig()
}
