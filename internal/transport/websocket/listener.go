// Package websocket serves lobby connections over WebSocket using the
// Gorilla WebSocket library.
package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/handshake"
)

// CheckOriginFn is a function that validates the origin of a WebSocket connection request.
// It receives the HTTP request and returns true if the origin is allowed, false otherwise.
// Use this to implement CORS policies for your lobby.
type CheckOriginFn = func(r *http.Request) bool

// Config holds the WebSocket transport settings
type Config struct {
	// Path is the HTTP path upgraded to WebSocket. Defaults to "/ws".
	Path string
	// CheckOrigin validates the Origin header. If nil, Gorilla's same-origin check applies.
	CheckOrigin CheckOriginFn
	// ReadBufferSize and WriteBufferSize size the upgrader's I/O buffers. Default 1024.
	ReadBufferSize  int
	WriteBufferSize int
	// PingPeriod is the interval between keepalive pings. Zero disables pings.
	PingPeriod time.Duration
	// PongWait is how long a connection may stay silent before reads fail.
	// Zero disables the read deadline.
	PongWait time.Duration
	// WriteTimeout bounds each write. Zero means no deadline.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default transport configuration.
// Pings every 54 seconds, expects traffic within 60 seconds and allows 10 seconds per write
func DefaultConfig() *Config {
	return &Config{
		Path:            "/ws",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      54 * time.Second,
		PongWait:        60 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}

	cp := *c
	if cp.Path == "" {
		cp.Path = out.Path
	}
	if cp.ReadBufferSize <= 0 {
		cp.ReadBufferSize = out.ReadBufferSize
	}
	if cp.WriteBufferSize <= 0 {
		cp.WriteBufferSize = out.WriteBufferSize
	}
	return &cp
}

// Listener accepts WebSocket connections on an HTTP server it owns.
type Listener struct {
	cfg      *Config
	ln       net.Listener
	server   *http.Server
	upgrader websocket.Upgrader

	conns     chan *Conn
	done      chan struct{}
	closeOnce sync.Once
}

// Listen binds addr and starts serving WebSocket upgrades on cfg.Path.
// cfg may be nil.
func Listen(addr string, cfg *Config) (*Listener, error) {
	cfg = cfg.withDefaults()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		cfg: cfg,
		ln:  ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		conns: make(chan *Conn),
		done:  make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, l.handleUpgrade)
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("websocket listener stopped", slog.String("addr", ln.Addr().String()), slog.Any("error", err))
		}
	}()
	return l, nil
}

// handleUpgrade upgrades the request and hands the connection to Accept.
func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		return
	}

	c := NewConn(ws, l.cfg)
	select {
	case l.conns <- c:
	case <-l.done:
		c.Close()
	}
}

// Accept waits for the next upgraded connection.
func (l *Listener) Accept() (lobby.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

// Close stops the HTTP server. Connections already accepted stay open.
func (l *Listener) Close() error {
	err := net.ErrClosed
	l.closeOnce.Do(func() {
		close(l.done)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = l.server.Shutdown(ctx)
	})
	return err
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// URL returns the ws:// URL clients should dial.
func (l *Listener) URL() string {
	return "ws://" + l.ln.Addr().String() + l.cfg.Path
}

// Dial connects to a lobby served at url and sends the handshake for name.
// cfg configures keepalive for the client side and may be nil.
func Dial(ctx context.Context, url, name string, cfg *Config) (*Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := NewConn(ws, cfg)
	if err := handshake.WriteName(c, name); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
