// Package tcp adapts net.Listener to lobby.Listener.
package tcp

import (
	"context"
	"net"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/handshake"
)

// Listener accepts TCP connections.
type Listener struct {
	ln net.Listener
}

// Listen binds addr.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return Wrap(ln), nil
}

// Wrap adapts an existing net.Listener.
func Wrap(ln net.Listener) *Listener {
	return &Listener{ln: ln}
}

// Accept waits for the next connection.
func (l *Listener) Accept() (lobby.Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close stops accepting connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Dial connects to a lobby at addr and sends the handshake for name.
func Dial(ctx context.Context, addr, name string) (net.Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if err := handshake.WriteName(c, name); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
