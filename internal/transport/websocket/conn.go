package websocket

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn presents a WebSocket connection as a byte stream.
//
// Every message received, text or binary, is a chunk of the stream; message
// boundaries are not preserved. Every Write is sent as one binary message.
type Conn struct {
	ws           *websocket.Conn
	pongWait     time.Duration
	writeTimeout time.Duration

	// reader state, owned by the single reading goroutine
	r      io.Reader
	failed bool

	wmu       sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn wraps ws. When cfg enables keepalive, a goroutine pings the peer
// every PingPeriod until the connection is closed. cfg may be nil.
func NewConn(ws *websocket.Conn, cfg *Config) *Conn {
	cfg = cfg.withDefaults()
	c := &Conn{
		ws:           ws,
		pongWait:     cfg.PongWait,
		writeTimeout: cfg.WriteTimeout,
		done:         make(chan struct{}),
	}

	if c.pongWait > 0 {
		ws.SetReadDeadline(time.Now().Add(c.pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(c.pongWait))
		})
	}
	if cfg.PingPeriod > 0 {
		go c.keepAlive(cfg.PingPeriod)
	}
	return c
}

// Read reads the next bytes of the stream.
//
// A close frame from the peer, or an abrupt disconnect, ends the stream with
// io.EOF. Any other failure is returned once; the underlying connection cannot
// be read again after it, so later calls return io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	if c.failed {
		return 0, io.EOF
	}

	for {
		if c.r == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				return 0, c.fail(err)
			}
			c.r = r
		}

		n, err := c.r.Read(p)
		if errors.Is(err, io.EOF) {
			c.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			return n, c.fail(err)
		}
		if c.pongWait > 0 {
			c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
		}
		return n, nil
	}
}

func (c *Conn) fail(err error) error {
	c.failed = true
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return io.EOF
	}
	return err
}

// Write sends p as a single binary message.
func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.writeTimeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadDeadline sets the deadline for the next reads. A zero value restores
// the keepalive deadline instead of removing it.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if t.IsZero() && c.pongWait > 0 {
		t = time.Now().Add(c.pongWait)
	}
	return c.ws.SetReadDeadline(t)
}

// Close sends a normal close frame and closes the connection.
func (c *Conn) Close() error {
	err := net.ErrClosed
	c.closeOnce.Do(func() {
		close(c.done)
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.ws.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

// RemoteAddr returns the peer's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

// keepAlive pings the peer so that a dead connection trips the read deadline.
func (c *Conn) keepAlive(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
