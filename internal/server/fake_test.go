package server

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/luciancaetano/lobby"
)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "fake" }
func (fakeAddr) String() string  { return "fake" }

// fakeListener hands out connections pushed by the test.
type fakeListener struct {
	conns chan lobby.Conn
	errs  chan error
	done  chan struct{}
	once  sync.Once
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		conns: make(chan lobby.Conn),
		errs:  make(chan error, 8),
		done:  make(chan struct{}),
	}
}

func (l *fakeListener) Accept() (lobby.Conn, error) {
	select {
	case err := <-l.errs:
		return nil, err
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *fakeListener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *fakeListener) Addr() net.Addr { return fakeAddr{} }

// pipe connects a new in-memory client and returns its end.
func (l *fakeListener) pipe(t *testing.T) net.Conn {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	select {
	case l.conns <- server:
	case <-time.After(2 * time.Second):
		t.Fatal("accept loop did not take the connection")
	}
	return client
}

// push hands c to the accept loop.
func (l *fakeListener) push(t *testing.T, c lobby.Conn) {
	t.Helper()
	select {
	case l.conns <- c:
	case <-time.After(2 * time.Second):
		t.Fatal("accept loop did not take the connection")
	}
}

// join connects a client and completes its handshake.
func (l *fakeListener) join(t *testing.T, name string) net.Conn {
	t.Helper()
	c := l.pipe(t)
	if _, err := c.Write(append([]byte(name), 0)); err != nil {
		t.Fatalf("handshake write: %v", err)
	}
	return c
}

type step struct {
	data string
	err  error
}

// scriptedConn replays a fixed sequence of reads, then either fails every
// read with repeat or blocks until closed.
type scriptedConn struct {
	mu       sync.Mutex
	steps    []step
	repeat   error
	reads    int
	writeErr error
	written  bytes.Buffer

	closed    chan struct{}
	closeOnce sync.Once
}

func newScriptedConn(steps ...step) *scriptedConn {
	return &scriptedConn{steps: steps, closed: make(chan struct{})}
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, io.EOF
	default:
	}

	c.mu.Lock()
	c.reads++
	if len(c.steps) > 0 {
		s := c.steps[0]
		c.steps = c.steps[1:]
		c.mu.Unlock()
		return copy(p, s.data), s.err
	}
	repeat := c.repeat
	c.mu.Unlock()

	if repeat != nil {
		return 0, repeat
	}
	<-c.closed
	return 0, io.EOF
}

func (c *scriptedConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.written.Write(p)
}

func (c *scriptedConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *scriptedConn) RemoteAddr() net.Addr { return fakeAddr{} }

func (c *scriptedConn) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *scriptedConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

var errFlaky = errors.New("flaky read")

// newTestServer starts a server on a fake listener and closes it at cleanup.
func newTestServer(t *testing.T, cfg *Config) (*Server, *fakeListener) {
	t.Helper()
	ln := newFakeListener()
	s := New(ln, cfg)
	t.Cleanup(func() { s.Close() })
	return s, ln
}
