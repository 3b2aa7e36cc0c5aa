package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/mailbox"
	"github.com/luciancaetano/lobby/internal/registry"
)

// inbound is an event produced by a reader for its own connection.
type inbound struct {
	data []byte
	err  error
}

// conn is one registered connection.
type conn struct {
	id         lobby.ClientID
	session    string
	rw         lobby.Conn
	remoteAddr string
	acceptedAt time.Time
	events     *mailbox.Queue[inbound]

	// handshaken is set by the reader before it queues the Connected event.
	handshaken atomic.Bool
	// announced is set by Scan once Connected has been delivered.
	announced atomic.Bool

	wmu sync.Mutex
}

func (c *conn) write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.rw.Write(data)
	return err
}

func (c *conn) info() lobby.ClientInfo {
	return lobby.ClientInfo{
		ID:         c.id,
		Session:    c.session,
		RemoteAddr: c.remoteAddr,
		AcceptedAt: c.acceptedAt,
	}
}

// Server implements lobby.Lobby on top of a lobby.Listener.
type Server struct {
	cfg *Config
	log *slog.Logger
	ln  lobby.Listener

	ids   *registry.Allocator
	conns *registry.Table[*conn]
	names *registry.Names

	// established carries connections whose handshake succeeded, in order.
	established *mailbox.Queue[*conn]

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// New creates a server that accepts connections from ln until Close is called.
// The accept loop starts immediately. cfg may be nil.
func New(ln lobby.Listener, cfg *Config) *Server {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:         cfg,
		log:         cfg.Logger.With(slog.String("addr", ln.Addr().String())),
		ln:          ln,
		ids:         registry.NewAllocator(),
		conns:       registry.NewTable[*conn](),
		names:       registry.NewNames(),
		established: mailbox.New[*conn](),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	go s.acceptLoop()
	return s
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Close stops the accept loop and closes every registered connection.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	err := s.ln.Close()
	<-s.done
	s.established.Close()

	for _, e := range s.conns.Snapshot() {
		e.Value.rw.Close()
	}

	s.log.Info("lobby closed")
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// acceptLoop registers every accepted connection and starts its reader.
func (s *Server) acceptLoop() {
	defer close(s.done)

	var delay time.Duration
	for {
		rw, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				if !s.isClosed() {
					// Nothing will ever be accepted again; Scan treats this as fatal.
					s.log.Error("listener closed unexpectedly", slog.Any("error", err))
					s.established.Close()
				}
				return
			}

			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, time.Second)
			}
			s.log.Debug("accept failed", slog.Any("error", err), slog.Duration("retry_in", delay))

			select {
			case <-time.After(delay):
			case <-s.ctx.Done():
			}
			continue
		}
		delay = 0

		c := s.register(rw)
		go s.read(c)
	}
}

// register allocates an id for rw and inserts it into the connection table
// before its handshake has been read.
func (s *Server) register(rw lobby.Conn) *conn {
	id := s.ids.Allocate(s.conns.Has)

	c := &conn{
		id:         id,
		session:    uuid.New().String(),
		rw:         rw,
		acceptedAt: time.Now(),
		events:     mailbox.New[inbound](),
	}
	if addr := rw.RemoteAddr(); addr != nil {
		c.remoteAddr = addr.String()
	}

	s.conns.Insert(id, c)
	s.log.Debug("client accepted",
		slog.Uint64("client_id", uint64(id)),
		slog.String("session", c.session),
		slog.String("remote_addr", c.remoteAddr),
	)
	return c
}

// Name returns the handshake name of id.
func (s *Server) Name(id lobby.ClientID) (string, bool) {
	return s.names.Get(id)
}

// Info returns details about the connection registered under id.
func (s *Server) Info(id lobby.ClientID) (lobby.ClientInfo, bool) {
	c, ok := s.conns.Get(id)
	if !ok {
		return lobby.ClientInfo{}, false
	}
	return c.info(), true
}

// Clients lists the registered connections ordered by id.
func (s *Server) Clients() []lobby.ClientInfo {
	entries := s.conns.Snapshot()
	out := make([]lobby.ClientInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value.info())
	}
	return out
}
