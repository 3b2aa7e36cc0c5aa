package server

import (
	"log/slog"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/mailbox"
)

type scanned struct {
	c      *conn
	result lobby.ScanResult
}

// Scan reports pending activity to fn without blocking.
//
// Connections announced in the first phase are the only ones whose queues are
// read in the second, so Connected always precedes any other result for the
// same connection.
func (s *Server) Scan(fn lobby.ScanFunc) {
	s.drainEstablished(fn)

	entries := s.conns.Snapshot()
	results := make([]scanned, 0, len(entries))
	for _, e := range entries {
		if r, ok := s.poll(e.Value); ok {
			results = append(results, scanned{c: e.Value, result: r})
		}
	}

	for _, r := range results {
		fn(r.c.id, r.result)
		if r.result.Kind == lobby.Disconnected {
			s.remove(r.c)
		}
	}
}

func (s *Server) drainEstablished(fn lobby.ScanFunc) {
	for {
		c, st := s.established.TryRecv()
		switch st {
		case mailbox.Empty:
			return
		case mailbox.Closed:
			if !s.isClosed() {
				panic(lobby.ErrMsgEstablishedClosed)
			}
			return
		}

		c.announced.Store(true)
		fn(c.id, lobby.ScanResult{Kind: lobby.Connected})
	}
}

// poll takes at most one result from c's queue.
func (s *Server) poll(c *conn) (lobby.ScanResult, bool) {
	if !c.announced.Load() {
		// Only a connection whose handshake never succeeded can be reported
		// before it is announced, and only as Disconnected. Drained is checked
		// first: a successful reader marks itself handshaken before closing.
		if c.events.Drained() && !c.handshaken.Load() {
			return lobby.ScanResult{Kind: lobby.Disconnected}, true
		}
		return lobby.ScanResult{}, false
	}

	ev, st := c.events.TryRecv()
	switch st {
	case mailbox.Received:
		if ev.err != nil {
			return lobby.ScanResult{Kind: lobby.IoError, Err: ev.err}, true
		}
		return lobby.ScanResult{Kind: lobby.Data, Data: ev.data}, true
	case mailbox.Closed:
		return lobby.ScanResult{Kind: lobby.Disconnected}, true
	default:
		return lobby.ScanResult{}, false
	}
}

// remove forgets a disconnected connection. The name is cleared before the
// registry entry so that a reused id never sees a stale name.
func (s *Server) remove(c *conn) {
	s.names.Delete(c.id)
	s.conns.Remove(c.id)
	c.rw.Close()

	s.log.Info("client disconnected",
		slog.Uint64("client_id", uint64(c.id)),
		slog.String("session", c.session),
	)
}
