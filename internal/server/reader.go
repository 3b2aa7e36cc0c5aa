package server

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/luciancaetano/lobby/internal/handshake"
)

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// read runs for the lifetime of one connection: it reads the handshake name
// and then forwards everything the client sends to the connection's queue.
func (s *Server) read(c *conn) {
	log := s.log.With(
		slog.Uint64("client_id", uint64(c.id)),
		slog.String("session", c.session),
	)
	br := bufio.NewReaderSize(c.rw, s.cfg.ReadBufferSize)

	if !s.handshake(c, br, log) {
		// The registry entry stays until Scan finds the queue closed.
		s.ids.Release(c.id)
		c.events.Close()
		c.rw.Close()
		return
	}

	limiter := s.cfg.ReadRetry.limiter()
	buf := make([]byte, s.cfg.ReadBufferSize)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			c.events.Send(inbound{data: bytes.Clone(buf[:n])})
		}
		if err == nil {
			continue
		}
		if isStreamEnd(err) {
			log.Debug("client stream ended")
			break
		}

		c.events.Send(inbound{err: err})
		if s.cfg.ReadErrorPolicy == DisconnectOnError {
			log.Debug("read failed, disconnecting", slog.Any("error", err))
			break
		}
		log.Debug("read failed, retrying", slog.Any("error", err))
		if limiter != nil {
			// Wait only fails once the server is closing; the next read then ends the stream.
			_ = limiter.Wait(s.ctx)
		}
	}

	s.ids.Release(c.id)
	c.events.Close()
}

// handshake reads the client's name and announces the connection.
// It reports false if the connection must be dropped.
func (s *Server) handshake(c *conn, br *bufio.Reader, log *slog.Logger) bool {
	dl, canDeadline := c.rw.(readDeadliner)
	if d := s.cfg.HandshakeTimeout; d > 0 && canDeadline {
		dl.SetReadDeadline(time.Now().Add(d))
		defer dl.SetReadDeadline(time.Time{})
	}

	name, err := handshake.ReadName(br, s.cfg.MaxNameLength)
	if err != nil {
		log.Debug("handshake failed", slog.Any("error", err))
		return false
	}

	s.names.Set(c.id, name)
	c.handshaken.Store(true)
	if !s.established.Send(c) {
		// The lobby is closing and will never announce this client.
		c.handshaken.Store(false)
		return false
	}

	log.Info("client connected", slog.String("name", name), slog.String("remote_addr", c.remoteAddr))
	return true
}

// isStreamEnd reports whether err means no more bytes will ever be read.
func isStreamEnd(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
