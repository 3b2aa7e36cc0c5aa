package server

import (
	"log/slog"

	"github.com/luciancaetano/lobby"
)

// Message writes data to every registered connection selected by pred.
// pred is evaluated without any lock held.
func (s *Server) Message(pred lobby.Predicate, data []byte) lobby.Failures {
	var failed lobby.Failures
	for _, e := range s.conns.Snapshot() {
		if !pred(e.ID) {
			continue
		}
		if err := e.Value.write(data); err != nil {
			s.log.Debug("write failed",
				slog.Uint64("client_id", uint64(e.ID)),
				slog.String("session", e.Value.session),
				slog.Any("error", err),
			)
			failed = append(failed, lobby.Failure{ID: e.ID, Err: err})
		}
	}
	return failed
}

// MessageAll writes data to every registered connection.
func (s *Server) MessageAll(data []byte) lobby.Failures {
	return s.Message(func(lobby.ClientID) bool { return true }, data)
}

// MessageOne writes data to the connection registered under client.
func (s *Server) MessageOne(client lobby.ClientID, data []byte) lobby.Failures {
	return s.Message(func(id lobby.ClientID) bool { return id == client }, data)
}

// MessageRest writes data to every registered connection except client.
func (s *Server) MessageRest(client lobby.ClientID, data []byte) lobby.Failures {
	return s.Message(func(id lobby.ClientID) bool { return id != client }, data)
}

var _ lobby.Lobby = (*Server)(nil)
