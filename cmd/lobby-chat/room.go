package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/luciancaetano/lobby"
)

// room relays what each client says to every other client.
type room struct {
	lobby lobby.Lobby
	log   *slog.Logger
}

// handle is the Scan callback of the room.
func (r *room) handle(id lobby.ClientID, result lobby.ScanResult) {
	name, named := r.lobby.Name(id)
	log := r.log.With(slog.Uint64("client_id", uint64(id)), slog.String("name", name))

	switch result.Kind {
	case lobby.Connected:
		log.Info("client joined")
		r.relay(id, fmt.Sprintf("* %s has joined\n", name))
	case lobby.Data:
		text := strings.TrimRight(strings.ToValidUTF8(string(result.Data), "�"), "\r\n")
		r.relay(id, fmt.Sprintf("%s: %s\n", name, text))
	case lobby.IoError:
		log.Warn("read error", slog.Any("error", result.Err))
	case lobby.Disconnected:
		if !named {
			// never finished its handshake
			log.Debug("anonymous client dropped")
			return
		}
		log.Info("client left")
		r.relay(id, fmt.Sprintf("* %s has left\n", name))
	}
}

func (r *room) relay(from lobby.ClientID, line string) {
	if err := r.lobby.MessageRest(from, []byte(line)).Err(); err != nil {
		r.log.Warn("relay failed", slog.Any("error", err))
	}
}
