package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luciancaetano/lobby"
	"github.com/luciancaetano/lobby/internal/config"
	"github.com/luciancaetano/lobby/tcp"
	"github.com/luciancaetano/lobby/ws"
)

var configFile string

// serveCmd runs the chat room.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a chat room",
	Long:  "Accept chat clients and relay each message to every other client until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addrFlag
		}
		if cmd.Flags().Changed("transport") {
			cfg.Transport = transportFlag
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&configFile, "config", "", "Configuration file (YAML)")
}

// newLobby starts a lobby on the configured transport.
func newLobby(cfg *config.Config, logger *slog.Logger) (lobby.Lobby, error) {
	switch cfg.Transport {
	case config.TransportWebSocket:
		return ws.New(cfg.Addr, &ws.Config{
			Server:    cfg.ServerConfig(logger),
			Transport: cfg.TransportConfig(),
		})
	default:
		return tcp.New(cfg.Addr, cfg.ServerConfig(logger))
	}
}

// serve scans the lobby until ctx is done.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)
	l, err := newLobby(cfg, logger)
	if err != nil {
		return err
	}
	defer l.Close()

	logger.Info("chat room started, waiting on client connections",
		"addr", l.Addr().String(),
		"transport", cfg.Transport,
	)

	r := &room{lobby: l, log: logger}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			l.Scan(r.handle)
		}
	}
}
