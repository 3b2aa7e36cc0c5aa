// Package config loads the settings of the lobby-chat command from YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/luciancaetano/lobby/internal/server"
	"github.com/luciancaetano/lobby/internal/transport/websocket"
)

// Transport names accepted in the transport field
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Config is the top-level configuration file
type Config struct {
	Addr      string          `yaml:"addr"`
	Transport string          `yaml:"transport"` // tcp | websocket
	WebSocket WebSocketConfig `yaml:"websocket"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WebSocketConfig represents the WebSocket transport settings
type WebSocketConfig struct {
	Path            string `yaml:"path"`
	AllowAllOrigins bool   `yaml:"allow_all_origins"`
}

// ServerConfig represents the lobby settings
type ServerConfig struct {
	ReadBufferSize     int           `yaml:"read_buffer_size"`
	MaxNameLength      int           `yaml:"max_name_length"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	ReadErrorPolicy    string        `yaml:"read_error_policy"` // retry | disconnect
	ReadRetryPerSecond float64       `yaml:"read_retry_per_second"`
	ReadRetryBurst     int           `yaml:"read_retry_burst"`
}

// LoggingConfig represents logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Addr:      "127.0.0.1:8080",
		Transport: TransportTCP,
		WebSocket: WebSocketConfig{
			Path: "/ws",
		},
		Server: ServerConfig{
			ReadBufferSize:     4096,
			MaxNameLength:      64,
			HandshakeTimeout:   10 * time.Second,
			ReadErrorPolicy:    server.RetryReads.String(),
			ReadRetryPerSecond: 10,
			ReadRetryBurst:     10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path over the defaults, applies
// environment overrides and validates the result. An empty path loads the
// defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("LOBBY_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if transport := os.Getenv("LOBBY_TRANSPORT"); transport != "" {
		cfg.Transport = transport
	}
	if level := os.Getenv("LOBBY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	switch c.Transport {
	case TransportTCP:
	case TransportWebSocket:
		if !strings.HasPrefix(c.WebSocket.Path, "/") {
			return fmt.Errorf("websocket path must start with /: %q", c.WebSocket.Path)
		}
	default:
		return fmt.Errorf("unknown transport: %s", c.Transport)
	}

	if c.Server.ReadBufferSize < 1 {
		return fmt.Errorf("read buffer size must be at least 1")
	}
	if c.Server.MaxNameLength < 0 {
		return fmt.Errorf("max name length cannot be negative")
	}
	if c.Server.HandshakeTimeout < 0 {
		return fmt.Errorf("handshake timeout cannot be negative")
	}
	if _, err := parsePolicy(c.Server.ReadErrorPolicy); err != nil {
		return err
	}
	if c.Server.ReadRetryPerSecond < 0 || c.Server.ReadRetryBurst < 0 {
		return fmt.Errorf("read retry limits cannot be negative")
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// ServerConfig converts the file settings into a lobby server configuration.
// A zero retry rate disables retry throttling.
func (c *Config) ServerConfig(logger *slog.Logger) *server.Config {
	policy, _ := parsePolicy(c.Server.ReadErrorPolicy)

	retry := server.NoReadRetryLimit()
	if c.Server.ReadRetryPerSecond > 0 {
		retry = &server.ReadRetryConfig{
			PerSecond: rate.Limit(c.Server.ReadRetryPerSecond),
			Burst:     c.Server.ReadRetryBurst,
			Enabled:   true,
		}
	}

	return &server.Config{
		ReadBufferSize:   c.Server.ReadBufferSize,
		MaxNameLength:    c.Server.MaxNameLength,
		HandshakeTimeout: c.Server.HandshakeTimeout,
		ReadErrorPolicy:  policy,
		ReadRetry:        retry,
		Logger:           logger,
	}
}

// TransportConfig returns the WebSocket transport settings.
func (c *Config) TransportConfig() *websocket.Config {
	cfg := websocket.DefaultConfig()
	cfg.Path = c.WebSocket.Path
	if c.WebSocket.AllowAllOrigins {
		cfg.CheckOrigin = allOrigins
	}
	return cfg
}

// Logger builds a logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// String returns a string representation of the configuration (for logging)
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, Transport: %s, ReadErrorPolicy: %s, LogLevel: %s}",
		c.Addr, c.Transport, c.Server.ReadErrorPolicy, c.Logging.Level)
}

func allOrigins(*http.Request) bool { return true }

func parsePolicy(s string) (server.ReadErrorPolicy, error) {
	switch strings.ToLower(s) {
	case server.RetryReads.String():
		return server.RetryReads, nil
	case server.DisconnectOnError.String():
		return server.DisconnectOnError, nil
	default:
		return 0, fmt.Errorf("invalid read error policy: %s", s)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
	return level, nil
}
