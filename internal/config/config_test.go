package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/lobby/internal/server"
)

// TestDefault tests that the defaults are valid
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, TransportTCP, cfg.Transport)
	assert.Equal(t, "/ws", cfg.WebSocket.Path)
	assert.Equal(t, "retry", cfg.Server.ReadErrorPolicy)
}

// TestParse tests decoding a complete file
func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
addr: ":9000"
transport: websocket
websocket:
  path: /chat
  allow_all_origins: true
server:
  read_buffer_size: 512
  max_name_length: 16
  handshake_timeout: 3s
  read_error_policy: disconnect
  read_retry_per_second: 2.5
  read_retry_burst: 4
logging:
  level: debug
  format: json
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, TransportWebSocket, cfg.Transport)
	assert.Equal(t, "/chat", cfg.WebSocket.Path)
	assert.True(t, cfg.WebSocket.AllowAllOrigins)
	assert.Equal(t, 512, cfg.Server.ReadBufferSize)
	assert.Equal(t, 16, cfg.Server.MaxNameLength)
	assert.Equal(t, 3*time.Second, cfg.Server.HandshakeTimeout)
	assert.Equal(t, "disconnect", cfg.Server.ReadErrorPolicy)
	assert.Equal(t, 2.5, cfg.Server.ReadRetryPerSecond)
	assert.Equal(t, 4, cfg.Server.ReadRetryBurst)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

// TestParsePartial tests that omitted fields keep their defaults
func TestParsePartial(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("server:\n  max_name_length: 8\n"))
	require.NoError(t, err)

	want := Default()
	want.Server.MaxNameLength = 8
	assert.Equal(t, want, cfg)
}

// TestValidate tests rejection of invalid settings
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty address", func(c *Config) { c.Addr = "" }, "address cannot be empty"},
		{"unknown transport", func(c *Config) { c.Transport = "udp" }, "unknown transport"},
		{"relative websocket path", func(c *Config) {
			c.Transport = TransportWebSocket
			c.WebSocket.Path = "ws"
		}, "websocket path"},
		{"zero read buffer", func(c *Config) { c.Server.ReadBufferSize = 0 }, "read buffer size"},
		{"negative name length", func(c *Config) { c.Server.MaxNameLength = -1 }, "max name length"},
		{"negative handshake timeout", func(c *Config) { c.Server.HandshakeTimeout = -time.Second }, "handshake timeout"},
		{"unknown policy", func(c *Config) { c.Server.ReadErrorPolicy = "ignore" }, "invalid read error policy"},
		{"negative retry rate", func(c *Config) { c.Server.ReadRetryPerSecond = -1 }, "read retry limits"},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoad tests loading from a file and from defaults only
func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lobby.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \"0.0.0.0:4000\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4000", cfg.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("transport: carrier-pigeon\n"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

// TestLoadEnvOverrides tests that environment variables win over the file
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LOBBY_ADDR", "10.0.0.1:1")
	t.Setenv("LOBBY_TRANSPORT", TransportWebSocket)
	t.Setenv("LOBBY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:1", cfg.Addr)
	assert.Equal(t, TransportWebSocket, cfg.Transport)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

// TestServerConfig tests the conversion into server settings
func TestServerConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Server.ReadErrorPolicy = "disconnect"
	cfg.Server.ReadRetryPerSecond = 3
	cfg.Server.ReadRetryBurst = 5

	logger := cfg.Logger(&bytes.Buffer{})
	sc := cfg.ServerConfig(logger)
	assert.Equal(t, 4096, sc.ReadBufferSize)
	assert.Equal(t, 64, sc.MaxNameLength)
	assert.Equal(t, 10*time.Second, sc.HandshakeTimeout)
	assert.Equal(t, server.DisconnectOnError, sc.ReadErrorPolicy)
	assert.Equal(t, &server.ReadRetryConfig{PerSecond: rate.Limit(3), Burst: 5, Enabled: true}, sc.ReadRetry)
	assert.Same(t, logger, sc.Logger)

	cfg.Server.ReadRetryPerSecond = 0
	assert.False(t, cfg.ServerConfig(logger).ReadRetry.Enabled)
}

// TestTransportConfig tests the conversion into WebSocket settings
func TestTransportConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.WebSocket.Path = "/lobby"

	tc := cfg.TransportConfig()
	assert.Equal(t, "/lobby", tc.Path)
	assert.Nil(t, tc.CheckOrigin)

	cfg.WebSocket.AllowAllOrigins = true
	tc = cfg.TransportConfig()
	require.NotNil(t, tc.CheckOrigin)
	assert.True(t, tc.CheckOrigin(nil))
}

// TestLogger tests the level and format of the built logger
func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "client_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"client_id":7`)
}
