package server

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// ReadErrorPolicy decides what a reader does after reporting a read error.
type ReadErrorPolicy int

const (
	// RetryReads reports every read error and keeps reading. Retries are
	// throttled by ReadRetryConfig.
	RetryReads ReadErrorPolicy = iota
	// DisconnectOnError reports the first read error and then ends the
	// connection as if the stream had ended.
	DisconnectOnError
)

func (p ReadErrorPolicy) String() string {
	switch p {
	case RetryReads:
		return "retry"
	case DisconnectOnError:
		return "disconnect"
	default:
		return "unknown"
	}
}

// ReadRetryConfig throttles reads that follow a read error
type ReadRetryConfig struct {
	// PerSecond is the sustained number of retries allowed per second
	PerSecond rate.Limit
	// Burst is the number of retries allowed back to back
	Burst int
	// Enabled determines if throttling is active
	Enabled bool
}

// DefaultReadRetryConfig returns the default retry throttle.
// Allows 10 retries per second with a burst of 10
func DefaultReadRetryConfig() *ReadRetryConfig {
	return &ReadRetryConfig{
		PerSecond: 10,
		Burst:     10,
		Enabled:   true,
	}
}

// NoReadRetryLimit returns a configuration with retry throttling disabled
func NoReadRetryLimit() *ReadRetryConfig {
	return &ReadRetryConfig{
		Enabled: false,
	}
}

func (c *ReadRetryConfig) limiter() *rate.Limiter {
	if c == nil || !c.Enabled {
		return nil
	}
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(c.PerSecond, burst)
}

// Config holds the settings of a lobby server.
type Config struct {
	// ReadBufferSize is the size of each connection's read buffer and the
	// largest Data chunk delivered. Defaults to 4096.
	ReadBufferSize int
	// MaxNameLength caps the handshake name in bytes. Zero means no limit.
	MaxNameLength int
	// HandshakeTimeout bounds the time a client may take to send its name.
	// Zero means no timeout. Only applies to connections that support read deadlines.
	HandshakeTimeout time.Duration
	// ReadErrorPolicy decides what happens after a read error. Defaults to RetryReads.
	ReadErrorPolicy ReadErrorPolicy
	// ReadRetry throttles RetryReads. If nil, DefaultReadRetryConfig() is used.
	ReadRetry *ReadRetryConfig
	// Logger receives the server's diagnostics. If nil, slog.Default() is used.
	Logger *slog.Logger
}

const defaultReadBufferSize = 4096

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:  defaultReadBufferSize,
		ReadErrorPolicy: RetryReads,
		ReadRetry:       DefaultReadRetryConfig(),
		Logger:          slog.Default(),
	}
}

// withDefaults returns a copy of c with unset fields defaulted. c may be nil.
func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}

	cp := *c
	if cp.ReadBufferSize <= 0 {
		cp.ReadBufferSize = out.ReadBufferSize
	}
	if cp.ReadRetry == nil {
		cp.ReadRetry = out.ReadRetry
	}
	if cp.Logger == nil {
		cp.Logger = out.Logger
	}
	return &cp
}
