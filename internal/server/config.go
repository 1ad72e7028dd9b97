package server

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime settings for the relay. Values are read from the
// environment under the PARLOR_ prefix, e.g. PARLOR_LISTEN_ADDR.
type Config struct {
	// ListenAddr is the host:port the HTTP/WebSocket listener binds to.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// AllowedOrigins restricts browser WebSocket upgrades. "*" allows any
	// origin; requests without an Origin header (native clients) always pass.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// MaxMessageSize caps a single inbound frame in bytes. Exceeding it is
	// fatal to the offending session.
	MaxMessageSize int64 `envconfig:"MAX_MESSAGE_SIZE" default:"4096"`

	// RateLimitBurst and RateLimitRefill parameterize the per-session token
	// bucket applied to inbound chat messages.
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"5"`
	RateLimitRefill time.Duration `envconfig:"RATE_LIMIT_REFILL" default:"1s"`

	// RoomBuffer is the per-subscriber broadcast buffer depth. A subscriber
	// that falls further behind loses its oldest unread messages.
	RoomBuffer int `envconfig:"ROOM_BUFFER" default:"10"`

	// ShutdownTimeout bounds how long graceful shutdown waits for open
	// sessions to drain.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadConfig reads the configuration from the environment, falling back to
// defaults for anything unset.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("parlor", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg.sanitized(), nil
}

// NewConfig returns the default configuration without consulting the
// environment. Tests use it as a baseline to tweak.
func NewConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		AllowedOrigins:  []string{"*"},
		MaxMessageSize:  4096,
		RateLimitBurst:  5,
		RateLimitRefill: time.Second,
		RoomBuffer:      DefaultRoomBuffer,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c Config) sanitized() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 5
	}
	if c.RateLimitRefill <= 0 {
		c.RateLimitRefill = time.Second
	}
	if c.RoomBuffer <= 0 {
		c.RoomBuffer = DefaultRoomBuffer
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}
