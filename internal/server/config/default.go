package config

import (
	"time"

	"github.com/yndnr/honeymesh/internal/core/domain"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "0.0.0.0:5002"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultStoreBackend  = "redis"
	DefaultOpTimeout     = 500 * time.Millisecond
	DefaultProbeInterval = 5 * time.Second
	DefaultRedisAddr     = "localhost:6379"
	DefaultDialTimeout   = 2 * time.Second
	DefaultBadgerDir     = "/var/lib/honeymesh/data"
	DefaultGCInterval    = 10 * time.Minute

	DefaultRateLimit = 20
	DefaultRateBurst = 40

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultBaitUsers returns the credentials the bait login accepts out of the box.
func DefaultBaitUsers() map[string]string {
	return map[string]string{
		"admin":  "password123",
		"doctor": "medical",
		"nurse":  "nurse123",
	}
}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				IdleTimeout:     DefaultIdleTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Store: StoreSection{
			Backend:       DefaultStoreBackend,
			OpTimeout:     DefaultOpTimeout,
			ProbeInterval: DefaultProbeInterval,
			Redis: RedisConfig{
				Addr:        DefaultRedisAddr,
				DialTimeout: DefaultDialTimeout,
			},
			Badger: BadgerConfig{
				Dir:        DefaultBadgerDir,
				GCInterval: DefaultGCInterval,
			},
		},
		Alerts: AlertsSection{
			Channel: domain.DefaultAlertChannel,
		},
		Decoy: DecoySection{
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
			BaitUsers: DefaultBaitUsers(),
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
