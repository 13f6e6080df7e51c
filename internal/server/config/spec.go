// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for honeymesh-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Store    StoreSection    `koanf:"store"`
	Alerts   AlertsSection   `koanf:"alerts"`
	Security SecuritySection `koanf:"security"`
	Decoy    DecoySection    `koanf:"decoy"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the decoy HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// TrustForwardedFor takes the client address from X-Forwarded-For.
	// Enable only behind a proxy that overwrites the header.
	TrustForwardedFor bool `koanf:"trust_forwarded_for"`
}

// StoreSection selects the token store backend.
type StoreSection struct {
	// Backend is one of "redis", "badger" or "memory".
	Backend       string        `koanf:"backend"`
	OpTimeout     time.Duration `koanf:"op_timeout"`
	ProbeInterval time.Duration `koanf:"probe_interval"`
	Redis         RedisConfig   `koanf:"redis"`
	Badger        BadgerConfig  `koanf:"badger"`
}

// RedisConfig configures the Redis client.
type RedisConfig struct {
	// Addr is host:port or a redis:// URL.
	Addr        string        `koanf:"addr"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
	PoolSize    int           `koanf:"pool_size"`
	TLSCAFile   string        `koanf:"tls_ca_file"`
}

// BadgerConfig configures the embedded Badger store.
type BadgerConfig struct {
	Dir        string        `koanf:"dir"`
	SyncWrites bool          `koanf:"sync_writes"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// AlertsSection configures alert publishing.
type AlertsSection struct {
	Channel string `koanf:"channel"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// EncryptionKey seals Badger record values when set.
	EncryptionKey string `koanf:"encryption_key"`
}

// DecoySection configures the decoy surface.
type DecoySection struct {
	// RateLimit is the per-client request rate (requests/second). 0 disables.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// BaitUsers maps usernames to the passwords the bait login accepts.
	BaitUsers map[string]string `koanf:"bait_users"`

	// StrictWrites makes minting fail when the store write fails.
	StrictWrites bool `koanf:"strict_writes"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
