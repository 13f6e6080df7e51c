package badgerstore

import "time"

// Config contains Badger settings.
type Config struct {
	// Dir is the storage directory. Required unless InMemory is set.
	Dir string

	// InMemory keeps all data in memory; used by tests.
	InMemory bool

	// SyncWrites fsyncs after each write.
	SyncWrites bool

	// GCInterval is the interval between value log GC runs.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 16MB
	CacheSize int64

	// UpdateRetries bounds transaction retries on conflict.
	// Default: 16
	UpdateRetries int

	// EncryptionSecret enables sealing of record values when non-empty.
	EncryptionSecret string
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:           dir,
		GCInterval:    10 * time.Minute,
		GCThreshold:   0.5,
		CacheSize:     16 << 20,
		UpdateRetries: 16,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig(c.Dir)
	if c.GCInterval <= 0 {
		c.GCInterval = d.GCInterval
	}
	if c.GCThreshold <= 0 || c.GCThreshold >= 1 {
		c.GCThreshold = d.GCThreshold
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	if c.UpdateRetries <= 0 {
		c.UpdateRetries = d.UpdateRetries
	}
}
