package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/storage/badgerstore"
	"github.com/yndnr/honeymesh/internal/storage/memory"
	"github.com/yndnr/honeymesh/internal/storage/redisstore"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
)

// Backend names.
const (
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Default timings.
const (
	DefaultOpTimeout     = 500 * time.Millisecond
	DefaultProbeInterval = 5 * time.Second
)

// Config selects and configures the token store.
type Config struct {
	Backend       string
	OpTimeout     time.Duration
	ProbeInterval time.Duration
	Redis         redisstore.Config
	Badger        badgerstore.Config

	// RequirePrimary returns the backend itself with no memory fallback,
	// and fails Open when it cannot be reached. One-shot tools use it so
	// nothing is written to a store that vanishes on exit.
	RequirePrimary bool
}

// Open constructs the configured store.
//
// An unreachable Redis or an unopenable Badger directory is not an error:
// the degradation is logged once and the returned store serves from memory.
// Only an invalid configuration fails, unless cfg.RequirePrimary is set.
func Open(ctx context.Context, cfg Config, logger *slog.Logger, metrics *metric.Registry) (service.TokenStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}

	fcfg := FailoverConfig{
		Backend:       strings.ToLower(cfg.Backend),
		ProbeInterval: cfg.ProbeInterval,
		ProbeTimeout:  cfg.OpTimeout,
		Logger:        logger,
		Metrics:       metrics,
	}

	switch fcfg.Backend {
	case BackendMemory, "":
		logger.Info("token store opened", "backend", BackendMemory)
		return memory.New(), nil

	case BackendRedis:
		rs, err := redisstore.New(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
		err = rs.Ping(pingCtx)
		cancel()
		if err != nil && cfg.RequirePrimary {
			_ = rs.Close()
			return nil, fmt.Errorf("storage: redis %s: %w", cfg.Redis.Addr, domain.ErrStoreUnavailable.WithCause(err))
		}
		if err != nil {
			logger.Warn("token store unavailable at startup, running in memory-only mode",
				"backend", BackendRedis,
				"addr", cfg.Redis.Addr,
				"error", err,
			)
			fcfg.StartDegraded = true
		} else {
			logger.Info("token store opened", "backend", BackendRedis, "addr", cfg.Redis.Addr)
		}
		if cfg.RequirePrimary {
			return rs, nil
		}
		return NewFailover(rs, memory.New(), fcfg), nil

	case BackendBadger:
		bs, err := badgerstore.Open(cfg.Badger, logger)
		if err != nil {
			if cfg.Badger.Dir == "" && !cfg.Badger.InMemory {
				return nil, fmt.Errorf("storage: %w", err)
			}
			if cfg.RequirePrimary {
				return nil, fmt.Errorf("storage: badger %s: %w", cfg.Badger.Dir, domain.ErrStoreUnavailable.WithCause(err))
			}
			logger.Warn("token store unavailable at startup, running in memory-only mode",
				"backend", BackendBadger,
				"dir", cfg.Badger.Dir,
				"error", err,
			)
			return memory.New(), nil
		}
		if err := metrics.Register(bs.Collectors()...); err != nil {
			logger.Warn("failed to register badger metrics", "error", err)
		}
		if cfg.RequirePrimary {
			return bs, nil
		}
		return NewFailover(bs, memory.New(), fcfg), nil

	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
