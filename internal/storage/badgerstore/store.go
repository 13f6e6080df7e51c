package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/pkg/pubsub"
)

var _ service.TokenStore = (*Store)(nil)

// Store is a TokenStore backed by Badger.
type Store struct {
	db      *badger.DB
	cfg     Config
	logger  *slog.Logger
	bus     *pubsub.Bus
	sealer  *sealer
	closed  atomic.Bool
	gcRuns  atomic.Uint64
	lastGC  atomic.Int64 // Unix milliseconds
	stopCh  chan struct{}
	doneCh  chan struct{}
	ownsBus bool
}

// Option configures a Store.
type Option func(*Store)

// WithBus publishes on b instead of a private bus.
func WithBus(b *pubsub.Bus) Option {
	return func(s *Store) {
		s.bus = b
	}
}

// Open opens (or creates) the store.
func Open(cfg Config, logger *slog.Logger, opts ...Option) (*Store, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	logger = logger.With("component", "badgerstore")

	s := &Store{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = pubsub.New(pubsub.DefaultBuffer)
		s.ownsBus = true
	}

	if cfg.EncryptionSecret != "" {
		sl, err := newSealer(cfg.EncryptionSecret)
		if err != nil {
			return nil, fmt.Errorf("badger: record encryption: %w", err)
		}
		s.sealer = sl
	}

	bopts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = &badgerLogger{logger: logger}
	bopts.BlockCacheSize = cfg.CacheSize
	bopts.SyncWrites = cfg.SyncWrites
	bopts.DetectConflicts = true

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}
	s.db = db

	go s.gcLoop()

	logger.Info("badger store opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"encrypted", s.sealer != nil,
		"gc_interval", cfg.GCInterval)

	return s, nil
}

// Put upserts a record.
func (s *Store) Put(_ context.Context, h *domain.Honeytoken) error {
	if s.closed.Load() {
		return domain.ErrStoreUnavailable.WithDetails("badger store closed")
	}
	key := []byte(domain.StorageKey(h.TokenID))
	value, err := s.encode(key, h)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return domain.ErrStoreUnavailable.WithCause(err)
	}
	return nil
}

// Get reads and decodes a record.
func (s *Store) Get(_ context.Context, tokenID string) (*domain.Honeytoken, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreUnavailable.WithDetails("badger store closed")
	}
	key := []byte(domain.StorageKey(tokenID))

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithCause(err)
	}
	return s.decode(key, value)
}

// Update applies fn in a read-write transaction, retrying on conflict.
func (s *Store) Update(ctx context.Context, tokenID string, fn func(*domain.Honeytoken) error) (*domain.Honeytoken, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreUnavailable.WithDetails("badger store closed")
	}
	key := []byte(domain.StorageKey(tokenID))

	for attempt := 0; attempt < s.cfg.UpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.ErrStoreUnavailable.WithCause(err)
		}

		var (
			updated *domain.Honeytoken
			fnErr   error
		)
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrTokenNotFound
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			h, err := s.decode(key, value)
			if err != nil {
				return err
			}
			if err := fn(h); err != nil {
				fnErr = err
				return err
			}
			out, err := s.encode(key, h)
			if err != nil {
				return err
			}
			if err := txn.Set(key, out); err != nil {
				return err
			}
			updated = h
			return nil
		})

		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, badger.ErrConflict):
			s.logger.Debug("update conflict, retrying", "token_id", tokenID, "attempt", attempt+1)
			continue
		case fnErr != nil, domain.IsDomainError(err, ""):
			return nil, err
		default:
			return nil, domain.ErrStoreUnavailable.WithCause(err)
		}
	}
	return nil, domain.ErrStoreConflict.WithDetails(fmt.Sprintf("%d attempts on %s", s.cfg.UpdateRetries, key))
}

// Publish delivers payload to in-process subscribers.
func (s *Store) Publish(_ context.Context, channel string, payload []byte) error {
	if _, err := s.bus.Publish(channel, payload); err != nil {
		return fmt.Errorf("badger publish: %w", err)
	}
	return nil
}

// Subscribe returns payloads published on channel until ctx is done.
func (s *Store) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return s.bus.Subscribe(ctx, channel)
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() || s.db.IsClosed() {
		return domain.ErrStoreUnavailable.WithDetails("badger store closed")
	}
	return nil
}

// GC runs value log garbage collection until nothing is left to rewrite.
func (s *Store) GC() (int, error) {
	if s.cfg.InMemory {
		return 0, nil
	}
	runs := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return runs, fmt.Errorf("gc: %w", err)
		}
		runs++
	}
	s.gcRuns.Add(uint64(runs))
	s.lastGC.Store(time.Now().UnixMilli())
	return runs, nil
}

// Collectors returns Prometheus collectors reporting on the database.
func (s *Store) Collectors() []prometheus.Collector {
	gauge := func(name, help string, fn func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "honeymesh",
			Subsystem: "badger",
			Name:      name,
			Help:      help,
		}, fn)
	}
	return []prometheus.Collector{
		gauge("lsm_size_bytes", "Badger LSM tree size in bytes.", func() float64 {
			lsm, _ := s.db.Size()
			return float64(lsm)
		}),
		gauge("value_log_size_bytes", "Badger value log size in bytes.", func() float64 {
			_, vlog := s.db.Size()
			return float64(vlog)
		}),
		gauge("last_gc_timestamp_seconds", "Unix timestamp of the last value log GC.", func() float64 {
			return float64(s.lastGC.Load()) / 1000
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "honeymesh",
			Subsystem: "badger",
			Name:      "gc_rewrites_total",
			Help:      "Total value log files rewritten by GC.",
		}, func() float64 {
			return float64(s.gcRuns.Load())
		}),
	}
}

// Close stops background GC and closes the database.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.stopCh)
	<-s.doneCh

	if s.ownsBus {
		_ = s.bus.Close()
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	s.logger.Info("badger store closed")
	return nil
}

func (s *Store) encode(key []byte, h *domain.Honeytoken) ([]byte, error) {
	data, err := domain.EncodeRecord(h)
	if err != nil {
		return nil, err
	}
	if s.sealer == nil {
		return data, nil
	}
	return s.sealer.seal(key, data)
}

func (s *Store) decode(key, value []byte) (*domain.Honeytoken, error) {
	if s.sealer != nil {
		pt, err := s.sealer.open(key, value)
		if err != nil {
			return nil, err
		}
		value = pt
	}
	return domain.DecodeRecord(value)
}

func (s *Store) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.GC(); err != nil {
				s.logger.Error("auto gc failed", "error", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
