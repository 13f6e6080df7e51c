package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/storage/memory"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
)

var _ service.TokenStore = (*Failover)(nil)

// Failover routes operations to a primary store and falls back to an
// in-memory secondary while the primary is unavailable.
//
// Tokens minted while degraded exist only in the secondary; Get and Update
// consult it whenever the primary reports a token as not found.
type Failover struct {
	primary   service.TokenStore
	secondary *memory.Store
	backend   string

	degraded      atomic.Bool
	probeInterval time.Duration
	probeTimeout  time.Duration

	logger  *slog.Logger
	metrics *metric.Registry

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// FailoverConfig configures a Failover.
type FailoverConfig struct {
	// Backend names the primary in logs and metrics.
	Backend string
	// ProbeInterval is how often a degraded primary is pinged.
	ProbeInterval time.Duration
	// ProbeTimeout bounds each probe.
	ProbeTimeout time.Duration
	// StartDegraded starts in memory-only mode.
	StartDegraded bool

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// NewFailover wraps primary and starts the probe loop.
func NewFailover(primary service.TokenStore, secondary *memory.Store, cfg FailoverConfig) *Failover {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultOpTimeout
	}
	if secondary == nil {
		secondary = memory.New()
	}

	f := &Failover{
		primary:       primary,
		secondary:     secondary,
		backend:       cfg.Backend,
		probeInterval: cfg.ProbeInterval,
		probeTimeout:  cfg.ProbeTimeout,
		logger:        cfg.Logger.With("component", "storage", "backend", cfg.Backend),
		metrics:       cfg.Metrics,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	f.degraded.Store(cfg.StartDegraded)
	f.metrics.SetStoreDegraded(cfg.StartDegraded)

	go f.probeLoop()
	return f
}

// Degraded reports whether operations are currently served from memory.
func (f *Failover) Degraded() bool {
	return f.degraded.Load()
}

// Backend returns the primary backend name.
func (f *Failover) Backend() string {
	return f.backend
}

// Put writes to the primary, or to memory while degraded.
func (f *Failover) Put(ctx context.Context, h *domain.Honeytoken) error {
	if !f.degraded.Load() {
		err := f.primary.Put(ctx, h)
		if !f.fellOver("put", err) {
			return err
		}
	}
	return f.secondary.Put(ctx, h)
}

// Get reads from the primary, then from memory if the primary does not
// have the token or is unavailable.
func (f *Failover) Get(ctx context.Context, tokenID string) (*domain.Honeytoken, error) {
	if !f.degraded.Load() {
		h, err := f.primary.Get(ctx, tokenID)
		if !errors.Is(err, domain.ErrTokenNotFound) && !f.fellOver("get", err) {
			return h, err
		}
	}
	return f.secondary.Get(ctx, tokenID)
}

// Update applies fn on whichever store holds the token.
func (f *Failover) Update(ctx context.Context, tokenID string, fn func(*domain.Honeytoken) error) (*domain.Honeytoken, error) {
	if !f.degraded.Load() {
		h, err := f.primary.Update(ctx, tokenID, fn)
		if !errors.Is(err, domain.ErrTokenNotFound) && !f.fellOver("update", err) {
			return h, err
		}
	}
	return f.secondary.Update(ctx, tokenID, fn)
}

// Publish broadcasts on the primary, or in-process while degraded.
func (f *Failover) Publish(ctx context.Context, channel string, payload []byte) error {
	if !f.degraded.Load() {
		err := f.primary.Publish(ctx, channel, payload)
		if !f.fellOver("publish", err) {
			return err
		}
	}
	return f.secondary.Publish(ctx, channel, payload)
}

// Subscribe merges messages from the primary and the in-memory secondary.
// A primary that cannot subscribe is skipped.
func (f *Failover) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	var sources []<-chan []byte

	if !f.degraded.Load() {
		ch, err := f.primary.Subscribe(ctx, channel)
		if err == nil {
			sources = append(sources, ch)
		} else {
			f.logger.Warn("primary subscribe failed, using memory only", "channel", channel, "error", err)
		}
	}
	ch, err := f.secondary.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	sources = append(sources, ch)

	return merge(ctx, sources...), nil
}

// Ping checks the primary. Memory-only service is still reported as an error
// so health checks surface the degradation.
func (f *Failover) Ping(ctx context.Context) error {
	if err := f.primary.Ping(ctx); err != nil {
		f.fellOver("ping", err)
		return err
	}
	return nil
}

// Close stops probing and closes both stores.
func (f *Failover) Close() error {
	f.stopOnce.Do(func() {
		close(f.stopCh)
		<-f.doneCh
	})
	err := f.primary.Close()
	if serr := f.secondary.Close(); err == nil {
		err = serr
	}
	return err
}

// fellOver reports whether err is a transport failure, switching to degraded
// mode on the first one.
func (f *Failover) fellOver(op string, err error) bool {
	if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
		return false
	}
	f.metrics.RecordStoreError(f.backend, op)
	if f.degraded.CompareAndSwap(false, true) {
		f.metrics.SetStoreDegraded(true)
		f.logger.Warn("token store unavailable, serving from memory", "op", op, "error", err)
	}
	return true
}

func (f *Failover) probeLoop() {
	defer close(f.doneCh)

	ticker := time.NewTicker(f.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if f.degraded.Load() {
				f.probe()
			}
		case <-f.stopCh:
			return
		}
	}
}

func (f *Failover) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), f.probeTimeout)
	defer cancel()

	if err := f.primary.Ping(ctx); err != nil {
		f.logger.Debug("primary still unavailable", "error", err)
		return
	}
	if f.degraded.CompareAndSwap(true, false) {
		f.metrics.SetStoreDegraded(false)
		f.logger.Info("token store restored", "memory_records", f.secondary.Len())
	}
}

// merge forwards every source into one channel that closes when all
// sources have closed or ctx is done.
func merge(ctx context.Context, sources ...<-chan []byte) <-chan []byte {
	out := make(chan []byte, 64)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src <-chan []byte) {
			defer wg.Done()
			for msg := range src {
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
