package memory

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/pkg/cmap"
	"github.com/yndnr/honeymesh/pkg/pubsub"
)

var _ service.TokenStore = (*Store)(nil)

// Store provides in-memory honeytoken storage.
type Store struct {
	records *cmap.Map[[]byte]
	bus     *pubsub.Bus
	closed  atomic.Bool
}

// Option configures the Store.
type Option func(*Store)

// WithShards sets the number of map shards.
func WithShards(n int) Option {
	return func(s *Store) {
		s.records = cmap.NewWithShards[[]byte](n)
	}
}

// WithBus shares an existing in-process bus, e.g. with another backend.
func WithBus(b *pubsub.Bus) Option {
	return func(s *Store) {
		s.bus = b
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		records: cmap.New[[]byte](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = pubsub.New(pubsub.DefaultBuffer)
	}
	return s
}

// Put upserts a record.
func (s *Store) Put(_ context.Context, h *domain.Honeytoken) error {
	if s.closed.Load() {
		return domain.ErrStoreUnavailable.WithDetails("memory store closed")
	}
	data, err := domain.EncodeRecord(h)
	if err != nil {
		return err
	}
	s.records.Set(domain.StorageKey(h.TokenID), data)
	return nil
}

// Get returns the record for tokenID, or domain.ErrTokenNotFound.
func (s *Store) Get(_ context.Context, tokenID string) (*domain.Honeytoken, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreUnavailable.WithDetails("memory store closed")
	}
	data, ok := s.records.Get(domain.StorageKey(tokenID))
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return domain.DecodeRecord(data)
}

// Update applies fn to the stored record under the shard lock.
// Nothing is written if the key is absent, the stored value is malformed,
// or fn returns an error.
func (s *Store) Update(_ context.Context, tokenID string, fn func(*domain.Honeytoken) error) (*domain.Honeytoken, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreUnavailable.WithDetails("memory store closed")
	}

	var updated *domain.Honeytoken
	_, err := s.records.Compute(domain.StorageKey(tokenID), func(cur []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, domain.ErrTokenNotFound
		}
		h, err := domain.DecodeRecord(cur)
		if err != nil {
			return nil, err
		}
		if err := fn(h); err != nil {
			return nil, err
		}
		data, err := domain.EncodeRecord(h)
		if err != nil {
			return nil, err
		}
		updated = h
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Publish delivers payload to in-process subscribers of channel.
func (s *Store) Publish(_ context.Context, channel string, payload []byte) error {
	if _, err := s.bus.Publish(channel, payload); err != nil {
		return fmt.Errorf("memory publish: %w", err)
	}
	return nil
}

// Subscribe returns a channel of payloads published on channel until ctx ends.
func (s *Store) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return s.bus.Subscribe(ctx, channel)
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() {
		return domain.ErrStoreUnavailable.WithDetails("memory store closed")
	}
	return nil
}

// Close closes the store and its bus.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.bus.Close()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return s.records.Count()
}

// PutRaw stores value verbatim under the key for tokenID, bypassing the
// encoder. It is used to import records and to exercise corrupt data.
func (s *Store) PutRaw(tokenID string, value []byte) {
	s.records.Set(domain.StorageKey(tokenID), append([]byte(nil), value...))
}
