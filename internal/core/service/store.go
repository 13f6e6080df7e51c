package service

import (
	"context"

	"github.com/yndnr/honeymesh/internal/core/domain"
)

// TokenStore is the persistence and pub/sub boundary for honeytokens.
//
// Implementations must be safe for concurrent use.
type TokenStore interface {
	// Put upserts the record under "honeytoken:{token_id}".
	Put(ctx context.Context, h *domain.Honeytoken) error

	// Get returns domain.ErrTokenNotFound when no record exists,
	// domain.ErrRecordMalformed when the stored value cannot be decoded,
	// and an error matching domain.ErrStoreUnavailable on transport failure.
	Get(ctx context.Context, tokenID string) (*domain.Honeytoken, error)

	// Update atomically applies fn to the stored record and persists the
	// result. It never creates a record: an absent key yields
	// domain.ErrTokenNotFound and fn is not called.
	Update(ctx context.Context, tokenID string, fn func(*domain.Honeytoken) error) (*domain.Honeytoken, error)

	// Publish broadcasts payload on channel. Best effort, no retry.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe delivers payloads published on channel until ctx is done.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
