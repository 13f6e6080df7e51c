// Package pubsub provides an in-process publish/subscribe bus.
//
// Delivery mirrors Redis PUBLISH semantics: a message reaches only the
// subscribers present at publish time, there is no retry, and a subscriber
// whose buffer is full misses the message instead of blocking the publisher.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("pubsub: bus closed")

// Bus fans messages out to channel subscribers.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscription]struct{}
	buffer  int
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

type subscription struct {
	ch   chan []byte
	once sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// New creates a bus. buffer <= 0 selects DefaultBuffer.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

// Publish delivers payload to current subscribers of channel and returns how
// many received it.
func (b *Bus) Publish(channel string, payload []byte) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, ErrClosed
	}

	delivered := 0
	for sub := range b.subs[channel] {
		msg := make([]byte, len(payload))
		copy(msg, payload)
		select {
		case sub.ch <- msg:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered, nil
}

// Subscribe registers a subscriber on channel. The returned channel is closed
// when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := &subscription{ch: make(chan []byte, b.buffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*subscription]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.remove(channel, sub)
		case <-b.done:
		}
	}()

	return sub.ch, nil
}

func (b *Bus) remove(channel string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[channel]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, channel)
		}
	}
	sub.close()
}

// Subscribers returns the number of subscribers on channel.
func (b *Bus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

// Dropped returns the number of messages skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels. Further publishes fail with ErrClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	for _, set := range b.subs {
		for sub := range set {
			sub.close()
		}
	}
	b.subs = make(map[string]map[*subscription]struct{})
	return nil
}
