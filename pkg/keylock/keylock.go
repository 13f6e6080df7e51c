// Package keylock provides striped per-key mutual exclusion.
//
// A fixed pool of mutexes is indexed by the murmur3 hash of the key. Two
// callers holding the same key always contend; callers with different keys
// contend only when they collide on a stripe. Memory use is constant no
// matter how many distinct keys are seen.
package keylock

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultStripes is the default number of mutexes in the pool.
const DefaultStripes = 256

// Striped is a fixed-size pool of mutexes addressed by key.
type Striped struct {
	locks []sync.Mutex
	mask  uint32
}

// New creates a pool with the given stripe count, rounded up to a power of 2.
func New(stripes int) *Striped {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	n := 1
	for n < stripes {
		n <<= 1
	}
	return &Striped{
		locks: make([]sync.Mutex, n),
		mask:  uint32(n - 1),
	}
}

// Stripes returns the pool size.
func (s *Striped) Stripes() int {
	return len(s.locks)
}

func (s *Striped) index(key string) uint32 {
	return murmur3.Sum32([]byte(key)) & s.mask
}

// Lock acquires the mutex for key and returns its release function.
func (s *Striped) Lock(key string) (unlock func()) {
	mu := &s.locks[s.index(key)]
	mu.Lock()
	return mu.Unlock
}

// Do runs fn while holding the mutex for key.
func (s *Striped) Do(key string, fn func() error) error {
	unlock := s.Lock(key)
	defer unlock()
	return fn()
}
