// Package cmap provides a concurrent map implementation for honeymesh.
//
// The map is split into shards, each guarded by its own RWMutex, so
// unrelated keys rarely contend. Shards are selected with a murmur3 hash
// of the key.
//
// Usage:
//
//	m := cmap.New[[]byte]()
//	m.Set("honeytoken:abc", raw)
//	val, ok := m.Get("honeytoken:abc")
//
// Compute runs a callback while holding the key's shard lock, which makes
// read-modify-write sequences atomic with respect to other writers of the
// same shard.
package cmap
