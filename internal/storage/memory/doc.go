// Package memory provides the in-memory token store.
//
// Records live in a sharded map keyed by "honeytoken:{token_id}" and are
// held in their encoded form, so every read runs the same strict decoder as
// the durable backends. Publish delivers to in-process subscribers only.
//
// The store is used on its own in memory-only mode and as the secondary of
// the failover wrapper while the primary backend is unreachable.
//
// Thread Safety:
//
// Update holds the shard lock across decode, mutate and encode, so
// concurrent updates of one key never lose a write.
package memory
