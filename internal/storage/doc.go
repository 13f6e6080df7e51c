// Package storage assembles the configured token store.
//
// Open builds one of three backends:
//
//   - redis: shared store and real-time alert fan-out (redisstore)
//   - badger: local durable store with optional record encryption (badgerstore)
//   - memory: process-local, nothing survives a restart (memory)
//
// Redis and Badger are wrapped in a Failover with an in-memory secondary.
// When the primary cannot be reached the process keeps serving from memory,
// logs the degradation once, and probes the primary until it answers again.
package storage
