// Package metric provides Prometheus metrics for honeymesh.
//
// A Registry owns a private prometheus.Registry with Go runtime and process
// collectors plus the honeymesh_* application metrics:
//
//   - honeytoken lifecycle: tokens minted, accesses by result
//   - alerting: alerts published by result, login attempts by outcome
//   - storage: store errors by backend and operation, degraded-mode gauge
//   - HTTP: requests by route and status, request duration, rate-limited requests
//
// Every recording method is safe on a nil *Registry, so components can be
// built without metrics in tests.
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
