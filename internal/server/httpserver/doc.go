// Package httpserver serves the decoy portal over HTTP(S).
//
// It wires the handler package behind a gorilla/mux router and the
// middleware chain (panic recovery, ULID request ids, audit logging,
// per-client rate limiting and Prometheus request metrics).
package httpserver
