// Package service provides the honeytoken lifecycle service.
//
// HoneytokenService mints tokens, records accesses against them and
// publishes alert events. It owns no state of its own: every read and
// write goes through a TokenStore, so behavior is identical whichever
// backend is configured.
//
// Failures of the store or of alert delivery are logged and counted but
// never returned to the presentation layer, which must keep looking
// flawless to whoever is browsing the decoy.
package service
