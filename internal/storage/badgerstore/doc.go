// Package badgerstore provides the local durable token store on Badger.
//
// Records are kept under "honeytoken:{token_id}". When an encryption secret
// is configured, values are sealed with an AEAD cipher from pkg/crypto/adaptive
// using the key as additional data, so a value copied to another key fails
// to open. Alerts are published on an in-process bus.
//
// Update runs in a Badger read-write transaction with conflict detection and
// retries on badger.ErrConflict.
package badgerstore
