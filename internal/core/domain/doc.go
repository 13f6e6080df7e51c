// Package domain defines the core domain models for honeymesh.
//
// Domain models are pure values without IO dependencies:
//
//   - honeytoken.go: the Honeytoken record and its access mutation
//   - codec.go: strict wire encoding of records (fails closed)
//   - alert.go: events published on the alert channel
//   - errors.go: DomainError and the error taxonomy
package domain
