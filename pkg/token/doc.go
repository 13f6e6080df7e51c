// Package token provides honeytoken identifier generation and validation.
//
// Identifier Format:
//
//   - 128 bits from crypto/rand, version 4 UUID layout
//   - Canonical lowercase hyphenated form, 36 characters
//
// Identifiers carry no meaning and no secret. They are safe to log and to
// embed in served content.
//
// The package also provides a short SHA-256 fingerprint used to correlate
// captured bait values in logs without writing the values themselves.
package token
