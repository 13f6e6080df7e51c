// Package token provides honeytoken identifier generation and validation.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

// IDLength is the length of a canonical identifier string.
const IDLength = 36

// ErrInvalidID is returned by Parse for values that are not canonical identifiers.
var ErrInvalidID = errors.New("token: invalid identifier")

// NewID returns a fresh random identifier.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Parse checks that s is a canonical identifier and returns it normalized.
//
// Only the 36-character hyphenated form is accepted; braces, URN prefixes
// and the 32-character form are rejected so that a stored key can only be
// reached through one spelling.
func Parse(s string) (string, error) {
	if len(s) != IDLength {
		return "", ErrInvalidID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

// Valid reports whether s is a canonical identifier.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Fingerprint returns the first 12 hex characters of the SHA-256 of value.
func Fingerprint(value string) string {
	if value == "" {
		return ""
	}
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:6])
}
