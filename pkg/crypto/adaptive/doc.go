// Package adaptive provides authenticated encryption for stored records.
//
// Supported Algorithms:
//
//   - AES-256-GCM: selected on amd64 and arm64 where Go uses hardware AES
//   - ChaCha20-Poly1305: selected elsewhere
//
// Keys are derived from an operator-supplied secret with HKDF-SHA256, so the
// secret may be any string of at least MinSecretLength bytes.
//
// Usage:
//
//	c, err := adaptive.NewFromSecret(secret, "honeytoken-record")
//	sealed, err := c.Encrypt(plaintext, []byte(key))
//	plaintext, err := c.Decrypt(sealed, []byte(key))
package adaptive
