// Package adaptive provides authenticated encryption for stored records.
package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the key length used by both algorithms.
const KeySize = 32

// MinSecretLength is the shortest secret accepted by DeriveKey.
const MinSecretLength = 16

var (
	ErrSecretTooShort   = errors.New("adaptive: secret too short")
	ErrInvalidKeySize   = errors.New("adaptive: key must be 32 bytes")
	ErrCiphertextShort  = errors.New("adaptive: ciphertext too short")
	ErrUnknownAlgorithm = errors.New("adaptive: unknown cipher type")
)

// Cipher provides authenticated encryption.
type Cipher interface {
	Type() CipherType

	// Encrypt returns nonce || ciphertext || tag.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt reverses Encrypt. additionalData must match.
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)

	Overhead() int
}

type aeadCipher struct {
	typ  CipherType
	aead cipher.AEAD
}

// New creates a cipher for key, choosing the algorithm for this platform.
func New(key []byte) (Cipher, error) {
	return NewWithType(key, preferredType())
}

// NewWithType creates a cipher of the given algorithm.
func NewWithType(key []byte, typ CipherType) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch typ {
	case CipherAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, ErrUnknownAlgorithm
	}
	if err != nil {
		return nil, err
	}
	return &aeadCipher{typ: typ, aead: aead}, nil
}

// NewFromSecret derives a key from secret and returns a cipher for it.
func NewFromSecret(secret, info string) (Cipher, error) {
	key, err := DeriveKey(secret, info)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// DeriveKey expands secret into a KeySize key with HKDF-SHA256.
// info separates keys derived from the same secret for different purposes.
func DeriveKey(secret, info string) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// preferredType picks AES-GCM where Go has hardware AES support.
func preferredType() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

func (c *aeadCipher) Type() CipherType {
	return c.typ
}

func (c *aeadCipher) Overhead() int {
	return c.aead.NonceSize() + c.aead.Overhead()
}

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(ciphertext) < ns+c.aead.Overhead() {
		return nil, ErrCiphertextShort
	}
	return c.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], additionalData)
}
