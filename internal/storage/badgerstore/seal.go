package badgerstore

import (
	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/pkg/crypto/adaptive"
)

// keyInfo separates the record key from other keys derived from the secret.
const keyInfo = "honeymesh/badgerstore/record"

// Header bytes of sealed values. Plain JSON records start with '{'.
const (
	sealedAESGCM   byte = 0x01
	sealedChaCha20 byte = 0x02
)

// sealer encrypts record values. Values name their algorithm in the first
// byte so a store written on one platform opens on another.
type sealer struct {
	write   byte
	ciphers map[byte]adaptive.Cipher
}

func newSealer(secret string) (*sealer, error) {
	key, err := adaptive.DeriveKey(secret, keyInfo)
	if err != nil {
		return nil, err
	}
	aes, err := adaptive.NewWithType(key, adaptive.CipherAESGCM)
	if err != nil {
		return nil, err
	}
	chacha, err := adaptive.NewWithType(key, adaptive.CipherChaCha20)
	if err != nil {
		return nil, err
	}
	preferred, err := adaptive.New(key)
	if err != nil {
		return nil, err
	}

	s := &sealer{
		write: sealedChaCha20,
		ciphers: map[byte]adaptive.Cipher{
			sealedAESGCM:   aes,
			sealedChaCha20: chacha,
		},
	}
	if preferred.Type() == adaptive.CipherAESGCM {
		s.write = sealedAESGCM
	}
	return s, nil
}

func (s *sealer) seal(key, plaintext []byte) ([]byte, error) {
	ct, err := s.ciphers[s.write].Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}
	return append([]byte{s.write}, ct...), nil
}

func (s *sealer) open(key, value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, domain.ErrRecordMalformed.WithDetails("empty value")
	}
	c, ok := s.ciphers[value[0]]
	if !ok {
		return nil, domain.ErrRecordMalformed.WithDetails("value is not sealed")
	}
	pt, err := c.Decrypt(value[1:], key)
	if err != nil {
		return nil, domain.ErrRecordMalformed.WithCause(err)
	}
	return pt, nil
}
