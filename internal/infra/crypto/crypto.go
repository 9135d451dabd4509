// Package crypto seals task data written by the git store.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// NonceSize is the size of the nonce for AES-GCM (12 bytes).
	NonceSize = 12
	// KeySize is the size of the AES-256 key (32 bytes).
	KeySize = 32
)

// magic prefixes every sealed blob so plain blobs are told apart.
var magic = []byte("planr\x01")

var (
	// ErrInvalidKey is returned when the key is not 64 hex characters.
	ErrInvalidKey = errors.New("invalid store key: must be 32 bytes (64 hex characters)")
	// ErrNotSealed is returned when opening data that was written without a key.
	ErrNotSealed = errors.New("data is not sealed")
	// ErrOpenFailed is returned when the data was sealed with another key or tampered with.
	ErrOpenFailed = errors.New("cannot open sealed data: wrong key or corrupted blob")
)

// Sealer encrypts blobs with AES-256-GCM.
//
// Nonces are derived from an HMAC of the plaintext, so sealing the same
// content twice yields the same blob and the same git object hash.
type Sealer struct {
	aead     cipher.AEAD
	nonceKey []byte
}

// NewSealer creates a Sealer from a hex-encoded 32-byte key.
func NewSealer(hexKey string) (*Sealer, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonceKey := sha256.Sum256(append([]byte("planr nonce "), key...))
	return &Sealer{aead: aead, nonceKey: nonceKey[:]}, nil
}

// GenerateKey returns a new random key in the form NewSealer accepts.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Seal encrypts plaintext.
// Layout: magic + nonce (12 bytes) + ciphertext + auth tag.
func (s *Sealer) Seal(plaintext []byte) []byte {
	mac := hmac.New(sha256.New, s.nonceKey)
	mac.Write(plaintext)
	nonce := mac.Sum(nil)[:NonceSize]

	out := make([]byte, 0, len(magic)+NonceSize+len(plaintext)+s.aead.Overhead())
	out = append(out, magic...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, magic)
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return nil, ErrNotSealed
	}
	rest := data[len(magic):]
	if len(rest) < NonceSize+s.aead.Overhead() {
		return nil, ErrOpenFailed
	}

	plaintext, err := s.aead.Open(nil, rest[:NonceSize], rest[NonceSize:], magic)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

// IsSealed reports whether data carries the sealed-blob prefix.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}
