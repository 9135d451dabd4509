package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return hex.EncodeToString(key)
}

func newTestSealer(t *testing.T, key string) *Sealer {
	t.Helper()
	s, err := NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer failed: %v", err)
	}
	return s
}

func TestSealer_SealOpen(t *testing.T) {
	s := newTestSealer(t, testKey())
	plaintext := []byte("title: Design schema\nestimatedDuration: 90\n")

	sealed := s.Seal(plaintext)

	if bytes.Contains(sealed, []byte("Design schema")) {
		t.Error("sealed data should not contain the plaintext")
	}
	if !IsSealed(sealed) {
		t.Error("sealed data should carry the prefix")
	}

	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Open = %q, want %q", opened, plaintext)
	}
}

func TestSealer_Deterministic(t *testing.T) {
	s := newTestSealer(t, testKey())

	a := s.Seal([]byte("same content"))
	b := s.Seal([]byte("same content"))
	c := s.Seal([]byte("other content"))

	if !bytes.Equal(a, b) {
		t.Error("sealing the same content twice should give the same bytes")
	}
	if bytes.Equal(a[:len(magic)+NonceSize], c[:len(magic)+NonceSize]) {
		t.Error("different content should use a different nonce")
	}

	// A second sealer with the same key produces the same blob
	again := newTestSealer(t, testKey())
	if !bytes.Equal(a, again.Seal([]byte("same content"))) {
		t.Error("same key should give the same blob across sealers")
	}
}

func TestSealer_EmptyPlaintext(t *testing.T) {
	s := newTestSealer(t, testKey())

	opened, err := s.Open(s.Seal(nil))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("Open = %q, want empty", opened)
	}
}

func TestNewSealer_InvalidKey(t *testing.T) {
	for _, key := range []string{"", "abcd", "zz" + testKey()[2:], testKey() + "00"} {
		if _, err := NewSealer(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("NewSealer(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestSealer_OpenErrors(t *testing.T) {
	s := newTestSealer(t, testKey())
	sealed := s.Seal([]byte("secret"))

	if _, err := s.Open([]byte("title: plain\n")); !errors.Is(err, ErrNotSealed) {
		t.Errorf("Open(plain) error = %v, want ErrNotSealed", err)
	}
	if _, err := s.Open(sealed[:len(magic)+3]); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Open(truncated) error = %v, want ErrOpenFailed", err)
	}

	tampered := bytes.Clone(sealed)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := s.Open(tampered); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Open(tampered) error = %v, want ErrOpenFailed", err)
	}

	otherKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	other := newTestSealer(t, otherKey)
	if _, err := other.Open(sealed); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Open with other key error = %v, want ErrOpenFailed", err)
	}
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	b, _ := GenerateKey()

	if len(a) != 2*KeySize {
		t.Errorf("len(key) = %d, want %d", len(a), 2*KeySize)
	}
	if a == b {
		t.Error("keys should differ")
	}
	if _, err := NewSealer(a); err != nil {
		t.Errorf("generated key rejected: %v", err)
	}
}
