package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the symmetric key length shared by both directions of one
	// connection.
	KeySize = chacha20poly1305.KeySize

	nonceSize = chacha20poly1305.NonceSizeX
)

// ErrOpenFailed reports a tampered or corrupted box. Fatal to the connection.
var ErrOpenFailed = errors.New("crypto: open failed")

// SharedKey seals and opens frame bodies for one connection. It is derived
// directly from the raw X25519 shared secret, never persisted, and read-only
// for both direction loops once derived.
type SharedKey struct {
	key [KeySize]byte
}

func NewSharedKey(secret []byte) (*SharedKey, error) {
	if len(secret) != KeySize {
		return nil, fmt.Errorf("bad key size: need %d", KeySize)
	}
	k := &SharedKey{}
	copy(k.key[:], secret)
	return k, nil
}

func (k *SharedKey) String() string {
	return "SharedKey{REDACTED}"
}

func (k *SharedKey) GoString() string {
	return "crypto.SharedKey{REDACTED}"
}

// Seal encrypts-and-authenticates plaintext with a fresh random nonce. The
// box layout is nonce || ciphertext; the frame's length prefix covers the
// whole box.
func (k *SharedKey) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(k.key[:])
	if err != nil {
		return nil, err
	}
	box := make([]byte, nonceSize, nonceSize+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(box[:nonceSize]); err != nil {
		return nil, err
	}
	return aead.Seal(box, box[:nonceSize], plaintext, nil), nil
}

// Open authenticates and decrypts one box produced by Seal.
func (k *SharedKey) Open(box []byte) ([]byte, error) {
	if len(box) < nonceSize {
		return nil, fmt.Errorf("%w: box too short", ErrOpenFailed)
	}
	aead, err := chacha20poly1305.NewX(k.key[:])
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, box[:nonceSize], box[nonceSize:], nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}
