// Package crypto implements the optional encrypted channel: an ephemeral
// X25519 exchange run once per connection and an XChaCha20-Poly1305 box used
// for every framed blob afterwards.
package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/sha3"
)

// PublicKeySize is the exact number of raw bytes each side writes onto the
// connection during the key exchange.
const PublicKeySize = 32

// Ephemeral is a one-shot X25519 key pair. It exists only for the duration of
// a single key exchange and is destroyed after the shared key is derived.
type Ephemeral struct {
	priv      *ecdh.PrivateKey
	pub       []byte
	destroyed bool
}

func GenerateEphemeral() (*Ephemeral, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	pub := make([]byte, PublicKeySize)
	copy(pub, priv.PublicKey().Bytes())
	return &Ephemeral{priv: priv, pub: pub}, nil
}

func (e *Ephemeral) String() string {
	return "Ephemeral{REDACTED}"
}

func (e *Ephemeral) GoString() string {
	return "crypto.Ephemeral{REDACTED}"
}

func (e *Ephemeral) Public() ([]byte, error) {
	if e == nil || e.destroyed {
		return nil, errors.New("ephemeral key destroyed")
	}
	out := make([]byte, len(e.pub))
	copy(out, e.pub)
	return out, nil
}

// Shared computes the raw X25519 shared secret with the peer's public key.
func (e *Ephemeral) Shared(peerPub []byte) ([]byte, error) {
	if e == nil || e.destroyed {
		return nil, errors.New("ephemeral key destroyed")
	}
	if len(peerPub) != PublicKeySize {
		return nil, errors.New("bad peer public key size")
	}
	pub, err := ecdh.X25519().NewPublicKey(peerPub)
	if err != nil {
		return nil, err
	}
	return e.priv.ECDH(pub)
}

func (e *Ephemeral) Destroy() {
	if e == nil || e.destroyed {
		return
	}
	for i := range e.pub {
		e.pub[i] = 0
	}
	e.priv = nil
	e.destroyed = true
}

// Digest is the content fingerprint used by the peer's change detector.
func Digest(b []byte) [32]byte {
	return sha3.Sum256(b)
}
