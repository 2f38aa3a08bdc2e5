package crypto

import (
	"fmt"
	"io"
)

// The key exchange runs immediately after the session descriptor and before
// any update frame. Roles are fixed: the accepting side writes its raw
// 32-byte public key first, the connecting side answers with its own. Both
// public keys travel unframed. Any short read or write tears the connection
// down; there is no retry.

// AcceptKeyExchange runs the accepting side of the exchange.
func AcceptKeyExchange(rw io.ReadWriter) (*SharedKey, error) {
	eph, err := GenerateEphemeral()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral: %w", err)
	}
	defer eph.Destroy()

	pub, err := eph.Public()
	if err != nil {
		return nil, err
	}
	if _, err := rw.Write(pub); err != nil {
		return nil, fmt.Errorf("send public key: %w", err)
	}

	peerPub := make([]byte, PublicKeySize)
	if _, err := io.ReadFull(rw, peerPub); err != nil {
		return nil, fmt.Errorf("read peer public key: %w", err)
	}
	return deriveShared(eph, peerPub)
}

// InitiateKeyExchange runs the connecting side of the exchange.
func InitiateKeyExchange(rw io.ReadWriter) (*SharedKey, error) {
	peerPub := make([]byte, PublicKeySize)
	if _, err := io.ReadFull(rw, peerPub); err != nil {
		return nil, fmt.Errorf("read peer public key: %w", err)
	}

	eph, err := GenerateEphemeral()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral: %w", err)
	}
	defer eph.Destroy()

	pub, err := eph.Public()
	if err != nil {
		return nil, err
	}
	if _, err := rw.Write(pub); err != nil {
		return nil, fmt.Errorf("send public key: %w", err)
	}
	return deriveShared(eph, peerPub)
}

func deriveShared(eph *Ephemeral, peerPub []byte) (*SharedKey, error) {
	secret, err := eph.Shared(peerPub)
	if err != nil {
		return nil, fmt.Errorf("derive shared secret: %w", err)
	}
	return NewSharedKey(secret)
}
