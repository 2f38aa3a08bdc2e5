package proto

import (
	"io"

	"github.com/rimgik/clipper/internal/crypto"
)

// WriteUpdate serializes, optionally seals, frames and writes one update.
// A nil key leaves the body cleartext.
func WriteUpdate(w io.Writer, u Update, key *crypto.SharedKey) error {
	body, err := EncodeUpdate(u)
	if err != nil {
		return err
	}
	if key != nil {
		body, err = key.Seal(body)
		if err != nil {
			return err
		}
	}
	return WriteFrame(w, body)
}

// ReadUpdate reads one frame, opens it when a key is present, and decodes the
// update. Open failure means a tampered or corrupted box and is fatal to the
// connection, same as a malformed body.
func ReadUpdate(r io.Reader, key *crypto.SharedKey) (Update, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return Update{}, err
	}
	if key != nil {
		body, err = key.Open(body)
		if err != nil {
			return Update{}, err
		}
	}
	return DecodeUpdate(body)
}
