package proto

import (
	"encoding/json"
	"fmt"
	"io"
)

// SessionDescriptor is exchanged once per connection, cleartext, immediately
// after connect. Origin is carried for diagnostics only; Encrypted declares
// whether the connecting side wants the channel upgraded.
type SessionDescriptor struct {
	Origin    string `json:"origin"`
	Encrypted bool   `json:"encrypted"`
}

func EncodeSessionDescriptor(d SessionDescriptor) ([]byte, error) {
	return json.Marshal(d)
}

func DecodeSessionDescriptor(data []byte) (SessionDescriptor, error) {
	var d SessionDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return SessionDescriptor{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return d, nil
}

// WriteSessionDescriptor frames and writes one descriptor, never sealed.
func WriteSessionDescriptor(w io.Writer, d SessionDescriptor) error {
	body, err := EncodeSessionDescriptor(d)
	if err != nil {
		return err
	}
	return WriteFrame(w, body)
}

func ReadSessionDescriptor(r io.Reader) (SessionDescriptor, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return SessionDescriptor{}, err
	}
	return DecodeSessionDescriptor(body)
}
