package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxFrameSize caps a single framed body. A clipboard value travels as one
	// blob, so anything larger indicates a corrupt or hostile stream.
	MaxFrameSize = 64 << 20

	lenPrefixSize = 8
)

// EncodeFrame prefixes body with its 8-byte big-endian length. The length
// counts exactly the bytes of the body; when the body is a sealed box the
// length covers the ciphertext.
func EncodeFrame(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty frame body")
	}
	if len(body) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	out := make([]byte, lenPrefixSize+len(body))
	binary.BigEndian.PutUint64(out[:lenPrefixSize], uint64(len(body)))
	copy(out[lenPrefixSize:], body)
	return out, nil
}

// WriteFrame writes one complete frame to w.
func WriteFrame(w io.Writer, body []byte) error {
	frame, err := EncodeFrame(body)
	if err != nil {
		return err
	}
	total := 0
	for total < len(frame) {
		n, err := w.Write(frame[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("short write")
		}
		total += n
	}
	return nil
}

// ReadFrame reads exactly one frame body from r. A clean EOF before the first
// length byte is returned as io.EOF so callers can tell an orderly close from
// a truncated stream.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [lenPrefixSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short length prefix", ErrTruncatedStream)
		}
		return nil, err
	}
	n := binary.BigEndian.Uint64(lenBuf[:])
	if n == 0 || n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	body := make([]byte, int(n))
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: frame body", ErrTruncatedStream)
	}
	return body, nil
}
