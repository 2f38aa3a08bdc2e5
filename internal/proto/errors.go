package proto

import "errors"

var (
	// ErrTruncatedStream reports a connection that closed in the middle of a
	// frame. Fatal to the connection.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrMalformedPayload reports a frame body that does not deserialize into
	// a known wire type. Fatal to the connection.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnsupportedPayload reports a value that must not enter the wire
	// protocol (folders, unknown payload kinds). Rejected at encode time.
	ErrUnsupportedPayload = errors.New("unsupported payload")

	// ErrFrameTooLarge reports a length prefix outside the accepted range.
	ErrFrameTooLarge = errors.New("frame too large")
)
