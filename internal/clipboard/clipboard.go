// Package clipboard is the boundary to the operating system's clipboard. The
// sync core only ever talks to the two interfaces here; everything platform
// specific stays behind them.
package clipboard

import "github.com/rimgik/clipper/internal/proto"

// Source reports the clipboard's current value. It is polled on a fixed
// interval, so it must be side-effect-free and cheap; comparing consecutive
// results is the caller's only change-detection mechanism. A nil payload
// means "no value".
type Source interface {
	Current() (*proto.Payload, error)
}

// Sink applies a received value to the local clipboard. It is invoked once
// per received item; failures are fatal to the peer process, never silently
// dropped.
type Sink interface {
	Apply(*proto.Payload) error
}
