// Package transport provides the byte-stream connections the wire protocol
// runs over: plain TCP by default, QUIC as an alternative for networks where
// UDP traverses better.
package transport

import (
	"fmt"
	"net"
)

const (
	KindTCP  = "tcp"
	KindQUIC = "quic"
)

// Listen binds the hub's listen address on the chosen transport.
func Listen(kind, addr string) (net.Listener, error) {
	switch kind {
	case "", KindTCP:
		return net.Listen("tcp", addr)
	case KindQUIC:
		return listenQUIC(addr)
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

// Dial connects a peer to the hub on the chosen transport.
func Dial(kind, addr string) (net.Conn, error) {
	switch kind {
	case "", KindTCP:
		return net.Dial("tcp", addr)
	case KindQUIC:
		return dialQUIC(addr)
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}
