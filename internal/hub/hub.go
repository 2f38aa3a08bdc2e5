// Package hub implements the relay: it accepts peer connections, tracks the
// most recently produced clipboard value, and fans it out to every peer that
// does not yet hold it.
package hub

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rimgik/clipper/internal/crypto"
	"github.com/rimgik/clipper/internal/debuglog"
	"github.com/rimgik/clipper/internal/metrics"
	"github.com/rimgik/clipper/internal/proto"
)

type Hub struct {
	st     *state
	bcast  *Broadcaster
	m      *metrics.Metrics
	closed atomic.Bool

	lisMu sync.Mutex
	lis   net.Listener
}

func New(m *metrics.Metrics) *Hub {
	if m == nil {
		m = metrics.New()
	}
	st := &state{current: proto.EmptyUpdate()}
	return &Hub{
		st:    st,
		bcast: newBroadcaster(st, m),
		m:     m,
	}
}

// Metrics exposes the hub's counters.
func (h *Hub) Metrics() *metrics.Metrics {
	return h.m
}

// Current returns a snapshot of the globally latest update.
func (h *Hub) Current() proto.Update {
	return h.st.snapshot()
}

// PeerCount reports the number of registered connections.
func (h *Hub) PeerCount() int {
	h.st.mu.RLock()
	defer h.st.mu.RUnlock()
	return len(h.st.conns)
}

// Serve accepts connections until the listener fails or the hub is closed.
// Accept errors for individual connections are not possible here; anything
// returned by Accept is a listener-level failure.
func (h *Hub) Serve(l net.Listener) error {
	h.lisMu.Lock()
	h.lis = l
	h.lisMu.Unlock()
	debuglog.Logf("hub listening on %s", l.Addr())
	for {
		nc, err := l.Accept()
		if err != nil {
			if h.closed.Load() {
				return nil
			}
			return err
		}
		go h.Handle(nc)
	}
}

// Handle runs the full lifetime of one accepted connection: descriptor
// exchange, optional key exchange, registration, and the receive loop. It
// returns when the connection dies. Errors never escape to other
// connections.
func (h *Hub) Handle(nc net.Conn) {
	c, err := h.accept(nc)
	if err != nil {
		debuglog.Debugf("connection from %s rejected: %v", nc.RemoteAddr(), err)
		_ = nc.Close()
		return
	}
	debuglog.Logf("peer %s connected (origin=%s, encrypted=%t)", c.id, c.origin, c.key != nil)

	// A late joiner holds nothing yet; one sweep brings it up to the current
	// global value without waiting for the next inbound update.
	h.bcast.Broadcast()

	h.serve(c)
}

// accept performs the descriptor and key exchanges and registers the record.
// Handshake failure tears the connection down before it is ever registered.
func (h *Hub) accept(nc net.Conn) (*Conn, error) {
	desc, err := proto.ReadSessionDescriptor(nc)
	if err != nil {
		return nil, fmt.Errorf("read session descriptor: %w", err)
	}

	var key *crypto.SharedKey
	if desc.Encrypted {
		key, err = crypto.AcceptKeyExchange(nc)
		if err != nil {
			return nil, fmt.Errorf("key exchange: %w", err)
		}
	}

	c := &Conn{
		id:        uuid.NewString(),
		origin:    desc.Origin,
		nc:        nc,
		key:       key,
		lastKnown: proto.EmptyUpdate(),
	}
	h.st.add(c)
	h.m.IncPeerConnected()
	return c, nil
}

// serve is the connection's receive loop. Protocol violations and transport
// failures are fatal to this connection only; the record is deregistered and
// every other peer keeps its service.
func (h *Hub) serve(c *Conn) {
	for {
		u, err := proto.ReadUpdate(c.nc, c.key)
		if err != nil {
			debuglog.Logf("peer %s disconnected: %v", c.id, err)
			_ = c.nc.Close()
			if h.st.drop(c) {
				h.m.IncPeerRemoved()
			}
			return
		}
		if u.IsEmpty() {
			continue
		}
		h.observe(c, u)
	}
}

// observe applies one inbound update: redundant resends leave everything
// untouched, anything else advances the sender's record, and an update
// strictly greater than the global cell replaces it and triggers a
// broadcast round. The sender's record was already advanced, so the sweep
// never echoes the update back at it.
func (h *Hub) observe(c *Conn, u proto.Update) {
	h.m.IncUpdateReceived()
	if !c.advance(u) {
		debuglog.Debugf("peer %s resent %s", c.id, u)
		h.m.IncUpdateDropRedundant()
		return
	}

	h.st.cellMu.Lock()
	if !h.st.current.Less(u) {
		h.st.cellMu.Unlock()
		debuglog.Debugf("peer %s sent stale %s", c.id, u)
		h.m.IncUpdateDropStale()
		return
	}
	h.st.current = u
	h.st.cellMu.Unlock()

	debuglog.Logf("peer %s advanced global value to %s", c.id, u)
	h.bcast.Broadcast()
}

// Close tears the hub down: the broadcaster's back-reference is cleared
// first so in-flight sweeps see the hub as gone, then the listener and every
// connection are closed.
func (h *Hub) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.bcast.detach()

	h.lisMu.Lock()
	if h.lis != nil {
		_ = h.lis.Close()
	}
	h.lisMu.Unlock()

	h.st.mu.Lock()
	conns := h.st.conns
	h.st.conns = nil
	h.st.mu.Unlock()
	for _, c := range conns {
		_ = c.nc.Close()
	}
}
