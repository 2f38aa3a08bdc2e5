package hub

import (
	"sync"
	"sync/atomic"

	"github.com/rimgik/clipper/internal/debuglog"
	"github.com/rimgik/clipper/internal/metrics"
	"github.com/rimgik/clipper/internal/proto"
)

// state is the hub-owned shared mutable state: the registry of live
// connection records and the cell holding the globally latest update. The
// two locks are independent so a broadcast sweep never serializes with
// unrelated per-connection bookkeeping.
type state struct {
	mu    sync.RWMutex
	conns []*Conn

	cellMu  sync.RWMutex
	current proto.Update
}

// add registers a record. Insertion takes the registry write lock, the same
// exclusive section the removal pass uses, so the two can never interleave
// within one sweep.
func (s *state) add(c *Conn) {
	s.mu.Lock()
	s.conns = append(s.conns, c)
	s.mu.Unlock()
}

// drop deregisters one record. The gone flag makes deregistration
// idempotent: a record can fail in its own receive loop and in a broadcast
// sweep at the same time, and only the first caller accounts for it.
// Removal is by identity rather than index, so it stays correct however the
// registry changed between the sweep and the removal pass.
func (s *state) drop(c *Conn) bool {
	if !c.gone.CompareAndSwap(false, true) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.conns {
		if rec == c {
			s.conns[i] = s.conns[len(s.conns)-1]
			s.conns = s.conns[:len(s.conns)-1]
			break
		}
	}
	return true
}

func (s *state) snapshot() proto.Update {
	s.cellMu.RLock()
	defer s.cellMu.RUnlock()
	return s.current
}

// Broadcaster fans the current global update out to every record that does
// not hold it yet. It reaches into hub state through a back-reference that
// is resolved at call time and cleared when the hub is torn down, so the
// broadcaster never keeps hub state alive on its own.
type Broadcaster struct {
	st atomic.Pointer[state]
	m  *metrics.Metrics
}

func newBroadcaster(st *state, m *metrics.Metrics) *Broadcaster {
	b := &Broadcaster{m: m}
	b.st.Store(st)
	return b
}

func (b *Broadcaster) detach() {
	b.st.Store(nil)
}

// Broadcast runs one sweep: snapshot the global update once, send it to
// every registered record whose last-known value differs, and reap records
// whose send failed. Removals are applied after the sweep, never during it.
func (b *Broadcaster) Broadcast() {
	st := b.st.Load()
	if st == nil {
		// Hub already torn down.
		return
	}
	snapshot := st.snapshot()
	b.m.IncBroadcastRound()
	debuglog.Debugf("broadcasting %s", snapshot)

	var failed []*Conn
	st.mu.RLock()
	for _, c := range st.conns {
		sent, err := c.push(snapshot)
		if err != nil {
			debuglog.Debugf("conn %s: send failed: %v", c.id, err)
			b.m.IncBroadcastSendFailure()
			failed = append(failed, c)
			continue
		}
		if sent {
			b.m.IncBroadcastSend()
		}
	}
	st.mu.RUnlock()

	// A failed send means disconnection, not a transient error: no resend,
	// no backoff, the record is reaped after the sweep.
	for _, c := range failed {
		_ = c.nc.Close()
		if st.drop(c) {
			b.m.IncPeerRemoved()
		}
	}
}
