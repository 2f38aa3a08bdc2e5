package hub

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/rimgik/clipper/internal/crypto"
	"github.com/rimgik/clipper/internal/proto"
)

// Conn is the hub-side record for one peer: the network connection, the
// channel key negotiated at connect time (nil when cleartext), and the last
// update the peer is confirmed to hold. lastKnown is written by the
// connection's own receive loop and by the broadcast sweep, which run on
// different goroutines, so it gets its own lock scoped to this record.
type Conn struct {
	id     string
	origin string
	nc     net.Conn
	key    *crypto.SharedKey
	gone   atomic.Bool

	mu        sync.RWMutex
	lastKnown proto.Update
}

func (c *Conn) LastKnown() proto.Update {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastKnown
}

// advance records an inbound update. It reports false when the update is
// value-equal to the record, meaning the peer resent what it already holds.
func (c *Conn) advance(u proto.Update) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKnown.Equal(u) {
		return false
	}
	c.lastKnown = u
	return true
}

// push sends u to the peer unless the record already matches it. Only this
// record's lock is held while the network send blocks, so a slow peer never
// stalls updates flowing between other peers. A successful send advances
// lastKnown so the next sweep skips this record.
func (c *Conn) push(u proto.Update) (sent bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKnown.Equal(u) {
		return false, nil
	}
	if err := proto.WriteUpdate(c.nc, u, c.key); err != nil {
		return false, err
	}
	c.lastKnown = u
	return true, nil
}
