// Package peer implements the client side of the sync: it pushes locally
// detected clipboard changes to the hub and applies values the hub pushes
// back.
package peer

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rimgik/clipper/internal/clipboard"
	"github.com/rimgik/clipper/internal/crypto"
	"github.com/rimgik/clipper/internal/debuglog"
	"github.com/rimgik/clipper/internal/proto"
	"github.com/rimgik/clipper/internal/transport"
)

// DefaultPollInterval is how often the clipboard source is checked for a new
// value. Polling, not events: at least one supported platform has no
// reliable clipboard change notification.
const DefaultPollInterval = 200 * time.Millisecond

type Config struct {
	Addr         string
	Transport    string
	Origin       string
	Encrypt      bool
	PollInterval time.Duration
	Source       clipboard.Source
	Sink         clipboard.Sink
}

// Session is one live connection to the hub. The send and receive loops
// share the connection and the channel key, nothing else.
type Session struct {
	conn net.Conn
	key  *crypto.SharedKey
	cfg  Config

	done      chan struct{}
	closeOnce sync.Once
}

// Connect dials the hub and prepares the session.
func Connect(cfg Config) (*Session, error) {
	nc, err := transport.Dial(cfg.Transport, cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Addr, err)
	}
	s, err := Attach(nc, cfg)
	if err != nil {
		_ = nc.Close()
		return nil, err
	}
	return s, nil
}

// Attach runs the session setup on an already established connection: the
// cleartext descriptor exchange, then the key exchange when encryption was
// requested.
func Attach(nc net.Conn, cfg Config) (*Session, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	desc := proto.SessionDescriptor{Origin: cfg.Origin, Encrypted: cfg.Encrypt}
	if err := proto.WriteSessionDescriptor(nc, desc); err != nil {
		return nil, fmt.Errorf("send session descriptor: %w", err)
	}
	var key *crypto.SharedKey
	if cfg.Encrypt {
		k, err := crypto.InitiateKeyExchange(nc)
		if err != nil {
			return nil, fmt.Errorf("key exchange: %w", err)
		}
		key = k
	}
	return &Session{conn: nc, key: key, cfg: cfg, done: make(chan struct{})}, nil
}

// Run drives both loops until one of them fails. There is no reconnect: the
// first failure closes the connection and is returned to the caller.
func (s *Session) Run() error {
	errc := make(chan error, 2)
	go func() { errc <- s.sendLoop() }()
	go func() { errc <- s.recvLoop() }()
	err := <-errc
	s.Close()
	return err
}

// Close stops the send loop and closes the connection, which unblocks the
// receive loop.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// sendLoop polls the clipboard source on a fixed interval and pushes every
// detected change as a fresh item. The first observation only primes the
// detector: whatever the clipboard held before the session started is not
// pushed.
func (s *Session) sendLoop() error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	var last [32]byte
	primed := false
	for {
		select {
		case <-s.done:
			return nil
		case <-ticker.C:
		}

		p, err := s.cfg.Source.Current()
		if err != nil {
			debuglog.Debugf("clipboard poll failed: %v", err)
			continue
		}
		digest := payloadDigest(p)
		if primed && digest == last {
			continue
		}
		changed := primed
		primed, last = true, digest
		if !changed || p == nil {
			continue
		}
		if !p.Transferable() {
			debuglog.Logf("skipping unsupported clipboard value: %s", p)
			continue
		}

		u := proto.NewItem(uint64(time.Now().UnixMilli()), p)
		debuglog.Debugf("sending %s", u)
		if err := proto.WriteUpdate(s.conn, u, s.key); err != nil {
			return fmt.Errorf("send %s: %w", u, err)
		}
	}
}

// recvLoop applies every pushed item to the clipboard sink. Empty updates
// carry no value and are skipped. Decode and apply failures are fatal.
func (s *Session) recvLoop() error {
	for {
		u, err := proto.ReadUpdate(s.conn, s.key)
		if err != nil {
			return fmt.Errorf("receive update: %w", err)
		}
		if u.IsEmpty() {
			continue
		}
		debuglog.Debugf("applying %s", u)
		if err := s.cfg.Sink.Apply(u.Payload); err != nil {
			return fmt.Errorf("apply %s: %w", u, err)
		}
	}
}

// payloadDigest fingerprints a payload for change detection. A nil payload
// ("no value") hashes to the zero digest.
func payloadDigest(p *proto.Payload) [32]byte {
	if p == nil {
		return [32]byte{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return [32]byte{}
	}
	return crypto.Digest(b)
}
