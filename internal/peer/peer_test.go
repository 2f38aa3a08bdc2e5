package peer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rimgik/clipper/internal/clipboard"
	"github.com/rimgik/clipper/internal/hub"
	"github.com/rimgik/clipper/internal/proto"
)

const waitFor = 5 * time.Second

// fakeHub is the server side of one session: it consumes the descriptor and
// collects every update the peer sends.
type fakeHub struct {
	conn net.Conn
	desc proto.SessionDescriptor
	got  chan proto.Update
}

func startSession(t *testing.T, cfg Config) (*Session, *fakeHub) {
	t.Helper()
	client, server := net.Pipe()
	f := &fakeHub{conn: server, got: make(chan proto.Update, 32)}

	descDone := make(chan error, 1)
	go func() {
		desc, err := proto.ReadSessionDescriptor(server)
		f.desc = desc
		descDone <- err
	}()

	s, err := Attach(client, cfg)
	require.NoError(t, err)
	require.NoError(t, <-descDone)
	t.Cleanup(s.Close)

	go func() {
		for {
			u, err := proto.ReadUpdate(f.conn, nil)
			if err != nil {
				return
			}
			f.got <- u
		}
	}()
	return s, f
}

func (f *fakeHub) expectText(t *testing.T, want string) {
	t.Helper()
	select {
	case u := <-f.got:
		require.False(t, u.IsEmpty())
		assert.Equal(t, want, u.Payload.Text)
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (f *fakeHub) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case u := <-f.got:
		t.Fatalf("unexpected update %s", u)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSessionSendsDescriptor(t *testing.T) {
	_, f := startSession(t, Config{
		Origin: "darwin",
		Source: clipboard.NewMemory(),
		Sink:   clipboard.NewMemory(),
	})
	assert.Equal(t, "darwin", f.desc.Origin)
	assert.False(t, f.desc.Encrypted)
}

func TestSendLoopDetectsChange(t *testing.T) {
	src := clipboard.NewMemory()
	s, f := startSession(t, Config{
		PollInterval: 10 * time.Millisecond,
		Source:       src,
		Sink:         clipboard.NewMemory(),
	})
	go s.Run()

	// Let the first poll prime the change detector before copying.
	time.Sleep(100 * time.Millisecond)
	src.Set(proto.TextPayload("hello"))
	f.expectText(t, "hello")

	src.Set(proto.TextPayload("world"))
	f.expectText(t, "world")
}

func TestSendLoopSuppressesUnchangedValue(t *testing.T) {
	src := clipboard.NewMemory()
	s, f := startSession(t, Config{
		PollInterval: 10 * time.Millisecond,
		Source:       src,
		Sink:         clipboard.NewMemory(),
	})
	go s.Run()

	time.Sleep(100 * time.Millisecond)
	src.Set(proto.TextPayload("same"))
	f.expectText(t, "same")
	// Repeated polls of an unchanged value must not produce frames.
	f.expectNothing(t)
}

func TestSendLoopSkipsUnsupportedPayload(t *testing.T) {
	src := clipboard.NewMemory()
	s, f := startSession(t, Config{
		PollInterval: 10 * time.Millisecond,
		Source:       src,
		Sink:         clipboard.NewMemory(),
	})
	go s.Run()

	time.Sleep(100 * time.Millisecond)
	src.Set(&proto.Payload{Kind: proto.PayloadFolder})
	f.expectNothing(t)

	src.Set(proto.TextPayload("after"))
	f.expectText(t, "after")
}

func TestRecvLoopAppliesPushedItems(t *testing.T) {
	sink := clipboard.NewMemory()
	s, f := startSession(t, Config{
		Source: clipboard.NewMemory(),
		Sink:   sink,
	})
	go s.Run()

	require.NoError(t, proto.WriteUpdate(f.conn, proto.NewItem(1, proto.TextPayload("pushed")), nil))
	require.Eventually(t, func() bool {
		applied := sink.Applied()
		return len(applied) == 1 && applied[0].Text == "pushed"
	}, waitFor, 5*time.Millisecond)
}

func TestRecvLoopIgnoresEmptyUpdates(t *testing.T) {
	sink := clipboard.NewMemory()
	s, f := startSession(t, Config{
		Source: clipboard.NewMemory(),
		Sink:   sink,
	})
	go s.Run()

	require.NoError(t, proto.WriteUpdate(f.conn, proto.EmptyUpdate(), nil))
	require.NoError(t, proto.WriteUpdate(f.conn, proto.NewItem(1, proto.TextPayload("real")), nil))
	require.Eventually(t, func() bool {
		return len(sink.Applied()) == 1
	}, waitFor, 5*time.Millisecond)
}

func TestRunFatalOnMalformedFrame(t *testing.T) {
	s, f := startSession(t, Config{
		Source: clipboard.NewMemory(),
		Sink:   clipboard.NewMemory(),
	})
	errc := make(chan error, 1)
	go func() { errc <- s.Run() }()

	require.NoError(t, proto.WriteFrame(f.conn, []byte("garbage")))
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, proto.ErrMalformedPayload)
	case <-time.After(waitFor):
		t.Fatalf("session survived a malformed frame")
	}
}

func TestRunReturnsWhenHubVanishes(t *testing.T) {
	s, f := startSession(t, Config{
		Source: clipboard.NewMemory(),
		Sink:   clipboard.NewMemory(),
	})
	errc := make(chan error, 1)
	go func() { errc <- s.Run() }()

	require.NoError(t, f.conn.Close())
	select {
	case err := <-errc:
		require.Error(t, err)
	case <-time.After(waitFor):
		t.Fatalf("session survived hub disconnect")
	}
}

// End to end: two peers with in-memory clipboards on a real hub, encrypted
// channels on both, one copy converging onto the other machine.
func TestTwoPeersConvergeThroughHub(t *testing.T) {
	h := hub.New(nil)
	defer h.Close()

	attach := func(src, sink *clipboard.Memory) *Session {
		client, server := net.Pipe()
		go h.Handle(server)
		s, err := Attach(client, Config{
			Origin:       "test",
			Encrypt:      true,
			PollInterval: 10 * time.Millisecond,
			Source:       src,
			Sink:         sink,
		})
		require.NoError(t, err)
		t.Cleanup(s.Close)
		go s.Run()
		return s
	}

	clipA := clipboard.NewMemory()
	clipB := clipboard.NewMemory()
	attach(clipA, clipA)
	attach(clipB, clipB)

	time.Sleep(100 * time.Millisecond)
	clipA.Set(proto.TextPayload("synced"))

	require.Eventually(t, func() bool {
		p, _ := clipB.Current()
		return p != nil && p.Text == "synced"
	}, waitFor, 5*time.Millisecond)
}
