package metrics

import "testing"

func TestMetricsCounters(t *testing.T) {
	m := New()
	m.IncUpdateReceived()
	m.IncUpdateReceived()
	m.IncUpdateDropRedundant()
	m.IncUpdateDropStale()
	m.IncBroadcastRound()
	m.IncBroadcastSend()
	m.IncBroadcastSend()
	m.IncBroadcastSendFailure()
	m.IncPeerConnected()
	m.IncPeerConnected()
	m.IncPeerRemoved()
	snap := m.Snapshot()
	if snap.Updates.Received != 2 {
		t.Fatalf("expected received=2, got %d", snap.Updates.Received)
	}
	if snap.Updates.DropRedundant != 1 || snap.Updates.DropStale != 1 {
		t.Fatalf("unexpected drop counts: %+v", snap.Updates)
	}
	if snap.Broadcast.Rounds != 1 || snap.Broadcast.Sends != 2 || snap.Broadcast.SendFailures != 1 {
		t.Fatalf("unexpected broadcast counts: %+v", snap.Broadcast)
	}
	if snap.Peers.Connected != 2 || snap.Peers.Removed != 1 || snap.Peers.Current != 1 {
		t.Fatalf("unexpected peer counts: %+v", snap.Peers)
	}
}
