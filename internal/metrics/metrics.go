package metrics

import (
	"encoding/json"
	"os"
	"sync/atomic"
	"time"
)

type Snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Updates     UpdateMetrics    `json:"updates"`
	Broadcast   BroadcastMetrics `json:"broadcast"`
	Peers       PeerMetrics      `json:"peers"`
}

type UpdateMetrics struct {
	Received      uint64 `json:"received"`
	DropRedundant uint64 `json:"drop_redundant"`
	DropStale     uint64 `json:"drop_stale"`
}

type BroadcastMetrics struct {
	Rounds       uint64 `json:"rounds"`
	Sends        uint64 `json:"sends"`
	SendFailures uint64 `json:"send_failures"`
}

type PeerMetrics struct {
	Connected uint64 `json:"connected"`
	Removed   uint64 `json:"removed"`
	Current   int64  `json:"current"`
}

type Metrics struct {
	updatesReceived     atomic.Uint64
	updateDropRedundant atomic.Uint64
	updateDropStale     atomic.Uint64
	broadcastRounds     atomic.Uint64
	broadcastSends      atomic.Uint64
	broadcastFailures   atomic.Uint64
	peersConnected      atomic.Uint64
	peersRemoved        atomic.Uint64
	peersCurrent        atomic.Int64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncUpdateReceived() {
	m.updatesReceived.Add(1)
}

func (m *Metrics) IncUpdateDropRedundant() {
	m.updateDropRedundant.Add(1)
}

func (m *Metrics) IncUpdateDropStale() {
	m.updateDropStale.Add(1)
}

func (m *Metrics) IncBroadcastRound() {
	m.broadcastRounds.Add(1)
}

func (m *Metrics) IncBroadcastSend() {
	m.broadcastSends.Add(1)
}

func (m *Metrics) IncBroadcastSendFailure() {
	m.broadcastFailures.Add(1)
}

func (m *Metrics) IncPeerConnected() {
	m.peersConnected.Add(1)
	m.peersCurrent.Add(1)
}

func (m *Metrics) IncPeerRemoved() {
	m.peersRemoved.Add(1)
	m.peersCurrent.Add(-1)
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GeneratedAt: time.Now().UTC(),
		Updates: UpdateMetrics{
			Received:      m.updatesReceived.Load(),
			DropRedundant: m.updateDropRedundant.Load(),
			DropStale:     m.updateDropStale.Load(),
		},
		Broadcast: BroadcastMetrics{
			Rounds:       m.broadcastRounds.Load(),
			Sends:        m.broadcastSends.Load(),
			SendFailures: m.broadcastFailures.Load(),
		},
		Peers: PeerMetrics{
			Connected: m.peersConnected.Load(),
			Removed:   m.peersRemoved.Load(),
			Current:   m.peersCurrent.Load(),
		},
	}
}

func (m *Metrics) WriteSnapshot(path string) error {
	if path == "" {
		return nil
	}
	snap := m.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
