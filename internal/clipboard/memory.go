package clipboard

import (
	"sync"

	"github.com/rimgik/clipper/internal/proto"
)

// Memory is an in-process clipboard for tests and headless environments.
type Memory struct {
	mu      sync.Mutex
	current *proto.Payload
	applied []*proto.Payload
}

func NewMemory() *Memory {
	return &Memory{}
}

// Set simulates a local copy.
func (m *Memory) Set(p *proto.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p
}

func (m *Memory) Current() (*proto.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, nil
}

// Apply records the payload and makes it the current value, the way writing
// the native clipboard would.
func (m *Memory) Apply(p *proto.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p
	m.applied = append(m.applied, p)
	return nil
}

// Applied returns every payload applied so far, oldest first.
func (m *Memory) Applied() []*proto.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*proto.Payload, len(m.applied))
	copy(out, m.applied)
	return out
}
