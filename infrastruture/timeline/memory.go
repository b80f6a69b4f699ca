package timeline

import (
	"context"
	"sort"
	"sync"

	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/service/i"
)

var _ i.Timeline = &MemoryTimeline{}

// MemoryTimeline keeps transitions in process. Used when no Redis is configured.
type MemoryTimeline struct {
	sync.RWMutex
	sessions map[string][]guard.Transition
}

// NewMemoryTimeline creates an empty timeline.
func NewMemoryTimeline() *MemoryTimeline {
	return &MemoryTimeline{sessions: make(map[string][]guard.Transition)}
}

// Append adds a transition, keeping the session ordered by tick.
func (m *MemoryTimeline) Append(_ context.Context, sessionID string, t guard.Transition) error {
	m.Lock()
	defer m.Unlock()

	ts := m.sessions[sessionID]
	at := sort.Search(len(ts), func(i int) bool { return ts[i].Tick > t.Tick })
	ts = append(ts, guard.Transition{})
	copy(ts[at+1:], ts[at:])
	ts[at] = t
	m.sessions[sessionID] = ts
	return nil
}

// Range returns a copy of the session's transitions ordered by tick.
func (m *MemoryTimeline) Range(_ context.Context, sessionID string) ([]guard.Transition, error) {
	m.RLock()
	defer m.RUnlock()
	return append([]guard.Transition{}, m.sessions[sessionID]...), nil
}

// Drop forgets the session.
func (m *MemoryTimeline) Drop(_ context.Context, sessionID string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
