package service

import (
	"context"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-warden/audio"
	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/game/session"
	"github.com/beka-birhanu/vinom-warden/infrastruture/timeline"
	"github.com/beka-birhanu/vinom-warden/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, maxSessions int) (*SessionManager, *timeline.MemoryTimeline) {
	t.Helper()
	tl := timeline.NewMemoryTimeline()
	m, err := NewSessionManager(&SessionManagerConfig{
		MaxSessions: maxSessions,
		Timeline:    tl,
		NewAlarm:    func() game.Alarm { return audio.Nop{} },
		Logger:      logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(m.StopAll)
	return m, tl
}

func fastScenario() *config.Scenario {
	sc := config.DefaultScenario()
	sc.Guards.TickInterval = time.Millisecond
	return sc
}

func TestSessionLifecycle(t *testing.T) {
	m, _ := newManager(t, 2)
	owner := uuid.New()

	id, err := m.NewSession(context.Background(), owner, fastScenario())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	require.Eventually(t, func() bool {
		st, err := m.Status(id)
		return err == nil && st.Running && st.Ticks >= 3
	}, 2*time.Second, time.Millisecond)

	rows, err := m.Layout(id)
	require.NoError(t, err)
	assert.Len(t, rows, 41)

	pos := game.Vec2{X: 1, Z: 1}
	require.NoError(t, m.Command(id, owner, session.Command{Position: &pos}))
	st, err := m.Status(id)
	require.NoError(t, err)
	assert.Equal(t, pos, st.Intruder.Position)

	stranger := uuid.New()
	assert.ErrorIs(t, m.Command(id, stranger, session.Command{}), ErrNotOwner)
	assert.ErrorIs(t, m.Stop(id, stranger), ErrNotOwner)

	require.NoError(t, m.Stop(id, owner))
	assert.Equal(t, 0, m.Count())
	_, err = m.Status(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Stop(id, owner), ErrSessionNotFound)
}

func TestSessionLimit(t *testing.T) {
	m, _ := newManager(t, 1)
	_, err := m.NewSession(context.Background(), uuid.New(), fastScenario())
	require.NoError(t, err)

	_, err = m.NewSession(context.Background(), uuid.New(), fastScenario())
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestSessionRejectsInvalidScenario(t *testing.T) {
	m, _ := newManager(t, 1)
	sc := fastScenario()
	sc.Guards.Patrollers, sc.Guards.Reserves = 0, 0

	_, err := m.NewSession(context.Background(), uuid.New(), sc)
	assert.ErrorIs(t, err, config.ErrInvalidScenario)
	assert.Equal(t, 0, m.Count())
}

func TestTransitionsRecorded(t *testing.T) {
	m, tl := newManager(t, 1)
	id, err := m.NewSession(context.Background(), uuid.New(), fastScenario())
	require.NoError(t, err)

	spotted := guard.Transition{SquadID: id.String(), From: guard.Patrol, To: guard.Attack, Tick: 7, Agent: 1}
	m.record(id.String(), spotted)

	require.Eventually(t, func() bool {
		ts, err := tl.Range(context.Background(), id.String())
		return err == nil && len(ts) > 0
	}, time.Second, time.Millisecond)

	ts, err := m.Transitions(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, ts, spotted)

	_, err = m.Transitions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStopAll(t *testing.T) {
	m, tl := newManager(t, 2)
	id, err := m.NewSession(context.Background(), uuid.New(), fastScenario())
	require.NoError(t, err)

	m.record(id.String(), guard.Transition{Tick: 1})
	m.StopAll()
	m.StopAll()

	ts, err := tl.Range(context.Background(), id.String())
	require.NoError(t, err)
	assert.NotEmpty(t, ts)

	_, err = m.NewSession(context.Background(), uuid.New(), fastScenario())
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestPurge(t *testing.T) {
	m, tl := newManager(t, 1)
	owner := uuid.New()
	id, err := m.NewSession(context.Background(), owner, fastScenario())
	require.NoError(t, err)

	marker := guard.Transition{SquadID: "marker", Tick: 99}
	m.record(id.String(), marker)
	require.Eventually(t, func() bool {
		ts, _ := tl.Range(context.Background(), id.String())
		return len(ts) > 0
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, m.Purge(context.Background(), id, uuid.New()), ErrNotOwner)
	require.NoError(t, m.Purge(context.Background(), id, owner))
	assert.Equal(t, 0, m.Count())

	ts, err := tl.Range(context.Background(), id.String())
	require.NoError(t, err)
	assert.NotContains(t, ts, marker)
}
