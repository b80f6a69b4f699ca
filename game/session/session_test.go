package session

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-warden/audio"
	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, sc *config.Scenario) *Session {
	t.Helper()
	s, err := New(uuid.New(), uuid.New(), sc, Deps{Alarm: audio.Nop{}, Logger: logger.Discard()})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	sc := config.DefaultScenario()
	s := newSession(t, sc)

	st := s.Status()
	assert.False(t, st.Running)
	assert.Equal(t, uint64(0), st.Ticks)
	assert.Equal(t, guard.Patrol.String(), st.Squad.State)
	assert.Len(t, st.Squad.Agents, sc.Guards.Patrollers+sc.Guards.Reserves)
	assert.Equal(t, sc.Intruder.MaxHealth, st.Intruder.Health)
	assert.True(t, st.Intruder.Daytime)
	assert.True(t, s.World().Walkable(st.Intruder.Position.Tile()))

	for _, a := range st.Squad.Agents {
		assert.True(t, s.World().Walkable(a.Position.Tile()), "agent %d at %v", a.ID, a.Position)
	}
}

func TestNewRejects(t *testing.T) {
	_, err := New(uuid.New(), uuid.New(), nil, Deps{})
	assert.ErrorIs(t, err, ErrNilScenario)

	sc := config.DefaultScenario()
	sc.World.Mazes[0].StartX = 20
	_, err = New(uuid.New(), uuid.New(), sc, Deps{Alarm: audio.Nop{}, Logger: logger.Discard()})
	assert.ErrorIs(t, err, game.ErrOutOfBounds)
}

func TestDeterministic(t *testing.T) {
	a := newSession(t, config.DefaultScenario())
	b := newSession(t, config.DefaultScenario())
	assert.Equal(t, a.World().Codes(), b.World().Codes())

	for range 30 {
		a.Step()
		b.Step()
	}
	assert.Equal(t, a.Status().Squad.Agents, b.Status().Squad.Agents)
	assert.Equal(t, uint64(30), a.Status().Ticks)

	w, err := Compose(config.DefaultScenario())
	require.NoError(t, err)
	assert.Equal(t, a.World().Codes(), w.Codes())
}

func TestApply(t *testing.T) {
	s := newSession(t, config.DefaultScenario())

	pos := game.Vec2{X: 1, Z: 1}
	crouch := "crouch"
	night := true
	require.NoError(t, s.Apply(Command{Position: &pos, Stance: &crouch, Night: &night}))

	st := s.Status().Intruder
	assert.Equal(t, pos, st.Position)
	assert.Equal(t, "crouch", st.Stance)
	assert.False(t, st.Daytime)

	bad := "prone"
	assert.ErrorIs(t, s.Apply(Command{Stance: &bad, Position: &game.Vec2{X: 2, Z: 2}}), ErrBadStance)
	assert.Equal(t, pos, s.Status().Intruder.Position)
}

func TestStartStop(t *testing.T) {
	sc := config.DefaultScenario()
	sc.Guards.TickInterval = time.Millisecond
	s := newSession(t, sc)

	s.Start()
	require.Eventually(t, func() bool { return s.Status().Ticks >= 3 }, 2*time.Second, time.Millisecond)
	s.Stop()
	s.Stop()
	assert.False(t, s.Status().Running)
}
