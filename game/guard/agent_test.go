package guard

import (
	"math/rand"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeading(t *testing.T) {
	var h Heading
	h.Face(game.Vec2{}, game.Vec2{X: 1})
	assert.True(t, h.Turning())
	assert.Equal(t, 90.0, h.Target())

	h.Step(250*time.Millisecond, 180)
	assert.InDelta(t, 45, h.Angle, 1e-9)

	h.Step(500*time.Millisecond, 180)
	assert.Equal(t, 90.0, h.Angle)
	assert.False(t, h.Turning())

	// From 10 the short way to 350 runs through 0.
	h.Angle = 10
	h.Face(game.Vec2{}, game.Vec2{X: -0.17364817766693033, Z: 0.984807753012208})
	h.Step(50*time.Millisecond, 180)
	assert.InDelta(t, 1, h.Angle, 1e-6)

	// Facing a point on top of the agent is ignored.
	var still Heading
	still.Face(game.Vec2{X: 2}, game.Vec2{X: 2})
	assert.False(t, still.Turning())
}

func TestParseAlarmPolicy(t *testing.T) {
	p, err := ParseAlarmPolicy("first_stage")
	require.NoError(t, err)
	assert.Equal(t, StopAfterFirstStage, p)

	p, err = ParseAlarmPolicy("")
	require.NoError(t, err)
	assert.Equal(t, StopOnHuntEntry, p)

	_, err = ParseAlarmPolicy("never")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultHuntStages(t *testing.T) {
	stages := DefaultHuntStages(40, 60)
	cfg := Config{HuntStages: stages}.WithDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4.0, stages[0].Radius)
	assert.Equal(t, 60.0, stages[3].Radius)
	assert.Equal(t, 30*time.Second, stages[3].Duration)
}

func TestWithDefaultsKeepsZeroAttack(t *testing.T) {
	cfg := Config{HuntStages: DefaultHuntStages(40, 60)}.WithDefaults()
	require.NoError(t, cfg.Validate())

	assert.Zero(t, cfg.AttackDamage)
	assert.Zero(t, cfg.AttackCooldown)
	assert.Equal(t, DefaultAttackDistance, cfg.AttackDistance)
	assert.Equal(t, DefaultTimeToLosePlayer, cfg.TimeToLosePlayer)
}

func TestSpawner(t *testing.T) {
	nav := newFakeNav()
	area := game.Rect{MinX: 2, MinZ: 2, MaxX: 30, MaxZ: 30}
	sp, err := NewSpawner(nav, area, rand.New(rand.NewSource(3)), SpawnConfig{Patrollers: 3, Reserves: 2})
	require.NoError(t, err)

	agents, err := sp.Spawn(10)
	require.NoError(t, err)
	require.Len(t, agents, 5)

	for i, a := range agents[:3] {
		assert.Equal(t, 10+i, a.ID)
		assert.Equal(t, Patroller, a.Kind)
		require.Len(t, a.Route, DefaultRouteLength)
		assert.Equal(t, a.Route[0], a.Position)
		for _, p := range a.Route {
			assert.True(t, area.Contains(p.Tile()), "route point %v outside spawn area", p)
		}
	}

	for _, a := range agents[3:] {
		assert.Equal(t, Reserve, a.Kind)
		assert.Equal(t, a.Home, a.Position)
		assert.Empty(t, a.Route)
	}
	assert.LessOrEqual(t, agents[3].Position.Dist(agents[4].Position), 2*DefaultReserveSpread*1.5)

	nav.resolveErr = game.ErrPathResolutionFailed
	nav.resolveCalls = 0
	_, err = sp.Spawn(0)
	assert.ErrorIs(t, err, game.ErrPathResolutionFailed)
	assert.Equal(t, DefaultRouteRetries, nav.resolveCalls)

	_, err = NewSpawner(nav, area, rand.New(rand.NewSource(3)), SpawnConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
