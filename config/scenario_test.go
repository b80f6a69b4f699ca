package config

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/game/perception"
	"github.com/beka-birhanu/vinom-warden/game/target"
	"github.com/beka-birhanu/vinom-warden/game/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScenario(t *testing.T) {
	s := DefaultScenario()
	require.NoError(t, s.Validate())

	w, err := world.Compose(s.World.TotalWidth, s.World.TotalHeight, s.World.Mazes, s.WorldOptions(), rand.New(rand.NewSource(s.Seed)))
	require.NoError(t, err)
	assert.Equal(t, (14+2*3)*2+1, w.Width)

	table, err := s.ViewTable()
	require.NoError(t, err)
	assert.Equal(t, perception.DefaultViewTable(), table)

	cfg, err := s.SquadConfig(w.SpawnArea(), w.Bounds())
	require.NoError(t, err)
	assert.Len(t, cfg.HuntStages, 4)
	assert.Equal(t, guard.StopOnHuntEntry, cfg.AlarmPolicy)
	assert.Equal(t, float64(w.Bounds().Extent()), cfg.HuntStages[3].Radius)

	assert.Equal(t, 10, s.SpawnConfig().Patrollers+s.SpawnConfig().Reserves)
}

func TestParseScenario(t *testing.T) {
	doc := `
seed: 42
world:
  total_width: 6
  total_height: 6
  wilderness: 1
  loops: 2
  mazes:
    - {start_x: 0, start_z: 0, length_x: 6, length_z: 6, courtyard_size: 2, num_exits: 2}
guards:
  patrollers: 3
  reserves: 0
  attack_cooldown: 1500ms
  alarm_policy: first_stage
  view_distances: {0: 1, 1: 2, 2: 3, 3: 4, 4: 5, 5: 6}
  hunt_stages:
    - {duration: 5s, radius: 2}
    - {duration: 10s, radius: 8}
intruder:
  stance: crouching
  night: true
`
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, int64(42), s.Seed)
	require.Len(t, s.World.Mazes, 1)
	assert.Equal(t, 2, s.World.Mazes[0].NumExits)
	assert.Equal(t, 1500*time.Millisecond, s.Guards.AttackCooldown)
	assert.Equal(t, guard.DefaultTimeToLosePlayer, s.Guards.TimeToLosePlayer)
	assert.True(t, s.Intruder.Night)

	stance, err := s.IntruderStance()
	require.NoError(t, err)
	assert.Equal(t, target.Crouching, stance)

	table, err := s.ViewTable()
	require.NoError(t, err)
	assert.Equal(t, 6.0, table[5])

	cfg, err := s.SquadConfig(game.Rect{MaxX: 20, MaxZ: 20}, game.Rect{MaxX: 40, MaxZ: 40})
	require.NoError(t, err)
	assert.Equal(t, guard.StopAfterFirstStage, cfg.AlarmPolicy)
	assert.Equal(t, []guard.HuntStage{{Duration: 5 * time.Second, Radius: 2}, {Duration: 10 * time.Second, Radius: 8}}, cfg.HuntStages)
}

func TestParseScenarioRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "world: ["},
		{"no mazes", "world: {mazes: []}"},
		{"no guards", "guards: {patrollers: 0, reserves: 0}"},
		{"negative wilderness", "world: {wilderness: -1}"},
		{"bad alarm policy", "guards: {alarm_policy: never}"},
		{"incomplete view table", "guards: {view_distances: {0: 1, 1: 2}}"},
		{"shrinking hunt radius", "guards: {hunt_stages: [{duration: 1s, radius: 5}, {duration: 1s, radius: 3}]}"},
		{"bad stance", "intruder: {stance: prone}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScenario(), s)

	data, err := DefaultScenario().Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultScenario(), loaded)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOverride(t *testing.T) {
	base := DefaultScenario()
	base.Seed = 7

	out, err := base.Override([]byte("guards: {patrollers: 2, reserves: 1}"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Seed)
	assert.Equal(t, 2, out.Guards.Patrollers)
	assert.Equal(t, base.World, out.World)

	assert.Equal(t, 8, base.Guards.Patrollers)

	_, err = base.Override([]byte("guards: {patrollers: -1}"))
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestZeroAttackSurvivesSquadConfig(t *testing.T) {
	s, err := ParseScenario([]byte("guards: {attack_damage: 0, attack_cooldown: 0s}"))
	require.NoError(t, err)

	cfg, err := s.SquadConfig(game.Rect{MaxX: 20, MaxZ: 20}, game.Rect{MaxX: 40, MaxZ: 40})
	require.NoError(t, err)
	assert.Zero(t, cfg.AttackDamage)
	assert.Zero(t, cfg.AttackCooldown)
}
