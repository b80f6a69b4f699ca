package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/game/perception"
	"github.com/beka-birhanu/vinom-warden/game/target"
	"github.com/beka-birhanu/vinom-warden/game/world"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is everything needed to build one session. It is read-only once loaded.
type Scenario struct {
	Seed     int64          `json:"seed" yaml:"seed"`
	World    WorldConfig    `json:"world" yaml:"world"`
	Guards   GuardConfig    `json:"guards" yaml:"guards"`
	Intruder IntruderConfig `json:"intruder" yaml:"intruder"`
}

// WorldConfig describes the maze layout.
type WorldConfig struct {
	TotalWidth      int          `json:"total_width" yaml:"total_width"`
	TotalHeight     int          `json:"total_height" yaml:"total_height"`
	Wilderness      int          `json:"wilderness" yaml:"wilderness"`
	Loops           int          `json:"loops" yaml:"loops"`
	CornerSmoothing bool         `json:"corner_smoothing" yaml:"corner_smoothing"`
	PlaceFinish     bool         `json:"place_finish" yaml:"place_finish"`
	Mazes           []world.Spec `json:"mazes" yaml:"mazes"`
}

// GuardConfig describes the squad and its tunables.
type GuardConfig struct {
	Patrollers       int               `json:"patrollers" yaml:"patrollers"`
	Reserves         int               `json:"reserves" yaml:"reserves"`
	RouteLength      int               `json:"route_length" yaml:"route_length"`
	Speed            float64           `json:"speed" yaml:"speed"`
	AttackDistance   float64           `json:"attack_distance" yaml:"attack_distance"`
	AttackDamage     int               `json:"attack_damage" yaml:"attack_damage"`
	AttackCooldown   time.Duration     `json:"attack_cooldown" yaml:"attack_cooldown"`
	TimeToLosePlayer time.Duration     `json:"time_to_lose_player" yaml:"time_to_lose_player"`
	TickInterval     time.Duration     `json:"tick_interval" yaml:"tick_interval"`
	AssignInterval   time.Duration     `json:"assign_interval" yaml:"assign_interval"`
	StationarySpeed  float64           `json:"stationary_speed" yaml:"stationary_speed"`
	PathRetries      int               `json:"path_retries" yaml:"path_retries"`
	ReserveLeash     float64           `json:"reserve_leash" yaml:"reserve_leash"`
	TurnSpeed        float64           `json:"turn_speed" yaml:"turn_speed"`
	HuntStages       []guard.HuntStage `json:"hunt_stages,omitempty" yaml:"hunt_stages,omitempty"`
	ViewDistances    map[int]float64   `json:"view_distances,omitempty" yaml:"view_distances,omitempty"`
	AlarmPolicy      string            `json:"alarm_policy" yaml:"alarm_policy"`
}

// IntruderConfig describes the intruder at session start.
type IntruderConfig struct {
	Start          *game.Vec2    `json:"start,omitempty" yaml:"start,omitempty"`
	MaxHealth      int           `json:"max_health" yaml:"max_health"`
	RefillAmount   int           `json:"refill_amount" yaml:"refill_amount"`
	RefillInterval time.Duration `json:"refill_interval" yaml:"refill_interval"`
	Night          bool          `json:"night" yaml:"night"`
	Stance         string        `json:"stance" yaml:"stance"`
}

// DefaultScenario is four 5x5 mazes in a 14x14 area inside a three cell wilderness, watched by ten guards.
func DefaultScenario() *Scenario {
	return &Scenario{
		Seed: 1,
		World: WorldConfig{
			TotalWidth:  14,
			TotalHeight: 14,
			Wilderness:  3,
			Mazes: []world.Spec{
				{StartX: 1, StartZ: 1, LengthX: 5, LengthZ: 5, CourtyardSize: 0, NumExits: 1},
				{StartX: 8, StartZ: 1, LengthX: 5, LengthZ: 5, CourtyardSize: 1, NumExits: 1},
				{StartX: 1, StartZ: 8, LengthX: 5, LengthZ: 5, CourtyardSize: 1, NumExits: 1},
				{StartX: 8, StartZ: 8, LengthX: 5, LengthZ: 5, CourtyardSize: 0, NumExits: 1},
			},
		},
		Guards: GuardConfig{
			Patrollers:       8,
			Reserves:         2,
			RouteLength:      guard.DefaultRouteLength,
			AttackDistance:   guard.DefaultAttackDistance,
			AttackDamage:     guard.DefaultAttackDamage,
			AttackCooldown:   guard.DefaultAttackCooldown,
			TimeToLosePlayer: guard.DefaultTimeToLosePlayer,
			TickInterval:     100 * time.Millisecond,
			AssignInterval:   time.Second,
			StationarySpeed:  guard.DefaultStationarySpeed,
			PathRetries:      guard.DefaultPathRetries,
			ReserveLeash:     guard.DefaultReserveLeash,
			TurnSpeed:        guard.DefaultTurnSpeed,
			AlarmPolicy:      guard.StopOnHuntEntry.String(),
		},
		Intruder: IntruderConfig{
			MaxHealth:      100,
			RefillAmount:   5,
			RefillInterval: 30 * time.Second,
			Stance:         "standing",
		},
	}
}

// LoadScenario reads a YAML scenario. An empty path returns the default scenario.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		return DefaultScenario(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes YAML on top of the default scenario and validates the result.
// A mazes list in the document replaces the default list.
func ParseScenario(data []byte) (*Scenario, error) {
	return DefaultScenario().Override(data)
}

// Override decodes YAML on top of a copy of s and validates the result. s is left untouched.
func (s *Scenario) Override(data []byte) (*Scenario, error) {
	base, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	out := &Scenario{}
	if err := yaml.Unmarshal(base, out); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks the parts of the scenario that can be checked without composing the world.
func (s *Scenario) Validate() error {
	w := s.World
	switch {
	case w.TotalWidth < 1 || w.TotalHeight < 1:
		return fmt.Errorf("%w: total size %dx%d", ErrInvalidScenario, w.TotalWidth, w.TotalHeight)
	case w.Wilderness < 0:
		return fmt.Errorf("%w: wilderness %d", ErrInvalidScenario, w.Wilderness)
	case w.Loops < 0:
		return fmt.Errorf("%w: loops %d", ErrInvalidScenario, w.Loops)
	case len(w.Mazes) == 0:
		return fmt.Errorf("%w: no mazes", ErrInvalidScenario)
	}

	g := s.Guards
	switch {
	case g.Patrollers < 0 || g.Reserves < 0 || g.Patrollers+g.Reserves == 0:
		return fmt.Errorf("%w: %d patrol and %d reserve guards", ErrInvalidScenario, g.Patrollers, g.Reserves)
	case g.RouteLength < 0:
		return fmt.Errorf("%w: route length %d", ErrInvalidScenario, g.RouteLength)
	case g.Speed < 0:
		return fmt.Errorf("%w: speed %v", ErrInvalidScenario, g.Speed)
	case g.TickInterval < 0 || g.AssignInterval < 0:
		return fmt.Errorf("%w: tick %v assign %v", ErrInvalidScenario, g.TickInterval, g.AssignInterval)
	}
	if _, err := s.ViewTable(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	// Stage radii depend on the world extents, so validate against the smallest possible world.
	if _, err := s.SquadConfig(game.Rect{}, game.Rect{}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	i := s.Intruder
	if i.MaxHealth < 0 || i.RefillAmount < 0 || i.RefillInterval < 0 {
		return fmt.Errorf("%w: intruder health %d refill %d every %v", ErrInvalidScenario, i.MaxHealth, i.RefillAmount, i.RefillInterval)
	}
	_, err := s.IntruderStance()
	return err
}

// IntruderStance returns the starting stance. Empty means standing.
func (s *Scenario) IntruderStance() (target.Stance, error) {
	if s.Intruder.Stance == "" {
		return target.Standing, nil
	}
	st, ok := target.ParseStance(s.Intruder.Stance)
	if !ok {
		return st, fmt.Errorf("%w: stance %q", ErrInvalidScenario, s.Intruder.Stance)
	}
	return st, nil
}

// WorldOptions returns the compositor options.
func (s *Scenario) WorldOptions() world.Options {
	return world.Options{
		Wilderness:      s.World.Wilderness,
		Loops:           s.World.Loops,
		CornerSmoothing: s.World.CornerSmoothing,
		PlaceFinish:     s.World.PlaceFinish,
	}
}

// ViewTable returns the configured view distances, or the default table when none are set.
func (s *Scenario) ViewTable() (perception.ViewTable, error) {
	if len(s.Guards.ViewDistances) == 0 {
		return perception.DefaultViewTable(), nil
	}
	return perception.NewViewTable(s.Guards.ViewDistances)
}

// SquadConfig builds the guard config. Missing hunt stages are derived from the spawn and world extents.
func (s *Scenario) SquadConfig(spawn, bounds game.Rect) (guard.Config, error) {
	policy, err := guard.ParseAlarmPolicy(s.Guards.AlarmPolicy)
	if err != nil {
		return guard.Config{}, err
	}

	stages := s.Guards.HuntStages
	if len(stages) == 0 {
		stages = guard.DefaultHuntStages(float64(spawn.Extent()), float64(bounds.Extent()))
	}

	cfg := guard.Config{
		AttackDistance:   s.Guards.AttackDistance,
		AttackDamage:     s.Guards.AttackDamage,
		AttackCooldown:   s.Guards.AttackCooldown,
		TimeToLosePlayer: s.Guards.TimeToLosePlayer,
		StationarySpeed:  s.Guards.StationarySpeed,
		PathRetries:      s.Guards.PathRetries,
		ReserveLeash:     s.Guards.ReserveLeash,
		TurnSpeed:        s.Guards.TurnSpeed,
		HuntStages:       stages,
		AlarmPolicy:      policy,
	}.WithDefaults()
	return cfg, cfg.Validate()
}

// SpawnConfig returns how many agents to create and how their routes are drawn.
func (s *Scenario) SpawnConfig() guard.SpawnConfig {
	return guard.SpawnConfig{
		Patrollers:  s.Guards.Patrollers,
		Reserves:    s.Guards.Reserves,
		RouteLength: s.Guards.RouteLength,
	}
}
