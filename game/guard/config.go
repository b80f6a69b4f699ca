package guard

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultAttackDistance   = 10.0
	DefaultAttackDamage     = 10
	DefaultAttackCooldown   = 2 * time.Second
	DefaultTimeToLosePlayer = 5 * time.Second
	DefaultStationarySpeed  = 0.1
	DefaultPathRetries      = 5
	DefaultReserveLeash     = 5.0
	DefaultTurnSpeed        = 180.0 // degrees per second
)

var ErrInvalidConfig = errors.New("invalid guard config")

// AlarmPolicy picks when the alarm stops once the squad loses the intruder.
type AlarmPolicy int

const (
	// StopOnHuntEntry silences the alarm as soon as the hunt begins.
	StopOnHuntEntry AlarmPolicy = iota
	// StopAfterFirstStage keeps the alarm on through the first hunt stage.
	StopAfterFirstStage
)

// ParseAlarmPolicy converts a config string into an AlarmPolicy.
func ParseAlarmPolicy(s string) (AlarmPolicy, error) {
	switch s {
	case "", "hunt_entry":
		return StopOnHuntEntry, nil
	case "first_stage":
		return StopAfterFirstStage, nil
	default:
		return StopOnHuntEntry, fmt.Errorf("%w: unknown alarm policy %q", ErrInvalidConfig, s)
	}
}

// String returns the config name of the policy.
func (p AlarmPolicy) String() string {
	if p == StopAfterFirstStage {
		return "first_stage"
	}
	return "hunt_entry"
}

// HuntStage is one time-boxed search phase.
type HuntStage struct {
	Duration time.Duration `json:"duration" yaml:"duration"`
	Radius   float64       `json:"radius" yaml:"radius"`
}

// DefaultHuntStages widens the search from a tenth of the spawn area to the whole world.
func DefaultHuntStages(spawnExtent, worldExtent float64) []HuntStage {
	return []HuntStage{
		{Duration: 10 * time.Second, Radius: spawnExtent * 0.1},
		{Duration: 15 * time.Second, Radius: spawnExtent * 0.25},
		{Duration: 20 * time.Second, Radius: spawnExtent * 0.5},
		{Duration: 30 * time.Second, Radius: worldExtent},
	}
}

// Config holds the squad tunables. Zero fields fall back to the defaults in WithDefaults,
// except AttackDamage and AttackCooldown where zero is a valid setting.
type Config struct {
	AttackDistance   float64
	AttackDamage     int
	AttackCooldown   time.Duration
	TimeToLosePlayer time.Duration
	StationarySpeed  float64
	PathRetries      int
	ReserveLeash     float64
	TurnSpeed        float64
	HuntStages       []HuntStage
	AlarmPolicy      AlarmPolicy
}

// WithDefaults fills every zero field except HuntStages, AttackDamage and AttackCooldown.
func (c Config) WithDefaults() Config {
	if c.AttackDistance == 0 {
		c.AttackDistance = DefaultAttackDistance
	}
	if c.TimeToLosePlayer == 0 {
		c.TimeToLosePlayer = DefaultTimeToLosePlayer
	}
	if c.StationarySpeed == 0 {
		c.StationarySpeed = DefaultStationarySpeed
	}
	if c.PathRetries == 0 {
		c.PathRetries = DefaultPathRetries
	}
	if c.ReserveLeash == 0 {
		c.ReserveLeash = DefaultReserveLeash
	}
	if c.TurnSpeed == 0 {
		c.TurnSpeed = DefaultTurnSpeed
	}
	return c
}

// Validate checks every tunable. Hunt stage radii must strictly increase.
func (c Config) Validate() error {
	switch {
	case c.AttackDistance <= 0:
		return fmt.Errorf("%w: attack distance %v", ErrInvalidConfig, c.AttackDistance)
	case c.AttackDamage < 0:
		return fmt.Errorf("%w: attack damage %d", ErrInvalidConfig, c.AttackDamage)
	case c.AttackCooldown < 0:
		return fmt.Errorf("%w: attack cooldown %v", ErrInvalidConfig, c.AttackCooldown)
	case c.TimeToLosePlayer <= 0:
		return fmt.Errorf("%w: time to lose player %v", ErrInvalidConfig, c.TimeToLosePlayer)
	case c.StationarySpeed <= 0:
		return fmt.Errorf("%w: stationary speed %v", ErrInvalidConfig, c.StationarySpeed)
	case c.PathRetries < 1:
		return fmt.Errorf("%w: path retries %d", ErrInvalidConfig, c.PathRetries)
	case c.ReserveLeash < 0:
		return fmt.Errorf("%w: reserve leash %v", ErrInvalidConfig, c.ReserveLeash)
	case c.TurnSpeed <= 0:
		return fmt.Errorf("%w: turn speed %v", ErrInvalidConfig, c.TurnSpeed)
	case len(c.HuntStages) == 0:
		return fmt.Errorf("%w: no hunt stages", ErrInvalidConfig)
	}

	for i, s := range c.HuntStages {
		if s.Duration <= 0 || s.Radius <= 0 {
			return fmt.Errorf("%w: hunt stage %d has duration %v radius %v", ErrInvalidConfig, i, s.Duration, s.Radius)
		}
		if i > 0 && s.Radius <= c.HuntStages[i-1].Radius {
			return fmt.Errorf("%w: hunt stage %d radius %v does not exceed %v", ErrInvalidConfig, i, s.Radius, c.HuntStages[i-1].Radius)
		}
	}
	return nil
}
