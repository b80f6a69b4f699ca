/*
Package target models the intruder the guards hunt.

The intruder derives its visibility level from stance, time of day and the cover
under its feet, takes damage from guards and slowly regains health.
*/
package target

import (
	"errors"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
)

const (
	DefaultMaxHealth      = 100
	DefaultRefillAmount   = 5
	DefaultRefillInterval = 30 * time.Second
)

var ErrInvalidConfig = errors.New("invalid intruder config")

// Stance is how the intruder holds itself.
type Stance int

const (
	Standing Stance = iota
	Crouching
)

// ParseStance converts "stand" or "crouch" into a Stance.
func ParseStance(s string) (Stance, bool) {
	switch s {
	case "stand", "standing":
		return Standing, true
	case "crouch", "crouching":
		return Crouching, true
	default:
		return Standing, false
	}
}

// String returns the stance name.
func (s Stance) String() string {
	if s == Crouching {
		return "crouch"
	}
	return "stand"
}

// Cover is the concealment at the intruder's tile.
type Cover int

const (
	Open Cover = iota
	Light
	Heavy
)

// String returns the cover name.
func (c Cover) String() string {
	switch c {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	default:
		return "open"
	}
}

// CoverMap tells which cover a tile offers.
type CoverMap interface {
	CoverAt(p game.Point) Cover
}

// CoverFunc adapts a function to CoverMap.
type CoverFunc func(p game.Point) Cover

// CoverAt calls f(p).
func (f CoverFunc) CoverAt(p game.Point) Cover {
	return f(p)
}

// visibility[daytime][stance][cover]
var visibility = [2][2][3]int{
	{ // night
		{3, 2, 1}, // stand
		{2, 1, 0}, // crouch
	},
	{ // day
		{5, 4, 3},
		{4, 3, 2},
	},
}

// VisibilityLevel returns the level for the given conditions.
func VisibilityLevel(daytime bool, stance Stance, cover Cover) int {
	d := 0
	if daytime {
		d = 1
	}
	return visibility[d][stance][cover]
}

// ObscuredLevel is the level used when heavy cover sits between a guard and the intruder.
func ObscuredLevel(daytime bool) int {
	if daytime {
		return 2
	}
	return 0
}

// Config holds the intruder settings.
type Config struct {
	Position       game.Vec2
	MaxHealth      int
	RefillAmount   int
	RefillInterval time.Duration
	Cover          CoverMap
}

// Intruder is the player-controlled target. It implements the damage sink and
// snapshot source used by the guards.
type Intruder struct {
	sync.RWMutex
	position       game.Vec2
	stance         Stance
	daytime        bool
	cover          CoverMap
	health         int
	maxHealth      int
	refillAmount   int
	refillInterval time.Duration
	sinceRefill    time.Duration
	hits           int
}

// New creates an intruder in daylight, standing, at full health.
func New(cfg Config) (*Intruder, error) {
	if cfg.MaxHealth == 0 {
		cfg.MaxHealth = DefaultMaxHealth
	}
	if cfg.RefillAmount == 0 {
		cfg.RefillAmount = DefaultRefillAmount
	}
	if cfg.RefillInterval == 0 {
		cfg.RefillInterval = DefaultRefillInterval
	}
	if cfg.MaxHealth < 0 || cfg.RefillAmount < 0 || cfg.RefillInterval < 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.Cover == nil {
		cfg.Cover = CoverFunc(func(game.Point) Cover { return Open })
	}

	return &Intruder{
		position:       cfg.Position,
		daytime:        true,
		cover:          cfg.Cover,
		health:         cfg.MaxHealth,
		maxHealth:      cfg.MaxHealth,
		refillAmount:   cfg.RefillAmount,
		refillInterval: cfg.RefillInterval,
	}, nil
}

// Snapshot returns the intruder state guards see this tick.
func (i *Intruder) Snapshot() game.TargetSnapshot {
	i.RLock()
	defer i.RUnlock()
	return game.TargetSnapshot{
		Position:           i.position,
		Visibility:         VisibilityLevel(i.daytime, i.stance, i.cover.CoverAt(i.position.Tile())),
		ObscuredVisibility: ObscuredLevel(i.daytime),
	}
}

// ApplyDamage lowers health, never below zero.
func (i *Intruder) ApplyDamage(amount int) {
	i.Lock()
	defer i.Unlock()
	if amount <= 0 {
		return
	}
	i.hits++
	i.health = max(0, i.health-amount)
}

// Step regains health once per refill interval, including from zero health.
func (i *Intruder) Step(dt time.Duration) {
	i.Lock()
	defer i.Unlock()
	i.sinceRefill += dt
	for i.sinceRefill >= i.refillInterval {
		i.sinceRefill -= i.refillInterval
		i.health = min(i.maxHealth, i.health+i.refillAmount)
	}
}

// MoveTo places the intruder at p.
func (i *Intruder) MoveTo(p game.Vec2) {
	i.Lock()
	defer i.Unlock()
	i.position = p
}

// SetStance changes the stance.
func (i *Intruder) SetStance(s Stance) {
	i.Lock()
	defer i.Unlock()
	i.stance = s
}

// SetDaytime switches between day and night visibility.
func (i *Intruder) SetDaytime(day bool) {
	i.Lock()
	defer i.Unlock()
	i.daytime = day
}

// Status is a read-only view of the intruder.
type Status struct {
	Position game.Vec2 `json:"position"`
	Stance   string    `json:"stance"`
	Daytime  bool      `json:"daytime"`
	Health   int       `json:"health"`
	Hits     int       `json:"hits"`
	Alive    bool      `json:"alive"`
}

// Status returns the current intruder state.
func (i *Intruder) Status() Status {
	i.RLock()
	defer i.RUnlock()
	return Status{
		Position: i.position,
		Stance:   i.stance.String(),
		Daytime:  i.daytime,
		Health:   i.health,
		Hits:     i.hits,
		Alive:    i.health > 0,
	}
}

// Health returns the remaining health.
func (i *Intruder) Health() int {
	i.RLock()
	defer i.RUnlock()
	return i.health
}
