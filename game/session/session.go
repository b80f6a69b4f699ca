/*
Package session wires one running simulation: the composed world, movement,
the intruder, the guard squad and the tick scheduler, all built from a single
scenario and seed.
*/
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/guard"
	"github.com/beka-birhanu/vinom-warden/game/navigation"
	"github.com/beka-birhanu/vinom-warden/game/perception"
	"github.com/beka-birhanu/vinom-warden/game/scheduler"
	"github.com/beka-birhanu/vinom-warden/game/target"
	"github.com/beka-birhanu/vinom-warden/game/world"
	"github.com/google/uuid"
)

var (
	ErrNilScenario = errors.New("nil scenario")
	ErrBadStance   = errors.New("unknown stance")
)

// Deps are the side effects a session reports to.
type Deps struct {
	Alarm    game.Alarm
	Observer guard.Observer // Optional.
	Logger   game.Logger
}

// Session is one simulation built from a scenario.
type Session struct {
	ID        uuid.UUID
	Operator  uuid.UUID
	CreatedAt time.Time

	world     *world.World
	nav       *navigation.Navigator
	intruder  *target.Intruder
	squad     *guard.Squad
	scheduler *scheduler.Scheduler
}

// Compose builds the world a scenario describes.
func Compose(sc *config.Scenario) (*world.World, error) {
	if sc == nil {
		return nil, ErrNilScenario
	}
	return world.Compose(sc.World.TotalWidth, sc.World.TotalHeight, sc.World.Mazes, sc.WorldOptions(), rand.New(rand.NewSource(sc.Seed)))
}

// New builds a stopped session. The same scenario always yields the same world and guard placement.
func New(id, operator uuid.UUID, sc *config.Scenario, deps Deps) (*Session, error) {
	if sc == nil {
		return nil, ErrNilScenario
	}
	rng := rand.New(rand.NewSource(sc.Seed))

	w, err := world.Compose(sc.World.TotalWidth, sc.World.TotalHeight, sc.World.Mazes, sc.WorldOptions(), rng)
	if err != nil {
		return nil, fmt.Errorf("composing world: %w", err)
	}

	nav, err := navigation.New(w, navigation.Config{Speed: sc.Guards.Speed})
	if err != nil {
		return nil, err
	}

	intruder, err := newIntruder(sc, w, nav)
	if err != nil {
		return nil, err
	}

	spawner, err := guard.NewSpawner(nav, w.SpawnArea(), rng, sc.SpawnConfig())
	if err != nil {
		return nil, err
	}
	agents, err := spawner.Spawn(0)
	if err != nil {
		return nil, fmt.Errorf("spawning guards: %w", err)
	}
	for _, a := range agents {
		nav.Place(a.ID, a.Position)
	}

	cfg, err := sc.SquadConfig(w.SpawnArea(), w.Bounds())
	if err != nil {
		return nil, err
	}
	table, err := sc.ViewTable()
	if err != nil {
		return nil, err
	}
	squad, err := guard.NewSquad(id.String(), cfg, guard.Deps{
		Evaluator: perception.NewEvaluator(table),
		Sight:     perception.ForWorld(w),
		Navigator: nav,
		Sink:      intruder,
		Alarm:     deps.Alarm,
		Bounds:    w.Bounds(),
		Rand:      rng,
		Observer:  deps.Observer,
		Logger:    deps.Logger,
	}, agents)
	if err != nil {
		return nil, err
	}

	sched, err := scheduler.New(scheduler.Config{
		TickInterval:   sc.Guards.TickInterval,
		AssignInterval: sc.Guards.AssignInterval,
	}, intruder, []game.Stepper{nav, intruder}, []scheduler.Squad{squad}, deps.Logger)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        id,
		Operator:  operator,
		CreatedAt: time.Now().UTC(),
		world:     w,
		nav:       nav,
		intruder:  intruder,
		squad:     squad,
		scheduler: sched,
	}, nil
}

// newIntruder places the intruder on the walkable tile nearest its configured start,
// or nearest the world origin when none is set.
func newIntruder(sc *config.Scenario, w *world.World, nav *navigation.Navigator) (*target.Intruder, error) {
	start := w.Bounds().Clamp(game.Vec2{})
	if sc.Intruder.Start != nil {
		start = *sc.Intruder.Start
	}
	start, err := nav.ResolveWalkable(start)
	if err != nil {
		return nil, fmt.Errorf("placing intruder: %w", err)
	}

	intruder, err := target.New(target.Config{
		Position:       start,
		MaxHealth:      sc.Intruder.MaxHealth,
		RefillAmount:   sc.Intruder.RefillAmount,
		RefillInterval: sc.Intruder.RefillInterval,
		Cover: target.CoverFunc(func(p game.Point) target.Cover {
			if w.IsCourtyard(p) {
				return target.Heavy
			}
			return target.Open
		}),
	})
	if err != nil {
		return nil, err
	}

	stance, err := sc.IntruderStance()
	if err != nil {
		return nil, err
	}
	intruder.SetStance(stance)
	intruder.SetDaytime(!sc.Intruder.Night)
	return intruder, nil
}

// Start runs the scheduler clock.
func (s *Session) Start() {
	s.scheduler.Start()
}

// Stop halts the clock. Safe to call more than once.
func (s *Session) Stop() {
	s.scheduler.Stop()
}

// Step runs one tick by hand.
func (s *Session) Step() {
	s.scheduler.Step()
}

// World returns the composed world.
func (s *Session) World() *world.World {
	return s.world
}

// Command changes what the intruder does. Nil fields are left alone.
type Command struct {
	Position *game.Vec2 `json:"position,omitempty"`
	Stance   *string    `json:"stance,omitempty"`
	Night    *bool      `json:"night,omitempty"`
}

// Apply runs cmd against the intruder. A position is snapped to the nearest walkable tile.
func (s *Session) Apply(cmd Command) error {
	var stance target.Stance
	if cmd.Stance != nil {
		var ok bool
		if stance, ok = target.ParseStance(*cmd.Stance); !ok {
			return fmt.Errorf("%w: %q", ErrBadStance, *cmd.Stance)
		}
	}

	if cmd.Position != nil {
		p, err := s.nav.ResolveWalkable(*cmd.Position)
		if err != nil {
			return err
		}
		s.intruder.MoveTo(p)
	}
	if cmd.Stance != nil {
		s.intruder.SetStance(stance)
	}
	if cmd.Night != nil {
		s.intruder.SetDaytime(!*cmd.Night)
	}
	return nil
}

// Status is a read-only view of a session.
type Status struct {
	ID        uuid.UUID     `json:"id"`
	Operator  uuid.UUID     `json:"operator"`
	CreatedAt time.Time     `json:"created_at"`
	Running   bool          `json:"running"`
	Ticks     uint64        `json:"ticks"`
	Squad     guard.Status  `json:"squad"`
	Intruder  target.Status `json:"intruder"`
}

// Status returns the current session state.
func (s *Session) Status() Status {
	return Status{
		ID:        s.ID,
		Operator:  s.Operator,
		CreatedAt: s.CreatedAt,
		Running:   s.scheduler.Running(),
		Ticks:     s.scheduler.Ticks(),
		Squad:     s.squad.Status(),
		Intruder:  s.intruder.Status(),
	}
}
