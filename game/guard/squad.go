/*
Package guard runs the squad state machine: Patrol, then Attack once the
intruder is spotted, then a staged Hunt around the last known position, then
back to Patrol.

Agents share one clock, one last seen position and one alarm per squad. Each
agent keeps its own cooldown, position, heading and route index.
*/
package guard

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/perception"
)

var (
	ErrNoAgents        = errors.New("squad has no agents")
	ErrMissingDeps     = errors.New("squad dependency missing")
	ErrDuplicateAgent  = errors.New("duplicate agent id")
	ErrEmptyPatrolPath = errors.New("patrol agent has no route")
)

// Navigator is what the squad needs from the movement layer.
type Navigator interface {
	game.Pathfinder
	game.Tracker
}

// Transition records a squad state change.
type Transition struct {
	SquadID  string    `json:"squad_id"`
	From     State     `json:"from"`
	To       State     `json:"to"`
	Tick     uint64    `json:"tick"`
	LastSeen game.Vec2 `json:"last_seen"`
	Agent    int       `json:"agent"` // Agent that spotted the intruder, -1 otherwise.
}

// Observer is told about every state change. It runs inside the tick and must not block.
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Transition)

// OnTransition calls f(t).
func (f ObserverFunc) OnTransition(t Transition) {
	f(t)
}

// Deps are the collaborators a squad works with.
type Deps struct {
	Evaluator *perception.Evaluator
	Sight     game.LineOfSight
	Navigator Navigator
	Sink      game.DamageSink
	Alarm     game.Alarm
	Bounds    game.Rect
	Rand      *rand.Rand
	Observer  Observer // Optional.
	Logger    game.Logger
}

// Squad is a group of guards driven by one state machine.
type Squad struct {
	sync.RWMutex
	id     string
	cfg    Config
	agents []*Agent

	state        State
	lastSeen     game.Vec2
	visibleTimer time.Duration
	stage        int
	stageTimer   time.Duration
	alarmOn      bool
	ticks        uint64

	evaluator *perception.Evaluator
	sight     game.LineOfSight
	nav       Navigator
	sink      game.DamageSink
	alarm     game.Alarm
	bounds    game.Rect
	rng       *rand.Rand
	observer  Observer
	log       game.Logger
}

// NewSquad creates a squad in Patrol. The agents slice is owned by the squad afterwards.
func NewSquad(id string, cfg Config, deps Deps, agents []*Agent) (*Squad, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}
	if deps.Evaluator == nil || deps.Sight == nil || deps.Navigator == nil || deps.Sink == nil ||
		deps.Alarm == nil || deps.Rand == nil || deps.Logger == nil {
		return nil, ErrMissingDeps
	}

	seen := make(map[int]struct{}, len(agents))
	for _, a := range agents {
		if _, ok := seen[a.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateAgent, a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.Kind == Patroller && len(a.Route) == 0 {
			return nil, fmt.Errorf("%w: %d", ErrEmptyPatrolPath, a.ID)
		}
		a.State = Patrol
	}

	return &Squad{
		id:        id,
		cfg:       cfg,
		agents:    agents,
		state:     Patrol,
		evaluator: deps.Evaluator,
		sight:     deps.Sight,
		nav:       deps.Navigator,
		sink:      deps.Sink,
		alarm:     deps.Alarm,
		bounds:    deps.Bounds,
		rng:       deps.Rand,
		observer:  deps.Observer,
		log:       deps.Logger,
	}, nil
}

// ID returns the squad id.
func (s *Squad) ID() string {
	return s.id
}

// Tick runs exactly one state machine step for every agent against a fresh snapshot.
func (s *Squad) Tick(snap game.TargetSnapshot, dt time.Duration) {
	s.Lock()
	defer s.Unlock()

	s.ticks++
	for _, a := range s.agents {
		a.Position = s.nav.Position(a.ID)
		a.Velocity = s.nav.Velocity(a.ID)
		a.Heading.Step(dt, s.cfg.TurnSpeed)
	}

	switch s.state {
	case Patrol:
		s.patrol(snap)
	case Attack:
		s.attack(snap, dt)
	case Hunt:
		s.hunt(snap, dt)
	}
}

// AssignRoutes sends idle agents to their route point or home while the squad patrols.
// It returns how many agents received a destination.
func (s *Squad) AssignRoutes() int {
	s.Lock()
	defer s.Unlock()

	if s.state != Patrol {
		return 0
	}

	assigned := 0
	for _, a := range s.agents {
		if a.HasDestination {
			continue
		}
		a.Position = s.nav.Position(a.ID)

		var dest game.Vec2
		switch a.Kind {
		case Patroller:
			dest = a.Route[a.RouteIndex]
		case Reserve:
			dest = a.Home
		}
		if s.moveTo(a, dest) {
			assigned++
		}
	}
	return assigned
}

// perceive runs a fresh perception check for one agent. Query failures count as not seen.
func (s *Squad) perceive(a *Agent, snap game.TargetSnapshot) bool {
	seen, err := s.evaluator.CanPerceive(perception.QueryFor(a.Position, snap), s.sight)
	if err != nil {
		s.log.Warning(fmt.Sprintf("squad %s agent %d perception: %v", s.id, a.ID, err))
		return false
	}
	return seen
}

// moveTo resolves p to a walkable point and routes the agent there.
func (s *Squad) moveTo(a *Agent, p game.Vec2) bool {
	dest, err := s.nav.ResolveWalkable(p)
	if err != nil {
		s.log.Debug(fmt.Sprintf("squad %s agent %d resolve: %v", s.id, a.ID, err))
		return false
	}
	if err := s.nav.SetDestination(a.ID, dest); err != nil {
		s.log.Debug(fmt.Sprintf("squad %s agent %d route: %v", s.id, a.ID, err))
		return false
	}
	a.Destination = dest
	a.HasDestination = true
	return true
}

// halt stops the agent where it stands.
func (s *Squad) halt(a *Agent) {
	if err := s.nav.SetDestination(a.ID, a.Position); err != nil {
		s.log.Debug(fmt.Sprintf("squad %s agent %d halt: %v", s.id, a.ID, err))
		return
	}
	a.Destination = a.Position
	a.HasDestination = true
}

func (s *Squad) setState(to State, agentID int) {
	from := s.state
	s.state = to
	for _, a := range s.agents {
		a.State = to
	}

	s.log.Info(fmt.Sprintf("squad %s: %s -> %s at tick %d", s.id, from, to, s.ticks))
	if s.observer != nil {
		s.observer.OnTransition(Transition{
			SquadID:  s.id,
			From:     from,
			To:       to,
			Tick:     s.ticks,
			LastSeen: s.lastSeen,
			Agent:    agentID,
		})
	}
}

func (s *Squad) enterAttack(lastSeen game.Vec2, agentID int) {
	s.lastSeen = lastSeen
	s.visibleTimer = 0
	s.stage = 0
	s.stageTimer = 0
	s.startAlarm()
	s.setState(Attack, agentID)
}

func (s *Squad) enterHunt() {
	s.stage = 0
	s.stageTimer = 0
	if s.cfg.AlarmPolicy == StopOnHuntEntry {
		s.stopAlarm()
	}
	s.setState(Hunt, -1)
}

func (s *Squad) enterPatrol() {
	s.visibleTimer = 0
	s.stage = 0
	s.stageTimer = 0
	s.stopAlarm()
	s.setState(Patrol, -1)
}

func (s *Squad) startAlarm() {
	if s.alarmOn {
		return
	}
	s.alarmOn = true
	if err := s.alarm.Start(); err != nil {
		s.log.Error(fmt.Sprintf("squad %s alarm start: %v", s.id, err))
	}
}

func (s *Squad) stopAlarm() {
	if !s.alarmOn {
		return
	}
	s.alarmOn = false
	if err := s.alarm.Stop(); err != nil {
		s.log.Error(fmt.Sprintf("squad %s alarm stop: %v", s.id, err))
	}
}

// Status is a read-only view of a squad.
type Status struct {
	ID           string        `json:"id"`
	State        string        `json:"state"`
	LastSeen     game.Vec2     `json:"last_seen"`
	VisibleTimer time.Duration `json:"visible_timer"`
	HuntStage    int           `json:"hunt_stage"`
	AlarmOn      bool          `json:"alarm_on"`
	Ticks        uint64        `json:"ticks"`
	Agents       []Agent       `json:"agents"`
}

// Status returns a copy of the squad state.
func (s *Squad) Status() Status {
	s.RLock()
	defer s.RUnlock()
	return Status{
		ID:           s.id,
		State:        s.state.String(),
		LastSeen:     s.lastSeen,
		VisibleTimer: s.visibleTimer,
		HuntStage:    s.stage,
		AlarmOn:      s.alarmOn,
		Ticks:        s.ticks,
		Agents:       s.copyAgents(),
	}
}

// State returns the current squad state.
func (s *Squad) State() State {
	s.RLock()
	defer s.RUnlock()
	return s.state
}

// LastSeen returns where the intruder was last perceived.
func (s *Squad) LastSeen() game.Vec2 {
	s.RLock()
	defer s.RUnlock()
	return s.lastSeen
}

// AlarmOn reports whether the squad alarm is sounding.
func (s *Squad) AlarmOn() bool {
	s.RLock()
	defer s.RUnlock()
	return s.alarmOn
}

// HuntStage returns the index of the current hunt stage.
func (s *Squad) HuntStage() int {
	s.RLock()
	defer s.RUnlock()
	return s.stage
}

// Agents returns copies of the agents in tick order.
func (s *Squad) Agents() []Agent {
	s.RLock()
	defer s.RUnlock()
	return s.copyAgents()
}

func (s *Squad) copyAgents() []Agent {
	out := make([]Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.clone()
	}
	return out
}

// Agent returns a copy of the agent at index i.
func (s *Squad) Agent(i int) Agent {
	s.RLock()
	defer s.RUnlock()
	return s.agents[i].clone()
}
