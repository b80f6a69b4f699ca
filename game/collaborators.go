package game

import "time"

// Logger is the logging surface the simulation writes to.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// Pathfinder turns requested coordinates into walkable destinations for agents.
// Calls are made every tick and must not block.
type Pathfinder interface {
	// ResolveWalkable returns the walkable point nearest to p or ErrPathResolutionFailed.
	ResolveWalkable(p Vec2) (Vec2, error)

	// SetDestination sends the agent toward p.
	SetDestination(agentID int, p Vec2) error
}

// Tracker reports where agents are and how fast they move.
type Tracker interface {
	Position(agentID int) Vec2
	Velocity(agentID int) Vec2
}

// Stepper advances agent movement by one tick.
type Stepper interface {
	Step(dt time.Duration)
}

// Layer selects which colliders a line-of-sight query tests against.
type Layer int

const (
	LayerObstacle Layer = iota
	LayerHeavyCover
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerObstacle:
		return "obstacle"
	case LayerHeavyCover:
		return "heavy-cover"
	default:
		return "unknown"
	}
}

// LineOfSight answers whether the segment from -> to crosses a collider of the given layer.
type LineOfSight interface {
	Blocked(from, to Vec2, layer Layer) (bool, error)
}

// DamageSink receives damage dealt to the intruder. Fire and forget.
type DamageSink interface {
	ApplyDamage(amount int)
}

// Alarm is the squad alarm side effect. Failures are logged, never fatal.
type Alarm interface {
	Start() error
	Stop() error
}

// SnapshotSource supplies the intruder state for the current tick.
type SnapshotSource interface {
	Snapshot() TargetSnapshot
}

