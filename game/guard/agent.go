package guard

import (
	"math"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
)

// State is a squad behaviour state.
type State int

const (
	Patrol State = iota
	Attack
	Hunt
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Patrol:
		return "patrol"
	case Attack:
		return "attack"
	case Hunt:
		return "hunt"
	default:
		return "unknown"
	}
}

// Kind selects what an agent does while the squad patrols.
type Kind int

const (
	// Patroller walks a cyclic route.
	Patroller Kind = iota
	// Reserve waits near its home point.
	Reserve
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Reserve {
		return "reserve"
	}
	return "patrol"
}

// headingTolerance is the angle in degrees under which a turn counts as finished.
const headingTolerance = 0.05

// Heading is the facing of an agent in degrees, 0 along +z and 90 along +x.
type Heading struct {
	Angle   float64 `json:"angle"`
	target  float64
	turning bool
}

// Face starts turning toward to as seen from from. Calling it again restarts the turn.
func (h *Heading) Face(from, to game.Vec2) {
	d := to.Sub(from)
	if d.Len() == 0 {
		return
	}
	h.target = normalizeAngle(90 - math.Atan2(d.Z, d.X)*180/math.Pi)
	h.turning = true
}

// Turning reports whether a turn is in progress.
func (h *Heading) Turning() bool {
	return h.turning
}

// Target returns the angle being turned toward.
func (h *Heading) Target() float64 {
	return h.target
}

// Step turns toward the target at speed degrees per second.
func (h *Heading) Step(dt time.Duration, speed float64) {
	if !h.turning {
		return
	}
	delta := deltaAngle(h.Angle, h.target)
	maxStep := speed * dt.Seconds()
	if math.Abs(delta) <= maxStep || math.Abs(delta) <= headingTolerance {
		h.Angle = h.target
		h.turning = false
		return
	}
	h.Angle = normalizeAngle(h.Angle + math.Copysign(maxStep, delta))
}

// deltaAngle returns the shortest signed difference from a to b in degrees.
func deltaAngle(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Agent is one guard. The squad owns it and mutates it only inside a tick.
type Agent struct {
	ID             int           `json:"id"`
	Kind           Kind          `json:"kind"`
	State          State         `json:"state"`
	Position       game.Vec2     `json:"position"`
	Velocity       game.Vec2     `json:"velocity"`
	Heading        Heading       `json:"heading"`
	Route          []game.Vec2   `json:"route,omitempty"`
	RouteIndex     int           `json:"route_index"`
	Cooldown       time.Duration `json:"cooldown"`
	Home           game.Vec2     `json:"home"`
	Destination    game.Vec2     `json:"destination"`
	HasDestination bool          `json:"has_destination"`
}

// stationary reports whether the agent has come to a stop.
func (a *Agent) stationary(threshold float64) bool {
	return math.Abs(a.Velocity.X) < threshold && math.Abs(a.Velocity.Z) < threshold
}

// clone returns a copy that shares nothing with a.
func (a *Agent) clone() Agent {
	c := *a
	c.Route = append([]game.Vec2(nil), a.Route...)
	return c
}
