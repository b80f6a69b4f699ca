/*
Package navigation moves agents across a tile grid.

It implements the pathfinder, tracker and stepper the guards depend on: walkable
point resolution, breadth-first routes over 4-neighbour tiles, and constant speed
movement along those routes one tick at a time.
*/
package navigation

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/zyedidia/generic/mapset"
)

const (
	DefaultSpeed        = 3.5 // tiles per second
	DefaultSearchRadius = 50  // tiles searched around an unwalkable point
)

var (
	ErrUnknownAgent = errors.New("unknown agent")
	ErrInvalidSpeed = errors.New("speed must be positive")
)

var steps = [4]game.Point{{X: 0, Z: 1}, {X: 0, Z: -1}, {X: -1, Z: 0}, {X: 1, Z: 0}}

// Grid is the walkability surface agents move on.
type Grid interface {
	Walkable(p game.Point) bool
	Bounds() game.Rect
}

// Config holds the navigator settings.
type Config struct {
	Speed        float64 // Tiles per second.
	SearchRadius int     // Ring radius searched by ResolveWalkable.
}

type mover struct {
	position game.Vec2
	velocity game.Vec2
	path     []game.Vec2
}

// Navigator owns agent positions and routes on a grid.
type Navigator struct {
	sync.RWMutex
	grid         Grid
	speed        float64
	searchRadius int
	agents       map[int]*mover
}

// New creates a navigator. Zero config fields fall back to the defaults.
func New(grid Grid, cfg Config) (*Navigator, error) {
	if cfg.Speed < 0 {
		return nil, ErrInvalidSpeed
	}
	if cfg.Speed == 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.SearchRadius <= 0 {
		cfg.SearchRadius = DefaultSearchRadius
	}

	return &Navigator{
		grid:         grid,
		speed:        cfg.Speed,
		searchRadius: cfg.SearchRadius,
		agents:       make(map[int]*mover),
	}, nil
}

// Place puts an agent at p, dropping any route it had.
func (n *Navigator) Place(agentID int, p game.Vec2) {
	n.Lock()
	defer n.Unlock()
	n.agents[agentID] = &mover{position: p}
}

// Remove forgets an agent.
func (n *Navigator) Remove(agentID int) {
	n.Lock()
	defer n.Unlock()
	delete(n.agents, agentID)
}

// Position returns where the agent stands. Unknown agents report the origin.
func (n *Navigator) Position(agentID int) game.Vec2 {
	n.RLock()
	defer n.RUnlock()
	if a, ok := n.agents[agentID]; ok {
		return a.position
	}
	return game.Vec2{}
}

// Velocity returns the agent's movement during the last step.
func (n *Navigator) Velocity(agentID int) game.Vec2 {
	n.RLock()
	defer n.RUnlock()
	if a, ok := n.agents[agentID]; ok {
		return a.velocity
	}
	return game.Vec2{}
}

// Destination returns the end of the agent's current route, if it has one.
func (n *Navigator) Destination(agentID int) (game.Vec2, bool) {
	n.RLock()
	defer n.RUnlock()
	a, ok := n.agents[agentID]
	if !ok || len(a.path) == 0 {
		return game.Vec2{}, false
	}
	return a.path[len(a.path)-1], true
}

// ResolveWalkable returns the center of the walkable tile nearest to p within the search radius.
func (n *Navigator) ResolveWalkable(p game.Vec2) (game.Vec2, error) {
	bounds := n.grid.Bounds()
	center := bounds.Clamp(p).Tile()
	if n.grid.Walkable(center) {
		return center.Vec(), nil
	}

	for r := 1; r <= n.searchRadius; r++ {
		best, found := game.Point{}, false
		bestDist := math.Inf(1)
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dz)) != r {
					continue
				}
				c := game.Point{X: center.X + dx, Z: center.Z + dz}
				if !bounds.Contains(c) || !n.grid.Walkable(c) {
					continue
				}
				if d := c.Vec().Dist(p); d < bestDist {
					best, bestDist, found = c, d, true
				}
			}
		}
		if found {
			return best.Vec(), nil
		}
	}

	return game.Vec2{}, fmt.Errorf("%w: nothing walkable within %d tiles of (%.1f, %.1f)",
		game.ErrPathResolutionFailed, n.searchRadius, p.X, p.Z)
}

// SetDestination routes the agent to the tile under p. A destination on the agent's own tile halts it.
func (n *Navigator) SetDestination(agentID int, p game.Vec2) error {
	n.Lock()
	defer n.Unlock()

	a, ok := n.agents[agentID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAgent, agentID)
	}

	start, goal := a.position.Tile(), p.Tile()
	if start == goal {
		a.path = nil
		return nil
	}
	if !n.grid.Walkable(goal) {
		return fmt.Errorf("%w: tile (%d, %d) is blocked", game.ErrPathResolutionFailed, goal.X, goal.Z)
	}

	route, ok := n.route(start, goal)
	if !ok {
		return fmt.Errorf("%w: no route from (%d, %d) to (%d, %d)",
			game.ErrPathResolutionFailed, start.X, start.Z, goal.X, goal.Z)
	}
	a.path = route
	return nil
}

// route runs a breadth-first search and returns the tile centers after start up to goal.
func (n *Navigator) route(start, goal game.Point) ([]game.Vec2, bool) {
	bounds := n.grid.Bounds()
	seen := mapset.New[game.Point]()
	parent := make(map[game.Point]game.Point)
	seen.Put(start)
	queue := []game.Point{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == goal {
			break
		}
		for _, d := range steps {
			next := game.Point{X: p.X + d.X, Z: p.Z + d.Z}
			if seen.Has(next) || !bounds.Contains(next) || !n.grid.Walkable(next) {
				continue
			}
			seen.Put(next)
			parent[next] = p
			queue = append(queue, next)
		}
	}

	if !seen.Has(goal) {
		return nil, false
	}

	var route []game.Vec2
	for p := goal; p != start; p = parent[p] {
		route = append(route, p.Vec())
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route, true
}

// Step moves every agent along its route for dt and records its velocity.
func (n *Navigator) Step(dt time.Duration) {
	n.Lock()
	defer n.Unlock()

	seconds := dt.Seconds()
	for _, a := range n.agents {
		if seconds <= 0 || len(a.path) == 0 {
			a.velocity = game.Vec2{}
			continue
		}

		from := a.position
		budget := n.speed * seconds
		for budget > 0 && len(a.path) > 0 {
			next := a.path[0]
			d := a.position.Dist(next)
			if d <= budget {
				a.position = next
				a.path = a.path[1:]
				budget -= d
				continue
			}
			a.position = a.position.Add(next.Sub(a.position).Scale(budget / d))
			budget = 0
		}
		a.velocity = a.position.Sub(from).Scale(1 / seconds)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
