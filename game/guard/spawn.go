package guard

import (
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-warden/game"
)

const (
	DefaultRouteLength   = 6
	DefaultRouteRetries  = 20
	DefaultReserveSpread = 10
)

// SpawnConfig describes how many agents to create and how their routes are drawn.
type SpawnConfig struct {
	Patrollers    int
	Reserves      int
	RouteLength   int
	RouteRetries  int
	ReserveSpread int
}

// Spawner places agents on walkable points inside an area.
type Spawner struct {
	pathfinder game.Pathfinder
	area       game.Rect
	rng        *rand.Rand
	cfg        SpawnConfig
}

// NewSpawner creates a spawner. Zero config fields fall back to the defaults.
func NewSpawner(pf game.Pathfinder, area game.Rect, rng *rand.Rand, cfg SpawnConfig) (*Spawner, error) {
	if pf == nil || rng == nil {
		return nil, ErrMissingDeps
	}
	if cfg.Patrollers < 0 || cfg.Reserves < 0 || cfg.Patrollers+cfg.Reserves == 0 {
		return nil, fmt.Errorf("%w: %d patrol and %d reserve agents", ErrInvalidConfig, cfg.Patrollers, cfg.Reserves)
	}
	if cfg.RouteLength <= 0 {
		cfg.RouteLength = DefaultRouteLength
	}
	if cfg.RouteRetries <= 0 {
		cfg.RouteRetries = DefaultRouteRetries
	}
	if cfg.ReserveSpread <= 0 {
		cfg.ReserveSpread = DefaultReserveSpread
	}
	return &Spawner{pathfinder: pf, area: area, rng: rng, cfg: cfg}, nil
}

// Spawn creates patrol agents first, then reserves gathered around one random point.
// Agent ids start at firstID.
func (sp *Spawner) Spawn(firstID int) ([]*Agent, error) {
	agents := make([]*Agent, 0, sp.cfg.Patrollers+sp.cfg.Reserves)
	id := firstID

	for range sp.cfg.Patrollers {
		route, err := sp.Route()
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", id, err)
		}
		agents = append(agents, &Agent{
			ID:       id,
			Kind:     Patroller,
			Position: route[0],
			Home:     route[0],
			Route:    route,
		})
		id++
	}

	if sp.cfg.Reserves == 0 {
		return agents, nil
	}

	gather, err := sp.randomPoint(sp.area)
	if err != nil {
		return nil, fmt.Errorf("reserve point: %w", err)
	}
	near := game.Rect{
		MinX: int(gather.X) - sp.cfg.ReserveSpread,
		MinZ: int(gather.Z) - sp.cfg.ReserveSpread,
		MaxX: int(gather.X) + sp.cfg.ReserveSpread,
		MaxZ: int(gather.Z) + sp.cfg.ReserveSpread,
	}
	for range sp.cfg.Reserves {
		start, err := sp.randomPoint(near)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", id, err)
		}
		agents = append(agents, &Agent{
			ID:       id,
			Kind:     Reserve,
			Position: start,
			Home:     start,
		})
		id++
	}

	return agents, nil
}

// Route draws a cyclic patrol route of walkable points inside the spawn area.
func (sp *Spawner) Route() ([]game.Vec2, error) {
	route := make([]game.Vec2, sp.cfg.RouteLength)
	for i := range route {
		p, err := sp.randomPoint(sp.area)
		if err != nil {
			return nil, fmt.Errorf("route point %d: %w", i, err)
		}
		route[i] = p
	}
	return route, nil
}

// randomPoint resolves a random point of area to a walkable one, retrying on failure.
func (sp *Spawner) randomPoint(area game.Rect) (game.Vec2, error) {
	var lastErr error
	for range sp.cfg.RouteRetries {
		p := game.Vec2{
			X: float64(area.MinX + sp.rng.Intn(area.Width())),
			Z: float64(area.MinZ + sp.rng.Intn(area.Height())),
		}
		resolved, err := sp.pathfinder.ResolveWalkable(p)
		if err == nil {
			return resolved, nil
		}
		lastErr = err
	}
	return game.Vec2{}, fmt.Errorf("after %d tries: %w", sp.cfg.RouteRetries, lastErr)
}
