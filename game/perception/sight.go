package perception

import (
	"errors"
	"fmt"
	"math"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/world"
)

var ErrBadSegment = errors.New("segment endpoint is not finite")

// GridSight answers line-of-sight queries by walking the tiles a segment passes through.
// Tile centers sit on integer coordinates. The tiles under both endpoints are not tested.
type GridSight struct {
	obstacle func(game.Point) bool
	cover    func(game.Point) bool
}

// NewGridSight creates a line-of-sight answerer from per-tile predicates.
func NewGridSight(obstacle, cover func(game.Point) bool) *GridSight {
	return &GridSight{obstacle: obstacle, cover: cover}
}

// ForWorld treats walls as obstacles and courtyard tiles as heavy cover.
func ForWorld(w *world.World) *GridSight {
	return NewGridSight(
		func(p game.Point) bool { return !w.Walkable(p) },
		w.IsCourtyard,
	)
}

// Blocked reports whether any tile strictly between from and to belongs to layer.
func (s *GridSight) Blocked(from, to game.Vec2, layer game.Layer) (bool, error) {
	var hit func(game.Point) bool
	switch layer {
	case game.LayerObstacle:
		hit = s.obstacle
	case game.LayerHeavyCover:
		hit = s.cover
	default:
		return false, fmt.Errorf("unknown layer %d", layer)
	}
	if hit == nil {
		return false, nil
	}
	for _, v := range []float64{from.X, from.Z, to.X, to.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false, ErrBadSegment
		}
	}

	start, end := from.Tile(), to.Tile()
	blocked := false
	Traverse(from, to, func(p game.Point) bool {
		if p == start || p == end {
			return true
		}
		if hit(p) {
			blocked = true
			return false
		}
		return true
	})
	return blocked, nil
}

// Traverse visits every tile the segment from a to b touches, in order, until visit returns false.
// When the segment passes exactly through a tile corner both side tiles are visited.
func Traverse(a, b game.Vec2, visit func(game.Point) bool) {
	// Shift so tile i spans [i, i+1).
	fx, fz := a.X+0.5, a.Z+0.5
	tx, tz := b.X+0.5, b.Z+0.5
	x, z := int(math.Floor(fx)), int(math.Floor(fz))
	ex, ez := int(math.Floor(tx)), int(math.Floor(tz))

	if !visit(game.Point{X: x, Z: z}) {
		return
	}

	dx, dz := tx-fx, tz-fz
	stepX, tMaxX, tDeltaX := axis(fx, dx)
	stepZ, tMaxZ, tDeltaZ := axis(fz, dz)

	remaining := abs(ex-x) + abs(ez-z)
	for remaining > 0 {
		switch {
		case tMaxX < tMaxZ:
			x += stepX
			tMaxX += tDeltaX
			remaining--
		case tMaxZ < tMaxX:
			z += stepZ
			tMaxZ += tDeltaZ
			remaining--
		default:
			if !visit(game.Point{X: x + stepX, Z: z}) || !visit(game.Point{X: x, Z: z + stepZ}) {
				return
			}
			x += stepX
			z += stepZ
			tMaxX += tDeltaX
			tMaxZ += tDeltaZ
			remaining -= 2
		}
		if !visit(game.Point{X: x, Z: z}) {
			return
		}
	}
}

// axis returns the step direction, the parametric distance to the first boundary and between boundaries.
func axis(pos, delta float64) (step int, tMax, tDelta float64) {
	switch {
	case delta > 0:
		return 1, (math.Floor(pos) + 1 - pos) / delta, 1 / delta
	case delta < 0:
		return -1, (pos - math.Floor(pos)) / -delta, 1 / -delta
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
