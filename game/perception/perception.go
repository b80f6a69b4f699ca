/*
Package perception decides whether a guard can see the intruder.

The check is a pure function of the current snapshot. A view distance is picked
from the intruder's visibility level, then the segment between guard and
intruder is tested against hard obstacles and heavy cover.
*/
package perception

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-warden/game"
)

// Levels is the number of visibility levels, 0 through 5.
const Levels = 6

var (
	ErrInvalidVisibility = errors.New("visibility level out of range")
	ErrIncompleteTable   = errors.New("view distance table incomplete")
	ErrNotMonotonic      = errors.New("view distances must not decrease with visibility")
)

// ViewTable maps a visibility level to the farthest distance it can be seen from.
type ViewTable [Levels]float64

// DefaultViewTable returns the stock view distances.
func DefaultViewTable() ViewTable {
	return ViewTable{2, 5, 10, 20, 60, 100}
}

// NewViewTable builds a table from a level-keyed map. All six levels must be present.
func NewViewTable(distances map[int]float64) (ViewTable, error) {
	var t ViewTable
	for level := 0; level < Levels; level++ {
		d, ok := distances[level]
		if !ok {
			return ViewTable{}, fmt.Errorf("%w: missing level %d", ErrIncompleteTable, level)
		}
		if d < 0 {
			return ViewTable{}, fmt.Errorf("%w: level %d has negative distance %v", ErrNotMonotonic, level, d)
		}
		if level > 0 && d < t[level-1] {
			return ViewTable{}, fmt.Errorf("%w: level %d (%v) < level %d (%v)", ErrNotMonotonic, level, d, level-1, t[level-1])
		}
		t[level] = d
	}
	if len(distances) != Levels {
		return ViewTable{}, fmt.Errorf("%w: unexpected levels in %v", ErrIncompleteTable, distances)
	}
	return t, nil
}

// Distance returns the view distance for level.
func (t ViewTable) Distance(level int) (float64, error) {
	if level < 0 || level >= Levels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVisibility, level)
	}
	return t[level], nil
}

// Query is one perception check between an observer and the intruder.
type Query struct {
	Observer           game.Vec2
	Target             game.Vec2
	Visibility         int
	ObscuredVisibility int
}

// QueryFor builds the query for an observer against a target snapshot.
func QueryFor(observer game.Vec2, snap game.TargetSnapshot) Query {
	return Query{
		Observer:           observer,
		Target:             snap.Position,
		Visibility:         snap.Visibility,
		ObscuredVisibility: snap.ObscuredVisibility,
	}
}

// Evaluator runs perception checks against a view table. It holds no per-call state.
type Evaluator struct {
	table ViewTable
}

// NewEvaluator creates an evaluator for the given table.
func NewEvaluator(table ViewTable) *Evaluator {
	return &Evaluator{table: table}
}

// Table returns the view table in use.
func (e *Evaluator) Table() ViewTable {
	return e.table
}

// CanPerceive runs the distance, obstacle and heavy cover checks in that order.
// A failed line-of-sight query returns false with an error wrapping ErrPerceptionQueryFailed.
func (e *Evaluator) CanPerceive(q Query, sight game.LineOfSight) (bool, error) {
	viewDistance, err := e.table.Distance(q.Visibility)
	if err != nil {
		return false, err
	}

	distance := q.Observer.Dist(q.Target)
	if distance > viewDistance {
		return false, nil
	}

	blocked, err := sight.Blocked(q.Observer, q.Target, game.LayerObstacle)
	if err != nil {
		return false, fmt.Errorf("%w: %s linecast: %w", game.ErrPerceptionQueryFailed, game.LayerObstacle, err)
	}
	if blocked {
		return false, nil
	}

	covered, err := sight.Blocked(q.Observer, q.Target, game.LayerHeavyCover)
	if err != nil {
		return false, fmt.Errorf("%w: %s linecast: %w", game.ErrPerceptionQueryFailed, game.LayerHeavyCover, err)
	}
	if covered {
		obscured, err := e.table.Distance(q.ObscuredVisibility)
		if err != nil {
			return false, err
		}
		if distance > obscured {
			return false, nil
		}
	}

	return true, nil
}
