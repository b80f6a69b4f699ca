package navigation

import (
	"strings"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textGrid reads rows bottom-up; '#' is blocked.
type textGrid []string

func (g textGrid) Walkable(p game.Point) bool {
	if p.Z < 0 || p.Z >= len(g) || p.X < 0 || p.X >= len(g[p.Z]) {
		return false
	}
	return g[p.Z][p.X] != '#'
}

func (g textGrid) Bounds() game.Rect {
	return game.Rect{MaxX: len(g[0]) - 1, MaxZ: len(g) - 1}
}

func newGrid(rows ...string) textGrid {
	return textGrid(rows)
}

func TestResolveWalkable(t *testing.T) {
	grid := newGrid(
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	)
	nav, err := New(grid, Config{})
	require.NoError(t, err)

	t.Run("Walkable point resolves to its tile center", func(t *testing.T) {
		p, err := nav.ResolveWalkable(game.Vec2{X: 0.2, Z: 3.9})
		require.NoError(t, err)
		assert.Equal(t, game.Vec2{X: 0, Z: 4}, p)
	})

	t.Run("Blocked point resolves to the nearest open tile", func(t *testing.T) {
		p, err := nav.ResolveWalkable(game.Vec2{X: 1.2, Z: 2})
		require.NoError(t, err)
		assert.Equal(t, game.Vec2{X: 0, Z: 2}, p)
	})

	t.Run("Points outside the grid are clamped", func(t *testing.T) {
		p, err := nav.ResolveWalkable(game.Vec2{X: 40, Z: -3})
		require.NoError(t, err)
		assert.Equal(t, game.Vec2{X: 4, Z: 0}, p)
	})

	t.Run("Nothing within radius", func(t *testing.T) {
		solid := newGrid(strings.Repeat("#", 9), strings.Repeat("#", 9))
		small, err := New(solid, Config{SearchRadius: 2})
		require.NoError(t, err)

		_, err = small.ResolveWalkable(game.Vec2{X: 4, Z: 1})
		assert.ErrorIs(t, err, game.ErrPathResolutionFailed)
	})
}

func TestSetDestination(t *testing.T) {
	grid := newGrid(
		".....",
		"####.",
		".....",
	)
	nav, err := New(grid, Config{Speed: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, nav.SetDestination(7, game.Vec2{}), ErrUnknownAgent)

	nav.Place(1, game.Vec2{X: 0, Z: 0})
	require.NoError(t, nav.SetDestination(1, game.Vec2{X: 0, Z: 2}))
	dest, ok := nav.Destination(1)
	require.True(t, ok)
	assert.Equal(t, game.Vec2{X: 0, Z: 2}, dest)

	assert.ErrorIs(t, nav.SetDestination(1, game.Vec2{X: 1, Z: 1}), game.ErrPathResolutionFailed)

	require.NoError(t, nav.SetDestination(1, game.Vec2{X: 0.3, Z: 0.1}))
	_, ok = nav.Destination(1)
	assert.False(t, ok, "destination on own tile halts")

	sealed := newGrid(".#.")
	other, err := New(sealed, Config{})
	require.NoError(t, err)
	other.Place(1, game.Vec2{})
	assert.ErrorIs(t, other.SetDestination(1, game.Vec2{X: 2}), game.ErrPathResolutionFailed)
}

func TestStep(t *testing.T) {
	grid := newGrid(
		".....",
		"####.",
		".....",
	)
	nav, err := New(grid, Config{Speed: 2})
	require.NoError(t, err)
	nav.Place(1, game.Vec2{X: 0, Z: 0})
	require.NoError(t, nav.SetDestination(1, game.Vec2{X: 0, Z: 2}))

	nav.Step(500 * time.Millisecond)
	assert.Equal(t, game.Vec2{X: 1, Z: 0}, nav.Position(1))
	assert.Equal(t, game.Vec2{X: 2, Z: 0}, nav.Velocity(1))

	// The route runs 4 tiles right, 2 up and 4 left.
	for range 9 {
		nav.Step(500 * time.Millisecond)
	}
	assert.Equal(t, game.Vec2{X: 0, Z: 2}, nav.Position(1))

	nav.Step(500 * time.Millisecond)
	assert.Equal(t, game.Vec2{}, nav.Velocity(1))

	nav.Remove(1)
	assert.Equal(t, game.Vec2{}, nav.Position(1))
}

func TestNewRejectsNegativeSpeed(t *testing.T) {
	_, err := New(newGrid("."), Config{Speed: -1})
	assert.ErrorIs(t, err, ErrInvalidSpeed)
}
