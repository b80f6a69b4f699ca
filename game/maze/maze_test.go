package maze

import (
	"math/rand"
	"testing"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroSource makes every rng.Intn call return 0 so generation can be traced by hand.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func assertSymmetric(t *testing.T, m *Maze) {
	t.Helper()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			for _, w := range []WallMask{WallUp, WallDown, WallLeft, WallRight} {
				dx, dy := Delta(w)
				if !m.InBound(x+dx, y+dy) {
					assert.True(t, m.At(x, y).HasWall(w), "border wall %v of (%d,%d) cleared", w, x, y)
					continue
				}
				assert.Equal(t, m.At(x, y).HasWall(w), m.At(x+dx, y+dy).HasWall(Opposite(w)),
					"asymmetric wall between (%d,%d) and (%d,%d)", x, y, x+dx, y+dy)
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	t.Run("Backtracker carves a spanning tree", func(t *testing.T) {
		for _, size := range [][2]int{{1, 1}, {1, 7}, {2, 2}, {5, 5}, {12, 7}, {30, 30}} {
			for seed := int64(1); seed <= 5; seed++ {
				m, err := Generate(Config{Width: size[0], Height: size[1]}, rand.New(rand.NewSource(seed)))
				require.NoError(t, err)

				cells := size[0] * size[1]
				assert.Equal(t, cells-1, m.OpenPassages(), "size %v seed %d", size, seed)
				assert.Equal(t, cells, m.Reachable(), "size %v seed %d", size, seed)
				assertSymmetric(t, m)
			}
		}
	})

	t.Run("Same seed reproduces the maze", func(t *testing.T) {
		cfg := Config{Width: 11, Height: 9, CourtyardSize: 3, Loops: 6}
		a, err := Generate(cfg, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		b, err := Generate(cfg, rand.New(rand.NewSource(42)))
		require.NoError(t, err)

		assert.Equal(t, a.WallMasks(), b.WallMasks())
	})

	t.Run("Visited is set on every cell", func(t *testing.T) {
		m, err := Generate(Config{Width: 6, Height: 4, CourtyardSize: 2}, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				assert.True(t, m.At(x, y).Visited)
			}
		}
	})
}

func TestGenerateInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero width", cfg: Config{Width: 0, Height: 5}},
		{name: "negative height", cfg: Config{Width: 5, Height: -1}},
		{name: "too large", cfg: Config{Width: maxMazeDimension + 1, Height: 5}},
		{name: "courtyard exceeds maze", cfg: Config{Width: 5, Height: 5, CourtyardSize: 6}},
		{name: "courtyard leaves no ring", cfg: Config{Width: 5, Height: 8, CourtyardSize: 4}},
		{name: "negative courtyard", cfg: Config{Width: 5, Height: 5, CourtyardSize: -1}},
		{name: "negative loops", cfg: Config{Width: 5, Height: 5, Loops: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Generate(tt.cfg, rand.New(rand.NewSource(1)))
			assert.Nil(t, m)
			assert.ErrorIs(t, err, game.ErrInvalidSpec)
		})
	}

	t.Run("nil random source", func(t *testing.T) {
		_, err := Generate(Config{Width: 3, Height: 3}, nil)
		assert.ErrorIs(t, err, ErrNilRandom)
	})
}

func TestCourtyard(t *testing.T) {
	for _, k := range []int{1, 2, 3, 5} {
		for seed := int64(1); seed <= 4; seed++ {
			m, err := Generate(Config{Width: 9, Height: 9, CourtyardSize: k}, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)

			ox, oy, size := m.Courtyard()
			require.Equal(t, k, size)
			assert.Equal(t, (9-k)/2, ox)
			assert.Equal(t, (9-k)/2, oy)

			// No interior wall between two courtyard cells.
			for y := oy; y < oy+k; y++ {
				for x := ox; x < ox+k; x++ {
					cell := m.At(x, y)
					assert.True(t, cell.IsCourtyard())
					if x+1 < ox+k {
						assert.False(t, cell.HasWall(WallRight))
					}
					if y+1 < oy+k {
						assert.False(t, cell.HasWall(WallUp))
					}
					if x > ox && y+1 < oy+k {
						assert.False(t, cell.HasWall(WallUpLeftCorner))
					} else {
						assert.True(t, cell.HasWall(WallUpLeftCorner))
					}
				}
			}

			// Exactly one exterior opening per side.
			count := func(cells func(i int) (int, int), w WallMask) int {
				open := 0
				for i := 0; i < k; i++ {
					x, y := cells(i)
					if !m.At(x, y).HasWall(w) {
						open++
					}
				}
				return open
			}
			assert.Equal(t, 1, count(func(i int) (int, int) { return ox + i, oy + k - 1 }, WallUp))
			assert.Equal(t, 1, count(func(i int) (int, int) { return ox + i, oy }, WallDown))
			assert.Equal(t, 1, count(func(i int) (int, int) { return ox, oy + i }, WallLeft))
			assert.Equal(t, 1, count(func(i int) (int, int) { return ox + k - 1, oy + i }, WallRight))

			assert.Equal(t, 81, m.Reachable())
			assertSymmetric(t, m)
		}
	}
}

func TestGoldenSnapshot(t *testing.T) {
	m, err := Generate(Config{Width: 5, Height: 5, CourtyardSize: 1}, rand.New(zeroSource{}))
	require.NoError(t, err)

	golden := []struct {
		x, y int
		mask WallMask
	}{
		{x: 2, y: 2, mask: 0x10}, // courtyard center, all four exits open
		{x: 0, y: 0, mask: 0x1E}, // start corner
		{x: 4, y: 3, mask: 0x1E}, // dead end closing the first branch
		{x: 1, y: 2, mask: 0x14},
		{x: 3, y: 2, mask: 0x12},
		{x: 4, y: 4, mask: 0x19},
	}
	for _, g := range golden {
		assert.Equal(t, g.mask, m.At(g.x, g.y).Walls, "cell (%d,%d): %s", g.x, g.y, m.At(g.x, g.y).Walls)
	}

	// 23 tree edges over the ordinary cells plus the 4 courtyard exits.
	assert.Equal(t, 27, m.OpenPassages())
	assert.Equal(t, 25, m.Reachable())
}

func TestLoops(t *testing.T) {
	t.Run("Loop pass clears the first standing wall in priority order", func(t *testing.T) {
		m, err := Generate(Config{Width: 5, Height: 5, CourtyardSize: 1, Loops: 1}, rand.New(zeroSource{}))
		require.NoError(t, err)

		// (1,1) has Up and Down open, so Right is the first standing wall.
		assert.False(t, m.At(1, 1).HasWall(WallRight))
		assert.False(t, m.At(2, 1).HasWall(WallLeft))
		assert.Equal(t, 28, m.OpenPassages())
		assertSymmetric(t, m)
	})

	t.Run("Loops add cycles without opening the border", func(t *testing.T) {
		m, err := Generate(Config{Width: 15, Height: 15, Loops: 20}, rand.New(rand.NewSource(9)))
		require.NoError(t, err)

		assert.Greater(t, m.OpenPassages(), 15*15-1)
		assert.LessOrEqual(t, m.OpenPassages(), 15*15-1+20)
		assertSymmetric(t, m)
	})

	t.Run("Maze without interior cells ignores loops", func(t *testing.T) {
		m, err := Generate(Config{Width: 2, Height: 6, Loops: 10}, rand.New(rand.NewSource(4)))
		require.NoError(t, err)
		assert.Equal(t, 11, m.OpenPassages())
	})
}

func TestOpenExit(t *testing.T) {
	m, err := Generate(Config{Width: 5, Height: 5, CourtyardSize: 1}, rand.New(zeroSource{}))
	require.NoError(t, err)

	exit, ok := m.OpenExit(rand.New(zeroSource{}))
	require.True(t, ok)
	assert.Equal(t, CellPosition{X: 0, Y: 0}, exit.From)
	assert.Equal(t, WallDown, exit.Wall)
	assert.False(t, m.At(0, 0).HasWall(WallDown))
	assert.Equal(t, WallMask(0x1C), m.At(0, 0).Walls)
}

func TestString(t *testing.T) {
	m, err := Generate(Config{Width: 3, Height: 2}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	out := m.String()
	assert.Len(t, out, 5*(3*4+2))
	assert.Equal(t, "+---+---+---+\n", out[:14])
}
