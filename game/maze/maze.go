/*
Package maze generates rectangular mazes of cells with four wall flags.

Mazes are carved with a randomized depth-first backtracker driven by an explicit
stack. An optional courtyard square is opened at the center before carving, and an
optional loop pass knocks down extra walls so the maze is not a pure tree.

All randomness comes from the *rand.Rand handed to Generate, so a fixed seed always
reproduces the same maze.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/beka-birhanu/vinom-warden/game"
)

const (
	maxMazeDimension = 512
)

var (
	// neighbourOrder is the order unvisited neighbours are enumerated in by the backtracker.
	neighbourOrder = []WallMask{WallLeft, WallDown, WallUp, WallRight}

	// loopOrder is the priority used by the loop pass when picking a wall to clear.
	loopOrder = []WallMask{WallUp, WallDown, WallRight, WallLeft}

	// courtyardSides is the order courtyard exits are opened in.
	courtyardSides = []WallMask{WallUp, WallDown, WallLeft, WallRight}

	ErrNilRandom = errors.New("nil random source")
)

// Config describes the maze to generate.
type Config struct {
	Width         int // Number of columns.
	Height        int // Number of rows.
	CourtyardSize int // Side of the centered courtyard square, 0 for none.
	Loops         int // Number of extra walls the loop pass tries to clear.
}

// Validate checks the configuration against the generator's limits.
func (c Config) Validate() error {
	if min(c.Width, c.Height) <= 0 || max(c.Width, c.Height) > maxMazeDimension {
		return fmt.Errorf("%w: maze dimensions %dx%d", game.ErrInvalidSpec, c.Width, c.Height)
	}
	if c.CourtyardSize < 0 {
		return fmt.Errorf("%w: negative courtyard size %d", game.ErrInvalidSpec, c.CourtyardSize)
	}
	// The courtyard keeps a ring of ordinary cells so each side has an exterior wall to open.
	if c.CourtyardSize > 0 && c.CourtyardSize > min(c.Width, c.Height)-2 {
		return fmt.Errorf("%w: courtyard size %d does not fit a %dx%d maze", game.ErrInvalidSpec, c.CourtyardSize, c.Width, c.Height)
	}
	if c.Loops < 0 {
		return fmt.Errorf("%w: negative loop count %d", game.ErrInvalidSpec, c.Loops)
	}
	return nil
}

// Maze represents a rectangular maze of cells.
type Maze struct {
	Width  int       // Width of the maze (number of columns).
	Height int       // Height of the maze (number of rows).
	Grid   [][]*Cell // Grid[y][x] holds the cell at column x, row y.

	courtyardX    int
	courtyardY    int
	courtyardSize int
}

// Generate builds a fully connected maze using the given random stream.
func Generate(cfg Config, rng *rand.Rand) (*Maze, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, ErrNilRandom
	}

	m := newMaze(cfg.Width, cfg.Height)
	if cfg.CourtyardSize > 0 {
		m.carveCourtyard(cfg.CourtyardSize, rng)
	}
	m.applyBacktracker(CellPosition{X: 0, Y: 0}, rng)
	m.addLoops(cfg.Loops, rng)

	return m, nil
}

// newMaze allocates a maze with every wall standing.
func newMaze(width, height int) *Maze {
	grid := make([][]*Cell, height)
	for y := range grid {
		grid[y] = make([]*Cell, width)
		for x := range grid[y] {
			grid[y][x] = &Cell{X: x, Y: y, Walls: allWalls}
		}
	}

	return &Maze{
		Width:  width,
		Height: height,
		Grid:   grid,
	}
}

// At returns the cell at column x, row y.
func (m *Maze) At(x, y int) *Cell {
	return m.Grid[y][x]
}

// InBound reports whether (x, y) lies inside the maze.
func (m *Maze) InBound(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Courtyard returns the lower-left corner and side of the courtyard square; size is 0 when absent.
func (m *Maze) Courtyard() (x, y, size int) {
	return m.courtyardX, m.courtyardY, m.courtyardSize
}

// IsOpen reports whether the cardinal wall w of cell (x, y) has been cleared.
func (m *Maze) IsOpen(x, y int, w WallMask) bool {
	return m.InBound(x, y) && !m.At(x, y).HasWall(w)
}

// neighbour returns the move from pos through the cardinal wall w, if the cell on the other side exists.
func (m *Maze) neighbour(pos CellPosition, w WallMask) (Move, bool) {
	dx, dy := Delta(w)
	to := CellPosition{X: pos.X + dx, Y: pos.Y + dy}
	if !m.InBound(to.X, to.Y) {
		return Move{}, false
	}
	return Move{From: pos, To: to, Wall: w}, true
}

// unvisitedNeighbours lists the moves from pos into cells the generator has not reached yet.
func (m *Maze) unvisitedNeighbours(pos CellPosition) []Move {
	result := make([]Move, 0, len(neighbourOrder))
	for _, w := range neighbourOrder {
		move, ok := m.neighbour(pos, w)
		if ok && !m.At(move.To.X, move.To.Y).Visited {
			result = append(result, move)
		}
	}
	return result
}

// openWall removes the wall between two adjacent cells on both sides.
func (m *Maze) openWall(move Move) {
	m.At(move.From.X, move.From.Y).removeWall(move.Wall)
	m.At(move.To.X, move.To.Y).removeWall(Opposite(move.Wall))
}

// carveCourtyard opens a centered square of pre-visited cells with one exit per side.
func (m *Maze) carveCourtyard(size int, rng *rand.Rand) {
	ox, oy := (m.Width-size)/2, (m.Height-size)/2
	m.courtyardX, m.courtyardY, m.courtyardSize = ox, oy, size

	for y := oy; y < oy+size; y++ {
		for x := ox; x < ox+size; x++ {
			cell := m.At(x, y)
			cell.Kind = Courtyard
			cell.markVisited()
		}
	}

	for y := oy; y < oy+size; y++ {
		for x := ox; x < ox+size; x++ {
			pos := CellPosition{X: x, Y: y}
			for _, w := range []WallMask{WallRight, WallUp} {
				if move, ok := m.neighbour(pos, w); ok && m.At(move.To.X, move.To.Y).IsCourtyard() {
					m.openWall(move)
				}
			}
			// Pillar between four courtyard cells.
			if x > ox && y < oy+size-1 {
				m.At(x, y).removeWall(WallUpLeftCorner)
			}
		}
	}

	for _, side := range courtyardSides {
		i := rng.Intn(size)
		var pos CellPosition
		switch side {
		case WallUp:
			pos = CellPosition{X: ox + i, Y: oy + size - 1}
		case WallDown:
			pos = CellPosition{X: ox + i, Y: oy}
		case WallLeft:
			pos = CellPosition{X: ox, Y: oy + i}
		case WallRight:
			pos = CellPosition{X: ox + size - 1, Y: oy + i}
		}
		if move, ok := m.neighbour(pos, side); ok {
			m.openWall(move)
		}
	}
}

// applyBacktracker carves a spanning tree over every unvisited cell reachable from start.
func (m *Maze) applyBacktracker(start CellPosition, rng *rand.Rand) {
	if m.At(start.X, start.Y).Visited {
		return
	}

	m.At(start.X, start.Y).markVisited()
	stack := []CellPosition{start}

	for len(stack) > 0 {
		current := pop(&stack)
		neighbours := m.unvisitedNeighbours(current)
		if len(neighbours) == 0 {
			continue
		}

		stack = append(stack, current)

		next := neighbours[rng.Intn(len(neighbours))]
		m.openWall(next)
		m.At(next.To.X, next.To.Y).markVisited()

		stack = append(stack, next.To)
	}
}

// addLoops clears one standing wall on each of n randomly chosen interior cells.
// A cell with no eligible standing wall is skipped without retrying.
func (m *Maze) addLoops(n int, rng *rand.Rand) {
	if n == 0 {
		return
	}

	var candidates []CellPosition
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			if !m.At(x, y).IsCourtyard() {
				candidates = append(candidates, CellPosition{X: x, Y: y})
			}
		}
	}
	if len(candidates) == 0 {
		return
	}

	for range n {
		pos := candidates[rng.Intn(len(candidates))]
		cell := m.At(pos.X, pos.Y)
		for _, w := range loopOrder {
			if !cell.HasWall(w) {
				continue
			}
			move, _ := m.neighbour(pos, w)
			if m.At(move.To.X, move.To.Y).IsCourtyard() {
				continue
			}
			m.openWall(move)
			break
		}
	}
}

// OpenExit clears one randomly chosen outer wall of the maze and returns it.
// It returns false when every border wall is already open.
func (m *Maze) OpenExit(rng *rand.Rand) (Move, bool) {
	var candidates []Move
	add := func(x, y int, w WallMask) {
		if m.At(x, y).HasWall(w) {
			dx, dy := Delta(w)
			candidates = append(candidates, Move{
				From: CellPosition{X: x, Y: y},
				To:   CellPosition{X: x + dx, Y: y + dy},
				Wall: w,
			})
		}
	}
	for x := 0; x < m.Width; x++ {
		add(x, 0, WallDown)
		add(x, m.Height-1, WallUp)
	}
	for y := 0; y < m.Height; y++ {
		add(0, y, WallLeft)
		add(m.Width-1, y, WallRight)
	}
	if len(candidates) == 0 {
		return Move{}, false
	}

	exit := candidates[rng.Intn(len(candidates))]
	m.At(exit.From.X, exit.From.Y).removeWall(exit.Wall)
	return exit, true
}

// OpenPassages counts the cleared walls between pairs of adjacent cells.
func (m *Maze) OpenPassages() int {
	count := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if x+1 < m.Width && !m.At(x, y).HasWall(WallRight) {
				count++
			}
			if y+1 < m.Height && !m.At(x, y).HasWall(WallUp) {
				count++
			}
		}
	}
	return count
}

// Reachable returns how many cells can be reached from (0, 0) through open walls.
func (m *Maze) Reachable() int {
	seen := make([]bool, m.Width*m.Height)
	seen[0] = true
	stack := []CellPosition{{X: 0, Y: 0}}
	count := 0

	for len(stack) > 0 {
		pos := pop(&stack)
		count++
		for _, w := range neighbourOrder {
			move, ok := m.neighbour(pos, w)
			if !ok || m.At(pos.X, pos.Y).HasWall(w) {
				continue
			}
			idx := move.To.Y*m.Width + move.To.X
			if !seen[idx] {
				seen[idx] = true
				stack = append(stack, move.To)
			}
		}
	}

	return count
}

// WallMasks returns every cell's wall mask in row-major order.
func (m *Maze) WallMasks() []byte {
	out := make([]byte, 0, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out = append(out, byte(m.At(x, y).Walls))
		}
	}
	return out
}

// pop removes and returns the last element of a stack of CellPositions.
func pop(s *[]CellPosition) CellPosition {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}

// String provides a textual representation of the maze with the top row printed first.
func (m *Maze) String() string {
	var b strings.Builder

	// Top boundary
	b.WriteString("+")
	for x := 0; x < m.Width; x++ {
		if m.At(x, m.Height-1).HasWall(WallUp) {
			b.WriteString("---+")
		} else {
			b.WriteString("   +")
		}
	}
	b.WriteString("\n")

	for y := m.Height - 1; y >= 0; y-- {
		// Cell rows
		if m.At(0, y).HasWall(WallLeft) {
			b.WriteString("|")
		} else {
			b.WriteString(" ")
		}
		for x := 0; x < m.Width; x++ {
			cell := m.At(x, y)
			if cell.IsCourtyard() {
				b.WriteString(" . ")
			} else {
				b.WriteString("   ")
			}
			if cell.HasWall(WallRight) {
				b.WriteString("|")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")

		// Wall rows
		b.WriteString("+")
		for x := 0; x < m.Width; x++ {
			if m.At(x, y).HasWall(WallDown) {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
