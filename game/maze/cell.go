package maze

// WallMask is the set of walls still standing around a cell.
type WallMask uint8

// Wall bits. Up faces +y, Down faces -y, Left faces -x, Right faces +x.
// WallUpLeftCorner is the pillar shared with the up-left diagonal neighbour.
const (
	WallUp WallMask = 1 << iota
	WallDown
	WallLeft
	WallRight
	WallUpLeftCorner

	allWalls = WallUp | WallDown | WallLeft | WallRight | WallUpLeftCorner
)

// Has reports whether every wall in w is standing.
func (m WallMask) Has(w WallMask) bool {
	return m&w == w
}

// String returns a compact representation such as "U.LR*".
func (m WallMask) String() string {
	out := []byte(".....")
	for i, w := range []WallMask{WallUp, WallDown, WallLeft, WallRight, WallUpLeftCorner} {
		if m.Has(w) {
			out[i] = "UDLR*"[i]
		}
	}
	return string(out)
}

// Opposite returns the wall facing back from the neighbour across w.
func Opposite(w WallMask) WallMask {
	switch w {
	case WallUp:
		return WallDown
	case WallDown:
		return WallUp
	case WallLeft:
		return WallRight
	case WallRight:
		return WallLeft
	default:
		return 0
	}
}

// Delta returns the cell offset across the cardinal wall w.
func Delta(w WallMask) (dx, dy int) {
	switch w {
	case WallUp:
		return 0, 1
	case WallDown:
		return 0, -1
	case WallLeft:
		return -1, 0
	case WallRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// CellKind tags cells for later prop and biome placement. It does not affect wall logic.
type CellKind uint8

const (
	Normal CellKind = iota
	Courtyard
)

// Cell represents a single cell in a maze grid.
type Cell struct {
	X       int      // X is the column of the cell in maze-local coordinates.
	Y       int      // Y is the row of the cell in maze-local coordinates.
	Walls   WallMask // Walls holds the walls still standing.
	Visited bool     // Visited is only meaningful while the maze is being generated.
	Kind    CellKind // Kind tags courtyard cells.
}

// HasWall returns true if the wall w is standing.
func (c *Cell) HasWall(w WallMask) bool {
	return c.Walls.Has(w)
}

// IsCourtyard returns true if the cell belongs to the courtyard square.
func (c *Cell) IsCourtyard() bool {
	return c.Kind == Courtyard
}

// removeWall clears a single wall bit.
func (c *Cell) removeWall(w WallMask) {
	c.Walls &^= w
}

// markVisited flags the cell as reached by the generator.
func (c *Cell) markVisited() {
	c.Visited = true
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	X int
	Y int
}

// Move represents a passage from one cell to an adjacent one through Wall.
type Move struct {
	From CellPosition // Cell the wall belongs to.
	To   CellPosition // Cell on the other side.
	Wall WallMask     // Wall of From that faces To.
}
