/*
Package world composites one or more generated mazes into a single tile grid.

Each maze cell maps to an odd world tile and the walls between cells map to the
even seam tiles around it, so a maze of w x h cells occupies (2w+1) x (2h+1)
tiles. Everything outside a maze footprint is open Ground.
*/
package world

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/maze"
	"github.com/zyedidia/generic/mapset"
)

var (
	ErrNoSpecs   = errors.New("no maze specs")
	ErrNilRandom = maze.ErrNilRandom
)

var cardinalWalls = []maze.WallMask{maze.WallUp, maze.WallDown, maze.WallLeft, maze.WallRight}

// Options tunes composition beyond the maze specs.
type Options struct {
	Wilderness      int  // Ring of open maze cells added around the whole maze area.
	Loops           int  // Loop count handed to every maze.
	CornerSmoothing bool // Open the pillar tile of cleared up-left corners.
	PlaceFinish     bool // Overwrite one random maze cell with a Finish tile.
}

// placed is a maze that has been written into the grid.
type placed struct {
	spec Spec
	maze *maze.Maze
	rng  *rand.Rand
}

// World is the composited tile grid. It is read-only after Compose returns.
type World struct {
	Width  int // Number of tile columns.
	Height int // Number of tile rows.

	tiles       []TileType
	margin      int
	totalWidth  int
	totalHeight int
	footprints  []game.Rect
	courtyard   mapset.Set[game.Point]
	finish      game.Point
	hasFinish   bool
}

// Compose validates every spec, then carves each maze into a shared grid.
// Nothing is allocated when a spec is rejected.
func Compose(totalWidth, totalHeight int, specs []Spec, opts Options, rng *rand.Rand) (*World, error) {
	if rng == nil {
		return nil, ErrNilRandom
	}
	if err := validate(totalWidth, totalHeight, specs, opts); err != nil {
		return nil, err
	}

	m := opts.Wilderness
	w := &World{
		Width:       (totalWidth+2*m)*2 + 1,
		Height:      (totalHeight+2*m)*2 + 1,
		margin:      m,
		totalWidth:  totalWidth,
		totalHeight: totalHeight,
		courtyard:   mapset.New[game.Point](),
	}
	w.tiles = make([]TileType, w.Width*w.Height)
	for i := range w.tiles {
		w.tiles[i] = Ground
	}

	mazes := make([]placed, 0, len(specs))
	for _, s := range specs {
		mrng := rand.New(rand.NewSource(rng.Int63()))
		mz, err := maze.Generate(maze.Config{
			Width:         s.LengthX,
			Height:        s.LengthZ,
			CourtyardSize: s.CourtyardSize,
			Loops:         opts.Loops,
		}, mrng)
		if err != nil {
			return nil, err
		}

		footprint := w.footprint(s)
		w.footprints = append(w.footprints, footprint)
		w.fill(footprint, Wall)
		w.carve(s, mz, opts.CornerSmoothing)
		mazes = append(mazes, placed{spec: s, maze: mz, rng: mrng})
	}

	// Exits go in after every footprint is drawn so a neighbouring fill cannot close them.
	for _, p := range mazes {
		for range p.spec.NumExits {
			exit, ok := p.maze.OpenExit(p.rng)
			if !ok {
				break
			}
			dx, dz := maze.Delta(exit.Wall)
			t := w.cellTile(p.spec, exit.From.X, exit.From.Y)
			w.set(t.X+dx, t.Z+dz, Floor)
		}
	}

	if opts.PlaceFinish {
		p := mazes[rng.Intn(len(mazes))]
		w.finish = w.cellTile(p.spec, rng.Intn(p.spec.LengthX), rng.Intn(p.spec.LengthZ))
		w.hasFinish = true
		w.set(w.finish.X, w.finish.Z, Finish)
	}

	return w, nil
}

// validate rejects the whole composition before any tile is written.
func validate(totalWidth, totalHeight int, specs []Spec, opts Options) error {
	if totalWidth < 1 || totalHeight < 1 {
		return fmt.Errorf("%w: world size %dx%d", game.ErrInvalidSpec, totalWidth, totalHeight)
	}
	if opts.Wilderness < 0 || opts.Loops < 0 {
		return fmt.Errorf("%w: negative wilderness %d or loops %d", game.ErrInvalidSpec, opts.Wilderness, opts.Loops)
	}
	if len(specs) == 0 {
		return fmt.Errorf("%w: %w", game.ErrInvalidSpec, ErrNoSpecs)
	}

	for i, s := range specs {
		if err := s.validate(totalWidth, totalHeight); err != nil {
			return fmt.Errorf("maze %d: %w", i, err)
		}
		for j := 0; j < i; j++ {
			if s.overlaps(specs[j]) {
				return fmt.Errorf("maze %d: %w: overlaps maze %d", i, game.ErrInvalidSpec, j)
			}
		}
		cfg := maze.Config{Width: s.LengthX, Height: s.LengthZ, CourtyardSize: s.CourtyardSize, Loops: opts.Loops}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("maze %d: %w", i, err)
		}
	}
	return nil
}

// footprint returns the tiles covered by a spec including its outer wall seams.
func (w *World) footprint(s Spec) game.Rect {
	return game.Rect{
		MinX: 2 * (s.StartX + w.margin),
		MinZ: 2 * (s.StartZ + w.margin),
		MaxX: 2 * (s.StartX + w.margin + s.LengthX),
		MaxZ: 2 * (s.StartZ + w.margin + s.LengthZ),
	}
}

// cellTile maps a maze-local cell to its world tile.
func (w *World) cellTile(s Spec, cx, cz int) game.Point {
	return game.Point{
		X: 2*(s.StartX+w.margin) + 2*cx + 1,
		Z: 2*(s.StartZ+w.margin) + 2*cz + 1,
	}
}

func (w *World) fill(r game.Rect, t TileType) {
	for z := r.MinZ; z <= r.MaxZ; z++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			w.set(x, z, t)
		}
	}
}

func (w *World) set(x, z int, t TileType) {
	if w.InBounds(x, z) {
		w.tiles[z*w.Width+x] = t
	}
}

// carve writes the cells and cleared seams of a maze as Floor.
func (w *World) carve(s Spec, mz *maze.Maze, smoothing bool) {
	for cz := 0; cz < mz.Height; cz++ {
		for cx := 0; cx < mz.Width; cx++ {
			cell := mz.At(cx, cz)
			t := w.cellTile(s, cx, cz)
			w.set(t.X, t.Z, Floor)

			for _, wall := range cardinalWalls {
				if cell.HasWall(wall) {
					continue
				}
				dx, dz := maze.Delta(wall)
				w.set(t.X+dx, t.Z+dz, Floor)
			}
			if smoothing && !cell.HasWall(maze.WallUpLeftCorner) {
				w.set(t.X-1, t.Z+1, Floor)
			}

			if !cell.IsCourtyard() {
				continue
			}
			w.courtyard.Put(t)
			for _, wall := range []maze.WallMask{maze.WallRight, maze.WallUp} {
				dx, dz := maze.Delta(wall)
				if mz.InBound(cx+dx, cz+dz) && mz.At(cx+dx, cz+dz).IsCourtyard() && !cell.HasWall(wall) {
					w.courtyard.Put(game.Point{X: t.X + dx, Z: t.Z + dz})
				}
			}
			if smoothing && !cell.HasWall(maze.WallUpLeftCorner) {
				w.courtyard.Put(game.Point{X: t.X - 1, Z: t.Z + 1})
			}
		}
	}
}

// InBounds reports whether (x, z) is a tile of the world.
func (w *World) InBounds(x, z int) bool {
	return x >= 0 && x < w.Width && z >= 0 && z < w.Height
}

// At returns the tile at (x, z). Tiles outside the world read as Wall.
func (w *World) At(x, z int) TileType {
	if !w.InBounds(x, z) {
		return Wall
	}
	return w.tiles[z*w.Width+x]
}

// Walkable reports whether agents can stand on p.
func (w *World) Walkable(p game.Point) bool {
	return w.At(p.X, p.Z).Walkable()
}

// IsCourtyard reports whether p is an open courtyard tile.
func (w *World) IsCourtyard(p game.Point) bool {
	return w.courtyard.Has(p)
}

// CourtyardTiles returns the courtyard tiles in row-major order.
func (w *World) CourtyardTiles() []game.Point {
	return w.collect(w.Bounds(), w.IsCourtyard)
}

// OpenTiles returns the walkable tiles inside area in row-major order.
func (w *World) OpenTiles(area game.Rect) []game.Point {
	return w.collect(area, w.Walkable)
}

// FloorTiles returns the maze floor tiles inside area in row-major order.
func (w *World) FloorTiles(area game.Rect) []game.Point {
	return w.collect(area, func(p game.Point) bool {
		t := w.At(p.X, p.Z)
		return t == Floor || t == Finish
	})
}

func (w *World) collect(area game.Rect, keep func(game.Point) bool) []game.Point {
	var out []game.Point
	for z := max(area.MinZ, 0); z <= min(area.MaxZ, w.Height-1); z++ {
		for x := max(area.MinX, 0); x <= min(area.MaxX, w.Width-1); x++ {
			p := game.Point{X: x, Z: z}
			if keep(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// ReachableFrom returns every walkable tile connected to start through 4-neighbour steps.
func (w *World) ReachableFrom(start game.Point) mapset.Set[game.Point] {
	seen := mapset.New[game.Point]()
	if !w.Walkable(start) {
		return seen
	}

	seen.Put(start)
	queue := []game.Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [4]game.Point{{X: 0, Z: 1}, {X: 0, Z: -1}, {X: -1, Z: 0}, {X: 1, Z: 0}} {
			n := game.Point{X: p.X + d.X, Z: p.Z + d.Z}
			if w.Walkable(n) && !seen.Has(n) {
				seen.Put(n)
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// Bounds returns the full tile extent of the world.
func (w *World) Bounds() game.Rect {
	return game.Rect{MaxX: w.Width - 1, MaxZ: w.Height - 1}
}

// SpawnArea returns the tile extent of the maze area without the wilderness ring.
func (w *World) SpawnArea() game.Rect {
	return game.Rect{
		MinX: 2 * w.margin,
		MinZ: 2 * w.margin,
		MaxX: 2 * (w.margin + w.totalWidth),
		MaxZ: 2 * (w.margin + w.totalHeight),
	}
}

// SpecBounds returns the tile footprint of every maze in declaration order.
func (w *World) SpecBounds() []game.Rect {
	return append([]game.Rect(nil), w.footprints...)
}

// Finish returns the finish tile if one was placed.
func (w *World) Finish() (game.Point, bool) {
	return w.finish, w.hasFinish
}

// Codes returns the tile values in row-major order, z ascending.
func (w *World) Codes() []byte {
	out := make([]byte, len(w.tiles))
	for i, t := range w.tiles {
		out[i] = byte(t)
	}
	return out
}

// Layout returns one string per tile row, z ascending.
func (w *World) Layout() []string {
	rows := make([]string, w.Height)
	for z := 0; z < w.Height; z++ {
		var b strings.Builder
		b.Grow(w.Width)
		for x := 0; x < w.Width; x++ {
			b.WriteRune(w.At(x, z).Rune())
		}
		rows[z] = b.String()
	}
	return rows
}

// String renders the world with the highest row first.
func (w *World) String() string {
	rows := w.Layout()
	var b strings.Builder
	for z := len(rows) - 1; z >= 0; z-- {
		b.WriteString(rows[z])
		b.WriteByte('\n')
	}
	return b.String()
}
