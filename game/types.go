package game

import "math"

// Vec2 is a position or velocity on the ground plane, measured in tiles.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Z: v.Z + o.Z}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Z: v.Z - o.Z}
}

// Scale returns v*f.
func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Z: v.Z * f}
}

// Len returns the euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Z)
}

// Dist returns the euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return v.Sub(o).Len()
}

// Tile returns the tile the position falls into. Tile centers sit on integer coordinates.
func (v Vec2) Tile() Point {
	return Point{X: int(math.Round(v.X)), Z: int(math.Round(v.Z))}
}

// Point is an integer tile coordinate in the composited world.
type Point struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Vec returns the center of the tile.
func (p Point) Vec() Vec2 {
	return Vec2{X: float64(p.X), Z: float64(p.Z)}
}

// Rect is an inclusive range of tiles.
type Rect struct {
	MinX int `json:"min_x"`
	MinZ int `json:"min_z"`
	MaxX int `json:"max_x"`
	MaxZ int `json:"max_z"`
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Z >= r.MinZ && p.Z <= r.MaxZ
}

// Clamp moves v inside r.
func (r Rect) Clamp(v Vec2) Vec2 {
	return Vec2{
		X: math.Min(math.Max(v.X, float64(r.MinX)), float64(r.MaxX)),
		Z: math.Min(math.Max(v.Z, float64(r.MinZ)), float64(r.MaxZ)),
	}
}

// Width returns the number of tile columns covered by r.
func (r Rect) Width() int {
	return r.MaxX - r.MinX + 1
}

// Height returns the number of tile rows covered by r.
func (r Rect) Height() int {
	return r.MaxZ - r.MinZ + 1
}

// Extent returns the larger of the two sides.
func (r Rect) Extent() int {
	return max(r.Width(), r.Height())
}

// TargetSnapshot is the intruder state the guards read once per tick.
type TargetSnapshot struct {
	Position           Vec2 // Live position of the intruder.
	Visibility         int  // Visibility level 0-5.
	ObscuredVisibility int  // Visibility level used when heavy cover sits between guard and intruder.
}
