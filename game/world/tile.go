package world

// TileType is the content of one world tile.
type TileType uint8

// Tile values match the layout codes stored by the world cache.
const (
	Floor TileType = iota
	Wall
	Finish
	Ground
)

// String returns the tile name.
func (t TileType) String() string {
	switch t {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case Finish:
		return "finish"
	case Ground:
		return "ground"
	default:
		return "unknown"
	}
}

// Rune returns the character used for the tile in layout dumps.
func (t TileType) Rune() rune {
	switch t {
	case Floor:
		return ' '
	case Wall:
		return '#'
	case Finish:
		return 'F'
	case Ground:
		return '.'
	default:
		return '?'
	}
}

// Walkable reports whether agents can stand on the tile.
func (t TileType) Walkable() bool {
	return t != Wall
}
