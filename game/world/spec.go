package world

import (
	"fmt"

	"github.com/beka-birhanu/vinom-warden/game"
)

// Spec places one maze inside the world. Coordinates are in maze cells.
type Spec struct {
	StartX        int `json:"start_x" yaml:"start_x"`
	StartZ        int `json:"start_z" yaml:"start_z"`
	LengthX       int `json:"length_x" yaml:"length_x"`
	LengthZ       int `json:"length_z" yaml:"length_z"`
	CourtyardSize int `json:"courtyard_size" yaml:"courtyard_size"`
	NumExits      int `json:"num_exits" yaml:"num_exits"`
}

// validate checks the spec against a world of totalWidth x totalHeight cells.
func (s Spec) validate(totalWidth, totalHeight int) error {
	if s.StartX < 0 || s.StartZ < 0 || s.LengthX < 1 || s.LengthZ < 1 ||
		s.StartX+s.LengthX > totalWidth || s.StartZ+s.LengthZ > totalHeight {
		return fmt.Errorf("%w: maze at (%d,%d) size %dx%d in a %dx%d world",
			game.ErrOutOfBounds, s.StartX, s.StartZ, s.LengthX, s.LengthZ, totalWidth, totalHeight)
	}
	if s.NumExits < 0 {
		return fmt.Errorf("%w: negative exit count %d", game.ErrInvalidSpec, s.NumExits)
	}
	return nil
}

// overlaps reports whether two specs share any maze cell. Sharing a border seam is allowed.
func (s Spec) overlaps(o Spec) bool {
	return s.StartX < o.StartX+o.LengthX && o.StartX < s.StartX+s.LengthX &&
		s.StartZ < o.StartZ+o.LengthZ && o.StartZ < s.StartZ+s.LengthZ
}
