package surface

import (
	"errors"
	"fmt"

	"github.com/wbrown/tracepad/imageutil"
)

// ErrInvalidBrush is returned by Brush.Validate.
var ErrInvalidBrush = errors.New("surface: invalid brush")

// Point is a position in logical pixels unless stated otherwise.
type Point struct {
	X, Y float64
}

// Brush holds the parameters of one drawn segment.
//
// Eraser paints the background color over existing ink. It does not clear
// alpha, so erased areas are opaque white like the rest of the background.
type Brush struct {
	Color  imageutil.RGB
	Size   int // stroke width in logical pixels
	Eraser bool
}

// DefaultBrush is a 3px black pen.
func DefaultBrush() Brush {
	return Brush{Color: imageutil.Black, Size: 3}
}

// Validate reports whether the brush can be drawn with.
func (b Brush) Validate() error {
	if b.Size < 1 {
		return fmt.Errorf("%w: size %d", ErrInvalidBrush, b.Size)
	}
	return nil
}

// Ink is the color the brush actually lays down.
func (b Brush) Ink() imageutil.RGB {
	if b.Eraser {
		return Background
	}
	return b.Color
}
