package stroke

import "github.com/wbrown/tracepad/surface"

// Rect is the on-screen bounding box of a surface in logical pixels.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Map converts a client point to surface-logical coordinates. When the
// surface is displayed mirrored, x is measured from the right edge.
func Map(client surface.Point, box Rect, flipped bool) surface.Point {
	x := client.X - box.Left
	y := client.Y - box.Top
	if flipped {
		x = box.Width - x
	}
	return surface.Point{X: x, Y: y}
}

// Unmap is the inverse of Map.
func Unmap(logical surface.Point, box Rect, flipped bool) surface.Point {
	x := logical.X
	if flipped {
		x = box.Width - x
	}
	return surface.Point{X: x + box.Left, Y: logical.Y + box.Top}
}

// Mapper binds a bounding box and mirror flag.
type Mapper struct {
	Box     Rect
	Flipped bool
}

// Map converts a client point using m's box and flag.
func (m Mapper) Map(client surface.Point) surface.Point {
	return Map(client, m.Box, m.Flipped)
}

// Unmap converts a logical point back to client coordinates.
func (m Mapper) Unmap(logical surface.Point) surface.Point {
	return Unmap(logical, m.Box, m.Flipped)
}
