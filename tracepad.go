// Package tracepad is a headless tracing-practice pad: a raster surface that
// takes freehand strokes with a bounded undo log, plus the Sobel line-art
// filter used to prepare reference images.
//
// A Pad owns exactly one surface at a time. It is driven by pointer events
// in client coordinates and is not safe for concurrent use.
package tracepad

import (
	"context"
	"errors"
	"image"

	"github.com/wbrown/tracepad/history"
	"github.com/wbrown/tracepad/surface"
	"github.com/wbrown/tracepad/stroke"
)

// ErrNotInitialized is returned by operations that need a surface before
// Initialize has succeeded.
var ErrNotInitialized = errors.New("tracepad: surface not initialized")

// Point is a position in client or logical pixels.
type Point = surface.Point

// Pad wires a surface, its undo history and the stroke engine together.
type Pad struct {
	surf    *surface.Surface
	history *history.Stack[surface.Snapshot]
	engine  *stroke.Engine

	brush   surface.Brush
	origin  Point
	flipped bool
}

// PadOption is a functional option for configuring a Pad.
type PadOption func(*Pad)

// WithBrush sets the starting brush. An invalid brush is ignored.
func WithBrush(b surface.Brush) PadOption {
	return func(p *Pad) {
		if b.Validate() == nil {
			p.brush = b
		}
	}
}

// WithOrigin sets where the surface's top-left corner sits in client
// coordinates.
func WithOrigin(left, top float64) PadOption {
	return func(p *Pad) {
		p.origin = Point{X: left, Y: top}
	}
}

// WithFlipped starts the pad mirrored.
func WithFlipped(flipped bool) PadOption {
	return func(p *Pad) {
		p.flipped = flipped
	}
}

// NewPad creates a pad with no surface. Call Initialize before drawing.
// Default values: a 3px black brush, origin (0,0), not mirrored.
func NewPad(opts ...PadOption) *Pad {
	p := &Pad{
		brush:   surface.DefaultBrush(),
		history: history.New[surface.Snapshot](history.DefaultCapacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.engine = stroke.NewEngine(nil, p.history, stroke.BrushFunc(p.Brush))
	return p
}

// Initialize allocates a fresh white surface and empties the history. On
// error the pad keeps whatever surface it had.
func (p *Pad) Initialize(width, height int, scale float64) error {
	surf, err := surface.New(width, height, scale)
	if err != nil {
		return err
	}
	p.surf = surf
	p.history.Reset()
	p.engine.SetTarget(surf)
	p.syncMapper()

	pw, ph := surf.PhysicalSize()
	Logger().Info("surface initialized",
		"width", width, "height", height, "scale", scale,
		"physical_width", pw, "physical_height", ph)
	return nil
}

// Resize changes the logical size or scale. Any stroke in progress is
// abandoned and the drawing is stretched to the new size. History entries
// keep their old size and are stretched when undone. Before Initialize,
// Resize behaves like Initialize.
func (p *Pad) Resize(width, height int, scale float64) error {
	if p.surf == nil {
		return p.Initialize(width, height, scale)
	}
	if _, _, err := surface.PhysicalSize(width, height, scale); err != nil {
		return err
	}
	p.engine.Handle(stroke.Event{Kind: stroke.SurfaceResize})
	if err := p.surf.Resize(width, height, scale); err != nil {
		return err
	}
	p.syncMapper()

	Logger().Info("surface resized", "width", width, "height", height, "scale", scale)
	return nil
}

func (p *Pad) syncMapper() {
	m := stroke.Mapper{Flipped: p.flipped}
	m.Box.Left, m.Box.Top = p.origin.X, p.origin.Y
	if p.surf != nil {
		w, h := p.surf.LogicalSize()
		m.Box.Width, m.Box.Height = float64(w), float64(h)
	}
	p.engine.SetMapper(m)
}

// SetOrigin moves the surface's top-left corner in client coordinates.
func (p *Pad) SetOrigin(left, top float64) {
	p.origin = Point{X: left, Y: top}
	p.syncMapper()
}

// Origin returns the surface's top-left corner in client coordinates.
func (p *Pad) Origin() Point { return p.origin }

// SetFlipped mirrors pointer input horizontally. It affects only strokes
// drawn from now on; existing pixels are not mirrored.
func (p *Pad) SetFlipped(flipped bool) {
	p.flipped = flipped
	p.syncMapper()
}

// Flipped reports whether pointer input is mirrored.
func (p *Pad) Flipped() bool { return p.flipped }

// SetBrush replaces the brush. The change applies from the next segment,
// including in the middle of a stroke.
func (p *Pad) SetBrush(b surface.Brush) error {
	if err := b.Validate(); err != nil {
		return err
	}
	p.brush = b
	return nil
}

// Brush returns the current brush.
func (p *Pad) Brush() surface.Brush { return p.brush }

// BeginStroke starts a stroke at a client point, recording an undo step
// and painting a dot.
func (p *Pad) BeginStroke(client Point) error {
	if p.surf == nil {
		return ErrNotInitialized
	}
	p.engine.Handle(stroke.Event{Kind: stroke.PointerDown, Point: client})
	return nil
}

// ContinueStroke extends the active stroke to a client point. It does
// nothing when no stroke is active.
func (p *Pad) ContinueStroke(client Point) {
	p.engine.Handle(stroke.Event{Kind: stroke.PointerMove, Point: client})
}

// EndStroke finishes the active stroke.
func (p *Pad) EndStroke() {
	p.engine.Handle(stroke.Event{Kind: stroke.PointerUp})
}

// LeaveSurface finishes the active stroke because the pointer left the
// surface. Re-entering does not resume it.
func (p *Pad) LeaveSurface() {
	p.engine.Handle(stroke.Event{Kind: stroke.PointerLeave})
}

// Run feeds pointer events from ch to the pad until ch is closed or ctx is
// done. It is for hosts that deliver input on a channel; the caller must
// not use the pad from another goroutine while Run is active.
func (p *Pad) Run(ctx context.Context, ch <-chan stroke.Event) error {
	if p.surf == nil {
		return ErrNotInitialized
	}
	return p.engine.Run(ctx, ch)
}

// Drawing reports whether a stroke is active.
func (p *Pad) Drawing() bool { return p.engine.State() == stroke.Drawing }

// Undo restores the surface to the most recent history entry. It returns
// false when there is nothing to undo or the entry cannot be restored; the
// surface and history are then left as they were. An active stroke is
// finished first.
func (p *Pad) Undo() bool {
	if p.surf == nil {
		return false
	}
	sn, ok := p.history.Peek()
	if !ok {
		Logger().Debug("undo with empty history")
		return false
	}
	p.engine.Handle(stroke.Event{Kind: stroke.PointerUp})
	if err := p.surf.Restore(sn); err != nil {
		Logger().Error("failed to restore history entry", "error", err)
		return false
	}
	p.history.Pop()
	return true
}

// Clear paints the surface white. The previous contents become an undo
// step.
func (p *Pad) Clear() error {
	if p.surf == nil {
		return ErrNotInitialized
	}
	p.history.Push(p.surf.Snapshot())
	p.surf.Clear()
	return nil
}

// HistoryLen returns the number of undo steps available.
func (p *Pad) HistoryLen() int { return p.history.Len() }

// Size returns the logical size and scale, or zeros before Initialize.
func (p *Pad) Size() (width, height int, scale float64) {
	if p.surf == nil {
		return 0, 0, 0
	}
	width, height = p.surf.LogicalSize()
	return width, height, p.surf.Scale()
}

// Image returns a copy of the surface pixels.
func (p *Pad) Image() (*image.RGBA, error) {
	if p.surf == nil {
		return nil, ErrNotInitialized
	}
	return p.surf.Image(), nil
}

// ExportEncoded returns the surface as PNG bytes.
func (p *Pad) ExportEncoded() ([]byte, error) {
	if p.surf == nil {
		return nil, ErrNotInitialized
	}
	return p.surf.EncodePNG()
}

// ExportDataURI returns the surface as a data:image/png;base64 URI.
func (p *Pad) ExportDataURI() (string, error) {
	if p.surf == nil {
		return "", ErrNotInitialized
	}
	return p.surf.DataURI()
}
