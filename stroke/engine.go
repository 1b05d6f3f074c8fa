// Package stroke turns pointer events into drawn segments.
//
// The Engine is a two-state machine (Idle, Drawing). It consumes Events,
// maps their client coordinates through a Mapper, records an undo snapshot
// when a stroke starts, and draws each segment with the brush current at
// that moment.
package stroke

import (
	"context"
	"fmt"

	"github.com/wbrown/tracepad/internal/logging"
	"github.com/wbrown/tracepad/surface"
)

// State is the engine state.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind identifies a pointer or surface event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerLeave
	SurfaceResize
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerLeave:
		return "leave"
	case SurfaceResize:
		return "resize"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one input to the engine. Point is in client coordinates and is
// ignored for kinds that carry no position.
type Event struct {
	Kind  EventKind
	Point surface.Point
}

// Target is what strokes are drawn onto.
type Target interface {
	Snapshot() surface.Snapshot
	DrawSegment(from, to surface.Point, b surface.Brush)
}

// Recorder receives the snapshot taken before each stroke.
type Recorder interface {
	Push(surface.Snapshot)
}

// BrushSource supplies the live brush. It is consulted for every segment.
type BrushSource interface {
	Brush() surface.Brush
}

// BrushFunc adapts a function to BrushSource.
type BrushFunc func() surface.Brush

// Brush calls f.
func (f BrushFunc) Brush() surface.Brush { return f() }

// Engine is the stroke state machine. It is not safe for concurrent use.
type Engine struct {
	target   Target
	recorder Recorder
	brush    BrushSource
	mapper   Mapper

	state State
	last  surface.Point
}

// NewEngine returns an idle engine.
func NewEngine(target Target, recorder Recorder, brush BrushSource) *Engine {
	return &Engine{target: target, recorder: recorder, brush: brush}
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Mapper returns the coordinate mapper in use.
func (e *Engine) Mapper() Mapper { return e.mapper }

// SetMapper replaces the coordinate mapper. An active stroke keeps its
// last point, which is already in logical coordinates.
func (e *Engine) SetMapper(m Mapper) { e.mapper = m }

// SetTarget points the engine at a different surface and abandons any
// active stroke.
func (e *Engine) SetTarget(t Target) {
	e.target = t
	e.end("target changed")
}

// Handle applies one event.
func (e *Engine) Handle(ev Event) {
	switch ev.Kind {
	case PointerDown:
		e.end("restarted")
		e.begin(ev.Point)
	case PointerMove:
		if e.state != Drawing {
			return
		}
		p := e.mapper.Map(ev.Point)
		e.target.DrawSegment(e.last, p, e.brush.Brush())
		e.last = p
	case PointerUp, PointerLeave, SurfaceResize:
		e.end(ev.Kind.String())
	}
}

func (e *Engine) begin(client surface.Point) {
	if e.target == nil {
		return
	}
	if e.recorder != nil {
		e.recorder.Push(e.target.Snapshot())
	}
	e.state = Drawing
	e.last = e.mapper.Map(client)
	e.target.DrawSegment(e.last, e.last, e.brush.Brush())
	logging.Logger().Debug("stroke started", "x", e.last.X, "y", e.last.Y)
}

func (e *Engine) end(cause string) {
	if e.state != Drawing {
		return
	}
	e.state = Idle
	logging.Logger().Debug("stroke ended", "cause", cause)
}

// Replay applies events in order.
func (e *Engine) Replay(events []Event) {
	for _, ev := range events {
		e.Handle(ev)
	}
}

// Run applies events from ch until it is closed or ctx is done. It
// returns ctx.Err() on cancellation and nil when ch closes.
func (e *Engine) Run(ctx context.Context, ch <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			e.end("cancelled")
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			e.Handle(ev)
		}
	}
}
