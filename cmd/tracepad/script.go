package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wbrown/tracepad"
	"github.com/wbrown/tracepad/imageutil"
	"github.com/wbrown/tracepad/surface"
)

// step is one parsed line of a replay script.
type step struct {
	line int
	text string
	run  func(p *tracepad.Pad) error
}

// parseScript reads a pointer-event script, one command per line:
//
//	down x y | move x y | up | leave
//	undo | clear
//	brush #rrggbb size | eraser on|off
//	flip on|off | origin x y | resize w h scale
//
// Blank lines and lines starting with # are skipped.
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		run, err := parseCommand(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", n, text, err)
		}
		steps = append(steps, step{line: n, text: text, run: run})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return steps, nil
}

func parseCommand(fields []string) (func(*tracepad.Pad) error, error) {
	op, args := fields[0], fields[1:]
	want := map[string]int{
		"down": 2, "move": 2, "up": 0, "leave": 0,
		"undo": 0, "clear": 0,
		"brush": 2, "eraser": 1,
		"flip": 1, "origin": 2, "resize": 3,
	}
	n, ok := want[op]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", op)
	}
	if len(args) != n {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", op, n, len(args))
	}

	switch op {
	case "down", "move", "origin":
		x, y, err := parsePair(args[0], args[1])
		if err != nil {
			return nil, err
		}
		pt := tracepad.Point{X: x, Y: y}
		switch op {
		case "down":
			return func(p *tracepad.Pad) error { return p.BeginStroke(pt) }, nil
		case "move":
			return func(p *tracepad.Pad) error { p.ContinueStroke(pt); return nil }, nil
		default:
			return func(p *tracepad.Pad) error { p.SetOrigin(x, y); return nil }, nil
		}
	case "up":
		return func(p *tracepad.Pad) error { p.EndStroke(); return nil }, nil
	case "leave":
		return func(p *tracepad.Pad) error { p.LeaveSurface(); return nil }, nil
	case "undo":
		return func(p *tracepad.Pad) error { p.Undo(); return nil }, nil
	case "clear":
		return func(p *tracepad.Pad) error { return p.Clear() }, nil
	case "brush":
		c, err := imageutil.ParseHexRGB(args[0])
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("bad brush size: %w", err)
		}
		if err := (surface.Brush{Color: c, Size: size}).Validate(); err != nil {
			return nil, err
		}
		return func(p *tracepad.Pad) error {
			b := p.Brush()
			b.Color, b.Size = c, size
			return p.SetBrush(b)
		}, nil
	case "eraser", "flip":
		on, err := parseSwitch(args[0])
		if err != nil {
			return nil, err
		}
		if op == "flip" {
			return func(p *tracepad.Pad) error { p.SetFlipped(on); return nil }, nil
		}
		return func(p *tracepad.Pad) error {
			b := p.Brush()
			b.Eraser = on
			return p.SetBrush(b)
		}, nil
	default: // resize
		w, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("bad width: %w", err)
		}
		h, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("bad height: %w", err)
		}
		scale, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad scale: %w", err)
		}
		if _, _, err := surface.PhysicalSize(w, h, scale); err != nil {
			return nil, err
		}
		return func(p *tracepad.Pad) error { return p.Resize(w, h, scale) }, nil
	}
}

func parsePair(a, b string) (float64, float64, error) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad x: %w", err)
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad y: %w", err)
	}
	return x, y, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// replay applies steps to p in order, stopping at the first error.
func replay(p *tracepad.Pad, steps []step) error {
	for _, s := range steps {
		if err := s.run(p); err != nil {
			return fmt.Errorf("line %d: %q: %w", s.line, s.text, err)
		}
	}
	return nil
}
