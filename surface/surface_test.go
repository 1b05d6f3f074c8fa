package surface

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/wbrown/tracepad/imageutil"
)

func TestNewInvalidDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		w, h  int
		scale float64
	}{
		{"zero width", 0, 10, 1},
		{"negative height", 10, -1, 1},
		{"zero scale", 10, 10, 0},
		{"negative scale", 10, 10, -2},
		{"NaN scale", 10, 10, math.NaN()},
		{"infinite scale", 10, 10, math.Inf(1)},
		{"scale rounds to nothing", 1, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.w, tt.h, tt.scale)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("Expected ErrInvalidDimensions, got %v", err)
			}
			if s != nil {
				t.Error("Expected no surface on error")
			}
		})
	}
}

func TestNewIsOpaqueWhite(t *testing.T) {
	t.Parallel()

	s, err := New(40, 30, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n := imageutil.CountNotColor(s.Image(), imageutil.White); n != 0 {
		t.Errorf("Expected all white, found %d other pixels", n)
	}
}

func TestPhysicalSizeFollowsScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h   int
		scale  float64
		pw, ph int
	}{
		{400, 300, 1, 400, 300},
		{400, 300, 2, 800, 600},
		{101, 51, 1.5, 151, 76},
	}
	for _, tt := range tests {
		s, err := New(tt.w, tt.h, tt.scale)
		if err != nil {
			t.Fatal(err)
		}
		pw, ph := s.PhysicalSize()
		if pw != tt.pw || ph != tt.ph {
			t.Errorf("%dx%d@%v: expected %dx%d, got %dx%d", tt.w, tt.h, tt.scale, tt.pw, tt.ph, pw, ph)
		}
		if lw, lh := s.LogicalSize(); lw != tt.w || lh != tt.h {
			t.Errorf("Expected logical %dx%d, got %dx%d", tt.w, tt.h, lw, lh)
		}
	}
}

func TestDotDarkensCenterOnly(t *testing.T) {
	t.Parallel()

	s, _ := New(100, 100, 1)
	s.DrawSegment(Point{50, 50}, Point{50, 50}, DefaultBrush())

	img := s.Image()
	if c := img.RGBAAt(50, 50); c.R > 64 {
		t.Errorf("Expected dark pixel at the dot, got %v", c)
	}
	if c := img.RGBAAt(60, 60); c != imageutil.White.ToColor() {
		t.Errorf("Expected white away from the dot, got %v", c)
	}
	if n := imageutil.CountNotColor(img, imageutil.White); n == 0 || n > 36 {
		t.Errorf("Expected a small dot, %d pixels changed", n)
	}
}

func TestDotScalesWithSurface(t *testing.T) {
	t.Parallel()

	one, _ := New(50, 50, 1)
	two, _ := New(50, 50, 2)
	b := Brush{Color: imageutil.Black, Size: 6}
	one.DrawSegment(Point{25, 25}, Point{25, 25}, b)
	two.DrawSegment(Point{25, 25}, Point{25, 25}, b)

	n1 := imageutil.CountNotColor(one.Image(), imageutil.White)
	n2 := imageutil.CountNotColor(two.Image(), imageutil.White)
	if n2 < 2*n1 {
		t.Errorf("Expected a larger dot at scale 2, got %d vs %d", n2, n1)
	}
	if c := two.Image().RGBAAt(50, 50); c.R > 64 {
		t.Errorf("Expected the dot at physical (50,50), got %v", c)
	}
}

func TestSegmentUsesBrushColor(t *testing.T) {
	t.Parallel()

	s, _ := New(100, 20, 1)
	red := Brush{Color: imageutil.RGB{R: 255}, Size: 5}
	s.DrawSegment(Point{10, 10}, Point{90, 10}, red)

	c := s.Image().RGBAAt(50, 10)
	if c.R < 250 || c.G > 10 || c.B > 10 {
		t.Errorf("Expected red on the line, got %v", c)
	}
}

func TestEraserPaintsBackground(t *testing.T) {
	t.Parallel()

	s, _ := New(100, 20, 1)
	s.DrawSegment(Point{10, 10}, Point{90, 10}, Brush{Color: imageutil.Black, Size: 5})
	s.DrawSegment(Point{10, 10}, Point{90, 10}, Brush{Color: imageutil.Black, Size: 9, Eraser: true})

	img := s.Image()
	for x := 20; x <= 80; x += 10 {
		if c := img.RGBAAt(x, 10); c.R < 250 || c.A != 255 {
			t.Errorf("Expected opaque white at (%d,10), got %v", x, c)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	s, _ := New(64, 48, 1)
	s.DrawSegment(Point{5, 5}, Point{40, 30}, DefaultBrush())
	before := s.Snapshot()
	want, _ := s.EncodePNG()

	s.DrawSegment(Point{0, 47}, Point{63, 0}, Brush{Color: imageutil.RGB{B: 255}, Size: 8})
	if s.Snapshot().Equal(before) {
		t.Fatal("Second stroke should change the buffer")
	}

	if err := s.Restore(before); err != nil {
		t.Fatal(err)
	}
	got, _ := s.EncodePNG()
	if !bytes.Equal(got, want) {
		t.Error("Restore should reproduce the snapshotted buffer exactly")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s, _ := New(16, 16, 1)
	sn := s.Snapshot()
	s.DrawSegment(Point{8, 8}, Point{8, 8}, DefaultBrush())

	fresh, _ := New(16, 16, 1)
	if !sn.Equal(fresh.Snapshot()) {
		t.Error("Drawing after a snapshot must not alter it")
	}
}

func TestRestoreEmptySnapshot(t *testing.T) {
	t.Parallel()

	s, _ := New(8, 8, 1)
	if err := s.Restore(Snapshot{}); !errors.Is(err, ErrEmptySnapshot) {
		t.Errorf("Expected ErrEmptySnapshot, got %v", err)
	}
}

func TestRestoreStretchesOtherSize(t *testing.T) {
	t.Parallel()

	s, _ := New(10, 10, 1)
	imageutil.Fill(s.buf, imageutil.Black)
	sn := s.Snapshot()

	if err := s.Resize(20, 20, 1); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	if err := s.Restore(sn); err != nil {
		t.Fatal(err)
	}
	if c := s.Image().RGBAAt(10, 10); c.R > 8 {
		t.Errorf("Expected stretched black content, got %v", c)
	}
	if w, h := s.PhysicalSize(); w != 20 || h != 20 {
		t.Errorf("Restore must not change the buffer size, got %dx%d", w, h)
	}
}

func TestResizeKeepsContent(t *testing.T) {
	t.Parallel()

	s, _ := New(40, 40, 1)
	s.DrawSegment(Point{20, 0}, Point{20, 40}, Brush{Color: imageutil.Black, Size: 6})

	if err := s.Resize(40, 40, 2); err != nil {
		t.Fatal(err)
	}
	if w, h := s.PhysicalSize(); w != 80 || h != 80 {
		t.Fatalf("Expected 80x80, got %dx%d", w, h)
	}
	img := s.Image()
	if c := img.RGBAAt(40, 40); c.R > 64 {
		t.Errorf("Expected the stretched line at the center, got %v", c)
	}
	if c := img.RGBAAt(5, 40); c.R < 250 {
		t.Errorf("Expected white away from the line, got %v", c)
	}
}

func TestResizeErrorLeavesSurface(t *testing.T) {
	t.Parallel()

	s, _ := New(30, 20, 1)
	s.DrawSegment(Point{3, 3}, Point{25, 15}, DefaultBrush())
	before := s.Snapshot()

	if err := s.Resize(0, 20, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("Expected ErrInvalidDimensions, got %v", err)
	}
	if !s.Snapshot().Equal(before) {
		t.Error("Failed resize changed the buffer")
	}
	if w, h := s.LogicalSize(); w != 30 || h != 20 || s.Scale() != 1 {
		t.Errorf("Failed resize changed the size to %dx%d@%v", w, h, s.Scale())
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	s, _ := New(30, 20, 1)
	s.DrawSegment(Point{3, 3}, Point{25, 15}, DefaultBrush())
	s.Clear()
	if n := imageutil.CountNotColor(s.Image(), imageutil.White); n != 0 {
		t.Errorf("Expected white after Clear, %d pixels differ", n)
	}
}

func TestEncodePNGDeterministic(t *testing.T) {
	t.Parallel()

	draw := func() []byte {
		s, _ := New(50, 50, 1.5)
		s.DrawSegment(Point{5, 5}, Point{45, 40}, DefaultBrush())
		s.DrawSegment(Point{45, 40}, Point{10, 45}, Brush{Color: imageutil.RGB{G: 128}, Size: 4})
		data, err := s.EncodePNG()
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	a, b := draw(), draw()
	if !bytes.Equal(a, b) {
		t.Error("Same strokes should encode to identical bytes")
	}

	img, err := png.Decode(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 75 || img.Bounds().Dy() != 75 {
		t.Errorf("Expected 75x75, got %v", img.Bounds())
	}
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	s, _ := New(4, 4, 1)
	uri, err := s.DataURI()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("Unexpected data URI prefix: %.30s", uri)
	}
	data, err := imageutil.DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := s.EncodePNG()
	if !bytes.Equal(data, want) {
		t.Error("Data URI payload should match EncodePNG")
	}
}

func TestBrushValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultBrush().Validate(); err != nil {
		t.Errorf("Default brush should be valid, got %v", err)
	}
	if err := (Brush{Size: 0}).Validate(); !errors.Is(err, ErrInvalidBrush) {
		t.Errorf("Expected ErrInvalidBrush, got %v", err)
	}
	if ink := (Brush{Color: imageutil.Black, Size: 2, Eraser: true}).Ink(); ink != Background {
		t.Errorf("Eraser ink should be the background, got %v", ink)
	}
}
