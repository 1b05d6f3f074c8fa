package edge

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/wbrown/tracepad/imageutil"
)

func TestUniformSourceIsWhite(t *testing.T) {
	t.Parallel()

	sources := map[string]imageutil.RGB{
		"gray":  {R: 128, G: 128, B: 128},
		"black": imageutil.Black,
		"teal":  {R: 0, G: 128, B: 128},
	}
	settings := []Settings{
		{Sensitivity: 1, Contrast: 1, Threshold: 0},
		DefaultSettings(),
		{Sensitivity: 20, Contrast: 10, Threshold: 100},
	}
	for name, c := range sources {
		for _, s := range settings {
			src := imageutil.CreateSolidImage(17, 9, c)
			out, err := Extract(src.RGBA, s)
			if err != nil {
				t.Fatalf("%s %+v: %v", name, s, err)
			}
			if n := imageutil.CountNotColor(out, imageutil.White); n != 0 {
				t.Errorf("%s %+v: expected all white, %d pixels differ", name, s, n)
			}
		}
	}
}

func TestSolidGrayTenByTen(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateSolidImage(10, 10, imageutil.RGB{R: 128, G: 128, B: 128})
	out, err := Extract(src.RGBA, Settings{Sensitivity: 1, Contrast: 1, Threshold: 0})
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 10 {
		t.Fatalf("Expected 10x10, got %v", out.Bounds())
	}
	for i := 0; i < len(out.Pix); i++ {
		if out.Pix[i] != 255 {
			t.Fatalf("Expected every byte to be 255, byte %d is %d", i, out.Pix[i])
		}
	}
}

func TestStepEdge(t *testing.T) {
	t.Parallel()

	// Black left half, white right half: the edge sits between x=4 and x=5,
	// where |Gx| = 4*255 = 1020.
	src := imageutil.CreateStepImage(10, 8, imageutil.Black, imageutil.White)

	// 1020 * 0.125 = 127.5 exactly, and 255-127.5 rounds half to even.
	s := Settings{Sensitivity: 0.125, Contrast: 1, Threshold: 0}
	out, err := Extract(src.RGBA, s)
	if err != nil {
		t.Fatal(err)
	}
	for y := 1; y < 7; y++ {
		for x := 0; x < 10; x++ {
			want := uint8(255)
			if x == 4 || x == 5 {
				want = 128
			}
			if got := out.RGBAAt(x, y); got.R != want || got.G != want || got.B != want || got.A != 255 {
				t.Errorf("(%d,%d): expected %d, got %v", x, y, want, got)
			}
		}
	}

	strong, _ := Extract(src.RGBA, DefaultSettings())
	if got := strong.RGBAAt(4, 3).R; got != 0 {
		t.Errorf("Expected a saturated black edge with defaults, got %d", got)
	}
}

func TestThresholdSuppressesWeakEdges(t *testing.T) {
	t.Parallel()

	// A step of 10 gray levels gives |Gx| = 40.
	src := imageutil.CreateStepImage(8, 8, imageutil.RGB{R: 100, G: 100, B: 100}, imageutil.RGB{R: 110, G: 110, B: 110})

	out, _ := Extract(src.RGBA, Settings{Sensitivity: 1, Contrast: 1, Threshold: 50})
	if n := imageutil.CountNotColor(out, imageutil.White); n != 0 {
		t.Errorf("Expected weak edge removed by threshold, %d pixels differ", n)
	}

	out, _ = Extract(src.RGBA, Settings{Sensitivity: 1, Contrast: 2, Threshold: 10})
	if got := out.RGBAAt(3, 4).R; got != 255-60 {
		t.Errorf("Expected (40-10)*2 = 60 below white, got %d", got)
	}
}

func TestBorderModes(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateStepImage(10, 6, imageutil.Black, imageutil.White)
	s := Settings{Sensitivity: 0.125, Contrast: 1, Threshold: 0}

	white, _ := Extract(src.RGBA, s)
	for x := 0; x < 10; x++ {
		for _, y := range []int{0, 5} {
			if got := white.RGBAAt(x, y); got != (color.RGBA{255, 255, 255, 255}) {
				t.Errorf("White border: (%d,%d) expected white, got %v", x, y, got)
			}
		}
	}

	repl, _ := Extract(src.RGBA, s, WithBorder(BorderReplicate))
	if got := repl.RGBAAt(4, 0).R; got != 128 {
		t.Errorf("Replicated border should see the edge at (4,0), got %d", got)
	}
	if got := repl.RGBAAt(0, 3).R; got != 255 {
		t.Errorf("Replicated border on a flat region should be white, got %d", got)
	}
	for y := 1; y < 5; y++ {
		for x := 1; x < 9; x++ {
			if white.RGBAAt(x, y) != repl.RGBAAt(x, y) {
				t.Errorf("Border mode changed interior pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateCheckerboardImage(33, 21, 4)
	a, _ := Extract(src.RGBA, DefaultSettings())
	b, _ := Extract(src.RGBA, DefaultSettings())
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Repeated extraction should be byte-identical")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateGradientImage(97, 61)
	for y := 0; y < 61; y += 7 {
		for x := 0; x < 97; x++ {
			src.SetRGB(x, y, imageutil.RGB{R: uint8(x * 2), G: 40, B: uint8(y * 3)})
		}
	}
	s := Settings{Sensitivity: 1.7, Contrast: 2.3, Threshold: 12.5}

	for _, border := range []Border{BorderWhite, BorderReplicate} {
		want, err := Extract(src.RGBA, s, WithBorder(border))
		if err != nil {
			t.Fatal(err)
		}
		for _, workers := range []int{0, 2, 3, 8, 64} {
			got, err := ExtractContext(context.Background(), src.RGBA, s, WithBorder(border), WithWorkers(workers))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got.Pix, want.Pix) {
				t.Errorf("%v border, %d workers: output differs from sequential", border, workers)
			}
		}
	}
}

func TestExtractContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := imageutil.CreateGradientImage(64, 64)
	out, err := ExtractContext(ctx, src.RGBA, DefaultSettings(), WithWorkers(4))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if out != nil {
		t.Error("Cancelled extraction must not return an image")
	}
}

func TestInvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Settings
	}{
		{"zero sensitivity", Settings{Sensitivity: 0, Contrast: 1, Threshold: 0}},
		{"negative contrast", Settings{Sensitivity: 1, Contrast: -1, Threshold: 0}},
		{"threshold above range", Settings{Sensitivity: 1, Contrast: 1, Threshold: 101}},
		{"negative threshold", Settings{Sensitivity: 1, Contrast: 1, Threshold: -1}},
	}
	src := imageutil.CreateSolidImage(4, 4, imageutil.White)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Extract(src.RGBA, tt.s); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestEmptySource(t *testing.T) {
	t.Parallel()

	if _, err := Extract(nil, DefaultSettings()); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("nil source: expected ErrEmptyImage, got %v", err)
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 5))
	if _, err := Extract(empty, DefaultSettings()); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("zero-width source: expected ErrEmptyImage, got %v", err)
	}
}

func TestSinglePixelSource(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateSolidImage(1, 1, imageutil.Black)
	for _, border := range []Border{BorderWhite, BorderReplicate} {
		out, err := Extract(src.RGBA, DefaultSettings(), WithBorder(border))
		if err != nil {
			t.Fatal(err)
		}
		if got := out.RGBAAt(0, 0); got.R != 255 {
			t.Errorf("%v: expected white, got %v", border, got)
		}
	}
}

func TestExtractEncoded(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateStepImage(12, 12, imageutil.Black, imageutil.White)
	data, err := imageutil.EncodePNG(src)
	if err != nil {
		t.Fatal(err)
	}

	out, err := ExtractEncoded(context.Background(), data, DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	img, _, err := imageutil.Decode(out)
	if err != nil {
		t.Fatalf("Output should decode: %v", err)
	}
	direct, _ := Extract(src.RGBA, DefaultSettings())
	if mse := imageutil.CalculateMSE(imageutil.ToRGBA(img), direct); mse != 0 {
		t.Errorf("Encoded path should match direct extraction, MSE %v", mse)
	}

	if _, err := ExtractEncoded(context.Background(), []byte("not an image"), DefaultSettings()); !errors.Is(err, ErrUndecodable) {
		t.Errorf("Expected ErrUndecodable, got %v", err)
	}
	if _, err := ExtractEncoded(context.Background(), nil, DefaultSettings()); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage for no data, got %v", err)
	}
}

func TestThreshold(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	src.SetNRGBA(0, 0, color.NRGBA{128, 128, 128, 255}) // mean 128, not above cutoff
	src.SetNRGBA(1, 0, color.NRGBA{129, 128, 128, 255}) // mean just above
	src.SetNRGBA(2, 0, color.NRGBA{255, 255, 255, 100})
	src.SetNRGBA(3, 0, color.NRGBA{10, 20, 30, 0})

	out, err := Threshold(src, DefaultThresholdCutoff)
	if err != nil {
		t.Fatal(err)
	}
	want := []color.NRGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{255, 255, 255, 100},
		{0, 0, 0, 0},
	}
	for x, w := range want {
		if got := out.NRGBAAt(x, 0); got != w {
			t.Errorf("Pixel %d: expected %v, got %v", x, w, got)
		}
	}

	if _, err := Threshold(nil, DefaultThresholdCutoff); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestParseBorder(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Border{"": BorderWhite, "white": BorderWhite, "replicate": BorderReplicate} {
		got, err := ParseBorder(in)
		if err != nil || got != want {
			t.Errorf("ParseBorder(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseBorder("mirror"); err == nil {
		t.Error("Expected error for unknown border mode")
	}
}
