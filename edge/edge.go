// Package edge turns a reference image into inverted Sobel line art.
//
// The pipeline is fixed: convert to an 8-bit luma plane, take the Sobel
// gradient magnitude of every interior pixel, shape it with the
// sensitivity, threshold and contrast settings, and invert so that edges
// come out dark on a white page. Output depends only on the input pixels and
// the settings, and is identical whether it is computed on one goroutine or
// many.
package edge

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/tracepad/imageutil"
	"github.com/wbrown/tracepad/internal/logging"
)

var (
	// ErrEmptyImage is returned for a nil or zero-sized source.
	ErrEmptyImage = errors.New("edge: empty image")
	// ErrInvalidSettings is returned by Settings.Validate.
	ErrInvalidSettings = errors.New("edge: invalid settings")
	// ErrUndecodable is returned by ExtractEncoded when the input bytes
	// are not an image in a registered format.
	ErrUndecodable = errors.New("edge: undecodable image")
)

// Settings shape the gradient magnitude before inversion.
type Settings struct {
	Sensitivity float64 // multiplier on the raw magnitude, > 0
	Contrast    float64 // multiplier after the threshold is subtracted, > 0
	Threshold   float64 // subtracted from the scaled magnitude, 0 to 100
}

// DefaultSettings returns the settings the line-art tool starts with.
func DefaultSettings() Settings {
	return Settings{Sensitivity: 5, Contrast: 3, Threshold: 15}
}

// Validate checks that every field is finite and in range.
func (s Settings) Validate() error {
	switch {
	case !finite(s.Sensitivity) || s.Sensitivity <= 0:
		return fmt.Errorf("%w: sensitivity %v must be > 0", ErrInvalidSettings, s.Sensitivity)
	case !finite(s.Contrast) || s.Contrast <= 0:
		return fmt.Errorf("%w: contrast %v must be > 0", ErrInvalidSettings, s.Contrast)
	case !finite(s.Threshold) || s.Threshold < 0 || s.Threshold > 100:
		return fmt.Errorf("%w: threshold %v must be in [0, 100]", ErrInvalidSettings, s.Threshold)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// shade maps a gradient to the output intensity.
func (s Settings) shade(gx, gy int) uint8 {
	m := math.Sqrt(float64(gx*gx + gy*gy))
	m = float64(m * s.Sensitivity)
	m = (m - s.Threshold) * s.Contrast
	m = imageutil.Clamp(m, 0, 255)
	return imageutil.ClampUint8(255 - m)
}

// Border selects how the one-pixel outer ring is produced.
type Border int

const (
	// BorderWhite leaves the outer ring white. This is the default.
	BorderWhite Border = iota
	// BorderReplicate computes the outer ring too, treating pixels beyond
	// the image as copies of the nearest edge pixel.
	BorderReplicate
)

func (b Border) String() string {
	switch b {
	case BorderWhite:
		return "white"
	case BorderReplicate:
		return "replicate"
	default:
		return fmt.Sprintf("Border(%d)", int(b))
	}
}

// ParseBorder accepts "white" or "replicate".
func ParseBorder(s string) (Border, error) {
	switch s {
	case "", "white":
		return BorderWhite, nil
	case "replicate":
		return BorderReplicate, nil
	}
	return 0, fmt.Errorf("unknown border mode %q", s)
}

type options struct {
	border  Border
	workers int
}

// Option configures an extraction.
type Option func(*options)

// WithBorder selects the border mode.
func WithBorder(b Border) Option {
	return func(o *options) {
		o.border = b
	}
}

// WithWorkers sets how many row bands ExtractContext computes at once.
// Values below 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func buildOptions(opts []Option) options {
	o := options{border: BorderWhite}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Extract computes the line art for src on the calling goroutine.
func Extract(src image.Image, s Settings, opts ...Option) (*image.RGBA, error) {
	opts = append(opts[:len(opts):len(opts)], WithWorkers(1))
	return ExtractContext(context.Background(), src, s, opts...)
}

// ExtractContext computes the line art for src in row bands spread over
// several goroutines. If ctx is cancelled before every band is done, no
// image is returned and the error is ctx.Err().
func ExtractContext(ctx context.Context, src image.Image, s Settings, opts ...Option) (*image.RGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	start := time.Now()

	gray := imageutil.ToLuma(src)
	width, height := gray.Width(), gray.Height()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	imageutil.Fill(dst, imageutil.White)

	bands := min(o.workers*4, height)
	rowsPerBand := (height + bands - 1) / bands

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for y0 := 0; y0 < height; y0 += rowsPerBand {
		y0 := y0
		y1 := min(y0+rowsPerBand, height)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shadeRows(dst, gray, s, o.border, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Logger().Debug("edge extraction done",
		"width", width, "height", height,
		"workers", o.workers, "border", o.border.String(),
		"elapsed", time.Since(start))
	return dst, nil
}

// shadeRows writes rows [y0, y1) of dst. Bands never share rows.
func shadeRows(dst *image.RGBA, gray *imageutil.GrayImage, s Settings, border Border, y0, y1 int) {
	width, height := gray.Width(), gray.Height()
	for y := y0; y < y1; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		onEdgeRow := y == 0 || y == height-1
		for x := 0; x < width; x++ {
			var gx, gy int
			switch {
			case !onEdgeRow && x > 0 && x < width-1:
				gx = imageutil.SobelX.Apply(gray, x, y)
				gy = imageutil.SobelY.Apply(gray, x, y)
			case border == BorderReplicate:
				gx, gy = imageutil.Gradients(gray, x, y)
			default:
				continue
			}
			v := s.shade(gx, gy)
			i := x * 4
			row[i+0] = v
			row[i+1] = v
			row[i+2] = v
		}
	}
}

// ExtractEncoded decodes data, extracts its line art and returns it as PNG.
func ExtractEncoded(ctx context.Context, data []byte, s Settings, opts ...Option) ([]byte, error) {
	src, _, err := imageutil.Decode(data)
	if err != nil {
		if errors.Is(err, imageutil.ErrEmptyImage) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyImage, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	art, err := ExtractContext(ctx, src, s, opts...)
	if err != nil {
		return nil, err
	}
	return imageutil.EncodePNG(art)
}
