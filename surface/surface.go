// Package surface owns the pixel buffer that strokes are drawn into.
//
// A Surface is sized in logical pixels and backed by an RGBA buffer at
// physical resolution (logical size times the display scale factor). All
// drawing coordinates are logical; the surface applies the scale itself.
//
// Surfaces are not safe for concurrent use.
package surface

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/wbrown/tracepad/imageutil"
	"github.com/wbrown/tracepad/internal/logging"
)

// Background is the color of a blank surface and of erased ink.
var Background = imageutil.White

// ErrInvalidDimensions is returned when a surface would have no pixels.
var ErrInvalidDimensions = errors.New("surface: invalid dimensions")

// Surface is an in-memory raster drawing surface.
type Surface struct {
	logicalW, logicalH int
	scale              float64

	buf *image.RGBA
	dc  *gg.Context
}

// PhysicalSize returns the buffer size for a logical size and scale, or
// ErrInvalidDimensions if any input is unusable.
func PhysicalSize(logicalW, logicalH int, scale float64) (int, int, error) {
	if logicalW <= 0 || logicalH <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, logicalW, logicalH)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, 0, fmt.Errorf("%w: scale %v", ErrInvalidDimensions, scale)
	}
	pw := int(float64(logicalW) * scale)
	ph := int(float64(logicalH) * scale)
	if pw <= 0 || ph <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d at scale %v has no pixels",
			ErrInvalidDimensions, logicalW, logicalH, scale)
	}
	return pw, ph, nil
}

// New allocates a white surface of logicalW x logicalH at the given scale.
func New(logicalW, logicalH int, scale float64) (*Surface, error) {
	pw, ph, err := PhysicalSize(logicalW, logicalH, scale)
	if err != nil {
		return nil, err
	}
	s := &Surface{logicalW: logicalW, logicalH: logicalH, scale: scale}
	s.replace(blank(pw, ph))
	return s, nil
}

func blank(pw, ph int) *image.RGBA {
	buf := image.NewRGBA(image.Rect(0, 0, pw, ph))
	imageutil.Fill(buf, Background)
	return buf
}

func (s *Surface) replace(buf *image.RGBA) {
	s.buf = buf
	s.dc = gg.NewContextForRGBA(buf)
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
}

// Resize replaces the buffer with one sized for the new logical size and
// scale. The current contents are stretched into it with bilinear
// resampling over a white fill. On error the surface is unchanged.
func (s *Surface) Resize(logicalW, logicalH int, scale float64) error {
	pw, ph, err := PhysicalSize(logicalW, logicalH, scale)
	if err != nil {
		return err
	}
	next := blank(pw, ph)
	imageutil.Scale(next, s.buf, imageutil.InterpolationLinear)

	logging.Logger().Debug("surface resized",
		"from", s.buf.Bounds().Size(), "to", next.Bounds().Size())

	s.logicalW, s.logicalH, s.scale = logicalW, logicalH, scale
	s.replace(next)
	return nil
}

// DrawSegment strokes a round-capped line from one logical point to
// another. A zero-length segment paints a dot of the brush diameter.
func (s *Surface) DrawSegment(from, to Point, b Brush) {
	width := float64(max(b.Size, 1)) * s.scale
	fx, fy := from.X*s.scale, from.Y*s.scale
	tx, ty := to.X*s.scale, to.Y*s.scale

	s.dc.SetColor(b.Ink().ToColor())
	if fx == tx && fy == ty {
		s.dc.DrawCircle(fx, fy, width/2)
		s.dc.Fill()
		return
	}
	s.dc.SetLineWidth(width)
	s.dc.DrawLine(fx, fy, tx, ty)
	s.dc.Stroke()
}

// Clear paints the whole buffer with the background color.
func (s *Surface) Clear() {
	imageutil.Fill(s.buf, Background)
}

// EncodePNG returns the buffer as PNG bytes.
func (s *Surface) EncodePNG() ([]byte, error) {
	return imageutil.EncodePNG(s.buf)
}

// DataURI returns the buffer as a data:image/png;base64 URI.
func (s *Surface) DataURI() (string, error) {
	data, err := s.EncodePNG()
	if err != nil {
		return "", err
	}
	return imageutil.EncodeDataURI(data), nil
}

// Image returns a copy of the buffer.
func (s *Surface) Image() *image.RGBA {
	return imageutil.CloneRGBA(s.buf)
}

// LogicalSize returns the size in logical pixels.
func (s *Surface) LogicalSize() (int, int) { return s.logicalW, s.logicalH }

// PhysicalSize returns the size of the pixel buffer.
func (s *Surface) PhysicalSize() (int, int) {
	return s.buf.Bounds().Dx(), s.buf.Bounds().Dy()
}

// Scale returns the display scale factor.
func (s *Surface) Scale() float64 { return s.scale }
