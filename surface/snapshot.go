package surface

import (
	"bytes"
	"errors"
	"image"

	"github.com/wbrown/tracepad/imageutil"
)

// ErrEmptySnapshot is returned when restoring the zero Snapshot.
var ErrEmptySnapshot = errors.New("surface: empty snapshot")

// Snapshot is an opaque copy of a surface buffer.
type Snapshot struct {
	pix           []byte
	width, height int
}

// IsZero reports whether the snapshot holds no pixels.
func (sn Snapshot) IsZero() bool { return len(sn.pix) == 0 }

// Size returns the physical size the snapshot was taken at.
func (sn Snapshot) Size() (int, int) { return sn.width, sn.height }

// Equal reports whether two snapshots hold identical pixels.
func (sn Snapshot) Equal(other Snapshot) bool {
	return sn.width == other.width && sn.height == other.height &&
		bytes.Equal(sn.pix, other.pix)
}

func (sn Snapshot) image() *image.RGBA {
	return &image.RGBA{
		Pix:    sn.pix,
		Stride: sn.width * 4,
		Rect:   image.Rect(0, 0, sn.width, sn.height),
	}
}

// Snapshot copies the current buffer.
func (s *Surface) Snapshot() Snapshot {
	w, h := s.PhysicalSize()
	pix := make([]byte, len(s.buf.Pix))
	copy(pix, s.buf.Pix)
	return Snapshot{pix: pix, width: w, height: h}
}

// Restore copies a snapshot back into the buffer. A snapshot taken at a
// different physical size is stretched over a white fill.
func (s *Surface) Restore(sn Snapshot) error {
	if sn.IsZero() {
		return ErrEmptySnapshot
	}
	w, h := s.PhysicalSize()
	if sn.width == w && sn.height == h {
		copy(s.buf.Pix, sn.pix)
		return nil
	}
	imageutil.Fill(s.buf, Background)
	imageutil.Scale(s.buf, sn.image(), imageutil.InterpolationLinear)
	return nil
}
