package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationLinear uses bilinear interpolation. This is what the
	// surface uses when it stretches its contents.
	InterpolationLinear Interpolation = iota

	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	InterpolationArea

	// InterpolationNearest uses nearest-neighbor interpolation.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationArea:
		return draw.CatmullRom
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.BiLinear
	}
}

// Scale stretches src over the whole of dst, compositing over whatever dst
// already holds. Equal sizes are copied without resampling.
func Scale(dst *image.RGBA, src image.Image, interp Interpolation) {
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		return
	}
	interp.scaler().Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
}

// Resize returns src resampled to width x height on a white background.
func Resize(src image.Image, width, height int, interp Interpolation) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	Fill(dst, White)
	Scale(dst, src, interp)
	return dst
}

// FitWithin returns the largest size with the aspect ratio of (w, h) that
// fits inside (maxW, maxH). Both results are at least 1.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	fw := maxW
	fh := h * maxW / w
	if fh > maxH {
		fh = maxH
		fw = w * maxH / h
	}
	return max(fw, 1), max(fh, 1)
}
