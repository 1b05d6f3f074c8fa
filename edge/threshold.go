package edge

import (
	"image"

	"github.com/wbrown/tracepad/imageutil"
)

// DefaultThresholdCutoff is the mean intensity above which Threshold
// outputs white.
const DefaultThresholdCutoff = 128

// Threshold posterizes src to pure black and white. A pixel becomes white
// when the mean of its R, G and B exceeds cutoff. Alpha is kept.
func Threshold(src image.Image, cutoff uint8) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	in := imageutil.ToNRGBA(src)
	b := in.Bounds()
	out := image.NewNRGBA(b)
	limit := 3 * int(cutoff)

	for y := 0; y < b.Dy(); y++ {
		srow := in.Pix[y*in.Stride : y*in.Stride+b.Dx()*4]
		drow := out.Pix[y*out.Stride : y*out.Stride+b.Dx()*4]
		for i := 0; i < len(srow); i += 4 {
			var v uint8
			if int(srow[i])+int(srow[i+1])+int(srow[i+2]) > limit {
				v = 255
			}
			drow[i+0] = v
			drow[i+1] = v
			drow[i+2] = v
			drow[i+3] = srow[i+3]
		}
	}
	return out, nil
}
