package imageutil

import (
	"image"
	"math"
)

// Luma weights applied to R, G and B. These are the rounded ITU-R 601
// coefficients the line-art filter has always used; they are not the exact
// 0.299/0.587/0.114 set.
const (
	LumaR = 0.3
	LumaG = 0.59
	LumaB = 0.11
)

// Luma returns the weighted intensity of one pixel. Each product is rounded
// on its own before the sum so the result does not depend on whether the
// compiler emits fused multiply-add instructions.
func Luma(r, g, b uint8) float64 {
	lr := float64(float64(r) * LumaR)
	lg := float64(float64(g) * LumaG)
	lb := float64(float64(b) * LumaB)
	return lr + lg + lb
}

// ToLuma converts img to an 8-bit intensity plane using Luma. Pixels are
// read non-premultiplied and stored with ClampUint8.
func ToLuma(img image.Image) *GrayImage {
	src := ToNRGBA(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width*4]
		out := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x := range out {
			i := x * 4
			out[x] = ClampUint8(Luma(row[i], row[i+1], row[i+2]))
		}
	}
	return gray
}

// ClampUint8 clamps v to [0, 255] and rounds half to even, which is how a
// clamped 8-bit store behaves. NaN maps to 0.
func ClampUint8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampInt clamps an integer to the given range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
