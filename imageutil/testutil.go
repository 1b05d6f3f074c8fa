package imageutil

import (
	"image"
	"math"
)

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, c RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	img.Fill(c)
	return img
}

// CreateGradientImage creates a horizontal black-to-white gradient.
func CreateGradientImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / max(width-1, 1))
			img.SetRGB(x, y, RGB{R: v, G: v, B: v})
		}
	}
	return img
}

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetRGB(x, y, White)
			} else {
				img.SetRGB(x, y, Black)
			}
		}
	}
	return img
}

// CreateStepImage creates an image whose left half is left and right half
// is right, giving a single vertical edge at x = width/2.
func CreateStepImage(width, height int, left, right RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.SetRGB(x, y, left)
			} else {
				img.SetRGB(x, y, right)
			}
		}
	}
	return img
}

// CalculateMSE calculates the mean squared error over the RGB channels of
// two images. Images of different sizes return math.MaxFloat64.
func CalculateMSE(img1, img2 *image.RGBA) float64 {
	b1, b2 := img1.Bounds(), img2.Bounds()
	if b1.Size() != b2.Size() {
		return math.MaxFloat64
	}
	if b1.Empty() {
		return 0
	}

	var sumSq float64
	for y := 0; y < b1.Dy(); y++ {
		for x := 0; x < b1.Dx(); x++ {
			c1 := img1.RGBAAt(b1.Min.X+x, b1.Min.Y+y)
			c2 := img2.RGBAAt(b2.Min.X+x, b2.Min.Y+y)
			dr := float64(c1.R) - float64(c2.R)
			dg := float64(c1.G) - float64(c2.G)
			db := float64(c1.B) - float64(c2.B)
			sumSq += dr*dr + dg*dg + db*db
		}
	}
	return sumSq / float64(b1.Dx()*b1.Dy()*3)
}

// CountNotColor counts pixels of img that differ from c.
func CountNotColor(img *image.RGBA, c RGB) int {
	want := c.ToColor()
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != want {
				n++
			}
		}
	}
	return n
}
