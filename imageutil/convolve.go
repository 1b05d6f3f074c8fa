package imageutil

// Kernel3 is a 3x3 integer convolution kernel in row-major order, centered
// on the pixel being computed.
type Kernel3 [9]int

var (
	// SobelX responds to horizontal intensity change.
	SobelX = Kernel3{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	// SobelY responds to vertical intensity change.
	SobelY = Kernel3{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// Apply convolves the 3x3 neighborhood of (x, y). The caller guarantees
// that (x, y) is an interior pixel.
func (k Kernel3) Apply(img *GrayImage, x, y int) int {
	stride := img.Stride
	pix := img.Gray.Pix
	sum := 0
	for ky := -1; ky <= 1; ky++ {
		row := (y + ky) * stride
		for kx := -1; kx <= 1; kx++ {
			sum += int(pix[row+x+kx]) * k[(ky+1)*3+(kx+1)]
		}
	}
	return sum
}

// ApplyClamped convolves the 3x3 neighborhood of (x, y), replicating edge
// pixels for taps that fall outside the image.
func (k Kernel3) ApplyClamped(img *GrayImage, x, y int) int {
	width, height := img.Width(), img.Height()
	sum := 0
	for ky := -1; ky <= 1; ky++ {
		sy := clampInt(y+ky, 0, height-1)
		for kx := -1; kx <= 1; kx++ {
			sx := clampInt(x+kx, 0, width-1)
			sum += int(img.GetGray(sx, sy)) * k[(ky+1)*3+(kx+1)]
		}
	}
	return sum
}

// Gradients returns the horizontal and vertical Sobel responses at (x, y).
// Border pixels are evaluated with edge replication.
func Gradients(img *GrayImage, x, y int) (gx, gy int) {
	if x > 0 && y > 0 && x < img.Width()-1 && y < img.Height()-1 {
		return SobelX.Apply(img, x, y), SobelY.Apply(img, x, y)
	}
	return SobelX.ApplyClamped(img, x, y), SobelY.ApplyClamped(img, x, y)
}
