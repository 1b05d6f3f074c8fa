// Package imageutil provides the pure Go raster helpers shared by the
// drawing surface, the edge extractor and the comparison sheet.
package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// ErrBadHexColor is returned when a color string is not #rgb or #rrggbb.
var ErrBadHexColor = errors.New("imageutil: bad hex color")

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

var (
	// White is the background color of every surface.
	White = RGB{R: 255, G: 255, B: 255}
	// Black is the default ink color.
	Black = RGB{}
)

// ToColor converts RGB to an opaque color.RGBA.
func (rgb RGB) ToColor() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// Hex formats the color as #rrggbb.
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// RGBFromColor converts a color.Color to RGB, dropping alpha.
func RGBFromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ParseHexRGB parses "#rrggbb" or "#rgb" (the leading # is optional).
func ParseHexRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrBadHexColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrBadHexColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets an opaque RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, c.ToColor())
}

// Fill paints every pixel with the opaque color c.
func (img *RGBAImage) Fill(c RGB) {
	Fill(img.RGBA, c)
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	return &RGBAImage{RGBA: CloneRGBA(img.RGBA)}
}

// Fill paints every pixel of dst with the opaque color c.
func Fill(dst *image.RGBA, c RGB) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	row := dst.Pix[:b.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = 255
	}
	for y := 1; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+len(row)], row)
	}
}

// CloneRGBA returns a deep copy of src rebased to the origin.
func CloneRGBA(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[so:so+b.Dx()*4])
	}
	return dst
}

// ToNRGBA returns img as a non-premultiplied image rebased to the origin.
// An *image.NRGBA already at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

// ToRGBA returns img as an *image.RGBA rebased to the origin. An
// *image.RGBA already at the origin is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if r, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return r
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// GrayImage wraps image.Gray for single-channel images (e.g., luma planes).
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a new GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// GetGray returns the grayscale value at (x, y).
func (img *GrayImage) GetGray(x, y int) uint8 {
	return img.Gray.Pix[y*img.Stride+x]
}
