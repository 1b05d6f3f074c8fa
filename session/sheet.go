package session

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/tracepad/imageutil"
)

const (
	captionFontSize = 12.0
	captionHeight   = 24
)

var frameColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// SheetOptions lays out a comparison sheet.
type SheetOptions struct {
	PanelWidth  int // each image is fitted inside PanelWidth x PanelHeight
	PanelHeight int
	Gap         int // margin around and between panels

	// Ghost draws the reference faintly over the drawing panel, aligned
	// with the stored drawing.
	Ghost   bool
	Opacity float64 // ghost opacity, 0 to 1

	// Mirrored shows the drawing panel, ghost included, flipped
	// horizontally, as it looked on a flipped pad.
	Mirrored bool

	Caption string // printed under the panels when not empty
}

// DefaultSheetOptions returns 400x300 panels with a 16px gap and no ghost.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{PanelWidth: 400, PanelHeight: 300, Gap: 16, Opacity: 0.2}
}

func (o SheetOptions) validate() error {
	if o.PanelWidth < 1 || o.PanelHeight < 1 || o.Gap < 0 {
		return fmt.Errorf("invalid sheet layout %dx%d gap %d", o.PanelWidth, o.PanelHeight, o.Gap)
	}
	if math.IsNaN(o.Opacity) || o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("ghost opacity %v must be in [0, 1]", o.Opacity)
	}
	return nil
}

// Sheet renders ref on the left and drawing on the right, each fitted to a
// framed panel. Neither input is modified.
func Sheet(ref, drawing image.Image, opts SheetOptions) (*image.RGBA, error) {
	if ref == nil || ref.Bounds().Empty() || drawing == nil || drawing.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	pw, ph, gap := opts.PanelWidth, opts.PanelHeight, opts.Gap
	width := 2*pw + 3*gap
	height := ph + 2*gap
	if opts.Caption != "" {
		height += captionHeight
	}

	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(sheet)
	dc.SetColor(color.White)
	dc.Clear()

	left := image.Rect(gap, gap, gap+pw, gap+ph)
	right := left.Add(image.Pt(pw+gap, 0))

	placePanel(dc, ref, left)
	placed := placePanel(dc, drawing, right)
	if opts.Ghost && opts.Opacity > 0 {
		ghost(sheet, ref, placed, opts.Opacity)
	}
	if opts.Mirrored {
		mirror(sheet.SubImage(placed).(*image.RGBA))
	}

	dc.SetColor(frameColor)
	dc.SetLineWidth(1)
	for _, r := range []image.Rectangle{left, right} {
		dc.DrawRectangle(float64(r.Min.X)-0.5, float64(r.Min.Y)-0.5, float64(r.Dx())+1, float64(r.Dy())+1)
		dc.Stroke()
	}

	if opts.Caption != "" {
		if err := drawCaption(sheet, opts.Caption, image.Pt(gap, gap+ph+gap+captionHeight/2)); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

// placePanel fits img into panel, centers it, and returns where it landed.
func placePanel(dc *gg.Context, img image.Image, panel image.Rectangle) image.Rectangle {
	b := img.Bounds()
	w, h := imageutil.FitWithin(b.Dx(), b.Dy(), panel.Dx(), panel.Dy())
	scaled := imageutil.Resize(img, w, h, imageutil.InterpolationArea)
	x := panel.Min.X + (panel.Dx()-w)/2
	y := panel.Min.Y + (panel.Dy()-h)/2
	dc.DrawImage(scaled, x, y)
	return image.Rect(x, y, x+w, y+h)
}

// ghost blends ref over dst inside r at the given opacity.
func ghost(dst *image.RGBA, ref image.Image, r image.Rectangle, opacity float64) {
	scaled := imageutil.Resize(ref, r.Dx(), r.Dy(), imageutil.InterpolationLinear)
	mask := image.NewUniform(color.Alpha{A: imageutil.ClampUint8(opacity * 255)})
	draw.DrawMask(dst, r, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

func mirror(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for l, r := b.Min.X, b.Max.X-1; l < r; l, r = l+1, r-1 {
			cl, cr := img.RGBAAt(l, y), img.RGBAAt(r, y)
			img.SetRGBA(l, y, cr)
			img.SetRGBA(r, y, cl)
		}
	}
}

var captionFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
})

// drawCaption prints text in black with its baseline at pt.
func drawCaption(dst *image.RGBA, text string, pt image.Point) error {
	f, err := captionFont()
	if err != nil {
		return fmt.Errorf("failed to parse caption font: %w", err)
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(captionFontSize)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.Black)
	ctx.SetHinting(font.HintingFull)
	if _, err := ctx.DrawString(text, freetype.Pt(pt.X, pt.Y)); err != nil {
		return fmt.Errorf("failed to draw caption: %w", err)
	}
	return nil
}
