package stage

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
)

// TargetSize resolves the requested box against the current size. A missing
// dimension keeps the aspect ratio, rounded to the nearest pixel. ok is
// false when nothing would change.
func TargetSize(cur image.Point, w, h int) (int, int, bool) {
	if (w <= 0 && h <= 0) || cur.X <= 0 || cur.Y <= 0 {
		return cur.X, cur.Y, false
	}
	if w <= 0 {
		w = max(1, int(math.Round(float64(h)*float64(cur.X)/float64(cur.Y))))
	}
	if h <= 0 {
		h = max(1, int(math.Round(float64(w)*float64(cur.Y)/float64(cur.X))))
	}
	return w, h, w != cur.X || h != cur.Y
}

func resize(f *Frame, req Request) error {
	// for text-fitted canvases the size was only a creation hint
	if req.Spec.SizeType == entity.SizeStretchToText {
		return nil
	}
	w, h, ok := TargetSize(f.Image.Bounds().Size(), req.Spec.Width, req.Spec.Height)
	if !ok {
		return nil
	}
	if err := checkSize(w, h); err != nil {
		return err
	}
	f.Image = imaging.Resize(f.Image, w, h, imaging.Lanczos)
	return nil
}

// rotateFlip turns clockwise, then mirrors horizontally.
func rotateFlip(f *Frame, req Request) error {
	rf := req.Spec.RotateFlip
	switch rf.Turns() {
	case 1:
		f.Image = imaging.Rotate270(f.Image)
	case 2:
		f.Image = imaging.Rotate180(f.Image)
	case 3:
		f.Image = imaging.Rotate90(f.Image)
	}
	if rf.FlipX() {
		f.Image = imaging.FlipH(f.Image)
	}
	return nil
}

func grayscale(f *Frame, req Request) error {
	if req.Spec.Grayscale {
		f.Image = imaging.Grayscale(f.Image)
	}
	return nil
}

func sepia(f *Frame, req Request) error {
	if req.Spec.Sepia {
		f.Image = imaging.Clone(effect.Sepia(f.Image))
	}
	return nil
}

type textOverlay struct {
	fonts *raster.FontBook
}

func (t *textOverlay) Apply(f *Frame, req Request) error {
	text := req.Spec.Text
	if text == nil || text.Value == "" {
		return nil
	}
	b := f.Image.Bounds()
	path, err := t.fonts.Layout(text.Value, text.Font,
		float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy()),
		text.HAlign, text.VAlign)
	if err != nil {
		return err
	}
	raster.Fill(f.Image, path, image.NewUniform(text.Color))
	return nil
}

// borderAlpha is the opacity of button borders.
const borderAlpha = 180

// gradientBackground paints the rounded button body with its gradient and
// strokes the outer and inner borders.
func gradientBackground(f *Frame, req Request) error {
	g := req.Spec.GradientOrDefault()
	size := f.Image.Bounds().Size()
	W, H := float64(size.X), float64(size.Y)
	bw := float64(g.BorderWidth)

	x := float64(g.BorderWidth / 2)
	w, h := W-bw, H-bw
	if w <= 0 || h <= 0 {
		return nil
	}
	radius := float64(g.CornerRadius)

	body := &raster.Path{}
	body.AddRoundRect(x, x, w, h, radius, false)
	box := image.Rect(int(x), int(x), int(x+w), int(x+h))
	raster.Fill(f.Image, body, gradientPaint(g, box))

	if g.BorderWidth > 0 {
		raster.Fill(f.Image, raster.StrokeRoundRect(x, x, w, h, radius, bw),
			image.NewUniform(withAlpha(g.BorderColor, borderAlpha)))
	}

	if g.InnerBorderWidth > 0 {
		ibw := float64(g.InnerBorderWidth)
		x2 := float64(g.BorderWidth + g.InnerBorderWidth/2)
		w2, h2 := W-2*bw-ibw, H-2*bw-ibw
		if w2 > 0 && h2 > 0 {
			raster.Fill(f.Image, raster.StrokeRoundRect(x2, x2, w2, h2, radius, ibw),
				image.NewUniform(withAlpha(g.InnerBorderColor, borderAlpha)))
		}
	}
	return nil
}

func gradientPaint(g entity.GradientSpec, box image.Rectangle) image.Image {
	switch g.Type {
	case entity.GradientHorizontal:
		return raster.NewLinearGradient(box, g.StartColor, g.EndColor, 0, nil)
	case entity.GradientVertical:
		return raster.NewLinearGradient(box, g.StartColor, g.EndColor, 90, nil)
	case entity.GradientForwardDiagonal:
		return raster.NewLinearGradient(box, g.StartColor, g.EndColor, 45, nil)
	case entity.GradientBlendingIn:
		return raster.NewFocusGradient(box, g.StartColor, g.EndColor, 0.7, 0.5)
	case entity.GradientVerticalSuddenFalloff:
		return raster.NewLinearGradient(box, g.StartColor, g.EndColor, 90, raster.SuddenFalloff)
	default:
		return raster.NewLinearGradient(box, g.StartColor, g.EndColor, 135, nil)
	}
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = uint8(uint16(c.A) * uint16(a) / 0xff)
	return c
}
