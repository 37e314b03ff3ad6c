package stage

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
)

// Extension ids and their parameters.
const (
	BlurID       = "blur"
	SharpenID    = "sharpen"
	InvertID     = "invert"
	BrightnessID = "brightness"
	WatermarkID  = "watermark"

	BlurSigmaParam     = "blr"
	SharpenSigmaParam  = "shp"
	BrightnessParam    = "brt"
	WatermarkTextParam = "wmk"
	WatermarkColor     = "wmc"
)

// RegisterExtensions adds the stock extension stages to r.
func RegisterExtensions(r *Registry, fonts *raster.FontBook) error {
	extensions := []struct {
		id string
		t  Transformation
	}{
		{BlurID, TransformationFunc(blur)},
		{SharpenID, TransformationFunc(sharpen)},
		{InvertID, TransformationFunc(invert)},
		{BrightnessID, TransformationFunc(brightness)},
		{WatermarkID, &watermark{fonts: fonts}},
	}
	for _, ext := range extensions {
		if err := r.RegisterTransformation(ext.id, ext.t); err != nil {
			return fmt.Errorf("failed to register %s: %w", ext.id, err)
		}
	}
	return nil
}

func blur(f *Frame, req Request) error {
	sigma, err := floatParam(req.Params, BlurSigmaParam, 1, 0, 50)
	if err != nil {
		return err
	}
	if sigma > 0 {
		f.Image = imaging.Blur(f.Image, sigma)
	}
	return nil
}

func sharpen(f *Frame, req Request) error {
	sigma, err := floatParam(req.Params, SharpenSigmaParam, 1, 0, 50)
	if err != nil {
		return err
	}
	if sigma > 0 {
		f.Image = imaging.Sharpen(f.Image, sigma)
	}
	return nil
}

func invert(f *Frame, _ Request) error {
	f.Image = imaging.Invert(f.Image)
	return nil
}

// brightness takes a percentage in [-100, 100].
func brightness(f *Frame, req Request) error {
	pct, err := floatParam(req.Params, BrightnessParam, 0, -100, 100)
	if err != nil {
		return err
	}
	if pct != 0 {
		f.Image = imaging.Clone(adjust.Brightness(f.Image, pct/100))
	}
	return nil
}

var defaultWatermarkColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80}

// watermark writes a caption in the bottom-right corner, sized to the image.
type watermark struct {
	fonts *raster.FontBook
}

func (w *watermark) Apply(f *Frame, req Request) error {
	text, ok := req.Params.Get(WatermarkTextParam)
	if !ok || text == "" {
		return fmt.Errorf("%w: %s is required", entity.ErrMalformedParameter, WatermarkTextParam)
	}
	c, err := colorParam(req.Params, WatermarkColor, defaultWatermarkColor)
	if err != nil {
		return err
	}

	b := f.Image.Bounds()
	font := entity.FontSpec{
		Family: "Go",
		Size:   math.Max(6, float64(b.Dy())/16),
		Style:  entity.StyleBold,
	}
	margin := math.Max(2, float64(b.Dy())/50)
	path, err := w.fonts.Layout(text, font,
		float64(b.Min.X)+margin, float64(b.Min.Y)+margin,
		float64(b.Dx())-2*margin, float64(b.Dy())-2*margin,
		entity.AlignFar, entity.AlignFar)
	if err != nil {
		return err
	}
	raster.Fill(f.Image, path, image.NewUniform(c))
	return nil
}
