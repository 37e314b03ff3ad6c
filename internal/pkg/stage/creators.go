package stage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// BackgroundParam is the optional background colour of the canvas creators.
const BackgroundParam = "bg"

type sourceCreator struct {
	sources SourceOpener
}

func (c *sourceCreator) Create(req Request) (*Frame, error) {
	locator := req.Spec.Source
	if locator == "" {
		return nil, fmt.Errorf("%w: no source locator", entity.ErrMalformedParameter)
	}
	if c.sources == nil {
		return nil, fmt.Errorf("%w: no source storage configured", entity.ErrSourceUnavailable)
	}

	rc, err := c.sources.Open(locator)
	if err != nil {
		if errors.Is(err, entity.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrSourceUnavailable, err)
	}
	defer rc.Close()

	// The header alone gives the size; check it before allocating pixels.
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(rc, &header))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode %q: %v", entity.ErrSourceUnavailable, locator, err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, fmt.Errorf("%w: source %q is %dx%d, larger than %d per side",
			entity.ErrMalformedParameter, locator, cfg.Width, cfg.Height, MaxDimension)
	}

	img, name, err := image.Decode(io.MultiReader(&header, rc))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode %q: %v", entity.ErrSourceUnavailable, locator, err)
	}
	format, ok := entity.FormatFromName(name)
	if !ok {
		return nil, fmt.Errorf("%w: source format %q", entity.ErrUnsupportedFormat, name)
	}
	return &Frame{Image: imaging.Clone(img), Format: format}, nil
}

// createCanvas makes a blank canvas of exactly the requested size.
func createCanvas(req Request) (*Frame, error) {
	w, h := req.Spec.Width, req.Spec.Height
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	bg, err := colorParam(req.Params, BackgroundParam, color.NRGBA{})
	if err != nil {
		return nil, err
	}
	return &Frame{Image: imaging.New(w, h, bg), Format: entity.FormatPng}, nil
}

const (
	textPadding       = 5
	defaultButtonText = "Gradient button"
)

// textCanvasCreator sizes a blank canvas from the spec, measuring the text
// for any dimension that is missing or when stretching to the text.
type textCanvasCreator struct {
	fonts *raster.FontBook
}

func (c *textCanvasCreator) Create(req Request) (*Frame, error) {
	s := req.Spec
	w, h := s.Width, s.Height
	stretch := s.SizeType == entity.SizeStretchToText

	if stretch || w <= 0 || h <= 0 {
		text, font := defaultButtonText, entity.DefaultFont
		if s.Text != nil {
			text, font = s.Text.Value, s.Text.Font
		}
		tw, th, err := c.fonts.Measure(text, font)
		if err != nil {
			return nil, err
		}
		if stretch || w <= 0 {
			w = int(math.Ceil(tw)) + 2*textPadding
		}
		if stretch || h <= 0 {
			h = int(math.Ceil(th)) + 2*textPadding
		}
	}
	if err := checkSize(w, h); err != nil {
		return nil, err
	}

	bg, err := colorParam(req.Params, BackgroundParam, color.NRGBA{})
	if err != nil {
		return nil, err
	}
	return &Frame{Image: imaging.New(w, h, bg), Format: entity.FormatPng}, nil
}
