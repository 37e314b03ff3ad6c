package stage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSources map[string][]byte

func (f fakeSources) Open(locator string) (io.ReadCloser, error) {
	b, ok := f[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSourceUnavailable, locator)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func newTestRegistry(t *testing.T, sources SourceOpener) (*Registry, *raster.FontBook) {
	t.Helper()
	fonts, err := raster.NewFontBook()
	require.NoError(t, err)
	r, err := NewRegistry(Dependencies{Sources: sources, Fonts: fonts})
	require.NoError(t, err)
	return r, fonts
}

func request(spec entity.PipelineSpec, params entity.Params) Request {
	return Request{Spec: spec, Params: params, Rand: rand.New(rand.NewPCG(1, 2))}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 10, G: 20, B: 30, A: 0xff})))
	return buf.Bytes()
}

func TestRegistry(t *testing.T) {
	r, fonts := newTestRegistry(t, nil)

	for _, id := range []string{SourceID, CanvasID, TextCanvasID} {
		_, err := r.ResolveCreator(id)
		assert.NoError(t, err, id)
	}
	for _, id := range []string{ResizeID, RotateFlipID, GrayscaleID, SepiaID, TextID, GradientID} {
		_, err := r.ResolveTransformation(id)
		assert.NoError(t, err, id)
	}

	_, err := r.ResolveTransformation(CaptchaID)
	assert.ErrorIs(t, err, entity.ErrUnknownStage, "captcha is only present when wired")

	_, err = r.ResolveCreator("System.Drawing.Bitmap, System.Drawing")
	assert.ErrorIs(t, err, entity.ErrUnknownStage)

	err = r.RegisterTransformation(ResizeID, TransformationFunc(invert))
	assert.ErrorIs(t, err, entity.ErrDuplicateStage)

	err = r.RegisterCreator(GrayscaleID, CreatorFunc(createCanvas))
	assert.ErrorIs(t, err, entity.ErrDuplicateStage, "ids share one namespace")

	err = r.RegisterCreator("Bad Id", CreatorFunc(createCanvas))
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)

	require.NoError(t, RegisterExtensions(r, fonts))
	assert.ErrorIs(t, RegisterExtensions(r, fonts), entity.ErrDuplicateStage)

	_, transformations := r.IDs()
	assert.Contains(t, transformations, WatermarkID)
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		cur          image.Point
		w, h         int
		wantW, wantH int
		wantOK       bool
	}{
		{name: "width only", cur: image.Pt(200, 50), w: 100, wantW: 100, wantH: 25, wantOK: true},
		{name: "height only", cur: image.Pt(200, 50), h: 10, wantW: 40, wantH: 10, wantOK: true},
		{name: "both stretch", cur: image.Pt(200, 50), w: 30, h: 30, wantW: 30, wantH: 30, wantOK: true},
		{name: "rounding", cur: image.Pt(3, 2), w: 2, wantW: 2, wantH: 1, wantOK: true},
		{name: "rounding up", cur: image.Pt(3, 2), w: 5, wantW: 5, wantH: 3, wantOK: true},
		{name: "neither", cur: image.Pt(200, 50), wantW: 200, wantH: 50},
		{name: "same size", cur: image.Pt(200, 50), w: 200, wantW: 200, wantH: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := TargetSize(tt.cur, tt.w, tt.h)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestResize(t *testing.T) {
	f := &Frame{Image: imaging.New(200, 50, color.White)}

	require.NoError(t, resize(f, request(entity.PipelineSpec{Width: 100}, nil)))
	assert.Equal(t, image.Pt(100, 25), f.Image.Bounds().Size())

	stretched := &Frame{Image: imaging.New(200, 50, color.White)}
	spec := entity.PipelineSpec{Width: 10, SizeType: entity.SizeStretchToText}
	require.NoError(t, resize(stretched, request(spec, nil)))
	assert.Equal(t, image.Pt(200, 50), stretched.Image.Bounds().Size())

	err := resize(f, request(entity.PipelineSpec{Width: MaxDimension + 1}, nil))
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)
}

func TestRotateFlip(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	marked := func() *Frame {
		img := imaging.New(20, 10, color.NRGBA{A: 0xff})
		img.SetNRGBA(0, 0, red)
		return &Frame{Image: img}
	}

	tests := []struct {
		rf   entity.RotateFlip
		size image.Point
		at   image.Point
	}{
		{entity.RotateNoneFlipNone, image.Pt(20, 10), image.Pt(0, 0)},
		{entity.Rotate90FlipNone, image.Pt(10, 20), image.Pt(9, 0)},
		{entity.Rotate180FlipNone, image.Pt(20, 10), image.Pt(19, 9)},
		{entity.Rotate270FlipNone, image.Pt(10, 20), image.Pt(0, 19)},
		{entity.RotateNoneFlipX, image.Pt(20, 10), image.Pt(19, 0)},
		{entity.Rotate90FlipX, image.Pt(10, 20), image.Pt(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.rf.String(), func(t *testing.T) {
			f := marked()
			require.NoError(t, rotateFlip(f, request(entity.PipelineSpec{RotateFlip: tt.rf}, nil)))
			assert.Equal(t, tt.size, f.Image.Bounds().Size())
			assert.Equal(t, red, f.Image.NRGBAAt(tt.at.X, tt.at.Y))
		})
	}
}

func TestColorStagesNoopByDefault(t *testing.T) {
	img := imaging.New(4, 4, color.NRGBA{R: 200, G: 10, B: 10, A: 0xff})
	f := &Frame{Image: img}

	require.NoError(t, grayscale(f, request(entity.PipelineSpec{}, nil)))
	require.NoError(t, sepia(f, request(entity.PipelineSpec{}, nil)))
	assert.Same(t, img, f.Image)

	require.NoError(t, grayscale(f, request(entity.PipelineSpec{Grayscale: true}, nil)))
	px := f.Image.NRGBAAt(1, 1)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)

	s := &Frame{Image: imaging.New(4, 4, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff})}
	require.NoError(t, sepia(s, request(entity.PipelineSpec{Sepia: true}, nil)))
	px = s.Image.NRGBAAt(1, 1)
	assert.Greater(t, px.R, px.B, "sepia warms the tone")
}

func TestSourceCreator(t *testing.T) {
	c := &sourceCreator{sources: fakeSources{
		"photo.png": pngBytes(t, 200, 50),
		"junk.png":  []byte("not an image"),
	}}

	f, err := c.Create(request(entity.PipelineSpec{Source: "photo.png"}, nil))
	require.NoError(t, err)
	assert.Equal(t, entity.FormatPng, f.Format)
	assert.Equal(t, image.Pt(200, 50), f.Image.Bounds().Size())

	_, err = c.Create(request(entity.PipelineSpec{Source: "missing.png"}, nil))
	assert.ErrorIs(t, err, entity.ErrSourceUnavailable)

	_, err = c.Create(request(entity.PipelineSpec{Source: "junk.png"}, nil))
	assert.ErrorIs(t, err, entity.ErrSourceUnavailable)

	_, err = (&sourceCreator{}).Create(request(entity.PipelineSpec{Source: "photo.png"}, nil))
	assert.ErrorIs(t, err, entity.ErrSourceUnavailable)
}

func grayPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestSourceCreatorRejectsOversizedImages(t *testing.T) {
	c := &sourceCreator{sources: fakeSources{
		"edge.png": grayPNG(t, MaxDimension, 1),
		"wide.png": grayPNG(t, MaxDimension+1, 1),
		"tall.png": grayPNG(t, 1, MaxDimension+1),
		"huge.png": grayPNG(t, 5000, 5000),
	}}

	f, err := c.Create(request(entity.PipelineSpec{Source: "edge.png"}, nil))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(MaxDimension, 1), f.Image.Bounds().Size())

	// маленький файл, но огромная картинка после распаковки
	for _, name := range []string{"wide.png", "tall.png", "huge.png"} {
		_, err := c.Create(request(entity.PipelineSpec{Source: name}, nil))
		assert.ErrorIs(t, err, entity.ErrMalformedParameter, name)
	}
}

func TestCanvasCreators(t *testing.T) {
	_, fonts := newTestRegistry(t, nil)

	f, err := createCanvas(request(entity.PipelineSpec{Width: 30, Height: 20},
		entity.Params{{Key: BackgroundParam, Value: "ff0000"}}))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, f.Image.NRGBAAt(5, 5))

	_, err = createCanvas(request(entity.PipelineSpec{Width: 30}, nil))
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)

	_, err = createCanvas(request(entity.PipelineSpec{Width: 30, Height: 20},
		entity.Params{{Key: BackgroundParam, Value: "nope"}}))
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)

	tc := &textCanvasCreator{fonts: fonts}
	text := entity.NewTextSpec("Click me")
	tw, th, err := fonts.Measure(text.Value, text.Font)
	require.NoError(t, err)

	stretched, err := tc.Create(request(entity.PipelineSpec{Width: 500, Height: 500, Text: text, SizeType: entity.SizeStretchToText}, nil))
	require.NoError(t, err)
	assert.InDelta(t, tw+2*textPadding, float64(stretched.Image.Bounds().Dx()), 1)
	assert.InDelta(t, th+2*textPadding, float64(stretched.Image.Bounds().Dy()), 1)

	fixed, err := tc.Create(request(entity.PipelineSpec{Width: 120, Height: 30, Text: text}, nil))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(120, 30), fixed.Image.Bounds().Size())
}

func TestTextOverlay(t *testing.T) {
	_, fonts := newTestRegistry(t, nil)
	overlay := &textOverlay{fonts: fonts}

	f := &Frame{Image: imaging.New(100, 40, color.White)}
	require.NoError(t, overlay.Apply(f, request(entity.PipelineSpec{}, nil)))

	text := entity.NewTextSpec("WWW")
	text.Font.Size = 20
	text.HAlign, text.VAlign = entity.AlignCenter, entity.AlignCenter
	require.NoError(t, overlay.Apply(f, request(entity.PipelineSpec{Text: text}, nil)))

	dark := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			if f.Image.NRGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 50)
}

func TestGradientBackground(t *testing.T) {
	f := &Frame{Image: image.NewNRGBA(image.Rect(0, 0, 120, 30))}
	require.NoError(t, gradientBackground(f, request(entity.PipelineSpec{}, nil)))

	assert.Equal(t, uint8(0xff), f.Image.NRGBAAt(60, 15).A)
	assert.Equal(t, uint8(0), f.Image.NRGBAAt(0, 0).A, "rounded corner stays clear")

	for _, gt := range []entity.GradientType{
		entity.GradientHorizontal, entity.GradientVertical, entity.GradientForwardDiagonal,
		entity.GradientBlendingIn, entity.GradientVerticalSuddenFalloff,
	} {
		g := entity.DefaultGradient()
		g.Type = gt
		g.InnerBorderWidth = 2
		f := &Frame{Image: image.NewNRGBA(image.Rect(0, 0, 60, 20))}
		require.NoError(t, gradientBackground(f, request(entity.PipelineSpec{Gradient: &g}, nil)), gt.String())
		assert.Equal(t, uint8(0xff), f.Image.NRGBAAt(30, 10).A, gt.String())
	}
}

func TestExtensions(t *testing.T) {
	_, fonts := newTestRegistry(t, nil)

	f := &Frame{Image: imaging.New(50, 50, color.NRGBA{R: 0xff, A: 0xff})}
	require.NoError(t, invert(f, request(entity.PipelineSpec{}, nil)))
	assert.Equal(t, color.NRGBA{G: 0xff, B: 0xff, A: 0xff}, f.Image.NRGBAAt(10, 10))

	err := brightness(f, request(entity.PipelineSpec{}, entity.Params{{Key: BrightnessParam, Value: "150"}}))
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)

	dim := &Frame{Image: imaging.New(10, 10, color.NRGBA{R: 100, G: 100, B: 100, A: 0xff})}
	require.NoError(t, brightness(dim, request(entity.PipelineSpec{}, entity.Params{{Key: BrightnessParam, Value: "50"}})))
	assert.Greater(t, dim.Image.NRGBAAt(5, 5).R, uint8(100))

	require.NoError(t, blur(f, request(entity.PipelineSpec{}, entity.Params{{Key: BlurSigmaParam, Value: "2"}})))
	require.NoError(t, sharpen(f, request(entity.PipelineSpec{}, nil)))

	wm := &watermark{fonts: fonts}
	err = wm.Apply(f, request(entity.PipelineSpec{}, nil))
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)

	canvas := &Frame{Image: imaging.New(200, 100, color.NRGBA{A: 0xff})}
	require.NoError(t, wm.Apply(canvas, request(entity.PipelineSpec{}, entity.Params{{Key: WatermarkTextParam, Value: "(c) dynimage"}})))
	assert.Equal(t, color.NRGBA{A: 0xff}, canvas.Image.NRGBAAt(2, 2), "top-left stays clean")

	bright := 0
	for y := 50; y < 100; y++ {
		for x := 100; x < 200; x++ {
			if canvas.Image.NRGBAAt(x, y).R > 40 {
				bright++
			}
		}
	}
	assert.Greater(t, bright, 0, "caption lands in the bottom-right quadrant")
}

func TestProfiles(t *testing.T) {
	p, ok := LookupProfile("captcha")
	require.True(t, ok)
	assert.True(t, p.SecretText)
	assert.Equal(t, []string{ResizeID, CaptchaID, GrayscaleID, SepiaID, RotateFlipID}, p.Native)

	b, ok := LookupProfile("button")
	require.True(t, ok)
	assert.Equal(t, TextCanvasID, b.Creator)

	_, ok = LookupProfile("thumbnail")
	assert.False(t, ok)
}
