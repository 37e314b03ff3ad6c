package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.NRGBA{R: 0xff, A: 0xff}

func TestFillRect(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	p := &Path{}
	p.AddRoundRect(2, 2, 6, 6, 0, false)

	Fill(img, p, image.NewUniform(red))

	assert.Equal(t, red, img.NRGBAAt(5, 5))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(9, 9))
}

func TestFillReverseContourCutsHole(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	p := &Path{}
	p.AddRoundRect(0, 0, 20, 20, 0, false)
	p.AddRoundRect(5, 5, 10, 10, 0, true)

	Fill(img, p, image.NewUniform(red))

	assert.Equal(t, red, img.NRGBAAt(2, 2))
	assert.Equal(t, uint8(0), img.NRGBAAt(10, 10).A)
}

func TestFillClipsToCanvas(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	p := &Path{}
	p.AddCircle(0, 0, 50)
	p.AddCircle(-100, -100, 5)

	require.NotPanics(t, func() { Fill(img, p, image.NewUniform(red)) })
	assert.Equal(t, red, img.NRGBAAt(5, 5))
}

func TestHatch(t *testing.T) {
	fore := color.NRGBA{A: 0xff}
	back := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	h := &Hatch{Pattern: SmallConfetti, Fore: fore, Back: back}

	assert.Equal(t, fore, h.At(0, 0))
	assert.Equal(t, back, h.At(1, 0))
	assert.Equal(t, fore, h.At(4, 1))
	assert.Equal(t, fore, h.At(8, 8), "pattern repeats every 8 pixels")
	assert.Equal(t, fore, h.At(-8, -8))
}

func TestLinearGradient(t *testing.T) {
	from := color.NRGBA{A: 0xff}
	to := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	box := image.Rect(0, 0, 100, 10)

	g := NewLinearGradient(box, from, to, 0, nil)
	start := g.At(0, 5).(color.NRGBA)
	end := g.At(99, 5).(color.NRGBA)
	assert.Less(t, start.R, uint8(5))
	assert.Greater(t, end.R, uint8(250))

	sudden := NewLinearGradient(box, from, to, 0, SuddenFalloff)
	assert.Equal(t, from, sudden.At(30, 5))
	assert.Equal(t, to, sudden.At(70, 5))

	repeat := NewLinearGradient(image.Rect(0, 0, 50, 10), from, to, 0, nil)
	repeat.Repeat = true
	assert.Less(t, repeat.At(50, 5).(color.NRGBA).R, uint8(10))
}

func TestFocusGradient(t *testing.T) {
	center := color.NRGBA{R: 0xff, A: 0xff}
	surround := color.NRGBA{B: 0xff, A: 0xff}
	g := NewFocusGradient(image.Rect(0, 0, 100, 40), center, surround, 0.7, 0.5)

	assert.Equal(t, center, g.At(50, 20))
	assert.Equal(t, surround, g.At(0, 0))
}

func TestQuadWarp(t *testing.T) {
	identity := QuadWarp(0, 0, 10, 10, Point{0, 0}, Point{10, 0}, Point{0, 10}, Point{10, 10})
	assert.Equal(t, Point{3, 7}, identity(Point{3, 7}))

	skew := QuadWarp(0, 0, 10, 10, Point{2, 0}, Point{12, 0}, Point{0, 10}, Point{10, 10})
	assert.InDelta(t, 1.0, skew(Point{0, 5}).X, 1e-9)
}

func TestPathBounds(t *testing.T) {
	p := &Path{}
	assert.True(t, p.Empty())

	p.MoveTo(1, 2)
	p.QuadTo(5, 10, 9, 2)
	lo, hi := p.Bounds()
	assert.Equal(t, Point{1, 2}, lo)
	assert.Equal(t, 9.0, hi.X)
	assert.Greater(t, hi.Y, 2.0)
	assert.Len(t, p.Points(), 1+quadSteps)
}

func TestFontLayout(t *testing.T) {
	book, err := NewFontBook()
	require.NoError(t, err)

	font := entity.FontSpec{Family: "Go", Size: 12}
	w, h, err := book.Measure("Hello", font)
	require.NoError(t, err)
	assert.Greater(t, w, 0.0)
	assert.Greater(t, h, PixelSize(12))

	w2, h2, err := book.Measure("Hello\nHello", font)
	require.NoError(t, err)
	assert.InDelta(t, w, w2, 1e-9)
	assert.InDelta(t, 2*h, h2, 1e-9)

	tests := []struct {
		name   string
		hAlign entity.Alignment
		vAlign entity.Alignment
		check  func(t *testing.T, lo, hi Point)
	}{
		{
			name: "near", hAlign: entity.AlignNear, vAlign: entity.AlignNear,
			check: func(t *testing.T, lo, hi Point) {
				assert.Less(t, lo.X, 10.0)
				assert.Less(t, lo.Y, 15.0)
			},
		},
		{
			name: "far", hAlign: entity.AlignFar, vAlign: entity.AlignFar,
			check: func(t *testing.T, lo, hi Point) {
				assert.Greater(t, hi.X, 150.0)
				assert.LessOrEqual(t, hi.X, 200.5)
				assert.LessOrEqual(t, hi.Y, 100.5)
			},
		},
		{
			name: "center", hAlign: entity.AlignCenter, vAlign: entity.AlignCenter,
			check: func(t *testing.T, lo, hi Point) {
				assert.InDelta(t, 100, (lo.X+hi.X)/2, 5)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := book.Layout("Hello", font, 0, 0, 200, 100, tt.hAlign, tt.vAlign)
			require.NoError(t, err)
			require.False(t, p.Empty())
			lo, hi := p.Bounds()
			tt.check(t, lo, hi)
		})
	}

	_, _, err = book.Measure("x", entity.FontSpec{Family: "Go", Size: 0})
	assert.ErrorIs(t, err, entity.ErrMalformedParameter)
}
