package raster

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// 8x8 hatch patterns, one byte per row, most significant bit on the left.
var (
	SmallConfetti = [8]uint8{0x80, 0x08, 0x40, 0x02, 0x10, 0x01, 0x20, 0x04}
	LargeConfetti = [8]uint8{0xb1, 0x30, 0x03, 0x1b, 0xd8, 0xc0, 0x0c, 0x8d}
)

var infinite = image.Rect(-1e9, -1e9, 1e9, 1e9)

// Hatch is an unbounded two-colour pattern image.
type Hatch struct {
	Pattern [8]uint8
	Fore    color.NRGBA
	Back    color.NRGBA
}

func (h *Hatch) ColorModel() color.Model { return color.NRGBAModel }
func (h *Hatch) Bounds() image.Rectangle { return infinite }

func (h *Hatch) At(x, y int) color.Color {
	row := h.Pattern[y&7]
	if row&(0x80>>uint(x&7)) != 0 {
		return h.Fore
	}
	return h.Back
}

// Mix blends two colours in RGB space; alpha is interpolated linearly.
func Mix(a, b color.NRGBA, t float64) color.NRGBA {
	ca, _ := colorful.MakeColor(color.NRGBA{R: a.R, G: a.G, B: a.B, A: 0xff})
	cb, _ := colorful.MakeColor(color.NRGBA{R: b.R, G: b.G, B: b.B, A: 0xff})
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(math.Round(alpha))}
}

type ramp [256]color.NRGBA

func newRamp(from, to color.NRGBA, blend func(float64) float64) *ramp {
	var r ramp
	for i := range r {
		t := float64(i) / 255
		if blend != nil {
			t = blend(t)
		}
		r[i] = Mix(from, to, t)
	}
	return &r
}

func (r *ramp) at(t float64) color.NRGBA {
	return r[int(math.Round(math.Max(0, math.Min(1, t))*255))]
}

// LinearGradient runs from one colour to another across a box at the given
// angle (degrees, clockwise from the x axis). Outside the box it either
// clamps or, with Repeat, starts over.
type LinearGradient struct {
	Repeat bool

	dx, dy float64
	lo     float64
	span   float64
	ramp   *ramp
}

func NewLinearGradient(box image.Rectangle, from, to color.NRGBA, angle float64, blend func(float64) float64) *LinearGradient {
	rad := angle * math.Pi / 180
	g := &LinearGradient{dx: math.Cos(rad), dy: math.Sin(rad), ramp: newRamp(from, to, blend)}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range []image.Point{box.Min, {box.Max.X, box.Min.Y}, {box.Min.X, box.Max.Y}, box.Max} {
		p := float64(c.X)*g.dx + float64(c.Y)*g.dy
		lo, hi = math.Min(lo, p), math.Max(hi, p)
	}
	g.lo, g.span = lo, hi-lo
	if g.span == 0 {
		g.span = 1
	}
	return g
}

func (g *LinearGradient) ColorModel() color.Model { return color.NRGBAModel }
func (g *LinearGradient) Bounds() image.Rectangle { return infinite }

func (g *LinearGradient) At(x, y int) color.Color {
	p := (float64(x)+0.5)*g.dx + (float64(y)+0.5)*g.dy
	t := (p - g.lo) / g.span
	if g.Repeat {
		t -= math.Floor(t)
	}
	return g.ramp.at(t)
}

// FocusGradient blends from a centre colour, held over a focus area scaled
// by (fx, fy) of the box, out to a surround colour at the box edge.
type FocusGradient struct {
	cx, cy, rx, ry float64
	fx, fy         float64
	ramp           *ramp
}

func NewFocusGradient(box image.Rectangle, center, surround color.NRGBA, fx, fy float64) *FocusGradient {
	return &FocusGradient{
		cx:   float64(box.Min.X+box.Max.X) / 2,
		cy:   float64(box.Min.Y+box.Max.Y) / 2,
		rx:   math.Max(1, float64(box.Dx())/2),
		ry:   math.Max(1, float64(box.Dy())/2),
		fx:   math.Min(fx, 0.99),
		fy:   math.Min(fy, 0.99),
		ramp: newRamp(center, surround, nil),
	}
}

func (g *FocusGradient) ColorModel() color.Model { return color.NRGBAModel }
func (g *FocusGradient) Bounds() image.Rectangle { return infinite }

func (g *FocusGradient) At(x, y int) color.Color {
	ux := math.Abs(float64(x)+0.5-g.cx) / g.rx
	uy := math.Abs(float64(y)+0.5-g.cy) / g.ry
	ex := math.Max(0, (ux-g.fx)/(1-g.fx))
	ey := math.Max(0, (uy-g.fy)/(1-g.fy))
	return g.ramp.at(math.Hypot(ex, ey))
}

// SuddenFalloff holds the start colour over the first half and the end
// colour over the second with a narrow blend between them.
func SuddenFalloff(t float64) float64 {
	switch {
	case t <= 0.49:
		return 0
	case t >= 0.51:
		return 1
	default:
		return (t - 0.49) / 0.02
	}
}
