package captcha

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
	"github.com/ds124wfegd/dynimage/internal/pkg/stage"
)

// Distortion is the captcha stage. It repaints the whole frame: background
// noise first, then the answer text in the selected style.
type Distortion struct {
	fonts *raster.FontBook
}

func NewDistortion(fonts *raster.FontBook) *Distortion {
	return &Distortion{fonts: fonts}
}

var _ stage.Transformation = (*Distortion)(nil)

func (d *Distortion) Apply(f *stage.Frame, req stage.Request) error {
	text := req.Spec.Text
	if text == nil || text.Value == "" {
		return fmt.Errorf("%w: captcha has no text", entity.ErrMalformedParameter)
	}
	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}

	cs := req.Spec.CaptchaOrDefault()
	style := cs.Style
	if style == entity.CaptchaRandom {
		style = entity.CaptchaStyle(rng.IntN(int(entity.CaptchaRandom)))
	}

	path, err := d.fonts.Layout(text.Value, text.Font, 0, 0,
		float64(f.Image.Bounds().Dx()), float64(f.Image.Bounds().Dy()),
		text.HAlign, text.VAlign)
	if err != nil {
		return err
	}

	switch style {
	case entity.CaptchaConfetti:
		confetti(f.Image, path, text, cs, rng)
	case entity.CaptchaGradient:
		return d.gradient(f.Image, path, text, cs, rng)
	case entity.CaptchaHoles:
		holes(f.Image, path, text, cs, rng)
	default:
		return fmt.Errorf("%w: captcha style %s", entity.ErrMalformedParameter, style)
	}
	return nil
}

// confetti hides a warped hatch-filled text in hatch noise.
func confetti(img *image.NRGBA, path *raster.Path, text *entity.TextSpec, cs entity.CaptchaSpec, rng *rand.Rand) {
	W, H := img.Bounds().Dx(), img.Bounds().Dy()
	middle := midpoint(text.Color, cs.BackColor)

	draw.Draw(img, img.Bounds(), &raster.Hatch{Pattern: raster.SmallConfetti, Fore: middle, Back: cs.BackColor}, image.Point{}, draw.Src)

	paint := &raster.Hatch{Pattern: raster.LargeConfetti, Fore: middle, Back: text.Color}
	raster.Fill(img, path.Map(randomWarp(rng, W, H, 4)), paint)

	extent := max(W, H) / ConfettiDivisor(cs.Difficulty)
	noise := &raster.Path{}
	for range W * H / 30 {
		x, y := intn(rng, W), intn(rng, H)
		ew, eh := float64(intn(rng, extent)), float64(intn(rng, extent))
		if ew == 0 || eh == 0 {
			continue
		}
		noise.AddEllipse(float64(x)+ew/2, float64(y)+eh/2, ew/2, eh/2)
	}
	raster.Fill(img, noise, paint)
}

// gradient draws gradient-filled text on a wave over a gradient background.
func (d *Distortion) gradient(img *image.NRGBA, path *raster.Path, text *entity.TextSpec, cs entity.CaptchaSpec, rng *rand.Rand) error {
	W, H := img.Bounds().Dx(), img.Bounds().Dy()

	bg := raster.NewLinearGradient(img.Bounds(), complement(cs.BackColor), cs.BackColor, rng.Float64()*360, nil)
	draw.Draw(img, img.Bounds(), bg, image.Point{}, draw.Src)

	_, th, err := d.fonts.Measure(text.Value, text.Font)
	if err != nil {
		return err
	}
	// The wave runs along y, so only the vertical slack matters.
	maxH := max(0, (H-int(th))/2-1)
	dh := float64(sign(rng) * GradientDisplacement(maxH, cs.Difficulty))

	wave := path.Map(func(p raster.Point) raster.Point {
		return raster.Point{X: p.X, Y: p.Y + dh*math.Cos(math.Pi*p.X/48)}
	})

	paint := raster.NewLinearGradient(image.Rect(0, 0, W/2, H/2), text.Color, complement(text.Color), rng.Float64()*360, nil)
	paint.Repeat = true
	raster.Fill(img, wave, paint)
	return nil
}

// holes draws warped solid text and punches background-coloured circles
// into its outline.
func holes(img *image.NRGBA, path *raster.Path, text *entity.TextSpec, cs entity.CaptchaSpec, rng *rand.Rand) {
	W, H := img.Bounds().Dx(), img.Bounds().Dy()
	back := image.NewUniform(cs.BackColor)

	draw.Draw(img, img.Bounds(), back, image.Point{}, draw.Src)

	n := HoleCount(rng, cs.Difficulty, len([]rune(text.Value)))
	warped := path.Map(randomWarp(rng, W, H, 6))
	raster.Fill(img, warped, image.NewUniform(text.Color))

	pts := warped.Points()
	if len(pts) == 0 {
		return
	}
	radius := text.Font.Size / 10
	circles := &raster.Path{}
	for range n {
		p := pts[rng.IntN(len(pts))]
		circles.AddCircle(p.X, p.Y, radius)
	}
	raster.Fill(img, circles, back)
}

// randomWarp pulls each image corner inwards by up to 1/mix of the side.
func randomWarp(rng *rand.Rand, W, H int, mix float64) func(raster.Point) raster.Point {
	w, h := float64(W), float64(H)
	in := func(n int) float64 { return float64(intn(rng, n)) / mix }

	tl := raster.Point{X: in(W), Y: in(H)}
	tr := raster.Point{X: w - in(W), Y: in(H)}
	bl := raster.Point{X: in(W), Y: h - in(H)}
	br := raster.Point{X: w - in(W), Y: h - in(H)}
	return raster.QuadWarp(0, 0, w, h, tl, tr, bl, br)
}

func sign(rng *rand.Rand) int {
	if rng.IntN(2) == 1 {
		return 1
	}
	return -1
}

func midpoint(a, b color.NRGBA) color.NRGBA {
	mid := func(x, y uint8) uint8 { return uint8(int(x) + (int(y)-int(x))/2) }
	return color.NRGBA{R: mid(a.R, b.R), G: mid(a.G, b.G), B: mid(a.B, b.B), A: 0xff}
}

func complement(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: 0xff - c.R, G: 0xff - c.G, B: 0xff - c.B, A: 0xff}
}
