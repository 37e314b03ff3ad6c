package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontBook resolves font specs to the bundled Go fonts. Families naming a
// monospace face ("mono", "courier") map to Go Mono, everything else to Go.
// It is read-only after construction and safe for concurrent use.
type FontBook struct {
	sans [4]*sfnt.Font
	mono [4]*sfnt.Font
}

func NewFontBook() (*FontBook, error) {
	b := &FontBook{}
	sets := []struct {
		dst  *[4]*sfnt.Font
		ttfs [4][]byte
	}{
		{&b.sans, [4][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF}},
		{&b.mono, [4][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}},
	}
	for _, set := range sets {
		for i, ttf := range set.ttfs {
			f, err := sfnt.Parse(ttf)
			if err != nil {
				return nil, fmt.Errorf("failed to parse font: %w", err)
			}
			set.dst[i] = f
		}
	}
	return b, nil
}

func (b *FontBook) face(spec entity.FontSpec) *sfnt.Font {
	style := spec.Style
	if style < entity.StyleRegular || style > entity.StyleBoldItalic {
		style = entity.StyleRegular
	}
	family := strings.ToLower(spec.Family)
	if strings.Contains(family, "mono") || strings.Contains(family, "courier") {
		return b.mono[style]
	}
	return b.sans[style]
}

// PixelSize converts points to pixels at 96 dpi.
func PixelSize(points float64) float64 {
	return points * 96 / 72
}

type textLine struct {
	path  *Path
	width float64
}

// lines returns one outline per text line, each starting at x=0 with the
// top of the first line at y=0.
func (b *FontBook) lines(text string, spec entity.FontSpec) ([]textLine, float64, error) {
	ppem := fixed.Int26_6(math.Round(PixelSize(spec.Size) * 64))
	if ppem <= 0 {
		return nil, 0, fmt.Errorf("%w: font size %v", entity.ErrMalformedParameter, spec.Size)
	}
	f := b.face(spec)

	var buf sfnt.Buffer
	m, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, 0, err
	}
	ascent, lineHeight := fromFixed(m.Ascent), fromFixed(m.Height)

	var out []textLine
	for i, s := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		lp := &Path{}
		baseline := float64(i)*lineHeight + ascent
		x := 0.0
		var prev sfnt.GlyphIndex
		for j, r := range []rune(s) {
			idx, err := f.GlyphIndex(&buf, r)
			if err != nil {
				return nil, 0, err
			}
			if j > 0 {
				if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
					x += fromFixed(k)
				}
			}
			segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
			if err != nil {
				return nil, 0, err
			}
			for _, seg := range segs {
				a := seg.Args
				switch seg.Op {
				case sfnt.SegmentOpMoveTo:
					lp.MoveTo(x+fromFixed(a[0].X), baseline+fromFixed(a[0].Y))
				case sfnt.SegmentOpLineTo:
					lp.LineTo(x+fromFixed(a[0].X), baseline+fromFixed(a[0].Y))
				case sfnt.SegmentOpQuadTo:
					lp.QuadTo(x+fromFixed(a[0].X), baseline+fromFixed(a[0].Y),
						x+fromFixed(a[1].X), baseline+fromFixed(a[1].Y))
				case sfnt.SegmentOpCubeTo:
					lp.CubeTo(x+fromFixed(a[0].X), baseline+fromFixed(a[0].Y),
						x+fromFixed(a[1].X), baseline+fromFixed(a[1].Y),
						x+fromFixed(a[2].X), baseline+fromFixed(a[2].Y))
				}
			}
			adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
			if err != nil {
				return nil, 0, err
			}
			x += fromFixed(adv)
			prev = idx
		}
		out = append(out, textLine{path: lp, width: x})
	}
	return out, lineHeight, nil
}

// Measure returns the size of the text's layout box.
func (b *FontBook) Measure(text string, spec entity.FontSpec) (w, h float64, err error) {
	lines, lineHeight, err := b.lines(text, spec)
	if err != nil {
		return 0, 0, err
	}
	for _, l := range lines {
		w = math.Max(w, l.width)
	}
	return w, float64(len(lines)) * lineHeight, nil
}

// Layout returns the outline of text aligned inside the box (x, y, w, h).
// Each line is aligned horizontally on its own.
func (b *FontBook) Layout(text string, spec entity.FontSpec, x, y, w, h float64, hAlign, vAlign entity.Alignment) (*Path, error) {
	lines, lineHeight, err := b.lines(text, spec)
	if err != nil {
		return nil, err
	}
	oy := align(vAlign, y, h, float64(len(lines))*lineHeight)

	out := &Path{}
	for _, l := range lines {
		out.Append(l.path.Translate(align(hAlign, x, w, l.width), oy))
	}
	return out, nil
}

func align(a entity.Alignment, start, room, size float64) float64 {
	switch a {
	case entity.AlignNear:
		return start
	case entity.AlignCenter:
		return start + (room-size)/2
	default:
		return start + room - size
	}
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
