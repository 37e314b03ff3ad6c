// Package raster holds the vector drawing primitives used by the drawing
// stages: flattened paths, glyph outlines, paints and an anti-aliased fill.
package raster

import "math"

type Point struct {
	X, Y float64
}

const (
	quadSteps    = 8
	cubeSteps    = 12
	ellipseSteps = 32
	arcSteps     = 8
)

// Path is a set of closed polygons. Curves are flattened as they are added.
type Path struct {
	contours [][]Point
}

func (p *Path) MoveTo(x, y float64) {
	p.contours = append(p.contours, []Point{{x, y}})
}

func (p *Path) LineTo(x, y float64) {
	if len(p.contours) == 0 {
		p.MoveTo(x, y)
		return
	}
	last := &p.contours[len(p.contours)-1]
	*last = append(*last, Point{x, y})
}

func (p *Path) QuadTo(cx, cy, x, y float64) {
	start := p.current()
	for i := 1; i <= quadSteps; i++ {
		t := float64(i) / quadSteps
		u := 1 - t
		p.LineTo(
			u*u*start.X+2*u*t*cx+t*t*x,
			u*u*start.Y+2*u*t*cy+t*t*y,
		)
	}
}

func (p *Path) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	start := p.current()
	for i := 1; i <= cubeSteps; i++ {
		t := float64(i) / cubeSteps
		u := 1 - t
		p.LineTo(
			u*u*u*start.X+3*u*u*t*c1x+3*u*t*t*c2x+t*t*t*x,
			u*u*u*start.Y+3*u*u*t*c1y+3*u*t*t*c2y+t*t*t*y,
		)
	}
}

func (p *Path) current() Point {
	if len(p.contours) == 0 {
		return Point{}
	}
	c := p.contours[len(p.contours)-1]
	return c[len(c)-1]
}

func (p *Path) AddPolygon(pts []Point) {
	if len(pts) == 0 {
		return
	}
	p.contours = append(p.contours, append([]Point(nil), pts...))
}

func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	pts := make([]Point, ellipseSteps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ellipseSteps
		pts[i] = Point{cx + rx*math.Cos(a), cy + ry*math.Sin(a)}
	}
	p.contours = append(p.contours, pts)
}

func (p *Path) AddCircle(cx, cy, r float64) {
	p.AddEllipse(cx, cy, r, r)
}

// AddRoundRect adds a rectangle with corners of the given radius. A reversed
// contour cuts a hole out of an enclosing one of the opposite winding.
func (p *Path) AddRoundRect(x, y, w, h, radius float64, reverse bool) {
	radius = math.Max(0, math.Min(radius, math.Min(w/2, h/2)))
	var pts []Point
	if radius == 0 {
		pts = []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	} else {
		corners := []struct{ cx, cy, from float64 }{
			{x + radius, y + radius, math.Pi},
			{x + w - radius, y + radius, 1.5 * math.Pi},
			{x + w - radius, y + h - radius, 0},
			{x + radius, y + h - radius, 0.5 * math.Pi},
		}
		for _, c := range corners {
			for i := 0; i <= arcSteps; i++ {
				a := c.from + 0.5*math.Pi*float64(i)/arcSteps
				pts = append(pts, Point{c.cx + radius*math.Cos(a), c.cy + radius*math.Sin(a)})
			}
		}
	}
	if reverse {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	p.contours = append(p.contours, pts)
}

func (p *Path) Append(q *Path) {
	for _, c := range q.contours {
		p.AddPolygon(c)
	}
}

func (p *Path) Translate(dx, dy float64) *Path {
	return p.Map(func(pt Point) Point { return Point{pt.X + dx, pt.Y + dy} })
}

// Map returns a copy of the path with every vertex passed through f.
func (p *Path) Map(f func(Point) Point) *Path {
	out := &Path{contours: make([][]Point, len(p.contours))}
	for i, c := range p.contours {
		mapped := make([]Point, len(c))
		for j, pt := range c {
			mapped[j] = f(pt)
		}
		out.contours[i] = mapped
	}
	return out
}

// Points returns every vertex of the path in order.
func (p *Path) Points() []Point {
	var pts []Point
	for _, c := range p.contours {
		pts = append(pts, c...)
	}
	return pts
}

func (p *Path) Empty() bool {
	for _, c := range p.contours {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box of all vertices.
func (p *Path) Bounds() (lo, hi Point) {
	if p.Empty() {
		return Point{}, Point{}
	}
	lo = Point{math.Inf(1), math.Inf(1)}
	hi = Point{math.Inf(-1), math.Inf(-1)}
	for _, c := range p.contours {
		for _, pt := range c {
			lo.X, lo.Y = math.Min(lo.X, pt.X), math.Min(lo.Y, pt.Y)
			hi.X, hi.Y = math.Max(hi.X, pt.X), math.Max(hi.Y, pt.Y)
		}
	}
	return lo, hi
}

// StrokeRoundRect returns the band of the given width centred on the outline
// of a rounded rectangle.
func StrokeRoundRect(x, y, w, h, radius, width float64) *Path {
	half := width / 2
	p := &Path{}
	p.AddRoundRect(x-half, y-half, w+width, h+width, radius+half, false)
	if w > width && h > width {
		p.AddRoundRect(x+half, y+half, w-width, h-width, math.Max(0, radius-half), true)
	}
	return p
}
