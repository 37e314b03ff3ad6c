package raster

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Fill paints src through the anti-aliased coverage of p onto dst.
// Contours are clipped to dst before rasterization.
func Fill(dst draw.Image, p *Path, src image.Image) {
	b := dst.Bounds()
	if b.Empty() || p == nil {
		return
	}
	w, h := float64(b.Dx()), float64(b.Dy())

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	drawn := false
	for _, c := range p.contours {
		poly := make([]Point, len(c))
		for i, pt := range c {
			poly[i] = Point{pt.X - float64(b.Min.X), pt.Y - float64(b.Min.Y)}
		}
		poly = clipPolygon(poly, w, h)
		if len(poly) < 3 {
			continue
		}
		z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
		for _, pt := range poly[1:] {
			z.LineTo(float32(pt.X), float32(pt.Y))
		}
		z.ClosePath()
		drawn = true
	}
	if drawn {
		z.Draw(dst, b, src, b.Min)
	}
}

// clipPolygon clips against [0,w]x[0,h] (Sutherland-Hodgman).
func clipPolygon(poly []Point, w, h float64) []Point {
	edges := []struct {
		inside func(Point) bool
		cross  func(a, b Point) Point
	}{
		{func(p Point) bool { return p.X >= 0 }, func(a, b Point) Point { return atX(a, b, 0) }},
		{func(p Point) bool { return p.X <= w }, func(a, b Point) Point { return atX(a, b, w) }},
		{func(p Point) bool { return p.Y >= 0 }, func(a, b Point) Point { return atY(a, b, 0) }},
		{func(p Point) bool { return p.Y <= h }, func(a, b Point) Point { return atY(a, b, h) }},
	}
	for _, e := range edges {
		if len(poly) == 0 {
			return nil
		}
		var out []Point
		prev := poly[len(poly)-1]
		for _, cur := range poly {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
		poly = out
	}
	return poly
}

func atX(a, b Point, x float64) Point {
	t := (x - a.X) / (b.X - a.X)
	return Point{x, a.Y + t*(b.Y-a.Y)}
}

func atY(a, b Point, y float64) Point {
	t := (y - a.Y) / (b.Y - a.Y)
	return Point{a.X + t*(b.X-a.X), y}
}
