package raster

// QuadWarp maps the box (x, y, w, h) bilinearly onto the quadrilateral with
// the given top-left, top-right, bottom-left and bottom-right corners.
func QuadWarp(x, y, w, h float64, tl, tr, bl, br Point) func(Point) Point {
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return func(p Point) Point {
		u := (p.X - x) / w
		v := (p.Y - y) / h
		top := lerp(tl, tr, u)
		bottom := lerp(bl, br, u)
		return lerp(top, bottom, v)
	}
}

func lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}
