package quadcluster

import "github.com/paulmach/orb"

// Bounds is an axis aligned rectangle in screen orientation: Left <= Right
// and Top <= Bottom, y growing downwards like world pixels.
type Bounds struct {
	Left, Right float64
	Top, Bottom float64
	MidX, MidY  float64
}

func NewBounds(left, right, top, bottom float64) Bounds {
	return Bounds{
		Left:   left,
		Right:  right,
		Top:    top,
		Bottom: bottom,
		MidX:   (left + right) / 2,
		MidY:   (top + bottom) / 2,
	}
}

// PixelBounds is the world pixel rectangle spanned by a south-west and a
// north-east corner at the given level.
func PixelBounds(sw, ne LatLng, zl ZoomLevel) Bounds {
	bl := Project(sw, zl)
	tr := Project(ne, zl)
	return NewBounds(float64(bl.X), float64(tr.X), float64(tr.Y), float64(bl.Y))
}

// Contains reports whether (x, y) lies inside the closed rectangle.
func (b Bounds) Contains(x, y float64) bool {
	return b.Left <= x && x <= b.Right && b.Top <= y && y <= b.Bottom
}

func (b Bounds) ContainsPoint(p Point) bool {
	return b.Contains(float64(p.X), float64(p.Y))
}

// Intersects reports whether the interiors overlap. Rectangles that only
// share an edge do not intersect.
func (b Bounds) Intersects(o Bounds) bool {
	return o.Left < b.Right && b.Left < o.Right && o.Top < b.Bottom && b.Top < o.Bottom
}

// ContainsBounds reports whether o lies entirely inside b.
func (b Bounds) ContainsBounds(o Bounds) bool {
	return o.Left >= b.Left && o.Right <= b.Right && o.Top >= b.Top && o.Bottom <= b.Bottom
}

// GeoBound converts pixel bounds of the given level to a geographic bound.
func (b Bounds) GeoBound(zl ZoomLevel) orb.Bound {
	tl := Unproject(Point{X: int64(b.Left), Y: int64(b.Top)}, zl)
	br := Unproject(Point{X: int64(b.Right), Y: int64(b.Bottom)}, zl)
	return orb.Bound{
		Min: orb.Point{tl.Lng, br.Lat},
		Max: orb.Point{br.Lng, tl.Lat},
	}
}
