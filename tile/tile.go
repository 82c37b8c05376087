package tile

import (
	"fmt"
	"sync"

	"github.com/earth-genome/quadcluster"
	"github.com/earth-genome/quadcluster/geodesic"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
)

// Tile is a TileSize x TileSize pixel square of the world map at one zoom
// level. Tile (0, 0) is the top left corner of the map.
type Tile struct {
	X, Y    int64
	Zoom    quadcluster.ZoomLevel
	QuadKey string

	// world pixel extents
	WorldTopLeft     quadcluster.Point
	WorldBottomRight quadcluster.Point

	TopLeft     quadcluster.LatLng
	TopRight    quadcluster.LatLng
	BottomLeft  quadcluster.LatLng
	BottomRight quadcluster.LatLng
	Center      quadcluster.LatLng

	// Radius of the circle around the tile, in meters.
	Radius float64

	neighboursOnce sync.Once
	neighbours     *Neighbours
}

// Neighbours are the 8 tiles surrounding a tile. The grid wraps around at
// its edges on both axes.
type Neighbours struct {
	TopLeft, Top, TopRight          *Tile
	Left, Right                     *Tile
	BottomLeft, Bottom, BottomRight *Tile
}

func New(x, y int64, zoom int) *Tile {
	zl := quadcluster.Zoom(zoom)
	t := &Tile{
		X:       x,
		Y:       y,
		Zoom:    zl,
		QuadKey: quadcluster.QuadKey(x, y, zl.Zoom),
		WorldTopLeft: quadcluster.Point{
			X: x * quadcluster.TileSize,
			Y: y * quadcluster.TileSize,
		},
		WorldBottomRight: quadcluster.Point{
			X: (x + 1) * quadcluster.TileSize,
			Y: (y + 1) * quadcluster.TileSize,
		},
	}

	t.TopLeft = quadcluster.Unproject(t.WorldTopLeft, zl)
	t.BottomRight = quadcluster.Unproject(t.WorldBottomRight, zl)
	t.BottomLeft = quadcluster.LatLng{Lat: t.BottomRight.Lat, Lng: t.TopLeft.Lng}
	t.TopRight = quadcluster.LatLng{Lat: t.TopLeft.Lat, Lng: t.BottomRight.Lng}
	t.Center = quadcluster.LatLng{
		Lat: (t.TopLeft.Lat + t.BottomRight.Lat) / 2,
		Lng: (t.TopLeft.Lng + t.BottomRight.Lng) / 2,
	}
	t.Radius = geodesic.Distance(t.Center, t.TopLeft)
	return t
}

// FromLatLng returns the tile containing ll at the given zoom.
func FromLatLng(ll quadcluster.LatLng, zoom int) *Tile {
	zl := quadcluster.Zoom(zoom)
	p := quadcluster.TileOf(quadcluster.Project(ll, zl))
	return New(p.X, p.Y, zl.Zoom)
}

// FromQuadKey decodes a quadkey. Malformed keys are rejected rather than
// mapped to a nearby tile.
func FromQuadKey(key string) (*Tile, error) {
	x, y, zoom, err := quadcluster.TileFromQuadKey(key)
	if err != nil {
		return nil, fmt.Errorf("tile from quadkey: %w", err)
	}
	return New(x, y, zoom), nil
}

// Parent returns the ancestor of t at the given lower zoom level.
func (t *Tile) Parent(zoom int) (*Tile, error) {
	if zoom < 0 || zoom > t.Zoom.Zoom {
		return nil, fmt.Errorf("parent zoom %d outside [0, %d]", zoom, t.Zoom.Zoom)
	}
	return FromQuadKey(t.QuadKey[:zoom])
}

// Neighbours returns the surrounding tiles. They are built on first use and
// shared by every later caller.
func (t *Tile) Neighbours() *Neighbours {
	t.neighboursOnce.Do(func() {
		t.neighbours = &Neighbours{
			TopLeft:     t.Neighbour(-1, -1),
			Top:         t.Neighbour(0, -1),
			TopRight:    t.Neighbour(1, -1),
			Left:        t.Neighbour(-1, 0),
			Right:       t.Neighbour(1, 0),
			BottomLeft:  t.Neighbour(-1, 1),
			Bottom:      t.Neighbour(0, 1),
			BottomRight: t.Neighbour(1, 1),
		}
	})
	return t.neighbours
}

// Neighbour returns the tile offset by (dx, dy), wrapping around the full
// 2^zoom grid on both axes. The torus is not geographically true at the poles.
func (t *Tile) Neighbour(dx, dy int64) *Tile {
	return New(wrap(t.X+dx, t.Zoom.Columns()), wrap(t.Y+dy, t.Zoom.Rows()), t.Zoom.Zoom)
}

// ClosestNeighbours returns the 3 neighbours next to the quadrant of t that
// holds ll.
func (t *Tile) ClosestNeighbours(ll quadcluster.LatLng) [3]*Tile {
	n := t.Neighbours()
	west := ll.Lng < t.Center.Lng
	south := ll.Lat < t.Center.Lat
	switch {
	case west && south:
		return [3]*Tile{n.Left, n.BottomLeft, n.Bottom}
	case west:
		return [3]*Tile{n.Left, n.TopLeft, n.Top}
	case south:
		return [3]*Tile{n.Bottom, n.BottomRight, n.Right}
	default:
		return [3]*Tile{n.Top, n.TopRight, n.Right}
	}
}

func (t *Tile) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{t.TopLeft.Lng, t.BottomRight.Lat},
		Max: orb.Point{t.BottomRight.Lng, t.TopLeft.Lat},
	}
}

func (t *Tile) Polygon() orb.Polygon {
	return t.Bound().ToPolygon()
}

// Geohash of the tile center.
func (t *Tile) Geohash(length uint) string {
	return geohash.EncodeWithPrecision(t.Center.Lat, t.Center.Lng, length)
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile{x=%d, y=%d, zoom=%d, quadKey=%q}", t.X, t.Y, t.Zoom.Zoom, t.QuadKey)
}

// Cover returns the tiles at zoom that intersect the geographic bound,
// row by row from the top left.
func Cover(b orb.Bound, zoom int) []*Tile {
	tiles := make([]*Tile, 0)
	eachCovering(b, zoom, func(t *Tile) {
		tiles = append(tiles, t)
	})
	return tiles
}

// CoverToChan behaves like Cover but sends the tiles on tiles and closes
// it when done.
func CoverToChan(b orb.Bound, zoom int, tiles chan<- *Tile) {
	eachCovering(b, zoom, func(t *Tile) {
		tiles <- t
	})
	close(tiles)
}

// Count returns the number of tiles Cover visits for b at zoom without
// building them. It is an upper bound of len(Cover(b, zoom)).
func Count(b orb.Bound, zoom int) int64 {
	tl, br := tileRange(b, quadcluster.Zoom(zoom))
	return (br.X - tl.X + 1) * (br.Y - tl.Y + 1)
}

func tileRange(b orb.Bound, zl quadcluster.ZoomLevel) (tl, br quadcluster.Point) {
	tl = quadcluster.TileOf(quadcluster.Project(quadcluster.LatLng{Lat: b.Max.Lat(), Lng: b.Min.Lon()}, zl))
	br = quadcluster.TileOf(quadcluster.Project(quadcluster.LatLng{Lat: b.Min.Lat(), Lng: b.Max.Lon()}, zl))
	return tl, br
}

func eachCovering(b orb.Bound, zoom int, fn func(*Tile)) {
	zl := quadcluster.Zoom(zoom)
	tl, br := tileRange(b, zl)

	for y := tl.Y; y <= br.Y; y++ {
		for x := tl.X; x <= br.X; x++ {
			t := New(x, y, zl.Zoom)
			if t.Bound().Intersects(b) {
				fn(t)
			}
		}
	}
}

func wrap(v, n int64) int64 {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
