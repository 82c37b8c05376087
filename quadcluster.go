package quadcluster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	TileSize = 256

	MinLatitude  = -85.05112877
	MaxLatitude  = 85.05112877
	MinLongitude = -179.999
	MaxLongitude = 179.999
)

// LatLng is a geographic position in degrees. Latitude grows towards the
// north pole, longitude towards the east.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lon"`
}

// Clamp keeps the position inside the range the Mercator pyramid can represent.
func (ll LatLng) Clamp() LatLng {
	return LatLng{
		Lat: clip(ll.Lat, MinLatitude, MaxLatitude),
		Lng: clip(ll.Lng, MinLongitude, MaxLongitude),
	}
}

// Point returns the position as an orb point (lon, lat).
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

func (ll LatLng) String() string {
	return fmt.Sprintf("LatLng{lat=%f, lon=%f}", ll.Lat, ll.Lng)
}

// FromOrb converts an orb point (lon, lat) to a LatLng.
func FromOrb(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// Point is an integer coordinate on the world pixel grid, or a tile
// coordinate, of one zoom level. Points of different zoom levels are
// not comparable.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%d, %d)", p.X, p.Y)
}

// Project converts a geographic position into the absolute world pixel
// containing it at the given zoom level. Positions outside the pyramid are
// clamped, never rejected. The scaled coordinates are rounded to the nearest
// pixel rather than truncated, so a point shifts by at most half a pixel.
func Project(ll LatLng, zl ZoomLevel) Point {
	ll = ll.Clamp()
	sinLat := math.Sin(toRad(ll.Lat))

	x := (ll.Lng + 180) / 360
	y := 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)

	size := float64(zl.MapSize)
	return Point{
		X: int64(clip(x*size+0.5, 0, size-1)),
		Y: int64(clip(y*size+0.5, 0, size-1)),
	}
}

// Unproject converts a world pixel back into geographic coordinates.
func Unproject(p Point, zl ZoomLevel) LatLng {
	size := float64(zl.MapSize)
	x := clip(float64(p.X), 0, size-1)/size - 0.5
	y := 0.5 - clip(float64(p.Y), 0, size-1)/size

	return LatLng{
		Lat: 90 - 360*math.Atan(math.Exp(-y*2*math.Pi))/math.Pi,
		Lng: 360 * x,
	}
}

// TileOf returns the tile coordinate of the tile containing the world pixel.
func TileOf(p Point) Point {
	return Point{X: floorDiv(p.X, TileSize), Y: floorDiv(p.Y, TileSize)}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func clip(n, lo, hi float64) float64 {
	return math.Min(math.Max(n, lo), hi)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
