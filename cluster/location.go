package cluster

import (
	"fmt"
	"math/rand"

	"github.com/earth-genome/quadcluster"
	"github.com/google/uuid"
)

// Location is a named input point. Pixel and QuadKey are at PointZoom.
type Location struct {
	Name string `json:"name"`
	quadcluster.LatLng
	Pixel   quadcluster.Point `json:"pixel"`
	QuadKey string            `json:"quadKey"`
}

func NewLocation(name string, ll quadcluster.LatLng) *Location {
	ll = ll.Clamp()
	zl := quadcluster.Zoom(quadcluster.PointZoom)
	p := quadcluster.Project(ll, zl)
	t := quadcluster.TileOf(p)
	return &Location{
		Name:    name,
		LatLng:  ll,
		Pixel:   p,
		QuadKey: quadcluster.QuadKey(t.X, t.Y, zl.Zoom),
	}
}

func (l *Location) Position() quadcluster.LatLng {
	return l.LatLng
}

func (l *Location) Weight() int {
	return 1
}

func (l *Location) String() string {
	return fmt.Sprintf("Location{name=%s, lat=%f, lon=%f, quadKey=%s}", l.Name, l.Lat, l.Lng, l.QuadKey)
}

// RandomLocations returns n locations spread uniformly over the rectangle
// between sw and ne, each named with a random UUID.
func RandomLocations(r *rand.Rand, sw, ne quadcluster.LatLng, n int) []*Location {
	locations := make([]*Location, 0, n)
	for i := 0; i < n; i++ {
		ll := quadcluster.LatLng{
			Lat: sw.Lat + r.Float64()*(ne.Lat-sw.Lat),
			Lng: sw.Lng + r.Float64()*(ne.Lng-sw.Lng),
		}
		locations = append(locations, NewLocation(uuid.NewString(), ll))
	}
	return locations
}
