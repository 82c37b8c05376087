package cluster

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/earth-genome/quadcluster"
	"github.com/earth-genome/quadcluster/geodesic"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	london   = quadcluster.LatLng{Lat: 51.507222, Lng: -0.1275}
	brighton = quadcluster.LatLng{Lat: 50.8225, Lng: -0.1372}
)

func seed(t *testing.T, name string, ll quadcluster.LatLng) *Cluster {
	t.Helper()
	loc := NewLocation(name, ll)
	c, err := New(loc.QuadKey, loc)
	require.NoError(t, err)
	return c
}

func TestNewSeedsCluster(t *testing.T) {
	c := seed(t, "london", london)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, quadcluster.PointZoom, c.Zoom)
	assert.Equal(t, london, c.Center)
	assert.True(t, c.Bound().Contains(london.Point()))
	assert.Equal(t, "london", c.Location.Name)
}

func TestNewInvalidQuadKey(t *testing.T) {
	_, err := New("0a1", NewLocation("x", london))
	require.Error(t, err)
	assert.ErrorIs(t, err, quadcluster.ErrInvalidQuadKeyDigit)
}

func TestMergeEmpty(t *testing.T) {
	var c Cluster
	assert.ErrorIs(t, c.Merge(london), ErrEmptyCluster)
	assert.ErrorIs(t, c.MergePixel(quadcluster.Point{X: 1, Y: 1}), ErrEmptyCluster)
	assert.Equal(t, 0, c.Count)
}

func TestMergeTwoPointsIsMidpoint(t *testing.T) {
	c := seed(t, "london", london)
	require.NoError(t, c.Merge(brighton))
	assert.Equal(t, 2, c.Count)

	total := geodesic.Distance(london, brighton)
	a := geodesic.Distance(c.Center, london)
	b := geodesic.Distance(c.Center, brighton)
	assert.InDelta(t, total/2, a, 1e-3)
	assert.InDelta(t, total/2, b, 1e-3)
}

func TestMergeCountMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	locs := RandomLocations(r, quadcluster.LatLng{Lat: 51, Lng: -1}, quadcluster.LatLng{Lat: 52, Lng: 0}, 50)
	c, err := New(locs[0].QuadKey[:5], locs[0])
	require.NoError(t, err)
	for i, loc := range locs[1:] {
		require.NoError(t, c.Merge(loc.LatLng))
		assert.Equal(t, i+2, c.Count)
	}
}

// 1000 points in a box of about a kilometer around Westminster.
func westminster(seed int64) []*Location {
	r := rand.New(rand.NewSource(seed))
	return RandomLocations(r,
		quadcluster.LatLng{Lat: 51.4950, Lng: -0.1350},
		quadcluster.LatLng{Lat: 51.5040, Lng: -0.1206},
		1000)
}

func sphericalCentroid(locs []*Location) quadcluster.LatLng {
	var sum r3.Vector
	for _, l := range locs {
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(l.Lat, l.Lng)).Vector)
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return quadcluster.LatLng{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}

func TestMergeMatchesCentroid(t *testing.T) {
	locs := westminster(42)
	c, err := New(locs[0].QuadKey[:10], locs[0])
	require.NoError(t, err)

	var lat, lng float64
	for i, l := range locs {
		lat += l.Lat
		lng += l.Lng
		if i > 0 {
			require.NoError(t, c.Merge(l.LatLng))
		}
	}
	mean := quadcluster.LatLng{Lat: lat / float64(len(locs)), Lng: lng / float64(len(locs))}

	assert.Equal(t, len(locs), c.Count)
	assert.Less(t, geodesic.Distance(c.Center, sphericalCentroid(locs)), 1.0)
	assert.Less(t, geodesic.Distance(c.Center, mean), 1.0)
}

func TestMergeOrderIndependent(t *testing.T) {
	locs := westminster(42)
	forward, err := New(locs[0].QuadKey[:10], locs[0])
	require.NoError(t, err)
	for _, l := range locs[1:] {
		require.NoError(t, forward.Merge(l.LatLng))
	}

	last := len(locs) - 1
	backward, err := New(locs[last].QuadKey[:10], locs[last])
	require.NoError(t, err)
	for i := last - 1; i >= 0; i-- {
		require.NoError(t, backward.Merge(locs[i].LatLng))
	}

	assert.Less(t, geodesic.Distance(forward.Center, backward.Center), 1.0)
}

func TestMergePixel(t *testing.T) {
	a := NewLocation("a", quadcluster.LatLng{Lat: 51.50, Lng: -0.13})
	b := NewLocation("b", quadcluster.LatLng{Lat: 51.51, Lng: -0.12})
	c, err := New(a.QuadKey[:12], a)
	require.NoError(t, err)

	require.NoError(t, c.MergePixel(b.Pixel))
	assert.Equal(t, 2, c.Count)
	want := quadcluster.Point{X: (a.Pixel.X + b.Pixel.X) / 2, Y: (a.Pixel.Y + b.Pixel.Y) / 2}
	assert.Equal(t, want, c.pixel)
	assert.Equal(t, quadcluster.Unproject(want, quadcluster.Zoom(quadcluster.PointZoom)), c.Center)

	// the fixed precision mean stays within a few meters of the geodesic one
	g, err := New(a.QuadKey[:12], a)
	require.NoError(t, err)
	require.NoError(t, g.Merge(b.LatLng))
	assert.Less(t, geodesic.Distance(c.Center, g.Center), 1.0)
}

func TestMarshalJSONLocation(t *testing.T) {
	c := seed(t, "london", london)

	js, err := json.Marshal(c)
	require.NoError(t, err)
	var single map[string]any
	require.NoError(t, json.Unmarshal(js, &single))
	require.Contains(t, single, "location")
	assert.Equal(t, "london", single["location"].(map[string]any)["name"])
	assert.Equal(t, c.QuadKey, single["quadKey"])

	require.NoError(t, c.Merge(brighton))
	js, err = json.Marshal(c)
	require.NoError(t, err)
	var merged map[string]any
	require.NoError(t, json.Unmarshal(js, &merged))
	assert.NotContains(t, merged, "location")
	assert.EqualValues(t, 2, merged["count"])
	assert.Contains(t, merged, "center")
	assert.Contains(t, merged, "bottomRight")
}

func TestFeatureCollection(t *testing.T) {
	a := seed(t, "london", london)
	b := seed(t, "brighton", brighton)
	fc := FeatureCollection([]*Cluster{a, b})
	require.Len(t, fc.Features, 2)

	first, second := a, b
	if b.QuadKey < a.QuadKey {
		first, second = b, a
	}
	assert.Equal(t, first.QuadKey, fc.Features[0].Properties["quadKey"])
	assert.Equal(t, second.QuadKey, fc.Features[1].Properties["quadKey"])
	assert.Equal(t, first.Location.Name, fc.Features[0].Properties["name"])
	assert.Equal(t, false, fc.Features[0].Properties["cluster"])
}

func TestGeohash(t *testing.T) {
	c := seed(t, "london", london)
	assert.Equal(t, "gcpvj", c.Geohash(5))
}
