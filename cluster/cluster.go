// Package cluster aggregates locations into one cluster per tile, for every
// zoom level of a range, updating each cluster in constant space as points
// arrive.
package cluster

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/earth-genome/quadcluster"
	"github.com/earth-genome/quadcluster/geodesic"
	"github.com/earth-genome/quadcluster/tile"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrEmptyCluster = errors.New("merge into a cluster with no points")
	ErrShortQuadKey = errors.New("quadkey shorter than zoom")
)

// Cluster summarizes the locations that fall into one tile. Center is the
// running geodesic mean of the merged positions.
type Cluster struct {
	QuadKey string
	Zoom    int
	Count   int
	Center  quadcluster.LatLng

	TopLeft     quadcluster.LatLng
	TopRight    quadcluster.LatLng
	BottomLeft  quadcluster.LatLng
	BottomRight quadcluster.LatLng

	// Location is the first location of the cluster. It is only reported
	// while the cluster holds a single point.
	Location *Location

	// running mean at PointZoom, used by MergePixel
	pixel quadcluster.Point
}

// New seeds a cluster for the tile addressed by quadKey with its first
// location.
func New(quadKey string, loc *Location) (*Cluster, error) {
	t, err := tile.FromQuadKey(quadKey)
	if err != nil {
		return nil, fmt.Errorf("new cluster: %w", err)
	}
	return &Cluster{
		QuadKey:     quadKey,
		Zoom:        t.Zoom.Zoom,
		Count:       1,
		Center:      loc.LatLng,
		TopLeft:     t.TopLeft,
		TopRight:    t.TopRight,
		BottomLeft:  t.BottomLeft,
		BottomRight: t.BottomRight,
		Location:    loc,
		pixel:       loc.Pixel,
	}, nil
}

// Merge moves the center towards ll by 1/(Count+1) of the geodesic distance
// between them, then counts the point.
func (c *Cluster) Merge(ll quadcluster.LatLng) error {
	if c.Count == 0 {
		return ErrEmptyCluster
	}
	k := c.Count + 1
	r := geodesic.Inverse(c.Center, ll)
	c.Center = geodesic.Direct(c.Center, r.InitialBearing, r.Distance/float64(k))
	c.Count = k
	c.pixel = quadcluster.Project(c.Center, quadcluster.Zoom(quadcluster.PointZoom))
	return nil
}

// MergePixel is the fixed precision variant of Merge. It averages world
// pixels at PointZoom with integer arithmetic, so the center is only an
// approximation of the geodesic mean, off by up to a pixel per merge.
func (c *Cluster) MergePixel(p quadcluster.Point) error {
	if c.Count == 0 {
		return ErrEmptyCluster
	}
	n := int64(c.Count)
	c.pixel = quadcluster.Point{
		X: (c.pixel.X*n + p.X) / (n + 1),
		Y: (c.pixel.Y*n + p.Y) / (n + 1),
	}
	c.Count++
	c.Center = quadcluster.Unproject(c.pixel, quadcluster.Zoom(quadcluster.PointZoom))
	return nil
}

func (c *Cluster) Position() quadcluster.LatLng {
	return c.Center
}

func (c *Cluster) Weight() int {
	return c.Count
}

// Point makes the cluster usable as an orb.Pointer.
func (c *Cluster) Point() orb.Point {
	return c.Center.Point()
}

func (c *Cluster) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.TopLeft.Lng, c.BottomRight.Lat},
		Max: orb.Point{c.BottomRight.Lng, c.TopLeft.Lat},
	}
}

// Geohash of the cluster center.
func (c *Cluster) Geohash(length uint) string {
	return geohash.EncodeWithPrecision(c.Center.Lat, c.Center.Lng, length)
}

func (c *Cluster) String() string {
	return fmt.Sprintf("Cluster{quadKey=%s, zoom=%d, count=%d, center=%v}", c.QuadKey, c.Zoom, c.Count, c.Center)
}

type clusterJSON struct {
	QuadKey     string             `json:"quadKey"`
	Zoom        int                `json:"zoom"`
	Count       int                `json:"count"`
	Center      quadcluster.LatLng `json:"center"`
	TopLeft     quadcluster.LatLng `json:"topLeft"`
	TopRight    quadcluster.LatLng `json:"topRight"`
	BottomLeft  quadcluster.LatLng `json:"bottomLeft"`
	BottomRight quadcluster.LatLng `json:"bottomRight"`
	Location    *Location          `json:"location,omitempty"`
}

func (c *Cluster) MarshalJSON() ([]byte, error) {
	out := clusterJSON{
		QuadKey:     c.QuadKey,
		Zoom:        c.Zoom,
		Count:       c.Count,
		Center:      c.Center,
		TopLeft:     c.TopLeft,
		TopRight:    c.TopRight,
		BottomLeft:  c.BottomLeft,
		BottomRight: c.BottomRight,
	}
	if c.Count == 1 {
		out.Location = c.Location
	}
	return json.Marshal(out)
}

// Feature returns the cluster as a GeoJSON point at its center.
func (c *Cluster) Feature() *geojson.Feature {
	f := geojson.NewFeature(c.Center.Point())
	f.ID = c.QuadKey
	f.Properties["quadKey"] = c.QuadKey
	f.Properties["zoom"] = c.Zoom
	f.Properties["count"] = c.Count
	f.Properties["cluster"] = c.Count > 1
	if c.Count == 1 && c.Location != nil {
		f.Properties["name"] = c.Location.Name
	}
	return f
}

// FeatureCollection returns the clusters as GeoJSON, ordered by quadkey.
func FeatureCollection(clusters []*Cluster) *geojson.FeatureCollection {
	sorted := slices.Clone(clusters)
	sortByQuadKey(sorted)

	fc := geojson.NewFeatureCollection()
	for _, c := range sorted {
		fc.Append(c.Feature())
	}
	return fc
}

func sortByQuadKey(clusters []*Cluster) {
	slices.SortFunc(clusters, func(a, b *Cluster) int {
		return strings.Compare(a.QuadKey, b.QuadKey)
	})
}
