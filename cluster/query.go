package cluster

import (
	"context"
	"fmt"

	"github.com/earth-genome/quadcluster"
)

// Query asks for the clusters of a viewport at a zoom level.
type Query struct {
	SW, NE quadcluster.LatLng
	Zoom   int
}

// Bounds is the viewport in world pixels at PointZoom.
func (q Query) Bounds() quadcluster.Bounds {
	return quadcluster.PixelBounds(q.SW, q.NE, quadcluster.Zoom(quadcluster.PointZoom))
}

// Contains reports whether loc lies in the viewport, edges included.
func (q Query) Contains(loc *Location) bool {
	return q.Bounds().ContainsPoint(loc.Pixel)
}

// Run consumes src until it is closed and returns the clusters of the
// locations inside the viewport. Up to MaxClusterZoom locations are grouped
// by tile; above it every location is returned as its own cluster. On
// cancellation the clusters built so far are returned along with ctx.Err().
func (q Query) Run(ctx context.Context, src <-chan *Location) ([]*Cluster, error) {
	b := q.Bounds()
	if q.Zoom > quadcluster.MaxClusterZoom {
		return q.singles(ctx, b, src)
	}

	g := NewGrid(q.Zoom)
	for {
		select {
		case <-ctx.Done():
			return g.Clusters(), ctx.Err()
		case loc, ok := <-src:
			if !ok {
				return g.Clusters(), nil
			}
			if !b.ContainsPoint(loc.Pixel) {
				continue
			}
			if err := g.Add(loc); err != nil {
				return g.Clusters(), err
			}
		}
	}
}

func (q Query) singles(ctx context.Context, b quadcluster.Bounds, src <-chan *Location) ([]*Cluster, error) {
	var list []*Cluster
	for {
		select {
		case <-ctx.Done():
			return list, ctx.Err()
		case loc, ok := <-src:
			if !ok {
				sortByQuadKey(list)
				return list, nil
			}
			if !b.ContainsPoint(loc.Pixel) {
				continue
			}
			c, err := New(loc.QuadKey[:min(q.Zoom, len(loc.QuadKey))], loc)
			if err != nil {
				return list, fmt.Errorf("single %s: %w", loc.Name, err)
			}
			list = append(list, c)
		}
	}
}
