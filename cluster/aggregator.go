package cluster

import (
	"context"
	"fmt"

	"github.com/earth-genome/quadcluster"
)

// Aggregator maintains one cluster per tile for every zoom of
// [MinZoom, MaxZoom]. It is not safe for concurrent use; run one
// aggregator per pass.
type Aggregator struct {
	minZoom, maxZoom int

	// clusters[z-minZoom] is keyed by the quadkey at zoom z
	clusters []map[string]*Cluster
	points   int
}

// NewAggregator clamps both zooms into [0, PointZoom]. An inverted range is
// swapped.
func NewAggregator(minZoom, maxZoom int) *Aggregator {
	minZoom = min(max(minZoom, quadcluster.MinZoom), quadcluster.PointZoom)
	maxZoom = min(max(maxZoom, quadcluster.MinZoom), quadcluster.PointZoom)
	if minZoom > maxZoom {
		minZoom, maxZoom = maxZoom, minZoom
	}
	a := &Aggregator{minZoom: minZoom, maxZoom: maxZoom}
	a.Reset()
	return a
}

func (a *Aggregator) MinZoom() int { return a.minZoom }
func (a *Aggregator) MaxZoom() int { return a.maxZoom }

// Add merges loc into its cluster at every zoom of the range, creating the
// clusters it is the first point of. A location without a quadkey gets one
// computed from its position. Nothing is modified when Add fails.
func (a *Aggregator) Add(loc *Location) error {
	key := loc.QuadKey
	if key == "" {
		key = quadcluster.QuadKeyOf(loc.LatLng, quadcluster.Zoom(quadcluster.PointZoom))
	}
	if _, _, _, err := quadcluster.TileFromQuadKey(key); err != nil {
		return fmt.Errorf("add %s: %w", loc.Name, err)
	}
	if len(key) < a.maxZoom {
		return fmt.Errorf("add %s: %w: %q at zoom %d", loc.Name, ErrShortQuadKey, key, a.maxZoom)
	}

	for z := a.minZoom; z <= a.maxZoom; z++ {
		clusters := a.clusters[z-a.minZoom]
		k := key[:z]
		if c, ok := clusters[k]; ok {
			if err := c.Merge(loc.LatLng); err != nil {
				return fmt.Errorf("add %s at zoom %d: %w", loc.Name, z, err)
			}
			continue
		}
		c, err := New(k, loc)
		if err != nil {
			return fmt.Errorf("add %s at zoom %d: %w", loc.Name, z, err)
		}
		clusters[k] = c
	}
	a.points++
	return nil
}

// AddAll adds every location received from src until it is closed. When ctx
// is cancelled it stops and returns ctx.Err(); the clusters built so far stay
// consistent and usable.
func (a *Aggregator) AddAll(ctx context.Context, src <-chan *Location) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case loc, ok := <-src:
			if !ok {
				return nil
			}
			if err := a.Add(loc); err != nil {
				return err
			}
		}
	}
}

// Clusters returns the clusters at zoom keyed by quadkey, or nil when zoom is
// outside the range.
func (a *Aggregator) Clusters(zoom int) map[string]*Cluster {
	if zoom < a.minZoom || zoom > a.maxZoom {
		return nil
	}
	clusters := a.clusters[zoom-a.minZoom]
	out := make(map[string]*Cluster, len(clusters))
	for k, c := range clusters {
		out[k] = c
	}
	return out
}

// List returns the clusters at zoom ordered by quadkey.
func (a *Aggregator) List(zoom int) []*Cluster {
	if zoom < a.minZoom || zoom > a.maxZoom {
		return nil
	}
	list := make([]*Cluster, 0, len(a.clusters[zoom-a.minZoom]))
	for _, c := range a.clusters[zoom-a.minZoom] {
		list = append(list, c)
	}
	sortByQuadKey(list)
	return list
}

// Len is the number of clusters at zoom.
func (a *Aggregator) Len(zoom int) int {
	if zoom < a.minZoom || zoom > a.maxZoom {
		return 0
	}
	return len(a.clusters[zoom-a.minZoom])
}

// Points is the number of locations added since the last Reset.
func (a *Aggregator) Points() int {
	return a.points
}

func (a *Aggregator) Reset() {
	a.clusters = make([]map[string]*Cluster, a.maxZoom-a.minZoom+1)
	for i := range a.clusters {
		a.clusters[i] = make(map[string]*Cluster)
	}
	a.points = 0
}
