package cluster

import (
	"fmt"

	"github.com/earth-genome/quadcluster"
)

// Grid clusters locations at a single zoom level using the pixel merge.
type Grid struct {
	Zoom     int
	clusters map[string]*Cluster
}

func NewGrid(zoom int) *Grid {
	return &Grid{
		Zoom:     min(max(zoom, quadcluster.MinZoom), quadcluster.PointZoom),
		clusters: make(map[string]*Cluster),
	}
}

// Add keys loc by the first Zoom digits of its quadkey.
func (g *Grid) Add(loc *Location) error {
	if len(loc.QuadKey) < g.Zoom {
		return fmt.Errorf("grid add %s: %w: %q at zoom %d", loc.Name, ErrShortQuadKey, loc.QuadKey, g.Zoom)
	}
	key := loc.QuadKey[:g.Zoom]
	if c, ok := g.clusters[key]; ok {
		if err := c.MergePixel(loc.Pixel); err != nil {
			return fmt.Errorf("grid add %s: %w", loc.Name, err)
		}
		return nil
	}
	c, err := New(key, loc)
	if err != nil {
		return fmt.Errorf("grid add %s: %w", loc.Name, err)
	}
	g.clusters[key] = c
	return nil
}

// Clusters returns the clusters ordered by quadkey.
func (g *Grid) Clusters() []*Cluster {
	list := make([]*Cluster, 0, len(g.clusters))
	for _, c := range g.clusters {
		list = append(list, c)
	}
	sortByQuadKey(list)
	return list
}

func (g *Grid) Len() int {
	return len(g.clusters)
}
