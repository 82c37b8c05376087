// Package index keeps weighted positions, such as locations or clusters, in
// a quadtree for viewport and nearest neighbour lookups.
package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/earth-genome/quadcluster"
	"github.com/earth-genome/quadcluster/geodesic"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

var ErrOutsideBound = errors.New("entry outside index bound")

// Entry is anything with a position and a weight. A location weighs 1, a
// cluster weighs its point count.
type Entry interface {
	Position() quadcluster.LatLng
	Weight() int
}

type item[E Entry] struct {
	entry E
}

func (i item[E]) Point() orb.Point {
	return i.entry.Position().Point()
}

// Index is safe for concurrent use.
type Index[E Entry] struct {
	mu     sync.RWMutex
	tree   *quadtree.Quadtree
	len    int
	weight int
}

// New returns an empty index accepting positions inside bound.
func New[E Entry](bound orb.Bound) *Index[E] {
	return &Index[E]{tree: quadtree.New(bound)}
}

// World returns an empty index covering every longitude and latitude.
func World[E Entry]() *Index[E] {
	return New[E](orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}})
}

// Build indexes entries in a world index.
func Build[E Entry](entries []E) (*Index[E], error) {
	idx := World[E]()
	for _, e := range entries {
		if err := idx.Insert(e); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *Index[E]) Insert(e E) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.tree.Add(item[E]{entry: e}); err != nil {
		if errors.Is(err, quadtree.ErrPointOutsideOfBounds) {
			return fmt.Errorf("insert %v: %w", e.Position(), ErrOutsideBound)
		}
		return fmt.Errorf("insert %v: %w", e.Position(), err)
	}
	idx.len++
	idx.weight += e.Weight()
	return nil
}

// Remove deletes e, compared by identity, and reports whether it was found.
func (idx *Index[E]) Remove(e E) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := idx.tree.Remove(item[E]{entry: e}, func(p orb.Pointer) bool {
		return any(p.(item[E]).entry) == any(e)
	})
	if removed {
		idx.len--
		idx.weight -= e.Weight()
	}
	return removed
}

// InBound returns the entries inside b, edges included.
func (idx *Index[E]) InBound(b orb.Bound) []E {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return unwrap[E](idx.tree.InBound(nil, b))
}

// Nearest returns up to k entries ordered by planar distance to ll.
func (idx *Index[E]) Nearest(ll quadcluster.LatLng, k int) []E {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return unwrap[E](idx.tree.KNearest(nil, ll.Point(), k))
}

// Within returns up to limit entries within radius meters of ll, closest
// first by ellipsoidal distance. A limit of 0 or less returns them all.
func (idx *Index[E]) Within(ll quadcluster.LatLng, radius float64, limit int) []E {
	// the bound is spherical, pad it to cover the ellipsoidal radius
	b := geo.NewBoundAroundPoint(ll.Point(), radius*1.01)

	type hit struct {
		entry    E
		distance float64
	}
	var hits []hit
	for _, e := range idx.InBound(b) {
		if d := geodesic.Distance(ll, e.Position()); d <= radius {
			hits = append(hits, hit{entry: e, distance: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	entries := make([]E, len(hits))
	for i, h := range hits {
		entries[i] = h.entry
	}
	return entries
}

// Len is the number of entries.
func (idx *Index[E]) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.len
}

// Weight is the sum of the entry weights.
func (idx *Index[E]) Weight() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.weight
}

func (idx *Index[E]) Bound() orb.Bound {
	return idx.tree.Bound()
}

func unwrap[E Entry](points []orb.Pointer) []E {
	entries := make([]E, 0, len(points))
	for _, p := range points {
		entries = append(entries, p.(item[E]).entry)
	}
	return entries
}
