package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/earth-genome/quadcluster"
	"github.com/earth-genome/quadcluster/cluster"
	"github.com/earth-genome/quadcluster/index"
	"github.com/paulmach/orb"
)

var (
	in       = flag.String("in", "", "GeoJSON FeatureCollection of Point features, zstd compressed when it ends in .zst.")
	generate = flag.Int("generate", 10000, "Number of random locations to generate inside the viewport when -in is not set.")
	swFlag   = flag.String("sw", "51.508742,-3.240967", "South-west corner of the viewport as lat,lng.")
	neFlag   = flag.String("ne", "54.316523,-0.736084", "North-east corner of the viewport as lat,lng.")
	zoom     = flag.Int("zoom", 8, "Zoom level to report clusters at.")
	minZoom  = flag.Int("min-zoom", quadcluster.MinClusterZoom, "Lowest zoom level to aggregate in geodesic mode.")
	maxZoom  = flag.Int("max-zoom", quadcluster.MaxClusterZoom, "Highest zoom level to aggregate in geodesic mode.")
	mode     = flag.String("mode", "geodesic", "Clustering mode: geodesic (all zooms, exact centers) or grid (one zoom, pixel centers).")
	out      = flag.String("out", "", "Output file, stdout when empty.")
	zstdOut  = flag.Bool("zstd", false, "Compress the output with zstd.")
	seed     = flag.Int64("seed", 1, "Seed for generated locations.")
)

type config struct {
	sw, ne           quadcluster.LatLng
	zoom             int
	minZoom, maxZoom int
	mode             string
}

func main() {
	flag.Parse()

	sw, err := parseLatLng(*swFlag)
	if err != nil {
		log.Fatalf("[quadcluster] -sw: %v", err)
	}
	ne, err := parseLatLng(*neFlag)
	if err != nil {
		log.Fatalf("[quadcluster] -ne: %v", err)
	}
	cfg := config{sw: sw, ne: ne, zoom: *zoom, minZoom: *minZoom, maxZoom: *maxZoom, mode: *mode}

	var locs []*cluster.Location
	if *in != "" {
		locs, err = readLocations(*in)
		if err != nil {
			log.Fatalf("[quadcluster] reading %s: %v", *in, err)
		}
	} else {
		locs = cluster.RandomLocations(rand.New(rand.NewSource(*seed)), sw, ne, *generate)
	}
	log.Printf("[quadcluster] %d locations, mode %s, zoom %d", len(locs), cfg.mode, cfg.zoom)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	clusters, err := run(ctx, cfg, locs)
	if err != nil {
		log.Fatalf("[quadcluster] clustering: %v", err)
	}
	log.Printf("[quadcluster] %d clusters in %v", len(clusters), time.Since(start))

	if *out == "" {
		err = writeClusters(os.Stdout, clusters, *zstdOut)
	} else {
		err = writeFile(*out, clusters, *zstdOut)
	}
	if err != nil {
		log.Fatalf("[quadcluster] writing clusters: %v", err)
	}
}

// run streams locs through the clustering mode of cfg and returns the
// clusters of the viewport at cfg.zoom.
func run(ctx context.Context, cfg config, locs []*cluster.Location) ([]*cluster.Cluster, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src := make(chan *cluster.Location, 1024)
	go func() {
		defer close(src)
		for _, l := range locs {
			select {
			case src <- l:
			case <-ctx.Done():
				return
			}
		}
	}()

	switch cfg.mode {
	case "grid":
		q := cluster.Query{SW: cfg.sw, NE: cfg.ne, Zoom: cfg.zoom}
		return q.Run(ctx, src)

	case "geodesic":
		a := cluster.NewAggregator(cfg.minZoom, cfg.maxZoom)
		if cfg.zoom < a.MinZoom() || cfg.zoom > a.MaxZoom() {
			return nil, fmt.Errorf("zoom %d outside aggregated range [%d, %d]", cfg.zoom, a.MinZoom(), a.MaxZoom())
		}
		if err := a.AddAll(ctx, src); err != nil {
			return nil, err
		}
		idx, err := index.Build(a.List(cfg.zoom))
		if err != nil {
			return nil, err
		}
		return idx.InBound(orb.Bound{Min: cfg.sw.Point(), Max: cfg.ne.Point()}), nil

	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.mode)
	}
}
