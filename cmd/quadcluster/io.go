package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/earth-genome/quadcluster"
	"github.com/earth-genome/quadcluster/cluster"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func parseLatLng(s string) (quadcluster.LatLng, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return quadcluster.LatLng{}, fmt.Errorf("%q is not lat,lng", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return quadcluster.LatLng{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return quadcluster.LatLng{}, fmt.Errorf("longitude %q: %w", lng, err)
	}
	return quadcluster.LatLng{Lat: la, Lng: ln}, nil
}

func readLocations(path string) ([]*cluster.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeLocations(data)
}

// decodeLocations reads Point features. The name comes from the "name"
// property, then the feature id, and is a random UUID otherwise.
func decodeLocations(data []byte) ([]*cluster.Location, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	locs := make([]*cluster.Location, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry %T is not a Point", i, f.Geometry)
		}
		name := f.Properties.MustString("name", "")
		if name == "" && f.ID != nil {
			name = fmt.Sprint(f.ID)
		}
		if name == "" {
			name = uuid.NewString()
		}
		locs = append(locs, cluster.NewLocation(name, quadcluster.FromOrb(p)))
	}
	return locs, nil
}

func writeClusters(w io.Writer, clusters []*cluster.Cluster, compress bool) error {
	data, err := cluster.FeatureCollection(clusters).MarshalJSON()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if !compress {
		if _, err := bw.Write(data); err != nil {
			return err
		}
		return bw.Flush()
	}

	enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

// writeFile creates path and writes the clusters to it. The file is closed
// before returning, and a failed close is reported when the write succeeded.
func writeFile(path string, clusters []*cluster.Cluster, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeClusters(f, clusters, compress); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
