package quadcluster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuadKeyDigit = errors.New("invalid quadkey digit")
	ErrQuadKeyTooLong      = errors.New("quadkey longer than max zoom")
)

// QuadKey encodes a tile coordinate as a base-4 string whose length is the
// zoom level. Every prefix of the key is the key of an ancestor tile.
func QuadKey(x, y int64, zoom int) string {
	var b strings.Builder
	b.Grow(zoom)
	for i := zoom; i > 0; i-- {
		digit := byte('0')
		mask := int64(1) << uint(i-1)
		if x&mask != 0 {
			digit++
		}
		if y&mask != 0 {
			digit += 2
		}
		b.WriteByte(digit)
	}
	return b.String()
}

// TileFromQuadKey decodes a quadkey into its tile coordinate and zoom level.
func TileFromQuadKey(key string) (x, y int64, zoom int, err error) {
	zoom = len(key)
	if zoom > MaxZoom {
		return 0, 0, 0, fmt.Errorf("%w: %q has %d digits", ErrQuadKeyTooLong, key, zoom)
	}
	for i := zoom; i > 0; i-- {
		mask := int64(1) << uint(i-1)
		switch key[zoom-i] {
		case '0':
		case '1':
			x |= mask
		case '2':
			y |= mask
		case '3':
			x |= mask
			y |= mask
		default:
			return 0, 0, 0, fmt.Errorf("%w %q at %d in %q", ErrInvalidQuadKeyDigit, key[zoom-i], zoom-i, key)
		}
	}
	return x, y, zoom, nil
}

// QuadKeyOf returns the key of the tile containing ll at the given level.
func QuadKeyOf(ll LatLng, zl ZoomLevel) string {
	t := TileOf(Project(ll, zl))
	return QuadKey(t.X, t.Y, zl.Zoom)
}
