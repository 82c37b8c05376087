package quadcluster

const (
	MinZoom = 0
	MaxZoom = 23

	// PointZoom is the resolution locations are indexed at.
	PointZoom = 19

	MinClusterZoom = 3
	MaxClusterZoom = 14
)

// ZoomLevel is one step of the tile pyramid. The world is MapSize pixels
// wide and high, and MaxTiles is the bottom-right tile reachable by
// projecting a valid position.
type ZoomLevel struct {
	Zoom     int
	MapSize  int64
	MaxTiles Point
}

var zoomLevels [MaxZoom + 1]ZoomLevel

func init() {
	for z := range zoomLevels {
		zl := ZoomLevel{Zoom: z, MapSize: int64(TileSize) << uint(z)}
		zl.MaxTiles = TileOf(Project(LatLng{Lat: MinLatitude, Lng: MaxLongitude}, zl))
		zoomLevels[z] = zl
	}
}

// Zoom returns the level for z, clamped into [MinZoom, MaxZoom].
func Zoom(z int) ZoomLevel {
	return zoomLevels[min(max(z, MinZoom), MaxZoom)]
}

// Levels returns every zoom level of the pyramid in ascending order.
func Levels() []ZoomLevel {
	levels := make([]ZoomLevel, len(zoomLevels))
	copy(levels, zoomLevels[:])
	return levels
}

// Columns is the width of the tile grid. It can exceed MaxTiles.X+1 at high
// zooms, where the longitude clamp keeps projected points off the last column.
func (zl ZoomLevel) Columns() int64 {
	return zl.MapSize / TileSize
}

// Rows is the height of the tile grid.
func (zl ZoomLevel) Rows() int64 {
	return zl.MapSize / TileSize
}
