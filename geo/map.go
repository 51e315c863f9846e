package geo

import "github.com/ctessum/geom"

// Affine is a 2-D affine pixel-to-world transform of the form
// x = originX + col*scaleX, y = originY + row*scaleY (scaleY is
// typically negative, since raster row 0 is the northernmost row).
type Affine struct {
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
}

// XY converts a (row, col) pixel index to world coordinates, using the
// upper-left corner of the pixel (matching rasterio's offset="ul"
// convention, which the source this system is grounded on uses
// throughout for converting contour vertices to world space).
func (a Affine) XY(row, col int) (x, y float64) {
	return a.OriginX + float64(col)*a.ScaleX, a.OriginY + float64(row)*a.ScaleY
}

// Map is an opaque handle on a source raster's binary water mask (1 =
// water, 0 = not water) plus its georeferencing.
type Map struct {
	Mask      [][]uint8 // Mask[row][col], row-major, 1 = water
	Width     int
	Height    int
	Transform Affine
	CRS       string
}

// NewMap builds a Map from a binary mask and its affine georeferencing.
func NewMap(mask [][]uint8, transform Affine, crs string) *Map {
	height := len(mask)
	width := 0
	if height > 0 {
		width = len(mask[0])
	}
	return &Map{Mask: mask, Width: width, Height: height, Transform: transform, CRS: crs}
}

// BoundingRing returns the map's 4-corner bounding rectangle in world
// coordinates, built from the upper-left corners of pixel (0,0) and the
// one past pixel (height-1, width-1) — i.e. the true outer extent of the
// raster, matching how the source this was ported from builds its map
// contour from rasterio's img.xy(0,0) / img.xy(height, width).
func (m *Map) BoundingRing() geom.Polygon {
	x0, y0 := m.Transform.XY(0, 0)
	x1, y1 := m.Transform.XY(m.Height, m.Width)
	ring := geom.LineString{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	}
	pts := make([]geom.Point, len(ring))
	copy(pts, ring)
	return geom.Polygon{pts}
}

// At reports whether the pixel at (row, col) is classified as water.
func (m *Map) At(row, col int) bool {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return false
	}
	return m.Mask[row][col] != 0
}
