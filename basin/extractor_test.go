package basin

import (
	"testing"

	"github.com/czertyaka/codiri/geo"
)

func TestExtractorFindsInteriorBasin(t *testing.T) {
	// A 4x4 binary mask with a single interior 2x2 water block and a
	// pixel size of 2 world units.
	mask := [][]uint8{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
	}
	transform := geo.Affine{OriginX: 0, OriginY: 0, ScaleX: 2, ScaleY: 2}
	m := geo.NewMap(mask, transform, geo.EPSG3857)

	e := NewExtractor(m, 0)
	basins := e.Basins()
	if len(basins) != 1 {
		t.Fatalf("want 1 basin, got %d", len(basins))
	}
	b := basins[0]
	if !b.Closed {
		t.Errorf("want a closed shoreline for an interior water block")
	}
	if len(b.Shoreline) != 1 {
		t.Fatalf("want 1 shoreline segment, got %d", len(b.Shoreline))
	}
	ring := b.Shoreline[0]
	wantCorners := map[[2]float64]bool{
		{2, 2}: false, {4, 2}: false, {4, 4}: false, {2, 4}: false,
	}
	for _, p := range ring {
		wantCorners[[2]float64{p.X, p.Y}] = true
	}
	for c, seen := range wantCorners {
		if !seen {
			t.Errorf("expected shoreline to pass through world corner %v", c)
		}
	}

	inside := geo.Coordinate{Lon: 3, Lat: 3, CRS: geo.EPSG3857}
	if e.Find(inside) == nil {
		t.Errorf("want Find to locate the basin containing (3,3)")
	}
	outside := geo.Coordinate{Lon: 0.5, Lat: 0.5, CRS: geo.EPSG3857}
	if e.Find(outside) != nil {
		t.Errorf("want Find to return nil for a point outside every basin")
	}
}

func TestExtractorSkipsTooSmallContour(t *testing.T) {
	mask := [][]uint8{
		{0, 0},
		{0, 1},
	}
	transform := geo.Affine{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: 1}
	m := geo.NewMap(mask, transform, geo.EPSG3857)
	e := NewExtractor(m, 0)
	if len(e.Basins()) != 0 {
		t.Errorf("want a lone water pixel to be discarded as a degenerate contour, got %d basins", len(e.Basins()))
	}
}

func TestExtractorHandlesMultipleComponents(t *testing.T) {
	mask := [][]uint8{
		{0, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 0, 0, 0, 0},
		{0, 1, 1, 0, 0, 1, 1},
		{0, 0, 0, 0, 0, 1, 1},
		{0, 0, 0, 0, 0, 0, 0},
	}
	transform := geo.Affine{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: 1}
	m := geo.NewMap(mask, transform, geo.EPSG3857)
	e := NewExtractor(m, 0)
	if len(e.Basins()) != 2 {
		t.Errorf("want 2 basins for 2 disjoint water blocks, got %d", len(e.Basins()))
	}
}
