package basin

import (
	"testing"

	"github.com/czertyaka/codiri/geo"
	"github.com/ctessum/geom"
)

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}
}

func TestNewBasinLandlockedInterior(t *testing.T) {
	mapBound := rect(0, 0, 10, 10)
	contour := rect(2, 2, 4, 4)
	b, err := NewBasin(contour, mapBound, 0)
	if err != nil {
		t.Fatalf("NewBasin: %v", err)
	}
	if !b.Closed {
		t.Errorf("interior basin should be closed, got open with %d segments", len(b.Shoreline))
	}
	if len(b.Shoreline) != 1 {
		t.Errorf("want 1 shoreline segment, got %d", len(b.Shoreline))
	}
	if b.ShorelineWidth != DefaultShorelineWidth {
		t.Errorf("want default shoreline width %g, got %g", DefaultShorelineWidth, b.ShorelineWidth)
	}
}

func TestNewBasinClippedByMapEdge(t *testing.T) {
	mapBound := rect(0, 0, 10, 10)
	// Contour touches the map's left edge (x=0) along one side.
	contour := geom.Polygon{{
		{X: 0, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 8}, {X: 0, Y: 8}, {X: 0, Y: 2},
	}}
	b, err := NewBasin(contour, mapBound, 1)
	if err != nil {
		t.Fatalf("NewBasin: %v", err)
	}
	if b.Closed {
		t.Errorf("map-clipped basin should be open")
	}
	if len(b.Shoreline) == 0 {
		t.Fatalf("want at least one shoreline segment")
	}
}

func TestNewBasinEqualToMapRejected(t *testing.T) {
	mapBound := rect(0, 0, 10, 10)
	contour := rect(0, 0, 10, 10)
	_, err := NewBasin(contour, mapBound, 0)
	if err == nil {
		t.Fatalf("want error when basin equals the whole map")
	}
}

func TestNewBasinOutsideMapRejected(t *testing.T) {
	mapBound := rect(0, 0, 10, 10)
	contour := rect(8, 8, 20, 20)
	_, err := NewBasin(contour, mapBound, 0)
	if err == nil {
		t.Fatalf("want error when basin is not contained in the map")
	}
}

func TestNewBasinIsolatedEdgeTouchStaysClosed(t *testing.T) {
	mapBound := rect(0, 0, 10, 10)
	// A diamond whose vertices touch the map's edges at single points only.
	contour := geom.Polygon{{
		{X: 5, Y: 0}, {X: 10, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 5}, {X: 5, Y: 0},
	}}
	b, err := NewBasin(contour, mapBound, 0)
	if err != nil {
		t.Fatalf("NewBasin: %v", err)
	}
	if !b.Closed {
		t.Errorf("isolated-point touch should still yield a closed shoreline, got %d segments", len(b.Shoreline))
	}
}

func TestBasinContains(t *testing.T) {
	mapBound := rect(0, 0, 10, 10)
	contour := rect(2, 2, 8, 8)
	b, err := NewBasin(contour, mapBound, 0)
	if err != nil {
		t.Fatalf("NewBasin: %v", err)
	}
	inside := geo.Coordinate{Lon: 5, Lat: 5}
	outside := geo.Coordinate{Lon: 1, Lat: 1}
	if !b.Contains(inside) {
		t.Errorf("want (5,5) inside basin")
	}
	if b.Contains(outside) {
		t.Errorf("want (1,1) outside basin")
	}
}
