package activity

import (
	"testing"

	"github.com/czertyaka/codiri/basin"
	"github.com/czertyaka/codiri/geo"
	"github.com/ctessum/geom"
)

func TestSoilActivitySurface1cm(t *testing.T) {
	s := NewSoilActivity(1000, 1.4) // Bq/kg, default density
	// volumetric = 1000/1000*1.4 = 1.4 Bq/cm^3; surface = 1.4*10000 = 14000 Bq
	if got, want := s.Surface1cm(), 14000.0; got != want {
		t.Errorf("Surface1cm() = %g, want %g", got, want)
	}
}

func TestNewMeasurementReprojects(t *testing.T) {
	m, err := NewMeasurement(NewSoilActivity(1, 1.4), geo.NewCoordinate(10, 10))
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}
	if m.Coo.CRS != geo.EPSG3857 {
		t.Errorf("want measurement coordinate reprojected to EPSG:3857, got %q", m.Coo.CRS)
	}
}

func TestNewMapShape(t *testing.T) {
	ul := geo.Coordinate{Lon: 10, Lat: 20, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 20, Lat: 10, CRS: geo.EPSG3857}
	m, err := NewMap(ul, lr, 1, "Cs137")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if m.Width() != 10 || m.Height() != 10 {
		t.Errorf("want 10x10 raster, got %dx%d", m.Width(), m.Height())
	}
	if m.RasterFactor() != 0 {
		t.Errorf("want raster factor 0 (unset) before any basin is painted")
	}
}

func TestNewMapExceedingStep(t *testing.T) {
	ul := geo.Coordinate{Lon: 10, Lat: 20, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 25, Lat: 5, CRS: geo.EPSG3857}
	_, err := NewMap(ul, lr, 100, "Cs137")
	if err == nil {
		t.Fatalf("want ExceedingStep error when the cell size exceeds the extent")
	}
}

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}
}

func closedBasin(body geom.Polygon, shorelineWidth float64) *basin.Basin {
	ring := make(geom.LineString, len(body[0]))
	copy(ring, body[0])
	return &basin.Basin{Body: body, Shoreline: []geom.LineString{ring}, ShorelineWidth: shorelineWidth, Closed: true}
}

func TestAddBasinNoMeasurementsIsNoop(t *testing.T) {
	ul := geo.Coordinate{Lon: 0, Lat: 4, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 4, Lat: 0, CRS: geo.EPSG3857}
	m, err := NewMap(ul, lr, 1, "Cs137")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	b := closedBasin(rect(1, 1, 2, 2), 1)
	if err := m.AddBasin(b, nil); err != nil {
		t.Fatalf("AddBasin: %v", err)
	}
	if m.RasterFactor() != 0 {
		t.Errorf("want raster factor still unset after a no-measurement add")
	}
}

func TestAddBasinZeroActivityIsNoop(t *testing.T) {
	ul := geo.Coordinate{Lon: 0, Lat: 4, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 4, Lat: 0, CRS: geo.EPSG3857}
	m, err := NewMap(ul, lr, 1, "Cs137")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	b := closedBasin(rect(1, 1, 2, 2), 1)
	meas, err := NewMeasurement(NewSoilActivity(0, 1.4), geo.Coordinate{Lon: 0.2, Lat: 0.2, CRS: geo.EPSG3857})
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}
	if err := m.AddBasin(b, []Measurement{meas}); err != nil {
		t.Fatalf("AddBasin: %v", err)
	}
	if m.RasterFactor() != 0 {
		t.Errorf("want raster factor still unset when average surface activity is 0")
	}
}

func TestAddBasinRejectsMeasurementInsideBody(t *testing.T) {
	ul := geo.Coordinate{Lon: 0, Lat: 4, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 4, Lat: 0, CRS: geo.EPSG3857}
	m, err := NewMap(ul, lr, 1, "Cs137")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	b := closedBasin(rect(1, 1, 3, 3), 1)
	meas, err := NewMeasurement(NewSoilActivity(1000, 1.4), geo.Coordinate{Lon: 2, Lat: 2, CRS: geo.EPSG3857})
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}
	if err := m.AddBasin(b, []Measurement{meas}); err == nil {
		t.Fatalf("want InvalidMeasurementLocation error for a measurement strictly inside the basin body")
	}
}

func TestAddBasinRejectsTooFarMeasurement(t *testing.T) {
	ul := geo.Coordinate{Lon: 0, Lat: 4, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 4, Lat: 0, CRS: geo.EPSG3857}
	m, err := NewMap(ul, lr, 1, "Cs137")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	m.MeasurementProximity = 0.1
	b := closedBasin(rect(1, 1, 2, 2), 1)
	meas, err := NewMeasurement(NewSoilActivity(1000, 1.4), geo.Coordinate{Lon: 3.9, Lat: 3.9, CRS: geo.EPSG3857})
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}
	if err := m.AddBasin(b, []Measurement{meas}); err == nil {
		t.Fatalf("want ExceedingMeasurementProximity error")
	}
}

func TestAddBasinPaintsShorelineBuffer(t *testing.T) {
	ul := geo.Coordinate{Lon: 0, Lat: 4, CRS: geo.EPSG3857}
	lr := geo.Coordinate{Lon: 4, Lat: 0, CRS: geo.EPSG3857}
	m, err := NewMap(ul, lr, 1, "Cs137")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	m.MeasurementProximity = 2
	b := closedBasin(rect(1, 1, 3, 3), 1)
	meas, err := NewMeasurement(NewSoilActivity(1000, 1.4), geo.Coordinate{Lon: 0.1, Lat: 0.1, CRS: geo.EPSG3857})
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}
	if err := m.AddBasin(b, []Measurement{meas}); err != nil {
		t.Fatalf("AddBasin: %v", err)
	}
	if m.RasterFactor() == 0 {
		t.Fatalf("want raster factor to be set after a non-zero contribution")
	}
	var total float64
	for row := 0; row < m.Height(); row++ {
		for col := 0; col < m.Width(); col++ {
			total += m.At(row, col)
		}
	}
	if total <= 0 {
		t.Errorf("want some cells near the shoreline to hold positive activity, got total %g", total)
	}
}
