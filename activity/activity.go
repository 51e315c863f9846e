// Package activity builds per-nuclide contamination rasters from basin
// shorelines and in-situ soil measurements, matching the buffer-painting
// algorithm in the source this was ported from: each shoreline segment
// is thickened into a buffer polygon, and the polygon's intersection
// with every raster cell distributes the measured surface activity.
package activity

import (
	"math"

	"github.com/czertyaka/codiri/basin"
	"github.com/czertyaka/codiri/codirierr"
	"github.com/czertyaka/codiri/geo"
	"github.com/ctessum/geom"
)

// maxRasterCode is the largest value a uint16 cell can hold.
const maxRasterCode = float64(^uint16(0))

// defaultSoilDensity is the soil density (g/cm^3) used to derive surface
// activity from a specific activity measurement when none is given.
const defaultSoilDensity = 1.4

// SoilActivity derives the surface activity of a 1cm soil slice from a
// specific (mass) activity measurement.
type SoilActivity struct {
	Specific    float64 // Bq/kg
	SoilDensity float64 // g/cm^3

	surface1cm float64
}

// NewSoilActivity builds a SoilActivity, computing surface_1cm from the
// given specific activity and soil density (defaultSoilDensity if <= 0).
func NewSoilActivity(specific, soilDensity float64) SoilActivity {
	if soilDensity <= 0 {
		soilDensity = defaultSoilDensity
	}
	volumetric := specific / 1000 * soilDensity // Bq/cm^3
	const sliceVolumeCM3 = 100 * 100 * 1         // 1m x 1m x 1cm, in cm^3
	return SoilActivity{Specific: specific, SoilDensity: soilDensity, surface1cm: volumetric * sliceVolumeCM3}
}

// Surface1cm is the activity, in Bq, of a 1 m^2, 1 cm deep soil slice.
func (s SoilActivity) Surface1cm() float64 { return s.surface1cm }

// Measurement is an in-situ soil activity reading anchored to a
// coordinate.
type Measurement struct {
	Activity SoilActivity
	Coo      geo.Coordinate
}

// NewMeasurement reprojects coo to EPSG:3857 and pairs it with activity.
func NewMeasurement(activity SoilActivity, coo geo.Coordinate) (Measurement, error) {
	if err := coo.Transform(geo.EPSG3857); err != nil {
		return Measurement{}, err
	}
	return Measurement{Activity: activity, Coo: coo}, nil
}

// Map is a per-nuclide contamination raster. Cell values are uint16
// codes; the physical activity of a cell is code / RasterFactor.
type Map struct {
	Nuclide              string
	Step                 float64
	MeasurementProximity float64 // m, default 10
	ContaminationDepth   float64 // cm, default 10

	data          [][]uint16
	width, height int
	transform     geo.Affine
	rasterFactor  float64 // 0 means "not yet set" (the Python None state)
}

// NewMap constructs a raster covering [ul, lr) at the given isotropic
// cell size (metres), reprojecting both corners to EPSG:3857 first.
func NewMap(ul, lr geo.Coordinate, step float64, nuclide string) (*Map, error) {
	if err := ul.Transform(geo.EPSG3857); err != nil {
		return nil, err
	}
	if err := lr.Transform(geo.EPSG3857); err != nil {
		return nil, err
	}

	xRes := int(math.Floor(math.Abs((lr.Lon - ul.Lon) / step)))
	yRes := int(math.Floor(math.Abs((ul.Lat - lr.Lat) / step)))
	if xRes == 0 || yRes == 0 {
		return nil, codirierr.ExceedingStep(xRes, yRes)
	}

	data := make([][]uint16, yRes)
	for i := range data {
		data[i] = make([]uint16, xRes)
	}

	return &Map{
		Nuclide:              nuclide,
		Step:                 step,
		MeasurementProximity: 10,
		ContaminationDepth:   10,
		data:                 data,
		width:                xRes,
		height:               yRes,
		transform:            geo.Affine{OriginX: ul.Lon, OriginY: ul.Lat, ScaleX: step, ScaleY: -step},
	}, nil
}

// Width and Height report the raster's shape in cells.
func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }

// RasterFactor reports the current code-to-activity scale factor, or 0
// if no basin has been painted yet.
func (m *Map) RasterFactor() float64 { return m.rasterFactor }

// At returns the physical activity (Bq) of the cell at (row, col).
func (m *Map) At(row, col int) float64 {
	if m.rasterFactor == 0 {
		return 0
	}
	return float64(m.data[row][col]) / m.rasterFactor
}

// Code returns the raw uint16 raster code stored at (row, col), the
// form package raster persists to GeoTIFF (code, not physical activity,
// so reloading never loses precision to the current RasterFactor).
func (m *Map) Code(row, col int) uint16 { return m.data[row][col] }

// Transform returns the raster's pixel-to-world affine transform.
func (m *Map) Transform() geo.Affine { return m.transform }

// AddBasin paints the surface activity attributable to basin's
// shoreline, averaged over measurements, onto the raster.
func (m *Map) AddBasin(b *basin.Basin, measurements []Measurement) error {
	if len(measurements) == 0 {
		return nil
	}
	if err := m.checkMeasurements(b, measurements); err != nil {
		return err
	}

	s := m.averageSurfaceActivity(measurements)
	if s == 0 {
		return nil
	}

	for _, segment := range b.Shoreline {
		buf := bufferLineString(segment, b.ShorelineWidth/2)
		for row := 0; row < m.height; row++ {
			for col := 0; col < m.width; col++ {
				x, y := m.cellCenter(row, col)
				cell := m.cellPolygon(x, y)
				area := buf.Intersection(cell).Area()
				if area == 0 {
					continue
				}
				a := s * area
				m.addActivity(row, col, a)
			}
		}
	}
	return nil
}

// cellCenter returns the world coordinates of the centre of cell
// (row, col); geo.Affine.XY gives the cell's upper-left corner.
func (m *Map) cellCenter(row, col int) (x, y float64) {
	x, y = m.transform.XY(row, col)
	return x + m.transform.ScaleX/2, y + m.transform.ScaleY/2
}

func (m *Map) cellPolygon(x, y float64) geom.Polygon {
	half := m.Step / 2
	return geom.Polygon{{
		{X: x - half, Y: y - half},
		{X: x - half, Y: y + half},
		{X: x + half, Y: y + half},
		{X: x + half, Y: y - half},
		{X: x - half, Y: y - half},
	}}
}

// addActivity applies the raster-factor overflow/rescale rule for a
// single cell's contribution, then stores the resulting code.
func (m *Map) addActivity(row, col int, a float64) {
	factor := m.rasterFactor
	if factor == 0 || factor*a > maxRasterCode {
		factor = maxRasterCode / (2 * a)
	}
	if m.rasterFactor == 0 {
		m.rasterFactor = factor
	} else if factor != m.rasterFactor {
		scale := factor / m.rasterFactor
		for r := range m.data {
			for c := range m.data[r] {
				m.data[r][c] = uint16(float64(m.data[r][c]) * scale)
			}
		}
		m.rasterFactor = factor
	}
	code := float64(m.data[row][col]) + factor*a
	if code > maxRasterCode {
		code = maxRasterCode
	}
	m.data[row][col] = uint16(code)
}

func (m *Map) averageSurfaceActivity(measurements []Measurement) float64 {
	var total float64
	for _, meas := range measurements {
		total += meas.Activity.Surface1cm()
	}
	total *= m.ContaminationDepth
	return total / float64(len(measurements))
}

func (m *Map) checkMeasurements(b *basin.Basin, measurements []Measurement) error {
	for _, meas := range measurements {
		if b.Contains(meas.Coo) {
			return codirierr.InvalidMeasurementLocation(meas.Coo.Lon, meas.Coo.Lat)
		}
		if !m.proximateToShoreline(b, meas) {
			return codirierr.ExceedingMeasurementProximity(meas.Coo.Lon, meas.Coo.Lat, m.MeasurementProximity)
		}
	}
	return nil
}

func (m *Map) proximateToShoreline(b *basin.Basin, meas Measurement) bool {
	p := geom.Point{X: meas.Coo.Lon, Y: meas.Coo.Lat}
	for _, segment := range b.Shoreline {
		if distanceToLineString(p, segment) <= m.MeasurementProximity {
			return true
		}
	}
	return false
}
