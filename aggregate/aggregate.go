// Package aggregate drives a dose calculation over an activity raster's
// non-zero cells for a single receptor. It owns no global state: the
// Reference store and the per-nuclide activity rasters it reads are
// shared, read-only inputs; the Input template it clones per cell is
// the only thing that varies.
package aggregate

import (
	"fmt"
	"log"

	"github.com/czertyaka/codiri/activity"
	"github.com/czertyaka/codiri/geo"
	"github.com/czertyaka/codiri/model"
)

// soilDensityKgM3 converts Input.SoilDensity (g/cm^3, matching the
// convention activity.SoilActivity's measurements are expressed in) to
// kg/m^3 so it can divide a Bq/m^3 concentration into Bq/kg.
func soilDensityKgM3(gPerCM3 float64) float64 { return gPerCM3 * 1000 }

// DoseSample is the per-receptor result of running a calculation over
// every non-zero cell of one nuclide's activity raster: per-class dose
// tables summed over the footprint, plus the two scalar maxima the
// model orchestrator itself already maximizes over stability classes.
type DoseSample struct {
	Nuclide string

	Cloud                 model.PerClass
	Inhalation            model.PerClass
	Surface               model.PerClass
	Food                  model.PerClass
	ConcentrationIntegral model.PerClass
	Deposition            model.PerClass
	Depletion             model.PerClass
	TotalAcute            model.PerClass
	TotalPeriod           model.PerClass

	EMaxAcute  float64
	EMaxPeriod float64

	// NonZeroCells is the number of raster cells CalculateDose actually
	// summed over; zero means the raster carried no activity at all for
	// this receptor and every field above is the zero value.
	NonZeroCells int
}

func newDoseSample(nuclide string) *DoseSample {
	return &DoseSample{
		Nuclide:               nuclide,
		Cloud:                 make(model.PerClass),
		Inhalation:            make(model.PerClass),
		Surface:               make(model.PerClass),
		Food:                  make(model.PerClass),
		ConcentrationIntegral: make(model.PerClass),
		Deposition:            make(model.PerClass),
		Depletion:             make(model.PerClass),
		TotalAcute:            make(model.PerClass),
		TotalPeriod:           make(model.PerClass),
	}
}

func addPerClass(dst model.PerClass, src model.PerClass) {
	for k, v := range src {
		dst[k] += v
	}
}

// Aggregator runs per-cell dose calculations against one Model, cloning
// a shared Input template for every cell so no two calculations ever
// share mutable state.
type Aggregator struct {
	model    *model.Model
	template *model.Input
}

// NewAggregator builds an Aggregator. template must already be
// Initialized() except for Distance and SpecificActivities, which
// CalculateDose overwrites per cell.
func NewAggregator(m *model.Model, template *model.Input) *Aggregator {
	return &Aggregator{model: m, template: template}
}

// CalculateDose runs the per-receptor dose algorithm against a
// single nuclide's activity raster: every non-zero cell contributes a
// distance-dependent dose sample that is summed into the result, except
// Depletion, which is averaged over the non-zero cells at the end.
func (a *Aggregator) CalculateDose(actmap *activity.Map, coo geo.Coordinate) (*DoseSample, error) {
	ds := newDoseSample(actmap.Nuclide)
	squareArea := a.template.SquareSide() * a.template.SquareSide()
	contaminatedVolume := (actmap.ContaminationDepth / 100) * squareArea // m^3
	density := soilDensityKgM3(a.template.SoilDensity())

	for row := 0; row < actmap.Height(); row++ {
		for col := 0; col < actmap.Width(); col++ {
			cellActivity := actmap.At(row, col)
			if cellActivity == 0 {
				continue
			}

			x, y := actmap.Transform().XY(row, col)
			cellCoo := geo.Coordinate{Lon: x, Lat: y, CRS: geo.EPSG3857}
			dist, err := geo.Distance(coo, cellCoo)
			if err != nil {
				return nil, fmt.Errorf("aggregate.CalculateDose: %v", err)
			}

			specificActivity := cellActivity / (contaminatedVolume * density)

			inp := a.template.Clone()
			if err := inp.SetDistance(dist); err != nil {
				return nil, fmt.Errorf("aggregate.CalculateDose: %v", err)
			}
			inp.ClearSpecificActivities()
			if err := inp.AddSpecificActivity(actmap.Nuclide, specificActivity); err != nil {
				return nil, fmt.Errorf("aggregate.CalculateDose: %v", err)
			}

			res, ok, err := a.model.Calculate(inp)
			if err != nil {
				return nil, err
			}
			if !ok {
				log.Printf("aggregate: skipping cell (%d,%d) for nuclide %q: distance %g m failed a registered constraint",
					row, col, actmap.Nuclide, dist)
				continue
			}

			addPerClass(ds.Cloud, res.ECloud[actmap.Nuclide])
			addPerClass(ds.Inhalation, res.EInhalation[actmap.Nuclide])
			addPerClass(ds.Surface, res.ESurface[actmap.Nuclide])
			addPerClass(ds.Food, res.EFood[actmap.Nuclide])
			addPerClass(ds.ConcentrationIntegral, res.ConcentrationIntegral[actmap.Nuclide])
			addPerClass(ds.Deposition, res.Deposition[actmap.Nuclide])
			addPerClass(ds.Depletion, res.Depletion[actmap.Nuclide])
			addPerClass(ds.TotalAcute, res.ETotalAcute[actmap.Nuclide])
			addPerClass(ds.TotalPeriod, res.ETotalPeriod[actmap.Nuclide])
			ds.EMaxAcute += res.EMax10Acute
			ds.EMaxPeriod += res.EMax10Period
			ds.NonZeroCells++
		}
	}

	if ds.NonZeroCells > 0 {
		n := float64(ds.NonZeroCells)
		for k := range ds.Depletion {
			ds.Depletion[k] /= n
		}
	}

	return ds, nil
}
