package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/czertyaka/codiri/activity"
	"github.com/czertyaka/codiri/formulas"
	"github.com/czertyaka/codiri/geo"
	"github.com/czertyaka/codiri/model"
	"github.com/czertyaka/codiri/npz"
	"github.com/czertyaka/codiri/raster"
)

// GridConfig describes the rectangular receptor grid a points.map
// config object configures: a lon/lat linspace between UL and LR at
// Resolution points per axis.
type GridConfig struct {
	UL, LR     geo.Coordinate
	Resolution int
}

// receptorGrid returns Resolution x Resolution receptor coordinates
// (row-major, north-to-south then west-to-east, matching the grid
// arrays' (i, j) indexing) plus the 1-D lon/lat axis values the
// coords.npz sidecar persists.
func (c GridConfig) receptorGrid() (receptors [][]geo.Coordinate, lons, lats []float64) {
	n := c.Resolution
	if n < 1 {
		n = 1
	}
	lons = linspace(c.UL.Lon, c.LR.Lon, n)
	lats = linspace(c.UL.Lat, c.LR.Lat, n)

	receptors = make([][]geo.Coordinate, n)
	for i, lat := range lats {
		receptors[i] = make([]geo.Coordinate, n)
		for j, lon := range lons {
			receptors[i][j] = geo.NewCoordinate(lon, lat)
		}
	}
	return receptors, lons, lats
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	return out
}

// gridQuantity names one per-class dose quantity the grid driver
// persists, paired with the DoseSample field it reads from.
type gridQuantity struct {
	name string
	pick func(*DoseSample) model.PerClass
}

var gridQuantities = []gridQuantity{
	{"e_total_10_acute", func(d *DoseSample) model.PerClass { return d.TotalAcute }},
	{"e_total_10_period", func(d *DoseSample) model.PerClass { return d.TotalPeriod }},
	{"e_inh", func(d *DoseSample) model.PerClass { return d.Inhalation }},
	{"e_surface", func(d *DoseSample) model.PerClass { return d.Surface }},
	{"e_cloud", func(d *DoseSample) model.PerClass { return d.Cloud }},
	{"e_food", func(d *DoseSample) model.PerClass { return d.Food }},
	{"concentration_integral", func(d *DoseSample) model.PerClass { return d.ConcentrationIntegral }},
	{"deposition", func(d *DoseSample) model.PerClass { return d.Deposition }},
	{"depletion", func(d *DoseSample) model.PerClass { return d.Depletion }},
}

// GridDriver evaluates an Aggregator over a GridConfig's receptor grid,
// for every per-nuclide activity raster in Rasters, and persists the
// result to OutputDir/bin.
type GridDriver struct {
	Aggregator *Aggregator
	Grid       GridConfig
	OutputDir  string
}

// Run computes the dose grid for every raster in rasters (keyed by
// nuclide) and writes it to d.OutputDir/bin.
func (d *GridDriver) Run(rasters map[string]*activity.Map) error {
	binDir := filepath.Join(d.OutputDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("aggregate.GridDriver.Run: %v", err)
	}

	receptors, lons, lats := d.Grid.receptorGrid()
	n := d.Grid.Resolution
	if n < 1 {
		n = 1
	}

	if err := writeCoords(binDir, lons, lats); err != nil {
		return err
	}

	rasterFactors := make(map[string]float64, len(rasters))

	for nuclide, actmap := range rasters {
		rasterFactors[nuclide] = actmap.RasterFactor()

		if err := raster.Save(filepath.Join(binDir, nuclide+"_actmap.tif"), actmap, geo.EPSG3857); err != nil {
			return fmt.Errorf("aggregate.GridDriver.Run: %v", err)
		}

		perClassGrids := make(map[string][][]model.PerClass, len(gridQuantities))
		for _, q := range gridQuantities {
			perClassGrids[q.name] = make([][]model.PerClass, n)
			for i := range perClassGrids[q.name] {
				perClassGrids[q.name][i] = make([]model.PerClass, n)
			}
		}
		maxAcute := make([][]float64, n)
		maxPeriod := make([][]float64, n)
		for i := range maxAcute {
			maxAcute[i] = make([]float64, n)
			maxPeriod[i] = make([]float64, n)
		}

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				ds, err := d.Aggregator.CalculateDose(actmap, receptors[i][j])
				if err != nil {
					return fmt.Errorf("aggregate.GridDriver.Run: nuclide %q: %v", nuclide, err)
				}
				for _, q := range gridQuantities {
					perClassGrids[q.name][i][j] = q.pick(ds)
				}
				maxAcute[i][j] = ds.EMaxAcute
				maxPeriod[i][j] = ds.EMaxPeriod
			}
		}

		for _, q := range gridQuantities {
			if err := writePerClassGrid(binDir, nuclide, q.name, perClassGrids[q.name], n); err != nil {
				return err
			}
		}
		if err := writeScalarGrid(binDir, nuclide+"_e_max_10_acute.npy", maxAcute); err != nil {
			return err
		}
		if err := writeScalarGrid(binDir, nuclide+"_e_max_10_period.npy", maxPeriod); err != nil {
			return err
		}
	}

	return writeRasterFactors(binDir, rasterFactors)
}

func writeCoords(binDir string, lons, lats []float64) error {
	f, err := os.Create(filepath.Join(binDir, "coords.npz"))
	if err != nil {
		return fmt.Errorf("aggregate: writing coords.npz: %v", err)
	}
	defer f.Close()
	return npz.Write(f, []npz.Array{
		{Name: "x", Shape: []int{len(lons)}, Data: lons},
		{Name: "y", Shape: []int{len(lats)}, Data: lats},
	})
}

// writePerClassGrid persists one (nuclide, quantity).npz containing a 2-D
// array per stability class.
func writePerClassGrid(binDir, nuclide, quantity string, grid [][]model.PerClass, n int) error {
	arrays := make([]npz.Array, 0, len(formulas.StabilityClasses))
	for _, aclass := range formulas.StabilityClasses {
		flat := make([]float64, 0, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				flat = append(flat, grid[i][j][aclass])
			}
		}
		arrays = append(arrays, npz.Array{Name: aclass, Shape: []int{n, n}, Data: flat})
	}
	path := filepath.Join(binDir, fmt.Sprintf("%s_%s.npz", nuclide, quantity))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aggregate: writing %s: %v", path, err)
	}
	defer f.Close()
	return npz.Write(f, arrays)
}

func writeScalarGrid(binDir, filename string, grid [][]float64) error {
	flat, shape := npz.FlattenGrid(grid)
	path := filepath.Join(binDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aggregate: writing %s: %v", path, err)
	}
	defer f.Close()
	base := filename[:len(filename)-len(".npy")]
	return npz.WriteNPY(f, npz.Array{Name: base, Shape: shape, Data: flat})
}

func writeRasterFactors(binDir string, factors map[string]float64) error {
	f, err := os.Create(filepath.Join(binDir, "raster_factors.json"))
	if err != nil {
		return fmt.Errorf("aggregate: writing raster_factors.json: %v", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(factors)
}
