package codiriutil

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/czertyaka/codiri/activity"
	"github.com/czertyaka/codiri/aggregate"
	"github.com/czertyaka/codiri/basin"
	"github.com/czertyaka/codiri/geo"
	"github.com/czertyaka/codiri/model"
	"github.com/czertyaka/codiri/raster"
	"github.com/czertyaka/codiri/reference"

	"github.com/spf13/cobra"
)

// contourSimplifyTolerance is the Douglas-Peucker-equivalent tolerance,
// in the map's metric units, basin contour extraction simplifies with.
const contourSimplifyTolerance = 1.0

// Run loads an input configuration, builds the activity rasters it
// describes, computes receptor doses, and writes the resulting report
// directory, mirroring inmaputil.Run's overall
// read-input / compute / write-output shape and logging convention.
func Run(cmd *cobra.Command, inputPath, outputDir string) error {
	startTime := time.Now()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("codiriutil.Run: %v", err)
	}

	logfile, err := os.Create(filepath.Join(outputDir, "codiri.log"))
	if err != nil {
		return fmt.Errorf("codiriutil.Run: creating log file: %v", err)
	}
	defer logfile.Close()
	mw := io.MultiWriter(cmd.OutOrStdout(), logfile)
	log.SetOutput(mw)

	cfg, err := loadInputConfig(inputPath)
	if err != nil {
		return err
	}
	if err := copyInputFile(inputPath, filepath.Join(outputDir, "input.json")); err != nil {
		return err
	}

	log.Println("Loading classified raster...")
	geoMap, err := raster.LoadClassifiedMap(cfg.GeoTIFFFilename)
	if err != nil {
		return fmt.Errorf("codiriutil.Run: %v", err)
	}

	log.Println("Extracting basins...")
	extractor := basin.NewExtractor(geoMap, contourSimplifyTolerance)

	log.Println("Loading reference store...")
	ref, err := reference.NewSQLReference(cfg.DatabaseName)
	if err != nil {
		return err
	}

	rasters, err := buildActivityRasters(cfg, geoMap, extractor)
	if err != nil {
		return err
	}

	template, err := buildInputTemplate(cfg.Model)
	if err != nil {
		return fmt.Errorf("codiriutil.Run: %v", err)
	}

	m := model.NewModel(ref)
	aggregator := aggregate.NewAggregator(m, template)

	if cfg.Points.Map != nil {
		log.Println("Computing receptor grid doses...")
		grid := aggregate.GridConfig{
			UL:         geo.NewCoordinate(cfg.Points.Map.UL.Lon, cfg.Points.Map.UL.Lat),
			LR:         geo.NewCoordinate(cfg.Points.Map.LR.Lon, cfg.Points.Map.LR.Lat),
			Resolution: cfg.Points.Map.Resolution,
		}
		driver := &aggregate.GridDriver{Aggregator: aggregator, Grid: grid, OutputDir: outputDir}
		if err := driver.Run(rasters); err != nil {
			return fmt.Errorf("codiriutil.Run: %v", err)
		}
	}

	if len(cfg.Points.Special) > 0 {
		log.Println("Computing special point doses...")
		points := make([]aggregate.NamedPoint, len(cfg.Points.Special))
		for i, p := range cfg.Points.Special {
			points[i] = aggregate.NamedPoint{Name: p.Name, Coo: geo.NewCoordinate(p.Lon, p.Lat)}
		}
		f, err := os.Create(filepath.Join(outputDir, "special_points.csv"))
		if err != nil {
			return fmt.Errorf("codiriutil.Run: %v", err)
		}
		defer f.Close()
		driver := &aggregate.PointsDriver{Aggregator: aggregator, Points: points}
		if err := driver.Run(f, rasters); err != nil {
			return fmt.Errorf("codiriutil.Run: %v", err)
		}
	}

	log.Printf("Elapsed time: %v", time.Since(startTime))
	return nil
}

// buildActivityRasters groups the configured basin measurements by
// nuclide and paints one activity.Map per nuclide, matching each basin
// config entry to the extracted basin whose shoreline is closest to its
// measurement coordinate.
func buildActivityRasters(cfg *inputConfig, geoMap *geo.Map, extractor *basin.Extractor) (map[string]*activity.Map, error) {
	ul, lr, step := activityMapExtent(geoMap)

	nuclides := make(map[string]bool)
	for _, b := range cfg.Basins {
		for _, meas := range b.Measurements {
			nuclides[meas.Nuclide] = true
		}
	}

	rasters := make(map[string]*activity.Map, len(nuclides))
	for nuclide := range nuclides {
		actmap, err := activity.NewMap(ul, lr, step, nuclide)
		if err != nil {
			return nil, fmt.Errorf("codiriutil: building activity map for %q: %v", nuclide, err)
		}

		for _, bc := range cfg.Basins {
			coo := geo.NewCoordinate(bc.Lon, bc.Lat)
			b := extractor.Nearest(coo)
			if b == nil {
				log.Printf("codiriutil: basin %q has no matching extracted shoreline, skipping", bc.Name)
				continue
			}

			var measurements []activity.Measurement
			for _, mc := range bc.Measurements {
				if mc.Nuclide != nuclide {
					continue
				}
				meas, err := activity.NewMeasurement(activity.NewSoilActivity(mc.SpecificActivity, cfg.Model.SoilDensity), coo)
				if err != nil {
					return nil, fmt.Errorf("codiriutil: basin %q: %v", bc.Name, err)
				}
				measurements = append(measurements, meas)
			}
			if len(measurements) == 0 {
				continue
			}
			if err := actmap.AddBasin(b, measurements); err != nil {
				return nil, fmt.Errorf("codiriutil: painting basin %q for nuclide %q: %v", bc.Name, nuclide, err)
			}
		}

		rasters[nuclide] = actmap
	}
	return rasters, nil
}

func copyInputFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("codiriutil: reading input file: %v", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return os.WriteFile(dst, data, 0o644)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return os.WriteFile(dst, data, 0o644)
	}
	return os.WriteFile(dst, out, 0o644)
}
