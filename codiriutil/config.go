package codiriutil

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/czertyaka/codiri/formulas"
	"github.com/czertyaka/codiri/geo"
	"github.com/czertyaka/codiri/model"
)

// inputConfig mirrors the top-level input JSON document: reference
// store and classified raster locations, in-situ basin measurements,
// model scalar parameters, and the optional receptor grid/points block.
type inputConfig struct {
	DatabaseName    string        `json:"database_name"`
	GeoTIFFFilename string        `json:"geotiff_filename"`
	Basins          []basinConfig `json:"basins"`
	Model           modelConfig   `json:"model"`
	Points          pointsConfig  `json:"points"`
}

type basinConfig struct {
	Name         string              `json:"name"`
	Lon          float64             `json:"lon"`
	Lat          float64             `json:"lat"`
	Measurements []measurementConfig `json:"measurements"`
}

type measurementConfig struct {
	Nuclide          string  `json:"nuclide"`
	SpecificActivity float64 `json:"specific_activity"`
}

type windSpeedConfig struct {
	AClass string  `json:"a_class"`
	Value  float64 `json:"value"`
}

type foodIntakeConfig struct {
	FoodCategory string  `json:"food_category"`
	Intake       float64 `json:"intake"`
}

type modelConfig struct {
	SquareSide        float64            `json:"square_side"`
	PrecipitationRate float64            `json:"precipitation_rate"`
	TerrainType       string             `json:"terrain_type"`
	BlowoutTime       float64            `json:"blowout_time"`
	Age               int                `json:"age"`
	SoilDensity       float64            `json:"soil_density"`
	BufferAreaRadius  float64            `json:"buffer_area_radius"`
	WindSpeed         []windSpeedConfig  `json:"wind_speed"`
	AnnualFoodIntake  []foodIntakeConfig `json:"annual_food_intake"`
}

type latLonConfig struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type gridConfig struct {
	UL         latLonConfig `json:"ul"`
	LR         latLonConfig `json:"lr"`
	Resolution int          `json:"resolution"`
}

type specialPointConfig struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

type pointsConfig struct {
	Map     *gridConfig          `json:"map"`
	Special []specialPointConfig `json:"special"`
}

// loadInputConfig reads and parses the input JSON document at path.
func loadInputConfig(path string) (*inputConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codiriutil: opening input file: %v", err)
	}
	defer f.Close()

	var cfg inputConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("codiriutil: parsing input file: %v", err)
	}
	return &cfg, nil
}

// buildInputTemplate turns a modelConfig into a model.Input with every
// scalar field set except Distance and SpecificActivities, which the
// dose aggregator sets per raster cell.
func buildInputTemplate(c modelConfig) (*model.Input, error) {
	inp := model.NewInput()

	if err := inp.SetSquareSide(c.SquareSide); err != nil {
		return nil, err
	}
	if err := inp.SetPrecipitationRate(c.PrecipitationRate); err != nil {
		return nil, err
	}
	if err := inp.SetTerrainType(c.TerrainType); err != nil {
		return nil, err
	}
	if err := inp.SetBlowoutTime(c.BlowoutTime); err != nil {
		return nil, err
	}
	if err := inp.SetAge(c.Age); err != nil {
		return nil, err
	}
	if err := inp.SetSoilDensity(c.SoilDensity); err != nil {
		return nil, err
	}
	if err := inp.SetBufferAreaRadius(c.BufferAreaRadius); err != nil {
		return nil, err
	}

	windSpeeds := make(map[string]float64, len(formulas.StabilityClasses))
	for _, ws := range c.WindSpeed {
		windSpeeds[ws.AClass] = ws.Value
	}
	if err := inp.SetExtremeWindSpeeds(windSpeeds); err != nil {
		return nil, err
	}

	foodIntake := make(map[string]float64, len(model.FoodCategories))
	for _, fi := range c.AnnualFoodIntake {
		foodIntake[fi.FoodCategory] = fi.Intake
	}
	if err := inp.SetAdultAnnualFoodIntake(foodIntake); err != nil {
		return nil, err
	}

	return inp, nil
}

// activityMapExtent derives the upper-left/lower-right corners and
// isotropic cell size an activity.Map is built with from the classified
// raster's own extent and native pixel resolution, so the contamination
// grid always aligns with the basins it was extracted from. Neither the
// input schema nor original_source's ActivityMap constructor specifies
// where this extent should come from independently of the source
// raster, so this is the most direct way to keep the two grids aligned.
func activityMapExtent(m *geo.Map) (ul, lr geo.Coordinate, step float64) {
	x0, y0 := m.Transform.XY(0, 0)
	x1, y1 := m.Transform.XY(m.Height, m.Width)
	ul = geo.Coordinate{Lon: x0, Lat: y0, CRS: m.CRS}
	lr = geo.Coordinate{Lon: x1, Lat: y1, CRS: m.CRS}
	step = math.Abs(m.Transform.ScaleX)
	return ul, lr, step
}
