package model

import (
	"fmt"
	"sort"

	"github.com/czertyaka/codiri/formulas"
)

// TerrainTypes lists the underlying terrain types Input.TerrainType
// accepts.
var TerrainTypes = []string{"greenland", "agricultural", "forest", "settlement"}

// FoodCategories lists the food categories Input's food-intake maps must
// be keyed by, exactly.
var FoodCategories = []string{"meat", "milk", "wheat", "cucumbers", "cabbage", "potato"}

// AdultAge is the reference age, in years, used to look up the adult
// baseline daily metabolic cost and annual food intake that every other
// age group's intake is scaled against in AnnualFoodIntake. The
// original source takes this as an unresolved TODO; 18 is chosen as the
// first age at which reference age-group tables conventionally switch
// to "adult" dosimetric parameters.
const AdultAge = 18

// Input is a validated bundle of scalar model parameters, collapsed
// from the source's dynamic string-keyed ValidatingFixedMap into a
// plain struct of fields with individually validated setters.
type Input struct {
	distance    float64
	distanceSet bool

	squareSide    float64
	squareSideSet bool

	precipitationRate    float64
	precipitationRateSet bool

	extremeWindSpeeds map[string]float64

	age    int
	ageSet bool

	terrainType string

	blowoutTime    float64
	blowoutTimeSet bool

	bufferAreaRadius    float64
	bufferAreaRadiusSet bool

	adultAnnualFoodIntake map[string]float64

	soilDensity    float64
	soilDensitySet bool

	specificActivities map[string]float64
}

// NewInput returns an empty, not-yet-initialized Input.
func NewInput() *Input {
	return &Input{specificActivities: make(map[string]float64)}
}

// Distance is the distance, in metres, between the source center and
// the point at which doses are computed.
func (i *Input) Distance() float64 { return i.distance }

// SetDistance validates and sets Distance.
func (i *Input) SetDistance(value float64) error {
	if value < 0 {
		return fmt.Errorf("model.Input: invalid distance %g m", value)
	}
	i.distance, i.distanceSet = value, true
	return nil
}

// SquareSide is the side length, in metres, of the square-shaped
// surface source.
func (i *Input) SquareSide() float64 { return i.squareSide }

// SetSquareSide validates and sets SquareSide.
func (i *Input) SetSquareSide(value float64) error {
	if value < 0 {
		return fmt.Errorf("model.Input: invalid square side %g m", value)
	}
	i.squareSide, i.squareSideSet = value, true
	return nil
}

// PrecipitationRate is the precipitation rate, in mm/h.
func (i *Input) PrecipitationRate() float64 { return i.precipitationRate }

// SetPrecipitationRate validates and sets PrecipitationRate.
func (i *Input) SetPrecipitationRate(value float64) error {
	if value < 0 {
		return fmt.Errorf("model.Input: invalid precipitation rate %g mm/h", value)
	}
	i.precipitationRate, i.precipitationRateSet = value, true
	return nil
}

// ExtremeWindSpeeds returns the extreme wind speed, m/s, per Pasquill-
// Gifford stability class.
func (i *Input) ExtremeWindSpeeds() map[string]float64 { return i.extremeWindSpeeds }

// SetExtremeWindSpeeds validates (every stability class must be
// present, no others) and sets ExtremeWindSpeeds.
func (i *Input) SetExtremeWindSpeeds(values map[string]float64) error {
	if !sameKeySet(values, formulas.StabilityClasses[:]) {
		return fmt.Errorf("model.Input: wind speeds %v don't cover every stability class %v", values, formulas.StabilityClasses)
	}
	i.extremeWindSpeeds = values
	return nil
}

// Age is the population group age, in years.
func (i *Input) Age() int { return i.age }

// SetAge validates and sets Age.
func (i *Input) SetAge(value int) error {
	if value < 0 {
		return fmt.Errorf("model.Input: invalid age %d years", value)
	}
	i.age, i.ageSet = value, true
	return nil
}

// TerrainType is the underlying terrain type.
func (i *Input) TerrainType() string { return i.terrainType }

// SetTerrainType validates and sets TerrainType.
func (i *Input) SetTerrainType(value string) error {
	for _, t := range TerrainTypes {
		if t == value {
			i.terrainType = value
			return nil
		}
	}
	return fmt.Errorf("model.Input: unknown terrain type %q", value)
}

// BlowoutTime is the wind resuspension (blowout) duration, in seconds.
func (i *Input) BlowoutTime() float64 { return i.blowoutTime }

// SetBlowoutTime validates and sets BlowoutTime.
func (i *Input) SetBlowoutTime(value float64) error {
	if value <= 0 {
		return fmt.Errorf("model.Input: invalid blowout time %g s", value)
	}
	i.blowoutTime, i.blowoutTimeSet = value, true
	return nil
}

// BufferAreaRadius is the radius, in metres, of the operating-site
// buffer area: a lower clip on the food-dose x_max search.
func (i *Input) BufferAreaRadius() float64 { return i.bufferAreaRadius }

// SetBufferAreaRadius validates and sets BufferAreaRadius.
func (i *Input) SetBufferAreaRadius(value float64) error {
	if value < 0 {
		return fmt.Errorf("model.Input: invalid buffer area radius %g m", value)
	}
	i.bufferAreaRadius, i.bufferAreaRadiusSet = value, true
	return nil
}

// AdultAnnualFoodIntake returns the adult annual food intake, kg/year,
// per food category.
func (i *Input) AdultAnnualFoodIntake() map[string]float64 { return i.adultAnnualFoodIntake }

// SetAdultAnnualFoodIntake validates (exactly FoodCategories as keys)
// and sets AdultAnnualFoodIntake.
func (i *Input) SetAdultAnnualFoodIntake(values map[string]float64) error {
	if !sameKeySet(values, FoodCategories) {
		return fmt.Errorf("model.Input: food intake %v doesn't cover every food category %v", values, FoodCategories)
	}
	i.adultAnnualFoodIntake = values
	return nil
}

// SoilDensity is the dry bulk density of the contaminated soil, g/cm^3,
// used by the dose aggregator to convert a cell's raster activity into a
// specific activity.
func (i *Input) SoilDensity() float64 { return i.soilDensity }

// SetSoilDensity validates and sets SoilDensity.
func (i *Input) SetSoilDensity(value float64) error {
	if value <= 0 {
		return fmt.Errorf("model.Input: invalid soil density %g g/cm^3", value)
	}
	i.soilDensity, i.soilDensitySet = value, true
	return nil
}

// SpecificActivities returns the source specific activity, Bq/kg, per
// nuclide.
func (i *Input) SpecificActivities() map[string]float64 { return i.specificActivities }

// AddSpecificActivity validates and adds a per-nuclide specific
// activity.
func (i *Input) AddSpecificActivity(nuclide string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("model.Input: invalid specific activity %g Bq/kg for %q", value, nuclide)
	}
	i.specificActivities[nuclide] = value
	return nil
}

// ClearSpecificActivities empties the specific-activity map, so a
// template Input can be reused to drive a single-nuclide calculation
// (the dose aggregator's per-cell, per-nuclide loop) without carrying
// over a previous cell's or nuclide's value.
func (i *Input) ClearSpecificActivities() {
	i.specificActivities = make(map[string]float64)
}

// Nuclides returns every nuclide with a registered specific activity.
func (i *Input) Nuclides() []string {
	out := make([]string, 0, len(i.specificActivities))
	for n := range i.specificActivities {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Initialized reports whether every scalar field has been set and at
// least one specific activity has been registered.
func (i *Input) Initialized() bool {
	return i.distanceSet && i.squareSideSet && i.precipitationRateSet &&
		i.extremeWindSpeeds != nil && i.ageSet && i.terrainType != "" &&
		i.blowoutTimeSet && i.bufferAreaRadiusSet && i.adultAnnualFoodIntake != nil &&
		i.soilDensitySet && len(i.specificActivities) > 0
}

// Clone returns a deep copy of i, so a caller can derive a per-receptor
// Input from a shared template without two goroutines ever touching the
// same maps, so every worker can own its own Input.
func (i *Input) Clone() *Input {
	c := *i
	c.extremeWindSpeeds = cloneMap(i.extremeWindSpeeds)
	c.adultAnnualFoodIntake = cloneMap(i.adultAnnualFoodIntake)
	c.specificActivities = cloneMap(i.specificActivities)
	return &c
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sameKeySet(m map[string]float64, want []string) bool {
	if len(m) != len(want) {
		return false
	}
	for _, k := range want {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
