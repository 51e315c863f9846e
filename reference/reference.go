// Package reference provides typed, read-only access to the nuclide,
// age-group, diffusion, terrain, food and accumulation-factor data the
// model consumes, loaded eagerly from a relational store into in-memory
// maps (the reference data never changes mid-calculation).
package reference

import "fmt"

// IRG is the inert-gas nuclide group: cloud-immersion dose only, no
// inhalation or surface-deposition pathway.
const IRG = "IRG"

// Nuclide holds the per-nuclide reference row.
type Nuclide struct {
	Name                   string
	Group                  string
	DecayCoeff             float64 // sec^-1
	CloudDoseCoeff         float64 // (Sv*m^3)/(Bq*s)
	InhalationDoseCoeff    float64 // Sv/Bq
	SurfaceDoseCoeff       float64 // (Sv*m^2)/(Bq*s)
	DepositionRate         float64 // m/s
	StandardWashingCapacity float64 // hr/(mm*sec)

	// FoodCriticalAgeGroup is the age group the food-ingestion pathway is
	// assessed against, independent of whichever age group the cloud,
	// inhalation and surface pathways use for a given calculation. No
	// separate per-nuclide ingestion dose coefficient exists in the data
	// this package is grounded on, so model.Model reuses
	// InhalationDoseCoeff as the internal-exposure coefficient for both
	// the inhalation and food pathways.
	FoodCriticalAgeGroup int
}

// AgeGroup holds the per-age-group reference row.
type AgeGroup struct {
	ID                 int
	LowerAge           int
	UpperAge           int
	RespirationRate    float64 // m^3/sec
	DailyMetabolicCost float64 // kcal/day
}

// DiffusionCoefficients holds the vertical/horizontal dispersion
// coefficients for a stability class, for release height < 50 m.
type DiffusionCoefficients struct {
	Pz, Qz, Py, Qy float64
}

// AccumulationSource distinguishes the two accumulation-factor tables.
type AccumulationSource string

const (
	AccumulationAtmosphere AccumulationSource = "atmosphere"
	AccumulationSoil       AccumulationSource = "soil"
)

// IReference is the typed, read-only reference data surface the model
// and formula library consume. The store is immutable after
// construction.
type IReference interface {
	AllNuclides() []string
	AllFoodCategories() []string
	AllStabilityClasses() []string

	RadioDecayCoeff(nuclide string) (float64, error)
	NuclideGroup(nuclide string) (string, error)
	CloudDoseCoeff(nuclide string) (float64, error)
	InhalationDoseCoeff(nuclide string) (float64, error)
	SurfaceDoseCoeff(nuclide string) (float64, error)
	DepositionRate(nuclide string) (float64, error)
	StandardWashingCapacity(nuclide string) (float64, error)
	FoodCriticalAgeGroup(nuclide string) (int, error)

	RespirationRate(age int) (float64, error)
	DailyMetabolicCost(age int) (float64, error)
	AgeGroupID(age int) (int, error)
	DailyMetabolicCostForGroup(ageGroupID int) (float64, error)

	TerrainRoughness(terrainType string) (float64, error)
	DiffusionCoefficients(stabilityClass string) (DiffusionCoefficients, error)

	AccumulationFactor(nuclide string, foodCategory string, source AccumulationSource) (float64, error)

	DoseRateDecayCoeff() float64
	ResidenceTime() float64
	UnitlessWashingCapacity() float64
	TerrainClearance() float64
	MixingLayerHeight() float64
}

// Scalar constants common to both IReference implementations, matching
// the literal constants in the source this package is grounded on.
const (
	doseRateDecayCoeff      = 1.27e-9
	residenceTime           = 3.15e7
	unitlessWashingCapacity = 5.0
	terrainClearance        = 1.0
	mixingLayerHeight       = 100.0
)

func ageGroupFor(age int, groups []AgeGroup) (AgeGroup, error) {
	for _, g := range groups {
		if age >= g.LowerAge && age < g.UpperAge {
			return g, nil
		}
	}
	return AgeGroup{}, fmt.Errorf("reference: invalid provided age %d", age)
}
