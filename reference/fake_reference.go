package reference

import "fmt"

// FakeReference is an in-memory-map-backed IReference for tests: a sum
// type of {SQLReference, FakeReference} behind the same interface.
type FakeReference struct {
	Nuclides    map[string]Nuclide
	AgeGroups   []AgeGroup
	Diffusion   map[string]DiffusionCoefficients
	Roughness   map[string]float64
	FoodCats    []string
	AccumFactor map[string]float64 // key: nuclide|source|food

	StabilityClasses []string
}

// NewFakeReference builds an empty FakeReference ready to be populated
// by the caller via its exported fields.
func NewFakeReference() *FakeReference {
	return &FakeReference{
		Nuclides:         make(map[string]Nuclide),
		Diffusion:        make(map[string]DiffusionCoefficients),
		Roughness:        make(map[string]float64),
		AccumFactor:      make(map[string]float64),
		StabilityClasses: []string{"A", "B", "C", "D", "E", "F"},
	}
}

// SetAccumulationFactor is a convenience setter for the
// nuclide/food/source-keyed accumulation-factor table.
func (r *FakeReference) SetAccumulationFactor(nuclide, foodCategory string, source AccumulationSource, value float64) {
	r.AccumFactor[accumKey(nuclide, foodCategory, source)] = value
}

func (r *FakeReference) AllNuclides() []string {
	out := make([]string, 0, len(r.Nuclides))
	for name := range r.Nuclides {
		out = append(out, name)
	}
	return out
}

func (r *FakeReference) AllFoodCategories() []string { return append([]string(nil), r.FoodCats...) }
func (r *FakeReference) AllStabilityClasses() []string {
	return append([]string(nil), r.StabilityClasses...)
}

func (r *FakeReference) nuclide(name string) (Nuclide, error) {
	n, ok := r.Nuclides[name]
	if !ok {
		return Nuclide{}, fmt.Errorf("reference: unknown nuclide %q", name)
	}
	return n, nil
}

func (r *FakeReference) RadioDecayCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.DecayCoeff, err
}

func (r *FakeReference) NuclideGroup(nuclide string) (string, error) {
	n, err := r.nuclide(nuclide)
	return n.Group, err
}

func (r *FakeReference) CloudDoseCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.CloudDoseCoeff, err
}

func (r *FakeReference) InhalationDoseCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.InhalationDoseCoeff, err
}

func (r *FakeReference) SurfaceDoseCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.SurfaceDoseCoeff, err
}

func (r *FakeReference) DepositionRate(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.DepositionRate, err
}

func (r *FakeReference) StandardWashingCapacity(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.StandardWashingCapacity, err
}

func (r *FakeReference) FoodCriticalAgeGroup(nuclide string) (int, error) {
	n, err := r.nuclide(nuclide)
	return n.FoodCriticalAgeGroup, err
}

func (r *FakeReference) RespirationRate(age int) (float64, error) {
	g, err := ageGroupFor(age, r.AgeGroups)
	if err != nil {
		return 0, err
	}
	return g.RespirationRate, nil
}

func (r *FakeReference) DailyMetabolicCost(age int) (float64, error) {
	g, err := ageGroupFor(age, r.AgeGroups)
	if err != nil {
		return 0, err
	}
	return g.DailyMetabolicCost, nil
}

func (r *FakeReference) AgeGroupID(age int) (int, error) {
	g, err := ageGroupFor(age, r.AgeGroups)
	if err != nil {
		return 0, err
	}
	return g.ID, nil
}

func (r *FakeReference) DailyMetabolicCostForGroup(ageGroupID int) (float64, error) {
	for _, g := range r.AgeGroups {
		if g.ID == ageGroupID {
			return g.DailyMetabolicCost, nil
		}
	}
	return 0, fmt.Errorf("reference: unknown age group id %d", ageGroupID)
}

func (r *FakeReference) TerrainRoughness(terrainType string) (float64, error) {
	v, ok := r.Roughness[terrainType]
	if !ok {
		return 0, fmt.Errorf("reference: unknown terrain type %q", terrainType)
	}
	return v, nil
}

func (r *FakeReference) DiffusionCoefficients(stabilityClass string) (DiffusionCoefficients, error) {
	v, ok := r.Diffusion[stabilityClass]
	if !ok {
		return DiffusionCoefficients{}, fmt.Errorf("reference: unknown stability class %q", stabilityClass)
	}
	return v, nil
}

func (r *FakeReference) AccumulationFactor(nuclide, foodCategory string, source AccumulationSource) (float64, error) {
	v, ok := r.AccumFactor[accumKey(nuclide, foodCategory, source)]
	if !ok {
		return 0, fmt.Errorf("reference: no accumulation factor for nuclide %q, food %q, source %q", nuclide, foodCategory, source)
	}
	return v, nil
}

func (r *FakeReference) DoseRateDecayCoeff() float64      { return doseRateDecayCoeff }
func (r *FakeReference) ResidenceTime() float64           { return residenceTime }
func (r *FakeReference) UnitlessWashingCapacity() float64 { return unitlessWashingCapacity }
func (r *FakeReference) TerrainClearance() float64        { return terrainClearance }
func (r *FakeReference) MixingLayerHeight() float64       { return mixingLayerHeight }

var (
	_ IReference = (*SQLReference)(nil)
	_ IReference = (*FakeReference)(nil)
)
