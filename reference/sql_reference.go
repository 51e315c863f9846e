package reference

import (
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// SQLReference is an IReference backed by a sqlite reference-data file,
// matching Reference/Database in the source this system is ported
// from (dataset.Database over a sqlite URL). All six tables are loaded
// eagerly into in-memory maps at construction time; the store is
// read-only thereafter, so every typed getter is a plain map lookup with
// no further database round-trips during a calculation.
type SQLReference struct {
	nuclides    map[string]Nuclide
	ageGroups   []AgeGroup
	diffusion   map[string]DiffusionCoefficients
	roughness   map[string]float64
	foodCats    []string
	accumFactor map[string]float64 // key: nuclide|source|food

	nuclideNames   []string
	stabilityClass []string
}

// NewSQLReference opens dbPath with the sqlite3 driver and loads every
// reference table into memory.
func NewSQLReference(dbPath string) (*SQLReference, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("reference.NewSQLReference: %v", err)
	}
	defer db.Close()

	r := &SQLReference{
		nuclides:    make(map[string]Nuclide),
		diffusion:   make(map[string]DiffusionCoefficients),
		roughness:   make(map[string]float64),
		accumFactor: make(map[string]float64),
	}

	if err := r.loadNuclides(db); err != nil {
		return nil, err
	}
	if err := r.loadAgeGroups(db); err != nil {
		return nil, err
	}
	if err := r.loadDiffusionCoefficients(db); err != nil {
		return nil, err
	}
	if err := r.loadRoughness(db); err != nil {
		return nil, err
	}
	if err := r.loadFood(db); err != nil {
		return nil, err
	}
	if err := r.loadAccumulationFactors(db); err != nil {
		return nil, err
	}

	sort.Strings(r.nuclideNames)
	r.stabilityClass = []string{"A", "B", "C", "D", "E", "F"}
	return r, nil
}

func (r *SQLReference) loadNuclides(db *sql.DB) error {
	rows, err := db.Query(`SELECT name, "group", decay_coeff, R_cloud, R_inh, R_surface, deposition_rate, standard_washing_capacity, food_critical_age_group FROM nuclides`)
	if err != nil {
		return fmt.Errorf("reference.SQLReference: loading nuclides: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n Nuclide
		if err := rows.Scan(&n.Name, &n.Group, &n.DecayCoeff, &n.CloudDoseCoeff, &n.InhalationDoseCoeff,
			&n.SurfaceDoseCoeff, &n.DepositionRate, &n.StandardWashingCapacity, &n.FoodCriticalAgeGroup); err != nil {
			return fmt.Errorf("reference.SQLReference: scanning nuclide row: %v", err)
		}
		r.nuclides[n.Name] = n
		r.nuclideNames = append(r.nuclideNames, n.Name)
	}
	return rows.Err()
}

func (r *SQLReference) loadAgeGroups(db *sql.DB) error {
	rows, err := db.Query(`SELECT id, lower_age, upper_age, respiration_rate, daily_metabolic_cost FROM age_groups`)
	if err != nil {
		return fmt.Errorf("reference.SQLReference: loading age_groups: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g AgeGroup
		if err := rows.Scan(&g.ID, &g.LowerAge, &g.UpperAge, &g.RespirationRate, &g.DailyMetabolicCost); err != nil {
			return fmt.Errorf("reference.SQLReference: scanning age_group row: %v", err)
		}
		r.ageGroups = append(r.ageGroups, g)
	}
	return rows.Err()
}

func (r *SQLReference) loadDiffusionCoefficients(db *sql.DB) error {
	rows, err := db.Query(`SELECT a_class, p_z, q_z, p_y, q_y FROM diffusion_coefficients`)
	if err != nil {
		return fmt.Errorf("reference.SQLReference: loading diffusion_coefficients: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var aclass string
		var c DiffusionCoefficients
		if err := rows.Scan(&aclass, &c.Pz, &c.Qz, &c.Py, &c.Qy); err != nil {
			return fmt.Errorf("reference.SQLReference: scanning diffusion_coefficients row: %v", err)
		}
		r.diffusion[aclass] = c
	}
	return rows.Err()
}

func (r *SQLReference) loadRoughness(db *sql.DB) error {
	rows, err := db.Query(`SELECT terrain, roughness FROM roughness`)
	if err != nil {
		return fmt.Errorf("reference.SQLReference: loading roughness: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var terrain string
		var rough float64
		if err := rows.Scan(&terrain, &rough); err != nil {
			return fmt.Errorf("reference.SQLReference: scanning roughness row: %v", err)
		}
		r.roughness[terrain] = rough
	}
	return rows.Err()
}

func (r *SQLReference) loadFood(db *sql.DB) error {
	rows, err := db.Query(`SELECT category FROM food`)
	if err != nil {
		return fmt.Errorf("reference.SQLReference: loading food: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return fmt.Errorf("reference.SQLReference: scanning food row: %v", err)
		}
		r.foodCats = append(r.foodCats, cat)
	}
	return rows.Err()
}

func (r *SQLReference) loadAccumulationFactors(db *sql.DB) error {
	rows, err := db.Query(`SELECT nuclide, accumulation_source, food_id, accumulation_factor FROM accumulation_factors`)
	if err != nil {
		return fmt.Errorf("reference.SQLReference: loading accumulation_factors: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var nuclide, source, food string
		var factor float64
		if err := rows.Scan(&nuclide, &source, &food, &factor); err != nil {
			return fmt.Errorf("reference.SQLReference: scanning accumulation_factors row: %v", err)
		}
		r.accumFactor[accumKey(nuclide, food, AccumulationSource(source))] = factor
	}
	return rows.Err()
}

func accumKey(nuclide, food string, source AccumulationSource) string {
	return nuclide + "|" + string(source) + "|" + food
}

func (r *SQLReference) AllNuclides() []string       { return append([]string(nil), r.nuclideNames...) }
func (r *SQLReference) AllFoodCategories() []string { return append([]string(nil), r.foodCats...) }
func (r *SQLReference) AllStabilityClasses() []string {
	return append([]string(nil), r.stabilityClass...)
}

func (r *SQLReference) nuclide(name string) (Nuclide, error) {
	n, ok := r.nuclides[name]
	if !ok {
		return Nuclide{}, fmt.Errorf("reference: unknown nuclide %q", name)
	}
	return n, nil
}

func (r *SQLReference) RadioDecayCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.DecayCoeff, err
}

func (r *SQLReference) NuclideGroup(nuclide string) (string, error) {
	n, err := r.nuclide(nuclide)
	return n.Group, err
}

func (r *SQLReference) CloudDoseCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.CloudDoseCoeff, err
}

func (r *SQLReference) InhalationDoseCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.InhalationDoseCoeff, err
}

func (r *SQLReference) SurfaceDoseCoeff(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.SurfaceDoseCoeff, err
}

func (r *SQLReference) DepositionRate(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.DepositionRate, err
}

func (r *SQLReference) StandardWashingCapacity(nuclide string) (float64, error) {
	n, err := r.nuclide(nuclide)
	return n.StandardWashingCapacity, err
}

func (r *SQLReference) FoodCriticalAgeGroup(nuclide string) (int, error) {
	n, err := r.nuclide(nuclide)
	return n.FoodCriticalAgeGroup, err
}

func (r *SQLReference) RespirationRate(age int) (float64, error) {
	g, err := ageGroupFor(age, r.ageGroups)
	if err != nil {
		return 0, err
	}
	return g.RespirationRate, nil
}

func (r *SQLReference) DailyMetabolicCost(age int) (float64, error) {
	g, err := ageGroupFor(age, r.ageGroups)
	if err != nil {
		return 0, err
	}
	return g.DailyMetabolicCost, nil
}

func (r *SQLReference) AgeGroupID(age int) (int, error) {
	g, err := ageGroupFor(age, r.ageGroups)
	if err != nil {
		return 0, err
	}
	return g.ID, nil
}

func (r *SQLReference) DailyMetabolicCostForGroup(ageGroupID int) (float64, error) {
	for _, g := range r.ageGroups {
		if g.ID == ageGroupID {
			return g.DailyMetabolicCost, nil
		}
	}
	return 0, fmt.Errorf("reference: unknown age group id %d", ageGroupID)
}

func (r *SQLReference) TerrainRoughness(terrainType string) (float64, error) {
	v, ok := r.roughness[terrainType]
	if !ok {
		return 0, fmt.Errorf("reference: unknown terrain type %q", terrainType)
	}
	return v, nil
}

func (r *SQLReference) DiffusionCoefficients(stabilityClass string) (DiffusionCoefficients, error) {
	v, ok := r.diffusion[stabilityClass]
	if !ok {
		return DiffusionCoefficients{}, fmt.Errorf("reference: unknown stability class %q", stabilityClass)
	}
	return v, nil
}

func (r *SQLReference) AccumulationFactor(nuclide, foodCategory string, source AccumulationSource) (float64, error) {
	v, ok := r.accumFactor[accumKey(nuclide, foodCategory, source)]
	if !ok {
		return 0, fmt.Errorf("reference: no accumulation factor for nuclide %q, food %q, source %q", nuclide, foodCategory, source)
	}
	return v, nil
}

func (r *SQLReference) DoseRateDecayCoeff() float64      { return doseRateDecayCoeff }
func (r *SQLReference) ResidenceTime() float64           { return residenceTime }
func (r *SQLReference) UnitlessWashingCapacity() float64 { return unitlessWashingCapacity }
func (r *SQLReference) TerrainClearance() float64        { return terrainClearance }
func (r *SQLReference) MixingLayerHeight() float64       { return mixingLayerHeight }
