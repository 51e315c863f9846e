package model

import (
	"testing"

	"github.com/czertyaka/codiri/reference"
)

func buildReference() *reference.FakeReference {
	r := reference.NewFakeReference()
	r.Nuclides["Cs-137"] = reference.Nuclide{
		Name: "Cs-137", Group: "aerosol", DecayCoeff: 7.3e-10,
		CloudDoseCoeff: 6.3e-18, InhalationDoseCoeff: 4.6e-9, SurfaceDoseCoeff: 1.35e-17,
		DepositionRate: 0.008, StandardWashingCapacity: 1e-5, FoodCriticalAgeGroup: 2,
	}
	r.AgeGroups = []reference.AgeGroup{
		{ID: 1, LowerAge: 0, UpperAge: 18, RespirationRate: 0.012, DailyMetabolicCost: 1500},
		{ID: 2, LowerAge: 18, UpperAge: 200, RespirationRate: 0.023, DailyMetabolicCost: 2500},
	}
	for _, aclass := range r.StabilityClasses {
		r.Diffusion[aclass] = reference.DiffusionCoefficients{Pz: 0.15, Qz: 0.85, Py: 0.22, Qy: 0.89}
	}
	r.Roughness["greenland"] = 0.1
	r.FoodCats = []string{"meat", "milk", "wheat", "cucumbers", "cabbage", "potato"}
	for _, food := range r.FoodCats {
		r.SetAccumulationFactor("Cs-137", food, reference.AccumulationAtmosphere, 0.1)
		r.SetAccumulationFactor("Cs-137", food, reference.AccumulationSoil, 0.05)
	}
	return r
}

func buildInput(t *testing.T) *Input {
	t.Helper()
	inp := NewInput()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected validation error: %v", err)
		}
	}
	must(inp.SetDistance(500))
	must(inp.SetSquareSide(100))
	must(inp.SetPrecipitationRate(0))
	must(inp.SetExtremeWindSpeeds(map[string]float64{
		"A": 1, "B": 2, "C": 3, "D": 4, "E": 5, "F": 6,
	}))
	must(inp.SetAge(30))
	must(inp.SetTerrainType("greenland"))
	must(inp.SetBlowoutTime(3600))
	must(inp.SetBufferAreaRadius(200))
	must(inp.SetSoilDensity(1.4))
	must(inp.SetAdultAnnualFoodIntake(map[string]float64{
		"meat": 50, "milk": 120, "wheat": 100, "cucumbers": 20, "cabbage": 30, "potato": 90,
	}))
	must(inp.AddSpecificActivity("Cs-137", 1e6))
	return inp
}

func TestCalculateUninitializedInput(t *testing.T) {
	m := NewModel(buildReference())
	res, ok, err := m.Calculate(NewInput())
	if err != nil || ok || res != nil {
		t.Fatalf("expected (nil, false, nil) for an uninitialized input, got (%v, %v, %v)", res, ok, err)
	}
}

func TestCalculateConstraintViolationIsNonFatal(t *testing.T) {
	ref := buildReference()
	m := NewModel(ref)
	inp := buildInput(t)
	if err := inp.SetDistance(60000); err != nil {
		t.Fatal(err)
	}
	res, ok, err := m.Calculate(inp)
	if err != nil {
		t.Fatalf("constraint violation must not surface as an error, got %v", err)
	}
	if ok || res != nil {
		t.Fatalf("expected ok=false, res=nil for a constraint violation, got (%v, %v)", res, ok)
	}
}

func TestCalculateHappyPath(t *testing.T) {
	ref := buildReference()
	m := NewModel(ref)
	inp := buildInput(t)

	res, ok, err := m.Calculate(inp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || res == nil {
		t.Fatal("expected a successful calculation")
	}

	for _, aclass := range []string{"A", "B", "C", "D", "E", "F"} {
		if _, found := res.ETotalAcute["Cs-137"][aclass]; !found {
			t.Fatalf("missing ETotalAcute for class %q", aclass)
		}
		if res.ETotalAcute["Cs-137"][aclass] < 0 {
			t.Fatalf("ETotalAcute must be non-negative, got %g", res.ETotalAcute["Cs-137"][aclass])
		}
	}

	if res.EMax10Acute <= 0 {
		t.Fatalf("expected a positive acute max dose, got %g", res.EMax10Acute)
	}
	if res.EMax10Period <= 0 {
		t.Fatalf("expected a positive period max dose, got %g", res.EMax10Period)
	}
	if res.FoodMaxDistance < inp.BufferAreaRadius() {
		t.Fatalf("x_max must never fall below the buffer area radius, got %g", res.FoodMaxDistance)
	}
	if _, ok := res.BlowoutFlux["Cs-137"]; !ok {
		t.Fatal("missing blowout flux diagnostic")
	}
}

func TestCalculateUnknownNuclideIsConstraintViolation(t *testing.T) {
	ref := buildReference()
	m := NewModel(ref)
	inp := buildInput(t)
	if err := inp.AddSpecificActivity("Unobtainium", 10); err != nil {
		t.Fatal(err)
	}

	res, ok, err := m.Calculate(inp)
	if err != nil {
		t.Fatalf("an unknown nuclide should be caught by DefaultConstraints, not surfaced as an error: %v", err)
	}
	if ok || res != nil {
		t.Fatal("expected ok=false for an unknown nuclide")
	}
}
