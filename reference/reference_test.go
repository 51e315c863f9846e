package reference

import "testing"

func buildFake() *FakeReference {
	r := NewFakeReference()
	r.Nuclides["Cs-137"] = Nuclide{
		Name: "Cs-137", Group: "aerosol", DecayCoeff: 7.3e-10,
		CloudDoseCoeff: 1, InhalationDoseCoeff: 1, SurfaceDoseCoeff: 1,
		DepositionRate: 0.008, StandardWashingCapacity: 1e-5, FoodCriticalAgeGroup: 1,
	}
	r.Nuclides["Xe-133"] = Nuclide{Name: "Xe-133", Group: IRG, CloudDoseCoeff: 1}
	r.AgeGroups = []AgeGroup{
		{ID: 1, LowerAge: 0, UpperAge: 1, RespirationRate: 0.001, DailyMetabolicCost: 700},
		{ID: 2, LowerAge: 1, UpperAge: 200, RespirationRate: 0.02, DailyMetabolicCost: 2500},
	}
	r.Diffusion["A"] = DiffusionCoefficients{Pz: 0.1, Qz: 0.9, Py: 0.1, Qy: 0.9}
	r.Roughness["forest"] = 0.5
	r.FoodCats = []string{"meat", "milk"}
	r.SetAccumulationFactor("Cs-137", "meat", AccumulationSoil, 0.02)
	return r
}

func TestFakeReferenceTypedGetters(t *testing.T) {
	r := buildFake()

	if g, err := r.NuclideGroup("Cs-137"); err != nil || g != "aerosol" {
		t.Fatalf("NuclideGroup: got (%v, %v)", g, err)
	}
	if _, err := r.NuclideGroup("Unobtainium"); err == nil {
		t.Fatal("expected error for unknown nuclide")
	}

	if id, err := r.AgeGroupID(0); err != nil || id != 1 {
		t.Fatalf("AgeGroupID(0): got (%v, %v)", id, err)
	}
	if id, err := r.AgeGroupID(40); err != nil || id != 2 {
		t.Fatalf("AgeGroupID(40): got (%v, %v)", id, err)
	}
	if _, err := r.AgeGroupID(-1); err == nil {
		t.Fatal("expected error for an age not covered by any group")
	}

	if v, err := r.TerrainRoughness("forest"); err != nil || v != 0.5 {
		t.Fatalf("TerrainRoughness: got (%v, %v)", v, err)
	}

	if c, err := r.DiffusionCoefficients("A"); err != nil || c.Qy != 0.9 {
		t.Fatalf("DiffusionCoefficients: got (%v, %v)", c, err)
	}

	if f, err := r.AccumulationFactor("Cs-137", "meat", AccumulationSoil); err != nil || f != 0.02 {
		t.Fatalf("AccumulationFactor: got (%v, %v)", f, err)
	}

	if v, err := r.DailyMetabolicCostForGroup(1); err != nil || v != 700 {
		t.Fatalf("DailyMetabolicCostForGroup(1): got (%v, %v)", v, err)
	}
	if _, err := r.DailyMetabolicCostForGroup(99); err == nil {
		t.Fatal("expected error for unknown age group id")
	}
}

func TestFakeReferenceScalarConstants(t *testing.T) {
	r := buildFake()
	if r.DoseRateDecayCoeff() != doseRateDecayCoeff {
		t.Fatal("DoseRateDecayCoeff mismatch")
	}
	if r.MixingLayerHeight() != 100 {
		t.Fatal("MixingLayerHeight mismatch")
	}
}
