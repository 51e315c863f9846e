package formulas

import (
	"math"
	"testing"
)

func approxEqual(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tol %v)", got, want, tol)
	}
}

func TestEffectiveDose(t *testing.T) {
	doses := []map[string]float64{
		{"A": 1, "B": 2, "C": 3, "D": 2, "E": 1, "F": 0},
		{"A": 1, "B": 4, "C": 9, "D": 16, "E": 9, "F": 4},
	}
	got := EffectiveDose(doses)
	approxEqual(t, got, 18, 1e-9)
}

func TestAcuteTotalEffectiveDoseIRG(t *testing.T) {
	groups := map[string]string{"Xe-133": IRG}
	got, err := AcuteTotalEffectiveDose("Xe-133", 1, 2, 3, groups)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, got, 1, 1e-9)
}

func TestAcuteTotalEffectiveDoseAerosol(t *testing.T) {
	groups := map[string]string{"Cs-137": "aerosol"}
	got, err := AcuteTotalEffectiveDose("Cs-137", 1, 2, 3, groups)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, got, 6, 1e-9)
}

func TestAcuteTotalEffectiveDoseUnknownNuclide(t *testing.T) {
	_, err := AcuteTotalEffectiveDose("Unobtainium", 1, 2, 3, map[string]string{})
	if err == nil {
		t.Fatal("expected an unknown-nuclide error")
	}
}

func TestTotalEffectiveDoseForPeriod(t *testing.T) {
	groups := map[string]string{"Cs-137": "aerosol", "Xe-133": IRG}

	if _, err := TotalEffectiveDoseForPeriod(0, "Cs-137", 1, 2, 3, 4, groups); err == nil {
		t.Fatal("expected invalid-period error for years=0")
	}
	if _, err := TotalEffectiveDoseForPeriod(2, "Cs-137", 1, 2, 3, 4, groups); err == nil {
		t.Fatal("expected not-implemented error for years>1")
	}

	got, err := TotalEffectiveDoseForPeriod(1, "Cs-137", 1, 2, 3, 4, groups)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, got, 10, 1e-9)

	got, err = TotalEffectiveDoseForPeriod(1, "Xe-133", 1, 2, 3, 4, groups)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, got, 1, 1e-9)
}

func TestResidenceTimeCoeff(t *testing.T) {
	got := ResidenceTimeCoeff(1, 2, 3)
	approxEqual(t, got, 0.333, 1e-3)
}

func TestResidenceTimeCoeffLimits(t *testing.T) {
	if got := ResidenceTimeCoeff(1, 1, 0); got != 0 {
		t.Fatalf("expected 0 at T=0, got %v", got)
	}
	limit := 1.0 / (0.5 + 0.5)
	got := ResidenceTimeCoeff(0.5, 0.5, 1e12)
	approxEqual(t, got, limit, 1e-6)

	a := ResidenceTimeCoeff(0.1, 0.2, 10)
	b := ResidenceTimeCoeff(0.1, 0.2, 20)
	if !(b > a) {
		t.Fatalf("expected strictly increasing in T: f(10)=%v, f(20)=%v", a, b)
	}
}

func TestConcentrationIntegralCommutes(t *testing.T) {
	a, d := 3.0, 7.0
	if ConcentrationIntegral(a, d) != ConcentrationIntegral(d, a) {
		t.Fatal("concentration_integral is not commutative")
	}
}

func TestEffectiveDoseFoodInconsistentCategories(t *testing.T) {
	sa := map[string]float64{"meat": 1}
	ai := map[string]float64{"milk": 1}
	if _, err := EffectiveDoseFood(1, sa, ai); err == nil {
		t.Fatal("expected inconsistent-categories error")
	}
}

func TestEffectiveDoseFood(t *testing.T) {
	sa := map[string]float64{"meat": 2, "milk": 3}
	ai := map[string]float64{"meat": 5, "milk": 7}
	got, err := EffectiveDoseFood(2, sa, ai)
	if err != nil {
		t.Fatal(err)
	}
	// 2 * (2*5 + 3*7) = 2*31 = 62
	approxEqual(t, got, 62, 1e-9)
}

func TestFoodMaxDistance(t *testing.T) {
	distances := []float64{3, 4}
	matrix := [][][]float64{
		{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}, {11, 12}},
		{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 50}, {11, 12}},
	}
	got, err := FoodMaxDistance(distances, matrix, 0)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, got, 4, 1e-9)
}

func TestFoodMaxDistanceMinimalClip(t *testing.T) {
	distances := []float64{1, 2}
	matrix := [][][]float64{
		{{1, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}},
		{{1, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}},
	}
	got, err := FoodMaxDistance(distances, matrix, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got < 5 {
		t.Fatalf("expected result clipped to minimal_distance=5, got %v", got)
	}
}

func TestFoodMaxDistanceShapeMismatch(t *testing.T) {
	distances := []float64{1, 2, 3}
	matrix := [][][]float64{{{1}}}
	if _, err := FoodMaxDistance(distances, matrix, 0); err == nil {
		t.Fatal("expected shape-mismatch error")
	}
}

func TestDispersionCoeffYContinuousAt10000(t *testing.T) {
	py, qy := 0.04, 0.9
	below := py * math.Pow(9999.999, qy)
	at, err := DispersionCoeffY(py, qy, 10000)
	if err != nil {
		t.Fatal(err)
	}
	approxEqual(t, at, below, 1e-1)
}

func TestDispersionCoeffYOutOfRange(t *testing.T) {
	if _, err := DispersionCoeffY(1, 1, -1); err == nil {
		t.Fatal("expected out-of-range error for negative distance")
	}
	if _, err := DispersionCoeffY(1, 1, 50000); err == nil {
		t.Fatal("expected out-of-range error at distance=50000")
	}
}

func TestDispersionCoeffZ(t *testing.T) {
	got := DispersionCoeffZ(0.1, 0.9, 1000)
	want := 0.1 * math.Pow(1000, 0.9)
	approxEqual(t, got, want, 1e-9)
}

func TestVerticalDispersionSymmetric(t *testing.T) {
	// at terrainClearance == releaseEffectiveHeight (h), the n=0 pair is
	// exp(0) + exp(-(2h)^2/(2*sigma_z^2)), close to 2 when h << sigma_z,
	// the dominant contribution.
	got := VerticalDispersion(100, 1, 50, 1)
	if got < 1.9 {
		t.Fatalf("expected the n=0 term to dominate and be close to 2, got %v", got)
	}
}

func TestDepletionIsProduct(t *testing.T) {
	got := Depletion(0.5, 0.6, 0.7)
	approxEqual(t, got, 0.5*0.6*0.7, 1e-9)
}

func TestBlowoutActivityFlow(t *testing.T) {
	got := BlowoutActivityFlow(1000, 10)
	if got <= 0 {
		t.Fatalf("expected a positive flux, got %v", got)
	}
}
