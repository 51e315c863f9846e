// Package formulas encodes the pure physics equations of the РБ-134-17
// shoreline resuspension dose model: dispersion, depletion, dilution,
// deposition, food-chain accumulation, residence-time integrals and
// exposure-pathway summation. Every function here is stateless and
// side-effect free; the dependency ordering between them is wired up by
// package model's lazy evaluation graph, not by this package.
package formulas

import (
	"math"

	"github.com/czertyaka/codiri/codirierr"
	"gonum.org/v1/gonum/integrate/quad"
)

// StabilityClasses lists the six Pasquill-Gifford atmospheric stability
// classes, in the canonical order used throughout the model.
var StabilityClasses = [6]string{"A", "B", "C", "D", "E", "F"}

// IRG is the inert-gas nuclide group: only cloud-immersion dose applies.
const IRG = "IRG"

// quadPoints is the fixed Gauss-Legendre node count used in place of the
// source's adaptive scipy.integrate.quad: large enough to meet the
// rtol <= 1e-3 cross-check required for every subintegrand in
// this package, which are smooth apart from a narrow peak near xi=0.
const quadPoints = 200

// integrate evaluates the definite integral of f over [a, b] using fixed
// Gauss-Legendre quadrature. gonum's quad.Fixed has no adaptive warning
// machinery to suppress (unlike scipy.integrate.quad), so the source's
// warnings.catch_warnings wrapper has no Go analogue here.
func integrate(f func(x float64) float64, a, b float64) float64 {
	return quad.Fixed(f, a, b, quadPoints, quad.Legendre{}, 0)
}

// EffectiveDose is the max, over stability classes, of the per-class sum
// of per-nuclide doses.
// SM-134-17: (1), (2)
func EffectiveDose(nuclideAClassDoses []map[string]float64) float64 {
	totals := make(map[string]float64, len(StabilityClasses))
	for _, aclass := range StabilityClasses {
		totals[aclass] = 0
	}
	for _, nd := range nuclideAClassDoses {
		for _, aclass := range StabilityClasses {
			totals[aclass] += nd[aclass]
		}
	}
	max := math.Inf(-1)
	for _, aclass := range StabilityClasses {
		if totals[aclass] > max {
			max = totals[aclass]
		}
	}
	return max
}

// AcuteTotalEffectiveDose is the acute total effective dose due to a
// single nuclide: cloud-only for the inert-gas group, else the sum of
// cloud, inhalation and surface doses.
// SM-134-17: (3)
func AcuteTotalEffectiveDose(nuclide string, cloudED, inhED, surfED float64, groups map[string]string) (float64, error) {
	group, ok := groups[nuclide]
	if !ok {
		return 0, codirierr.UnknownNuclide(nuclide)
	}
	if group == IRG {
		return cloudED, nil
	}
	return cloudED + inhED + surfED, nil
}

// TotalEffectiveDoseForPeriod is the total effective dose due to a single
// nuclide accumulated over the given number of years since the accident.
// Only year=1 is implemented; multi-year food-chain accumulation
// dynamics are out of scope.
// SM-134-17: (4)
func TotalEffectiveDoseForPeriod(years int, nuclide string, cloudED, inhED, surfED, foodED float64, groups map[string]string) (float64, error) {
	group, ok := groups[nuclide]
	if !ok {
		return 0, codirierr.UnknownNuclide(nuclide)
	}
	if years <= 0 {
		return 0, codirierr.InvalidPeriod(years)
	}
	if group == IRG {
		return cloudED, nil
	}
	if years == 1 {
		return cloudED + inhED + surfED + foodED, nil
	}
	return 0, codirierr.NotImplemented("multi-year period dose is not implemented")
}

// EffectiveDoseCloud is the effective dose due to external exposure from
// the radioactive cloud.
// SM-134-17: (5)
func EffectiveDoseCloud(concentrationIntegral, doseCoeff float64) float64 {
	return concentrationIntegral * doseCoeff
}

// EffectiveDoseSurface is the effective dose due to external exposure
// from contaminated soil.
// SM-134-17: (6)
func EffectiveDoseSurface(deposition, doseCoeff, residenceTimeCoeff float64) float64 {
	return deposition * doseCoeff * residenceTimeCoeff
}

// ResidenceTimeCoeff is the time-integrated surface-irradiation factor
// accounting for both radioactive decay and non-radioactive dose-rate
// decay.
// SM-134-17: (7)
func ResidenceTimeCoeff(doseRateDecayCoeff, radioDecayCoeff, residenceTime float64) float64 {
	decayCoeff := doseRateDecayCoeff + radioDecayCoeff
	return (1 - math.Exp(-decayCoeff*residenceTime)) / decayCoeff
}

// EffectiveDoseInhalation is the effective dose due to internal exposure
// from inhalation.
// SM-134-17: (8)
func EffectiveDoseInhalation(concentrationIntegral, doseCoeff, respirationRate float64) float64 {
	return concentrationIntegral * doseCoeff * respirationRate
}

// EffectiveDoseFood is the effective dose due to internal exposure from
// dietary intake, summed over food categories. foodSpecificActivity and
// annualFoodIntake must share the same key set.
// SM-134-17: (9)
func EffectiveDoseFood(doseCoeff float64, foodSpecificActivity, annualFoodIntake map[string]float64) (float64, error) {
	if !sameKeys(foodSpecificActivity, annualFoodIntake) {
		got := keys(foodSpecificActivity)
		want := keys(annualFoodIntake)
		return 0, codirierr.InconsistentCategories(got, want)
	}
	var sum float64
	for cat, sa := range foodSpecificActivity {
		sum += sa * annualFoodIntake[cat]
	}
	return doseCoeff * sum, nil
}

// AnnualFoodIntake scales the adult annual food intake for a food
// category by the ratio of the age group's daily metabolic cost to the
// adult daily metabolic cost.
// SM-134-17: (10)
func AnnualFoodIntake(dailyMetabolicCost, dailyMetabolicCostAdults, annualFoodIntakeAdults float64) float64 {
	return dailyMetabolicCost / dailyMetabolicCostAdults * annualFoodIntakeAdults
}

// FoodMaxDistance picks x_max: the distance at which the food dose is
// maximal, clipped below by minimalDistance. doses is indexed
// [distance][class][nuclide]; ties resolve to the largest such distance
// (matching np.where(...)[0][-1] in the source).
// SM-134-17: (11)
func FoodMaxDistance(distances []float64, doses [][][]float64, minimalDistance float64) (float64, error) {
	if len(doses) != len(distances) {
		return 0, codirierr.ShapeMismatch("food_max_distance: first matrix band must match the distances set")
	}
	if len(doses) > 0 && len(doses[0]) != len(StabilityClasses) {
		return 0, codirierr.ShapeMismatch("food_max_distance: second matrix band must match atmospheric classes")
	}

	rowDose := make([]float64, len(distances))
	for i, byClass := range doses {
		maxOverClass := math.Inf(-1)
		for _, byNuclide := range byClass {
			var sum float64
			for _, v := range byNuclide {
				sum += v
			}
			if sum > maxOverClass {
				maxOverClass = sum
			}
		}
		rowDose[i] = maxOverClass
	}

	maxDose := math.Inf(-1)
	for _, d := range rowDose {
		if d > maxDose {
			maxDose = d
		}
	}
	xMax := minimalDistance
	for i, d := range rowDose {
		if d == maxDose {
			xMax = distances[i]
		}
	}
	if xMax < minimalDistance {
		xMax = minimalDistance
	}
	return xMax, nil
}

// ConcentrationIntegral is the radionuclide timed concentration
// integral.
// SM-134-17: A1(1)
func ConcentrationIntegral(activity, dilutionFactor float64) float64 {
	return activity * dilutionFactor
}

// HeightDistConcentrationIntegral is the height-distributed counterpart
// of ConcentrationIntegral.
// SM-134-17: A1(2)
func HeightDistConcentrationIntegral(activity, dilutionFactor float64) float64 {
	return activity * dilutionFactor
}

// Deposition is the total (dry + wet) mass settled on the soil surface
// per unit area.
// SM-134-17: A1(5)
func Deposition(sedimentationRate, sedimentDetachmentConstant, concentrationIntegral, heightDistConcentrationIntegral float64) float64 {
	return sedimentationRate*concentrationIntegral + sedimentDetachmentConstant*heightDistConcentrationIntegral
}

// FoodSpecificActivity mixes a 0.2-weighted wet-deposition component and
// a full dry-deposition component through the atmosphere- and
// soil-accumulation factors.
// SM-134-17: A1(6)
func FoodSpecificActivity(sedimentationRate, sedimentDetachmentConstant, concentrationIntegral, heightDistConcentrationIntegral, atmosphereAccumFactor, soilAccumFactor float64) float64 {
	wet := sedimentationRate*concentrationIntegral + 0.2*sedimentDetachmentConstant*heightDistConcentrationIntegral
	dry := sedimentationRate*concentrationIntegral + sedimentDetachmentConstant*heightDistConcentrationIntegral
	return wet*atmosphereAccumFactor + dry*soilAccumFactor
}

// DilutionFactor maps source activity to a surface-air concentration
// integral: a constant factor times a 1-D integral over
// [-halfSquareSide, +halfSquareSide] of a subintegrand built from the
// vertical-dispersion sum and sigma_y/sigma_z.
// SM-134-17: A2(11)
func DilutionFactor(depletion float64, dispersionCoeffY, dispersionCoeffZ func(x float64) float64, windSpeed float64, verticalDispersion func(terrainClearance, x float64) float64, halfSquareSide, distance, terrainClearance float64) float64 {
	factor := depletion / (math.Sqrt(2*math.Pi) * windSpeed * 4 * halfSquareSide * halfSquareSide)
	subintegral := func(xi float64) float64 {
		arg := distance - xi
		return verticalDispersion(terrainClearance, arg) / dispersionCoeffZ(arg) *
			math.Erf(halfSquareSide/(math.Sqrt(2)*dispersionCoeffY(arg)))
	}
	return factor * integrate(subintegral, -halfSquareSide, halfSquareSide)
}

// VerticalDispersion sums, over n in {-2,-1,0,1,2}, two Gaussian
// exponentials accounting for mixed-layer reflection.
// SM-134-17: A2(12)
func VerticalDispersion(mixedLayerHeight, releaseEffectiveHeight, dispersionCoeffZ, terrainClearance float64) float64 {
	var sum float64
	expr1 := 2 * dispersionCoeffZ * dispersionCoeffZ
	for n := -2; n <= 2; n++ {
		expr2 := 2 * float64(n) * mixedLayerHeight
		a := expr2 + releaseEffectiveHeight - terrainClearance
		b := expr2 - releaseEffectiveHeight - terrainClearance
		sum += math.Exp(-(a*a)/expr1) + math.Exp(-(b*b)/expr1)
	}
	return sum
}

// SedimentationFactor is the height-distributed analogue of
// DilutionFactor.
// SM-134-17: A2(13)
func SedimentationFactor(depletion, windSpeed, halfSquareSide float64, dispersionCoeffY func(x float64) float64, distance float64) float64 {
	factor := depletion / (math.Sqrt(math.Pi) * windSpeed * 4 * halfSquareSide * halfSquareSide)
	subintegral := func(xi float64) float64 {
		return math.Erf(halfSquareSide / (math.Sqrt(2) * dispersionCoeffY(distance-xi)))
	}
	return factor * integrate(subintegral, -halfSquareSide, halfSquareSide)
}

// DepletionRadiation is the cloud depletion fraction due to radioactive
// decay alone.
// SM-134-17: A2(14)
func DepletionRadiation(radioactiveDecayCoeff, distance, windSpeed float64) float64 {
	return math.Exp(-(radioactiveDecayCoeff * distance) / windSpeed)
}

// DepletionDry is the cloud depletion fraction due to dry deposition
// along the path.
// SM-134-17: A2(15)
func DepletionDry(sedimentationRate, windSpeed float64, dispersionCoeffZ func(x float64) float64, releaseEffectiveHeight, distance float64) float64 {
	factor := -math.Sqrt(2/math.Pi) * sedimentationRate / windSpeed
	subintegral := func(x float64) float64 {
		sigmaZ := dispersionCoeffZ(x)
		return math.Exp(-(releaseEffectiveHeight*releaseEffectiveHeight)/(2*sigmaZ*sigmaZ)) / sigmaZ
	}
	return math.Exp(factor * integrate(subintegral, 0, distance))
}

// DepletionWet is the cloud depletion fraction due to wash-out.
// windSpeed is indexed by stability class at every call site (see
// SPEC_FULL.md section 11's open-question resolution), never by
// nuclide.
// SM-134-17: A2(16)
func DepletionWet(sedimentDetachmentConstant, distance, windSpeed float64) float64 {
	return math.Exp(-sedimentDetachmentConstant * distance / windSpeed)
}

// SedimentDetachmentConstant is the washout rate constant.
// SM-134-17: A2(17)
func SedimentDetachmentConstant(unitlessWashingCapacity, precipitationRate, standardWashingCapacity float64) float64 {
	return unitlessWashingCapacity * precipitationRate * standardWashingCapacity
}

// Depletion is the combined cloud depletion fraction remaining after
// radioactive decay, dry deposition and wash-out along the path.
// SM-134-17: A2(18)
func Depletion(depletionRad, depletionDry, depletionWet float64) float64 {
	return depletionRad * depletionDry * depletionWet
}

// DispersionCoeffZ is the vertical dispersion coefficient.
// SM-134-17: A2(19)
func DispersionCoeffZ(pz, qz, distance float64) float64 {
	return pz * math.Pow(distance, qz)
}

// DispersionCoeffY is the horizontal dispersion coefficient. The
// [10000, 50000) branch uses p_y*10000^(q_y-0.5)*sqrt(x), the form that
// is continuous with the x<10000 branch at x=10000 (see SPEC_FULL.md
// section 11).
// SM-134-17: A2(20)
func DispersionCoeffY(py, qy, distance float64) (float64, error) {
	switch {
	case distance < 0 || distance >= 50000:
		return 0, codirierr.OutOfRange(distance)
	case distance < 10000:
		return py * math.Pow(distance, qy), nil
	default:
		return py * math.Pow(10000, qy-0.5) * math.Sqrt(distance), nil
	}
}

// BlowoutActivityFlow is the windspeed-driven particulate resuspension
// flux from a contaminated surface, ported from
// original_source/src/activity.py.
func BlowoutActivityFlow(specificActivity, windSpeed float64) float64 {
	const (
		tau               = 0.0078 // N/m^2
		criticalWindSpeed = 5.2    // m/s
		bCritical         = 45e-6
		alpha             = 9
	)
	factor := specificActivity * tau * bCritical / windSpeed
	exp := math.Exp(alpha * (1 - math.Pow(criticalWindSpeed/windSpeed, 2)))
	return factor * exp
}

func sameKeys(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func keys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
