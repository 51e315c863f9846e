// Package model wires package formulas' pure equations into a single
// per-calculation lazy evaluation graph, mirroring Model/LazyEvaluation
// in the source this system is ported from: every intermediate formula
// is built fresh for one Calculate call and discarded afterwards, with
// memoization only within that one call's lifetime.
package model

import (
	"fmt"

	"github.com/czertyaka/codiri/formulas"
	"github.com/czertyaka/codiri/lazyeval"
	"github.com/czertyaka/codiri/reference"
)

// Model ties a reference data store to the constraints an Input must
// satisfy before a calculation is attempted.
type Model struct {
	ref         reference.IReference
	constraints *Constraints
}

// NewModel builds a Model against ref, with DefaultConstraints.
func NewModel(ref reference.IReference) *Model {
	return &Model{ref: ref, constraints: DefaultConstraints(ref)}
}

// xMaxSamples is the number of distances food_max_distance searches
// over, quadratically spaced between halfSquare and
// maxDistance-halfSquare (see foodMaxDistances) so resolution is finest
// near the source, where the food dose curve is steepest.
const xMaxSamples = 100

// dispersionPanic unwinds a DispersionCoeffY out-of-range error out of
// the plain float64-returning closures formulas.DilutionFactor,
// formulas.SedimentationFactor and formulas.DepletionDry integrate
// over, mirroring the source's behavior of letting the exception
// propagate straight out of scipy.integrate.quad. Calculate recovers it
// at the top level.
type dispersionPanic struct{ err error }

// Calculate runs one dose calculation for inp. ok is false, with a nil
// error, when inp is not yet fully populated or fails a registered
// constraint: both are expected, non-fatal outcomes. A non-nil error
// means a reference-data lookup failed outright (an unknown nuclide
// slipping past the constraint check, a malformed store, and so on).
func (m *Model) Calculate(inp *Input) (results *Results, ok bool, err error) {
	if inp == nil || !inp.Initialized() {
		return nil, false, nil
	}
	if cerr := m.constraints.Validate(inp); cerr != nil {
		return nil, false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			dp, isDP := r.(dispersionPanic)
			if !isDP {
				panic(r)
			}
			results, ok, err = nil, false, fmt.Errorf("codiri.Model.Calculate: %v", dp.err)
		}
	}()

	g, err := newGraph(m.ref, inp)
	if err != nil {
		return nil, false, fmt.Errorf("codiri.Model.Calculate: %v", err)
	}
	res, err := g.run()
	if err != nil {
		return nil, false, fmt.Errorf("codiri.Model.Calculate: %v", err)
	}
	return res, true, nil
}

// calcGraph holds every lazy node for a single Calculate call, plus the
// scalar context (terrain roughness, wind speeds, geometry) every node
// closes over.
type calcGraph struct {
	ref reference.IReference
	inp *Input

	nuclideGroups map[string]string
	terrainRough  float64
	halfSquare    float64

	sigmaZ          *lazyeval.LazyEval
	sigmaY          *lazyeval.LazyEval
	sedDetach       *lazyeval.LazyEval
	depletionRad    *lazyeval.LazyEval
	depletionDry    *lazyeval.LazyEval
	depletionWet    *lazyeval.LazyEval
	depletion       *lazyeval.LazyEval
	dilution        *lazyeval.LazyEval
	sedimentation   *lazyeval.LazyEval
	ci              *lazyeval.LazyEval
	hdci            *lazyeval.LazyEval
	deposition      *lazyeval.LazyEval
	foodSpecificAct *lazyeval.LazyEval
	annualFoodIntk  *lazyeval.LazyEval
	edFood          *lazyeval.LazyEval
	edCloud         *lazyeval.LazyEval
	edInhalation    *lazyeval.LazyEval
	residenceCoeff  *lazyeval.LazyEval
	edSurface       *lazyeval.LazyEval
	edTotalAcute    *lazyeval.LazyEval
	edTotalPeriod   *lazyeval.LazyEval
}

func newGraph(ref reference.IReference, inp *Input) (*calcGraph, error) {
	rough, err := ref.TerrainRoughness(inp.TerrainType())
	if err != nil {
		return nil, err
	}

	groups := make(map[string]string, len(inp.Nuclides()))
	for _, n := range inp.Nuclides() {
		g, err := ref.NuclideGroup(n)
		if err != nil {
			return nil, err
		}
		groups[n] = g
	}

	g := &calcGraph{
		ref:           ref,
		inp:           inp,
		nuclideGroups: groups,
		terrainRough:  rough,
		halfSquare:    inp.SquareSide() / 2,
	}
	g.build()
	return g, nil
}

func (g *calcGraph) windSpeed(aclass string) float64 {
	return g.inp.ExtremeWindSpeeds()[aclass]
}

func (g *calcGraph) build() {
	ref, inp := g.ref, g.inp

	g.sigmaZ = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, x := args[0].(string), args[1].(float64)
		coeffs, err := ref.DiffusionCoefficients(aclass)
		if err != nil {
			return nil, err
		}
		return formulas.DispersionCoeffZ(coeffs.Pz, coeffs.Qz, x), nil
	})

	g.sigmaY = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, x := args[0].(string), args[1].(float64)
		coeffs, err := ref.DiffusionCoefficients(aclass)
		if err != nil {
			return nil, err
		}
		return formulas.DispersionCoeffY(coeffs.Py, coeffs.Qy, x)
	})

	g.sedDetach = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		nuclide := args[0].(string)
		wc, err := ref.StandardWashingCapacity(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.SedimentDetachmentConstant(ref.UnitlessWashingCapacity(), inp.PrecipitationRate(), wc), nil
	})

	g.depletionRad = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		decay, err := ref.RadioDecayCoeff(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.DepletionRadiation(decay, x, g.windSpeed(aclass)), nil
	})

	g.depletionDry = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		depRate, err := ref.DepositionRate(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.DepletionDry(depRate, g.windSpeed(aclass), g.sigmaZFunc(aclass), g.terrainRough, x), nil
	})

	g.depletionWet = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		sd, err := g.sedDetach.Call(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.DepletionWet(sd.(float64), x, g.windSpeed(aclass)), nil
	})

	g.depletion = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		rad, err := g.depletionRad.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		dry, err := g.depletionDry.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		wet, err := g.depletionWet.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		return formulas.Depletion(rad.(float64), dry.(float64), wet.(float64)), nil
	})

	g.dilution = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		depl, err := g.depletion.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		vd := g.verticalDispersionFunc(aclass)
		return formulas.DilutionFactor(depl.(float64), g.sigmaYFunc(aclass), g.sigmaZFunc(aclass),
			g.windSpeed(aclass), vd, g.halfSquare, x, ref.TerrainClearance()), nil
	})

	g.sedimentation = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		depl, err := g.depletion.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		return formulas.SedimentationFactor(depl.(float64), g.windSpeed(aclass), g.halfSquare, g.sigmaYFunc(aclass), x), nil
	})

	g.ci = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		dil, err := g.dilution.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		return formulas.ConcentrationIntegral(inp.SpecificActivities()[nuclide], dil.(float64)), nil
	})

	g.hdci = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		sed, err := g.sedimentation.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		return formulas.HeightDistConcentrationIntegral(inp.SpecificActivities()[nuclide], sed.(float64)), nil
	})

	g.deposition = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		depRate, err := ref.DepositionRate(nuclide)
		if err != nil {
			return nil, err
		}
		sd, err := g.sedDetach.Call(nuclide)
		if err != nil {
			return nil, err
		}
		ci, err := g.ci.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		hdci, err := g.hdci.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		return formulas.Deposition(depRate, sd.(float64), ci.(float64), hdci.(float64)), nil
	})

	g.foodSpecificAct = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x, food := args[0].(string), args[1].(string), args[2].(float64), args[3].(string)
		depRate, err := ref.DepositionRate(nuclide)
		if err != nil {
			return nil, err
		}
		sd, err := g.sedDetach.Call(nuclide)
		if err != nil {
			return nil, err
		}
		ci, err := g.ci.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		hdci, err := g.hdci.Call(aclass, nuclide, x)
		if err != nil {
			return nil, err
		}
		atm, err := ref.AccumulationFactor(nuclide, food, reference.AccumulationAtmosphere)
		if err != nil {
			return nil, err
		}
		soil, err := ref.AccumulationFactor(nuclide, food, reference.AccumulationSoil)
		if err != nil {
			return nil, err
		}
		return formulas.FoodSpecificActivity(depRate, sd.(float64), ci.(float64), hdci.(float64), atm, soil), nil
	})

	g.annualFoodIntk = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		ageGroupID, food := args[0].(int), args[1].(string)
		dmc, err := ref.DailyMetabolicCostForGroup(ageGroupID)
		if err != nil {
			return nil, err
		}
		dmcAdults, err := ref.DailyMetabolicCost(AdultAge)
		if err != nil {
			return nil, err
		}
		return formulas.AnnualFoodIntake(dmc, dmcAdults, inp.AdultAnnualFoodIntake()[food]), nil
	})

	g.edFood = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, x := args[0].(string), args[1].(string), args[2].(float64)
		ageGroupID, err := ref.FoodCriticalAgeGroup(nuclide)
		if err != nil {
			return nil, err
		}
		doseCoeff, err := ref.InhalationDoseCoeff(nuclide)
		if err != nil {
			return nil, err
		}
		sa := make(map[string]float64, len(ref.AllFoodCategories()))
		ai := make(map[string]float64, len(ref.AllFoodCategories()))
		for _, food := range ref.AllFoodCategories() {
			v, err := g.foodSpecificAct.Call(aclass, nuclide, x, food)
			if err != nil {
				return nil, err
			}
			sa[food] = v.(float64)
			v, err = g.annualFoodIntk.Call(ageGroupID, food)
			if err != nil {
				return nil, err
			}
			ai[food] = v.(float64)
		}
		return formulas.EffectiveDoseFood(doseCoeff, sa, ai)
	})

	g.edCloud = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide := args[0].(string), args[1].(string)
		ci, err := g.ci.Call(aclass, nuclide, inp.Distance())
		if err != nil {
			return nil, err
		}
		doseCoeff, err := ref.CloudDoseCoeff(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.EffectiveDoseCloud(ci.(float64), doseCoeff), nil
	})

	g.edInhalation = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide := args[0].(string), args[1].(string)
		ci, err := g.ci.Call(aclass, nuclide, inp.Distance())
		if err != nil {
			return nil, err
		}
		doseCoeff, err := ref.InhalationDoseCoeff(nuclide)
		if err != nil {
			return nil, err
		}
		resp, err := ref.RespirationRate(inp.Age())
		if err != nil {
			return nil, err
		}
		return formulas.EffectiveDoseInhalation(ci.(float64), doseCoeff, resp), nil
	})

	g.residenceCoeff = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		nuclide := args[0].(string)
		decay, err := ref.RadioDecayCoeff(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.ResidenceTimeCoeff(ref.DoseRateDecayCoeff(), decay, ref.ResidenceTime()), nil
	})

	g.edSurface = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide := args[0].(string), args[1].(string)
		dep, err := g.deposition.Call(aclass, nuclide, inp.Distance())
		if err != nil {
			return nil, err
		}
		doseCoeff, err := ref.SurfaceDoseCoeff(nuclide)
		if err != nil {
			return nil, err
		}
		rtc, err := g.residenceCoeff.Call(nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.EffectiveDoseSurface(dep.(float64), doseCoeff, rtc.(float64)), nil
	})

	g.edTotalAcute = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide := args[0].(string), args[1].(string)
		cloud, err := g.edCloud.Call(aclass, nuclide)
		if err != nil {
			return nil, err
		}
		inh, err := g.edInhalation.Call(aclass, nuclide)
		if err != nil {
			return nil, err
		}
		surf, err := g.edSurface.Call(aclass, nuclide)
		if err != nil {
			return nil, err
		}
		return formulas.AcuteTotalEffectiveDose(nuclide, cloud.(float64), inh.(float64), surf.(float64), g.nuclideGroups)
	})

	g.edTotalPeriod = lazyeval.New(func(args ...interface{}) (interface{}, error) {
		aclass, nuclide, xMax := args[0].(string), args[1].(string), args[2].(float64)
		cloud, err := g.edCloud.Call(aclass, nuclide)
		if err != nil {
			return nil, err
		}
		inh, err := g.edInhalation.Call(aclass, nuclide)
		if err != nil {
			return nil, err
		}
		surf, err := g.edSurface.Call(aclass, nuclide)
		if err != nil {
			return nil, err
		}
		food, err := g.edFood.Call(aclass, nuclide, xMax)
		if err != nil {
			return nil, err
		}
		return formulas.TotalEffectiveDoseForPeriod(1, nuclide, cloud.(float64), inh.(float64), surf.(float64), food.(float64), g.nuclideGroups)
	})
}

// sigmaZFunc and sigmaYFunc adapt the memoized sigmaZ/sigmaY nodes to
// the plain func(x float64) float64 signature
// formulas.DilutionFactor/SedimentationFactor/DepletionDry integrate
// over. A DispersionCoeffY domain error panics with dispersionPanic,
// mirroring the source's exception propagating straight out of
// scipy.integrate.quad.
func (g *calcGraph) sigmaZFunc(aclass string) func(x float64) float64 {
	return func(x float64) float64 {
		v, err := g.sigmaZ.Call(aclass, x)
		if err != nil {
			panic(dispersionPanic{err})
		}
		return v.(float64)
	}
}

func (g *calcGraph) sigmaYFunc(aclass string) func(x float64) float64 {
	return func(x float64) float64 {
		v, err := g.sigmaY.Call(aclass, x)
		if err != nil {
			panic(dispersionPanic{err})
		}
		return v.(float64)
	}
}

func (g *calcGraph) verticalDispersionFunc(aclass string) func(terrainClearance, x float64) float64 {
	sigmaZ := g.sigmaZFunc(aclass)
	return func(terrainClearance, x float64) float64 {
		return formulas.VerticalDispersion(g.ref.MixingLayerHeight(), g.terrainRough, sigmaZ(x), terrainClearance)
	}
}

// foodMaxDistances returns the quadratically spaced candidate distances
// food_max_distance searches over. DilutionFactor/SedimentationFactor
// evaluate the dispersion coefficients at distance +/- halfSquare, so
// the candidates are confined to [halfSquare, maxDistance-halfSquare],
// both ends included, rather than [0, maxDistance]: the closure of the
// window DefaultConstraints requires of Input.Distance itself.
func foodMaxDistances(halfSquare float64) []float64 {
	lo, hi := halfSquare, maxDistance-halfSquare
	out := make([]float64, xMaxSamples)
	for i := range out {
		frac := float64(i) / float64(xMaxSamples-1)
		out[i] = lo + frac*frac*(hi-lo)
	}
	return out
}

// foodDoseRow evaluates edFood at distance x for every (class,
// nuclide) pair, one row of the food-dose matrix food_max_distance
// searches over. skip is true when x falls outside a dispersion
// formula's domain despite the caller's own windowing (a reference
// store with unusual diffusion coefficients, say): that candidate is
// dropped from the search rather than aborting the whole calculation.
func (g *calcGraph) foodDoseRow(classes, nuclides []string, x float64) (row [][]float64, skip bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, isDP := r.(dispersionPanic); isDP {
				row, skip, err = nil, true, nil
				return
			}
			panic(r)
		}
	}()

	row = make([][]float64, len(classes))
	for j, aclass := range classes {
		row[j] = make([]float64, len(nuclides))
		for k, nuclide := range nuclides {
			v, cerr := g.edFood.Call(aclass, nuclide, x)
			if cerr != nil {
				return nil, false, cerr
			}
			row[j][k] = v.(float64)
		}
	}
	return row, false, nil
}

// run evaluates the full graph over every nuclide/stability-class pair
// and assembles a Results.
func (g *calcGraph) run() (*Results, error) {
	nuclides := g.inp.Nuclides()
	classes := formulas.StabilityClasses[:]

	candidates := foodMaxDistances(g.halfSquare)
	var distances []float64
	var doses [][][]float64
	for _, x := range candidates {
		row, skip, err := g.foodDoseRow(classes, nuclides, x)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		distances = append(distances, x)
		doses = append(doses, row)
	}
	xMax, err := formulas.FoodMaxDistance(distances, doses, g.inp.BufferAreaRadius())
	if err != nil {
		return nil, err
	}

	res := newResults()
	res.FoodMaxDistance = xMax

	acuteTotals := make([]map[string]float64, 0, len(nuclides))
	periodTotals := make([]map[string]float64, 0, len(nuclides))

	for _, nuclide := range nuclides {
		acuteByClass := make(map[string]float64, len(classes))
		periodByClass := make(map[string]float64, len(classes))

		for _, aclass := range classes {
			ci, err := g.ci.Call(aclass, nuclide, g.inp.Distance())
			if err != nil {
				return nil, err
			}
			dep, err := g.deposition.Call(aclass, nuclide, g.inp.Distance())
			if err != nil {
				return nil, err
			}
			depl, err := g.depletion.Call(aclass, nuclide, g.inp.Distance())
			if err != nil {
				return nil, err
			}
			cloud, err := g.edCloud.Call(aclass, nuclide)
			if err != nil {
				return nil, err
			}
			inh, err := g.edInhalation.Call(aclass, nuclide)
			if err != nil {
				return nil, err
			}
			surf, err := g.edSurface.Call(aclass, nuclide)
			if err != nil {
				return nil, err
			}
			food, err := g.edFood.Call(aclass, nuclide, xMax)
			if err != nil {
				return nil, err
			}
			acute, err := g.edTotalAcute.Call(aclass, nuclide)
			if err != nil {
				return nil, err
			}
			period, err := g.edTotalPeriod.Call(aclass, nuclide, xMax)
			if err != nil {
				return nil, err
			}

			res.set(res.ConcentrationIntegral, nuclide, aclass, ci.(float64))
			res.set(res.Deposition, nuclide, aclass, dep.(float64))
			res.set(res.Depletion, nuclide, aclass, depl.(float64))
			res.set(res.ECloud, nuclide, aclass, cloud.(float64))
			res.set(res.EInhalation, nuclide, aclass, inh.(float64))
			res.set(res.ESurface, nuclide, aclass, surf.(float64))
			res.set(res.EFood, nuclide, aclass, food.(float64))
			res.set(res.ETotalAcute, nuclide, aclass, acute.(float64))
			res.set(res.ETotalPeriod, nuclide, aclass, period.(float64))

			acuteByClass[aclass] = acute.(float64)
			periodByClass[aclass] = period.(float64)
		}

		acuteTotals = append(acuteTotals, acuteByClass)
		periodTotals = append(periodTotals, periodByClass)

		windspeed := g.maxWindSpeed()
		activity := g.inp.SpecificActivities()[nuclide]
		flux := formulas.BlowoutActivityFlow(activity, windspeed)
		res.BlowoutFlux[nuclide] = flux * g.inp.BlowoutTime() * g.inp.SquareSide() * g.inp.SquareSide()
	}

	res.EMax10Acute = formulas.EffectiveDose(acuteTotals)
	res.EMax10Period = formulas.EffectiveDose(periodTotals)

	return res, nil
}

func (g *calcGraph) maxWindSpeed() float64 {
	var max float64
	for _, v := range g.inp.ExtremeWindSpeeds() {
		if v > max {
			max = v
		}
	}
	return max
}
