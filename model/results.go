package model

// PerClass holds one quantity's value per Pasquill-Gifford stability
// class.
type PerClass map[string]float64

// Results is a plain value returned from a single Model.Calculate call:
// every per-nuclide, per-class table the calculation produced, plus the
// two scalar maxima the model is ultimately asked for. Results carries
// no behavior and is never shared mutable state between calculations;
// it is safe to share and copy freely.
type Results struct {
	ECloud       map[string]PerClass
	EInhalation  map[string]PerClass
	ESurface     map[string]PerClass
	EFood        map[string]PerClass
	ETotalAcute  map[string]PerClass
	ETotalPeriod map[string]PerClass

	ConcentrationIntegral map[string]PerClass
	Deposition            map[string]PerClass
	Depletion             map[string]PerClass

	EMax10Acute  float64
	EMax10Period float64

	// FoodMaxDistance is the x_max distance, metres, the food pathway was
	// evaluated at for this calculation.
	FoodMaxDistance float64

	// BlowoutFlux is a diagnostic, per nuclide, of the windspeed-driven
	// resuspension flux leaving the source footprint over the input's
	// blowout time, ported from original_source/src/activity.py. It is
	// not folded into any dose pathway above.
	BlowoutFlux map[string]float64
}

func newResults() *Results {
	return &Results{
		ECloud:                make(map[string]PerClass),
		EInhalation:           make(map[string]PerClass),
		ESurface:              make(map[string]PerClass),
		EFood:                 make(map[string]PerClass),
		ETotalAcute:           make(map[string]PerClass),
		ETotalPeriod:          make(map[string]PerClass),
		ConcentrationIntegral: make(map[string]PerClass),
		Deposition:            make(map[string]PerClass),
		Depletion:             make(map[string]PerClass),
		BlowoutFlux:           make(map[string]float64),
	}
}

func (r *Results) set(table map[string]PerClass, nuclide, aclass string, value float64) {
	pc, ok := table[nuclide]
	if !ok {
		pc = make(PerClass)
		table[nuclide] = pc
	}
	pc[aclass] = value
}
