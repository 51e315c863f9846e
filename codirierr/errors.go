// Package codirierr defines the named error kinds that the model and its
// supporting packages can raise, following the taxonomy of
// ActivityMapError and friends in the source this system was distilled
// from. Each kind is its own type rather than a single string-tagged
// error so that callers can errors.As against the kind they care about.
package codirierr

import "fmt"

// Kind identifies one of the error kinds in the system's error table.
type Kind string

const (
	KindExceedingStep                 Kind = "exceeding-step"
	KindInvalidMeasurementLocation     Kind = "invalid-measurement-location"
	KindExceedingMeasurementProximity Kind = "exceeding-measurement-proximity"
	KindConstraintsCompliance         Kind = "constraints-compliance"
	KindUnknownNuclide                Kind = "unknown-nuclide"
	KindInvalidPeriod                 Kind = "invalid-period"
	KindNotImplemented                Kind = "not-implemented"
	KindInconsistentCategories        Kind = "inconsistent-categories"
	KindOutOfRange                    Kind = "out-of-range"
	KindShapeMismatch                 Kind = "shape-mismatch"
	KindOutOfMap                      Kind = "out-of-map"
)

// CodiriError is implemented by every error kind defined in this package.
type CodiriError interface {
	error
	Kind() Kind
}

type kindError struct {
	kind  Kind
	value string
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.value)
}

func (e *kindError) Kind() Kind { return e.kind }

func newKindError(kind Kind, format string, args ...interface{}) *kindError {
	return &kindError{kind: kind, value: fmt.Sprintf(format, args...)}
}

// ExceedingStep reports that a requested raster cell size exceeds the
// map's extent, so a raster of at least one cell could not be built.
func ExceedingStep(xRes, yRes int) error {
	return newKindError(KindExceedingStep, "raster step too large for map extent (x_res=%d, y_res=%d)", xRes, yRes)
}

// InvalidMeasurementLocation reports that a measurement point lies
// strictly inside a basin's body instead of near its shoreline.
func InvalidMeasurementLocation(lon, lat float64) error {
	return newKindError(KindInvalidMeasurementLocation, "measurement at (%g, %g) lies inside the basin body", lon, lat)
}

// ExceedingMeasurementProximity reports that a measurement point is
// farther than the configured proximity from every shoreline segment.
func ExceedingMeasurementProximity(lon, lat, proximity float64) error {
	return newKindError(KindExceedingMeasurementProximity, "measurement at (%g, %g) is farther than %g m from every shoreline segment", lon, lat, proximity)
}

// ConstraintsCompliance reports that an Input failed a registered
// constraint.
func ConstraintsCompliance(message string) error {
	return newKindError(KindConstraintsCompliance, "%s", message)
}

// UnknownNuclide reports that a nuclide name is absent from the
// reference store or a nuclide-group mapping.
func UnknownNuclide(nuclide string) error {
	return newKindError(KindUnknownNuclide, "unknown nuclide %q", nuclide)
}

// InvalidPeriod reports a non-positive number of years requested for a
// period dose.
func InvalidPeriod(years int) error {
	return newKindError(KindInvalidPeriod, "invalid period %d years, must be > 0", years)
}

// NotImplemented reports a period dose for more than one year, which the
// model does not compute (multi-year food-chain accumulation dynamics
// are out of scope).
func NotImplemented(message string) error {
	return newKindError(KindNotImplemented, "%s", message)
}

// InconsistentCategories reports that the food-specific-activity and
// annual-food-intake maps do not share the same key set.
func InconsistentCategories(got, want []string) error {
	return newKindError(KindInconsistentCategories, "food categories %v do not match expected %v", got, want)
}

// OutOfRange reports a dispersion distance outside the valid domain
// [0, 50000) m.
func OutOfRange(distance float64) error {
	return newKindError(KindOutOfRange, "distance %g m is out of range [0, 50000)", distance)
}

// ShapeMismatch reports a food-max-distance dose matrix whose shape does
// not match the distances slice / stability-class count. This is a
// programmer error, not a runtime condition.
func ShapeMismatch(message string) error {
	return newKindError(KindShapeMismatch, "%s", message)
}

// OutOfMap reports that a candidate basin polygon is not properly
// contained by the map's bounding ring, or is equal to it.
func OutOfMap(message string) error {
	return newKindError(KindOutOfMap, "%s", message)
}
