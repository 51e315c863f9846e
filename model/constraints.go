package model

import (
	"fmt"

	"github.com/czertyaka/codiri/codirierr"
	"github.com/czertyaka/codiri/reference"
)

// Constraint is a single named predicate an Input must satisfy before a
// calculation is attempted, matching IConstraints/Constraint in the
// source this system is ported from.
type Constraint struct {
	Validate func(*Input) bool
	Message  func(*Input) string
}

// Constraints is an ordered list of Constraint, checked in order.
type Constraints struct {
	list []Constraint
}

// Add registers a constraint.
func (c *Constraints) Add(validate func(*Input) bool, message func(*Input) string) {
	c.list = append(c.list, Constraint{Validate: validate, Message: message})
}

// Validate runs every registered constraint against inp, returning a
// codirierr.ConstraintsCompliance error for the first one that fails.
func (c *Constraints) Validate(inp *Input) error {
	for _, constraint := range c.list {
		if !constraint.Validate(inp) {
			return codirierr.ConstraintsCompliance(constraint.Message(inp))
		}
	}
	return nil
}

// maxDistance is the upper bound DispersionCoeffY's domain tolerates:
// [0, 50000). DilutionFactor/SedimentationFactor evaluate that function
// at distance +/- halfSquare for every source-footprint offset the
// dilution integral sweeps, so a receptor must clear maxDistance by a
// full halfSquare margin on both sides, not just sit under it itself.
const maxDistance = 50000

// DefaultConstraints builds the standard constraint set: the receptor
// distance, widened by half the source square's side in either
// direction, must stay within the dispersion model's valid domain,
// must lie outside the source footprint, and every nuclide with a
// registered specific activity must be known to ref.
func DefaultConstraints(ref reference.IReference) *Constraints {
	c := &Constraints{}

	c.Add(
		func(inp *Input) bool { return inp.Distance()+inp.SquareSide()/2 < maxDistance },
		func(inp *Input) string {
			return fmt.Sprintf("distance %g m plus half the square side %g m reaches the dispersion model's upper bound of %g m",
				inp.Distance(), inp.SquareSide()/2, float64(maxDistance))
		},
	)

	c.Add(
		func(inp *Input) bool { return inp.Distance()-inp.SquareSide()/2 >= 0 },
		func(inp *Input) string {
			return fmt.Sprintf("distance %g m minus half the square side %g m falls below the dispersion model's lower bound of 0 m",
				inp.Distance(), inp.SquareSide()/2)
		},
	)

	c.Add(
		func(inp *Input) bool { return inp.Distance() > inp.SquareSide()/2 },
		func(inp *Input) string {
			return fmt.Sprintf("distance %g m must be greater than half the square side %g m", inp.Distance(), inp.SquareSide()/2)
		},
	)

	known := make(map[string]bool)
	for _, n := range ref.AllNuclides() {
		known[n] = true
	}
	c.Add(
		func(inp *Input) bool {
			for _, n := range inp.Nuclides() {
				if !known[n] {
					return false
				}
			}
			return true
		},
		func(inp *Input) string {
			for _, n := range inp.Nuclides() {
				if !known[n] {
					return fmt.Sprintf("nuclide %q is not present in the reference store", n)
				}
			}
			return "unknown nuclide"
		},
	)

	return c
}
