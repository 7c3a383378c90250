// Package triviality decides whether a generated instance is worth keeping.
package triviality

import (
	"errors"
	"fmt"
	"math"

	"github.com/ntlab/bmipgen/internal/solver"
	"github.com/ntlab/bmipgen/internal/spec"
)

// Epsilon is the objective gap below which the bilevel coupling is
// considered to have had no effect.
const Epsilon = 1e-6

// ErrIndeterminate is returned when an oracle error makes classification
// impossible; the attempt is wasted, not classified.
var ErrIndeterminate = errors.New("classification indeterminate")

// Verdict is the classification result.
type Verdict string

const (
	Trivial    Verdict = "trivial"
	NonTrivial Verdict = "non_trivial"
)

// Classify decides trivial vs non-trivial from the two oracle outcomes.
//
// An instance is trivial when the bilevel evaluation is indistinguishable
// from the high-point relaxation (same status, and objective gap below
// Epsilon when both are optimal), or when the bilevel evaluation is
// infeasible despite the spec declaring coupled categories — the random
// coupling produced a structurally degenerate instance rather than a hard
// one. Unbounded against unbounded counts as trivial: the coupling had no
// effect there either.
func Classify(s spec.InstanceSpec, bilevel, relaxation solver.Outcome) (Verdict, error) {
	if bilevel.Status == solver.StatusError || relaxation.Status == solver.StatusError {
		return "", fmt.Errorf("%w: bilevel=%s relaxation=%s", ErrIndeterminate, bilevel.Status, relaxation.Status)
	}

	if bilevel.Status == solver.StatusInfeasible && s.HasCoupled() {
		return Trivial, nil
	}

	if bilevel.Status == relaxation.Status {
		if bilevel.Optimal() {
			if Gap(bilevel, relaxation) < Epsilon {
				return Trivial, nil
			}
			return NonTrivial, nil
		}
		// Matching non-optimal statuses: the lower-level optimality
		// requirement changed nothing observable.
		return Trivial, nil
	}

	return NonTrivial, nil
}

// Gap returns the absolute objective gap between the two outcomes.
func Gap(bilevel, relaxation solver.Outcome) float64 {
	return math.Abs(bilevel.Objective - relaxation.Objective)
}
