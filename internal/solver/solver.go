// Package solver defines the oracle contract used to evaluate generated
// instances and the adapters implementing it.
package solver

import (
	"context"

	"github.com/ntlab/bmipgen/internal/problem"
)

// Status is the outcome kind of one solve.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusError      Status = "error"
)

// Mode selects how an instance is evaluated.
type Mode string

const (
	// ModeBilevel honors the lower-level optimality requirement: the
	// upper-level decision is taken from the relaxation and the lower level
	// re-optimizes its own objective under it.
	ModeBilevel Mode = "bilevel"
	// ModeUpperRelaxation solves the high-point relaxation: the upper
	// objective over the joint constraint set, ignoring lower-level
	// optimality.
	ModeUpperRelaxation Mode = "upper_relaxation"
)

// Outcome is the oracle's response for one instance under one mode.
// Objective and Values are meaningful only when Status is StatusOptimal.
type Outcome struct {
	Status    Status
	Objective float64
	Values    map[string]float64
	// Detail carries the solver's own message for error outcomes.
	Detail string
}

// Optimal reports whether the outcome carries an optimal solution.
func (o Outcome) Optimal() bool { return o.Status == StatusOptimal }

// Oracle evaluates instances. Implementations are external solver
// backends; the generation loop treats them as correct and opaque.
// Transient solver failures are reported as StatusError outcomes, not Go
// errors; a non-nil error means the instance could not be handed to the
// solver at all.
type Oracle interface {
	Evaluate(ctx context.Context, inst *problem.Instance, mode Mode) (Outcome, error)
}
