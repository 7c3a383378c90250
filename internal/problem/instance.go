// Package problem models concrete BMIP instances and their construction.
package problem

import (
	"fmt"

	"github.com/ntlab/bmipgen/internal/spec"
)

// VarBlock holds the domain of one variable category.
type VarBlock struct {
	Category spec.VarCategory
	Count    int
	Lower    float64
	Upper    float64
	Binary   bool
}

// ConstraintBlock holds one constraint category as a dense system A·v ≤ b,
// where v is the concatenation of the category's variable span.
type ConstraintBlock struct {
	Category spec.ConstraintCategory
	A        [][]float64
	B        []float64
}

// Rows returns the number of constraints in the block.
func (b ConstraintBlock) Rows() int { return len(b.B) }

// ObjectiveVector holds the coefficients of one objective term over its
// variable span.
type ObjectiveVector struct {
	Term   spec.ObjectiveTerm
	Coeffs []float64
}

// Assignment maps each variable category to its values, in category order.
type Assignment map[spec.VarCategory][]float64

// Instance is one concrete BMIP: variable domains, constraint blocks and
// objective vectors shaped by its originating spec. Instances are built
// once and never mutated afterwards.
type Instance struct {
	Spec        spec.InstanceSpec
	Vars        map[spec.VarCategory]VarBlock
	Constraints map[spec.ConstraintCategory]ConstraintBlock
	Objectives  map[spec.ObjectiveTerm]ObjectiveVector
}

// SpanValues concatenates assignment values over a variable span, in span
// order.
func (in *Instance) SpanValues(assign Assignment, span []spec.VarCategory) []float64 {
	out := make([]float64, 0, in.Spec.SpanWidth(span))
	for _, c := range span {
		out = append(out, assign[c]...)
	}
	return out
}

func dot(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		total += a[i] * b[i]
	}
	return total
}

// termValue evaluates one objective term at the assignment.
func (in *Instance) termValue(term spec.ObjectiveTerm, assign Assignment) float64 {
	vec, ok := in.Objectives[term]
	if !ok || len(vec.Coeffs) == 0 {
		return 0
	}
	return dot(vec.Coeffs, in.SpanValues(assign, term.Span()))
}

// UpperObjective evaluates the composite upper objective
// (F_u + F_l + F_c) at the assignment.
func (in *Instance) UpperObjective(assign Assignment) float64 {
	total := 0.0
	for _, t := range spec.ObjectiveTerms {
		if t.Upper() {
			total += in.termValue(t, assign)
		}
	}
	return total
}

// LowerObjective evaluates the composite lower objective (ff_l + ff_c) at
// the assignment.
func (in *Instance) LowerObjective(assign Assignment) float64 {
	total := 0.0
	for _, t := range spec.ObjectiveTerms {
		if !t.Upper() {
			total += in.termValue(t, assign)
		}
	}
	return total
}

// Validate checks instance dimensions against the originating spec: every
// block matches its declared span width and every objective vector matches
// its span.
func (in *Instance) Validate() error {
	for _, c := range spec.VarCategories {
		block, ok := in.Vars[c]
		if !ok {
			return fmt.Errorf("missing variable block %s", c)
		}
		if block.Count != in.Spec.VarCount(c) {
			return fmt.Errorf("variable block %s has %d variables, spec declares %d", c, block.Count, in.Spec.VarCount(c))
		}
	}
	for cat, block := range in.Constraints {
		width := in.Spec.SpanWidth(cat.Span())
		if len(block.A) != len(block.B) {
			return fmt.Errorf("constraint block %s has %d rows but %d rhs entries", cat, len(block.A), len(block.B))
		}
		for i, row := range block.A {
			if len(row) != width {
				return fmt.Errorf("constraint block %s row %d has width %d, span requires %d", cat, i, len(row), width)
			}
		}
	}
	for term, vec := range in.Objectives {
		width := in.Spec.SpanWidth(term.Span())
		if len(vec.Coeffs) != width {
			return fmt.Errorf("objective %s has %d coefficients, span requires %d", term, len(vec.Coeffs), width)
		}
	}
	return nil
}
