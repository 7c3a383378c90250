package problem

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ntlab/bmipgen/internal/spec"
)

// Random construction policy: coefficients and bounds in [-10, 10], rhs in
// [0, 10], everything rounded to six decimals. With a non-negative rhs the
// origin satisfies every generated row, so the feasible region is never
// empty.
const (
	CoefLow  = -10.0
	CoefHigh = 10.0
	RHSLow   = 0.0
	RHSHigh  = 10.0
	BoundLow = -10.0
	BoundUp  = 10.0

	roundDecimals = 6
)

// Builder constructs random instances from a spec and a seeded random
// source. It is stateless; the same source state always yields the same
// instance.
type Builder struct{}

// NewBuilder returns a Builder.
func NewBuilder() *Builder { return &Builder{} }

func round(v float64) float64 {
	scale := math.Pow10(roundDecimals)
	return math.Round(v*scale) / scale
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return round(low + rng.Float64()*(high-low))
}

// Build constructs one instance satisfying the spec's shape. It fails with
// spec.ErrUnsatisfiable before drawing anything when the spec is invalid.
func (b *Builder) Build(s spec.InstanceSpec, rng *rand.Rand) (*Instance, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	inst := &Instance{
		Spec:        s,
		Vars:        make(map[spec.VarCategory]VarBlock, len(spec.VarCategories)),
		Constraints: make(map[spec.ConstraintCategory]ConstraintBlock),
		Objectives:  make(map[spec.ObjectiveTerm]ObjectiveVector),
	}

	for _, c := range spec.VarCategories {
		block := VarBlock{Category: c, Count: s.VarCount(c), Binary: c.Binary()}
		if block.Binary {
			block.Lower, block.Upper = 0, 1
		} else {
			block.Lower, block.Upper = BoundLow, BoundUp
		}
		inst.Vars[c] = block
	}

	for _, cat := range spec.ConstraintCategories {
		rows := s.ConstraintCount(cat)
		width := s.SpanWidth(cat.Span())
		if rows == 0 || width == 0 {
			// A block with no columns cannot reference anything; a block
			// with no declared rows contributes nothing.
			continue
		}
		block := ConstraintBlock{
			Category: cat,
			A:        make([][]float64, rows),
			B:        make([]float64, rows),
		}
		for i := 0; i < rows; i++ {
			block.A[i] = b.drawRow(s, cat, rng)
			block.B[i] = uniform(rng, RHSLow, RHSHigh)
		}
		inst.Constraints[cat] = block
	}

	for _, term := range spec.ObjectiveTerms {
		width := s.SpanWidth(term.Span())
		if width == 0 {
			continue
		}
		coeffs := make([]float64, width)
		for i := range coeffs {
			coeffs[i] = uniform(rng, CoefLow, CoefHigh)
		}
		inst.Objectives[term] = ObjectiveVector{Term: term, Coeffs: coeffs}
	}

	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("built instance is inconsistent: %w", err)
	}
	return inst, nil
}

// drawRow samples one constraint row over the category's span, redrawing
// until every non-empty coupling segment carries a non-zero coefficient.
// Decoupled blocks have a single segment, so the redraw also rules out
// vacuous all-zero rows.
func (b *Builder) drawRow(s spec.InstanceSpec, cat spec.ConstraintCategory, rng *rand.Rand) []float64 {
	span := cat.Span()
	width := s.SpanWidth(span)
	for {
		row := make([]float64, width)
		for i := range row {
			row[i] = uniform(rng, CoefLow, CoefHigh)
		}
		if rowTouchesAllSegments(s, cat, row) {
			return row
		}
	}
}

func rowTouchesAllSegments(s spec.InstanceSpec, cat spec.ConstraintCategory, row []float64) bool {
	offsets := spanOffsets(s, cat.Span())
	for _, segment := range cat.Segments() {
		if s.SpanWidth(segment) == 0 {
			continue
		}
		touched := false
		for _, c := range segment {
			start, end := offsets[c][0], offsets[c][1]
			for i := start; i < end; i++ {
				if row[i] != 0 {
					touched = true
					break
				}
			}
			if touched {
				break
			}
		}
		if !touched {
			return false
		}
	}
	return true
}

// spanOffsets maps each category of the span to its [start, end) column
// range.
func spanOffsets(s spec.InstanceSpec, span []spec.VarCategory) map[spec.VarCategory][2]int {
	out := make(map[spec.VarCategory][2]int, len(span))
	offset := 0
	for _, c := range span {
		n := s.VarCount(c)
		out[c] = [2]int{offset, offset + n}
		offset += n
	}
	return out
}
