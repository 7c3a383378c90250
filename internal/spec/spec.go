// Package spec defines the shape description for generated BMIP instances.
package spec

import (
	"errors"
	"fmt"
)

// ErrUnsatisfiable is returned for a spec that cannot yield a bilevel
// instance (no variables at all).
var ErrUnsatisfiable = errors.New("instance spec is unsatisfiable")

// Level identifies which decision maker owns a variable category.
type Level string

const (
	LevelUpper Level = "upper"
	LevelLower Level = "lower"
)

// VarCategory names one of the eight variable categories. The names double
// as metadata.json keys.
type VarCategory string

const (
	VarXUD VarCategory = "x_ud" // upper decoupled continuous
	VarYUD VarCategory = "y_ud" // upper decoupled binary
	VarXUC VarCategory = "x_uc" // upper coupled continuous
	VarYUC VarCategory = "y_uc" // upper coupled binary
	VarXLD VarCategory = "x_ld" // lower decoupled continuous
	VarYLD VarCategory = "y_ld" // lower decoupled binary
	VarXLC VarCategory = "x_lc" // lower coupled continuous
	VarYLC VarCategory = "y_lc" // lower coupled binary
)

// VarCategories lists all variable categories in canonical order. The order
// fixes column layout inside every constraint block span.
var VarCategories = []VarCategory{
	VarXUD, VarYUD, VarXUC, VarYUC,
	VarXLD, VarYLD, VarXLC, VarYLC,
}

// Level returns the owning level of the category.
func (c VarCategory) Level() Level {
	switch c {
	case VarXUD, VarYUD, VarXUC, VarYUC:
		return LevelUpper
	default:
		return LevelLower
	}
}

// Coupled reports whether the category participates in cross-level coupling.
func (c VarCategory) Coupled() bool {
	switch c {
	case VarXUC, VarYUC, VarXLC, VarYLC:
		return true
	default:
		return false
	}
}

// Binary reports whether variables in the category are binary.
func (c VarCategory) Binary() bool {
	switch c {
	case VarYUD, VarYUC, VarYLD, VarYLC:
		return true
	default:
		return false
	}
}

// ConstraintCategory names one of the five constraint categories.
type ConstraintCategory string

const (
	ConUpperDecoupled ConstraintCategory = "G_ud"
	ConLowerDecoupled ConstraintCategory = "g_ld"
	ConUpperCoupled   ConstraintCategory = "G_uc"
	ConLowerCoupled   ConstraintCategory = "g_lc"
	ConGeneral        ConstraintCategory = "g_g"
)

// ConstraintCategories lists all constraint categories in canonical order.
var ConstraintCategories = []ConstraintCategory{
	ConUpperDecoupled, ConLowerDecoupled,
	ConUpperCoupled, ConLowerCoupled, ConGeneral,
}

// Span returns the variable categories a constraint block is a function of,
// in column order.
func (c ConstraintCategory) Span() []VarCategory {
	switch c {
	case ConUpperDecoupled:
		return []VarCategory{VarXUD, VarYUD}
	case ConLowerDecoupled:
		return []VarCategory{VarXLD, VarYLD}
	case ConUpperCoupled:
		return []VarCategory{VarXUD, VarYUD, VarXUC, VarYUC}
	case ConLowerCoupled:
		return []VarCategory{VarXLD, VarYLD, VarXLC, VarYLC}
	case ConGeneral:
		return []VarCategory{VarXUC, VarYUC, VarXLC, VarYLC}
	}
	return nil
}

// Segments partitions the span into coupling-role segments. Rows of a
// coupled block must carry a non-zero coefficient in every non-empty
// segment, which is what makes the block genuinely coupling.
func (c ConstraintCategory) Segments() [][]VarCategory {
	switch c {
	case ConUpperCoupled:
		return [][]VarCategory{{VarXUD, VarYUD}, {VarXUC, VarYUC}}
	case ConLowerCoupled:
		return [][]VarCategory{{VarXLD, VarYLD}, {VarXLC, VarYLC}}
	case ConGeneral:
		return [][]VarCategory{{VarXUC, VarYUC}, {VarXLC, VarYLC}}
	default:
		return [][]VarCategory{c.Span()}
	}
}

// Coupled reports whether the constraint category couples variables across
// roles.
func (c ConstraintCategory) Coupled() bool {
	switch c {
	case ConUpperCoupled, ConLowerCoupled, ConGeneral:
		return true
	default:
		return false
	}
}

// ObjectiveTerm names one of the five objective vectors. The names double as
// CSV file names, matching the persisted layout.
type ObjectiveTerm string

const (
	ObjUpperDecoupled      ObjectiveTerm = "F_u"  // upper objective over x_ud, y_ud
	ObjUpperLowerDecoupled ObjectiveTerm = "F_l"  // upper objective over x_ld, y_ld
	ObjUpperCoupled        ObjectiveTerm = "F_c"  // upper objective over coupled variables
	ObjLowerDecoupled      ObjectiveTerm = "ff_l" // lower objective over x_ld, y_ld
	ObjLowerCoupled        ObjectiveTerm = "ff_c" // lower objective over coupled variables
)

// ObjectiveTerms lists all objective terms in canonical order.
var ObjectiveTerms = []ObjectiveTerm{
	ObjUpperDecoupled, ObjUpperLowerDecoupled, ObjUpperCoupled,
	ObjLowerDecoupled, ObjLowerCoupled,
}

// Span returns the variable categories the term is a function of.
func (t ObjectiveTerm) Span() []VarCategory {
	switch t {
	case ObjUpperDecoupled:
		return []VarCategory{VarXUD, VarYUD}
	case ObjUpperLowerDecoupled, ObjLowerDecoupled:
		return []VarCategory{VarXLD, VarYLD}
	case ObjUpperCoupled, ObjLowerCoupled:
		return []VarCategory{VarXUC, VarYUC, VarXLC, VarYLC}
	}
	return nil
}

// Upper reports whether the term contributes to the upper composite
// objective (Upper = F_u + F_l + F_c, Lower = ff_l + ff_c).
func (t ObjectiveTerm) Upper() bool {
	switch t {
	case ObjUpperDecoupled, ObjUpperLowerDecoupled, ObjUpperCoupled:
		return true
	default:
		return false
	}
}

// InstanceSpec is the immutable shape description of a BMIP instance:
// variable counts for the eight categories and constraint counts for the
// five categories. Field keys match the original metadata.json layout.
type InstanceSpec struct {
	XUD int `json:"x_ud" mapstructure:"x_ud" yaml:"x_ud"`
	YUD int `json:"y_ud" mapstructure:"y_ud" yaml:"y_ud"`
	XUC int `json:"x_uc" mapstructure:"x_uc" yaml:"x_uc"`
	YUC int `json:"y_uc" mapstructure:"y_uc" yaml:"y_uc"`
	XLD int `json:"x_ld" mapstructure:"x_ld" yaml:"x_ld"`
	YLD int `json:"y_ld" mapstructure:"y_ld" yaml:"y_ld"`
	XLC int `json:"x_lc" mapstructure:"x_lc" yaml:"x_lc"`
	YLC int `json:"y_lc" mapstructure:"y_lc" yaml:"y_lc"`

	GUD int `json:"G_ud" mapstructure:"G_ud" yaml:"G_ud"`
	GLD int `json:"g_ld" mapstructure:"g_ld" yaml:"g_ld"`
	GUC int `json:"G_uc" mapstructure:"G_uc" yaml:"G_uc"`
	GLC int `json:"g_lc" mapstructure:"g_lc" yaml:"g_lc"`
	GG  int `json:"g_g"  mapstructure:"g_g"  yaml:"g_g"`
}

// VarCount returns the declared variable count for a category.
func (s InstanceSpec) VarCount(c VarCategory) int {
	switch c {
	case VarXUD:
		return s.XUD
	case VarYUD:
		return s.YUD
	case VarXUC:
		return s.XUC
	case VarYUC:
		return s.YUC
	case VarXLD:
		return s.XLD
	case VarYLD:
		return s.YLD
	case VarXLC:
		return s.XLC
	case VarYLC:
		return s.YLC
	}
	return 0
}

// ConstraintCount returns the declared constraint count for a category.
func (s InstanceSpec) ConstraintCount(c ConstraintCategory) int {
	switch c {
	case ConUpperDecoupled:
		return s.GUD
	case ConLowerDecoupled:
		return s.GLD
	case ConUpperCoupled:
		return s.GUC
	case ConLowerCoupled:
		return s.GLC
	case ConGeneral:
		return s.GG
	}
	return 0
}

// SpanWidth returns the total number of variables across the given
// categories, i.e. the column count of a block spanning them.
func (s InstanceSpec) SpanWidth(span []VarCategory) int {
	total := 0
	for _, c := range span {
		total += s.VarCount(c)
	}
	return total
}

// LevelVarCount returns the total variable count owned by a level.
func (s InstanceSpec) LevelVarCount(level Level) int {
	total := 0
	for _, c := range VarCategories {
		if c.Level() == level {
			total += s.VarCount(c)
		}
	}
	return total
}

// TotalVars returns the total variable count across all categories.
func (s InstanceSpec) TotalVars() int {
	return s.LevelVarCount(LevelUpper) + s.LevelVarCount(LevelLower)
}

// HasCoupled reports whether the spec declares any coupled category
// (variables or constraints).
func (s InstanceSpec) HasCoupled() bool {
	return s.XUC > 0 || s.YUC > 0 || s.XLC > 0 || s.YLC > 0 ||
		s.GUC > 0 || s.GLC > 0 || s.GG > 0
}

// Validate checks the spec invariants: all counts non-negative and at least
// one variable overall. A spec with no variables on both levels combined
// cannot carry a bilevel structure and fails with ErrUnsatisfiable.
func (s InstanceSpec) Validate() error {
	for _, c := range VarCategories {
		if s.VarCount(c) < 0 {
			return fmt.Errorf("variable count %s is negative: %w", c, ErrUnsatisfiable)
		}
	}
	for _, c := range ConstraintCategories {
		if s.ConstraintCount(c) < 0 {
			return fmt.Errorf("constraint count %s is negative: %w", c, ErrUnsatisfiable)
		}
	}
	if s.TotalVars() == 0 {
		return fmt.Errorf("no variables declared on either level: %w", ErrUnsatisfiable)
	}
	return nil
}
