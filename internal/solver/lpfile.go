package solver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ntlab/bmipgen/internal/problem"
	"github.com/ntlab/bmipgen/internal/spec"
)

// linearModel flattens an instance into a single column space so it can be
// handed to an LP/MIP solver: per-column bounds and integrality, dense
// objective coefficients and sparse rows a·x ≤ rhs.
type linearModel struct {
	names  []string
	lower  []float64
	upper  []float64
	binary []bool
	obj    []float64
	rows   []linearRow
}

type linearRow struct {
	coeffs map[int]float64
	rhs    float64
}

// columnIndex maps each variable category to the global index of its first
// column. Columns follow the canonical category order.
func columnIndex(s spec.InstanceSpec) map[spec.VarCategory]int {
	out := make(map[spec.VarCategory]int, len(spec.VarCategories))
	offset := 0
	for _, c := range spec.VarCategories {
		out[c] = offset
		offset += s.VarCount(c)
	}
	return out
}

func columnName(c spec.VarCategory, i int) string {
	return fmt.Sprintf("%s_%d", c, i)
}

// flatten builds the linear model of an instance with the given dense
// objective over the full column space.
func flatten(inst *problem.Instance, obj []float64) *linearModel {
	s := inst.Spec
	n := s.TotalVars()
	m := &linearModel{
		names:  make([]string, n),
		lower:  make([]float64, n),
		upper:  make([]float64, n),
		binary: make([]bool, n),
		obj:    obj,
	}
	base := columnIndex(s)
	for _, c := range spec.VarCategories {
		block := inst.Vars[c]
		for i := 0; i < block.Count; i++ {
			col := base[c] + i
			m.names[col] = columnName(c, i)
			m.lower[col] = block.Lower
			m.upper[col] = block.Upper
			m.binary[col] = block.Binary
		}
	}
	for _, cat := range spec.ConstraintCategories {
		block, ok := inst.Constraints[cat]
		if !ok {
			continue
		}
		for r := 0; r < block.Rows(); r++ {
			row := linearRow{coeffs: map[int]float64{}, rhs: block.B[r]}
			col := 0
			for _, c := range cat.Span() {
				for i := 0; i < s.VarCount(c); i++ {
					if v := block.A[r][col]; v != 0 {
						row.coeffs[base[c]+i] += v
					}
					col++
				}
			}
			m.rows = append(m.rows, row)
		}
	}
	return m
}

// denseObjective expands the instance's composite upper or lower objective
// into coefficients over the full column space.
func denseObjective(inst *problem.Instance, upper bool) []float64 {
	s := inst.Spec
	out := make([]float64, s.TotalVars())
	base := columnIndex(s)
	for _, term := range spec.ObjectiveTerms {
		if term.Upper() != upper {
			continue
		}
		vec, ok := inst.Objectives[term]
		if !ok {
			continue
		}
		col := 0
		for _, c := range term.Span() {
			for i := 0; i < s.VarCount(c); i++ {
				out[base[c]+i] += vec.Coeffs[col]
				col++
			}
		}
	}
	return out
}

// fixColumns pins the listed columns to the given values by collapsing
// their bounds.
func (m *linearModel) fixColumns(cols map[int]float64) {
	for col, v := range cols {
		m.lower[col] = v
		m.upper[col] = v
	}
}

func (m *linearModel) objectiveAt(values []float64) float64 {
	total := 0.0
	for i, c := range m.obj {
		total += c * values[i]
	}
	return total
}

func formatCoef(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeLP renders the model in CPLEX LP format (minimization).
func (m *linearModel) writeLP() string {
	var b strings.Builder
	b.WriteString("Minimize\n obj:")
	wrote := false
	for i, c := range m.obj {
		if c == 0 {
			continue
		}
		writeTerm(&b, c, m.names[i])
		wrote = true
	}
	if !wrote {
		// LP format requires a non-empty objective expression.
		b.WriteString(" 0 " + m.names[0])
	}
	b.WriteString("\nSubject To\n")
	for r, row := range m.rows {
		fmt.Fprintf(&b, " c%d:", r)
		cols := make([]int, 0, len(row.coeffs))
		for col := range row.coeffs {
			cols = append(cols, col)
		}
		sort.Ints(cols)
		for _, col := range cols {
			writeTerm(&b, row.coeffs[col], m.names[col])
		}
		fmt.Fprintf(&b, " <= %s\n", formatCoef(row.rhs))
	}
	b.WriteString("Bounds\n")
	for i := range m.names {
		if m.lower[i] == m.upper[i] {
			fmt.Fprintf(&b, " %s = %s\n", m.names[i], formatCoef(m.lower[i]))
			continue
		}
		fmt.Fprintf(&b, " %s <= %s <= %s\n", formatCoef(m.lower[i]), m.names[i], formatCoef(m.upper[i]))
	}
	binaries := make([]string, 0)
	for i, bin := range m.binary {
		if bin {
			binaries = append(binaries, m.names[i])
		}
	}
	if len(binaries) > 0 {
		b.WriteString("Binaries\n " + strings.Join(binaries, " ") + "\n")
	}
	b.WriteString("End\n")
	return b.String()
}

func writeTerm(b *strings.Builder, c float64, name string) {
	if c < 0 {
		fmt.Fprintf(b, " - %s %s", formatCoef(-c), name)
	} else {
		fmt.Fprintf(b, " + %s %s", formatCoef(c), name)
	}
}
