package solver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ntlab/bmipgen/internal/problem"
	"github.com/ntlab/bmipgen/internal/spec"
	"github.com/rs/zerolog/log"
)

func init() {
	Register("gurobi", func() (Oracle, error) {
		return NewGurobi(), nil
	})
}

// GurobiOracle evaluates instances by shelling out to the gurobi_cl command
// line solver: the model is written in LP format and the solution read back
// from the result file. The binary is taken from the GUROBI_CL environment
// variable when set.
type GurobiOracle struct {
	bin string
}

// NewGurobi returns a GurobiOracle using gurobi_cl (or $GUROBI_CL).
func NewGurobi() *GurobiOracle {
	bin := os.Getenv("GUROBI_CL")
	if bin == "" {
		bin = "gurobi_cl"
	}
	return &GurobiOracle{bin: bin}
}

// Evaluate solves the instance in the requested mode.
//
// ModeUpperRelaxation is a single solve of the high-point relaxation.
// ModeBilevel first solves the relaxation, fixes the upper-level variables
// at the relaxation point, re-solves under the lower objective and reports
// the upper objective evaluated at the lower-optimal point.
func (o *GurobiOracle) Evaluate(ctx context.Context, inst *problem.Instance, mode Mode) (Outcome, error) {
	if inst == nil {
		return Outcome{}, fmt.Errorf("nil instance")
	}
	switch mode {
	case ModeUpperRelaxation:
		return o.solveRelaxation(ctx, inst)
	case ModeBilevel:
		return o.solveBilevel(ctx, inst)
	default:
		return Outcome{}, fmt.Errorf("unknown mode %q", mode)
	}
}

func (o *GurobiOracle) solveRelaxation(ctx context.Context, inst *problem.Instance) (Outcome, error) {
	model := flatten(inst, denseObjective(inst, true))
	return o.solve(ctx, model)
}

func (o *GurobiOracle) solveBilevel(ctx context.Context, inst *problem.Instance) (Outcome, error) {
	upperObj := denseObjective(inst, true)
	relaxed := flatten(inst, upperObj)
	relaxOut, err := o.solve(ctx, relaxed)
	if err != nil || !relaxOut.Optimal() {
		return relaxOut, err
	}

	// Fix every upper-level column at its relaxation value, then let the
	// lower level re-optimize its own objective.
	restricted := flatten(inst, denseObjective(inst, false))
	fixed := map[int]float64{}
	base := columnIndex(inst.Spec)
	for _, c := range spec.VarCategories {
		if c.Level() != spec.LevelUpper {
			continue
		}
		for i := 0; i < inst.Spec.VarCount(c); i++ {
			col := base[c] + i
			fixed[col] = relaxOut.Values[restricted.names[col]]
		}
	}
	restricted.fixColumns(fixed)

	lowerOut, err := o.solve(ctx, restricted)
	if err != nil || !lowerOut.Optimal() {
		return lowerOut, err
	}

	upperAt := 0.0
	for i, name := range restricted.names {
		upperAt += upperObj[i] * lowerOut.Values[name]
	}
	return Outcome{
		Status:    StatusOptimal,
		Objective: upperAt,
		Values:    lowerOut.Values,
	}, nil
}

// solve writes the model to a temp dir, invokes the solver and parses the
// result. Process failures come back as StatusError outcomes so the caller
// can treat them as a wasted attempt.
func (o *GurobiOracle) solve(ctx context.Context, model *linearModel) (Outcome, error) {
	dir, err := os.MkdirTemp("", "bmipgen-solve-")
	if err != nil {
		return Outcome{}, fmt.Errorf("create solve dir: %w", err)
	}
	defer os.RemoveAll(dir)

	lpPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")
	if err := os.WriteFile(lpPath, []byte(model.writeLP()), 0o644); err != nil {
		return Outcome{}, fmt.Errorf("write lp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, o.bin, "ResultFile="+solPath, lpPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	out := stdout.String()

	status := parseSolveStatus(out)
	if runErr != nil && status == "" {
		log.Debug().Err(runErr).Str("bin", o.bin).Msg("solver invocation failed")
		return Outcome{Status: StatusError, Detail: strings.TrimSpace(stderr.String())}, nil
	}
	switch status {
	case StatusInfeasible, StatusUnbounded:
		return Outcome{Status: status}, nil
	case StatusOptimal:
	default:
		return Outcome{Status: StatusError, Detail: "unrecognized solver output"}, nil
	}

	values, err := parseSolutionFile(solPath, model.names)
	if err != nil {
		return Outcome{Status: StatusError, Detail: err.Error()}, nil
	}
	point := make([]float64, len(model.names))
	for i, name := range model.names {
		point[i] = values[name]
	}
	return Outcome{
		Status:    StatusOptimal,
		Objective: model.objectiveAt(point),
		Values:    values,
	}, nil
}

func parseSolveStatus(stdout string) Status {
	switch {
	case strings.Contains(stdout, "Optimal solution found"):
		return StatusOptimal
	case strings.Contains(stdout, "Model is infeasible") ||
		strings.Contains(stdout, "Infeasible model"):
		return StatusInfeasible
	case strings.Contains(stdout, "Model is unbounded") ||
		strings.Contains(stdout, "Unbounded model"):
		return StatusUnbounded
	case strings.Contains(stdout, "Infeasible or unbounded"):
		return StatusInfeasible
	}
	return ""
}

// parseSolutionFile reads a gurobi .sol result file: comment lines starting
// with '#', then one "name value" pair per line. Columns missing from the
// file default to zero.
func parseSolutionFile(path string, names []string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open solution file: %w", err)
	}
	defer f.Close()

	values := make(map[string]float64, len(names))
	for _, name := range names {
		values[name] = 0
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse solution value for %s: %w", fields[0], err)
		}
		values[fields[0]] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read solution file: %w", err)
	}
	return values, nil
}
