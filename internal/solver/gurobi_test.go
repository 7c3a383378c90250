package solver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ntlab/bmipgen/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSolveStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stdout string
		want   Status
	}{
		{"Optimal solution found (tolerance 1.00e-04)", StatusOptimal},
		{"Model is infeasible", StatusInfeasible},
		{"Infeasible model", StatusInfeasible},
		{"Model is unbounded", StatusUnbounded},
		{"Unbounded model", StatusUnbounded},
		{"Infeasible or unbounded model", StatusInfeasible},
		{"Barrier solved model in 12 iterations", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseSolveStatus(tc.stdout); got != tc.want {
			t.Fatalf("parseSolveStatus(%q) = %q, want %q", tc.stdout, got, tc.want)
		}
	}
}

func TestParseSolutionFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.sol")
	content := "# Solution for model obj\n# Objective value = -4.25\nx_ud_0 1.5\ny_ud_0 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	values, err := parseSolutionFile(path, []string{"x_ud_0", "y_ud_0", "x_ld_0"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, values["x_ud_0"])
	assert.Equal(t, 1.0, values["y_ud_0"])
	// Columns the solver leaves out are zero.
	assert.Equal(t, 0.0, values["x_ld_0"])
}

func TestParseSolutionFile_BadValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.sol")
	require.NoError(t, os.WriteFile(path, []byte("x_ud_0 not-a-number\n"), 0o644))

	_, err := parseSolutionFile(path, []string{"x_ud_0"})
	assert.Error(t, err)
}

// fakeSolver writes a shell script that plays the solver role: it echoes a
// canned status line and materializes the requested result file.
func fakeSolver(t *testing.T, stdout, sol string) string {
	t.Helper()
	script := "#!/bin/sh\n" +
		"for arg in \"$@\"; do\n" +
		"  case \"$arg\" in\n" +
		"    ResultFile=*) printf '%s' '" + sol + "' > \"${arg#ResultFile=}\" ;;\n" +
		"  esac\n" +
		"done\n" +
		"echo '" + stdout + "'\n"
	path := filepath.Join(t.TempDir(), "fake_gurobi_cl")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake solver: %v", err)
	}
	return path
}

func TestGurobiOracle_RelaxationOptimal(t *testing.T) {
	t.Parallel()

	inst := buildInstance(t, spec.InstanceSpec{XUD: 1, XLD: 1, GUD: 1}, 41)
	sol := "# Objective value = 0\nx_ud_0 2\nx_ld_0 -1\n"
	o := &GurobiOracle{bin: fakeSolver(t, "Optimal solution found", sol)}

	out, err := o.Evaluate(context.Background(), inst, ModeUpperRelaxation)
	require.NoError(t, err)
	require.True(t, out.Optimal())
	assert.Equal(t, 2.0, out.Values["x_ud_0"])
	assert.Equal(t, -1.0, out.Values["x_ld_0"])

	upper := denseObjective(inst, true)
	assert.InDelta(t, upper[0]*2+upper[1]*(-1), out.Objective, 1e-9)
}

func TestGurobiOracle_InfeasibleModel(t *testing.T) {
	t.Parallel()

	inst := buildInstance(t, spec.InstanceSpec{XUD: 1, GUD: 1}, 42)
	o := &GurobiOracle{bin: fakeSolver(t, "Model is infeasible", "")}

	out, err := o.Evaluate(context.Background(), inst, ModeBilevel)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, out.Status)
}

func TestGurobiOracle_MissingBinaryIsErrorOutcome(t *testing.T) {
	t.Parallel()

	inst := buildInstance(t, spec.InstanceSpec{XUD: 1}, 43)
	o := &GurobiOracle{bin: filepath.Join(t.TempDir(), "does-not-exist")}

	out, err := o.Evaluate(context.Background(), inst, ModeUpperRelaxation)
	require.NoError(t, err)
	assert.Equal(t, StatusError, out.Status)
}

func TestGurobiOracle_UnknownMode(t *testing.T) {
	t.Parallel()

	inst := buildInstance(t, spec.InstanceSpec{XUD: 1}, 44)
	o := NewGurobi()
	_, err := o.Evaluate(context.Background(), inst, Mode("dual"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Known(), "gurobi")

	o, err := New("gurobi")
	require.NoError(t, err)
	assert.NotNil(t, o)

	_, err = New("simplex-by-hand")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSolver))
}
