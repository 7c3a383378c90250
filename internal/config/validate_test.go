package config

import (
	"strings"
	"testing"
)

func TestValidateSettings_AcceptsFullConfig(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"spec": map[string]any{
			"x_ud": 2, "y_ud": 2, "x_uc": 2, "y_uc": 2,
			"x_ld": 2, "y_ld": 2, "x_lc": 2, "y_lc": 2,
			"G_ud": 2, "g_ld": 2, "G_uc": 2, "g_lc": 2, "g_g": 2,
		},
		"generation": map[string]any{
			"count":          10,
			"attempt_factor": 3,
			"out_dir":        "problems_folder",
			"solver":         "gurobi",
			"seed":           42,
		},
		"retention": map[string]any{
			"keep_last": 50,
			"keep_days": 30,
		},
	}
	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("ValidateSettings() error = %v", err)
	}
}

func TestValidateSettings_AcceptsEmptyConfig(t *testing.T) {
	t.Parallel()

	if err := ValidateSettings(map[string]any{}); err != nil {
		t.Fatalf("ValidateSettings() error = %v", err)
	}
}

func TestValidateSettings_RejectsNegativeCount(t *testing.T) {
	t.Parallel()

	err := ValidateSettings(map[string]any{
		"spec": map[string]any{"x_ud": -1},
	})
	if err == nil {
		t.Fatalf("ValidateSettings() = nil, want error")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("error = %v, want schema validation failure", err)
	}
}

func TestValidateSettings_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	if err := ValidateSettings(map[string]any{"budgets": map[string]any{}}); err == nil {
		t.Fatalf("ValidateSettings() = nil, want error for unknown section")
	}
	err := ValidateSettings(map[string]any{
		"generation": map[string]any{"workers": 4},
	})
	if err == nil {
		t.Fatalf("ValidateSettings() = nil, want error for unknown generation key")
	}
}

func TestValidateSettings_RejectsZeroAttemptFactor(t *testing.T) {
	t.Parallel()

	err := ValidateSettings(map[string]any{
		"generation": map[string]any{"attempt_factor": 0},
	})
	if err == nil {
		t.Fatalf("ValidateSettings() = nil, want error")
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Generation.Count != 10 {
		t.Fatalf("default count = %d, want 10", cfg.Generation.Count)
	}
	if cfg.Generation.AttemptFactor != 3 {
		t.Fatalf("default attempt factor = %d, want 3", cfg.Generation.AttemptFactor)
	}
	if cfg.Generation.OutDir != "problems_folder" {
		t.Fatalf("default out dir = %q", cfg.Generation.OutDir)
	}
	if cfg.Generation.Solver != "gurobi" {
		t.Fatalf("default solver = %q", cfg.Generation.Solver)
	}
}
