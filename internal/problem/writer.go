package problem

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ntlab/bmipgen/internal/spec"
)

// Writer persists accepted instances. Implementations own the on-disk
// format; the generation loop only supplies the destination and acceptance
// index.
type Writer interface {
	Write(inst *Instance, destDir string, index int) (string, error)
}

// DirWriter writes one directory per instance: metadata.json with the spec
// counts plus one CSV per constraint matrix, rhs vector and objective
// vector. The layout round-trips through Load.
type DirWriter struct{}

// NewDirWriter returns a DirWriter.
func NewDirWriter() *DirWriter { return &DirWriter{} }

// DirName returns the instance directory name for an acceptance index.
func DirName(index int) string {
	return fmt.Sprintf("problem_%d", index+1)
}

// Write persists the instance under destDir/problem_<index+1> and returns
// the directory path.
func (w *DirWriter) Write(inst *Instance, destDir string, index int) (string, error) {
	dir := filepath.Join(destDir, DirName(index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create instance dir: %w", err)
	}

	if err := writeMetadata(dir, inst.Spec); err != nil {
		return "", err
	}

	for _, cat := range spec.ConstraintCategories {
		block, ok := inst.Constraints[cat]
		if !ok {
			continue
		}
		if err := writeMatrixCSV(filepath.Join(dir, string(cat)+"_A.csv"), block.A); err != nil {
			return "", err
		}
		if err := writeVectorCSV(filepath.Join(dir, string(cat)+"_b.csv"), block.B); err != nil {
			return "", err
		}
	}

	for _, term := range spec.ObjectiveTerms {
		vec, ok := inst.Objectives[term]
		if !ok {
			continue
		}
		if err := writeVectorCSV(filepath.Join(dir, string(term)+".csv"), vec.Coeffs); err != nil {
			return "", err
		}
	}

	return dir, nil
}

func writeMetadata(dir string, s spec.InstanceSpec) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Annotate merges solve outcomes into a previously written instance.
func (w *DirWriter) Annotate(location string, relaxObj, restrictedObj, gap float64) error {
	return AnnotateOutcome(location, relaxObj, restrictedObj, gap)
}

// AnnotateOutcome merges the solve objectives and gap into the instance's
// metadata.json, preserving the spec counts already present.
func AnnotateOutcome(dir string, relaxObj, restrictedObj, gap float64) error {
	path := filepath.Join(dir, "metadata.json")
	meta := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("parse metadata: %w", err)
		}
	}
	meta["RO_Obj"] = relaxObj
	meta["RF_Obj"] = restrictedObj
	meta["Gap"] = gap
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeMatrixCSV writes a dense matrix with a numeric header row, one
// column per span variable.
func writeMatrixCSV(path string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	header := make([]string, width)
	for i := range header {
		header[i] = strconv.Itoa(i)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, width)
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatFloat(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeVectorCSV writes a vector as a single-column CSV.
func writeVectorCSV(path string, values []float64) error {
	col := make([][]float64, len(values))
	for i, v := range values {
		col[i] = []float64{v}
	}
	if len(col) == 0 {
		col = nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"0"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range col {
		if err := cw.Write([]string{formatFloat(row[0])}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}
