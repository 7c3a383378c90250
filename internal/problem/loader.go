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

// Load reconstructs an instance from a directory written by DirWriter.
func Load(dir string) (*Instance, error) {
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	s, err := spec.FromMap(raw)
	if err != nil {
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
		if s.SpanWidth(cat.Span()) == 0 {
			continue
		}
		aPath := filepath.Join(dir, string(cat)+"_A.csv")
		if _, err := os.Stat(aPath); os.IsNotExist(err) {
			continue
		}
		a, err := readMatrixCSV(aPath)
		if err != nil {
			return nil, err
		}
		b, err := readVectorCSV(filepath.Join(dir, string(cat)+"_b.csv"))
		if err != nil {
			return nil, err
		}
		if len(a) != len(b) {
			return nil, fmt.Errorf("block %s: %d matrix rows but %d rhs entries", cat, len(a), len(b))
		}
		inst.Constraints[cat] = ConstraintBlock{Category: cat, A: a, B: b}
	}

	for _, term := range spec.ObjectiveTerms {
		if s.SpanWidth(term.Span()) == 0 {
			continue
		}
		path := filepath.Join(dir, string(term)+".csv")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		coeffs, err := readVectorCSV(path)
		if err != nil {
			return nil, err
		}
		inst.Objectives[term] = ObjectiveVector{Term: term, Coeffs: coeffs}
	}

	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("loaded instance is inconsistent: %w", err)
	}
	return inst, nil
}

func readMatrixCSV(path string) ([][]float64, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, 0, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %w", filepath.Base(path), i, j, err)
			}
			row[j] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func readVectorCSV(path string) ([]float64, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(records))
	for i, record := range records {
		if len(record) != 1 {
			return nil, fmt.Errorf("%s row %d: expected one column, got %d", filepath.Base(path), i, len(record))
		}
		v, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// readCSV returns all data records of a CSV file, skipping the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", filepath.Base(path))
	}
	return records[1:], nil
}
