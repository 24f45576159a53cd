package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/p2gx/boqa-eval/internal/store"
	"github.com/p2gx/boqa-eval/pkg/types"
)

// FormatFloat renders v the way the downstream pandas/Java readers expect:
// shortest round-trip digits, integral values keep a ".0", NaN is empty.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func WriteFlatRows(w io.Writer, rows []types.FlatRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.FlatColumns); err != nil {
		return err
	}
	for _, r := range rows {
		diagnosis := ""
		if r.Diagnosis != nil {
			diagnosis = *r.Diagnosis
		}
		rec := []string{
			r.PatientID,
			diagnosis,
			strconv.Itoa(r.Rank),
			r.DiseaseID,
			r.DiseaseLabel,
			strconv.Itoa(r.TPCount),
			strconv.Itoa(r.FPCount),
			strconv.Itoa(r.TNCount),
			strconv.Itoa(r.FNCount),
			FormatFloat(r.BoqaScore),
			FormatFloat(r.Alpha),
			FormatFloat(r.Beta),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteFixtureRows(w io.Writer, rows []types.FixtureRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.FixtureColumns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			FormatFloat(r.Alpha),
			FormatFloat(r.Beta),
			strconv.Itoa(r.CountA),
			strconv.Itoa(r.CountB),
			strconv.Itoa(r.Count1mA),
			strconv.Itoa(r.Count1mB),
			FormatFloat(r.Score),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteFlatRowsFile(path string, rows []types.FlatRow) error {
	return writeFile(path, func(w io.Writer) error { return WriteFlatRows(w, rows) })
}

func WriteFixtureRowsFile(path string, rows []types.FixtureRow) error {
	return writeFile(path, func(w io.Writer) error { return WriteFixtureRows(w, rows) })
}

// ReadFixtureRows parses a fixture table written by WriteFixtureRows.
func ReadFixtureRows(r io.Reader) ([]types.FixtureRow, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse fixtures: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: fixtures are empty (no header row)")
	}
	if got := strings.Join(records[0], ","); got != strings.Join(types.FixtureColumns, ",") {
		return nil, fmt.Errorf("csv: unexpected fixture header %q", got)
	}
	rows := make([]types.FixtureRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		var row types.FixtureRow
		floats := []*float64{&row.Alpha, &row.Beta}
		for j, dst := range floats {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %s: %w", line, types.FixtureColumns[j], err)
			}
			*dst = v
		}
		ints := []*int{&row.CountA, &row.CountB, &row.Count1mA, &row.Count1mB}
		for j, dst := range ints {
			v, err := strconv.Atoi(rec[j+2])
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %s: %w", line, types.FixtureColumns[j+2], err)
			}
			*dst = v
		}
		score, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			return nil, fmt.Errorf("csv: row %d column score: %w", line, err)
		}
		row.Score = score
		rows = append(rows, row)
	}
	return rows, nil
}

func ReadFixtureRowsFile(path string) ([]types.FixtureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFixtureRows(f)
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := store.EnsureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
