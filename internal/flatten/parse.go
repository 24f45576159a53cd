package flatten

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/p2gx/boqa-eval/pkg/schema"
	"github.com/p2gx/boqa-eval/pkg/types"
)

// maxReportedViolations caps how many schema violations are quoted in an error.
const maxReportedViolations = 5

// Parse loads the result document at path and flattens it. It never returns a
// partial table: any load or schema failure aborts the whole parse.
func Parse(path string) (Table, types.Metadata, error) {
	return ParseWithSchema(path, "")
}

// ParseWithSchema is Parse validating against the JSON schema file at
// schemaPath. An empty schemaPath selects the embedded result schema.
func ParseWithSchema(path, schemaPath string) (Table, types.Metadata, error) {
	bundle, err := LoadWithSchema(path, schemaPath)
	if err != nil {
		return Table{}, types.Metadata{}, err
	}
	table := Flatten(bundle)
	slog.Debug("flattened result document", "path", path, "patients", len(bundle.Results), "rows", table.Len())
	return table, bundle.Metadata, nil
}

// Load reads, validates and decodes a result document.
func Load(path string) (types.ResultBundle, error) {
	return LoadWithSchema(path, "")
}

func LoadWithSchema(path, schemaPath string) (types.ResultBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ResultBundle{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return types.ResultBundle{}, fmt.Errorf("read result file %s: %w", path, err)
	}
	return decode(path, raw, schemaPath)
}

// Decode validates raw against the embedded result schema and decodes it.
// name is only used in error messages.
func Decode(name string, raw []byte) (types.ResultBundle, error) {
	return decode(name, raw, "")
}

func decode(name string, raw []byte, schemaPath string) (types.ResultBundle, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return types.ResultBundle{}, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	violations, err := validate(doc, schemaPath)
	if err != nil {
		return types.ResultBundle{}, err
	}
	if len(violations) > 0 {
		return types.ResultBundle{}, violationError(name, violations)
	}

	var bundle types.ResultBundle
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&bundle); err != nil {
		return types.ResultBundle{}, fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, name, err)
	}
	return bundle, nil
}

func validate(doc any, schemaPath string) ([]schema.Violation, error) {
	if schemaPath == "" {
		return schema.ValidateResults(doc)
	}
	return schema.Validate(schemaPath, doc)
}

func violationError(name string, violations []schema.Violation) error {
	kind := ErrSchemaMismatch
	for _, v := range violations {
		if v.Missing() {
			kind = ErrMissingField
			break
		}
	}
	msgs := make([]string, 0, maxReportedViolations)
	for i, v := range violations {
		if i == maxReportedViolations {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(violations)-i))
			break
		}
		msgs = append(msgs, v.String())
	}
	return fmt.Errorf("%w: %s: %s", kind, name, strings.Join(msgs, "; "))
}

// Flatten expands every (patient, candidate) pair into one row. Rank is the
// 1-based position in the producer's candidate order, never re-sorted.
func Flatten(bundle types.ResultBundle) Table {
	params := bundle.Metadata.AlgorithmParams
	size := 0
	for _, r := range bundle.Results {
		size += len(r.BoqaResults)
	}
	rows := make([]types.FlatRow, 0, size)
	for _, r := range bundle.Results {
		var diagnosis *string
		if id, ok := r.PatientData.PrimaryDiagnosis(); ok {
			diagnosis = &id
		}
		for i, c := range r.BoqaResults {
			rows = append(rows, types.FlatRow{
				PatientID:    r.PatientData.ID,
				Diagnosis:    diagnosis,
				Rank:         i + 1,
				DiseaseID:    c.Counts.DiseaseID,
				DiseaseLabel: c.Counts.DiseaseLabel,
				TPCount:      c.Counts.TP,
				FPCount:      c.Counts.FP,
				TNCount:      c.Counts.TN,
				FNCount:      c.Counts.FN,
				BoqaScore:    float64(c.BoqaScore),
				Alpha:        params.Alpha,
				Beta:         params.Beta,
			})
		}
	}
	return Table{Rows: rows}
}
