package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/p2gx/boqa-eval/pkg/types"
)

//go:embed schema.sql
var schemaDDL string

const insertFlatRow = `INSERT INTO boqa_results
    (run_id, source, patient_id, diagnosis, "rank", disease_id, disease_label,
     tp_count, fp_count, tn_count, fn_count, boqa_score, alpha, beta)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ExportFlatRows writes rows as the boqa_results table of the DuckDB file at
// dbPath. The table is recreated on every call so the file always holds
// exactly one run, stamped with runID.
func ExportFlatRows(ctx context.Context, dbPath, runID, source string, rows []types.FlatRow) error {
	if err := EnsureParentDir(dbPath); err != nil {
		return err
	}
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return fmt.Errorf("open duckdb %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply duckdb schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin duckdb export: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertFlatRow)
	if err != nil {
		return fmt.Errorf("prepare duckdb insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, source, r.PatientID, nullableString(r.Diagnosis), r.Rank, r.DiseaseID, r.DiseaseLabel,
			r.TPCount, r.FPCount, r.TNCount, r.FNCount, r.BoqaScore, r.Alpha, r.Beta,
		); err != nil {
			return fmt.Errorf("insert row %s/%d: %w", r.PatientID, r.Rank, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit duckdb export: %w", err)
	}
	slog.Debug("exported rows to duckdb", "path", dbPath, "rows", len(rows), "run_id", runID)
	return nil
}

// nullableString converts an optional string pointer into a SQL argument.
func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
