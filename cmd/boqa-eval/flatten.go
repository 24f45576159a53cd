package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/p2gx/boqa-eval/internal/chart"
	"github.com/p2gx/boqa-eval/internal/config"
	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/internal/hash"
	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/report"
	"github.com/p2gx/boqa-eval/internal/store"
	"github.com/p2gx/boqa-eval/internal/tabular"
	"github.com/p2gx/boqa-eval/pkg/types"
)

type flattenFlags struct {
	cfgPath string
	noColor bool
	values  config.FlattenConfig
}

func newFlattenCommand() *cobra.Command {
	var f flattenFlags
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Flatten a BOQA result document and report top-K accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.cfgPath)
			if err != nil {
				return err
			}
			opts := mergeFlattenFlags(cmd, cfg.Flatten, f.values)
			return runFlatten(cmd, opts, f.noColor)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.cfgPath, "config", "", "config file (default boqa-eval.yaml when present)")
	flags.StringVar(&f.values.Input, "in", "", "BOQA result JSON document")
	flags.StringVar(&f.values.Schema, "schema", "", "JSON schema file to validate against (default embedded result schema)")
	flags.StringVar(&f.values.TableOut, "table-out", "", "flat table CSV output")
	flags.StringVar(&f.values.ChartOut, "chart-out", "", "accuracy chart PNG output")
	flags.StringVar(&f.values.SummaryOut, "summary-out", "", "summary JSON output")
	flags.StringVar(&f.values.MarkdownOut, "markdown-out", "", "summary markdown output")
	flags.StringVar(&f.values.DuckDB, "duckdb", "", "DuckDB file to write the flat table to")
	flags.IntSliceVar(&f.values.TopK, "top-k", nil, "rank thresholds for cumulative accuracy (default 1,3,5,10)")
	flags.IntVar(&f.values.Head, "head", 0, "number of table rows to print (default 10)")
	flags.BoolVar(&f.values.NoChart, "no-chart", false, "skip chart rendering")
	flags.BoolVar(&f.noColor, "no-color", false, "disable colored console output")
	return cmd
}

// mergeFlattenFlags overlays explicitly set flags on the configured values.
func mergeFlattenFlags(cmd *cobra.Command, base, flags config.FlattenConfig) config.FlattenConfig {
	changed := cmd.Flags().Changed
	if changed("in") {
		base.Input = flags.Input
	}
	if changed("schema") {
		base.Schema = flags.Schema
	}
	if changed("table-out") {
		base.TableOut = flags.TableOut
	}
	if changed("chart-out") {
		base.ChartOut = flags.ChartOut
	}
	if changed("summary-out") {
		base.SummaryOut = flags.SummaryOut
	}
	if changed("markdown-out") {
		base.MarkdownOut = flags.MarkdownOut
	}
	if changed("duckdb") {
		base.DuckDB = flags.DuckDB
	}
	if changed("top-k") {
		base.TopK = flags.TopK
	}
	if changed("head") {
		base.Head = flags.Head
	}
	if changed("no-chart") {
		base.NoChart = flags.NoChart
	}
	return base
}

func runFlatten(cmd *cobra.Command, opts config.FlattenConfig, noColor bool) error {
	if opts.Input == "" {
		return fmt.Errorf("--in is required (or set flatten.input in %s)", config.DefaultPath)
	}
	table, meta, err := flatten.ParseWithSchema(opts.Input, opts.Schema)
	if err != nil {
		return asCLIError(err)
	}
	summary, err := newSummary(opts.Input, table, meta, opts.TopK)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if err := report.WriteConsole(out, summary, table, report.ConsoleOptions{Head: opts.Head, NoColor: noColor}); err != nil {
		return err
	}
	if opts.TableOut != "" {
		if err := tabular.WriteFlatRowsFile(opts.TableOut, table.Rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved to '%s'\n", opts.TableOut)
	}
	if !opts.NoChart && opts.ChartOut != "" {
		if err := chart.RenderFile(opts.ChartOut, summary.RankDistribution, summary.TopK, chart.DefaultOptions()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved chart to '%s'\n", opts.ChartOut)
	}
	if opts.SummaryOut != "" {
		if err := report.WriteJSON(opts.SummaryOut, summary); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved summary to '%s'\n", opts.SummaryOut)
	}
	if opts.MarkdownOut != "" {
		if err := report.WriteMarkdown(opts.MarkdownOut, summary); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved report to '%s'\n", opts.MarkdownOut)
	}
	if opts.DuckDB != "" {
		if err := store.ExportFlatRows(cmd.Context(), opts.DuckDB, summary.RunID, opts.Input, table.Rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d rows to '%s'\n", table.Len(), opts.DuckDB)
	}
	return nil
}

// newSummary computes the accuracy summary and stamps it with run identity
// and the digest of the source document.
func newSummary(source string, table flatten.Table, meta types.Metadata, ks []int) (metrics.Summary, error) {
	digest, _, err := hash.DigestFile(source)
	if err != nil {
		return metrics.Summary{}, err
	}
	s := metrics.Summarize(table, meta, ks)
	s.RunID = uuid.NewString()
	s.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	s.Source = source
	s.SourceDigest = digest
	slog.Debug("summarized result document", "source", source, "run_id", s.RunID, "patients", s.UniquePatients)
	return s, nil
}
