package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/p2gx/boqa-eval/internal/config"
	"github.com/p2gx/boqa-eval/internal/fixture"
	"github.com/p2gx/boqa-eval/internal/tabular"
)

func newFixturesCommand() *cobra.Command {
	var cfgPath string
	var check bool
	var flags config.FixturesConfig
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate BOQA score fixtures over an alpha/beta sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			opts := cfg.Fixtures
			changed := cmd.Flags().Changed
			if changed("alpha") {
				opts.Alpha = flags.Alpha
			}
			if changed("beta") {
				opts.Beta = flags.Beta
			}
			if changed("cases") {
				opts.Cases = flags.Cases
			}
			if changed("max-count") {
				opts.MaxCount = flags.MaxCount
			}
			if changed("seed") {
				opts.Seed = flags.Seed
			}
			if changed("out") {
				opts.Out = flags.Out
			}

			if check {
				return checkFixtures(cmd, opts.Out)
			}
			rows, err := fixture.Generate(opts.Options())
			if err != nil {
				return err
			}
			if err := tabular.WriteFixtureRowsFile(opts.Out, rows); err != nil {
				return err
			}
			slog.Info("wrote fixtures", "path", opts.Out, "rows", len(rows), "seed", opts.Seed)
			fmt.Fprintln(cmd.OutOrStdout(), opts.Out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "config file (default boqa-eval.yaml when present)")
	f.Float64SliceVar(&flags.Alpha, "alpha", nil, "alpha values (default 0.0001,0.001,0.005,0.01,0.05,0.1,0.2,0.5)")
	f.Float64SliceVar(&flags.Beta, "beta", nil, "beta values (default as alpha)")
	f.IntVar(&flags.Cases, "cases", 0, "count tuples per parameter pair (default 50)")
	f.IntVar(&flags.MaxCount, "max-count", 0, "upper bound of each drawn count (default 100)")
	f.Int64Var(&flags.Seed, "seed", 0, "random seed; negative draws non-deterministically")
	f.StringVar(&flags.Out, "out", "", "fixture CSV output (default "+fixture.DefaultOut+")")
	f.BoolVar(&check, "check", false, "recompute scores of an existing fixture file instead of generating one")
	return cmd
}

func checkFixtures(cmd *cobra.Command, path string) error {
	rows, err := tabular.ReadFixtureRowsFile(path)
	if err != nil {
		return err
	}
	mismatches := fixture.Check(rows)
	out := cmd.OutOrStdout()
	for _, m := range mismatches {
		fmt.Fprintln(out, m)
	}
	if len(mismatches) > 0 {
		return cliError{code: ExitError, err: fmt.Errorf("fixture check failed: %d of %d rows mismatched", len(mismatches), len(rows))}
	}
	fmt.Fprintf(out, "%s: %d rows ok\n", path, len(rows))
	return nil
}
