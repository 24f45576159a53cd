package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/tabular"
)

func newSweepCommand() *cobra.Command {
	var inPaths, outPath, schemaPath string
	var topK []int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare accuracy across result documents from a parameter sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs := splitCSV(inPaths)
			if len(inputs) == 0 || outPath == "" {
				return fmt.Errorf("--in and --out are required")
			}
			summaries := make([]metrics.Summary, 0, len(inputs))
			for _, in := range inputs {
				table, meta, err := flatten.ParseWithSchema(in, schemaPath)
				if err != nil {
					return asCLIError(err)
				}
				s, err := newSummary(in, table, meta, topK)
				if err != nil {
					return err
				}
				summaries = append(summaries, s)
			}
			if err := tabular.WriteSweepFile(outPath, summaries, topK); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPaths, "in", "", "comma-separated result JSON documents")
	cmd.Flags().StringVar(&outPath, "out", "", "sweep CSV output")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON schema file to validate against (default embedded result schema)")
	cmd.Flags().IntSliceVar(&topK, "top-k", nil, "rank thresholds (default 1,3,5,10)")
	return cmd
}
