package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p2gx/boqa-eval/internal/config"
	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/internal/report"
)

const (
	ExitPass           = 0
	ExitError          = 1
	ExitFileNotFound   = 10
	ExitInvalidDoc     = 11
	ExitMissingField   = 12
	ExitSchemaMismatch = 14
)

var version = "dev"

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func (e cliError) Unwrap() error { return e.err }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitError)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "boqa-eval",
		Short:        "Evaluate BOQA disease-ranking results",
		Version:      version,
		SilenceUsage: true,
	}
	debugLogging := root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	root.AddCommand(newInitCommand())
	root.AddCommand(newFlattenCommand())
	root.AddCommand(newSweepCommand())
	root.AddCommand(newFixturesCommand())
	root.AddCommand(newReportCommand())
	return root
}

func newInitCommand() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default boqa-eval.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := config.WriteDefault(cfgPath)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", cfgPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", cfgPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "config file to create")
	return cmd
}

func newReportCommand() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate markdown report from a summary JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" || outPath == "" {
				return fmt.Errorf("--in and --out are required")
			}
			s, err := report.ReadJSON(inPath)
			if err != nil {
				return err
			}
			if err := report.WriteMarkdown(outPath, s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "summary json input")
	cmd.Flags().StringVar(&outPath, "out", "", "markdown output")
	return cmd
}

// exitCodeFor maps flattening failures onto process exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitPass
	case errors.Is(err, flatten.ErrFileNotFound):
		return ExitFileNotFound
	case errors.Is(err, flatten.ErrInvalidDocument):
		return ExitInvalidDoc
	case errors.Is(err, flatten.ErrMissingField):
		return ExitMissingField
	case errors.Is(err, flatten.ErrSchemaMismatch):
		return ExitSchemaMismatch
	default:
		return ExitError
	}
}

func asCLIError(err error) error {
	if err == nil {
		return nil
	}
	return cliError{code: exitCodeFor(err), err: err}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
