package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/tabular"
	"github.com/p2gx/boqa-eval/pkg/types"
)

// MaxLabelWidth caps the display width of disease labels in the head table.
const MaxLabelWidth = 40

type ConsoleOptions struct {
	Head    int
	NoColor bool
}

// WriteConsole prints the run overview, the first rows of the table and the
// accuracy figures.
func WriteConsole(w io.Writer, s metrics.Summary, t flatten.Table, opts ConsoleOptions) error {
	cw := &consoleWriter{w: w}
	params := s.Metadata.AlgorithmParams
	cw.printf("Total rows: %d\n", s.TotalRows)
	cw.printf("Unique patients: %d\n", s.UniquePatients)
	cw.printf("Algorithm parameters: alpha=%s, beta=%s\n", tabular.FormatFloat(params.Alpha), tabular.FormatFloat(params.Beta))
	if s.Metadata.HPOVersion != "" {
		cw.printf("HPO version: %s\n", s.Metadata.HPOVersion)
	}
	if s.Metadata.HPOAVersion != "" {
		cw.printf("HPOA version: %s\n", s.Metadata.HPOAVersion)
	}

	if opts.Head > 0 {
		cw.printf("\n%s\n", stylize(fmt.Sprintf("First %d rows:", opts.Head), opts.NoColor, lipgloss.Color("33")))
		cw.printf("%s\n", HeadTable(t.Head(opts.Head), opts.NoColor))
	}

	cw.printf("\nPatients with correct predictions: %d\n", s.CorrectPatients)
	cw.printf("\nRank distribution for correct predictions:\n")
	if len(s.RankDistribution) == 0 {
		cw.printf("  (none)\n")
	}
	for _, rc := range s.RankDistribution {
		cw.printf("  rank %d: %d\n", rc.Rank, rc.Count)
	}

	cw.printf("\nCumulative accuracy metrics:\n")
	for _, tk := range s.TopK {
		cw.printf("Top-%d accuracy: %d/%d (%.2f%%)\n", tk.K, tk.Count, tk.Total, tk.Percent)
	}
	cw.printf("Mean reciprocal rank: %.4f\n", s.MeanReciprocalRank)
	return cw.err
}

// HeadTable renders rows as a bordered table in FlatColumns order.
func HeadTable(rows []types.FlatRow, noColor bool) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(types.FlatColumns...)
	if !noColor {
		tbl = tbl.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
			}
			return lipgloss.NewStyle()
		})
	}
	for _, r := range rows {
		diagnosis := ""
		if r.Diagnosis != nil {
			diagnosis = *r.Diagnosis
		}
		tbl = tbl.Row(
			r.PatientID,
			diagnosis,
			strconv.Itoa(r.Rank),
			r.DiseaseID,
			runewidth.Truncate(r.DiseaseLabel, MaxLabelWidth, "..."),
			strconv.Itoa(r.TPCount),
			strconv.Itoa(r.FPCount),
			strconv.Itoa(r.TNCount),
			strconv.Itoa(r.FNCount),
			displayScore(r.BoqaScore),
			tabular.FormatFloat(r.Alpha),
			tabular.FormatFloat(r.Beta),
		)
	}
	return tbl.String()
}

func displayScore(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return tabular.FormatFloat(v)
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

type consoleWriter struct {
	w   io.Writer
	err error
}

func (c *consoleWriter) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}
