package report

import (
	"fmt"
	"strings"

	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/store"
	"github.com/p2gx/boqa-eval/internal/tabular"
)

func BuildMarkdown(s metrics.Summary) string {
	var b strings.Builder
	b.WriteString("# BOQA Evaluation Report\n\n")
	if s.Source != "" {
		b.WriteString(fmt.Sprintf("- Source: `%s`\n", s.Source))
	}
	if s.SourceDigest != "" {
		b.WriteString(fmt.Sprintf("- Source Digest: `%s`\n", s.SourceDigest))
	}
	if s.RunID != "" {
		b.WriteString(fmt.Sprintf("- Run ID: `%s`\n", s.RunID))
	}
	if s.GeneratedAt != "" {
		b.WriteString(fmt.Sprintf("- Generated At: `%s`\n", s.GeneratedAt))
	}
	params := s.Metadata.AlgorithmParams
	b.WriteString(fmt.Sprintf("- Alpha: `%s`\n", tabular.FormatFloat(params.Alpha)))
	b.WriteString(fmt.Sprintf("- Beta: `%s`\n", tabular.FormatFloat(params.Beta)))
	if s.Metadata.HPOVersion != "" {
		b.WriteString(fmt.Sprintf("- HPO Version: `%s`\n", s.Metadata.HPOVersion))
	}
	if s.Metadata.HPOAVersion != "" {
		b.WriteString(fmt.Sprintf("- HPOA Version: `%s`\n", s.Metadata.HPOAVersion))
	}
	b.WriteString(fmt.Sprintf("- Total Rows: `%d`\n", s.TotalRows))
	b.WriteString(fmt.Sprintf("- Unique Patients: `%d`\n", s.UniquePatients))
	b.WriteString(fmt.Sprintf("- Patients With Correct Predictions: `%d`\n", s.CorrectPatients))
	b.WriteString(fmt.Sprintf("- Mean Reciprocal Rank: `%.4f`\n\n", s.MeanReciprocalRank))

	b.WriteString("## Top-K Accuracy\n\n")
	b.WriteString("| K | Correct | Patients | Accuracy |\n")
	b.WriteString("|---:|---:|---:|---:|\n")
	for _, tk := range s.TopK {
		b.WriteString(fmt.Sprintf("| %d | %d | %d | %.2f%% |\n", tk.K, tk.Count, tk.Total, tk.Percent))
	}

	b.WriteString("\n## Rank Distribution\n\n")
	if len(s.RankDistribution) == 0 {
		b.WriteString("No correct predictions.\n")
		return b.String()
	}
	b.WriteString("| Rank | Count |\n")
	b.WriteString("|---:|---:|\n")
	for _, rc := range s.RankDistribution {
		b.WriteString(fmt.Sprintf("| %d | %d |\n", rc.Rank, rc.Count))
	}
	return b.String()
}

func WriteMarkdown(path string, s metrics.Summary) error {
	return store.WriteFile(path, []byte(BuildMarkdown(s)))
}
