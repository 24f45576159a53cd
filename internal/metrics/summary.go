package metrics

import (
	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/pkg/types"
)

// Summary is everything reported about one flattened result document.
type Summary struct {
	RunID              string         `json:"run_id,omitempty"`
	GeneratedAt        string         `json:"generated_at,omitempty"`
	Source             string         `json:"source,omitempty"`
	SourceDigest       string         `json:"source_digest,omitempty"`
	Metadata           types.Metadata `json:"metadata"`
	TotalRows          int            `json:"total_rows"`
	UniquePatients     int            `json:"unique_patients"`
	CorrectPatients    int            `json:"correct_patients"`
	RankDistribution   []RankCount    `json:"rank_distribution"`
	TopK               []TopK         `json:"top_k"`
	MeanReciprocalRank float64        `json:"mean_reciprocal_rank"`
}

func Summarize(table flatten.Table, meta types.Metadata, ks []int) Summary {
	correct := CorrectPredictions(table.Rows)
	dist := RankDistribution(correct)
	return Summary{
		Metadata:           meta,
		TotalRows:          table.Len(),
		UniquePatients:     table.UniquePatients(),
		CorrectPatients:    flatten.Table{Rows: correct}.UniquePatients(),
		RankDistribution:   dist,
		TopK:               TopKAccuracy(table, dist, ks),
		MeanReciprocalRank: MeanReciprocalRank(table),
	}
}
