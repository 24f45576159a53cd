package metrics

import (
	"sort"

	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/pkg/types"
)

// DefaultTopK are the rank thresholds reported when none are configured.
var DefaultTopK = []int{1, 3, 5, 10}

type RankCount struct {
	Rank  int `json:"rank"`
	Count int `json:"count"`
}

type TopK struct {
	K       int     `json:"k"`
	Count   int     `json:"count"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// IsCorrect reports whether the row's candidate is the patient's known
// diagnosis. Comparison is exact and case-sensitive.
func IsCorrect(r types.FlatRow) bool {
	return r.Diagnosis != nil && *r.Diagnosis == r.DiseaseID
}

func CorrectPredictions(rows []types.FlatRow) []types.FlatRow {
	out := make([]types.FlatRow, 0)
	for _, r := range rows {
		if IsCorrect(r) {
			out = append(out, r)
		}
	}
	return out
}

// RankDistribution counts correct predictions per rank, ascending by rank.
func RankDistribution(rows []types.FlatRow) []RankCount {
	counts := make(map[int]int)
	for _, r := range rows {
		if IsCorrect(r) {
			counts[r.Rank]++
		}
	}
	out := make([]RankCount, 0, len(counts))
	for rank, n := range counts {
		out = append(out, RankCount{Rank: rank, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// TopKAccuracy computes cumulative accuracy for each threshold. The
// denominator is every distinct patient in the table, including patients
// without any correct prediction.
func TopKAccuracy(table flatten.Table, dist []RankCount, ks []int) []TopK {
	total := table.UniquePatients()
	thresholds := NormalizeK(ks)
	out := make([]TopK, 0, len(thresholds))
	for _, k := range thresholds {
		count := 0
		for _, rc := range dist {
			if rc.Rank <= k {
				count += rc.Count
			}
		}
		out = append(out, TopK{K: k, Count: count, Total: total, Percent: percent(count, total)})
	}
	return out
}

// NormalizeK returns the positive thresholds of ks sorted ascending without
// duplicates. An empty result falls back to DefaultTopK.
func NormalizeK(ks []int) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0, len(ks))
	for _, k := range ks {
		if k < 1 {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if len(out) == 0 {
		return append([]int(nil), DefaultTopK...)
	}
	sort.Ints(out)
	return out
}

// MeanReciprocalRank averages 1/rank of each patient's best correct
// prediction; patients without one contribute zero.
func MeanReciprocalRank(table flatten.Table) float64 {
	ids := table.PatientIDs()
	if len(ids) == 0 {
		return 0
	}
	best := make(map[string]int)
	for _, r := range table.Rows {
		if !IsCorrect(r) {
			continue
		}
		if cur, ok := best[r.PatientID]; !ok || r.Rank < cur {
			best[r.PatientID] = r.Rank
		}
	}
	sum := 0.0
	for _, rank := range best {
		sum += 1 / float64(rank)
	}
	return sum / float64(len(ids))
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
