package metrics

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/p2gx/boqa-eval/internal/flatten"
	"github.com/p2gx/boqa-eval/pkg/types"
)

func strPtr(s string) *string { return &s }

func row(patient, diagnosis string, rank int, disease string) types.FlatRow {
	r := types.FlatRow{PatientID: patient, Rank: rank, DiseaseID: disease}
	if diagnosis != "" {
		r.Diagnosis = strPtr(diagnosis)
	}
	return r
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name string
		row  types.FlatRow
		want bool
	}{
		{"match", row("p", "OMIM:1", 1, "OMIM:1"), true},
		{"different id", row("p", "OMIM:1", 1, "OMIM:2"), false},
		{"case differs", row("p", "omim:1", 1, "OMIM:1"), false},
		{"no diagnosis", row("p", "", 1, ""), false},
	}
	for _, tt := range tests {
		if got := IsCorrect(tt.row); got != tt.want {
			t.Errorf("%s: IsCorrect = %t, want %t", tt.name, got, tt.want)
		}
	}
}

func TestEndToEndTwoPatients(t *testing.T) {
	table := flatten.Table{Rows: []types.FlatRow{
		row("P1", "D1", 1, "D1"),
		row("P1", "D1", 2, "D2"),
		row("P1", "D1", 3, "D3"),
		row("P2", "D9", 1, "D7"),
		row("P2", "D9", 2, "D8"),
		row("P2", "D9", 3, "D9"),
	}}
	dist := RankDistribution(CorrectPredictions(table.Rows))
	if !reflect.DeepEqual(dist, []RankCount{{Rank: 1, Count: 1}, {Rank: 3, Count: 1}}) {
		t.Fatalf("distribution = %+v", dist)
	}
	topK := TopKAccuracy(table, dist, []int{1, 3})
	if topK[0].K != 1 || topK[0].Count != 1 || topK[0].Total != 2 || topK[0].Percent != 50 {
		t.Errorf("top-1 = %+v", topK[0])
	}
	if topK[1].K != 3 || topK[1].Count != 2 || topK[1].Percent != 100 {
		t.Errorf("top-3 = %+v", topK[1])
	}
}

func TestRankDistribution_SortedAscending(t *testing.T) {
	rows := []types.FlatRow{
		row("a", "X", 7, "X"),
		row("b", "X", 2, "X"),
		row("c", "X", 7, "X"),
		row("d", "X", 1, "Y"),
	}
	got := RankDistribution(rows)
	want := []RankCount{{Rank: 2, Count: 1}, {Rank: 7, Count: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("distribution = %+v, want %+v", got, want)
	}
}

func TestTopKAccuracy_NonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		table := randomTable(rng, 1+rng.Intn(30), 1+rng.Intn(15))
		dist := RankDistribution(table.Rows)
		topK := TopKAccuracy(table, dist, []int{1, 2, 3, 5, 10, 20})
		for i := 1; i < len(topK); i++ {
			if topK[i].Percent < topK[i-1].Percent || topK[i].Count < topK[i-1].Count {
				t.Fatalf("trial %d: accuracy decreased %+v -> %+v", trial, topK[i-1], topK[i])
			}
		}
	}
}

func TestTopKAccuracy_AtMaxRankEqualsPatientsWithCorrect(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		table := randomTable(rng, 1+rng.Intn(30), 1+rng.Intn(15))
		if table.Len() == 0 {
			continue
		}
		maxRank := 0
		for _, r := range table.Rows {
			if r.Rank > maxRank {
				maxRank = r.Rank
			}
		}
		correct := flatten.Table{Rows: CorrectPredictions(table.Rows)}
		want := float64(correct.UniquePatients()) / float64(table.UniquePatients()) * 100

		topK := TopKAccuracy(table, RankDistribution(table.Rows), []int{maxRank})
		if math.Abs(topK[0].Percent-want) > 1e-9 {
			t.Fatalf("trial %d: top-%d = %v, want %v", trial, maxRank, topK[0].Percent, want)
		}
	}
}

func TestTopKAccuracy_EmptyTable(t *testing.T) {
	topK := TopKAccuracy(flatten.Table{}, nil, nil)
	if len(topK) != len(DefaultTopK) {
		t.Fatalf("expected default thresholds, got %+v", topK)
	}
	for _, tk := range topK {
		if tk.Percent != 0 || tk.Total != 0 {
			t.Errorf("empty table accuracy = %+v", tk)
		}
	}
}

func TestNormalizeK(t *testing.T) {
	tests := []struct {
		in   []int
		want []int
	}{
		{[]int{10, 1, 5, 3}, []int{1, 3, 5, 10}},
		{[]int{3, 3, 0, -2, 1}, []int{1, 3}},
		{nil, []int{1, 3, 5, 10}},
		{[]int{0}, []int{1, 3, 5, 10}},
	}
	for _, tt := range tests {
		if got := NormalizeK(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeK(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeK_DoesNotAliasDefault(t *testing.T) {
	got := NormalizeK(nil)
	got[0] = 99
	if DefaultTopK[0] != 1 {
		t.Fatal("NormalizeK returned the shared default slice")
	}
}

func TestMeanReciprocalRank(t *testing.T) {
	table := flatten.Table{Rows: []types.FlatRow{
		row("P1", "D1", 1, "D1"),
		row("P2", "D2", 1, "D0"),
		row("P2", "D2", 2, "D2"),
		row("P3", "", 1, "D3"),
		row("P4", "D4", 1, "D0"),
	}}
	// (1 + 1/2 + 0 + 0) / 4
	if got := MeanReciprocalRank(table); math.Abs(got-0.375) > 1e-12 {
		t.Errorf("MRR = %v, want 0.375", got)
	}
	if got := MeanReciprocalRank(flatten.Table{}); got != 0 {
		t.Errorf("MRR of empty table = %v", got)
	}
}

func TestSummarize(t *testing.T) {
	table := flatten.Table{Rows: []types.FlatRow{
		row("P1", "D1", 1, "D1"),
		row("P1", "D1", 2, "D2"),
		row("P2", "D9", 1, "D7"),
	}}
	meta := types.Metadata{AlgorithmParams: types.AlgorithmParams{Alpha: 0.1, Beta: 0.9}}
	s := Summarize(table, meta, []int{1, 3})
	if s.TotalRows != 3 || s.UniquePatients != 2 || s.CorrectPatients != 1 {
		t.Errorf("summary counts = %+v", s)
	}
	if s.Metadata.AlgorithmParams.Beta != 0.9 {
		t.Errorf("metadata not carried: %+v", s.Metadata)
	}
	if len(s.TopK) != 2 || s.TopK[1].Percent != 50 {
		t.Errorf("top-k = %+v", s.TopK)
	}
	if s.MeanReciprocalRank != 0.5 {
		t.Errorf("MRR = %v", s.MeanReciprocalRank)
	}
}

// randomTable builds patients with one known diagnosis each; the diagnosis
// appears at most once in a patient's candidate list.
func randomTable(rng *rand.Rand, patients, maxCandidates int) flatten.Table {
	bundle := types.ResultBundle{}
	for p := 0; p < patients; p++ {
		n := rng.Intn(maxCandidates + 1)
		pd := types.PatientData{ID: "P" + string(rune('A'+p%26)) + string(rune('a'+p/26))}
		if rng.Intn(4) > 0 {
			pd.Diagnosis = []types.Disease{{ID: "TARGET"}}
		}
		hit := -1
		if n > 0 && rng.Intn(3) > 0 {
			hit = rng.Intn(n)
		}
		result := types.PatientResult{PatientData: pd}
		for i := 0; i < n; i++ {
			id := "OTHER"
			if i == hit {
				id = "TARGET"
			}
			result.BoqaResults = append(result.BoqaResults, types.CandidateResult{Counts: types.Counts{DiseaseID: id}})
		}
		bundle.Results = append(bundle.Results, result)
	}
	return flatten.Flatten(bundle)
}
