//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/p2gx/boqa-eval/pkg/types"
)

// writeResultDocument builds a result document where patient i has its
// diagnosis at rank hits[i]; a zero hit means the diagnosis is absent.
func writeResultDocument(t *testing.T, dir string, alpha, beta float64, candidates int, hits []int) string {
	t.Helper()
	bundle := types.ResultBundle{
		Metadata: types.Metadata{
			HPOVersion:      "2025-05-06",
			AlgorithmParams: types.AlgorithmParams{Alpha: alpha, Beta: beta},
		},
	}
	rng := rand.New(rand.NewSource(int64(len(hits))))
	for i, hit := range hits {
		target := fmt.Sprintf("OMIM:%06d", 100000+i)
		pr := types.PatientResult{PatientData: types.PatientData{
			ID:        fmt.Sprintf("PMID_%d_P%d", 30000000+i, i),
			Diagnosis: []types.Disease{{ID: target, Label: "Target " + target}},
		}}
		for rank := 1; rank <= candidates; rank++ {
			id := fmt.Sprintf("OMIM:9%05d", rank)
			if rank == hit {
				id = target
			}
			pr.BoqaResults = append(pr.BoqaResults, types.CandidateResult{
				Counts: types.Counts{
					DiseaseID:    id,
					DiseaseLabel: "Disease " + id,
					TP:           rng.Intn(10),
					FP:           rng.Intn(10),
					TN:           300 + rng.Intn(100),
					FN:           rng.Intn(10),
				},
				BoqaScore: types.Score(1 / float64(rank+1)),
			})
		}
		bundle.Results = append(bundle.Results, pr)
	}
	raw, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("boqa_results_a%g_b%g.json", alpha, beta))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
