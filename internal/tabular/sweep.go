package tabular

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/p2gx/boqa-eval/internal/metrics"
)

// WriteSweep writes one row per summarised result document so that runs with
// different alpha/beta can be compared side by side.
func WriteSweep(w io.Writer, summaries []metrics.Summary, ks []int) error {
	thresholds := metrics.NormalizeK(ks)
	header := []string{"source", "alpha", "beta", "total_rows", "patients", "correct_patients", "mrr"}
	for _, k := range thresholds {
		header = append(header, "top_"+strconv.Itoa(k))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range summaries {
		rec := []string{
			s.Source,
			FormatFloat(s.Metadata.AlgorithmParams.Alpha),
			FormatFloat(s.Metadata.AlgorithmParams.Beta),
			strconv.Itoa(s.TotalRows),
			strconv.Itoa(s.UniquePatients),
			strconv.Itoa(s.CorrectPatients),
			strconv.FormatFloat(s.MeanReciprocalRank, 'f', 4, 64),
		}
		byK := make(map[int]float64, len(s.TopK))
		for _, tk := range s.TopK {
			byK[tk.K] = tk.Percent
		}
		for _, k := range thresholds {
			pct, ok := byK[k]
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(pct, 'f', 2, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSweepFile(path string, summaries []metrics.Summary, ks []int) error {
	return writeFile(path, func(w io.Writer) error { return WriteSweep(w, summaries, ks) })
}
