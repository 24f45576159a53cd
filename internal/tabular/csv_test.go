package tabular

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/pkg/types"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.0001, "0.0001"},
		{0.5, "0.5"},
		{8.1e-06, "8.1e-06"},
		{1, "1.0"},
		{0, "0.0"},
		{3.125e-06, "3.125e-06"},
		{1e-300, "1e-300"},
		{math.NaN(), ""},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFlatRows(t *testing.T) {
	diag := "OMIM:1"
	rows := []types.FlatRow{
		{PatientID: "P1", Diagnosis: &diag, Rank: 1, DiseaseID: "OMIM:1", DiseaseLabel: "Syndrome, type 1", TPCount: 3, FPCount: 1, TNCount: 10, FNCount: 0, BoqaScore: 0.75, Alpha: 0.001, Beta: 0.9},
		{PatientID: "P2", Rank: 1, DiseaseID: "OMIM:2", DiseaseLabel: "Other", BoqaScore: math.NaN(), Alpha: 0.001, Beta: 0.9},
	}
	var buf bytes.Buffer
	if err := WriteFlatRows(&buf, rows); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if got := strings.Join(records[0], ","); got != "patient_id,diagnosis,rank,disease_id,disease_label,tp_count,fp_count,tn_count,fn_count,boqa_score,alpha,beta" {
		t.Errorf("header = %s", got)
	}
	want := []string{"P1", "OMIM:1", "1", "OMIM:1", "Syndrome, type 1", "3", "1", "10", "0", "0.75", "0.001", "0.9"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Errorf("row 1 = %v, want %v", records[1], want)
	}
	if records[2][1] != "" {
		t.Errorf("absent diagnosis should be empty, got %q", records[2][1])
	}
	if records[2][9] != "" {
		t.Errorf("NaN score should be empty, got %q", records[2][9])
	}
}

func TestFixtureRows_WriteRead(t *testing.T) {
	rows := []types.FixtureRow{
		{Alpha: 0.1, Beta: 0.1, CountA: 2, CountB: 3, Count1mA: 1, Count1mB: 1, Score: 8.1e-06},
		{Alpha: 0.0001, Beta: 0.5, CountA: 100, CountB: 0, Count1mA: 0, Count1mB: 7, Score: 0},
	}
	path := filepath.Join(t.TempDir(), "nested", "dir", "boqascores.csv")
	if err := WriteFixtureRowsFile(path, rows); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "alpha,beta,count_a,count_b,count_1ma,count_1mb,score" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0.1,0.1,2,3,1,1,8.1e-06" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "0.0001,0.5,100,0,0,7,0.0" {
		t.Errorf("row 2 = %q", lines[2])
	}

	got, err := ReadFixtureRowsFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != rows[0] || got[1] != rows[1] {
		t.Errorf("read back = %+v", got)
	}
}

func TestReadFixtureRows_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"bad header": "a,b,c,d,e,f,g\n",
		"bad int":    "alpha,beta,count_a,count_b,count_1ma,count_1mb,score\n0.1,0.1,x,1,1,1,0.5\n",
		"bad float":  "alpha,beta,count_a,count_b,count_1ma,count_1mb,score\n0.1,0.1,1,1,1,1,high\n",
	}
	for name, body := range tests {
		if _, err := ReadFixtureRows(strings.NewReader(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestReadFixtureRowsFile_Missing(t *testing.T) {
	if _, err := ReadFixtureRowsFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteSweep(t *testing.T) {
	summaries := []metrics.Summary{
		{
			Source:             "a.json",
			Metadata:           types.Metadata{AlgorithmParams: types.AlgorithmParams{Alpha: 0.001, Beta: 0.9}},
			TotalRows:          10,
			UniquePatients:     2,
			CorrectPatients:    1,
			MeanReciprocalRank: 0.5,
			TopK:               []metrics.TopK{{K: 1, Percent: 50}, {K: 3, Percent: 50}},
		},
	}
	var buf bytes.Buffer
	if err := WriteSweep(&buf, summaries, []int{3, 1}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "source,alpha,beta,total_rows,patients,correct_patients,mrr,top_1,top_3" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "a.json,0.001,0.9,10,2,1,0.5000,50.00,50.00" {
		t.Errorf("row = %q", lines[1])
	}
}
