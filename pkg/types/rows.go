package types

// FlatRow is one (patient, candidate) pair of a flattened result document.
type FlatRow struct {
	PatientID    string  `json:"patient_id"`
	Diagnosis    *string `json:"diagnosis"`
	Rank         int     `json:"rank"`
	DiseaseID    string  `json:"disease_id"`
	DiseaseLabel string  `json:"disease_label"`
	TPCount      int     `json:"tp_count"`
	FPCount      int     `json:"fp_count"`
	TNCount      int     `json:"tn_count"`
	FNCount      int     `json:"fn_count"`
	BoqaScore    float64 `json:"boqa_score"`
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
}

// FlatColumns is the column order of the flattened table.
var FlatColumns = []string{
	"patient_id", "diagnosis", "rank", "disease_id", "disease_label",
	"tp_count", "fp_count", "tn_count", "fn_count", "boqa_score", "alpha", "beta",
}

// FixtureRow is one synthetic score case.
type FixtureRow struct {
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	CountA   int     `json:"count_a"`
	CountB   int     `json:"count_b"`
	Count1mA int     `json:"count_1ma"`
	Count1mB int     `json:"count_1mb"`
	Score    float64 `json:"score"`
}

var FixtureColumns = []string{"alpha", "beta", "count_a", "count_b", "count_1ma", "count_1mb", "score"}
