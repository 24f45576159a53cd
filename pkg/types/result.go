package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ResultBundle is the document written by the BOQA benchmark command: run
// metadata plus one entry per analysed patient.
type ResultBundle struct {
	Metadata Metadata        `json:"metadata"`
	Results  []PatientResult `json:"results"`
}

type Metadata struct {
	Timestamp           string            `json:"timestamp,omitempty"`
	HPOVersion          string            `json:"hpoVersion,omitempty"`
	HPOAVersion         string            `json:"hpoaVersion,omitempty"`
	PatientDataMetadata map[string]any    `json:"patientDataMetadata,omitempty"`
	AlgorithmParams     AlgorithmParams   `json:"algorithmParams"`
	CLIArgs             string            `json:"cliArgs,omitempty"`
	Environment         map[string]string `json:"environment,omitempty"`
}

type AlgorithmParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

type PatientResult struct {
	PatientData PatientData       `json:"patientData"`
	BoqaResults []CandidateResult `json:"boqaResults"`
}

type PatientData struct {
	ID        string    `json:"id"`
	Diagnosis []Disease `json:"diagnosis,omitempty"`
}

// PrimaryDiagnosis returns the id of the first diagnosis entry. Later entries
// are never consulted.
func (p PatientData) PrimaryDiagnosis() (string, bool) {
	if len(p.Diagnosis) == 0 {
		return "", false
	}
	return p.Diagnosis[0].ID, true
}

type Disease struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

type CandidateResult struct {
	Counts    Counts `json:"counts"`
	BoqaScore Score  `json:"boqaScore"`
}

type Counts struct {
	DiseaseID    string `json:"diseaseId"`
	DiseaseLabel string `json:"diseaseLabel"`
	TP           int    `json:"tpBoqaCount"`
	FP           int    `json:"fpBoqaCount"`
	TN           int    `json:"tnBoqaCount"`
	FN           int    `json:"fnBoqaCount"`
}

// Score is a BOQA score. The producer serialises non-finite doubles as the
// strings "NaN", "Infinity" and "-Infinity".
type Score float64

func (s *Score) UnmarshalJSON(raw []byte) error {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*s = Score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return fmt.Errorf("boqaScore: expected number, got %s", string(raw))
	}
	switch str {
	case "NaN":
		*s = Score(math.NaN())
	case "Infinity":
		*s = Score(math.Inf(1))
	case "-Infinity":
		*s = Score(math.Inf(-1))
	default:
		return fmt.Errorf("boqaScore: unsupported value %q", str)
	}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
