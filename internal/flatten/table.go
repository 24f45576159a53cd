package flatten

import "github.com/p2gx/boqa-eval/pkg/types"

// Table is the flattened form of one result document.
type Table struct {
	Rows []types.FlatRow
}

func (t Table) Len() int { return len(t.Rows) }

// PatientIDs returns the distinct patient ids in first-seen order.
func (t Table) PatientIDs() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t.Rows {
		if _, ok := seen[r.PatientID]; ok {
			continue
		}
		seen[r.PatientID] = struct{}{}
		out = append(out, r.PatientID)
	}
	return out
}

func (t Table) UniquePatients() int {
	return len(t.PatientIDs())
}

// Head returns at most n leading rows.
func (t Table) Head(n int) []types.FlatRow {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
