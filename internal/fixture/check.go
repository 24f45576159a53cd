package fixture

import (
	"fmt"
	"math"

	"github.com/p2gx/boqa-eval/pkg/types"
)

// relTolerance bounds the relative score error accepted by Check.
const relTolerance = 1e-12

type Mismatch struct {
	// Line is the 1-based line in the CSV file, the header being line 1.
	Line int
	Row  types.FixtureRow
	Want float64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("line %d: alpha=%g beta=%g counts=(%d,%d,%d,%d) score=%g, want %g",
		m.Line, m.Row.Alpha, m.Row.Beta, m.Row.CountA, m.Row.CountB, m.Row.Count1mA, m.Row.Count1mB, m.Row.Score, m.Want)
}

// Check recomputes the score of every row and returns the rows that disagree
// with Score. Negative counts are always reported.
func Check(rows []types.FixtureRow) []Mismatch {
	var out []Mismatch
	for i, r := range rows {
		want := Score(r.Alpha, r.Beta, r.CountA, r.CountB, r.Count1mA, r.Count1mB)
		negative := r.CountA < 0 || r.CountB < 0 || r.Count1mA < 0 || r.Count1mB < 0
		if negative || !closeEnough(r.Score, want) {
			out = append(out, Mismatch{Line: i + 2, Row: r, Want: want})
		}
	}
	return out
}

func closeEnough(got, want float64) bool {
	if got == want {
		return true
	}
	diff := math.Abs(got - want)
	return diff <= relTolerance*math.Max(math.Abs(got), math.Abs(want))
}
