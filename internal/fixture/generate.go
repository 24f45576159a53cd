// Package fixture generates synthetic BOQA score cases for the unnormalised
// probability tests of boqa-core.
package fixture

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/p2gx/boqa-eval/pkg/types"
)

// DefaultOut is where boqa-core's parameterised test reads its cases from.
const DefaultOut = "boqa-core/src/test/resources/com/github/p2gx/boqa/core/boqascores.csv"

const (
	DefaultCases    = 50
	DefaultMaxCount = 100
)

// DefaultSweep is used for both alpha and beta when none is configured.
var DefaultSweep = []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5}

type Options struct {
	Alpha    []float64
	Beta     []float64
	Cases    int
	MaxCount int
	// Seed makes the drawn counts reproducible. A negative seed uses a
	// non-deterministic source.
	Seed int64
}

// Counts holds the four exponent sequences shared by every (alpha, beta) pair.
type Counts struct {
	A   []int
	B   []int
	OmA []int
	OmB []int
}

// Score is the unnormalised BOQA probability
// alpha^ca * beta^cb * (1-alpha)^c1ma * (1-beta)^c1mb.
// Tiny parameters with large counts underflow to zero.
func Score(alpha, beta float64, ca, cb, c1ma, c1mb int) float64 {
	return math.Pow(alpha, float64(ca)) *
		math.Pow(beta, float64(cb)) *
		math.Pow(1-alpha, float64(c1ma)) *
		math.Pow(1-beta, float64(c1mb))
}

// DrawCounts draws the four count sequences, each uniform in [0, maxCount].
func DrawCounts(rng *rand.Rand, cases, maxCount int) Counts {
	draw := func() []int {
		out := make([]int, cases)
		for i := range out {
			out[i] = rng.Intn(maxCount + 1)
		}
		return out
	}
	return Counts{A: draw(), B: draw(), OmA: draw(), OmB: draw()}
}

// DefaultOptions is the sweep boqa-core's fixture was originally built with.
// The seed is negative, so counts differ between runs.
func DefaultOptions() Options {
	return Options{
		Alpha:    append([]float64(nil), DefaultSweep...),
		Beta:     append([]float64(nil), DefaultSweep...),
		Cases:    DefaultCases,
		MaxCount: DefaultMaxCount,
		Seed:     -1,
	}
}

// Generate draws the counts once and then emits one row per
// (alpha, beta, case) in sweep order. Options are used as given; start from
// DefaultOptions for the standard sweep.
func Generate(opts Options) ([]types.FixtureRow, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	var rng *rand.Rand
	if opts.Seed >= 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	counts := DrawCounts(rng, opts.Cases, opts.MaxCount)
	return Sweep(opts.Alpha, opts.Beta, counts), nil
}

// Sweep evaluates Score for every (alpha, beta) pair against the same counts.
func Sweep(alphas, betas []float64, counts Counts) []types.FixtureRow {
	rows := make([]types.FixtureRow, 0, len(alphas)*len(betas)*len(counts.A))
	for _, a := range alphas {
		for _, b := range betas {
			for i := range counts.A {
				rows = append(rows, types.FixtureRow{
					Alpha:    a,
					Beta:     b,
					CountA:   counts.A[i],
					CountB:   counts.B[i],
					Count1mA: counts.OmA[i],
					Count1mB: counts.OmB[i],
					Score:    Score(a, b, counts.A[i], counts.B[i], counts.OmA[i], counts.OmB[i]),
				})
			}
		}
	}
	return rows
}

func validate(opts Options) error {
	if len(opts.Alpha) == 0 {
		return errors.New("alpha sweep is empty")
	}
	if len(opts.Beta) == 0 {
		return errors.New("beta sweep is empty")
	}
	if opts.Cases < 1 {
		return fmt.Errorf("cases must be positive, got %d", opts.Cases)
	}
	if opts.MaxCount < 0 {
		return fmt.Errorf("max count must not be negative, got %d", opts.MaxCount)
	}
	return nil
}
