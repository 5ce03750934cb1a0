// Package normalize rescales combined scores into (0,1] for downstream
// assessment tools.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/domfun/domfun/internal/predictor"
)

// Mode selects how higher-is-better scores are rescaled.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeMax    Mode = "max"
	ModeRank   Mode = "rank"
)

// MinProbabilityScore is the cut applied to 1-p scores; rows at or below it
// are dropped because assessment requires strictly positive scores.
const MinProbabilityScore = 0.001

var (
	ErrUnknownMode = errors.New("unknown normalization mode")
	// ErrDegenerate is returned when the score distribution cannot be
	// rescaled (zero spread or a non-positive maximum).
	ErrDegenerate = errors.New("degenerate score distribution")
)

// ParseMode validates a normalization mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNormal, ModeMax, ModeRank:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q (valid: normal, max, rank)", ErrUnknownMode, s)
}

// Normalize rescales the scores of preds. For lower-is-better methods each
// score becomes 1-score and rows not above MinProbabilityScore are dropped;
// mode is ignored. Other methods are rescaled by mode over the whole batch.
// The input slice is not modified.
func Normalize(preds []predictor.Prediction, method predictor.Method, mode Mode) ([]predictor.Prediction, error) {
	if _, err := predictor.ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if method.LowerIsBetter() {
		out := make([]predictor.Prediction, 0, len(preds))
		for _, p := range preds {
			p.Score = 1 - p.Score
			if p.Score > MinProbabilityScore {
				out = append(out, p)
			}
		}
		return out, nil
	}

	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	out := make([]predictor.Prediction, len(preds))
	copy(out, preds)
	if len(out) == 0 {
		return out, nil
	}

	scores := make([]float64, len(out))
	for i, p := range out {
		scores[i] = p.Score
	}

	switch mode {
	case ModeNormal:
		mean, sd := stat.MeanStdDev(scores, nil)
		if sd == 0 || math.IsNaN(sd) {
			return nil, fmt.Errorf("%w: standard deviation is %v", ErrDegenerate, sd)
		}
		for i := range out {
			z := (out[i].Score - mean) / sd
			z = math.Max(-2, math.Min(2, z))
			out[i].Score = z/4 + 0.5
		}
	case ModeMax:
		max := scores[0]
		for _, s := range scores[1:] {
			max = math.Max(max, s)
		}
		if max <= 0 {
			return nil, fmt.Errorf("%w: maximum score is %v", ErrDegenerate, max)
		}
		for i := range out {
			out[i].Score /= max
		}
	case ModeRank:
		ranks := fractionalRanks(scores)
		for i := range out {
			out[i].Score = ranks[i] / float64(len(out))
		}
	}
	return out, nil
}

// fractionalRanks returns 1-based ascending ranks with ties averaged.
func fractionalRanks(scores []float64) []float64 {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
