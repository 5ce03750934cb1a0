package predictor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	errEmptyRow  = errors.New("empty evidence row")
	errNonFinite = errors.New("combined score is not finite")
)

// Combination holds the combined score of every function of one query.
type Combination struct {
	Method       Method
	SampleLength int
	// Functions lists the scored functions in matrix row order.
	Functions []string
	Scores    map[string]float64
	// Degenerate lists functions whose row could not be scored (vacuous
	// Fisher rows, non-finite results). They carry no score.
	Degenerate []string
}

// Combine scores every row of the matrix with the given method. A zero
// sample length is an error for the methods that depend on it; row-level
// degeneracies are recorded on the result instead.
func Combine(m *Matrix, method Method, policy DOFPolicy) (*Combination, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	sampleLength, err := m.SampleLength(policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, policy)
	}
	if sampleLength == 0 && (method == MethodFisher || method == MethodStouffer) {
		return nil, ErrDegenerateSampleLength
	}

	c := &Combination{
		Method:       method,
		SampleLength: sampleLength,
		Functions:    make([]string, 0, len(m.Rows)),
		Scores:       make(map[string]float64, len(m.Rows)),
	}
	for i, row := range m.Rows {
		function := m.Functions[i]
		if method == MethodFisher && m.nonNull(row) == 0 {
			c.Degenerate = append(c.Degenerate, function)
			continue
		}
		score, err := Score(method, row, sampleLength)
		if err != nil {
			c.Degenerate = append(c.Degenerate, function)
			continue
		}
		c.Functions = append(c.Functions, function)
		c.Scores[function] = score
	}
	return c, nil
}

// Score combines one evidence row. For fisher and harmonic the values are
// -log10 p-values; stouffer reads them as Z-scores; average and sum use
// their magnitudes.
func Score(method Method, row []float64, sampleLength int) (float64, error) {
	var score float64
	switch method {
	case MethodFisher:
		if sampleLength <= 0 {
			return 0, ErrDegenerateSampleLength
		}
		score = fisher(row, sampleLength)
	case MethodHarmonic:
		if len(row) == 0 {
			return 0, errEmptyRow
		}
		score = harmonic(row)
	case MethodStouffer:
		if sampleLength <= 0 {
			return 0, ErrDegenerateSampleLength
		}
		score = stouffer(row, sampleLength)
	case MethodAverage:
		if len(row) == 0 {
			return 0, errEmptyRow
		}
		score = absSum(row) / float64(len(row))
	case MethodSum:
		score = absSum(row)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, errNonFinite
	}
	return score, nil
}

// fisher is Fisher's combined probability test. ln(10^-a) is evaluated as
// -a·ln10 so that very strong evidence does not underflow to ln(0).
func fisher(row []float64, sampleLength int) float64 {
	var lnSum float64
	for _, a := range row {
		lnSum += -a * math.Ln10
	}
	chi2 := distuv.ChiSquared{K: float64(2 * sampleLength)}
	return chi2.Survival(-2 * lnSum)
}

func harmonic(row []float64) float64 {
	var inv float64
	for _, a := range row {
		inv += 1 / math.Pow(10, -a)
	}
	if inv == 0 {
		return math.NaN()
	}
	return float64(len(row)) / inv
}

func stouffer(row []float64, sampleLength int) float64 {
	var sum float64
	for _, z := range row {
		sum += z
	}
	return sum / math.Sqrt(float64(sampleLength))
}

func absSum(row []float64) float64 {
	var sum float64
	for _, v := range row {
		sum += math.Abs(v)
	}
	return sum
}
