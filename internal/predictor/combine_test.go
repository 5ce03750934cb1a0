package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_FisherSingleValue(t *testing.T) {
	// One p-value of 0.01 combined on its own is itself: chi2(2) survival of
	// -2 ln(0.01) is exp(ln 0.01).
	got, err := Score(MethodFisher, []float64{2.0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, got, 1e-9)
}

func TestScore_FisherTwoValues(t *testing.T) {
	// chi2(4) survival at x is exp(-x/2)(1 + x/2); here x/2 = 3 ln 10.
	want := 1e-3 * (1 + 3*math.Ln10)
	got, err := Score(MethodFisher, []float64{2.0, 1.0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestScore_FisherNullPaddingIsNeutral(t *testing.T) {
	padded, err := Score(MethodFisher, []float64{2.0, 0, 0}, 1)
	require.NoError(t, err)
	bare, err := Score(MethodFisher, []float64{2.0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, bare, padded, 1e-12)
}

func TestScore_FisherStrongEvidenceDoesNotUnderflow(t *testing.T) {
	got, err := Score(MethodFisher, []float64{400}, 1)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got))
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestScore_Harmonic(t *testing.T) {
	got, err := Score(MethodHarmonic, []float64{1.0, 2.0}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/110.0, got, 1e-12)
}

func TestScore_OrderIndependent(t *testing.T) {
	row := []float64{0.3, 2.5, -1.25, 4.0, 0}
	permuted := []float64{4.0, 0, -1.25, 0.3, 2.5}

	for _, m := range []Method{MethodHarmonic, MethodSum, MethodAverage} {
		t.Run(string(m), func(t *testing.T) {
			a, err := Score(m, row, 4)
			require.NoError(t, err)
			b, err := Score(m, permuted, 4)
			require.NoError(t, err)
			assert.InDelta(t, a, b, 1e-12)
		})
	}
}

func TestScore_StoufferScaling(t *testing.T) {
	row := []float64{1.5, -0.5, 2.0}
	z1, err := Score(MethodStouffer, row, 2)
	require.NoError(t, err)
	z2, err := Score(MethodStouffer, row, 4)
	require.NoError(t, err)

	assert.InDelta(t, 3.0/math.Sqrt2, z1, 1e-12)
	assert.InDelta(t, math.Abs(z1)/math.Sqrt2, math.Abs(z2), 1e-12)
}

func TestScore_SumAndAverageUseMagnitudes(t *testing.T) {
	row := []float64{2.0, -1.0, 0}
	sum, err := Score(MethodSum, row, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, sum)

	avg, err := Score(MethodAverage, row, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)
}

func TestScore_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		method Method
		row    []float64
		length int
	}{
		{"fisher zero sample length", MethodFisher, []float64{1}, 0},
		{"stouffer zero sample length", MethodStouffer, []float64{1}, 0},
		{"harmonic empty row", MethodHarmonic, nil, 1},
		{"average empty row", MethodAverage, nil, 1},
		{"sum overflow", MethodSum, []float64{math.MaxFloat64, math.MaxFloat64}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.method, tt.row, tt.length)
			assert.Error(t, err)
		})
	}
}

func TestScore_UnknownMethod(t *testing.T) {
	_, err := Score("median", []float64{1}, 1)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCombine_SampleLengthIsGlobalMax(t *testing.T) {
	m := &Matrix{
		Functions: []string{"F1", "F2"},
		Domains:   []string{"D1", "D2"},
		Rows:      [][]float64{{2, 1}, {1, 0}},
	}
	c, err := Combine(m, MethodStouffer, DOFMaxNum)
	require.NoError(t, err)
	assert.Equal(t, 2, c.SampleLength)
	assert.InDelta(t, 3/math.Sqrt2, c.Scores["F1"], 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, c.Scores["F2"], 1e-12)
}

func TestCombine_ZeroSampleLength(t *testing.T) {
	m := &Matrix{
		Functions: []string{"F1"},
		Domains:   []string{"D1"},
		Rows:      [][]float64{{0}},
	}
	_, err := Combine(m, MethodFisher, DOFMaxNum)
	assert.ErrorIs(t, err, ErrDegenerateSampleLength)

	c, err := Combine(m, MethodSum, DOFMaxNum)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Scores["F1"])
}

func TestCombine_VacuousFisherRowIsFlagged(t *testing.T) {
	m := &Matrix{
		Functions: []string{"F1", "F2"},
		Domains:   []string{"D1", "D2"},
		Rows:      [][]float64{{2, 0}, {0, 0}},
	}
	c, err := Combine(m, MethodFisher, DOFMaxNum)
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, c.Functions)
	assert.Equal(t, []string{"F2"}, c.Degenerate)
	_, scored := c.Scores["F2"]
	assert.False(t, scored)
}

func TestCombine_ConfigurationErrors(t *testing.T) {
	m := &Matrix{Functions: []string{"F1"}, Rows: [][]float64{{1}}}

	_, err := Combine(m, "median", DOFMaxNum)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = Combine(m, MethodSum, "perrow")
	assert.ErrorIs(t, err, ErrUnknownDOFPolicy)
}

func TestMethod_Passes(t *testing.T) {
	tests := []struct {
		method Method
		score  float64
		want   bool
	}{
		{MethodFisher, 0.04, true},
		{MethodFisher, 0.06, false},
		{MethodFisher, 0.05, true},
		{MethodHarmonic, 0.05, true},
		{MethodHarmonic, 0.051, false},
		{MethodSum, 0.04, false},
		{MethodSum, 0.06, true},
		{MethodSum, 0.05, true},
		{MethodAverage, 0.05, true},
		{MethodStouffer, 0.049, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.method.Passes(tt.score, 0.05), "%s %.3f", tt.method, tt.score)
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMethod("bonferroni")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
