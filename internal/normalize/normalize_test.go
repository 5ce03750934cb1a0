package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domfun/domfun/internal/predictor"
)

func preds(scores ...float64) []predictor.Prediction {
	out := make([]predictor.Prediction, len(scores))
	for i, s := range scores {
		out[i] = predictor.Prediction{Protein: "P1", Domains: []string{"D1"}, Function: string(rune('A' + i)), Score: s}
	}
	return out
}

func scoresOf(ps []predictor.Prediction) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.Score
	}
	return out
}

func TestNormalize_LowerIsBetter(t *testing.T) {
	in := preds(0.01, 0.9995, 0.5)
	out, err := Normalize(in, predictor.MethodFisher, ModeNormal)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 0.99, out[0].Score, 1e-12)
	assert.InDelta(t, 0.5, out[1].Score, 1e-12)
	assert.Equal(t, "C", out[1].Function)
	assert.Equal(t, 0.01, in[0].Score, "input must be untouched")
}

func TestNormalize_Normal(t *testing.T) {
	out, err := Normalize(preds(1, 2, 3, 100), predictor.MethodSum, ModeNormal)
	require.NoError(t, err)
	for _, s := range scoresOf(out) {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Greater(t, out[3].Score, out[0].Score)

	sym, err := Normalize(preds(1, 3), predictor.MethodSum, ModeNormal)
	require.NoError(t, err)
	// mean 2, sample sd sqrt(2): z = ±1/sqrt(2)
	assert.InDelta(t, 1-sym[1].Score, sym[0].Score, 1e-12)
}

func TestNormalize_NormalClipsAtTwoSigma(t *testing.T) {
	in := preds(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 100)
	out, err := Normalize(in, predictor.MethodAverage, ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out[19].Score)
}

func TestNormalize_Max(t *testing.T) {
	out, err := Normalize(preds(1, 4, 2), predictor.MethodSum, ModeMax)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 1, 0.5}, scoresOf(out))
}

func TestNormalize_Rank(t *testing.T) {
	out, err := Normalize(preds(5, 1, 5, 3), predictor.MethodStouffer, ModeRank)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5 / 4, 1.0 / 4, 3.5 / 4, 2.0 / 4}, scoresOf(out))
}

func TestNormalize_Degenerate(t *testing.T) {
	_, err := Normalize(preds(2, 2, 2), predictor.MethodSum, ModeNormal)
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = Normalize(preds(2), predictor.MethodSum, ModeNormal)
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = Normalize(preds(-1, 0), predictor.MethodSum, ModeMax)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize(preds(1), "median", ModeNormal)
	assert.ErrorIs(t, err, predictor.ErrUnknownMethod)

	_, err = Normalize(preds(1, 2), predictor.MethodSum, "log")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNormalize_Empty(t *testing.T) {
	out, err := Normalize(nil, predictor.MethodSum, ModeNormal)
	require.NoError(t, err)
	assert.Empty(t, out)
}
