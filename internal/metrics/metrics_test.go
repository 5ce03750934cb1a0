package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domfun/domfun/internal/predictor"
)

func TestRecordBatch(t *testing.T) {
	m := New()
	m.RecordBatch(predictor.Stats{
		Queries: 5, Predicted: 2, NoDomains: 1, NoEvidence: 1, Failed: 1,
		Predictions: 7, DegenerateFunctions: 3,
	}, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Queries.WithLabelValues("predicted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("no_domains")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Queries.WithLabelValues("degenerate")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Predictions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DegenerateFunctions))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.BatchDuration))
}

func TestRecordIndex(t *testing.T) {
	m := New()
	idx := predictor.BuildIndex([]predictor.Association{
		{Function: "F1", Domain: "D1", Strength: 1},
		{Function: "F1", Domain: "D1", Strength: 2},
	}, predictor.IndexOptions{})
	m.RecordIndex(idx, 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Associations.WithLabelValues("indexed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Associations.WithLabelValues("duplicate")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Associations.WithLabelValues("skipped")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordBatch(predictor.Stats{Predicted: 1}, time.Second)
	m.RecordIndex(nil, 0)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordBatch(predictor.Stats{Predicted: 1, Predictions: 2}, time.Second)

	path := filepath.Join(t.TempDir(), "domfun.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `domfun_queries_total{outcome="predicted"} 1`)
	assert.Contains(t, string(data), "domfun_predictions_total 2")
}
