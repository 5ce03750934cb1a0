package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/predictor"
	"github.com/domfun/domfun/internal/source"
	"github.com/domfun/domfun/internal/store"
	"github.com/domfun/domfun/internal/validate"
)

var summary = &BatchSummary{
	RunID:     "run-1",
	Method:    "fisher",
	Threshold: 0.05,
	Workers:   4,
	Duration:  1500 * time.Millisecond,
	Indexed:   10,
	Stats:     predictor.Stats{Queries: 5, Predicted: 3, NoDomains: 1, Failed: 1, Predictions: 9},
}

func TestNewFormatter(t *testing.T) {
	for _, f := range append(Formats, "") {
		_, err := NewFormatter(f, false)
		assert.NoError(t, err, f)
	}
	_, err := NewFormatter("pdf", false)
	assert.Error(t, err)
}

func TestFormatSummary_Table(t *testing.T) {
	f, err := NewFormatter("table", false)
	require.NoError(t, err)
	out, err := f.FormatSummary(summary)
	require.NoError(t, err)

	assert.Contains(t, out, "=== Prediction Batch ===")
	assert.Contains(t, out, "Queries\n")
	assert.Contains(t, out, "OUTCOME")
	assert.Regexp(t, `no domains\s+1`, out)
	assert.Regexp(t, `Skipped queries:\s+2`, out)
	assert.NotContains(t, out, "\033[")
}

func TestFormatSummary_Color(t *testing.T) {
	f, err := NewFormatter("table", true)
	require.NoError(t, err)
	out, err := f.FormatSummary(summary)
	require.NoError(t, err)
	assert.Contains(t, out, colorRed+"1"+colorReset)
}

func TestFormatSummary_JSONAndYAML(t *testing.T) {
	f, err := NewFormatter("json", false)
	require.NoError(t, err)
	out, err := f.FormatSummary(summary)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "fisher", decoded["method"])
	assert.Equal(t, float64(3), decoded["stats"].(map[string]any)["predicted"])

	f, err = NewFormatter("yaml", false)
	require.NoError(t, err)
	out, err = f.FormatSummary(summary)
	require.NoError(t, err)
	var y struct {
		Stats predictor.Stats `yaml:"stats"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &y))
	assert.Equal(t, summary.Stats, y.Stats)
}

func TestFormatValidation_HTML(t *testing.T) {
	f, err := NewFormatter("html", false)
	require.NoError(t, err)
	out, err := f.FormatValidation(&validate.Result{Predicted: 0, PrecisionUndefined: true, Recall: 0.5})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Validation</h1>")
	assert.Contains(t, out, "<td>undefined</td>")
	assert.Contains(t, out, "<td>0.5000</td>")
}

func TestFormatRuns(t *testing.T) {
	f, err := NewFormatter("table", false)
	require.NoError(t, err)

	out, err := f.FormatRuns(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	out, err = f.FormatRuns([]store.Run{{ID: "abc", Method: "sum", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}})
	require.NoError(t, err)
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")

	f, err = NewFormatter("json", false)
	require.NoError(t, err)
	out, err = f.FormatRuns(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestFormatRun_Skips(t *testing.T) {
	f, err := NewFormatter("html", false)
	require.NoError(t, err)
	out, err := f.FormatRun(&RunDetail{
		Run:   store.Run{ID: "r1", Method: "fisher"},
		Skips: []store.Skip{{Query: "P<1>", Reason: "failed", Error: "boom"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Skipped Queries</h2>")
	assert.Contains(t, out, "P&lt;1&gt;")
}

func TestComputeCoverage(t *testing.T) {
	cath := &dataset.CATH{
		ProteinDomains: map[string][]string{"Q1": {"1.10"}, "Q2": {"2.20"}},
		GeneProteins:   map[string][]string{"G1_HUMAN": {"Q1"}, "G2_MOUSE": {"Q2"}},
	}
	c := ComputeCoverage(cath, []string{"G1_HUMAN", "G3_HUMAN", "G4_HUMAN", "G2_MOUSE"}, []string{"Q1", "Q9"})
	assert.Equal(t, 2, c.CATHGenes)
	assert.Equal(t, 2, c.TargetsMatched)
	assert.Equal(t, 50.0, c.TargetsPercent)
	assert.Equal(t, 1, c.TrainingMatched)
	assert.Equal(t, 50.0, c.TrainingPercent)

	empty := ComputeCoverage(cath, nil, nil)
	assert.Zero(t, empty.TargetsPercent)
}

func TestExporter(t *testing.T) {
	opener := source.NewOpener(source.Options{})
	defer opener.Close()

	path := filepath.Join(t.TempDir(), "nested", "summary.json")
	require.NoError(t, NewExporter(opener).Export(context.Background(), path, "{}\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
