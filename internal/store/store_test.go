package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domfun/domfun/internal/predictor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := &Run{
		Method:          "fisher",
		DomainCategory:  "superfamilyID",
		IdentifierMode:  "normal",
		PValueThreshold: 0.05,
		AssociationsURI: "assoc.tsv",
		Stats:           predictor.Stats{Queries: 3, Predicted: 1, NoDomains: 2, Predictions: 2},
	}
	preds := []predictor.Prediction{
		{Protein: "P1", Domains: []string{"D1", "D2"}, Function: "F1", Score: 0.001},
		{Protein: "P1", Domains: []string{"D1"}, Function: "F2", Score: 0.04},
	}
	require.NoError(t, s.SaveRun(ctx, run, preds))
	require.NotEmpty(t, run.ID)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Stats, got.Stats)
	assert.Equal(t, "fisher", got.Method)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Millisecond)

	back, err := s.Predictions(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, preds, back)
}

func TestSaveRun_Skips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	outcomes := []predictor.Outcome{
		{Query: predictor.NewQuery("P1"), Predictions: []predictor.Prediction{}},
		{Query: predictor.NewQuery("P2"), Skip: predictor.SkipNoDomains},
		{Query: predictor.NewQuery("P3"), Skip: predictor.SkipFailed, Err: errors.New("bad row")},
	}
	run := &Run{Method: "sum", Skips: SkipsFromOutcomes(outcomes)}
	require.NoError(t, s.SaveRun(ctx, run, nil))

	skips, err := s.Skips(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []Skip{
		{Query: "P2", Reason: "no_domains"},
		{Query: "P3", Reason: "failed", Error: "bad row"},
	}, skips)
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveRun(ctx, &Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour), Method: "sum"}, nil))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetRun_NotFound(t *testing.T) {
	_, err := openTestStore(t).GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, &Run{ID: "x", Method: "sum"}, nil))
	err := s.SaveRun(ctx, &Run{ID: "x", Method: "sum"}, []predictor.Prediction{{Protein: "P1", Function: "F1"}})
	assert.Error(t, err)

	preds, err := s.Predictions(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))
	lite := &Store{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)
	_, err = ParseDialect("oracle")
	assert.Error(t, err)
}
