// Package predictor assigns functions to proteins from their structural
// domains.
//
// A run indexes a precomputed domain-function association table once, then
// for every query protein (or OR-group of proteins) it gathers the evidence
// of the query's domains, lays it out as a function × domain matrix, combines
// each row into a single score and keeps the functions passing a
// significance threshold. Queries are independent and are fanned out over a
// bounded worker pool; the index and dictionaries are shared read-only.
package predictor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Config selects the scoring behaviour of a Predictor.
type Config struct {
	Method    Method
	DOF       DOFPolicy
	Threshold float64
	NullValue float64
	Mode      IdentifierMode
	Workers   int
}

// Predictor runs the per-query pipeline against a fixed index and catalog.
type Predictor struct {
	idx     *Index
	catalog *Catalog
	cfg     Config
	logger  *zap.Logger
}

// New validates cfg and returns a Predictor. Configuration errors are
// returned here so that nothing runs with an invalid method or policy.
func New(idx *Index, catalog *Catalog, cfg Config) (*Predictor, error) {
	if _, err := ParseMethod(string(cfg.Method)); err != nil {
		return nil, err
	}
	if cfg.DOF == "" {
		cfg.DOF = DOFMaxNum
	}
	if _, err := ParseDOFPolicy(string(cfg.DOF)); err != nil {
		return nil, err
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeNormal
	}
	if _, err := ParseIdentifierMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = &Catalog{}
	}
	return &Predictor{
		idx:     idx,
		catalog: catalog,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}, nil
}

// SetLogger sets the logger used for per-query diagnostics.
func (p *Predictor) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Predict runs the pipeline for a single query.
func (p *Predictor) Predict(ctx context.Context, q Query) Outcome {
	domains := p.catalog.Resolve(q, p.cfg.Mode)
	if len(domains) == 0 {
		return Outcome{Skip: SkipNoDomains}
	}

	grouping := GroupByFunction(domains, p.idx)
	if grouping.Empty() {
		return Outcome{Skip: SkipNoEvidence}
	}

	matrix := BuildMatrix(grouping, domains, p.cfg.NullValue)
	combination, err := Combine(matrix, p.cfg.Method, p.cfg.DOF)
	if err != nil {
		if errors.Is(err, ErrDegenerateSampleLength) {
			return Outcome{Skip: SkipDegenerate, DegenerateFunctions: len(matrix.Functions)}
		}
		return Outcome{Skip: SkipFailed, Err: err}
	}
	if len(combination.Degenerate) > 0 {
		p.logger.Debug("dropped degenerate functions",
			zap.String("query", q.ID),
			zap.Strings("functions", combination.Degenerate))
	}

	return Outcome{
		Predictions:         FilterAndRank(q.ID, grouping, combination, p.cfg.Threshold),
		DegenerateFunctions: len(combination.Degenerate),
	}
}

// Run predicts every query with the configured worker count and returns the
// positional outcomes together with the batch counts.
func (p *Predictor) Run(ctx context.Context, queries []Query) ([]Outcome, Stats) {
	start := time.Now()
	outcomes := PredictAll(ctx, queries, p.cfg.Workers, p.Predict)
	stats := Summarize(outcomes)

	for _, o := range outcomes {
		if o.Err != nil {
			p.logger.Warn("query failed", zap.String("query", o.Query.ID), zap.Error(o.Err))
		}
	}
	p.logger.Info("prediction batch finished",
		zap.Int("queries", stats.Queries),
		zap.Int("predicted", stats.Predicted),
		zap.Int("no_domains", stats.NoDomains),
		zap.Int("no_evidence", stats.NoEvidence),
		zap.Int("degenerate", stats.Degenerate),
		zap.Int("failed", stats.Failed),
		zap.Int("predictions", stats.Predictions),
		zap.Int("degenerate_functions", stats.DegenerateFunctions),
		zap.Int("workers", p.cfg.Workers),
		zap.Duration("elapsed", time.Since(start)))
	return outcomes, stats
}
