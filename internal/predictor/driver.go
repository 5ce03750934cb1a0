package predictor

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// SkipReason explains why a query produced no prediction list.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipNoDomains  SkipReason = "no_domains"
	SkipNoEvidence SkipReason = "no_evidence"
	SkipDegenerate SkipReason = "degenerate"
	SkipFailed     SkipReason = "failed"
)

// Outcome is the result of one query. Predictions is nil whenever Skip is
// set; a query that was scored but had nothing pass the threshold has an
// empty, non-nil slice.
type Outcome struct {
	Query       Query
	Predictions []Prediction
	Skip        SkipReason
	// DegenerateFunctions counts rows dropped for numeric degeneracy.
	DegenerateFunctions int
	Err                 error
}

// Pipeline runs the whole per-query prediction.
type Pipeline func(ctx context.Context, q Query) Outcome

// PredictAll runs pipeline over every query with at most workers concurrent
// tasks. Outcomes are positional: outcome i belongs to queries[i] whatever
// the completion order. Zero or one worker runs serially. A failing or
// panicking task is reported on its own outcome and never stops its siblings.
func PredictAll(ctx context.Context, queries []Query, workers int, pipeline Pipeline) []Outcome {
	outcomes := make([]Outcome, len(queries))
	if workers <= 1 {
		for i, q := range queries {
			outcomes[i] = runTask(ctx, q, pipeline)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			outcomes[i] = runTask(ctx, q, pipeline)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func runTask(ctx context.Context, q Query, pipeline Pipeline) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Query: q,
				Skip:  SkipFailed,
				Err:   fmt.Errorf("query %s panicked: %v\n%s", q.ID, r, debug.Stack()),
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return Outcome{Query: q, Skip: SkipFailed, Err: err}
	}
	out = pipeline(ctx, q)
	out.Query = q
	if out.Err != nil && out.Skip == SkipNone {
		out.Skip = SkipFailed
	}
	if out.Skip != SkipNone {
		out.Predictions = nil
	}
	return out
}

// Stats are the batch QA counts reported after a run.
type Stats struct {
	Queries             int `json:"queries" yaml:"queries"`
	Predicted           int `json:"predicted" yaml:"predicted"`
	NoDomains           int `json:"no_domains" yaml:"no_domains"`
	NoEvidence          int `json:"no_evidence" yaml:"no_evidence"`
	Degenerate          int `json:"degenerate" yaml:"degenerate"`
	Failed              int `json:"failed" yaml:"failed"`
	Predictions         int `json:"predictions" yaml:"predictions"`
	DegenerateFunctions int `json:"degenerate_functions" yaml:"degenerate_functions"`
}

// Skipped returns the number of queries without a prediction list.
func (s Stats) Skipped() int {
	return s.NoDomains + s.NoEvidence + s.Degenerate + s.Failed
}

// Summarize tallies outcomes into batch counts.
func Summarize(outcomes []Outcome) Stats {
	s := Stats{Queries: len(outcomes)}
	for _, o := range outcomes {
		s.DegenerateFunctions += o.DegenerateFunctions
		switch o.Skip {
		case SkipNone:
			s.Predicted++
			s.Predictions += len(o.Predictions)
		case SkipNoDomains:
			s.NoDomains++
		case SkipNoEvidence:
			s.NoEvidence++
		case SkipDegenerate:
			s.Degenerate++
		default:
			s.Failed++
		}
	}
	return s
}

// Flatten concatenates the prediction lists of all predicted outcomes in
// query order.
func Flatten(outcomes []Outcome) []Prediction {
	var all []Prediction
	for _, o := range outcomes {
		all = append(all, o.Predictions...)
	}
	return all
}
