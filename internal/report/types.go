package report

import (
	"time"

	"github.com/domfun/domfun/internal/predictor"
	"github.com/domfun/domfun/internal/store"
)

// BatchSummary describes one prediction batch.
type BatchSummary struct {
	RunID      string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Method     string          `json:"method" yaml:"method"`
	Threshold  float64         `json:"pvalue_threshold" yaml:"pvalue_threshold"`
	Workers    int             `json:"workers" yaml:"workers"`
	Duration   time.Duration   `json:"duration_ns" yaml:"duration"`
	Indexed    int             `json:"indexed_associations" yaml:"indexed_associations"`
	Duplicates int             `json:"duplicate_associations" yaml:"duplicate_associations"`
	BadRows    int             `json:"skipped_association_rows" yaml:"skipped_association_rows"`
	Stats      predictor.Stats `json:"stats" yaml:"stats"`
}

// RunDetail is a stored run with its skipped queries.
type RunDetail struct {
	Run   store.Run    `json:"run" yaml:"run"`
	Skips []store.Skip `json:"skips" yaml:"skips"`
}
