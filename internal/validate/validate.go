// Package validate scores predictions against a curated control set.
package validate

import (
	"github.com/domfun/domfun/internal/predictor"
)

// Result holds the counts and derived rates of one validation.
type Result struct {
	ControlProteins   int     `json:"control_proteins" yaml:"control_proteins"`
	PredictedProteins int     `json:"predicted_proteins" yaml:"predicted_proteins"`
	Predicted         int     `json:"predicted" yaml:"predicted"`
	Expected          int     `json:"expected" yaml:"expected"`
	Shared            int     `json:"shared" yaml:"shared"`
	Precision         float64 `json:"precision" yaml:"precision"`
	Recall            float64 `json:"recall" yaml:"recall"`
	F1                float64 `json:"f1" yaml:"f1"`
	// Undefined rates had a zero denominator and are reported as 0.
	PrecisionUndefined bool `json:"precision_undefined,omitempty" yaml:"precision_undefined,omitempty"`
	RecallUndefined    bool `json:"recall_undefined,omitempty" yaml:"recall_undefined,omitempty"`
}

// Evaluate compares predictions with control (protein → expected functions).
// Only control proteins are considered; a function predicted twice for the
// same protein counts once.
func Evaluate(preds []predictor.Prediction, control map[string][]string) Result {
	predicted := make(map[string]map[string]struct{})
	for _, p := range preds {
		set, ok := predicted[p.Protein]
		if !ok {
			set = make(map[string]struct{})
			predicted[p.Protein] = set
		}
		set[p.Function] = struct{}{}
	}

	r := Result{ControlProteins: len(control)}
	for protein, expected := range control {
		r.Expected += len(expected)
		got, ok := predicted[protein]
		if !ok {
			continue
		}
		r.PredictedProteins++
		r.Predicted += len(got)
		seen := make(map[string]struct{}, len(expected))
		for _, f := range expected {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			if _, hit := got[f]; hit {
				r.Shared++
			}
		}
	}

	if r.Predicted == 0 {
		r.PrecisionUndefined = true
	} else {
		r.Precision = float64(r.Shared) / float64(r.Predicted)
	}
	if r.Expected == 0 {
		r.RecallUndefined = true
	} else {
		r.Recall = float64(r.Shared) / float64(r.Expected)
	}
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r
}
