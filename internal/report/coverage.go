package report

import (
	"github.com/domfun/domfun/internal/dataset"
)

// Coverage compares a CATH assignment table with the CAFA target and
// training sets: targets are matched by gene name, training proteins by
// accession.
type Coverage struct {
	CATHGenes       int     `json:"cath_genes" yaml:"cath_genes"`
	Targets         int     `json:"targets" yaml:"targets"`
	TargetsMatched  int     `json:"targets_with_domains" yaml:"targets_with_domains"`
	TargetsPercent  float64 `json:"targets_percent" yaml:"targets_percent"`
	Training        int     `json:"training" yaml:"training"`
	TrainingMatched int     `json:"training_with_domains" yaml:"training_with_domains"`
	TrainingPercent float64 `json:"training_percent" yaml:"training_percent"`
}

// ComputeCoverage counts how many targets and training proteins have at
// least one CATH domain. Identifier lists are expected to be unique.
func ComputeCoverage(cath *dataset.CATH, targets, training []string) Coverage {
	c := Coverage{
		CATHGenes: len(cath.GeneProteins),
		Targets:   len(targets),
		Training:  len(training),
	}
	for _, g := range targets {
		if _, ok := cath.GeneProteins[g]; ok {
			c.TargetsMatched++
		}
	}
	for _, p := range training {
		if _, ok := cath.ProteinDomains[p]; ok {
			c.TrainingMatched++
		}
	}
	c.TargetsPercent = percent(c.TargetsMatched, c.Targets)
	c.TrainingPercent = percent(c.TrainingMatched, c.Training)
	return c
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
