package predictor

import "sort"

// Filter returns the functions whose combined score passes the threshold in
// the method's direction, preserving row order.
func (c *Combination) Filter(threshold float64) []string {
	kept := make([]string, 0, len(c.Functions))
	for _, function := range c.Functions {
		if c.Method.Passes(c.Scores[function], threshold) {
			kept = append(kept, function)
		}
	}
	return kept
}

// FilterAndRank turns the passing functions of a combination into output
// rows for the given query. Rows follow matrix row order.
func FilterAndRank(protein string, g *Grouping, c *Combination, threshold float64) []Prediction {
	kept := c.Filter(threshold)
	preds := make([]Prediction, 0, len(kept))
	for _, function := range kept {
		domains := make([]string, len(g.Domains[function]))
		copy(domains, g.Domains[function])
		preds = append(preds, Prediction{
			Protein:  protein,
			Domains:  domains,
			Function: function,
			Score:    c.Scores[function],
		})
	}
	return preds
}

// SortByScore orders predictions by ascending score. Ties keep their
// existing order.
func SortByScore(preds []Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Score < preds[j].Score
	})
}
