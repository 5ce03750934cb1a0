package predictor

// Grouping is the evidence for one query regrouped by function.
//
// Functions keeps first-seen order and fixes the row order of the annotation
// matrix. For every function, Domains lists the contributing domains (one
// entry per index record, so a duplicated record lists its domain twice) and
// Strengths maps each contributing domain to its strength.
type Grouping struct {
	Functions []string
	Domains   map[string][]string
	Strengths map[string]map[string]float64
}

func newGrouping() *Grouping {
	return &Grouping{
		Domains:   make(map[string][]string),
		Strengths: make(map[string]map[string]float64),
	}
}

func (g *Grouping) add(function, domain string, strength float64) {
	strengths, ok := g.Strengths[function]
	if !ok {
		strengths = make(map[string]float64)
		g.Strengths[function] = strengths
		g.Functions = append(g.Functions, function)
	}
	g.Domains[function] = append(g.Domains[function], domain)
	// A repeated record for the same domain overwrites the earlier strength.
	strengths[domain] = strength
}

// Empty reports whether no domain produced any evidence.
func (g *Grouping) Empty() bool { return len(g.Functions) == 0 }

// GroupByFunction looks up every domain of a query and regroups the evidence
// by function. Domains absent from the index contribute nothing; a domain
// listed more than once is only looked up once.
func GroupByFunction(domains []string, idx *Index) *Grouping {
	g := newGrouping()
	visited := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		if _, ok := visited[domain]; ok {
			continue
		}
		visited[domain] = struct{}{}

		evidence, ok := idx.Lookup(domain)
		if !ok {
			continue
		}
		for _, ev := range evidence {
			g.add(ev.Function, domain, ev.Strength)
		}
	}
	return g
}
