package predictor

import "strings"

// Query is one prediction task. Members holds the identifiers whose domains
// are pooled; a single-protein query has exactly one member.
type Query struct {
	ID      string
	Members []string
}

// NewQuery builds a single-member query.
func NewQuery(id string) Query {
	return Query{ID: id, Members: []string{id}}
}

// NewProfile builds an OR-group query whose id is the members joined by '|'.
func NewProfile(members []string) Query {
	return Query{ID: strings.Join(members, "|"), Members: members}
}

// Catalog holds the read-only identifier dictionaries used to resolve
// queries to domains.
type Catalog struct {
	ProteinDomains map[string][]string
	GeneProteins   map[string][]string
}

// Resolve returns the unique domains of a query, in first-seen order.
//
// In ModeMixed each member is first expanded through GeneProteins; a member
// that is not a known gene is looked up as a protein. In ModeNormal members
// are looked up directly.
func (c *Catalog) Resolve(q Query, mode IdentifierMode) []string {
	var domains []string
	seen := make(map[string]struct{})
	collect := func(protein string) {
		for _, d := range c.ProteinDomains[protein] {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			domains = append(domains, d)
		}
	}

	for _, member := range q.Members {
		if mode == ModeMixed {
			if proteins, ok := c.GeneProteins[member]; ok {
				for _, p := range proteins {
					collect(p)
				}
				continue
			}
		}
		collect(member)
	}
	return domains
}
