package dataset

import (
	"io"
	"strings"

	"github.com/domfun/domfun/internal/predictor"
)

const (
	memberSeparator  = "|"
	profileSeparator = "!"
)

// ParseQueries splits an inline query string.
//
// Without multiple, every '|'-separated identifier is its own query. With
// multiple, the string holds '!'-separated profiles, each an OR-group of
// '|'-separated identifiers.
func ParseQueries(text string, multiple bool) []predictor.Query {
	if !multiple {
		var queries []predictor.Query
		for _, id := range splitList(text, memberSeparator) {
			queries = append(queries, predictor.NewQuery(id))
		}
		return queries
	}
	var queries []predictor.Query
	for _, profile := range splitList(text, profileSeparator) {
		if members := splitList(profile, memberSeparator); len(members) > 0 {
			queries = append(queries, predictor.NewProfile(members))
		}
	}
	return queries
}

// ReadQueries reads a query file with one entry per line: an identifier, or
// with multiple a '|'-separated profile.
func ReadQueries(r io.Reader, multiple bool) ([]predictor.Query, error) {
	var queries []predictor.Query
	s := newLineScanner(r)
	for s.next() {
		line := strings.TrimSpace(s.text)
		if multiple {
			queries = append(queries, predictor.NewProfile(splitList(line, memberSeparator)))
		} else {
			queries = append(queries, predictor.NewQuery(line))
		}
	}
	return queries, s.err()
}

// QueryIdentifiers returns every member identifier across queries.
func QueryIdentifiers(queries []predictor.Query) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, q := range queries {
		for _, m := range q.Members {
			ids[m] = struct{}{}
		}
	}
	return ids
}
