package dataset

import (
	"fmt"
	"io"
	"strings"
)

// ReadSetTable loads key<TAB>item<sep>item... rows, as used by control sets
// and protein annotation tables. Repeated keys accumulate items.
func ReadSetTable(r io.Reader, path, sep string) (map[string][]string, error) {
	out := make(map[string][]string)
	s := newLineScanner(r)
	for s.next() {
		cols := s.fields()
		if len(cols) < 2 {
			return nil, &ParseError{Path: path, Line: s.line, Err: fmt.Errorf("expected 2 tab-separated columns, got %d", len(cols))}
		}
		key := strings.TrimSpace(cols[0])
		for _, item := range splitList(cols[1], sep) {
			out[key] = appendUnique(out[key], item)
		}
	}
	return out, s.err()
}

// ReadDictionary loads a two-column key<TAB>value table into key→values.
// When invert is set the second column becomes the key.
func ReadDictionary(r io.Reader, path string, invert bool) (map[string][]string, error) {
	out := make(map[string][]string)
	s := newLineScanner(r)
	for s.next() {
		cols := s.fields()
		if len(cols) < 2 {
			return nil, &ParseError{Path: path, Line: s.line, Err: fmt.Errorf("expected 2 tab-separated columns, got %d", len(cols))}
		}
		key, value := unquote(cols[0]), unquote(cols[1])
		if invert {
			key, value = value, key
		}
		out[key] = appendUnique(out[key], value)
	}
	return out, s.err()
}

// ReadIdentifiers loads every tab-separated cell of a file as a unique
// identifier list, in first-seen order.
func ReadIdentifiers(r io.Reader) ([]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	s := newLineScanner(r)
	for s.next() {
		for _, cell := range s.fields() {
			cell = unquote(cell)
			if cell == "" {
				continue
			}
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}
			ids = append(ids, cell)
		}
	}
	return ids, s.err()
}
