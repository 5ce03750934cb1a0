// Package dataset reads and writes the tab-separated tables exchanged by the
// pipeline: domain-function associations, CATH domain assignments, query
// lists, prediction files, control sets and identifier dictionaries.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxLineBytes = 64 * 1024 * 1024

// ParseError reports a malformed line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// lineScanner walks a tab-separated stream, tracking line numbers and
// skipping blank lines.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
	text string
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	return &lineScanner{sc: sc}
}

func (s *lineScanner) next() bool {
	for s.sc.Scan() {
		s.line++
		s.text = strings.TrimRight(s.sc.Text(), "\r")
		if strings.TrimSpace(s.text) == "" {
			continue
		}
		return true
	}
	return false
}

func (s *lineScanner) fields() []string {
	return strings.Split(s.text, "\t")
}

func (s *lineScanner) err() error { return s.sc.Err() }

// splitList splits a separator-joined cell, dropping empty items.
func splitList(cell, sep string) []string {
	var out []string
	for _, item := range strings.Split(cell, sep) {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
