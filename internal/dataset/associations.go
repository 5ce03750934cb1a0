package dataset

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/domfun/domfun/internal/funsys"
	"github.com/domfun/domfun/internal/predictor"
)

// AssociationOptions controls how the association table is read.
type AssociationOptions struct {
	// Path is only used to label errors.
	Path string
	// Scheme canonicalises function identifiers as they are read.
	Scheme funsys.Scheme
	// Strict aborts on a non-numeric strength instead of skipping the row.
	Strict bool
	// Warn receives every skipped row. It may be nil.
	Warn func(error)
}

// ReadAssociations streams (function, domain, strength) rows into fn. A row
// with the wrong number of columns aborts the read. A row whose strength is
// not a finite number is skipped and reported through Warn unless Strict is
// set. It returns the number of skipped rows.
func ReadAssociations(r io.Reader, opts AssociationOptions, fn func(predictor.Association) error) (int, error) {
	s := newLineScanner(r)
	skipped := 0
	for s.next() {
		cols := s.fields()
		if len(cols) != 3 {
			return skipped, &ParseError{
				Path: opts.Path,
				Line: s.line,
				Err:  fmt.Errorf("expected 3 tab-separated columns, got %d", len(cols)),
			}
		}
		strength, err := strconv.ParseFloat(strings.TrimSpace(cols[2]), 64)
		if err != nil || math.IsNaN(strength) || math.IsInf(strength, 0) {
			perr := &ParseError{Path: opts.Path, Line: s.line, Err: fmt.Errorf("association strength %q is not a finite number", cols[2])}
			if opts.Strict {
				return skipped, perr
			}
			skipped++
			if opts.Warn != nil {
				opts.Warn(perr)
			}
			continue
		}
		a := predictor.Association{
			Function: funsys.Normalize(opts.Scheme, strings.TrimSpace(cols[0])),
			Domain:   strings.TrimSpace(cols[1]),
			Strength: strength,
		}
		if err := fn(a); err != nil {
			return skipped, err
		}
	}
	return skipped, s.err()
}

// LoadIndex reads the association table straight into a predictor index.
func LoadIndex(r io.Reader, opts AssociationOptions, idxOpts predictor.IndexOptions) (*predictor.Index, int, error) {
	b := predictor.NewIndexBuilder(idxOpts)
	skipped, err := ReadAssociations(r, opts, func(a predictor.Association) error {
		b.Add(a)
		return nil
	})
	if err != nil {
		return nil, skipped, err
	}
	return b.Build(), skipped, nil
}
