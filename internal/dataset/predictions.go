package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/domfun/domfun/internal/predictor"
)

// FormatScore renders a score with the shortest exact representation.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// WritePredictions writes prediction rows as
// protein<TAB>domain,domain<TAB>function<TAB>score.
func WritePredictions(w io.Writer, preds []predictor.Prediction) error {
	bw := bufio.NewWriter(w)
	for _, p := range preds {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n",
			p.Protein, strings.Join(p.Domains, ","), p.Function, FormatScore(p.Score)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadPredictions loads a predictions file. Lines mentioning ProteinID are
// treated as headers. Extra trailing columns are ignored.
func ReadPredictions(r io.Reader, path string) ([]predictor.Prediction, error) {
	var preds []predictor.Prediction
	s := newLineScanner(r)
	for s.next() {
		if strings.Contains(s.text, "ProteinID") {
			continue
		}
		cols := s.fields()
		if len(cols) < 4 {
			return nil, &ParseError{Path: path, Line: s.line, Err: fmt.Errorf("expected at least 4 tab-separated columns, got %d", len(cols))}
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(cols[3]), 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: s.line, Err: fmt.Errorf("score %q is not a number", cols[3])}
		}
		preds = append(preds, predictor.Prediction{
			Protein:  cols[0],
			Domains:  splitList(cols[1], ","),
			Function: cols[2],
			Score:    score,
		})
	}
	return preds, s.err()
}
