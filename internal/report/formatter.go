// Package report renders batch summaries, coverage, validation results and
// stored runs as terminal tables, JSON, YAML or HTML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/domfun/domfun/internal/store"
	"github.com/domfun/domfun/internal/validate"
)

// Colors for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// Formats lists the supported output formats.
var Formats = []string{"table", "json", "yaml", "html"}

// Formatter renders reports in one format.
type Formatter struct {
	format string
	color  bool
	title  cases.Caser
}

// NewFormatter validates format and returns a formatter. Color only applies
// to the table format.
func NewFormatter(format string, color bool) (*Formatter, error) {
	switch format {
	case "":
		format = "table"
	case "table", "json", "yaml", "html":
	default:
		return nil, fmt.Errorf("unsupported format: %s (valid: %s)", format, strings.Join(Formats, ", "))
	}
	return &Formatter{format: format, color: color, title: cases.Title(language.English)}, nil
}

// document is the format-neutral layout shared by the table and html
// renderers.
type document struct {
	Title    string
	Sections []section
}

type section struct {
	Heading string
	Pairs   [][2]string
	Header  []string
	Rows    [][]string
	Empty   string
}

// FormatSummary formats the QA counts of a batch.
func (f *Formatter) FormatSummary(s *BatchSummary) (string, error) {
	skipped := s.Stats.Skipped()
	doc := document{
		Title: "prediction batch",
		Sections: []section{
			{
				Heading: "run",
				Pairs: [][2]string{
					{"Run", orDash(s.RunID)},
					{"Method", s.Method},
					{"Threshold", strconv.FormatFloat(s.Threshold, 'g', -1, 64)},
					{"Workers", strconv.Itoa(s.Workers)},
					{"Elapsed", s.Duration.Round(time.Millisecond).String()},
				},
			},
			{
				Heading: "associations",
				Pairs: [][2]string{
					{"Indexed", strconv.Itoa(s.Indexed)},
					{"Duplicates", strconv.Itoa(s.Duplicates)},
					{"Skipped rows", f.warnCount(s.BadRows)},
				},
			},
			{
				Heading: "queries",
				Header:  []string{"OUTCOME", "COUNT"},
				Rows: [][]string{
					{"predicted", strconv.Itoa(s.Stats.Predicted)},
					{"no domains", strconv.Itoa(s.Stats.NoDomains)},
					{"no evidence", strconv.Itoa(s.Stats.NoEvidence)},
					{"degenerate", strconv.Itoa(s.Stats.Degenerate)},
					{"failed", f.warnCount(s.Stats.Failed)},
					{"total", strconv.Itoa(s.Stats.Queries)},
				},
			},
			{
				Heading: "output",
				Pairs: [][2]string{
					{"Predictions", strconv.Itoa(s.Stats.Predictions)},
					{"Skipped queries", strconv.Itoa(skipped)},
					{"Degenerate functions", strconv.Itoa(s.Stats.DegenerateFunctions)},
				},
			},
		},
	}
	return f.render(s, doc)
}

// FormatCoverage formats a coverage report.
func (f *Formatter) FormatCoverage(c *Coverage) (string, error) {
	doc := document{
		Title: "domain coverage",
		Sections: []section{{
			Heading: "coverage",
			Header:  []string{"SET", "TOTAL", "WITH DOMAINS", "PERCENT"},
			Rows: [][]string{
				{"CATH genes", strconv.Itoa(c.CATHGenes), "", ""},
				{"targets", strconv.Itoa(c.Targets), strconv.Itoa(c.TargetsMatched), fmt.Sprintf("%.2f%%", c.TargetsPercent)},
				{"training", strconv.Itoa(c.Training), strconv.Itoa(c.TrainingMatched), fmt.Sprintf("%.2f%%", c.TrainingPercent)},
			},
		}},
	}
	return f.render(c, doc)
}

// FormatValidation formats a validation result.
func (f *Formatter) FormatValidation(r *validate.Result) (string, error) {
	rate := func(v float64, undefined bool) string {
		if undefined {
			return "undefined"
		}
		return fmt.Sprintf("%.4f", v)
	}
	doc := document{
		Title: "validation",
		Sections: []section{
			{
				Heading: "counts",
				Pairs: [][2]string{
					{"Control proteins", strconv.Itoa(r.ControlProteins)},
					{"Predicted proteins", strconv.Itoa(r.PredictedProteins)},
					{"Predicted functions", strconv.Itoa(r.Predicted)},
					{"Expected functions", strconv.Itoa(r.Expected)},
					{"Shared functions", strconv.Itoa(r.Shared)},
				},
			},
			{
				Heading: "rates",
				Pairs: [][2]string{
					{"Precision", rate(r.Precision, r.PrecisionUndefined)},
					{"Recall", rate(r.Recall, r.RecallUndefined)},
					{"F1", fmt.Sprintf("%.4f", r.F1)},
				},
			},
		},
	}
	return f.render(r, doc)
}

// FormatRuns formats a list of stored runs.
func (f *Formatter) FormatRuns(runs []store.Run) (string, error) {
	s := section{
		Heading: "runs",
		Header:  []string{"ID", "CREATED", "METHOD", "CATEGORY", "QUERIES", "PREDICTED", "PREDICTIONS"},
		Empty:   "No runs recorded",
	}
	for _, r := range runs {
		s.Rows = append(s.Rows, []string{
			r.ID,
			r.CreatedAt.Format(time.RFC3339),
			r.Method,
			r.DomainCategory,
			strconv.Itoa(r.Stats.Queries),
			strconv.Itoa(r.Stats.Predicted),
			strconv.Itoa(r.Stats.Predictions),
		})
	}
	if runs == nil {
		runs = []store.Run{}
	}
	return f.render(runs, document{Title: "stored runs", Sections: []section{s}})
}

// FormatRun formats one stored run and its skipped queries.
func (f *Formatter) FormatRun(d *RunDetail) (string, error) {
	r := d.Run
	skips := section{
		Heading: "skipped queries",
		Header:  []string{"QUERY", "REASON", "ERROR"},
		Empty:   "No skipped queries",
	}
	for _, s := range d.Skips {
		skips.Rows = append(skips.Rows, []string{s.Query, s.Reason, s.Error})
	}
	doc := document{
		Title: "run " + r.ID,
		Sections: []section{
			{
				Heading: "settings",
				Pairs: [][2]string{
					{"Created", r.CreatedAt.Format(time.RFC3339)},
					{"Method", r.Method},
					{"Domain category", r.DomainCategory},
					{"Identifier mode", r.IdentifierMode},
					{"P-value threshold", strconv.FormatFloat(r.PValueThreshold, 'g', -1, 64)},
					{"Association threshold", strconv.FormatFloat(r.AssociationThreshold, 'g', -1, 64)},
					{"Associations", orDash(r.AssociationsURI)},
					{"Checksum", orDash(r.AssociationsChecksum)},
				},
			},
			{
				Heading: "queries",
				Pairs: [][2]string{
					{"Total", strconv.Itoa(r.Stats.Queries)},
					{"Predicted", strconv.Itoa(r.Stats.Predicted)},
					{"Skipped", strconv.Itoa(r.Stats.Skipped())},
					{"Predictions", strconv.Itoa(r.Stats.Predictions)},
				},
			},
			skips,
		},
	}
	return f.render(d, doc)
}

func (f *Formatter) render(v any, doc document) (string, error) {
	switch f.format {
	case "json":
		return toJSON(v)
	case "yaml":
		return toYAML(v)
	case "html":
		return f.toHTML(doc)
	}
	return f.toTable(doc), nil
}

func (f *Formatter) toTable(doc document) string {
	var sb strings.Builder
	sb.WriteString(f.header(f.title.String(doc.Title)))
	for _, s := range doc.Sections {
		sb.WriteString(f.subheader(f.title.String(s.Heading)))
		if len(s.Pairs) > 0 {
			w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
			for _, p := range s.Pairs {
				fmt.Fprintf(w, "  %s:\t%s\n", p[0], p[1])
			}
			w.Flush()
		}
		if len(s.Header) > 0 {
			if len(s.Rows) == 0 && s.Empty != "" {
				sb.WriteString(s.Empty + "\n")
			} else {
				w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join(s.Header, "\t"))
				fmt.Fprintln(w, strings.Join(underline(s.Header), "\t"))
				for _, row := range s.Rows {
					fmt.Fprintln(w, strings.Join(row, "\t"))
				}
				w.Flush()
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func underline(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.Repeat("-", len(c))
	}
	return out
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Sections}}<h2>{{.Heading}}</h2>
{{if .Pairs}}<table>
{{range .Pairs}}<tr><th>{{index . 0}}</th><td>{{index . 1}}</td></tr>
{{end}}</table>
{{end}}{{if .Header}}{{if .Rows}}<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{else}}<p>{{.Empty}}</p>
{{end}}{{end}}{{end}}</body>
</html>
`))

func (f *Formatter) toHTML(doc document) (string, error) {
	doc.Title = f.title.String(doc.Title)
	for i := range doc.Sections {
		doc.Sections[i].Heading = f.title.String(doc.Sections[i].Heading)
	}
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

// Helper methods

func (f *Formatter) header(text string) string {
	if f.color {
		return fmt.Sprintf("\n%s%s=== %s ===%s\n\n", colorBold, colorCyan, text, colorReset)
	}
	return fmt.Sprintf("\n=== %s ===\n\n", text)
}

func (f *Formatter) subheader(text string) string {
	if f.color {
		return fmt.Sprintf("%s%s%s%s\n", colorBold, colorYellow, text, colorReset)
	}
	return fmt.Sprintf("%s\n", text)
}

func (f *Formatter) warnCount(n int) string {
	s := strconv.Itoa(n)
	if !f.color {
		return s
	}
	if n > 0 {
		return colorRed + s + colorReset
	}
	return colorGreen + s + colorReset
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func toYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
