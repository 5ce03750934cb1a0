// Package cafa converts predictions into CAFA submission files and the
// configuration consumed by the CAFA assessment tool.
package cafa

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/predictor"
)

// DefaultKeywords is written on the KEYWORDS line of a submission.
const DefaultKeywords = "sequence alignment."

// Row is one submitted target/function score.
type Row struct {
	Target   string
	Function string
	Score    float64
}

// Translate maps each prediction's protein accession to a gene and the gene
// to a CAFA target id, taking the first mapping of each dictionary. Proteins
// without a target are returned once each, in first-seen order.
func Translate(preds []predictor.Prediction, accessionGenes, geneTargets map[string][]string) ([]Row, []string) {
	var rows []Row
	var untranslated []string
	missing := make(map[string]struct{})
	for _, p := range preds {
		target, ok := lookup(p.Protein, accessionGenes, geneTargets)
		if !ok {
			if _, seen := missing[p.Protein]; !seen {
				missing[p.Protein] = struct{}{}
				untranslated = append(untranslated, p.Protein)
			}
			continue
		}
		rows = append(rows, Row{Target: target, Function: p.Function, Score: p.Score})
	}
	return rows, untranslated
}

func lookup(protein string, accessionGenes, geneTargets map[string][]string) (string, bool) {
	genes := accessionGenes[protein]
	if len(genes) == 0 {
		return "", false
	}
	targets := geneTargets[genes[0]]
	if len(targets) == 0 {
		return "", false
	}
	return targets[0], true
}

// Header names the author and model of a submission.
type Header struct {
	Author   string
	Model    string
	Keywords string
}

// HeaderFor derives the submission header from a predictions sidecar.
func HeaderFor(meta *dataset.Metadata, model string) Header {
	return Header{
		Author:   string(meta.DomainCategory) + meta.AssociationMethod,
		Model:    model,
		Keywords: DefaultKeywords,
	}
}

// WriteSubmission writes the AUTHOR/MODEL/KEYWORDS header, one
// target<TAB>function<TAB>score line per row with two-decimal scores, and
// the END footer.
func WriteSubmission(w io.Writer, h Header, rows []Row) error {
	keywords := h.Keywords
	if keywords == "" {
		keywords = DefaultKeywords
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "AUTHOR %s\nMODEL %s\nKEYWORDS %s\n", h.Author, h.Model, keywords)
	for _, r := range rows {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", r.Target, r.Function, strconv.FormatFloat(r.Score, 'f', 2, 64))
	}
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

// WriteUntranslated writes one protein per line.
func WriteUntranslated(w io.Writer, proteins []string) error {
	if len(proteins) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(proteins, "\n")+"\n")
	return err
}

// AssessConfig is the launch configuration of one assessment.
type AssessConfig struct {
	Assess Assess `yaml:"assess"`
}

// Assess lists the inputs of an assessment run.
type Assess struct {
	File      string `yaml:"file"`
	OBO       string `yaml:"obo"`
	Benchmark string `yaml:"benchmark"`
	Results   string `yaml:"results"`
}

// PlotConfig groups several submissions on one assessment plot.
type PlotConfig struct {
	Results string
	Title   string
	Smooth  string
	Files   []string
}

// MarshalYAML lays out the numbered file1..fileN keys expected by the
// plotting tool.
func (p PlotConfig) MarshalYAML() (any, error) {
	body := &yaml.Node{Kind: yaml.MappingNode}
	add := func(k, v string) {
		body.Content = append(body.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	add("results", p.Results)
	add("title", p.Title)
	add("smooth", p.Smooth)
	for i, f := range p.Files {
		add("file"+strconv.Itoa(i+1), f)
	}
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: "plot"}, body},
	}, nil
}

// WriteYAML encodes a configuration document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// FileNames are the output names of one exported predictions file.
type FileNames struct {
	Submission   string
	Config       string
	Untranslated string
}

// NamesFor builds output names from a header and its sidecar.
func NamesFor(h Header, meta *dataset.Metadata) FileNames {
	stem := string(meta.DomainCategory) + "_" + meta.AssociationMethod
	return FileNames{
		Submission:   h.Author + "_" + h.Model + "_all.txt",
		Config:       stem + "_config_launch.yaml",
		Untranslated: stem + "_untranslated_proteins.txt",
	}
}
