package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Category selects which CATH column is used as the domain identifier.
type Category string

const (
	CategorySuperfamily Category = "superfamilyID"
	CategoryFunFam      Category = "funfamID"
)

// ErrUnknownCategory is returned for a domain category other than
// superfamilyID or funfamID.
var ErrUnknownCategory = errors.New("invalid domain category")

// ParseCategory validates a domain category name.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySuperfamily, CategoryFunFam:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %q (valid: superfamilyID, funfamID)", ErrUnknownCategory, s)
}

const (
	cathProteinCol     = 0
	cathGeneCol        = 3
	cathSuperfamilyCol = 5
	cathFunFamCol      = 6
)

// CATH holds the protein/gene/domain dictionaries derived from a CATH
// domain assignment table.
type CATH struct {
	ProteinDomains map[string][]string
	ProteinGene    map[string]string
	GeneProteins   map[string][]string
	Proteins       int
}

// CATHOptions controls ReadCATH.
type CATHOptions struct {
	Path     string
	Category Category
	// Whitelist, when non-nil, keeps only rows whose protein accession or
	// gene name is in the set.
	Whitelist map[string]struct{}
}

// ReadCATH loads a CATH assignment table. The first line is a header.
// Columns used: 0 protein accession, 3 gene name, 5 superfamily id,
// 6 funfam id. Fusion genes are skipped and spaces in gene names are
// replaced by underscores; NULL genes and proteins are left out of the gene
// dictionaries.
func ReadCATH(r io.Reader, opts CATHOptions) (*CATH, error) {
	col := cathSuperfamilyCol
	switch opts.Category {
	case CategorySuperfamily, "":
	case CategoryFunFam:
		col = cathFunFamCol
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, opts.Category)
	}

	c := &CATH{
		ProteinDomains: make(map[string][]string),
		ProteinGene:    make(map[string]string),
		GeneProteins:   make(map[string][]string),
	}
	s := newLineScanner(r)
	header := true
	for s.next() {
		if header {
			header = false
			continue
		}
		cols := s.fields()
		if len(cols) <= cathFunFamCol {
			return nil, &ParseError{
				Path: opts.Path,
				Line: s.line,
				Err:  fmt.Errorf("expected at least %d tab-separated columns, got %d", cathFunFamCol+1, len(cols)),
			}
		}
		protein := unquote(cols[cathProteinCol])
		gene := unquote(cols[cathGeneCol])
		if strings.Contains(gene, "fusion") {
			continue
		}
		gene = strings.ReplaceAll(gene, " ", "_")
		if opts.Whitelist != nil && !inSet(opts.Whitelist, protein) && !inSet(opts.Whitelist, gene) {
			continue
		}

		if domain := unquote(cols[col]); domain != "" {
			c.ProteinDomains[protein] = append(c.ProteinDomains[protein], domain)
		}
		if gene != "NULL" {
			c.ProteinGene[protein] = gene
		}
		if protein != "NULL" {
			c.GeneProteins[gene] = appendUnique(c.GeneProteins[gene], protein)
		}
	}
	if err := s.err(); err != nil {
		return nil, err
	}
	c.Proteins = len(c.ProteinDomains)
	return c, nil
}

// DomainSet returns every domain referenced by the table.
func (c *CATH) DomainSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, domains := range c.ProteinDomains {
		for _, d := range domains {
			set[d] = struct{}{}
		}
	}
	return set
}

// ReadProteinDomains loads the batch protein→domains table
// (protein<TAB>D1,D2,...).
func ReadProteinDomains(r io.Reader, path string) (map[string][]string, error) {
	out := make(map[string][]string)
	s := newLineScanner(r)
	for s.next() {
		cols := s.fields()
		if len(cols) != 2 {
			return nil, &ParseError{Path: path, Line: s.line, Err: fmt.Errorf("expected 2 tab-separated columns, got %d", len(cols))}
		}
		out[strings.TrimSpace(cols[0])] = splitList(cols[1], ",")
	}
	return out, s.err()
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
