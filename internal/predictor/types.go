package predictor

import (
	"errors"
	"fmt"
	"strings"
)

// Association is one row of the domain-function association table.
type Association struct {
	Function string
	Domain   string
	Strength float64
}

// Evidence is a (function, strength) pair attached to a domain in the index.
type Evidence struct {
	Function string
	Strength float64
}

// DomainSet is an optional whitelist of domain identifiers. A nil set admits
// every domain.
type DomainSet map[string]struct{}

// NewDomainSet builds a DomainSet from a list of identifiers.
func NewDomainSet(domains ...string) DomainSet {
	set := make(DomainSet, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

// Contains reports whether the set admits the domain.
func (s DomainSet) Contains(domain string) bool {
	if s == nil {
		return true
	}
	_, ok := s[domain]
	return ok
}

// Method is a score combination strategy.
type Method string

const (
	MethodFisher   Method = "fisher"
	MethodHarmonic Method = "harmonic"
	MethodStouffer Method = "stouffer"
	MethodAverage  Method = "average"
	MethodSum      Method = "sum"
)

// Methods lists every supported combination strategy.
var Methods = []Method{MethodFisher, MethodHarmonic, MethodStouffer, MethodAverage, MethodSum}

var (
	ErrUnknownMethod         = errors.New("invalid integration method")
	ErrUnknownDOFPolicy      = errors.New("invalid freedom degree calculation method")
	ErrUnknownIdentifierMode = errors.New("invalid identifier mode")

	// ErrDegenerateSampleLength is returned when no function row carries a
	// single non-null value, so the degrees of freedom would be zero.
	ErrDegenerateSampleLength = errors.New("sample length is zero: no function has non-null evidence")
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// LowerIsBetter reports whether the method yields p-value-like scores, where
// smaller means more significant.
func (m Method) LowerIsBetter() bool {
	return m == MethodFisher || m == MethodHarmonic
}

// Passes applies the method's threshold direction. P-value-like scores are
// kept when score <= threshold, magnitude-like scores when score >= threshold.
func (m Method) Passes(score, threshold float64) bool {
	if m.LowerIsBetter() {
		return score <= threshold
	}
	return score >= threshold
}

// DOFPolicy selects how the sample length used by Fisher and Stouffer is
// derived from the annotation matrix.
type DOFPolicy string

// DOFMaxNum uses the largest per-row count of non-null values for every row.
const DOFMaxNum DOFPolicy = "maxnum"

// ParseDOFPolicy validates a degrees-of-freedom policy name.
func ParseDOFPolicy(s string) (DOFPolicy, error) {
	if DOFPolicy(s) == DOFMaxNum {
		return DOFMaxNum, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDOFPolicy, s)
}

// IdentifierMode controls how a queried identifier is resolved to domains.
type IdentifierMode string

const (
	// ModeNormal looks the identifier up directly in the protein-domain map.
	ModeNormal IdentifierMode = "normal"
	// ModeMixed first expands a gene identifier into its protein accessions.
	ModeMixed IdentifierMode = "mixed"
)

// ParseIdentifierMode validates an identifier mode name.
func ParseIdentifierMode(s string) (IdentifierMode, error) {
	switch IdentifierMode(s) {
	case ModeNormal, ModeMixed:
		return IdentifierMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIdentifierMode, s)
}

// Prediction is one output row: a function predicted for a query together
// with the domains that evidenced it.
type Prediction struct {
	Protein  string
	Domains  []string
	Function string
	Score    float64
}
