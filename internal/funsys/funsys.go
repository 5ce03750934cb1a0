// Package funsys canonicalises functional-system identifiers (GO terms,
// KEGG pathways, Reactome pathways) so that annotations coming from
// different species collapse onto one identifier.
package funsys

import (
	"fmt"
	"regexp"
	"strings"
)

// Scheme names a function identifier namespace.
type Scheme string

const (
	SchemeNone     Scheme = ""
	SchemeGO       Scheme = "go"
	SchemeKEGG     Scheme = "kegg"
	SchemeReactome Scheme = "reactome"
)

var (
	reactomeSpecies = regexp.MustCompile(`R-([A-Z]{3})-`)
	keggOrganism    = regexp.MustCompile(`path:([a-z]{3,4})`)
)

// ParseScheme validates a scheme name. The empty string disables
// canonicalisation.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(s)) {
	case SchemeNone, SchemeGO, SchemeKEGG, SchemeReactome:
		return Scheme(strings.ToLower(s)), nil
	}
	return SchemeNone, fmt.Errorf("unknown function scheme %q (valid: go, kegg, reactome)", s)
}

// Normalize returns the canonical form of id under the scheme.
//
//	reactome  R-HSA-109581  -> R-109581
//	kegg      path:hsa04110 -> path:map04110
func Normalize(scheme Scheme, id string) string {
	switch scheme {
	case SchemeReactome:
		return reactomeSpecies.ReplaceAllString(id, "R-")
	case SchemeKEGG:
		return keggOrganism.ReplaceAllString(id, "path:map")
	}
	return id
}
