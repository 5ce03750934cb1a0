// Package network builds protein-centred edge lists for graph-based
// association tools.
package network

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Kind selects which node classes are linked to proteins.
type Kind string

const (
	// Bipartite links domains to proteins.
	Bipartite Kind = "bipartite"
	// Tripartite links functions and domains to proteins.
	Tripartite Kind = "tripartite"
)

// ParseKind validates a network kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Bipartite, Tripartite:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown network kind %q (valid: bipartite, tripartite)", s)
}

// Edge joins a domain or function node to a protein.
type Edge struct {
	Node    string
	Protein string
}

// Build returns the edges of the requested network. In a tripartite network
// only annotated proteins take part: all function edges come first, then
// the domain edges of those proteins. A bipartite network links every
// protein in domains. Nodes are unique per protein and proteins are visited
// in sorted order.
func Build(kind Kind, annotations, domains map[string][]string) ([]Edge, error) {
	switch kind {
	case Bipartite:
		return edges(sortedKeys(domains), domains), nil
	case Tripartite:
		proteins := sortedKeys(annotations)
		out := edges(proteins, annotations)
		return append(out, edges(proteins, domains)...), nil
	}
	return nil, fmt.Errorf("unknown network kind %q", kind)
}

func edges(proteins []string, nodes map[string][]string) []Edge {
	var out []Edge
	for _, p := range proteins {
		seen := make(map[string]struct{})
		for _, n := range nodes[p] {
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, Edge{Node: n, Protein: p})
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Write emits node<TAB>protein lines.
func Write(w io.Writer, edges []Edge) error {
	bw := bufio.NewWriter(w)
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", e.Node, e.Protein); err != nil {
			return err
		}
	}
	return bw.Flush()
}
