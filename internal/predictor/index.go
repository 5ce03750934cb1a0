package predictor

// IndexOptions controls which association records enter the index.
type IndexOptions struct {
	// MinStrength drops records whose strength is strictly below it.
	MinStrength float64
	// Whitelist, when non-nil, drops records for domains outside the set.
	Whitelist DomainSet
	// Dedupe collapses repeated (domain, function) records into one entry
	// carrying the last strength seen. When off, repeats are kept and only
	// counted.
	Dedupe bool
}

// Index maps a domain to the functions it is associated with. It is built
// once per run and only read afterwards, so concurrent lookups are safe.
type Index struct {
	byDomain   map[string][]Evidence
	records    int
	duplicates int
}

// IndexBuilder accumulates association records into an Index.
type IndexBuilder struct {
	opts IndexOptions
	idx  *Index
	seen map[string]map[string]int
}

// NewIndexBuilder returns a builder applying opts to every added record.
func NewIndexBuilder(opts IndexOptions) *IndexBuilder {
	return &IndexBuilder{
		opts: opts,
		idx:  &Index{byDomain: make(map[string][]Evidence)},
		seen: make(map[string]map[string]int),
	}
}

// Add offers one record to the index and reports whether it was retained.
func (b *IndexBuilder) Add(a Association) bool {
	if !b.opts.Whitelist.Contains(a.Domain) {
		return false
	}
	if a.Strength < b.opts.MinStrength {
		return false
	}

	functions, ok := b.seen[a.Domain]
	if !ok {
		functions = make(map[string]int)
		b.seen[a.Domain] = functions
	}
	if pos, dup := functions[a.Function]; dup {
		b.idx.duplicates++
		if b.opts.Dedupe {
			b.idx.byDomain[a.Domain][pos].Strength = a.Strength
			return true
		}
	} else {
		functions[a.Function] = len(b.idx.byDomain[a.Domain])
	}

	b.idx.byDomain[a.Domain] = append(b.idx.byDomain[a.Domain], Evidence{Function: a.Function, Strength: a.Strength})
	b.idx.records++
	return true
}

// Build returns the finished index. The builder must not be used afterwards.
func (b *IndexBuilder) Build() *Index {
	b.seen = nil
	return b.idx
}

// BuildIndex indexes records in one call.
func BuildIndex(records []Association, opts IndexOptions) *Index {
	b := NewIndexBuilder(opts)
	for _, r := range records {
		b.Add(r)
	}
	return b.Build()
}

// Lookup returns the evidence recorded for a domain.
func (idx *Index) Lookup(domain string) ([]Evidence, bool) {
	ev, ok := idx.byDomain[domain]
	return ev, ok
}

// Domains returns the number of distinct domains in the index.
func (idx *Index) Domains() int { return len(idx.byDomain) }

// Records returns the number of evidence entries held.
func (idx *Index) Records() int { return idx.records }

// Duplicates returns how many records repeated an already indexed
// (domain, function) pair. These are a data-quality warning.
func (idx *Index) Duplicates() int { return idx.duplicates }
