package predictor

// Matrix is the dense function × domain view of a Grouping. Rows follow
// Grouping.Functions and columns follow the query's domain list; cells with
// no association hold Null.
type Matrix struct {
	Functions []string
	Domains   []string
	Rows      [][]float64
	Null      float64
}

// BuildMatrix lays the grouped evidence out over every domain of the query,
// not only the domains evidencing each function, so that absent evidence is
// represented uniformly by the null value.
func BuildMatrix(g *Grouping, domains []string, null float64) *Matrix {
	m := &Matrix{
		Functions: g.Functions,
		Domains:   domains,
		Rows:      make([][]float64, 0, len(g.Functions)),
		Null:      null,
	}
	for _, function := range g.Functions {
		strengths := g.Strengths[function]
		row := make([]float64, len(domains))
		for j, domain := range domains {
			if v, ok := strengths[domain]; ok {
				row[j] = v
			} else {
				row[j] = null
			}
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// nonNull counts the cells of a row that differ from the null value.
func (m *Matrix) nonNull(row []float64) int {
	n := 0
	for _, v := range row {
		if v != m.Null {
			n++
		}
	}
	return n
}

// SampleLength derives the degrees of freedom shared by every row.
func (m *Matrix) SampleLength(policy DOFPolicy) (int, error) {
	if policy != DOFMaxNum {
		return 0, ErrUnknownDOFPolicy
	}
	longest := 0
	for _, row := range m.Rows {
		if n := m.nonNull(row); n > longest {
			longest = n
		}
	}
	return longest, nil
}
