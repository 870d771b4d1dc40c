package graph

import (
	"fmt"
	"math"
	"strings"
)

// Normalization selects how aggregated messages are scaled by node degree.
type Normalization string

const (
	// Sym scales by 1/sqrt(deg) before and after aggregation.
	Sym Normalization = "sym"
	// Left scales the aggregated sum by 1/deg, i.e. a neighbor mean.
	Left Normalization = "left"
	// None leaves the neighbor sum unscaled.
	None Normalization = "none"
)

// ParseNormalization accepts sym, left or none. An empty string means Sym.
func ParseNormalization(s string) (Normalization, error) {
	switch Normalization(strings.ToLower(strings.TrimSpace(s))) {
	case "", Sym:
		return Sym, nil
	case Left:
		return Left, nil
	case None:
		return None, nil
	default:
		return "", fmt.Errorf("graph: unknown normalization %q (want sym, left or none)", s)
	}
}

// Coefficients holds the per-node scale applied before (Pre) and after
// (Post) neighbor aggregation.
type Coefficients struct {
	Pre  []float64
	Post []float64
}

// Coefficients computes per-node scales from in-degrees. Nodes without
// in-edges are treated as having degree 1.
func (g *Graph) Coefficients(mode Normalization) (Coefficients, error) {
	n := g.numNodes
	c := Coefficients{Pre: make([]float64, n), Post: make([]float64, n)}
	deg := g.InDegrees()
	for i := 0; i < n; i++ {
		d := float64(deg[i])
		if d < 1 {
			d = 1
		}
		switch mode {
		case Sym, "":
			s := 1 / math.Sqrt(d)
			c.Pre[i], c.Post[i] = s, s
		case Left:
			c.Pre[i], c.Post[i] = 1, 1/d
		case None:
			c.Pre[i], c.Post[i] = 1, 1
		default:
			return Coefficients{}, fmt.Errorf("graph: unknown normalization %q", mode)
		}
	}
	return c, nil
}
