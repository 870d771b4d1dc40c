package graph

import "gonum.org/v1/gonum/mat"

// Propagate returns a matrix whose row d is the sum of h's rows over every
// source s with an edge s->d. h must have one row per node.
func (g *Graph) Propagate(h mat.Matrix) *mat.Dense {
	return g.gather(h, g.inPtr, g.inSrc)
}

// PropagateReverse sums h's rows over out-neighbors; it is the transpose of
// Propagate and carries gradients back from destinations to sources.
func (g *Graph) PropagateReverse(h mat.Matrix) *mat.Dense {
	return g.gather(h, g.outPtr, g.outDst)
}

func (g *Graph) gather(h mat.Matrix, ptr, idx []int) *mat.Dense {
	r, c := h.Dims()
	if r != g.numNodes {
		panic(mat.ErrShape)
	}
	src := mat.DenseCopyOf(h)
	out := mat.NewDense(r, c, nil)
	for node := 0; node < r; node++ {
		dst := out.RawRowView(node)
		for _, nb := range idx[ptr[node]:ptr[node+1]] {
			row := src.RawRowView(nb)
			for j, v := range row {
				dst[j] += v
			}
		}
	}
	return out
}

// ScaleRows multiplies row i of m in place by coef[i].
func ScaleRows(m *mat.Dense, coef []float64) {
	r, _ := m.Dims()
	if r != len(coef) {
		panic(mat.ErrShape)
	}
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] *= coef[i]
		}
	}
}
