package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/graph"
)

// Layer is one graph convolution:
//
//	H' = act(Post * A * (Pre * (dropout(H) W + b)))
//
// where A sums each node's in-neighbors and Pre/Post are per-node degree
// coefficients.
type Layer struct {
	graph      *graph.Graph
	coef       graph.Coefficients
	weight     *Param
	bias       *Param
	activation bool
	dropout    float64
	rng        *rand.Rand

	input   *mat.Dense
	mask    *mat.Dense
	preAct  *mat.Dense
	inWidth int
}

func newLayer(name string, g *graph.Graph, coef graph.Coefficients, in, out int, activation bool, dropout float64, rng *rand.Rand) *Layer {
	l := &Layer{
		graph:      g,
		coef:       coef,
		weight:     newParam(name+".weight", in, out),
		bias:       newParam(name+".bias", 1, out),
		activation: activation,
		dropout:    dropout,
		rng:        rng,
		inWidth:    in,
	}
	glorotUniform(l.weight.Value, rng)
	return l
}

// Dims returns the input and output widths.
func (l *Layer) Dims() (in, out int) {
	return l.weight.Value.Dims()
}

// Params returns the weight and bias.
func (l *Layer) Params() []*Param {
	return []*Param{l.weight, l.bias}
}

func (l *Layer) String() string {
	in, out := l.Dims()
	return fmt.Sprintf("GCNLayer(%d -> %d, relu=%t, dropout=%.2f)", in, out, l.activation, l.dropout)
}

// Forward applies the layer to x (one row per node).
func (l *Layer) Forward(x *mat.Dense, train bool) *mat.Dense {
	rows, cols := x.Dims()
	if cols != l.inWidth || rows != l.graph.NumNodes() {
		panic(mat.ErrShape)
	}

	h := x
	l.mask = nil
	if train && l.dropout > 0 {
		keep := 1 - l.dropout
		mask := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			row := mask.RawRowView(i)
			for j := range row {
				if l.rng.Float64() >= l.dropout {
					row[j] = 1 / keep
				}
			}
		}
		var dropped mat.Dense
		dropped.MulElem(x, mask)
		h = &dropped
		l.mask = mask
	}

	var z mat.Dense
	z.Mul(h, l.weight.Value)
	bias := l.bias.Value.RawRowView(0)
	for i := 0; i < rows; i++ {
		row := z.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}

	graph.ScaleRows(&z, l.coef.Pre)
	agg := l.graph.Propagate(&z)
	graph.ScaleRows(agg, l.coef.Post)

	l.input = h
	l.preAct = agg
	if !l.activation {
		return mat.DenseCopyOf(agg)
	}
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, agg)
	return &out
}

// Backward accumulates weight and bias gradients from grad = dLoss/dOutput
// and returns dLoss/dInput. It must follow a Forward call.
func (l *Layer) Backward(grad *mat.Dense) *mat.Dense {
	if l.preAct == nil {
		panic("model: Backward called before Forward")
	}
	dy := mat.DenseCopyOf(grad)
	if l.activation {
		dy.Apply(func(i, j int, v float64) float64 {
			if l.preAct.At(i, j) > 0 {
				return v
			}
			return 0
		}, dy)
	}

	graph.ScaleRows(dy, l.coef.Post)
	dz := l.graph.PropagateReverse(dy)
	graph.ScaleRows(dz, l.coef.Pre)

	var dw mat.Dense
	dw.Mul(l.input.T(), dz)
	l.weight.Grad.Add(l.weight.Grad, &dw)

	db := l.bias.Grad.RawRowView(0)
	rows, _ := dz.Dims()
	for i := 0; i < rows; i++ {
		for j, v := range dz.RawRowView(i) {
			db[j] += v
		}
	}

	var dx mat.Dense
	dx.Mul(dz, l.weight.Value.T())
	if l.mask != nil {
		dx.MulElem(&dx, l.mask)
	}
	return &dx
}
