package model

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/graph"
)

// Options sizes a GCN.
type Options struct {
	InFeats int
	Hidden  int
	Classes int
	// Layers is the number of hidden GCN layers; the network has Layers+1
	// graph convolutions in total.
	Layers  int
	Dropout float64
	Seed    int64
}

// GCN is an input layer, Layers-1 hidden layers and a linear output layer.
type GCN struct {
	layers []*Layer
}

// NewGCN builds a GCN over g with the given normalization coefficients.
func NewGCN(g *graph.Graph, coef graph.Coefficients, opts Options) (*GCN, error) {
	if g == nil {
		return nil, errors.New("model: graph is nil")
	}
	n := g.NumNodes()
	if len(coef.Pre) != n || len(coef.Post) != n {
		return nil, fmt.Errorf("model: %d nodes but %d/%d coefficients", n, len(coef.Pre), len(coef.Post))
	}
	if opts.InFeats <= 0 || opts.Hidden <= 0 || opts.Classes <= 0 {
		return nil, fmt.Errorf("model: widths must be > 0 (in=%d hidden=%d classes=%d)", opts.InFeats, opts.Hidden, opts.Classes)
	}
	if opts.Layers < 1 {
		return nil, fmt.Errorf("model: layers must be >= 1 (got %d)", opts.Layers)
	}
	if opts.Dropout < 0 || opts.Dropout >= 1 {
		return nil, fmt.Errorf("model: dropout must be in [0,1) (got %g)", opts.Dropout)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	m := &GCN{}
	m.layers = append(m.layers, newLayer("layer0", g, coef, opts.InFeats, opts.Hidden, true, opts.Dropout, rng))
	for i := 1; i < opts.Layers; i++ {
		m.layers = append(m.layers, newLayer(fmt.Sprintf("layer%d", i), g, coef, opts.Hidden, opts.Hidden, true, opts.Dropout, rng))
	}
	m.layers = append(m.layers, newLayer(fmt.Sprintf("layer%d", opts.Layers), g, coef, opts.Hidden, opts.Classes, false, opts.Dropout, rng))
	return m, nil
}

// Forward feeds x through every layer in order.
func (m *GCN) Forward(x *mat.Dense, train bool) *mat.Dense {
	h := x
	for _, l := range m.layers {
		h = l.Forward(h, train)
	}
	return h
}

// Backward runs the layers in reverse.
func (m *GCN) Backward(grad *mat.Dense) {
	g := grad
	for i := len(m.layers) - 1; i >= 0; i-- {
		g = m.layers[i].Backward(g)
	}
}

// Params returns every layer's parameters, input layer first.
func (m *GCN) Params() []*Param {
	out := make([]*Param, 0, 2*len(m.layers))
	for _, l := range m.layers {
		out = append(out, l.Params()...)
	}
	return out
}

// Layers returns the layer stack.
func (m *GCN) Layers() []*Layer {
	return m.layers
}
