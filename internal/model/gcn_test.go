package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/graph"
)

func ringGraph(t *testing.T, n int) (*graph.Graph, graph.Coefficients) {
	t.Helper()
	edges := make([]graph.Edge, 0, 2*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		edges = append(edges, graph.Edge{Src: i, Dst: j}, graph.Edge{Src: j, Dst: i})
	}
	g, err := graph.FromEdges(n, edges)
	require.NoError(t, err)
	g = g.AddSelfLoops()
	coef, err := g.Coefficients(graph.Sym)
	require.NoError(t, err)
	return g, coef
}

func randomDense(rng *rand.Rand, r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, rng.NormFloat64())
		}
	}
	return m
}

func TestGCNOutputWidths(t *testing.T) {
	g, coef := ringGraph(t, 6)
	x := randomDense(rand.New(rand.NewSource(1)), 6, 5)
	for layers := 1; layers <= 4; layers++ {
		m, err := NewGCN(g, coef, Options{InFeats: 5, Hidden: 7, Classes: 3, Layers: layers, Dropout: 0.5, Seed: 2})
		require.NoError(t, err)
		require.Len(t, m.Layers(), layers+1)
		require.Len(t, m.Params(), 2*(layers+1))

		prevOut := 5
		for _, l := range m.Layers() {
			in, out := l.Dims()
			require.Equal(t, prevOut, in, "layer widths must chain")
			prevOut = out
		}
		require.Equal(t, 3, prevOut)

		for _, train := range []bool{true, false} {
			r, c := m.Forward(x, train).Dims()
			require.Equal(t, 6, r)
			require.Equal(t, 3, c)
		}
	}
}

func TestNewGCNRejectsBadOptions(t *testing.T) {
	g, coef := ringGraph(t, 4)
	cases := map[string]Options{
		"zero layers":  {InFeats: 2, Hidden: 2, Classes: 2, Layers: 0},
		"zero hidden":  {InFeats: 2, Hidden: 0, Classes: 2, Layers: 1},
		"dropout one":  {InFeats: 2, Hidden: 2, Classes: 2, Layers: 1, Dropout: 1},
		"neg dropout":  {InFeats: 2, Hidden: 2, Classes: 2, Layers: 1, Dropout: -0.1},
		"zero classes": {InFeats: 2, Hidden: 2, Classes: 0, Layers: 1},
	}
	for name, opts := range cases {
		_, err := NewGCN(g, coef, opts)
		require.Error(t, err, name)
	}

	_, err := NewGCN(g, graph.Coefficients{}, Options{InFeats: 2, Hidden: 2, Classes: 2, Layers: 1})
	require.Error(t, err)
}

func TestForwardPanicsOnWrongWidth(t *testing.T) {
	g, coef := ringGraph(t, 4)
	m, err := NewGCN(g, coef, Options{InFeats: 3, Hidden: 2, Classes: 2, Layers: 1})
	require.NoError(t, err)
	require.PanicsWithValue(t, mat.ErrShape, func() {
		m.Forward(mat.NewDense(4, 2, nil), false)
	})
}

func TestEvalForwardIsDeterministic(t *testing.T) {
	g, coef := ringGraph(t, 5)
	m, err := NewGCN(g, coef, Options{InFeats: 4, Hidden: 8, Classes: 3, Layers: 2, Dropout: 0.5, Seed: 3})
	require.NoError(t, err)
	x := randomDense(rand.New(rand.NewSource(4)), 5, 4)
	require.True(t, mat.Equal(m.Forward(x, false), m.Forward(x, false)))
}

func TestGCNGradientMatchesFiniteDifference(t *testing.T) {
	g, coef := ringGraph(t, 5)
	m, err := NewGCN(g, coef, Options{InFeats: 3, Hidden: 4, Classes: 3, Layers: 2, Seed: 5})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(6))
	x := randomDense(rng, 5, 3)
	labels := []int{0, 1, 2, 1, 0}
	mask := []bool{true, true, false, true, true}

	lossAt := func() float64 {
		loss, _ := SoftmaxCrossEntropy(m.Forward(x, false), labels, mask)
		return loss
	}

	ZeroGrad(m.Params())
	_, grad := SoftmaxCrossEntropy(m.Forward(x, true), labels, mask)
	m.Backward(grad)

	const eps = 1e-6
	for _, p := range m.Params() {
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				orig := p.Value.At(i, j)
				p.Value.Set(i, j, orig+eps)
				up := lossAt()
				p.Value.Set(i, j, orig-eps)
				down := lossAt()
				p.Value.Set(i, j, orig)

				numeric := (up - down) / (2 * eps)
				analytic := p.Grad.At(i, j)
				require.InDelta(t, numeric, analytic, 1e-5, "%s[%d,%d]", p.Name, i, j)
			}
		}
	}
}

func TestSoftmaxCrossEntropyHonorsMask(t *testing.T) {
	logits := mat.NewDense(3, 4, nil)
	logits.Set(1, 2, 5)
	loss, grad := SoftmaxCrossEntropy(logits, []int{0, 2, 3}, []bool{true, false, true})
	require.InDelta(t, math.Log(4), loss, 1e-12)

	for j := 0; j < 4; j++ {
		require.Zero(t, grad.At(1, j))
	}
	require.InDelta(t, (0.25-1)/2, grad.At(0, 0), 1e-12)

	loss, grad = SoftmaxCrossEntropy(logits, []int{0, 0, 0}, []bool{false, false, false})
	require.Zero(t, loss)
	require.Zero(t, mat.Sum(grad))
}

func TestAccuracy(t *testing.T) {
	logits := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
		0, 1,
	})
	labels := []int{0, 1, 1, 0}
	require.Equal(t, 0.5, Accuracy(logits, labels, []bool{true, true, true, true}))
	require.Equal(t, 1.0, Accuracy(logits, labels, []bool{true, true, false, false}))
	require.Zero(t, Accuracy(logits, labels, make([]bool, 4)))
}

func TestGCNTrainingReducesLoss(t *testing.T) {
	g, coef := ringGraph(t, 8)
	m, err := NewGCN(g, coef, Options{InFeats: 4, Hidden: 8, Classes: 2, Layers: 1, Seed: 7})
	require.NoError(t, err)

	x := randomDense(rand.New(rand.NewSource(8)), 8, 4)
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}
	mask := []bool{true, true, true, true, true, true, true, true}

	step := func() float64 {
		ZeroGrad(m.Params())
		loss, grad := SoftmaxCrossEntropy(m.Forward(x, true), labels, mask)
		m.Backward(grad)
		for _, p := range m.Params() {
			var delta mat.Dense
			delta.Scale(0.1, p.Grad)
			p.Value.Sub(p.Value, &delta)
		}
		return loss
	}
	first := step()
	var last float64
	for i := 0; i < 50; i++ {
		last = step()
	}
	if last >= first {
		t.Fatalf("expected loss to decrease; first=%f last=%f", first, last)
	}
}
