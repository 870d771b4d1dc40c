package model

import "gonum.org/v1/gonum/mat"

// Batch is the full-graph input of a training or evaluation pass.
type Batch struct {
	Features *mat.Dense
	Labels   []int
	Mask     []bool
}

// Model is a differentiable network trained by the loop in internal/trainer.
type Model interface {
	// Forward returns per-node logits. train enables dropout and caches the
	// activations needed by Backward.
	Forward(x *mat.Dense, train bool) *mat.Dense
	// Backward accumulates parameter gradients given dLoss/dLogits.
	Backward(grad *mat.Dense)
	Params() []*Param
}

// Param is a trainable tensor with its accumulated gradient.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

func newParam(name string, rows, cols int) *Param {
	return &Param{
		Name:  name,
		Value: mat.NewDense(rows, cols, nil),
		Grad:  mat.NewDense(rows, cols, nil),
	}
}

// ZeroGrad clears the gradients of params.
func ZeroGrad(params []*Param) {
	for _, p := range params {
		p.Grad.Zero()
	}
}
