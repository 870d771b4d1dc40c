// Package optim updates model parameters from their accumulated gradients.
package optim

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/model"
)

// AdamConfig holds the Adam hyperparameters. Zero values for Beta1, Beta2
// and Epsilon select 0.9, 0.999 and 1e-8.
type AdamConfig struct {
	LearningRate float64
	WeightDecay  float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
}

// Adam implements Adam with L2 weight decay folded into the gradient.
type Adam struct {
	cfg    AdamConfig
	params []*model.Param
	m      []*mat.Dense
	v      []*mat.Dense
	t      int
}

// NewAdam prepares moment buffers for params.
func NewAdam(params []*model.Param, cfg AdamConfig) (*Adam, error) {
	if cfg.LearningRate <= 0 {
		return nil, errors.New("optim: learning rate must be > 0")
	}
	if cfg.WeightDecay < 0 {
		return nil, errors.New("optim: weight decay must be >= 0")
	}
	if cfg.Beta1 == 0 {
		cfg.Beta1 = 0.9
	}
	if cfg.Beta2 == 0 {
		cfg.Beta2 = 0.999
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1e-8
	}
	a := &Adam{cfg: cfg, params: params}
	for _, p := range params {
		r, c := p.Value.Dims()
		a.m = append(a.m, mat.NewDense(r, c, nil))
		a.v = append(a.v, mat.NewDense(r, c, nil))
	}
	return a, nil
}

// Step applies one update to every parameter in place.
func (a *Adam) Step() {
	a.t++
	b1, b2 := a.cfg.Beta1, a.cfg.Beta2
	lr := a.cfg.LearningRate * math.Sqrt(1-math.Pow(b2, float64(a.t))) / (1 - math.Pow(b1, float64(a.t)))

	for k, p := range a.params {
		rows, _ := p.Value.Dims()
		for i := 0; i < rows; i++ {
			w := p.Value.RawRowView(i)
			g := p.Grad.RawRowView(i)
			m := a.m[k].RawRowView(i)
			v := a.v[k].RawRowView(i)
			for j := range w {
				grad := g[j] + a.cfg.WeightDecay*w[j]
				m[j] = b1*m[j] + (1-b1)*grad
				v[j] = b2*v[j] + (1-b2)*grad*grad
				w[j] -= lr * m[j] / (math.Sqrt(v[j]) + a.cfg.Epsilon)
			}
		}
	}
}

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int {
	return a.t
}
