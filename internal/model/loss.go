package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SoftmaxCrossEntropy returns the mean cross-entropy over the rows selected
// by mask and its gradient with respect to logits. Unselected rows get a
// zero gradient; an empty mask yields zero loss.
func SoftmaxCrossEntropy(logits *mat.Dense, labels []int, mask []bool) (float64, *mat.Dense) {
	rows, cols := logits.Dims()
	if len(labels) != rows || len(mask) != rows {
		panic(mat.ErrShape)
	}
	grad := mat.NewDense(rows, cols, nil)
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	if count == 0 {
		return 0, grad
	}

	inv := 1 / float64(count)
	total := 0.0
	for i := 0; i < rows; i++ {
		if !mask[i] {
			continue
		}
		probs := softmax(logits.RawRowView(i))
		label := labels[i]
		total += -math.Log(math.Max(probs[label], 1e-12))
		probs[label] -= 1
		g := grad.RawRowView(i)
		for j, p := range probs {
			g[j] = p * inv
		}
	}
	return total * inv, grad
}

// Accuracy is the fraction of mask-selected rows whose highest logit is the
// label. It is 0 for an empty mask.
func Accuracy(logits *mat.Dense, labels []int, mask []bool) float64 {
	rows, _ := logits.Dims()
	if len(labels) != rows || len(mask) != rows {
		panic(mat.ErrShape)
	}
	correct, total := 0, 0
	for i := 0; i < rows; i++ {
		if !mask[i] {
			continue
		}
		total++
		if argmax(logits.RawRowView(i)) == labels[i] {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	sum := 0.0
	out := make([]float64, len(logits))
	for i, v := range logits {
		exp := math.Exp(v - maxLogit)
		out[i] = exp
		sum += exp
	}
	inv := 1.0 / sum
	for i := range out {
		out[i] *= inv
	}
	return out
}
