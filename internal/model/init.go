package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// glorotUniform fills m with U(-a, a), a = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(m *mat.Dense, rng *rand.Rand) {
	fanIn, fanOut := m.Dims()
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := 0; i < fanIn; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] = (rng.Float64()*2 - 1) * limit
		}
	}
}
