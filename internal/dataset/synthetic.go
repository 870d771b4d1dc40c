package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/graph"
)

// loadSynthetic samples a stochastic block model: nodes of the same class
// are linked with probability SynPIn, others with SynPOut. Features are a
// per-class prototype plus Gaussian noise.
func loadSynthetic(args DataArgs) (*Dataset, error) {
	n, k, f := args.SynNodes, args.SynClasses, args.SynFeats
	switch {
	case n < 2:
		return nil, fmt.Errorf("syn-nodes must be >= 2 (got %d)", n)
	case k < 1 || k > n:
		return nil, fmt.Errorf("syn-classes must be in [1,%d] (got %d)", n, k)
	case f < 1:
		return nil, fmt.Errorf("syn-feats must be >= 1 (got %d)", f)
	case args.SynPIn < 0 || args.SynPIn > 1 || args.SynPOut < 0 || args.SynPOut > 1:
		return nil, fmt.Errorf("edge probabilities must be in [0,1] (got %g, %g)", args.SynPIn, args.SynPOut)
	case args.SynNoise < 0:
		return nil, fmt.Errorf("syn-noise must be >= 0 (got %g)", args.SynNoise)
	case args.SynTrainRatio <= 0 || args.SynTrainRatio > 1:
		return nil, fmt.Errorf("syn-train-ratio must be in (0,1] (got %g)", args.SynTrainRatio)
	}

	rng := rand.New(rand.NewSource(args.SynSeed))

	labels := make([]int, n)
	for rank, i := range rng.Perm(n) {
		labels[i] = rank % k
	}

	prototypes := mat.NewDense(k, f, nil)
	for c := 0; c < k; c++ {
		for j := 0; j < f; j++ {
			prototypes.Set(c, j, rng.NormFloat64())
		}
	}
	features := mat.NewDense(n, f, nil)
	for i := 0; i < n; i++ {
		proto := prototypes.RawRowView(labels[i])
		row := features.RawRowView(i)
		for j := range row {
			row[j] = proto[j] + args.SynNoise*rng.NormFloat64()
		}
	}

	degree := make([]int, n)
	var edges []graph.Edge
	link := func(a, b int) {
		edges = append(edges, graph.Edge{Src: a, Dst: b}, graph.Edge{Src: b, Dst: a})
		degree[a]++
		degree[b]++
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p := args.SynPOut
			if labels[i] == labels[j] {
				p = args.SynPIn
			}
			if rng.Float64() < p {
				link(i, j)
			}
		}
	}

	members := make([][]int, k)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}
	for i := 0; i < n; i++ {
		if degree[i] > 0 {
			continue
		}
		peers := members[labels[i]]
		if len(peers) < 2 {
			peers = nil
		}
		j := i
		for j == i {
			if peers != nil {
				j = peers[rng.Intn(len(peers))]
			} else {
				j = rng.Intn(n)
			}
		}
		link(i, j)
	}

	train, val, test := RandomSplit(n, args.SynTrainRatio, rng)
	return &Dataset{
		Name:       "synthetic",
		NumClasses: k,
		Features:   features,
		Labels:     labels,
		Edges:      edges,
		TrainMask:  train,
		ValMask:    val,
		TestMask:   test,
	}, nil
}
