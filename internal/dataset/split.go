package dataset

import "math/rand"

// PlanetoidSplit walks nodes in order and assigns the first perClass nodes
// of each class to train, then the next numVal unassigned nodes to
// validation and the next numTest to test.
func PlanetoidSplit(labels []int, numClasses, perClass, numVal, numTest int) (train, val, test []bool) {
	n := len(labels)
	train = make([]bool, n)
	val = make([]bool, n)
	test = make([]bool, n)

	taken := make([]int, numClasses)
	for i, l := range labels {
		if taken[l] < perClass {
			taken[l]++
			train[i] = true
		}
	}
	for i := 0; i < n && numVal > 0; i++ {
		if !train[i] {
			val[i] = true
			numVal--
		}
	}
	for i := 0; i < n && numTest > 0; i++ {
		if !train[i] && !val[i] {
			test[i] = true
			numTest--
		}
	}
	return train, val, test
}

// RandomSplit puts round(trainRatio*n) random nodes (at least one) in train
// and splits the rest evenly between validation and test.
func RandomSplit(n int, trainRatio float64, rng *rand.Rand) (train, val, test []bool) {
	train = make([]bool, n)
	val = make([]bool, n)
	test = make([]bool, n)

	numTrain := int(trainRatio*float64(n) + 0.5)
	if numTrain < 1 {
		numTrain = 1
	}
	if numTrain > n {
		numTrain = n
	}
	numVal := (n - numTrain) / 2

	for rank, i := range rng.Perm(n) {
		switch {
		case rank < numTrain:
			train[i] = true
		case rank < numTrain+numVal:
			val[i] = true
		default:
			test[i] = true
		}
	}
	return train, val, test
}
