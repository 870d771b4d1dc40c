package dataset

import (
	"flag"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLoadSynthetic(t *testing.T) {
	args := DefaultArgs()
	args.SynNodes = 60
	args.SynPIn = 0.02
	args.SynPOut = 0

	d, err := Load(args)
	require.NoError(t, err)
	require.Equal(t, 60, d.NumNodes())
	require.Equal(t, args.SynFeats, d.NumFeatures())
	require.Equal(t, args.SynClasses, d.NumClasses)

	g, err := d.Graph()
	require.NoError(t, err)
	require.Empty(t, g.Isolated(), "every node must have at least one neighbor")

	require.Equal(t, 6, CountMask(d.TrainMask))
	require.Equal(t, 60, CountMask(d.TrainMask)+CountMask(d.ValMask)+CountMask(d.TestMask))

	again, err := Load(args)
	require.NoError(t, err)
	require.True(t, mat.Equal(d.Features, again.Features), "same seed must give the same features")
	require.Equal(t, d.Edges, again.Edges)
}

func TestLoadSyntheticRejectsBadArgs(t *testing.T) {
	for name, mutate := range map[string]func(*DataArgs){
		"one node":      func(a *DataArgs) { a.SynNodes = 1 },
		"many classes":  func(a *DataArgs) { a.SynClasses = a.SynNodes + 1 },
		"no features":   func(a *DataArgs) { a.SynFeats = 0 },
		"bad p":         func(a *DataArgs) { a.SynPIn = 1.5 },
		"zero train":    func(a *DataArgs) { a.SynTrainRatio = 0 },
		"negative nois": func(a *DataArgs) { a.SynNoise = -1 },
	} {
		args := DefaultArgs()
		mutate(&args)
		_, err := Load(args)
		require.Error(t, err, name)
	}
}

func TestPlanetoidSplit(t *testing.T) {
	labels := []int{0, 0, 0, 1, 1, 0, 1, 1}
	train, val, test := PlanetoidSplit(labels, 2, 2, 2, 10)
	require.Equal(t, []bool{true, true, false, true, true, false, false, false}, train)
	require.Equal(t, []bool{false, false, true, false, false, true, false, false}, val)
	require.Equal(t, []bool{false, false, false, false, false, false, true, true}, test)
}

func TestRandomSplitPartitions(t *testing.T) {
	train, val, test := RandomSplit(11, 0.3, rand.New(rand.NewSource(3)))
	require.Equal(t, 3, CountMask(train))
	require.Equal(t, 4, CountMask(val))
	require.Equal(t, 4, CountMask(test))
	for i := range train {
		n := 0
		for _, m := range []bool{train[i], val[i], test[i]} {
			if m {
				n++
			}
		}
		require.Equal(t, 1, n, "node %d must be in exactly one split", i)
	}
}

func TestRegisterFlags(t *testing.T) {
	args := DefaultArgs()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, &args)
	require.NoError(t, fs.Parse([]string{"--dataset", "cora", "--data-dir", "/data", "--syn-nodes", "42"}))
	require.Equal(t, "cora", args.Name)
	require.Equal(t, "/data", args.Dir)
	require.Equal(t, 42, args.SynNodes)
	require.Equal(t, 3, args.SynClasses)
}
