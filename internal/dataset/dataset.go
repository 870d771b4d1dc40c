// Package dataset loads node-classification graph datasets from a registry
// of built-in loaders.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"graphconv-forge/internal/graph"
)

// Dataset is a single graph with per-node features, labels and split masks.
type Dataset struct {
	Name       string
	NumClasses int
	Features   *mat.Dense
	Labels     []int
	Edges      []graph.Edge
	TrainMask  []bool
	ValMask    []bool
	TestMask   []bool
}

// NumNodes returns the number of feature rows.
func (d *Dataset) NumNodes() int {
	if d.Features == nil {
		return 0
	}
	r, _ := d.Features.Dims()
	return r
}

// NumFeatures returns the input feature width.
func (d *Dataset) NumFeatures() int {
	if d.Features == nil {
		return 0
	}
	_, c := d.Features.Dims()
	return c
}

// Validate checks that every per-node slice matches the feature rows and
// that labels and edges are in range.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New("dataset: nil dataset")
	}
	n := d.NumNodes()
	if n == 0 {
		return fmt.Errorf("dataset %s: no nodes", d.Name)
	}
	if d.NumClasses <= 0 {
		return fmt.Errorf("dataset %s: no classes", d.Name)
	}
	for name, size := range map[string]int{
		"labels":     len(d.Labels),
		"train mask": len(d.TrainMask),
		"val mask":   len(d.ValMask),
		"test mask":  len(d.TestMask),
	} {
		if size != n {
			return fmt.Errorf("dataset %s: %s has %d entries for %d nodes", d.Name, name, size, n)
		}
	}
	for i, l := range d.Labels {
		if l < 0 || l >= d.NumClasses {
			return fmt.Errorf("dataset %s: node %d label %d out of range [0,%d)", d.Name, i, l, d.NumClasses)
		}
	}
	for i, e := range d.Edges {
		if e.Src < 0 || e.Src >= n || e.Dst < 0 || e.Dst >= n {
			return fmt.Errorf("dataset %s: edge %d (%d->%d) out of range", d.Name, i, e.Src, e.Dst)
		}
	}
	return nil
}

// Graph builds the directed graph over the dataset's edges.
func (d *Dataset) Graph() (*graph.Graph, error) {
	return graph.FromEdges(d.NumNodes(), d.Edges)
}

// CountMask returns the number of selected entries.
func CountMask(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}
