package graph

import (
	"errors"
	"fmt"
)

// Edge is a directed edge from Src to Dst.
type Edge struct {
	Src int
	Dst int
}

// Graph is an immutable directed graph indexed by destination and by source.
type Graph struct {
	numNodes int
	edges    []Edge

	// inPtr/inSrc: sources of the edges entering node d are inSrc[inPtr[d]:inPtr[d+1]].
	inPtr []int
	inSrc []int
	// outPtr/outDst: destinations of the edges leaving node s.
	outPtr []int
	outDst []int
}

// FromEdges builds a graph over numNodes nodes. Duplicate edges are kept.
func FromEdges(numNodes int, edges []Edge) (*Graph, error) {
	if numNodes <= 0 {
		return nil, errors.New("graph: node count must be > 0")
	}
	for i, e := range edges {
		if e.Src < 0 || e.Src >= numNodes || e.Dst < 0 || e.Dst >= numNodes {
			return nil, fmt.Errorf("graph: edge %d (%d->%d) out of range [0,%d)", i, e.Src, e.Dst, numNodes)
		}
	}
	g := &Graph{
		numNodes: numNodes,
		edges:    append([]Edge(nil), edges...),
	}
	g.index()
	return g, nil
}

func (g *Graph) index() {
	n := g.numNodes
	g.inPtr = make([]int, n+1)
	g.outPtr = make([]int, n+1)
	for _, e := range g.edges {
		g.inPtr[e.Dst+1]++
		g.outPtr[e.Src+1]++
	}
	for i := 0; i < n; i++ {
		g.inPtr[i+1] += g.inPtr[i]
		g.outPtr[i+1] += g.outPtr[i]
	}
	g.inSrc = make([]int, len(g.edges))
	g.outDst = make([]int, len(g.edges))
	inFill := append([]int(nil), g.inPtr[:n]...)
	outFill := append([]int(nil), g.outPtr[:n]...)
	for _, e := range g.edges {
		g.inSrc[inFill[e.Dst]] = e.Src
		inFill[e.Dst]++
		g.outDst[outFill[e.Src]] = e.Dst
		outFill[e.Src]++
	}
}

// AddSelfLoops returns a copy of g with an i->i edge for every node that lacks one.
func (g *Graph) AddSelfLoops() *Graph {
	hasLoop := make([]bool, g.numNodes)
	for _, e := range g.edges {
		if e.Src == e.Dst {
			hasLoop[e.Src] = true
		}
	}
	edges := append(make([]Edge, 0, len(g.edges)+g.numNodes), g.edges...)
	for i, ok := range hasLoop {
		if !ok {
			edges = append(edges, Edge{Src: i, Dst: i})
		}
	}
	out := &Graph{numNodes: g.numNodes, edges: edges}
	out.index()
	return out
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return g.numNodes }

// NumEdges returns the number of directed edges, self-loops included.
func (g *Graph) NumEdges() int { return len(g.edges) }

// InDegrees returns the number of edges entering each node.
func (g *Graph) InDegrees() []int {
	deg := make([]int, g.numNodes)
	for i := range deg {
		deg[i] = g.inPtr[i+1] - g.inPtr[i]
	}
	return deg
}

// OutDegrees returns the number of edges leaving each node.
func (g *Graph) OutDegrees() []int {
	deg := make([]int, g.numNodes)
	for i := range deg {
		deg[i] = g.outPtr[i+1] - g.outPtr[i]
	}
	return deg
}

// Isolated reports the nodes with neither in- nor out-edges.
func (g *Graph) Isolated() []int {
	var out []int
	for i := 0; i < g.numNodes; i++ {
		if g.inPtr[i+1] == g.inPtr[i] && g.outPtr[i+1] == g.outPtr[i] {
			out = append(out, i)
		}
	}
	return out
}
