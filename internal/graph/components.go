package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// sortedNodeIDs returns every node id in g in ascending order, which
// matches the vertex creation order used throughout this package
// (device index 0..n-1), so iteration order mirrors the reference's
// boost::vecS vertex numbering.
func sortedNodeIDs(g graph.Directed) []int64 {
	it := g.Nodes()
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// connectedComponents projects g's directed edges onto an undirected
// graph with the same vertex set, then finds its connected components
// via gonum/graph/topo, matching the reference's
// boost::connected_components over an undirected copy of the graph.
func connectedComponents(g *simple.WeightedDirectedGraph) [][]int64 {
	ug := simple.NewUndirectedGraph()
	nodes := sortedNodeIDs(g)
	for _, id := range nodes {
		ug.AddNode(simple.Node(id))
	}

	edges := g.Edges()
	for edges.Next() {
		e := edges.Edge()
		ug.SetEdge(simple.Edge{F: simple.Node(e.From().ID()), T: simple.Node(e.To().ID())})
	}

	components := topo.ConnectedComponents(ug)
	result := make([][]int64, len(components))
	for i, comp := range components {
		ids := make([]int64, len(comp))
		for j, n := range comp {
			ids[j] = n.ID()
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		result[i] = ids
	}
	return result
}
