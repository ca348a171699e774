package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
)

// No PageRank implementation in the pack matches this exact
// sink/damping formula (gonum/graph/network.PageRank uses a different
// stop/sink convention), so the iteration is hand-rolled here over
// gonum's graph interfaces, following mp::page_rank.
const (
	pageRankDamping       = 0.85
	pageRankEpsilon       = 0.000001
	pageRankMaxIterations = 500
)

// pageRank computes weighted (or unweighted, if useWeights is false)
// PageRank over g. Sinks (vertices whose outgoing edges carry no total
// weight, including vertices with no outgoing edges) distribute their
// rank evenly across every vertex, every iteration, and pass nothing
// along their edges.
func pageRank(g *simple.WeightedDirectedGraph, useWeights bool) map[int64]float64 {
	nodes := sortedNodeIDs(g)
	n := len(nodes)
	if n == 0 {
		return nil
	}

	outWeight := make(map[int64]float64, n)
	var sinks []int64
	for _, v := range nodes {
		total := 0.0
		to := g.From(v)
		for to.Next() {
			if useWeights {
				total += g.WeightedEdge(v, to.Node().ID()).Weight()
			} else {
				total++
			}
		}
		outWeight[v] = total
		if total == 0 {
			sinks = append(sinks, v)
		}
	}

	curr := make(map[int64]float64, n)
	prev := make(map[int64]float64, n)
	for _, v := range nodes {
		curr[v] = 1.0 / float64(n)
		prev[v] = 0
	}

	for iter := 0; ; {
		iter++
		limitReached := iter >= pageRankMaxIterations

		err := 0.0
		for _, v := range nodes {
			d := curr[v] - prev[v]
			err += d * d
		}
		for _, v := range nodes {
			prev[v] = curr[v]
		}
		if limitReached || math.Sqrt(err) <= pageRankEpsilon {
			break
		}

		sinkContribution := 0.0
		for _, s := range sinks {
			sinkContribution += curr[s] / float64(n)
		}

		next := make(map[int64]float64, n)
		for _, v := range nodes {
			rank := sinkContribution
			in := g.To(v)
			for in.Next() {
				u := in.Node().ID()
				if outWeight[u] == 0 {
					continue
				}
				w := 1.0
				if useWeights {
					w = g.WeightedEdge(u, v).Weight()
				}
				rank += curr[u] * w / outWeight[u]
			}
			next[v] = (1-pageRankDamping)/float64(n) + pageRankDamping*rank
		}
		curr = next
	}
	return curr
}
