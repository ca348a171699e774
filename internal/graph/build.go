// Package graph builds the per-timestamp following graph from
// classified device relations, extracts connected-component groups,
// and ranks each group's devices with weighted PageRank to choose a
// leader, following mp::following_graph.
package graph

import (
	"math"

	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/following"
	"gonum.org/v1/gonum/graph/simple"
)

// FollowingGraphAt builds the directed, weighted following graph for a
// single timestamp. Every device in fd.Devices becomes a vertex, even
// if it has no relation at this timestamp (so isolated devices form
// their own singleton group). An edge a->b is added when a follows b;
// a leading relation is stored as an edge from the led device back to
// the leader (b->a); a co-leading relation adds both directions. Edge
// weight is the absolute estimated lag.
func FollowingGraphAt(fd *following.Data, timestamp int64) (*simple.WeightedDirectedGraph, error) {
	const op = "graph.FollowingGraphAt"
	if timestamp < fd.BeginTimestamp || timestamp > fd.EndTimestamp {
		return nil, errs.Newf(errs.RangeError, op, "timestamp %d out of range [%d,%d]", timestamp, fd.BeginTimestamp, fd.EndTimestamp)
	}

	g := simple.NewWeightedDirectedGraph(0, 0)
	for i := range fd.Devices {
		g.AddNode(simple.Node(int64(i)))
	}

	bucket := fd.At(timestamp)
	for _, rel := range bucket.CoMoving {
		weight := math.Abs(rel.Lag)
		left, right := int64(rel.Left), int64(rel.Right)

		switch rel.Type {
		case following.Following:
			addWeightedEdge(g, left, right, weight)
		case following.Leading:
			addWeightedEdge(g, right, left, weight)
		case following.CoLeading:
			addWeightedEdge(g, left, right, weight)
			addWeightedEdge(g, right, left, weight)
		}
	}
	return g, nil
}

func addWeightedEdge(g *simple.WeightedDirectedGraph, from, to int64, weight float64) {
	g.SetWeightedEdge(simple.WeightedEdge{
		F: simple.Node(from),
		T: simple.Node(to),
		W: weight,
	})
}

// DeviceName resolves a vertex id back to its device name.
func DeviceName(devices []string, id int64) string {
	return devices[id]
}
