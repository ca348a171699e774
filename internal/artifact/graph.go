package artifact

import (
	"encoding/json"
	"io"

	"github.com/comove/tracepair/internal/errs"
	"gonum.org/v1/gonum/graph/simple"
)

type graphVertexJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type graphEdgeJSON struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Weight float64 `json:"weight"`
}

type followingGraphJSON struct {
	Vertices []graphVertexJSON `json:"vertices"`
	Edges    []graphEdgeJSON   `json:"edges"`
}

// WriteFollowingGraphJSON writes a single timestamp's following graph
// to w as JSON: every device becomes a vertex (even isolated ones),
// and every directed, weighted edge is listed once.
func WriteFollowingGraphJSON(w io.Writer, g *simple.WeightedDirectedGraph, devices []string) error {
	doc := followingGraphJSON{}
	for i, name := range devices {
		doc.Vertices = append(doc.Vertices, graphVertexJSON{ID: int64(i), Name: name})
	}

	edges := g.Edges()
	for edges.Next() {
		e := edges.Edge()
		weight := 0.0
		if we, ok := e.(interface{ Weight() float64 }); ok {
			weight = we.Weight()
		}
		doc.Edges = append(doc.Edges, graphEdgeJSON{From: e.From().ID(), To: e.To().ID(), Weight: weight})
	}
	return json.NewEncoder(w).Encode(doc)
}

// ReadFollowingGraphJSON reads a following-graph artifact previously
// written by WriteFollowingGraphJSON, rejecting any edge that
// references a vertex id absent from the artifact's own vertex list
// (spec.md §7, GraphInvariant).
func ReadFollowingGraphJSON(r io.Reader) (*simple.WeightedDirectedGraph, []string, error) {
	const op = "artifact.ReadFollowingGraphJSON"

	var doc followingGraphJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, wrapErr(op, err)
	}

	devices := make([]string, len(doc.Vertices))
	known := make(map[int64]bool, len(doc.Vertices))
	g := simple.NewWeightedDirectedGraph(0, 0)
	for _, v := range doc.Vertices {
		if int(v.ID) >= len(devices) || v.ID < 0 {
			return nil, nil, errs.Newf(errs.GraphInvariant, op, "vertex id %d out of range for %d devices", v.ID, len(devices))
		}
		devices[v.ID] = v.Name
		known[v.ID] = true
		g.AddNode(simple.Node(v.ID))
	}

	for _, e := range doc.Edges {
		if !known[e.From] || !known[e.To] {
			return nil, nil, errs.Newf(errs.GraphInvariant, op, "edge %d->%d references a vertex not in the graph's vertex list", e.From, e.To)
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.From), T: simple.Node(e.To), W: e.Weight})
	}
	return g, devices, nil
}

// WriteFollowingGraphBinary writes a single timestamp's following
// graph to w in the portable binary framing.
func WriteFollowingGraphBinary(w io.Writer, g *simple.WeightedDirectedGraph, devices []string) error {
	const op = "artifact.WriteFollowingGraphBinary"

	if err := writeStringSlice(w, devices); err != nil {
		return wrapErr(op, err)
	}

	var edges []graphEdgeJSON
	it := g.Edges()
	for it.Next() {
		e := it.Edge()
		weight := 0.0
		if we, ok := e.(interface{ Weight() float64 }); ok {
			weight = we.Weight()
		}
		edges = append(edges, graphEdgeJSON{From: e.From().ID(), To: e.To().ID(), Weight: weight})
	}

	if err := writeInt32(w, int32(len(edges))); err != nil {
		return wrapErr(op, err)
	}
	for _, e := range edges {
		if err := writeInt64(w, e.From); err != nil {
			return wrapErr(op, err)
		}
		if err := writeInt64(w, e.To); err != nil {
			return wrapErr(op, err)
		}
		if err := writeFloat64(w, e.Weight); err != nil {
			return wrapErr(op, err)
		}
	}
	return nil
}

// ReadFollowingGraphBinary reads a following-graph artifact previously
// written by WriteFollowingGraphBinary, applying the same
// GraphInvariant check as ReadFollowingGraphJSON.
func ReadFollowingGraphBinary(r io.Reader) (*simple.WeightedDirectedGraph, []string, error) {
	const op = "artifact.ReadFollowingGraphBinary"

	devices, err := readStringSlice(r)
	if err != nil {
		return nil, nil, wrapErr(op, err)
	}
	numEdges, err := readInt32(r)
	if err != nil {
		return nil, nil, wrapErr(op, err)
	}

	g := simple.NewWeightedDirectedGraph(0, 0)
	for i := range devices {
		g.AddNode(simple.Node(int64(i)))
	}

	for i := int32(0); i < numEdges; i++ {
		from, err := readInt64(r)
		if err != nil {
			return nil, nil, wrapErr(op, err)
		}
		to, err := readInt64(r)
		if err != nil {
			return nil, nil, wrapErr(op, err)
		}
		weight, err := readFloat64(r)
		if err != nil {
			return nil, nil, wrapErr(op, err)
		}
		if from < 0 || int(from) >= len(devices) || to < 0 || int(to) >= len(devices) {
			return nil, nil, errs.Newf(errs.GraphInvariant, op, "edge %d->%d references a vertex not in the graph's vertex list", from, to)
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: weight})
	}
	return g, devices, nil
}
