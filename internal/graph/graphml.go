package graph

import (
	"encoding/xml"
	"io"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// No GraphML writer exists anywhere in the reference pack, so the
// export is hand-rolled over encoding/xml, following the structure
// mp::to_graphml produces with pugixml.

type graphmlKey struct {
	XMLName  xml.Name `xml:"key"`
	ID       string   `xml:"id,attr"`
	For      string   `xml:"for,attr"`
	AttrName string   `xml:"attr.name,attr"`
	AttrType string   `xml:"attr.type,attr"`
}

type graphmlNode struct {
	XMLName xml.Name `xml:"node"`
	ID      string   `xml:"id,attr"`
}

type graphmlData struct {
	XMLName xml.Name `xml:"data"`
	Key     string   `xml:"key,attr"`
	Value   float64  `xml:",chardata"`
}

type graphmlEdge struct {
	XMLName xml.Name `xml:"edge"`
	Source  string   `xml:"source,attr"`
	Target  string   `xml:"target,attr"`
	Data    graphmlData
}

type graphmlGraph struct {
	XMLName     xml.Name `xml:"graph"`
	ID          string   `xml:"id,attr"`
	EdgeDefault string   `xml:"edgedefault,attr"`
	Nodes       []graphmlNode
	Edges       []graphmlEdge
}

type graphmlDocument struct {
	XMLName xml.Name `xml:"graphml"`
	Xmlns   string   `xml:"xmlns,attr"`
	Key     graphmlKey
	Graph   graphmlGraph
}

// WriteGraphML renders g as a GraphML document to w, for inspection in
// external graph tools. devices maps vertex id to display name.
func WriteGraphML(w io.Writer, g *simple.WeightedDirectedGraph, devices []string) error {
	doc := graphmlDocument{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Key: graphmlKey{
			ID:       "weight",
			For:      "edge",
			AttrName: "weight",
			AttrType: "double",
		},
		Graph: graphmlGraph{
			ID:          "G",
			EdgeDefault: "directed",
		},
	}

	for _, id := range sortedNodeIDs(g) {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{ID: devices[id]})
	}

	edges := g.Edges()
	for edges.Next() {
		e := edges.Edge()
		weight := 0.0
		if we, ok := e.(graph.WeightedEdge); ok {
			weight = we.Weight()
		}
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: devices[e.From().ID()],
			Target: devices[e.To().ID()],
			Data:   graphmlData{Key: "weight", Value: weight},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
