package graph

import (
	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/following"
	"gonum.org/v1/gonum/graph/simple"
)

// TimestampLeaders is the set of group leaders detected at one
// timestamp.
type TimestampLeaders struct {
	Timestamp int64
	Leaders   []string
}

// LeaderData stores the detected leaders for every timestamp in
// [BeginTimestamp, EndTimestamp], following mp::leader_data.
type LeaderData struct {
	BeginTimestamp int64
	EndTimestamp   int64
	Duration       int64
	Devices        []string
	Timestamps     []TimestampLeaders
}

// At returns the TimestampLeaders entry for the given timestamp.
func (d *LeaderData) At(timestamp int64) *TimestampLeaders {
	return &d.Timestamps[timestamp-d.BeginTimestamp]
}

// DetectLeadersInGraph runs PageRank over g and returns the name of
// the highest-ranked vertex in every connected component. When
// several vertices in a component tie for the highest rank, the last
// one visited in vertex-index order wins (ties are resolved by >=, not
// >, matching the reference).
func DetectLeadersInGraph(g *simple.WeightedDirectedGraph, devices []string, useWeights bool) []string {
	ranks := pageRank(g, useWeights)
	components := connectedComponents(g)

	leaders := make([]string, 0, len(components))
	for _, component := range components {
		maxRank := 0.0
		var maxVertex int64
		for _, v := range component {
			if rank := ranks[v]; rank >= maxRank {
				maxRank = rank
				maxVertex = v
			}
		}
		leaders = append(leaders, devices[maxVertex])
	}
	return leaders
}

// DetectGroupsInGraph returns every connected component's full device
// membership list, supplementing spec's leader-only output with
// mp::detect_groups's group listing.
func DetectGroupsInGraph(g *simple.WeightedDirectedGraph, devices []string) [][]string {
	components := connectedComponents(g)
	groups := make([][]string, len(components))
	for i, component := range components {
		members := make([]string, len(component))
		for j, v := range component {
			members[j] = devices[v]
		}
		groups[i] = members
	}
	return groups
}

// DetectLeaders runs DetectLeadersInGraph over every timestamp in fd.
func DetectLeaders(fd *following.Data, useWeights bool) (*LeaderData, error) {
	const op = "graph.DetectLeaders"
	if fd.Duration <= 0 {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}

	result := &LeaderData{
		BeginTimestamp: fd.BeginTimestamp,
		EndTimestamp:   fd.EndTimestamp,
		Duration:       fd.Duration,
		Devices:        append([]string(nil), fd.Devices...),
		Timestamps:     make([]TimestampLeaders, fd.Duration),
	}

	for ts := fd.BeginTimestamp; ts <= fd.EndTimestamp; ts++ {
		g, err := FollowingGraphAt(fd, ts)
		if err != nil {
			return nil, err
		}
		entry := result.At(ts)
		entry.Timestamp = ts
		entry.Leaders = DetectLeadersInGraph(g, fd.Devices, useWeights)
	}
	return result, nil
}

// DetectGroups returns, for every timestamp, every connected
// component's full device membership list. Supplements LeaderData
// with the richer grouping mp::detect_groups exposes.
func DetectGroups(fd *following.Data) (map[int64][][]string, error) {
	const op = "graph.DetectGroups"
	if fd.Duration <= 0 {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}

	result := make(map[int64][][]string, fd.Duration)
	for ts := fd.BeginTimestamp; ts <= fd.EndTimestamp; ts++ {
		g, err := FollowingGraphAt(fd, ts)
		if err != nil {
			return nil, err
		}
		result[ts] = DetectGroupsInGraph(g, fd.Devices)
	}
	return result, nil
}
