package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/comove/tracepair/internal/following"
)

func threeDeviceData() *following.Data {
	return &following.Data{
		BeginTimestamp: 0,
		EndTimestamp:   0,
		Duration:       1,
		Devices:        []string{"a", "b", "c"},
		Timestamps: []following.Timestamp{
			{
				Timestamp: 0,
				CoMoving: []following.Relation{
					{Left: 0, Right: 1, Lag: -2, Type: following.Following},
					{Left: 1, Right: 2, Lag: 1, Type: following.Leading},
				},
			},
		},
	}
}

func TestFollowingGraphAtEdgeDirections(t *testing.T) {
	fd := threeDeviceData()
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}

	if g.Nodes().Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.Nodes().Len())
	}

	// Following: 0 -> 1, weight |-2| = 2.
	if e := g.WeightedEdge(0, 1); e == nil || e.Weight() != 2 {
		t.Errorf("expected edge 0->1 weight 2, got %v", e)
	}
	if g.WeightedEdge(1, 0) != nil {
		t.Errorf("did not expect reverse edge 1->0 for Following")
	}

	// Leading: device 1 "leads" device 2, so the edge points 2 -> 1.
	if e := g.WeightedEdge(2, 1); e == nil || e.Weight() != 1 {
		t.Errorf("expected edge 2->1 weight 1, got %v", e)
	}
	if g.WeightedEdge(1, 2) != nil {
		t.Errorf("did not expect edge 1->2 for Leading relation")
	}
}

func TestFollowingGraphAtOutOfRangeTimestamp(t *testing.T) {
	fd := threeDeviceData()
	if _, err := FollowingGraphAt(fd, 5); err == nil {
		t.Fatal("expected error for out-of-range timestamp")
	}
}

func TestFollowingGraphAtCoLeadingAddsBothDirections(t *testing.T) {
	fd := &following.Data{
		BeginTimestamp: 0,
		EndTimestamp:   0,
		Duration:       1,
		Devices:        []string{"a", "b"},
		Timestamps: []following.Timestamp{
			{Timestamp: 0, CoMoving: []following.Relation{
				{Left: 0, Right: 1, Lag: 0, Type: following.CoLeading},
			}},
		},
	}
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}
	if g.WeightedEdge(0, 1) == nil || g.WeightedEdge(1, 0) == nil {
		t.Errorf("expected edges in both directions for CoLeading")
	}
}

func TestConnectedComponentsGroupsLinkedDevices(t *testing.T) {
	fd := threeDeviceData()
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}
	components := connectedComponents(g)
	if len(components) != 1 {
		t.Fatalf("expected a single connected component, got %d", len(components))
	}
	if len(components[0]) != 3 {
		t.Errorf("expected all 3 devices in the component, got %d", len(components[0]))
	}
}

func TestConnectedComponentsIsolatedDevice(t *testing.T) {
	fd := &following.Data{
		BeginTimestamp: 0,
		EndTimestamp:   0,
		Duration:       1,
		Devices:        []string{"a", "b", "c"},
		Timestamps: []following.Timestamp{
			{Timestamp: 0, CoMoving: []following.Relation{
				{Left: 0, Right: 1, Lag: 0, Type: following.CoLeading},
			}},
		},
	}
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}
	components := connectedComponents(g)
	if len(components) != 2 {
		t.Fatalf("expected 2 components (pair + isolated device c), got %d", len(components))
	}
}

func TestDetectLeadersInGraphTieBreakLastWins(t *testing.T) {
	// A symmetric pair with equal weight in both directions should
	// produce equal rank for both vertices; the tie is resolved by the
	// last vertex scanned in ascending-id order winning.
	fd := &following.Data{
		BeginTimestamp: 0,
		EndTimestamp:   0,
		Duration:       1,
		Devices:        []string{"a", "b"},
		Timestamps: []following.Timestamp{
			{Timestamp: 0, CoMoving: []following.Relation{
				{Left: 0, Right: 1, Lag: 0, Type: following.CoLeading},
			}},
		},
	}
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}
	leaders := DetectLeadersInGraph(g, fd.Devices, true)
	if len(leaders) != 1 {
		t.Fatalf("expected 1 leader for the single component, got %d", len(leaders))
	}
	if leaders[0] != "b" {
		t.Errorf("expected tie-break to favor the higher-id vertex 'b', got %q", leaders[0])
	}
}

func TestDetectGroupsInGraphListsMembers(t *testing.T) {
	fd := threeDeviceData()
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}
	groups := DetectGroupsInGraph(g, fd.Devices)
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("expected one group of 3 devices, got %v", groups)
	}
}

func TestDetectLeadersAcrossTimestamps(t *testing.T) {
	fd := threeDeviceData()
	result, err := DetectLeaders(fd, true)
	if err != nil {
		t.Fatalf("DetectLeaders: %v", err)
	}
	if len(result.Timestamps) != 1 {
		t.Fatalf("expected 1 timestamp entry, got %d", len(result.Timestamps))
	}
	if len(result.At(0).Leaders) == 0 {
		t.Errorf("expected at least one leader")
	}
}

func TestDetectGroupsAcrossTimestamps(t *testing.T) {
	fd := threeDeviceData()
	groups, err := DetectGroups(fd)
	if err != nil {
		t.Fatalf("DetectGroups: %v", err)
	}
	if len(groups[0]) != 1 {
		t.Fatalf("expected one group at timestamp 0, got %d", len(groups[0]))
	}
}

func TestWriteGraphMLProducesValidStructure(t *testing.T) {
	fd := threeDeviceData()
	g, err := FollowingGraphAt(fd, 0)
	if err != nil {
		t.Fatalf("FollowingGraphAt: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGraphML(&buf, g, fd.Devices); err != nil {
		t.Fatalf("WriteGraphML: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<graphml", "<graph ", `id="a"`, `id="b"`, `id="c"`, "<edge", "weight"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
