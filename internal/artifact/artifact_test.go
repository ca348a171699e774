package artifact

import (
	"bytes"
	"testing"

	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/classifier"
	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/following"
	"github.com/comove/tracepair/internal/graph"
	"github.com/comove/tracepair/internal/groundtruth"
	"github.com/comove/tracepair/internal/similarity"
	"github.com/comove/tracepair/internal/tracing"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

func sampleGroundTruthTwoTimestamps() *groundtruth.Data {
	gt := groundtruth.New()
	gt.Timestamps[0] = []groundtruth.Device{
		{Name: "dev1", Group: 0, Order: 0},
		{Name: "dev2", Group: 0, Order: 1},
	}
	gt.Timestamps[1] = []groundtruth.Device{
		{Name: "dev1", Group: 0, Order: 0},
	}
	return gt
}

func TestGroundTruthJSONRoundTripStructurallyEqual(t *testing.T) {
	var buf bytes.Buffer
	want := sampleGroundTruthTwoTimestamps()
	require.NoError(t, WriteGroundTruthJSON(&buf, want))

	got, err := ReadGroundTruthJSON(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ground truth round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGroundTruthBinaryRoundTripStructurallyEqual(t *testing.T) {
	var buf bytes.Buffer
	want := sampleGroundTruthTwoTimestamps()
	require.NoError(t, WriteGroundTruthBinary(&buf, want))

	got, err := ReadGroundTruthBinary(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ground truth round trip mismatch (-want +got):\n%s", diff)
	}
}

func sampleParams() config.FeatureParameters {
	return config.FeatureParameters{DataSource: "signal", Algorithm: "euclid", WindowSize: 10, TimeLag: 5}
}

func sampleTracingData() *tracing.Data {
	m := array2d.New(2, 3)
	m.Set(0, 0, 1)
	m.Set(1, 1, 2)
	mask := array2d.NewByte(2, 3)
	mask.Set(0, 0, 1)
	return &tracing.Data{
		DataDimension: 3,
		MinTimestamp:  0,
		MaxTimestamp:  1,
		Duration:      2,
		Devices:       []tracing.Device{{Name: "dev1", Data: m, HasData: mask}},
	}
}

func TestTracingDataJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	td := sampleTracingData()
	if err := WriteTracingDataJSON(&buf, td, sampleParams()); err != nil {
		t.Fatalf("WriteTracingDataJSON: %v", err)
	}
	got, params, err := ReadTracingDataJSON(&buf)
	if err != nil {
		t.Fatalf("ReadTracingDataJSON: %v", err)
	}
	if !params.Equal(sampleParams()) {
		t.Errorf("params mismatch: got %+v", params)
	}
	if got.DataDimension != 3 || got.Duration != 2 || len(got.Devices) != 1 {
		t.Fatalf("unexpected tracing data: %+v", got)
	}
	if got.Devices[0].Data.At(0, 0) != 1 || got.Devices[0].Data.At(1, 1) != 2 {
		t.Errorf("unexpected matrix values")
	}
	if got.Devices[0].HasData.At(0, 0) != 1 {
		t.Errorf("expected mask bit to round trip")
	}
}

func TestTracingDataBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	td := sampleTracingData()
	if err := WriteTracingDataBinary(&buf, td, sampleParams()); err != nil {
		t.Fatalf("WriteTracingDataBinary: %v", err)
	}
	got, params, err := ReadTracingDataBinary(&buf)
	if err != nil {
		t.Fatalf("ReadTracingDataBinary: %v", err)
	}
	if !params.Equal(sampleParams()) {
		t.Errorf("params mismatch: got %+v", params)
	}
	if got.Devices[0].Name != "dev1" || got.Devices[0].Data.At(1, 1) != 2 {
		t.Errorf("unexpected round-tripped device: %+v", got.Devices[0])
	}
}

func sampleSimilarityData() *similarity.Data {
	features := array2d.New(2, 3)
	features.Set(0, 0, 0.5)
	features.Set(1, 2, -1.5)
	return &similarity.Data{
		Parameters:       sampleParams(),
		BeginTimestamp:   0,
		EndTimestamp:     1,
		Duration:         2,
		FeatureDimension: 3,
		Devices:          []string{"a", "b"},
		Pairs:            []similarity.Pair{{Left: 0, Right: 1, Features: features}},
	}
}

func TestSimilarityDataJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sd := sampleSimilarityData()
	if err := WriteSimilarityDataJSON(&buf, sd); err != nil {
		t.Fatalf("WriteSimilarityDataJSON: %v", err)
	}
	got, err := ReadSimilarityDataJSON(&buf)
	if err != nil {
		t.Fatalf("ReadSimilarityDataJSON: %v", err)
	}
	if !got.Parameters.Equal(sampleParams()) || len(got.Pairs) != 1 {
		t.Fatalf("unexpected similarity data: %+v", got)
	}
	if got.Pairs[0].Features.At(1, 2) != -1.5 {
		t.Errorf("unexpected feature value")
	}
}

func TestSimilarityDataBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sd := sampleSimilarityData()
	if err := WriteSimilarityDataBinary(&buf, sd); err != nil {
		t.Fatalf("WriteSimilarityDataBinary: %v", err)
	}
	got, err := ReadSimilarityDataBinary(&buf)
	if err != nil {
		t.Fatalf("ReadSimilarityDataBinary: %v", err)
	}
	if got.Pairs[0].Left != 0 || got.Pairs[0].Right != 1 {
		t.Errorf("unexpected pair indices: %+v", got.Pairs[0])
	}
}

func sampleGroundTruth() *groundtruth.Data {
	gt := groundtruth.New()
	gt.Timestamps[0] = []groundtruth.Device{{Name: "a", Group: 1, Order: 0}, {Name: "b", Group: 1, Order: 1}}
	return gt
}

func TestGroundTruthJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGroundTruthJSON(&buf, sampleGroundTruth()); err != nil {
		t.Fatalf("WriteGroundTruthJSON: %v", err)
	}
	got, err := ReadGroundTruthJSON(&buf)
	if err != nil {
		t.Fatalf("ReadGroundTruthJSON: %v", err)
	}
	if got.RelationAt(0, "a", "b") != groundtruth.Leading {
		t.Errorf("expected a to lead b after round trip")
	}
}

func TestGroundTruthBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGroundTruthBinary(&buf, sampleGroundTruth()); err != nil {
		t.Fatalf("WriteGroundTruthBinary: %v", err)
	}
	got, err := ReadGroundTruthBinary(&buf)
	if err != nil {
		t.Fatalf("ReadGroundTruthBinary: %v", err)
	}
	if got.RelationAt(0, "a", "b") != groundtruth.Leading {
		t.Errorf("expected a to lead b after round trip")
	}
}

func sampleFollowingData() *following.Data {
	return &following.Data{
		BeginTimestamp: 0, EndTimestamp: 0, Duration: 1,
		Devices: []string{"a", "b"},
		Timestamps: []following.Timestamp{
			{Timestamp: 0, CoMoving: []following.Relation{{Left: 0, Right: 1, Lag: -1.5, Type: following.Following}}},
		},
	}
}

func TestFollowingDataJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFollowingDataJSON(&buf, sampleFollowingData()); err != nil {
		t.Fatalf("WriteFollowingDataJSON: %v", err)
	}
	got, err := ReadFollowingDataJSON(&buf)
	if err != nil {
		t.Fatalf("ReadFollowingDataJSON: %v", err)
	}
	if got.Timestamps[0].CoMoving[0].Type != following.Following || got.Timestamps[0].CoMoving[0].Lag != -1.5 {
		t.Errorf("unexpected relation after round trip: %+v", got.Timestamps[0].CoMoving[0])
	}
}

func TestFollowingDataBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFollowingDataBinary(&buf, sampleFollowingData()); err != nil {
		t.Fatalf("WriteFollowingDataBinary: %v", err)
	}
	got, err := ReadFollowingDataBinary(&buf)
	if err != nil {
		t.Fatalf("ReadFollowingDataBinary: %v", err)
	}
	if got.Timestamps[0].CoMoving[0].Type != following.Following {
		t.Errorf("unexpected relation type after round trip")
	}
}

func sampleLeaderData() *graph.LeaderData {
	return &graph.LeaderData{
		BeginTimestamp: 0, EndTimestamp: 0, Duration: 1,
		Devices:    []string{"a", "b"},
		Timestamps: []graph.TimestampLeaders{{Timestamp: 0, Leaders: []string{"b"}}},
	}
}

func TestLeaderDataJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderDataJSON(&buf, sampleLeaderData()); err != nil {
		t.Fatalf("WriteLeaderDataJSON: %v", err)
	}
	got, err := ReadLeaderDataJSON(&buf)
	if err != nil {
		t.Fatalf("ReadLeaderDataJSON: %v", err)
	}
	if len(got.Timestamps) != 1 || got.Timestamps[0].Leaders[0] != "b" {
		t.Fatalf("unexpected leader data: %+v", got)
	}
}

func TestLeaderDataBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderDataBinary(&buf, sampleLeaderData()); err != nil {
		t.Fatalf("WriteLeaderDataBinary: %v", err)
	}
	got, err := ReadLeaderDataBinary(&buf)
	if err != nil {
		t.Fatalf("ReadLeaderDataBinary: %v", err)
	}
	if got.Timestamps[0].Leaders[0] != "b" {
		t.Errorf("unexpected leader after round trip")
	}
}

func buildSeparableClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	dim := 3
	low := array2d.New(1, dim)
	high := array2d.New(1, dim)
	for c := 0; c < dim; c++ {
		low.Set(0, c, 0)
		high.Set(0, c, 10)
	}
	data := &similarity.Data{
		Parameters: sampleParams(), BeginTimestamp: 0, EndTimestamp: 0, Duration: 1,
		FeatureDimension: dim, Devices: []string{"a", "b", "c"},
		Pairs: []similarity.Pair{{Left: 0, Right: 1, Features: low}, {Left: 0, Right: 2, Features: high}},
	}
	gt := groundtruth.New()
	gt.Timestamps[0] = []groundtruth.Device{
		{Name: "a", Group: 1, Order: 0}, {Name: "b", Group: 1, Order: 1}, {Name: "c", Group: 2, Order: 0},
	}
	c := classifier.New()
	if err := c.Learn(data, gt); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	return c
}

func TestClassifierJSONRoundTrip(t *testing.T) {
	c := buildSeparableClassifier(t)
	var buf bytes.Buffer
	if err := WriteClassifierJSON(&buf, c, sampleParams()); err != nil {
		t.Fatalf("WriteClassifierJSON: %v", err)
	}
	got, params, err := ReadClassifierJSON(&buf)
	if err != nil {
		t.Fatalf("ReadClassifierJSON: %v", err)
	}
	if !params.Equal(sampleParams()) {
		t.Errorf("params mismatch: got %+v", params)
	}
	lowResult, err := got.CoMoving([]float64{0, 0, 0})
	if err != nil {
		t.Fatalf("CoMoving: %v", err)
	}
	if !lowResult {
		t.Errorf("expected low sample to classify the same after round trip")
	}
}

func TestClassifierBinaryRoundTrip(t *testing.T) {
	c := buildSeparableClassifier(t)
	var buf bytes.Buffer
	if err := WriteClassifierBinary(&buf, c, sampleParams()); err != nil {
		t.Fatalf("WriteClassifierBinary: %v", err)
	}
	got, params, err := ReadClassifierBinary(&buf)
	if err != nil {
		t.Fatalf("ReadClassifierBinary: %v", err)
	}
	if !params.Equal(sampleParams()) {
		t.Errorf("params mismatch: got %+v", params)
	}
	if _, err := got.CoMoving([]float64{0, 0, 0}); err != nil {
		t.Fatalf("CoMoving: %v", err)
	}
}

func sampleGraph() (*simple.WeightedDirectedGraph, []string) {
	g := simple.NewWeightedDirectedGraph(0, 0)
	g.AddNode(simple.Node(0))
	g.AddNode(simple.Node(1))
	g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(0), T: simple.Node(1), W: 2.5})
	return g, []string{"a", "b"}
}

func TestFollowingGraphJSONRoundTrip(t *testing.T) {
	g, devices := sampleGraph()
	var buf bytes.Buffer
	if err := WriteFollowingGraphJSON(&buf, g, devices); err != nil {
		t.Fatalf("WriteFollowingGraphJSON: %v", err)
	}
	got, gotDevices, err := ReadFollowingGraphJSON(&buf)
	if err != nil {
		t.Fatalf("ReadFollowingGraphJSON: %v", err)
	}
	if len(gotDevices) != 2 || gotDevices[1] != "b" {
		t.Fatalf("unexpected devices: %v", gotDevices)
	}
	if e := got.WeightedEdge(0, 1); e == nil || e.Weight() != 2.5 {
		t.Errorf("expected edge 0->1 weight 2.5, got %v", e)
	}
}

func TestFollowingGraphJSONRejectsUnknownVertex(t *testing.T) {
	body := `{"vertices":[{"id":0,"name":"a"}],"edges":[{"from":0,"to":5,"weight":1}]}`
	if _, _, err := ReadFollowingGraphJSON(bytes.NewBufferString(body)); err == nil {
		t.Fatal("expected a GraphInvariant error for an edge referencing an unknown vertex")
	}
}

func TestFollowingGraphBinaryRoundTrip(t *testing.T) {
	g, devices := sampleGraph()
	var buf bytes.Buffer
	if err := WriteFollowingGraphBinary(&buf, g, devices); err != nil {
		t.Fatalf("WriteFollowingGraphBinary: %v", err)
	}
	got, gotDevices, err := ReadFollowingGraphBinary(&buf)
	if err != nil {
		t.Fatalf("ReadFollowingGraphBinary: %v", err)
	}
	if len(gotDevices) != 2 {
		t.Fatalf("unexpected devices: %v", gotDevices)
	}
	if e := got.WeightedEdge(0, 1); e == nil || e.Weight() != 2.5 {
		t.Errorf("expected edge 0->1 weight 2.5, got %v", e)
	}
}
