package similarity

import (
	"math"
	"testing"

	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/tracing"
)

func buildTracingData(t *testing.T) *tracing.Data {
	t.Helper()
	sd := &tracing.SignalData{
		AccessPoints: []string{"ap0"},
		Devices: []tracing.SignalDevice{
			{Name: "a", Data: seq(0, 30, -50)},
			{Name: "b", Data: seq(0, 30, -60)},
		},
	}
	td, err := tracing.TransformSignal(sd, -100)
	if err != nil {
		t.Fatal(err)
	}
	return td
}

func seq(from, to int64, strength int) []tracing.SignalMeasurement {
	var out []tracing.SignalMeasurement
	for ts := from; ts < to; ts++ {
		out = append(out, tracing.SignalMeasurement{Timestamp: ts, AccessPointID: 0, SignalStrength: strength})
	}
	return out
}

func TestComputeEuclidProducesExpectedShape(t *testing.T) {
	td := buildTracingData(t)
	settings := Settings{
		FeatureParameters: config.FeatureParameters{
			DataSource: "signal",
			Algorithm:  "euclid",
			WindowSize: 4,
			TimeLag:    2,
		},
		Threads:        2,
		BeginTimestamp: 5,
		EndTimestamp:   10,
	}

	result, err := Compute(td, [][2]int{{0, 1}}, settings)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.FeatureDimension != 5 {
		t.Errorf("FeatureDimension = %d, want 5", result.FeatureDimension)
	}
	if len(result.Pairs) != 1 {
		t.Fatalf("expected 1 pair")
	}
	pair := &result.Pairs[0]
	if pair.Features.Rows() != 6 || pair.Features.Cols() != 5 {
		t.Errorf("unexpected feature matrix shape: %dx%d", pair.Features.Rows(), pair.Features.Cols())
	}

	// Constant signal strength difference of 10 at every lag -> constant similarity.
	row := result.FeatureAt(pair, 7)
	for _, v := range row {
		if math.Abs(v-10) > 1e-9 {
			t.Errorf("expected similarity ~10, got %v", v)
		}
	}
}

func TestComputeRejectsInvalidParameters(t *testing.T) {
	td := buildTracingData(t)
	settings := Settings{
		FeatureParameters: config.FeatureParameters{Algorithm: "euclid", WindowSize: 4, TimeLag: -1},
		Threads:           1,
		BeginTimestamp:    5,
		EndTimestamp:      10,
	}
	if _, err := Compute(td, nil, settings); err == nil {
		t.Error("expected error for negative time lag")
	}
}

func TestDTWWarpPathMonotonic(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{1, 1, 2, 4}
	d := NewDTW(len(a), len(b))
	d.Run(a, b, ManhattanDistance1)

	path := d.WarpPath()
	if path[0] != [2]int{0, 0} {
		t.Errorf("path should start at (0,0), got %v", path[0])
	}
	last := path[len(path)-1]
	if last != [2]int{len(a) - 1, len(b) - 1} {
		t.Errorf("path should end at (%d,%d), got %v", len(a)-1, len(b)-1, last)
	}
	for i := 1; i < len(path); i++ {
		di := path[i][0] - path[i-1][0]
		dj := path[i][1] - path[i-1][1]
		if di < 0 || dj < 0 || di > 1 || dj > 1 {
			t.Errorf("non-monotonic warp step at %d: %v -> %v", i, path[i-1], path[i])
		}
	}
}

func TestComputeMultiDTWAndDTWDimensionConsistent(t *testing.T) {
	td := buildTracingData(t)
	for _, algo := range []string{"dtw", "multi-dtw"} {
		settings := Settings{
			FeatureParameters: config.FeatureParameters{DataSource: "signal", Algorithm: algo, WindowSize: 4, TimeLag: 1},
			Threads:           1,
			BeginTimestamp:    5,
			EndTimestamp:      8,
		}
		result, err := Compute(td, [][2]int{{0, 1}}, settings)
		if err != nil {
			t.Fatalf("%s: Compute: %v", algo, err)
		}
		if result.Pairs[0].Features.Cols() != 3 {
			t.Errorf("%s: feature dimension = %d, want 3", algo, result.Pairs[0].Features.Cols())
		}
	}
}
