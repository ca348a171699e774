package following

import (
	"math"
	"testing"

	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/classifier"
	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/groundtruth"
	"github.com/comove/tracepair/internal/similarity"
)

func TestEstimateSimplePicksSmallestAbsolute(t *testing.T) {
	e := NewLagEstimator(2) // lags -2..2
	fv := []float64{5, -0.1, 3, 4, 9}
	got := e.EstimateSimple(fv)
	if got != -1 { // index 1 -> lag = -2+1 = -1
		t.Errorf("EstimateSimple = %v, want -1", got)
	}
}

func TestEstimateComplexSymmetricZero(t *testing.T) {
	e := NewLagEstimator(1)
	// symmetric weights around lag 0 should estimate ~0
	fv := []float64{1, 1, 1}
	got := e.EstimateComplex(fv)
	if math.Abs(got) > 1e-9 {
		t.Errorf("EstimateComplex = %v, want ~0 for symmetric weights", got)
	}
}

func TestFollowingTypeThresholds(t *testing.T) {
	e := NewLagEstimator(5)
	if got := e.FollowingType(0.05); got != CoLeading {
		t.Errorf("0.05 -> %v, want CoLeading", got)
	}
	if got := e.FollowingType(-1); got != Following {
		t.Errorf("-1 -> %v, want Following", got)
	}
	if got := e.FollowingType(1); got != Leading {
		t.Errorf("1 -> %v, want Leading", got)
	}
}

func TestClassifyRecordsCoMovingPairs(t *testing.T) {
	const dim = 3
	const begin, end = int64(0), int64(2)
	duration := int(end-begin) + 1

	features := array2d.New(duration, dim)
	for r := 0; r < duration; r++ {
		row := features.Row(r)
		row[0], row[1], row[2] = 0, 0, 0 // always "low" -> co-moving by our classifier below
	}

	data := &similarity.Data{
		Parameters:       config.FeatureParameters{Algorithm: "euclid", WindowSize: 4, TimeLag: 1},
		BeginTimestamp:   begin,
		EndTimestamp:     end,
		Duration:         int64(duration),
		FeatureDimension: dim,
		Devices:          []string{"a", "b"},
		Pairs: []similarity.Pair{
			{Left: 0, Right: 1, Features: features},
		},
	}

	// Train a classifier that always says "co-moving" for low values.
	gt := groundtruth.New()
	for ts := begin; ts <= end; ts++ {
		gt.Timestamps[ts] = []groundtruth.Device{
			{Name: "a", Group: 1, Order: 0},
			{Name: "b", Group: 1, Order: 1},
		}
	}
	// Add a contrasting "high" sample set purely to give the SVM two classes to split.
	highFeatures := array2d.New(duration, dim)
	for r := 0; r < duration; r++ {
		row := highFeatures.Row(r)
		row[0], row[1], row[2] = 10, 10, 10
	}
	trainData := &similarity.Data{
		Parameters:       data.Parameters,
		BeginTimestamp:   begin,
		EndTimestamp:     end,
		Duration:         int64(duration),
		FeatureDimension: dim,
		Devices:          []string{"a", "b", "c"},
		Pairs: []similarity.Pair{
			{Left: 0, Right: 1, Features: features},
			{Left: 0, Right: 2, Features: highFeatures},
		},
	}
	trainGT := groundtruth.New()
	for ts := begin; ts <= end; ts++ {
		trainGT.Timestamps[ts] = []groundtruth.Device{
			{Name: "a", Group: 1, Order: 0},
			{Name: "b", Group: 1, Order: 1},
			{Name: "c", Group: 2, Order: 0},
		}
	}

	c := classifier.New()
	if err := c.Learn(trainData, trainGT); err != nil {
		t.Fatalf("Learn: %v", err)
	}

	result, err := Classify(c, data)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(result.Timestamps) != duration {
		t.Fatalf("expected %d timestamp entries, got %d", duration, len(result.Timestamps))
	}
	for ts := begin; ts <= end; ts++ {
		bucket := result.At(ts)
		if len(bucket.CoMoving) != 1 {
			t.Errorf("timestamp %d: expected 1 co-moving relation, got %d", ts, len(bucket.CoMoving))
			continue
		}
		rel := bucket.CoMoving[0]
		if rel.Type != CoLeading {
			t.Errorf("timestamp %d: expected CoLeading for symmetric zero lag, got %v", ts, rel.Type)
		}
	}
}
