package similarity

import (
	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/config"
)

// Pair stores the feature matrix for a single device pair: one row per
// timestamp, one column per lag in [-TimeLag, TimeLag].
type Pair struct {
	Left, Right int // indices into Data.Devices
	Features    *array2d.Matrix
}

// Data stores similarity feature vectors for every device pair and
// every timestamp in [BeginTimestamp, EndTimestamp].
type Data struct {
	Parameters       config.FeatureParameters
	BeginTimestamp   int64
	EndTimestamp     int64
	Duration         int64
	FeatureDimension int
	Devices          []string
	Pairs            []Pair
}

// FeatureAt returns the feature vector row for pair at the given
// timestamp.
func (d *Data) FeatureAt(pair *Pair, timestamp int64) []float64 {
	return pair.Features.Row(int(timestamp - d.BeginTimestamp))
}

// Settings configures a similarity computation run: the feature
// parameters (algorithm, window size, time lag), worker count, and
// inclusive timestamp range to compute over. Mirrors
// mp::feature_computation.
type Settings struct {
	config.FeatureParameters
	Threads        int
	BeginTimestamp int64
	EndTimestamp   int64
}
