package following

import (
	"github.com/comove/tracepair/internal/classifier"
	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/similarity"
)

// Relation is one co-moving pair's detected relation at a timestamp.
// If Type is Following, Left follows Right; if Leading, Left leads
// Right; if CoLeading, both devices are considered leading.
type Relation struct {
	Left, Right int // indices into Data.Devices
	Lag         float64
	Type        Type
}

// Timestamp stores every co-moving relation detected at one timestamp.
type Timestamp struct {
	Timestamp int64
	CoMoving  []Relation
}

// Data stores every detected following relation for every timestamp in
// [BeginTimestamp, EndTimestamp], following mp::following_data.
type Data struct {
	BeginTimestamp int64
	EndTimestamp   int64
	Duration       int64
	Devices        []string
	Timestamps     []Timestamp
}

// At returns the Timestamp entry for the given timestamp.
func (d *Data) At(timestamp int64) *Timestamp {
	return &d.Timestamps[timestamp-d.BeginTimestamp]
}

// Classify runs every pair/timestamp feature vector in data through c,
// recording a Relation for every one classified as co-moving. The
// time lag used for estimation is derived from data's feature
// dimension ((dimension-1)/2), matching mp::classify.
func Classify(c *classifier.Classifier, data *similarity.Data) (*Data, error) {
	const op = "following.Classify"
	if len(data.Pairs) == 0 && data.FeatureDimension == 0 {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}

	timeLag := (data.FeatureDimension - 1) / 2
	estimator := NewLagEstimator(timeLag)

	result := &Data{
		BeginTimestamp: data.BeginTimestamp,
		EndTimestamp:   data.EndTimestamp,
		Duration:       data.Duration,
		Devices:        append([]string(nil), data.Devices...),
		Timestamps:     make([]Timestamp, data.Duration),
	}
	for i := range result.Timestamps {
		result.Timestamps[i].Timestamp = result.BeginTimestamp + int64(i)
	}

	for ts := data.BeginTimestamp; ts <= data.EndTimestamp; ts++ {
		bucket := result.At(ts)
		for i := range data.Pairs {
			pair := &data.Pairs[i]
			feature := data.FeatureAt(pair, ts)

			isCoMoving, err := c.CoMoving(feature)
			if err != nil {
				return nil, errs.New(errs.RangeError, op, err)
			}
			if !isCoMoving {
				continue
			}

			estLag := estimator.EstimateComplex(feature)
			relType := estimator.FollowingType(estLag)
			bucket.CoMoving = append(bucket.CoMoving, Relation{
				Left:  pair.Left,
				Right: pair.Right,
				Lag:   estLag,
				Type:  relType,
			})
		}
	}
	return result, nil
}
