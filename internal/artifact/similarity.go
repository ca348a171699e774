package artifact

import (
	"encoding/json"
	"io"

	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/similarity"
)

type similarityPairJSON struct {
	Left     int    `json:"left"`
	Right    int    `json:"right"`
	Features string `json:"features"` // base64, row-major float64
}

type similarityDataJSON struct {
	Parameters       paramsJSON           `json:"feature_parameters"`
	BeginTimestamp   int64                `json:"begin_timestamp"`
	EndTimestamp     int64                `json:"end_timestamp"`
	Duration         int64                `json:"duration"`
	FeatureDimension int                  `json:"feature_dimension"`
	Devices          []string             `json:"devices"`
	Pairs            []similarityPairJSON `json:"pairs"`
}

// WriteSimilarityDataJSON writes sd to w as JSON.
func WriteSimilarityDataJSON(w io.Writer, sd *similarity.Data) error {
	doc := similarityDataJSON{
		Parameters:       toParamsJSON(sd.Parameters),
		BeginTimestamp:   sd.BeginTimestamp,
		EndTimestamp:     sd.EndTimestamp,
		Duration:         sd.Duration,
		FeatureDimension: sd.FeatureDimension,
		Devices:          sd.Devices,
	}
	for _, p := range sd.Pairs {
		doc.Pairs = append(doc.Pairs, similarityPairJSON{
			Left:     p.Left,
			Right:    p.Right,
			Features: encodeFloat64s(p.Features.RawRowMajor()),
		})
	}
	return json.NewEncoder(w).Encode(doc)
}

// ReadSimilarityDataJSON reads a SimilarityData artifact previously
// written by WriteSimilarityDataJSON.
func ReadSimilarityDataJSON(r io.Reader) (*similarity.Data, error) {
	const op = "artifact.ReadSimilarityDataJSON"

	var doc similarityDataJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, wrapErr(op, err)
	}

	sd := &similarity.Data{
		Parameters:       doc.Parameters.toParams(),
		BeginTimestamp:   doc.BeginTimestamp,
		EndTimestamp:     doc.EndTimestamp,
		Duration:         doc.Duration,
		FeatureDimension: doc.FeatureDimension,
		Devices:          doc.Devices,
	}
	rows := int(doc.Duration)
	for _, jp := range doc.Pairs {
		features, err := decodeFloat64s(jp.Features)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		sd.Pairs = append(sd.Pairs, similarity.Pair{
			Left:     jp.Left,
			Right:    jp.Right,
			Features: array2d.NewFromRowMajor(features, rows, doc.FeatureDimension),
		})
	}
	return sd, nil
}

// WriteSimilarityDataBinary writes sd to w in the portable binary framing.
func WriteSimilarityDataBinary(w io.Writer, sd *similarity.Data) error {
	const op = "artifact.WriteSimilarityDataBinary"

	if err := writeParams(w, sd.Parameters); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, sd.BeginTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, sd.EndTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, sd.Duration); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt32(w, int32(sd.FeatureDimension)); err != nil {
		return wrapErr(op, err)
	}
	if err := writeStringSlice(w, sd.Devices); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt32(w, int32(len(sd.Pairs))); err != nil {
		return wrapErr(op, err)
	}
	for _, p := range sd.Pairs {
		if err := writeInt32(w, int32(p.Left)); err != nil {
			return wrapErr(op, err)
		}
		if err := writeInt32(w, int32(p.Right)); err != nil {
			return wrapErr(op, err)
		}
		if err := writeFloat64Slice(w, p.Features.RawRowMajor()); err != nil {
			return wrapErr(op, err)
		}
	}
	return nil
}

// ReadSimilarityDataBinary reads a SimilarityData artifact previously
// written by WriteSimilarityDataBinary.
func ReadSimilarityDataBinary(r io.Reader) (*similarity.Data, error) {
	const op = "artifact.ReadSimilarityDataBinary"

	params, err := readParams(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	begin, err := readInt64(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	end, err := readInt64(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	duration, err := readInt64(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	featureDim, err := readInt32(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	devices, err := readStringSlice(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	numPairs, err := readInt32(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	sd := &similarity.Data{
		Parameters:       params,
		BeginTimestamp:   begin,
		EndTimestamp:     end,
		Duration:         duration,
		FeatureDimension: int(featureDim),
		Devices:          devices,
	}
	rows := int(duration)
	for i := int32(0); i < numPairs; i++ {
		left, err := readInt32(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		right, err := readInt32(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		features, err := readFloat64Slice(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		sd.Pairs = append(sd.Pairs, similarity.Pair{
			Left:     int(left),
			Right:    int(right),
			Features: array2d.NewFromRowMajor(features, rows, sd.FeatureDimension),
		})
	}
	return sd, nil
}
