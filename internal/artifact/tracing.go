package artifact

import (
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/tracing"
)

type tracingDeviceJSON struct {
	Name    string `json:"name"`
	Data    string `json:"data"`     // base64, row-major float64, little-endian
	HasData string `json:"has_data"` // base64, row-major bytes
}

type tracingDataJSON struct {
	Parameters    paramsJSON          `json:"feature_parameters"`
	DataDimension int                 `json:"data_dimension"`
	MinTimestamp  int64               `json:"min_timestamp"`
	MaxTimestamp  int64               `json:"max_timestamp"`
	Duration      int64               `json:"duration"`
	Devices       []tracingDeviceJSON `json:"devices"`
}

func encodeFloat64s(s []float64) string {
	raw := make([]byte, len(s)*8)
	for i, v := range s {
		putFloat64(raw[i*8:], v)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func decodeFloat64s(s string) ([]float64, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw)/8)
	for i := range out {
		out[i] = getFloat64(raw[i*8:])
	}
	return out, nil
}

// WriteTracingDataJSON writes td to w as JSON, with dense matrices
// base64-encoded, alongside the feature parameters it was normalised
// under (only DataSource is meaningful here; the rest default).
func WriteTracingDataJSON(w io.Writer, td *tracing.Data, params config.FeatureParameters) error {
	doc := tracingDataJSON{
		Parameters:    toParamsJSON(params),
		DataDimension: td.DataDimension,
		MinTimestamp:  td.MinTimestamp,
		MaxTimestamp:  td.MaxTimestamp,
		Duration:      td.Duration,
	}
	for _, dev := range td.Devices {
		doc.Devices = append(doc.Devices, tracingDeviceJSON{
			Name:    dev.Name,
			Data:    encodeFloat64s(dev.Data.RawRowMajor()),
			HasData: base64.StdEncoding.EncodeToString(dev.HasData.RawRowMajor()),
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}

// ReadTracingDataJSON reads a TracingData artifact previously written
// by WriteTracingDataJSON.
func ReadTracingDataJSON(r io.Reader) (*tracing.Data, config.FeatureParameters, error) {
	const op = "artifact.ReadTracingDataJSON"

	var doc tracingDataJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}

	td := &tracing.Data{
		DataDimension: doc.DataDimension,
		MinTimestamp:  doc.MinTimestamp,
		MaxTimestamp:  doc.MaxTimestamp,
		Duration:      doc.Duration,
	}
	rows := int(td.Duration)
	for _, jd := range doc.Devices {
		data, err := decodeFloat64s(jd.Data)
		if err != nil {
			return nil, config.FeatureParameters{}, wrapErr(op, err)
		}
		hasData, err := base64.StdEncoding.DecodeString(jd.HasData)
		if err != nil {
			return nil, config.FeatureParameters{}, wrapErr(op, err)
		}
		td.Devices = append(td.Devices, tracing.Device{
			Name:    jd.Name,
			Data:    array2d.NewFromRowMajor(data, rows, td.DataDimension),
			HasData: array2d.NewByteFromRowMajor(hasData, rows, td.DataDimension),
		})
	}
	return td, doc.Parameters.toParams(), nil
}

// WriteTracingDataBinary writes td to w in the portable binary
// framing: feature parameters, header fields, then one
// (name, float64 blob, byte blob) triple per device.
func WriteTracingDataBinary(w io.Writer, td *tracing.Data, params config.FeatureParameters) error {
	const op = "artifact.WriteTracingDataBinary"

	if err := writeParams(w, params); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt32(w, int32(td.DataDimension)); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, td.MinTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, td.MaxTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, td.Duration); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt32(w, int32(len(td.Devices))); err != nil {
		return wrapErr(op, err)
	}
	for _, dev := range td.Devices {
		if err := writeString(w, dev.Name); err != nil {
			return wrapErr(op, err)
		}
		if err := writeFloat64Slice(w, dev.Data.RawRowMajor()); err != nil {
			return wrapErr(op, err)
		}
		if err := writeByteSlice(w, dev.HasData.RawRowMajor()); err != nil {
			return wrapErr(op, err)
		}
	}
	return nil
}

// ReadTracingDataBinary reads a TracingData artifact previously
// written by WriteTracingDataBinary.
func ReadTracingDataBinary(r io.Reader) (*tracing.Data, config.FeatureParameters, error) {
	const op = "artifact.ReadTracingDataBinary"

	params, err := readParams(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	dataDimension, err := readInt32(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	minTS, err := readInt64(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	maxTS, err := readInt64(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	duration, err := readInt64(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	numDevices, err := readInt32(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}

	td := &tracing.Data{
		DataDimension: int(dataDimension),
		MinTimestamp:  minTS,
		MaxTimestamp:  maxTS,
		Duration:      duration,
	}
	rows := int(duration)
	for i := int32(0); i < numDevices; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, config.FeatureParameters{}, wrapErr(op, err)
		}
		data, err := readFloat64Slice(r)
		if err != nil {
			return nil, config.FeatureParameters{}, wrapErr(op, err)
		}
		hasData, err := readByteSlice(r)
		if err != nil {
			return nil, config.FeatureParameters{}, wrapErr(op, err)
		}
		td.Devices = append(td.Devices, tracing.Device{
			Name:    name,
			Data:    array2d.NewFromRowMajor(data, rows, td.DataDimension),
			HasData: array2d.NewByteFromRowMajor(hasData, rows, td.DataDimension),
		})
	}
	return td, params, nil
}
