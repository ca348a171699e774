package artifact

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/comove/tracepair/internal/groundtruth"
)

type groundTruthDeviceJSON struct {
	Name  string `json:"name"`
	Group int    `json:"group"`
	Order int    `json:"order"`
}

type groundTruthTimestampJSON struct {
	Timestamp int64                   `json:"timestamp"`
	Devices   []groundTruthDeviceJSON `json:"devices"`
}

type groundTruthJSON struct {
	Timestamps []groundTruthTimestampJSON `json:"timestamps"`
}

// WriteGroundTruthJSON writes gt to w as JSON, with timestamps in
// ascending order for deterministic output.
func WriteGroundTruthJSON(w io.Writer, gt *groundtruth.Data) error {
	doc := groundTruthJSON{Timestamps: make([]groundTruthTimestampJSON, 0, len(gt.Timestamps))}
	for ts, devices := range gt.Timestamps {
		entry := groundTruthTimestampJSON{Timestamp: ts}
		for _, d := range devices {
			entry.Devices = append(entry.Devices, groundTruthDeviceJSON{Name: d.Name, Group: d.Group, Order: d.Order})
		}
		doc.Timestamps = append(doc.Timestamps, entry)
	}
	sort.Slice(doc.Timestamps, func(i, j int) bool { return doc.Timestamps[i].Timestamp < doc.Timestamps[j].Timestamp })
	return json.NewEncoder(w).Encode(doc)
}

// ReadGroundTruthJSON reads a GroundTruth artifact previously written
// by WriteGroundTruthJSON.
func ReadGroundTruthJSON(r io.Reader) (*groundtruth.Data, error) {
	const op = "artifact.ReadGroundTruthJSON"

	var doc groundTruthJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, wrapErr(op, err)
	}

	gt := groundtruth.New()
	for _, entry := range doc.Timestamps {
		devices := make([]groundtruth.Device, len(entry.Devices))
		for i, d := range entry.Devices {
			devices[i] = groundtruth.Device{Name: d.Name, Group: d.Group, Order: d.Order}
		}
		gt.Timestamps[entry.Timestamp] = devices
	}
	return gt, nil
}

// WriteGroundTruthBinary writes gt to w in the portable binary framing.
func WriteGroundTruthBinary(w io.Writer, gt *groundtruth.Data) error {
	const op = "artifact.WriteGroundTruthBinary"

	timestamps := make([]int64, 0, len(gt.Timestamps))
	for ts := range gt.Timestamps {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	if err := writeInt32(w, int32(len(timestamps))); err != nil {
		return wrapErr(op, err)
	}
	for _, ts := range timestamps {
		devices := gt.Timestamps[ts]
		if err := writeInt64(w, ts); err != nil {
			return wrapErr(op, err)
		}
		if err := writeInt32(w, int32(len(devices))); err != nil {
			return wrapErr(op, err)
		}
		for _, d := range devices {
			if err := writeString(w, d.Name); err != nil {
				return wrapErr(op, err)
			}
			if err := writeInt32(w, int32(d.Group)); err != nil {
				return wrapErr(op, err)
			}
			if err := writeInt32(w, int32(d.Order)); err != nil {
				return wrapErr(op, err)
			}
		}
	}
	return nil
}

// ReadGroundTruthBinary reads a GroundTruth artifact previously
// written by WriteGroundTruthBinary.
func ReadGroundTruthBinary(r io.Reader) (*groundtruth.Data, error) {
	const op = "artifact.ReadGroundTruthBinary"

	numTimestamps, err := readInt32(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	gt := groundtruth.New()
	for i := int32(0); i < numTimestamps; i++ {
		ts, err := readInt64(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		numDevices, err := readInt32(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		devices := make([]groundtruth.Device, numDevices)
		for j := range devices {
			name, err := readString(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			group, err := readInt32(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			order, err := readInt32(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			devices[j] = groundtruth.Device{Name: name, Group: int(group), Order: int(order)}
		}
		gt.Timestamps[ts] = devices
	}
	return gt, nil
}
