package artifact

import (
	"encoding/json"
	"io"

	"github.com/comove/tracepair/internal/graph"
)

type leaderTimestampJSON struct {
	Timestamp int64    `json:"timestamp"`
	Leaders   []string `json:"leaders"`
}

type leaderDataJSON struct {
	BeginTimestamp int64                 `json:"begin_timestamp"`
	EndTimestamp   int64                 `json:"end_timestamp"`
	Duration       int64                 `json:"duration"`
	Devices        []string              `json:"devices"`
	Timestamps     []leaderTimestampJSON `json:"timestamps"`
}

// WriteLeaderDataJSON writes ld to w as JSON.
func WriteLeaderDataJSON(w io.Writer, ld *graph.LeaderData) error {
	doc := leaderDataJSON{
		BeginTimestamp: ld.BeginTimestamp,
		EndTimestamp:   ld.EndTimestamp,
		Duration:       ld.Duration,
		Devices:        ld.Devices,
	}
	for _, ts := range ld.Timestamps {
		doc.Timestamps = append(doc.Timestamps, leaderTimestampJSON{Timestamp: ts.Timestamp, Leaders: ts.Leaders})
	}
	return json.NewEncoder(w).Encode(doc)
}

// ReadLeaderDataJSON reads a LeaderData artifact previously written by
// WriteLeaderDataJSON.
func ReadLeaderDataJSON(r io.Reader) (*graph.LeaderData, error) {
	const op = "artifact.ReadLeaderDataJSON"

	var doc leaderDataJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, wrapErr(op, err)
	}

	ld := &graph.LeaderData{
		BeginTimestamp: doc.BeginTimestamp,
		EndTimestamp:   doc.EndTimestamp,
		Duration:       doc.Duration,
		Devices:        doc.Devices,
	}
	for _, jts := range doc.Timestamps {
		ld.Timestamps = append(ld.Timestamps, graph.TimestampLeaders{Timestamp: jts.Timestamp, Leaders: jts.Leaders})
	}
	return ld, nil
}

// WriteLeaderDataBinary writes ld to w in the portable binary framing.
func WriteLeaderDataBinary(w io.Writer, ld *graph.LeaderData) error {
	const op = "artifact.WriteLeaderDataBinary"

	if err := writeInt64(w, ld.BeginTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, ld.EndTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, ld.Duration); err != nil {
		return wrapErr(op, err)
	}
	if err := writeStringSlice(w, ld.Devices); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt32(w, int32(len(ld.Timestamps))); err != nil {
		return wrapErr(op, err)
	}
	for _, ts := range ld.Timestamps {
		if err := writeInt64(w, ts.Timestamp); err != nil {
			return wrapErr(op, err)
		}
		if err := writeStringSlice(w, ts.Leaders); err != nil {
			return wrapErr(op, err)
		}
	}
	return nil
}

// ReadLeaderDataBinary reads a LeaderData artifact previously written
// by WriteLeaderDataBinary.
func ReadLeaderDataBinary(r io.Reader) (*graph.LeaderData, error) {
	const op = "artifact.ReadLeaderDataBinary"

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
	devices, err := readStringSlice(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	numTimestamps, err := readInt32(r)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	ld := &graph.LeaderData{BeginTimestamp: begin, EndTimestamp: end, Duration: duration, Devices: devices}
	for i := int32(0); i < numTimestamps; i++ {
		ts, err := readInt64(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		leaders, err := readStringSlice(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		ld.Timestamps = append(ld.Timestamps, graph.TimestampLeaders{Timestamp: ts, Leaders: leaders})
	}
	return ld, nil
}
