package artifact

import (
	"encoding/json"
	"io"

	"github.com/comove/tracepair/internal/following"
)

type followingRelationJSON struct {
	Left  int     `json:"left"`
	Right int     `json:"right"`
	Lag   float64 `json:"lag"`
	Type  string  `json:"type"`
}

type followingTimestampJSON struct {
	Timestamp int64                   `json:"timestamp"`
	CoMoving  []followingRelationJSON `json:"co_moving"`
}

type followingDataJSON struct {
	BeginTimestamp int64                    `json:"begin_timestamp"`
	EndTimestamp   int64                    `json:"end_timestamp"`
	Duration       int64                    `json:"duration"`
	Devices        []string                 `json:"devices"`
	Timestamps     []followingTimestampJSON `json:"timestamps"`
}

func followingTypeFromString(s string) following.Type {
	switch s {
	case "leading":
		return following.Leading
	case "co_leading":
		return following.CoLeading
	default:
		return following.Following
	}
}

// WriteFollowingDataJSON writes fd to w as JSON.
func WriteFollowingDataJSON(w io.Writer, fd *following.Data) error {
	doc := followingDataJSON{
		BeginTimestamp: fd.BeginTimestamp,
		EndTimestamp:   fd.EndTimestamp,
		Duration:       fd.Duration,
		Devices:        fd.Devices,
	}
	for _, ts := range fd.Timestamps {
		entry := followingTimestampJSON{Timestamp: ts.Timestamp}
		for _, rel := range ts.CoMoving {
			entry.CoMoving = append(entry.CoMoving, followingRelationJSON{
				Left: rel.Left, Right: rel.Right, Lag: rel.Lag, Type: rel.Type.String(),
			})
		}
		doc.Timestamps = append(doc.Timestamps, entry)
	}
	return json.NewEncoder(w).Encode(doc)
}

// ReadFollowingDataJSON reads a FollowingData artifact previously
// written by WriteFollowingDataJSON.
func ReadFollowingDataJSON(r io.Reader) (*following.Data, error) {
	const op = "artifact.ReadFollowingDataJSON"

	var doc followingDataJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, wrapErr(op, err)
	}

	fd := &following.Data{
		BeginTimestamp: doc.BeginTimestamp,
		EndTimestamp:   doc.EndTimestamp,
		Duration:       doc.Duration,
		Devices:        doc.Devices,
	}
	for _, jts := range doc.Timestamps {
		entry := following.Timestamp{Timestamp: jts.Timestamp}
		for _, jrel := range jts.CoMoving {
			entry.CoMoving = append(entry.CoMoving, following.Relation{
				Left: jrel.Left, Right: jrel.Right, Lag: jrel.Lag, Type: followingTypeFromString(jrel.Type),
			})
		}
		fd.Timestamps = append(fd.Timestamps, entry)
	}
	return fd, nil
}

// WriteFollowingDataBinary writes fd to w in the portable binary framing.
func WriteFollowingDataBinary(w io.Writer, fd *following.Data) error {
	const op = "artifact.WriteFollowingDataBinary"

	if err := writeInt64(w, fd.BeginTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, fd.EndTimestamp); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt64(w, fd.Duration); err != nil {
		return wrapErr(op, err)
	}
	if err := writeStringSlice(w, fd.Devices); err != nil {
		return wrapErr(op, err)
	}
	if err := writeInt32(w, int32(len(fd.Timestamps))); err != nil {
		return wrapErr(op, err)
	}
	for _, ts := range fd.Timestamps {
		if err := writeInt64(w, ts.Timestamp); err != nil {
			return wrapErr(op, err)
		}
		if err := writeInt32(w, int32(len(ts.CoMoving))); err != nil {
			return wrapErr(op, err)
		}
		for _, rel := range ts.CoMoving {
			if err := writeInt32(w, int32(rel.Left)); err != nil {
				return wrapErr(op, err)
			}
			if err := writeInt32(w, int32(rel.Right)); err != nil {
				return wrapErr(op, err)
			}
			if err := writeFloat64(w, rel.Lag); err != nil {
				return wrapErr(op, err)
			}
			if err := writeInt32(w, int32(rel.Type)); err != nil {
				return wrapErr(op, err)
			}
		}
	}
	return nil
}

// ReadFollowingDataBinary reads a FollowingData artifact previously
// written by WriteFollowingDataBinary.
func ReadFollowingDataBinary(r io.Reader) (*following.Data, error) {
	const op = "artifact.ReadFollowingDataBinary"

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

	fd := &following.Data{BeginTimestamp: begin, EndTimestamp: end, Duration: duration, Devices: devices}
	for i := int32(0); i < numTimestamps; i++ {
		ts, err := readInt64(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		numRelations, err := readInt32(r)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		entry := following.Timestamp{Timestamp: ts}
		for j := int32(0); j < numRelations; j++ {
			left, err := readInt32(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			right, err := readInt32(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			lag, err := readFloat64(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			typ, err := readInt32(r)
			if err != nil {
				return nil, wrapErr(op, err)
			}
			entry.CoMoving = append(entry.CoMoving, following.Relation{
				Left: int(left), Right: int(right), Lag: lag, Type: following.Type(typ),
			})
		}
		fd.Timestamps = append(fd.Timestamps, entry)
	}
	return fd, nil
}
