// Package artifact serialises every pipeline stage's output artifact
// (TracingData, SimilarityData, GroundTruth, Classifier, FollowingData,
// FollowingGraph, LeaderData) in two interchangeable framings: a JSON
// document with base64-encoded binary blobs, and a portable binary
// framing with length-prefixed blobs, following mp::serialization's
// istream/ostream pair for the classifier generalised to every
// artifact spec.md §6 names. Every artifact carries its
// config.FeatureParameters alongside the payload so a downstream stage
// can refuse a mismatched input (spec.md §7, ParameterMismatch).
package artifact

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/comove/tracepair/internal/errs"
)

// putFloat64 and getFloat64 encode/decode a single little-endian
// float64, used when base64-framing raw matrix data for JSON artifacts.
func putFloat64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func getFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// writeString writes a length-prefixed UTF-8 string.
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeStringSlice(w io.Writer, s []string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	for _, v := range s {
		if err := writeString(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readStringSlice(r io.Reader) ([]string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	s := make([]string, n)
	for i := range s {
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		s[i] = v
	}
	return s, nil
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, s)
}

func readFloat64Slice(r io.Reader) ([]float64, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	s := make([]float64, n)
	if n > 0 {
		if err := binary.Read(r, binary.LittleEndian, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func writeByteSlice(w io.Writer, s []byte) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write(s)
	return err
}

func readByteSlice(r io.Reader) ([]byte, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func writeInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeFloat64(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readFloat64(r io.Reader) (float64, error) {
	var v float64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return errs.New(errs.MalformedInput, op, err)
}
