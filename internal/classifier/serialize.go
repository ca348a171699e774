package classifier

import (
	"encoding/binary"
	"io"

	"github.com/comove/tracepair/internal/errs"
)

// Save writes the classifier to w as portable binary: a version tag,
// a valid flag, and (if valid) the trained dimension, weights, bias,
// and normalizer statistics.
func (c *Classifier) Save(w io.Writer) error {
	const op = "classifier.Save"

	if err := binary.Write(w, binary.LittleEndian, int32(version)); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if err := binary.Write(w, binary.LittleEndian, c.trained); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if !c.trained {
		return nil
	}

	if err := binary.Write(w, binary.LittleEndian, int32(c.dimension)); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if err := writeFloat64Slice(w, c.weights); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if err := binary.Write(w, binary.LittleEndian, c.bias); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if err := writeFloat64Slice(w, c.norm.mean); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if err := writeFloat64Slice(w, c.norm.std); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	return nil
}

// Load reads a classifier from r, replacing this instance's state. It
// rejects any version other than the one this package writes, the way
// co_moving_classifier::load throws on a version mismatch.
func (c *Classifier) Load(r io.Reader) error {
	const op = "classifier.Load"

	var gotVersion int32
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if gotVersion != version {
		return errs.Newf(errs.VersionMismatch, op, "serialized classifier has version %d, want %d", gotVersion, version)
	}

	var valid bool
	if err := binary.Read(r, binary.LittleEndian, &valid); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	if !valid {
		*c = Classifier{}
		return nil
	}

	var dimension int32
	if err := binary.Read(r, binary.LittleEndian, &dimension); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	weights, err := readFloat64Slice(r)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	var bias float64
	if err := binary.Read(r, binary.LittleEndian, &bias); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	mean, err := readFloat64Slice(r)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	std, err := readFloat64Slice(r)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}

	c.trained = true
	c.dimension = int(dimension)
	c.weights = weights
	c.bias = bias
	c.norm = &normalizer{mean: mean, std: std}
	return nil
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
	if err := binary.Read(r, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return s, nil
}
