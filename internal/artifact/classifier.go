package artifact

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/comove/tracepair/internal/classifier"
	"github.com/comove/tracepair/internal/config"
)

type classifierJSON struct {
	Parameters paramsJSON `json:"feature_parameters"`
	Blob       string     `json:"blob"` // base64 of classifier.Save's native binary layout
}

// WriteClassifierJSON writes c to w as JSON: the feature parameters it
// was trained with, alongside its native binary layout base64-encoded.
// The classifier's own layout is already versioned (classifier.Save),
// so this artifact doesn't duplicate that framing, only wraps it with
// the parameters every other artifact carries.
func WriteClassifierJSON(w io.Writer, c *classifier.Classifier, params config.FeatureParameters) error {
	const op = "artifact.WriteClassifierJSON"

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		return err
	}
	doc := classifierJSON{
		Parameters: toParamsJSON(params),
		Blob:       base64.StdEncoding.EncodeToString(buf.Bytes()),
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return wrapErr(op, err)
	}
	return nil
}

// ReadClassifierJSON reads a Classifier artifact previously written by
// WriteClassifierJSON.
func ReadClassifierJSON(r io.Reader) (*classifier.Classifier, config.FeatureParameters, error) {
	const op = "artifact.ReadClassifierJSON"

	var doc classifierJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	raw, err := base64.StdEncoding.DecodeString(doc.Blob)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}

	c := classifier.New()
	if err := c.Load(bytes.NewReader(raw)); err != nil {
		return nil, config.FeatureParameters{}, err
	}
	return c, doc.Parameters.toParams(), nil
}

// WriteClassifierBinary writes c to w in the portable binary framing:
// the feature parameters, then classifier.Save's own native layout.
func WriteClassifierBinary(w io.Writer, c *classifier.Classifier, params config.FeatureParameters) error {
	const op = "artifact.WriteClassifierBinary"
	if err := writeParams(w, params); err != nil {
		return wrapErr(op, err)
	}
	return c.Save(w)
}

// ReadClassifierBinary reads a Classifier artifact previously written
// by WriteClassifierBinary.
func ReadClassifierBinary(r io.Reader) (*classifier.Classifier, config.FeatureParameters, error) {
	const op = "artifact.ReadClassifierBinary"
	params, err := readParams(r)
	if err != nil {
		return nil, config.FeatureParameters{}, wrapErr(op, err)
	}
	c := classifier.New()
	if err := c.Load(r); err != nil {
		return nil, config.FeatureParameters{}, err
	}
	return c, params, nil
}
