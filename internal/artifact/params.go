package artifact

import (
	"io"

	"github.com/comove/tracepair/internal/config"
)

type paramsJSON struct {
	DataSource string `json:"data_source"`
	Algorithm  string `json:"algorithm"`
	WindowSize int    `json:"window_size"`
	TimeLag    int    `json:"time_lag"`
}

func toParamsJSON(p config.FeatureParameters) paramsJSON {
	return paramsJSON{DataSource: p.DataSource, Algorithm: p.Algorithm, WindowSize: p.WindowSize, TimeLag: p.TimeLag}
}

func (p paramsJSON) toParams() config.FeatureParameters {
	return config.FeatureParameters{DataSource: p.DataSource, Algorithm: p.Algorithm, WindowSize: p.WindowSize, TimeLag: p.TimeLag}
}

func writeParams(w io.Writer, p config.FeatureParameters) error {
	if err := writeString(w, p.DataSource); err != nil {
		return err
	}
	if err := writeString(w, p.Algorithm); err != nil {
		return err
	}
	if err := writeInt32(w, int32(p.WindowSize)); err != nil {
		return err
	}
	return writeInt32(w, int32(p.TimeLag))
}

func readParams(r io.Reader) (config.FeatureParameters, error) {
	var p config.FeatureParameters
	var err error
	if p.DataSource, err = readString(r); err != nil {
		return p, err
	}
	if p.Algorithm, err = readString(r); err != nil {
		return p, err
	}
	windowSize, err := readInt32(r)
	if err != nil {
		return p, err
	}
	timeLag, err := readInt32(r)
	if err != nil {
		return p, err
	}
	p.WindowSize = int(windowSize)
	p.TimeLag = int(timeLag)
	return p, nil
}
