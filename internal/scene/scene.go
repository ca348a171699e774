// Package scene loads a manifest's tracing and ground-truth data
// through an fsutil.FileSystem, the way the teacher's handlers take an
// injected FileSystem instead of calling os directly: produce-features,
// produce-ground-truth and dtw-path-example all need the same
// plain/game dispatch over a manifest, and exercising that dispatch
// against fsutil.NewMemoryFileSystem lets its tests avoid touching
// disk.
package scene

import (
	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/fsutil"
	"github.com/comove/tracepair/internal/groundtruth"
	"github.com/comove/tracepair/internal/parse"
	"github.com/comove/tracepair/internal/tracing"
)

// LoadTracingData reads m's underlying signal or location data through
// fs and transforms it into tracing.Data, dispatching on both
// m.DataType and m.SceneType the way read_scene_manifest's caller does.
func LoadTracingData(fs fsutil.FileSystem, m *parse.Manifest, cfg *config.RunConfig) (*tracing.Data, error) {
	const op = "scene.LoadTracingData"

	switch m.DataType {
	case "signal":
		sd, err := LoadSignalData(fs, m)
		if err != nil {
			return nil, errs.New(errs.MalformedInput, op, err)
		}
		return tracing.TransformSignal(sd, *cfg.DefaultSignalStrength)
	case "location":
		ld, err := LoadLocationData(fs, m)
		if err != nil {
			return nil, errs.New(errs.MalformedInput, op, err)
		}
		return tracing.TransformLocation(ld)
	default:
		return nil, errs.Newf(errs.MalformedInput, op, "unsupported data type %q", m.DataType)
	}
}

// LoadSignalData reads m's plain or per-device game signal trace
// through fs.
func LoadSignalData(fs fsutil.FileSystem, m *parse.Manifest) (*tracing.SignalData, error) {
	if m.SceneType == "plain" {
		f, err := fs.Open(m.Plain.DataFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parse.ParseSignalData(f)
	}

	p := parse.NewGameSignalParser()
	for _, target := range m.Targets {
		f, err := fs.Open(m.ScanFilePath(target))
		if err != nil {
			return nil, err
		}
		err = p.Parse(target, f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return p.Take(), nil
}

// LoadLocationData reads m's shared location trace through fs.
func LoadLocationData(fs fsutil.FileSystem, m *parse.Manifest) (*tracing.LocationData, error) {
	path := m.Plain.DataFile
	if m.SceneType == "game" {
		path = m.Game.LocationFile
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse.ParseLocationData(f)
}

// LoadGroundTruth reads m's scripted or per-device follow-event ground
// truth through fs, following mp::produce_ground_truth's plain/game
// dispatch.
func LoadGroundTruth(fs fsutil.FileSystem, m *parse.Manifest) (*groundtruth.Data, error) {
	const op = "scene.LoadGroundTruth"

	switch m.SceneType {
	case "plain":
		if m.Plain.GroundTruthFile == "" {
			return groundtruth.New(), nil
		}
		f, err := fs.Open(m.Plain.GroundTruthFile)
		if err != nil {
			return nil, errs.New(errs.MalformedInput, op, err)
		}
		defer f.Close()
		return parse.ParseGroundTruthData(f)
	case "game":
		p, err := parse.NewGameGroundTruthParser(m.Game.Evaders, m.Start, m.End)
		if err != nil {
			return nil, err
		}
		for _, target := range m.Targets {
			f, err := fs.Open(m.FollowEventFilePath(target))
			if err != nil {
				return nil, errs.New(errs.MalformedInput, op, err)
			}
			err = p.Parse(target, f)
			f.Close()
			if err != nil {
				return nil, err
			}
		}
		return p.Take(), nil
	default:
		return nil, errs.Newf(errs.MalformedInput, op, "unsupported scene type %q", m.SceneType)
	}
}
