package parse

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/security"
)

// PlainSceneData locates a single data file (and optional ground truth
// file) for a "plain" scene.
type PlainSceneData struct {
	DataFile        string `json:"data_file"`
	GroundTruthFile string `json:"ground_truth_file,omitempty"`
}

// GameSceneData locates a folder of per-device scan/follow-event files
// for a "game" scene, the evader id assigned to each target device,
// and an optional shared location file.
type GameSceneData struct {
	Folder       string         `json:"folder"`
	Evaders      map[string]int `json:"evaders"`
	LocationFile string         `json:"location_file,omitempty"`
}

// Manifest describes one recorded scene: its data source, the devices
// of interest, and the time range to process, following
// mp::scene_manifest.
type Manifest struct {
	Name      string `json:"name"`
	SceneType string `json:"scene_type"` // "plain" or "game"
	DataType  string `json:"data_type"`  // "signal" or "location"
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Targets   []string `json:"targets"`

	Plain *PlainSceneData `json:"-"`
	Game  *GameSceneData  `json:"-"`
}

type manifestJSON struct {
	Name      string          `json:"name"`
	SceneType string          `json:"scene_type"`
	DataType  string          `json:"data_type"`
	Start     int64           `json:"start"`
	End       int64           `json:"end"`
	Targets   []string        `json:"targets"`
	Data      json.RawMessage `json:"data"`
}

// LoadManifest reads and validates a scene manifest from r, then
// resolves every path its scene_type carries relative to manifestDir
// (the directory holding the manifest file), matching
// read_scene_manifest's path-fixup pass.
func LoadManifest(r io.Reader, manifestDir string) (*Manifest, error) {
	const op = "parse.LoadManifest"

	var raw manifestJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}

	m := &Manifest{
		Name:      raw.Name,
		SceneType: raw.SceneType,
		DataType:  raw.DataType,
		Start:     raw.Start,
		End:       raw.End,
		Targets:   raw.Targets,
	}

	var err error
	switch m.SceneType {
	case "plain":
		var d PlainSceneData
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &d); err != nil {
				return nil, errs.New(errs.MalformedInput, op, err)
			}
		}
		if d.DataFile, err = resolveRelative(manifestDir, d.DataFile); err != nil {
			return nil, errs.New(errs.MalformedInput, op, err)
		}
		if d.GroundTruthFile != "" {
			if d.GroundTruthFile, err = resolveRelative(manifestDir, d.GroundTruthFile); err != nil {
				return nil, errs.New(errs.MalformedInput, op, err)
			}
		}
		m.Plain = &d
	case "game":
		var d GameSceneData
		if len(raw.Data) > 0 {
			if err := json.Unmarshal(raw.Data, &d); err != nil {
				return nil, errs.New(errs.MalformedInput, op, err)
			}
		}
		if d.Folder, err = resolveRelative(manifestDir, d.Folder); err != nil {
			return nil, errs.New(errs.MalformedInput, op, err)
		}
		if d.LocationFile != "" {
			if d.LocationFile, err = resolveRelative(manifestDir, d.LocationFile); err != nil {
				return nil, errs.New(errs.MalformedInput, op, err)
			}
		}
		m.Game = &d
	default:
		return nil, errs.Newf(errs.MalformedInput, op, "unsupported scene_type %q", m.SceneType)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadManifestFile reads a manifest from path, resolving relative
// paths against path's own directory.
func LoadManifestFile(path string) (*Manifest, error) {
	const op = "parse.LoadManifestFile"
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}
	defer f.Close()
	return LoadManifest(f, filepath.Dir(path))
}

// resolveRelative joins a manifest-relative path against dir, rejecting
// any path that would escape dir (a scene manifest may come from an
// untrusted recording, so "../../etc/passwd" in a data_file field must
// not resolve outside the manifest's own directory). Absolute paths
// are returned unchanged, matching read_scene_manifest.
func resolveRelative(dir, path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	joined := filepath.Join(dir, path)
	if err := security.ValidatePathWithinDirectory(joined, dir); err != nil {
		return "", err
	}
	return joined, nil
}

// Validate checks the structural invariants scene_manifest::validate
// enforces, beyond what JSON decoding already guarantees.
func (m *Manifest) Validate() error {
	const op = "parse.Manifest.Validate"

	if m.Name == "" {
		return errs.New(errs.MalformedInput, op, errNamed("scene name is empty"))
	}
	if m.Start < 0 {
		return errs.Newf(errs.MalformedInput, op, "invalid start time: %d", m.Start)
	}
	if m.End < m.Start {
		return errs.Newf(errs.MalformedInput, op, "invalid end time: %d", m.End)
	}
	if m.DataType != "signal" && m.DataType != "location" {
		return errs.Newf(errs.MalformedInput, op, "unsupported data type: %q", m.DataType)
	}
	if len(m.Targets) == 0 {
		return errs.New(errs.MalformedInput, op, errNamed("no targets specified"))
	}

	switch m.SceneType {
	case "plain":
		if m.Plain == nil || m.Plain.DataFile == "" {
			return errs.New(errs.MalformedInput, op, errNamed("no data file specified"))
		}
	case "game":
		if m.Game == nil || m.Game.Folder == "" {
			return errs.New(errs.MalformedInput, op, errNamed("no folder specified"))
		}
		if len(m.Game.Evaders) == 0 {
			return errs.New(errs.MalformedInput, op, errNamed("no evaders specified"))
		}
		for name := range m.Game.Evaders {
			if !containsTarget(m.Targets, name) {
				return errs.Newf(errs.MalformedInput, op, "evader is not in targets: %q", name)
			}
		}
		if m.DataType == "location" && m.Game.LocationFile == "" {
			return errs.New(errs.MalformedInput, op, errNamed("no location file specified"))
		}
	default:
		return errs.Newf(errs.MalformedInput, op, "unsupported scene type: %q", m.SceneType)
	}
	return nil
}

func containsTarget(targets []string, name string) bool {
	for _, t := range targets {
		if t == name {
			return true
		}
	}
	return false
}

// ScanFilePath returns the path to target's scan-result file within a
// game scene's folder.
func (m *Manifest) ScanFilePath(target string) string {
	return filepath.Join(m.Game.Folder, target+".scanresult.csv")
}

// FollowEventFilePath returns the path to target's follow-event file
// within a game scene's folder.
func (m *Manifest) FollowEventFilePath(target string) string {
	return filepath.Join(m.Game.Folder, target+".followevent.csv")
}

type namedError string

func (e namedError) Error() string { return string(e) }

func errNamed(msg string) error { return namedError(msg) }
