// Command produce-features reads a scene manifest, parses its signal
// or location traces, and computes a similarity-feature artifact over
// every device pair and timestamp in the scene, following
// mp::produce_features.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/comove/tracepair/internal/artifact"
	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/fsutil"
	"github.com/comove/tracepair/internal/parse"
	"github.com/comove/tracepair/internal/scene"
	"github.com/comove/tracepair/internal/similarity"
	"github.com/comove/tracepair/internal/store"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/tracing"
	"github.com/comove/tracepair/internal/version"
)

var diskFS fsutil.FileSystem = fsutil.OSFileSystem{}

var (
	manifestPath  = flag.String("manifest", "", "path to scene manifest JSON (required)")
	configPath    = flag.String("config", config.DefaultConfigPath, "path to run configuration JSON")
	tracingOut    = flag.String("tracing-out", "", "path to write the intermediate tracing-data artifact (optional)")
	similarityOut = flag.String("similarity-out", "", "path to write the similarity-feature artifact (required)")
	binaryFormat  = flag.Bool("binary", false, "write artifacts in the portable binary framing instead of JSON")
	cachePath     = flag.String("cache", "", "path to a sqlite run/artifact cache (optional); records this run's artifacts under a fresh run id")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("produce-features v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *manifestPath == "" || *similarityOut == "" {
		log.Fatalf("produce-features: -manifest and -similarity-out are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("produce-features: loading config: %v", err)
	}

	m, err := parse.LoadManifestFile(*manifestPath)
	if err != nil {
		log.Fatalf("produce-features: loading manifest: %v", err)
	}
	telemetry.Diagf("loaded manifest %q: scene_type=%s data_type=%s targets=%d", m.Name, m.SceneType, m.DataType, len(m.Targets))

	var cache *store.Store
	var runID string
	if *cachePath != "" {
		cache, err = store.Open(*cachePath)
		if err != nil {
			log.Fatalf("produce-features: opening cache: %v", err)
		}
		defer cache.Close()
		runID, err = cache.CreateRun(cfg)
		if err != nil {
			log.Fatalf("produce-features: creating cache run: %v", err)
		}
		telemetry.Opsf("caching this run's artifacts under run id %s", runID)
	}

	td, err := buildTracingData(m, cfg)
	if err != nil {
		log.Fatalf("produce-features: building tracing data: %v", err)
	}
	telemetry.Diagf("tracing data: %d devices, duration=%d", len(td.Devices), td.Duration)

	if *tracingOut != "" {
		if err := writeTracingArtifact(*tracingOut, td, *cfg.Features, *binaryFormat); err != nil {
			log.Fatalf("produce-features: writing tracing artifact: %v", err)
		}
	}
	if cache != nil {
		if err := cacheTracingArtifact(cache, runID, td, *cfg.Features, *binaryFormat); err != nil {
			log.Fatalf("produce-features: caching tracing artifact: %v", err)
		}
	}

	pairs := uniquePairs(len(td.Devices))
	settings := similarity.Settings{
		FeatureParameters: *cfg.Features,
		Threads:           *cfg.Threads,
		BeginTimestamp:    td.MinTimestamp,
		EndTimestamp:      td.MaxTimestamp,
	}
	sim, err := similarity.Compute(td, pairs, settings)
	if err != nil {
		log.Fatalf("produce-features: computing similarity: %v", err)
	}
	telemetry.Opsf("computed similarity features for %d pairs over %d timestamps", len(sim.Pairs), sim.Duration)

	if err := writeSimilarityArtifact(*similarityOut, sim, *binaryFormat); err != nil {
		log.Fatalf("produce-features: writing similarity artifact: %v", err)
	}
	if cache != nil {
		if err := cacheSimilarityArtifact(cache, runID, sim, *cfg.Features, *binaryFormat); err != nil {
			log.Fatalf("produce-features: caching similarity artifact: %v", err)
		}
	}
}

func uniquePairs(numDevices int) [][2]int {
	var pairs [][2]int
	for i := 0; i < numDevices; i++ {
		for j := i + 1; j < numDevices; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

func buildTracingData(m *parse.Manifest, cfg *config.RunConfig) (*tracing.Data, error) {
	switch m.DataType {
	case "signal":
		sd, err := scene.LoadSignalData(diskFS, m)
		if err != nil {
			return nil, err
		}
		bad := tracing.BadAccessPoints(sd, *cfg.BadAPThreshold)
		if len(bad) > 0 {
			telemetry.Opsf("dropping %d bad access points below average signal %.1f", len(bad), *cfg.BadAPThreshold)
			tracing.RemoveAccessPoints(sd, bad)
		}
		td, err := tracing.TransformSignal(sd, *cfg.DefaultSignalStrength)
		if err != nil {
			return nil, err
		}
		if *cfg.SmoothingWindow > 1 {
			if err := tracing.MovingAverage(td, *cfg.SmoothingWindow); err != nil {
				return nil, err
			}
		}
		return td, nil
	case "location":
		ld, err := scene.LoadLocationData(diskFS, m)
		if err != nil {
			return nil, err
		}
		return tracing.TransformLocation(ld)
	default:
		log.Fatalf("produce-features: unsupported data type %q", m.DataType)
		return nil, nil
	}
}

func writeTracingArtifact(path string, td *tracing.Data, params config.FeatureParameters, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if binary {
		return artifact.WriteTracingDataBinary(f, td, params)
	}
	return artifact.WriteTracingDataJSON(f, td, params)
}

func writeSimilarityArtifact(path string, sim *similarity.Data, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if binary {
		return artifact.WriteSimilarityDataBinary(f, sim)
	}
	return artifact.WriteSimilarityDataJSON(f, sim)
}

func artifactFormat(binary bool) string {
	if binary {
		return "binary"
	}
	return "json"
}

func cacheTracingArtifact(cache *store.Store, runID string, td *tracing.Data, params config.FeatureParameters, binary bool) error {
	return cache.SaveArtifact(runID, "tracing", artifactFormat(binary), params, func(buf *bytes.Buffer) error {
		if binary {
			return artifact.WriteTracingDataBinary(buf, td, params)
		}
		return artifact.WriteTracingDataJSON(buf, td, params)
	})
}

func cacheSimilarityArtifact(cache *store.Store, runID string, sim *similarity.Data, params config.FeatureParameters, binary bool) error {
	return cache.SaveArtifact(runID, "similarity", artifactFormat(binary), params, func(buf *bytes.Buffer) error {
		if binary {
			return artifact.WriteSimilarityDataBinary(buf, sim)
		}
		return artifact.WriteSimilarityDataJSON(buf, sim)
	})
}
