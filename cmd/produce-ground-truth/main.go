// Command produce-ground-truth reads the ground truth recorded for a
// scene manifest -- a scripted FOLLOWER script for a plain scene, or
// per-device follow-event logs for a game scene -- and writes it as a
// ground-truth artifact for train-classifier and evaluation tooling,
// following mp::produce_ground_truth.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/comove/tracepair/internal/artifact"
	"github.com/comove/tracepair/internal/fsutil"
	"github.com/comove/tracepair/internal/groundtruth"
	"github.com/comove/tracepair/internal/parse"
	"github.com/comove/tracepair/internal/scene"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/version"
)

var diskFS fsutil.FileSystem = fsutil.OSFileSystem{}

var (
	manifestPath   = flag.String("manifest", "", "path to scene manifest JSON (required)")
	groundTruthOut = flag.String("ground-truth-out", "", "path to write the ground-truth artifact (required)")
	binaryFormat   = flag.Bool("binary", false, "write the artifact in the portable binary framing instead of JSON")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("produce-ground-truth v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *manifestPath == "" || *groundTruthOut == "" {
		log.Fatalf("produce-ground-truth: -manifest and -ground-truth-out are required")
	}

	m, err := parse.LoadManifestFile(*manifestPath)
	if err != nil {
		log.Fatalf("produce-ground-truth: loading manifest: %v", err)
	}

	gt, err := buildGroundTruth(m)
	if err != nil {
		log.Fatalf("produce-ground-truth: %v", err)
	}
	telemetry.Opsf("produced ground truth for %d labelled timestamps", len(gt.Timestamps))

	if err := writeGroundTruth(*groundTruthOut, gt, *binaryFormat); err != nil {
		log.Fatalf("produce-ground-truth: writing artifact: %v", err)
	}
}

func buildGroundTruth(m *parse.Manifest) (*groundtruth.Data, error) {
	return scene.LoadGroundTruth(diskFS, m)
}

func writeGroundTruth(path string, gt *groundtruth.Data, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if binary {
		return artifact.WriteGroundTruthBinary(f, gt)
	}
	return artifact.WriteGroundTruthJSON(f, gt)
}
