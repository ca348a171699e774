// Command detect-followers runs a trained classifier over a
// similarity-feature artifact, producing a following-relation artifact
// for every co-moving pair detected at every timestamp, following
// mp::detect_followers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/comove/tracepair/internal/artifact"
	"github.com/comove/tracepair/internal/classifier"
	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/following"
	"github.com/comove/tracepair/internal/similarity"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/version"
)

var (
	similarityIn = flag.String("similarity-in", "", "path to the similarity-feature artifact (required)")
	classifierIn = flag.String("classifier-in", "", "path to the trained classifier artifact (required)")
	followingOut = flag.String("following-out", "", "path to write the following-relation artifact (required)")
	binaryFormat = flag.Bool("binary", false, "read/write artifacts in the portable binary framing instead of JSON")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("detect-followers v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *similarityIn == "" || *classifierIn == "" || *followingOut == "" {
		log.Fatalf("detect-followers: -similarity-in, -classifier-in and -following-out are required")
	}

	sim, err := readSimilarity(*similarityIn, *binaryFormat)
	if err != nil {
		log.Fatalf("detect-followers: reading similarity artifact: %v", err)
	}
	c, params, err := readClassifier(*classifierIn, *binaryFormat)
	if err != nil {
		log.Fatalf("detect-followers: reading classifier artifact: %v", err)
	}
	if !params.Equal(sim.Parameters) {
		log.Fatalf("detect-followers: classifier was trained with parameters %+v, similarity artifact has %+v (%s)",
			params, sim.Parameters, errs.ParameterMismatch)
	}

	fd, err := following.Classify(c, sim)
	if err != nil {
		log.Fatalf("detect-followers: %v", err)
	}

	var detected int
	for _, ts := range fd.Timestamps {
		detected += len(ts.CoMoving)
	}
	telemetry.Opsf("detected %d co-moving relations across %d timestamps", detected, fd.Duration)

	if err := writeFollowing(*followingOut, fd, *binaryFormat); err != nil {
		log.Fatalf("detect-followers: writing following artifact: %v", err)
	}
}

func readSimilarity(path string, binary bool) (*similarity.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if binary {
		return artifact.ReadSimilarityDataBinary(f)
	}
	return artifact.ReadSimilarityDataJSON(f)
}

func readClassifier(path string, binary bool) (*classifier.Classifier, config.FeatureParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, config.FeatureParameters{}, err
	}
	defer f.Close()
	if binary {
		return artifact.ReadClassifierBinary(f)
	}
	return artifact.ReadClassifierJSON(f)
}

func writeFollowing(path string, fd *following.Data, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if binary {
		return artifact.WriteFollowingDataBinary(f, fd)
	}
	return artifact.WriteFollowingDataJSON(f, fd)
}
