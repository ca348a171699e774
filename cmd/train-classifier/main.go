// Command train-classifier trains a co-moving classifier against a
// similarity-feature artifact and its labelled ground truth, writing
// the trained classifier's weights alongside the parameters it was
// trained with, following mp::train_classifier.
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
	"github.com/comove/tracepair/internal/groundtruth"
	"github.com/comove/tracepair/internal/similarity"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/version"
)

var (
	similarityIn  = flag.String("similarity-in", "", "path to the similarity-feature artifact (required)")
	groundTruthIn = flag.String("ground-truth-in", "", "path to the ground-truth artifact (required)")
	classifierOut = flag.String("classifier-out", "", "path to write the trained classifier (required)")
	crossValidate = flag.Bool("cross-validate", false, "log a cross-validation accuracy sweep before training the final model")
	binaryFormat  = flag.Bool("binary", false, "read/write artifacts in the portable binary framing instead of JSON")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("train-classifier v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *similarityIn == "" || *groundTruthIn == "" || *classifierOut == "" {
		log.Fatalf("train-classifier: -similarity-in, -ground-truth-in and -classifier-out are required")
	}

	sim, err := readSimilarity(*similarityIn, *binaryFormat)
	if err != nil {
		log.Fatalf("train-classifier: reading similarity artifact: %v", err)
	}
	gt, err := readGroundTruth(*groundTruthIn, *binaryFormat)
	if err != nil {
		log.Fatalf("train-classifier: reading ground truth artifact: %v", err)
	}

	if *crossValidate {
		for _, r := range classifier.CrossValidate(sim, gt) {
			telemetry.Diagf("cross-validate C=%.3f: pos_accuracy=%.3f neg_accuracy=%.3f", r.C, r.PositiveAccuracy, r.NegativeAccuracy)
		}
	}

	c := classifier.New()
	if err := c.Learn(sim, gt); err != nil {
		if kind, ok := errs.Of(err); ok && kind == errs.EmptyInput {
			log.Fatalf("train-classifier: no labelled samples found in ground truth for this similarity artifact")
		}
		log.Fatalf("train-classifier: %v", err)
	}
	telemetry.Opsf("trained classifier against %d pairs", len(sim.Pairs))

	if err := writeClassifier(*classifierOut, c, sim.Parameters, *binaryFormat); err != nil {
		log.Fatalf("train-classifier: writing classifier: %v", err)
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

func readGroundTruth(path string, binary bool) (*groundtruth.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if binary {
		return artifact.ReadGroundTruthBinary(f)
	}
	return artifact.ReadGroundTruthJSON(f)
}

func writeClassifier(path string, c *classifier.Classifier, params config.FeatureParameters, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if binary {
		return artifact.WriteClassifierBinary(f, c, params)
	}
	return artifact.WriteClassifierJSON(f, c, params)
}
