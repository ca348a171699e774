// Package classifier implements the co-moving/not-co-moving decision
// boundary over similarity feature vectors: a linear soft-margin SVM,
// trained against labelled ground truth, following
// mp::co_moving_classifier.
package classifier

import (
	"math/rand"

	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/groundtruth"
	"github.com/comove/tracepair/internal/similarity"
	"github.com/comove/tracepair/internal/telemetry"
)

// version bumps whenever the serialized layout changes.
const version = 3

// defaultC is the regularization strength used by Learn, matching the
// fixed C=1 the original reference always trains with regardless of
// the cross-validation sweep's findings.
const defaultC = 1.0

// Classifier decides whether a feature vector represents two co-moving
// devices. A zero-value Classifier is valid but untrained: CoMoving
// always returns false until Learn or Load populates it.
type Classifier struct {
	trained    bool
	dimension  int
	norm       *normalizer
	weights    []float64
	bias       float64
}

// New returns an untrained Classifier.
func New() *Classifier { return &Classifier{} }

// CoMoving reports whether feature vector a is classified as
// co-moving. a must have the same length as the classifier's training
// dimension. CoMoving always returns false on an untrained classifier.
// The decision path allocates its own scratch buffer on every call
// and does not modify the classifier.
func (c *Classifier) CoMoving(a []float64) (bool, error) {
	if !c.trained {
		return false, nil
	}
	if len(a) != c.dimension {
		return false, errs.Newf(errs.RangeError, "classifier.CoMoving",
			"feature vector has dimension %d, want %d", len(a), c.dimension)
	}
	scratch := make([]float64, c.dimension)
	c.norm.applyInto(scratch, a)
	return decide(c.weights, c.bias, scratch) >= 0, nil
}

// Learn trains the classifier on every feature vector in data labelled
// by gt, replacing any previous state. Uses C=1, matching the
// reference's fixed training regularization.
func (c *Classifier) Learn(data *similarity.Data, gt *groundtruth.Data) error {
	const op = "classifier.Learn"

	samples, labels := extractLearningData(data, gt)
	if len(samples) == 0 {
		return errs.New(errs.EmptyInput, op, nil)
	}

	shuffleSamples(samples, labels, 1)

	norm := fitNormalizer(samples)
	normalized := make([][]float64, len(samples))
	for i, s := range samples {
		normalized[i] = norm.apply(s)
	}

	weights, bias := trainLinearSVM(normalized, labels, defaultC, 1)

	c.trained = true
	c.dimension = data.FeatureDimension
	c.norm = norm
	c.weights = weights
	c.bias = bias

	telemetry.Diagf("classifier: trained on %d samples, dimension %d", len(samples), c.dimension)
	return nil
}

// CrossValidateResult reports a single regularization strength's
// 3-fold cross-validation accuracy, mirroring
// co_moving_classifier::print_cross_validation's per-C report.
type CrossValidateResult struct {
	C                      float64
	PositiveAccuracy       float64
	NegativeAccuracy       float64
}

// CrossValidate sweeps C geometrically (x5 per step, starting at 1 and
// stopping before 100000) and reports 3-fold cross-validation accuracy
// at each value, without altering the classifier's trained state. This
// is a developer diagnostic, not part of Learn's decision.
func CrossValidate(data *similarity.Data, gt *groundtruth.Data) []CrossValidateResult {
	samples, labels := extractLearningData(data, gt)
	if len(samples) == 0 {
		return nil
	}
	shuffleSamples(samples, labels, 1)

	norm := fitNormalizer(samples)
	normalized := make([][]float64, len(samples))
	for i, s := range samples {
		normalized[i] = norm.apply(s)
	}

	var results []CrossValidateResult
	for c := 1.0; c < 100000; c *= 5 {
		pos, neg := crossValidateAccuracy(normalized, labels, c, 3, 1)
		results = append(results, CrossValidateResult{C: c, PositiveAccuracy: pos, NegativeAccuracy: neg})
	}
	return results
}

// extractLearningData flattens every pair/timestamp feature vector in
// data into a (samples, labels) training set, labelling each with
// gt.CoMovingAt. Mirrors get_learning_data.
func extractLearningData(data *similarity.Data, gt *groundtruth.Data) (samples [][]float64, labels []float64) {
	for i := range data.Pairs {
		pair := &data.Pairs[i]
		leftName := data.Devices[pair.Left]
		rightName := data.Devices[pair.Right]

		for ts := data.BeginTimestamp; ts <= data.EndTimestamp; ts++ {
			feature := data.FeatureAt(pair, ts)
			sample := make([]float64, len(feature))
			copy(sample, feature)
			samples = append(samples, sample)

			if gt.CoMovingAt(ts, leftName, rightName) {
				labels = append(labels, 1.0)
			} else {
				labels = append(labels, -1.0)
			}
		}
	}
	return samples, labels
}

// shuffleSamples randomizes sample/label order in lockstep with a
// deterministic seed, mirroring dlib::randomize_samples.
func shuffleSamples(samples [][]float64, labels []float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
		labels[i], labels[j] = labels[j], labels[i]
	})
}
