package classifier

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// No Go linear-SVM trainer exists anywhere in the reference pack, so
// the soft-margin solver is hand-rolled here using Pegasos (Shalev-
// Shwartz et al.), a stochastic sub-gradient method for exactly the
// C-SVM objective dlib::svm_c_linear_trainer solves in the original
// reference. gonum/floats supplies the vector arithmetic.

const pegasosEpochs = 200

// trainLinearSVM fits a linear soft-margin SVM (weights, bias) on
// normalized samples with +-1 labels and regularization strength c,
// the same "C" parameter the original reference exposes. seed makes
// the example order deterministic across runs.
func trainLinearSVM(samples [][]float64, labels []float64, c float64, seed int64) (weights []float64, bias float64) {
	n := len(samples)
	dim := len(samples[0])
	lambda := 1.0 / (c * float64(n))

	w := make([]float64, dim)
	b := 0.0
	scratch := make([]float64, dim)

	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(n)

	t := 1
	for epoch := 0; epoch < pegasosEpochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, idx := range order {
			x := samples[idx]
			y := labels[idx]
			eta := 1.0 / (lambda * float64(t))

			margin := y * (floats.Dot(w, x) + b)

			floats.Scale(1-eta*lambda, w)
			if margin < 1 {
				copy(scratch, x)
				floats.Scale(eta*y, scratch)
				floats.Add(w, scratch)
				b += eta * y
			}
			t++
		}
	}
	return w, b
}

// decide applies the trained hyperplane to a normalized sample.
func decide(weights []float64, bias float64, sample []float64) float64 {
	return floats.Dot(weights, sample) + bias
}

// crossValidateAccuracy runs k-fold cross validation of trainLinearSVM
// at regularization strength c over normalized samples, returning the
// fraction of correctly classified positive and negative examples
// (mirroring dlib::cross_validate_trainer's two-value report).
func crossValidateAccuracy(samples [][]float64, labels []float64, c float64, folds int, seed int64) (posAccuracy, negAccuracy float64) {
	n := len(samples)
	foldOf := make([]int, n)
	for i := range foldOf {
		foldOf[i] = i % folds
	}

	var posCorrect, posTotal, negCorrect, negTotal int
	for f := 0; f < folds; f++ {
		var trainSamples [][]float64
		var trainLabels []float64
		var testIdx []int
		for i := 0; i < n; i++ {
			if foldOf[i] == f {
				testIdx = append(testIdx, i)
			} else {
				trainSamples = append(trainSamples, samples[i])
				trainLabels = append(trainLabels, labels[i])
			}
		}
		if len(trainSamples) == 0 || len(testIdx) == 0 {
			continue
		}

		w, b := trainLinearSVM(trainSamples, trainLabels, c, seed+int64(f))
		for _, i := range testIdx {
			predicted := decide(w, b, samples[i]) >= 0
			actual := labels[i] > 0
			if actual {
				posTotal++
				if predicted {
					posCorrect++
				}
			} else {
				negTotal++
				if !predicted {
					negCorrect++
				}
			}
		}
	}

	if posTotal > 0 {
		posAccuracy = float64(posCorrect) / float64(posTotal)
	}
	if negTotal > 0 {
		negAccuracy = float64(negCorrect) / float64(negTotal)
	}
	if math.IsNaN(posAccuracy) {
		posAccuracy = 0
	}
	if math.IsNaN(negAccuracy) {
		negAccuracy = 0
	}
	return posAccuracy, negAccuracy
}
