package classifier

import "gonum.org/v1/gonum/stat"

// normalizer rescales feature vectors to zero mean and unit variance
// per dimension, fit once on the training set and reused for every
// later classification. Mirrors dlib::vector_normalizer, which the
// original reference trains before handing samples to its SVM solver.
type normalizer struct {
	mean []float64
	std  []float64
}

// fitNormalizer computes the per-dimension mean/stddev of samples,
// which are expected to all have the same length.
func fitNormalizer(samples [][]float64) *normalizer {
	dim := len(samples[0])
	mean := make([]float64, dim)
	std := make([]float64, dim)

	column := make([]float64, len(samples))
	for c := 0; c < dim; c++ {
		for i, s := range samples {
			column[i] = s[c]
		}
		m, sd := stat.MeanStdDev(column, nil)
		mean[c] = m
		// A constant column has zero variance; normalizing by it would
		// divide by zero, so it is left unscaled.
		if sd == 0 {
			sd = 1
		}
		std[c] = sd
	}
	return &normalizer{mean: mean, std: std}
}

// apply returns a new normalized vector; it does not mutate sample.
func (n *normalizer) apply(sample []float64) []float64 {
	out := make([]float64, len(sample))
	for i, v := range sample {
		out[i] = (v - n.mean[i]) / n.std[i]
	}
	return out
}

// applyInto normalizes sample into dst, avoiding an allocation on
// the classification hot path.
func (n *normalizer) applyInto(dst, sample []float64) {
	for i, v := range sample {
		dst[i] = (v - n.mean[i]) / n.std[i]
	}
}
