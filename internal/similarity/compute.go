package similarity

import (
	"sync"

	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/tracing"
)

func newKernel(algorithm string, dataDimension, windowSize int) (kernel, error) {
	switch algorithm {
	case "euclid":
		return newEuclidKernel(dataDimension, windowSize), nil
	case "dtw":
		return newDTWKernel(dataDimension, windowSize), nil
	case "multi-dtw":
		return newMultiDTWKernel(dataDimension, windowSize), nil
	default:
		return nil, errs.Newf(errs.InvalidParameters, "similarity.Compute", "unknown algorithm %q", algorithm)
	}
}

// Compute builds similarity feature vectors for every pair in pairs
// and every timestamp in [settings.BeginTimestamp, settings.EndTimestamp],
// using the algorithm named in settings.FeatureParameters.Algorithm.
// Work is partitioned across settings.Threads goroutines in
// contiguous, equally-sized blocks; the final (possibly larger) block
// runs on the calling goroutine, mirroring the teacher's thread-pool
// style of keeping the caller productive instead of idle.
func Compute(td *tracing.Data, pairs [][2]int, settings Settings) (*Data, error) {
	const op = "similarity.Compute"

	if err := validate(td, settings); err != nil {
		return nil, err
	}

	numPairs := len(pairs)
	featureDimension := settings.TimeLag*2 + 1
	duration := settings.EndTimestamp - settings.BeginTimestamp + 1

	result := &Data{
		Parameters:       settings.FeatureParameters,
		BeginTimestamp:   settings.BeginTimestamp,
		EndTimestamp:     settings.EndTimestamp,
		Duration:         duration,
		FeatureDimension: featureDimension,
		Devices:          make([]string, len(td.Devices)),
		Pairs:            make([]Pair, numPairs),
	}
	for i, dev := range td.Devices {
		result.Devices[i] = dev.Name
	}
	for i, p := range pairs {
		result.Pairs[i] = Pair{
			Left:     p[0],
			Right:    p[1],
			Features: array2d.New(int(duration), featureDimension),
		}
	}

	if numPairs == 0 {
		return result, nil
	}

	threadsUsed := settings.Threads
	if threadsUsed > numPairs {
		threadsUsed = numPairs
	}
	if threadsUsed < 1 {
		threadsUsed = 1
	}

	telemetry.Diagf("similarity: computing %d pairs with %q over [%d,%d] using %d workers",
		numPairs, settings.Algorithm, settings.BeginTimestamp, settings.EndTimestamp, threadsUsed)

	compute := func(offset, end int) error {
		k, err := newKernel(settings.Algorithm, td.DataDimension, settings.WindowSize)
		if err != nil {
			return err
		}
		for i := offset; i < end; i++ {
			pair := &result.Pairs[i]
			left := &td.Devices[pair.Left]
			right := &td.Devices[pair.Right]
			computePair(td, settings, k, left, right, result, pair)
		}
		return nil
	}

	if threadsUsed == 1 {
		return result, compute(0, numPairs)
	}

	chunkSize := numPairs / threadsUsed
	var wg sync.WaitGroup
	errCh := make(chan error, threadsUsed-1)

	offset := 0
	for i := 0; i < threadsUsed-1; i++ {
		end := offset + chunkSize
		wg.Add(1)
		go func(offset, end int) {
			defer wg.Done()
			if err := compute(offset, end); err != nil {
				errCh <- err
			}
		}(offset, end)
		offset = end
	}

	// The calling goroutine computes the last (remainder) block.
	lastErr := compute(offset, numPairs)

	wg.Wait()
	close(errCh)
	if lastErr != nil {
		return nil, lastErr
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func computePair(td *tracing.Data, settings Settings, k kernel, left, right *tracing.Device, result *Data, pair *Pair) {
	for ts := settings.BeginTimestamp; ts <= settings.EndTimestamp; ts++ {
		row := result.FeatureAt(pair, ts)
		i := 0
		for lag := -settings.TimeLag; lag <= settings.TimeLag; lag++ {
			row[i] = k.similarity(td, ts, lag, left, right)
			i++
		}
	}
}

func validate(td *tracing.Data, settings Settings) error {
	const op = "similarity.Compute"

	if settings.TimeLag < 0 {
		return errs.New(errs.InvalidParameters, op, errRequire("time lag must be >= 0"))
	}
	if settings.WindowSize <= 0 {
		return errs.New(errs.InvalidParameters, op, errRequire("window size must be > 0"))
	}
	if settings.Threads <= 0 {
		return errs.New(errs.InvalidParameters, op, errRequire("thread count must be > 0"))
	}
	if td.Duration < int64(settings.WindowSize+settings.TimeLag) {
		return errs.New(errs.InvalidParameters, op, errRequire("must at least provide time lag + window size measurements"))
	}
	if settings.BeginTimestamp < td.MinTimestamp {
		return errs.New(errs.RangeError, op, errRequire("begin timestamp must be in range of source data"))
	}
	if settings.EndTimestamp < settings.BeginTimestamp {
		return errs.New(errs.RangeError, op, errRequire("end timestamp must be >= begin timestamp"))
	}
	if settings.EndTimestamp > td.MaxTimestamp {
		return errs.New(errs.RangeError, op, errRequire("end timestamp must be in range of source data"))
	}
	return nil
}

type errRequire string

func (e errRequire) Error() string { return string(e) }
