package similarity

import "github.com/comove/tracepair/internal/tracing"

// kernel computes the similarity value of two devices at a fixed
// timestamp and lag. Each parallel worker in compute.go gets its own
// kernel instance, since a DTW-backed kernel carries a mutable scratch
// buffer and is not safe to share.
type kernel interface {
	similarity(td *tracing.Data, ts int64, lag int, left, right *tracing.Device) float64
}

func timestampBounds(min, max, v int64) int64 {
	switch {
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}

// timestampRangeBounds additionally ensures the whole window
// [v, v+length) fits inside [min, max].
func timestampRangeBounds(min, max, v, length int64) int64 {
	switch {
	case v < min:
		return min
	case v+length-1 > max:
		return max - length + 1
	default:
		return v
	}
}

// euclidKernel computes similarity as the mean per-step Euclidean
// distance over a sliding window, clamping each individual sample
// access to the valid timestamp range rather than clamping the window
// as a whole.
type euclidKernel struct {
	windowSize     int
	halfWindowSize int
	leftBuf        []float64
	rightBuf       []float64
}

func newEuclidKernel(dataDimension, windowSize int) *euclidKernel {
	return &euclidKernel{
		windowSize:     windowSize,
		halfWindowSize: windowSize / 2,
		leftBuf:        make([]float64, dataDimension),
		rightBuf:       make([]float64, dataDimension),
	}
}

func (k *euclidKernel) similarity(td *tracing.Data, ts int64, lag int, left, right *tracing.Device) float64 {
	bounds := func(i int64) int64 { return timestampBounds(td.MinTimestamp, td.MaxTimestamp, i) }

	leftHasData := td.HasDataAt(left, ts)
	rightHasData := td.HasDataAt(right, bounds(ts+int64(lag)))

	result := 0.0
	leftTS := ts - int64(k.halfWindowSize)
	rightTS := leftTS + int64(lag)
	dim := td.DataDimension

	for j := 0; j < k.windowSize; j++ {
		leftData := td.RowAt(left, bounds(leftTS))
		rightData := td.RowAt(right, bounds(rightTS))

		n := 0
		for c := 0; c < dim; c++ {
			if leftHasData[c] != 0 || rightHasData[c] != 0 {
				k.leftBuf[n] = leftData[c]
				k.rightBuf[n] = rightData[c]
				n++
			}
		}
		result += EuclideanDistance(k.leftBuf[:n], k.rightBuf[:n])

		leftTS++
		rightTS++
	}
	return result / float64(k.windowSize)
}

// dtwKernel computes a per-dimension DTW distance, averaged over the
// dimensions that have any observed data, clamping the whole sliding
// window to the valid timestamp range once at the start.
type dtwKernel struct {
	windowSize     int
	halfWindowSize int
	dataDimension  int
	normFactor     float64
	dtw            *DTW
	leftBuf        []float64
	rightBuf       []float64
}

func newDTWKernel(dataDimension, windowSize int) *dtwKernel {
	return &dtwKernel{
		windowSize:     windowSize,
		halfWindowSize: windowSize / 2,
		dataDimension:  dataDimension,
		normFactor:     1 / (2.0 * float64(windowSize)),
		dtw:            NewDTW(windowSize, windowSize),
		leftBuf:        make([]float64, windowSize),
		rightBuf:       make([]float64, windowSize),
	}
}

func (k *dtwKernel) similarity(td *tracing.Data, ts int64, lag int, left, right *tracing.Device) float64 {
	bounds := func(i int64) int64 { return timestampBounds(td.MinTimestamp, td.MaxTimestamp, i) }
	rangeBounds := func(i int64) int64 {
		return timestampRangeBounds(td.MinTimestamp, td.MaxTimestamp, i, int64(k.windowSize))
	}

	leftHasData := td.HasDataAt(left, ts)
	rightHasData := td.HasDataAt(right, bounds(ts+int64(lag)))

	leftTS := rangeBounds(ts - int64(k.halfWindowSize))
	rightTS := rangeBounds(ts - int64(k.halfWindowSize) + int64(lag))

	n := 0
	result := 0.0
	for col := 0; col < k.dataDimension; col++ {
		if leftHasData[col] == 0 && rightHasData[col] == 0 {
			continue
		}
		for j := 0; j < k.windowSize; j++ {
			k.leftBuf[j] = td.RowAt(left, leftTS+int64(j))[col]
			k.rightBuf[j] = td.RowAt(right, rightTS+int64(j))[col]
		}
		result += k.dtw.Run(k.leftBuf, k.rightBuf, ManhattanDistance1)
		n++
	}
	if n == 0 {
		return 0
	}
	return result * k.normFactor / float64(n)
}

// multiDTWKernel computes a single multi-dimensional DTW distance over
// the union of columns with observed data at either device, treating
// each row of the window as one n-dimensional measurement vector.
type multiDTWKernel struct {
	windowSize     int
	halfWindowSize int
	dataDimension  int
	normFactor     float64
	dtw            *DTW
	leftBuf        [][]float64
	rightBuf       [][]float64
}

func newMultiDTWKernel(dataDimension, windowSize int) *multiDTWKernel {
	leftBuf := make([][]float64, windowSize)
	rightBuf := make([][]float64, windowSize)
	for i := range leftBuf {
		leftBuf[i] = make([]float64, dataDimension)
		rightBuf[i] = make([]float64, dataDimension)
	}
	return &multiDTWKernel{
		windowSize:     windowSize,
		halfWindowSize: windowSize / 2,
		dataDimension:  dataDimension,
		normFactor:     1.0 / (2 * float64(windowSize)),
		dtw:            NewDTW(windowSize, windowSize),
		leftBuf:        leftBuf,
		rightBuf:       rightBuf,
	}
}

func (k *multiDTWKernel) similarity(td *tracing.Data, ts int64, lag int, left, right *tracing.Device) float64 {
	bounds := func(i int64) int64 { return timestampBounds(td.MinTimestamp, td.MaxTimestamp, i) }
	rangeBounds := func(i int64) int64 {
		return timestampRangeBounds(td.MinTimestamp, td.MaxTimestamp, i, int64(k.windowSize))
	}

	leftHasData := td.HasDataAt(left, ts)
	rightHasData := td.HasDataAt(right, bounds(ts+int64(lag)))

	leftTS := rangeBounds(ts - int64(k.halfWindowSize))
	rightTS := rangeBounds(ts - int64(k.halfWindowSize) + int64(lag))

	n := 0
	for col := 0; col < k.dataDimension; col++ {
		if leftHasData[col] == 0 && rightHasData[col] == 0 {
			continue
		}
		for j := 0; j < k.windowSize; j++ {
			k.leftBuf[j][n] = td.RowAt(left, leftTS+int64(j))[col]
			k.rightBuf[j][n] = td.RowAt(right, rightTS+int64(j))[col]
		}
		n++
	}

	if n == 0 {
		return 0
	}
	cost := k.dtw.RunVector(sliceCols(k.leftBuf, n), sliceCols(k.rightBuf, n), EuclideanDistance)
	return k.normFactor * cost
}

func sliceCols(rows [][]float64, n int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = r[:n]
	}
	return out
}
