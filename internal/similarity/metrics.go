package similarity

import "gonum.org/v1/gonum/floats"

// EuclideanDistance returns the Euclidean distance between two
// equal-length vectors, via gonum/floats.Distance with an L2 norm.
func EuclideanDistance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// ManhattanDistance1 is the one-dimensional Manhattan distance: |a-b|.
func ManhattanDistance1(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

// DTW computes the dynamic time warp cost between two equal-length
// sequences and retains the resulting cost matrix and warp path for
// inspection. An instance is reusable across calls to Run but keeps a
// mutable scratch buffer, so it is not safe for concurrent use — every
// worker in the parallel similarity driver gets its own instance.
type DTW struct {
	buffer *costMatrix
}

// NewDTW allocates a DTW scratch buffer sized for sequences of length
// aSize and bSize. Both must be positive.
func NewDTW(aSize, bSize int) *DTW {
	return &DTW{buffer: newCostMatrix(aSize, bSize)}
}

// costMatrix is a small row-major scratch buffer, kept separate from
// internal/array2d.Matrix since DTW needs only element access, not
// gonum's row/column view machinery.
type costMatrix struct {
	rows, cols int
	data       []float64
}

func newCostMatrix(rows, cols int) *costMatrix {
	return &costMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (m *costMatrix) at(i, j int) float64     { return m.data[i*m.cols+j] }
func (m *costMatrix) set(i, j int, v float64) { m.data[i*m.cols+j] = v }

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Run computes the DTW cost between a and b using dist as the
// per-element distance function, and retains the cost matrix for
// CostMatrix/WarpPath. a and b must have the lengths DTW was
// constructed with.
func (d *DTW) Run(a, b []float64, dist func(a, b float64) float64) float64 {
	n, m := len(a), len(b)
	buf := d.buffer

	buf.set(0, 0, dist(a[0], b[0]))
	for i := 1; i < n; i++ {
		buf.set(i, 0, dist(a[i], b[0])+buf.at(i-1, 0))
	}
	for j := 1; j < m; j++ {
		buf.set(0, j, dist(a[0], b[j])+buf.at(0, j-1))
	}
	for i := 1; i < n; i++ {
		for j := 1; j < m; j++ {
			buf.set(i, j, dist(a[i], b[j])+min3(buf.at(i-1, j), buf.at(i, j-1), buf.at(i-1, j-1)))
		}
	}
	return buf.at(n-1, m-1)
}

// RunVector computes the DTW cost between two sequences of
// n-dimensional vectors, using dist as the per-step distance function
// over whole vectors (e.g. EuclideanDistance). a and b must have the
// lengths DTW was constructed with.
func (d *DTW) RunVector(a, b [][]float64, dist func(a, b []float64) float64) float64 {
	n, m := len(a), len(b)
	buf := d.buffer

	buf.set(0, 0, dist(a[0], b[0]))
	for i := 1; i < n; i++ {
		buf.set(i, 0, dist(a[i], b[0])+buf.at(i-1, 0))
	}
	for j := 1; j < m; j++ {
		buf.set(0, j, dist(a[0], b[j])+buf.at(0, j-1))
	}
	for i := 1; i < n; i++ {
		for j := 1; j < m; j++ {
			buf.set(i, j, dist(a[i], b[j])+min3(buf.at(i-1, j), buf.at(i, j-1), buf.at(i-1, j-1)))
		}
	}
	return buf.at(n-1, m-1)
}

// CostMatrix returns the cost matrix of the last Run/RunVector call,
// as rows of length Cols().
func (d *DTW) CostMatrix() [][]float64 {
	out := make([][]float64, d.buffer.rows)
	for i := range out {
		out[i] = append([]float64(nil), d.buffer.data[i*d.buffer.cols:(i+1)*d.buffer.cols]...)
	}
	return out
}

// WarpPath backtracks the warp path of the last Run/RunVector call,
// from (0,0) to (rows-1,cols-1), preferring the diagonal step over
// left over up whenever costs tie.
func (d *DTW) WarpPath() [][2]int {
	buf := d.buffer
	i, j := buf.rows-1, buf.cols-1

	path := make([][2]int, 0, buf.rows+buf.cols)
	path = append(path, [2]int{i, j})

	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			cost := min3(buf.at(i-1, j), buf.at(i, j-1), buf.at(i-1, j-1))
			switch {
			case cost == buf.at(i-1, j-1):
				i--
				j--
			case cost == buf.at(i, j-1):
				j--
			default:
				i--
			}
		}
		path = append(path, [2]int{i, j})
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}
