// Package array2d provides the mutable 2-D numeric arrays used throughout
// the co-moving pipeline: dense per-device/per-pair matrices with both
// contiguous row views and strided column views over the same backing
// storage.
package array2d

import "gonum.org/v1/gonum/mat"

// Matrix is a row-major, dense matrix of float64 values. It wraps
// gonum's mat.Dense, which already stores data contiguously by row and
// exposes both a contiguous row view (RawRowView) and a strided column
// view (ColView, stride == number of columns) over the same backing
// array — exactly the dual access pattern the similarity kernels need.
type Matrix struct {
	d *mat.Dense
}

// New allocates a rows x cols matrix filled with zero.
func New(rows, cols int) *Matrix {
	return &Matrix{d: mat.NewDense(rows, cols, nil)}
}

// NewFilled allocates a rows x cols matrix with every cell set to v.
func NewFilled(rows, cols int, v float64) *Matrix {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return &Matrix{d: mat.NewDense(rows, cols, data)}
}

// NewFromRowMajor wraps an existing row-major slice of length rows*cols.
// The slice is used as-is, not copied.
func NewFromRowMajor(data []float64, rows, cols int) *Matrix {
	if len(data) != rows*cols {
		panic("array2d: data length does not match rows*cols")
	}
	return &Matrix{d: mat.NewDense(rows, cols, data)}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { r, _ := m.d.Dims(); return r }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { _, c := m.d.Dims(); return c }

// At returns the value at (row, col).
func (m *Matrix) At(row, col int) float64 { return m.d.At(row, col) }

// Set assigns the value at (row, col).
func (m *Matrix) Set(row, col int, v float64) { m.d.Set(row, col, v) }

// Row returns a contiguous, mutable view over one row. Writes through
// the returned slice are writes into the matrix.
func (m *Matrix) Row(row int) []float64 { return m.d.RawRowView(row) }

// Col returns a strided, read/write view over one column (stride ==
// Cols()). It shares the same backing storage as Row.
func (m *Matrix) Col(col int) *mat.VecDense { return m.d.ColView(col).(*mat.VecDense) }

// Dense exposes the underlying gonum matrix for callers that need
// BLAS-backed linear algebra (e.g. the classifier's normalisation step).
func (m *Matrix) Dense() *mat.Dense { return m.d }

// Equal reports whether two matrices have identical dimensions and
// cell values.
func Equal(a, b *Matrix) bool {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	return mat.Equal(a.d, b.d)
}

// ByteMatrix is the mask counterpart to Matrix. gonum's mat package is
// float64-only, so the 0/1 observed/imputed mask is backed by a plain
// row-major byte slice with the same row/strided-column view shape.
type ByteMatrix struct {
	rows, cols int
	data       []byte
}

// NewByte allocates a rows x cols byte matrix filled with zero.
func NewByte(rows, cols int) *ByteMatrix {
	return &ByteMatrix{rows: rows, cols: cols, data: make([]byte, rows*cols)}
}

// NewByteFilled allocates a rows x cols byte matrix filled with v.
func NewByteFilled(rows, cols int, v byte) *ByteMatrix {
	data := make([]byte, rows*cols)
	for i := range data {
		data[i] = v
	}
	return &ByteMatrix{rows: rows, cols: cols, data: data}
}

// NewByteFromRowMajor wraps an existing row-major slice of length rows*cols.
func NewByteFromRowMajor(data []byte, rows, cols int) *ByteMatrix {
	if len(data) != rows*cols {
		panic("array2d: data length does not match rows*cols")
	}
	return &ByteMatrix{rows: rows, cols: cols, data: data}
}

func (m *ByteMatrix) Rows() int { return m.rows }
func (m *ByteMatrix) Cols() int { return m.cols }

func (m *ByteMatrix) At(row, col int) byte { return m.data[row*m.cols+col] }

func (m *ByteMatrix) Set(row, col int, v byte) { m.data[row*m.cols+col] = v }

// Row returns a contiguous, mutable view over one row.
func (m *ByteMatrix) Row(row int) []byte {
	start := row * m.cols
	return m.data[start : start+m.cols]
}

// ColView is a strided, read-only view over one column of a ByteMatrix.
type ColView struct {
	data   []byte
	offset int
	stride int
	n      int
}

// At returns the i-th element of the column view.
func (c ColView) At(i int) byte { return c.data[c.offset+i*c.stride] }

// Len returns the number of elements in the column view.
func (c ColView) Len() int { return c.n }

// Col returns a strided view over one column (stride == Cols()).
func (m *ByteMatrix) Col(col int) ColView {
	return ColView{data: m.data, offset: col, stride: m.cols, n: m.rows}
}

// Equal reports whether two byte matrices have identical dimensions and values.
func (m *ByteMatrix) Equal(o *ByteMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// RawRowMajor exposes the underlying row-major slice, e.g. for serialisation.
func (m *ByteMatrix) RawRowMajor() []byte { return m.data }

// RawRowMajor returns a row-major copy of a Matrix's values, e.g. for
// serialisation. Writes to the returned slice do not reach the matrix.
func (m *Matrix) RawRowMajor() []float64 {
	rows, cols := m.Rows(), m.Cols()
	out := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		copy(out[r*cols:(r+1)*cols], m.Row(r))
	}
	return out
}
