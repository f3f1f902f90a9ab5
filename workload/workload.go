// Package workload generates deterministic square matrices and multiplies
// them with the naive triple loop. It is the measured workload of the
// benchmark harness, not an optimized linear algebra package.
package workload

import (
	"errors"
	"fmt"
	"math"
	mrand "math/rand"
)

var (
	// ErrInvalidSize is returned for a non-positive or non-square size.
	ErrInvalidSize = errors.New("invalid matrix size")
	// ErrDimensionMismatch is returned when multiplying matrices of
	// different sizes.
	ErrDimensionMismatch = errors.New("matrix dimensions must match")
	// ErrNonFinite is returned when a literal matrix contains NaN or Inf.
	ErrNonFinite = errors.New("matrix value is not finite")
)

// Matrix is a dense size×size grid of float64 values stored row-major.
type Matrix struct {
	size int
	data []float64
}

// Zero returns a size×size matrix with every cell set to 0.
func Zero(size int) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	return &Matrix{
		size: size,
		data: make([]float64, size*size),
	}, nil
}

// New returns a size×size matrix filled row by row with values drawn
// uniformly from [0,1) by a generator seeded with seed. Equal seeds yield
// identical matrices.
func New(size int, seed int64) (*Matrix, error) {
	m, err := Zero(size)
	if err != nil {
		return nil, err
	}

	rng := mrand.New(mrand.NewSource(seed))
	for i := range m.data {
		m.data[i] = rng.Float64()
	}

	return m, nil
}

// Identity returns the size×size identity matrix.
func Identity(size int) (*Matrix, error) {
	m, err := Zero(size)
	if err != nil {
		return nil, err
	}

	for i := 0; i < size; i++ {
		m.data[i*size+i] = 1
	}

	return m, nil
}

// FromRows builds a matrix from literal rows. The input must be square
// and every value finite.
func FromRows(rows [][]float64) (*Matrix, error) {
	m, err := Zero(len(rows))
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if len(row) != m.size {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d",
				ErrInvalidSize, i, len(row), m.size)
		}

		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: [%d][%d] = %v",
					ErrNonFinite, i, j, v)
			}

			m.data[i*m.size+j] = v
		}
	}

	return m, nil
}

// Size returns the edge length of the matrix.
func (m *Matrix) Size() int {
	return m.size
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.size+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.size)
	copy(row, m.data[i*m.size:(i+1)*m.size])

	return row
}

// Trace returns the sum of the diagonal.
func (m *Matrix) Trace() float64 {
	var sum float64
	for i := 0; i < m.size; i++ {
		sum += m.data[i*m.size+i]
	}

	return sum
}

// Equal reports whether both matrices have the same size and
// bit-identical values.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.size != other.size {
		return false
	}

	for i, v := range m.data {
		if math.Float64bits(v) != math.Float64bits(other.data[i]) {
			return false
		}
	}

	return true
}

// Multiply returns a new matrix c with c[i][j] = Σ_k a[i][k]*b[k][j],
// computed in i, j, k loop order. Neither input is modified.
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidSize)
	}

	if a.size != b.size {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d",
			ErrDimensionMismatch, a.size, a.size, b.size, b.size)
	}

	n := a.size

	c, err := Zero(n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a.data[i*n+k] * b.data[k*n+j]
			}
			c.data[i*n+j] = sum
		}
	}

	return c, nil
}
