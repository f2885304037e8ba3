package r1cs

import (
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/internal/parallel"
)

// Entry is a single coefficient in a sparse matrix row.
type Entry[S any] struct {
	Col   uint32
	Coeff S
}

// SparseMatrix is a row-major sparse matrix over S. Rows may be empty;
// within a row, columns are not required to be sorted but must be distinct.
type SparseMatrix[S any] struct {
	Rows [][]Entry[S]
	Cols int
}

// NewSparseMatrix returns an empty matrix with the given dimensions.
func NewSparseMatrix[S any](rows, cols int) *SparseMatrix[S] {
	return &SparseMatrix[S]{Rows: make([][]Entry[S], rows), Cols: cols}
}

// Set appends the coefficient at (row, col). Zero coefficients are stored
// as given; callers are expected not to insert them.
func (m *SparseMatrix[S]) Set(row int, col uint32, coeff S) {
	m.Rows[row] = append(m.Rows[row], Entry[S]{Col: col, Coeff: coeff})
}

// NNZ is the number of stored coefficients.
func (m *SparseMatrix[S]) NNZ() int {
	n := 0
	for _, r := range m.Rows {
		n += len(r)
	}
	return n
}

// MulVec computes m*z into a fresh vector, splitting rows across cores.
func (m *SparseMatrix[S]) MulVec(f fields.Field[S], z []S) []S {
	out := make([]S, len(m.Rows))
	parallel.Execute(0, len(m.Rows), func(start, end int) {
		for i := start; i < end; i++ {
			acc := f.Zero()
			for _, e := range m.Rows[i] {
				acc = f.Add(acc, f.Mul(e.Coeff, z[e.Col]))
			}
			out[i] = acc
		}
	})
	return out
}
