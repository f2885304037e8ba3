// Package r1cs implements the relaxed rank-1 constraint system that the
// folding scheme operates on.
//
// A shape is a triple of sparse matrices (A, B, C) over a scalar field. A
// relaxed instance-witness pair (W, E, u, X) satisfies the shape when
//
//	Az o Bz = u*(Cz) + E,  z = (W, u, X)
//
// where o is the entrywise product. Strict satisfaction is the special case
// u = 1, E = 0, which coincides with ordinary R1CS.
package r1cs

import (
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
)

// Shape is the constraint matrices of a circuit together with the field
// they are expressed over.
type Shape[S any] struct {
	F fields.Field[S]

	A, B, C *SparseMatrix[S]

	NumConstraints int
	// NumVars is the number of private witness variables.
	NumVars int
	// NumPublic is the number of public inputs, excluding the constant
	// one column.
	NumPublic int

	digestOnce sync.Once
	digest     *big.Int // memoized, see digest.go
}

// NewShape builds a shape over f. The matrices index columns as
// [w_0 .. w_{numVars-1}, u, x_0 .. x_{numPublic-1}].
func NewShape[S any](f fields.Field[S], numConstraints, numVars, numPublic int, a, b, c *SparseMatrix[S]) (*Shape[S], error) {
	cols := numVars + 1 + numPublic
	for _, m := range []*SparseMatrix[S]{a, b, c} {
		if len(m.Rows) != numConstraints || m.Cols != cols {
			return nil, fmt.Errorf("%w: matrix is %dx%d, want %dx%d", ErrShapeMismatch, len(m.Rows), m.Cols, numConstraints, cols)
		}
	}
	return &Shape[S]{
		F:              f,
		A:              a,
		B:              b,
		C:              c,
		NumConstraints: numConstraints,
		NumVars:        numVars,
		NumPublic:      numPublic,
	}, nil
}

// Z assembles the full assignment vector (W, u, X).
func (s *Shape[S]) Z(w []S, u S, x []S) []S {
	z := make([]S, 0, s.NumVars+1+s.NumPublic)
	z = append(z, w...)
	z = append(z, u)
	z = append(z, x...)
	return z
}

// multiply evaluates Az, Bz, Cz concurrently.
func (s *Shape[S]) multiply(z []S) (az, bz, cz []S) {
	var g errgroup.Group
	g.Go(func() error { az = s.A.MulVec(s.F, z); return nil })
	g.Go(func() error { bz = s.B.MulVec(s.F, z); return nil })
	g.Go(func() error { cz = s.C.MulVec(s.F, z); return nil })
	g.Wait() //nolint:errcheck // the goroutines never fail
	return az, bz, cz
}

// IsSat checks strict satisfaction of (inst, wit) against s, including
// that inst.CommW opens to wit.W under sch.
func IsSat[S, C any](s *Shape[S], sch commitment.Scheme[S, C], inst *Instance[S, C], wit *Witness[S]) error {
	if len(wit.W) != s.NumVars || len(inst.X) != s.NumPublic {
		return ErrShapeMismatch
	}
	f := s.F
	az, bz, cz := s.multiply(s.Z(wit.W, f.One(), inst.X))
	for i := 0; i < s.NumConstraints; i++ {
		if !f.Equal(f.Mul(az[i], bz[i]), cz[i]) {
			return fmt.Errorf("%w: row %d", ErrUnsatisfied, i)
		}
	}
	commW, err := sch.Commit(wit.W)
	if err != nil {
		return err
	}
	if !sch.Equal(commW, inst.CommW) {
		return fmt.Errorf("%w: witness commitment", ErrUnsatisfied)
	}
	return nil
}

// IsSatRelaxed checks relaxed satisfaction of (inst, wit) against s,
// including both commitment openings.
func IsSatRelaxed[S, C any](s *Shape[S], sch commitment.Scheme[S, C], inst *RelaxedInstance[S, C], wit *RelaxedWitness[S]) error {
	if len(wit.W) != s.NumVars || len(wit.E) != s.NumConstraints || len(inst.X) != s.NumPublic {
		return ErrShapeMismatch
	}
	f := s.F
	az, bz, cz := s.multiply(s.Z(wit.W, inst.U, inst.X))
	for i := 0; i < s.NumConstraints; i++ {
		rhs := f.Add(f.Mul(inst.U, cz[i]), wit.E[i])
		if !f.Equal(f.Mul(az[i], bz[i]), rhs) {
			return fmt.Errorf("%w: row %d", ErrUnsatisfied, i)
		}
	}
	var g errgroup.Group
	g.Go(func() error {
		commW, err := sch.Commit(wit.W)
		if err != nil {
			return err
		}
		if !sch.Equal(commW, inst.CommW) {
			return fmt.Errorf("%w: witness commitment", ErrUnsatisfied)
		}
		return nil
	})
	g.Go(func() error {
		commE, err := sch.Commit(wit.E)
		if err != nil {
			return err
		}
		if !sch.Equal(commE, inst.CommE) {
			return fmt.Errorf("%w: error commitment", ErrUnsatisfied)
		}
		return nil
	})
	return g.Wait()
}
