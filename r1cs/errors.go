package r1cs

import "errors"

var (
	// ErrShapeMismatch is returned when an instance or witness does not
	// match the dimensions of the shape it is checked against.
	ErrShapeMismatch = errors.New("r1cs: dimensions do not match shape")

	// ErrUnsatisfied is returned when a constraint evaluates to a nonzero
	// residual.
	ErrUnsatisfied = errors.New("r1cs: unsatisfied constraint")
)
