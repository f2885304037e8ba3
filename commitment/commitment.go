// Package commitment defines the vector-commitment capability used by the
// folding engine, together with an optional opening-proof interface.
//
// The engine only requires additive homomorphism: Commit(w1) + r*Commit(w2)
// must equal Commit(w1 + r*w2). The provider package supplies Pedersen
// multi-scalar commitments over bn254 and grumpkin satisfying this.
package commitment

import (
	"errors"

	"github.com/banyancomputer/arecibo/fields"
)

// ErrOpening is returned when an opening proof fails to verify.
var ErrOpening = errors.New("commitment: invalid opening proof")

// Scheme is the capability to commit to scalar vectors with commitments of
// type C, homomorphic over the scalar field S. Implementations must be safe
// for concurrent use.
type Scheme[S, C any] interface {
	// Scalars is the field the committed vectors live in.
	Scalars() fields.Field[S]
	// Size is the maximum vector length supported.
	Size() int
	// Commit commits to v. len(v) must be at most Size; shorter vectors
	// are implicitly zero padded.
	Commit(v []S) (C, error)
	// Identity is the commitment to the zero vector.
	Identity() C
	Add(a, b C) C
	ScalarMul(a C, s S) C
	Equal(a, b C) bool
	// Bytes returns a canonical fixed-length encoding.
	Bytes(a C) []byte
	// SetBytes decodes an encoding produced by Bytes.
	SetBytes(b []byte) (C, error)
}

// Opener extends a Scheme with opening proofs, used by compressing
// backends. Folding itself never opens commitments.
type Opener[S, C any] interface {
	Scheme[S, C]
	// Open proves that the commitment to v evaluates, under the scheme's
	// notion of evaluation at point x, to the returned scalar.
	Open(v []S, x S) (OpeningProof[S], error)
	// VerifyOpening checks an opening proof against commitment c.
	VerifyOpening(c C, x S, proof OpeningProof[S]) error
}

// OpeningProof attests to an evaluation of a committed vector. Eval is the
// claimed inner product of the vector with the powers of the evaluation
// point; Transcript carries the scheme-specific proof data.
type OpeningProof[S any] struct {
	Eval       S
	Transcript []byte
}
