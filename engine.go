package arecibo

import (
	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/r1cs"
)

// Engine bundles the capabilities of one side of a curve cycle: scalar and
// base field arithmetic, a commitment scheme on the curve, and the opening
// of commitments into base-field coordinates.
//
// Two engines form a cycle when each one's base field type is the other's
// scalar field type; the public-parameter constructor enforces this at the
// type level.
type Engine[S, B, C any] interface {
	Name() string
	Scalars() fields.Field[S]
	Base() fields.Field[B]
	// NewScheme derives a commitment scheme supporting vectors up to
	// size. Derivation is deterministic: both parties obtain the same
	// generators.
	NewScheme(size int) commitment.Scheme[S, C]
	// Coordinates opens a commitment into affine coordinates over the
	// base field. The identity reports (0, 0, true).
	Coordinates(c C) (x, y B, inf bool)
	// CurveB is the Weierstrass constant of y^2 = x^3 + B, in the base
	// field.
	CurveB() B
}

// StepCircuit is the incremental computation being proven: one synthesis
// maps the state vector z_i to z_{i+1} under the given API.
//
// Synthesize must be deterministic in its constraint trace: the same
// circuit must emit the same constraints regardless of the values bound to
// z, since the shape extracted at setup has to match every proving step.
type StepCircuit[S any] interface {
	// Arity is the length of the state vector.
	Arity() int
	Synthesize(api frontend.API[S], z []frontend.Variable) ([]frontend.Variable, error)
}

// RelaxedSNARK is the final-proof capability consumed by CompressedSNARK: a
// scheme that attests to a satisfied relaxed instance with an opaque proof.
// The in-repo implementation is compress.Direct, a development backend;
// production deployments substitute a succinct one.
type RelaxedSNARK[S, C any] interface {
	Prove(s *r1cs.Shape[S], sch commitment.Scheme[S, C], inst *r1cs.RelaxedInstance[S, C], wit *r1cs.RelaxedWitness[S]) ([]byte, error)
	Verify(s *r1cs.Shape[S], sch commitment.Scheme[S, C], inst *r1cs.RelaxedInstance[S, C], proof []byte) error
}
