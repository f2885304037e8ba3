// Package nifs implements the non-interactive folding scheme: it reduces
// the task of checking two instances of the same shape to checking a single
// folded relaxed instance.
//
// The folding challenge is derived by a random oracle over the base field
// of the commitment curve, seeded with a digest of the public parameters so
// that proofs are bound to the shape they were produced for.
package nifs

import (
	"math/big"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/debug"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/oracle"
	"github.com/banyancomputer/arecibo/r1cs"
)

// Proof is the folding proof: a commitment to the cross term. The folded
// instance is recomputed by the verifier, not transmitted.
type Proof[C any] struct {
	CommT C
}

// Context bundles the capabilities folding needs for one side of the curve
// cycle: scalar arithmetic, the oracle's base field, the commitment scheme,
// and the transcript absorber.
type Context[S, B, C any] struct {
	Scalars   fields.Field[S]
	Base      fields.Field[B]
	Scheme    commitment.Scheme[S, C]
	Constants oracle.Constants[B]
	Absorber  *r1cs.Absorber[S, B, C]
}

// challenge derives the folding challenge from the transcript
// (ppDigest, U1, u2, commT). The 250-bit squeeze fits in S.
func (c *Context[S, B, C]) challenge(ppDigest *big.Int, absorbU2 func(*oracle.Oracle[B]), u1 *r1cs.RelaxedInstance[S, C], commT C) S {
	o := oracle.New(c.Constants)
	o.Absorb(c.Base.FromBigInt(ppDigest))
	c.Absorber.Relaxed(o, u1)
	absorbU2(o)
	c.Absorber.Commitment(o, commT)
	return oracle.SqueezeField(o, c.Scalars)
}

// ProveStrict folds the strict pair (u2, w2) into the relaxed running pair
// (u1, w1). It returns the proof and the folded pair.
func (c *Context[S, B, C]) ProveStrict(
	s *r1cs.Shape[S], ppDigest *big.Int,
	u1 *r1cs.RelaxedInstance[S, C], w1 *r1cs.RelaxedWitness[S],
	u2 *r1cs.Instance[S, C], w2 *r1cs.Witness[S],
) (*Proof[C], *r1cs.RelaxedInstance[S, C], *r1cs.RelaxedWitness[S], error) {
	if len(w1.W) != s.NumVars || len(w1.E) != s.NumConstraints || len(u1.X) != s.NumPublic ||
		len(w2.W) != s.NumVars || len(u2.X) != s.NumPublic {
		return nil, nil, nil, r1cs.ErrShapeMismatch
	}
	t := r1cs.CrossTerm(s, u1, w1, u2, w2)
	commT, err := c.Scheme.Commit(t)
	if err != nil {
		return nil, nil, nil, err
	}
	r := c.challenge(ppDigest, func(o *oracle.Oracle[B]) { c.Absorber.Strict(o, u2) }, u1, commT)

	foldedU := u1.Fold(c.Scalars, c.Scheme, u2, commT, r)
	foldedW := w1.Fold(c.Scalars, w2, t, r)

	if debug.Debug {
		if err := r1cs.IsSatRelaxed(s, c.Scheme, foldedU, foldedW); err != nil {
			return nil, nil, nil, err
		}
	}
	return &Proof[C]{CommT: commT}, foldedU, foldedW, nil
}

// VerifyStrict recomputes the folded instance from the proof. It performs
// no satisfiability check; the folded instance carries the claim forward.
func (c *Context[S, B, C]) VerifyStrict(
	ppDigest *big.Int,
	u1 *r1cs.RelaxedInstance[S, C], u2 *r1cs.Instance[S, C],
	proof *Proof[C],
) *r1cs.RelaxedInstance[S, C] {
	r := c.challenge(ppDigest, func(o *oracle.Oracle[B]) { c.Absorber.Strict(o, u2) }, u1, proof.CommT)
	return u1.Fold(c.Scalars, c.Scheme, u2, proof.CommT, r)
}

// Prove folds two relaxed pairs. The r^2 term absorbs the second error
// vector.
func (c *Context[S, B, C]) Prove(
	s *r1cs.Shape[S], ppDigest *big.Int,
	u1 *r1cs.RelaxedInstance[S, C], w1 *r1cs.RelaxedWitness[S],
	u2 *r1cs.RelaxedInstance[S, C], w2 *r1cs.RelaxedWitness[S],
) (*Proof[C], *r1cs.RelaxedInstance[S, C], *r1cs.RelaxedWitness[S], error) {
	if len(w1.W) != s.NumVars || len(w1.E) != s.NumConstraints || len(u1.X) != s.NumPublic ||
		len(w2.W) != s.NumVars || len(w2.E) != s.NumConstraints || len(u2.X) != s.NumPublic {
		return nil, nil, nil, r1cs.ErrShapeMismatch
	}
	t := r1cs.CrossTermRelaxed(s, u1, w1, u2, w2)
	commT, err := c.Scheme.Commit(t)
	if err != nil {
		return nil, nil, nil, err
	}
	r := c.challenge(ppDigest, func(o *oracle.Oracle[B]) { c.Absorber.Relaxed(o, u2) }, u1, commT)

	foldedU := u1.FoldRelaxed(c.Scalars, c.Scheme, u2, commT, r)
	foldedW := w1.FoldRelaxed(c.Scalars, w2, t, r)

	if debug.Debug {
		if err := r1cs.IsSatRelaxed(s, c.Scheme, foldedU, foldedW); err != nil {
			return nil, nil, nil, err
		}
	}
	return &Proof[C]{CommT: commT}, foldedU, foldedW, nil
}

// Verify recomputes the folded instance for a relaxed-by-relaxed fold.
func (c *Context[S, B, C]) Verify(
	ppDigest *big.Int,
	u1, u2 *r1cs.RelaxedInstance[S, C],
	proof *Proof[C],
) *r1cs.RelaxedInstance[S, C] {
	r := c.challenge(ppDigest, func(o *oracle.Oracle[B]) { c.Absorber.Relaxed(o, u2) }, u1, proof.CommT)
	return u1.FoldRelaxed(c.Scalars, c.Scheme, u2, proof.CommT, r)
}
