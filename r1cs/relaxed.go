package r1cs

import (
	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
)

// Instance is a strict R1CS instance: a witness commitment and the public
// inputs. Strict instances always carry an implicit u = 1 and E = 0.
type Instance[S, C any] struct {
	CommW C
	X     []S
}

// Witness is the private assignment of a strict instance.
type Witness[S any] struct {
	W []S
}

// RelaxedInstance carries the folded form of an instance: commitments to
// the witness and the error vector, the relaxation scalar u, and the public
// inputs.
type RelaxedInstance[S, C any] struct {
	CommW C
	CommE C
	U     S
	X     []S
}

// RelaxedWitness is the private assignment of a relaxed instance.
type RelaxedWitness[S any] struct {
	W []S
	E []S
}

// DefaultRelaxedInstance is the trivial relaxed instance for s: identity
// commitments, u = 0, zero public inputs. It is satisfied by
// DefaultRelaxedWitness and acts as the identity of folding.
func DefaultRelaxedInstance[S, C any](s *Shape[S], sch commitment.Scheme[S, C]) *RelaxedInstance[S, C] {
	x := make([]S, s.NumPublic)
	for i := range x {
		x[i] = s.F.Zero()
	}
	return &RelaxedInstance[S, C]{
		CommW: sch.Identity(),
		CommE: sch.Identity(),
		U:     s.F.Zero(),
		X:     x,
	}
}

// DefaultRelaxedWitness is the all-zero witness satisfying the trivial
// relaxed instance.
func DefaultRelaxedWitness[S any](s *Shape[S]) *RelaxedWitness[S] {
	w := make([]S, s.NumVars)
	e := make([]S, s.NumConstraints)
	f := s.F
	for i := range w {
		w[i] = f.Zero()
	}
	for i := range e {
		e[i] = f.Zero()
	}
	return &RelaxedWitness[S]{W: w, E: e}
}

// RelaxInstance lifts a strict instance into the relaxed relation with
// u = 1 and a zero error commitment.
func RelaxInstance[S, C any](s *Shape[S], sch commitment.Scheme[S, C], inst *Instance[S, C]) *RelaxedInstance[S, C] {
	x := make([]S, len(inst.X))
	copy(x, inst.X)
	return &RelaxedInstance[S, C]{
		CommW: inst.CommW,
		CommE: sch.Identity(),
		U:     s.F.One(),
		X:     x,
	}
}

// RelaxWitness lifts a strict witness with a zero error vector.
func RelaxWitness[S any](s *Shape[S], wit *Witness[S]) *RelaxedWitness[S] {
	w := make([]S, len(wit.W))
	copy(w, wit.W)
	e := make([]S, s.NumConstraints)
	for i := range e {
		e[i] = s.F.Zero()
	}
	return &RelaxedWitness[S]{W: w, E: e}
}

// Fold combines inst with the strict instance u2 under challenge r and
// cross-term commitment commT:
//
//	CommW' = CommW1 + r*CommW2
//	CommE' = CommE1 + r*CommT
//	u'     = u1 + r
//	X'     = X1 + r*X2
func (inst *RelaxedInstance[S, C]) Fold(f fields.Field[S], sch commitment.Scheme[S, C], u2 *Instance[S, C], commT C, r S) *RelaxedInstance[S, C] {
	x := make([]S, len(inst.X))
	for i := range x {
		x[i] = f.Add(inst.X[i], f.Mul(r, u2.X[i]))
	}
	return &RelaxedInstance[S, C]{
		CommW: sch.Add(inst.CommW, sch.ScalarMul(u2.CommW, r)),
		CommE: sch.Add(inst.CommE, sch.ScalarMul(commT, r)),
		U:     f.Add(inst.U, r),
		X:     x,
	}
}

// FoldRelaxed combines two relaxed instances under challenge r, with the
// r^2 term picking up the second error commitment:
//
//	CommE' = CommE1 + r*CommT + r^2*CommE2
func (inst *RelaxedInstance[S, C]) FoldRelaxed(f fields.Field[S], sch commitment.Scheme[S, C], u2 *RelaxedInstance[S, C], commT C, r S) *RelaxedInstance[S, C] {
	rr := f.Mul(r, r)
	x := make([]S, len(inst.X))
	for i := range x {
		x[i] = f.Add(inst.X[i], f.Mul(r, u2.X[i]))
	}
	commE := sch.Add(inst.CommE, sch.ScalarMul(commT, r))
	commE = sch.Add(commE, sch.ScalarMul(u2.CommE, rr))
	return &RelaxedInstance[S, C]{
		CommW: sch.Add(inst.CommW, sch.ScalarMul(u2.CommW, r)),
		CommE: commE,
		U:     f.Add(inst.U, f.Mul(r, u2.U)),
		X:     x,
	}
}

// Fold combines wit with the strict witness w2 under challenge r and cross
// term t.
func (wit *RelaxedWitness[S]) Fold(f fields.Field[S], w2 *Witness[S], t []S, r S) *RelaxedWitness[S] {
	w := make([]S, len(wit.W))
	for i := range w {
		w[i] = f.Add(wit.W[i], f.Mul(r, w2.W[i]))
	}
	e := make([]S, len(wit.E))
	for i := range e {
		e[i] = f.Add(wit.E[i], f.Mul(r, t[i]))
	}
	return &RelaxedWitness[S]{W: w, E: e}
}

// FoldRelaxed combines two relaxed witnesses under challenge r.
func (wit *RelaxedWitness[S]) FoldRelaxed(f fields.Field[S], w2 *RelaxedWitness[S], t []S, r S) *RelaxedWitness[S] {
	rr := f.Mul(r, r)
	w := make([]S, len(wit.W))
	for i := range w {
		w[i] = f.Add(wit.W[i], f.Mul(r, w2.W[i]))
	}
	e := make([]S, len(wit.E))
	for i := range e {
		e[i] = f.Add(wit.E[i], f.Add(f.Mul(r, t[i]), f.Mul(rr, w2.E[i])))
	}
	return &RelaxedWitness[S]{W: w, E: e}
}
