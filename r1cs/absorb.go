package r1cs

import (
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/oracle"
)

// Limb layout used whenever a scalar of one cycle field is absorbed into an
// oracle over the other. The in-circuit instance gadgets use the same
// layout, so native and circuit transcripts coincide.
const (
	NumLimbs = 4
	LimbBits = 64
)

// Absorber feeds instances over scalar field S into an oracle over base
// field B. Commitments of type C are opened into affine coordinates over B
// by the Coords capability.
type Absorber[S, B, C any] struct {
	Scalars fields.Field[S]
	Base    fields.Field[B]
	// Coords returns the affine coordinates of a commitment and whether
	// it is the identity. Identity reports coordinates (0, 0).
	Coords func(C) (x, y B, inf bool)
}

// Commitment absorbs a commitment as (x, y, infinity flag).
func (a *Absorber[S, B, C]) Commitment(o *oracle.Oracle[B], c C) {
	x, y, inf := a.Coords(c)
	flag := a.Base.Zero()
	if inf {
		flag = a.Base.One()
	}
	o.Absorb(x, y, flag)
}

// ScalarLimbs absorbs a scalar as NumLimbs little-endian limbs of LimbBits
// bits, each lifted into the base field.
func (a *Absorber[S, B, C]) ScalarLimbs(o *oracle.Oracle[B], s S) {
	for _, l := range fields.Limbs(a.Scalars, s, NumLimbs, LimbBits) {
		o.Absorb(a.Base.FromUint64(l))
	}
}

// ScalarAsBase absorbs a scalar known to fit in the base field (such as a
// squeezed digest) as a single element.
func (a *Absorber[S, B, C]) ScalarAsBase(o *oracle.Oracle[B], s S) {
	o.Absorb(a.Base.FromBigInt(a.Scalars.ToBigInt(s)))
}

// Relaxed absorbs a relaxed instance: both commitments, then u and every
// public input in limb form.
func (a *Absorber[S, B, C]) Relaxed(o *oracle.Oracle[B], inst *RelaxedInstance[S, C]) {
	a.Commitment(o, inst.CommW)
	a.Commitment(o, inst.CommE)
	a.ScalarLimbs(o, inst.U)
	for _, x := range inst.X {
		a.ScalarLimbs(o, x)
	}
}

// Strict absorbs a strict instance. Its public inputs are digests produced
// by the oracle and therefore fit in a single base element each.
func (a *Absorber[S, B, C]) Strict(o *oracle.Oracle[B], inst *Instance[S, C]) {
	a.Commitment(o, inst.CommW)
	for _, x := range inst.X {
		a.ScalarAsBase(o, x)
	}
}
