package gadgets

import (
	"math/big"

	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/oracle"
)

// Instance is an allocated strict instance of the other curve's circuit:
// a witness commitment whose coordinates are native, and two public inputs
// that are digests and therefore fit in single native variables.
type Instance struct {
	CommW  Point
	X0, X1 frontend.Variable
}

// RelaxedInstance is an allocated relaxed instance. Its scalars (u, X) live
// in the non-native field and are carried in limb form.
type RelaxedInstance struct {
	CommW, CommE Point
	U            BigNat
	X0, X1       BigNat
}

// AllocInstance allocates a strict instance from its native-side values.
func AllocInstance[S any](api frontend.API[S], c Curve[S], wx, wy S, wInf bool, x0, x1 S) Instance {
	return Instance{
		CommW: c.Alloc(api, wx, wy, wInf),
		X0:    api.Alloc(x0),
		X1:    api.Alloc(x1),
	}
}

// AllocRelaxedInstance allocates a relaxed instance. u, x0, x1 are
// canonical values of the non-native field.
func AllocRelaxedInstance[S any](api frontend.API[S], c Curve[S], wx, wy S, wInf bool, ex, ey S, eInf bool, u, x0, x1 *big.Int) RelaxedInstance {
	return RelaxedInstance{
		CommW: c.Alloc(api, wx, wy, wInf),
		CommE: c.Alloc(api, ex, ey, eInf),
		U:     AllocBigNat(api, u),
		X0:    AllocBigNat(api, x0),
		X1:    AllocBigNat(api, x1),
	}
}

// DefaultRelaxed is the allocated trivial relaxed instance.
func DefaultRelaxed[S any](api frontend.API[S], c Curve[S]) RelaxedInstance {
	zero := new(big.Int)
	return RelaxedInstance{
		CommW: c.Identity(api),
		CommE: c.Identity(api),
		U:     BigNatConstant(api, zero),
		X0:    BigNatConstant(api, zero),
		X1:    BigNatConstant(api, zero),
	}
}

// RelaxedFromStrict lifts an allocated strict instance into relaxed form
// with u = 1 and no error term, mirroring the native relaxation.
func RelaxedFromStrict[S any](api frontend.API[S], c Curve[S], u Instance) RelaxedInstance {
	x0Bits := api.ToBits(u.X0, oracle.SqueezeBits)
	x1Bits := api.ToBits(u.X1, oracle.SqueezeBits)
	return RelaxedInstance{
		CommW: u.CommW,
		CommE: c.Identity(api),
		U:     BigNatConstant(api, big.NewInt(1)),
		X0:    BigNatFromBits(api, x0Bits),
		X1:    BigNatFromBits(api, x1Bits),
	}
}

// SelectRelaxed returns a if cond is 1, b otherwise.
func SelectRelaxed[S any](api frontend.API[S], cond frontend.Variable, a, b RelaxedInstance) RelaxedInstance {
	sel := func(x, y BigNat) BigNat {
		var r BigNat
		for i := range r.Limbs {
			r.Limbs[i] = api.Select(cond, x.Limbs[i], y.Limbs[i])
		}
		return r
	}
	return RelaxedInstance{
		CommW: SelectPoint(api, cond, a.CommW, b.CommW),
		CommE: SelectPoint(api, cond, a.CommE, b.CommE),
		U:     sel(a.U, b.U),
		X0:    sel(a.X0, b.X0),
		X1:    sel(a.X1, b.X1),
	}
}

// absorbPoint matches the native commitment absorb format.
func absorbPoint[S any](o *Oracle[S], p Point) {
	o.Absorb(p.X, p.Y, p.IsInf)
}

// AbsorbInstance feeds a strict instance into the transcript.
func AbsorbInstance[S any](o *Oracle[S], u Instance) {
	absorbPoint(o, u.CommW)
	o.Absorb(u.X0, u.X1)
}

// AbsorbRelaxed feeds a relaxed instance into the transcript: both
// commitments, then u and the public inputs limb by limb.
func AbsorbRelaxed[S any](o *Oracle[S], u RelaxedInstance) {
	absorbPoint(o, u.CommW)
	absorbPoint(o, u.CommE)
	o.Absorb(u.U.Limbs[:]...)
	o.Absorb(u.X0.Limbs[:]...)
	o.Absorb(u.X1.Limbs[:]...)
}

// FoldInstance is the in-circuit folding verifier: it derives the
// challenge from the transcript (ppDigest, U, u, commT) and returns the
// folded relaxed instance.
func FoldInstance[S any](api frontend.API[S], c Curve[S], cst oracle.Constants[S], q *big.Int, ppDigest frontend.Variable, U RelaxedInstance, u Instance, commT Point) RelaxedInstance {
	o := NewOracle(cst)
	o.Absorb(ppDigest)
	AbsorbRelaxed(o, U)
	AbsorbInstance(o, u)
	absorbPoint(o, commT)
	rBits := o.SqueezeBits(api)
	rNat := BigNatFromBits(api, rBits)

	commW := c.Add(api, U.CommW, c.ScalarMul(api, u.CommW, rBits))
	commE := c.Add(api, U.CommE, c.ScalarMul(api, commT, rBits))

	one := BigNatConstant(api, big.NewInt(1))
	uFolded := FoldBigNat(api, q, U.U, rNat, one)

	x0Nat := BigNatFromBits(api, api.ToBits(u.X0, oracle.SqueezeBits))
	x1Nat := BigNatFromBits(api, api.ToBits(u.X1, oracle.SqueezeBits))
	x0 := FoldBigNat(api, q, U.X0, rNat, x0Nat)
	x1 := FoldBigNat(api, q, U.X1, rNat, x1Nat)

	return RelaxedInstance{CommW: commW, CommE: commE, U: uFolded, X0: x0, X1: x1}
}
