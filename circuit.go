package arecibo

import (
	"fmt"
	"math/big"

	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/gadgets"
	"github.com/banyancomputer/arecibo/oracle"
)

// circuitPoint is a commitment of the other curve opened into native
// coordinates, ready for allocation.
type circuitPoint[S any] struct {
	X, Y S
	Inf  bool
}

// circuitInstance is the native-side view of a strict instance of the
// other circuit.
type circuitInstance[S any] struct {
	CommW  circuitPoint[S]
	X0, X1 S
}

// circuitRelaxed is the native-side view of a relaxed instance of the
// other circuit. Its non-native scalars are carried as canonical integers.
type circuitRelaxed[S any] struct {
	CommW, CommE circuitPoint[S]
	U, X0, X1    *big.Int
}

// circuitInputs are the non-deterministic inputs of one synthesis of the
// augmented circuit.
type circuitInputs[S any] struct {
	ppDigest *big.Int
	i        uint64
	z0, zi   []S
	U        circuitRelaxed[S]
	u        circuitInstance[S]
	commT    circuitPoint[S]
}

// augmentedCircuit wraps a step circuit with the folding verifier: it
// checks the hash chain, folds the incoming instance of the other circuit
// into its running instance, and advances the step function.
//
// Its two public inputs are the passthrough of the consumed instance's
// second output and the hash of the new state.
type augmentedCircuit[S any] struct {
	// isPrimary selects the base-case default: the primary circuit
	// starts from the trivial relaxed instance, the secondary from the
	// relaxation of the incoming instance.
	isPrimary bool
	step      StepCircuit[S]
	curve     gadgets.Curve[S]
	cst       oracle.Constants[S]
	// q is the scalar modulus of the other circuit's field.
	q *big.Int

	inputs circuitInputs[S]
}

// defaultCircuitInputs returns zero-valued inputs for shape synthesis.
func defaultCircuitInputs[S any](f fields.Field[S], arity int) circuitInputs[S] {
	zero := new(big.Int)
	zp := circuitPoint[S]{X: f.Zero(), Y: f.Zero(), Inf: true}
	z := make([]S, arity)
	for i := range z {
		z[i] = f.Zero()
	}
	return circuitInputs[S]{
		ppDigest: zero,
		z0:       z,
		zi:       z,
		U:        circuitRelaxed[S]{CommW: zp, CommE: zp, U: zero, X0: zero, X1: zero},
		u:        circuitInstance[S]{CommW: zp, X0: f.Zero(), X1: f.Zero()},
		commT:    zp,
	}
}

func (c *augmentedCircuit[S]) allocPoint(api frontend.API[S], p circuitPoint[S]) gadgets.Point {
	return c.curve.Alloc(api, p.X, p.Y, p.Inf)
}

// synthesize emits the augmented circuit and returns the variables of the
// next state, whose values the prover reads back.
func (c *augmentedCircuit[S]) synthesize(api frontend.API[S]) ([]frontend.Variable, error) {
	f := api.Field()
	in := c.inputs
	arity := c.step.Arity()
	if len(in.z0) != arity || len(in.zi) != arity {
		return nil, fmt.Errorf("%w: state arity", frontend.ErrSynthesis)
	}

	pp := api.Alloc(f.FromBigInt(in.ppDigest))
	iVar := api.Alloc(f.FromUint64(in.i))
	z0 := make([]frontend.Variable, arity)
	zi := make([]frontend.Variable, arity)
	for k := 0; k < arity; k++ {
		z0[k] = api.Alloc(in.z0[k])
		zi[k] = api.Alloc(in.zi[k])
	}
	U := gadgets.AllocRelaxedInstance(api, c.curve,
		in.U.CommW.X, in.U.CommW.Y, in.U.CommW.Inf,
		in.U.CommE.X, in.U.CommE.Y, in.U.CommE.Inf,
		in.U.U, in.U.X0, in.U.X1)
	u := gadgets.AllocInstance(api, c.curve, in.u.CommW.X, in.u.CommW.Y, in.u.CommW.Inf, in.u.X0, in.u.X1)
	commT := c.allocPoint(api, in.commT)

	isBase := api.IsZero(iVar)
	notBase := api.Sub(api.Constant(f.One()), isBase)
	zero := api.Constant(f.Zero())

	// Outside the base case, the consumed instance must carry the hash
	// of our current state in its first output.
	o := gadgets.NewOracle(c.cst)
	o.Absorb(pp, iVar)
	o.Absorb(z0...)
	o.Absorb(zi...)
	gadgets.AbsorbRelaxed(o, U)
	h := o.Squeeze(api)
	api.AssertMul(notBase, api.Sub(h, u.X0), zero)

	folded := gadgets.FoldInstance(api, c.curve, c.cst, c.q, pp, U, u, commT)
	var base gadgets.RelaxedInstance
	if c.isPrimary {
		base = gadgets.DefaultRelaxed(api, c.curve)
	} else {
		base = gadgets.RelaxedFromStrict(api, c.curve, u)
	}
	uNext := gadgets.SelectRelaxed(api, isBase, base, folded)

	zInput := make([]frontend.Variable, arity)
	for k := 0; k < arity; k++ {
		zInput[k] = api.Select(isBase, z0[k], zi[k])
	}
	zNext, err := c.step.Synthesize(api, zInput)
	if err != nil {
		return nil, err
	}
	if len(zNext) != arity {
		return nil, fmt.Errorf("%w: step returned %d outputs, want %d", frontend.ErrSynthesis, len(zNext), arity)
	}

	iNext := api.AddConst(iVar, f.One())
	o2 := gadgets.NewOracle(c.cst)
	o2.Absorb(pp, iNext)
	o2.Absorb(z0...)
	o2.Absorb(zNext...)
	gadgets.AbsorbRelaxed(o2, uNext)
	hNext := o2.Squeeze(api)

	// Public outputs: the other circuit's hash passes through, ours is
	// replaced.
	out0 := api.AllocPublic(api.Value(u.X1))
	api.AssertEqual(out0, u.X1)
	out1 := api.AllocPublic(api.Value(hNext))
	api.AssertEqual(out1, hNext)
	return zNext, nil
}
