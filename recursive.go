package arecibo

import (
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/debug"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/logger"
	"github.com/banyancomputer/arecibo/oracle"
	"github.com/banyancomputer/arecibo/r1cs"
)

// RecursiveSNARK carries an IVC computation: after i steps it holds the
// running relaxed instances of both circuits, the strict instance emitted
// by the latest secondary synthesis, and the current state vectors.
type RecursiveSNARK[S1, S2, C1, C2 any] struct {
	pp *PublicParams[S1, S2, C1, C2]

	i uint64

	z0Primary   []S1
	z0Secondary []S2
	ziPrimary   []S1
	ziSecondary []S2

	rUPrimary *r1cs.RelaxedInstance[S1, C1]
	rWPrimary *r1cs.RelaxedWitness[S1]

	rUSecondary *r1cs.RelaxedInstance[S2, C2]
	rWSecondary *r1cs.RelaxedWitness[S2]

	lUSecondary *r1cs.Instance[S2, C2]
	lWSecondary *r1cs.Witness[S2]
}

// pointView opens a commitment into the other circuit's native
// coordinates.
func pointView[So, S, C any](e Engine[So, S, C], c C) circuitPoint[S] {
	x, y, inf := e.Coordinates(c)
	return circuitPoint[S]{X: x, Y: y, Inf: inf}
}

// relaxedView prepares a relaxed instance for allocation in the other
// circuit.
func relaxedView[So, S, C any](e Engine[So, S, C], inst *r1cs.RelaxedInstance[So, C]) circuitRelaxed[S] {
	f := e.Scalars()
	return circuitRelaxed[S]{
		CommW: pointView(e, inst.CommW),
		CommE: pointView(e, inst.CommE),
		U:     f.ToBigInt(inst.U),
		X0:    f.ToBigInt(inst.X[0]),
		X1:    f.ToBigInt(inst.X[1]),
	}
}

// strictView prepares a strict instance for allocation in the other
// circuit. Its public inputs are digests, so they cross fields losslessly.
func strictView[So, S, C any](e Engine[So, S, C], inst *r1cs.Instance[So, C]) circuitInstance[S] {
	f := e.Scalars()
	base := e.Base()
	return circuitInstance[S]{
		CommW: pointView(e, inst.CommW),
		X0:    base.FromBigInt(f.ToBigInt(inst.X[0])),
		X1:    base.FromBigInt(f.ToBigInt(inst.X[1])),
	}
}

// hashState computes the chain hash H(pp, i, z0, zi, U) over the base
// field of U's curve, identically to the in-circuit form.
func hashState[S, B, C any](cst oracle.Constants[B], abs *r1cs.Absorber[S, B, C], ppDigest *big.Int, i uint64, z0, zi []B, U *r1cs.RelaxedInstance[S, C]) *big.Int {
	o := oracle.New(cst)
	o.Absorb(abs.Base.FromBigInt(ppDigest))
	o.Absorb(abs.Base.FromUint64(i))
	o.Absorb(z0...)
	o.Absorb(zi...)
	abs.Relaxed(o, U)
	return o.Squeeze()
}

// runCircuit synthesizes an augmented circuit and extracts the committed
// strict instance, its witness and the next state values.
func runCircuit[S, C any](f fields.Field[S], shape *r1cs.Shape[S], sch commitment.Scheme[S, C], c *augmentedCircuit[S]) (*r1cs.Instance[S, C], *r1cs.Witness[S], []S, error) {
	b := frontend.NewBuilder(f)
	zVars, err := c.synthesize(b)
	if err != nil {
		return nil, nil, nil, err
	}
	inst, wit, err := frontend.InstanceWitness(b, sch)
	if err != nil {
		return nil, nil, nil, err
	}
	if debug.Debug {
		if err := r1cs.IsSat(shape, sch, inst, wit); err != nil {
			return nil, nil, nil, err
		}
	}
	zNext := make([]S, len(zVars))
	for i, v := range zVars {
		zNext[i] = b.Value(v)
	}
	return inst, wit, zNext, nil
}

// New runs the base step of both circuits and returns a snark positioned
// at i = 0. The first ProveStep call only advances the counter; folding
// begins at the second.
func New[S1, S2, C1, C2 any](pp *PublicParams[S1, S2, C1, C2], c1 StepCircuit[S1], c2 StepCircuit[S2], z0Primary []S1, z0Secondary []S2) (*RecursiveSNARK[S1, S2, C1, C2], error) {
	if len(z0Primary) != pp.Arity1 || c1.Arity() != pp.Arity1 ||
		len(z0Secondary) != pp.Arity2 || c2.Arity() != pp.Arity2 {
		return nil, ErrInvalidInitialInput
	}
	f1, f2 := pp.E1.Scalars(), pp.E2.Scalars()
	ppd := pp.Digest()

	// base synthesis of the primary circuit, against a trivial running
	// instance and a dummy incoming instance
	in1 := defaultCircuitInputs(f1, pp.Arity1)
	in1.ppDigest = ppd
	in1.z0 = z0Primary
	in1.zi = z0Primary
	in1.U = relaxedView(pp.E2, r1cs.DefaultRelaxedInstance(pp.Shape2, pp.Scheme2))
	in1.u = strictView(pp.E2, &r1cs.Instance[S2, C2]{CommW: pp.Scheme2.Identity(), X: []S2{f2.Zero(), f2.Zero()}})
	uPrimary, wPrimary, z1Primary, err := runCircuit(f1, pp.Shape1, pp.Scheme1, newAugmentedCircuit(true, c1, pp.E2, pp.Cst1, in1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStepExecution, err)
	}

	// base synthesis of the secondary circuit, consuming the instance
	// just produced
	in2 := defaultCircuitInputs(f2, pp.Arity2)
	in2.ppDigest = ppd
	in2.z0 = z0Secondary
	in2.zi = z0Secondary
	in2.U = relaxedView(pp.E1, r1cs.DefaultRelaxedInstance(pp.Shape1, pp.Scheme1))
	in2.u = strictView(pp.E1, uPrimary)
	uSecondary, wSecondary, z1Secondary, err := runCircuit(f2, pp.Shape2, pp.Scheme2, newAugmentedCircuit(false, c2, pp.E1, pp.Cst2, in2))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStepExecution, err)
	}

	log := logger.Logger()
	log.Debug().
		Int("constraints_primary", pp.Shape1.NumConstraints).
		Int("constraints_secondary", pp.Shape2.NumConstraints).
		Msg("ivc base step")

	return &RecursiveSNARK[S1, S2, C1, C2]{
		pp:          pp,
		i:           0,
		z0Primary:   z0Primary,
		z0Secondary: z0Secondary,
		ziPrimary:   z1Primary,
		ziSecondary: z1Secondary,
		rUPrimary:   r1cs.RelaxInstance(pp.Shape1, pp.Scheme1, uPrimary),
		rWPrimary:   r1cs.RelaxWitness(pp.Shape1, wPrimary),
		rUSecondary: r1cs.DefaultRelaxedInstance(pp.Shape2, pp.Scheme2),
		rWSecondary: r1cs.DefaultRelaxedWitness(pp.Shape2),
		lUSecondary: uSecondary,
		lWSecondary: wSecondary,
	}, nil
}

// NumSteps is the number of completed steps.
func (rs *RecursiveSNARK[S1, S2, C1, C2]) NumSteps() uint64 { return rs.i }

// State returns the current state vectors of both circuits.
func (rs *RecursiveSNARK[S1, S2, C1, C2]) State() ([]S1, []S2) {
	return rs.ziPrimary, rs.ziSecondary
}

// ProveStep advances the computation by one step. On error the receiver is
// unchanged; retrying with fixed inputs is safe. The first call after New
// completes the base step without folding.
func (rs *RecursiveSNARK[S1, S2, C1, C2]) ProveStep(c1 StepCircuit[S1], c2 StepCircuit[S2]) error {
	if rs.i == 0 {
		rs.i = 1
		return nil
	}
	pp := rs.pp
	f1, f2 := pp.E1.Scalars(), pp.E2.Scalars()
	ppd := pp.Digest()

	// fold the pending secondary instance into the running one
	proofSec, rUSecondary, rWSecondary, err := pp.Ctx2.ProveStrict(pp.Shape2, ppd, rs.rUSecondary, rs.rWSecondary, rs.lUSecondary, rs.lWSecondary)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStepExecution, err)
	}

	// primary circuit: verifies that fold and advances the primary state
	in1 := circuitInputs[S1]{
		ppDigest: ppd,
		i:        rs.i,
		z0:       rs.z0Primary,
		zi:       rs.ziPrimary,
		U:        relaxedView(pp.E2, rs.rUSecondary),
		u:        strictView(pp.E2, rs.lUSecondary),
		commT:    pointView(pp.E2, proofSec.CommT),
	}
	uPrimary, wPrimary, ziPrimary, err := runCircuit(f1, pp.Shape1, pp.Scheme1, newAugmentedCircuit(true, c1, pp.E2, pp.Cst1, in1))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStepExecution, err)
	}

	// fold the fresh primary instance into the running one
	proofPrim, rUPrimary, rWPrimary, err := pp.Ctx1.ProveStrict(pp.Shape1, ppd, rs.rUPrimary, rs.rWPrimary, uPrimary, wPrimary)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStepExecution, err)
	}

	// secondary circuit: verifies the primary fold and advances the
	// secondary state
	in2 := circuitInputs[S2]{
		ppDigest: ppd,
		i:        rs.i,
		z0:       rs.z0Secondary,
		zi:       rs.ziSecondary,
		U:        relaxedView(pp.E1, rs.rUPrimary),
		u:        strictView(pp.E1, uPrimary),
		commT:    pointView(pp.E1, proofPrim.CommT),
	}
	uSecondary, wSecondary, ziSecondary, err := runCircuit(f2, pp.Shape2, pp.Scheme2, newAugmentedCircuit(false, c2, pp.E1, pp.Cst2, in2))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStepExecution, err)
	}

	// all fallible work is done; install the new state
	rs.i++
	rs.ziPrimary = ziPrimary
	rs.ziSecondary = ziSecondary
	rs.rUPrimary = rUPrimary
	rs.rWPrimary = rWPrimary
	rs.rUSecondary = rUSecondary
	rs.rWSecondary = rWSecondary
	rs.lUSecondary = uSecondary
	rs.lWSecondary = wSecondary
	return nil
}

// Verify checks the hash chain and the satisfiability of all carried
// instances after numSteps steps, returning the final state vectors.
//
// Verify inspects prover-held witnesses; it is the prover-side consistency
// check. Witness-less verification is provided by CompressedSNARK.
func (rs *RecursiveSNARK[S1, S2, C1, C2]) Verify(numSteps uint64, z0Primary []S1, z0Secondary []S2) ([]S1, []S2, error) {
	pp := rs.pp
	if numSteps == 0 || rs.i != numSteps {
		return nil, nil, fmt.Errorf("%w: have %d steps, want %d", ErrProofVerify, rs.i, numSteps)
	}
	if len(rs.lUSecondary.X) != 2 || len(rs.rUPrimary.X) != 2 || len(rs.rUSecondary.X) != 2 {
		return nil, nil, fmt.Errorf("%w: malformed public inputs", ErrProofVerify)
	}
	f2 := pp.E2.Scalars()
	ppd := pp.Digest()

	hashPrimary := hashState(pp.Cst1, pp.Ctx2.Absorber, ppd, rs.i, z0Primary, rs.ziPrimary, rs.rUSecondary)
	hashSecondary := hashState(pp.Cst2, pp.Ctx1.Absorber, ppd, rs.i, z0Secondary, rs.ziSecondary, rs.rUPrimary)
	if hashPrimary.Cmp(f2.ToBigInt(rs.lUSecondary.X[0])) != 0 ||
		hashSecondary.Cmp(f2.ToBigInt(rs.lUSecondary.X[1])) != 0 {
		return nil, nil, fmt.Errorf("%w: hash chain mismatch", ErrProofVerify)
	}

	var g errgroup.Group
	g.Go(func() error {
		return r1cs.IsSatRelaxed(pp.Shape1, pp.Scheme1, rs.rUPrimary, rs.rWPrimary)
	})
	g.Go(func() error {
		return r1cs.IsSatRelaxed(pp.Shape2, pp.Scheme2, rs.rUSecondary, rs.rWSecondary)
	})
	g.Go(func() error {
		return r1cs.IsSat(pp.Shape2, pp.Scheme2, rs.lUSecondary, rs.lWSecondary)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProofVerify, err)
	}
	return rs.ziPrimary, rs.ziSecondary, nil
}
