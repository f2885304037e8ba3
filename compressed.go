package arecibo

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/banyancomputer/arecibo/nifs"
	"github.com/banyancomputer/arecibo/r1cs"
)

// CompressedSNARK is a standalone proof of an IVC computation: it carries
// no per-step material and is checked without access to the prover's
// running witnesses beyond the attached final proofs.
//
// One last fold absorbs the pending secondary instance, after which a
// final proof per curve attests to the two running relaxed instances.
type CompressedSNARK[S1, S2, C1, C2 any] struct {
	NumSteps uint64

	ZnPrimary   []S1
	ZnSecondary []S2

	RUPrimary   *r1cs.RelaxedInstance[S1, C1]
	RUSecondary *r1cs.RelaxedInstance[S2, C2]
	LUSecondary *r1cs.Instance[S2, C2]
	FoldProof   *nifs.Proof[C2]

	ProofPrimary   []byte
	ProofSecondary []byte
}

// Compress produces a compressed proof from the current state of rs.
func Compress[S1, S2, C1, C2 any](pp *PublicParams[S1, S2, C1, C2], rs *RecursiveSNARK[S1, S2, C1, C2]) (*CompressedSNARK[S1, S2, C1, C2], error) {
	if rs.i == 0 {
		return nil, fmt.Errorf("%w: nothing proven yet", ErrProofVerify)
	}
	ppd := pp.Digest()

	foldProof, uFinal, wFinal, err := pp.Ctx2.ProveStrict(pp.Shape2, ppd, rs.rUSecondary, rs.rWSecondary, rs.lUSecondary, rs.lWSecondary)
	if err != nil {
		return nil, err
	}
	proofPrimary, err := pp.Snark1.Prove(pp.Shape1, pp.Scheme1, rs.rUPrimary, rs.rWPrimary)
	if err != nil {
		return nil, err
	}
	proofSecondary, err := pp.Snark2.Prove(pp.Shape2, pp.Scheme2, uFinal, wFinal)
	if err != nil {
		return nil, err
	}
	return &CompressedSNARK[S1, S2, C1, C2]{
		NumSteps:       rs.i,
		ZnPrimary:      rs.ziPrimary,
		ZnSecondary:    rs.ziSecondary,
		RUPrimary:      rs.rUPrimary,
		RUSecondary:    rs.rUSecondary,
		LUSecondary:    rs.lUSecondary,
		FoldProof:      foldProof,
		ProofPrimary:   proofPrimary,
		ProofSecondary: proofSecondary,
	}, nil
}

// Verify checks the compressed proof against the public parameters, the
// step count and the initial states, returning the final states. It is
// the acceptance point for verifiers that never held any witness.
func (cs *CompressedSNARK[S1, S2, C1, C2]) Verify(pp *PublicParams[S1, S2, C1, C2], numSteps uint64, z0Primary []S1, z0Secondary []S2) ([]S1, []S2, error) {
	if numSteps == 0 || cs.NumSteps != numSteps {
		return nil, nil, fmt.Errorf("%w: have %d steps, want %d", ErrProofVerify, cs.NumSteps, numSteps)
	}
	if len(cs.LUSecondary.X) != 2 || len(cs.RUPrimary.X) != 2 || len(cs.RUSecondary.X) != 2 {
		return nil, nil, fmt.Errorf("%w: malformed public inputs", ErrProofVerify)
	}
	if len(cs.ZnPrimary) != pp.Arity1 || len(cs.ZnSecondary) != pp.Arity2 {
		return nil, nil, fmt.Errorf("%w: state arity", ErrProofVerify)
	}
	f2 := pp.E2.Scalars()
	ppd := pp.Digest()

	hashPrimary := hashState(pp.Cst1, pp.Ctx2.Absorber, ppd, cs.NumSteps, z0Primary, cs.ZnPrimary, cs.RUSecondary)
	hashSecondary := hashState(pp.Cst2, pp.Ctx1.Absorber, ppd, cs.NumSteps, z0Secondary, cs.ZnSecondary, cs.RUPrimary)
	if hashPrimary.Cmp(f2.ToBigInt(cs.LUSecondary.X[0])) != 0 ||
		hashSecondary.Cmp(f2.ToBigInt(cs.LUSecondary.X[1])) != 0 {
		return nil, nil, fmt.Errorf("%w: hash chain mismatch", ErrProofVerify)
	}

	// replay the final fold, then check the final proofs on both curves
	uFinal := pp.Ctx2.VerifyStrict(ppd, cs.RUSecondary, cs.LUSecondary, cs.FoldProof)

	var g errgroup.Group
	g.Go(func() error {
		return pp.Snark1.Verify(pp.Shape1, pp.Scheme1, cs.RUPrimary, cs.ProofPrimary)
	})
	g.Go(func() error {
		return pp.Snark2.Verify(pp.Shape2, pp.Scheme2, uFinal, cs.ProofSecondary)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProofVerify, err)
	}
	return cs.ZnPrimary, cs.ZnSecondary, nil
}
