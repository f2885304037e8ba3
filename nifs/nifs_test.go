package nifs_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	frGrumpkin "github.com/consensys/gnark-crypto/ecc/grumpkin/fr"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/nifs"
	"github.com/banyancomputer/arecibo/oracle"
	"github.com/banyancomputer/arecibo/provider"
	"github.com/banyancomputer/arecibo/r1cs"
)

// bn254Ctx folds bn254 instances; its transcripts run over the grumpkin
// scalar field, as on the primary side of the cycle.
func bn254Ctx(sch commitment.Scheme[fr.Element, bn254.G1Affine]) *nifs.Context[fr.Element, frGrumpkin.Element, bn254.G1Affine] {
	e1 := provider.BN254Engine{}
	return &nifs.Context[fr.Element, frGrumpkin.Element, bn254.G1Affine]{
		Scalars:   e1.Scalars(),
		Base:      e1.Base(),
		Scheme:    sch,
		Constants: oracle.NewConstants(e1.Base()),
		Absorber: &r1cs.Absorber[fr.Element, frGrumpkin.Element, bn254.G1Affine]{
			Scalars: e1.Scalars(),
			Base:    e1.Base(),
			Coords:  e1.Coordinates,
		},
	}
}

// square synthesizes y = x^2 with y public.
func square(t *testing.T, x uint64) (*r1cs.Shape[fr.Element], commitment.Scheme[fr.Element, bn254.G1Affine], *r1cs.Instance[fr.Element, bn254.G1Affine], *r1cs.Witness[fr.Element]) {
	t.Helper()
	f := provider.BN254Field{}
	b := frontend.NewBuilder[fr.Element](f)
	xv := b.Alloc(f.FromUint64(x))
	sq := b.Square(xv)
	y := b.AllocPublic(b.Value(sq))
	b.AssertEqual(y, sq)

	shape, err := b.Shape()
	require.NoError(t, err)
	sch := provider.NewBN254Pedersen(shapeSize(shape))
	inst, wit, err := frontend.InstanceWitness[fr.Element, bn254.G1Affine](b, sch)
	require.NoError(t, err)
	return shape, sch, inst, wit
}

func shapeSize[S any](s *r1cs.Shape[S]) int {
	if s.NumVars > s.NumConstraints {
		return s.NumVars
	}
	return s.NumConstraints
}

func TestProveStrictCompleteness(t *testing.T) {
	shape, sch, inst, wit := square(t, 6)
	ctx := bn254Ctx(sch)
	ppd := big.NewInt(424242)

	u1 := r1cs.DefaultRelaxedInstance(shape, sch)
	w1 := r1cs.DefaultRelaxedWitness(shape)

	proof, foldedU, foldedW, err := ctx.ProveStrict(shape, ppd, u1, w1, inst, wit)
	require.NoError(t, err)
	require.NoError(t, r1cs.IsSatRelaxed(shape, sch, foldedU, foldedW))

	// a second fold on top of the first
	_, inst2, wit2 := instOnly(t, 9)
	_, foldedU2, foldedW2, err := ctx.ProveStrict(shape, ppd, foldedU, foldedW, inst2, wit2)
	require.NoError(t, err)
	require.NoError(t, r1cs.IsSatRelaxed(shape, sch, foldedU2, foldedW2))
	_ = proof
}

func instOnly(t *testing.T, x uint64) (commitment.Scheme[fr.Element, bn254.G1Affine], *r1cs.Instance[fr.Element, bn254.G1Affine], *r1cs.Witness[fr.Element]) {
	t.Helper()
	_, sch, inst, wit := square(t, x)
	return sch, inst, wit
}

func TestVerifyMatchesProve(t *testing.T) {
	f := provider.BN254Field{}
	shape, sch, inst, wit := square(t, 5)
	ctx := bn254Ctx(sch)
	ppd := big.NewInt(7)

	u1 := r1cs.DefaultRelaxedInstance(shape, sch)
	w1 := r1cs.DefaultRelaxedWitness(shape)
	proof, foldedU, _, err := ctx.ProveStrict(shape, ppd, u1, w1, inst, wit)
	require.NoError(t, err)

	got := ctx.VerifyStrict(ppd, u1, inst, proof)
	require.True(t, sch.Equal(got.CommW, foldedU.CommW))
	require.True(t, sch.Equal(got.CommE, foldedU.CommE))
	require.True(t, f.Equal(got.U, foldedU.U))
	for i := range got.X {
		require.True(t, f.Equal(got.X[i], foldedU.X[i]))
	}
}

func TestChallengeBoundToParams(t *testing.T) {
	f := provider.BN254Field{}
	shape, sch, inst, wit := square(t, 5)
	ctx := bn254Ctx(sch)

	u1 := r1cs.DefaultRelaxedInstance(shape, sch)
	w1 := r1cs.DefaultRelaxedWitness(shape)
	proof, foldedU, _, err := ctx.ProveStrict(shape, big.NewInt(1), u1, w1, inst, wit)
	require.NoError(t, err)

	// replaying the proof under different parameters derives a
	// different challenge and thus a different folded instance
	other := ctx.VerifyStrict(big.NewInt(2), u1, inst, proof)
	require.False(t, f.Equal(other.U, foldedU.U))
}

func TestProveRelaxedCompleteness(t *testing.T) {
	shape, sch, instA, witA := square(t, 3)
	_, instB, witB := instOnly(t, 8)
	ctx := bn254Ctx(sch)
	ppd := big.NewInt(99)

	u1 := r1cs.RelaxInstance(shape, sch, instA)
	w1 := r1cs.RelaxWitness(shape, witA)
	u2 := r1cs.RelaxInstance(shape, sch, instB)
	w2 := r1cs.RelaxWitness(shape, witB)

	proof, foldedU, foldedW, err := ctx.Prove(shape, ppd, u1, w1, u2, w2)
	require.NoError(t, err)
	require.NoError(t, r1cs.IsSatRelaxed(shape, sch, foldedU, foldedW))

	got := ctx.Verify(ppd, u1, u2, proof)
	require.True(t, sch.Equal(got.CommE, foldedU.CommE))
}

// quartic synthesizes y = x^4 with y public, a shape wider than square.
func quartic(t *testing.T, x uint64) (*r1cs.Shape[fr.Element], commitment.Scheme[fr.Element, bn254.G1Affine], *r1cs.Instance[fr.Element, bn254.G1Affine], *r1cs.Witness[fr.Element]) {
	t.Helper()
	f := provider.BN254Field{}
	b := frontend.NewBuilder[fr.Element](f)
	xv := b.Alloc(f.FromUint64(x))
	sq := b.Square(xv)
	q := b.Square(sq)
	y := b.AllocPublic(b.Value(q))
	b.AssertEqual(y, q)

	shape, err := b.Shape()
	require.NoError(t, err)
	sch := provider.NewBN254Pedersen(shapeSize(shape))
	inst, wit, err := frontend.InstanceWitness[fr.Element, bn254.G1Affine](b, sch)
	require.NoError(t, err)
	return shape, sch, inst, wit
}

func TestFoldRejectsForeignShapes(t *testing.T) {
	shape, sch, _, _ := square(t, 6)
	ctx := bn254Ctx(sch)
	ppd := big.NewInt(11)

	u1 := r1cs.DefaultRelaxedInstance(shape, sch)
	w1 := r1cs.DefaultRelaxedWitness(shape)

	// strict pair from a wider circuit
	_, _, inst, wit := quartic(t, 3)
	_, _, _, err := ctx.ProveStrict(shape, ppd, u1, w1, inst, wit)
	require.ErrorIs(t, err, r1cs.ErrShapeMismatch)

	// relaxed pair from a wider circuit
	qshape, qsch, qinst, qwit := quartic(t, 4)
	u2 := r1cs.RelaxInstance(qshape, qsch, qinst)
	w2 := r1cs.RelaxWitness(qshape, qwit)
	_, _, _, err = ctx.Prove(shape, ppd, u1, w1, u2, w2)
	require.ErrorIs(t, err, r1cs.ErrShapeMismatch)
}

func TestFoldChainProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("chains of strict folds stay satisfiable", prop.ForAll(
		func(xs []uint64) bool {
			shape, sch, _, _ := square(t, 1)
			ctx := bn254Ctx(sch)
			ppd := big.NewInt(5)
			u := r1cs.DefaultRelaxedInstance(shape, sch)
			w := r1cs.DefaultRelaxedWitness(shape)
			for _, x := range xs {
				_, inst, wit := instOnly(t, x%1000)
				var err error
				_, u, w, err = ctx.ProveStrict(shape, ppd, u, w, inst, wit)
				if err != nil {
					return false
				}
			}
			return r1cs.IsSatRelaxed(shape, sch, u, w) == nil
		},
		gen.SliceOfN(3, gen.UInt64()),
	))

	properties.TestingRun(t)
}
