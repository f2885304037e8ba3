package arecibo_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	fr1 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	fr2 "github.com/consensys/gnark-crypto/ecc/grumpkin/fr"

	arecibo "github.com/banyancomputer/arecibo"
	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/logger"
	"github.com/banyancomputer/arecibo/provider"
)

var (
	f1 = provider.BN254Field{}
	f2 = provider.GrumpkinField{}
)

// squareAddCircuit advances z -> z^2 + z.
type squareAddCircuit struct {
	fail bool
}

func (squareAddCircuit) Arity() int { return 1 }

func (c squareAddCircuit) Synthesize(api frontend.API[fr1.Element], z []frontend.Variable) ([]frontend.Variable, error) {
	if c.fail {
		return nil, errors.New("induced step failure")
	}
	return []frontend.Variable{api.Add(api.Square(z[0]), z[0])}, nil
}

type params = arecibo.PublicParams[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine]

var (
	ppOnce sync.Once
	ppVal  *params
	ppErr  error
)

func testParams(t *testing.T) *params {
	t.Helper()
	ppOnce.Do(func() {
		ppVal, ppErr = arecibo.Setup[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine](
			provider.BN254Engine{}, provider.GrumpkinEngine{},
			squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
		)
	})
	require.NoError(t, ppErr)
	return ppVal
}

func newChain(t *testing.T, pp *params, steps int) *arecibo.RecursiveSNARK[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine] {
	t.Helper()
	rs, err := arecibo.New(pp, squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
		[]fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	for s := 0; s < steps; s++ {
		require.NoError(t, rs.ProveStep(squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{}))
	}
	return rs
}

func TestIVCChain(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 3)
	require.Equal(t, uint64(3), rs.NumSteps())

	znP, znS, err := rs.Verify(3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)

	// 2 -> 6 -> 42 -> 1806
	require.Len(t, znP, 1)
	require.True(t, f1.Equal(znP[0], f1.FromUint64(1806)))
	require.Len(t, znS, 1)
	require.True(t, f2.IsZero(znS[0]))

	stateP, stateS := rs.State()
	require.True(t, f1.Equal(stateP[0], znP[0]))
	require.True(t, f2.Equal(stateS[0], znS[0]))
}

func TestIVCBaseStep(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 1)
	require.Equal(t, uint64(1), rs.NumSteps())

	znP, _, err := rs.Verify(1, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.True(t, f1.Equal(znP[0], f1.FromUint64(6)))
}

func TestIVCVerifyRejects(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 2)

	// wrong step count
	_, _, err := rs.Verify(3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.ErrorIs(t, err, arecibo.ErrProofVerify)
	_, _, err = rs.Verify(0, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.ErrorIs(t, err, arecibo.ErrProofVerify)

	// wrong initial state breaks the hash chain
	_, _, err = rs.Verify(2, []fr1.Element{f1.FromUint64(3)}, []fr2.Element{f2.Zero()})
	require.ErrorIs(t, err, arecibo.ErrProofVerify)
	_, _, err = rs.Verify(2, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.One()})
	require.ErrorIs(t, err, arecibo.ErrProofVerify)
}

func TestIVCInvalidInitialInput(t *testing.T) {
	pp := testParams(t)
	_, err := arecibo.New(pp, squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
		[]fr1.Element{f1.FromUint64(2), f1.FromUint64(5)}, []fr2.Element{f2.Zero()})
	require.ErrorIs(t, err, arecibo.ErrInvalidInitialInput)
}

// A failing step must leave the snark unchanged and retryable.
func TestProveStepAtomicity(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 2)

	before, err := rs.MarshalBinary()
	require.NoError(t, err)

	err = rs.ProveStep(squareAddCircuit{fail: true}, arecibo.TrivialCircuit[fr2.Element]{})
	require.ErrorIs(t, err, arecibo.ErrStepExecution)
	require.Equal(t, uint64(2), rs.NumSteps())

	after, err := rs.MarshalBinary()
	require.NoError(t, err)
	require.True(t, bytes.Equal(before, after))

	// retry succeeds and the chain verifies
	require.NoError(t, rs.ProveStep(squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{}))
	znP, _, err := rs.Verify(3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.True(t, f1.Equal(znP[0], f1.FromUint64(1806)))
}

func TestRecursiveSNARKSerialization(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 2)

	data, err := rs.MarshalBinary()
	require.NoError(t, err)
	restored, err := arecibo.ReadRecursiveSNARK(pp, data)
	require.NoError(t, err)

	require.Equal(t, rs.NumSteps(), restored.NumSteps())
	znP, _, err := restored.Verify(2, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.True(t, f1.Equal(znP[0], f1.FromUint64(42)))

	// the restored snark keeps proving
	require.NoError(t, restored.ProveStep(squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{}))
	_, _, err = restored.Verify(3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)

	_, err = arecibo.ReadRecursiveSNARK(pp, data[:len(data)/2])
	require.Error(t, err)
}

func TestCompressedSNARK(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 3)

	cs, err := arecibo.Compress(pp, rs)
	require.NoError(t, err)

	znP, znS, err := cs.Verify(pp, 3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.True(t, f1.Equal(znP[0], f1.FromUint64(1806)))
	require.True(t, f2.IsZero(znS[0]))

	_, _, err = cs.Verify(pp, 2, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.ErrorIs(t, err, arecibo.ErrProofVerify)
	_, _, err = cs.Verify(pp, 3, []fr1.Element{f1.FromUint64(7)}, []fr2.Element{f2.Zero()})
	require.ErrorIs(t, err, arecibo.ErrProofVerify)

	data, err := cs.MarshalBinary(pp)
	require.NoError(t, err)
	restored, err := arecibo.ReadCompressedSNARK(pp, data)
	require.NoError(t, err)
	_, _, err = restored.Verify(pp, 3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
}

func TestCompressedSNARKTamperDetection(t *testing.T) {
	pp := testParams(t)
	rs := newChain(t, pp, 3)

	cs, err := arecibo.Compress(pp, rs)
	require.NoError(t, err)
	data, err := cs.MarshalBinary(pp)
	require.NoError(t, err)

	clone := func(t *testing.T) *arecibo.CompressedSNARK[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine] {
		t.Helper()
		c, err := arecibo.ReadCompressedSNARK(pp, data)
		require.NoError(t, err)
		return c
	}
	verify := func(c *arecibo.CompressedSNARK[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine]) error {
		_, _, err := c.Verify(pp, 3, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
		return err
	}
	require.NoError(t, verify(clone(t)))

	t.Run("running primary u", func(t *testing.T) {
		c := clone(t)
		c.RUPrimary.U = f1.Add(c.RUPrimary.U, f1.One())
		require.ErrorIs(t, verify(c), arecibo.ErrProofVerify)
	})
	t.Run("running secondary public input", func(t *testing.T) {
		c := clone(t)
		c.RUSecondary.X[0] = f2.Add(c.RUSecondary.X[0], f2.One())
		require.ErrorIs(t, verify(c), arecibo.ErrProofVerify)
	})
	t.Run("pending secondary witness commitment", func(t *testing.T) {
		c := clone(t)
		c.LUSecondary.CommW = pp.Scheme2.Add(c.LUSecondary.CommW, c.LUSecondary.CommW)
		require.ErrorIs(t, verify(c), arecibo.ErrProofVerify)
	})
}

func TestPublicParamsSerialization(t *testing.T) {
	pp := testParams(t)

	var buf bytes.Buffer
	_, err := pp.WriteTo(&buf)
	require.NoError(t, err)

	restored, err := arecibo.ReadPublicParams[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine](
		provider.BN254Engine{}, provider.GrumpkinEngine{}, &buf)
	require.NoError(t, err)
	require.Zero(t, pp.Digest().Cmp(restored.Digest()))

	// params read back prove and verify
	rs, err := arecibo.New(restored, squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
		[]fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.NoError(t, rs.ProveStep(squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{}))
	require.NoError(t, rs.ProveStep(squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{}))
	znP, _, err := rs.Verify(2, []fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.True(t, f1.Equal(znP[0], f1.FromUint64(42)))
}

func TestSetupStatistics(t *testing.T) {
	pp := testParams(t)

	consP, consS := pp.NumConstraints()
	varsP, varsS := pp.NumVariables()
	require.Equal(t, pp.Shape1.NumConstraints, consP)
	require.Equal(t, pp.Shape2.NumConstraints, consS)
	require.Equal(t, pp.Shape1.NumVars, varsP)
	require.Equal(t, pp.Shape2.NumVars, varsS)
	require.Positive(t, consP)
	require.Positive(t, consS)

	d, err := arecibo.CircuitDigest[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine](
		provider.BN254Engine{}, provider.GrumpkinEngine{}, true, squareAddCircuit{})
	require.NoError(t, err)
	require.Zero(t, d.Cmp(pp.Shape1.Digest()))
}

func TestSetupMinCommitmentSize(t *testing.T) {
	const want = 1 << 16
	pp, err := arecibo.Setup[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine](
		provider.BN254Engine{}, provider.GrumpkinEngine{},
		squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
		arecibo.WithMinCommitmentSize(want),
	)
	require.NoError(t, err)
	require.GreaterOrEqual(t, pp.Scheme1.Size(), want)
	require.GreaterOrEqual(t, pp.Scheme2.Size(), want)

	// the option survives serialization, so both sides agree on scheme size
	var buf bytes.Buffer
	_, err = pp.WriteTo(&buf)
	require.NoError(t, err)
	restored, err := arecibo.ReadPublicParams[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine](
		provider.BN254Engine{}, provider.GrumpkinEngine{}, &buf)
	require.NoError(t, err)
	require.Equal(t, pp.Scheme1.Size(), restored.Scheme1.Size())
	require.Equal(t, pp.Scheme2.Size(), restored.Scheme2.Size())
}

func TestSetupAndBaseStepLogging(t *testing.T) {
	var buf bytes.Buffer
	logger.Set(zerolog.New(&buf))
	defer logger.Disable()

	pp, err := arecibo.Setup[fr1.Element, fr2.Element, bn254.G1Affine, grumpkin.G1Affine](
		provider.BN254Engine{}, provider.GrumpkinEngine{},
		squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
	)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "public parameters derived")

	_, err = arecibo.New(pp, squareAddCircuit{}, arecibo.TrivialCircuit[fr2.Element]{},
		[]fr1.Element{f1.FromUint64(2)}, []fr2.Element{f2.Zero()})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "ivc base step")
}
