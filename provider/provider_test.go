package provider_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/provider"
)

func fieldAxioms[S any](t *testing.T, f fields.Field[S]) {
	t.Helper()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	gen := gopter.Gen(func(p *gopter.GenParameters) *gopter.GenResult {
		e, err := f.Rand()
		require.NoError(t, err)
		return gopter.NewGenResult(e, gopter.NoShrinker)
	})

	properties.Property("commutative", prop.ForAll(
		func(a, b S) bool {
			return f.Equal(f.Add(a, b), f.Add(b, a)) && f.Equal(f.Mul(a, b), f.Mul(b, a))
		}, gen, gen,
	))
	properties.Property("distributive", prop.ForAll(
		func(a, b, c S) bool {
			lhs := f.Mul(a, f.Add(b, c))
			rhs := f.Add(f.Mul(a, b), f.Mul(a, c))
			return f.Equal(lhs, rhs)
		}, gen, gen, gen,
	))
	properties.Property("sub inverts add", prop.ForAll(
		func(a, b S) bool {
			return f.Equal(f.Sub(f.Add(a, b), b), a)
		}, gen, gen,
	))
	properties.Property("neg", prop.ForAll(
		func(a S) bool {
			return f.IsZero(f.Add(a, f.Neg(a)))
		}, gen,
	))
	properties.Property("inverse", prop.ForAll(
		func(a S) bool {
			if f.IsZero(a) {
				_, ok := f.Inverse(a)
				return !ok
			}
			inv, ok := f.Inverse(a)
			return ok && f.Equal(f.Mul(a, inv), f.One())
		}, gen,
	))
	properties.Property("bytes round trip", prop.ForAll(
		func(a S) bool {
			b, err := f.SetBytes(f.Bytes(a))
			return err == nil && f.Equal(a, b)
		}, gen,
	))
	properties.Property("bigint round trip", prop.ForAll(
		func(a S) bool {
			return f.Equal(a, f.FromBigInt(f.ToBigInt(a)))
		}, gen,
	))

	properties.TestingRun(t)
}

func TestBN254FieldAxioms(t *testing.T) {
	fieldAxioms(t, provider.BN254Field{})
}

func TestGrumpkinFieldAxioms(t *testing.T) {
	fieldAxioms(t, provider.GrumpkinField{})
}

func randVec[S any](t *testing.T, f fields.Field[S], n int) []S {
	t.Helper()
	v := make([]S, n)
	for i := range v {
		e, err := f.Rand()
		require.NoError(t, err)
		v[i] = e
	}
	return v
}

func pedersenSuite[S, C any](t *testing.T, f fields.Field[S], sch commitment.Scheme[S, C]) {
	t.Helper()

	v1 := randVec(t, f, sch.Size())
	v2 := randVec(t, f, sch.Size())
	r, err := f.Rand()
	require.NoError(t, err)

	c1, err := sch.Commit(v1)
	require.NoError(t, err)
	c2, err := sch.Commit(v2)
	require.NoError(t, err)

	// Commit(v1 + r*v2) = Commit(v1) + r*Commit(v2)
	sum := make([]S, len(v1))
	for i := range sum {
		sum[i] = f.Add(v1[i], f.Mul(r, v2[i]))
	}
	want, err := sch.Commit(sum)
	require.NoError(t, err)
	got := sch.Add(c1, sch.ScalarMul(c2, r))
	require.True(t, sch.Equal(want, got))

	// short vectors commit as if zero padded
	short, err := sch.Commit(v1[:3])
	require.NoError(t, err)
	padded := make([]S, sch.Size())
	copy(padded, v1[:3])
	full, err := sch.Commit(padded)
	require.NoError(t, err)
	require.True(t, sch.Equal(short, full))

	// empty vector commits to the identity
	id, err := sch.Commit(nil)
	require.NoError(t, err)
	require.True(t, sch.Equal(id, sch.Identity()))

	// oversized vectors are rejected
	_, err = sch.Commit(randVec(t, f, sch.Size()+1))
	require.Error(t, err)

	// point serialization round trip
	back, err := sch.SetBytes(sch.Bytes(c1))
	require.NoError(t, err)
	require.True(t, sch.Equal(c1, back))
}

func TestBN254Pedersen(t *testing.T) {
	pedersenSuite(t, provider.BN254Field{}, provider.NewBN254Pedersen(16))
}

func TestGrumpkinPedersen(t *testing.T) {
	pedersenSuite(t, provider.GrumpkinField{}, provider.NewGrumpkinPedersen(16))
}

func TestPedersenDeterministicGenerators(t *testing.T) {
	f := provider.BN254Field{}
	v := randVec(t, f, 8)

	a, err := provider.NewBN254Pedersen(8).Commit(v)
	require.NoError(t, err)
	b, err := provider.NewBN254Pedersen(8).Commit(v)
	require.NoError(t, err)
	require.True(t, a.Equal(&b))

	// a larger scheme shares the prefix generators
	c, err := provider.NewBN254Pedersen(32).Commit(v)
	require.NoError(t, err)
	require.True(t, a.Equal(&c))
}

// Coordinates cross the cycle by representation conversion; the integer
// values must survive the type change.
func TestCoordinatesCrossCycle(t *testing.T) {
	e1 := provider.BN254Engine{}
	e2 := provider.GrumpkinEngine{}

	s, err := provider.BN254Field{}.Rand()
	require.NoError(t, err)
	_, _, g, _ := bn254.Generators()
	var p bn254.G1Affine
	p.ScalarMultiplication(&g, s.BigInt(new(big.Int)))

	x, y, inf := e1.Coordinates(p)
	require.False(t, inf)
	base := provider.GrumpkinField{}
	require.Zero(t, base.ToBigInt(x).Cmp(p.X.BigInt(new(big.Int))))
	require.Zero(t, base.ToBigInt(y).Cmp(p.Y.BigInt(new(big.Int))))

	// on-curve in the converted representation: y^2 = x^3 + 3
	y2 := base.Mul(y, y)
	x3 := base.Mul(base.Mul(x, x), x)
	require.True(t, base.Equal(y2, base.Add(x3, e1.CurveB())))

	_, gg := grumpkin.Generators()
	var q grumpkin.G1Affine
	sg, err := provider.GrumpkinField{}.Rand()
	require.NoError(t, err)
	q.ScalarMultiplication(&gg, sg.BigInt(new(big.Int)))

	qx, qy, inf := e2.Coordinates(q)
	require.False(t, inf)
	base2 := provider.BN254Field{}
	require.Zero(t, base2.ToBigInt(qx).Cmp(q.X.BigInt(new(big.Int))))
	require.Zero(t, base2.ToBigInt(qy).Cmp(q.Y.BigInt(new(big.Int))))

	qy2 := base2.Mul(qy, qy)
	qx3 := base2.Mul(base2.Mul(qx, qx), qx)
	require.True(t, base2.Equal(qy2, base2.Add(qx3, e2.CurveB())))

	_, _, infFlag := e1.Coordinates(bn254.G1Affine{})
	require.True(t, infFlag)
}
