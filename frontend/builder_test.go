package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/provider"
	"github.com/banyancomputer/arecibo/r1cs"
)

var f = provider.BN254Field{}

// satisfied extracts shape and assignment from b and checks satisfaction.
func satisfied(t *testing.T, b *frontend.Builder[fr.Element]) {
	t.Helper()
	shape, err := b.Shape()
	require.NoError(t, err)
	size := shape.NumVars
	if shape.NumConstraints > size {
		size = shape.NumConstraints
	}
	sch := provider.NewBN254Pedersen(size)
	inst, wit, err := frontend.InstanceWitness[fr.Element, bn254.G1Affine](b, sch)
	require.NoError(t, err)
	require.NoError(t, r1cs.IsSat(shape, sch, inst, wit))
}

func TestArithmeticOps(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	x := b.Alloc(f.FromUint64(6))
	y := b.Alloc(f.FromUint64(7))

	require.True(t, f.Equal(b.Value(b.Add(x, y)), f.FromUint64(13)))
	require.True(t, f.Equal(b.Value(b.Sub(y, x)), f.FromUint64(1)))
	require.True(t, f.Equal(b.Value(b.Mul(x, y)), f.FromUint64(42)))
	require.True(t, f.Equal(b.Value(b.Square(x)), f.FromUint64(36)))
	require.True(t, f.Equal(b.Value(b.AddConst(x, f.FromUint64(4))), f.FromUint64(10)))
	require.True(t, f.Equal(b.Value(b.MulConst(x, f.FromUint64(3))), f.FromUint64(18)))
	require.True(t, f.Equal(b.Value(b.Neg(x)), f.Neg(f.FromUint64(6))))
	satisfied(t, b)
}

func TestIsZero(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	z := b.Alloc(f.Zero())
	nz := b.Alloc(f.FromUint64(5))
	require.True(t, f.Equal(b.Value(b.IsZero(z)), f.One()))
	require.True(t, f.Equal(b.Value(b.IsZero(nz)), f.Zero()))
	satisfied(t, b)
}

func TestSelect(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	one := b.Constant(f.One())
	zero := b.Constant(f.Zero())
	x := b.Alloc(f.FromUint64(10))
	y := b.Alloc(f.FromUint64(20))
	require.True(t, f.Equal(b.Value(b.Select(one, x, y)), f.FromUint64(10)))
	require.True(t, f.Equal(b.Value(b.Select(zero, x, y)), f.FromUint64(20)))
	satisfied(t, b)
}

func TestBitsRoundTrip(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	x := b.Alloc(f.FromUint64(0b1011_0110))
	bits := b.ToBits(x, 8)
	back := b.FromBits(bits)
	require.True(t, f.Equal(b.Value(back), b.Value(x)))
	satisfied(t, b)
}

func TestToBitsOverflow(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	x := b.Alloc(f.FromUint64(256))
	b.ToBits(x, 8)
	_, err := b.Shape()
	require.ErrorIs(t, err, frontend.ErrSynthesis)
}

func TestBooleanDedup(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	x := b.Alloc(f.One())
	b.AssertBoolean(x)
	n := b.NumConstraints()
	b.AssertBoolean(x)
	require.Equal(t, n, b.NumConstraints())
	satisfied(t, b)
}

func TestConstantDedup(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	c1 := b.Constant(f.FromUint64(42))
	c2 := b.Constant(f.FromUint64(42))
	require.Equal(t, c1, c2)
}

func TestPublicInputs(t *testing.T) {
	b := frontend.NewBuilder[fr.Element](f)
	x := b.Alloc(f.FromUint64(3))
	sq := b.Square(x)
	y := b.AllocPublic(b.Value(sq))
	b.AssertEqual(y, sq)

	shape, err := b.Shape()
	require.NoError(t, err)
	require.Equal(t, 1, shape.NumPublic)
	satisfied(t, b)
}

// The constraint trace must not depend on the bound values: synthesizing
// the same circuit with different assignments yields the same shape.
func TestShapeDeterminism(t *testing.T) {
	synth := func(x uint64) *r1cs.Shape[fr.Element] {
		b := frontend.NewBuilder[fr.Element](f)
		xv := b.Alloc(f.FromUint64(x))
		iz := b.IsZero(xv)
		sel := b.Select(iz, b.Constant(f.One()), b.Square(xv))
		y := b.AllocPublic(b.Value(sel))
		b.AssertEqual(y, sel)
		shape, err := b.Shape()
		require.NoError(t, err)
		return shape
	}
	a := synth(0)
	c := synth(12345)
	require.Equal(t, a.NumConstraints, c.NumConstraints)
	require.Equal(t, a.NumVars, c.NumVars)
	require.Zero(t, a.Digest().Cmp(c.Digest()))
}
