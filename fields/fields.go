// Package fields defines the scalar-field capability consumed by every
// component of the library.
//
// Concrete fields (bn254, grumpkin) are supplied by package provider; no
// field arithmetic is implemented here. Elements are opaque values of type
// S, manipulated only through the Field capability, so that the folding
// engine stays agnostic of the curve backend selected at construction time.
package fields

import "math/big"

// Field is the capability to perform arithmetic over a prime field with
// elements of type S. Implementations must be stateless and safe for
// concurrent use.
type Field[S any] interface {
	Zero() S
	One() S
	FromUint64(v uint64) S
	// FromBigInt reduces v modulo the field characteristic. v must be
	// non-negative.
	FromBigInt(v *big.Int) S
	// ToBigInt returns the canonical representative in [0, p).
	ToBigInt(a S) *big.Int
	Add(a, b S) S
	Sub(a, b S) S
	Mul(a, b S) S
	Neg(a S) S
	// Inverse returns (1/a, true), or (0, false) if a == 0.
	Inverse(a S) (S, bool)
	IsZero(a S) bool
	Equal(a, b S) bool
	// Rand returns a uniformly random element.
	Rand() (S, error)
	// Bytes returns the canonical big-endian encoding, fixed length.
	Bytes(a S) []byte
	// SetBytes decodes a canonical big-endian encoding as produced by Bytes.
	SetBytes(b []byte) (S, error)
	Modulus() *big.Int
	// BitLen is the bit length of the modulus.
	BitLen() int
}

// Limbs decomposes the canonical representative of a into nbLimbs limbs of
// limbBits bits each, little-endian. Limbs beyond the value's magnitude are
// zero.
func Limbs[S any](f Field[S], a S, nbLimbs, limbBits int) []uint64 {
	return BigIntLimbs(f.ToBigInt(a), nbLimbs, limbBits)
}

// BigIntLimbs decomposes v (non-negative) into nbLimbs limbs of limbBits
// bits each, little-endian.
func BigIntLimbs(v *big.Int, nbLimbs, limbBits int) []uint64 {
	if limbBits > 64 {
		panic("limbBits must be <= 64")
	}
	mask := new(big.Int).Lsh(big.NewInt(1), uint(limbBits))
	mask.Sub(mask, big.NewInt(1))
	r := make([]uint64, nbLimbs)
	t := new(big.Int).Set(v)
	limb := new(big.Int)
	for i := 0; i < nbLimbs; i++ {
		limb.And(t, mask)
		r[i] = limb.Uint64()
		t.Rsh(t, uint(limbBits))
	}
	return r
}

// FromLimbs recomposes little-endian limbs of limbBits bits into an integer.
func FromLimbs(limbs []uint64, limbBits int) *big.Int {
	v := new(big.Int)
	t := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		v.Lsh(v, uint(limbBits))
		v.Add(v, t.SetUint64(limbs[i]))
	}
	return v
}

// Bits returns the first nbBits little-endian bits of v's canonical
// representative.
func Bits(v *big.Int, nbBits int) []bool {
	r := make([]bool, nbBits)
	for i := 0; i < nbBits; i++ {
		r[i] = v.Bit(i) == 1
	}
	return r
}

// FromBits recomposes little-endian bits into an integer.
func FromBits(bits []bool) *big.Int {
	v := new(big.Int)
	for i, b := range bits {
		if b {
			v.SetBit(v, i, 1)
		}
	}
	return v
}
