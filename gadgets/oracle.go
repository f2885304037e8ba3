package gadgets

import (
	"math/big"

	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/oracle"
)

// Oracle is the in-circuit form of the transcript hasher. It evaluates the
// same permutation as oracle.Oracle over allocated variables; a transcript
// absorbed here and one absorbed natively squeeze identical challenges.
type Oracle[S any] struct {
	cst      oracle.Constants[S]
	absorbed []frontend.Variable
}

// NewOracle returns an empty in-circuit oracle over the given constants.
func NewOracle[S any](cst oracle.Constants[S]) *Oracle[S] {
	return &Oracle[S]{cst: cst}
}

// Absorb appends variables to the transcript.
func (o *Oracle[S]) Absorb(vs ...frontend.Variable) {
	o.absorbed = append(o.absorbed, vs...)
}

func (o *Oracle[S]) encrypt(api frontend.API[S], k, x frontend.Variable) frontend.Variable {
	for i := 0; i < oracle.Rounds; i++ {
		t := api.AddConst(api.Add(x, k), o.cst.At(i))
		t2 := api.Square(t)
		t4 := api.Square(t2)
		x = api.Mul(t4, t)
	}
	return api.Add(x, k)
}

// SqueezeBits hashes the transcript and returns the low oracle.SqueezeBits
// bits of the digest, little-endian. The full decomposition is constrained
// below the modulus, so exactly one bit string satisfies the shape for a
// given transcript.
func (o *Oracle[S]) SqueezeBits(api frontend.API[S]) []frontend.Variable {
	f := api.Field()
	h := api.Constant(f.FromUint64(uint64(len(o.absorbed))))
	for _, a := range o.absorbed {
		e := o.encrypt(api, h, a)
		h = api.Add(api.Add(e, a), h)
	}
	bits := api.ToBits(h, f.BitLen())
	assertCanonical(api, bits)
	return bits[:oracle.SqueezeBits]
}

// assertCanonical enforces that little-endian bits recompose to a value at
// most q-1, where q is the native modulus. Without it, h and h+q (when the
// sum still fits the bit width) decompose to the same variable under the
// recomposition constraint alone.
func assertCanonical[S any](api frontend.API[S], bits []frontend.Variable) {
	bound := new(big.Int).Sub(api.Field().Modulus(), big.NewInt(1))
	zero := api.Constant(api.Field().Zero())
	eq := frontend.One
	for i := len(bits) - 1; i >= 0; i-- {
		if bound.Bit(i) == 1 {
			// bits may still match the bound here; the prefix stays
			// equal only when this bit is set.
			eq = api.Mul(eq, bits[i])
		} else {
			// a set bit where the bound has a zero, after an equal
			// prefix, would exceed the bound.
			api.AssertMul(eq, bits[i], zero)
		}
	}
}

// Squeeze returns the challenge packed into a single native variable.
func (o *Oracle[S]) Squeeze(api frontend.API[S]) frontend.Variable {
	return api.FromBits(o.SqueezeBits(api))
}
