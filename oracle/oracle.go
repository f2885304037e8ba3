// Package oracle implements the random oracle used to derive folding
// challenges and to hash running instances into circuit inputs.
//
// The construction is a MiMC permutation in Miyaguchi-Preneel mode: the
// absorbed elements are fed one by one through the keyed permutation and
// chained into the state. The gadgets package contains an in-circuit form
// that evaluates the exact same function over allocated variables; the two
// share the Constants table defined here, so a transcript hashed natively
// and a transcript hashed in-circuit agree element for element.
package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/banyancomputer/arecibo/fields"
)

// Rounds is the number of MiMC rounds. With exponent 5 over ~254-bit
// fields, 110 rounds exceeds the algebraic-attack bound with margin.
const Rounds = 110

// Exponent is the MiMC round exponent. It must be coprime to p-1 for the
// round function to be a permutation; this holds for both bn254 and
// grumpkin scalar fields.
const Exponent = 5

// SqueezeBits is the number of challenge bits produced by Squeeze. Keeping
// it below the bit length of either cycle field lets a challenge drawn over
// one field be re-interpreted over the other without reduction.
const SqueezeBits = 250

const constantsTag = "arecibo.oracle"

// Constants is the per-field round-constant table.
type Constants[B any] struct {
	f fields.Field[B]
	c []B
}

// NewConstants derives the round constants for field f from SHA-256 of a
// fixed tag and the round counter, reduced into f. The derivation is
// deterministic so both sides of a curve cycle recompute identical tables.
func NewConstants[B any](f fields.Field[B]) Constants[B] {
	// The exponent must generate a permutation x -> x^Exponent.
	pm1 := new(big.Int).Sub(f.Modulus(), big.NewInt(1))
	if new(big.Int).GCD(nil, nil, big.NewInt(Exponent), pm1).Cmp(big.NewInt(1)) != 0 {
		panic("oracle: exponent not coprime to p-1")
	}
	c := make([]B, Rounds)
	var buf [len(constantsTag) + 8]byte
	copy(buf[:], constantsTag)
	for i := 0; i < Rounds; i++ {
		binary.BigEndian.PutUint64(buf[len(constantsTag):], uint64(i))
		d := sha256.Sum256(buf[:])
		c[i] = f.FromBigInt(new(big.Int).SetBytes(d[:]))
	}
	return Constants[B]{f: f, c: c}
}

// Field returns the field the constants were derived for.
func (c Constants[B]) Field() fields.Field[B] { return c.f }

// At returns the round constant for round i.
func (c Constants[B]) At(i int) B { return c.c[i] }

// Encrypt runs the MiMC block cipher on plaintext x under key k:
// 110 rounds of x = (x + k + c_i)^5, followed by a final key addition.
func (c Constants[B]) Encrypt(k, x B) B {
	f := c.f
	for i := 0; i < Rounds; i++ {
		t := f.Add(f.Add(x, k), c.c[i])
		t2 := f.Mul(t, t)
		t4 := f.Mul(t2, t2)
		x = f.Mul(t4, t)
	}
	return f.Add(x, k)
}

// Oracle is a transcript hasher over field B. It is write-only until
// Squeeze, which consumes the transcript; an Oracle is not reusable after
// squeezing.
type Oracle[B any] struct {
	cst      Constants[B]
	absorbed []B
	squeezed bool
}

// New returns an empty oracle over the given constants.
func New[B any](cst Constants[B]) *Oracle[B] {
	return &Oracle[B]{cst: cst}
}

// Absorb appends elements to the transcript.
func (o *Oracle[B]) Absorb(vs ...B) {
	if o.squeezed {
		panic("oracle: absorb after squeeze")
	}
	o.absorbed = append(o.absorbed, vs...)
}

// Squeeze hashes the transcript and returns the low SqueezeBits bits of the
// digest's canonical representative. The transcript length is bound into
// the initial state, so transcripts of different lengths never collide by
// extension.
func (o *Oracle[B]) Squeeze() *big.Int {
	o.squeezed = true
	f := o.cst.f
	h := f.FromUint64(uint64(len(o.absorbed)))
	for _, a := range o.absorbed {
		// Miyaguchi-Preneel chaining.
		h = f.Add(f.Add(o.cst.Encrypt(h, a), a), h)
	}
	d := f.ToBigInt(h)
	mask := new(big.Int).Lsh(big.NewInt(1), SqueezeBits)
	mask.Sub(mask, big.NewInt(1))
	return d.And(d, mask)
}

// SqueezeField reduces the squeezed challenge into an arbitrary field. With
// SqueezeBits below the target field's bit length this is injective.
func SqueezeField[B, S any](o *Oracle[B], f fields.Field[S]) S {
	return f.FromBigInt(o.Squeeze())
}
