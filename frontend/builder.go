// Package frontend provides the circuit builder used to synthesize the
// augmented circuit into a constraint shape and a satisfying assignment.
//
// Synthesis is value-carrying: every allocation records a concrete field
// element, and the same synthesis pass yields both the shape (setup, run
// with zero inputs) and the witness (proving, run with real inputs). All
// hints used by the builder are total functions, so the constraint trace is
// independent of the values and the two passes produce identical shapes.
package frontend

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/banyancomputer/arecibo/fields"
)

// API is the synthesis surface handed to circuits. Operations never return
// errors; failures are recorded in the builder and surfaced when the shape
// or assignment is extracted.
type API[S any] interface {
	Field() fields.Field[S]

	// Alloc introduces a private variable with the given value.
	Alloc(v S) Variable
	// AllocPublic introduces the next public input. Public inputs are
	// ordered by allocation.
	AllocPublic(v S) Variable
	// Constant introduces a private variable pinned to c.
	Constant(c S) Variable
	// Value reads the current assignment of a variable, for computing
	// hint values.
	Value(v Variable) S

	Add(a, b Variable) Variable
	Sub(a, b Variable) Variable
	Neg(a Variable) Variable
	AddConst(a Variable, k S) Variable
	MulConst(a Variable, k S) Variable
	Mul(a, b Variable) Variable
	Square(a Variable) Variable
	// Select returns a if cond is 1, b if cond is 0. cond must have been
	// asserted boolean by the caller.
	Select(cond, a, b Variable) Variable
	// IsZero returns 1 if a is 0, else 0.
	IsZero(a Variable) Variable

	AssertEqual(a, b Variable)
	// AssertMul enforces a*b = c for a caller-allocated c.
	AssertMul(a, b, c Variable)
	AssertBoolean(a Variable)

	// ToBits decomposes a into n little-endian bits, each asserted
	// boolean. The assignment must fit in n bits.
	ToBits(a Variable, n int) []Variable
	// FromBits recomposes little-endian bits.
	FromBits(bits []Variable) Variable
}

type constraintTriple[S any] struct {
	a, b, c LinearExpression[S]
}

// Builder accumulates constraints and the assignment. It implements API.
type Builder[S any] struct {
	f fields.Field[S]

	auxValues    []S
	publicValues []S
	constraints  []constraintTriple[S]

	// booleanity constraints are deduplicated per variable
	boolAux    *bitset.BitSet
	boolPublic *bitset.BitSet

	// constants are deduplicated by canonical encoding
	constants map[string]Variable

	err error
}

// NewBuilder returns an empty builder over f.
func NewBuilder[S any](f fields.Field[S]) *Builder[S] {
	return &Builder[S]{
		f:          f,
		boolAux:    bitset.New(64),
		boolPublic: bitset.New(8),
		constants:  make(map[string]Variable),
	}
}

func (b *Builder[S]) Field() fields.Field[S] { return b.f }

// NumConstraints is the number of constraints emitted so far.
func (b *Builder[S]) NumConstraints() int { return len(b.constraints) }

func (b *Builder[S]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder[S]) Alloc(v S) Variable {
	b.auxValues = append(b.auxValues, v)
	return Variable{Kind: KindAux, Index: uint32(len(b.auxValues) - 1)}
}

func (b *Builder[S]) AllocPublic(v S) Variable {
	b.publicValues = append(b.publicValues, v)
	return Variable{Kind: KindPublic, Index: uint32(len(b.publicValues) - 1)}
}

func (b *Builder[S]) Constant(c S) Variable {
	key := string(b.f.Bytes(c))
	if v, ok := b.constants[key]; ok {
		return v
	}
	v := b.Alloc(c)
	// v * 1 = c * one
	b.addConstraint(b.lc(v), b.lcOne(), LinearExpression[S]{{Coeff: c, V: One}})
	b.constants[key] = v
	return v
}

func (b *Builder[S]) Value(v Variable) S {
	switch v.Kind {
	case KindOne:
		return b.f.One()
	case KindAux:
		return b.auxValues[v.Index]
	default:
		return b.publicValues[v.Index]
	}
}

func (b *Builder[S]) lc(v Variable) LinearExpression[S] {
	return LinearExpression[S]{{Coeff: b.f.One(), V: v}}
}

func (b *Builder[S]) lcOne() LinearExpression[S] {
	return LinearExpression[S]{{Coeff: b.f.One(), V: One}}
}

func (b *Builder[S]) addConstraint(a, bb, c LinearExpression[S]) {
	b.constraints = append(b.constraints, constraintTriple[S]{a: a, b: bb, c: c})
}

func (b *Builder[S]) Add(x, y Variable) Variable {
	res := b.Alloc(b.f.Add(b.Value(x), b.Value(y)))
	b.addConstraint(
		LinearExpression[S]{{Coeff: b.f.One(), V: x}, {Coeff: b.f.One(), V: y}},
		b.lcOne(),
		b.lc(res),
	)
	return res
}

func (b *Builder[S]) Sub(x, y Variable) Variable {
	res := b.Alloc(b.f.Sub(b.Value(x), b.Value(y)))
	b.addConstraint(
		LinearExpression[S]{{Coeff: b.f.One(), V: x}, {Coeff: b.f.Neg(b.f.One()), V: y}},
		b.lcOne(),
		b.lc(res),
	)
	return res
}

func (b *Builder[S]) Neg(x Variable) Variable {
	res := b.Alloc(b.f.Neg(b.Value(x)))
	b.addConstraint(
		LinearExpression[S]{{Coeff: b.f.Neg(b.f.One()), V: x}},
		b.lcOne(),
		b.lc(res),
	)
	return res
}

func (b *Builder[S]) AddConst(x Variable, k S) Variable {
	res := b.Alloc(b.f.Add(b.Value(x), k))
	b.addConstraint(
		LinearExpression[S]{{Coeff: b.f.One(), V: x}, {Coeff: k, V: One}},
		b.lcOne(),
		b.lc(res),
	)
	return res
}

func (b *Builder[S]) MulConst(x Variable, k S) Variable {
	res := b.Alloc(b.f.Mul(b.Value(x), k))
	b.addConstraint(
		LinearExpression[S]{{Coeff: k, V: x}},
		b.lcOne(),
		b.lc(res),
	)
	return res
}

func (b *Builder[S]) Mul(x, y Variable) Variable {
	res := b.Alloc(b.f.Mul(b.Value(x), b.Value(y)))
	b.addConstraint(b.lc(x), b.lc(y), b.lc(res))
	return res
}

func (b *Builder[S]) Square(x Variable) Variable {
	return b.Mul(x, x)
}

func (b *Builder[S]) Select(cond, x, y Variable) Variable {
	var v S
	if b.f.IsZero(b.Value(cond)) {
		v = b.Value(y)
	} else {
		v = b.Value(x)
	}
	res := b.Alloc(v)
	// cond * (x - y) = res - y
	b.addConstraint(
		b.lc(cond),
		LinearExpression[S]{{Coeff: b.f.One(), V: x}, {Coeff: b.f.Neg(b.f.One()), V: y}},
		LinearExpression[S]{{Coeff: b.f.One(), V: res}, {Coeff: b.f.Neg(b.f.One()), V: y}},
	)
	return res
}

func (b *Builder[S]) IsZero(x Variable) Variable {
	xv := b.Value(x)
	var mv, yv S
	if inv, ok := b.f.Inverse(xv); ok {
		mv, yv = inv, b.f.Zero()
	} else {
		mv, yv = b.f.Zero(), b.f.One()
	}
	m := b.Alloc(mv)
	y := b.Alloc(yv)
	// x*m = 1 - y and x*y = 0 pin y to the indicator of x == 0.
	b.addConstraint(b.lc(x), b.lc(m),
		LinearExpression[S]{{Coeff: b.f.One(), V: One}, {Coeff: b.f.Neg(b.f.One()), V: y}})
	b.addConstraint(b.lc(x), b.lc(y), nil)
	return y
}

func (b *Builder[S]) AssertEqual(x, y Variable) {
	b.addConstraint(
		LinearExpression[S]{{Coeff: b.f.One(), V: x}, {Coeff: b.f.Neg(b.f.One()), V: y}},
		b.lcOne(),
		nil,
	)
}

func (b *Builder[S]) AssertMul(x, y, z Variable) {
	b.addConstraint(b.lc(x), b.lc(y), b.lc(z))
}

func (b *Builder[S]) AssertBoolean(x Variable) {
	switch x.Kind {
	case KindOne:
		return
	case KindAux:
		if b.boolAux.Test(uint(x.Index)) {
			return
		}
		b.boolAux.Set(uint(x.Index))
	case KindPublic:
		if b.boolPublic.Test(uint(x.Index)) {
			return
		}
		b.boolPublic.Set(uint(x.Index))
	}
	// x * (x - 1) = 0
	b.addConstraint(
		b.lc(x),
		LinearExpression[S]{{Coeff: b.f.One(), V: x}, {Coeff: b.f.Neg(b.f.One()), V: One}},
		nil,
	)
}

func (b *Builder[S]) ToBits(x Variable, n int) []Variable {
	v := b.f.ToBigInt(b.Value(x))
	if v.BitLen() > n {
		b.fail(fmt.Errorf("%w: value of %d bits does not fit in %d", ErrSynthesis, v.BitLen(), n))
	}
	bits := make([]Variable, n)
	sum := make(LinearExpression[S], n)
	coeff := b.f.One()
	two := b.f.FromUint64(2)
	for i := 0; i < n; i++ {
		bv := b.f.Zero()
		if v.Bit(i) == 1 {
			bv = b.f.One()
		}
		bits[i] = b.Alloc(bv)
		b.AssertBoolean(bits[i])
		sum[i] = Term[S]{Coeff: coeff, V: bits[i]}
		coeff = b.f.Mul(coeff, two)
	}
	b.addConstraint(sum, b.lcOne(), b.lc(x))
	return bits
}

func (b *Builder[S]) FromBits(bits []Variable) Variable {
	acc := b.f.Zero()
	coeff := b.f.One()
	two := b.f.FromUint64(2)
	sum := make(LinearExpression[S], 0, len(bits)+1)
	for _, bit := range bits {
		if !b.f.IsZero(b.Value(bit)) {
			acc = b.f.Add(acc, coeff)
		}
		sum = append(sum, Term[S]{Coeff: coeff, V: bit})
		coeff = b.f.Mul(coeff, two)
	}
	res := b.Alloc(acc)
	b.addConstraint(sum, b.lcOne(), b.lc(res))
	return res
}
