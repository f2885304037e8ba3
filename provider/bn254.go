// Package provider supplies the concrete curve backends of the folding
// engine: field arithmetic, Pedersen vector commitments and the engine
// wiring for the bn254/grumpkin cycle.
//
// The two curves form a cycle: the base field of each is the scalar field
// of the other. Coordinate values cross the package boundary between the
// two field implementations by direct representation conversion, which is
// valid because the moduli coincide.
package provider

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	frGrumpkin "github.com/consensys/gnark-crypto/ecc/grumpkin/fr"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
)

// BN254Field implements the field capability for the bn254 scalar field.
type BN254Field struct{}

func (BN254Field) Zero() fr.Element { return fr.Element{} }

func (BN254Field) One() fr.Element {
	var e fr.Element
	e.SetOne()
	return e
}

func (BN254Field) FromUint64(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func (BN254Field) FromBigInt(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

func (BN254Field) ToBigInt(a fr.Element) *big.Int {
	return a.BigInt(new(big.Int))
}

func (BN254Field) Add(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Add(&a, &b)
	return r
}

func (BN254Field) Sub(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Sub(&a, &b)
	return r
}

func (BN254Field) Mul(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Mul(&a, &b)
	return r
}

func (BN254Field) Neg(a fr.Element) fr.Element {
	var r fr.Element
	r.Neg(&a)
	return r
}

func (BN254Field) Inverse(a fr.Element) (fr.Element, bool) {
	if a.IsZero() {
		return fr.Element{}, false
	}
	var r fr.Element
	r.Inverse(&a)
	return r, true
}

func (BN254Field) IsZero(a fr.Element) bool { return a.IsZero() }

func (BN254Field) Equal(a, b fr.Element) bool { return a.Equal(&b) }

func (BN254Field) Rand() (fr.Element, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return fr.Element{}, err
	}
	return e, nil
}

func (BN254Field) Bytes(a fr.Element) []byte {
	b := a.Bytes()
	return b[:]
}

func (BN254Field) SetBytes(b []byte) (fr.Element, error) {
	var e fr.Element
	if err := e.SetBytesCanonical(b); err != nil {
		return fr.Element{}, err
	}
	return e, nil
}

func (BN254Field) Modulus() *big.Int { return fr.Modulus() }

func (BN254Field) BitLen() int { return fr.Bits }

// BN254Pedersen is a Pedersen vector commitment over bn254 G1, with
// generators derived by try-and-increment hashing.
type BN254Pedersen struct {
	gens []bn254.G1Affine
}

const bn254GeneratorTag = "arecibo.pedersen.bn254"

// NewBN254Pedersen derives size generators deterministically.
func NewBN254Pedersen(size int) *BN254Pedersen {
	var b3 fp.Element
	b3.SetUint64(3)
	gens := make([]bn254.G1Affine, size)
	var buf [len(bn254GeneratorTag) + 8]byte
	copy(buf[:], bn254GeneratorTag)
	var ctr uint64
	for i := 0; i < size; {
		binary.BigEndian.PutUint64(buf[len(bn254GeneratorTag):], ctr)
		ctr++
		d := sha256.Sum256(buf[:])
		var x, y, y2 fp.Element
		x.SetBytes(d[:])
		y2.Square(&x)
		y2.Mul(&y2, &x)
		y2.Add(&y2, &b3)
		if y.Sqrt(&y2) == nil {
			continue
		}
		// cofactor one, so any curve point is in the group
		gens[i].X, gens[i].Y = x, y
		i++
	}
	return &BN254Pedersen{gens: gens}
}

func (p *BN254Pedersen) Scalars() fields.Field[fr.Element] { return BN254Field{} }

func (p *BN254Pedersen) Size() int { return len(p.gens) }

func (p *BN254Pedersen) Commit(v []fr.Element) (bn254.G1Affine, error) {
	if len(v) > len(p.gens) {
		return bn254.G1Affine{}, fmt.Errorf("pedersen: vector of %d exceeds %d generators", len(v), len(p.gens))
	}
	var r bn254.G1Affine
	if _, err := r.MultiExp(p.gens[:len(v)], v, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	return r, nil
}

func (p *BN254Pedersen) Identity() bn254.G1Affine { return bn254.G1Affine{} }

func (p *BN254Pedersen) Add(a, b bn254.G1Affine) bn254.G1Affine {
	var j bn254.G1Jac
	j.FromAffine(&a)
	j.AddMixed(&b)
	var r bn254.G1Affine
	r.FromJacobian(&j)
	return r
}

func (p *BN254Pedersen) ScalarMul(a bn254.G1Affine, s fr.Element) bn254.G1Affine {
	var r bn254.G1Affine
	r.ScalarMultiplication(&a, s.BigInt(new(big.Int)))
	return r
}

func (p *BN254Pedersen) Equal(a, b bn254.G1Affine) bool { return a.Equal(&b) }

func (p *BN254Pedersen) Bytes(a bn254.G1Affine) []byte {
	b := a.Bytes()
	return b[:]
}

func (p *BN254Pedersen) SetBytes(b []byte) (bn254.G1Affine, error) {
	var r bn254.G1Affine
	if _, err := r.SetBytes(b); err != nil {
		return bn254.G1Affine{}, err
	}
	return r, nil
}

// BN254Engine is the primary side of the cycle: scalars over bn254-Fr,
// commitments on bn254 G1, base field shared with the grumpkin scalars.
type BN254Engine struct{}

func (BN254Engine) Name() string { return "bn254" }

func (BN254Engine) Scalars() fields.Field[fr.Element] { return BN254Field{} }

func (BN254Engine) Base() fields.Field[frGrumpkin.Element] { return GrumpkinField{} }

func (BN254Engine) NewScheme(size int) commitment.Scheme[fr.Element, bn254.G1Affine] {
	return NewBN254Pedersen(size)
}

// Coordinates opens a commitment into affine coordinates over the base
// field. bn254 coordinates convert to grumpkin scalars representation-wise
// because the moduli are equal.
func (BN254Engine) Coordinates(p bn254.G1Affine) (x, y frGrumpkin.Element, inf bool) {
	if p.IsInfinity() {
		return frGrumpkin.Element{}, frGrumpkin.Element{}, true
	}
	return frGrumpkin.Element(p.X), frGrumpkin.Element(p.Y), false
}

// CurveB is the Weierstrass constant of bn254, y^2 = x^3 + 3, expressed in
// the base field type.
func (BN254Engine) CurveB() frGrumpkin.Element {
	var b frGrumpkin.Element
	b.SetUint64(3)
	return b
}
