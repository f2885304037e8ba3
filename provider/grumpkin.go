package provider

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	frBN254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	"github.com/consensys/gnark-crypto/ecc/grumpkin/fp"
	"github.com/consensys/gnark-crypto/ecc/grumpkin/fr"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
)

// GrumpkinField implements the field capability for the grumpkin scalar
// field, which is the bn254 base field.
type GrumpkinField struct{}

func (GrumpkinField) Zero() fr.Element { return fr.Element{} }

func (GrumpkinField) One() fr.Element {
	var e fr.Element
	e.SetOne()
	return e
}

func (GrumpkinField) FromUint64(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func (GrumpkinField) FromBigInt(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

func (GrumpkinField) ToBigInt(a fr.Element) *big.Int {
	return a.BigInt(new(big.Int))
}

func (GrumpkinField) Add(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Add(&a, &b)
	return r
}

func (GrumpkinField) Sub(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Sub(&a, &b)
	return r
}

func (GrumpkinField) Mul(a, b fr.Element) fr.Element {
	var r fr.Element
	r.Mul(&a, &b)
	return r
}

func (GrumpkinField) Neg(a fr.Element) fr.Element {
	var r fr.Element
	r.Neg(&a)
	return r
}

func (GrumpkinField) Inverse(a fr.Element) (fr.Element, bool) {
	if a.IsZero() {
		return fr.Element{}, false
	}
	var r fr.Element
	r.Inverse(&a)
	return r, true
}

func (GrumpkinField) IsZero(a fr.Element) bool { return a.IsZero() }

func (GrumpkinField) Equal(a, b fr.Element) bool { return a.Equal(&b) }

func (GrumpkinField) Rand() (fr.Element, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return fr.Element{}, err
	}
	return e, nil
}

func (GrumpkinField) Bytes(a fr.Element) []byte {
	b := a.Bytes()
	return b[:]
}

func (GrumpkinField) SetBytes(b []byte) (fr.Element, error) {
	var e fr.Element
	if err := e.SetBytesCanonical(b); err != nil {
		return fr.Element{}, err
	}
	return e, nil
}

func (GrumpkinField) Modulus() *big.Int { return fr.Modulus() }

func (GrumpkinField) BitLen() int { return fr.Bits }

// GrumpkinPedersen is a Pedersen vector commitment over grumpkin.
type GrumpkinPedersen struct {
	gens []grumpkin.G1Affine
}

const grumpkinGeneratorTag = "arecibo.pedersen.grumpkin"

// NewGrumpkinPedersen derives size generators deterministically.
func NewGrumpkinPedersen(size int) *GrumpkinPedersen {
	// grumpkin: y^2 = x^3 - 17
	var b17 fp.Element
	b17.SetUint64(17)
	b17.Neg(&b17)
	gens := make([]grumpkin.G1Affine, size)
	var buf [len(grumpkinGeneratorTag) + 8]byte
	copy(buf[:], grumpkinGeneratorTag)
	var ctr uint64
	for i := 0; i < size; {
		binary.BigEndian.PutUint64(buf[len(grumpkinGeneratorTag):], ctr)
		ctr++
		d := sha256.Sum256(buf[:])
		var x, y, y2 fp.Element
		x.SetBytes(d[:])
		y2.Square(&x)
		y2.Mul(&y2, &x)
		y2.Add(&y2, &b17)
		if y.Sqrt(&y2) == nil {
			continue
		}
		gens[i].X, gens[i].Y = x, y
		i++
	}
	return &GrumpkinPedersen{gens: gens}
}

func (p *GrumpkinPedersen) Scalars() fields.Field[fr.Element] { return GrumpkinField{} }

func (p *GrumpkinPedersen) Size() int { return len(p.gens) }

func (p *GrumpkinPedersen) Commit(v []fr.Element) (grumpkin.G1Affine, error) {
	if len(v) > len(p.gens) {
		return grumpkin.G1Affine{}, fmt.Errorf("pedersen: vector of %d exceeds %d generators", len(v), len(p.gens))
	}
	var r grumpkin.G1Affine
	if _, err := r.MultiExp(p.gens[:len(v)], v, ecc.MultiExpConfig{}); err != nil {
		return grumpkin.G1Affine{}, err
	}
	return r, nil
}

func (p *GrumpkinPedersen) Identity() grumpkin.G1Affine { return grumpkin.G1Affine{} }

func (p *GrumpkinPedersen) Add(a, b grumpkin.G1Affine) grumpkin.G1Affine {
	var j grumpkin.G1Jac
	j.FromAffine(&a)
	j.AddMixed(&b)
	var r grumpkin.G1Affine
	r.FromJacobian(&j)
	return r
}

func (p *GrumpkinPedersen) ScalarMul(a grumpkin.G1Affine, s fr.Element) grumpkin.G1Affine {
	var r grumpkin.G1Affine
	r.ScalarMultiplication(&a, s.BigInt(new(big.Int)))
	return r
}

func (p *GrumpkinPedersen) Equal(a, b grumpkin.G1Affine) bool { return a.Equal(&b) }

func (p *GrumpkinPedersen) Bytes(a grumpkin.G1Affine) []byte {
	b := a.Bytes()
	return b[:]
}

func (p *GrumpkinPedersen) SetBytes(b []byte) (grumpkin.G1Affine, error) {
	var r grumpkin.G1Affine
	if _, err := r.SetBytes(b); err != nil {
		return grumpkin.G1Affine{}, err
	}
	return r, nil
}

// GrumpkinEngine is the secondary side of the cycle.
type GrumpkinEngine struct{}

func (GrumpkinEngine) Name() string { return "grumpkin" }

func (GrumpkinEngine) Scalars() fields.Field[fr.Element] { return GrumpkinField{} }

func (GrumpkinEngine) Base() fields.Field[frBN254.Element] { return BN254Field{} }

func (GrumpkinEngine) NewScheme(size int) commitment.Scheme[fr.Element, grumpkin.G1Affine] {
	return NewGrumpkinPedersen(size)
}

// Coordinates opens a commitment into affine coordinates over the base
// field, converting grumpkin coordinates to bn254 scalars in place.
func (GrumpkinEngine) Coordinates(p grumpkin.G1Affine) (x, y frBN254.Element, inf bool) {
	if p.IsInfinity() {
		return frBN254.Element{}, frBN254.Element{}, true
	}
	return frBN254.Element(p.X), frBN254.Element(p.Y), false
}

// CurveB is the Weierstrass constant of grumpkin, y^2 = x^3 - 17,
// expressed in the base field type.
func (GrumpkinEngine) CurveB() frBN254.Element {
	var b frBN254.Element
	b.SetUint64(17)
	b.Neg(&b)
	return b
}
