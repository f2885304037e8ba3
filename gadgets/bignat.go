// Package gadgets contains the circuit components of the folding verifier:
// non-native scalar arithmetic, curve arithmetic over the commitment curve,
// the in-circuit random oracle, and allocated forms of folding instances.
//
// Every gadget mirrors a native computation elsewhere in the library and
// must stay bit-for-bit aligned with it: the oracle gadget with package
// oracle, the instance gadgets with the transcript absorber of package
// r1cs, the fold gadgets with the folding arithmetic of package nifs.
package gadgets

import (
	"math/big"

	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/frontend"
)

// BigNat limb layout. A BigNat represents a scalar of the non-native field
// as little-endian 64-bit limbs allocated in the native field. The layout
// matches the limb form used by the native transcript absorber.
const (
	numLimbs = 4
	limbBits = 64
	// carryBound bounds the signed carries of the fold carry chain;
	// they are range checked after shifting by 2^carryBound.
	carryBound = 68
)

// BigNat is a non-native field element in limb form. Limbs are always
// range checked to limbBits at allocation.
type BigNat struct {
	Limbs [numLimbs]frontend.Variable
}

// AllocBigNat allocates v (a canonical non-native value) in limb form,
// range checking each limb.
func AllocBigNat[S any](api frontend.API[S], v *big.Int) BigNat {
	f := api.Field()
	var n BigNat
	for i, l := range fields.BigIntLimbs(v, numLimbs, limbBits) {
		n.Limbs[i] = api.Alloc(f.FromUint64(l))
		api.ToBits(n.Limbs[i], limbBits)
	}
	return n
}

// BigNatConstant introduces v as a constant in limb form. Constants need
// no range check.
func BigNatConstant[S any](api frontend.API[S], v *big.Int) BigNat {
	f := api.Field()
	var n BigNat
	for i, l := range fields.BigIntLimbs(v, numLimbs, limbBits) {
		n.Limbs[i] = api.Constant(f.FromUint64(l))
	}
	return n
}

// BigNatFromBits packs little-endian bits into limb form. The bits must
// already be asserted boolean; packing at most limbBits per limb keeps the
// limbs in range without further checks.
func BigNatFromBits[S any](api frontend.API[S], bits []frontend.Variable) BigNat {
	f := api.Field()
	var n BigNat
	for i := 0; i < numLimbs; i++ {
		lo := i * limbBits
		if lo >= len(bits) {
			n.Limbs[i] = api.Constant(f.Zero())
			continue
		}
		hi := lo + limbBits
		if hi > len(bits) {
			hi = len(bits)
		}
		n.Limbs[i] = api.FromBits(bits[lo:hi])
	}
	return n
}

// bigNatValue reconstructs the integer currently assigned to n.
func bigNatValue[S any](api frontend.API[S], n BigNat) *big.Int {
	f := api.Field()
	limbs := make([]uint64, numLimbs)
	for i, l := range n.Limbs {
		limbs[i] = f.ToBigInt(api.Value(l)).Uint64()
	}
	return fields.FromLimbs(limbs, limbBits)
}

// FoldBigNat computes a + r*b mod q in limb form. The quotient is supplied
// as a hint and the identity a + r*b = k*q + res is enforced limb-wise
// through a signed carry chain.
func FoldBigNat[S any](api frontend.API[S], q *big.Int, a, r, b BigNat) BigNat {
	f := api.Field()

	av := bigNatValue(api, a)
	rv := bigNatValue(api, r)
	bv := bigNatValue(api, b)
	total := new(big.Int).Mul(rv, bv)
	total.Add(total, av)
	k, resv := new(big.Int).QuoRem(total, q, new(big.Int))

	res := AllocBigNat(api, resv)
	kn := AllocBigNat(api, k)
	qLimbs := fields.BigIntLimbs(q, numLimbs, limbBits)

	// product limbs of r*b
	var prod [numLimbs][numLimbs]frontend.Variable
	for j := 0; j < numLimbs; j++ {
		for l := 0; l < numLimbs; l++ {
			prod[j][l] = api.Mul(r.Limbs[j], b.Limbs[l])
		}
	}

	enforceCarryChain(api, func(i int) (lhs, rhs []frontend.Variable) {
		if i < numLimbs {
			lhs = append(lhs, a.Limbs[i])
			rhs = append(rhs, res.Limbs[i])
		}
		for j := 0; j < numLimbs; j++ {
			l := i - j
			if l < 0 || l >= numLimbs {
				continue
			}
			lhs = append(lhs, prod[j][l])
			rhs = append(rhs, api.MulConst(kn.Limbs[j], f.FromUint64(qLimbs[l])))
		}
		return lhs, rhs
	})
	return res
}

// enforceCarryChain asserts Sum_i 2^(64i)*(lhs_i - rhs_i) = 0 over the
// 2*numLimbs-1 limb positions produced by terms, propagating signed
// carries. Each carry is range checked after shifting into [0, 2^69).
func enforceCarryChain[S any](api frontend.API[S], terms func(i int) (lhs, rhs []frontend.Variable)) {
	f := api.Field()
	shift := new(big.Int).Lsh(big.NewInt(1), carryBound)
	shiftS := f.FromBigInt(shift)
	base := new(big.Int).Lsh(big.NewInt(1), limbBits)
	baseS := f.FromBigInt(base)
	zero := api.Constant(f.Zero())

	carry := zero
	carryV := new(big.Int)
	for i := 0; i < 2*numLimbs-1; i++ {
		lhs, rhs := terms(i)
		t := carry
		tv := new(big.Int).Set(carryV)
		for _, v := range lhs {
			t = api.Add(t, v)
			tv.Add(tv, f.ToBigInt(api.Value(v)))
		}
		for _, v := range rhs {
			t = api.Sub(t, v)
			tv.Sub(tv, f.ToBigInt(api.Value(v)))
		}
		carryV.Quo(tv, base)
		// shifted carry, range checked to carryBound+1 bits
		sv := new(big.Int).Add(carryV, shift)
		s := api.Alloc(f.FromBigInt(sv))
		api.ToBits(s, carryBound+1)
		c := api.AddConst(s, f.Neg(shiftS))
		api.AssertEqual(t, api.MulConst(c, baseS))
		carry = c
	}
	api.AssertEqual(carry, zero)
}
