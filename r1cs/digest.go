package r1cs

import (
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// digestView is the canonical serialization the shape digest commits to.
type digestView struct {
	_ struct{} `cbor:",toarray"`

	Modulus        []byte
	NumConstraints int
	NumVars        int
	NumPublic      int
	A              [][]digestEntry
	B              [][]digestEntry
	C              [][]digestEntry
}

type digestEntry struct {
	_ struct{} `cbor:",toarray"`

	Col   uint32
	Coeff []byte
}

// Digest returns a 250-bit commitment to the shape, suitable for binding
// into oracle transcripts over either cycle field. The digest is memoized;
// shapes must not be mutated after the first call.
func (s *Shape[S]) Digest() *big.Int {
	s.digestOnce.Do(func() {
		view := digestView{
			Modulus:        s.F.Modulus().Bytes(),
			NumConstraints: s.NumConstraints,
			NumVars:        s.NumVars,
			NumPublic:      s.NumPublic,
			A:              s.matrixView(s.A),
			B:              s.matrixView(s.B),
			C:              s.matrixView(s.C),
		}
		data, err := cbor.Marshal(view)
		if err != nil {
			panic(err) // the view contains no unmarshalable types
		}
		d := blake2b.Sum256(data)
		v := new(big.Int).SetBytes(d[:])
		mask := new(big.Int).Lsh(big.NewInt(1), 250)
		mask.Sub(mask, big.NewInt(1))
		s.digest = v.And(v, mask)
	})
	return new(big.Int).Set(s.digest)
}

func (s *Shape[S]) matrixView(m *SparseMatrix[S]) [][]digestEntry {
	out := make([][]digestEntry, len(m.Rows))
	for i, row := range m.Rows {
		r := make([]digestEntry, len(row))
		for j, e := range row {
			r[j] = digestEntry{Col: e.Col, Coeff: s.F.Bytes(e.Coeff)}
		}
		out[i] = r
	}
	return out
}
