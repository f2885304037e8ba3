// Package compress holds the final-proof backends used by CompressedSNARK.
//
// Direct is the development backend: it attests to a relaxed instance by
// carrying the witness itself. It is sound and complete but not succinct or
// zero-knowledge; production deployments substitute a real SNARK behind the
// same interface.
package compress

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/r1cs"
)

// wireDirect is the serialized form of a direct proof: the witness vectors
// in canonical scalar encoding.
type wireDirect struct {
	_ struct{} `cbor:",toarray"`

	W [][]byte
	E [][]byte
}

// Direct is the witness-carrying final-proof backend.
type Direct[S, C any] struct {
	Scalars fields.Field[S]
}

// NewDirect returns a direct backend over f.
func NewDirect[S, C any](f fields.Field[S]) Direct[S, C] {
	return Direct[S, C]{Scalars: f}
}

func (d Direct[S, C]) encode(v []S) [][]byte {
	out := make([][]byte, len(v))
	for i, e := range v {
		out[i] = d.Scalars.Bytes(e)
	}
	return out
}

func (d Direct[S, C]) decode(v [][]byte) ([]S, error) {
	out := make([]S, len(v))
	for i, b := range v {
		e, err := d.Scalars.SetBytes(b)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Prove checks (inst, wit) and encodes the witness as the proof.
func (d Direct[S, C]) Prove(s *r1cs.Shape[S], sch commitment.Scheme[S, C], inst *r1cs.RelaxedInstance[S, C], wit *r1cs.RelaxedWitness[S]) ([]byte, error) {
	if err := r1cs.IsSatRelaxed(s, sch, inst, wit); err != nil {
		return nil, err
	}
	return cbor.Marshal(wireDirect{W: d.encode(wit.W), E: d.encode(wit.E)})
}

// Verify decodes the carried witness and re-checks the relation against
// inst, including the commitment openings.
func (d Direct[S, C]) Verify(s *r1cs.Shape[S], sch commitment.Scheme[S, C], inst *r1cs.RelaxedInstance[S, C], proof []byte) error {
	var w wireDirect
	if err := cbor.Unmarshal(proof, &w); err != nil {
		return err
	}
	wit := &r1cs.RelaxedWitness[S]{}
	var err error
	if wit.W, err = d.decode(w.W); err != nil {
		return err
	}
	if wit.E, err = d.decode(w.E); err != nil {
		return err
	}
	return r1cs.IsSatRelaxed(s, sch, inst, wit)
}
