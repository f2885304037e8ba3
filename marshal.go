package arecibo

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/nifs"
	"github.com/banyancomputer/arecibo/r1cs"
)

// Wire forms of proof material. Scalars and commitments travel in their
// canonical encodings; the receiving side re-checks them through the field
// and scheme decoders, so a corrupted byte surfaces as a decode error
// rather than an invalid element.

type wireInstance struct {
	_ struct{} `cbor:",toarray"`

	CommW []byte
	X     [][]byte
}

type wireRelaxedInstance struct {
	_ struct{} `cbor:",toarray"`

	CommW []byte
	CommE []byte
	U     []byte
	X     [][]byte
}

type wireWitness struct {
	_ struct{} `cbor:",toarray"`

	W [][]byte
}

type wireRelaxedWitness struct {
	_ struct{} `cbor:",toarray"`

	W [][]byte
	E [][]byte
}

func encVec[S any](f fields.Field[S], v []S) [][]byte {
	out := make([][]byte, len(v))
	for i, e := range v {
		out[i] = f.Bytes(e)
	}
	return out
}

func decVec[S any](f fields.Field[S], v [][]byte) ([]S, error) {
	out := make([]S, len(v))
	for i, b := range v {
		e, err := f.SetBytes(b)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func encInstance[S, C any](f fields.Field[S], sch commitment.Scheme[S, C], inst *r1cs.Instance[S, C]) wireInstance {
	return wireInstance{CommW: sch.Bytes(inst.CommW), X: encVec(f, inst.X)}
}

func decInstance[S, C any](f fields.Field[S], sch commitment.Scheme[S, C], w wireInstance) (*r1cs.Instance[S, C], error) {
	commW, err := sch.SetBytes(w.CommW)
	if err != nil {
		return nil, err
	}
	x, err := decVec(f, w.X)
	if err != nil {
		return nil, err
	}
	return &r1cs.Instance[S, C]{CommW: commW, X: x}, nil
}

func encRelaxedInstance[S, C any](f fields.Field[S], sch commitment.Scheme[S, C], inst *r1cs.RelaxedInstance[S, C]) wireRelaxedInstance {
	return wireRelaxedInstance{
		CommW: sch.Bytes(inst.CommW),
		CommE: sch.Bytes(inst.CommE),
		U:     f.Bytes(inst.U),
		X:     encVec(f, inst.X),
	}
}

func decRelaxedInstance[S, C any](f fields.Field[S], sch commitment.Scheme[S, C], w wireRelaxedInstance) (*r1cs.RelaxedInstance[S, C], error) {
	commW, err := sch.SetBytes(w.CommW)
	if err != nil {
		return nil, err
	}
	commE, err := sch.SetBytes(w.CommE)
	if err != nil {
		return nil, err
	}
	u, err := f.SetBytes(w.U)
	if err != nil {
		return nil, err
	}
	x, err := decVec(f, w.X)
	if err != nil {
		return nil, err
	}
	return &r1cs.RelaxedInstance[S, C]{CommW: commW, CommE: commE, U: u, X: x}, nil
}

// wireRecursive is the serialized form of a RecursiveSNARK, minus the
// public parameters it is bound to.
type wireRecursive struct {
	_ struct{} `cbor:",toarray"`

	I           uint64
	Z0Primary   [][]byte
	Z0Secondary [][]byte
	ZiPrimary   [][]byte
	ZiSecondary [][]byte

	RUPrimary   wireRelaxedInstance
	RWPrimary   wireRelaxedWitness
	RUSecondary wireRelaxedInstance
	RWSecondary wireRelaxedWitness
	LUSecondary wireInstance
	LWSecondary wireWitness
}

// MarshalBinary serializes the snark state. The public parameters are not
// included; deserialization re-binds to equal parameters.
func (rs *RecursiveSNARK[S1, S2, C1, C2]) MarshalBinary() ([]byte, error) {
	f1, f2 := rs.pp.E1.Scalars(), rs.pp.E2.Scalars()
	w := wireRecursive{
		I:           rs.i,
		Z0Primary:   encVec(f1, rs.z0Primary),
		Z0Secondary: encVec(f2, rs.z0Secondary),
		ZiPrimary:   encVec(f1, rs.ziPrimary),
		ZiSecondary: encVec(f2, rs.ziSecondary),
		RUPrimary:   encRelaxedInstance(f1, rs.pp.Scheme1, rs.rUPrimary),
		RWPrimary:   wireRelaxedWitness{W: encVec(f1, rs.rWPrimary.W), E: encVec(f1, rs.rWPrimary.E)},
		RUSecondary: encRelaxedInstance(f2, rs.pp.Scheme2, rs.rUSecondary),
		RWSecondary: wireRelaxedWitness{W: encVec(f2, rs.rWSecondary.W), E: encVec(f2, rs.rWSecondary.E)},
		LUSecondary: encInstance(f2, rs.pp.Scheme2, rs.lUSecondary),
		LWSecondary: wireWitness{W: encVec(f2, rs.lWSecondary.W)},
	}
	return cbor.Marshal(w)
}

// ReadRecursiveSNARK deserializes a snark produced by MarshalBinary,
// binding it to pp.
func ReadRecursiveSNARK[S1, S2, C1, C2 any](pp *PublicParams[S1, S2, C1, C2], data []byte) (*RecursiveSNARK[S1, S2, C1, C2], error) {
	var w wireRecursive
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	f1, f2 := pp.E1.Scalars(), pp.E2.Scalars()
	rs := &RecursiveSNARK[S1, S2, C1, C2]{pp: pp, i: w.I}
	var err error
	if rs.z0Primary, err = decVec(f1, w.Z0Primary); err != nil {
		return nil, err
	}
	if rs.z0Secondary, err = decVec(f2, w.Z0Secondary); err != nil {
		return nil, err
	}
	if rs.ziPrimary, err = decVec(f1, w.ZiPrimary); err != nil {
		return nil, err
	}
	if rs.ziSecondary, err = decVec(f2, w.ZiSecondary); err != nil {
		return nil, err
	}
	if rs.rUPrimary, err = decRelaxedInstance(f1, pp.Scheme1, w.RUPrimary); err != nil {
		return nil, err
	}
	rwp := &r1cs.RelaxedWitness[S1]{}
	if rwp.W, err = decVec(f1, w.RWPrimary.W); err != nil {
		return nil, err
	}
	if rwp.E, err = decVec(f1, w.RWPrimary.E); err != nil {
		return nil, err
	}
	rs.rWPrimary = rwp
	if rs.rUSecondary, err = decRelaxedInstance(f2, pp.Scheme2, w.RUSecondary); err != nil {
		return nil, err
	}
	rws := &r1cs.RelaxedWitness[S2]{}
	if rws.W, err = decVec(f2, w.RWSecondary.W); err != nil {
		return nil, err
	}
	if rws.E, err = decVec(f2, w.RWSecondary.E); err != nil {
		return nil, err
	}
	rs.rWSecondary = rws
	if rs.lUSecondary, err = decInstance(f2, pp.Scheme2, w.LUSecondary); err != nil {
		return nil, err
	}
	lw := &r1cs.Witness[S2]{}
	if lw.W, err = decVec(f2, w.LWSecondary.W); err != nil {
		return nil, err
	}
	rs.lWSecondary = lw
	return rs, nil
}

// wireCompressed is the serialized form of a CompressedSNARK.
type wireCompressed struct {
	_ struct{} `cbor:",toarray"`

	NumSteps    uint64
	ZnPrimary   [][]byte
	ZnSecondary [][]byte

	RUPrimary   wireRelaxedInstance
	RUSecondary wireRelaxedInstance
	LUSecondary wireInstance
	CommT       []byte

	ProofPrimary   []byte
	ProofSecondary []byte
}

// MarshalBinary serializes the compressed proof. It needs the schemes to
// encode commitments, which the bound parameters supply.
func (cs *CompressedSNARK[S1, S2, C1, C2]) MarshalBinary(pp *PublicParams[S1, S2, C1, C2]) ([]byte, error) {
	f1, f2 := pp.E1.Scalars(), pp.E2.Scalars()
	w := wireCompressed{
		NumSteps:       cs.NumSteps,
		ZnPrimary:      encVec(f1, cs.ZnPrimary),
		ZnSecondary:    encVec(f2, cs.ZnSecondary),
		RUPrimary:      encRelaxedInstance(f1, pp.Scheme1, cs.RUPrimary),
		RUSecondary:    encRelaxedInstance(f2, pp.Scheme2, cs.RUSecondary),
		LUSecondary:    encInstance(f2, pp.Scheme2, cs.LUSecondary),
		CommT:          pp.Scheme2.Bytes(cs.FoldProof.CommT),
		ProofPrimary:   cs.ProofPrimary,
		ProofSecondary: cs.ProofSecondary,
	}
	return cbor.Marshal(w)
}

// ReadCompressedSNARK deserializes a compressed proof.
func ReadCompressedSNARK[S1, S2, C1, C2 any](pp *PublicParams[S1, S2, C1, C2], data []byte) (*CompressedSNARK[S1, S2, C1, C2], error) {
	var w wireCompressed
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	f1, f2 := pp.E1.Scalars(), pp.E2.Scalars()
	cs := &CompressedSNARK[S1, S2, C1, C2]{NumSteps: w.NumSteps}
	var err error
	if cs.ZnPrimary, err = decVec(f1, w.ZnPrimary); err != nil {
		return nil, err
	}
	if cs.ZnSecondary, err = decVec(f2, w.ZnSecondary); err != nil {
		return nil, err
	}
	if cs.RUPrimary, err = decRelaxedInstance(f1, pp.Scheme1, w.RUPrimary); err != nil {
		return nil, err
	}
	if cs.RUSecondary, err = decRelaxedInstance(f2, pp.Scheme2, w.RUSecondary); err != nil {
		return nil, err
	}
	if cs.LUSecondary, err = decInstance(f2, pp.Scheme2, w.LUSecondary); err != nil {
		return nil, err
	}
	commT, err := pp.Scheme2.SetBytes(w.CommT)
	if err != nil {
		return nil, err
	}
	cs.FoldProof = &nifs.Proof[C2]{CommT: commT}
	cs.ProofPrimary = w.ProofPrimary
	cs.ProofSecondary = w.ProofSecondary
	return cs, nil
}
