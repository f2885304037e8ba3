package arecibo

import (
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/compress"
	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/frontend"
	"github.com/banyancomputer/arecibo/gadgets"
	"github.com/banyancomputer/arecibo/internal/ioutils"
	"github.com/banyancomputer/arecibo/logger"
	"github.com/banyancomputer/arecibo/nifs"
	"github.com/banyancomputer/arecibo/oracle"
	"github.com/banyancomputer/arecibo/r1cs"
)

// PublicParams holds everything both prover and verifier derive from the
// pair of step circuits: the augmented circuit shapes, the commitment
// schemes sized to them, the oracle constants of both fields and the
// folding contexts of both sides of the cycle.
type PublicParams[S1, S2, C1, C2 any] struct {
	E1 Engine[S1, S2, C1]
	E2 Engine[S2, S1, C2]

	Shape1 *r1cs.Shape[S1]
	Shape2 *r1cs.Shape[S2]

	Scheme1 commitment.Scheme[S1, C1]
	Scheme2 commitment.Scheme[S2, C2]

	Cst1 oracle.Constants[S1]
	Cst2 oracle.Constants[S2]

	// Ctx1 folds primary instances; its transcripts run over the
	// secondary scalar field. Ctx2 is the mirror image.
	Ctx1 *nifs.Context[S1, S2, C1]
	Ctx2 *nifs.Context[S2, S1, C2]

	// Snark1 and Snark2 are the final-proof backends used by
	// CompressedSNARK. Setup installs the direct development backend;
	// callers may swap in a succinct one before compressing.
	Snark1 RelaxedSNARK[S1, C1]
	Snark2 RelaxedSNARK[S2, C2]

	Arity1, Arity2 int

	minCommitSize int

	digestOnce sync.Once
	digest     *big.Int
}

// SetupOption tunes parameter derivation.
type SetupOption func(*setupConfig)

type setupConfig struct {
	minCommitSize int
}

// WithMinCommitmentSize forces the commitment schemes to support vectors of
// at least n, for callers that will commit to data beyond the augmented
// witnesses.
func WithMinCommitmentSize(n int) SetupOption {
	return func(c *setupConfig) { c.minCommitSize = n }
}

// newAugmentedCircuit assembles the augmented circuit of one side. The
// in-circuit curve is the other side's curve, whose base field is native
// here.
func newAugmentedCircuit[S, B, C any](isPrimary bool, step StepCircuit[S], other Engine[B, S, C], cst oracle.Constants[S], inputs circuitInputs[S]) *augmentedCircuit[S] {
	return &augmentedCircuit[S]{
		isPrimary: isPrimary,
		step:      step,
		curve:     gadgets.Curve[S]{B: other.CurveB()},
		cst:       cst,
		q:         other.Scalars().Modulus(),
		inputs:    inputs,
	}
}

// Setup derives the public parameters of an IVC instance from the two step
// circuits.
func Setup[S1, S2, C1, C2 any](e1 Engine[S1, S2, C1], e2 Engine[S2, S1, C2], c1 StepCircuit[S1], c2 StepCircuit[S2], opts ...SetupOption) (*PublicParams[S1, S2, C1, C2], error) {
	if c1.Arity() < 1 || c2.Arity() < 1 {
		return nil, fmt.Errorf("%w: step circuits need arity >= 1", ErrInvalidInitialInput)
	}
	var cfg setupConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	f1, f2 := e1.Scalars(), e2.Scalars()
	cst1 := oracle.NewConstants(f1)
	cst2 := oracle.NewConstants(f2)

	shape1, err := circuitShape(f1, newAugmentedCircuit(true, c1, e2, cst1, defaultCircuitInputs(f1, c1.Arity())))
	if err != nil {
		return nil, err
	}
	shape2, err := circuitShape(f2, newAugmentedCircuit(false, c2, e1, cst2, defaultCircuitInputs(f2, c2.Arity())))
	if err != nil {
		return nil, err
	}

	pp := &PublicParams[S1, S2, C1, C2]{
		E1:            e1,
		E2:            e2,
		Shape1:        shape1,
		Shape2:        shape2,
		Arity1:        c1.Arity(),
		Arity2:        c2.Arity(),
		Cst1:          cst1,
		Cst2:          cst2,
		minCommitSize: cfg.minCommitSize,
	}
	pp.finish()

	log := logger.Logger()
	log.Debug().
		Int("constraints_primary", shape1.NumConstraints).
		Int("constraints_secondary", shape2.NumConstraints).
		Int("variables_primary", shape1.NumVars).
		Int("variables_secondary", shape2.NumVars).
		Msg("public parameters derived")
	return pp, nil
}

// finish derives the schemes, absorbers and folding contexts from the
// shapes. It is shared by Setup and ReadPublicParams.
func (pp *PublicParams[S1, S2, C1, C2]) finish() {
	pp.Scheme1 = pp.E1.NewScheme(maxInt(pp.minCommitSize, maxInt(pp.Shape1.NumVars, pp.Shape1.NumConstraints)))
	pp.Scheme2 = pp.E2.NewScheme(maxInt(pp.minCommitSize, maxInt(pp.Shape2.NumVars, pp.Shape2.NumConstraints)))
	pp.Snark1 = compress.NewDirect[S1, C1](pp.E1.Scalars())
	pp.Snark2 = compress.NewDirect[S2, C2](pp.E2.Scalars())

	abs1 := &r1cs.Absorber[S1, S2, C1]{
		Scalars: pp.E1.Scalars(),
		Base:    pp.E2.Scalars(),
		Coords:  pp.E1.Coordinates,
	}
	abs2 := &r1cs.Absorber[S2, S1, C2]{
		Scalars: pp.E2.Scalars(),
		Base:    pp.E1.Scalars(),
		Coords:  pp.E2.Coordinates,
	}
	pp.Ctx1 = &nifs.Context[S1, S2, C1]{
		Scalars:   pp.E1.Scalars(),
		Base:      pp.E2.Scalars(),
		Scheme:    pp.Scheme1,
		Constants: pp.Cst2,
		Absorber:  abs1,
	}
	pp.Ctx2 = &nifs.Context[S2, S1, C2]{
		Scalars:   pp.E2.Scalars(),
		Base:      pp.E1.Scalars(),
		Scheme:    pp.Scheme2,
		Constants: pp.Cst1,
		Absorber:  abs2,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// NumConstraints reports the constraint counts of the two augmented
// circuits.
func (pp *PublicParams[S1, S2, C1, C2]) NumConstraints() (primary, secondary int) {
	return pp.Shape1.NumConstraints, pp.Shape2.NumConstraints
}

// NumVariables reports the variable counts of the two augmented circuits.
func (pp *PublicParams[S1, S2, C1, C2]) NumVariables() (primary, secondary int) {
	return pp.Shape1.NumVars, pp.Shape2.NumVars
}

// CircuitDigest is the digest of the augmented shape a step circuit
// produces on one side of the cycle, without deriving full parameters.
func CircuitDigest[S, B, C1, C2 any](e Engine[S, B, C1], other Engine[B, S, C2], isPrimary bool, step StepCircuit[S]) (*big.Int, error) {
	f := e.Scalars()
	cst := oracle.NewConstants(f)
	shape, err := circuitShape(f, newAugmentedCircuit(isPrimary, step, other, cst, defaultCircuitInputs(f, step.Arity())))
	if err != nil {
		return nil, err
	}
	return shape.Digest(), nil
}

// circuitShape synthesizes c with its zero-valued inputs and extracts the
// constraint shape.
func circuitShape[S any](f fields.Field[S], c *augmentedCircuit[S]) (*r1cs.Shape[S], error) {
	b := frontend.NewBuilder(f)
	if _, err := c.synthesize(b); err != nil {
		return nil, err
	}
	return b.Shape()
}

// Digest is a 250-bit commitment to the public parameters, bound into
// every transcript on both sides of the cycle.
func (pp *PublicParams[S1, S2, C1, C2]) Digest() *big.Int {
	pp.digestOnce.Do(func() {
		view := struct {
			_ struct{} `cbor:",toarray"`

			Version string
			Name1   string
			Name2   string
			Shape1  []byte
			Shape2  []byte
			Arity1  int
			Arity2  int
		}{
			Version: Version.String(),
			Name1:   pp.E1.Name(),
			Name2:   pp.E2.Name(),
			Shape1:  pp.Shape1.Digest().Bytes(),
			Shape2:  pp.Shape2.Digest().Bytes(),
			Arity1:  pp.Arity1,
			Arity2:  pp.Arity2,
		}
		data, err := cbor.Marshal(view)
		if err != nil {
			panic(err)
		}
		d := blake2b.Sum256(data)
		v := new(big.Int).SetBytes(d[:])
		mask := new(big.Int).Lsh(big.NewInt(1), oracle.SqueezeBits)
		mask.Sub(mask, big.NewInt(1))
		pp.digest = v.And(v, mask)
	})
	return new(big.Int).Set(pp.digest)
}

// ppHeader is the serialized preamble of public parameters.
type ppHeader struct {
	_ struct{} `cbor:",toarray"`

	Version   string
	Name1     string
	Name2     string
	Arity1    int
	Arity2    int
	MinCommit int
}

// WriteTo serializes the parameters. Commitment generators and oracle
// constants are deterministic and re-derived on load; only the shapes
// travel in full.
func (pp *PublicParams[S1, S2, C1, C2]) WriteTo(w io.Writer) (int64, error) {
	hdr, err := cbor.Marshal(ppHeader{
		Version:   Version.String(),
		Name1:     pp.E1.Name(),
		Name2:     pp.E2.Name(),
		Arity1:    pp.Arity1,
		Arity2:    pp.Arity2,
		MinCommit: pp.minCommitSize,
	})
	if err != nil {
		return 0, err
	}
	written, err := ioutils.WriteLenPrefixed(w, hdr)
	if err != nil {
		return written, err
	}
	n, err := pp.Shape1.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}
	n, err = pp.Shape2.WriteTo(w)
	written += n
	return written, err
}

// ReadPublicParams deserializes parameters written by WriteTo, rebuilding
// the derived state for the given engines.
func ReadPublicParams[S1, S2, C1, C2 any](e1 Engine[S1, S2, C1], e2 Engine[S2, S1, C2], r io.Reader) (*PublicParams[S1, S2, C1, C2], error) {
	raw, _, err := ioutils.ReadLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	var hdr ppHeader
	if err := cbor.Unmarshal(raw, &hdr); err != nil {
		return nil, err
	}
	v, err := semver.Parse(hdr.Version)
	if err != nil {
		return nil, err
	}
	if v.Major != Version.Major {
		return nil, fmt.Errorf("arecibo: incompatible parameter version %s", hdr.Version)
	}
	if hdr.Name1 != e1.Name() || hdr.Name2 != e2.Name() {
		return nil, fmt.Errorf("arecibo: parameters are for cycle %s/%s, not %s/%s", hdr.Name1, hdr.Name2, e1.Name(), e2.Name())
	}
	shape1, err := r1cs.ReadShape(e1.Scalars(), r)
	if err != nil {
		return nil, err
	}
	shape2, err := r1cs.ReadShape(e2.Scalars(), r)
	if err != nil {
		return nil, err
	}
	pp := &PublicParams[S1, S2, C1, C2]{
		E1:            e1,
		E2:            e2,
		Shape1:        shape1,
		Shape2:        shape2,
		Arity1:        hdr.Arity1,
		Arity2:        hdr.Arity2,
		Cst1:          oracle.NewConstants(e1.Scalars()),
		Cst2:          oracle.NewConstants(e2.Scalars()),
		minCommitSize: hdr.MinCommit,
	}
	pp.finish()
	return pp, nil
}
