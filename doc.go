// Package arecibo implements a high-speed recursive SNARK based on a
// Nova-style folding scheme.
//
// The library proves incrementally verifiable computation (IVC): given a
// step function F and an initial state z0, a prover maintains a
// constant-size proof that zn is the result of n applications of F,
// without re-proving earlier steps. The core pieces are:
//
//   - a relaxed R1CS data model and a non-interactive folding scheme
//     (package nifs) that combines two instance/witness pairs into one,
//   - an augmented step circuit that verifies the previous folding step
//     inside the step function itself, making folding recursively provable,
//   - a recursive proving state machine (RecursiveSNARK) driving folding
//     across a two-curve cycle so that all circuit arithmetic stays native.
//
// Concrete curve backends live in package provider; the library ships a
// BN254/Grumpkin cycle built on gnark-crypto. The final compression step is
// consumed as a capability (RelaxedSNARK); package compress provides a
// development backend.
//
// RecursiveSNARK.Verify is a public-consistency check (plus prover-side
// satisfiability checks); witness-less verifiers must use
// CompressedSNARK.Verify as the acceptance point.
package arecibo

import (
	"github.com/blang/semver/v4"
)

// Version of the library, stamped into serialized artifacts.
var Version = semver.MustParse("0.2.0")
