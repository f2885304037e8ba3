//go:build !debug

// Package debug exposes the build-time debug flag.
//
// Debug builds (-tags=debug) enable expensive prover-side sanity checks,
// such as re-checking that witnesses satisfy their relaxed relation before
// folding. These checks are never part of the verifier path.
package debug

// Debug reports whether the library was built with the debug tag.
const Debug = false
