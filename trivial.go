package arecibo

import "github.com/banyancomputer/arecibo/frontend"

// TrivialCircuit is the identity step circuit. It is commonly used on the
// secondary side of the cycle when only the primary computation matters.
type TrivialCircuit[S any] struct{}

func (TrivialCircuit[S]) Arity() int { return 1 }

func (TrivialCircuit[S]) Synthesize(_ frontend.API[S], z []frontend.Variable) ([]frontend.Variable, error) {
	return z, nil
}
