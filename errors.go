package arecibo

import "errors"

var (
	// ErrInvalidInitialInput is returned when the initial state vectors
	// do not match the step circuits' arities.
	ErrInvalidInitialInput = errors.New("arecibo: initial input does not match circuit arity")

	// ErrStepExecution is returned when synthesizing or folding a step
	// fails. The receiver is left unchanged.
	ErrStepExecution = errors.New("arecibo: step execution failed")

	// ErrProofVerify is returned when a proof fails verification.
	ErrProofVerify = errors.New("arecibo: proof verification failed")
)
