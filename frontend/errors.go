package frontend

import "errors"

// ErrSynthesis is returned when circuit synthesis produces an inconsistent
// assignment, such as a value that does not fit the requested bit width.
var ErrSynthesis = errors.New("frontend: synthesis error")
