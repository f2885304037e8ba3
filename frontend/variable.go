package frontend

// VarKind distinguishes the three column groups of a constraint system.
type VarKind uint8

const (
	// KindOne is the constant-one variable. There is exactly one, with
	// index 0.
	KindOne VarKind = iota
	// KindAux is a private witness variable.
	KindAux
	// KindPublic is a public input.
	KindPublic
)

// Variable is a handle into a Builder's assignment. The zero Variable is
// the constant one.
type Variable struct {
	Kind  VarKind
	Index uint32
}

// One is the constant-one variable.
var One = Variable{Kind: KindOne}

// Term is a coefficient applied to a variable.
type Term[S any] struct {
	Coeff S
	V     Variable
}

// LinearExpression is a sum of terms.
type LinearExpression[S any] []Term[S]
