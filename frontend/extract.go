package frontend

import (
	"github.com/banyancomputer/arecibo/commitment"
	"github.com/banyancomputer/arecibo/r1cs"
)

// Shape extracts the constraint matrices accumulated so far. Columns are
// laid out as [aux, one, public], matching the assignment vector of
// package r1cs.
func (b *Builder[S]) Shape() (*r1cs.Shape[S], error) {
	if b.err != nil {
		return nil, b.err
	}
	numVars := len(b.auxValues)
	numPublic := len(b.publicValues)
	cols := numVars + 1 + numPublic
	n := len(b.constraints)

	ma := r1cs.NewSparseMatrix[S](n, cols)
	mb := r1cs.NewSparseMatrix[S](n, cols)
	mc := r1cs.NewSparseMatrix[S](n, cols)
	for i, ct := range b.constraints {
		b.fillRow(ma, i, ct.a, numVars)
		b.fillRow(mb, i, ct.b, numVars)
		b.fillRow(mc, i, ct.c, numVars)
	}
	return r1cs.NewShape(b.f, n, numVars, numPublic, ma, mb, mc)
}

func (b *Builder[S]) fillRow(m *r1cs.SparseMatrix[S], row int, lc LinearExpression[S], numVars int) {
	for _, t := range lc {
		if b.f.IsZero(t.Coeff) {
			continue
		}
		var col uint32
		switch t.V.Kind {
		case KindAux:
			col = t.V.Index
		case KindOne:
			col = uint32(numVars)
		case KindPublic:
			col = uint32(numVars) + 1 + t.V.Index
		}
		m.Set(row, col, t.Coeff)
	}
}

// InstanceWitness extracts the strict instance and witness of the
// assignment, committing to the witness under sch.
func InstanceWitness[S, C any](b *Builder[S], sch commitment.Scheme[S, C]) (*r1cs.Instance[S, C], *r1cs.Witness[S], error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	w := make([]S, len(b.auxValues))
	copy(w, b.auxValues)
	x := make([]S, len(b.publicValues))
	copy(x, b.publicValues)
	commW, err := sch.Commit(w)
	if err != nil {
		return nil, nil, err
	}
	return &r1cs.Instance[S, C]{CommW: commW, X: x}, &r1cs.Witness[S]{W: w}, nil
}
