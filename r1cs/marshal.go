package r1cs

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/banyancomputer/arecibo/fields"
	"github.com/banyancomputer/arecibo/internal/ioutils"
)

// shapeHeader precedes the matrix payloads on the wire.
type shapeHeader struct {
	_ struct{} `cbor:",toarray"`

	NumConstraints int
	NumVars        int
	NumPublic      int
	RowLens        [3][]uint32
}

// WriteTo serializes the shape. The matrix coefficients dominate the
// payload; column indices are delta-compressed.
func (s *Shape[S]) WriteTo(w io.Writer) (int64, error) {
	hdr := shapeHeader{
		NumConstraints: s.NumConstraints,
		NumVars:        s.NumVars,
		NumPublic:      s.NumPublic,
	}
	mats := [3]*SparseMatrix[S]{s.A, s.B, s.C}
	for mi, m := range mats {
		hdr.RowLens[mi] = make([]uint32, len(m.Rows))
		for i, row := range m.Rows {
			hdr.RowLens[mi][i] = uint32(len(row))
		}
	}
	enc, err := cbor.Marshal(hdr)
	if err != nil {
		return 0, err
	}
	var written int64
	n, err := ioutils.WriteLenPrefixed(w, enc)
	written += n
	if err != nil {
		return written, err
	}
	for _, m := range mats {
		cols := make([]uint32, 0, m.NNZ())
		for _, row := range m.Rows {
			for _, e := range row {
				cols = append(cols, e.Col)
			}
		}
		n, err = ioutils.CompressAndWriteUints32(w, cols)
		written += n
		if err != nil {
			return written, err
		}
		for _, row := range m.Rows {
			for _, e := range row {
				nn, err := w.Write(s.F.Bytes(e.Coeff))
				written += int64(nn)
				if err != nil {
					return written, err
				}
			}
		}
	}
	return written, nil
}

// ReadShape deserializes a shape over f as written by WriteTo.
func ReadShape[S any](f fields.Field[S], r io.Reader) (*Shape[S], error) {
	enc, _, err := ioutils.ReadLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	var hdr shapeHeader
	if err := cbor.Unmarshal(enc, &hdr); err != nil {
		return nil, err
	}
	elemSize := len(f.Bytes(f.Zero()))
	cols := hdr.NumVars + 1 + hdr.NumPublic
	mats := [3]*SparseMatrix[S]{}
	for mi := range mats {
		if len(hdr.RowLens[mi]) != hdr.NumConstraints {
			return nil, fmt.Errorf("%w: row count", ErrShapeMismatch)
		}
		colIdx, _, err := ioutils.ReadAndDecompressUints32(r)
		if err != nil {
			return nil, err
		}
		m := NewSparseMatrix[S](hdr.NumConstraints, cols)
		buf := make([]byte, elemSize)
		k := 0
		for i, rl := range hdr.RowLens[mi] {
			for j := 0; j < int(rl); j++ {
				if k >= len(colIdx) {
					return nil, fmt.Errorf("%w: truncated column index", ErrShapeMismatch)
				}
				if _, err := io.ReadFull(r, buf); err != nil {
					return nil, err
				}
				coeff, err := f.SetBytes(buf)
				if err != nil {
					return nil, err
				}
				if colIdx[k] >= uint32(cols) {
					return nil, fmt.Errorf("%w: column out of range", ErrShapeMismatch)
				}
				m.Set(i, colIdx[k], coeff)
				k++
			}
		}
		if k != len(colIdx) {
			return nil, fmt.Errorf("%w: trailing column index", ErrShapeMismatch)
		}
		mats[mi] = m
	}
	return NewShape(f, hdr.NumConstraints, hdr.NumVars, hdr.NumPublic, mats[0], mats[1], mats[2])
}
