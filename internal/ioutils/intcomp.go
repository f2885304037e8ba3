// Package ioutils holds small helpers shared by the serialization code.
package ioutils

import (
	"encoding/binary"
	"io"

	"github.com/ronanh/intcomp"
)

// WriteLenPrefixed writes data preceded by its little-endian uint64 length.
func WriteLenPrefixed(w io.Writer, data []byte) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return 8 + int64(n), err
}

// ReadLenPrefixed reads a length-prefixed blob written by WriteLenPrefixed.
func ReadLenPrefixed(r io.Reader) ([]byte, int64, error) {
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, 0, err
	}
	data := make([]byte, length)
	n, err := io.ReadFull(r, data)
	return data[:n], 8 + int64(n), err
}

// CompressAndWriteUints32 compresses input and writes it length-prefixed.
func CompressAndWriteUints32(w io.Writer, input []uint32) (int64, error) {
	compressed := intcomp.CompressUint32(input, nil)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(compressed))); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, compressed); err != nil {
		return 8, err
	}
	return 8 + 4*int64(len(compressed)), nil
}

// ReadAndDecompressUints32 reads and decompresses a slice written by
// CompressAndWriteUints32.
func ReadAndDecompressUints32(r io.Reader) ([]uint32, int64, error) {
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, 0, err
	}
	compressed := make([]uint32, length)
	if err := binary.Read(r, binary.LittleEndian, compressed); err != nil {
		return nil, 8, err
	}
	return intcomp.UncompressUint32(compressed, nil), 8 + 4*int64(length), nil
}
