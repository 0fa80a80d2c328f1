package util

import (
	"encoding/binary"
	"io"

	"github.com/batchatco/go-thrower"
)

// MustWriteBE wraps binary.Write with BigEndian and throws an error if it fails.
// netCDF classic files are big endian throughout.
func MustWriteBE(w io.Writer, data any) {
	err := binary.Write(w, binary.BigEndian, data)
	thrower.ThrowIfError(err)
}

// MustWriteRaw wraps Write and throws an error if it fails.
func MustWriteRaw(w io.Writer, p []byte) {
	_, err := w.Write(p)
	thrower.ThrowIfError(err)
}

// MustReadBE wraps binary.Read with BigEndian and throws an error if it fails.
func MustReadBE(r io.Reader, data any) {
	err := binary.Read(r, binary.BigEndian, data)
	thrower.ThrowIfError(err)
}

// MustSkip discards n bytes and throws an error if it fails.
func MustSkip(r io.Reader, n int64) {
	_, err := io.CopyN(io.Discard, r, n)
	thrower.ThrowIfError(err)
}
