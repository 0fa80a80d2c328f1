package exodus

import (
	"bytes"
	"fmt"
)

// EncodeName returns s as a row of width characters padded with NULs.
// Names must leave room for the terminator: longer than width-1 is a
// usage error.
func EncodeName(s string, width int) ([]byte, error) {
	if len(s) > width-1 {
		return nil, usageErrorf("name %q is %d characters, at most %d fit", s, len(s), width-1)
	}
	row := make([]byte, width)
	copy(row, s)
	return row, nil
}

// DecodeName returns the name stored in a row: everything up to the first
// NUL with trailing blanks removed.
func DecodeName(row []byte) string {
	if i := bytes.IndexByte(row, 0); i >= 0 {
		row = row[:i]
	}
	return string(bytes.TrimRight(row, " "))
}

// encodeRows encodes names into consecutive rows of a name table.
func encodeRows(names []string, width, maxLen int) ([]byte, error) {
	buf := make([]byte, 0, len(names)*width)
	for _, name := range names {
		if len(name) > maxLen {
			return nil, usageErrorf("name %q longer than %d", name, maxLen)
		}
		row, err := EncodeName(name, width)
		if err != nil {
			return nil, err
		}
		buf = append(buf, row...)
	}
	return buf, nil
}

// decodeRows splits a flat name table into names.
func decodeRows(table []byte, width int) []string {
	if width <= 0 || len(table)%width != 0 {
		panic(fmt.Sprintf("name table of %d bytes is not a multiple of %d", len(table), width))
	}
	names := make([]string, len(table)/width)
	for i := range names {
		names[i] = DecodeName(table[i*width : (i+1)*width])
	}
	return names
}
