package util

import (
	"bytes"
	"io"
)

// FillValueReader repeats a byte pattern forever.
type FillValueReader struct {
	repeat      []byte
	repeatIndex int
}

func NewFillValueReader(repeat []byte) io.Reader {
	return &FillValueReader{repeat, 0}
}

func (fvr *FillValueReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = fvr.repeat[fvr.repeatIndex]
		fvr.repeatIndex = (fvr.repeatIndex + 1) % len(fvr.repeat)
	}
	return len(p), nil
}

// FillBytes returns the big endian encoding of the scalar fill value.
func FillBytes(fill any) []byte {
	var buf bytes.Buffer
	MustWriteBE(&buf, fill)
	return buf.Bytes()
}

// WriteFill writes count copies of fill to w.
func WriteFill(w io.Writer, fill any, count int64) error {
	pattern := FillBytes(fill)
	_, err := io.CopyN(w, NewFillValueReader(pattern), count*int64(len(pattern)))
	return err
}
