package ingest

import (
	"bytes"
	"io"
)

// Collect reads r to EOF and returns every byte in arrival order. It does
// not trust any length header; the buffer grows as chunks arrive.
//
// A read error discards what was read so far and is reported as a
// TransportError.
func Collect(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, TransportError{Err: err}
	}
	return buf.Bytes(), nil
}
