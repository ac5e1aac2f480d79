// Package stream drains byte streams into contiguous buffers.
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrIO marks a source stream that failed before signalling completion.
var ErrIO = errors.New("stream: source failed")

const chunkSize = 32 * 1024

// Collect reads r until EOF and returns every chunk concatenated in read
// order. If r fails first, Collect returns an error wrapping ErrIO and the
// cause, and never the partial buffer.
func Collect(r io.Reader) ([]byte, error) {
	var (
		buf   bytes.Buffer
		chunk = make([]byte, chunkSize)
	)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w after %d bytes: %w", ErrIO, buf.Len(), err)
		}
	}
}
