// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// Reuse a 64 KiB buffered writer across JSONL encoders to avoid per-encoder mallocs.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

// Encoder writes values of type T as JSON lines through a pooled buffer.
//   - encode: fn to encode one value (convert to wire type & enc.Encode)
//   - isBroken: recognizer for broken/closed pipe errors to suppress on Close
type Encoder[T any] struct {
	bw       *bufio.Writer
	enc      *json.Encoder
	encode   func(*json.Encoder, T) error
	isBroken func(error) bool
}

// NewEncoder binds a pooled buffer to out. Call Close to flush and return it.
func NewEncoder[T any](out io.Writer, encode func(*json.Encoder, T) error, isBroken func(error) bool) *Encoder[T] {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	return &Encoder[T]{bw: bw, enc: json.NewEncoder(bw), encode: encode, isBroken: isBroken}
}

// Encode buffers one line.
func (e *Encoder[T]) Encode(v T) error { return e.encode(e.enc, v) }

// Flush pushes buffered lines to the underlying writer.
func (e *Encoder[T]) Flush() error { return e.bw.Flush() }

// Close flushes and returns the buffer to the pool. It is safe to call twice.
func (e *Encoder[T]) Close() error {
	if e.bw == nil {
		return nil
	}
	err := e.bw.Flush()
	// Drop references to the caller's writer before pooling.
	e.bw.Reset(io.Discard)
	bwPool.Put(e.bw)
	e.bw = nil
	if err != nil && !e.isBroken(err) {
		return err
	}
	return nil
}
