package writers

import (
	"bufio"
	"encoding/json"
	"io"

	"predsim/internal/jsonlutil"
	"predsim/internal/replicate"
)

// AlignmentSink renders each record's alignment to a caller-owned stream
// (normally stdout). Close flushes but does not close the stream.
type AlignmentSink struct {
	bw     *bufio.Writer
	render AlignmentFunc
}

// NewAlignmentSink returns a sink for format, or an error for unknown formats.
func NewAlignmentSink(out io.Writer, format string) (*AlignmentSink, error) {
	fn, err := LookupAlignment(format)
	if err != nil {
		return nil, err
	}
	return &AlignmentSink{bw: bufio.NewWriterSize(out, 64<<10), render: fn}, nil
}

func (s *AlignmentSink) Write(rec replicate.Record) error {
	if err := s.render(s.bw, rec.Alignment); err != nil {
		return err
	}
	// Records are streamed: a consumer sees each alignment as it is produced.
	return s.bw.Flush()
}

func (s *AlignmentSink) Close() error {
	if err := s.bw.Flush(); err != nil && !IsBrokenPipe(err) {
		return err
	}
	return nil
}

// JSONLSink writes one api.ReplicateV1 object per line.
type JSONLSink struct {
	enc *jsonlutil.Encoder[replicate.Record]
}

// NewJSONLSink streams v1 JSON lines to out. Close flushes but does not close out.
func NewJSONLSink(out io.Writer) *JSONLSink {
	return &JSONLSink{enc: jsonlutil.NewEncoder(out,
		func(enc *json.Encoder, r replicate.Record) error {
			return enc.Encode(ToAPIReplicate(r))
		},
		IsBrokenPipe,
	)}
}

func (s *JSONLSink) Write(rec replicate.Record) error {
	if err := s.enc.Encode(rec); err != nil {
		return err
	}
	return s.enc.Flush()
}

func (s *JSONLSink) Close() error { return s.enc.Close() }
