// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"predsim/internal/output"
	"predsim/internal/seqgen"
)

// AlignmentFunc renders one alignment.
type AlignmentFunc func(io.Writer, seqgen.Alignment) error

// AlignmentWriters maps an output format to its renderer.
var AlignmentWriters = map[string]AlignmentFunc{}

func init() {
	RegisterAlignment(output.FormatNexus, output.WriteNexus)
	RegisterAlignment(output.FormatPhylip, output.WritePhylip)
}

// RegisterAlignment adds or replaces (last wins) the renderer for format.
func RegisterAlignment(format string, fn AlignmentFunc) { AlignmentWriters[format] = fn }

// LookupAlignment returns the renderer for format.
func LookupAlignment(format string) (AlignmentFunc, error) {
	fn, ok := AlignmentWriters[format]
	if !ok {
		return nil, fmt.Errorf("unknown alignment format %q (no writer registered)", format)
	}
	return fn, nil
}

// AlignmentFormats lists the registered format names, sorted.
func AlignmentFormats() []string {
	out := make([]string, 0, len(AlignmentWriters))
	for k := range AlignmentWriters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
