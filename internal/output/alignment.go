package output

import (
	"io"

	"github.com/evolbioinfo/goalign/io/nexus"
	"github.com/evolbioinfo/goalign/io/phylip"

	"predsim/internal/seqgen"
)

// WriteNexus writes a as a NEXUS document.
func WriteNexus(w io.Writer, a seqgen.Alignment) error {
	al, err := a.Goalign()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, nexus.WriteAlignment(al))
	return err
}

// WritePhylip writes a as sequential relaxed PHYLIP, one line per taxon.
func WritePhylip(w io.Writer, a seqgen.Alignment) error {
	al, err := a.Goalign()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, phylip.WriteAlignment(al, false, true, true))
	return err
}
