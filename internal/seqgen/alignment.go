package seqgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evolbioinfo/goalign/align"
	"github.com/evolbioinfo/goalign/io/phylip"

	"predsim/internal/simerr"
)

// Alignment is a simulated character matrix: Seqs[i] belongs to Taxa[i].
type Alignment struct {
	Taxa []string
	Seqs []string
}

// NTax is the number of sequences.
func (a Alignment) NTax() int { return len(a.Taxa) }

// NChar is the sequence length (0 for an empty alignment).
func (a Alignment) NChar() int {
	if len(a.Seqs) == 0 {
		return 0
	}
	return len(a.Seqs[0])
}

// Goalign converts a to a goalign nucleotide alignment, keeping taxon order.
func (a Alignment) Goalign() (align.Alignment, error) {
	al := align.NewAlign(align.NUCLEOTIDS)
	for i, name := range a.Taxa {
		if err := al.AddSequence(name, a.Seqs[i], ""); err != nil {
			return nil, fmt.Errorf("taxon %s: %w", name, err)
		}
	}
	return al, nil
}

// FromGoalign copies al into an Alignment in sequence order.
func FromGoalign(al align.Alignment) Alignment {
	n := al.NbSequences()
	a := Alignment{Taxa: make([]string, 0, n), Seqs: make([]string, 0, n)}
	for i := 0; i < n; i++ {
		name, _ := al.GetSequenceNameById(i)
		seq, _ := al.GetSequenceById(i)
		a.Taxa = append(a.Taxa, name)
		a.Seqs = append(a.Seqs, seq)
	}
	return a
}

// ParsePhylip reads a PHYLIP alignment as written by Seq-Gen with -op,
// sequential or interleaved, with relaxed (whitespace separated) names.
func ParsePhylip(text string) (Alignment, error) {
	if strings.TrimSpace(text) == "" {
		return Alignment{}, fmt.Errorf("simulator produced no alignment: %w", simerr.ErrUpstreamTool)
	}
	al, err := phylip.NewParser(strings.NewReader(text), false).Parse()
	if err != nil {
		return Alignment{}, fmt.Errorf("reading simulator output: %v: %w", err, simerr.ErrUpstreamTool)
	}
	a := FromGoalign(al)
	if a.NTax() == 0 {
		return a, fmt.Errorf("simulator produced no alignment: %w", simerr.ErrUpstreamTool)
	}
	ntax, nchar := phylipHeader(text)
	if ntax != a.NTax() || nchar != a.NChar() {
		return a, fmt.Errorf("PHYLIP header declares %d x %d, found %d x %d: %w",
			ntax, nchar, a.NTax(), a.NChar(), simerr.ErrUpstreamTool)
	}
	for i, s := range a.Seqs {
		if len(s) != nchar {
			return a, fmt.Errorf("taxon %s has %d characters, header declares %d: %w",
				a.Taxa[i], len(s), nchar, simerr.ErrUpstreamTool)
		}
	}
	return a, nil
}

// phylipHeader returns the "ntax nchar" pair of the first non-blank line, or
// -1, -1 when it does not hold two integers.
func phylipHeader(text string) (int, int) {
	for _, line := range strings.Split(text, "\n") {
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		if len(f) < 2 {
			return -1, -1
		}
		ntax, err1 := strconv.Atoi(f[0])
		nchar, err2 := strconv.Atoi(f[1])
		if err1 != nil || err2 != nil {
			return -1, -1
		}
		return ntax, nchar
	}
	return -1, -1
}
