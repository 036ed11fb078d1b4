// Package treefile reads the trees block of a MrBayes .t file (NEXUS).
package treefile

import (
	"fmt"
	"io"
	"os"
	"strings"

	gonexus "github.com/evolbioinfo/gotree/io/nexus"
	"github.com/evolbioinfo/gotree/tree"

	"predsim/internal/simerr"
)

// Topology is one sampled tree. Newick carries taxon names (translate table
// applied) and a terminating semicolon; the pipeline treats it as opaque text.
type Topology struct {
	Label  string // tree statement name, e.g. "gen.1000"
	Newick string
}

func (t Topology) String() string { return t.Newick }

// ReadFile reads the trees of a NEXUS file. See Read.
func ReadFile(path string, skip, limit int) ([]Topology, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	out, err := Read(fh, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Read returns the trees of r in file order, skipping the first skip trees and
// keeping at most limit (limit <= 0 keeps the rest).
func Read(r io.Reader, skip, limit int) ([]Topology, error) {
	if skip < 0 {
		return nil, fmt.Errorf("negative skip %d", skip)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := stripComments(string(raw))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("tree file is empty: %w", simerr.ErrMissingData)
	}

	nx, err := gonexus.NewParser(strings.NewReader(text)).Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing tree file: %w", err)
	}
	var (
		out  []Topology
		seen int
	)
	nx.IterateTrees(func(name string, t *tree.Tree) {
		seen++
		if seen <= skip || (limit > 0 && len(out) == limit) {
			return
		}
		out = append(out, Topology{
			Label:  strings.Trim(name, "'"),
			Newick: strings.TrimSuffix(strings.TrimSpace(t.Newick()), ";") + ";",
		})
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("no trees to process in tree file: %w", simerr.ErrMissingData)
	}
	return out, nil
}

// stripComments drops [...] comments outside single quotes. MrBayes writes
// [ID: ...] headers and [&U] rooting marks the tree parser does not need.
func stripComments(s string) (string, error) {
	var (
		sb      strings.Builder
		depth   int
		inQuote bool
	)
	sb.Grow(len(s))
	for _, c := range s {
		switch {
		case depth > 0:
			if c == '[' {
				depth++
			} else if c == ']' {
				depth--
			}
		case inQuote:
			sb.WriteRune(c)
			if c == '\'' {
				inQuote = false
			}
		case c == '[':
			depth++
		case c == '\'':
			inQuote = true
			sb.WriteRune(c)
		default:
			sb.WriteRune(c)
		}
	}
	if depth > 0 {
		return "", fmt.Errorf("unterminated comment in tree file")
	}
	return sb.String(), nil
}
