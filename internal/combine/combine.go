// Package combine pairs trees, posterior samples and optional seeds by position.
package combine

import (
	"fmt"

	"predsim/internal/posterior"
	"predsim/internal/simerr"
	"predsim/internal/treefile"
)

// Triple is one unit of work: the i-th tree, sample and (optional) seed.
type Triple struct {
	Index    int // 0-based input position
	Topology treefile.Topology
	Sample   posterior.Sample
	Seed     string
	HasSeed  bool
}

// Triples is a single-pass cursor over the zipped inputs.
type Triples struct {
	topologies []treefile.Topology
	samples    []posterior.Sample
	seeds      []string
	pos        int
}

// Combine validates the input counts and returns a cursor over the triples.
// seeds may be nil (the simulator then picks its own); when given it must hold at
// least one seed per sample, and surplus seeds are ignored.
func Combine(topologies []treefile.Topology, samples []posterior.Sample, seeds []string) (*Triples, error) {
	if len(samples) != len(topologies) {
		return nil, fmt.Errorf("number of trees (%d) does not match the number of parameter records (%d): %w",
			len(topologies), len(samples), simerr.ErrCardinality)
	}
	if seeds != nil && len(seeds) < len(samples) {
		return nil, fmt.Errorf("%d seeds given for %d parameter records: %w",
			len(seeds), len(samples), simerr.ErrCardinality)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no records to process: %w", simerr.ErrMissingData)
	}
	return &Triples{topologies: topologies, samples: samples, seeds: seeds}, nil
}

// Len is the total number of triples, consumed or not.
func (t *Triples) Len() int { return len(t.samples) }

// Next returns the next triple, or false once the inputs are exhausted.
func (t *Triples) Next() (Triple, bool) {
	if t.pos >= len(t.samples) {
		return Triple{}, false
	}
	i := t.pos
	t.pos++
	tr := Triple{Index: i, Topology: t.topologies[i], Sample: t.samples[i]}
	if t.seeds != nil {
		tr.Seed, tr.HasSeed = t.seeds[i], true
	}
	return tr, true
}
