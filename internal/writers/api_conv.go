package writers

import (
	"predsim/internal/replicate"
	"predsim/pkg/api"
)

// ToAPIReplicate converts a record to the v1 wire schema.
func ToAPIReplicate(r replicate.Record) api.ReplicateV1 {
	p := r.Params
	out := api.ReplicateV1{
		Replicate: r.Index + 1,
		TreeLabel: r.Label,
		Tree:      r.Tree,
		Command:   r.Command,
		Seed:      r.Seed,
		Model:     p.Model(),
		Params: api.ParamsV1{
			StateFreqs:   p.StateFreqs,
			TiTv:         p.TiTv,
			GeneralRates: p.GeneralRates,
			GammaShape:   p.GammaShape,
			GammaCats:    p.GammaCats,
			PropInvar:    p.PropInvar,
		},
		Sequences: make([]api.SequenceV1, len(r.Alignment.Taxa)),
	}
	for i, name := range r.Alignment.Taxa {
		out.Sequences[i] = api.SequenceV1{Taxon: name, Seq: r.Alignment.Seqs[i]}
	}
	return out
}
