// pkg/api/replicates_v1.go
package api

// ReplicateV1 is the stable JSON/JSONL schema for one simulated replicate.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ReplicateV1 struct {
	Replicate int          `json:"replicate"` // 1-based input position
	TreeLabel string       `json:"tree_label,omitempty"`
	Tree      string       `json:"tree"`
	Command   string       `json:"command"`
	Seed      string       `json:"seed,omitempty"`
	Model     string       `json:"model"` // "HKY" | "GTR"
	Params    ParamsV1     `json:"params"`
	Sequences []SequenceV1 `json:"sequences"`
}

// ParamsV1 mirrors the simulator parameters that were handed to Seq-Gen.
type ParamsV1 struct {
	StateFreqs   string   `json:"state_freqs"`
	TiTv         *float64 `json:"ti_tv,omitempty"`
	GeneralRates string   `json:"general_rates,omitempty"`
	GammaShape   *float64 `json:"gamma_shape,omitempty"`
	GammaCats    int      `json:"gamma_cats,omitempty"`
	PropInvar    *float64 `json:"prop_invar,omitempty"`
}

// SequenceV1 is one row of the simulated alignment.
type SequenceV1 struct {
	Taxon string `json:"taxon"`
	Seq   string `json:"seq"`
}
