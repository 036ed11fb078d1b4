// Package params translates one MrBayes posterior sample into the parameter set
// Seq-Gen needs to simulate under the same model.
package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"predsim/internal/posterior"
	"predsim/internal/simerr"
)

// Seq-Gen model names.
const (
	ModelHKY = "HKY"
	ModelGTR = "GTR"
)

// Posterior column names.
const (
	KeyKappa  = "kappa"
	KeyAlpha  = "alpha"
	KeyPinvar = "pinvar"
)

// FreqKeys are the base-frequency columns in A, C, G, T order. All are required.
var FreqKeys = [4]string{"pi(A)", "pi(C)", "pi(G)", "pi(T)"}

// RateKeys are the GTR exchangeability columns in Seq-Gen's -r order.
var RateKeys = [6]string{"r(A<->C)", "r(A<->G)", "r(A<->T)", "r(C<->G)", "r(C<->T)", "r(G<->T)"}

// Field describes one posterior column group and whether translation requires it.
type Field struct {
	Name     string
	Keys     []string
	Required bool
}

// Schema lists every column group Translate reads. Optional groups are used only
// when all of their keys are present.
var Schema = []Field{
	{Name: "state_freqs", Keys: FreqKeys[:], Required: true},
	{Name: "ti_tv", Keys: append([]string{KeyKappa}, FreqKeys[:]...)},
	{Name: "general_rates", Keys: RateKeys[:]},
	{Name: "gamma_shape", Keys: []string{KeyAlpha}},
	{Name: "prop_invar", Keys: []string{KeyPinvar}},
}

// SimulatorParams is the normalized, simulator-ready parameter set.
// Nil pointers and empty strings mean "not set".
type SimulatorParams struct {
	StateFreqs   string   `json:"state_freqs"`
	TiTv         *float64 `json:"ti_tv,omitempty"`
	GeneralRates string   `json:"general_rates,omitempty"`
	GammaShape   *float64 `json:"gamma_shape,omitempty"`
	GammaCats    int      `json:"gamma_cats,omitempty"` // 0 = continuous
	PropInvar    *float64 `json:"prop_invar,omitempty"`
}

// Model returns the Seq-Gen model name implied by the active rate parameters.
func (p SimulatorParams) Model() string {
	if p.GeneralRates != "" {
		return ModelGTR
	}
	return ModelHKY
}

// Check enforces the cross-field rules that must hold before Seq-Gen is called.
func (p SimulatorParams) Check() error {
	if p.TiTv != nil && p.GeneralRates != "" {
		return fmt.Errorf("both ti_tv and general_rates are set; only one rate model may be active: %w", simerr.ErrConfiguration)
	}
	if p.GammaCats != 0 && p.GammaShape == nil {
		return fmt.Errorf("gamma_cats=%d requires a gamma shape (alpha) in the sample: %w", p.GammaCats, simerr.ErrConfiguration)
	}
	if p.GammaCats < 0 {
		return fmt.Errorf("gamma_cats=%d must be positive: %w", p.GammaCats, simerr.ErrConfiguration)
	}
	return nil
}

// Translate maps a posterior sample to SimulatorParams following Schema.
// Only the base frequencies are required; every other group is filled when all of
// its keys are present. Mutual exclusivity is not checked here (see Check).
func Translate(s posterior.Sample) (SimulatorParams, error) {
	var p SimulatorParams

	freqText, err := requireAll(s, FreqKeys[:])
	if err != nil {
		return p, err
	}
	var pi [4]float64
	for i, k := range FreqKeys {
		if pi[i], err = parseFloat(k, freqText[i]); err != nil {
			return p, err
		}
	}
	p.StateFreqs = strings.Join(freqText, ",")

	if kt, ok := s.Lookup(KeyKappa); ok {
		kappa, err := parseFloat(KeyKappa, kt)
		if err != nil {
			return p, err
		}
		titv, err := KappaToTiTv(kappa, pi[0], pi[1], pi[2], pi[3])
		if err != nil {
			return p, err
		}
		p.TiTv = &titv
	}

	if rates, ok := lookupAll(s, RateKeys[:]); ok {
		for i, k := range RateKeys {
			if _, err := parseFloat(k, rates[i]); err != nil {
				return p, err
			}
		}
		p.GeneralRates = strings.Join(rates, ",")
	}

	if p.GammaShape, err = optionalFloat(s, KeyAlpha); err != nil {
		return p, err
	}
	if p.PropInvar, err = optionalFloat(s, KeyPinvar); err != nil {
		return p, err
	}
	return p, nil
}

func requireAll(s posterior.Sample, keys []string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		v, ok := s.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("could not find base frequency %q: %w", k, simerr.ErrMissingData)
		}
		out[i] = v
	}
	return out, nil
}

func lookupAll(s posterior.Sample, keys []string) ([]string, bool) {
	out := make([]string, len(keys))
	for i, k := range keys {
		v, ok := s.Lookup(k)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func optionalFloat(s posterior.Sample, key string) (*float64, error) {
	v, ok := s.Lookup(key)
	if !ok {
		return nil, nil
	}
	f, err := parseFloat(key, v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseFloat(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number: %w", key, v, simerr.ErrMissingData)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s=%q is not finite: %w", key, v, simerr.ErrNumericDomain)
	}
	return f, nil
}

// Present returns the names of the Schema groups whose keys are all present in s.
func Present(s posterior.Sample) []string {
	var names []string
	for _, f := range Schema {
		if _, ok := lookupAll(s, f.Keys); ok {
			names = append(names, f.Name)
		}
	}
	return names
}

// CheckFreqs validates a global base-frequency override: four finite,
// non-negative values with a positive sum, in A, C, G, T order.
func CheckFreqs(freqs []float64) error {
	if len(freqs) != len(FreqKeys) {
		return fmt.Errorf("need %d base frequencies (A C G T), got %d: %w", len(FreqKeys), len(freqs), simerr.ErrConfiguration)
	}
	var tot float64
	for i, f := range freqs {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return fmt.Errorf("base frequency %s=%g must be finite and ≥ 0: %w", FreqKeys[i], f, simerr.ErrConfiguration)
		}
		tot += f
	}
	if tot == 0 {
		return fmt.Errorf("base frequencies sum to zero: %w", simerr.ErrConfiguration)
	}
	return nil
}

// WithFreqs returns a copy of s whose pi(A..T) cells hold freqs. It is how
// a run-wide frequency override reaches Translate, so Ti/Tv uses the same values.
func WithFreqs(s posterior.Sample, freqs []float64) posterior.Sample {
	out := make(posterior.Sample, len(s)+len(FreqKeys))
	for k, v := range s {
		out[k] = v
	}
	for i, k := range FreqKeys {
		out[k] = strconv.FormatFloat(freqs[i], 'g', -1, 64)
	}
	return out
}
