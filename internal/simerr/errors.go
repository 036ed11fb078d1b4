// Package simerr holds the error classes shared by the predsim pipeline.
// Every failure is wrapped around exactly one of these sentinels; test with errors.Is.
package simerr

import "errors"

var (
	// ErrConfiguration: conflicting rate models, or gamma categories without a shape.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingData: a required key is absent or an input source is empty.
	ErrMissingData = errors.New("missing data")
	// ErrCardinality: sample, tree and seed counts disagree.
	ErrCardinality = errors.New("cardinality mismatch")
	// ErrNumericDomain: a zero-sum purine or pyrimidine frequency group.
	ErrNumericDomain = errors.New("numeric domain error")
	// ErrUpstreamTool: the external simulator failed.
	ErrUpstreamTool = errors.New("upstream tool error")
)

// Class returns a short label for the sentinel err wraps, or "other".
func Class(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrMissingData):
		return "missing_data"
	case errors.Is(err, ErrCardinality):
		return "cardinality"
	case errors.Is(err, ErrNumericDomain):
		return "numeric_domain"
	case errors.Is(err, ErrUpstreamTool):
		return "upstream_tool"
	default:
		return "other"
	}
}

// IsInputError reports whether err stems from the inputs or settings rather than
// from the simulator or I/O. The CLI maps these to exit code 2.
func IsInputError(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrMissingData) ||
		errors.Is(err, ErrCardinality) ||
		errors.Is(err, ErrNumericDomain)
}
