package output

// Alignment output formats.
const (
	FormatNexus  = "nexus"
	FormatPhylip = "phylip"
	FormatJSONL  = "jsonl"
)

// Formats lists every value accepted by --output-format.
var Formats = []string{FormatNexus, FormatPhylip, FormatJSONL}

// phylipMinName is the classic PHYLIP name field width; longer names are kept
// whole (relaxed PHYLIP) and padded to the longest name instead.
const phylipMinName = 10
