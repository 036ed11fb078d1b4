// internal/clibase/usage.go
package clibase

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"predsim/internal/version"
)

// Section is a titled group of flags in the help screen.
type Section struct {
	Title string
	Flags []string // long names, in display order
}

// Usage prints the grouped help screen: header, synopsis, one block per
// section, then examples.
func Usage(out io.Writer, name string, synopsis []string, fs *pflag.FlagSet, sections []Section, examples string) {
	fmt.Fprintf(out, "%s – posterior predictive simulation with Seq-Gen\n\n", name)
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)

	fmt.Fprintln(out, "Usage:")
	for _, s := range synopsis {
		fmt.Fprintf(out, "  %s\n", s)
	}

	for _, sec := range sections {
		fmt.Fprintf(out, "\n%s:\n", sec.Title)
		for _, n := range sec.Flags {
			if f := fs.Lookup(n); f != nil {
				fmt.Fprintln(out, flagLine(f))
			}
		}
	}
	fmt.Fprintln(out, "  -h, --help                     Show this help and exit")
	fmt.Fprintln(out, "  -v, --version                  Print version and exit")

	if examples != "" {
		fmt.Fprintln(out, "\nExamples:")
		fmt.Fprintln(out, strings.TrimRight(examples, "\n"))
	}
}

// Unlisted returns the flags of fs that no section mentions.
func Unlisted(fs *pflag.FlagSet, sections []Section) []string {
	listed := map[string]bool{"help": true, "version": true}
	for _, sec := range sections {
		for _, n := range sec.Flags {
			listed[n] = true
		}
	}
	var out []string
	fs.VisitAll(func(f *pflag.Flag) {
		if !listed[f.Name] {
			out = append(out, f.Name)
		}
	})
	return out
}

func flagLine(f *pflag.Flag) string {
	label := "    --" + f.Name
	if f.Shorthand != "" {
		label = "-" + f.Shorthand + ", --" + f.Name
	}
	if t := f.Value.Type(); t != "bool" {
		label += " " + t
	}
	line := fmt.Sprintf("  %-30s %s", label, f.Usage)
	if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
		line += " [" + f.DefValue + "]"
	}
	return line
}
