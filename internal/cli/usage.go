package cli

import "predsim/internal/clibase"

// Sections orders the root flags in the help screen.
var Sections = []clibase.Section{
	{Title: "Input", Flags: []string{"skip", "num-records", "seeds-file"}},
	{Title: "Simulation", Flags: []string{"length", "gamma-cats", "freqs", "seqgen-path", "jobs"}},
	{Title: "Output", Flags: []string{"output-format", "commands-file", "trees-file", "ledger", "metrics-file"}},
	{Title: "Miscellaneous", Flags: []string{"config", "log-level", "quiet"}},
}

// Synopsis lists the invocation forms.
var Synopsis = []string{
	"predsim [flags] PFILE TFILE",
	"predsim version",
}

// Examples is printed at the end of --help.
const Examples = `  # one NEXUS alignment per posterior sample, 500 sites
  predsim -l 500 run1.p run1.t > sims.nex

  # drop burn-in, keep 100 samples, discrete gamma, reproducible seeds
  predsim -s 250 -n 100 -g 4 --seeds-file seeds.txt run1.p run1.t > sims.nex

  # fixed equal base frequencies (MrBayes statefreqpr=fixed(equal))
  predsim --freqs 0.25,0.25,0.25,0.25 run1.p run1.t > sims.nex

  # four Seq-Gen processes, JSON lines plus the exact commands used
  predsim -j 4 -o jsonl --commands-file cmds.txt run1.p run1.t > sims.jsonl`
