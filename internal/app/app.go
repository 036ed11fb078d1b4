// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"predsim/internal/appcore"
	"predsim/internal/cli"
	"predsim/internal/clibase"
	"predsim/internal/cmdutil"
	"predsim/internal/config"
	"predsim/internal/logging"
	"predsim/internal/seqgen"
	"predsim/internal/version"
)

// RunContext runs predsim with the real Seq-Gen executable.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	return RunWith(parent, argv, stdout, stderr, seqgen.Exec{})
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// RunWith runs predsim against sim and returns the process exit code.
func RunWith(parent context.Context, argv []string, stdout, stderr io.Writer, sim seqgen.Simulator) int {
	root := newRootCmd(stdout, stderr, sim)
	root.SetArgs(argv)
	err := root.ExecuteContext(parent)
	if err != nil {
		code := cmdutil.ExitCode(err)
		if code != cmdutil.ExitOK {
			cmdutil.Errorf(stderr, "%v", err)
		}
		return code
	}
	if parent.Err() != nil {
		return cmdutil.ExitCanceled
	}
	return cmdutil.ExitOK
}

func newRootCmd(stdout, stderr io.Writer, sim seqgen.Simulator) *cobra.Command {
	var opts cli.Options

	root := &cobra.Command{
		Use:   "predsim [flags] PFILE TFILE",
		Short: "Simulate alignments from a MrBayes posterior sample with Seq-Gen",
		Long: `predsim reads a MrBayes parameter file (PFILE) and tree file (TFILE), pairs
each sampled tree with its parameter row, and runs Seq-Gen once per pair
under the sampled substitution model. The simulated alignments are written
to stdout in input order.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Finalize(args); err != nil {
				return cmdutil.Usage(err)
			}
			cfg, err := config.Load(opts.ConfigFile)
			if err != nil {
				return cmdutil.Usage(err)
			}
			opts.Apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return cmdutil.Usage(err)
			}

			level := cfg.Logging.Level
			if cfg.Logging.Quiet {
				level = "warn"
			}
			log := logging.NewLogger(level, stderr)

			sum, err := appcore.Run(cmd.Context(), stdout, log, appcore.Options{
				PFile:        opts.PFile,
				TFile:        opts.TFile,
				Skip:         opts.Skip,
				NumRecords:   opts.NumRecords,
				SeedsFile:    opts.SeedsFile,
				CommandsFile: opts.CommandsFile,
				TreesFile:    opts.TreesFile,
				LedgerPath:   opts.LedgerPath,
				MetricsFile:  opts.MetricsFile,
				Config:       cfg,
			}, sim)
			if err != nil {
				log.Debug("run aborted", "run", sum.RunID, "replicates", sum.Replicates, "err", err)
				return err
			}
			log.Info("simulation complete", "run", sum.RunID, "replicates", sum.Replicates,
				"jobs", sum.Jobs, "elapsed", sum.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("predsim version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return cmdutil.Usage(err) })
	cli.Register(root.Flags(), &opts)
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != root {
			defaultHelp(c, args)
			return
		}
		clibase.Usage(c.OutOrStdout(), "predsim", cli.Synopsis, c.Flags(), cli.Sections, cli.Examples)
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "predsim version %s\n", version.Version)
		},
	})
	return root
}
