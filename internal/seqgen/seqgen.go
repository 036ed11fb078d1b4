package seqgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"predsim/internal/params"
	"predsim/internal/simerr"
)

// DefaultPath is the executable name looked up on PATH when none is configured.
const DefaultPath = "seq-gen"

// Request is everything one Seq-Gen invocation needs.
type Request struct {
	Tree    string // Newick, ';'-terminated
	SeqLen  int
	Params  params.SimulatorParams
	Seed    string
	HasSeed bool
	Path    string // executable; DefaultPath when empty
}

// Result is the parsed alignment plus the exact command that produced it.
type Result struct {
	Alignment Alignment
	Command   string
}

// Simulator runs one simulation. Implementations must be safe to call from
// several goroutines when used with replicate.Ordered.
type Simulator interface {
	Simulate(ctx context.Context, req Request) (Result, error)
}

// SimulatorFunc adapts a function to Simulator.
type SimulatorFunc func(ctx context.Context, req Request) (Result, error)

func (f SimulatorFunc) Simulate(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// ComposeArgs returns argv (executable first) for req. The output is a pure
// function of req, so the joined form doubles as the audit record.
func ComposeArgs(path string, req Request) []string {
	p := req.Params
	args := []string{
		path,
		"-m" + p.Model(),
		"-l" + strconv.Itoa(req.SeqLen),
	}
	if p.StateFreqs != "" {
		args = append(args, "-f"+p.StateFreqs)
	}
	switch {
	case p.GeneralRates != "":
		args = append(args, "-r"+p.GeneralRates)
	case p.TiTv != nil:
		args = append(args, "-t"+formatFloat(*p.TiTv))
	}
	if p.GammaShape != nil {
		args = append(args, "-a"+formatFloat(*p.GammaShape))
		if p.GammaCats > 0 {
			args = append(args, "-g"+strconv.Itoa(p.GammaCats))
		}
	}
	if p.PropInvar != nil {
		args = append(args, "-i"+formatFloat(*p.PropInvar))
	}
	if req.HasSeed {
		args = append(args, "-z"+req.Seed)
	}
	return append(args, "-op", "-q")
}

// Command is the space-joined form of ComposeArgs.
func Command(path string, req Request) string {
	return strings.Join(ComposeArgs(path, req), " ")
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Exec runs the Seq-Gen executable, feeding the tree on stdin.
type Exec struct{}

// ResolvePath returns the PATH lookup of p, or p itself when the lookup fails.
func ResolvePath(p string) string {
	if p == "" {
		p = DefaultPath
	}
	if full, err := exec.LookPath(p); err == nil {
		return full
	}
	return p
}

func (Exec) Simulate(ctx context.Context, req Request) (Result, error) {
	path := ResolvePath(req.Path)
	argv := ComposeArgs(path, req)
	res := Result{Command: strings.Join(argv, " ")}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(req.Tree + "\n")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return res, fmt.Errorf("%s exited with status %d: %s: %w",
				path, ee.ExitCode(), lastLine(stderr.String()), simerr.ErrUpstreamTool)
		}
		return res, fmt.Errorf("running %s: %v: %w", path, err, simerr.ErrUpstreamTool)
	}
	aln, err := ParsePhylip(stdout.String())
	if err != nil {
		return res, err
	}
	res.Alignment = aln
	return res, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "no diagnostic output"
	}
	return s
}
