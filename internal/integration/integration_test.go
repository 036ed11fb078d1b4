// internal/integration/integration_test.go
package integration

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"predsim/internal/app"
	"predsim/internal/seqgen"
	"predsim/internal/simerr"
	"predsim/pkg/api"
)

const pFile = "[ID: 9409050143]\n" +
	"Gen\tLnL\tTL\tkappa\tpi(A)\tpi(C)\tpi(G)\tpi(T)\talpha\tpinvar\n" +
	"1\t-2531.2\t1.91\t2.0\t0.25\t0.25\t0.25\t0.25\t0.5\t0.1\n" +
	"1000\t-2419.8\t1.70\t3.1\t0.30\t0.20\t0.20\t0.30\t0.8\t0.2\n" +
	"2000\t-2417.5\t1.66\t2.7\t0.28\t0.22\t0.21\t0.29\t0.6\t0.15\n"

const pFileNoAlpha = "[ID: 9409050143]\n" +
	"Gen\tLnL\tkappa\tpi(A)\tpi(C)\tpi(G)\tpi(T)\n" +
	"1\t-2531.2\t2.0\t0.25\t0.25\t0.25\t0.25\n"

const tFile = `#NEXUS
[ID: 9409050143]
begin trees;
   translate
       1 t1,
       2 t2,
       3 t3;
   tree gen.1 = [&U] (1:0.1,2:0.2,3:0.3);
   tree gen.1000 = [&U] ((1:0.1,2:0.2):0.05,3:0.3);
   tree gen.2000 = [&U] ((1:0.12,3:0.2):0.05,2:0.4);
end;
`

const tFileOne = `#NEXUS
begin trees;
   tree gen.1 = [&U] (t1:0.1,t2:0.2,t3:0.3);
end;
`

// fakeSeqGen returns a three-taxon alignment whose first base encodes the
// tree, so reordered output is detectable.
func fakeSeqGen(delay func(seqgen.Request) time.Duration) seqgen.Simulator {
	return seqgen.SimulatorFunc(func(ctx context.Context, req seqgen.Request) (seqgen.Result, error) {
		if delay != nil {
			select {
			case <-time.After(delay(req)):
			case <-ctx.Done():
				return seqgen.Result{}, ctx.Err()
			}
		}
		base := string("ACGT"[len(req.Tree)%4])
		seq := base + strings.Repeat("A", req.SeqLen-1)
		return seqgen.Result{
			Alignment: seqgen.Alignment{Taxa: []string{"t1", "t2", "t3"}, Seqs: []string{seq, seq, seq}},
			Command:   seqgen.Command(req.Path, req),
		}, nil
	})
}

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(fn, []byte(data), 0o644))
	return fn
}

func run(t *testing.T, sim seqgen.Simulator, argv ...string) (int, string, string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code := app.RunWith(context.Background(), argv, &out, &errBuf, sim)
	return code, out.String(), errBuf.String()
}

func lines(t *testing.T, fn string) []string {
	t.Helper()
	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestEndToEnd_Nexus(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)

	code, out, stderr := run(t, fakeSeqGen(nil), "-l", "8", "-q", p, tf)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, 3, strings.Count(out, "#NEXUS"))
	upper := strings.ToUpper(out)
	assert.Contains(t, upper, "NTAX=3")
	assert.Contains(t, upper, "NCHAR=8")
	assert.Contains(t, upper, "MATRIX")
	assert.Empty(t, stderr, "quiet run should not log")
}

func TestEndToEnd_Phylip(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)

	code, out, stderr := run(t, fakeSeqGen(nil), "-l", "5", "-o", "phylip", "-n", "1", "-q", p, tf)
	require.Equal(t, 0, code, stderr)
	// (t1:0.1,t2:0.2,t3:0.3); has 23 bytes, so the fake leads with 'T'.
	aln, err := seqgen.ParsePhylip(out)
	require.NoError(t, err, out)
	assert.Equal(t, []string{"t1", "t2", "t3"}, aln.Taxa)
	assert.Equal(t, []string{"TAAAA", "TAAAA", "TAAAA"}, aln.Seqs)
}

func TestEndToEnd_JSONL(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)

	code, out, stderr := run(t, fakeSeqGen(nil), "-l", "10", "-g", "4", "-o", "jsonl", "-p", "/opt/seq-gen", "-q", p, tf)
	require.Equal(t, 0, code, stderr)

	var recs []api.ReplicateV1
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r api.ReplicateV1
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		recs = append(recs, r)
	}
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, i+1, r.Replicate)
		assert.Equal(t, "HKY", r.Model)
		assert.Len(t, r.Sequences, 3)
		require.NotNil(t, r.Params.TiTv)
		assert.Equal(t, 4, r.Params.GammaCats)
		assert.True(t, strings.HasPrefix(r.Command, "/opt/seq-gen -mHKY -l10 -f"), r.Command)
		assert.Contains(t, r.Command, " -g4 ")
	}
	assert.Equal(t, "gen.1000", recs[1].TreeLabel)
	assert.Equal(t, "((t1:0.1,t2:0.2):0.05,t3:0.3);", recs[1].Tree)
	assert.Equal(t, "/opt/seq-gen -mHKY -l10 -f0.25,0.25,0.25,0.25 -t1 -a0.5 -g4 -i0.1 -op -q", recs[0].Command)
}

func TestSideLogsAndSeeds(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)
	seeds := write(t, dir, "seeds.txt", "101\n202\n\n303\n404\n")
	cmds, trees := filepath.Join(dir, "cmds.txt"), filepath.Join(dir, "trees.txt")

	code, _, stderr := run(t, fakeSeqGen(nil), "-l", "8", "-q",
		"--seeds-file", seeds, "--commands-file", cmds, "--trees-file", trees, p, tf)
	require.Equal(t, 0, code, stderr)

	cl := lines(t, cmds)
	require.Len(t, cl, 3)
	for i, seed := range []string{"101", "202", "303"} {
		assert.Contains(t, cl[i], " -z"+seed+" ")
		assert.Contains(t, cl[i], "-mHKY")
	}
	assert.Equal(t, []string{
		"(t1:0.1,t2:0.2,t3:0.3);",
		"((t1:0.1,t2:0.2):0.05,t3:0.3);",
		"((t1:0.12,t3:0.2):0.05,t2:0.4);",
	}, lines(t, trees))
}

func TestTooFewSeeds_Exit2(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)
	seeds := write(t, dir, "seeds.txt", "101\n")

	code, out, stderr := run(t, fakeSeqGen(nil), "--seeds-file", seeds, p, tf)
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "predsim: ")
}

func TestCardinalityMismatch_Exit2(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFileOne)

	code, out, stderr := run(t, fakeSeqGen(nil), p, tf)
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, simerr.ErrCardinality.Error())
}

func TestGammaCatsWithoutAlpha_Exit2(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFileNoAlpha), write(t, dir, "run.t", tFileOne)

	called := false
	sim := seqgen.SimulatorFunc(func(context.Context, seqgen.Request) (seqgen.Result, error) {
		called = true
		return seqgen.Result{}, nil
	})
	code, out, stderr := run(t, sim, "-g", "4", p, tf)
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
	assert.False(t, called, "simulator must not run for an invalid parameter set")
	assert.Contains(t, stderr, "replicate 1")
}

func TestUpstreamFailure_Exit3_KeepsEarlierOutput(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)

	good := fakeSeqGen(nil)
	n := 0
	sim := seqgen.SimulatorFunc(func(ctx context.Context, req seqgen.Request) (seqgen.Result, error) {
		n++
		if n == 2 {
			return seqgen.Result{}, fmt.Errorf("seq-gen exited with status 1: bad tree: %w", simerr.ErrUpstreamTool)
		}
		return good.Simulate(ctx, req)
	})
	code, out, stderr := run(t, sim, "-l", "8", p, tf)
	assert.Equal(t, 3, code)
	assert.Equal(t, 1, strings.Count(out, "#NEXUS"))
	assert.Contains(t, stderr, "replicate 2 (gen.1000)")
	assert.Contains(t, stderr, "bad tree")
}

func TestParallelJobs_MatchSerialOrder(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)

	// Earlier replicates finish last.
	slow := fakeSeqGen(func(req seqgen.Request) time.Duration {
		return time.Duration(60-len(req.Tree)) * time.Millisecond
	})
	code, serial, stderr := run(t, slow, "-o", "jsonl", "-l", "6", "-q", p, tf)
	require.Equal(t, 0, code, stderr)
	code, parallel, stderr := run(t, slow, "-o", "jsonl", "-l", "6", "-q", "-j", "3", p, tf)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, serial, parallel)
}

func TestLedgerAndMetrics(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)
	db, prom := filepath.Join(dir, "ledger.db"), filepath.Join(dir, "predsim.prom")

	code, _, stderr := run(t, fakeSeqGen(nil), "-l", "8", "-q", "--ledger", db, "--metrics-file", prom, p, tf)
	require.Equal(t, 0, code, stderr)

	conn, err := sql.Open("sqlite", db)
	require.NoError(t, err)
	defer conn.Close()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM replicates`).Scan(&n))
	assert.Equal(t, 3, n)
	var status string
	require.NoError(t, conn.QueryRow(`SELECT status FROM runs`).Scan(&status))
	assert.Equal(t, "done", status)

	text, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(text), `predsim_replicates_total{model="HKY"} 3`)
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFileOne)
	cfg := write(t, dir, "predsim.yaml", "seqgen:\n  length: 7\noutput:\n  format: phylip\nlogging:\n  quiet: true\n")

	code, out, stderr := run(t, fakeSeqGen(nil), "--config", cfg, "-n", "1", p, tf)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"3", "7"}, phylipHeader(out), out)

	code, out, stderr = run(t, fakeSeqGen(nil), "--config", cfg, "-l", "4", "-n", "1", p, tf)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"3", "4"}, phylipHeader(out), out)
}

func TestUsageErrors_Exit2(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "run.p", pFile)

	code, _, stderr := run(t, fakeSeqGen(nil), p)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "expected PFILE and TFILE")

	code, _, _ = run(t, fakeSeqGen(nil), "--no-such-flag", p, p)
	assert.Equal(t, 2, code)

	code, _, stderr = run(t, fakeSeqGen(nil), "-o", "fasta", p, p)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid output format")
}

func TestVersion(t *testing.T) {
	for _, argv := range [][]string{{"version"}, {"--version"}} {
		code, out, _ := run(t, fakeSeqGen(nil), argv...)
		assert.Equal(t, 0, code)
		assert.True(t, strings.HasPrefix(out, "predsim version "), out)
	}
}

func TestCancelled_Exit130(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "run.p", pFile), write(t, dir, "run.t", tFile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errBuf bytes.Buffer
	code := app.RunWith(ctx, []string{p, tf}, &out, &errBuf, fakeSeqGen(nil))
	assert.Equal(t, 130, code)
	assert.Empty(t, out.String())
}

func TestHelp(t *testing.T) {
	code, out, _ := run(t, fakeSeqGen(nil), "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Usage:\n  predsim [flags] PFILE TFILE\n")
	assert.Contains(t, out, "-o, --output-format string")
	assert.Contains(t, out, "Examples:")
}

// MrBayes runs with fixed frequencies write no pi(X) columns.
const pFileJC = "[ID: 9409050143]\n" +
	"Gen\tLnL\tTL\talpha\n" +
	"1\t-2531.2\t1.91\t0.5\n"

func TestFreqsOverride_FixedFrequencyRun(t *testing.T) {
	dir := t.TempDir()
	p, tf := write(t, dir, "jc.p", pFileJC), write(t, dir, "jc.t", tFileOne)

	code, out, stderr := run(t, fakeSeqGen(nil), "-l", "2", "-o", "jsonl", "-q", p, tf)
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "pi(A)")

	code, out, stderr = run(t, fakeSeqGen(nil), "-l", "2", "-o", "jsonl", "-q",
		"--freqs", "0.25,0.25,0.25,0.25", p, tf)
	require.Equal(t, 0, code, stderr)
	var r api.ReplicateV1
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &r))
	assert.Equal(t, "0.25,0.25,0.25,0.25", r.Params.StateFreqs)
	assert.Equal(t, "seq-gen -mHKY -l2 -f0.25,0.25,0.25,0.25 -a0.5 -op -q", r.Command)

	code, _, stderr = run(t, fakeSeqGen(nil), "--freqs", "0.5,0.5", p, tf)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "base frequencies")
}

func phylipHeader(out string) []string {
	first, _, _ := strings.Cut(out, "\n")
	return strings.Fields(first)
}
