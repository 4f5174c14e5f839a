package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type corpusDirs struct {
	funcDir, symDir, outDir string
}

func setupCorpus(t *testing.T) corpusDirs {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, ".config"))

	d := corpusDirs{
		funcDir: filepath.Join(root, "func"),
		symDir:  filepath.Join(root, "sym"),
		outDir:  filepath.Join(root, "out"),
	}
	require.NoError(t, os.MkdirAll(d.funcDir, 0o755))
	require.NoError(t, os.MkdirAll(d.symDir, 0o755))

	write := func(dir, name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write(d.symDir, "a.sym", "0x1000 16\n0x1010 16\n")
	write(d.funcDir, "a.funcbd", "0x1000 16\n0x1010 16\n")
	write(d.symDir, "b.sym", "0x2000 16\n0x2010 16\n")
	write(d.funcDir, "b.funcbd", "0x2000 32\n")
	return d
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := execute("version")
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "fnbound "))
}

func TestUsageErrors(t *testing.T) {
	setupCorpus(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "UnknownCommand", args: []string{"frobnicate"}},
		{name: "UnknownFlag", args: []string{"score", "--nope"}},
		{name: "MissingDirs", args: []string{"score"}},
		{name: "TooManyArgs", args: []string{"score", "a", "b", "c"}},
		{name: "BadSummaryFormat", args: []string{"score", "x", "y", "--summary-format", "xml"}},
		{name: "BadLogLevel", args: []string{"score", "x", "y", "--log-level", "loud"}},
		{name: "HistoryWithoutDB", args: []string{"history"}},
		{name: "ReportArgs", args: []string{"report", "only-one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(tt.args...)
			assert.Equal(t, exitUsage, code, stderr)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestScore(t *testing.T) {
	d := setupCorpus(t)
	db := filepath.Join(d.outDir, "runs.db")
	prom := filepath.Join(d.outDir, "fnbound.prom")

	code, out, stderr := execute("score", d.funcDir, d.symDir,
		"--outdir", d.outDir, "-j", "2", "--summary-format", "yaml",
		"--db", db, "--metrics-file", prom)
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, out, "Found 2 total matches in 2 files from 4 gts for 50.00%")
	assert.Contains(t, out, "For boundary: Precision 66.67% and recall 50.00%")
	for _, name := range []string{"a.res", "b.res", "results.csv", "results1.csv", "summary.yaml"} {
		assert.FileExists(t, filepath.Join(d.outDir, name))
	}
	assert.FileExists(t, prom)
	assert.Contains(t, stderr, "run complete")

	code, out, stderr = execute("history", "--db", db)
	require.Equal(t, exitOK, code, stderr)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "F1 BOUNDARY")
	assert.Contains(t, lines[1], "57.14%")

	code, out, stderr = execute("history", "b.funcbd", "--db", db)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, out, "scored")
}

func TestScore_FromConfigFile(t *testing.T) {
	d := setupCorpus(t)
	cfg := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"funcdir: "+d.funcDir+"\nsymdir: "+d.symDir+"\noutdir: "+d.outDir+"\nworkers: 1\n"), 0o644))

	code, _, stderr := execute("score", "--config", cfg)
	require.Equal(t, exitOK, code, stderr)
	assert.FileExists(t, filepath.Join(d.outDir, "results.csv"))
}

func TestScore_FailedBinary(t *testing.T) {
	d := setupCorpus(t)
	require.NoError(t, os.WriteFile(filepath.Join(d.symDir, "c.sym"), []byte("text zz 0x10\n0x10 4\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(d.funcDir, "c.funcbd"), []byte("0x10 4\n"), 0o644))

	code, out, stderr := execute("score", d.funcDir, d.symDir, "--outdir", d.outDir)
	assert.Equal(t, exitRun, code)
	assert.Contains(t, out, "Failed 1")
	assert.Contains(t, stderr, "1 of 3 binaries failed")
	assert.FileExists(t, filepath.Join(d.outDir, "results.csv"))
}

func TestScore_MissingTruth(t *testing.T) {
	d := setupCorpus(t)
	require.NoError(t, os.Remove(filepath.Join(d.symDir, "b.sym")))

	code, _, stderr := execute("score", d.funcDir, d.symDir, "--outdir", d.outDir)
	assert.Equal(t, exitRun, code)
	assert.Contains(t, stderr, "missing ground truth")
}

func TestReport(t *testing.T) {
	d := setupCorpus(t)

	code, out, stderr := execute("report", filepath.Join(d.symDir, "b.sym"), filepath.Join(d.funcDir, "b.funcbd"))
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, out, "0(0.00%) matches out of 2 functions with 0 others 1 missing")
	assert.Contains(t, out, "1 long and 0 short and 1 buried")

	code, out, _ = execute("report", "--lists", filepath.Join(d.symDir, "b.sym"), filepath.Join(d.funcDir, "b.funcbd"))
	require.Equal(t, exitOK, code)
	assert.Equal(t, "short,long,missing\n0x0,0x2000,0x2010\n", out)

	code, _, _ = execute("report", filepath.Join(d.symDir, "zz.sym"), filepath.Join(d.funcDir, "b.funcbd"))
	assert.Equal(t, exitRun, code)
}
