// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/cinema/database"
	"github.com/gogpu/cinema/internal/synth"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// isolateHome points the home directory at an empty temp dir so a user
// config cannot leak into the tests.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
}

func generate(t *testing.T, opts synth.Options) string {
	t.Helper()
	opts.Root = t.TempDir()
	if opts.Width == 0 {
		opts.Width, opts.Height = 8, 8
	}
	_, err := synth.Generate(context.Background(), opts)
	require.NoError(t, err)
	return opts.Root
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cinema", cmd.Use)

	for _, name := range []string{"gen", "inspect", "simulate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	root := generate(t, synth.Options{Times: 1, Angles: 1, Format: database.FormatInfoJSON})
	_, stderr, err := execute(t, "inspect", "--format", "xml", root)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "invalid format")
}

func TestInspectGolden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))

	info := generate(t, synth.Options{Times: 3, Angles: 2, Format: database.FormatInfoJSON})
	csv := generate(t, synth.Options{Times: 2, Angles: 2, Format: database.FormatCSV, Layers: 2, Depth: true})

	tests := []struct {
		name string
		args []string
	}{
		{"inspect_info_text", []string{"inspect", info}},
		{"inspect_info_json", []string{"inspect", "--format", "json", info}},
		{"inspect_csv_text", []string{"inspect", csv}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(stdout))
		})
	}
}

func TestInspectMissingDatabase(t *testing.T) {
	stdout, _, err := execute(t, "inspect", "--format", "json", filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDatabase, resp.Error.Code)
}

func TestGenerate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db")
	stdout, _, err := execute(t, "gen", "--times", "2", "--angles", "3", "--size", "8", "--layout", "csv", root)
	require.NoError(t, err)
	assert.Equal(t, "wrote 6 items (6 files) as data.csv\n", stdout)

	ix, err := database.Open(root)
	require.NoError(t, err)
	assert.Equal(t, database.FormatCSV, ix.Format)
	assert.Len(t, ix.Entries, 6)
}

func TestGenerateBadLayout(t *testing.T) {
	_, stderr, err := execute(t, "gen", "--layout", "zip", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, ErrCodeUsage)
}

func TestSimulate(t *testing.T) {
	isolateHome(t)
	root := generate(t, synth.Options{Times: 2, Angles: 4, Format: database.FormatInfoJSON})

	stdout, _, err := execute(t, "simulate", "--format", "json", "--frames", "12", root)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   SimulateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 12, resp.Data.Frames)
	assert.Equal(t, 8, resp.Data.Items)
	assert.Positive(t, resp.Data.Decodes)
	assert.LessOrEqual(t, resp.Data.Decodes, uint64(12), "one decode per frame at most")
	assert.Zero(t, resp.Data.Failures)
}

func TestSimulateWithConfig(t *testing.T) {
	isolateHome(t)
	root := generate(t, synth.Options{Times: 1, Angles: 2, Format: database.FormatInfoJSON})

	dir := t.TempDir()
	path := filepath.Join(dir, "cinema.yaml")
	cfg := "database: " + root + "\nsimulation:\n  frames: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	stdout, _, err := execute(t, "simulate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "frames        5\n")
	assert.Contains(t, stdout, "items         2 (2 layers)\n")
}

func TestSimulateNoDatabase(t *testing.T) {
	isolateHome(t)
	_, _, err := execute(t, "simulate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulateResultText(t *testing.T) {
	r := &SimulateResult{Frames: 1200, Items: 4, Layers: 8, Decodes: 12345, Pixels: 1048576}
	s := r.String()
	assert.Contains(t, s, "frames        1,200\n")
	assert.Contains(t, s, "decodes       12,345 (0 deferred)\n")
	assert.Contains(t, s, "pixels        1,048,576\n")
	assert.NotContains(t, s, "reloads")
}

func TestTimeStep(t *testing.T) {
	assert.Equal(t, 1.0, timeStep(nil))
	assert.Equal(t, 1.0, timeStep([]float64{3}))
	assert.Equal(t, 0.5, timeStep([]float64{0, 0.5, 1.5}))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", assert.AnError)))
}
