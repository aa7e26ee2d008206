package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Setenv("LIVEGRAPH_ENV_FILE", "")

	// A manifest with a syntax error panics while the registry is built.
	invalidHCL := `
node_type "broken" {
  input "in" {
`
	tempDir := t.TempDir()
	manifest := filepath.Join(tempDir, "broken.hcl")
	require.NoError(t, os.WriteFile(manifest, []byte(invalidHCL), 0o600))

	args := []string{"-manifest", manifest, filepath.Join(tempDir, "graph.hcl")}
	out := &bytes.Buffer{}

	runErr := run(context.Background(), out, args)

	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "application startup panicked")
	require.Contains(t, runErr.Error(), "failed to parse manifest")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Setenv("LIVEGRAPH_ENV_FILE", "")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Setenv("LIVEGRAPH_ENV_FILE", "")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_FramesThenExit(t *testing.T) {
	t.Setenv("LIVEGRAPH_ENV_FILE", "")
	graph := filepath.Join(t.TempDir(), "graph.hcl")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-frames", "2", "-frame-rate", "500", "-save", "-log-format", "text", graph})

	require.NoError(t, err)
	require.FileExists(t, graph, "an empty graph is saved on exit")
}
