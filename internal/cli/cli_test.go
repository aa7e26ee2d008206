package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/livegraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	t.Setenv("LIVEGRAPH_ENV_FILE", writeEnvFile(t, ""))

	testCases := []struct {
		name       string
		args       []string
		want       *app.Config
		shouldExit bool
		wantErr    string
	}{
		{
			name: "positional path with defaults",
			args: []string{"graph.hcl"},
			want: &app.Config{GraphPath: "graph.hcl", FrameRate: 60, EditorNamespace: "/", LogFormat: "json", LogLevel: "info"},
		},
		{
			name: "all flags",
			args: []string{
				"-g", "g.hcl", "-manifest", "a.hcl", "-manifest", "b.hcl", "-save",
				"-frame-rate", "30", "-frames", "10", "-editor-url", "http://localhost:3000/socket.io/",
				"-editor-namespace", "/edit", "-insecure", "-healthcheck-port", "8080",
				"-log-format", "TEXT", "-log-level", "Debug",
			},
			want: &app.Config{
				GraphPath: "g.hcl", ManifestPaths: []string{"a.hcl", "b.hcl"}, SaveOnExit: true,
				FrameRate: 30, Frames: 10, EditorURL: "http://localhost:3000/socket.io/",
				EditorNamespace: "/edit", InsecureSkipVerify: true, HealthcheckPort: 8080,
				LogFormat: "text", LogLevel: "debug",
			},
		},
		{name: "help", args: []string{"-h"}, shouldExit: true},
		{name: "no path", args: nil, shouldExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined"},
		{name: "invalid log format", args: []string{"-log-format", "xml", "g.hcl"}, wantErr: "LogFormat"},
		{name: "invalid frame rate", args: []string{"-frame-rate", "0", "g.hcl"}, wantErr: "FrameRate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, shouldExit, err := Parse(tc.args, out)
			if tc.wantErr != "" {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shouldExit, shouldExit)
			if tc.shouldExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	t.Setenv("LIVEGRAPH_ENV_FILE", writeEnvFile(t, "LIVEGRAPH_GRAPH=from-file.hcl\nLIVEGRAPH_LOG_LEVEL=warn\nLIVEGRAPH_FRAMES=5\nOTHER=ignored\n"))
	t.Setenv("LIVEGRAPH_LOG_LEVEL", "error")

	cfg, shouldExit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "from-file.hcl", cfg.GraphPath)
	assert.Equal(t, "error", cfg.LogLevel, "the process environment wins over the file")
	assert.Equal(t, 5, cfg.Frames)

	cfg, _, err = Parse([]string{"-log-level", "debug", "cli.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "cli.hcl", cfg.GraphPath, "flags win over the environment")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_EnvironmentErrors(t *testing.T) {
	t.Run("missing explicit env file", func(t *testing.T) {
		t.Setenv("LIVEGRAPH_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
		_, _, err := Parse([]string{"g.hcl"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "failed to read env file")
	})

	t.Run("malformed number", func(t *testing.T) {
		t.Setenv("LIVEGRAPH_ENV_FILE", writeEnvFile(t, ""))
		t.Setenv("LIVEGRAPH_FRAME_RATE", "fast")
		_, _, err := Parse([]string{"g.hcl"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, `invalid LIVEGRAPH_FRAME_RATE: "fast" is not a number`)
	})
}
