package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/livegraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. Flag defaults come from the
// environment (see loadEnv). It returns a populated Config, a boolean
// indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	env, err := loadEnv()
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	frameRateDefault, err := env.float("FRAME_RATE", 60)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	framesDefault, err := env.int("FRAMES", 0)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	healthPortDefault, err := env.int("HEALTHCHECK_PORT", 0)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("livegraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
livegraph - A live, editable dataflow graph runner.

Usage:
  livegraph [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to an HCL graph document. A missing file starts an empty graph.

Environment:
  Every option can be preset with a LIVEGRAPH_<NAME> variable, for example
  LIVEGRAPH_LOG_LEVEL=debug. Variables are also read from the file named by
  LIVEGRAPH_ENV_FILE (default .env).

Options:
`)
		flagSet.PrintDefaults()
	}

	var manifests []string
	flagSet.Func("manifest", "Extra node type manifest file or directory to load. May be repeated.", func(s string) error {
		if s == "" {
			return errors.New("manifest path must not be empty")
		}
		manifests = append(manifests, s)
		return nil
	})

	graphFlag := flagSet.String("graph", env.str("GRAPH", ""), "Path to the graph document.")
	gFlag := flagSet.String("g", "", "Path to the graph document (shorthand).")
	saveFlag := flagSet.Bool("save", env.str("SAVE", "") == "true", "Write the graph back to GRAPH_PATH on exit.")
	frameRateFlag := flagSet.Float64("frame-rate", frameRateDefault, "Frames per second.")
	framesFlag := flagSet.Int("frames", framesDefault, "Number of frames to run. 0 runs until interrupted.")
	editorURLFlag := flagSet.String("editor-url", env.str("EDITOR_URL", ""), "socket.io URL of a graph editor. Empty disables the editor bridge.")
	editorNSFlag := flagSet.String("editor-namespace", env.str("EDITOR_NAMESPACE", "/"), "socket.io namespace of the graph editor.")
	insecureFlag := flagSet.Bool("insecure", false, "Skip TLS certificate verification for the editor connection.")
	healthPortFlag := flagSet.Int("healthcheck-port", healthPortDefault, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", env.str("LOG_FORMAT", "json"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.str("LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	} else {
		path = *graphFlag
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:          path,
		ManifestPaths:      manifests,
		SaveOnExit:         *saveFlag,
		FrameRate:          *frameRateFlag,
		Frames:             *framesFlag,
		EditorURL:          *editorURLFlag,
		EditorNamespace:    *editorNSFlag,
		InsecureSkipVerify: *insecureFlag,
		LogFormat:          strings.ToLower(*logFormatFlag),
		LogLevel:           strings.ToLower(*logLevelFlag),
		HealthcheckPort:    *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
