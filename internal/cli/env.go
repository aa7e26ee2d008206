package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "LIVEGRAPH_"

// environment holds LIVEGRAPH_* settings with the prefix stripped.
type environment map[string]string

// loadEnv reads the dotenv file named by LIVEGRAPH_ENV_FILE (default .env),
// then overlays the process environment. A missing default file is not an
// error; a missing explicitly named file is. An empty LIVEGRAPH_ENV_FILE
// disables the file.
func loadEnv() (environment, error) {
	path, explicit := os.LookupEnv(envPrefix + "ENV_FILE")
	if !explicit {
		path = ".env"
	}

	env := environment{}
	if path == "" {
		return env.overlay(), nil
	}
	values, err := godotenv.Read(path)
	switch {
	case err == nil:
		for k, v := range values {
			if name, ok := strings.CutPrefix(k, envPrefix); ok && name != "" {
				env[name] = v
			}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return env.overlay(), nil
}

// overlay copies the known LIVEGRAPH_* process variables over e.
func (e environment) overlay() environment {
	for _, name := range []string{"GRAPH", "SAVE", "FRAME_RATE", "FRAMES", "EDITOR_URL", "EDITOR_NAMESPACE", "HEALTHCHECK_PORT", "LOG_FORMAT", "LOG_LEVEL"} {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			e[name] = v
		}
	}
	return e
}

func (e environment) str(name, def string) string {
	if v, ok := e[name]; ok && v != "" {
		return v
	}
	return def
}

func (e environment) int(name string, def int) (int, error) {
	v, ok := e[name]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %q is not an integer", envPrefix, name, v)
	}
	return n, nil
}

func (e environment) float(name string, def float64) (float64, error) {
	v, ok := e[name]
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %q is not a number", envPrefix, name, v)
	}
	return f, nil
}
