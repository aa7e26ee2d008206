// Package cli is responsible for parsing command-line arguments, reading
// LIVEGRAPH_* defaults from the environment and .env files, and handling
// process-level concerns like exit codes. It translates them into the
// application's configuration.
package cli
