// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the frame loop that ticks and draws the
// live graph, decoupled from any specific entrypoint like a CLI.
package app
