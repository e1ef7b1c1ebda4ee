// Package config holds the small set of shared constants.
package config

const (
	Version = "0.3.0"

	// Exit codes of the command-line entry point.
	ExitOK           = 0
	ExitCompileError = 1
	ExitUsage        = 2
)
