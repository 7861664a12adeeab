// Package detector selects an output rendering mode from the process
// environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is the rendering mode for CLI output.
type OutputMode int

const (
	// ModeAuto detects the appropriate mode from the environment.
	ModeAuto OutputMode = iota
	// ModePretty forces colored, human-oriented log output.
	ModePretty
	// ModeJSON forces structured JSON log output.
	ModeJSON
)

// DetectEnvironment returns ModeJSON when stderr is not a terminal or a CI
// environment variable is set, ModePretty otherwise.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModeJSON
	}
	return ModePretty
}

// ResolveMode applies a user override ("auto", "pretty", "json", or empty)
// on top of an auto-detected mode.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "pretty":
		return ModePretty
	case "json":
		return ModeJSON
	case "auto", "":
		return autoDetected
	default:
		return autoDetected
	}
}
