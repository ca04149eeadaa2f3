// Package ui provides helpers for formatting human-readable console output
// and collecting interactive input.
//
// The helpers translate internal events into concise messages so that command
// execution feedback remains actionable for CLI users while detailed telemetry
// continues to flow through structured loggers. IOValuePrompter gathers
// interactive values with sensible defaults for commands that walk operators
// through provisioning flows.
package ui
