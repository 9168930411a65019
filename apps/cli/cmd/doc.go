// Package cmd implements the hitmatch CLI commands using Cobra.
//
// Available commands:
//   - run: Execute matcher suites against a service or a SQLite schema
//   - validate: Check suite files without executing them
//   - list: Display all checks defined in suites
//   - init: Create a config file and an example suite
//   - version: Show hitmatch version information
//
// The CLI supports flags for filtering, output formatting, parallel
// execution, request pacing and watch mode.
package cmd
