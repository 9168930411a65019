package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
)

// Exit codes for hitmatch CLI
const (
	// ExitSuccess indicates all checks passed
	ExitSuccess = 0

	// ExitCheckFailure indicates one or more checks failed or errored
	ExitCheckFailure = 1

	// ExitParseError indicates a suite that could not be parsed or validated
	ExitParseError = 2

	// ExitConfigError indicates a configuration error or a misconfigured matcher
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code up to Execute. A nil err means
// the problem was already reported and nothing more is printed.
type exitError struct {
	code int
	err  error
}

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

// runExitCode maps a finished run to an exit code.
func runExitCode(run *runner.RunResult) int {
	switch {
	case run.Misconfigured():
		return ExitConfigError
	case !run.Success():
		return ExitCheckFailure
	default:
		return ExitSuccess
	}
}
