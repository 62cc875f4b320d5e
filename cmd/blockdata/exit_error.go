// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// ExitCode is a process exit status.
type ExitCode int

const (
	// ExitSuccess means a data set was built.
	ExitSuccess ExitCode = 0
	// ExitFailure means the build (or another command) failed.
	ExitFailure ExitCode = 1
	// ExitNothingToDo means the requested data set already exists and
	// --force was not given.
	ExitNothingToDo ExitCode = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
