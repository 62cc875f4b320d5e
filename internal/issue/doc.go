// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error types for the blockdata CLI.
//
// ActionableError carries operation/resource context plus suggestions for
// fixing the problem, so command handlers can show helpful messages instead
// of bare error chains. Report accumulates per-item resolution failures
// (one broken model or block state should not hide the rest) and renders
// them all at the end of a build.
package issue
