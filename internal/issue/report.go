// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type (
	// Failure is one per-item resolution failure, attributed to the id of the
	// texture, model, or block state that could not be processed.
	Failure struct {
		// ID is the offending item (e.g., "minecraft:blocks/oak_fence").
		ID string
		// Err is the underlying failure.
		Err error
	}

	// Report accumulates per-item failures across a build so a single run
	// surfaces every broken reference instead of stopping at the first.
	// The zero value is ready to use. A Report is not safe for concurrent use.
	Report struct {
		failures []Failure
	}

	// BuildFailedError is the build-level error produced from a non-empty
	// Report. It lists every offending id.
	BuildFailedError struct {
		// Failures is sorted by item id for deterministic output.
		Failures []Failure
	}
)

// Add records a failure for the given item id. nil errors are ignored.
func (r *Report) Add(id string, err error) {
	if err == nil {
		return
	}
	r.failures = append(r.failures, Failure{ID: id, Err: err})
}

// Merge appends every failure from other into r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.failures = append(r.failures, other.failures...)
}

// Len returns the number of recorded failures.
func (r *Report) Len() int {
	return len(r.failures)
}

// Sorted returns the failures ordered by item id (then by message, for
// items that failed more than once).
func (r *Report) Sorted() []Failure {
	out := slices.Clone(r.failures)
	slices.SortStableFunc(out, func(a, b Failure) int {
		if a.ID != b.ID {
			return strings.Compare(a.ID, b.ID)
		}
		return strings.Compare(a.Err.Error(), b.Err.Error())
	})
	return out
}

// Err returns a BuildFailedError when the report is non-empty, nil otherwise.
func (r *Report) Err() error {
	if len(r.failures) == 0 {
		return nil
	}
	return &BuildFailedError{Failures: r.Sorted()}
}

// Error implements the error interface.
func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build failed: %d item(s) could not be resolved", len(e.Failures))
}

// Unwrap exposes every per-item failure so errors.Is/As can match any of them.
func (e *BuildFailedError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}

// Markdown returns the failure list as a markdown document, one bullet per
// offending id.
func (e *BuildFailedError) Markdown() string {
	var md strings.Builder
	md.WriteString("# Build failed\n\n")
	fmt.Fprintf(&md, "%d item(s) could not be resolved:\n\n", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&md, "- `%s`: %s\n", f.ID, f.Err.Error())
	}
	return md.String()
}

// Render returns the failure list rendered for terminal display. Rendering
// problems fall back to the raw markdown rather than masking the build error.
func (e *BuildFailedError) Render() string {
	out, err := glamour.Render(e.Markdown(), "auto")
	if err != nil {
		return e.Markdown()
	}
	return out
}
