// SPDX-License-Identifier: MPL-2.0

// Package resource abstracts entry access inside a client distribution.
// The rest of the engine only depends on Lookup: a path-to-bytes mapping
// with prefix enumeration. The production implementation reads the cached
// client jar; tests use MapLookup.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrNotFound is the sentinel error wrapped by NotFoundError.
var ErrNotFound = errors.New("resource not found")

type (
	// Lookup provides read access to the raw entries of one distribution.
	// Implementations must be safe for sequential reuse across the whole
	// build; they are never mutated by the engine.
	Lookup interface {
		// Open returns the raw bytes of the entry at path, or an error
		// wrapping ErrNotFound when the entry does not exist.
		Open(path string) ([]byte, error)

		// List returns all entry paths with the given prefix, sorted
		// lexicographically for deterministic enumeration.
		List(prefix string) []string
	}

	// NotFoundError is returned when a distribution entry is absent.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Path string
	}

	// MapLookup is an in-memory Lookup backed by a plain map. Intended for
	// tests and for assembling synthetic distributions.
	MapLookup map[string][]byte
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Path)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Open implements Lookup.
func (m MapLookup) Open(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	return data, nil
}

// List implements Lookup.
func (m MapLookup) List(prefix string) []string {
	var out []string
	for _, path := range maps.Keys(m) {
		if strings.HasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	slices.Sort(out)
	return out
}
