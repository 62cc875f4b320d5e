// SPDX-License-Identifier: MPL-2.0

// Package legacy loads the two static backward-compatibility tables: the
// pre-flattening (numeric id + metadata) to modern name mapping, and the
// legacy-name to modern-name rename table. Both are authored data shipped
// with the tool, independent of any client version; the loaded Index is
// immutable and safe to reuse across every version built in one process.
package legacy

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrConflictingMapping is the sentinel error wrapped by ConflictingLegacyMappingError.
var ErrConflictingMapping = errors.New("conflicting legacy mapping")

// EmbeddedPreFlattening returns the shipped pre-flattening table, for callers
// that override only one of the two tables.
func EmbeddedPreFlattening() []byte { return preFlatteningTOML }

// EmbeddedRenames returns the shipped rename table.
func EmbeddedRenames() []byte { return renamesTOML }

//go:embed pre_flattening.toml
var preFlatteningTOML []byte

//go:embed renames.toml
var renamesTOML []byte

type (
	// Key is one pre-flattening identity: numeric id plus metadata value.
	Key struct {
		ID   int
		Meta int
	}

	// Entry is one pre-flattening table row.
	Entry struct {
		ID   int    `toml:"id" json:"id"`
		Meta int    `toml:"meta" json:"meta"`
		Name string `toml:"name" json:"name"`
	}

	// ConflictingLegacyMappingError is returned when the same (id, meta)
	// pair maps to two different modern names. The tables are authored, not
	// generated, so a conflict is a data bug and fails the whole run.
	ConflictingLegacyMappingError struct {
		Key      Key
		Existing string
		Conflict string
	}

	// Index is the loaded, read-only lookup over both tables.
	Index struct {
		byLegacy map[Key]string
		renames  map[string]string
	}

	preFlatteningTable struct {
		Entry []Entry `toml:"entry"`
	}

	renameTable struct {
		Rename map[string]string `toml:"rename"`
	}
)

// Error implements the error interface.
func (e *ConflictingLegacyMappingError) Error() string {
	return fmt.Sprintf("conflicting legacy mapping for (%d, %d): %q vs %q",
		e.Key.ID, e.Key.Meta, e.Existing, e.Conflict)
}

// Unwrap returns ErrConflictingMapping.
func (e *ConflictingLegacyMappingError) Unwrap() error {
	return ErrConflictingMapping
}

// Load builds the Index from the tables embedded in the binary.
func Load() (*Index, error) {
	return LoadFrom(preFlatteningTOML, renamesTOML)
}

// LoadFrom builds the Index from explicit table contents, for overriding the
// embedded tables with files from disk.
func LoadFrom(preFlattening, renames []byte) (*Index, error) {
	var pre preFlatteningTable
	if err := toml.Unmarshal(preFlattening, &pre); err != nil {
		return nil, fmt.Errorf("parse pre-flattening table: %w", err)
	}
	var ren renameTable
	if len(renames) > 0 {
		if err := toml.Unmarshal(renames, &ren); err != nil {
			return nil, fmt.Errorf("parse rename table: %w", err)
		}
	}

	idx := &Index{
		byLegacy: make(map[Key]string, len(pre.Entry)),
		renames:  ren.Rename,
	}
	if idx.renames == nil {
		idx.renames = map[string]string{}
	}

	for _, e := range pre.Entry {
		key := Key{ID: e.ID, Meta: e.Meta}
		if existing, ok := idx.byLegacy[key]; ok && existing != e.Name {
			return nil, &ConflictingLegacyMappingError{Key: key, Existing: existing, Conflict: e.Name}
		}
		idx.byLegacy[key] = e.Name
	}
	return idx, nil
}

// Modern returns the modern name for a pre-flattening (id, metadata) pair.
// An unknown metadata value falls back to the block's meta-0 entry, since
// metadata often encoded sub-state (orientation, growth) rather than a
// distinct block.
func (x *Index) Modern(id, meta int) (string, bool) {
	if name, ok := x.byLegacy[Key{ID: id, Meta: meta}]; ok {
		return name, true
	}
	if meta != 0 {
		if name, ok := x.byLegacy[Key{ID: id, Meta: 0}]; ok {
			return name, true
		}
	}
	return "", false
}

// Rename returns the modern name for a legacy name, if it was renamed.
func (x *Index) Rename(old string) (string, bool) {
	name, ok := x.renames[old]
	return name, ok
}

// Entries returns every pre-flattening row, sorted by (id, meta) for
// deterministic output.
func (x *Index) Entries() []Entry {
	keys := maps.Keys(x.byLegacy)
	slices.SortFunc(keys, func(a, b Key) int {
		if a.ID != b.ID {
			return a.ID - b.ID
		}
		return a.Meta - b.Meta
	})
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{ID: k.ID, Meta: k.Meta, Name: x.byLegacy[k]})
	}
	return out
}
