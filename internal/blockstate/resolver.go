// SPDX-License-Identifier: MPL-2.0

package blockstate

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"blockdata-cli/internal/model"
)

var (
	// ErrUnresolvedModelReference is the sentinel error wrapped by UnresolvedModelReferenceError.
	ErrUnresolvedModelReference = errors.New("unresolved model reference")
	// ErrMalformedVariantKey is the sentinel error wrapped by MalformedVariantKeyError.
	ErrMalformedVariantKey = errors.New("malformed variant key")
	// ErrEmptyDefinition is returned when a definition carries neither
	// variants nor multipart rules.
	ErrEmptyDefinition = errors.New("block state definition has neither variants nor multipart")
)

type (
	// UnresolvedModelReferenceError is returned when a block state references
	// a model the model resolver cannot produce. It is attributed to the
	// block for reporting and wraps both the sentinel and the resolver's
	// underlying error.
	UnresolvedModelReferenceError struct {
		Block string
		Model string
		Cause error
	}

	// MalformedVariantKeyError is returned for a variants key that is not a
	// sorted, duplicate-free "prop=value,..." combination (or the empty
	// string).
	MalformedVariantKeyError struct {
		Block string
		Key   string
	}

	// ResolvedRef is one model reference after resolution: the canonical
	// resolved model id plus the placement metadata carried forward
	// unchanged from the definition.
	ResolvedRef struct {
		Model  string `json:"model"`
		X      int    `json:"x,omitempty"`
		Y      int    `json:"y,omitempty"`
		UVLock bool   `json:"uvlock,omitempty"`
		Weight int    `json:"weight"`
	}

	// ResolvedPart is one multipart rule with its models resolved and its
	// predicate preserved unevaluated.
	ResolvedPart struct {
		When  *Predicate    `json:"when,omitempty"`
		Apply []ResolvedRef `json:"apply"`
	}

	// Resolved maps every reachable state of one block to its resolved
	// model references. Exactly one of Variants and Multipart is set,
	// mirroring the definition form.
	Resolved struct {
		Block     string                   `json:"-"`
		Variants  map[string][]ResolvedRef `json:"variants,omitempty"`
		Multipart []ResolvedPart           `json:"multipart,omitempty"`
	}
)

// Error implements the error interface.
func (e *UnresolvedModelReferenceError) Error() string {
	return fmt.Sprintf("block %s: model reference %q: %v", e.Block, e.Model, e.Cause)
}

// Unwrap returns the sentinel and underlying cause for errors.Is/As.
func (e *UnresolvedModelReferenceError) Unwrap() []error {
	return []error{ErrUnresolvedModelReference, e.Cause}
}

// Error implements the error interface.
func (e *MalformedVariantKeyError) Error() string {
	return fmt.Sprintf("block %s: malformed variant key %q", e.Block, e.Key)
}

// Unwrap returns ErrMalformedVariantKey.
func (e *MalformedVariantKeyError) Unwrap() error {
	return ErrMalformedVariantKey
}

// Resolve resolves every model reference in def through the model resolver.
// Variant keys keep their declared property combinations; multipart rules
// keep their declaration order, since later rules layer geometry on top of
// earlier ones. The first failure aborts and is attributed to blockID.
func Resolve(blockID string, def *Definition, models *model.Resolver) (*Resolved, error) {
	if len(def.Variants) == 0 && len(def.Multipart) == 0 {
		return nil, fmt.Errorf("block %s: %w", blockID, ErrEmptyDefinition)
	}

	out := &Resolved{Block: blockID}

	if len(def.Variants) > 0 {
		out.Variants = make(map[string][]ResolvedRef, len(def.Variants))
		keys := maps.Keys(def.Variants)
		slices.Sort(keys)
		for _, key := range keys {
			if err := validateVariantKey(key); err != nil {
				return nil, &MalformedVariantKeyError{Block: blockID, Key: key}
			}
			refs, err := resolveRefs(blockID, def.Variants[key], models)
			if err != nil {
				return nil, err
			}
			out.Variants[key] = refs
		}
		return out, nil
	}

	out.Multipart = make([]ResolvedPart, 0, len(def.Multipart))
	for _, part := range def.Multipart {
		refs, err := resolveRefs(blockID, part.Apply, models)
		if err != nil {
			return nil, err
		}
		out.Multipart = append(out.Multipart, ResolvedPart{When: part.When, Apply: refs})
	}
	return out, nil
}

func resolveRefs(blockID string, refs Alternatives, models *model.Resolver) ([]ResolvedRef, error) {
	out := make([]ResolvedRef, 0, len(refs))
	for _, ref := range refs {
		id := model.ParseRef(ref.Model, model.KindBlock)
		if _, err := models.Resolve(id); err != nil {
			return nil, &UnresolvedModelReferenceError{Block: blockID, Model: ref.Model, Cause: err}
		}
		out = append(out, ResolvedRef{
			Model:  id.String(),
			X:      ref.X,
			Y:      ref.Y,
			UVLock: ref.UVLock,
			Weight: ref.Weight,
		})
	}
	return out, nil
}

// validateVariantKey checks one variants key: the empty string (the only
// state), or a comma-separated "prop=value" list with properties sorted and
// free of duplicates.
func validateVariantKey(key string) error {
	if key == "" {
		return nil
	}
	prev := ""
	for _, pair := range strings.Split(key, ",") {
		prop, _, ok := strings.Cut(pair, "=")
		if !ok || prop == "" {
			return ErrMalformedVariantKey
		}
		if prev != "" && prop <= prev {
			return ErrMalformedVariantKey
		}
		prev = prop
	}
	return nil
}
