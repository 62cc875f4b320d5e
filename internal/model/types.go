// SPDX-License-Identifier: MPL-2.0

// Package model loads raw block/item model definitions from a distribution
// and resolves their parent inheritance chains into flat, directly-usable
// models. Resolution is memoized per run and is a pure function of the raw
// model graph: the same graph always yields the same resolved output.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// KindBlock identifies models under models/block/.
	KindBlock Kind = "block"
	// KindItem identifies models under models/item/.
	KindItem Kind = "item"

	// namespacePrefix is the default namespace on model and texture references.
	namespacePrefix = "minecraft:"

	// builtinPrefix marks parents handled by the client itself (e.g.
	// builtin/generated). A builtin parent terminates an inheritance chain.
	builtinPrefix = "builtin/"
)

type (
	// Kind distinguishes the two model namespaces of a distribution.
	Kind string

	// ID identifies one model within a distribution.
	ID struct {
		Kind Kind
		Name string
	}

	// RawModel is one model definition exactly as it appears in the
	// distribution, before parent resolution. Absent fields mean "inherit
	// from parent".
	RawModel struct {
		// Parent references another model, or a builtin/ handler, or is empty.
		Parent string `json:"parent,omitempty"`
		// AmbientOcclusion is tri-state: nil inherits, the client default is true.
		AmbientOcclusion *bool `json:"ambientocclusion,omitempty"`
		// Textures maps variable names to texture paths or to further
		// variables ("#name" indirection).
		Textures map[string]string `json:"textures,omitempty"`
		// Elements is the cuboid geometry. When absent the parent's
		// elements are inherited unchanged.
		Elements []Element `json:"elements,omitempty"`
		// Display holds the per-context display transforms.
		Display map[string]Display `json:"display,omitempty"`
	}

	// ResolvedModel is a RawModel with every inherited field materialized:
	// no parent reference and no transitive texture variable indirection.
	// Element faces still name texture variables ("#all"); Textures supplies
	// a concrete binding for every variable the elements use.
	ResolvedModel struct {
		AmbientOcclusion bool               `json:"ambientocclusion"`
		Textures         map[string]string  `json:"textures,omitempty"`
		Elements         []Element          `json:"elements,omitempty"`
		Display          map[string]Display `json:"display,omitempty"`
	}

	// Element is one cuboid, spanning From..To in model space.
	Element struct {
		From     [3]float64      `json:"from"`
		To       [3]float64      `json:"to"`
		Rotation *Rotation       `json:"rotation,omitempty"`
		Shade    *bool           `json:"shade,omitempty"`
		Faces    map[string]Face `json:"faces"`
	}

	// Rotation tilts an element around an axis-aligned origin.
	Rotation struct {
		Origin  [3]float64 `json:"origin"`
		Angle   float64    `json:"angle"`
		Axis    string     `json:"axis"`
		Rescale bool       `json:"rescale,omitempty"`
	}

	// Face describes one side of an element.
	Face struct {
		UV        *[4]float64 `json:"uv,omitempty"`
		Texture   string      `json:"texture"`
		CullFace  string      `json:"cullface,omitempty"`
		Rotation  int         `json:"rotation,omitempty"`
		TintIndex *int        `json:"tintindex,omitempty"`
	}

	// Display is the transform applied in one display context
	// (gui, ground, firstperson_righthand, ...).
	Display struct {
		Rotation    [3]float64 `json:"rotation"`
		Translation [3]float64 `json:"translation"`
		Scale       [3]float64 `json:"scale"`
	}
)

// String returns the canonical "kind/name" form used in error messages and
// output keys.
func (id ID) String() string {
	return string(id.Kind) + "/" + id.Name
}

// ParseRef normalizes a model reference into an ID. References may carry the
// default namespace and either singular (block/) or plural (blocks/) path
// prefixes; a bare name falls back to defaultKind.
func ParseRef(ref string, defaultKind Kind) ID {
	ref = strings.TrimPrefix(ref, namespacePrefix)
	switch {
	case strings.HasPrefix(ref, "block/"):
		return ID{Kind: KindBlock, Name: strings.TrimPrefix(ref, "block/")}
	case strings.HasPrefix(ref, "blocks/"):
		return ID{Kind: KindBlock, Name: strings.TrimPrefix(ref, "blocks/")}
	case strings.HasPrefix(ref, "item/"):
		return ID{Kind: KindItem, Name: strings.TrimPrefix(ref, "item/")}
	case strings.HasPrefix(ref, "items/"):
		return ID{Kind: KindItem, Name: strings.TrimPrefix(ref, "items/")}
	default:
		return ID{Kind: defaultKind, Name: ref}
	}
}

// IsBuiltinParent reports whether ref names a parent implemented by the
// client itself rather than by another model definition.
func IsBuiltinParent(ref string) bool {
	return strings.HasPrefix(strings.TrimPrefix(ref, namespacePrefix), builtinPrefix)
}

// ParseRaw decodes one raw model definition.
func ParseRaw(data []byte) (*RawModel, error) {
	var m RawModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model definition: %w", err)
	}
	return &m, nil
}
