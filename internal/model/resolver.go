// SPDX-License-Identifier: MPL-2.0

package model

import (
	"strings"
)

const (
	// maxInheritanceDepth bounds parent chains. Vanilla chains are three or
	// four models deep; anything near this bound is malformed input.
	maxInheritanceDepth = 64

	// maxVariableDepth bounds texture variable indirection ("#a" -> "#b" -> ...).
	maxVariableDepth = 10
)

// Resolver resolves raw models against an id-indexed table, memoizing each
// resolved model. A Resolver is scoped to one build and is not safe for
// concurrent use.
type Resolver struct {
	raw  map[ID]*RawModel
	memo map[ID]*ResolvedModel
	// inProgress guards against parent cycles during recursive resolution.
	inProgress map[ID]bool
}

// NewResolver creates a Resolver over the given raw model table. The table
// is read, never mutated.
func NewResolver(raw map[ID]*RawModel) *Resolver {
	return &Resolver{
		raw:        raw,
		memo:       make(map[ID]*ResolvedModel, len(raw)),
		inProgress: make(map[ID]bool),
	}
}

// Resolve flattens the model's parent chain into a single ResolvedModel.
// The result is memoized; resolving the same id twice returns the identical
// value.
func (r *Resolver) Resolve(id ID) (*ResolvedModel, error) {
	resolved, err := r.resolve(id, nil)
	if err != nil {
		return nil, err
	}
	if err := r.checkFaceBindings(id, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolve walks the parent chain. chain carries the ids currently being
// resolved, outermost first, for cycle reporting.
func (r *Resolver) resolve(id ID, chain []ID) (*ResolvedModel, error) {
	if m, ok := r.memo[id]; ok {
		return m, nil
	}
	if r.inProgress[id] || len(chain) >= maxInheritanceDepth {
		return nil, &CyclicModelInheritanceError{Chain: append(chain, id)}
	}

	raw, ok := r.raw[id]
	if !ok {
		return nil, &UnknownModelError{ID: id}
	}

	r.inProgress[id] = true
	defer delete(r.inProgress, id)

	var parent *ResolvedModel
	if raw.Parent != "" && !IsBuiltinParent(raw.Parent) {
		parentID := ParseRef(raw.Parent, id.Kind)
		p, err := r.resolve(parentID, append(chain, id))
		if err != nil {
			return nil, err
		}
		parent = p
	}

	merged := merge(parent, raw)
	r.memo[id] = merged
	return merged, nil
}

// merge overlays a raw child onto its resolved parent. Elements replace
// wholesale, texture keys overlay per-key (child wins), ambient occlusion
// and display contexts default to the parent's value when absent in the
// child. Texture variables are substituted transitively after the overlay.
func merge(parent *ResolvedModel, child *RawModel) *ResolvedModel {
	out := &ResolvedModel{AmbientOcclusion: true}

	if parent != nil {
		out.AmbientOcclusion = parent.AmbientOcclusion
		out.Elements = parent.Elements
		out.Textures = make(map[string]string, len(parent.Textures)+len(child.Textures))
		for k, v := range parent.Textures {
			out.Textures[k] = v
		}
		if len(parent.Display) > 0 {
			out.Display = make(map[string]Display, len(parent.Display))
			for k, v := range parent.Display {
				out.Display[k] = v
			}
		}
	}

	if child.AmbientOcclusion != nil {
		out.AmbientOcclusion = *child.AmbientOcclusion
	}
	if child.Elements != nil {
		out.Elements = child.Elements
	}
	if len(child.Textures) > 0 {
		if out.Textures == nil {
			out.Textures = make(map[string]string, len(child.Textures))
		}
		for k, v := range child.Textures {
			out.Textures[k] = v
		}
	}
	for k, v := range child.Display {
		if out.Display == nil {
			out.Display = make(map[string]Display, len(child.Display))
		}
		out.Display[k] = v
	}

	out.Textures = substituteVariables(out.Textures)
	return out
}

// substituteVariables follows "#name" indirections through the texture map.
// A chain that never reaches a concrete path keeps its final "#name" form;
// whether that is an error depends on whether an element face needs it.
func substituteVariables(textures map[string]string) map[string]string {
	if len(textures) == 0 {
		return textures
	}
	out := make(map[string]string, len(textures))
	for k, v := range textures {
		for depth := 0; strings.HasPrefix(v, "#") && depth < maxVariableDepth; depth++ {
			next, ok := textures[strings.TrimPrefix(v, "#")]
			if !ok {
				break
			}
			v = next
		}
		out[k] = v
	}
	return out
}

// checkFaceBindings verifies that every texture variable an element face
// references is bound to a concrete path. Abstract ancestor models bind
// their variables only in descendants, so this runs for the model actually
// requested, not for intermediate parents.
func (r *Resolver) checkFaceBindings(id ID, m *ResolvedModel) error {
	for _, el := range m.Elements {
		for _, face := range el.Faces {
			ref := face.Texture
			if !strings.HasPrefix(ref, "#") {
				continue
			}
			name := strings.TrimPrefix(ref, "#")
			bound, ok := m.Textures[name]
			if !ok || strings.HasPrefix(bound, "#") {
				return &DanglingTextureVariableError{Model: id, Variable: name}
			}
		}
	}
	return nil
}
