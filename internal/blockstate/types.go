// SPDX-License-Identifier: MPL-2.0

// Package blockstate parses block state definitions (the variants and
// multipart forms) and resolves every referenced model through the model
// resolver. Multipart predicates are carried through unevaluated: only a
// consumer holding a concrete property assignment can evaluate them, and
// several parts may apply to the same state at once by design.
package blockstate

import (
	"encoding/json"
	"fmt"
)

type (
	// Definition is one raw block state definition. Exactly one of Variants
	// and Multipart is populated; the two forms are mutually exclusive in
	// the distribution format.
	Definition struct {
		Variants  map[string]Alternatives `json:"variants,omitempty"`
		Multipart []Part                  `json:"multipart,omitempty"`
	}

	// ModelRef is one weighted model reference with its placement metadata.
	ModelRef struct {
		Model  string `json:"model"`
		X      int    `json:"x,omitempty"`
		Y      int    `json:"y,omitempty"`
		UVLock bool   `json:"uvlock,omitempty"`
		Weight int    `json:"weight,omitempty"`
	}

	// Alternatives is the list of weighted alternatives for one variant key
	// or multipart rule. The distribution encodes a single alternative as a
	// bare object rather than a one-element array.
	Alternatives []ModelRef

	// Part is one multipart rule: a predicate (nil means "always applies")
	// and the model references it layers onto the block.
	Part struct {
		When  *Predicate   `json:"when,omitempty"`
		Apply Alternatives `json:"apply"`
	}

	// Predicate is a small tagged condition over block state properties.
	// Either Or holds sub-predicates (any may match) or Tests holds
	// property equality tests combined with an implicit AND. Test values
	// may list alternatives separated by '|' ("side|up"); they are kept
	// verbatim for the downstream consumer to evaluate.
	Predicate struct {
		Or    []Predicate       `json:"OR,omitempty"`
		And   []Predicate       `json:"AND,omitempty"`
		Tests map[string]string `json:",omitempty"`
	}
)

// UnmarshalJSON accepts either a single model reference object or an array
// of them, defaulting absent weights to 1.
func (a *Alternatives) UnmarshalJSON(data []byte) error {
	var many []ModelRef
	if err := json.Unmarshal(data, &many); err == nil {
		*a = applyWeightDefault(many)
		return nil
	}

	var one ModelRef
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("model reference is neither an object nor an array: %w", err)
	}
	*a = applyWeightDefault([]ModelRef{one})
	return nil
}

func applyWeightDefault(refs []ModelRef) []ModelRef {
	for i := range refs {
		if refs[i].Weight == 0 {
			refs[i].Weight = 1
		}
	}
	return refs
}

// UnmarshalJSON decodes the "when" object. "OR"/"AND" keys carry nested
// predicate lists; any other shape is a flat map of property tests whose
// values may be strings, booleans, or numbers in the source JSON.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("multipart predicate must be an object: %w", err)
	}

	if raw, ok := probe["OR"]; ok {
		if err := json.Unmarshal(raw, &p.Or); err != nil {
			return fmt.Errorf("decode OR predicate list: %w", err)
		}
		return nil
	}
	if raw, ok := probe["AND"]; ok {
		if err := json.Unmarshal(raw, &p.And); err != nil {
			return fmt.Errorf("decode AND predicate list: %w", err)
		}
		return nil
	}

	p.Tests = make(map[string]string, len(probe))
	for prop, raw := range probe {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			p.Tests[prop] = s
			continue
		}
		// Booleans and numbers normalize to their literal form.
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode predicate test %q: %w", prop, err)
		}
		p.Tests[prop] = fmt.Sprintf("%v", v)
	}
	return nil
}

// MarshalJSON emits the predicate back in its source shape.
func (p Predicate) MarshalJSON() ([]byte, error) {
	switch {
	case p.Or != nil:
		return json.Marshal(map[string][]Predicate{"OR": p.Or})
	case p.And != nil:
		return json.Marshal(map[string][]Predicate{"AND": p.And})
	default:
		return json.Marshal(p.Tests)
	}
}

// Parse decodes one block state definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse block state definition: %w", err)
	}
	return &def, nil
}
