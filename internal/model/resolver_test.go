// SPDX-License-Identifier: MPL-2.0

package model

import (
	"errors"
	"reflect"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func cubeElement(texture string) Element {
	return Element{
		From: [3]float64{0, 0, 0},
		To:   [3]float64{16, 16, 16},
		Faces: map[string]Face{
			"north": {Texture: texture},
			"south": {Texture: texture},
			"east":  {Texture: texture},
			"west":  {Texture: texture},
			"up":    {Texture: texture},
			"down":  {Texture: texture},
		},
	}
}

func TestResolve_NoParentSubstitutesVariables(t *testing.T) {
	t.Parallel()
	stone := ID{Kind: KindBlock, Name: "stone"}
	raw := map[ID]*RawModel{
		stone: {
			Textures: map[string]string{
				"all":      "block/stone",
				"particle": "#all",
			},
			Elements: []Element{cubeElement("#all")},
		},
	}

	r := NewResolver(raw)
	resolved, err := r.Resolve(stone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Textures["particle"] != "block/stone" {
		t.Errorf("expected particle substituted to block/stone, got %q", resolved.Textures["particle"])
	}
	if len(resolved.Elements) != 1 {
		t.Errorf("expected raw elements preserved, got %d", len(resolved.Elements))
	}

	// Idempotence: resolving twice yields identical output.
	again, err := r.Resolve(stone)
	if err != nil {
		t.Fatalf("unexpected error on second resolve: %v", err)
	}
	if !reflect.DeepEqual(resolved, again) {
		t.Errorf("second resolve differs from first:\n%+v\n%+v", resolved, again)
	}
}

func TestResolve_ChildOverridesTexturesInheritsElements(t *testing.T) {
	t.Parallel()
	stone := ID{Kind: KindBlock, Name: "stone"}
	variant := ID{Kind: KindBlock, Name: "stone_variant"}
	raw := map[ID]*RawModel{
		stone: {
			Textures: map[string]string{"all": "block/stone"},
			Elements: []Element{cubeElement("#all")},
		},
		variant: {
			Parent:   "block/stone",
			Textures: map[string]string{"all": "block/stone_mossy"},
		},
	}

	resolved, err := NewResolver(raw).Resolve(variant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Textures["all"] != "block/stone_mossy" {
		t.Errorf("expected child texture to win, got %q", resolved.Textures["all"])
	}
	if len(resolved.Elements) != 1 {
		t.Fatalf("expected inherited cube element, got %d elements", len(resolved.Elements))
	}
	if resolved.Elements[0].Faces["north"].Texture != "#all" {
		t.Errorf("expected face to keep variable reference, got %q", resolved.Elements[0].Faces["north"].Texture)
	}
}

func TestResolve_ChildElementsReplaceParentsEntirely(t *testing.T) {
	t.Parallel()
	parent := ID{Kind: KindBlock, Name: "base"}
	child := ID{Kind: KindBlock, Name: "slab"}
	slabElement := Element{
		From:  [3]float64{0, 0, 0},
		To:    [3]float64{16, 8, 16},
		Faces: map[string]Face{"up": {Texture: "#top"}},
	}
	raw := map[ID]*RawModel{
		parent: {
			Textures: map[string]string{"top": "block/base_top"},
			Elements: []Element{cubeElement("#top"), cubeElement("#top")},
		},
		child: {
			Parent:   "block/base",
			Elements: []Element{slabElement},
		},
	}

	resolved, err := NewResolver(raw).Resolve(child)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved.Elements) != 1 {
		t.Fatalf("expected child elements to replace parent's, got %d", len(resolved.Elements))
	}
	if resolved.Elements[0].To != [3]float64{16, 8, 16} {
		t.Errorf("unexpected element geometry: %+v", resolved.Elements[0])
	}
}

func TestResolve_AmbientOcclusionOverlay(t *testing.T) {
	t.Parallel()
	parent := ID{Kind: KindBlock, Name: "leaves_base"}
	child := ID{Kind: KindBlock, Name: "oak_leaves"}
	grandchild := ID{Kind: KindBlock, Name: "oak_leaves_snowy"}
	raw := map[ID]*RawModel{
		parent: {
			AmbientOcclusion: boolPtr(false),
			Textures:         map[string]string{"all": "block/leaves"},
			Elements:         []Element{cubeElement("#all")},
		},
		child:      {Parent: "block/leaves_base"},
		grandchild: {Parent: "block/oak_leaves", AmbientOcclusion: boolPtr(true)},
	}
	r := NewResolver(raw)

	inherited, err := r.Resolve(child)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inherited.AmbientOcclusion {
		t.Error("expected ambient occlusion inherited as false")
	}

	overridden, err := r.Resolve(grandchild)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !overridden.AmbientOcclusion {
		t.Error("expected child override to win")
	}
}

func TestResolve_UnknownModel(t *testing.T) {
	t.Parallel()
	r := NewResolver(map[ID]*RawModel{})
	_, err := r.Resolve(ID{Kind: KindBlock, Name: "ghost"})
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
	var ume *UnknownModelError
	if !errors.As(err, &ume) || ume.ID.Name != "ghost" {
		t.Fatalf("expected id attribution, got %v", err)
	}
}

func TestResolve_UnknownParent(t *testing.T) {
	t.Parallel()
	child := ID{Kind: KindBlock, Name: "orphan"}
	raw := map[ID]*RawModel{
		child: {Parent: "block/missing_base"},
	}
	_, err := NewResolver(raw).Resolve(child)
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel for missing parent, got %v", err)
	}
}

func TestResolve_CycleDetection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  map[ID]*RawModel
		id   ID
	}{
		{
			name: "self parent",
			raw: map[ID]*RawModel{
				{KindBlock, "narcissus"}: {Parent: "block/narcissus"},
			},
			id: ID{KindBlock, "narcissus"},
		},
		{
			name: "length two cycle",
			raw: map[ID]*RawModel{
				{KindBlock, "a"}: {Parent: "block/b"},
				{KindBlock, "b"}: {Parent: "block/a"},
			},
			id: ID{KindBlock, "a"},
		},
		{
			name: "length three cycle",
			raw: map[ID]*RawModel{
				{KindBlock, "a"}: {Parent: "block/b"},
				{KindBlock, "b"}: {Parent: "block/c"},
				{KindBlock, "c"}: {Parent: "block/a"},
			},
			id: ID{KindBlock, "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewResolver(tt.raw).Resolve(tt.id)
			if !errors.Is(err, ErrCyclicInheritance) {
				t.Fatalf("expected ErrCyclicInheritance, got %v", err)
			}
			var ce *CyclicModelInheritanceError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CyclicModelInheritanceError, got %T", err)
			}
			if len(ce.Chain) < 2 {
				t.Errorf("expected chain of at least 2 ids, got %v", ce.Chain)
			}
		})
	}
}

func TestResolve_DanglingVariableOnFace(t *testing.T) {
	t.Parallel()
	cube := ID{Kind: KindBlock, Name: "cube"}
	raw := map[ID]*RawModel{
		cube: {
			// No binding for #all anywhere in the chain.
			Elements: []Element{cubeElement("#all")},
		},
	}
	_, err := NewResolver(raw).Resolve(cube)
	if !errors.Is(err, ErrDanglingTextureVariable) {
		t.Fatalf("expected ErrDanglingTextureVariable, got %v", err)
	}
	var de *DanglingTextureVariableError
	if !errors.As(err, &de) || de.Variable != "all" {
		t.Fatalf("expected variable attribution, got %v", err)
	}
}

func TestResolve_VariableChainAcrossLevels(t *testing.T) {
	t.Parallel()
	// grandparent declares the face variable, parent forwards it, child binds it.
	grandparent := ID{Kind: KindBlock, Name: "cube"}
	parent := ID{Kind: KindBlock, Name: "cube_all"}
	child := ID{Kind: KindBlock, Name: "diorite"}
	raw := map[ID]*RawModel{
		grandparent: {
			Elements: []Element{cubeElement("#side")},
		},
		parent: {
			Parent:   "block/cube",
			Textures: map[string]string{"side": "#all"},
		},
		child: {
			Parent:   "block/cube_all",
			Textures: map[string]string{"all": "block/diorite"},
		},
	}
	resolved, err := NewResolver(raw).Resolve(child)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Textures["side"] != "block/diorite" {
		t.Errorf("expected #side -> #all -> block/diorite, got %q", resolved.Textures["side"])
	}
}

func TestResolve_BuiltinParentTerminatesChain(t *testing.T) {
	t.Parallel()
	generated := ID{Kind: KindItem, Name: "stick"}
	raw := map[ID]*RawModel{
		generated: {
			Parent:   "builtin/generated",
			Textures: map[string]string{"layer0": "item/stick"},
		},
	}
	resolved, err := NewResolver(raw).Resolve(generated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Textures["layer0"] != "item/stick" {
		t.Errorf("unexpected textures: %v", resolved.Textures)
	}
}

func TestParseRef(t *testing.T) {
	t.Parallel()
	tests := []struct {
		ref  string
		kind Kind
		want ID
	}{
		{"minecraft:block/stone", KindItem, ID{KindBlock, "stone"}},
		{"block/stone", KindBlock, ID{KindBlock, "stone"}},
		{"blocks/stone", KindItem, ID{KindBlock, "stone"}},
		{"item/stick", KindBlock, ID{KindItem, "stick"}},
		{"items/stick", KindBlock, ID{KindItem, "stick"}},
		{"stone", KindBlock, ID{KindBlock, "stone"}},
		{"stick", KindItem, ID{KindItem, "stick"}},
	}
	for _, tt := range tests {
		if got := ParseRef(tt.ref, tt.kind); got != tt.want {
			t.Errorf("ParseRef(%q, %q) = %v, want %v", tt.ref, tt.kind, got, tt.want)
		}
	}
}
