// SPDX-License-Identifier: MPL-2.0

package texture

import (
	"errors"
	"slices"
	"testing"

	"blockdata-cli/internal/resource"
)

func TestEnumerate_NormalizesAndSorts(t *testing.T) {
	t.Parallel()
	lookup := resource.MapLookup{
		"assets/minecraft/textures/block/stone.png":  []byte("s"),
		"assets/minecraft/textures/item/stick.png":   []byte("i"),
		"assets/minecraft/textures/entity/bee.png":   []byte("e"),
		"assets/minecraft/textures/block/dirt.png":   []byte("d"),
		"assets/minecraft/models/block/stone.json":   []byte("{}"),
		"assets/minecraft/textures/blocks/legacy.png": []byte("l"),
	}

	refs := Enumerate(lookup)
	var ids []string
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	want := []string{
		"minecraft:blocks/dirt",
		"minecraft:blocks/legacy",
		"minecraft:blocks/stone",
		"minecraft:items/stick",
	}
	if !slices.Equal(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestScan_DeduplicatesIdenticalContent(t *testing.T) {
	t.Parallel()
	lookup := resource.MapLookup{
		"assets/minecraft/textures/block/stone.png":       []byte("same-bytes"),
		"assets/minecraft/textures/block/stone_alias.png": []byte("same-bytes"),
		"assets/minecraft/textures/block/dirt.png":        []byte("other-bytes"),
	}

	catalog, report := Scan(lookup, Enumerate(lookup))
	if report.Len() != 0 {
		t.Fatalf("unexpected failures: %v", report.Err())
	}
	if len(catalog.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(catalog.Entries))
	}
	if len(catalog.Content) != 2 {
		t.Fatalf("expected 2 distinct content blobs, got %d", len(catalog.Content))
	}

	hash := Fingerprint([]byte("same-bytes"))
	content := catalog.Content[hash]
	if content == nil {
		t.Fatal("expected content entry for shared bytes")
	}
	wantIDs := []string{"minecraft:blocks/stone", "minecraft:blocks/stone_alias"}
	if !slices.Equal(content.IDs, wantIDs) {
		t.Errorf("expected shared ids %v, got %v", wantIDs, content.IDs)
	}
}

func TestScan_DeterministicAcrossInputOrder(t *testing.T) {
	t.Parallel()
	lookup := resource.MapLookup{
		"assets/minecraft/textures/block/a.png": []byte("aa"),
		"assets/minecraft/textures/block/b.png": []byte("bb"),
		"assets/minecraft/textures/block/c.png": []byte("aa"),
	}
	refs := Enumerate(lookup)
	reversed := make([]Ref, len(refs))
	for i, r := range refs {
		reversed[len(refs)-1-i] = r
	}

	forward, _ := Scan(lookup, refs)
	backward, _ := Scan(lookup, reversed)

	if !slices.Equal(forward.Entries, backward.Entries) {
		t.Errorf("entry order depends on input order:\n%v\n%v", forward.Entries, backward.Entries)
	}
	for hash, content := range forward.Content {
		other := backward.Content[hash]
		if other == nil || !slices.Equal(content.IDs, other.IDs) {
			t.Errorf("content ids differ for %s: %v vs %v", hash, content.IDs, other)
		}
	}
}

func TestScan_MissingTextureRecordedNotFatal(t *testing.T) {
	t.Parallel()
	lookup := resource.MapLookup{
		"assets/minecraft/textures/block/stone.png": []byte("s"),
	}
	refs := []Ref{
		{ID: "minecraft:blocks/stone", Path: "assets/minecraft/textures/block/stone.png"},
		{ID: "minecraft:blocks/ghost", Path: "assets/minecraft/textures/block/ghost.png"},
	}

	catalog, report := Scan(lookup, refs)
	if len(catalog.Entries) != 1 {
		t.Fatalf("expected the present texture cataloged, got %d entries", len(catalog.Entries))
	}
	if report.Len() != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", report.Len())
	}
	err := report.Err()
	if !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", err)
	}
}
