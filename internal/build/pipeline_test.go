// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"blockdata-cli/internal/blockstate"
	"blockdata-cli/internal/issue"
	"blockdata-cli/internal/legacy"
	"blockdata-cli/internal/model"
	"blockdata-cli/internal/resource"
)

// testDistribution assembles a small but complete synthetic client jar.
func testDistribution() resource.MapLookup {
	return resource.MapLookup{
		"assets/minecraft/blockstates/stone.json": []byte(`{
			"variants": {"": {"model": "block/stone"}}
		}`),
		"assets/minecraft/blockstates/mossy_stone.json": []byte(`{
			"variants": {"": [
				{"model": "block/mossy_stone", "weight": 2},
				{"model": "block/stone"}
			]}
		}`),
		"assets/minecraft/blockstates/oak_fence.json": []byte(`{
			"multipart": [
				{"apply": {"model": "block/oak_fence_post"}},
				{"when": {"north": "true"}, "apply": {"model": "block/oak_fence_side", "uvlock": true}}
			]
		}`),
		"assets/minecraft/models/block/cube_all.json": []byte(`{
			"textures": {"particle": "#all"},
			"elements": [{
				"from": [0, 0, 0], "to": [16, 16, 16],
				"faces": {"north": {"texture": "#all"}, "up": {"texture": "#all"}}
			}]
		}`),
		"assets/minecraft/models/block/stone.json": []byte(`{
			"parent": "block/cube_all",
			"textures": {"all": "block/stone"}
		}`),
		"assets/minecraft/models/block/mossy_stone.json": []byte(`{
			"parent": "block/stone",
			"textures": {"all": "block/mossy_stone"}
		}`),
		"assets/minecraft/models/block/oak_fence_post.json": []byte(`{
			"textures": {"texture": "block/oak_planks"},
			"elements": [{
				"from": [6, 0, 6], "to": [10, 16, 10],
				"faces": {"north": {"texture": "#texture"}}
			}]
		}`),
		"assets/minecraft/models/block/oak_fence_side.json": []byte(`{
			"textures": {"texture": "block/oak_planks"},
			"elements": [{
				"from": [7, 12, 0], "to": [9, 15, 6],
				"faces": {"up": {"texture": "#texture"}}
			}]
		}`),
		"assets/minecraft/models/item/stick.json": []byte(`{
			"parent": "builtin/generated",
			"textures": {"layer0": "item/stick"}
		}`),
		"assets/minecraft/textures/block/stone.png":       []byte("stone-png"),
		"assets/minecraft/textures/block/mossy_stone.png": []byte("mossy-png"),
		"assets/minecraft/textures/block/oak_planks.png":  []byte("planks-png"),
		// Same bytes as oak_planks: must dedup into one content entry.
		"assets/minecraft/textures/block/oak_planks_old.png": []byte("planks-png"),
		"assets/minecraft/textures/item/stick.png":           []byte("stick-png"),
	}
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	idx, err := legacy.Load()
	if err != nil {
		t.Fatalf("load legacy tables: %v", err)
	}
	return &Pipeline{Lookup: testDistribution(), Legacy: idx}
}

func readRecord(t *testing.T, dir, name string, out any) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
}

func TestRun_PublishesAllRecords(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()

	result, err := testPipeline(t).Run(context.Background(), Options{Version: "1.21.11", DataDir: dataDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped {
		t.Fatal("expected a fresh build, got skipped")
	}

	for _, name := range []string{
		"blocks_states.json", "blocks_models.json", "blocks_textures.json",
		"items_textures.json", "texture_content.json", "blocks_legacy.json",
	} {
		if _, err := os.Stat(filepath.Join(result.Path, name)); err != nil {
			t.Errorf("missing record %s: %v", name, err)
		}
	}

	var states map[string]*blockstate.Resolved
	readRecord(t, result.Path, "blocks_states.json", &states)
	stone := states["stone"]
	if stone == nil {
		t.Fatal("stone missing from blocks_states.json")
	}
	refs := stone.Variants[""]
	if len(refs) != 1 || refs[0].Model != "block/stone" || refs[0].Weight != 1 {
		t.Errorf("unexpected stone variant: %+v", refs)
	}
	if len(states["mossy_stone"].Variants[""]) != 2 {
		t.Errorf("weighted alternatives not preserved: %+v", states["mossy_stone"])
	}
	fence := states["oak_fence"]
	if len(fence.Multipart) != 2 || fence.Multipart[0].When != nil || fence.Multipart[1].When == nil {
		t.Errorf("multipart form mangled: %+v", fence)
	}

	var models map[string]*model.ResolvedModel
	readRecord(t, result.Path, "blocks_models.json", &models)
	mossy := models["block/mossy_stone"]
	if mossy == nil {
		t.Fatal("block/mossy_stone missing from blocks_models.json")
	}
	if mossy.Textures["all"] != "block/mossy_stone" {
		t.Errorf("child texture override lost: %v", mossy.Textures)
	}
	if len(mossy.Elements) != 1 {
		t.Errorf("inherited elements lost: %+v", mossy.Elements)
	}
	if _, ok := models["block/cube_all"]; ok {
		t.Error("abstract template model should not be published")
	}

	var content map[string]contentEntry
	readRecord(t, result.Path, "texture_content.json", &content)
	var planks *contentEntry
	for hash := range content {
		entry := content[hash]
		if len(entry.IDs) == 2 {
			planks = &entry
		}
	}
	if planks == nil {
		t.Fatal("expected one content entry shared by two texture ids")
	}
	wantIDs := []string{"minecraft:blocks/oak_planks", "minecraft:blocks/oak_planks_old"}
	for i, id := range wantIDs {
		if planks.IDs[i] != id {
			t.Errorf("shared ids = %v, want %v", planks.IDs, wantIDs)
		}
	}

	var items []itemEntry
	readRecord(t, result.Path, "items_textures.json", &items)
	if len(items) != 1 || items[0].Name != "stick" || items[0].Texture != "minecraft:items/stick" {
		t.Errorf("unexpected items_textures: %+v", items)
	}

	var legacyRows []legacy.Entry
	readRecord(t, result.Path, "blocks_legacy.json", &legacyRows)
	found := false
	for _, row := range legacyRows {
		if row.ID == 1 && row.Meta == 1 && row.Name == "granite" {
			found = true
		}
	}
	if !found {
		t.Error("expected (1,1) -> granite in blocks_legacy.json")
	}
}

func TestRun_Reproducible(t *testing.T) {
	t.Parallel()
	dirA := t.TempDir()
	dirB := t.TempDir()
	pipeline := testPipeline(t)

	if _, err := pipeline.Run(context.Background(), Options{Version: "1.21.11", DataDir: dirA}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := testPipeline(t).Run(context.Background(), Options{Version: "1.21.11", DataDir: dirB}); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, name := range []string{
		"blocks_states.json", "blocks_models.json", "blocks_textures.json",
		"items_textures.json", "texture_content.json", "blocks_legacy.json",
	} {
		a, err := os.ReadFile(filepath.Join(dirA, "1.21.11", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, "1.21.11", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}

func TestRun_SkipsAlreadyBuilt(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	pipeline := testPipeline(t)

	first, err := pipeline.Run(context.Background(), Options{Version: "1.21.11", DataDir: dataDir})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Skipped {
		t.Fatal("first run should build")
	}

	second, err := pipeline.Run(context.Background(), Options{Version: "1.21.11", DataDir: dataDir})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Skipped {
		t.Error("second run should short-circuit")
	}

	forced, err := pipeline.Run(context.Background(), Options{Version: "1.21.11", DataDir: dataDir, Force: true})
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.Skipped {
		t.Error("forced run should rebuild")
	}
}

func TestRun_CollectsEveryFailureAndPublishesNothing(t *testing.T) {
	t.Parallel()
	lookup := testDistribution()
	// Two independent breakages: both must appear in one failed run.
	lookup["assets/minecraft/blockstates/ghost.json"] = []byte(`{
		"variants": {"": {"model": "block/does_not_exist"}}
	}`)
	lookup["assets/minecraft/blockstates/phantom.json"] = []byte(`{
		"variants": {"": {"model": "block/also_missing"}}
	}`)

	dataDir := t.TempDir()
	_, err := (&Pipeline{Lookup: lookup}).Run(context.Background(), Options{Version: "1.21.11", DataDir: dataDir})
	if err == nil {
		t.Fatal("expected build failure")
	}

	var buildErr *issue.BuildFailedError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *BuildFailedError, got %T: %v", err, err)
	}
	blocks := map[string]bool{}
	for _, f := range buildErr.Failures {
		blocks[f.ID] = true
	}
	if !blocks["ghost"] || !blocks["phantom"] {
		t.Errorf("expected both broken blocks reported, got %+v", buildErr.Failures)
	}
	if !errors.Is(err, blockstate.ErrUnresolvedModelReference) {
		t.Errorf("expected wrapped ErrUnresolvedModelReference, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dataDir, "1.21.11")); !os.IsNotExist(statErr) {
		t.Error("failed build must not publish a dataset directory")
	}
}

func TestRun_InheritanceCycleAbortsImmediately(t *testing.T) {
	t.Parallel()
	lookup := testDistribution()
	lookup["assets/minecraft/models/block/loop_a.json"] = []byte(`{"parent": "block/loop_b"}`)
	lookup["assets/minecraft/models/block/loop_b.json"] = []byte(`{"parent": "block/loop_a"}`)

	_, err := (&Pipeline{Lookup: lookup}).Run(context.Background(), Options{Version: "1.21.11", DataDir: t.TempDir()})
	if !errors.Is(err, model.ErrCyclicInheritance) {
		t.Fatalf("expected ErrCyclicInheritance, got %v", err)
	}
}

func TestNormalizeTexturePath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		ref, prefix, want string
	}{
		{"block/stone", "blocks", "minecraft:blocks/stone"},
		{"minecraft:block/stone", "blocks", "minecraft:blocks/stone"},
		{"item/stick", "items", "minecraft:items/stick"},
		{"blocks/legacy", "blocks", "minecraft:blocks/legacy"},
		{"bare_name", "items", "minecraft:items/bare_name"},
		{"", "blocks", ""},
	}
	for _, tt := range tests {
		if got := normalizeTexturePath(tt.ref, tt.prefix); got != tt.want {
			t.Errorf("normalizeTexturePath(%q, %q) = %q, want %q", tt.ref, tt.prefix, got, tt.want)
		}
	}
}
