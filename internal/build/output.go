// SPDX-License-Identifier: MPL-2.0

package build

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"blockdata-cli/internal/blockstate"
	"blockdata-cli/internal/legacy"
	"blockdata-cli/internal/model"
	"blockdata-cli/internal/texture"
)

// Dataset filenames, one JSON record each. A build publishes all of them or
// none.
const (
	blocksStatesFile   = "blocks_states.json"
	blocksModelsFile   = "blocks_models.json"
	blocksTexturesFile = "blocks_textures.json"
	itemsTexturesFile  = "items_textures.json"
	textureContentFile = "texture_content.json"
	blocksLegacyFile   = "blocks_legacy.json"
)

// DatasetExists reports whether dir holds a published data set. Datasets are
// published atomically, so checking one record is enough.
func DatasetExists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, blocksModelsFile))
	return err == nil && !info.IsDir()
}

type (
	// blockEntry is one blocks_textures.json row: the representative model
	// and texture of a block's default state.
	blockEntry struct {
		Name       string `json:"name"`
		BlockState string `json:"blockState"`
		Model      string `json:"model"`
		Texture    string `json:"texture"`
	}

	// contentEntry is one texture_content.json value: the encoded bytes and
	// every texture id sharing them.
	contentEntry struct {
		Texture string   `json:"texture"`
		IDs     []string `json:"ids"`
	}

	// dataset holds every record of one version build, ready to serialize.
	dataset struct {
		blocksStates   map[string]*blockstate.Resolved
		blocksModels   map[string]*model.ResolvedModel
		blocksTextures []blockEntry
		itemsTextures  []itemEntry
		textureContent map[string]contentEntry
		blocksLegacy   []legacy.Entry
	}
)

// assemble merges the resolver outputs into the dataset records.
func (p *Pipeline) assemble(states map[string]*blockstate.Resolved, usedModels map[string]*model.ResolvedModel, items []itemEntry, catalog *texture.Catalog) *dataset {
	ds := &dataset{
		blocksStates:   states,
		blocksModels:   usedModels,
		blocksTextures: []blockEntry{},
		itemsTextures:  items,
		textureContent: make(map[string]contentEntry, len(catalog.Content)),
		blocksLegacy:   []legacy.Entry{},
	}
	if ds.itemsTextures == nil {
		ds.itemsTextures = []itemEntry{}
	}

	blocks := maps.Keys(states)
	slices.Sort(blocks)
	for _, block := range blocks {
		ds.blocksTextures = append(ds.blocksTextures, blockTextureEntry(block, states[block], usedModels))
	}

	for hash, content := range catalog.Content {
		ds.textureContent[hash] = contentEntry{
			Texture: "data:image/png;base64," + base64.StdEncoding.EncodeToString(content.Data),
			IDs:     content.IDs,
		}
	}

	if p.Legacy != nil {
		for _, e := range p.Legacy.Entries() {
			if renamed, ok := p.Legacy.Rename(e.Name); ok {
				e.Name = renamed
			}
			ds.blocksLegacy = append(ds.blocksLegacy, e)
		}
	}

	return ds
}

// blockTextureEntry picks the representative model and texture for one
// block: the first alternative of the first variant key (or the first
// multipart rule), then that model's best texture binding.
func blockTextureEntry(block string, state *blockstate.Resolved, usedModels map[string]*model.ResolvedModel) blockEntry {
	entry := blockEntry{
		Name:       block,
		BlockState: block,
		Model:      "minecraft:blocks/air",
		Texture:    missingTexture,
	}

	ref, ok := firstRef(state)
	if !ok {
		return entry
	}
	entry.Model = "minecraft:blocks/" + strings.TrimPrefix(ref.Model, "block/")

	resolved, ok := usedModels[ref.Model]
	if !ok {
		return entry
	}
	if tex := normalizeTexturePath(pickTexture(resolved.Textures), "blocks"); tex != "" {
		entry.Texture = tex
	}
	return entry
}

func firstRef(state *blockstate.Resolved) (blockstate.ResolvedRef, bool) {
	if len(state.Variants) > 0 {
		keys := maps.Keys(state.Variants)
		slices.Sort(keys)
		refs := state.Variants[keys[0]]
		if len(refs) > 0 {
			return refs[0], true
		}
		return blockstate.ResolvedRef{}, false
	}
	for _, part := range state.Multipart {
		if len(part.Apply) > 0 {
			return part.Apply[0], true
		}
	}
	return blockstate.ResolvedRef{}, false
}

// publish writes every record into a staging directory next to the target
// and renames it into place, so a failed or interrupted build never leaves
// a partial dataset behind.
func publish(dataDir, version string, ds *dataset) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	staging, err := os.MkdirTemp(dataDir, ".staging-"+version+"-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	records := map[string]any{
		blocksStatesFile:   ds.blocksStates,
		blocksModelsFile:   ds.blocksModels,
		blocksTexturesFile: ds.blocksTextures,
		itemsTexturesFile:  ds.itemsTextures,
		textureContentFile: ds.textureContent,
		blocksLegacyFile:   ds.blocksLegacy,
	}
	for _, name := range []string{
		blocksStatesFile, blocksModelsFile, blocksTexturesFile,
		itemsTexturesFile, textureContentFile, blocksLegacyFile,
	} {
		if err := writeJSON(filepath.Join(staging, name), records[name]); err != nil {
			return err
		}
	}

	target := filepath.Join(dataDir, version)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("remove stale dataset: %w", err)
	}
	if err := os.Rename(staging, target); err != nil {
		return fmt.Errorf("publish dataset: %w", err)
	}
	return nil
}

// writeJSON marshals v compactly with a trailing newline. encoding/json
// sorts map keys, which keeps rebuilds byte-identical.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
