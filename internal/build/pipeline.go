// SPDX-License-Identifier: MPL-2.0

// Package build runs one version build end to end: it enumerates the raw
// definitions from the distribution, drives the model and block state
// resolvers, catalogs textures, and publishes the dataset atomically. A
// build either publishes every record or nothing.
package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"blockdata-cli/internal/blockstate"
	"blockdata-cli/internal/issue"
	"blockdata-cli/internal/legacy"
	"blockdata-cli/internal/model"
	"blockdata-cli/internal/resource"
	"blockdata-cli/internal/texture"
)

const (
	blockstatePrefix = "assets/minecraft/blockstates/"
	blockModelPrefix = "assets/minecraft/models/block/"
	itemModelPrefix  = "assets/minecraft/models/item/"

	// missingTexture is the placeholder id for blocks and items whose
	// representative texture cannot be determined.
	missingTexture = "minecraft:missingno"
)

type (
	// Options configures one version build.
	Options struct {
		// Version is the version being built; it names the output directory.
		Version string
		// DataDir is the dataset root; records land in DataDir/Version/.
		DataDir string
		// Force rebuilds even when the version's dataset already exists.
		Force bool
	}

	// Result summarizes a completed (or skipped) build.
	Result struct {
		Version string
		// Path is the published dataset directory.
		Path string
		// Skipped is true when the version was already built and Force was
		// not set; nothing was written.
		Skipped bool

		Blocks   int
		Models   int
		Items    int
		Textures int
	}

	// Pipeline holds the collaborators of one build run. Lookup reads one
	// version's distribution; Legacy is version-independent and may be
	// shared across builds.
	Pipeline struct {
		Lookup resource.Lookup
		Legacy *legacy.Index
		Logger *slog.Logger
	}
)

// Run builds the dataset for opts.Version. Per-item resolution failures are
// collected across the whole run and returned together as a single
// BuildFailedError; structural failures (a model inheritance cycle) abort
// immediately. No output is published for a failed build.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	target := filepath.Join(opts.DataDir, opts.Version)
	if !opts.Force && DatasetExists(target) {
		logger.Info("version already built", "version", opts.Version, "path", target)
		return &Result{Version: opts.Version, Path: target, Skipped: true}, nil
	}

	report := &issue.Report{}

	raw, err := p.loadRawModels(ctx, report)
	if err != nil {
		return nil, err
	}
	logger.Debug("raw models loaded", "count", len(raw))

	// Structural pre-check: a cycle anywhere in the parent graph corrupts
	// every model behind it, so it aborts before any resolution starts.
	if err := checkInheritance(raw); err != nil {
		return nil, err
	}

	resolver := model.NewResolver(raw)

	states, usedModels := p.resolveBlockStates(ctx, resolver, report)
	logger.Debug("block states resolved", "count", len(states), "failed", report.Len())

	items := p.resolveItemTextures(resolver, raw, report)

	catalog, textureReport := texture.Scan(p.Lookup, texture.Enumerate(p.Lookup))
	report.Merge(textureReport)
	logger.Debug("textures cataloged", "entries", len(catalog.Entries), "distinct", len(catalog.Content))

	if err := report.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dataset := p.assemble(states, usedModels, items, catalog)
	if err := publish(opts.DataDir, opts.Version, dataset); err != nil {
		return nil, err
	}

	return &Result{
		Version:  opts.Version,
		Path:     target,
		Blocks:   len(states),
		Models:   len(usedModels),
		Items:    len(items),
		Textures: len(catalog.Entries),
	}, nil
}

// loadRawModels parses every block and item model definition in the
// distribution. A malformed definition is a per-item failure; the id is
// recorded and the model treated as absent.
func (p *Pipeline) loadRawModels(ctx context.Context, report *issue.Report) (map[model.ID]*model.RawModel, error) {
	raw := make(map[model.ID]*model.RawModel)
	for _, kind := range []struct {
		prefix string
		kind   model.Kind
	}{
		{blockModelPrefix, model.KindBlock},
		{itemModelPrefix, model.KindItem},
	} {
		for _, path := range p.Lookup.List(kind.prefix) {
			if !strings.HasSuffix(path, ".json") {
				continue
			}
			id := model.ID{Kind: kind.kind, Name: entryName(path, kind.prefix)}
			data, err := p.Lookup.Open(path)
			if err != nil {
				report.Add(id.String(), err)
				continue
			}
			m, err := model.ParseRaw(data)
			if err != nil {
				report.Add(id.String(), err)
				continue
			}
			raw[id] = m
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// checkInheritance builds the parent graph over the whole raw table and
// fails on any cycle. Parents living outside the table (missing models) are
// not an error here; they surface per-item when something references them.
func checkInheritance(raw map[model.ID]*model.RawModel) error {
	ids := maps.Keys(raw)
	slices.SortFunc(ids, func(a, b model.ID) int {
		return strings.Compare(a.String(), b.String())
	})

	graph := model.NewGraph()
	for _, id := range ids {
		graph.AddModel(id)
	}
	for _, id := range ids {
		parent := raw[id].Parent
		if parent == "" || model.IsBuiltinParent(parent) {
			continue
		}
		graph.AddInheritance(model.ParseRef(parent, id.Kind), id)
	}
	_, err := graph.ResolutionOrder()
	return err
}

// resolveBlockStates parses and resolves every block state definition,
// returning the resolved states keyed by block name and the resolved models
// they reference keyed by canonical model id.
func (p *Pipeline) resolveBlockStates(ctx context.Context, resolver *model.Resolver, report *issue.Report) (map[string]*blockstate.Resolved, map[string]*model.ResolvedModel) {
	states := make(map[string]*blockstate.Resolved)
	usedModels := make(map[string]*model.ResolvedModel)

	for _, path := range p.Lookup.List(blockstatePrefix) {
		if !strings.HasSuffix(path, ".json") {
			continue
		}
		block := entryName(path, blockstatePrefix)

		data, err := p.Lookup.Open(path)
		if err != nil {
			report.Add(block, err)
			continue
		}
		def, err := blockstate.Parse(data)
		if err != nil {
			report.Add(block, err)
			continue
		}
		resolved, err := blockstate.Resolve(block, def, resolver)
		if err != nil {
			report.Add(block, err)
			continue
		}
		states[block] = resolved

		for _, refs := range resolved.Variants {
			collectModels(refs, resolver, usedModels)
		}
		for _, part := range resolved.Multipart {
			collectModels(part.Apply, resolver, usedModels)
		}
		if ctx.Err() != nil {
			return states, usedModels
		}
	}
	return states, usedModels
}

// collectModels re-resolves each reference (memoized, so this is a lookup)
// to index the resolved model under its canonical id.
func collectModels(refs []blockstate.ResolvedRef, resolver *model.Resolver, out map[string]*model.ResolvedModel) {
	for _, ref := range refs {
		if _, ok := out[ref.Model]; ok {
			continue
		}
		id := model.ParseRef(ref.Model, model.KindBlock)
		resolved, err := resolver.Resolve(id)
		if err != nil {
			// blockstate.Resolve already vetted this reference.
			continue
		}
		out[ref.Model] = resolved
	}
}

// itemEntry is one items_textures.json row.
type itemEntry struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Texture string `json:"texture"`
}

// resolveItemTextures resolves every item model and picks its representative
// texture. Items whose model cannot resolve are per-item failures.
func (p *Pipeline) resolveItemTextures(resolver *model.Resolver, raw map[model.ID]*model.RawModel, report *issue.Report) []itemEntry {
	ids := maps.Keys(raw)
	slices.SortFunc(ids, func(a, b model.ID) int {
		return strings.Compare(a.Name, b.Name)
	})

	var items []itemEntry
	for _, id := range ids {
		if id.Kind != model.KindItem {
			continue
		}
		resolved, err := resolver.Resolve(id)
		if err != nil {
			report.Add(id.String(), err)
			continue
		}
		tex := normalizeTexturePath(pickTexture(resolved.Textures), "items")
		if tex == "" {
			tex = missingTexture
		}
		items = append(items, itemEntry{Name: id.Name, Model: id.Name, Texture: tex})
	}
	return items
}

// pickTexture chooses the representative texture from a resolved texture
// map: well-known variable names first, then the lexicographically first
// concrete binding.
func pickTexture(textures map[string]string) string {
	for _, key := range []string{"all", "texture", "side", "end", "top", "bottom", "layer0", "particle"} {
		if v, ok := textures[key]; ok && !strings.HasPrefix(v, "#") {
			return v
		}
	}
	keys := maps.Keys(textures)
	slices.Sort(keys)
	for _, key := range keys {
		if v := textures[key]; !strings.HasPrefix(v, "#") {
			return v
		}
	}
	return ""
}

// normalizeTexturePath maps a model texture reference to its dataset id
// ("minecraft:blocks/stone"). A bare name gets the default prefix.
func normalizeTexturePath(ref, defaultPrefix string) string {
	if ref == "" {
		return ""
	}
	ref = strings.TrimPrefix(ref, "minecraft:")
	switch {
	case strings.HasPrefix(ref, "block/"):
		ref = "blocks/" + strings.TrimPrefix(ref, "block/")
	case strings.HasPrefix(ref, "item/"):
		ref = "items/" + strings.TrimPrefix(ref, "item/")
	case strings.HasPrefix(ref, "blocks/"), strings.HasPrefix(ref, "items/"):
		// Already in dataset form.
	case !strings.Contains(ref, "/"):
		ref = defaultPrefix + "/" + ref
	}
	return "minecraft:" + ref
}

// entryName extracts the definition name from a jar path.
func entryName(path, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), ".json")
}
