// SPDX-License-Identifier: MPL-2.0

// Package texture enumerates block and item textures from a distribution,
// fingerprints their content, and deduplicates identical textures into one
// content entry referenced by every id that shares the bytes.
package texture

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/exp/slices"

	"blockdata-cli/internal/issue"
	"blockdata-cli/internal/resource"
)

const (
	// texturePrefix is where all texture entries live inside the client jar.
	texturePrefix = "assets/minecraft/textures/"

	// namespace is the id namespace for vanilla resources.
	namespace = "minecraft:"
)

type (
	// Ref pairs a normalized texture id with the jar entry it comes from.
	Ref struct {
		// ID is the namespaced dataset id, e.g. "minecraft:blocks/stone".
		ID string
		// Path is the entry path inside the distribution.
		Path string
	}

	// Entry is one cataloged texture.
	Entry struct {
		ID   string
		Path string
		// Hash is the hex BLAKE3 digest of the texture bytes; the dedup key.
		Hash string
	}

	// Content is one distinct texture content blob.
	Content struct {
		Data []byte
		// IDs lists every texture id sharing these bytes, sorted.
		IDs []string
	}

	// Catalog is the result of one texture scan. Entries are sorted by id;
	// Content is keyed by fingerprint. Both are immutable once returned.
	Catalog struct {
		Entries []Entry
		Content map[string]*Content
	}
)

// Enumerate lists the block and item texture ids present in the
// distribution, sorted by id. Jar paths use the singular block/ and item/
// directories; dataset ids use the plural legacy form (blocks/, items/).
func Enumerate(lookup resource.Lookup) []Ref {
	var refs []Ref
	for _, path := range lookup.List(texturePrefix) {
		// Skip animation metadata (.png.mcmeta) and anything non-image.
		if !strings.HasSuffix(path, ".png") {
			continue
		}
		rel := strings.TrimPrefix(path, texturePrefix)
		rel, ok := normalizeRel(rel)
		if !ok {
			continue
		}
		refs = append(refs, Ref{
			ID:   namespace + strings.TrimSuffix(rel, ".png"),
			Path: path,
		})
	}
	slices.SortFunc(refs, func(a, b Ref) int {
		return strings.Compare(a.ID, b.ID)
	})
	return refs
}

// normalizeRel maps a jar-relative texture path to its dataset form,
// rejecting textures outside the block and item namespaces.
func normalizeRel(rel string) (string, bool) {
	switch {
	case strings.HasPrefix(rel, "block/"):
		return "blocks/" + strings.TrimPrefix(rel, "block/"), true
	case strings.HasPrefix(rel, "item/"):
		return "items/" + strings.TrimPrefix(rel, "item/"), true
	case strings.HasPrefix(rel, "blocks/"), strings.HasPrefix(rel, "items/"):
		// Pre-1.13 distributions already use the plural form.
		return rel, true
	default:
		return "", false
	}
}

// Fingerprint returns the hex BLAKE3 digest of data.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Scan catalogs the given texture refs. A missing entry is recorded on the
// report and skipped; it never aborts the scan. The returned catalog is
// deterministic for a given distribution regardless of input order.
func Scan(lookup resource.Lookup, refs []Ref) (*Catalog, *issue.Report) {
	report := &issue.Report{}
	catalog := &Catalog{Content: make(map[string]*Content)}

	sorted := slices.Clone(refs)
	slices.SortFunc(sorted, func(a, b Ref) int {
		return strings.Compare(a.ID, b.ID)
	})

	for _, ref := range sorted {
		data, err := lookup.Open(ref.Path)
		if err != nil {
			report.Add(ref.ID, err)
			continue
		}
		hash := Fingerprint(data)
		catalog.Entries = append(catalog.Entries, Entry{ID: ref.ID, Path: ref.Path, Hash: hash})

		content, ok := catalog.Content[hash]
		if !ok {
			content = &Content{Data: data}
			catalog.Content[hash] = content
		}
		content.IDs = append(content.IDs, ref.ID)
	}

	return catalog, report
}
