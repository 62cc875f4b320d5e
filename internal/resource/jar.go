// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// JarLookup reads entries from a client jar (a zip archive). Entry names are
// indexed once at open time; Open and List never touch the filesystem metadata
// again. A client jar holds tens of thousands of deflate entries, so the
// stock decompressor is swapped for the klauspost implementation.
type JarLookup struct {
	rc      *zip.ReadCloser
	entries map[string]*zip.File
}

// OpenJar opens the jar at path and indexes its entries.
func OpenJar(path string) (*JarLookup, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open client jar %s: %w", path, err)
	}
	rc.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	entries := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		entries[f.Name] = f
	}

	return &JarLookup{rc: rc, entries: entries}, nil
}

// Open implements Lookup.
func (j *JarLookup) Open(path string) ([]byte, error) {
	f, ok := j.entries[path]
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open jar entry %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read jar entry %s: %w", path, err)
	}
	return data, nil
}

// List implements Lookup.
func (j *JarLookup) List(prefix string) []string {
	var out []string
	for _, name := range maps.Keys(j.entries) {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Close releases the underlying archive.
func (j *JarLookup) Close() error {
	return j.rc.Close()
}
