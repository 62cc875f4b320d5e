// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestMapLookup_OpenMissing(t *testing.T) {
	t.Parallel()
	m := MapLookup{"a/b.json": []byte("{}")}

	_, err := m.Open("a/missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	if nfe.Path != "a/missing.json" {
		t.Errorf("expected path in error, got %q", nfe.Path)
	}
}

func TestMapLookup_ListSorted(t *testing.T) {
	t.Parallel()
	m := MapLookup{
		"assets/minecraft/models/block/stone.json": nil,
		"assets/minecraft/models/block/dirt.json":  nil,
		"assets/minecraft/models/item/stick.json":  nil,
	}

	got := m.List("assets/minecraft/models/block/")
	want := []string{
		"assets/minecraft/models/block/dirt.json",
		"assets/minecraft/models/block/stone.json",
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestJarLookup_RoundTrip(t *testing.T) {
	t.Parallel()

	jarPath := filepath.Join(t.TempDir(), "client.jar")
	writeTestJar(t, jarPath, map[string][]byte{
		"assets/minecraft/textures/block/stone.png": []byte("png-bytes"),
		"assets/minecraft/blockstates/stone.json":   []byte(`{"variants":{}}`),
	})

	jar, err := OpenJar(jarPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer jar.Close()

	data, err := jar.Open("assets/minecraft/textures/block/stone.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte("png-bytes")) {
		t.Errorf("unexpected content: %q", data)
	}

	if _, err := jar.Open("assets/minecraft/textures/block/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got := jar.List("assets/minecraft/blockstates/")
	if len(got) != 1 || got[0] != "assets/minecraft/blockstates/stone.json" {
		t.Errorf("unexpected listing: %v", got)
	}
}

func writeTestJar(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create jar: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}
