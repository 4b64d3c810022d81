// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"os"
	"path/filepath"
	"testing"
)

func statFile(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info
}

func TestCacheMissOnEmpty(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.bin"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}

	path := writeFile(t, t.TempDir(), "f.txt", "content")
	if _, ok := cache.Lookup("f.txt", statFile(t, path), SHA256); ok {
		t.Error("empty cache returned a hit")
	}
}

func TestCacheRoundtrip(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.bin")
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "content")
	info := statFile(t, path)

	want, err := File(path, SHA256)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	cache, err := OpenCache(cachePath)
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	cache.Store("f.txt", info, want)
	if err := cache.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := OpenCache(cachePath)
	if err != nil {
		t.Fatalf("reopening cache failed: %v", err)
	}
	got, ok := reopened.Lookup("f.txt", info, SHA256)
	if !ok {
		t.Fatal("expected cache hit after reopen")
	}
	if got != want {
		t.Errorf("cached digest = %s, want %s", got, want)
	}
}

func TestCacheStaleOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "before")
	info := statFile(t, path)

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.bin"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	d, err := File(path, SHA256)
	if err != nil {
		t.Fatal(err)
	}
	cache.Store("f.txt", info, d)

	// Rewrite with different size so the fingerprint cannot match.
	writeFile(t, dir, "f.txt", "after, longer content")
	if _, ok := cache.Lookup("f.txt", statFile(t, path), SHA256); ok {
		t.Error("stale entry returned as hit")
	}
}

func TestCacheAlgorithmIsolation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "content")
	info := statFile(t, path)

	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.bin"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	d, err := File(path, SHA256)
	if err != nil {
		t.Fatal(err)
	}
	cache.Store("f.txt", info, d)

	if _, ok := cache.Lookup("f.txt", info, BLAKE3); ok {
		t.Error("sha256 entry satisfied a blake3 lookup")
	}
}

func TestCacheCorruptFile(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.bin")
	if err := os.WriteFile(cachePath, []byte("not a cache"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenCache(cachePath); err == nil {
		t.Error("corrupt cache file accepted")
	}
}
