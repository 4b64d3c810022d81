// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/adg/lib/codec"
)

// cacheEntry records the digest of one file at one observed state.
// Size and mtime form the staleness fingerprint: if either changed,
// the entry is ignored and the file is re-hashed.
type cacheEntry struct {
	Size      int64  `json:"size"`
	ModTimeNS int64  `json:"mtime_ns"`
	Digest    Digest `json:"digest"`
}

// Cache is an optional persistent digest cache. Entries are keyed by
// algorithm and staging-relative path, fingerprinted by file size and
// mtime. The on-disk form is zstd-compressed deterministic CBOR,
// written atomically (temp file + rename), stored outside the staging
// tree so it never appears in any manifest or integrity record.
//
// Lookup and Store are safe for concurrent use — parallel hashing
// workers hit the cache from multiple goroutines. Load and Save must
// be called from the single pipeline goroutine, before and after the
// hashing stage.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// OpenCache loads the cache file at path, or returns an empty cache
// if the file does not exist. A corrupt cache file is an error: it
// indicates either disk trouble or a foreign file at the cache path,
// and silently discarding it would hide both.
func OpenCache(path string) (*Cache, error) {
	cache := &Cache{path: path, entries: make(map[string]cacheEntry)}

	compressed, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading digest cache %s: %w", path, err)
	}

	reader, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing zstd reader: %w", err)
	}
	defer reader.Close()

	raw, err := reader.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing digest cache %s: %w", path, err)
	}
	if err := codec.Unmarshal(raw, &cache.entries); err != nil {
		return nil, fmt.Errorf("decoding digest cache %s: %w", path, err)
	}
	return cache, nil
}

// Lookup returns the cached digest for the file if the entry's
// fingerprint matches the current file info and its algorithm matches.
func (c *Cache) Lookup(relPath string, info fs.FileInfo, algorithm Algorithm) (Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(algorithm, relPath)]
	if !ok {
		return "", false
	}
	if entry.Size != info.Size() || entry.ModTimeNS != info.ModTime().UnixNano() {
		return "", false
	}
	return entry.Digest, true
}

// Store records a freshly computed digest with the file's current
// fingerprint. The entry becomes durable on the next Save.
func (c *Cache) Store(relPath string, info fs.FileInfo, d Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(d.Algorithm(), relPath)] = cacheEntry{
		Size:      info.Size(),
		ModTimeNS: info.ModTime().UnixNano(),
		Digest:    d,
	}
}

// Save atomically persists the cache to its path. The file is written
// to a temporary location first, then renamed, so a concurrent or
// crashed build never observes a partial cache.
func (c *Cache) Save() error {
	c.mu.Lock()
	raw, err := codec.Marshal(c.entries)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding digest cache: %w", err)
	}

	writer, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("initializing zstd writer: %w", err)
	}
	compressed := writer.EncodeAll(raw, nil)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}

	directory := filepath.Dir(c.path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating digest cache directory %s: %w", directory, err)
	}

	tmpFile, err := os.CreateTemp(directory, "digest-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp digest cache file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(compressed); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing digest cache: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp digest cache file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("renaming digest cache to %s: %w", c.path, err)
	}

	success = true
	return nil
}

// cacheKey builds the map key for one (algorithm, path) pair. Paths
// are staging-relative with forward slashes, so keys are stable
// across machines and working directories.
func cacheKey(algorithm Algorithm, relPath string) string {
	return string(algorithm) + " " + relPath
}
