// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package staging enumerates the files of a frozen staging directory
// for manifest generation.
//
// Enumeration is read-only and deterministic: it returns relative,
// forward-slash paths in sorted order, so that manifest serialization
// — and therefore the manifest's own hash, once the integrity record
// covers it — is stable across builds with identical content.
package staging

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Enumerate walks the staging directory rooted at root and returns
// the sorted set of relative file paths that will ship in the
// artifact. Paths use forward slashes regardless of platform and
// never contain parent-directory segments.
//
// Names listed in exclude are skipped by their root-relative path.
// Callers pass the manifest output name (a manifest must not try to
// hash itself) and the artifact's pre-existing file-integrity record
// (rewritten after this step; including it would create an ordering
// dependency between the two records).
//
// Directories contribute nothing themselves; only the files within
// them appear. An unreadable directory is a hard failure — a manifest
// that silently misses entries is worse than no manifest.
func Enumerate(root string, exclude ...string) ([]string, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		if name != "" {
			excluded[name] = true
		}
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		relative, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		slashed := filepath.ToSlash(relative)
		if strings.HasPrefix(slashed, "../") {
			return fmt.Errorf("path %s escapes staging root %s", path, root)
		}
		if excluded[slashed] {
			return nil
		}

		paths = append(paths, slashed)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating staging directory %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
