// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bureau-foundation/adg/lib/digest"
)

// FileEntry records one shipped file: its staging-relative path and
// the algorithm-tagged digest of its content. Entries are immutable
// once created.
type FileEntry struct {
	Path string        `json:"path"`
	Hash digest.Digest `json:"hash"`
}

// BuildInfo is the per-invocation build metadata. Timestamp is the
// manifest-generation instant (RFC 3339, UTC) — not the artifact
// creation time, since manifest generation is the last
// content-affecting step. Environment is optional free text
// describing the producing toolchain.
type BuildInfo struct {
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment,omitempty"`
}

// Document is the manifest aggregate. Field order is the wire
// contract: canonical JSON serializes keys in exactly this order.
// A Document is never mutated after construction and never re-read
// by this subsystem once written.
type Document struct {
	Name         string      `json:"name"`
	Version      string      `json:"version"`
	Build        BuildInfo   `json:"build"`
	Files        []FileEntry `json:"files"`
	Dependencies []string    `json:"dependencies"`
}

// Timestamp formats an instant as the manifest timestamp: RFC 3339
// in UTC, second precision. Sub-second precision would add nothing
// for reproducibility audits and makes the field's width vary.
func Timestamp(instant time.Time) string {
	return instant.UTC().Format(time.RFC3339)
}

// New composes a manifest document. Pure: no I/O, and the same
// inputs always produce the same document.
//
// Construction is rejected if name or version is empty, if the file
// set is empty (zero files means the upstream enumeration failed —
// emitting an empty manifest would hide that), or if any file entry
// violates the path invariants: unique, relative, forward-slash
// separated, no parent-directory segments.
func New(name, version string, build BuildInfo, files []FileEntry, dependencies []string) (*Document, error) {
	if name == "" {
		return nil, fmt.Errorf("artifact name is empty")
	}
	if version == "" {
		return nil, fmt.Errorf("artifact version is empty")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("file set is empty: no files enumerated for %s %s", name, version)
	}
	if err := validateFiles(files); err != nil {
		return nil, err
	}

	// Copy the slices so the document cannot be mutated through the
	// caller's references. Dependencies may legitimately be empty,
	// but serialize as [] rather than null.
	document := &Document{
		Name:         name,
		Version:      version,
		Build:        build,
		Files:        append([]FileEntry(nil), files...),
		Dependencies: append([]string{}, dependencies...),
	}
	return document, nil
}

// validateFiles enforces the FileEntry invariants.
func validateFiles(files []FileEntry) error {
	seen := make(map[string]bool, len(files))
	for _, entry := range files {
		switch {
		case entry.Path == "":
			return fmt.Errorf("file entry has empty path")
		case path.IsAbs(entry.Path):
			return fmt.Errorf("file path %q is absolute, want relative", entry.Path)
		case strings.Contains(entry.Path, `\`):
			return fmt.Errorf("file path %q contains a backslash, want forward slashes", entry.Path)
		case entry.Path == ".." || strings.HasPrefix(entry.Path, "../") || strings.Contains(entry.Path, "/../") || strings.HasSuffix(entry.Path, "/.."):
			return fmt.Errorf("file path %q contains a parent-directory segment", entry.Path)
		case seen[entry.Path]:
			return fmt.Errorf("duplicate file path %q", entry.Path)
		}
		seen[entry.Path] = true

		if _, _, err := digest.Parse(string(entry.Hash)); err != nil {
			return fmt.Errorf("file %q: %w", entry.Path, err)
		}
	}
	return nil
}
