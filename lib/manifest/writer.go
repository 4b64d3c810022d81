// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/adg/lib/codec"
)

// Write serializes the document as canonical JSON and places it
// atomically at path. The bytes are written to a temporary file in
// the same directory first, then renamed — rename within a directory
// is atomic on POSIX filesystems, so either the complete manifest
// appears at path or nothing does. The temporary file is removed on
// every failure path.
//
// The destination directory must exist: the writer targets a location
// inside the frozen staging area and must not invent directories the
// build did not create.
func Write(document *Document, path string) error {
	data, err := codec.MarshalJSON(document)
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp manifest file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming manifest to %s: %w", path, err)
	}

	success = true
	return nil
}
