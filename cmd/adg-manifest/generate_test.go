// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/adg/lib/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stageFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// snapshotDir captures every file under root as relative path →
// content, so before/after comparisons catch any write at all.
func snapshotDir(t *testing.T, root string) map[string]string {
	t.Helper()
	snapshot := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		snapshot[filepath.ToSlash(relative)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return snapshot
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	stageFiles(t, root, map[string]string{
		"bin/tool": "binary bits",
		"doc.txt":  "docs",
	})

	err := generate(context.Background(), config.Default(), invocation{
		stagingRoot: root,
		name:        "tool",
		version:     "1.0",
	}, testLogger())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "ADG.json")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
}

func TestGenerateDisabled(t *testing.T) {
	root := t.TempDir()
	stageFiles(t, root, map[string]string{
		"bin/tool": "binary bits",
		"doc.txt":  "docs",
	})
	before := snapshotDir(t, root)

	configuration := config.Default()
	configuration.Enabled = false

	err := generate(context.Background(), configuration, invocation{
		stagingRoot: root,
		name:        "tool",
		version:     "1.0",
	}, testLogger())
	if err != nil {
		t.Fatalf("disabled generate failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "ADG.json")); !os.IsNotExist(err) {
		t.Error("manifest written despite disabled configuration")
	}
	after := snapshotDir(t, root)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("staging directory changed:\nbefore: %v\nafter:  %v", before, after)
	}

	// Disabled mode skips input validation too: the orchestrator can
	// leave the subsystem off without supplying an identity.
	if err := generate(context.Background(), configuration, invocation{}, testLogger()); err != nil {
		t.Errorf("disabled generate with no inputs failed: %v", err)
	}
}

func TestGenerateMissingInputs(t *testing.T) {
	cases := []struct {
		name string
		inv  invocation
		want string
	}{
		{"staging", invocation{name: "pkg", version: "1.0"}, "--staging"},
		{"name", invocation{stagingRoot: "x", version: "1.0"}, "--name"},
		{"version", invocation{stagingRoot: "x", name: "pkg"}, "--artifact-version"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := generate(context.Background(), config.Default(), tc.inv, testLogger())
			if err == nil {
				t.Fatal("generate succeeded")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not name %s", err, tc.want)
			}
		})
	}
}

func TestLoadDependencies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.yaml")
	content := `
default:
  - req >= 1.0
extra:
  - req >= 1.0, < 2.0
  - other[tls]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	groups, err := loadDependencies(path)
	if err != nil {
		t.Fatalf("loadDependencies failed: %v", err)
	}
	want := map[string][]string{
		"default": {"req >= 1.0"},
		"extra":   {"req >= 1.0, < 2.0", "other[tls]"},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("loadDependencies = %v, want %v", groups, want)
	}
}

func TestLoadDependenciesEmpty(t *testing.T) {
	groups, err := loadDependencies("")
	if err != nil {
		t.Fatalf("loadDependencies failed: %v", err)
	}
	if groups != nil {
		t.Errorf("loadDependencies(\"\") = %v, want nil", groups)
	}
}

func TestLoadDependenciesErrors(t *testing.T) {
	if _, err := loadDependencies(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}

	malformed := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(malformed, []byte("default: {not: [a, list"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadDependencies(malformed); err == nil {
		t.Error("malformed file accepted")
	}
}
