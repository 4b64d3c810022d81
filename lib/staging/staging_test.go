// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package staging

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func populate(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEnumerateSortedRelativePaths(t *testing.T) {
	root := t.TempDir()
	populate(t, root, "pkg/mod.py", "pkg/__init__.py", "README")

	got, err := Enumerate(root)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	want := []string{"README", "pkg/__init__.py", "pkg/mod.py"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Enumerate = %v, want %v", got, want)
	}
}

func TestEnumerateExcludes(t *testing.T) {
	root := t.TempDir()
	populate(t, root, "lib/a.so", "ADG.json", "RECORD")

	got, err := Enumerate(root, "ADG.json", "RECORD")
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	want := []string{"lib/a.so"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Enumerate = %v, want %v", got, want)
	}
}

func TestEnumerateExcludeIsExactPath(t *testing.T) {
	// Exclusion is by root-relative path: a nested file with the
	// same basename as the manifest still ships.
	root := t.TempDir()
	populate(t, root, "data/ADG.json", "ADG.json")

	got, err := Enumerate(root, "ADG.json")
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	want := []string{"data/ADG.json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Enumerate = %v, want %v", got, want)
	}
}

func TestEnumerateEmptyDirectory(t *testing.T) {
	got, err := Enumerate(t.TempDir())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Enumerate = %v, want empty", got)
	}
}

func TestEnumerateMissingRoot(t *testing.T) {
	if _, err := Enumerate(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestEnumerateDeterministic(t *testing.T) {
	root := t.TempDir()
	populate(t, root, "z/last", "a/first", "m/middle", "a/second")

	first, err := Enumerate(root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Enumerate(root)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated enumerations differ: %v vs %v", first, second)
	}
}
