// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestMarshalJSONDeterministic(t *testing.T) {
	value := sample{Name: "pkg", Count: 3, Tags: []string{"a", "b"}}

	first, err := MarshalJSON(value)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	second, err := MarshalJSON(value)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("repeated encodings differ:\n%s\n%s", first, second)
	}
}

func TestMarshalJSONNoHTMLEscaping(t *testing.T) {
	data, err := MarshalJSON(sample{Name: "a<b>&c"})
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if strings.Contains(string(data), `<`) {
		t.Errorf("output contains HTML-escaped characters: %s", data)
	}
	if !strings.Contains(string(data), "a<b>&c") {
		t.Errorf("output does not contain literal value: %s", data)
	}
}

func TestMarshalJSONTrailingNewline(t *testing.T) {
	data, err := MarshalJSON(sample{Name: "x"})
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("output does not end with a newline")
	}
	if bytes.HasSuffix(data, []byte("\n\n")) {
		t.Error("output ends with more than one newline")
	}
}

func TestMarshalJSONFieldOrder(t *testing.T) {
	data, err := MarshalJSON(sample{Name: "x", Count: 1})
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	nameIndex := bytes.Index(data, []byte(`"name"`))
	countIndex := bytes.Index(data, []byte(`"count"`))
	if nameIndex < 0 || countIndex < 0 || nameIndex > countIndex {
		t.Errorf("fields not in declaration order: %s", data)
	}
}

func TestCBORRoundtrip(t *testing.T) {
	original := sample{Name: "pkg", Count: 7, Tags: []string{"z"}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Name != original.Name || decoded.Count != original.Count {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestCBORDeterministicMaps(t *testing.T) {
	value := map[string]int{"b": 2, "a": 1, "c": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("map encodings differ between runs")
	}
}
