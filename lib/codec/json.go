// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes v as canonical manifest JSON: two-space
// indentation, no HTML escaping, and a trailing newline. Key order
// for struct types is the Go field declaration order, which is what
// makes repeated encodings of the same document byte-identical.
//
// Map types are deliberately avoided in manifest documents (Go
// randomizes map iteration; encoding/json sorts map keys, but struct
// types make the order an explicit part of the contract). This
// function works for maps too, relying on encoding/json's sorted-key
// behavior, so cache files and test fixtures can use it as well.
func MarshalJSON(v any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding canonical JSON: %w", err)
	}
	return buffer.Bytes(), nil
}

// UnmarshalJSON decodes JSON data into v. Provided for symmetry and
// for tests that verify written manifests; the manifest subsystem
// itself never re-reads what it wrote.
func UnmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
