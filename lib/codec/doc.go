// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides ADG's standard serialization configuration.
//
// ADG uses two serialization formats with a clear boundary:
//
//   - JSON for the manifest document itself. The manifest is an
//     external contract consumed by integrity-record tooling and
//     supply-chain scanners, and its bytes feed the artifact's own
//     file-integrity record — so encoding must be canonical: fixed
//     key order (Go struct field order), two-space indentation, no
//     HTML escaping, UTF-8, a single trailing newline, and no
//     locale-dependent formatting of any value.
//   - CBOR for internal state: the on-disk digest cache. The encoder
//     uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
//     keys, smallest integer encoding, no indefinite-length items.
//     Same logical data always produces identical bytes.
//
// This package exists so every ADG package encodes identically
// without duplicating configuration. Struct types carry `json` tags
// only — fxamacker/cbor reads json tags as fallback, so the same
// types work with both encoders.
package codec
