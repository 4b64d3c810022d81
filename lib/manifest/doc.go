// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest builds and writes ADG manifest documents: the
// content-addressed record of a build artifact's files and
// dependencies, embedded into the artifact before its file-integrity
// record is finalized.
//
// The package has three layers:
//
//   - Document: the manifest aggregate and its pure constructor. New
//     is referentially transparent — same inputs, same document —
//     which is what makes the overall build reproducible.
//
//   - Write: canonical JSON serialization (fixed key order, two-space
//     indent, UTF-8, trailing newline) with atomic placement into the
//     staging area via temp file + rename. A partial or corrupt
//     manifest is never observable at the output path.
//
//   - Generator: the per-build pipeline. One invocation moves through
//     enumerating → hashing → normalizing → building → writing →
//     signaling; any failure is terminal for the invocation and
//     leaves the staging area untouched. Hashing is the only parallel
//     stage — per-file digests run on a bounded worker pool, with
//     results keyed by enumeration index so completion order never
//     leaks into output order.
//
// The generator ends by signaling a Notifier that the manifest exists
// at its final path. The external integrity-record step uses that
// handoff to extend its coverage before the artifact is archived;
// this package does not implement the record itself.
package manifest
