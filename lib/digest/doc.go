// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes algorithm-tagged content digests for
// manifest file entries.
//
// A digest is a string of the form "<algorithm>:<hex>", for example
// "sha256:9f86d08…". The algorithm prefix makes entries
// self-describing, so a verifier never has to guess which hash to
// recompute. SHA-256 is the default (the interoperable choice for
// supply-chain tooling); BLAKE3 is available where both producer and
// verifier agree on it.
//
// Hashing streams file content in bounded chunks, so memory use is
// independent of file size, and depends only on file bytes — never on
// metadata like mtime or permissions. Two runs over byte-identical
// content always produce the same digest.
//
// The optional Cache persists digests keyed by path, size, and mtime
// so unchanged files are not re-hashed across builds. The cache is an
// acceleration only: a miss or a stale entry just means the file is
// hashed again. It lives outside the staging tree and never affects
// manifest content.
package digest
