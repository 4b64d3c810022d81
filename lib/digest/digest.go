// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm names a supported digest algorithm. The value is the
// prefix used in the tagged digest string.
type Algorithm string

const (
	// SHA256 is the default algorithm: 256-bit SHA-2.
	SHA256 Algorithm = "sha256"

	// BLAKE3 is a faster 256-bit alternative for deployments where
	// every consumer of the manifest supports it.
	BLAKE3 Algorithm = "blake3"
)

// Validate checks that the algorithm is one of the supported values.
func (a Algorithm) Validate() error {
	switch a {
	case SHA256, BLAKE3:
		return nil
	default:
		return fmt.Errorf("unsupported digest algorithm %q: must be %q or %q", a, SHA256, BLAKE3)
	}
}

// newHash returns a fresh hash.Hash for the algorithm. Callers must
// have validated the algorithm first.
func (a Algorithm) newHash() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case BLAKE3:
		return blake3.New()
	default:
		panic("digest: unvalidated algorithm " + string(a))
	}
}

// Digest is an algorithm-tagged digest string: "<algorithm>:<hex>".
type Digest string

// Algorithm returns the algorithm prefix of the digest.
func (d Digest) Algorithm() Algorithm {
	prefix, _, _ := strings.Cut(string(d), ":")
	return Algorithm(prefix)
}

// Parse validates a tagged digest string and returns its parts. The
// hex portion must be lowercase and decode to 32 bytes (both
// supported algorithms produce 256-bit digests).
func Parse(s string) (Algorithm, string, error) {
	prefix, hexPart, found := strings.Cut(s, ":")
	if !found {
		return "", "", fmt.Errorf("digest %q has no algorithm prefix", s)
	}
	algorithm := Algorithm(prefix)
	if err := algorithm.Validate(); err != nil {
		return "", "", fmt.Errorf("digest %q: %w", s, err)
	}
	if hexPart != strings.ToLower(hexPart) {
		return "", "", fmt.Errorf("digest %q: hex portion must be lowercase", s)
	}
	decoded, err := hex.DecodeString(hexPart)
	if err != nil {
		return "", "", fmt.Errorf("digest %q: %w", s, err)
	}
	if len(decoded) != 32 {
		return "", "", fmt.Errorf("digest %q is %d bytes, want 32", s, len(decoded))
	}
	return algorithm, hexPart, nil
}

// Bytes computes the tagged digest of in-memory data. Used by tests
// and small-content callers; File is the streaming path.
func Bytes(data []byte, algorithm Algorithm) (Digest, error) {
	if err := algorithm.Validate(); err != nil {
		return "", err
	}
	hasher := algorithm.newHash()
	hasher.Write(data)
	return format(algorithm, hasher), nil
}

// File computes the tagged digest of the file at path, streaming
// content through the hash in bounded chunks so memory use is
// independent of file size. A missing or unreadable file is an error:
// a manifest with a silently absent entry is worse than no manifest.
func File(path string, algorithm Algorithm) (Digest, error) {
	if err := algorithm.Validate(); err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := algorithm.newHash()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return format(algorithm, hasher), nil
}

// format renders the tagged digest string from a finalized hash.
func format(algorithm Algorithm, hasher hash.Hash) Digest {
	return Digest(string(algorithm) + ":" + hex.EncodeToString(hasher.Sum(nil)))
}
