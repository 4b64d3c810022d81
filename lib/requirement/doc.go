// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package requirement parses, canonicalizes, and merges dependency
// requirement declarations for manifest generation.
//
// A raw requirement is a string of the form
//
//	name[extra1,extra2] >= 1.0, < 2.0
//
// where the extras list and the constraint list are both optional.
// Canonical form lowercases the name, sorts and dedupes extras,
// sorts constraints, and removes all interior whitespace:
//
//	name[extra1,extra2]>=1.0,<2.0
//
// The declared version text is preserved (">=1.0" does not become
// ">=1.0.0"), so canonicalization is a fixed point: normalizing
// already-normalized input is a no-op.
//
// Declarations arrive grouped by feature set. Normalize flattens the
// groups into one deduplicated, lexicographically ordered list,
// merging entries that share a name and extras. When two feature
// sets declare constraints for the same dependency that cannot be
// satisfied simultaneously, Normalize reports a conflict error naming
// the dependency and the feature sets involved — never silently
// picking one. Conflicting declarations are a data-integrity defect
// in the upstream metadata, not something to paper over.
//
// Satisfiability treats the version space as dense: between any two
// distinct versions another version is assumed to exist. Under that
// model a conflict is an empty intersection of bounds, an equality
// pinned outside the feasible region, or an exclusion that removes
// the only feasible point.
package requirement
