// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requirement

import (
	"fmt"
	"sort"
)

// DefaultGroup is the conventional name of the unconditional feature
// set. Normalize does not treat it specially — it participates in the
// same merge as every named set — but callers use this constant when
// building the group mapping.
const DefaultGroup = "default"

// ConflictError reports two constraints on the same dependency that
// cannot be satisfied simultaneously. This is a data-integrity defect
// in the upstream dependency declarations; the normalizer never
// resolves it silently.
type ConflictError struct {
	// Name is the dependency (merge key, including extras).
	Name string

	// First and Second are the irreconcilable constraints, with the
	// feature sets that declared them.
	First, Second SourcedConstraint
}

// SourcedConstraint is a constraint together with the feature set
// that declared it.
type SourcedConstraint struct {
	Constraint
	Group string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"dependency %q: constraint %q (feature set %q) and constraint %q (feature set %q) cannot be satisfied simultaneously",
		e.Name, e.First.String(), e.First.Group, e.Second.String(), e.Second.Group)
}

// mergedRequirement accumulates one dependency's constraints across
// feature sets, with provenance for conflict reporting.
type mergedRequirement struct {
	requirement *Requirement
	sources     []SourcedConstraint
}

// Normalize flattens a feature-set→requirements mapping into a single
// deduplicated, lexicographically ordered list of canonical
// requirement strings.
//
// Entries sharing a name and extras are merged: their constraint
// lists are united and deduplicated. If the united constraints are
// unsatisfiable, Normalize returns a *ConflictError. A malformed
// requirement string fails with an error naming the feature set and
// quoting the entry. Feature sets are processed in sorted name order,
// so which error surfaces first is deterministic.
//
// Normalize is a fixed point: feeding its output back in (under any
// single group) reproduces it exactly.
func Normalize(groups map[string][]string) ([]string, error) {
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	merged := make(map[string]*mergedRequirement)
	for _, groupName := range groupNames {
		for _, raw := range groups[groupName] {
			parsed, err := Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("feature set %q: %w", groupName, err)
			}

			key := parsed.key()
			bucket, ok := merged[key]
			if !ok {
				bucket = &mergedRequirement{requirement: parsed}
				merged[key] = bucket
				for _, constraint := range parsed.Constraints {
					bucket.sources = append(bucket.sources, SourcedConstraint{Constraint: constraint, Group: groupName})
				}
				continue
			}

			for _, constraint := range parsed.Constraints {
				if containsConstraint(bucket.requirement.Constraints, constraint) {
					continue
				}
				bucket.requirement.Constraints = append(bucket.requirement.Constraints, constraint)
				bucket.sources = append(bucket.sources, SourcedConstraint{Constraint: constraint, Group: groupName})
			}
			sortConstraints(bucket.requirement.Constraints)
		}
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(keys))
	for _, key := range keys {
		bucket := merged[key]
		if err := checkSatisfiable(key, bucket.sources); err != nil {
			return nil, err
		}
		result = append(result, bucket.requirement.String())
	}
	sort.Strings(result)
	return result, nil
}

// containsConstraint reports whether the list already holds an exact
// duplicate (same operator, same declared text).
func containsConstraint(constraints []Constraint, candidate Constraint) bool {
	for _, constraint := range constraints {
		if constraint.Op == candidate.Op && constraint.Text == candidate.Text {
			return true
		}
	}
	return false
}

// checkSatisfiable verifies that a merged constraint set admits at
// least one version, under the dense-version-space model described in
// the package comment. Returns a *ConflictError naming the two
// irreconcilable constraints, or nil.
func checkSatisfiable(name string, constraints []SourcedConstraint) error {
	var equalities, exclusions []SourcedConstraint
	var lower, upper *SourcedConstraint

	conflict := func(first, second SourcedConstraint) error {
		return &ConflictError{Name: name, First: first, Second: second}
	}

	for _, constraint := range constraints {
		switch constraint.Op {
		case "==":
			equalities = append(equalities, constraint)
		case "!=":
			exclusions = append(exclusions, constraint)
		case ">", ">=":
			if lower == nil || tighterLower(constraint, *lower) {
				bound := constraint
				lower = &bound
			}
		case "<", "<=":
			if upper == nil || tighterUpper(constraint, *upper) {
				bound := constraint
				upper = &bound
			}
		}
	}

	// Two equalities pinning different versions.
	for i := 1; i < len(equalities); i++ {
		if equalities[i].Version.Compare(equalities[0].Version) != 0 {
			return conflict(equalities[0], equalities[i])
		}
	}

	// An equality must sit inside the bounds and avoid exclusions.
	if len(equalities) > 0 {
		pinned := equalities[0]
		if lower != nil {
			cmp := pinned.Version.Compare(lower.Version)
			if cmp < 0 || (cmp == 0 && lower.Op == ">") {
				return conflict(pinned, *lower)
			}
		}
		if upper != nil {
			cmp := pinned.Version.Compare(upper.Version)
			if cmp > 0 || (cmp == 0 && upper.Op == "<") {
				return conflict(pinned, *upper)
			}
		}
		for _, excluded := range exclusions {
			if excluded.Version.Compare(pinned.Version) == 0 {
				return conflict(pinned, excluded)
			}
		}
		return nil
	}

	// Range bounds: empty or single-point intersections.
	if lower != nil && upper != nil {
		cmp := lower.Version.Compare(upper.Version)
		if cmp > 0 {
			return conflict(*lower, *upper)
		}
		if cmp == 0 {
			if lower.Op == ">" || upper.Op == "<" {
				return conflict(*lower, *upper)
			}
			// Single feasible point; an exclusion there empties it.
			for _, excluded := range exclusions {
				if excluded.Version.Compare(lower.Version) == 0 {
					return conflict(excluded, *lower)
				}
			}
		}
	}
	return nil
}

// tighterLower reports whether a is a stricter lower bound than b.
func tighterLower(a, b SourcedConstraint) bool {
	cmp := a.Version.Compare(b.Version)
	if cmp != 0 {
		return cmp > 0
	}
	return a.Op == ">" && b.Op == ">="
}

// tighterUpper reports whether a is a stricter upper bound than b.
func tighterUpper(a, b SourcedConstraint) bool {
	cmp := a.Version.Compare(b.Version)
	if cmp != 0 {
		return cmp < 0
	}
	return a.Op == "<" && b.Op == "<="
}
