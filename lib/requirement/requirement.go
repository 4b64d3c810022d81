// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package requirement

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// namePattern matches a dependency or extra name: leading
// alphanumeric, then alphanumerics, dots, hyphens, underscores.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// operators in match order: two-character operators must be tried
// before their one-character prefixes.
var operators = []string{">=", "<=", "==", "!=", ">", "<"}

// Constraint is a single version constraint: an operator and the
// declared version text. Version is the parsed form used for
// comparison; Text preserves the author's spelling so that
// canonicalization never reinterprets version numbers.
type Constraint struct {
	Op      string
	Text    string
	Version *goversion.Version
}

// String returns the canonical constraint form: operator immediately
// followed by the declared version text.
func (c Constraint) String() string {
	return c.Op + c.Text
}

// Requirement is a parsed dependency declaration: a name, optional
// extras, and optional version constraints. Extras and constraints
// are held in canonical order.
type Requirement struct {
	Name        string
	Extras      []string
	Constraints []Constraint
}

// Parse parses a raw requirement string. The name is lowercased,
// extras are sorted and deduplicated, and constraints are sorted into
// canonical order. Malformed input is rejected with an error that
// quotes the offending text.
func Parse(raw string) (*Requirement, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty requirement")
	}

	// Split off the constraint list: everything from the first
	// operator character onward.
	head := trimmed
	constraintText := ""
	if i := strings.IndexAny(trimmed, "><=!"); i >= 0 {
		head = strings.TrimSpace(trimmed[:i])
		constraintText = trimmed[i:]
	}

	name, extras, err := parseHead(head)
	if err != nil {
		return nil, fmt.Errorf("requirement %q: %w", raw, err)
	}

	var constraints []Constraint
	if constraintText != "" {
		constraints, err = parseConstraints(constraintText)
		if err != nil {
			return nil, fmt.Errorf("requirement %q: %w", raw, err)
		}
	}

	requirement := &Requirement{
		Name:        strings.ToLower(name),
		Extras:      canonicalExtras(extras),
		Constraints: constraints,
	}
	sortConstraints(requirement.Constraints)
	return requirement, nil
}

// String returns the canonical requirement form.
func (r *Requirement) String() string {
	var builder strings.Builder
	builder.WriteString(r.Name)
	if len(r.Extras) > 0 {
		builder.WriteString("[")
		builder.WriteString(strings.Join(r.Extras, ","))
		builder.WriteString("]")
	}
	for i, constraint := range r.Constraints {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString(constraint.String())
	}
	return builder.String()
}

// key identifies the merge bucket for a requirement: name plus
// extras. The same name with different extras stays distinct — the
// activated feature changes what the dependency provides.
func (r *Requirement) key() string {
	if len(r.Extras) == 0 {
		return r.Name
	}
	return r.Name + "[" + strings.Join(r.Extras, ",") + "]"
}

// parseHead splits "name[extra1,extra2]" into name and extras.
func parseHead(head string) (string, []string, error) {
	name := head
	var extras []string

	if open := strings.Index(head, "["); open >= 0 {
		if !strings.HasSuffix(head, "]") {
			return "", nil, fmt.Errorf("unterminated extras list")
		}
		name = strings.TrimSpace(head[:open])
		inner := head[open+1 : len(head)-1]
		for _, extra := range strings.Split(inner, ",") {
			extra = strings.TrimSpace(extra)
			if !namePattern.MatchString(extra) {
				return "", nil, fmt.Errorf("invalid extra %q", extra)
			}
			extras = append(extras, strings.ToLower(extra))
		}
		if len(extras) == 0 {
			return "", nil, fmt.Errorf("empty extras list")
		}
	}

	if !namePattern.MatchString(name) {
		return "", nil, fmt.Errorf("invalid dependency name %q", name)
	}
	return name, extras, nil
}

// parseConstraints parses a comma-separated constraint list.
func parseConstraints(text string) ([]Constraint, error) {
	var constraints []Constraint
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty constraint in list %q", text)
		}

		op := ""
		for _, candidate := range operators {
			if strings.HasPrefix(part, candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			return nil, fmt.Errorf("constraint %q has no operator", part)
		}

		versionText := strings.TrimSpace(part[len(op):])
		if versionText == "" {
			return nil, fmt.Errorf("constraint %q has no version", part)
		}
		parsed, err := goversion.NewVersion(versionText)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: invalid version: %w", part, err)
		}
		constraints = append(constraints, Constraint{Op: op, Text: versionText, Version: parsed})
	}
	return dedupeConstraints(constraints), nil
}

// canonicalExtras sorts and deduplicates an extras list.
func canonicalExtras(extras []string) []string {
	if len(extras) == 0 {
		return nil
	}
	sort.Strings(extras)
	return slices.Compact(extras)
}

// sortConstraints orders constraints by version, then operator, then
// declared text. Operator and text tiebreaks only matter for equal
// versions spelled differently ("1.0" vs "1.0.0"); any fixed order
// works, it just has to be the same order every run.
func sortConstraints(constraints []Constraint) {
	sort.Slice(constraints, func(i, j int) bool {
		left, right := constraints[i], constraints[j]
		if cmp := left.Version.Compare(right.Version); cmp != 0 {
			return cmp < 0
		}
		if left.Op != right.Op {
			return left.Op < right.Op
		}
		return left.Text < right.Text
	})
}

// dedupeConstraints removes exact duplicates (same operator and same
// declared text). Must be called on sorted or unsorted input; it
// sorts first.
func dedupeConstraints(constraints []Constraint) []Constraint {
	sortConstraints(constraints)
	deduped := constraints[:0]
	for _, constraint := range constraints {
		if len(deduped) > 0 {
			last := deduped[len(deduped)-1]
			if constraint.Op == last.Op && constraint.Text == last.Text {
				continue
			}
		}
		deduped = append(deduped, constraint)
	}
	return deduped
}
