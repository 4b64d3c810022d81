// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the ADG manifest
// subsystem.
//
// Configuration is loaded from a single file specified by:
//   - the ADG_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides —
// a property worth more than convenience in a subsystem whose whole
// point is reproducibility.
//
// The file format follows its extension: .yaml/.yml is YAML,
// .json/.jsonc is JSON with comments. Absent keys keep their
// defaults; the zero configuration (no file at all) is valid and
// enables manifest generation with the standard output name.
package config
