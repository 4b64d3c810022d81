// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/adg/lib/digest"
	"github.com/bureau-foundation/adg/lib/manifest"
)

// EnvVar names the environment variable that points at the config
// file when no --config flag is given.
const EnvVar = "ADG_CONFIG"

// Config controls the manifest subsystem. All fields have working
// defaults; see Default.
type Config struct {
	// Enabled toggles the whole subsystem. When false, manifest
	// generation performs no action and the build proceeds
	// unchanged — the only externally observable switch.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Output is the manifest filename, relative to the staging root.
	Output string `yaml:"output" json:"output"`

	// IntegrityRecord is the staging-relative path of the artifact's
	// own file-integrity record, excluded from enumeration.
	IntegrityRecord string `yaml:"integrity_record" json:"integrity_record"`

	// Algorithm is the file digest algorithm ("sha256" or "blake3").
	Algorithm string `yaml:"algorithm" json:"algorithm"`

	// Workers bounds the parallel hashing pool; 0 means the number
	// of available CPUs.
	Workers int `yaml:"workers" json:"workers"`

	// Environment is free text recorded in manifest build metadata.
	// Empty means the generator's default description.
	Environment string `yaml:"environment" json:"environment"`

	// CacheDir, if set, enables the persistent digest cache in that
	// directory (outside the staging tree).
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// Default returns the working zero configuration: enabled, standard
// names, SHA-256, automatic worker count, no cache.
func Default() Config {
	return Config{
		Enabled:         true,
		Output:          manifest.DefaultOutput,
		IntegrityRecord: manifest.DefaultIntegrityRecord,
		Algorithm:       string(digest.SHA256),
	}
}

// Load reads the config file at path. An empty path falls back to
// the ADG_CONFIG environment variable; if that is also unset, the
// defaults are returned. A named file that does not exist, does not
// parse, or does not validate is an error — a build must never run
// with half-applied configuration.
func Load(path string) (Config, error) {
	configuration := Default()

	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return configuration, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configuration); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &configuration); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension (want .yaml, .yml, .json, or .jsonc)", path)
	}

	if err := configuration.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return configuration, nil
}

// Validate checks field-level invariants. Called by Load; exported
// for callers that assemble a Config programmatically.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output filename is empty")
	}
	if path.IsAbs(c.Output) || strings.Contains(c.Output, "..") {
		return fmt.Errorf("output %q must be a relative path inside the staging area", c.Output)
	}
	if err := digest.Algorithm(c.Algorithm).Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers is negative: %d", c.Workers)
	}
	return nil
}
