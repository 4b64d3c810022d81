// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/adg/lib/clock"
	"github.com/bureau-foundation/adg/lib/digest"
	"github.com/bureau-foundation/adg/lib/requirement"
	"github.com/bureau-foundation/adg/lib/staging"
)

// Defaults for generator options left zero.
const (
	// DefaultOutput is the manifest filename inside the staging area.
	DefaultOutput = "ADG.json"

	// DefaultIntegrityRecord is the artifact's own file-integrity
	// record, excluded from enumeration because it is rewritten after
	// this subsystem runs.
	DefaultIntegrityRecord = "RECORD"
)

// Stage identifies where a generator invocation is in its pipeline.
// Stages are strictly sequential; any failure moves directly to
// StageFailed, which is terminal. There is no retry within an
// invocation — the enclosing build orchestrator decides whether to
// retry the whole build.
type Stage int

const (
	StageIdle Stage = iota
	StageEnumerating
	StageHashing
	StageNormalizing
	StageBuilding
	StageWriting
	StageSignaling
	StageDone
	StageFailed
)

// String returns the lowercase stage name used in logs and errors.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageEnumerating:
		return "enumerating"
	case StageHashing:
		return "hashing"
	case StageNormalizing:
		return "normalizing"
	case StageBuilding:
		return "building"
	case StageWriting:
		return "writing"
	case StageSignaling:
		return "signaling"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Notifier receives the downstream handoff after a successful write:
// "manifest written at path". The external file-integrity-record step
// consumes this to add the manifest to its own coverage before
// finalizing. A notifier error fails the invocation — the build must
// not proceed with an integrity record that misses the manifest. The
// written manifest itself is complete and is left in place.
type Notifier interface {
	ManifestWritten(ctx context.Context, path string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, path string) error

// ManifestWritten calls f.
func (f NotifierFunc) ManifestWritten(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Options configures a Generator. StagingRoot is required; zero
// values elsewhere take documented defaults.
type Options struct {
	// StagingRoot is the frozen staging directory. Read by
	// enumeration and hashing; written exactly once, by the final
	// atomic manifest rename. Nothing else may write to it while the
	// generator runs.
	StagingRoot string

	// Name and Version identify the build artifact. Validated at the
	// building stage.
	Name    string
	Version string

	// Dependencies maps feature-set names to raw requirement
	// declarations. Use requirement.DefaultGroup for unconditional
	// dependencies.
	Dependencies map[string][]string

	// Output is the manifest filename, relative to StagingRoot.
	// Default DefaultOutput.
	Output string

	// IntegrityRecord is the path (relative to StagingRoot) of the
	// artifact's pre-existing file-integrity record, excluded from
	// enumeration. Default DefaultIntegrityRecord.
	IntegrityRecord string

	// Algorithm selects the file digest algorithm. Default
	// digest.SHA256.
	Algorithm digest.Algorithm

	// Workers bounds the parallel hashing pool. Default (0) is
	// GOMAXPROCS.
	Workers int

	// Environment is free text recorded in build metadata. Empty
	// means the field is omitted from the manifest.
	Environment string

	// Clock supplies the build timestamp. Default clock.Real().
	// Tests inject a fake to make output byte-identical across runs.
	Clock clock.Clock

	// Cache, if non-nil, is consulted before hashing each file and
	// updated with fresh digests. Purely an acceleration; a cache
	// save failure is logged, not fatal.
	Cache *digest.Cache

	// Notifier receives the post-write handoff. Nil means no
	// downstream signal is sent.
	Notifier Notifier

	// Logger receives progress logging. Nil discards.
	Logger *slog.Logger
}

// Result is a successful invocation's output.
type Result struct {
	// Path is the absolute (or staging-root-joined) manifest path.
	Path string

	// Document is the manifest that was written.
	Document *Document
}

// Generator runs the manifest pipeline exactly once. Create one per
// build invocation with NewGenerator; Run may be called once.
type Generator struct {
	options Options
	logger  *slog.Logger
	stage   Stage
}

// NewGenerator validates options, applies defaults, and returns a
// generator in StageIdle.
func NewGenerator(options Options) (*Generator, error) {
	if options.StagingRoot == "" {
		return nil, fmt.Errorf("staging root is required")
	}
	if options.Output == "" {
		options.Output = DefaultOutput
	}
	if path.IsAbs(options.Output) || strings.Contains(options.Output, "..") {
		return nil, fmt.Errorf("output %q must be a relative path inside the staging area", options.Output)
	}
	if options.IntegrityRecord == "" {
		options.IntegrityRecord = DefaultIntegrityRecord
	}
	if options.Algorithm == "" {
		options.Algorithm = digest.SHA256
	}
	if err := options.Algorithm.Validate(); err != nil {
		return nil, err
	}
	if options.Workers < 0 {
		return nil, fmt.Errorf("workers is negative: %d", options.Workers)
	}
	if options.Workers == 0 {
		options.Workers = runtime.GOMAXPROCS(0)
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{options: options, logger: logger, stage: StageIdle}, nil
}

// Stage returns the generator's current pipeline stage.
func (g *Generator) Stage() Stage {
	return g.stage
}

// Run executes the pipeline: enumerate, hash (parallel), normalize
// dependencies, build the document, write it atomically, signal the
// notifier. The first error is terminal and is returned wrapped with
// the stage that produced it; on failure nothing has been written to
// the staging area (the atomic writer guarantees no partial file).
//
// Cancelling ctx aborts between stages and inside the hashing pool;
// partially computed in-memory state is simply discarded.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if g.stage != StageIdle {
		return nil, fmt.Errorf("generator already ran (stage %s)", g.stage)
	}

	paths, err := g.enumerate(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := g.hash(ctx, paths)
	if err != nil {
		return nil, err
	}
	dependencies, err := g.normalize(ctx)
	if err != nil {
		return nil, err
	}
	document, err := g.build(ctx, entries, dependencies)
	if err != nil {
		return nil, err
	}
	outputPath, err := g.write(ctx, document)
	if err != nil {
		return nil, err
	}
	if err := g.signal(ctx, outputPath); err != nil {
		return nil, err
	}

	g.stage = StageDone
	g.logger.Info("manifest generated",
		"path", outputPath,
		"files", len(document.Files),
		"dependencies", len(document.Dependencies))
	return &Result{Path: outputPath, Document: document}, nil
}

// advance moves to the next stage, first checking for cancellation.
func (g *Generator) advance(ctx context.Context, stage Stage) error {
	if err := ctx.Err(); err != nil {
		g.stage = StageFailed
		return fmt.Errorf("%s: %w", stage, err)
	}
	g.stage = stage
	g.logger.Debug("stage started", "stage", stage.String())
	return nil
}

// fail records the terminal failure and wraps the error with the
// stage that produced it.
func (g *Generator) fail(err error) error {
	stage := g.stage
	g.stage = StageFailed
	return fmt.Errorf("%s: %w", stage, err)
}

func (g *Generator) enumerate(ctx context.Context) ([]string, error) {
	if err := g.advance(ctx, StageEnumerating); err != nil {
		return nil, err
	}
	paths, err := staging.Enumerate(g.options.StagingRoot, g.options.Output, g.options.IntegrityRecord)
	if err != nil {
		return nil, g.fail(err)
	}
	return paths, nil
}

// hash digests every enumerated file on a bounded worker pool.
// Results land in a slice indexed by enumeration position, so output
// order is the deterministic sorted path order no matter which worker
// finishes first.
func (g *Generator) hash(ctx context.Context, paths []string) ([]FileEntry, error) {
	if err := g.advance(ctx, StageHashing); err != nil {
		return nil, err
	}

	entries := make([]FileEntry, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.options.Workers)

	for index, relativePath := range paths {
		index, relativePath := index, relativePath
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			fullPath := filepath.Join(g.options.StagingRoot, filepath.FromSlash(relativePath))
			fileDigest, err := g.digestFile(relativePath, fullPath)
			if err != nil {
				return err
			}
			entries[index] = FileEntry{Path: relativePath, Hash: fileDigest}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, g.fail(err)
	}

	if g.options.Cache != nil {
		if err := g.options.Cache.Save(); err != nil {
			g.logger.Warn("digest cache save failed", "error", err)
		}
	}
	return entries, nil
}

// digestFile computes one file's digest, consulting the cache when
// one is configured.
func (g *Generator) digestFile(relativePath, fullPath string) (digest.Digest, error) {
	cache := g.options.Cache
	if cache == nil {
		return digest.File(fullPath, g.options.Algorithm)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", fullPath, err)
	}
	if cached, ok := cache.Lookup(relativePath, info, g.options.Algorithm); ok {
		return cached, nil
	}

	fileDigest, err := digest.File(fullPath, g.options.Algorithm)
	if err != nil {
		return "", err
	}
	cache.Store(relativePath, info, fileDigest)
	return fileDigest, nil
}

func (g *Generator) normalize(ctx context.Context) ([]string, error) {
	if err := g.advance(ctx, StageNormalizing); err != nil {
		return nil, err
	}
	dependencies, err := requirement.Normalize(g.options.Dependencies)
	if err != nil {
		return nil, g.fail(err)
	}
	return dependencies, nil
}

func (g *Generator) build(ctx context.Context, entries []FileEntry, dependencies []string) (*Document, error) {
	if err := g.advance(ctx, StageBuilding); err != nil {
		return nil, err
	}
	build := BuildInfo{
		Timestamp:   Timestamp(g.options.Clock.Now()),
		Environment: g.options.Environment,
	}
	document, err := New(g.options.Name, g.options.Version, build, entries, dependencies)
	if err != nil {
		return nil, g.fail(err)
	}
	return document, nil
}

func (g *Generator) write(ctx context.Context, document *Document) (string, error) {
	if err := g.advance(ctx, StageWriting); err != nil {
		return "", err
	}
	outputPath := filepath.Join(g.options.StagingRoot, filepath.FromSlash(g.options.Output))
	if err := Write(document, outputPath); err != nil {
		return "", g.fail(err)
	}
	return outputPath, nil
}

func (g *Generator) signal(ctx context.Context, outputPath string) error {
	if err := g.advance(ctx, StageSignaling); err != nil {
		return err
	}
	if g.options.Notifier == nil {
		return nil
	}
	if err := g.options.Notifier.ManifestWritten(ctx, outputPath); err != nil {
		return g.fail(fmt.Errorf("notifying integrity record step: %w", err))
	}
	return nil
}
