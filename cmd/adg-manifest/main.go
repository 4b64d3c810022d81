// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// adg-manifest generates a content-addressed dependency manifest for
// a staged build artifact and embeds it into the staging directory,
// ready for the artifact's file-integrity record to cover it.
//
// The build orchestrator invokes it after the file set is frozen and
// before the integrity record is finalized:
//
//	adg-manifest --staging dist/stage --name pkg --artifact-version 1.0 \
//	    --dependencies deps.yaml
//
// The dependencies file maps feature-set names to raw requirement
// declarations:
//
//	default:
//	  - req >= 1.0
//	extra:
//	  - req >= 1.0, < 2.0
//
// With enabled: false in the config file the command exits
// successfully without touching the staging directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/adg/lib/config"
	"github.com/bureau-foundation/adg/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		showVersion bool
		verbose     bool
		configPath  string
		inv         invocation
	)
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pflag.StringVar(&configPath, "config", "", "config file (default $"+config.EnvVar+")")
	pflag.StringVar(&inv.stagingRoot, "staging", "", "staging directory with the frozen build outputs (required)")
	pflag.StringVar(&inv.name, "name", "", "artifact name (required)")
	pflag.StringVar(&inv.version, "artifact-version", "", "artifact version (required)")
	pflag.StringVar(&inv.dependenciesPath, "dependencies", "", "YAML file mapping feature sets to requirement lists (optional)")
	pflag.Parse()

	if showVersion {
		fmt.Printf("adg-manifest %s\n", version.Info())
		return nil
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	configuration, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return generate(ctx, configuration, inv, logger)
}
