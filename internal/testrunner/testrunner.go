// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testrunner runs tast tests, gtests and host commands against a
// ChromeOS device or VM by invoking cros_run_test.
package testrunner

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/command"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/crosrun"
	"go.chromium.org/chromeos/testrunner/internal/logging"
	"go.chromium.org/chromeos/testrunner/internal/resultsink"
	"go.chromium.org/chromeos/testrunner/internal/runner"
)

// Deps holds what a run needs from the outside world.
type Deps struct {
	Runner runner.Runner
	// Environ is the environment the harness environment is derived from.
	Environ        []string
	Stdout, Stderr io.Writer
	// Sink receives test results. It may be nil.
	Sink *resultsink.Client
	// LookupHost resolves a hostname, as net.Resolver.LookupHost does.
	LookupHost func(ctx context.Context, host string) ([]string, error)
}

// magicVMCacheMarker is written into the magic VM cache dir so that bots
// never see it empty.
const magicVMCacheMarker = "swarming.txt"

// prepare checks the target and marks the VM cache before a run.
func prepare(ctx context.Context, cfg *config.Common, target config.Target, d *Deps) error {
	if target.Lab() {
		logging.Warningf(ctx, "No target given; assuming a lab device at %s", config.LabDUTHostname)
		if _, err := d.LookupHost(ctx, config.LabDUTHostname); err != nil {
			return command.NewStatusErrorf(command.StatusFailure,
				"Cannot resolve %s; pass -use-vm, -device or -fetch-cros-hostname outside the lab: %v",
				config.LabDUTHostname, err)
		}
	}
	if cfg.MagicVMCache != "" {
		dir := cfg.Paths.Abs(cfg.MagicVMCache)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			path := filepath.Join(dir, magicVMCacheMarker)
			if err := os.WriteFile(path, []byte("VM cache populated by a swarming task\n"), 0644); err != nil {
				return errors.Wrapf(err, "failed to write %s", path)
			}
			logging.Debugf(ctx, "Wrote %s", path)
		}
	}
	return nil
}

// run invokes the harness with args and returns its exit code. A run
// interrupted through ctx is an error so that callers skip result handling.
func run(ctx context.Context, cfg *config.Common, args []string, d *Deps) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, command.NewStatusErrorf(command.StatusFailure, "Not running the test harness: %v", err)
	}
	logging.Infof(ctx, "Running %s", args[0])
	code, err := d.Runner.Run(ctx, &runner.Cmd{
		Args:   args,
		Env:    crosrun.Env(d.Environ, cfg),
		Dir:    cfg.Paths.SrcRoot,
		Stdout: d.Stdout,
		Stderr: d.Stderr,
	})
	if err != nil {
		return 0, command.WithStatus(command.StatusFailure, errors.Wrap(err, "failed to run the test harness"))
	}
	if err := ctx.Err(); err != nil {
		return 0, command.NewStatusErrorf(command.StatusFailure, "Test harness interrupted (status %d): %v", code, err)
	}
	logging.Debugf(ctx, "Harness exited with status %d", code)
	return code, nil
}
