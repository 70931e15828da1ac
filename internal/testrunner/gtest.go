// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testrunner

import (
	"context"
	"os"

	"go.uber.org/multierr"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/crosrun"
	"go.chromium.org/chromeos/testrunner/internal/devicescript"
	"go.chromium.org/chromeos/testrunner/internal/logging"
)

// RunGTest pushes and runs a script invoking the gtest binary on the device
// and returns the harness exit code. The script is written to the out dir and
// removed afterwards.
func RunGTest(ctx context.Context, cfg *config.GTest, d *Deps) (code int, retErr error) {
	target := cfg.Target(ctx)
	if err := prepare(ctx, &cfg.Common, target, d); err != nil {
		return 0, err
	}

	script, err := devicescript.New(cfg)
	if err != nil {
		return 0, err
	}
	runtimeFiles, err := devicescript.RuntimeFiles(cfg)
	if err != nil {
		return 0, err
	}

	path, err := devicescript.Write(cfg.OutDir(), script.Content())
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			multierr.AppendInto(&retErr, errors.Wrap(err, "failed to remove device script"))
		}
	}()
	logging.Debugf(ctx, "Device script %s:\n%s", path, script.Content())

	if cfg.SummaryOutput != "" && d.Sink != nil {
		logging.Info(ctx, "Native ResultDB upload is not supported for gtests; the summary file is left for the caller")
	}

	files := append(append([]string(nil), script.Files...), runtimeFiles...)
	return run(ctx, &cfg.Common, crosrun.GTest(cfg, target, path, files), d)
}
