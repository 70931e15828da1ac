// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"io"
	"time"

	"github.com/google/subcommands"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/command"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/logging"
	"go.chromium.org/chromeos/testrunner/internal/resultsink"
	"go.chromium.org/chromeos/testrunner/internal/runner"
	"go.chromium.org/chromeos/testrunner/internal/testrunner"
)

// runEnv is shared by all subcommands. Tests replace its functions to stub
// out the harness and the network.
type runEnv struct {
	stdout, stderr io.Writer
	getenv         func(string) string
	environ        func() []string
	newRunner      func(timeout time.Duration) runner.Runner
	lookupHost     func(ctx context.Context, host string) ([]string, error)
	sink           func(ctx context.Context) *resultsink.Client

	// Set from global flags.
	logTime bool
	paths   config.Paths
}

// execute validates a parsed config and calls run, converting its outcome to
// an exit status.
func (e *runEnv) execute(ctx context.Context, cfg *config.Common, validate func() error,
	run func(ctx context.Context, d *testrunner.Deps) (int, error)) subcommands.ExitStatus {
	level := logging.LevelInfo
	if cfg.Verbose > 0 {
		level = logging.LevelDebug
	}
	ctx = logging.AttachLogger(ctx, logging.NewSinkLogger(level, e.logTime, logging.NewWriterSink(e.stdout)))

	if err := validate(); err != nil {
		var fe *config.FormatError
		if errors.As(err, &fe) {
			err = command.WithStatus(command.StatusConfigError, err)
		}
		return subcommands.ExitStatus(command.WriteError(e.stderr, err))
	}

	code, err := run(ctx, &testrunner.Deps{
		Runner:     e.newRunner(cfg.Timeout),
		Environ:    e.environ(),
		Stdout:     e.stdout,
		Stderr:     e.stderr,
		Sink:       e.sink(ctx),
		LookupHost: e.lookupHost,
	})
	if err != nil {
		logging.Debugf(ctx, "%+v", err)
		return subcommands.ExitStatus(command.WriteError(e.stderr, err))
	}
	return subcommands.ExitStatus(code)
}
