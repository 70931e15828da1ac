// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/testrunner"
)

// tastCmd implements subcommands.Command to run tast tests.
type tastCmd struct {
	env *runEnv
	cfg *config.Tast
}

var _ = subcommands.Command(&tastCmd{})

func newTastCmd(e *runEnv) *tastCmd {
	return &tastCmd{env: e, cfg: config.NewTast(e.paths, e.getenv)}
}

func (*tastCmd) Name() string     { return "tast" }
func (*tastCmd) Synopsis() string { return "run tast tests on a device or VM" }
func (*tastCmd) Usage() string {
	return `Usage: tast [flag]... [-- harness arg...]

Description:
    Runs tast tests selected by -attr-expr, -test or -gtest_filter through
    cros_run_test, then reports the results in -logs-dir to ResultSink when
    LUCI_CONTEXT provides one. Exits with 1 if any test failed, otherwise
    with the harness's status. Flags not listed below are passed to
    cros_run_test.

Flag:
`
}

func (c *tastCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
}

func (c *tastCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.cfg.Args = f.Args()
	return c.env.execute(ctx, &c.cfg.Common, c.cfg.Validate, func(ctx context.Context, d *testrunner.Deps) (int, error) {
		return testrunner.RunTast(ctx, c.cfg, d)
	})
}
