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

type gtestCmd struct {
	env *runEnv
	cfg *config.GTest
}

var _ = subcommands.Command(&gtestCmd{})

func newGTestCmd(e *runEnv) *gtestCmd {
	return &gtestCmd{env: e, cfg: config.NewGTest(e.paths, e.getenv)}
}

func (*gtestCmd) Name() string     { return "gtest" }
func (*gtestCmd) Synopsis() string { return "run a gtest binary on a device or VM" }
func (*gtestCmd) Usage() string {
	return `Usage: gtest [flag]... [-- test arg...]

Description:
    Pushes -test-exe and its runtime deps to the device and runs it there
    through a generated shell script. Exits with the harness's status. Flags
    not listed below are passed to the test binary.

Flag:
`
}

func (c *gtestCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
}

func (c *gtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.cfg.Args = f.Args()
	return c.env.execute(ctx, &c.cfg.Common, c.cfg.Validate, func(ctx context.Context, d *testrunner.Deps) (int, error) {
		return testrunner.RunGTest(ctx, c.cfg, d)
	})
}
