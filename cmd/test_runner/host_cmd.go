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

type hostCmdCmd struct {
	env *runEnv
	cfg *config.HostCmd
}

var _ = subcommands.Command(&hostCmdCmd{})

func newHostCmdCmd(e *runEnv) *hostCmdCmd {
	return &hostCmdCmd{env: e, cfg: config.NewHostCmd(e.paths, e.getenv)}
}

func (*hostCmdCmd) Name() string     { return "host-cmd" }
func (*hostCmdCmd) Synopsis() string { return "run a host command once the device is ready" }
func (*hostCmdCmd) Usage() string {
	return `Usage: host-cmd [flag]... -- command [arg]...

Description:
    Prepares the device or VM, optionally deploying a locally built
    browser, then runs the command on the host. Exits with the harness's
    status.

Flag:
`
}

func (c *hostCmdCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
}

func (c *hostCmdCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.cfg.Args = f.Args()
	return c.env.execute(ctx, &c.cfg.Common, c.cfg.Validate, func(ctx context.Context, d *testrunner.Deps) (int, error) {
		return testrunner.RunHostCmd(ctx, c.cfg, d)
	})
}
