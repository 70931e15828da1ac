// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the flags of the test_runner subcommands and
// validates their combinations.
package config

import (
	"context"
	"flag"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.chromium.org/chromeos/testrunner/internal/command"
	"go.chromium.org/chromeos/testrunner/internal/logging"
)

// Common contains flags shared by all subcommands.
type Common struct {
	Paths  Paths
	getenv func(string) string

	Verbose           command.CountFlag
	Board             string
	DeployChrome      bool
	DeployLacros      bool
	StripChrome       bool
	CrosCache         string
	PathToOutDir      string
	RuntimeDepsPath   string
	VPythonDir        string
	LogsDir           string
	ShardIndex        int
	TotalShards       int
	Flash             bool
	PublicImage       bool
	MagicVMCache      string
	UseVM             bool
	Device            string
	FetchCrosHostname bool
	Timeout           time.Duration

	// Args holds arguments not recognized as flags, in their original order.
	// They are passed on to the harness or the test.
	Args []string

	envErr error
}

func newCommon(p Paths, getenv func(string) string) Common {
	return Common{Paths: p, getenv: getenv}
}

// SetFlags registers the common flags. Sharding defaults come from
// $GTEST_SHARD_INDEX and $GTEST_TOTAL_SHARDS.
func (c *Common) SetFlags(f *flag.FlagSet) {
	f.Var(&c.Verbose, "verbose", "print debug logs; may be repeated")
	f.Var(&c.Verbose, "v", "shorthand for -verbose")
	f.StringVar(&c.Board, "board", "", "type of the ChromeOS device (required)")
	f.BoolVar(&c.DeployChrome, "deploy-chrome", false, "deploy a locally built ash-chrome to the device before testing")
	f.BoolVar(&c.DeployLacros, "deploy-lacros", false, "deploy a locally built lacros-chrome instead of ash-chrome")
	f.BoolVar(&c.StripChrome, "strip-chrome", false, "strip symbols from chrome before deploying it")
	f.StringVar(&c.CrosCache, "cros-cache", c.Paths.DefaultCrosCache, "path to the cros cache dir")
	f.StringVar(&c.PathToOutDir, "path-to-outdir", "", "build output directory containing the test and its deps")
	f.StringVar(&c.RuntimeDepsPath, "runtime-deps-path", "", "GN runtime deps file listing files to push to the device, relative to the out dir")
	f.StringVar(&c.VPythonDir, "vpython-dir", "", "vpython directory to deploy to the device, relative to the out dir")
	f.StringVar(&c.LogsDir, "logs-dir", "", "host directory receiving system logs and results from the device")
	f.IntVar(&c.ShardIndex, "test-launcher-shard-index", c.envInt("GTEST_SHARD_INDEX", 0), "index of the shard to run")
	f.IntVar(&c.TotalShards, "test-launcher-total-shards", c.envInt("GTEST_TOTAL_SHARDS", 1), "total number of shards")
	f.BoolVar(&c.Flash, "flash", false, "flash the device to the current SDK version before testing")
	f.Var(command.NewSwitchFlag(&c.Flash, false), "no-flash", "do not flash the device")
	f.BoolVar(&c.PublicImage, "public-image", false, "flash a public image; requires -flash")
	f.StringVar(&c.MagicVMCache, "magic-vm-cache", "", "VM cache dir, relative to the source root; a swarming.txt marker is written into it")
	f.BoolVar(&c.UseVM, "use-vm", false, "run against a VM started by the harness")
	f.StringVar(&c.Device, "device", "", "hostname[:port] of the device to run against")
	f.BoolVar(&c.FetchCrosHostname, "fetch-cros-hostname", false, "derive the device hostname from $SWARMING_BOT_ID")
	f.Var(command.NewDurationFlag(time.Second, &c.Timeout, 0), "timeout", "seconds after which the harness is terminated; 0 for none")
}

func (c *Common) envInt(name string, def int) int {
	s := c.getenv(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		c.envErr = formatErrorf("$%s must be an integer, got %q", name, s)
		return def
	}
	return n
}

// Validate checks the common flags.
func (c *Common) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if c.Board == "" {
		return formatErrorf("-board is required")
	}
	n := 0
	for _, set := range []bool{c.UseVM, c.Device != "", c.FetchCrosHostname} {
		if set {
			n++
		}
	}
	if n > 1 {
		return formatErrorf("only one of -use-vm, -device and -fetch-cros-hostname may be given")
	}
	if c.TotalShards < 1 || c.ShardIndex < 0 || c.ShardIndex >= c.TotalShards {
		return formatErrorf("invalid shard %d of %d", c.ShardIndex, c.TotalShards)
	}
	if c.PublicImage && !c.Flash {
		return formatErrorf("-public-image requires -flash")
	}
	return nil
}

// Target identifies the device a run talks to.
type Target struct {
	// VM is set when the harness starts its own VM.
	VM bool
	// Device is the hostname, optionally with a port, of a physical device.
	Device string
}

// Lab reports whether the target is the lab's implicit device.
func (t Target) Lab() bool { return !t.VM && t.Device == LabDUTHostname }

var swarmingBotPrefixes = []string{"crossk-", "cros-"}

// Target resolves the target device from the target flags.
func (c *Common) Target(ctx context.Context) Target {
	switch {
	case c.UseVM:
		return Target{VM: true}
	case c.Device != "":
		return Target{Device: c.Device}
	case c.FetchCrosHostname:
		bot := c.getenv("SWARMING_BOT_ID")
		for _, p := range swarmingBotPrefixes {
			if strings.HasPrefix(bot, p) {
				return Target{Device: strings.TrimPrefix(bot, p)}
			}
		}
		logging.Warningf(ctx, "Cannot derive a device hostname from SWARMING_BOT_ID %q; using %s", bot, LabDUTHostname)
	}
	return Target{Device: LabDUTHostname}
}

// OutDir returns the absolute build output directory.
func (c *Common) OutDir() string {
	return c.Paths.Abs(c.PathToOutDir)
}

// LogsDirAbs returns the absolute logs dir, or an empty string if unset.
func (c *Common) LogsDirAbs() string {
	if c.LogsDir == "" {
		return ""
	}
	return c.Paths.Abs(c.LogsDir)
}

// CrosCacheAbs returns the absolute cros cache dir.
func (c *Common) CrosCacheAbs() string {
	return c.Paths.Abs(c.CrosCache)
}

func (c *Common) samePath(a, b string) bool {
	return filepath.Clean(c.Paths.Abs(a)) == filepath.Clean(c.Paths.Abs(b))
}
