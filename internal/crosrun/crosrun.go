// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package crosrun assembles cros_run_test command lines.
//
// Every function returns a complete argument list starting with the absolute
// path of cros_run_test. The harness does not care about flag order, but
// arguments after "--" are passed on verbatim.
package crosrun

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/logging"
)

// Common returns the arguments shared by all subcommands: board, cache,
// target selection, system log collection and flashing.
func Common(cfg *config.Common, target config.Target) []string {
	args := []string{
		cfg.Paths.CrosRunTest,
		"--board", cfg.Board,
		"--cache-dir", cfg.CrosCacheAbs(),
	}
	if target.VM {
		args = append(args, "--start", "--copy-on-write")
	} else {
		args = append(args, "--device", target.Device)
	}
	if logs := cfg.LogsDirAbs(); logs != "" {
		for _, loc := range config.SystemLogLocations {
			args = append(args, "--results-src", loc)
		}
		args = append(args, "--results-dest-dir", filepath.Join(logs, "system_logs"))
	}
	if cfg.Flash {
		args = append(args, "--flash")
		if cfg.PublicImage {
			args = append(args, "--public-image")
		}
	}
	return args
}

// deployArgs returns the arguments deploying a locally built browser.
func deployArgs(cfg *config.Common) []string {
	if cfg.DeployLacros {
		return []string{"--deploy-lacros", "--lacros-launcher-script", cfg.Paths.LacrosLauncherScript}
	}
	// Mounting gives ash-chrome enough space on the device to skip stripping.
	args := []string{"--deploy", "--mount"}
	if !cfg.StripChrome {
		args = append(args, "--nostrip")
	}
	return args
}

// droppedTastArgPrefixes are launcher flags the bots pass to every test
// suite that tast does not understand.
var droppedTastArgPrefixes = []string{
	"--test-launcher-retry-limit",
	"--test-launcher-batch-limit",
	"--gtest_repeat",
}

func tastPassthrough(ctx context.Context, args []string) []string {
	var kept []string
	for _, a := range args {
		if a == "--test-launcher-bot-mode" {
			continue
		}
		dropped := false
		for _, p := range droppedTastArgPrefixes {
			if strings.HasPrefix(a, p) {
				dropped = true
				break
			}
		}
		if dropped {
			logging.Infof(ctx, "Ignoring unsupported arg %s", a)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// tastFilterExpr turns a list of test names into a tast expression matching
// any of them.
func tastFilterExpr(tests []string) string {
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = `"name:` + t + `"`
	}
	return "(" + strings.Join(names, " || ") + ")"
}

// Tast returns the command line running tast tests. vars are the resolved
// runtime variables, see config.Tast.ResolveVars.
func Tast(ctx context.Context, cfg *config.Tast, target config.Target, vars []config.Var) []string {
	args := Common(&cfg.Common, target)
	args = append(args, deployArgs(&cfg.Common)...)
	args = append(args, "--build-dir", cfg.Paths.Rel(cfg.PathToOutDir))
	args = append(args, tastPassthrough(ctx, cfg.Args)...)
	args = append(args,
		"--results-dir", cfg.LogsDirAbs(),
		fmt.Sprintf("--tast-total-shards=%d", cfg.TotalShards),
		fmt.Sprintf("--tast-shard-index=%d", cfg.ShardIndex),
	)

	switch {
	case len(cfg.GTestFilter) > 0:
		if cfg.AttrExpr != "" || len(cfg.Tests) > 0 {
			logging.Warning(ctx, "Both a gtest filter and a tast expression were given; using the gtest filter")
		}
		args = append(args, "--tast="+tastFilterExpr(cfg.GTestFilter))
	case cfg.AttrExpr != "":
		args = append(args, "--tast="+cfg.AttrExpr)
	default:
		args = append(args, "--tast")
		args = append(args, cfg.Tests...)
	}

	for _, v := range vars {
		args = append(args, "--tast-var", v.String())
	}
	if cfg.Retries > 0 {
		args = append(args, fmt.Sprintf("--tast-retries=%d", cfg.Retries))
	}
	return args
}

// GTest returns the command line running the on-device script at
// scriptPath. runtimeFiles are extra files to push, relative to the source
// root.
func GTest(cfg *config.GTest, target config.Target, scriptPath string, runtimeFiles []string) []string {
	args := Common(&cfg.Common, target)

	// The summary is fetched into its own dir, which is the source root for
	// a bare file name. Validation makes the trace dir's parent the same dir.
	var srcs []string
	var dest string
	if p := cfg.DeviceSummaryPath(); p != "" {
		srcs = append(srcs, p)
		dest = filepath.Dir(cfg.SummaryOutput)
	}
	if p := cfg.DeviceTraceDir(); p != "" {
		srcs = append(srcs, p)
		if dest == "" {
			dest = filepath.Dir(cfg.TraceDir)
		}
	}
	for _, s := range srcs {
		args = append(args, "--results-src", s)
	}
	if len(srcs) > 0 {
		args = append(args, "--results-dest-dir", cfg.Paths.Abs(dest))
	}

	if !cfg.StopUI {
		args = append(args, "--as-chronos")
	}
	outRel := cfg.Paths.Rel(cfg.PathToOutDir)
	args = append(args, "--remote-cmd", "--cwd", outRel)
	args = append(args, "--files", cfg.Paths.Rel(scriptPath))
	for _, f := range runtimeFiles {
		args = append(args, "--files", f)
	}

	scriptRel, err := filepath.Rel(cfg.OutDir(), cfg.Paths.Abs(scriptPath))
	if err != nil {
		scriptRel = filepath.Base(scriptPath)
	}
	return append(args, "--", "./"+scriptRel)
}

// HostCmd returns the command line running cfg.Args on the host once the
// device is ready.
func HostCmd(cfg *config.HostCmd, target config.Target) []string {
	args := Common(&cfg.Common, target)
	if cfg.Verbose > 0 {
		args = append(args, "--debug")
	}
	if cfg.DeployChrome || cfg.DeployLacros {
		args = append(args, deployArgs(&cfg.Common)...)
		args = append(args, "--build-dir", cfg.OutDir())
	}
	args = append(args, "--host-cmd", "--")
	return append(args, cfg.Args...)
}
