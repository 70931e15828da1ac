// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"flag"
	"path/filepath"
	"strings"

	"go.chromium.org/chromeos/testrunner/internal/command"
)

// EnvVar is an environment variable exported by the on-device script.
type EnvVar struct {
	Name, Value string
}

// GTest contains flags of the gtest subcommand.
type GTest struct {
	Common

	TestExe       string
	SummaryOutput string
	StopUI        bool
	TraceDir      string
	EnvVars       []EnvVar
}

// NewGTest returns a GTest config for the checkout described by p.
func NewGTest(p Paths, getenv func(string) string) *GTest {
	return &GTest{Common: newCommon(p, getenv)}
}

// SetFlags registers the common and gtest flags.
func (g *GTest) SetFlags(f *flag.FlagSet) {
	g.Common.SetFlags(f)
	f.StringVar(&g.TestExe, "test-exe", "", "path to the gtest binary, relative to the out dir's parent on the device (required)")
	f.StringVar(&g.SummaryOutput, "test-launcher-summary-output", "", "host file receiving the test's JSON summary; must be in -logs-dir")
	f.BoolVar(&g.StopUI, "stop-ui", false, "stop the UI before running the test")
	f.StringVar(&g.TraceDir, "trace-dir", "", "host dir receiving trace files; its parent must be -logs-dir")
	ev := command.RepeatedFlag(func(v string) error {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return formatErrorf("-env-var must be NAME=value, got %q", v)
		}
		g.EnvVars = append(g.EnvVars, EnvVar{Name: name, Value: value})
		return nil
	})
	f.Var(&ev, "env-var", "environment variable to set on the device as NAME=value; may be repeated")
}

// Validate checks the gtest flags.
func (g *GTest) Validate() error {
	if err := g.Common.Validate(); err != nil {
		return err
	}
	if g.PathToOutDir == "" {
		return formatErrorf("-path-to-outdir is required")
	}
	if g.TestExe == "" {
		return formatErrorf("-test-exe is required")
	}
	if g.SummaryOutput != "" {
		if dir := filepath.Dir(g.SummaryOutput); dir != "." && (g.LogsDir == "" || !g.samePath(dir, g.LogsDir)) {
			return formatErrorf("-test-launcher-summary-output must be in -logs-dir")
		}
	}
	if g.TraceDir != "" {
		if g.LogsDir == "" || !g.samePath(filepath.Dir(g.TraceDir), g.LogsDir) {
			return formatErrorf("-trace-dir must be a direct child of -logs-dir")
		}
		// Both are fetched into a single dir.
		if g.SummaryOutput != "" && !g.samePath(filepath.Dir(g.SummaryOutput), g.LogsDir) {
			return formatErrorf("-test-launcher-summary-output must be in -logs-dir when -trace-dir is given")
		}
	}
	return nil
}

const deviceResultsDir = "/tmp"

// DeviceSummaryPath returns where the test writes its summary on the device,
// or an empty string if no summary was requested.
func (g *GTest) DeviceSummaryPath() string {
	if g.SummaryOutput == "" {
		return ""
	}
	return filepath.Join(deviceResultsDir, filepath.Base(g.SummaryOutput))
}

// DeviceTraceDir returns where the test writes traces on the device, or an
// empty string if no trace dir was requested.
func (g *GTest) DeviceTraceDir() string {
	if g.TraceDir == "" {
		return ""
	}
	return filepath.Join(deviceResultsDir, filepath.Base(g.TraceDir))
}
