// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"

	"go.chromium.org/chromeos/testrunner/errors"
)

// LabDUTHostname is the hostname lab bots resolve to the device under test.
// It is used when no target flag is given.
const LabDUTHostname = "variable_chromeos_device_hostname"

// TastDebugDoc explains how to debug tast failures. It is linked from the
// summary of every reported tast result that has no skip reason.
const TastDebugDoc = "https://bit.ly/2LgvIXz"

// SystemLogLocations are the device paths collected into
// <logs-dir>/system_logs after a run.
var SystemLogLocations = []string{
	"/home/chronos/crash/",
	"/var/log/chrome/",
	"/var/log/messages",
	"/var/log/ui/",
	"/var/log/daemon-store/chrome/",
}

// Paths holds locations inside a Chromium checkout.
type Paths struct {
	SrcRoot              string
	Chromite             string
	CrosRunTest          string
	DefaultCrosCache     string
	LacrosLauncherScript string
	VPythonSpec          string
}

// NewPaths returns Paths for the checkout at srcRoot, which is made
// absolute against the working directory.
func NewPaths(srcRoot string) (Paths, error) {
	src, err := filepath.Abs(srcRoot)
	if err != nil {
		return Paths{}, errors.Wrapf(err, "failed to resolve source root %s", srcRoot)
	}
	chromite := filepath.Join(src, "third_party", "chromite")
	return Paths{
		SrcRoot:              src,
		Chromite:             chromite,
		CrosRunTest:          filepath.Join(chromite, "bin", "cros_run_test"),
		DefaultCrosCache:     filepath.Join(src, "build", "cros_cache"),
		LacrosLauncherScript: filepath.Join(src, "build", "lacros", "mojo_connection_lacros_launcher.py"),
		VPythonSpec:          filepath.Join(src, ".vpython3"),
	}, nil
}

// DefaultSrcRoot returns $CHROMIUM_SRC if set, or the working directory.
func DefaultSrcRoot(getenv func(string) string) string {
	if src := getenv("CHROMIUM_SRC"); src != "" {
		return src
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Abs resolves p against the source root, the working directory of the
// harness. Absolute paths are returned cleaned.
func (p Paths) Abs(path string) string {
	return JoinPath(p.SrcRoot, path)
}

// Rel returns path relative to the source root, as the harness expects for
// --build-dir, --cwd and --files.
func (p Paths) Rel(path string) string {
	rel, err := filepath.Rel(p.SrcRoot, p.Abs(path))
	if err != nil {
		return path
	}
	return rel
}

// JoinPath joins base and p unless p is absolute, in which case p wins.
func JoinPath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
