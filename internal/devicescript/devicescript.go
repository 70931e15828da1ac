// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package devicescript builds the shell script that runs a gtest binary on
// the device, and the list of files pushed along with it.
package devicescript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/shutil"
)

// MissingToolError is returned when a tool the script relies on is not
// present on the host.
type MissingToolError struct {
	Path string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool %s is missing", e.Path)
}

// deviceTmp is writable by chronos and survives stopping the UI.
const deviceTmp = "/usr/local/tmp"

// Script is an on-device script and the files it needs.
type Script struct {
	Lines []string
	// Files are additional paths to push to the device, relative to the
	// source root.
	Files []string
}

// Content returns the script text.
func (s *Script) Content() string {
	return strings.Join(s.Lines, "\n") + "\n"
}

// New builds the script running the gtest described by cfg.
func New(cfg *config.GTest) (*Script, error) {
	s := &Script{Lines: []string{
		"#!/bin/sh",
		"export HOME=" + deviceTmp,
		"export TMPDIR=" + deviceTmp,
	}}
	for _, ev := range cfg.EnvVars {
		s.Lines = append(s.Lines, fmt.Sprintf("export %s=%s", ev.Name, shutil.Quote(ev.Value)))
	}

	if cfg.VPythonDir != "" {
		lines, dir, err := vpythonSetup(cfg)
		if err != nil {
			return nil, err
		}
		s.Lines = append(s.Lines, lines...)
		s.Files = append(s.Files, dir)
	}

	if cfg.StopUI {
		s.Lines = append(s.Lines,
			"stop ui",
			// Light up the display, which stays off without a UI.
			"dbus-send --system --type=method_call --dest=org.chromium.PowerManager "+
				"/org/chromium/PowerManager org.chromium.PowerManager.HandleUserActivity int32:0",
			// The harness pushes files as root.
			"chown -R chronos: ../..",
		)
	}

	s.Lines = append(s.Lines, invocation(cfg))
	return s, nil
}

// vpythonSetup returns the lines putting the deployed vpython on PATH and
// installing the source tree's vpython spec, plus the vpython dir relative to
// the source root.
func vpythonSetup(cfg *config.GTest) (lines []string, dir string, err error) {
	outDir := cfg.OutDir()
	vpyDir := config.JoinPath(outDir, cfg.VPythonDir)
	for _, tool := range []string{
		filepath.Join(vpyDir, "vpython3"),
		filepath.Join(vpyDir, "bin", "python3"),
	} {
		if _, err := os.Stat(tool); err != nil {
			if os.IsNotExist(err) {
				return nil, "", &MissingToolError{Path: tool}
			}
			return nil, "", errors.Wrapf(err, "failed to check %s", tool)
		}
	}

	rel := func(p string) string {
		r, err := filepath.Rel(outDir, p)
		if err != nil {
			return p
		}
		return r
	}
	vpyRel := rel(vpyDir)
	lines = []string{
		fmt.Sprintf("export PATH=$PWD/%s:$PWD/%s/bin/:$PATH", vpyRel, vpyRel),
		fmt.Sprintf("vpython3 -vpython-spec %s -vpython-tool install", shutil.Quote(rel(cfg.Paths.VPythonSpec))),
	}
	return lines, cfg.Paths.Rel(vpyDir), nil
}

func invocation(cfg *config.GTest) string {
	args := []string{
		"./" + cfg.TestExe,
		fmt.Sprintf("--test-launcher-shard-index=%d", cfg.ShardIndex),
		fmt.Sprintf("--test-launcher-total-shards=%d", cfg.TotalShards),
	}
	if p := cfg.DeviceSummaryPath(); p != "" {
		args = append(args, "--test-launcher-summary-output="+p)
	}
	if p := cfg.DeviceTraceDir(); p != "" {
		args = append(args, "--trace-dir="+p)
	}
	args = append(args, cfg.Args...)

	line := "LD_LIBRARY_PATH=./ " + shutil.Join(args)
	if cfg.StopUI {
		return "su chronos -c -- " + shutil.Quote(line)
	}
	return line
}

// Write writes content to a new executable file named *.sh in dir and
// returns its path. The caller is responsible for removing it.
func Write(dir, content string) (path string, retErr error) {
	f, err := os.CreateTemp(dir, "device_script_*.sh")
	if err != nil {
		return "", errors.Wrap(err, "failed to create device script")
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = errors.Wrap(err, "failed to close device script")
		}
		if retErr != nil {
			os.Remove(f.Name())
		}
	}()
	if _, err := f.WriteString(content); err != nil {
		return "", errors.Wrap(err, "failed to write device script")
	}
	if err := f.Chmod(0755); err != nil {
		return "", errors.Wrap(err, "failed to make device script executable")
	}
	return f.Name(), nil
}
