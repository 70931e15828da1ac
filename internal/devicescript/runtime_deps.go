// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package devicescript

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/config"
)

// hostOnlyDeps match runtime deps that are only needed on the host and are
// too large to push. Paths are relative to the source root.
var hostOnlyDeps = []string{
	"**/build/{android,chromeos,cros_cache}",
	"**/build/{android,chromeos,cros_cache}/**",
	"**/testing/**",
	"**/third_party/chromite",
	"**/third_party/chromite/**",
}

// deviceDeps are exempted from hostOnlyDeps.
var deviceDeps = []string{
	"**/testing/buildbot/filters",
	"**/testing/buildbot/filters/**",
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, name)
		if err != nil {
			return false, errors.Wrapf(err, "bad pattern %q", p)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// RuntimeFiles reads the GN runtime deps file of cfg and returns the files to
// push to the device, relative to the source root. Entries in the file are
// relative to the out dir. An unset -runtime-deps-path yields no files.
func RuntimeFiles(cfg *config.GTest) ([]string, error) {
	if cfg.RuntimeDepsPath == "" {
		return nil, nil
	}
	outDir := cfg.OutDir()
	path := config.JoinPath(outDir, cfg.RuntimeDepsPath)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open runtime deps")
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rel := filepath.ToSlash(cfg.Paths.Rel(filepath.Join(outDir, line)))
		hostOnly, err := matchAny(hostOnlyDeps, rel)
		if err != nil {
			return nil, err
		}
		if hostOnly {
			keep, err := matchAny(deviceDeps, rel)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}
		files = append(files, rel)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return files, nil
}
