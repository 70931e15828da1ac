// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package crosrun

import (
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/chromeos/testrunner/internal/config"
)

// Env returns the environment for cros_run_test derived from environ.
//
// Chromite's bin dir is appended to PATH for the harness's helpers.
// deploy_chrome reads GN_ARGS to decide which libraries to push, so empty
// GN_ARGS and USE get defaults. BOTO_CONFIG is removed when flashing a public
// image.
func Env(environ []string, cfg *config.Common) []string {
	vars := make(map[string]string)
	var order []string
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		if _, ok := vars[k]; !ok {
			order = append(order, k)
		}
		vars[k] = v
	}
	set := func(k, v string) {
		if _, ok := vars[k]; !ok {
			order = append(order, k)
		}
		vars[k] = v
	}

	chromiteBin := filepath.Join(cfg.Paths.Chromite, "bin")
	if p, ok := vars["PATH"]; ok && p != "" {
		set("PATH", p+string(os.PathListSeparator)+chromiteBin)
	} else {
		set("PATH", chromiteBin)
	}
	if vars["GN_ARGS"] == "" {
		set("GN_ARGS", "enable_nacl = true")
	}
	if vars["USE"] == "" {
		set("USE", "highdpi")
	}
	if cfg.Flash && cfg.PublicImage {
		delete(vars, "BOTO_CONFIG")
	}

	env := make([]string, 0, len(order))
	for _, k := range order {
		if v, ok := vars[k]; ok {
			env = append(env, k+"="+v)
		}
	}
	return env
}
