// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testrunner

import (
	"context"

	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/crosrun"
)

// RunHostCmd runs cfg.Args on the host once the device is ready and returns
// the harness exit code.
func RunHostCmd(ctx context.Context, cfg *config.HostCmd, d *Deps) (int, error) {
	target := cfg.Target(ctx)
	if err := prepare(ctx, &cfg.Common, target, d); err != nil {
		return 0, err
	}
	return run(ctx, &cfg.Common, crosrun.HostCmd(cfg, target), d)
}
