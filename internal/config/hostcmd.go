// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import "flag"

// HostCmd contains flags of the host-cmd subcommand. The command to run is
// taken from Args.
type HostCmd struct {
	Common
}

// NewHostCmd returns a HostCmd config for the checkout described by p.
func NewHostCmd(p Paths, getenv func(string) string) *HostCmd {
	return &HostCmd{Common: newCommon(p, getenv)}
}

// SetFlags registers the common flags.
func (h *HostCmd) SetFlags(f *flag.FlagSet) {
	h.Common.SetFlags(f)
}

// Validate checks the host-cmd flags.
func (h *HostCmd) Validate() error {
	if err := h.Common.Validate(); err != nil {
		return err
	}
	if len(h.Args) == 0 {
		return formatErrorf("a command to run must follow --")
	}
	if h.DeployChrome && h.PathToOutDir == "" {
		return formatErrorf("-path-to-outdir is required with -deploy-chrome")
	}
	if h.DeployLacros && h.PathToOutDir == "" {
		return formatErrorf("-path-to-outdir is required with -deploy-lacros")
	}
	return nil
}
