// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"flag"
	"strings"

	"go.chromium.org/chromeos/testrunner/internal/command"
)

// Var is a tast runtime variable.
type Var struct {
	Key, Value string
}

func (v Var) String() string { return v.Key + "=" + v.Value }

// Tast contains flags of the tast subcommand.
type Tast struct {
	Common

	SuiteName     string
	SummaryOutput string
	AttrExpr      string
	Vars          []Var
	VarsFiles     []string
	Retries       int
	Tests         []string
	GTestFilter   []string
}

// NewTast returns a Tast config for the checkout described by p. getenv
// supplies environment-derived defaults.
func NewTast(p Paths, getenv func(string) string) *Tast {
	return &Tast{Common: newCommon(p, getenv)}
}

// SetFlags registers the common and tast flags.
func (t *Tast) SetFlags(f *flag.FlagSet) {
	t.Common.SetFlags(f)
	f.StringVar(&t.SuiteName, "suite-name", "", "name of the suite, used in logs (required)")
	f.StringVar(&t.SummaryOutput, "test-launcher-summary-output", "", "file receiving a GTest-style JSON summary of the results")
	f.StringVar(&t.AttrExpr, "attr-expr", "", "tast attribute expression selecting the tests to run")
	tv := command.RepeatedFlag(func(v string) error {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return formatErrorf("-tast-var must be key=value, got %q", v)
		}
		t.Vars = append(t.Vars, Var{Key: key, Value: value})
		return nil
	})
	f.Var(&tv, "tast-var", "runtime variable as key=value; may be repeated")
	vf := command.RepeatedFlag(func(v string) error {
		t.VarsFiles = append(t.VarsFiles, v)
		return nil
	})
	f.Var(&vf, "tast-vars-file", "YAML file of runtime variables; may be repeated")
	f.IntVar(&t.Retries, "tast-retries", 0, "number of times to retry a failed tast test")
	test := command.RepeatedFlag(func(v string) error {
		t.Tests = append(t.Tests, v)
		return nil
	})
	f.Var(&test, "test", "tast test to run; may be repeated")
	f.Var(&test, "t", "shorthand for -test")
	f.Var(command.NewListFlag(":", func(v []string) { t.GTestFilter = v }, nil), "gtest_filter",
		"colon-separated list of tast tests to run, overriding -attr-expr and -test")
}

// Validate checks the tast flags.
func (t *Tast) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.PathToOutDir == "" {
		return formatErrorf("-path-to-outdir is required")
	}
	if t.SuiteName == "" {
		return formatErrorf("-suite-name is required")
	}
	// The host-side tast binary exits with 0 when tests fail, so results
	// have to be read from the logs dir.
	if t.LogsDir == "" {
		return formatErrorf("-logs-dir is required for tast tests")
	}
	if t.AttrExpr == "" && len(t.Tests) == 0 && len(t.GTestFilter) == 0 {
		return formatErrorf("one of -attr-expr, -test and -gtest_filter is required")
	}
	if len(t.GTestFilter) > 0 && strings.HasPrefix(t.GTestFilter[0], "-") {
		return formatErrorf("negative gtest filters are not supported by tast: %s", strings.Join(t.GTestFilter, ":"))
	}
	if t.DeployLacros && t.DeployChrome {
		return formatErrorf("-deploy-lacros and -deploy-chrome are mutually exclusive")
	}
	if t.Retries < 0 {
		return formatErrorf("-tast-retries must not be negative")
	}
	return nil
}
