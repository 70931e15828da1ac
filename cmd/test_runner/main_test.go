// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"

	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/resultsink"
	"go.chromium.org/chromeos/testrunner/internal/runner"
	"go.chromium.org/chromeos/testrunner/testutil"
)

type stubRunner struct {
	cmd  *runner.Cmd
	code int
}

func (r *stubRunner) Run(ctx context.Context, cmd *runner.Cmd) (int, error) {
	r.cmd = cmd
	return r.code, nil
}

// newTestEnv returns a runEnv whose harness is r. The returned buffers
// receive stdout and stderr.
func newTestEnv(r *stubRunner) (e *runEnv, stdout, stderr *bytes.Buffer) {
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	return &runEnv{
		stdout:  stdout,
		stderr:  stderr,
		getenv:  func(string) string { return "" },
		environ: func() []string { return []string{"PATH=/usr/bin"} },
		newRunner: func(timeout time.Duration) runner.Runner {
			return r
		},
		lookupHost: func(ctx context.Context, host string) ([]string, error) {
			return []string{"192.0.2.1"}, nil
		},
		sink: func(ctx context.Context) *resultsink.Client { return nil },
	}, stdout, stderr
}

func TestReorderArgs(t *testing.T) {
	e, _, _ := newTestEnv(&stubRunner{})
	p, err := config.NewPaths("/chromium/src")
	if err != nil {
		t.Fatal(err)
	}
	e.paths = p
	cmds := []subcommands.Command{newTastCmd(e), newGTestCmd(e), newHostCmdCmd(e)}

	for _, tc := range []struct {
		args, want []string
	}{
		{
			[]string{"tast", "-board=eve", "--foo", "-use-vm", "bar"},
			[]string{"tast", "-board=eve", "-use-vm", "--", "--foo", "bar"},
		},
		{
			[]string{"gtest", "-board", "eve", "--gtest_filter=A.*", "-test-exe", "base_unittests"},
			[]string{"gtest", "-board", "eve", "-test-exe", "base_unittests", "--", "--gtest_filter=A.*"},
		},
		{
			[]string{"host-cmd", "-board", "eve", "--", "ls", "-board"},
			[]string{"host-cmd", "-board", "eve", "--", "ls", "-board"},
		},
		{
			[]string{"tast", "-help", "--foo"},
			[]string{"tast", "-help", "--foo"},
		},
		{
			[]string{"unknown", "--foo"},
			[]string{"unknown", "--foo"},
		},
	} {
		got := reorderArgs(cmds, tc.args)
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("reorderArgs(%q) mismatch (-got +want):\n%s", tc.args, diff)
		}
	}
}

func TestVersion(t *testing.T) {
	e, stdout, _ := newTestEnv(&stubRunner{})
	if code := doMain(context.Background(), []string{"-version"}, e); code != 0 {
		t.Fatalf("doMain returned %d; want 0", code)
	}
	if !strings.Contains(stdout.String(), Version) {
		t.Errorf("Version output %q lacks %q", stdout.String(), Version)
	}
}

func TestHostCmdExitCode(t *testing.T) {
	td := testutil.TempDir(t)
	r := &stubRunner{code: 4}
	e, _, _ := newTestEnv(r)

	args := []string{"-chromium-src", td, "host-cmd", "-board=eve", "-use-vm", "--", "echo", "hi"}
	if code := doMain(context.Background(), args, e); code != 4 {
		t.Errorf("doMain(%q) returned %d; want 4", args, code)
	}
	if r.cmd == nil {
		t.Fatal("Harness did not run")
	}
	if n := len(r.cmd.Args); n < 2 || r.cmd.Args[n-2] != "echo" || r.cmd.Args[n-1] != "hi" {
		t.Errorf("Harness args %q do not end with the host command", r.cmd.Args)
	}
	if r.cmd.Dir != td {
		t.Errorf("Harness ran in %q; want %q", r.cmd.Dir, td)
	}
}

func TestConfigError(t *testing.T) {
	td := testutil.TempDir(t)
	r := &stubRunner{}
	e, _, stderr := newTestEnv(r)

	args := []string{"-chromium-src", td, "host-cmd", "-use-vm", "--", "true"}
	if code := doMain(context.Background(), args, e); code != 2 {
		t.Errorf("doMain(%q) returned %d; want 2", args, code)
	}
	if !strings.Contains(stderr.String(), "-board is required") {
		t.Errorf("stderr %q does not explain the error", stderr.String())
	}
	if r.cmd != nil {
		t.Error("Harness ran despite a bad config")
	}
}

func TestTastPassthrough(t *testing.T) {
	td := testutil.TempDir(t)
	r := &stubRunner{}
	e, _, _ := newTestEnv(r)

	args := []string{
		"-chromium-src", td, "tast",
		"--test-launcher-retry-limit=2",
		"-board=eve", "-use-vm",
		"-path-to-outdir=out/Release",
		"-suite-name=tast_tests",
		"-logs-dir=" + td + "/logs",
		"-attr-expr=group:mainline",
		"--tast-extra-use-flags=foo",
	}
	if code := doMain(context.Background(), args, e); code != 0 {
		t.Errorf("doMain(%q) returned %d; want 0", args, code)
	}
	if r.cmd == nil {
		t.Fatal("Harness did not run")
	}
	got := strings.Join(r.cmd.Args, " ")
	if !strings.Contains(got, "--tast-extra-use-flags=foo") {
		t.Errorf("Harness args %q lack the passthrough arg", got)
	}
	if strings.Contains(got, "retry-limit") {
		t.Errorf("Harness args %q contain an unsupported launcher arg", got)
	}
}
