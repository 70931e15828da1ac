// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package devicescript_test

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/shlex"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/devicescript"
	"go.chromium.org/chromeos/testrunner/testutil"
)

func newGTest(t *testing.T, src string, args ...string) *config.GTest {
	t.Helper()
	p, err := config.NewPaths(src)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.NewGTest(p, func(string) string { return "" })
	f := flag.NewFlagSet("", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	cfg.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%q) failed: %v", args, err)
	}
	cfg.Args = f.Args()
	return cfg
}

func TestScript(t *testing.T) {
	cfg := newGTest(t, "/chromium/src",
		"-test-exe=out_eve/Release/base_unittests", "-board=eve", "-path-to-outdir=out_eve/Release", "-use-vm")
	s, err := devicescript.New(cfg)
	if err != nil {
		t.Fatal("New failed: ", err)
	}
	const want = "#!/bin/sh\nexport HOME=/usr/local/tmp\n" +
		"export TMPDIR=/usr/local/tmp\n" +
		"LD_LIBRARY_PATH=./ ./out_eve/Release/base_unittests " +
		"--test-launcher-shard-index=0 --test-launcher-total-shards=1\n"
	if got := s.Content(); got != want {
		t.Errorf("Content() = %q; want %q", got, want)
	}
	if len(s.Files) != 0 {
		t.Errorf("Files = %q; want none", s.Files)
	}
}

func TestScriptStopUI(t *testing.T) {
	cfg := newGTest(t, "/chromium/src",
		"-test-exe=base_unittests", "-board=eve", "-path-to-outdir=out/Release",
		"-stop-ui", "-env-var=FOO=a b", "-logs-dir=/logs",
		"-test-launcher-summary-output=/logs/out.json", "-trace-dir=/logs/traces",
		"-test-launcher-shard-index=2", "-test-launcher-total-shards=4",
		"--", "--gtest_filter=Foo.*")
	s, err := devicescript.New(cfg)
	if err != nil {
		t.Fatal("New failed: ", err)
	}
	lines := s.Lines
	if diff := cmp.Diff(lines[:4], []string{
		"#!/bin/sh",
		"export HOME=/usr/local/tmp",
		"export TMPDIR=/usr/local/tmp",
		"export FOO='a b'",
	}); diff != "" {
		t.Errorf("Script header mismatch (-got +want):\n%s", diff)
	}
	if lines[4] != "stop ui" {
		t.Errorf("Line 4 = %q; want stop ui", lines[4])
	}

	last := lines[len(lines)-1]
	words, err := shlex.Split(last)
	if err != nil {
		t.Fatalf("shlex.Split(%q) failed: %v", last, err)
	}
	if diff := cmp.Diff(words[:4], []string{"su", "chronos", "-c", "--"}); diff != "" {
		t.Fatalf("Invocation prefix mismatch (-got +want):\n%s", diff)
	}
	inner, err := shlex.Split(words[4])
	if err != nil {
		t.Fatalf("shlex.Split(%q) failed: %v", words[4], err)
	}
	want := []string{
		"LD_LIBRARY_PATH=./", "./base_unittests",
		"--test-launcher-shard-index=2", "--test-launcher-total-shards=4",
		"--test-launcher-summary-output=/tmp/out.json", "--trace-dir=/tmp/traces",
		"--gtest_filter=Foo.*",
	}
	if diff := cmp.Diff(inner, want); diff != "" {
		t.Errorf("Invocation mismatch (-got +want):\n%s", diff)
	}
}

func TestScriptVPython(t *testing.T) {
	td := testutil.TempDir(t)
	cfg := newGTest(t, "/chromium/src",
		"-test-exe=base_unittests", "-board=eve", "-path-to-outdir="+td, "-vpython-dir="+td, "-logs-dir="+td)

	// With the vpython dir empty, the script cannot be built.
	_, err := devicescript.New(cfg)
	var mte *devicescript.MissingToolError
	if !errors.As(err, &mte) {
		t.Fatalf("New with empty vpython dir = %v; want MissingToolError", err)
	}

	if err := testutil.WriteFiles(td, map[string]string{
		"vpython3":     "",
		"bin/python3": "",
	}); err != nil {
		t.Fatal(err)
	}
	s, err := devicescript.New(cfg)
	if err != nil {
		t.Fatal("New with vpython tools failed: ", err)
	}
	content := s.Content()
	for _, want := range []string{
		"export PATH=$PWD/.:$PWD/./bin/:$PATH\n",
		"vpython3 -vpython-spec ",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Script does not contain %q:\n%s", want, content)
		}
	}
	if len(s.Files) != 1 {
		t.Errorf("Files = %q; want the vpython dir", s.Files)
	}
}

func TestScriptVPythonMissingPython(t *testing.T) {
	td := testutil.TempDir(t)
	if err := testutil.WriteFiles(td, map[string]string{"vpy/vpython3": ""}); err != nil {
		t.Fatal(err)
	}
	cfg := newGTest(t, "/chromium/src",
		"-test-exe=base_unittests", "-board=eve", "-path-to-outdir="+td, "-vpython-dir=vpy")
	_, err := devicescript.New(cfg)
	var mte *devicescript.MissingToolError
	if !errors.As(err, &mte) {
		t.Fatalf("New = %v; want MissingToolError", err)
	}
	if want := filepath.Join(td, "vpy", "bin", "python3"); mte.Path != want {
		t.Errorf("MissingToolError.Path = %q; want %q", mte.Path, want)
	}
}

func TestWrite(t *testing.T) {
	td := testutil.TempDir(t)
	const content = "#!/bin/sh\ntrue\n"
	path, err := devicescript.Write(td, content)
	if err != nil {
		t.Fatal("Write failed: ", err)
	}
	if filepath.Dir(path) != td || !strings.HasSuffix(path, ".sh") {
		t.Errorf("Write returned %q; want a *.sh file in %s", path, td)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := fi.Mode().Perm(); perm != 0755 {
		t.Errorf("Script mode = %v; want 0755", perm)
	}
	files, err := testutil.ReadFiles(td)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(files, map[string]string{filepath.Base(path): content}); diff != "" {
		t.Errorf("Files mismatch (-got +want):\n%s", diff)
	}
}

func TestWriteMissingDir(t *testing.T) {
	if _, err := devicescript.Write(filepath.Join(testutil.TempDir(t), "missing"), "x"); err == nil {
		t.Error("Write to a missing dir succeeded")
	}
}

func TestRuntimeFiles(t *testing.T) {
	src := testutil.TempDir(t)
	if err := testutil.WriteFiles(src, map[string]string{
		"out/Release/base_unittests.runtime_deps": strings.Join([]string{
			"./base_unittests",
			"libbase.so",
			"",
			"../../build/android/gyp/util.py",
			"../../build/chromeos/test_runner.py",
			"../../build/cros_cache/",
			"../../build/util/LASTCHANGE",
			"../../testing/test_env.py",
			"../../testing/buildbot/filters/base.filter",
			"../../testing/buildbot/chromium.json",
			"../../third_party/chromite/",
			"../../third_party/icu/icudtl.dat",
		}, "\n") + "\n",
	}); err != nil {
		t.Fatal(err)
	}
	cfg := newGTest(t, src, "-test-exe=base_unittests", "-board=eve", "-path-to-outdir=out/Release",
		"-runtime-deps-path=base_unittests.runtime_deps")
	got, err := devicescript.RuntimeFiles(cfg)
	if err != nil {
		t.Fatal("RuntimeFiles failed: ", err)
	}
	want := []string{
		"out/Release/base_unittests",
		"out/Release/libbase.so",
		"build/util/LASTCHANGE",
		"testing/buildbot/filters/base.filter",
		"third_party/icu/icudtl.dat",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("RuntimeFiles mismatch (-got +want):\n%s", diff)
	}
}

func TestRuntimeFilesUnset(t *testing.T) {
	cfg := newGTest(t, "/chromium/src", "-test-exe=base_unittests", "-board=eve", "-path-to-outdir=out/Release")
	files, err := devicescript.RuntimeFiles(cfg)
	if err != nil || files != nil {
		t.Errorf("RuntimeFiles = %q, %v; want nil, nil", files, err)
	}
	cfg.RuntimeDepsPath = "missing.runtime_deps"
	if _, err := devicescript.RuntimeFiles(cfg); err == nil {
		t.Error("RuntimeFiles with a missing deps file succeeded")
	}
}
