// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command_test

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/chromeos/testrunner/internal/command"
)

func TestDurationFlag(t *testing.T) {
	for _, tc := range []struct {
		units time.Duration // units for flag
		args  []string      // args to parse
		def   time.Duration // default value for flag
		exp   time.Duration // expected value
	}{
		{time.Second, []string{}, 0, 0},
		{time.Second, []string{}, 10 * time.Second, 10 * time.Second},
		{time.Second, []string{"-timeout=3600"}, 0, time.Hour},
		{time.Minute, []string{"-timeout=2"}, 0, 2 * time.Minute},
		{time.Millisecond, []string{"-timeout", "200"}, 0, 200 * time.Millisecond},
	} {
		var d time.Duration
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Var(command.NewDurationFlag(tc.units, &d, tc.def), "timeout", "usage")

		if err := fs.Parse(tc.args); err != nil {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if d != tc.exp {
			t.Errorf("%v resulted in %v; want %v", tc.args, d, tc.exp)
		}
	}
}

func TestDurationFlagInvalid(t *testing.T) {
	var d time.Duration
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(command.NewDurationFlag(time.Second, &d, 0), "timeout", "usage")
	if err := fs.Parse([]string{"-timeout=1h"}); err == nil {
		t.Error("Parse(-timeout=1h) succeeded; want error")
	}
}

func TestListFlag(t *testing.T) {
	for _, tc := range []struct {
		sep  string   // separator to use
		args []string // args to parse
		def  []string // default value for flag
		exp  []string // expected values
	}{
		{":", []string{}, nil, nil},
		{":", []string{}, []string{"login.Chrome"}, []string{"login.Chrome"}},
		{":", []string{"-gtest_filter=login.Chrome"}, nil, []string{"login.Chrome"}},
		{":", []string{"-gtest_filter=login.Chrome:ui.WindowControl"}, nil, []string{"login.Chrome", "ui.WindowControl"}},
		{":", []string{"-gtest_filter="}, []string{"default"}, nil},
		{",", []string{"-gtest_filter=a,b"}, []string{"default"}, []string{"a", "b"}},
	} {
		var vals []string
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Var(command.NewListFlag(tc.sep, func(v []string) { vals = v }, tc.def), "gtest_filter", "usage")

		if err := fs.Parse(tc.args); err != nil {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if diff := cmp.Diff(vals, tc.exp); diff != "" {
			t.Errorf("%v resulted in unexpected values (-got +want):\n%s", tc.args, diff)
		}
	}
}

func TestListFlagUsageDefault(t *testing.T) {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.Var(command.NewListFlag(":", func([]string) {}, []string{"a", "b"}), "gtest_filter", "usage")
	if got := fs.Lookup("gtest_filter").DefValue; got != "a:b" {
		t.Errorf("DefValue = %q; want %q", got, "a:b")
	}
}

func TestCountFlag(t *testing.T) {
	for _, tc := range []struct {
		args []string
		exp  int
	}{
		{nil, 0},
		{[]string{"-v"}, 1},
		{[]string{"-v", "-verbose", "-v"}, 3},
		{[]string{"-v", "-v=false"}, 0},
	} {
		var c command.CountFlag
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Var(&c, "verbose", "usage")
		fs.Var(&c, "v", "usage")

		if err := fs.Parse(tc.args); err != nil {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if int(c) != tc.exp {
			t.Errorf("%v resulted in %d; want %d", tc.args, c, tc.exp)
		}
	}
}

func ExampleRepeatedFlag() {
	var dest []int
	rf := command.RepeatedFlag(func(v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		dest = append(dest, i)
		return nil
	})
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.Var(&rf, "flag", "usage")

	flags.Parse([]string{})
	fmt.Println("no flag:", dest)

	flags.Parse([]string{"-flag=1", "-flag=2"})
	fmt.Println("flag:", dest)

	// Output:
	// no flag: []
	// flag: [1 2]
}

func TestSwitchFlag(t *testing.T) {
	for _, tc := range []struct {
		args []string
		exp  bool
	}{
		{nil, false},
		{[]string{"-flash"}, true},
		{[]string{"-flash", "-no-flash"}, false},
		{[]string{"-no-flash", "-flash"}, true},
		{[]string{"-flash", "-no-flash=false"}, true},
	} {
		var flash bool
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.BoolVar(&flash, "flash", false, "usage")
		fs.Var(command.NewSwitchFlag(&flash, false), "no-flash", "usage")

		if err := fs.Parse(tc.args); err != nil {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if flash != tc.exp {
			t.Errorf("%v resulted in %v; want %v", tc.args, flash, tc.exp)
		}
	}
}
