// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"regexp"
	"strings"
	"testing"
)

func recurse(n int) Stack {
	if n == 0 {
		return New(0)
	}
	return recurse(n - 1)
}

func TestNewRecordsCaller(t *testing.T) {
	s := New(0).String()
	re := regexp.MustCompile(`^\tat go\.chromium\.org/chromeos/testrunner/errors/stack\.TestNewRecordsCaller \(stack_test\.go:\d+\)`)
	if !re.MatchString(s) {
		t.Errorf("New(0) = %q; want match of %q", s, re)
	}
}

func TestTruncated(t *testing.T) {
	lines := strings.Split(recurse(maxDepth*2).String(), "\n")
	if len(lines) != maxDepth+1 {
		t.Fatalf("Got %d lines; want %d", len(lines), maxDepth+1)
	}
	if last := lines[len(lines)-1]; last != "\t..." {
		t.Errorf("Last line = %q; want ellipsis", last)
	}
}
