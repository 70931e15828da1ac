// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stack captures and formats stack traces for the errors package.
package stack

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// maxDepth is the number of frames kept in a trace. The test runner's call
// paths are shallow; deeper frames are runtime and subcommands plumbing.
const maxDepth = 6

// Stack is a snapshot of program counters.
type Stack []uintptr

// New captures the current stack, skipping skip frames above the caller of
// New (skip=0 records the function calling New as the innermost frame).
func New(skip int) Stack {
	pc := make([]uintptr, maxDepth+1)
	return Stack(pc[:runtime.Callers(skip+2, pc)])
}

// String renders one "\tat func (file:line)" line per frame. A trailing
// "\t..." line marks a truncated trace.
func (s Stack) String() string {
	var lines []string
	frames := runtime.CallersFrames(s)
	for {
		f, more := frames.Next()
		lines = append(lines, fmt.Sprintf("\tat %s (%s:%d)", f.Function, filepath.Base(f.File), f.Line))
		if !more {
			break
		}
		if len(lines) >= maxDepth {
			lines = append(lines, "\t...")
			break
		}
	}
	return strings.Join(lines, "\n")
}
