// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil quotes arguments for POSIX shell command lines, such as the
// on-device script that runs a gtest binary.
package shutil

import (
	"regexp"
	"strings"
)

// plainRE matches words the shell passes through unchanged. A leading "="
// triggers expansion in zsh, so it is only allowed after the first rune.
var plainRE = regexp.MustCompile(`^[-\w@%+:,./][-\w@%+:,./=]*$`)

// Quote returns s as a single shell word. Words that need no quoting are
// returned as is; others are single-quoted.
func Quote(s string) string {
	if plainRE.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Join quotes each of args and joins them with spaces, producing a command
// line that the shell splits back into args.
func Join(args []string) string {
	words := make([]string, 0, len(args))
	for _, a := range args {
		words = append(words, Quote(a))
	}
	return strings.Join(words, " ")
}
