// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"flag"
	"strings"
)

type boolFlag interface {
	IsBoolFlag() bool
}

// SplitKnownArgs reorders args so that flag.FlagSet.Parse on fs sees only
// flags defined in fs. Unknown flags and positional arguments are moved
// behind a "--" separator in their original order, where they remain
// available through fs.Args(). Arguments already following a "--" in args
// stay behind it.
//
// A known non-boolean flag given without "=" takes the next argument as its
// value, as flag.Parse does.
func SplitKnownArgs(fs *flag.FlagSet, args []string) []string {
	var known, rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		name, hasValue, ok := flagName(arg)
		if !ok {
			rest = append(rest, arg)
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			rest = append(rest, arg)
			continue
		}
		known = append(known, arg)
		if hasValue {
			continue
		}
		if bf, ok := f.Value.(boolFlag); ok && bf.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	if len(rest) == 0 {
		return known
	}
	out := append(known, "--")
	return append(out, rest...)
}

// flagName extracts the name from arg if it looks like "-name", "--name" or
// "-name=value".
func flagName(arg string) (name string, hasValue, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false, false
	}
	name = arg[1:]
	if name[0] == '-' {
		name = name[1:]
	}
	if name == "" || name[0] == '-' || name[0] == '=' {
		return "", false, false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}
