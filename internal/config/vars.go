// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"go.chromium.org/chromeos/testrunner/errors"
)

// readVarsFile reads a YAML map of variable names to values.
func readVarsFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string)
	if err := yaml.Unmarshal(b, &vars); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return vars, nil
}

// ResolveVars returns the runtime variables to pass to tast. Variables from
// -tast-vars-file come first, sorted by key, followed by -tast-var entries in
// flag order. A -tast-var entry overrides a file variable of the same key; the
// same key appearing in two files is an error.
func (t *Tast) ResolveVars() ([]Var, error) {
	fileVars := make(map[string]string)
	for _, path := range t.VarsFiles {
		vars, err := readVarsFile(t.Paths.Abs(path))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read vars from %s", path)
		}
		for k, v := range vars {
			if _, ok := fileVars[k]; ok {
				return nil, formatErrorf("duplicated var %q in %s", k, path)
			}
			fileVars[k] = v
		}
	}
	for _, v := range t.Vars {
		delete(fileVars, v.Key)
	}

	keys := make([]string, 0, len(fileVars))
	for k := range fileVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Var
	for _, k := range keys {
		out = append(out, Var{Key: k, Value: fileVars[k]})
	}
	return append(out, t.Vars...), nil
}
