// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gtestjson writes test results in the JSON summary format of the
// gtest launcher, which the recipes consume for every suite.
package gtestjson

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"time"

	"go.chromium.org/chromeos/testrunner/errors"
)

// Status values of a test iteration.
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
	StatusSkipped = "SKIPPED"
)

// Iteration is one run of a test.
type Iteration struct {
	Status              string `json:"status"`
	ElapsedTimeMS       int64  `json:"elapsed_time_ms"`
	OutputSnippet       string `json:"output_snippet"`
	OutputSnippetBase64 string `json:"output_snippet_base64"`
	// The misspelling is part of the format.
	LosslessSnippet bool `json:"losless_snippet"`
}

// Summary is the top-level object of a summary file. Tests are run once, so
// PerIterationData always holds a single map.
type Summary struct {
	AllTests         []string                 `json:"all_tests"`
	DisabledTests    []string                 `json:"disabled_tests"`
	GlobalTags       []string                 `json:"global_tags"`
	PerIterationData []map[string][]Iteration `json:"per_iteration_data"`
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{
		AllTests:         []string{},
		DisabledTests:    []string{},
		GlobalTags:       []string{},
		PerIterationData: []map[string][]Iteration{{}},
	}
}

// Add records the result of a test.
func (s *Summary) Add(name, status string, elapsed time.Duration, snippet string) {
	s.AllTests = append(s.AllTests, name)
	s.PerIterationData[0][name] = append(s.PerIterationData[0][name], Iteration{
		Status:              status,
		ElapsedTimeMS:       elapsed.Milliseconds(),
		OutputSnippet:       snippet,
		OutputSnippetBase64: base64.StdEncoding.EncodeToString([]byte(snippet)),
		LosslessSnippet:     true,
	})
}

// WriteFile writes s to path as indented JSON.
func (s *Summary) WriteFile(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return errors.Wrap(err, "failed to write test summary")
	}
	return nil
}
