// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package resultsjson reads the streamed_results.jsonl file tast writes into
// its results dir.
package resultsjson

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"go.chromium.org/chromeos/testrunner/errors"
)

// StreamedResultsFilename is the name of the file in the results dir holding
// one JSON-encoded Result per line.
const StreamedResultsFilename = "streamed_results.jsonl"

// Error describes an error reported by a test.
type Error struct {
	Time   time.Time `json:"time"`
	Reason string    `json:"reason"`
	File   string    `json:"file"`
	Line   int       `json:"line"`
	Stack  string    `json:"stack"`
}

// Result is the result of a single tast test. Fields not used by the test
// runner are omitted.
type Result struct {
	Name     string   `json:"name"`
	Contacts []string `json:"contacts"`
	Errors   []Error  `json:"errors"`
	// Start and End are reported by the device. End is the zero time if
	// the test did not complete.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// OutDir is the host dir holding the test's output files.
	OutDir string `json:"outDir"`
	// SkipReason is empty if the test ran.
	SkipReason string `json:"skipReason"`
}

// Status is the outcome of a test.
type Status int

const (
	// StatusPass means the test ran without errors.
	StatusPass Status = iota
	// StatusFail means the test reported errors.
	StatusFail
	// StatusSkip means the test did not run.
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusSkip:
		return "SKIP"
	}
	return "UNKNOWN"
}

// Status returns the outcome of r. A skipped test is never a failure.
func (r *Result) Status() Status {
	if r.SkipReason != "" {
		return StatusSkip
	}
	if len(r.Errors) > 0 {
		return StatusFail
	}
	return StatusPass
}

// Duration returns how long the test ran. Clock skew between host and
// device can make End precede Start, in which case 0 is returned.
func (r *Result) Duration() time.Duration {
	if d := r.End.Sub(r.Start); d > 0 {
		return d
	}
	return 0
}

// Log joins the stacks of all errors.
func (r *Result) Log() string {
	stacks := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		stacks[i] = e.Stack
	}
	return strings.Join(stacks, "\n")
}

// PrimaryError returns the reason of the first error, or an empty string.
func (r *Result) PrimaryError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Reason
}

// Decode reads a stream of JSON-encoded results.
func Decode(r io.Reader) ([]*Result, error) {
	var results []*Result
	dec := json.NewDecoder(r)
	for {
		var res Result
		if err := dec.Decode(&res); err == io.EOF {
			return results, nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "failed to decode result %d", len(results)+1)
		}
		results = append(results, &res)
	}
}

// ReadFile reads results from a streamed results file.
func ReadFile(path string) ([]*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
