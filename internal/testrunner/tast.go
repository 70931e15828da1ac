// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testrunner

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	pb "go.chromium.org/luci/resultdb/proto/v1"
	sinkpb "go.chromium.org/luci/resultdb/sink/proto/v1"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/command"
	"go.chromium.org/chromeos/testrunner/internal/config"
	"go.chromium.org/chromeos/testrunner/internal/crosrun"
	"go.chromium.org/chromeos/testrunner/internal/gtestjson"
	"go.chromium.org/chromeos/testrunner/internal/logging"
	"go.chromium.org/chromeos/testrunner/internal/resultsink"
	"go.chromium.org/chromeos/testrunner/internal/resultsjson"
)

// Subdirs of the logs dir reported as invocation-level artifacts.
var invocationArtifactDirs = []string{"system_logs", "crashes"}

var sinkStatus = map[resultsjson.Status]pb.TestStatus{
	resultsjson.StatusPass: pb.TestStatus_PASS,
	resultsjson.StatusFail: pb.TestStatus_FAIL,
	resultsjson.StatusSkip: pb.TestStatus_SKIP,
}

var summaryStatus = map[resultsjson.Status]string{
	resultsjson.StatusPass: gtestjson.StatusSuccess,
	resultsjson.StatusFail: gtestjson.StatusFailure,
	resultsjson.StatusSkip: gtestjson.StatusSkipped,
}

// RunTast runs tast tests and relays their results. It returns 1 if any test
// failed, and the harness exit code otherwise.
func RunTast(ctx context.Context, cfg *config.Tast, d *Deps) (int, error) {
	target := cfg.Target(ctx)
	vars, err := cfg.ResolveVars()
	if err != nil {
		return 0, command.WithStatus(command.StatusConfigError, err)
	}
	if err := prepare(ctx, &cfg.Common, target, d); err != nil {
		return 0, err
	}

	code, err := run(ctx, &cfg.Common, crosrun.Tast(ctx, cfg, target, vars), d)
	if err != nil {
		return 0, err
	}

	resultsPath := filepath.Join(cfg.LogsDirAbs(), resultsjson.StreamedResultsFilename)
	results, err := resultsjson.ReadFile(resultsPath)
	if os.IsNotExist(err) {
		logging.Warningf(ctx, "No results file at %s; tast did not run any test", resultsPath)
		return code, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", resultsPath)
	}

	failed, err := relayResults(ctx, cfg, results, d.Sink)
	if err != nil {
		return 0, err
	}
	if len(failed) > 0 {
		logging.Infof(ctx, "%d of %d tests failed: %s", len(failed), len(results), strings.Join(failed, " "))
		return 1, nil
	}
	if code != 0 {
		logging.Warningf(ctx, "All tests passed but the harness exited with status %d", code)
	}
	return code, nil
}

// relayResults reports results to sink, if any, and writes the summary file
// if requested. It returns the names of failed tests.
func relayResults(ctx context.Context, cfg *config.Tast, results []*resultsjson.Result, sink *resultsink.Client) ([]string, error) {
	var failed []string
	summary := gtestjson.NewSummary()
	var sinkResults []*sinkpb.TestResult
	for _, r := range results {
		st := r.Status()
		logging.Infof(ctx, "%s: %v", r.Name, st)
		if st == resultsjson.StatusFail {
			failed = append(failed, r.Name)
		}

		snippet := r.Log()
		if st == resultsjson.StatusSkip {
			snippet = r.SkipReason
		}
		summary.Add(r.Name, summaryStatus[st], r.Duration(), snippet)

		if sink == nil {
			continue
		}
		tr, err := toSinkResult(ctx, r)
		if err != nil {
			return nil, err
		}
		sinkResults = append(sinkResults, tr.Proto())
	}

	if sink != nil {
		if err := sink.ReportTestResults(ctx, sinkResults); err != nil {
			return nil, err
		}
		arts, err := invocationArtifacts(ctx, cfg.LogsDirAbs())
		if err != nil {
			return nil, err
		}
		if err := sink.ReportInvocationLevelArtifacts(ctx, arts); err != nil {
			return nil, err
		}
	}

	if cfg.SummaryOutput != "" {
		if err := summary.WriteFile(cfg.Paths.Abs(cfg.SummaryOutput)); err != nil {
			return nil, err
		}
	}
	return failed, nil
}

func toSinkResult(ctx context.Context, r *resultsjson.Result) (*resultsink.TestResult, error) {
	st := r.Status()
	tr := &resultsink.TestResult{
		TestID:        r.Name,
		Status:        sinkStatus[st],
		Start:         r.Start,
		Duration:      r.Duration(),
		FailureReason: r.PrimaryError(),
		Log:           r.Log(),
	}
	if len(r.Contacts) > 0 {
		tr.Tags = map[string]string{"contacts": strings.Join(r.Contacts, ",")}
	}
	if st == resultsjson.StatusSkip {
		tr.SummaryHTML = "<pre>Test was skipped because: " + html.EscapeString(r.SkipReason) + "</pre>"
	} else {
		tr.SummaryHTML = fmt.Sprintf(`<pre>For more info on debugging tast failures, see <a href="%s">%s</a></pre>`,
			config.TastDebugDoc, config.TastDebugDoc)
	}
	if r.OutDir != "" {
		arts, err := resultsink.CollectArtifacts(ctx, r.OutDir)
		if err != nil {
			return nil, err
		}
		tr.Artifacts = arts
	}
	return tr, nil
}

func invocationArtifacts(ctx context.Context, logsDir string) (map[string]*sinkpb.Artifact, error) {
	all := make(map[string]*sinkpb.Artifact)
	for _, sub := range invocationArtifactDirs {
		arts, err := resultsink.CollectArtifacts(ctx, filepath.Join(logsDir, sub))
		if err != nil {
			return nil, err
		}
		resultsink.MergeArtifacts(all, arts, sub)
	}
	return all, nil
}
