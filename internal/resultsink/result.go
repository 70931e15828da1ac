// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package resultsink

import (
	"time"
	"unicode/utf8"

	pb "go.chromium.org/luci/resultdb/proto/v1"
	"go.chromium.org/luci/resultdb/pbutil"
	sinkpb "go.chromium.org/luci/resultdb/sink/proto/v1"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	// ResultSink rejects summaries and failure reasons above these sizes.
	maxSummaryHTMLBytes   = 4096
	maxFailureReasonBytes = 1024

	// TestLogArtifactID is the ID of the artifact holding a test's log.
	TestLogArtifactID = "Test Log"

	truncationMarker = "..."
)

// TestResult describes a single test result to report.
type TestResult struct {
	TestID   string
	Status   pb.TestStatus
	Start    time.Time
	Duration time.Duration
	// FailureReason is the primary error message, if any.
	FailureReason string
	// SummaryHTML is shown alongside the result.
	SummaryHTML string
	// Log is uploaded as the TestLogArtifactID artifact if non-empty.
	Log       string
	Tags      map[string]string
	Artifacts map[string]*sinkpb.Artifact
}

// Proto converts r to the form sent to the sink. Passing and skipped tests
// are expected; anything else is not.
func (r *TestResult) Proto() *sinkpb.TestResult {
	tr := &sinkpb.TestResult{
		TestId:       r.TestID,
		Expected:     r.Status == pb.TestStatus_PASS || r.Status == pb.TestStatus_SKIP,
		Status:       r.Status,
		TestMetadata: &pb.TestMetadata{Name: r.TestID},
		Artifacts:    make(map[string]*sinkpb.Artifact, len(r.Artifacts)+1),
	}
	if !r.Start.IsZero() {
		tr.StartTime = timestamppb.New(r.Start)
	}
	tr.Duration = durationpb.New(r.Duration)
	for _, k := range sortedKeys(r.Tags) {
		tr.Tags = append(tr.Tags, pbutil.StringPair(k, r.Tags[k]))
	}
	for id, a := range r.Artifacts {
		tr.Artifacts[id] = a
	}

	summary := r.SummaryHTML
	if r.Log != "" {
		tr.Artifacts[TestLogArtifactID] = &sinkpb.Artifact{
			Body:        &sinkpb.Artifact_Contents{Contents: []byte(r.Log)},
			ContentType: "text/plain",
		}
		summary = `<p><text-artifact artifact-id="` + TestLogArtifactID + `" /></p>` + summary
	}
	tr.SummaryHtml = truncate(summary, maxSummaryHTMLBytes)

	if r.FailureReason != "" {
		tr.FailureReason = &pb.FailureReason{
			PrimaryErrorMessage: truncate(r.FailureReason, maxFailureReasonBytes),
		}
	}
	return tr
}

// truncate shortens s to at most n bytes of valid UTF-8, marking the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := n - len(truncationMarker)
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + truncationMarker
}
