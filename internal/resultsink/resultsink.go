// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package resultsink reports test results to the LUCI ResultSink server
// running next to the test runner on bots.
package resultsink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.chromium.org/luci/lucictx"
	sinkpb "go.chromium.org/luci/resultdb/sink/proto/v1"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/logging"
)

// chunkSize is the maximum number of results sent in a single request.
const chunkSize = 500

const (
	sinkService        = "luci.resultsink.v1.Sink"
	reportResultsRPC   = "ReportTestResults"
	reportArtifactsRPC = "ReportInvocationLevelArtifacts"
)

// Client sends requests to a ResultSink server.
type Client struct {
	addr  string
	token string
	hc    *http.Client
}

// New returns a Client talking to the server listening on addr (host:port)
// and authenticating with token.
func New(addr, token string) *Client {
	return &Client{addr: addr, token: token, hc: http.DefaultClient}
}

// FromContext returns a Client for the result_sink section of LUCI_CONTEXT,
// or nil if there is none.
func FromContext(ctx context.Context) *Client {
	s := lucictx.GetResultSink(ctx)
	if s == nil || s.Address == "" {
		return nil
	}
	return New(s.Address, s.AuthToken)
}

func (c *Client) url(rpc string) string {
	return fmt.Sprintf("http://%s/prpc/%s/%s", c.addr, sinkService, rpc)
}

func (c *Client) post(ctx context.Context, rpc string, req proto.Message) error {
	body, err := protojson.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s request", rpc)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(rpc), bytes.NewReader(body))
	if err != nil {
		return err
	}
	hreq.Header.Set("Authorization", "ResultSink "+c.token)
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(hreq)
	if err != nil {
		return errors.Wrapf(err, "%s failed", rpc)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return errors.Errorf("%s failed with status %d: %s", rpc, res.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

// ReportTestResults sends results to the server in chunks. Chunks are sent
// concurrently.
func (c *Client) ReportTestResults(ctx context.Context, results []*sinkpb.TestResult) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, req := range chunkResults(results) {
		req := req
		g.Go(func() error {
			return c.post(gctx, reportResultsRPC, req)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Debugf(ctx, "Reported %d test results", len(results))
	return nil
}

func chunkResults(results []*sinkpb.TestResult) []*sinkpb.ReportTestResultsRequest {
	var reqs []*sinkpb.ReportTestResultsRequest
	for len(results) > 0 {
		n := chunkSize
		if n > len(results) {
			n = len(results)
		}
		reqs = append(reqs, &sinkpb.ReportTestResultsRequest{TestResults: results[:n]})
		results = results[n:]
	}
	return reqs
}

// ReportInvocationLevelArtifacts attaches artifacts to the invocation
// rather than to a test result. It is a no-op if arts is empty.
func (c *Client) ReportInvocationLevelArtifacts(ctx context.Context, arts map[string]*sinkpb.Artifact) error {
	if len(arts) == 0 {
		return nil
	}
	return c.post(ctx, reportArtifactsRPC, &sinkpb.ReportInvocationLevelArtifactsRequest{Artifacts: arts})
}
