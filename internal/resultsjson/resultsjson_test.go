// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package resultsjson_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/chromeos/testrunner/internal/resultsjson"
	"go.chromium.org/chromeos/testrunner/testutil"
)

const passedResult = `{"name": "login.Chrome", "errors": null, "start": "2020-01-01T15:41:30.799228462-08:00", "end": "2020-01-01T15:41:53.318914698-08:00", "skipReason": ""}`

func TestDecode(t *testing.T) {
	in := passedResult + "\n" +
		`{"name": "ui.WindowControl", "errors": [{"reason": "window did not close", "stack": "a\nb"}, {"reason": "second", "stack": "c"}], "outDir": "/logs/tests/ui.WindowControl"}` + "\n" +
		`{"name": "arc.Boot", "skipReason": "missing SoftwareDeps: android_p"}` + "\n"
	results, err := resultsjson.Decode(strings.NewReader(in))
	if err != nil {
		t.Fatal("Decode failed: ", err)
	}
	if len(results) != 3 {
		t.Fatalf("Decode returned %d results; want 3", len(results))
	}

	type summary struct {
		Name     string
		Status   resultsjson.Status
		Primary  string
		Log      string
		Duration time.Duration
	}
	var got []summary
	for _, r := range results {
		got = append(got, summary{r.Name, r.Status(), r.PrimaryError(), r.Log(), r.Duration()})
	}
	want := []summary{
		{"login.Chrome", resultsjson.StatusPass, "", "", 22519686236 * time.Nanosecond},
		{"ui.WindowControl", resultsjson.StatusFail, "window did not close", "a\nb\nc", 0},
		{"arc.Boot", resultsjson.StatusSkip, "", "", 0},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Results mismatch (-got +want):\n%s", diff)
	}
}

func TestDurationClockSkew(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 10, 0, time.UTC)
	r := &resultsjson.Result{Start: start, End: start.Add(-time.Second)}
	if d := r.Duration(); d != 0 {
		t.Errorf("Duration() = %v; want 0", d)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := resultsjson.Decode(strings.NewReader(passedResult + "\n{broken")); err == nil {
		t.Error("Decode of malformed input succeeded")
	}
}

func TestReadFile(t *testing.T) {
	td := testutil.TempDir(t)
	path := filepath.Join(td, resultsjson.StreamedResultsFilename)
	if _, err := resultsjson.ReadFile(path); !os.IsNotExist(err) {
		t.Errorf("ReadFile of a missing file = %v; want a not-exist error", err)
	}
	// A file without a trailing newline is accepted.
	if err := testutil.WriteFiles(td, map[string]string{resultsjson.StreamedResultsFilename: passedResult}); err != nil {
		t.Fatal(err)
	}
	results, err := resultsjson.ReadFile(path)
	if err != nil {
		t.Fatal("ReadFile failed: ", err)
	}
	if len(results) != 1 || results[0].Name != "login.Chrome" {
		t.Errorf("ReadFile returned %+v; want login.Chrome only", results)
	}
}
