// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package resultsink

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	sinkpb "go.chromium.org/luci/resultdb/sink/proto/v1"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.chromium.org/chromeos/testrunner/errors"
	"go.chromium.org/chromeos/testrunner/internal/logging"
)

// ArtifactID converts a path relative to an artifacts dir into an artifact
// ID. ResultSink only accepts printable ASCII IDs, so other runes become '?',
// as do backslashes.
func ArtifactID(rel string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || r == '\\' || !unicode.IsPrint(r) {
			return '?'
		}
		return r
	}, filepath.ToSlash(rel))
}

// CollectArtifacts returns an artifact for every regular file under dir,
// keyed by ArtifactID. A missing dir yields no artifacts.
func CollectArtifacts(ctx context.Context, dir string) (map[string]*sinkpb.Artifact, error) {
	arts := make(map[string]*sinkpb.Artifact)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return arts, nil
	}
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		arts[ArtifactID(rel)] = &sinkpb.Artifact{
			Body: &sinkpb.Artifact_FilePath{FilePath: path},
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to collect artifacts in %s", dir)
	}
	logging.Debugf(ctx, "Collected %d artifacts (%s) in %s", len(arts), humanize.Bytes(uint64(total)), dir)
	return arts, nil
}

// MergeArtifacts adds the artifacts of src to dst, prefixing their IDs with
// prefix and a slash.
func MergeArtifacts(dst, src map[string]*sinkpb.Artifact, prefix string) {
	for _, id := range sortedKeys(src) {
		dst[prefix+"/"+id] = src[id]
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
