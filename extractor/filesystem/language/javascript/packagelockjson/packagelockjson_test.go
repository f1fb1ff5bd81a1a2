// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package packagelockjson_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/extractor/filesystem"
	"github.com/depscan/depscan/extractor/filesystem/language/javascript/packagelockjson"
	"github.com/depscan/depscan/extractor/filesystem/simplefileapi"
	"github.com/depscan/depscan/purl"
	"github.com/depscan/depscan/stats"
	"github.com/depscan/depscan/testing/fakefs"
	"github.com/depscan/depscan/testing/testcollector"
	"github.com/google/go-cmp/cmp"
)

func TestExtractor_FileRequired(t *testing.T) {
	tests := []struct {
		name             string
		path             string
		fileSizeBytes    int64
		maxFileSizeBytes int64
		wantRequired     bool
		wantResultMetric stats.FileRequiredResult
	}{
		{
			name:         "Empty path",
			path:         "",
			wantRequired: false,
		},
		{
			name:             "package-lock.json",
			path:             "package-lock.json",
			wantRequired:     true,
			wantResultMetric: stats.FileRequiredResultOK,
		},
		{
			name:             "npm-shrinkwrap.json",
			path:             "app/npm-shrinkwrap.json",
			wantRequired:     true,
			wantResultMetric: stats.FileRequiredResultOK,
		},
		{
			name:             "package-lock.json at the end of a path",
			path:             "path/to/my/package-lock.json",
			wantRequired:     true,
			wantResultMetric: stats.FileRequiredResultOK,
		},
		{
			name:         "package-lock.json as path segment",
			path:         "path/to/my/package-lock.json/file",
			wantRequired: false,
		},
		{
			name:         "wrong extension",
			path:         "path/to/my/package-lock.json.file",
			wantRequired: false,
		},
		{
			name:         "package.json",
			path:         "package.json",
			wantRequired: false,
		},
		{
			name:         "skip from inside node_modules dir",
			path:         "foo/node_modules/bar/package-lock.json",
			wantRequired: false,
		},
		{
			name:             "required if file size == max file size",
			path:             "foo/package-lock.json",
			fileSizeBytes:    1 * filesystem.MiB,
			maxFileSizeBytes: 1 * filesystem.MiB,
			wantRequired:     true,
			wantResultMetric: stats.FileRequiredResultOK,
		},
		{
			name:             "not required if file size > max file size",
			path:             "foo/package-lock.json",
			fileSizeBytes:    1 * filesystem.MiB,
			maxFileSizeBytes: 100 * filesystem.KiB,
			wantRequired:     false,
			wantResultMetric: stats.FileRequiredResultSizeLimitExceeded,
		},
		{
			name:             "required if max file size set to 0",
			path:             "foo/package-lock.json",
			fileSizeBytes:    1 * filesystem.MiB,
			wantRequired:     true,
			wantResultMetric: stats.FileRequiredResultOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := testcollector.New()
			var e filesystem.Extractor = packagelockjson.New(packagelockjson.Config{
				Stats:            collector,
				MaxFileSizeBytes: tt.maxFileSizeBytes,
			})

			fileSizeBytes := tt.fileSizeBytes
			if fileSizeBytes == 0 {
				fileSizeBytes = 100 * filesystem.KiB
			}

			isRequired := e.FileRequired(simplefileapi.New(tt.path, fakefs.LockfileInfo(tt.path, fileSizeBytes)))
			if isRequired != tt.wantRequired {
				t.Fatalf("FileRequired(%s): got %v, want %v", tt.path, isRequired, tt.wantRequired)
			}

			gotResultMetric := collector.FileRequiredResult(tt.path)
			if gotResultMetric != tt.wantResultMetric {
				t.Errorf("FileRequired(%s) recorded result metric %q, want result metric %q", tt.path, gotResultMetric, tt.wantResultMetric)
			}
		})
	}
}

const lockV1 = `{
  "name": "app",
  "lockfileVersion": 1,
  "dependencies": {
    "wrappy": {"version": "1.0.2"},
    "once": {
      "version": "1.4.0",
      "dev": true,
      "dependencies": {
        "wrappy": {"version": "1.0.1", "optional": true}
      }
    },
    "string-width-cjs": {"version": "npm:string-width@4.2.3"},
    "local-lib": {"version": "file:../local-lib"},
    "forked": {"version": "git+https://github.com/acme/forked.git#abc123"}
  }
}`

const lockV3 = `{
  "name": "app",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "app", "version": "1.0.0"},
    "node_modules/@babel/core": {"version": "7.22.0"},
    "node_modules/string-width-cjs": {"name": "string-width", "version": "4.2.3"},
    "node_modules/fsevents": {"version": "2.3.3", "devOptional": true},
    "node_modules/left-pad": {"version": "1.3.0", "dev": true},
    "node_modules/nested/node_modules/left-pad": {"version": "1.3.0"},
    "node_modules/ms": {"version": "2.1.3", "dev": true},
    "node_modules/debug/node_modules/ms": {"version": "2.1.3", "optional": true},
    "node_modules/bundled-dep": {"version": "0.1.0", "inBundle": true},
    "node_modules/workspace-app": {"resolved": "packages/workspace-app", "link": true},
    "packages/workspace-app": {"version": "0.0.1"},
    "node_modules/local-lib": {"version": "file:../local-lib"}
  }
}`

func npmPackage(name, version, location string, groups ...string) *extractor.Package {
	if groups == nil {
		groups = []string{}
	}
	return &extractor.Package{
		Name:      name,
		Version:   version,
		PURLType:  purl.TypeNPM,
		Locations: []string{location},
		Metadata:  &packagelockjson.Metadata{DepGroups: groups},
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		path     string
		wantPkgs []*extractor.Package
		wantErr  bool
	}{
		{
			name:  "lockfile v1",
			files: fstest.MapFS{"package-lock.json": {Data: []byte(lockV1)}},
			path:  "package-lock.json",
			wantPkgs: []*extractor.Package{
				npmPackage("once", "1.4.0", "package-lock.json", "dev"),
				npmPackage("string-width", "4.2.3", "package-lock.json"),
				npmPackage("wrappy", "1.0.1", "package-lock.json", "optional"),
				npmPackage("wrappy", "1.0.2", "package-lock.json"),
			},
		},
		{
			name:  "lockfile v3",
			files: fstest.MapFS{"web/package-lock.json": {Data: []byte(lockV3)}},
			path:  "web/package-lock.json",
			wantPkgs: []*extractor.Package{
				npmPackage("@babel/core", "7.22.0", "web/package-lock.json"),
				npmPackage("bundled-dep", "0.1.0", "web/package-lock.json", "bundled"),
				npmPackage("fsevents", "2.3.3", "web/package-lock.json", "dev", "optional"),
				// Also installed as a production dependency.
				npmPackage("left-pad", "1.3.0", "web/package-lock.json"),
				npmPackage("ms", "2.1.3", "web/package-lock.json", "dev", "optional"),
				npmPackage("string-width", "4.2.3", "web/package-lock.json"),
			},
		},
		{
			name: "package-lock.json next to a shrinkwrap",
			files: fstest.MapFS{
				"package-lock.json":   {Data: []byte(lockV3)},
				"npm-shrinkwrap.json": {Data: []byte(lockV1)},
			},
			path:     "package-lock.json",
			wantPkgs: nil,
		},
		{
			name:     "empty lockfile",
			files:    fstest.MapFS{"package-lock.json": {Data: []byte(`{"lockfileVersion": 3, "packages": {}}`)}},
			path:     "package-lock.json",
			wantPkgs: []*extractor.Package{},
		},
		{
			name:    "invalid json",
			files:   fstest.MapFS{"package-lock.json": {Data: []byte(`{"lockfileVersion": `)}},
			path:    "package-lock.json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := packagelockjson.NewDefault()
			input := &filesystem.ScanInput{
				FS:     tt.files,
				Path:   tt.path,
				Reader: strings.NewReader(string(tt.files[tt.path].Data)),
			}
			got, err := e.Extract(context.Background(), input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Extract(%s) error: %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.wantPkgs, got.Packages); diff != "" {
				t.Errorf("Extract(%s) returned unexpected diff (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}
