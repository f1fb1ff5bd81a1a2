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

package scanrunner_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/depscan/depscan/binary/cli"
	"github.com/depscan/depscan/binary/scanrunner"
	"github.com/depscan/depscan/clients/ossindex"
	"github.com/google/go-cmp/cmp"
)

const packageLock = `{
  "name": "webshop",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "webshop", "version": "1.0.0"},
    "node_modules/lodash": {"version": "4.17.20"},
    "node_modules/@babel/core": {"version": "7.22.5", "dev": true}
  }
}`

func createProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "package-lock.json")
	if err := os.WriteFile(path, []byte(packageLock), 0644); err != nil {
		t.Fatalf("os.WriteFile(%s): %v", path, err)
	}
	return dir
}

func fakeOSSIndex(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"code": 400, "message": "bad request"}`))
			return
		}
		var req struct {
			Coordinates []string `json:"coordinates"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		reports := []ossindex.ComponentReport{}
		for _, c := range req.Coordinates {
			report := ossindex.ComponentReport{Coordinates: c}
			if strings.Contains(c, "lodash") {
				report.Vulnerabilities = []ossindex.Vulnerability{{
					ID:         "sonatype-2020-0001",
					Title:      "[CVE-2020-8203] Prototype Pollution",
					CVSSScore:  7.4,
					CVSSVector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:N/S:U/C:N/I:H/A:H",
					CVE:        "CVE-2020-8203",
					CWE:        "CWE-1321",
				}}
			}
			reports = append(reports, report)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reports)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readBOM(t *testing.T, path string) *cyclonedx.BOM {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open(%s): %v", path, err)
	}
	defer f.Close()
	bom := cyclonedx.NewBOM()
	if err := cyclonedx.NewBOMDecoder(f, cyclonedx.BOMFileFormatJSON).Decode(bom); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return bom
}

func TestRunScanDryRun(t *testing.T) {
	dir := createProject(t)
	bomPath := filepath.Join(dir, "bom.json")
	flags := &cli.Flags{
		Root:    dir,
		Project: "webshop",
		DryRun:  true,
		Output:  cli.Array{"cdx-json=" + bomPath},
	}

	if got := scanrunner.RunScan(flags); got != 0 {
		t.Fatalf("scanrunner.RunScan(%v) = %d, want 0", flags, got)
	}

	bom := readBOM(t, bomPath)
	if bom.Components == nil {
		t.Fatalf("scanrunner.RunScan(%v): no components in %s", flags, bomPath)
	}
	got := map[string]string{}
	for _, c := range *bom.Components {
		got[c.Name] = c.CPE
	}
	want := map[string]string{
		"lodash":      "cpe:2.3:a:lodash:lodash:4.17.20:*:*:*:*:node.js:*:*",
		"@babel/core": "cpe:2.3:a:babel:core:7.22.5:*:*:*:*:node.js:*:*",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanrunner.RunScan(%v): unexpected CPEs (-want +got):\n%s", flags, diff)
	}
	if bom.Vulnerabilities != nil {
		t.Errorf("scanrunner.RunScan(%v): dry run produced vulnerabilities %v", flags, *bom.Vulnerabilities)
	}
}

func TestRunScanWithVulnerabilities(t *testing.T) {
	dir := createProject(t)
	srv := fakeOSSIndex(t, http.StatusOK)
	bomPath := filepath.Join(dir, "bom.json")
	flags := &cli.Flags{
		Root:        dir,
		OSSIndexURL: srv.URL,
		CachePath:   filepath.Join(t.TempDir(), "cache.db"),
		Output:      cli.Array{"cdx-json=" + bomPath, "text=" + filepath.Join(dir, "report.txt")},
	}

	if got := scanrunner.RunScan(flags); got != 0 {
		t.Fatalf("scanrunner.RunScan(%v) = %d, want 0", flags, got)
	}

	bom := readBOM(t, bomPath)
	if bom.Vulnerabilities == nil || len(*bom.Vulnerabilities) != 1 {
		t.Fatalf("scanrunner.RunScan(%v): got vulnerabilities %v, want 1", flags, bom.Vulnerabilities)
	}
	if id := (*bom.Vulnerabilities)[0].ID; id != "CVE-2020-8203" {
		t.Errorf("scanrunner.RunScan(%v): vulnerability ID = %q, want CVE-2020-8203", flags, id)
	}
	report, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	if err != nil {
		t.Fatalf("os.ReadFile(report.txt): %v", err)
	}
	if !strings.Contains(string(report), "2 packages scanned, 1 vulnerable, 1 vulnerabilities found") {
		t.Errorf("scanrunner.RunScan(%v): unexpected report:\n%s", flags, report)
	}
}

func TestRunScanFailures(t *testing.T) {
	testCases := []struct {
		desc  string
		flags func(t *testing.T, dir string) *cli.Flags
	}{
		{
			desc: "Unknown extractor",
			flags: func(t *testing.T, dir string) *cli.Flags {
				return &cli.Flags{Root: dir, DryRun: true, ExtractorsToRun: []string{"python/wheelegg"}}
			},
		},
		{
			desc: "Vulnerability database rejects the request",
			flags: func(t *testing.T, dir string) *cli.Flags {
				srv := fakeOSSIndex(t, http.StatusBadRequest)
				return &cli.Flags{Root: dir, OSSIndexURL: srv.URL, Output: cli.Array{"text=" + filepath.Join(dir, "report.txt")}}
			},
		},
		{
			desc: "Unwritable output",
			flags: func(t *testing.T, dir string) *cli.Flags {
				return &cli.Flags{Root: dir, DryRun: true, Output: cli.Array{"cdx-json=" + filepath.Join(dir, "missing", "bom.json")}}
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			flags := tc.flags(t, createProject(t))
			if got := scanrunner.RunScan(flags); got != 1 {
				t.Errorf("scanrunner.RunScan(%v) = %d, want 1", flags, got)
			}
		})
	}
}
