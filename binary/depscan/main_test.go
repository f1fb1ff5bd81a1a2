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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	tempDir := func(t *testing.T) string {
		t.Helper()
		return t.TempDir()
	}

	testCases := []struct {
		desc      string
		setupFunc func(t *testing.T) string
		args      []string
		want      int
	}{
		{
			desc:      "scan subcommand",
			setupFunc: tempDir,
			args:      []string{"depscan", "scan", "--root", "{dir}", "--dry-run", "-o", "cdx-json=" + filepath.Join("{dir}", "bom.json")},
			want:      0,
		},
		{
			desc:      "no subcommand",
			setupFunc: tempDir,
			args:      []string{"depscan", "--root", "{dir}", "--dry-run", "-o", "spdx23-json=" + filepath.Join("{dir}", "sbom.json")},
			want:      0,
		},
		{
			desc:      "invalid output format",
			setupFunc: tempDir,
			args:      []string{"depscan", "scan", "--root", "{dir}", "--dry-run", "-o", "textproto=" + filepath.Join("{dir}", "result.textproto")},
			want:      1,
		},
		{
			desc:      "unknown flag",
			setupFunc: tempDir,
			args:      []string{"depscan", "scan", "--remote-image", "alpine"},
			want:      1,
		},
		{
			desc:      "missing config file",
			setupFunc: tempDir,
			args:      []string{"depscan", "--root", "{dir}", "--config", filepath.Join("{dir}", "missing.yaml")},
			want:      1,
		},
		{
			desc: "config file",
			setupFunc: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				cfg := "dry-run: true\noutput: [\"cdx-xml=" + filepath.ToSlash(filepath.Join(dir, "bom.xml")) + "\"]\n"
				if err := os.WriteFile(filepath.Join(dir, "depscan.yaml"), []byte(cfg), 0644); err != nil {
					t.Fatalf("os.WriteFile: %v", err)
				}
				return dir
			},
			args: []string{"depscan", "--root", "{dir}", "--config", filepath.Join("{dir}", "depscan.yaml")},
			want: 0,
		},
		{
			desc:      "version",
			setupFunc: tempDir,
			args:      []string{"depscan", "--version"},
			want:      0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			dir := tc.setupFunc(t)
			args := make([]string, len(tc.args))
			for i, arg := range tc.args {
				args[i] = strings.ReplaceAll(arg, "{dir}", dir)
			}
			if got := run(args, &bytes.Buffer{}); got != tc.want {
				t.Errorf("run(%v) returned unexpected exit code, got %d want %d", args, got, tc.want)
			}
		})
	}
}

func TestRunCPE(t *testing.T) {
	testCases := []struct {
		desc       string
		args       []string
		want       int
		wantOutput string
	}{
		{
			desc: "both bindings",
			args: []string{"depscan", "cpe", "--vendor", "microsoft", "--product", "internet explorer", "--version", "8.0.6001", "--update", "beta"},
			want: 0,
			wantOutput: `wfn:[part="a",vendor="microsoft",product="internet_explorer",version="8\.0\.6001",update="beta"]` + "\n" +
				"cpe:2.3:a:microsoft:internet_explorer:8.0.6001:beta:*:*:*:*:*:*\n" +
				"cpe:/a:microsoft:internet_explorer:8.0.6001:beta\n",
		},
		{
			desc: "target software packs the edition",
			args: []string{"depscan", "cpe", "--vendor", "lodash", "--product", "lodash", "--version", "4.17.21", "--target-sw", "node.js"},
			want: 0,
			wantOutput: `wfn:[part="a",vendor="lodash",product="lodash",version="4\.17\.21",target_sw="node\.js"]` + "\n" +
				"cpe:2.3:a:lodash:lodash:4.17.21:*:*:*:*:node.js:*:*\n" +
				"cpe:/a:lodash:lodash:4.17.21::~~~node.js~~\n",
		},
		{
			desc: "missing product",
			args: []string{"depscan", "cpe", "--vendor", "microsoft"},
			want: 1,
		},
		{
			desc: "invalid part",
			args: []string{"depscan", "cpe", "--part", "x", "--product", "p"},
			want: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var out bytes.Buffer
			if got := run(tc.args, &out); got != tc.want {
				t.Errorf("run(%v) returned unexpected exit code, got %d want %d", tc.args, got, tc.want)
			}
			if tc.wantOutput != "" && out.String() != tc.wantOutput {
				t.Errorf("run(%v) printed %q, want %q", tc.args, out.String(), tc.wantOutput)
			}
		})
	}
}
