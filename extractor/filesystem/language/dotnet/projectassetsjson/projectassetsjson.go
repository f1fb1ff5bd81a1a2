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

// Package projectassetsjson extracts NuGet project.assets.json files, the
// restore output found in a project's obj/ directory.
package projectassetsjson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/extractor/filesystem"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/purl"
	"github.com/depscan/depscan/stats"
	"github.com/tidwall/gjson"
)

// Name is the unique name of this extractor.
const Name = "dotnet/projectassetsjson"

var errInvalidJSON = errors.New("invalid JSON")

// Config is the configuration for the Extractor.
type Config struct {
	Stats            stats.Collector
	MaxFileSizeBytes int64
}

// DefaultConfig returns the default configuration for the extractor.
func DefaultConfig() Config {
	return Config{MaxFileSizeBytes: 100 * filesystem.MiB}
}

// Extractor extracts NuGet packages from project.assets.json.
type Extractor struct {
	stats            stats.Collector
	maxFileSizeBytes int64
}

// New returns a project.assets.json extractor.
func New(cfg Config) *Extractor {
	return &Extractor{
		stats:            cfg.Stats,
		maxFileSizeBytes: cfg.MaxFileSizeBytes,
	}
}

// NewDefault returns an extractor with the default config settings.
func NewDefault() filesystem.Extractor { return New(DefaultConfig()) }

// Metadata holds the NuGet specific details of a package.
type Metadata struct {
	TargetFrameworks []string
	// Direct is true when the project file references the package.
	Direct bool
}

// Name of the extractor.
func (e Extractor) Name() string { return Name }

// Version of the extractor.
func (e Extractor) Version() int { return 0 }

// Requirements of the extractor.
func (e Extractor) Requirements() *plugin.Capabilities { return &plugin.Capabilities{} }

// FileRequired returns true for files named project.assets.json.
func (e Extractor) FileRequired(api filesystem.FileAPI) bool {
	p := api.Path()
	if path.Base(p) != "project.assets.json" {
		return false
	}
	info, err := api.Stat()
	if err != nil {
		return false
	}
	result := stats.FileRequiredResultOK
	if e.maxFileSizeBytes > 0 && info.Size() > e.maxFileSizeBytes {
		result = stats.FileRequiredResultSizeLimitExceeded
	}
	if e.stats != nil {
		e.stats.AfterFileRequired(e.Name(), &stats.FileRequiredStats{
			Path:          p,
			Result:        result,
			FileSizeBytes: info.Size(),
		})
	}
	return result == stats.FileRequiredResultOK
}

// Extract reads the "targets" section: one object per target framework,
// keyed by "<name>/<version>". Project references are skipped.
func (e Extractor) Extract(_ context.Context, input *filesystem.ScanInput) (inventory.Inventory, error) {
	data, err := io.ReadAll(input.Reader)
	if err != nil {
		return inventory.Inventory{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}
	if !gjson.ValidBytes(data) {
		return inventory.Inventory{}, fmt.Errorf("%s: %w", input.Path, errInvalidJSON)
	}
	doc := gjson.ParseBytes(data)

	byKey := make(map[string]*extractor.Package)
	doc.Get("targets").ForEach(func(tfm, libs gjson.Result) bool {
		direct := directDependencies(doc, tfm.String())
		libs.ForEach(func(key, lib gjson.Result) bool {
			if lib.Get("type").String() != "package" {
				return true
			}
			name, version, ok := strings.Cut(key.String(), "/")
			if !ok || name == "" || version == "" {
				return true
			}
			k := strings.ToLower(name) + "@" + version
			pkg, ok := byKey[k]
			if !ok {
				pkg = &extractor.Package{
					Name:      name,
					Version:   version,
					PURLType:  purl.TypeNuget,
					Locations: []string{input.Path},
					Metadata:  &Metadata{},
				}
				byKey[k] = pkg
			}
			m := pkg.Metadata.(*Metadata)
			m.TargetFrameworks = append(m.TargetFrameworks, tfm.String())
			m.Direct = m.Direct || direct[strings.ToLower(name)]
			return true
		})
		return true
	})

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pkgs := make([]*extractor.Package, 0, len(keys))
	for _, k := range keys {
		slices.Sort(byKey[k].Metadata.(*Metadata).TargetFrameworks)
		pkgs = append(pkgs, byKey[k])
	}
	return inventory.Inventory{Packages: pkgs}, nil
}

// directDependencies returns the lower-cased names of the packages the project
// references for tfm. Target keys may carry a runtime identifier suffix, as in
// "net8.0/linux-x64".
func directDependencies(doc gjson.Result, tfm string) map[string]bool {
	tfm, _, _ = strings.Cut(tfm, "/")
	deps := make(map[string]bool)
	doc.Get("project.frameworks").ForEach(func(fw, body gjson.Result) bool {
		if !strings.EqualFold(fw.String(), tfm) {
			return true
		}
		body.Get("dependencies").ForEach(func(name, _ gjson.Result) bool {
			deps[strings.ToLower(name.String())] = true
			return true
		})
		return false
	})
	return deps
}
