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

// Package packageslockjson extracts NuGet packages.lock.json files.
package packageslockjson

import (
	"context"
	"encoding/json"
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
)

const (
	// Name is the unique name of this extractor.
	Name = "dotnet/packageslockjson"

	// Lockfile entries for other projects of the same solution.
	typeProject = "Project"
)

// Config is the configuration for the Extractor.
type Config struct {
	// Stats is a stats collector for reporting metrics.
	Stats stats.Collector
	// MaxFileSizeBytes is the maximum file size this extractor will unmarshal. If
	// `FileRequired` gets a bigger file, it will return false.
	MaxFileSizeBytes int64
}

// DefaultConfig returns the default configuration for the extractor.
func DefaultConfig() Config {
	return Config{MaxFileSizeBytes: 50 * filesystem.MiB}
}

// Extractor extracts packages from inside a packages.lock.json.
type Extractor struct {
	stats            stats.Collector
	maxFileSizeBytes int64
}

// New returns a packages.lock.json extractor.
//
// For most use cases, initialize with:
// ```
// e := New(DefaultConfig())
// ```
func New(cfg Config) *Extractor {
	return &Extractor{
		stats:            cfg.Stats,
		maxFileSizeBytes: cfg.MaxFileSizeBytes,
	}
}

// NewDefault returns an extractor with the default config settings.
func NewDefault() filesystem.Extractor { return New(DefaultConfig()) }

// PackagesLockJSON represents the `packages.lock.json` file generated from
// running `dotnet restore --use-lock-file`.
// The schema path we care about is:
// "dependencies" -> target framework moniker -> package name -> package info
type PackagesLockJSON struct {
	Dependencies map[string]map[string]PackageInfo `json:"dependencies"`
}

// PackageInfo represents a single package's info, including its resolved
// version, and its dependencies
type PackageInfo struct {
	// Type is "Direct", "Transitive", "CentralTransitive" or "Project".
	Type string `json:"type"`
	// Resolved is the resolved version for this dependency.
	Resolved     string            `json:"resolved"`
	Dependencies map[string]string `json:"dependencies"`
}

// Metadata holds the NuGet specific details of a package.
type Metadata struct {
	// TargetFrameworks the package is restored for, e.g. "net8.0".
	TargetFrameworks []string
	// Direct is true when the project references the package itself.
	Direct bool
}

// Name of the extractor.
func (e Extractor) Name() string { return Name }

// Version of the extractor.
func (e Extractor) Version() int { return 0 }

// Requirements of the extractor.
func (e Extractor) Requirements() *plugin.Capabilities { return &plugin.Capabilities{} }

// FileRequired returns true for files named packages.lock.json.
func (e Extractor) FileRequired(api filesystem.FileAPI) bool {
	p := api.Path()
	if path.Base(p) != "packages.lock.json" {
		return false
	}

	fileinfo, err := api.Stat()
	if err != nil {
		return false
	}
	if e.maxFileSizeBytes > 0 && fileinfo.Size() > e.maxFileSizeBytes {
		e.reportFileRequired(p, fileinfo.Size(), stats.FileRequiredResultSizeLimitExceeded)
		return false
	}

	e.reportFileRequired(p, fileinfo.Size(), stats.FileRequiredResultOK)
	return true
}

func (e Extractor) reportFileRequired(path string, fileSizeBytes int64, result stats.FileRequiredResult) {
	if e.stats == nil {
		return
	}
	e.stats.AfterFileRequired(e.Name(), &stats.FileRequiredStats{
		Path:          path,
		Result:        result,
		FileSizeBytes: fileSizeBytes,
	})
}

// Extract returns the packages restored for any target framework of a
// packages.lock.json file. Each name and version is reported once.
func (e Extractor) Extract(_ context.Context, input *filesystem.ScanInput) (inventory.Inventory, error) {
	p, err := Parse(input.Reader)
	if err != nil {
		return inventory.Inventory{}, fmt.Errorf("%s: %w", input.Path, err)
	}

	byKey := make(map[string]*extractor.Package)
	for tfm, packages := range p.Dependencies {
		for pkgName, info := range packages {
			if info.Type == typeProject || info.Resolved == "" {
				continue
			}
			// NuGet package IDs are case-insensitive.
			key := strings.ToLower(pkgName) + "@" + info.Resolved
			pkg, ok := byKey[key]
			if !ok {
				pkg = &extractor.Package{
					Name:      pkgName,
					Version:   info.Resolved,
					PURLType:  purl.TypeNuget,
					Locations: []string{input.Path},
					Metadata:  &Metadata{},
				}
				byKey[key] = pkg
			}
			m := pkg.Metadata.(*Metadata)
			m.TargetFrameworks = append(m.TargetFrameworks, tfm)
			m.Direct = m.Direct || info.Type == "Direct"
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	res := make([]*extractor.Package, 0, len(keys))
	for _, k := range keys {
		pkg := byKey[k]
		slices.Sort(pkg.Metadata.(*Metadata).TargetFrameworks)
		res = append(res, pkg)
	}
	return inventory.Inventory{Packages: res}, nil
}

// Parse returns a struct representing the structure of a .NET project's
// packages.lock.json file.
func Parse(r io.Reader) (PackagesLockJSON, error) {
	dec := json.NewDecoder(r)
	var p PackagesLockJSON
	if err := dec.Decode(&p); err != nil {
		return PackagesLockJSON{}, fmt.Errorf("failed to decode packages.lock.json file: %w", err)
	}

	return p, nil
}
