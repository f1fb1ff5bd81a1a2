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

// Package packagelockjson extracts npm package-lock.json and npm-shrinkwrap.json files.
package packagelockjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
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
	Name = "javascript/packagelockjson"

	packageLock = "package-lock.json"
	shrinkwrap  = "npm-shrinkwrap.json"
)

// Metadata holds the npm specific details of a package.
type Metadata struct {
	// "dev", "optional" and "bundled". Empty for production dependencies.
	DepGroups []string
}

// Config is the configuration for the Extractor.
type Config struct {
	// Stats is a stats collector for reporting metrics.
	Stats stats.Collector
	// MaxFileSizeBytes is the largest file FileRequired accepts. 0 means no limit.
	MaxFileSizeBytes int64
}

// DefaultConfig returns the default configuration for the extractor.
func DefaultConfig() Config {
	return Config{MaxFileSizeBytes: 100 * filesystem.MiB}
}

// Extractor extracts npm packages from package-lock.json files.
type Extractor struct {
	stats            stats.Collector
	maxFileSizeBytes int64
}

// New returns a package-lock.json extractor.
func New(cfg Config) *Extractor {
	return &Extractor{
		stats:            cfg.Stats,
		maxFileSizeBytes: cfg.MaxFileSizeBytes,
	}
}

// NewDefault returns an extractor with the default config settings.
func NewDefault() filesystem.Extractor { return New(DefaultConfig()) }

// Name of the extractor.
func (e Extractor) Name() string { return Name }

// Version of the extractor.
func (e Extractor) Version() int { return 0 }

// Requirements of the extractor.
func (e Extractor) Requirements() *plugin.Capabilities { return &plugin.Capabilities{} }

// FileRequired returns true for npm lockfiles outside node_modules.
func (e Extractor) FileRequired(api filesystem.FileAPI) bool {
	p := api.Path()
	base := path.Base(p)
	if base != packageLock && base != shrinkwrap {
		return false
	}
	// Lockfiles of installed packages don't describe what the project installs.
	if slices.Contains(strings.Split(path.Dir(p), "/"), "node_modules") {
		return false
	}

	info, err := api.Stat()
	if err != nil {
		return false
	}
	if e.maxFileSizeBytes > 0 && info.Size() > e.maxFileSizeBytes {
		e.reportFileRequired(p, info.Size(), stats.FileRequiredResultSizeLimitExceeded)
		return false
	}
	e.reportFileRequired(p, info.Size(), stats.FileRequiredResultOK)
	return true
}

func (e Extractor) reportFileRequired(path string, size int64, result stats.FileRequiredResult) {
	if e.stats == nil {
		return
	}
	e.stats.AfterFileRequired(e.Name(), &stats.FileRequiredStats{
		Path:          path,
		Result:        result,
		FileSizeBytes: size,
	})
}

// Extract extracts packages from the lockfile in the scan input.
func (e Extractor) Extract(_ context.Context, input *filesystem.ScanInput) (inventory.Inventory, error) {
	// npm ignores package-lock.json when npm-shrinkwrap.json sits next to it.
	if path.Base(input.Path) == packageLock && input.FS != nil {
		if _, err := fs.Stat(input.FS, path.Join(path.Dir(input.Path), shrinkwrap)); err == nil {
			return inventory.Inventory{}, nil
		}
	}

	var lock lockFile
	if err := json.NewDecoder(input.Reader).Decode(&lock); err != nil {
		return inventory.Inventory{}, fmt.Errorf("could not extract from %s: %w", input.Path, err)
	}

	var details detailsMap
	if lock.Packages != nil {
		details = parsePackages(lock.Packages)
	} else {
		details = parseDependencies(lock.Dependencies)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pkgs := make([]*extractor.Package, 0, len(keys))
	for _, k := range keys {
		d := details[k]
		groups := d.depGroups
		if groups == nil {
			groups = []string{}
		}
		pkgs = append(pkgs, &extractor.Package{
			Name:      d.name,
			Version:   d.version,
			PURLType:  purl.TypeNPM,
			Locations: []string{input.Path},
			Metadata:  &Metadata{DepGroups: groups},
		})
	}
	return inventory.Inventory{Packages: pkgs}, nil
}

type packageDetails struct {
	name      string
	version   string
	depGroups []string
}

type detailsMap map[string]packageDetails

// add records a package. A package seen more than once belongs to the union of
// its groups, unless one occurrence is a production dependency.
func (m detailsMap) add(d packageDetails) {
	key := d.name + "@" + d.version
	if existing, ok := m[key]; ok {
		if len(existing.depGroups) == 0 || len(d.depGroups) == 0 {
			d.depGroups = nil
		} else {
			groups := slices.Concat(existing.depGroups, d.depGroups)
			slices.Sort(groups)
			d.depGroups = slices.Compact(groups)
		}
	}
	m[key] = d
}

// resolvable reports whether version names a registry release, as opposed to
// a local path or a git URL.
func resolvable(version string) bool {
	if version == "" || strings.HasPrefix(version, "file:") || strings.HasPrefix(version, "link:") {
		return false
	}
	if strings.Contains(version, "://") || strings.HasPrefix(version, "github:") {
		return false
	}
	return true
}

func parseDependencies(deps map[string]lockDependency) detailsMap {
	details := detailsMap{}
	var walk func(map[string]lockDependency)
	walk = func(deps map[string]lockDependency) {
		for name, dep := range deps {
			walk(dep.Dependencies)

			version := dep.Version
			// Aliases look like "npm:string-width@^4.2.0".
			if alias, ok := strings.CutPrefix(version, "npm:"); ok {
				if i := strings.LastIndex(alias, "@"); i > 0 {
					name, version = alias[:i], alias[i+1:]
				}
			}
			if !resolvable(version) {
				continue
			}
			details.add(packageDetails{name: name, version: version, depGroups: dep.depGroups()})
		}
	}
	walk(deps)
	return details
}

// packageName derives the package name from an install path such as
// "node_modules/@babel/core" or "node_modules/a/node_modules/b".
func packageName(installPath string) string {
	name := path.Base(installPath)
	if scope := path.Base(path.Dir(installPath)); strings.HasPrefix(scope, "@") {
		name = scope + "/" + name
	}
	return name
}

func parsePackages(pkgs map[string]lockPackage) detailsMap {
	details := detailsMap{}
	for installPath, pkg := range pkgs {
		// The root project and workspace members aren't dependencies.
		if installPath == "" || pkg.Link || !strings.Contains(installPath, "node_modules/") {
			continue
		}
		if !resolvable(pkg.Version) {
			continue
		}
		name := pkg.Name
		if name == "" {
			name = packageName(installPath)
		}
		details.add(packageDetails{name: name, version: pkg.Version, depGroups: pkg.depGroups()})
	}
	return details
}
