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

// Package depscan finds the dependencies of a project, names them with package
// URLs and CPEs and looks up their known vulnerabilities.
package depscan

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/depscan/depscan/cpe"
	"github.com/depscan/depscan/enricher"
	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/extractor/filesystem"
	el "github.com/depscan/depscan/extractor/filesystem/list"
	scanfs "github.com/depscan/depscan/fs"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/stats"
	"github.com/depscan/depscan/version"
	"github.com/gobwas/glob"
	"go.uber.org/multierr"
)

var (
	// ErrNoScanRoot is the failure of a scan without scan roots.
	ErrNoScanRoot = errors.New("no scan root specified")
	// ErrNoExtractors is the failure of a scan without extractors.
	ErrNoExtractors = errors.New("no extractors enabled")
)

// Scanner is the main entry point of the scanner.
type Scanner struct{}

// New creates a new scanner instance.
func New() *Scanner { return &Scanner{} }

// ScanConfig stores the config settings of a scan run such as the plugins to
// use and the dirs to consider the roots of the scanned projects.
type ScanConfig struct {
	Extractors []filesystem.Extractor
	Enrichers  []enricher.Enricher
	// Capabilities that the scanning environment satisfies, e.g. whether there's
	// network access. Some plugins can only run if certain requirements are met.
	Capabilities *plugin.Capabilities
	// ScanRoots contain the list of root dirs used by file walking during extraction.
	ScanRoots []*scanfs.ScanRoot
	// Optional: Directories that the file system walk should ignore.
	// Note that on real filesystems these are not relative to the ScanRoots and
	// thus need to be in sub-directories of one of the ScanRoots.
	DirsToSkip []string
	// Optional: If the glob matches a directory, it will be skipped.
	SkipDirGlob glob.Glob
	// Optional: stats allows to enter a metric hook. If left nil, no metrics will be recorded.
	Stats stats.Collector
	// Optional: Limit for visited inodes. If 0, no limit is applied.
	MaxInodes int
	// Optional: By default, inventories stores a path relative to the scan root. If StoreAbsolutePath
	// is set, the absolute path is stored instead.
	StoreAbsolutePath bool
	// Optional: If set, the scan fails when a plugin required by an enricher
	// isn't configured instead of enabling it automatically.
	ExplicitPlugins bool
}

// EnableRequiredPlugins adds the extractors that enabled enrichers need but
// which have not been explicitly enabled.
func (cfg *ScanConfig) EnableRequiredPlugins() error {
	enabled := map[string]bool{}
	for _, e := range cfg.Extractors {
		enabled[e.Name()] = true
	}
	for _, e := range cfg.Enrichers {
		enabled[e.Name()] = true
	}

	for _, e := range cfg.Enrichers {
		for _, req := range e.RequiredPlugins() {
			if enabled[req] {
				continue
			}
			if cfg.ExplicitPlugins {
				return fmt.Errorf("required plugin %q not enabled", req)
			}
			ex, err := el.ExtractorFromName(req)
			if err != nil {
				return fmt.Errorf("required plugin %q not present in any list.go: %w", req, err)
			}
			enabled[req] = true
			cfg.Extractors = append(cfg.Extractors, ex)
		}
	}
	return nil
}

// ValidatePluginRequirements checks that the scanning environment's capabilities satisfy
// the requirements of all enabled plugins.
func (cfg *ScanConfig) ValidatePluginRequirements() error {
	var errs []error
	for _, p := range cfg.Extractors {
		if err := plugin.ValidateRequirements(p, cfg.Capabilities); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range cfg.Enrichers {
		if err := plugin.ValidateRequirements(p, cfg.Capabilities); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ScanResult stores the results of a scan incl. scan status and inventory found.
type ScanResult = result.ScanResult

// Scan runs the extractors, names every package found and runs the enrichers.
func (Scanner) Scan(ctx context.Context, config *ScanConfig) (sr *ScanResult) {
	if config.Stats == nil {
		config.Stats = stats.NoopCollector{}
	}
	defer func() {
		config.Stats.AfterScan(time.Since(sr.StartTime), sr.Status)
	}()
	sro := &newScanResultOptions{
		StartTime: time.Now(),
	}
	if err := config.EnableRequiredPlugins(); err != nil {
		sro.Err = err
	} else if err := config.ValidatePluginRequirements(); err != nil {
		sro.Err = err
	} else if len(config.ScanRoots) == 0 {
		sro.Err = ErrNoScanRoot
	} else if len(config.Extractors) == 0 {
		sro.Err = ErrNoExtractors
	}
	if sro.Err != nil {
		sro.EndTime = time.Now()
		return newScanResult(sro)
	}

	extractorConfig := &filesystem.Config{
		Stats:             config.Stats,
		Extractors:        config.Extractors,
		DirsToSkip:        config.DirsToSkip,
		SkipDirGlob:       config.SkipDirGlob,
		ScanRoots:         config.ScanRoots,
		MaxInodes:         config.MaxInodes,
		StoreAbsolutePath: config.StoreAbsolutePath,
	}
	inv, extractorStatus, err := filesystem.Run(ctx, extractorConfig)
	if err != nil {
		sro.Err = err
		sro.EndTime = time.Now()
		return newScanResult(sro)
	}
	sro.Inventory = inv
	sro.PluginStatus = append(sro.PluginStatus, extractorStatus...)

	Identify(sro.Inventory.Packages)

	enricherCfg := &enricher.Config{
		Enrichers: config.Enrichers,
		ScanRoot:  config.ScanRoots[0],
		Stats:     config.Stats,
	}
	enricherStatus, err := enricher.Run(ctx, enricherCfg, &sro.Inventory)
	sro.PluginStatus = append(sro.PluginStatus, enricherStatus...)
	if err != nil {
		sro.Err = multierr.Append(sro.Err, err)
	}

	sro.EndTime = time.Now()
	return newScanResult(sro)
}

// Identify sets the CPE names of the packages: the 2.3 formatted string
// followed by the 2.2 URI. Packages whose name or version can't be expressed
// as a CPE are logged and keep an empty list. A URI that would carry a
// backslash is left out, since 2.2 names have no escape character.
func Identify(pkgs []*extractor.Package) {
	named := 0
	for _, pkg := range pkgs {
		w, err := packageWFN(pkg)
		if err != nil {
			log.Warnf("no CPE for %s %s: %v", pkg.Name, pkg.Version, err)
			pkg.CPEs = nil
			continue
		}
		pkg.CPEs = []string{w.BindToFmtString()}
		if uri := w.BindToURI(); !strings.Contains(uri, `\`) {
			pkg.CPEs = append(pkg.CPEs, uri)
		} else {
			log.Warnf("no CPE 2.2 name for %s %s: %q is not a valid URI", pkg.Name, pkg.Version, uri)
		}
		named++
	}
	log.Debugf("named %d of %d packages with CPEs", named, len(pkgs))
}

func packageWFN(pkg *extractor.Package) (cpe.WFN, error) {
	vendor, product := pkg.CPEVendorProduct()
	w, err := cpe.FromComponent(cpe.Application, vendor, product, pkg.Version)
	if err != nil {
		return cpe.WFN{}, err
	}
	if targetSW := pkg.CPETargetSW(); targetSW != "" {
		if w.TargetSW, err = cpe.Quote(targetSW); err != nil {
			return cpe.WFN{}, fmt.Errorf("target_sw: %w", err)
		}
	}
	return w, nil
}

type newScanResultOptions struct {
	StartTime    time.Time
	EndTime      time.Time
	PluginStatus []*plugin.Status
	Inventory    inventory.Inventory
	Err          error
}

func newScanResult(o *newScanResultOptions) *ScanResult {
	status := &plugin.ScanStatus{}
	if o.Err != nil {
		status.Status = plugin.ScanStatusFailed
		status.FailureReason = o.Err.Error()
	} else {
		status.Status = plugin.ScanStatusSucceeded
		// If any plugin failed, set the overall scan status to partially succeeded.
		for _, pluginStatus := range o.PluginStatus {
			if pluginStatus.Status.Status == plugin.ScanStatusFailed {
				status.Status = plugin.ScanStatusPartiallySucceeded
				status.FailureReason = "not all plugins succeeded, see the plugin statuses"
				break
			}
		}
	}
	r := &ScanResult{
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		Version:      version.ScannerVersion,
		Status:       status,
		PluginStatus: o.PluginStatus,
		Inventory:    o.Inventory,
	}

	// Sort results for better diffing.
	sortResults(r)
	return r
}

// sortResults sorts the result to make the output deterministic and diffable.
func sortResults(results *ScanResult) {
	slices.SortFunc(results.PluginStatus, cmpStatus)
	slices.SortFunc(results.Inventory.Packages, CmpPackages)
	slices.SortStableFunc(results.Inventory.PackageVulns, cmpPackageVulns)
}

// CmpPackages is a comparison helper fun to be used for sorting Package structs.
func CmpPackages(a, b *extractor.Package) int {
	return cmp.Or(
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Version, b.Version),
		cmp.Compare(a.PURLType, b.PURLType),
		slices.Compare(a.Locations, b.Locations),
		slices.Compare(a.Plugins, b.Plugins),
	)
}

func cmpStatus(a, b *plugin.Status) int {
	return strings.Compare(a.Name, b.Name)
}

func cmpPackageVulns(a, b *inventory.PackageVuln) int {
	res := strings.Compare(a.Vulnerability.ID, b.Vulnerability.ID)
	if res != 0 || a.Package == nil || b.Package == nil {
		return res
	}
	return CmpPackages(a.Package, b.Package)
}
