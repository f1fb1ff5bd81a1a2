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

// Package scanrunner provides the main function for running a scan with the depscan binary.
package scanrunner

import (
	"context"

	"github.com/depscan/depscan"
	"github.com/depscan/depscan/binary/cli"
	"github.com/depscan/depscan/clients/ossindex"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/version"
)

// RunScan executes the scan with the given CLI flags
// and returns the exit code passed to os.Exit() in the main binary.
func RunScan(flags *cli.Flags) int {
	if flags.PrintVersion {
		log.Infof("depscan v%s", version.ScannerVersion)
		return 0
	}

	var cache ossindex.Cache
	if flags.CachePath != "" && !flags.DryRun {
		c, err := ossindex.OpenBoltCache(flags.CachePath, flags.CacheTTL)
		if err != nil {
			log.Errorf("Failed to open the OSS Index cache: %v", err)
			return 1
		}
		defer func() {
			if err := c.Close(); err != nil {
				log.Warnf("Failed to close the OSS Index cache: %v", err)
			}
		}()
		if n, err := c.Purge(); err != nil {
			log.Warnf("Failed to purge the OSS Index cache: %v", err)
		} else if n > 0 {
			log.Debugf("Purged %d expired OSS Index cache entries", n)
		}
		cache = c
	}

	cfg, err := flags.GetScanConfig(cache)
	if err != nil {
		log.Errorf("%v.GetScanConfig(): %v", flags, err)
		return 1
	}

	if flags.Project != "" {
		log.Infof("Project: %s", flags.Project)
	}
	if flags.DryRun {
		log.Infof("Dry run: vulnerabilities won't be looked up")
	}
	log.Infof("Running scan with %d extractors and %d enrichers", len(cfg.Extractors), len(cfg.Enrichers))
	roots := make([]string, 0, len(cfg.ScanRoots))
	for _, r := range cfg.ScanRoots {
		roots = append(roots, r.Path)
	}
	log.Infof("Scan roots: %s", roots)

	result := depscan.New().Scan(context.Background(), cfg)

	log.Infof("Scan status: %v", result.Status)
	for _, p := range result.PluginStatus {
		if p.Status.Status != plugin.ScanStatusSucceeded {
			log.Warnf("Plugin '%s' did not succeed. Status: %v, Reason: %s", p.Name, p.Status, p.Status.FailureReason)
		}
	}
	log.Infof(
		"Found %d software packages, %d vulnerabilities",
		len(result.Inventory.Packages),
		len(result.Inventory.PackageVulns),
	)

	if err := flags.WriteScanResults(result); err != nil {
		log.Errorf("Error writing scan results: %v", err)
		return 1
	}

	if result.Status.Status != plugin.ScanStatusSucceeded {
		log.Errorf("Scan wasn't successful: %s", result.Status.FailureReason)
		return 1
	}

	return 0
}
