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

// Package fakeenricher provides an Enricher implementation to be used in tests.
package fakeenricher

import (
	"context"

	"github.com/depscan/depscan/enricher"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/plugin"
)

// Enricher is a fake enricher implementation to be used in tests.
type Enricher struct {
	name            string
	version         int
	capabilities    *plugin.Capabilities
	requiredPlugins []string
	vulns           []*inventory.PackageVuln
	err             error
	calls           int
}

// Config for creating a fake enricher.
type Config struct {
	Name            string
	Version         int
	Capabilities    *plugin.Capabilities
	RequiredPlugins []string
	// Vulns are appended to the inventory on every Enrich call.
	Vulns []*inventory.PackageVuln
	// Err is returned from Enrich, after the vulns were added.
	Err error
}

// New creates a new fake enricher.
//
// Example:
//
//	e := fakeenricher.New(&fakeenricher.Config{
//		Name:    "vulnmatch/fake",
//		Version: 1,
//		Vulns:   []*inventory.PackageVuln{{Package: pkg}},
//	})
func New(cfg *Config) *Enricher {
	return &Enricher{
		name:            cfg.Name,
		version:         cfg.Version,
		capabilities:    cfg.Capabilities,
		requiredPlugins: cfg.RequiredPlugins,
		vulns:           cfg.Vulns,
		err:             cfg.Err,
	}
}

// Name returns the enricher's name.
func (e *Enricher) Name() string { return e.name }

// Version returns the enricher's version.
func (e *Enricher) Version() int { return e.version }

// Requirements about the scanning environment, e.g. "needs to have network access".
func (e *Enricher) Requirements() *plugin.Capabilities { return e.capabilities }

// RequiredPlugins returns a list of Plugins that need to be enabled for this Enricher to run.
func (e *Enricher) RequiredPlugins() []string { return e.requiredPlugins }

// Enrich adds the configured vulnerabilities to inv and returns the configured error.
func (e *Enricher) Enrich(_ context.Context, _ *enricher.ScanInput, inv *inventory.Inventory) error {
	e.calls++
	inv.PackageVulns = append(inv.PackageVulns, e.vulns...)
	return e.err
}

// Calls returns how often Enrich was called.
func (e *Enricher) Calls() int { return e.calls }

var _ enricher.Enricher = &Enricher{}
