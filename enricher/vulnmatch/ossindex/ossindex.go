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

// Package ossindex queries Sonatype OSS Index to find vulnerabilities in the
// inventory packages.
package ossindex

import (
	"context"
	"strings"

	"github.com/depscan/depscan/clients/ossindex"
	"github.com/depscan/depscan/enricher"
	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/severity"
)

const (
	// Name is the unique name of this Enricher.
	Name    = "vulnmatch/ossindex"
	version = 0
)

// Client fetches component reports. *ossindex.Client implements it.
type Client interface {
	ComponentReports(ctx context.Context, coordinates []string) ([]ossindex.ComponentReport, error)
}

var _ enricher.Enricher = &Enricher{}

// Enricher adds OSS Index vulnerabilities to the inventory.
type Enricher struct {
	client Client
}

// New returns an Enricher querying the API with cfg.
func New(cfg ossindex.Config) *Enricher {
	return &Enricher{client: ossindex.New(cfg)}
}

// NewWithClient returns an Enricher which uses the given client.
func NewWithClient(c Client) *Enricher {
	return &Enricher{client: c}
}

// Name of the Enricher.
func (Enricher) Name() string { return Name }

// Version of the Enricher.
func (Enricher) Version() int { return version }

// Requirements of the Enricher.
func (Enricher) Requirements() *plugin.Capabilities {
	return &plugin.Capabilities{Network: plugin.NetworkOnline}
}

// RequiredPlugins returns the plugins that are required to be enabled for this
// Enricher to run.
func (Enricher) RequiredPlugins() []string { return []string{} }

// Enrich looks up every package with a package URL and a version and records
// one PackageVuln per reported vulnerability.
func (e *Enricher) Enrich(ctx context.Context, _ *enricher.ScanInput, inv *inventory.Inventory) error {
	var coordinates []string
	byCoordinates := make(map[string][]*extractor.Package)
	for _, pkg := range inv.Packages {
		p := pkg.PURL()
		if p == nil || pkg.Version == "" {
			continue
		}
		coord := p.Coordinates()
		key := strings.ToLower(coord)
		if _, ok := byCoordinates[key]; !ok {
			coordinates = append(coordinates, coord)
		}
		byCoordinates[key] = append(byCoordinates[key], pkg)
	}
	if len(coordinates) == 0 {
		return nil
	}

	reports, err := e.client.ComponentReports(ctx, coordinates)
	if err != nil {
		return err
	}
	log.Infof("%s: %d components checked", Name, len(coordinates))

	for _, r := range reports {
		pkgs, ok := byCoordinates[strings.ToLower(r.Coordinates)]
		if !ok {
			log.Warnf("%s: report for unknown coordinates %q", Name, r.Coordinates)
			continue
		}
		for _, v := range r.Vulnerabilities {
			vuln := toVulnerability(v)
			for _, pkg := range pkgs {
				inv.PackageVulns = append(inv.PackageVulns, &inventory.PackageVuln{
					Vulnerability: vuln,
					Package:       pkg,
					Plugins:       []string{Name},
				})
			}
		}
	}
	return nil
}

func toVulnerability(v ossindex.Vulnerability) inventory.Vulnerability {
	return inventory.Vulnerability{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		CVE:         v.CVE,
		CWE:         v.CWE,
		CVSSScore:   v.CVSSScore,
		CVSSVector:  v.CVSSVector,
		Reference:   v.Reference,
		Severity:    rate(v),
	}
}

// rate takes the reported score, or computes one from the vector when the
// score is missing.
func rate(v ossindex.Vulnerability) severity.Rating {
	if v.CVSSScore == 0 && v.CVSSVector != "" {
		r, err := severity.FromVector(v.CVSSVector)
		if err == nil {
			return r
		}
		log.Warnf("%s: %s: %v", Name, v.ID, err)
	}
	r, err := severity.FromScore(v.CVSSScore)
	if err != nil {
		log.Warnf("%s: %s: %v", Name, v.ID, err)
		return severity.Rating{Level: severity.LevelUnknown, Score: v.CVSSScore}
	}
	return r
}
