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

// Package converter provides utility functions for converting depscan's scan results to
// standardized SBOM formats.
package converter

import (
	"strconv"
	"strings"
	"time"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/severity"
	"github.com/depscan/depscan/version"
	"github.com/google/uuid"
)

// CDXConfig describes custom settings that should be applied to the generated CDX file.
type CDXConfig struct {
	ComponentName    string
	ComponentType    string
	ComponentVersion string
	Authors          []string
}

// ToCDX converts the depscan scan results into a CycloneDX document.
func ToCDX(r *result.ScanResult, c CDXConfig) *cyclonedx.BOM {
	bom := cyclonedx.NewBOM()
	bom.Metadata = &cyclonedx.Metadata{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Component: &cyclonedx.Component{
			Name:    c.ComponentName,
			Type:    cyclonedx.ComponentType(c.ComponentType),
			Version: c.ComponentVersion,
			BOMRef:  uuid.New().String(),
		},
		Tools: &cyclonedx.ToolsChoice{
			Components: &[]cyclonedx.Component{
				{
					Type:    cyclonedx.ComponentTypeApplication,
					Name:    "depscan",
					Version: version.ScannerVersion,
				},
			},
		},
	}
	if len(c.Authors) > 0 {
		authors := make([]cyclonedx.OrganizationalContact, 0, len(c.Authors))
		for _, author := range c.Authors {
			authors = append(authors, cyclonedx.OrganizationalContact{
				Name: author,
			})
		}
		bom.Metadata.Authors = &authors
	}

	refs := make(map[*extractor.Package]string, len(r.Inventory.Packages))
	comps := make([]cyclonedx.Component, 0, len(r.Inventory.Packages))
	for _, pkg := range r.Inventory.Packages {
		comp := cyclonedx.Component{
			BOMRef:  uuid.New().String(),
			Type:    cyclonedx.ComponentTypeLibrary,
			Name:    pkg.Name,
			Version: pkg.Version,
		}
		if p := pkg.PURL(); p != nil {
			comp.PackageURL = p.String()
		}
		if len(pkg.CPEs) > 0 {
			comp.CPE = pkg.CPEs[0]
		}
		if len(pkg.Locations) > 0 {
			occ := make([]cyclonedx.EvidenceOccurrence, 0, len(pkg.Locations))
			for _, loc := range pkg.Locations {
				occ = append(occ, cyclonedx.EvidenceOccurrence{
					Location: loc,
				})
			}
			comp.Evidence = &cyclonedx.Evidence{
				Occurrences: &occ,
			}
		}
		refs[pkg] = comp.BOMRef
		comps = append(comps, comp)
	}
	bom.Components = &comps

	if vulns := toCDXVulns(r.Inventory.PackageVulns, refs); len(vulns) > 0 {
		bom.Vulnerabilities = &vulns
	}
	return bom
}

// toCDXVulns emits one vulnerability per ID, affecting every package it was
// reported for. The order of first appearance is kept.
func toCDXVulns(pvs []*inventory.PackageVuln, refs map[*extractor.Package]string) []cyclonedx.Vulnerability {
	var vulns []cyclonedx.Vulnerability
	index := make(map[string]int)
	for _, pv := range pvs {
		ref, ok := refs[pv.Package]
		if !ok {
			continue
		}
		id := vulnID(pv.Vulnerability)
		if i, ok := index[id]; ok {
			affects := append(*vulns[i].Affects, cyclonedx.Affects{Ref: ref})
			vulns[i].Affects = &affects
			continue
		}
		index[id] = len(vulns)
		vulns = append(vulns, toCDXVuln(id, pv, ref))
	}
	return vulns
}

func vulnID(v inventory.Vulnerability) string {
	if v.CVE != "" {
		return v.CVE
	}
	return v.ID
}

func toCDXVuln(id string, pv *inventory.PackageVuln, ref string) cyclonedx.Vulnerability {
	v := pv.Vulnerability
	cv := cyclonedx.Vulnerability{
		ID:          id,
		Description: v.Description,
		Detail:      v.Title,
		Affects:     &[]cyclonedx.Affects{{Ref: ref}},
	}
	if v.Reference != "" {
		src := &cyclonedx.Source{URL: v.Reference}
		if len(pv.Plugins) > 0 {
			src.Name = pv.Plugins[0]
		}
		cv.Source = src
	}
	if v.ID != "" && v.ID != id {
		cv.References = &[]cyclonedx.VulnerabilityReference{{ID: v.ID, Source: cv.Source}}
	}
	if v.Severity.Level != severity.LevelUnknown || v.CVSSVector != "" {
		rating := cyclonedx.VulnerabilityRating{
			Severity: toCDXSeverity(v.Severity.Level),
			Method:   scoringMethod(v.CVSSVector),
			Vector:   v.CVSSVector,
		}
		if v.Severity.Level != severity.LevelUnknown {
			score := v.Severity.Score
			rating.Score = &score
		}
		cv.Ratings = &[]cyclonedx.VulnerabilityRating{rating}
	}
	if cwe, ok := parseCWE(v.CWE); ok {
		cv.CWEs = &[]int{cwe}
	}
	return cv
}

func toCDXSeverity(l severity.Level) cyclonedx.Severity {
	switch l {
	case severity.LevelNone:
		return cyclonedx.SeverityNone
	case severity.LevelLow:
		return cyclonedx.SeverityLow
	case severity.LevelMedium:
		return cyclonedx.SeverityMedium
	case severity.LevelHigh:
		return cyclonedx.SeverityHigh
	case severity.LevelCritical:
		return cyclonedx.SeverityCritical
	}
	return cyclonedx.SeverityUnknown
}

func scoringMethod(vector string) cyclonedx.ScoringMethod {
	switch {
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		return cyclonedx.ScoringMethodCVSSv31
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		return cyclonedx.ScoringMethodCVSSv3
	case strings.HasPrefix(vector, "CVSS:4.0/"):
		return cyclonedx.ScoringMethodCVSSv4
	case strings.HasPrefix(vector, "AV:"), strings.HasPrefix(vector, "(AV:"):
		return cyclonedx.ScoringMethodCVSSv2
	}
	return cyclonedx.ScoringMethodOther
}

// parseCWE accepts "CWE-79" as well as a bare "79".
func parseCWE(s string) (int, bool) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "CWE-")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
