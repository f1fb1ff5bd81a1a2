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

// Package inventory holds the results of a scan: the packages found and the
// vulnerabilities matched to them.
package inventory

import (
	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/severity"
)

// Inventory is the result of running extractors and enrichers.
type Inventory struct {
	Packages     []*extractor.Package
	PackageVulns []*PackageVuln
}

// Append adds the contents of the given inventories to inv.
func (inv *Inventory) Append(other ...Inventory) {
	for _, o := range other {
		inv.Packages = append(inv.Packages, o.Packages...)
		inv.PackageVulns = append(inv.PackageVulns, o.PackageVulns...)
	}
}

// IsEmpty reports whether the inventory holds nothing.
func (inv Inventory) IsEmpty() bool {
	return len(inv.Packages) == 0 && len(inv.PackageVulns) == 0
}

// VulnsFor returns the vulnerabilities recorded for pkg.
func (inv Inventory) VulnsFor(pkg *extractor.Package) []*PackageVuln {
	var result []*PackageVuln
	for _, pv := range inv.PackageVulns {
		if pv.Package == pkg {
			result = append(result, pv)
		}
	}
	return result
}

// PackageVuln is a vulnerability affecting one package.
type PackageVuln struct {
	Vulnerability Vulnerability
	Package       *extractor.Package
	// The plugins that reported the vulnerability.
	Plugins []string
}

// Vulnerability is a known vulnerability as reported by a vulnerability database.
type Vulnerability struct {
	// Database specific identifier.
	ID          string
	Title       string
	Description string
	CVE         string
	CWE         string
	CVSSScore   float64
	CVSSVector  string
	// Link to the database entry.
	Reference string
	Severity  severity.Rating
}
