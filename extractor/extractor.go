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

// Package extractor defines the package records produced by extraction plugins.
package extractor

import (
	"strings"

	"github.com/depscan/depscan/purl"
)

// Package is a software package or library found by an extractor.
type Package struct {
	// The package name as it appears in the ecosystem, e.g. "@babel/core".
	Name    string
	Version string
	// The purl type of the ecosystem, e.g. purl.TypeNPM.
	PURLType string
	// Paths of the files the package was found in.
	Locations []string
	// Names of the plugins that found the package. Set by the scanner.
	Plugins []string
	// Ecosystem specific data, e.g. *packagelockjson.Metadata.
	Metadata any
	// CPE names of the package, the 2.3 formatted string first and the 2.2
	// URI second. Set by the scanner.
	CPEs []string
}

// PURL returns the package URL of the package, or nil if the package has no
// purl type.
func (p *Package) PURL() *purl.PackageURL {
	if p.PURLType == "" || p.Name == "" {
		return nil
	}
	namespace, name := p.namespaceAndName()
	return &purl.PackageURL{
		Type:      p.PURLType,
		Namespace: namespace,
		Name:      name,
		Version:   p.Version,
	}
}

func (p *Package) namespaceAndName() (string, string) {
	switch p.PURLType {
	case purl.TypeNPM:
		// Scoped packages: "@scope/name".
		if strings.HasPrefix(p.Name, "@") {
			if scope, name, ok := strings.Cut(p.Name, "/"); ok {
				return scope, name
			}
		}
		return "", p.Name
	case purl.TypeNuget:
		return "", p.Name
	}
	if i := strings.LastIndex(p.Name, "/"); i >= 0 {
		return p.Name[:i], p.Name[i+1:]
	}
	return "", p.Name
}

// CPEVendorProduct guesses the CPE vendor and product of the package. npm
// scopes become the vendor; otherwise the vendor is left empty so that it
// defaults to the product name.
func (p *Package) CPEVendorProduct() (vendor, product string) {
	namespace, name := p.namespaceAndName()
	return strings.TrimPrefix(namespace, "@"), name
}

// CPETargetSW returns the target_sw value the NVD uses for packages of the
// ecosystem, or "" when there is no convention.
func (p *Package) CPETargetSW() string {
	switch p.PURLType {
	case purl.TypeNPM:
		return "node.js"
	case purl.TypeNuget:
		return ".net"
	}
	return ""
}
