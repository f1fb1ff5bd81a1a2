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

// Package spdx provides utilities for creating SPDX SBOMs.
package spdx

import (
	"fmt"
	"regexp"
	"time"

	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/version"
	"github.com/google/uuid"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
)

const (
	// NoAssertion indicates that we don't claim anything about the value of a given field.
	NoAssertion = "NOASSERTION"
	// SPDXRefPrefix is the prefix used in reference IDs in the SPDX document.
	SPDXRefPrefix = "SPDXRef-"
	// SPDXDocumentID is the string identifier used to refer to the SPDX document.
	SPDXDocumentID = "SPDXRef-DOCUMENT"
	// DefaultNamespacePrefix is used to build a document namespace if none is configured.
	DefaultNamespacePrefix = "https://spdx.org/spdxdocs/depscan-"
)

// External reference categories and types.
const (
	categoryPackageManager = "PACKAGE-MANAGER"
	categorySecurity       = "SECURITY"
	refTypePURL            = "purl"
	refTypeCPE23           = "cpe23Type"
	refTypeCPE22           = "cpe22Type"
)

// spdx_id must only contain letters, numbers, "." and "-"
var spdxIDInvalidCharRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Config describes custom settings that should be applied to the generated SPDX file.
type Config struct {
	DocumentName      string
	DocumentNamespace string
	Creators          []common.Creator
}

// ToSPDX23 converts the depscan scan results into an SPDX v2.3 document.
func ToSPDX23(r *result.ScanResult, c Config) *v2_3.Document {
	packages := make([]*v2_3.Package, 0, len(r.Inventory.Packages)+1)

	// Add a main package that contains all other top-level packages.
	mainPackageID := SPDXRefPrefix + "Package-main-" + uuid.New().String()
	packages = append(packages, &v2_3.Package{
		PackageName:           "main",
		PackageSPDXIdentifier: common.ElementID(mainPackageID),
		PackageVersion:        "0",
		PackageSupplier: &common.Supplier{
			Supplier:     NoAssertion,
			SupplierType: NoAssertion,
		},
		PackageDownloadLocation:   NoAssertion,
		IsFilesAnalyzedTagPresent: false,
	})

	relationships := make([]*v2_3.Relationship, 0, 1+2*len(r.Inventory.Packages))
	relationships = append(relationships, &v2_3.Relationship{
		RefA:         toDocElementID(SPDXDocumentID),
		RefB:         toDocElementID(mainPackageID),
		Relationship: "DESCRIBES",
	})

	for _, pkg := range r.Inventory.Packages {
		p := pkg.PURL()
		if p == nil {
			log.Warnf("Package %v has no PURL, skipping", pkg)
			continue
		}
		pName := p.Name
		pVersion := p.Version
		if pName == "" || pVersion == "" {
			log.Warnf("Package %v PURL name or version empty, skipping", pkg)
			continue
		}
		pID := SPDXRefPrefix + "Package-" + replaceSPDXIDInvalidChars(pName) + "-" + uuid.New().String()

		packages = append(packages, &v2_3.Package{
			PackageName:           pkg.Name,
			PackageSPDXIdentifier: common.ElementID(pID),
			PackageVersion:        pVersion,
			PackageSupplier: &common.Supplier{
				Supplier:     NoAssertion,
				SupplierType: NoAssertion,
			},
			PackageDownloadLocation:   NoAssertion,
			PackageLicenseConcluded:   NoAssertion,
			PackageLicenseDeclared:    NoAssertion,
			IsFilesAnalyzedTagPresent: false,
			PackageSourceInfo:         sourceInfo(pkg),
			PackageExternalReferences: externalRefs(pkg, p.String()),
		})
		relationships = append(relationships, &v2_3.Relationship{
			RefA:         toDocElementID(mainPackageID),
			RefB:         toDocElementID(pID),
			Relationship: "CONTAINS",
		})
		relationships = append(relationships, &v2_3.Relationship{
			RefA:         toDocElementID(pID),
			RefB:         toDocElementID(NoAssertion),
			Relationship: "CONTAINS",
		})
	}
	name := c.DocumentName
	if name == "" {
		name = "depscan-generated SPDX"
	}
	namespace := c.DocumentNamespace
	if namespace == "" {
		namespace = DefaultNamespacePrefix + uuid.New().String()
	}
	creators := []common.Creator{
		{
			CreatorType: "Tool",
			Creator:     "depscan-" + version.ScannerVersion,
		},
	}
	creators = append(creators, c.Creators...)
	return &v2_3.Document{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXIdentifier:    "DOCUMENT",
		DocumentName:      name,
		DocumentNamespace: namespace,
		CreationInfo: &v2_3.CreationInfo{
			Creators: creators,
			Created:  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		},
		Packages:      packages,
		Relationships: relationships,
	}
}

func sourceInfo(pkg *extractor.Package) string {
	info := ""
	if len(pkg.Plugins) > 0 {
		info = fmt.Sprintf("Identified by the %s extractor", pkg.Plugins[0])
	}
	if len(pkg.Locations) == 1 {
		info += " from " + pkg.Locations[0]
	} else if l := len(pkg.Locations); l > 1 {
		info += fmt.Sprintf(" from %d locations, including %s and %s", l, pkg.Locations[0], pkg.Locations[1])
	}
	return info
}

// externalRefs lists the purl and, if the package was identified, its CPE
// names. pkg.CPEs holds the 2.3 formatted string first and the 2.2 URI second.
func externalRefs(pkg *extractor.Package, purl string) []*v2_3.PackageExternalReference {
	refs := []*v2_3.PackageExternalReference{
		{
			Category: categoryPackageManager,
			RefType:  refTypePURL,
			Locator:  purl,
		},
	}
	cpeTypes := []string{refTypeCPE23, refTypeCPE22}
	for i, cpe := range pkg.CPEs {
		if i >= len(cpeTypes) {
			break
		}
		refs = append(refs, &v2_3.PackageExternalReference{
			Category: categorySecurity,
			RefType:  cpeTypes[i],
			Locator:  cpe,
		})
	}
	return refs
}

func replaceSPDXIDInvalidChars(id string) string {
	return spdxIDInvalidCharRe.ReplaceAllString(id, "-")
}

func toDocElementID(id string) common.DocElementID {
	if id == NoAssertion {
		return common.DocElementID{
			SpecialID: NoAssertion,
		}
	}
	return common.DocElementID{
		ElementRefID: common.ElementID(id),
	}
}
