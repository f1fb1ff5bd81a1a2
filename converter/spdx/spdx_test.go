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

package spdx_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/depscan/depscan"
	"github.com/depscan/depscan/converter/spdx"
	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/purl"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/version"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
)

const (
	mainID    = "SPDXRef-Package-main-52fdfc07-2182-454f-963f-5f0f9a621d72"
	uuidPkg   = "9566c74d-1003-4c4d-bbbb-0407d1e2c649"
	uuidThird = "81855ad8-681d-4d86-91e9-1e00167939cb"
)

func mainPackage() *v2_3.Package {
	return &v2_3.Package{
		PackageName:           "main",
		PackageSPDXIdentifier: mainID,
		PackageVersion:        "0",
		PackageSupplier: &common.Supplier{
			Supplier:     spdx.NoAssertion,
			SupplierType: spdx.NoAssertion,
		},
		PackageDownloadLocation:   spdx.NoAssertion,
		IsFilesAnalyzedTagPresent: false,
	}
}

func relationships(pkgID string) []*v2_3.Relationship {
	rels := []*v2_3.Relationship{
		{
			RefA:         common.DocElementID{ElementRefID: "SPDXRef-DOCUMENT"},
			RefB:         common.DocElementID{ElementRefID: mainID},
			Relationship: "DESCRIBES",
		},
	}
	if pkgID == "" {
		return rels
	}
	return append(rels,
		&v2_3.Relationship{
			RefA:         common.DocElementID{ElementRefID: mainID},
			RefB:         common.DocElementID{ElementRefID: common.ElementID(pkgID)},
			Relationship: "CONTAINS",
		},
		&v2_3.Relationship{
			RefA:         common.DocElementID{ElementRefID: common.ElementID(pkgID)},
			RefB:         common.DocElementID{SpecialID: spdx.NoAssertion},
			Relationship: "CONTAINS",
		},
	)
}

var toolCreator = common.Creator{
	CreatorType: "Tool",
	Creator:     "depscan-" + version.ScannerVersion,
}

func TestToSPDX23(t *testing.T) {
	testCases := []struct {
		desc       string
		scanResult *result.ScanResult
		config     spdx.Config
		want       *v2_3.Document
	}{
		{
			desc: "package_with_no_custom_config",
			scanResult: &result.ScanResult{
				Inventory: inventory.Inventory{
					Packages: []*extractor.Package{{
						Name:     "Newtonsoft.Json",
						Version:  "13.0.1",
						PURLType: purl.TypeNuget,
						Plugins:  []string{"dotnet/packageslockjson"},
					}},
				},
			},
			want: &v2_3.Document{
				SPDXVersion:       "SPDX-2.3",
				DataLicense:       "CC0-1.0",
				SPDXIdentifier:    "DOCUMENT",
				DocumentName:      "depscan-generated SPDX",
				DocumentNamespace: spdx.DefaultNamespacePrefix + uuidThird,
				CreationInfo: &v2_3.CreationInfo{
					Creators: []common.Creator{toolCreator},
				},
				Packages: []*v2_3.Package{
					mainPackage(),
					{
						PackageName:           "Newtonsoft.Json",
						PackageSPDXIdentifier: common.ElementID("SPDXRef-Package-Newtonsoft.Json-" + uuidPkg),
						PackageVersion:        "13.0.1",
						PackageSupplier: &common.Supplier{
							Supplier:     spdx.NoAssertion,
							SupplierType: spdx.NoAssertion,
						},
						PackageDownloadLocation:   spdx.NoAssertion,
						PackageLicenseConcluded:   spdx.NoAssertion,
						PackageLicenseDeclared:    spdx.NoAssertion,
						IsFilesAnalyzedTagPresent: false,
						PackageSourceInfo:         "Identified by the dotnet/packageslockjson extractor",
						PackageExternalReferences: []*v2_3.PackageExternalReference{
							{
								Category: "PACKAGE-MANAGER",
								RefType:  "purl",
								Locator:  "pkg:nuget/Newtonsoft.Json@13.0.1",
							},
						},
					},
				},
				Relationships: relationships("SPDXRef-Package-Newtonsoft.Json-" + uuidPkg),
			},
		},
		{
			desc: "package_with_cpes_and_custom_config",
			scanResult: &result.ScanResult{
				Inventory: inventory.Inventory{
					Packages: []*extractor.Package{{
						Name:      "lodash",
						Version:   "4.17.21",
						PURLType:  purl.TypeNPM,
						Plugins:   []string{"javascript/packagelockjson"},
						Locations: []string{"a/package-lock.json", "b/package-lock.json", "c/package-lock.json"},
						CPEs: []string{
							"cpe:2.3:a:lodash:lodash:4.17.21:*:*:*:*:node.js:*:*",
							"cpe:/a:lodash:lodash:4.17.21::~~~node.js~~",
						},
					}},
				},
			},
			config: spdx.Config{
				DocumentName:      "Custom name",
				DocumentNamespace: "Custom namespace",
				Creators: []common.Creator{
					{
						CreatorType: "Person",
						Creator:     "Custom creator",
					},
				},
			},
			want: &v2_3.Document{
				SPDXVersion:       "SPDX-2.3",
				DataLicense:       "CC0-1.0",
				SPDXIdentifier:    "DOCUMENT",
				DocumentName:      "Custom name",
				DocumentNamespace: "Custom namespace",
				CreationInfo: &v2_3.CreationInfo{
					Creators: []common.Creator{
						toolCreator,
						{
							CreatorType: "Person",
							Creator:     "Custom creator",
						},
					},
				},
				Packages: []*v2_3.Package{
					mainPackage(),
					{
						PackageName:           "lodash",
						PackageSPDXIdentifier: common.ElementID("SPDXRef-Package-lodash-" + uuidPkg),
						PackageVersion:        "4.17.21",
						PackageSupplier: &common.Supplier{
							Supplier:     spdx.NoAssertion,
							SupplierType: spdx.NoAssertion,
						},
						PackageDownloadLocation:   spdx.NoAssertion,
						PackageLicenseConcluded:   spdx.NoAssertion,
						PackageLicenseDeclared:    spdx.NoAssertion,
						IsFilesAnalyzedTagPresent: false,
						PackageSourceInfo:         "Identified by the javascript/packagelockjson extractor from 3 locations, including a/package-lock.json and b/package-lock.json",
						PackageExternalReferences: []*v2_3.PackageExternalReference{
							{
								Category: "PACKAGE-MANAGER",
								RefType:  "purl",
								Locator:  "pkg:npm/lodash@4.17.21",
							},
							{
								Category: "SECURITY",
								RefType:  "cpe23Type",
								Locator:  "cpe:2.3:a:lodash:lodash:4.17.21:*:*:*:*:node.js:*:*",
							},
							{
								Category: "SECURITY",
								RefType:  "cpe22Type",
								Locator:  "cpe:/a:lodash:lodash:4.17.21::~~~node.js~~",
							},
						},
					},
				},
				Relationships: relationships("SPDXRef-Package-lodash-" + uuidPkg),
			},
		},
		{
			desc: "package_without_purl_is_skipped",
			scanResult: &result.ScanResult{
				Inventory: inventory.Inventory{
					Packages: []*extractor.Package{{
						Name:    "unknown",
						Version: "1.0",
					}},
				},
			},
			config: spdx.Config{DocumentNamespace: "ns"},
			want: &v2_3.Document{
				SPDXVersion:       "SPDX-2.3",
				DataLicense:       "CC0-1.0",
				SPDXIdentifier:    "DOCUMENT",
				DocumentName:      "depscan-generated SPDX",
				DocumentNamespace: "ns",
				CreationInfo: &v2_3.CreationInfo{
					Creators: []common.Creator{toolCreator},
				},
				Packages:      []*v2_3.Package{mainPackage()},
				Relationships: relationships(""),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			// Make UUIDs deterministic
			uuid.SetRand(rand.New(rand.NewSource(1)))
			got := spdx.ToSPDX23(tc.scanResult, tc.config)
			tc.want.CreationInfo.Created = got.CreationInfo.Created

			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(v2_3.Package{})); diff != "" {
				t.Errorf("spdx.ToSPDX23(%v): unexpected diff (-want +got):\n%s", tc.scanResult, diff)
			}
		})
	}
}

func TestToSPDX23HyphenatedPackageRefs(t *testing.T) {
	pkgs := []*extractor.Package{
		{Name: "is-number", Version: "7.0.0-beta", PURLType: purl.TypeNPM},
		{Name: "dash-version", Version: "-", PURLType: purl.TypeNPM},
	}
	depscan.Identify(pkgs)
	doc := spdx.ToSPDX23(&result.ScanResult{Inventory: inventory.Inventory{Packages: pkgs}}, spdx.Config{})

	want := map[string][]*v2_3.PackageExternalReference{
		"is-number": {
			{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: "pkg:npm/is-number@7.0.0-beta"},
			{Category: "SECURITY", RefType: "cpe23Type", Locator: "cpe:2.3:a:is-number:is-number:7.0.0-beta:*:*:*:*:node.js:*:*"},
			{Category: "SECURITY", RefType: "cpe22Type", Locator: "cpe:/a:is-number:is-number:7.0.0-beta::~~~node.js~~"},
		},
		"dash-version": {
			{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: "pkg:npm/dash-version@-"},
			{Category: "SECURITY", RefType: "cpe23Type", Locator: "cpe:2.3:a:dash-version:dash-version:-:*:*:*:*:node.js:*:*"},
		},
	}
	got := map[string][]*v2_3.PackageExternalReference{}
	for _, p := range doc.Packages {
		if p.PackageName == "main" {
			continue
		}
		got[p.PackageName] = p.PackageExternalReferences
		for _, ref := range p.PackageExternalReferences {
			if ref.RefType == "cpe22Type" && strings.Contains(ref.Locator, `\`) {
				t.Errorf("ToSPDX23(): %s has cpe22Type ref %q with a backslash", p.PackageName, ref.Locator)
			}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToSPDX23() external refs diff (-want +got):\n%s", diff)
	}
}
