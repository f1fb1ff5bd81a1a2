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

package purl_test

import (
	"testing"

	"github.com/depscan/depscan/purl"
	"github.com/google/go-cmp/cmp"
	"github.com/package-url/packageurl-go"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		name string
		purl string
		want purl.PackageURL
	}{
		{
			name: "npm",
			purl: "pkg:npm/lodash@4.17.21",
			want: purl.PackageURL{
				Type:    purl.TypeNPM,
				Name:    "lodash",
				Version: "4.17.21",
			},
		}, {
			name: "npm_scoped",
			purl: "pkg:npm/%40babel/core@7.24.0",
			want: purl.PackageURL{
				Type:      purl.TypeNPM,
				Namespace: "@babel",
				Name:      "core",
				Version:   "7.24.0",
			},
		}, {
			name: "nuget",
			purl: "pkg:nuget/Newtonsoft.Json@13.0.3",
			want: purl.PackageURL{
				Type:    purl.TypeNuget,
				Name:    "Newtonsoft.Json",
				Version: "13.0.3",
			},
		}, {
			name: "maven_with_qualifiers",
			purl: "pkg:maven/org.apache.xmlgraphics/batik-anim@1.9.1?classifier=dist&type=zip",
			want: purl.PackageURL{
				Type:       purl.TypeMaven,
				Namespace:  "org.apache.xmlgraphics",
				Name:       "batik-anim",
				Version:    "1.9.1",
				Qualifiers: purl.QualifiersFromMap(map[string]string{"classifier": "dist", "type": "zip"}),
			},
		}, {
			name: "golang",
			purl: "pkg:golang/package-name@1.2.3",
			want: purl.PackageURL{
				Type:    purl.TypeGolang,
				Name:    "package-name",
				Version: "1.2.3",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := purl.FromString(test.purl)
			if err != nil {
				t.Fatalf("FromString(%+v) error: %v", test.purl, err)
			}
			if diff := cmp.Diff(test.want.String(), got.String()); diff != "" {
				t.Fatalf("FromString(%+v) returned unexpected result; diff (-want +got):\n%s", test.purl, diff)
			}
		})
	}
}

func TestFromStringInvalidPURL(t *testing.T) {
	tests := []struct {
		name string
		purl string
	}{
		{
			name: "missing type",
			purl: "pkg:/package-name@1.2.3",
		}, {
			name: "unknown type",
			purl: "pkg:unknown/package-name@1.2.3",
		}, {
			name: "not a purl",
			purl: "cpe:2.3:a:lodash:lodash:4.17.21:*:*:*:*:*:*:*",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := purl.FromString(test.purl); err == nil {
				t.Fatalf("FromString(%+v) got no error, expected one", test.purl)
			}
		})
	}
}

func TestCoordinates(t *testing.T) {
	p := purl.PackageURL{
		Type:       purl.TypeNPM,
		Namespace:  "@types",
		Name:       "node",
		Version:    "20.1.0",
		Qualifiers: purl.QualifiersFromMap(map[string]string{"arch": "x64"}),
		Subpath:    "lib",
	}
	if got, want := p.Coordinates(), "pkg:npm/%40types/node@20.1.0"; got != want {
		t.Errorf("Coordinates() = %q, want %q", got, want)
	}
}

func TestQualifiersFromMap(t *testing.T) {
	tests := []struct {
		name           string
		qualifierMap   map[string]string
		wantQualifiers purl.Qualifiers
	}{
		{
			name: "sorted by key",
			qualifierMap: map[string]string{
				"qual":  "ifier",
				"other": "qualifier",
			},
			wantQualifiers: []packageurl.Qualifier{
				{Key: "other", Value: "qualifier"},
				{Key: "qual", Value: "ifier"},
			},
		}, {
			name: "filters empty values",
			qualifierMap: map[string]string{
				"empty": "",
				"other": "qualifier",
			},
			wantQualifiers: []packageurl.Qualifier{
				{Key: "other", Value: "qualifier"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := purl.QualifiersFromMap(test.qualifierMap)
			if diff := cmp.Diff(test.wantQualifiers, got); diff != "" {
				t.Fatalf("QualifiersFromMap(%+v) returned unexpected result; diff (-want +got):\n%s", test.qualifierMap, diff)
			}
		})
	}
}
