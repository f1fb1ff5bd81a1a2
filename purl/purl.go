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

// Package purl builds and parses package URLs (https://github.com/package-url/purl-spec).
// It is a thin layer over github.com/package-url/packageurl-go restricted to the
// ecosystems depscan knows about.
package purl

import (
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"
)

// Known purl types.
// https://github.com/package-url/purl-spec/blob/master/PURL-TYPES.rst
const (
	// TypeNPM is a pkg:npm purl.
	TypeNPM = "npm"
	// TypeNuget is a pkg:nuget purl.
	TypeNuget = "nuget"
	// TypeMaven is a pkg:maven purl.
	TypeMaven = "maven"
	// TypePyPi is a pkg:pypi purl.
	TypePyPi = "pypi"
	// TypeGolang is a pkg:golang purl.
	TypeGolang = "golang"
	// TypeCargo is a pkg:cargo purl.
	TypeCargo = "cargo"
	// TypeGem is a pkg:gem purl.
	TypeGem = "gem"
	// TypeComposer is a pkg:composer purl.
	TypeComposer = "composer"
	// TypeGeneric is a pkg:generic purl.
	TypeGeneric = "generic"
)

var knownTypes = map[string]bool{
	TypeNPM:      true,
	TypeNuget:    true,
	TypeMaven:    true,
	TypePyPi:     true,
	TypeGolang:   true,
	TypeCargo:    true,
	TypeGem:      true,
	TypeComposer: true,
	TypeGeneric:  true,
}

// PackageURL holds the components of a package URL.
type PackageURL struct {
	Type       string
	Namespace  string
	Name       string
	Version    string
	Qualifiers Qualifiers
	Subpath    string
}

// Qualifiers is an ordered list of key=value pairs.
type Qualifiers packageurl.Qualifiers

// QualifiersFromMap builds Qualifiers sorted by key. Empty values are dropped
// since the purl spec does not allow them.
func QualifiersFromMap(mm map[string]string) Qualifiers {
	filtered := make(map[string]string, len(mm))
	for k, v := range mm {
		if v != "" {
			filtered[k] = v
		}
	}
	return Qualifiers(packageurl.QualifiersFromMap(filtered))
}

func (p PackageURL) toLib() *packageurl.PackageURL {
	return &packageurl.PackageURL{
		Type:       p.Type,
		Namespace:  p.Namespace,
		Name:       p.Name,
		Version:    p.Version,
		Qualifiers: packageurl.Qualifiers(p.Qualifiers),
		Subpath:    p.Subpath,
	}
}

func (p PackageURL) String() string {
	return p.toLib().String()
}

// Coordinates returns the purl without qualifiers and subpath, the form that
// vulnerability databases key their reports on.
func (p PackageURL) Coordinates() string {
	c := p
	c.Qualifiers = nil
	c.Subpath = ""
	return c.String()
}

// FromString parses a package URL string. Types outside the known set are
// rejected.
func FromString(s string) (PackageURL, error) {
	p, err := packageurl.FromString(s)
	if err != nil {
		return PackageURL{}, fmt.Errorf("failed to decode PURL string %q: %w", s, err)
	}
	if !knownTypes[strings.ToLower(p.Type)] {
		return PackageURL{}, fmt.Errorf("invalid PURL type %q", p.Type)
	}
	return PackageURL{
		Type:       p.Type,
		Namespace:  p.Namespace,
		Name:       p.Name,
		Version:    p.Version,
		Qualifiers: Qualifiers(p.Qualifiers),
		Subpath:    p.Subpath,
	}, nil
}
