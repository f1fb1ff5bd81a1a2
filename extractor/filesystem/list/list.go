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

// Package list provides a public list of the depscan extraction plugins.
package list

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/depscan/depscan/extractor/filesystem"
	"github.com/depscan/depscan/extractor/filesystem/language/dotnet/packageslockjson"
	"github.com/depscan/depscan/extractor/filesystem/language/dotnet/projectassetsjson"
	"github.com/depscan/depscan/extractor/filesystem/language/javascript/packagelockjson"
	"github.com/depscan/depscan/plugin"
)

// InitFn is the extractor initializer function.
type InitFn func() filesystem.Extractor

// InitMap is a map of extractor names to their initers.
type InitMap map[string][]InitFn

var (
	// JavascriptSource extractors read npm lockfiles.
	JavascriptSource = InitMap{
		packagelockjson.Name: {packagelockjson.NewDefault},
	}
	// DotnetSource extractors read NuGet restore outputs.
	DotnetSource = InitMap{
		packageslockjson.Name:  {packageslockjson.NewDefault},
		projectassetsjson.Name: {projectassetsjson.NewDefault},
	}

	// Default extractors that are recommended to be enabled.
	Default = concat(JavascriptSource, DotnetSource)
	// All extractors available from depscan.
	All = concat(JavascriptSource, DotnetSource)

	extractorNames = concat(All, InitMap{
		"javascript": vals(JavascriptSource),
		"dotnet":     vals(DotnetSource),
		"default":    vals(Default),
		"all":        vals(All),
	})
)

func concat(initMaps ...InitMap) InitMap {
	result := InitMap{}
	for _, m := range initMaps {
		maps.Copy(result, m)
	}
	return result
}

func vals(initMap InitMap) []InitFn {
	return slices.Concat(slices.Collect(maps.Values(initMap))...)
}

// FromCapabilities returns all extractors that can run under the specified
// capabilities of the scanning environment.
func FromCapabilities(capabs *plugin.Capabilities) []filesystem.Extractor {
	all := []filesystem.Extractor{}
	for _, initers := range All {
		for _, initer := range initers {
			all = append(all, initer())
		}
	}
	return plugin.FilterByCapabilities(all, capabs)
}

// ExtractorsFromNames returns a deduplicated list of extractors, sorted by
// name, from a list of extractor or group names. Names are case-insensitive.
func ExtractorsFromNames(names []string) ([]filesystem.Extractor, error) {
	resultMap := make(map[string]filesystem.Extractor)
	for _, n := range names {
		initers, ok := extractorNames[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("unknown extractor %q", n)
		}
		for _, initer := range initers {
			e := initer()
			if _, ok := resultMap[e.Name()]; !ok {
				resultMap[e.Name()] = e
			}
		}
	}
	result := slices.Collect(maps.Values(resultMap))
	slices.SortFunc(result, func(a, b filesystem.Extractor) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return result, nil
}

// ExtractorFromName returns a single extractor based on its exact name.
func ExtractorFromName(name string) (filesystem.Extractor, error) {
	initers, ok := extractorNames[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
	if len(initers) != 1 {
		return nil, fmt.Errorf("not an exact name for an extractor: %s", name)
	}
	e := initers[0]()
	if !strings.EqualFold(e.Name(), name) {
		return nil, fmt.Errorf("not an exact name for an extractor: %s", name)
	}
	return e, nil
}
