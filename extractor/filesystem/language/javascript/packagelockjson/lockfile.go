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

package packagelockjson

// lockFile is the subset of npm's package-lock.json that the extractor reads.
type lockFile struct {
	Version int `json:"lockfileVersion"`
	// lockfileVersion 1 uses "dependencies".
	Dependencies map[string]lockDependency `json:"dependencies,omitempty"`
	// lockfileVersion 2+ uses "packages", keyed by install path.
	Packages map[string]lockPackage `json:"packages,omitempty"`
}

// lockDependency is an installed dependency in lockfileVersion 1.
type lockDependency struct {
	// For an aliased package, Version is like "npm:[name]@[version]".
	Version      string                    `json:"version"`
	Resolved     string                    `json:"resolved"`
	Dev          bool                      `json:"dev,omitempty"`
	Optional     bool                      `json:"optional,omitempty"`
	Dependencies map[string]lockDependency `json:"dependencies,omitempty"`
}

func (dep lockDependency) depGroups() []string {
	var groups []string
	if dep.Dev {
		groups = append(groups, "dev")
	}
	if dep.Optional {
		groups = append(groups, "optional")
	}
	return groups
}

// lockPackage is an installed dependency in lockfileVersion 2+.
type lockPackage struct {
	// For an aliased package, Name is the real package name.
	Name        string `json:"name,omitempty"`
	Version     string `json:"version"`
	Resolved    string `json:"resolved"`
	Link        bool   `json:"link,omitempty"`
	Dev         bool   `json:"dev,omitempty"`
	DevOptional bool   `json:"devOptional,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	InBundle    bool   `json:"inBundle,omitempty"`
}

// depGroups returns "bundled", "dev" and "optional" as they apply. No group
// means a production dependency.
func (pkg lockPackage) depGroups() []string {
	var groups []string
	if pkg.InBundle {
		groups = append(groups, "bundled")
	}
	if pkg.DevOptional {
		return append(groups, "dev", "optional")
	}
	if pkg.Dev {
		groups = append(groups, "dev")
	}
	if pkg.Optional {
		groups = append(groups, "optional")
	}
	return groups
}
