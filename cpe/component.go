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

package cpe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/facebookincubator/nvdtools/wfn"
)

// Quote converts a raw string (e.g. a package version read from a lockfile)
// into a literal WFN value: the string is lower-cased and its punctuation is
// escaped. An empty string yields ANY.
//
// Hyphens are left unescaped so that the URI binding of "is-number" carries
// no backslash. A lone "-" stays escaped so it is not read as NA.
func Quote(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, nil
	}
	quoted, err := wfn.WFNize(strings.ToLower(raw))
	if err != nil {
		return Value{}, fmt.Errorf("quoting %q: %w", raw, err)
	}
	if raw != "-" {
		quoted = unescapeHyphens(quoted)
	}
	return Literal(quoted), nil
}

func unescapeHyphens(s string) string {
	if !strings.Contains(s, `\-`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] != '-' {
				sb.WriteByte('\\')
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// FromComponent builds a WFN from the raw vendor, product and version strings
// of a detected component. The vendor falls back to the product name when
// empty. Product and version are required.
func FromComponent(part Part, vendor, product, version string) (WFN, error) {
	if strings.TrimSpace(product) == "" {
		return WFN{}, errors.New("component has no product name")
	}
	if strings.TrimSpace(version) == "" {
		return WFN{}, fmt.Errorf("component %q has no version", product)
	}
	if strings.TrimSpace(vendor) == "" {
		vendor = product
	}

	w := WFN{Part: part}
	var err error
	if w.Vendor, err = Quote(vendor); err != nil {
		return WFN{}, fmt.Errorf("vendor: %w", err)
	}
	if w.Product, err = Quote(product); err != nil {
		return WFN{}, fmt.Errorf("product: %w", err)
	}
	if w.Product.IsAny() {
		return WFN{}, fmt.Errorf("product %q has no bindable characters", product)
	}
	if w.Version, err = Quote(version); err != nil {
		return WFN{}, fmt.Errorf("version: %w", err)
	}
	return w, nil
}
