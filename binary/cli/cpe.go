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

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/depscan/depscan/cpe"
)

// CPEFlags are the flags of the cpe subcommand, one per WFN attribute.
type CPEFlags struct {
	Part      string
	Vendor    string
	Product   string
	Version   string
	Update    string
	Edition   string
	Language  string
	SWEdition string
	TargetSW  string
	TargetHW  string
	Other     string
	// If set, the attribute values are WFN literals with their punctuation
	// already escaped. Otherwise they are raw strings and get quoted.
	Quoted bool
}

// WFN builds the WFN described by the flags. The keywords ANY and NA and the
// empty string keep their logical meaning.
func (c *CPEFlags) WFN() (cpe.WFN, error) {
	part := c.Part
	if part == "" {
		part = "a"
	}
	p, err := cpe.ParsePart(part)
	if err != nil {
		return cpe.WFN{}, err
	}
	if c.Product == "" {
		return cpe.WFN{}, errors.New("--product is required")
	}
	w := cpe.WFN{Part: p}
	attrs := []struct {
		name string
		raw  string
		dst  *cpe.Value
	}{
		{"vendor", c.Vendor, &w.Vendor},
		{"product", c.Product, &w.Product},
		{"version", c.Version, &w.Version},
		{"update", c.Update, &w.Update},
		{"edition", c.Edition, &w.Edition},
		{"language", c.Language, &w.Language},
		{"sw-edition", c.SWEdition, &w.SWEdition},
		{"target-sw", c.TargetSW, &w.TargetSW},
		{"target-hw", c.TargetHW, &w.TargetHW},
		{"other", c.Other, &w.Other},
	}
	for _, a := range attrs {
		v, err := c.value(a.raw)
		if err != nil {
			return cpe.WFN{}, fmt.Errorf("--%s: %w", a.name, err)
		}
		*a.dst = v
	}
	if err := w.Validate(); err != nil {
		return cpe.WFN{}, err
	}
	return w, nil
}

func (c *CPEFlags) value(raw string) (cpe.Value, error) {
	if c.Quoted || raw == "ANY" || raw == "NA" {
		return cpe.ParseValue(raw), nil
	}
	return cpe.Quote(raw)
}

// PrintCPE writes the WFN and its two bindings to w, one per line.
func PrintCPE(w io.Writer, wfn cpe.WFN) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", wfn, wfn.BindToFmtString(), wfn.BindToURI())
	return err
}
