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

// Package cpe implements CPE Well-Formed Names (WFN) and their bindings to the
// CPE 2.2 URI and CPE 2.3 Formatted String forms as described in NIST IR 7695:
// https://nvlpubs.nist.gov/nistpubs/Legacy/IR/nistir7695.pdf
package cpe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnterminatedEscape is returned by Validate for a literal that ends in a
// backslash with no character to escape.
var ErrUnterminatedEscape = errors.New("unterminated escape sequence")

// ErrInvalidPart is returned by Validate for a Part outside a, o and h.
var ErrInvalidPart = errors.New("invalid CPE part")

// Part is the platform class of a WFN. Converting any other number to a Part
// yields a WFN that Validate rejects and whose bindings are undefined.
type Part uint8

// Part values.
const (
	Application Part = iota
	OperatingSystem
	HardwareDevice
)

// String returns the single character code of the part.
func (p Part) String() string {
	switch p {
	case Application:
		return "a"
	case OperatingSystem:
		return "o"
	case HardwareDevice:
		return "h"
	default:
		return fmt.Sprintf("Part(%d)", uint8(p))
	}
}

// Valid reports whether p is one of the defined parts.
func (p Part) Valid() bool { return p <= HardwareDevice }

// ParsePart returns the Part for one of the codes "a", "o" or "h".
func ParsePart(s string) (Part, error) {
	switch s {
	case "a":
		return Application, nil
	case "o":
		return OperatingSystem, nil
	case "h":
		return HardwareDevice, nil
	}
	return Application, fmt.Errorf("invalid CPE part %q, want one of a, o, h", s)
}

type valueKind uint8

const (
	kindAny valueKind = iota
	kindNA
	kindLiteral
)

// Value is a WFN attribute value: ANY, NA or a literal string.
// The zero Value is ANY.
//
// Literal text is expected in WFN form: reserved punctuation is escaped with a
// backslash, while unescaped '*' and '?' are positional wildcards.
type Value struct {
	kind valueKind
	text string
}

// Literal returns a literal attribute value. The empty string is treated as
// ANY since both mean that the attribute was left unset.
func Literal(text string) Value {
	if text == "" {
		return Value{}
	}
	return Value{kind: kindLiteral, text: text}
}

// NA returns the "not applicable" attribute value.
func NA() Value { return Value{kind: kindNA} }

// ParseValue maps the keywords "ANY" and "NA" to their logical values and
// anything else to a literal.
func ParseValue(s string) Value {
	switch s {
	case "ANY":
		return Value{}
	case "NA":
		return NA()
	}
	return Literal(s)
}

// IsAny reports whether v is the ANY wildcard.
func (v Value) IsAny() bool { return v.kind == kindAny }

// IsNA reports whether v is NA.
func (v Value) IsNA() bool { return v.kind == kindNA }

// Literal returns the literal text of v and whether v is a literal.
func (v Value) Literal() (string, bool) {
	return v.text, v.kind == kindLiteral
}

// String returns the value as it appears in a WFN display string.
func (v Value) String() string {
	switch v.kind {
	case kindNA:
		return "NA"
	case kindLiteral:
		return `"` + v.text + `"`
	default:
		return "ANY"
	}
}

// Validate returns an error if the literal text ends in an unterminated escape.
func (v Value) Validate() error {
	if v.kind != kindLiteral {
		return nil
	}
	escaped := false
	for i := 0; i < len(v.text); i++ {
		if escaped {
			escaped = false
			continue
		}
		if v.text[i] == '\\' {
			escaped = true
		}
	}
	if escaped {
		return ErrUnterminatedEscape
	}
	return nil
}

// WFN is a CPE Well-Formed Name.
type WFN struct {
	Part      Part
	Vendor    Value
	Product   Value
	Version   Value
	Update    Value
	Edition   Value
	Language  Value
	SWEdition Value
	TargetSW  Value
	TargetHW  Value
	Other     Value
}

// New returns a WFN with the given part, vendor, product and version. All other
// attributes are ANY. Empty strings are treated as ANY.
func New(part Part, vendor, product, version string) WFN {
	return WFN{
		Part:    part,
		Vendor:  Literal(vendor),
		Product: Literal(product),
		Version: Literal(version),
	}
}

type namedValue struct {
	name  string
	value Value
}

// attributes returns the ten non-part attributes in binding order.
func (w WFN) attributes() []namedValue {
	return []namedValue{
		{"vendor", w.Vendor},
		{"product", w.Product},
		{"version", w.Version},
		{"update", w.Update},
		{"edition", w.Edition},
		{"language", w.Language},
		{"sw_edition", w.SWEdition},
		{"target_sw", w.TargetSW},
		{"target_hw", w.TargetHW},
		{"other", w.Other},
	}
}

// Validate checks the part and every literal attribute for unterminated
// escapes.
func (w WFN) Validate() error {
	if !w.Part.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidPart, w.Part)
	}
	for _, a := range w.attributes() {
		if err := a.value.Validate(); err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return nil
}

// String returns the WFN display form, e.g.
// wfn:[part="a",vendor="microsoft",product="internet_explorer",version=NA].
// ANY attributes are omitted.
func (w WFN) String() string {
	var sb strings.Builder
	sb.WriteString(`wfn:[part="`)
	sb.WriteString(w.Part.String())
	sb.WriteString(`"`)
	for _, a := range w.attributes() {
		if a.value.IsAny() {
			continue
		}
		sb.WriteString(",")
		sb.WriteString(a.name)
		sb.WriteString("=")
		sb.WriteString(a.value.String())
	}
	sb.WriteString("]")
	return sb.String()
}
