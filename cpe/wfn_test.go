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

package cpe_test

import (
	"errors"
	"testing"

	"github.com/depscan/depscan/cpe"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPart(t *testing.T) {
	tests := []struct {
		code    string
		want    cpe.Part
		wantErr bool
	}{
		{code: "a", want: cpe.Application},
		{code: "o", want: cpe.OperatingSystem},
		{code: "h", want: cpe.HardwareDevice},
		{code: "A", wantErr: true},
		{code: "", wantErr: true},
		{code: "application", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := cpe.ParsePart(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePart(%q) error: %v, want error: %v", tt.code, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParsePart(%q) = %v, want %v", tt.code, got, tt.want)
			}
			if got.String() != tt.code {
				t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.code)
			}
		})
	}
}

func TestPartValid(t *testing.T) {
	for _, p := range []cpe.Part{cpe.Application, cpe.OperatingSystem, cpe.HardwareDevice} {
		if !p.Valid() {
			t.Errorf("%v.Valid() = false, want true", p)
		}
	}
	p := cpe.Part(7)
	if p.Valid() {
		t.Errorf("Part(7).Valid() = true, want false")
	}
	w := cpe.New(p, "acme", "tool", "1")
	if err := w.Validate(); !errors.Is(err, cpe.ErrInvalidPart) {
		t.Errorf("%v.Validate() = %v, want %v", w, err, cpe.ErrInvalidPart)
	}
}

func TestPartZeroValueIsApplication(t *testing.T) {
	var p cpe.Part
	if p != cpe.Application {
		t.Errorf("zero Part = %v, want %v", p, cpe.Application)
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		name        string
		value       cpe.Value
		wantAny     bool
		wantNA      bool
		wantLiteral string
		wantIsLit   bool
		wantString  string
	}{
		{
			name:       "zero",
			value:      cpe.Value{},
			wantAny:    true,
			wantString: "ANY",
		},
		{
			name:       "empty_literal",
			value:      cpe.Literal(""),
			wantAny:    true,
			wantString: "ANY",
		},
		{
			name:       "na",
			value:      cpe.NA(),
			wantNA:     true,
			wantString: "NA",
		},
		{
			name:        "literal",
			value:       cpe.Literal(`8\.0`),
			wantLiteral: `8\.0`,
			wantIsLit:   true,
			wantString:  `"8\.0"`,
		},
		{
			name:       "parsed_any",
			value:      cpe.ParseValue("ANY"),
			wantAny:    true,
			wantString: "ANY",
		},
		{
			name:       "parsed_na",
			value:      cpe.ParseValue("NA"),
			wantNA:     true,
			wantString: "NA",
		},
		{
			name:       "parsed_empty",
			value:      cpe.ParseValue(""),
			wantAny:    true,
			wantString: "ANY",
		},
		{
			name:        "parsed_literal",
			value:       cpe.ParseValue("na"),
			wantLiteral: "na",
			wantIsLit:   true,
			wantString:  `"na"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsAny(); got != tt.wantAny {
				t.Errorf("IsAny() = %v, want %v", got, tt.wantAny)
			}
			if got := tt.value.IsNA(); got != tt.wantNA {
				t.Errorf("IsNA() = %v, want %v", got, tt.wantNA)
			}
			lit, ok := tt.value.Literal()
			if ok != tt.wantIsLit || lit != tt.wantLiteral {
				t.Errorf("Literal() = (%q, %v), want (%q, %v)", lit, ok, tt.wantLiteral, tt.wantIsLit)
			}
			if got := tt.value.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestEmptyLiteralEqualsAny(t *testing.T) {
	if diff := cmp.Diff(cpe.Value{}, cpe.Literal(""), cmp.AllowUnexported(cpe.Value{})); diff != "" {
		t.Errorf("Literal(\"\") diff from ANY (-want +got):\n%s", diff)
	}
	a := cpe.WFN{Part: cpe.Application, Vendor: cpe.Literal("v")}
	b := cpe.WFN{Part: cpe.Application, Vendor: cpe.Literal("v"), Product: cpe.Literal("")}
	if a.BindToURI() != b.BindToURI() || a.BindToFmtString() != b.BindToFmtString() {
		t.Errorf("empty literal binds differently from ANY")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		wfn     cpe.WFN
		wantErr error
	}{
		{
			name: "valid",
			wfn: cpe.WFN{
				Vendor:  cpe.Literal(`foo\\bar`),
				Product: cpe.Literal(`big\$money`),
				Version: cpe.NA(),
			},
		},
		{
			name:    "trailing_backslash",
			wfn:     cpe.WFN{Vendor: cpe.Literal("acme"), Product: cpe.Literal(`tool\`)},
			wantErr: cpe.ErrUnterminatedEscape,
		},
		{
			name:    "odd_backslash_run",
			wfn:     cpe.WFN{Other: cpe.Literal(`x\\\`)},
			wantErr: cpe.ErrUnterminatedEscape,
		},
		{
			name: "even_backslash_run",
			wfn:  cpe.WFN{Other: cpe.Literal(`x\\\\`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wfn.Validate()
			if diff := cmp.Diff(tt.wantErr, err, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("Validate() error diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateNamesAttribute(t *testing.T) {
	w := cpe.WFN{TargetSW: cpe.Literal(`node\`)}
	err := w.Validate()
	if !errors.Is(err, cpe.ErrUnterminatedEscape) {
		t.Fatalf("Validate() = %v, want %v", err, cpe.ErrUnterminatedEscape)
	}
	if got, want := err.Error(), "target_sw: unterminated escape sequence"; got != want {
		t.Errorf("Validate() = %q, want %q", got, want)
	}
}

func TestWFNString(t *testing.T) {
	w := cpe.WFN{
		Part:     cpe.OperatingSystem,
		Vendor:   cpe.Literal("microsoft"),
		Product:  cpe.Literal("windows_7"),
		Update:   cpe.Literal("sp1"),
		Language: cpe.NA(),
	}
	want := `wfn:[part="o",vendor="microsoft",product="windows_7",update="sp1",language=NA]`
	if got := w.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNew(t *testing.T) {
	got := cpe.New(cpe.HardwareDevice, "cisco", "", "1")
	want := cpe.WFN{
		Part:    cpe.HardwareDevice,
		Vendor:  cpe.Literal("cisco"),
		Version: cpe.Literal("1"),
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(cpe.Value{})); diff != "" {
		t.Errorf("New() diff (-want +got):\n%s", diff)
	}
}
