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
	"strings"

	"github.com/depscan/depscan/log"
)

const (
	uriPrefix = "cpe:/"
	fsPrefix  = "cpe:2.3:"
)

// Percent codes for escaped reserved characters in the URI binding.
var uriPercentCodes = map[byte]string{
	'!':  "%21",
	'"':  "%22",
	'#':  "%23",
	'$':  "%24",
	'%':  "%25",
	'&':  "%26",
	'\'': "%27",
	'(':  "%28",
	')':  "%29",
	'*':  "%2a",
	'+':  "%2b",
	',':  "%2c",
	'/':  "%2f",
	':':  "%3a",
	';':  "%3b",
	'<':  "%3c",
	'=':  "%3d",
	'>':  "%3e",
	'?':  "%3f",
	'@':  "%40",
	'[':  "%5b",
	'\\': "%5c",
	']':  "%5d",
	'^':  "%5e",
	'`':  "%60",
	'{':  "%7b",
	'|':  "%7c",
	'}':  "%7d",
	'~':  "%7e",
}

// Escaped characters that the URI binding writes without protection.
var uriUnescaped = map[byte]bool{
	'.': true,
}

// Sentinels for unescaped single-character wildcards in the URI binding.
var uriWildcards = map[byte]string{
	'*': "%02",
	'?': "%01",
}

// Escaped characters that the formatted string binding writes unescaped.
var fsUnescaped = map[byte]bool{
	'.': true,
	'-': true,
	'_': true,
}

// BindToURI binds the WFN to a CPE 2.2 URI, e.g.
// cpe:/a:microsoft:internet_explorer:8.0.6001:beta
func (w WFN) BindToURI() string {
	var sb strings.Builder
	sb.WriteString(uriPrefix)
	sb.WriteString(w.Part.String())
	for _, v := range []Value{w.Vendor, w.Product, w.Version, w.Update} {
		sb.WriteByte(':')
		sb.WriteString(bindValueForURI(v))
	}
	sb.WriteByte(':')
	sb.WriteString(packEdition(
		bindValueForURI(w.Edition),
		bindValueForURI(w.SWEdition),
		bindValueForURI(w.TargetSW),
		bindValueForURI(w.TargetHW),
		bindValueForURI(w.Other),
	))
	// Only the last empty component is dropped.
	return strings.TrimSuffix(sb.String(), ":")
}

// packEdition packs the extended attributes into the URI edition component.
// Without any extended attribute the edition is used on its own.
func packEdition(ed, swEd, tSW, tHW, oth string) string {
	if swEd == "" && tSW == "" && tHW == "" && oth == "" {
		return ed
	}
	return "~" + ed + "~" + swEd + "~" + tSW + "~" + tHW + "~" + oth
}

func bindValueForURI(v Value) string {
	switch v.kind {
	case kindAny:
		return ""
	case kindNA:
		return "-"
	}
	return percentEncode(v.text)
}

// percentEncode encodes a WFN literal for the URI binding in one pass.
// Escape sequences are consumed before wildcards are considered, so an
// escaped '*' never turns into a wildcard sentinel.
func percentEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			if i+1 >= len(s) {
				log.Warnf("cpe: literal %q ends in an unterminated escape", s)
				sb.WriteByte(c)
				continue
			}
			i++
			next := s[i]
			if uriUnescaped[next] {
				sb.WriteByte(next)
			} else if code, ok := uriPercentCodes[next]; ok {
				sb.WriteString(code)
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(next)
			}
			continue
		}
		if code, ok := uriWildcards[c]; ok {
			sb.WriteString(code)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// BindToFmtString binds the WFN to a CPE 2.3 formatted string, e.g.
// cpe:2.3:a:microsoft:internet_explorer:8.0.6001:beta:*:*:*:*:*:*
func (w WFN) BindToFmtString() string {
	var sb strings.Builder
	sb.WriteString(fsPrefix)
	sb.WriteString(w.Part.String())
	for _, a := range w.attributes() {
		sb.WriteByte(':')
		sb.WriteString(bindValueForFS(a.value))
	}
	return sb.String()
}

func bindValueForFS(v Value) string {
	switch v.kind {
	case kindAny:
		return "*"
	case kindNA:
		return "-"
	}
	return processQuotedChars(v.text)
}

// processQuotedChars drops the backslash from escaped '.', '-' and '_' and
// keeps every other escape as is. A lone trailing backslash is dropped.
func processQuotedChars(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			log.Warnf("cpe: dropping unterminated escape at the end of %q", s)
			break
		}
		i++
		next := s[i]
		if !fsUnescaped[next] {
			sb.WriteByte('\\')
		}
		sb.WriteByte(next)
	}
	return sb.String()
}
