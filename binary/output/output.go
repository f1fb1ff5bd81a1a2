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

// Package output writes scan results to files or stdout in the supported
// report and SBOM formats.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/depscan/depscan/binary/report"
	"github.com/depscan/depscan/converter"
	"github.com/depscan/depscan/converter/spdx"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/stats"
	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
	"github.com/spdx/tools-golang/tagvalue"
	spdxyaml "github.com/spdx/tools-golang/yaml"
)

// Output formats.
const (
	FormatText           = "text"
	FormatCDXJSON        = "cdx-json"
	FormatCDXXML         = "cdx-xml"
	FormatSPDX23JSON     = "spdx23-json"
	FormatSPDX23YAML     = "spdx23-yaml"
	FormatSPDX23TagValue = "spdx23-tag-value"
)

// Stdout is the path that makes an output go to the standard output.
const Stdout = "-"

// Formats lists the supported output formats.
var Formats = []string{
	FormatText, FormatCDXJSON, FormatCDXXML, FormatSPDX23JSON, FormatSPDX23YAML, FormatSPDX23TagValue,
}

// ErrInvalidSpec is returned for output specs that are not of the form format=path.
var ErrInvalidSpec = errors.New("invalid output spec, should follow a format like -o text=- -o spdx23-json=result.spdx.json")

// Spec is a requested output: a format and the path to write it to.
type Spec struct {
	Format string
	Path   string
}

func (s Spec) String() string { return s.Format + "=" + s.Path }

// ParseSpec parses an output spec of the form format=path.
func ParseSpec(s string) (Spec, error) {
	format, path, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok || format == "" || path == "" {
		return Spec{}, ErrInvalidSpec
	}
	if !slices.Contains(Formats, format) {
		return Spec{}, fmt.Errorf("output format %q not recognized, supported formats are %v", format, Formats)
	}
	return Spec{Format: format, Path: path}, nil
}

// Config holds the document settings of the SBOM formats.
type Config struct {
	SPDX spdx.Config
	CDX  converter.CDXConfig
	// Notified about every written output. Optional.
	Stats stats.Collector
}

// Write writes the scan result to s.Path in the s.Format format.
func Write(r *result.ScanResult, s Spec, cfg Config) (err error) {
	f, err := create(s.Path)
	if err != nil {
		return err
	}
	w := &countingWriter{w: f}
	if cfg.Stats != nil {
		defer func() { cfg.Stats.AfterResultsExported(destination(s.Path), w.n, err) }()
	}
	if err := Encode(w, r, s.Format, cfg); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", s, err)
	}
	return f.Close()
}

// Encode writes the scan result to w in the given format.
func Encode(w io.Writer, r *result.ScanResult, format string, cfg Config) error {
	switch format {
	case FormatText:
		return report.Write(w, r)
	case FormatCDXJSON, FormatCDXXML:
		return WriteCDX(w, converter.ToCDX(r, cfg.CDX), format)
	case FormatSPDX23JSON, FormatSPDX23YAML, FormatSPDX23TagValue:
		return WriteSPDX23(w, spdx.ToSPDX23(r, cfg.SPDX), format)
	}
	return fmt.Errorf("output format %q not recognized, supported formats are %v", format, Formats)
}

// WriteCDX writes a CycloneDX document in the cdx-json or cdx-xml format.
func WriteCDX(w io.Writer, doc *cyclonedx.BOM, format string) error {
	var cdxFormat cyclonedx.BOMFileFormat
	switch format {
	case FormatCDXJSON:
		cdxFormat = cyclonedx.BOMFileFormatJSON
	case FormatCDXXML:
		cdxFormat = cyclonedx.BOMFileFormatXML
	default:
		return fmt.Errorf("%q is not a CDX format", format)
	}
	return cyclonedx.NewBOMEncoder(w, cdxFormat).SetPretty(true).Encode(doc)
}

// WriteSPDX23 writes an SPDX v2.3 document in one of the spdx23 formats.
func WriteSPDX23(w io.Writer, doc *v2_3.Document, format string) error {
	switch format {
	case FormatSPDX23JSON:
		return spdxjson.Write(doc, w, spdxjson.Indent("  "))
	case FormatSPDX23YAML:
		return spdxyaml.Write(doc, w)
	case FormatSPDX23TagValue:
		return tagvalue.Write(doc, w)
	}
	return fmt.Errorf("%q is not an SPDX format", format)
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

func destination(path string) string {
	if path == Stdout {
		return "stdout"
	}
	return "file"
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func create(path string) (io.WriteCloser, error) {
	if path == Stdout {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
