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

// Package cli defines the structures to store the CLI flags used by the depscan binary.
package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/depscan/depscan"
	"github.com/depscan/depscan/binary/output"
	ossindexclient "github.com/depscan/depscan/clients/ossindex"
	"github.com/depscan/depscan/converter"
	"github.com/depscan/depscan/converter/spdx"
	"github.com/depscan/depscan/enricher"
	"github.com/depscan/depscan/enricher/vulnmatch/ossindex"
	el "github.com/depscan/depscan/extractor/filesystem/list"
	scanfs "github.com/depscan/depscan/fs"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/stats"
	"github.com/gobwas/glob"
	"github.com/spdx/tools-golang/spdx/v2/common"
)

// Environment variables consulted for OSS Index credentials not given as flags.
const (
	EnvOSSIndexUsername = "OSSINDEX_USERNAME"
	EnvOSSIndexToken    = "OSSINDEX_TOKEN"
)

// DefaultOutput is used when no output is requested.
const DefaultOutput = output.FormatText + "=" + output.Stdout

// Array is a type to be passed to flag.Var that supports arrays passed as repeated flags,
// e.g. ./depscan -o text=- -o spdx23-json=out.spdx.json
type Array []string

func (i *Array) String() string {
	return strings.Join(*i, ",")
}

// Set gets called whenever a new instance of a flag is read during CLI arg parsing.
// For example, in the case of -o foo -o bar the library will call arr.Set("foo") then arr.Set("bar").
func (i *Array) Set(value string) error {
	*i = append(*i, strings.TrimSpace(value))
	return nil
}

// Get returns the underlying []string value stored by this flag struct.
func (i *Array) Get() any {
	return i
}

// StringListFlag is a type to be passed to flag.Var that supports list flags passed as repeated
// flags, e.g. ./depscan --skip-dirs a --skip-dirs b,c the library will call Set("a") then Set("b,c").
type StringListFlag struct {
	set          bool
	value        []string
	defaultValue []string
}

// NewStringListFlag creates a new StringListFlag with the given default value.
func NewStringListFlag(defaultValue []string) StringListFlag {
	return StringListFlag{defaultValue: defaultValue}
}

// Set gets called whenever a new instance of a flag is read during CLI arg parsing.
func (s *StringListFlag) Set(x string) error {
	s.value = append(s.value, strings.Split(x, ",")...)
	s.set = true
	return nil
}

// Get returns the underlying []string value stored by this flag struct.
func (s *StringListFlag) Get() any {
	return s.GetSlice()
}

// GetSlice returns the underlying []string value stored by this flag struct.
func (s *StringListFlag) GetSlice() []string {
	if s.set {
		return s.value
	}
	return s.defaultValue
}

func (s *StringListFlag) String() string {
	if len(s.value) == 0 {
		return ""
	}
	return fmt.Sprint(s.value)
}

// Reset resets the flag to its default value.
func (s *StringListFlag) Reset() {
	s.set = false
	s.value = nil
}

// Flags contains a field for all the cli flags that can be set.
type Flags struct {
	Root  string
	Paths []string
	// Project name, printed in the report and used to name the SBOMs.
	Project         string
	DryRun          bool
	Output          Array
	ExtractorsToRun []string
	DirsToSkip      []string
	SkipDirGlob     string
	ConfigFile      string
	OSSIndexURL     string
	OSSIndexUser    string
	OSSIndexToken   string
	// Path of the on-disk OSS Index response cache, no caching if empty.
	CachePath string
	CacheTTL  time.Duration
	// SPDX and CDX document settings.
	SPDXDocumentNamespace string
	SPDXCreators          string
	CDXComponentVersion   string
	CDXAuthors            string
	StoreAbsolutePath     bool
	MaxInodes             int
	Verbose               bool
	LogFormat             string
	PrintVersion          bool
}

// ValidateFlags validates the passed command line flags.
func ValidateFlags(flags *Flags) error {
	if err := validateOutput(flags.Output); err != nil {
		return fmt.Errorf("--o %w", err)
	}
	if err := validateMultiStringArg(flags.ExtractorsToRun); err != nil {
		return fmt.Errorf("--extractors: %w", err)
	}
	if err := validateMultiStringArg(flags.DirsToSkip); err != nil {
		return fmt.Errorf("--skip-dirs: %w", err)
	}
	if err := validateGlob(flags.SkipDirGlob); err != nil {
		return fmt.Errorf("--skip-dir-glob: %w", err)
	}
	if err := validateURL(flags.OSSIndexURL); err != nil {
		return fmt.Errorf("--ossindex-url: %w", err)
	}
	if flags.OSSIndexToken != "" && flags.OSSIndexUser == "" {
		return errors.New("--ossindex-token cannot be used without --ossindex-user")
	}
	if flags.CacheTTL < 0 {
		return errors.New("--cache-ttl cannot be negative")
	}
	if flags.MaxInodes < 0 {
		return errors.New("--max-inodes cannot be negative")
	}
	switch flags.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("--log-format %q not recognized, supported formats are console and json", flags.LogFormat)
	}
	if err := validateCreators(flags.SPDXCreators); err != nil {
		return fmt.Errorf("--spdx-creators: %w", err)
	}
	return nil
}

func validateOutput(outputs []string) error {
	for _, item := range outputs {
		if _, err := output.ParseSpec(item); err != nil {
			return err
		}
	}
	return nil
}

func validateMultiStringArg(arg []string) error {
	for _, item := range arg {
		if len(item) == 0 {
			continue
		}
		for _, item := range strings.Split(item, ",") {
			if len(item) == 0 {
				return errors.New("list item cannot be left empty")
			}
		}
	}
	return nil
}

func validateGlob(arg string) error {
	if arg == "" {
		return nil
	}
	_, err := glob.Compile(arg, '/')
	return err
}

func validateURL(arg string) error {
	if arg == "" {
		return nil
	}
	u, err := url.Parse(arg)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", arg)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", arg)
	}
	return nil
}

func validateCreators(arg string) error {
	if arg == "" {
		return nil
	}
	for _, item := range strings.Split(arg, ",") {
		if cType, cName, ok := strings.Cut(item, ":"); !ok || cType == "" || cName == "" {
			return fmt.Errorf("creator %q should follow the format creatortype:creator", item)
		}
	}
	return nil
}

// ApplyEnv fills the OSS Index credentials from the environment when they
// weren't set otherwise.
func (f *Flags) ApplyEnv(getenv func(string) string) {
	if f.OSSIndexUser == "" {
		f.OSSIndexUser = getenv(EnvOSSIndexUsername)
	}
	if f.OSSIndexToken == "" {
		f.OSSIndexToken = getenv(EnvOSSIndexToken)
	}
}

// GetScanConfig constructs a depscan scan config from the provided CLI flags.
// The cache is handed to the OSS Index client and may be nil.
func (f *Flags) GetScanConfig(cache ossindexclient.Cache) (*depscan.ScanConfig, error) {
	extractors, err := el.ExtractorsFromNames(multiStringToList(f.extractorNames()))
	if err != nil {
		return nil, err
	}
	var skipDirGlob glob.Glob
	if f.SkipDirGlob != "" {
		skipDirGlob, err = glob.Compile(f.SkipDirGlob, '/')
		if err != nil {
			return nil, err
		}
	}
	var enrichers []enricher.Enricher
	if !f.DryRun {
		enrichers = append(enrichers, ossindex.New(ossindexclient.Config{
			BaseURL:  f.OSSIndexURL,
			Username: f.OSSIndexUser,
			Token:    f.OSSIndexToken,
			Cache:    cache,
		}))
	}

	return &depscan.ScanConfig{
		ScanRoots:         scanfs.RealFSScanRoots(f.scanRootPaths()...),
		Extractors:        extractors,
		Enrichers:         enrichers,
		Capabilities:      f.capabilities(),
		DirsToSkip:        multiStringToList(f.DirsToSkip),
		SkipDirGlob:       skipDirGlob,
		MaxInodes:         f.MaxInodes,
		StoreAbsolutePath: f.StoreAbsolutePath,
		Stats:             f.collector(),
	}, nil
}

// collector returns the stats collector of verbose runs, or nil.
func (f *Flags) collector() stats.Collector {
	if f.Verbose {
		return stats.LogCollector{}
	}
	return nil
}

func (f *Flags) extractorNames() []string {
	if len(f.ExtractorsToRun) == 0 {
		return []string{"default"}
	}
	return f.ExtractorsToRun
}

func (f *Flags) scanRootPaths() []string {
	var paths []string
	if f.Root != "" {
		paths = append(paths, f.Root)
	}
	paths = append(paths, f.Paths...)
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return paths
}

// The vulnerability database is only reachable if this isn't a dry run.
func (f *Flags) capabilities() *plugin.Capabilities {
	network := plugin.NetworkOnline
	if f.DryRun {
		network = plugin.NetworkOffline
	}
	return &plugin.Capabilities{
		Network:  network,
		DirectFS: true,
	}
}

// GetSPDXConfig creates an SPDX config based on the CLI flags.
func (f *Flags) GetSPDXConfig() spdx.Config {
	creators := []common.Creator{}
	if len(f.SPDXCreators) > 0 {
		for _, item := range strings.Split(f.SPDXCreators, ",") {
			cType, cName, _ := strings.Cut(item, ":")
			creators = append(creators, common.Creator{
				CreatorType: cType,
				Creator:     cName,
			})
		}
	}
	return spdx.Config{
		DocumentName:      f.Project,
		DocumentNamespace: f.SPDXDocumentNamespace,
		Creators:          creators,
	}
}

// GetCDXConfig creates a CDX config based on the CLI flags.
func (f *Flags) GetCDXConfig() converter.CDXConfig {
	var authors []string
	if f.CDXAuthors != "" {
		authors = strings.Split(f.CDXAuthors, ",")
	}
	return converter.CDXConfig{
		ComponentName:    f.Project,
		ComponentType:    "application",
		ComponentVersion: f.CDXComponentVersion,
		Authors:          authors,
	}
}

// Outputs returns the requested outputs, the text report on stdout if none
// were requested.
func (f *Flags) Outputs() ([]output.Spec, error) {
	items := f.Output
	if len(items) == 0 {
		items = Array{DefaultOutput}
	}
	specs := make([]output.Spec, 0, len(items))
	for _, item := range items {
		s, err := output.ParseSpec(item)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// WriteScanResults writes depscan scan results to the outputs specified by the CLI flags.
func (f *Flags) WriteScanResults(r *result.ScanResult) error {
	specs, err := f.Outputs()
	if err != nil {
		return err
	}
	cfg := output.Config{SPDX: f.GetSPDXConfig(), CDX: f.GetCDXConfig(), Stats: f.collector()}
	for _, s := range specs {
		if s.Path != output.Stdout {
			log.Infof("Writing scan results to %s", s.Path)
		}
		if err := output.Write(r, s, cfg); err != nil {
			return err
		}
	}
	return nil
}

func multiStringToList(arg []string) []string {
	var result []string
	for _, item := range arg {
		if item == "" {
			continue
		}
		result = append(result, strings.Split(item, ",")...)
	}
	return result
}
