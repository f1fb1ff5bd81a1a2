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

// The depscan command scans a project's lockfiles for dependencies, names them
// with package URLs and CPEs and reports their known vulnerabilities.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/depscan/depscan/binary/cli"
	"github.com/depscan/depscan/binary/scanrunner"
	"github.com/depscan/depscan/log"
)

func main() {
	os.Exit(run(os.Args, os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	var subcommand string
	if len(args) >= 2 {
		subcommand = args[1]
	}
	switch subcommand {
	case "cpe":
		return runCPE(args[2:], stdout)
	case "scan":
		return runScan(args[2:])
	default:
		// Assume 'scan' if subcommand is not recognized/specified.
		return runScan(args[1:])
	}
}

func runScan(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		log.Errorf("Error parsing CLI args: %v", err)
		return 1
	}
	logger, err := log.NewZapLogger(flags.LogFormat, flags.Verbose)
	if err != nil {
		log.Errorf("Error creating logger: %v", err)
		return 1
	}
	log.SetLogger(logger)
	defer func() {
		_ = logger.Sync()
		log.SetLogger(&log.DefaultLogger{})
	}()
	return scanrunner.RunScan(flags)
}

func parseFlags(args []string) (*cli.Flags, error) {
	fs := flag.NewFlagSet("depscan", flag.ContinueOnError)
	root := fs.String("root", "", `The root dir of the project to scan (e.g.: "."). Further roots can be passed as arguments.`)
	project := fs.String("project", "", "The name of the scanned project, used in the report and the SBOMs")
	dryRun := fs.Bool("dry-run", false, "Only list the dependencies, don't look up their vulnerabilities")
	var output cli.Array
	fs.Var(&output, "o", "The path of the scanner outputs in various formats, e.g. -o text=- -o spdx23-json=result.spdx.json -o cdx-json=result.cyclonedx.json")
	extractorsToRun := cli.NewStringListFlag([]string{"default"})
	fs.Var(&extractorsToRun, "extractors", "Comma-separated list of extractor plugins to run")
	var dirsToSkip cli.StringListFlag
	fs.Var(&dirsToSkip, "skip-dirs", "Comma-separated list of file paths to avoid traversing")
	skipDirGlob := fs.String("skip-dir-glob", "", "If the glob matches a directory, it will be skipped. The glob is matched against the path relative to the scan root.")
	configFile := fs.String("config", "", "Path of a YAML config file. Flags given on the command line take precedence.")
	ossindexURL := fs.String("ossindex-url", "", "Base URL of the OSS Index API")
	ossindexUser := fs.String("ossindex-user", "", "OSS Index username, $"+cli.EnvOSSIndexUsername+" if unset")
	ossindexToken := fs.String("ossindex-token", "", "OSS Index API token, $"+cli.EnvOSSIndexToken+" if unset")
	cachePath := fs.String("cache", "", "Path of the on-disk cache for OSS Index responses. No caching if empty.")
	cacheTTL := fs.Duration("cache-ttl", 24*time.Hour, "How long cached OSS Index responses stay valid, 0 keeps them forever")
	spdxDocumentNamespace := fs.String("spdx-document-namespace", "", "The 'documentNamespace' field for the output SPDX document")
	spdxCreators := fs.String("spdx-creators", "", "The 'creators' field for the output SPDX document. Format is --spdx-creators=creatortype1:creator1,creatortype2:creator2")
	cdxComponentVersion := fs.String("cdx-component-version", "", "The 'metadata.component.version' field for the output CDX document")
	cdxAuthors := fs.String("cdx-authors", "", "The 'authors' field for the output CDX document. Format is --cdx-authors=author1,author2")
	storeAbsolutePath := fs.Bool("store-absolute-path", false, "Store the absolute path of lockfiles instead of the path relative to the scan root")
	maxInodes := fs.Int("max-inodes", 0, "Maximum number of files and directories to visit, no limit if 0")
	verbose := fs.Bool("verbose", false, "Enable this to print debug logs")
	logFormat := fs.String("log-format", "console", "Log format, console or json")
	printVersion := fs.Bool("version", false, "Print the depscan version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	flags := &cli.Flags{
		Root:                  *root,
		Paths:                 fs.Args(),
		Project:               *project,
		DryRun:                *dryRun,
		Output:                output,
		ExtractorsToRun:       extractorsToRun.GetSlice(),
		DirsToSkip:            dirsToSkip.GetSlice(),
		SkipDirGlob:           *skipDirGlob,
		ConfigFile:            *configFile,
		OSSIndexURL:           *ossindexURL,
		OSSIndexUser:          *ossindexUser,
		OSSIndexToken:         *ossindexToken,
		CachePath:             *cachePath,
		CacheTTL:              *cacheTTL,
		SPDXDocumentNamespace: *spdxDocumentNamespace,
		SPDXCreators:          *spdxCreators,
		CDXComponentVersion:   *cdxComponentVersion,
		CDXAuthors:            *cdxAuthors,
		StoreAbsolutePath:     *storeAbsolutePath,
		MaxInodes:             *maxInodes,
		Verbose:               *verbose,
		LogFormat:             *logFormat,
		PrintVersion:          *printVersion,
	}
	if flags.ConfigFile != "" {
		cfg, err := cli.LoadConfigFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		flags.Merge(cfg, func(name string) bool { return set[name] })
	}
	flags.ApplyEnv(os.Getenv)
	if err := cli.ValidateFlags(flags); err != nil {
		return nil, err
	}
	return flags, nil
}

func runCPE(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("depscan cpe", flag.ContinueOnError)
	c := &cli.CPEFlags{}
	fs.StringVar(&c.Part, "part", "a", "Part: a (application), o (operating system) or h (hardware)")
	fs.StringVar(&c.Vendor, "vendor", "", "Vendor, defaults to ANY")
	fs.StringVar(&c.Product, "product", "", "Product (required)")
	fs.StringVar(&c.Version, "version", "", "Version")
	fs.StringVar(&c.Update, "update", "", "Update")
	fs.StringVar(&c.Edition, "edition", "", "Edition")
	fs.StringVar(&c.Language, "language", "", "Language")
	fs.StringVar(&c.SWEdition, "sw-edition", "", "Software edition")
	fs.StringVar(&c.TargetSW, "target-sw", "", "Target software")
	fs.StringVar(&c.TargetHW, "target-hw", "", "Target hardware")
	fs.StringVar(&c.Other, "other", "", "Other")
	fs.BoolVar(&c.Quoted, "quoted", false, "Take the values as WFN literals whose punctuation is already escaped")
	if err := fs.Parse(args); err != nil {
		log.Errorf("Error parsing CLI args: %v", err)
		return 1
	}
	if fs.NArg() > 0 {
		log.Errorf("Unexpected arguments: %v", fs.Args())
		return 1
	}
	w, err := c.WFN()
	if err != nil {
		log.Errorf("Invalid CPE: %v", err)
		return 1
	}
	if err := cli.PrintCPE(stdout, w); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
