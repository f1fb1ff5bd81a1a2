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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig is the configuration file of the depscan binary. Files ending in
// .toml are read as TOML, all others as YAML, e.g.
//
//	project: webshop
//	extractors: [javascript]
//	skip-dirs: [test/fixtures]
//	output: ["text=-", "cdx-json=bom.json"]
//	ossindex:
//	  username: me@example.com
//	  cache: ~/.cache/depscan/ossindex.db
//	  cache-ttl: 12h
type FileConfig struct {
	Root        string         `yaml:"root" toml:"root"`
	Project     string         `yaml:"project" toml:"project"`
	DryRun      bool           `yaml:"dry-run" toml:"dry-run"`
	Extractors  []string       `yaml:"extractors" toml:"extractors"`
	SkipDirs    []string       `yaml:"skip-dirs" toml:"skip-dirs"`
	SkipDirGlob string         `yaml:"skip-dir-glob" toml:"skip-dir-glob"`
	Output      []string       `yaml:"output" toml:"output"`
	OSSIndex    OSSIndexConfig `yaml:"ossindex" toml:"ossindex"`
	Verbose     bool           `yaml:"verbose" toml:"verbose"`
	LogFormat   string         `yaml:"log-format" toml:"log-format"`
}

// OSSIndexConfig configures the vulnerability database client.
type OSSIndexConfig struct {
	URL      string        `yaml:"url" toml:"url"`
	Username string        `yaml:"username" toml:"username"`
	Token    string        `yaml:"token" toml:"token"`
	Cache    string        `yaml:"cache" toml:"cache"`
	CacheTTL time.Duration `yaml:"cache-ttl" toml:"cache-ttl"`
}

// LoadConfigFile reads and parses a configuration file. Unknown keys are an
// error.
func LoadConfigFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.NewDecoder(f).Decode(cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parsing config file %s: unknown keys %v", path, undecoded)
		}
		return cfg, nil
	}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Merge copies the values of the configuration file into the flags. Flags for
// which isSet returns true were given on the command line and are kept.
func (f *Flags) Merge(cfg *FileConfig, isSet func(name string) bool) {
	setString := func(name string, dst *string, v string) {
		if v != "" && !isSet(name) {
			*dst = v
		}
	}
	setList := func(name string, dst *[]string, v []string) {
		if len(v) > 0 && !isSet(name) {
			*dst = v
		}
	}
	setString("root", &f.Root, cfg.Root)
	setString("project", &f.Project, cfg.Project)
	setString("skip-dir-glob", &f.SkipDirGlob, cfg.SkipDirGlob)
	setString("log-format", &f.LogFormat, cfg.LogFormat)
	setString("ossindex-url", &f.OSSIndexURL, cfg.OSSIndex.URL)
	setString("ossindex-user", &f.OSSIndexUser, cfg.OSSIndex.Username)
	setString("ossindex-token", &f.OSSIndexToken, cfg.OSSIndex.Token)
	setString("cache", &f.CachePath, cfg.OSSIndex.Cache)
	setList("extractors", &f.ExtractorsToRun, cfg.Extractors)
	setList("skip-dirs", &f.DirsToSkip, cfg.SkipDirs)
	if len(cfg.Output) > 0 && !isSet("o") {
		f.Output = cfg.Output
	}
	if cfg.OSSIndex.CacheTTL != 0 && !isSet("cache-ttl") {
		f.CacheTTL = cfg.OSSIndex.CacheTTL
	}
	if cfg.DryRun && !isSet("dry-run") {
		f.DryRun = true
	}
	if cfg.Verbose && !isSet("verbose") {
		f.Verbose = true
	}
}
