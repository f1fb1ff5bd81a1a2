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

// Package enricher provides the interface for enrichment plugins.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	scanfs "github.com/depscan/depscan/fs"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/stats"
)

var (
	// ErrNoDirectFS is returned when an enricher requires direct filesystem access but the scan root is nil.
	ErrNoDirectFS = errors.New("enrichment requires direct filesystem access but scan root is nil")
)

// Enricher is the interface for an enrichment plugin, used to enrich scan results with additional
// information through APIs or other sources.
type Enricher interface {
	plugin.Plugin
	// RequiredPlugins returns a list of Plugins that need to be enabled for this Enricher to run.
	RequiredPlugins() []string
	// Enrich enriches the scan results with additional information.
	Enrich(ctx context.Context, input *ScanInput, inv *inventory.Inventory) error
}

// Config for running enrichers.
type Config struct {
	Enrichers []Enricher
	ScanRoot  *scanfs.ScanRoot
	// Optional: If nil, no metrics are recorded.
	Stats stats.Collector
}

// ScanInput provides information for the enricher about the scan.
type ScanInput struct {
	// FS for file access. This is rooted at Root.
	FS scanfs.FS
	// The root directory of the artifact being scanned.
	Root string
}

// Enrichers whose names start with one of these prefixes run first, in this
// order. Everything else runs afterwards in the configured order.
var runFirst = []string{"vulnmatch/"}

// Run runs the specified enrichers and returns their statuses.
func Run(ctx context.Context, config *Config, inventory *inventory.Inventory) ([]*plugin.Status, error) {
	var statuses []*plugin.Status
	if len(config.Enrichers) == 0 {
		return statuses, nil
	}

	for _, e := range config.Enrichers {
		capabilities := e.Requirements()
		if capabilities != nil && capabilities.DirectFS && config.ScanRoot == nil {
			return nil, fmt.Errorf("%w: for enricher %v", ErrNoDirectFS, e.Name())
		}
	}

	input := &ScanInput{}
	if config.ScanRoot != nil {
		root := config.ScanRoot.Path
		if !config.ScanRoot.IsVirtual() {
			p, err := filepath.Abs(root)
			if err != nil {
				return nil, err
			}
			root = p
		}
		input = &ScanInput{
			FS:   config.ScanRoot.FS,
			Root: root,
		}
	}

	collector := config.Stats
	if collector == nil {
		collector = stats.NoopCollector{}
	}
	for _, e := range ordered(config.Enrichers) {
		start := time.Now()
		err := e.Enrich(ctx, input, inventory)
		collector.AfterEnricherRun(e.Name(), time.Since(start), err)
		statuses = append(statuses, plugin.StatusFromErr(e, false, err, nil))
	}
	return statuses, nil
}

func ordered(enrichers []Enricher) []Enricher {
	rank := func(e Enricher) int {
		for i, prefix := range runFirst {
			if strings.HasPrefix(e.Name(), prefix) {
				return i
			}
		}
		return len(runFirst)
	}
	result := slices.Clone(enrichers)
	slices.SortStableFunc(result, func(a, b Enricher) int { return rank(a) - rank(b) })
	return result
}
