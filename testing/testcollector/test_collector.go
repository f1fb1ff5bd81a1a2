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

// Package testcollector provides a stats.Collector that records what it was
// told, for verification in tests.
package testcollector

import (
	"sync"
	"time"

	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/stats"
)

// Collector records file required results by path and counts the other events.
type Collector struct {
	stats.NoopCollector

	mu                sync.Mutex
	fileRequiredStats map[string]*stats.FileRequiredStats
	inodes            int
	extractorRuns     map[string]int
	enricherRuns      map[string]int
	scanStatus        *plugin.ScanStatus
	exportedBytes     int
}

// New returns a new test Collector.
func New() *Collector {
	return &Collector{
		fileRequiredStats: make(map[string]*stats.FileRequiredStats),
		extractorRuns:     make(map[string]int),
		enricherRuns:      make(map[string]int),
	}
}

// AfterInodeVisited counts visited inodes.
func (c *Collector) AfterInodeVisited(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inodes++
}

// AfterExtractorRun counts Extract calls per plugin.
func (c *Collector) AfterExtractorRun(name string, _ time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractorRuns[name]++
}

// AfterEnricherRun counts enricher runs per plugin.
func (c *Collector) AfterEnricherRun(name string, _ time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enricherRuns[name]++
}

// AfterScan stores the final scan status.
func (c *Collector) AfterScan(_ time.Duration, status *plugin.ScanStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scanStatus = status
}

// AfterResultsExported sums up exported bytes.
func (c *Collector) AfterResultsExported(_ string, bytes int, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exportedBytes += bytes
}

// AfterFileRequired stores the metrics for calls to FileRequired.
func (c *Collector) AfterFileRequired(_ string, filestats *stats.FileRequiredStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fileRequiredStats[filestats.Path] = filestats
}

// FileRequiredResult returns the result recorded for path, or "".
func (c *Collector) FileRequiredResult(path string) stats.FileRequiredResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if filestats, ok := c.fileRequiredStats[path]; ok {
		return filestats.Result
	}
	return ""
}

// InodesVisited returns the number of AfterInodeVisited calls.
func (c *Collector) InodesVisited() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inodes
}

// ExtractorRuns returns the number of Extract calls recorded for name.
func (c *Collector) ExtractorRuns(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extractorRuns[name]
}

// EnricherRuns returns the number of runs recorded for name.
func (c *Collector) EnricherRuns(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enricherRuns[name]
}

// ScanStatus returns the status passed to AfterScan, or nil.
func (c *Collector) ScanStatus() *plugin.ScanStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanStatus
}

// ExportedBytes returns the sum of bytes passed to AfterResultsExported.
func (c *Collector) ExportedBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exportedBytes
}
