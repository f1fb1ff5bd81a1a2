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

// Package stats contains the hooks through which a scan reports what it is
// doing, for metrics or progress output.
package stats

import (
	"time"

	"github.com/depscan/depscan/plugin"
)

// Collector is notified when certain scan events occur.
type Collector interface {
	AfterInodeVisited(path string)
	AfterExtractorRun(pluginName string, runtime time.Duration, err error)
	AfterEnricherRun(pluginName string, runtime time.Duration, err error)
	AfterScan(runtime time.Duration, status *plugin.ScanStatus)

	// AfterResultsExported is called after results have been written. destination
	// is a category such as "file" or "stdout", not the precise location.
	AfterResultsExported(destination string, bytes int, err error)

	// AfterFileRequired may be called by extractors to report why a candidate
	// file was skipped.
	AfterFileRequired(pluginName string, filestats *FileRequiredStats)
}

// NoopCollector implements Collector by doing nothing.
type NoopCollector struct{}

// AfterInodeVisited implements Collector by doing nothing.
func (NoopCollector) AfterInodeVisited(path string) {}

// AfterExtractorRun implements Collector by doing nothing.
func (NoopCollector) AfterExtractorRun(pluginName string, runtime time.Duration, err error) {}

// AfterEnricherRun implements Collector by doing nothing.
func (NoopCollector) AfterEnricherRun(pluginName string, runtime time.Duration, err error) {}

// AfterScan implements Collector by doing nothing.
func (NoopCollector) AfterScan(runtime time.Duration, status *plugin.ScanStatus) {}

// AfterResultsExported implements Collector by doing nothing.
func (NoopCollector) AfterResultsExported(destination string, bytes int, err error) {}

// AfterFileRequired implements Collector by doing nothing.
func (NoopCollector) AfterFileRequired(pluginName string, filestats *FileRequiredStats) {}

// FileRequiredStats describes a file an extractor was asked about.
type FileRequiredStats struct {
	Path          string
	Result        FileRequiredResult
	FileSizeBytes int64
}

// FileRequiredResult is the outcome of Extractor.FileRequired.
type FileRequiredResult string

const (
	// FileRequiredResultOK means the file was required by the plugin.
	FileRequiredResultOK FileRequiredResult = "FILE_REQUIRED_RESULT_OK"
	// FileRequiredResultSizeLimitExceeded means the file was skipped for being too large.
	FileRequiredResultSizeLimitExceeded FileRequiredResult = "FILE_REQUIRED_RESULT_SIZE_LIMIT_EXCEEDED"
)
