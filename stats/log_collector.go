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

package stats

import (
	"time"

	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/plugin"
)

// LogCollector writes plugin runtimes and export sizes to the debug log.
// Inode visits and file requirement checks are too frequent to log.
type LogCollector struct {
	NoopCollector
}

// AfterExtractorRun logs the runtime of an extractor.
func (LogCollector) AfterExtractorRun(pluginName string, runtime time.Duration, err error) {
	logRun("extractor", pluginName, runtime, err)
}

// AfterEnricherRun logs the runtime of an enricher.
func (LogCollector) AfterEnricherRun(pluginName string, runtime time.Duration, err error) {
	logRun("enricher", pluginName, runtime, err)
}

// AfterScan logs the scan runtime and status.
func (LogCollector) AfterScan(runtime time.Duration, status *plugin.ScanStatus) {
	log.Debugf("Scan finished in %v: %v", runtime, status)
}

// AfterResultsExported logs the size of a written output.
func (LogCollector) AfterResultsExported(destination string, bytes int, err error) {
	if err != nil {
		log.Debugf("Exporting results to %s failed after %d bytes: %v", destination, bytes, err)
		return
	}
	log.Debugf("Exported %d bytes of results to %s", bytes, destination)
}

func logRun(kind, name string, runtime time.Duration, err error) {
	if err != nil {
		log.Debugf("%s %s failed after %v: %v", kind, name, runtime, err)
		return
	}
	log.Debugf("%s %s ran in %v", kind, name, runtime)
}
