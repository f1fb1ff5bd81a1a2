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

// Package report renders scan results as a human readable table.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/depscan/depscan/extractor"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/result"
	"github.com/depscan/depscan/severity"
)

// Column headers of the vulnerability table.
var headers = []string{"PACKAGE", "VERSION", "VULNERABILITY", "SEVERITY", "TITLE"}

var severityColors = map[severity.Level]lipgloss.Color{
	severity.LevelCritical: lipgloss.Color("9"),
	severity.LevelHigh:     lipgloss.Color("1"),
	severity.LevelMedium:   lipgloss.Color("3"),
	severity.LevelLow:      lipgloss.Color("6"),
}

// Write renders the vulnerabilities of the scan result as a table followed by
// a summary line. Colors are only used if w is a terminal.
func Write(w io.Writer, r *result.ScanResult) error {
	re := lipgloss.NewRenderer(w)
	vulns := sorted(r.Inventory.PackageVulns)
	vulnerable := make(map[*extractor.Package]bool)

	if len(vulns) > 0 {
		rows := make([][]string, 0, len(vulns))
		for _, pv := range vulns {
			vulnerable[pv.Package] = true
			rows = append(rows, []string{
				pv.Package.Name,
				pv.Package.Version,
				id(pv.Vulnerability),
				pv.Vulnerability.Severity.String(),
				pv.Vulnerability.Title,
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(re.NewStyle().Faint(true)).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				s := re.NewStyle().Padding(0, 1)
				if row == table.HeaderRow {
					return s.Bold(true)
				}
				if col == 3 && row >= 0 && row < len(vulns) {
					if c, ok := severityColors[vulns[row].Vulnerability.Severity.Level]; ok {
						return s.Foreground(c)
					}
				}
				return s
			})
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d packages scanned, %d vulnerable, %d vulnerabilities found\n",
		len(r.Inventory.Packages), len(vulnerable), len(vulns))
	return err
}

// sorted orders vulnerabilities by descending severity, then by package.
func sorted(pvs []*inventory.PackageVuln) []*inventory.PackageVuln {
	res := make([]*inventory.PackageVuln, 0, len(pvs))
	for _, pv := range pvs {
		if pv.Package != nil {
			res = append(res, pv)
		}
	}
	slices.SortStableFunc(res, func(a, b *inventory.PackageVuln) int {
		return cmp.Or(
			-cmp.Compare(a.Vulnerability.Severity.Level, b.Vulnerability.Severity.Level),
			-cmp.Compare(a.Vulnerability.Severity.Score, b.Vulnerability.Severity.Score),
			cmp.Compare(a.Package.Name, b.Package.Name),
			cmp.Compare(a.Package.Version, b.Package.Version),
			cmp.Compare(id(a.Vulnerability), id(b.Vulnerability)),
		)
	})
	return res
}

func id(v inventory.Vulnerability) string {
	if v.CVE != "" {
		return v.CVE
	}
	return v.ID
}
