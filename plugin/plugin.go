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

// Package plugin holds what extractor and enricher plugins have in common:
// identity, environment requirements and run status.
package plugin

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Network is the network access of the scan environment, or the network
// requirement of a plugin.
type Network int

// Network values.
const (
	// NetworkAny is only meaningful as a requirement: the plugin runs either way.
	NetworkAny Network = iota
	NetworkOffline
	NetworkOnline
)

// Capabilities describes what the scan environment provides to plugins. A
// plugin whose requirements exceed them is not run.
type Capabilities struct {
	Network Network
	// Whether scanned files live on the local disk and can be opened by path.
	DirectFS bool
}

// Plugin is implemented by every extractor and enricher.
type Plugin interface {
	// A unique name, e.g. "javascript/packagelockjson".
	Name() string
	// Bumped on behavior changes.
	Version() int
	Requirements() *Capabilities
}

// Status is the outcome of one plugin's run.
type Status struct {
	Name    string
	Version int
	Status  *ScanStatus
}

// ScanStatus is the status of a scan run. FailureReason is set for partial
// and failed runs.
type ScanStatus struct {
	Status        ScanStatusEnum
	FailureReason string
	FileErrors    []*FileError
}

// FileError is an error tied to one scanned file.
type FileError struct {
	FilePath     string
	ErrorMessage string
}

// ScanStatusEnum enumerates scan outcomes.
type ScanStatusEnum int

// ScanStatusEnum values.
const (
	ScanStatusUnspecified ScanStatusEnum = iota
	ScanStatusSucceeded
	ScanStatusPartiallySucceeded
	ScanStatusFailed
)

// ValidateRequirements returns an error if capabs can't satisfy the
// requirements of p. A nil capabs accepts everything.
func ValidateRequirements(p Plugin, capabs *Capabilities) error {
	if capabs == nil {
		return nil
	}
	req := p.Requirements()
	if req == nil {
		return nil
	}
	var errs []string
	if req.Network != NetworkAny && req.Network != capabs.Network {
		if capabs.Network == NetworkOffline {
			errs = append(errs, "needs network access but scan environment doesn't provide it")
		} else {
			errs = append(errs, "should only run offline but the scan environment provides network access")
		}
	}
	if req.DirectFS && !capabs.DirectFS {
		errs = append(errs, "needs direct filesystem access but scan environment doesn't provide it")
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("plugin %s can't be enabled: %s", p.Name(), strings.Join(errs, ", "))
}

// FilterByCapabilities returns the plugins that can run under capabs.
func FilterByCapabilities[P Plugin](pls []P, capabs *Capabilities) []P {
	var result []P
	for _, pl := range pls {
		if err := ValidateRequirements(pl, capabs); err == nil {
			result = append(result, pl)
		}
	}
	return result
}

// StatusFromErr builds the run status of p from its overall error. partial
// marks a run that produced results despite the error.
func StatusFromErr(p Plugin, partial bool, overallErr error, fileErrors []*FileError) *Status {
	status := &ScanStatus{Status: ScanStatusSucceeded}
	if overallErr != nil {
		status.Status = ScanStatusFailed
		if partial {
			status.Status = ScanStatusPartiallySucceeded
		}
		status.FileErrors = fileErrors
		status.FailureReason = overallErr.Error()
	}
	return &Status{
		Name:    p.Name(),
		Version: p.Version(),
		Status:  status,
	}
}

// OverallErrFromFileErrs summarizes per-file errors into one error, or nil.
func OverallErrFromFileErrs(fileErrors []*FileError) error {
	if len(fileErrors) == 0 {
		return nil
	}
	return fmt.Errorf("encountered %d error(s) while running plugin; check file-specific errors for details", len(fileErrors))
}

// DedupeStatuses merges the statuses reported for the same plugin, e.g. once
// per scan root, and returns one entry per plugin sorted by name.
func DedupeStatuses(statuses []*Status) []*Status {
	byName := map[string]*Status{}
	for _, s := range statuses {
		if old, ok := byName[s.Name]; ok {
			byName[s.Name] = mergeStatus(old, s)
		} else {
			byName[s.Name] = s
		}
	}
	result := make([]*Status, 0, len(byName))
	for _, v := range byName {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func mergeStatus(s1, s2 *Status) *Status {
	result := &Status{
		Name:    s1.Name,
		Version: s1.Version,
		Status: &ScanStatus{
			Status:     mergeScanStatus(s1.Status.Status, s2.Status.Status),
			FileErrors: slices.Concat(s1.Status.FileErrors, s2.Status.FileErrors),
		},
	}
	var reasons []string
	for _, r := range []string{s1.Status.FailureReason, s2.Status.FailureReason} {
		if r != "" {
			reasons = append(reasons, r)
		}
	}
	result.Status.FailureReason = strings.Join(reasons, "\n")
	if len(result.Status.FileErrors) > 0 {
		result.Status.FailureReason = OverallErrFromFileErrs(result.Status.FileErrors).Error()
	}
	return result
}

func mergeScanStatus(e1, e2 ScanStatusEnum) ScanStatusEnum {
	// Failures take precedence over successes.
	switch {
	case e1 == ScanStatusFailed || e2 == ScanStatusFailed:
		return ScanStatusFailed
	case e1 == ScanStatusPartiallySucceeded || e2 == ScanStatusPartiallySucceeded:
		return ScanStatusPartiallySucceeded
	case e1 == ScanStatusSucceeded || e2 == ScanStatusSucceeded:
		return ScanStatusSucceeded
	}
	return ScanStatusUnspecified
}

// String returns a string representation of the scan status.
func (s *ScanStatus) String() string {
	switch s.Status {
	case ScanStatusSucceeded:
		return "SUCCEEDED"
	case ScanStatusPartiallySucceeded:
		return "PARTIALLY_SUCCEEDED: " + s.FailureReason
	case ScanStatusFailed:
		return "FAILED: " + s.FailureReason
	default:
		return "UNSPECIFIED"
	}
}
