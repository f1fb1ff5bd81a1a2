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

// Package simplefileapi provides a fixed filesystem.FileAPI for extractor tests.
package simplefileapi

import (
	"io/fs"

	"github.com/depscan/depscan/extractor/filesystem"
)

// SimpleFileAPI returns a fixed path and file info.
type SimpleFileAPI struct {
	path string
	info fs.FileInfo
}

// New returns a SimpleFileAPI for path. info may be nil when the extractor
// under test decides on the path alone.
func New(path string, info fs.FileInfo) *SimpleFileAPI {
	return &SimpleFileAPI{
		path: path,
		info: info,
	}
}

// Path returns the path of the file.
func (f SimpleFileAPI) Path() string {
	return f.path
}

// Stat returns the file information, or fs.ErrNotExist without one.
func (f SimpleFileAPI) Stat() (fs.FileInfo, error) {
	if f.info == nil {
		return nil, fs.ErrNotExist
	}
	return f.info, nil
}

var _ filesystem.FileAPI = SimpleFileAPI{}
