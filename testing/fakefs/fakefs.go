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

// Package fakefs provides file metadata for lockfiles that only exist in tests.
package fakefs

import (
	"io/fs"
	"path"
	"time"
)

// Timestamp used as the modification time of every fake file.
var Timestamp = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

// LockfileInfo returns the metadata of a regular lockfile of the given size
// at path, as a directory walk would report it.
func LockfileInfo(p string, size int64) fs.FileInfo {
	return fileInfo{name: path.Base(p), size: size, mode: 0o644}
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) Mode() fs.FileMode  { return i.mode }
func (i fileInfo) ModTime() time.Time { return Timestamp }
func (i fileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i fileInfo) Sys() any           { return nil }
