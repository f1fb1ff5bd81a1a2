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

// Package fs provides the filesystem abstraction depscan scans run on.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FS is a filesystem that supports opening, listing and stat-ing files.
// os.DirFS and testing/fstest.MapFS both satisfy it.
type FS interface {
	fs.FS
	fs.ReadDirFS
	fs.StatFS
}

// ScanRoot is a directory to start a scan from.
type ScanRoot struct {
	// A filesystem rooted at the scan root.
	FS FS
	// The path of the scan root on the local disk. Empty for virtual filesystems.
	Path string
}

// IsVirtual reports whether the scan root has no location on the local disk.
func (r *ScanRoot) IsVirtual() bool {
	return r.Path == ""
}

// WithAbsolutePath returns a copy of r with an absolute Path.
func (r *ScanRoot) WithAbsolutePath() (*ScanRoot, error) {
	if r.IsVirtual() {
		return &ScanRoot{FS: r.FS}, nil
	}
	abs, err := filepath.Abs(r.Path)
	if err != nil {
		return nil, err
	}
	return &ScanRoot{FS: r.FS, Path: abs}, nil
}

// DirFS returns an FS for the local directory root.
func DirFS(root string) FS {
	return os.DirFS(root).(FS)
}

// RealFSScanRoot returns a scan root for a local directory.
func RealFSScanRoot(path string) *ScanRoot {
	return &ScanRoot{FS: DirFS(path), Path: path}
}

// RealFSScanRoots returns one scan root per local directory.
func RealFSScanRoots(paths ...string) []*ScanRoot {
	roots := make([]*ScanRoot, 0, len(paths))
	for _, p := range paths {
		roots = append(roots, RealFSScanRoot(p))
	}
	return roots
}
