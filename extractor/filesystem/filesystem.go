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

// Package filesystem provides the interface for lockfile extraction plugins and
// the directory walk that feeds them.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/depscan/depscan/extractor"
	scanfs "github.com/depscan/depscan/fs"
	"github.com/depscan/depscan/inventory"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/plugin"
	"github.com/depscan/depscan/stats"
	"github.com/gobwas/glob"
)

// File size units for the extractors' MaxFileSizeBytes limits.
const (
	KiB = int64(1024)
	MiB = 1024 * KiB
)

// ErrNotRelativeToScanRoots is returned when a directory to skip is not inside
// any of the scan roots.
var ErrNotRelativeToScanRoots = errors.New("path not relative to any of the scan roots")

// Extractor is a plugin that reads packages from files such as lockfiles.
type Extractor interface {
	plugin.Plugin
	// FileRequired returns true if the file is relevant for the extractor. The
	// walk is done by Run, not the plugin.
	FileRequired(api FileAPI) bool
	// Extract reads packages from a single file.
	Extract(ctx context.Context, input *ScanInput) (inventory.Inventory, error)
}

// FileAPI gives access to the path and file info of a walked file.
type FileAPI interface {
	// Path relative to the scan root, slash separated.
	Path() string
	// Stat is only called when an extractor needs it.
	Stat() (fs.FileInfo, error)
}

// ScanInput describes one file to extract from.
type ScanInput struct {
	// FS rooted at Root, e.g. for looking up sibling files.
	FS scanfs.FS
	// The path of the file relative to Root.
	Path string
	// The scan root. Empty for virtual filesystems.
	Root string
	Info fs.FileInfo
	// Closed by Run, not the plugin.
	Reader io.Reader
}

// Config stores the config settings for an extraction run.
type Config struct {
	Extractors []Extractor
	ScanRoots  []*scanfs.ScanRoot
	// Optional: Directories the walk should ignore. Either absolute paths inside
	// one of the scan roots or, for virtual roots, paths relative to the root.
	DirsToSkip []string
	// Optional: Directories whose path relative to the root matches are skipped.
	SkipDirGlob glob.Glob
	// Optional: If nil, no metrics are recorded.
	Stats stats.Collector
	// Optional: Limit for visited inodes. If 0, no limit is applied.
	MaxInodes int
	// Optional: Store absolute paths in package locations instead of paths
	// relative to the scan root.
	StoreAbsolutePath bool
}

// Run walks every scan root and runs the extractors on the files they require.
// Per-file errors don't stop the walk: they show up in the returned statuses.
func Run(ctx context.Context, config *Config) (inventory.Inventory, []*plugin.Status, error) {
	if len(config.Extractors) == 0 {
		return inventory.Inventory{}, []*plugin.Status{}, nil
	}
	roots := make([]*scanfs.ScanRoot, 0, len(config.ScanRoots))
	for _, r := range config.ScanRoots {
		abs, err := r.WithAbsolutePath()
		if err != nil {
			return inventory.Inventory{}, nil, err
		}
		roots = append(roots, abs)
	}
	dirsToSkip, err := stripAllPathPrefixes(config.DirsToSkip, roots)
	if err != nil {
		return inventory.Inventory{}, nil, err
	}
	collector := config.Stats
	if collector == nil {
		collector = stats.NoopCollector{}
	}

	var inv inventory.Inventory
	var statuses []*plugin.Status
	for _, root := range roots {
		wc := &walkContext{
			ctx:               ctx,
			stats:             collector,
			extractors:        config.Extractors,
			fs:                root.FS,
			scanRoot:          root.Path,
			dirsToSkip:        dirsToSkip,
			skipDirGlob:       config.SkipDirGlob,
			maxInodes:         config.MaxInodes,
			storeAbsolutePath: config.StoreAbsolutePath,
			errors:            make(map[string][]*plugin.FileError),
			foundInv:          make(map[string]bool),
		}
		if err := wc.walk(); err != nil {
			return inv, nil, err
		}
		inv.Append(wc.inventory)
		statuses = append(statuses, wc.statuses()...)
	}
	return inv, plugin.DedupeStatuses(statuses), nil
}

type walkContext struct {
	//nolint:containedctx
	ctx               context.Context
	stats             stats.Collector
	extractors        []Extractor
	fs                scanfs.FS
	scanRoot          string
	dirsToSkip        map[string]bool
	skipDirGlob       glob.Glob
	maxInodes         int
	storeAbsolutePath bool

	inodesVisited int
	extractCalls  int

	inventory inventory.Inventory
	// Extractor name to per-file errors.
	errors map[string][]*plugin.FileError
	// Whether an extractor found any package.
	foundInv map[string]bool
}

func (wc *walkContext) walk() error {
	start := time.Now()
	log.Infof("Starting filesystem walk for root: %q", wc.scanRoot)
	err := fs.WalkDir(wc.fs, ".", wc.handleFile)
	log.Infof("End status: %d inodes visited, %d Extract calls, %s elapsed",
		wc.inodesVisited, wc.extractCalls, time.Since(start))
	return err
}

func (wc *walkContext) handleFile(path string, d fs.DirEntry, fserr error) error {
	wc.inodesVisited++
	if wc.maxInodes > 0 && wc.inodesVisited > wc.maxInodes {
		return fmt.Errorf("maxInodes (%d) exceeded", wc.maxInodes)
	}
	wc.stats.AfterInodeVisited(path)
	if err := wc.ctx.Err(); err != nil {
		return err
	}
	if fserr != nil {
		if os.IsPermission(fserr) {
			log.Debugf("fserr (permission error): %v", fserr)
		} else {
			log.Errorf("fserr (non-permission error): %v", fserr)
		}
		if d != nil && d.IsDir() {
			return fs.SkipDir
		}
		return nil
	}
	if d.IsDir() {
		if path != "." && wc.shouldSkipDir(path) {
			return fs.SkipDir
		}
		return nil
	}
	if !d.Type().IsRegular() {
		return nil
	}

	api := &lazyFileAPI{fs: wc.fs, path: path}
	for _, ex := range wc.extractors {
		if ex.FileRequired(api) {
			wc.runExtractor(ex, path)
		}
	}
	return nil
}

func (wc *walkContext) shouldSkipDir(path string) bool {
	if wc.dirsToSkip[path] {
		return true
	}
	return wc.skipDirGlob != nil && wc.skipDirGlob.Match(path)
}

func (wc *walkContext) runExtractor(ex Extractor, path string) {
	rc, err := wc.fs.Open(path)
	if err != nil {
		wc.addFileError(ex, path, fmt.Errorf("Open(%s): %w", path, err))
		return
	}
	defer rc.Close()
	info, err := rc.Stat()
	if err != nil {
		wc.addFileError(ex, path, fmt.Errorf("stat(%s): %w", path, err))
		return
	}

	wc.extractCalls++
	start := time.Now()
	results, err := ex.Extract(wc.ctx, &ScanInput{
		FS:     wc.fs,
		Path:   path,
		Root:   wc.scanRoot,
		Info:   info,
		Reader: rc,
	})
	wc.stats.AfterExtractorRun(ex.Name(), time.Since(start), err)
	if err != nil {
		wc.addFileError(ex, path, err)
	}

	if len(results.Packages) == 0 {
		return
	}
	wc.foundInv[ex.Name()] = true
	for _, p := range results.Packages {
		p.Plugins = append(p.Plugins, ex.Name())
		if wc.storeAbsolutePath && wc.scanRoot != "" {
			for i, l := range p.Locations {
				p.Locations[i] = filepath.Join(wc.scanRoot, filepath.FromSlash(l))
			}
		}
	}
	wc.inventory.Append(results)
}

func (wc *walkContext) addFileError(ex Extractor, path string, err error) {
	log.Warnf("%s: %v", ex.Name(), err)
	wc.errors[ex.Name()] = append(wc.errors[ex.Name()], &plugin.FileError{
		FilePath:     path,
		ErrorMessage: err.Error(),
	})
}

func (wc *walkContext) statuses() []*plugin.Status {
	result := make([]*plugin.Status, 0, len(wc.extractors))
	for _, ex := range wc.extractors {
		fileErrs := wc.errors[ex.Name()]
		result = append(result, plugin.StatusFromErr(ex, wc.foundInv[ex.Name()], plugin.OverallErrFromFileErrs(fileErrs), fileErrs))
	}
	return result
}

type lazyFileAPI struct {
	fs       scanfs.FS
	path     string
	info     fs.FileInfo
	statErr  error
	statDone bool
}

func (api *lazyFileAPI) Path() string { return api.path }

func (api *lazyFileAPI) Stat() (fs.FileInfo, error) {
	if !api.statDone {
		api.statDone = true
		api.info, api.statErr = fs.Stat(api.fs, api.path)
	}
	return api.info, api.statErr
}

// stripAllPathPrefixes turns the directories to skip into slash separated
// paths relative to the scan root they are in.
func stripAllPathPrefixes(paths []string, roots []*scanfs.ScanRoot) (map[string]bool, error) {
	result := make(map[string]bool, len(paths))
	virtual := len(roots) > 0 && slices.ContainsFunc(roots, func(r *scanfs.ScanRoot) bool { return r.IsVirtual() })
	for _, p := range paths {
		if virtual && !filepath.IsAbs(p) {
			result[strings.Trim(filepath.ToSlash(p), "/")] = true
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		rel, err := stripFromAtLeastOnePrefix(abs, roots)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		result[filepath.ToSlash(rel)] = true
	}
	return result, nil
}

func stripFromAtLeastOnePrefix(path string, roots []*scanfs.ScanRoot) (string, error) {
	for _, r := range roots {
		if r.IsVirtual() {
			continue
		}
		rel, err := filepath.Rel(r.Path, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return rel, nil
	}
	return "", ErrNotRelativeToScanRoots
}
