// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Package repository locates the files backing a package+version on the
// filesystem. The layout is fixed: <root>/<a>/<b>/<c>.reproto holds package
// `a.b.c`; a versioned layout appends "-<version>" to the leaf file stem.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"go.reproto.dev/reproto/source"
)

// Repository enumerates the versions available for a package and locates
// the source files backing one selected version. Either a local filesystem
// tree or an indexed remote store can implement it; only
// FilesystemRepository is provided here; a network-backed implementation is
// an external collaborator (§1 Non-goals: fetching artifacts over the
// network).
type Repository interface {
	// AvailableVersions returns every version of pkg this repository can
	// serve, in no particular order.
	AvailableVersions(pkg string) ([]*semver.Version, error)

	// Sources returns the Source Objects backing (pkg, version).
	Sources(pkg string, version *semver.Version) ([]source.Object, error)
}

// FilesystemRepository walks a set of root directories looking for files
// named by the package-path-to-directory-path convention.
type FilesystemRepository struct {
	Roots []string
}

var _ Repository = (*FilesystemRepository)(nil)

func packagePath(pkg string) []string {
	return strings.Split(pkg, ".")
}

// candidateFiles returns, for each root, every file that could plausibly
// back some version of pkg: <root>/<a>/<b>/<c>.reproto or
// <root>/<a>/<b>/<c>-<version>.reproto.
func (r *FilesystemRepository) candidateFiles(pkg string) ([]string, error) {
	parts := packagePath(pkg)
	if len(parts) == 0 {
		return nil, fmt.Errorf("repository: empty package name")
	}
	dirParts, leaf := parts[:len(parts)-1], parts[len(parts)-1]

	var out []string
	for _, root := range r.Roots {
		dir := filepath.Join(append([]string{root}, dirParts...)...)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("repository: read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if !strings.HasSuffix(name, ".reproto") {
				continue
			}
			stem := strings.TrimSuffix(name, ".reproto")
			if stem == leaf || strings.HasPrefix(stem, leaf+"-") {
				out = append(out, filepath.Join(dir, name))
			}
		}
	}
	return out, nil
}

func stemVersion(path, leaf string) (string, bool) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, ".reproto")
	if stem == leaf {
		return "", true // unversioned layout
	}
	prefix := leaf + "-"
	if strings.HasPrefix(stem, prefix) {
		return strings.TrimPrefix(stem, prefix), true
	}
	return "", false
}

func (r *FilesystemRepository) AvailableVersions(pkg string) ([]*semver.Version, error) {
	files, err := r.candidateFiles(pkg)
	if err != nil {
		return nil, err
	}
	parts := packagePath(pkg)
	leaf := parts[len(parts)-1]

	seen := make(map[string]bool)
	var out []*semver.Version
	for _, f := range files {
		raw, ok := stemVersion(f, leaf)
		if !ok || raw == "" {
			continue
		}
		if seen[raw] {
			continue
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		seen[raw] = true
		out = append(out, v)
	}
	sort.Sort(semverSlice(out))
	return out, nil
}

type semverSlice []*semver.Version

func (s semverSlice) Len() int           { return len(s) }
func (s semverSlice) Less(i, j int) bool { return s[i].LessThan(s[j]) }
func (s semverSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func (r *FilesystemRepository) Sources(pkg string, version *semver.Version) ([]source.Object, error) {
	files, err := r.candidateFiles(pkg)
	if err != nil {
		return nil, err
	}
	parts := packagePath(pkg)
	leaf := parts[len(parts)-1]

	var out []source.Object
	for _, f := range files {
		raw, ok := stemVersion(f, leaf)
		if !ok {
			continue
		}
		if version == nil {
			if raw != "" {
				continue
			}
		} else {
			if raw == "" {
				continue
			}
			v, err := semver.NewVersion(raw)
			if err != nil || !v.Equal(version) {
				continue
			}
		}
		out = append(out, &source.FileSource{Path: f})
	}
	return out, nil
}
