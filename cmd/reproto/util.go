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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"

	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/manifest"
	"go.reproto.dev/reproto/repository"
	"go.reproto.dev/reproto/resolver"
	"go.reproto.dev/reproto/source"
	"go.reproto.dev/reproto/syntax"
)

func splitPath(path string) []string {
	var out []string
	for {
		dir, file := filepath.Split(path)
		if dir == "" {
			out = append(out, file)
			slices.Reverse(out)
			return out
		}
		out = append(out, file)
		path = dir[:len(dir)-1]
	}
}

// printDiagnostics writes each diagnostic's kind and message to stderr.
func printDiagnostics(diags []*diagnostic.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}

// loadEnvironment resolves every package the manifest requires plus the
// local package named pkgName, parses their files, and links them into a
// resolver.Environment ready for compiler.Compile (§4.3 steps 1-5).
func loadEnvironment(repo *repository.FilesystemRepository, m *manifest.Manifest, pkgName string) (*resolver.Environment, []*diagnostic.Diagnostic) {
	env := resolver.NewEnvironment()
	var diags []*diagnostic.Diagnostic

	versionResolver := resolver.NewVersionResolver(repo.AvailableVersions)
	var reqs []resolver.Requirement
	for _, r := range m.PackageRequirements() {
		reqs = append(reqs, resolver.Requirement{Package: r.Package, VersionReq: r.VersionReq})
	}
	selected, verDiags := versionResolver.Resolve(reqs)
	diags = append(diags, verDiags...)
	if len(verDiags) > 0 {
		return env, diags
	}

	for _, r := range m.PackageRequirements() {
		version := selected[r.Package]
		if version == nil {
			continue
		}
		files, err := parsePackageSources(repo, r.Package, version)
		if err != nil {
			diags = append(diags, diagnostic.New(diagnostic.KindIO, err.Error()))
			continue
		}
		if _, pkgDiags := env.AddPackage(r.Package, version, files); len(pkgDiags) > 0 {
			diags = append(diags, pkgDiags...)
		}
	}

	localFiles, err := parsePackageSources(repo, pkgName, nil)
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.KindIO, err.Error()))
		return env, diags
	}
	if _, pkgDiags := env.AddPackage(pkgName, nil, localFiles); len(pkgDiags) > 0 {
		diags = append(diags, pkgDiags...)
	}

	return env, diags
}

func parsePackageSources(repo *repository.FilesystemRepository, pkgName string, version *semver.Version) ([]*syntax.File, error) {
	sources, err := repo.Sources(pkgName, version)
	if err != nil {
		return nil, fmt.Errorf("loading sources for %q: %w", pkgName, err)
	}
	var files []*syntax.File
	for _, obj := range sources {
		buf, err := source.ReadAll(obj)
		if err != nil {
			return nil, err
		}
		file, err := syntax.Parse(buf)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", obj.Name(), err)
		}
		files = append(files, file)
	}
	return files, nil
}
