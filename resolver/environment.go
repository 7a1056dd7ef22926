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

// Package resolver implements the Package Environment and import/name
// resolution (§4.3) and the semantic-version selection (§4.3 steps 1-2)
// that together turn a manifest plus a set of parsed files into a fully
// linked environment ready for the IR builder.
package resolver

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/syntax"
)

// Package is every parsed file belonging to one selected (name, version),
// plus an index of its top-level declarations for name resolution.
type Package struct {
	Name    string
	Version *semver.Version // nil for the local compile unit being built
	Files   []*syntax.File

	topLevel map[string]syntax.Decl
}

// Environment is the read-only aggregate threaded into the IR builder: a
// package-name-keyed map of loaded, declaration-indexed file sets. It is
// constructed once per compilation and becomes read-only at the start of
// the IR-builder phase (§5).
type Environment struct {
	packages map[string]*Package
}

func NewEnvironment() *Environment {
	return &Environment{packages: make(map[string]*Package)}
}

func (env *Environment) Package(name string) (*Package, bool) {
	p, ok := env.packages[name]
	return p, ok
}

func (env *Environment) PackageNames() []string {
	names := make([]string, 0, len(env.packages))
	for name := range env.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddPackage inserts a loaded, parsed package into the environment under
// key name (§4.3 step 3 "Load"). Declaration names are indexed across every
// file in the set; a name defined twice is reported as DuplicateDeclaration
// and the second definition is dropped from the index.
func (env *Environment) AddPackage(name string, version *semver.Version, files []*syntax.File) (*Package, []*diagnostic.Diagnostic) {
	pkg := &Package{
		Name:     name,
		Version:  version,
		Files:    files,
		topLevel: make(map[string]syntax.Decl),
	}
	var diags []*diagnostic.Diagnostic
	for _, file := range files {
		for _, decl := range file.Decls {
			declName := decl.DeclName().Get()
			if prev, ok := pkg.topLevel[declName]; ok {
				diags = append(diags, diagnostic.DuplicateDeclaration(declName, prev.Span(), decl.Span()))
				continue
			}
			pkg.topLevel[declName] = decl
		}
	}
	env.packages[name] = pkg
	return pkg, diags
}

// UseBindings resolves every `use` in file to the already-loaded package it
// names, binding the use-alias (defaulting to the package name's last dot
// part) to that package in the file's local scope (§4.3 step 4).
func (env *Environment) UseBindings(file *syntax.File) (map[string]*Package, []*diagnostic.Diagnostic) {
	bindings := make(map[string]*Package, len(file.Uses))
	var diags []*diagnostic.Diagnostic
	for _, use := range file.Uses {
		pkgName := use.Path.String()
		target, ok := env.packages[pkgName]
		if !ok {
			diags = append(diags, diagnostic.UnknownPackage(pkgName, use.Span()))
			continue
		}
		alias := defaultAlias(use.Path)
		if use.Alias != nil {
			alias = use.Alias.Get()
		}
		bindings[alias] = target
	}
	return bindings, diags
}

func defaultAlias(path *syntax.PackageName) string {
	if len(path.Parts) == 0 {
		return ""
	}
	return path.Parts[len(path.Parts)-1].Get()
}

// ResolvedName is the result of resolving a syntax.Name against the
// environment: a package plus the dotted declaration path within it.
type ResolvedName struct {
	Package *Package
	Path    []string
	Decl    syntax.Decl
}

// ResolveName implements §4.3 step 5: if name carries a use-alias prefix,
// resolution starts at that package's top-level declarations; otherwise it
// starts at the local package's. Each subsequent dotted part descends into
// the previous declaration's nested InnerDecl members.
func ResolveName(name *syntax.Name, local *Package, uses map[string]*Package) (*ResolvedName, *diagnostic.Diagnostic) {
	target := local
	if name.Prefix != nil {
		alias := name.Prefix.Get()
		use, ok := uses[alias]
		if !ok {
			return nil, diagnostic.UnknownName(name.String(), name.Span())
		}
		target = use
	}
	if len(name.Parts) == 0 {
		return nil, diagnostic.UnknownName(name.String(), name.Span())
	}

	head := name.Parts[0].Get()
	decl, ok := target.topLevel[head]
	if !ok {
		return nil, diagnostic.UnknownName(name.String(), name.Span())
	}

	path := []string{head}
	for _, part := range name.Parts[1:] {
		nested, ok := lookupNested(decl, part.Get())
		if !ok {
			return nil, diagnostic.UnknownName(name.String(), name.Span())
		}
		decl = nested
		path = append(path, part.Get())
	}

	return &ResolvedName{Package: target, Path: path, Decl: decl}, nil
}

func lookupNested(d syntax.Decl, name string) (syntax.Decl, bool) {
	for _, m := range declMembers(d) {
		inner, ok := m.(*syntax.InnerDecl)
		if !ok {
			continue
		}
		if inner.Decl.DeclName().Get() == name {
			return inner.Decl, true
		}
	}
	return nil, false
}

func declMembers(d syntax.Decl) []syntax.Member {
	switch t := d.(type) {
	case *syntax.TypeDecl:
		return t.Members
	case *syntax.TupleDecl:
		return t.Members
	case *syntax.EnumDecl:
		return t.Members
	case *syntax.InterfaceDecl:
		return t.Members
	default:
		return nil
	}
}
