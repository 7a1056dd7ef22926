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

package compiler_test

import (
	"testing"

	"go.reproto.dev/reproto/compiler"
	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/internal/testutil"
	"go.reproto.dev/reproto/ir"
	"go.reproto.dev/reproto/resolver"
	"go.reproto.dev/reproto/syntax"
)

func mustParse(t *testing.T, src string) *syntax.File {
	t.Helper()
	file, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	return file
}

func compileSingleFile(t *testing.T, pkgName, src string) compiler.Result {
	t.Helper()
	file := mustParse(t, src)
	env := resolver.NewEnvironment()
	if _, diags := env.AddPackage(pkgName, nil, []*syntax.File{file}); len(diags) != 0 {
		t.Fatalf("unexpected load diagnostics: %v", diags)
	}
	return compiler.Compile(env, pkgName)
}

// Scenario 1: a simple string-backed enum.
func TestSimpleEnum(t *testing.T) {
	t.Parallel()
	result := compileSingleFile(t, "example.colors", `
enum E as string {
	A as "foo";
	B as "bar";
}
`)
	testutil.ExpectTrue(t, result.OK())
	testutil.ExpectEq(t, 0, len(result.Warnings))
	testutil.ExpectEq(t, 1, len(result.Package.Decls))

	decl := result.Package.Decls[0]
	testutil.ExpectEq(t, ir.OrdinalString, decl.OrdinalType)
	testutil.ExpectEq(t, 2, len(decl.Variants))
	testutil.ExpectEq(t, "foo", decl.Variants[0].Ordinal.(string))
	testutil.ExpectEq(t, "bar", decl.Variants[1].Ordinal.(string))
}

// Scenario 2: two fields claiming the same serialization identifier.
func TestDuplicateAliasIsRejected(t *testing.T) {
	t.Parallel()
	result := compileSingleFile(t, "example.widgets", `
type T {
	a: string as "x";
	b: string as "x";
}
`)
	testutil.ExpectFalse(t, result.OK())
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(result.Errors), result.Errors)
	}
	testutil.ExpectEq(t, diagnostic.KindConflictingAlias, result.Errors[0].Kind())
	testutil.ExpectEq(t, 2, len(result.Errors[0].Spans()))
}

// Scenario 3: a field in one package resolves to a declaration in another,
// via a `use` alias.
func TestUseResolution(t *testing.T) {
	t.Parallel()

	fileA := mustParse(t, "type A {}\n")
	fileB := mustParse(t, `
use a.pkg as a;
type B {
	x: a::A;
}
`)

	env := resolver.NewEnvironment()
	if _, diags := env.AddPackage("a.pkg", nil, []*syntax.File{fileA}); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics loading a.pkg: %v", diags)
	}
	if _, diags := env.AddPackage("b.pkg", nil, []*syntax.File{fileB}); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics loading b.pkg: %v", diags)
	}

	result := compiler.Compile(env, "b.pkg")
	testutil.ExpectTrue(t, result.OK())
	testutil.ExpectEq(t, 1, len(result.Package.Decls))

	decl := result.Package.Decls[0]
	if len(decl.Fields) != 1 {
		t.Fatalf("expected one field, got %d", len(decl.Fields))
	}
	field := decl.Fields[0]
	testutil.ExpectEq(t, "a.pkg", field.Type.Package)
	testutil.ExpectSliceEq(t, ir.DeclPath{"A"}, field.Type.Path)
}

func TestUnrecognizedFileOptionWarns(t *testing.T) {
	t.Parallel()
	result := compileSingleFile(t, "example.widgets", `
option made_up_option = "x";
type T {}
`)
	testutil.ExpectTrue(t, result.OK())
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	testutil.ExpectEq(t, uint32(4000), result.Warnings[0].Code())
}

func TestUnusedUseWarns(t *testing.T) {
	t.Parallel()

	fileA := mustParse(t, "type A {}\n")
	fileB := mustParse(t, `
use a.pkg as a;
type B {}
`)

	env := resolver.NewEnvironment()
	env.AddPackage("a.pkg", nil, []*syntax.File{fileA})
	env.AddPackage("b.pkg", nil, []*syntax.File{fileB})

	result := compiler.Compile(env, "b.pkg")
	testutil.ExpectTrue(t, result.OK())
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	testutil.ExpectEq(t, uint32(4001), result.Warnings[0].Code())
}

func TestEndpointWithoutResponseWarns(t *testing.T) {
	t.Parallel()
	result := compileSingleFile(t, "example.rpc", `
service Widgets {
	get(string);
}
`)
	testutil.ExpectTrue(t, result.OK())
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	testutil.ExpectEq(t, uint32(4002), result.Warnings[0].Code())
}

func TestInterfaceSubTypeDiscriminatorDefaultsToName(t *testing.T) {
	t.Parallel()
	result := compileSingleFile(t, "example.shapes", `
interface Shape {
	Circle {
		radius: string;
	}
}
`)
	testutil.ExpectTrue(t, result.OK())
	testutil.ExpectEq(t, 1, len(result.Package.Decls))
	decl := result.Package.Decls[0]
	if len(decl.SubTypes) != 1 {
		t.Fatalf("expected one sub-type, got %d", len(decl.SubTypes))
	}
	testutil.ExpectEq(t, "Circle", decl.SubTypes[0].Discriminator)
}
