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

package syntax_test

import (
	"testing"

	"go.reproto.dev/reproto/internal/testutil"
	"go.reproto.dev/reproto/syntax"
)

func mustParse(t *testing.T, src string) *syntax.File {
	t.Helper()
	file, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	return file
}

func TestParseEmptyFile(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "")
	testutil.ExpectEq(t, 0, len(file.Uses))
	testutil.ExpectEq(t, 0, len(file.Options))
	testutil.ExpectEq(t, 0, len(file.Decls))
}

func TestParseModuleDoc(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "//! package docs\ntype Foo {}\n")
	if file.Doc == nil {
		t.Fatal("expected module doc comment")
	}
	testutil.ExpectEq(t, " package docs", file.Doc.Text())
}

func TestParseUse(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "use foo.bar@^1.0.0 as fb;\n")
	testutil.ExpectEq(t, 1, len(file.Uses))
	use := file.Uses[0]
	testutil.ExpectEq(t, "foo.bar", use.Path.String())
	if use.VersionReq == nil {
		t.Fatal("expected version requirement")
	}
	testutil.ExpectEq(t, "^1.0.0", use.VersionReq.Raw())
	if use.Alias == nil {
		t.Fatal("expected alias")
	}
	testutil.ExpectEq(t, "fb", use.Alias.Get())
}

func TestParseUseNoVersionNoAlias(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "use foo.bar;\n")
	use := file.Uses[0]
	if use.VersionReq != nil {
		t.Fatal("expected no version requirement")
	}
	if use.Alias != nil {
		t.Fatal("expected no alias")
	}
}

func TestParseFileOption(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `option java_package = "com.example";` + "\n")
	testutil.ExpectEq(t, 1, len(file.Options))
	opt := file.Options[0]
	testutil.ExpectEq(t, "java_package", opt.Name.Get())
	text, ok := opt.Value.(*syntax.TextLit)
	if !ok {
		t.Fatalf("expected *syntax.TextLit value, got %T", opt.Value)
	}
	testutil.ExpectEq(t, "com.example", text.Get())
}

func TestParseTypeDecl(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `
/// a point in space
type Point {
	x: i32;
	y: i32;
	label?: string as "display_label";
}
`)
	testutil.ExpectEq(t, 1, len(file.Decls))
	decl, ok := file.Decls[0].(*syntax.TypeDecl)
	if !ok {
		t.Fatalf("expected *syntax.TypeDecl, got %T", file.Decls[0])
	}
	testutil.ExpectEq(t, "Point", decl.Name.Get())
	if decl.Doc == nil {
		t.Fatal("expected doc comment")
	}
	testutil.ExpectEq(t, " a point in space", decl.Doc.Text())
	testutil.ExpectEq(t, 3, len(decl.Members))

	x, ok := decl.Members[0].(*syntax.Field)
	if !ok {
		t.Fatalf("expected *syntax.Field, got %T", decl.Members[0])
	}
	testutil.ExpectEq(t, "x", x.Name.Get())
	testutil.ExpectFalse(t, x.Optional)

	label, ok := decl.Members[2].(*syntax.Field)
	if !ok {
		t.Fatalf("expected *syntax.Field, got %T", decl.Members[2])
	}
	testutil.ExpectTrue(t, label.Optional)
	aliasName, ok := label.FieldAliasName()
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "display_label", aliasName)
}

func TestParseTupleDecl(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "tuple Pair {\n\ta: i32;\n\tb: i32;\n}\n")
	decl, ok := file.Decls[0].(*syntax.TupleDecl)
	if !ok {
		t.Fatalf("expected *syntax.TupleDecl, got %T", file.Decls[0])
	}
	testutil.ExpectEq(t, "Pair", decl.Name.Get())
	testutil.ExpectEq(t, 2, len(decl.Members))
}

func TestParseInterfaceDecl(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `
interface Shape {
	id: string;

	Circle {
		radius: f64;
	}
	Square as "square_v2" {
		side: f64;
	}
}
`)
	decl, ok := file.Decls[0].(*syntax.InterfaceDecl)
	if !ok {
		t.Fatalf("expected *syntax.InterfaceDecl, got %T", file.Decls[0])
	}
	testutil.ExpectEq(t, "Shape", decl.Name.Get())
	testutil.ExpectEq(t, 1, len(decl.Members))
	testutil.ExpectEq(t, 2, len(decl.SubTypes))

	circle := decl.SubTypes[0]
	testutil.ExpectEq(t, "Circle", circle.Name.Get())
	if circle.Alias != nil {
		t.Fatal("expected no wire alias for Circle")
	}

	square := decl.SubTypes[1]
	testutil.ExpectEq(t, "Square", square.Name.Get())
	if square.Alias == nil {
		t.Fatal("expected wire alias for Square")
	}
	testutil.ExpectEq(t, "square_v2", square.Alias.Get())
}

func TestParseEnumDecl(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `
enum Color as string {
	Red as "red";
	Green as "green";
	Blue;
}
`)
	decl, ok := file.Decls[0].(*syntax.EnumDecl)
	if !ok {
		t.Fatalf("expected *syntax.EnumDecl, got %T", file.Decls[0])
	}
	testutil.ExpectEq(t, "Color", decl.Name.Get())
	if decl.AsType == nil {
		t.Fatal("expected explicit backing type")
	}
	testutil.ExpectEq(t, 3, len(decl.Variants))

	red := decl.Variants[0]
	testutil.ExpectEq(t, "Red", red.Name.Get())
	text, ok := red.Value.(*syntax.TextLit)
	if !ok {
		t.Fatalf("expected *syntax.TextLit, got %T", red.Value)
	}
	testutil.ExpectEq(t, "red", text.Get())

	blue := decl.Variants[2]
	if blue.Value != nil {
		t.Fatal("expected auto-assigned variant to have no explicit value")
	}
}

func TestParseServiceDecl(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `
service Greeter {
	say_hello(HelloRequest) -> HelloResponse;
	chat(stream ChatMessage) -> stream ChatMessage as chat_v2;
	ping() -> Pong;
}
`)
	decl, ok := file.Decls[0].(*syntax.ServiceDecl)
	if !ok {
		t.Fatalf("expected *syntax.ServiceDecl, got %T", file.Decls[0])
	}
	testutil.ExpectEq(t, 3, len(decl.Endpoints))

	sayHello := decl.Endpoints[0]
	testutil.ExpectEq(t, "say_hello", sayHello.Name.Get())
	if sayHello.Request == nil || sayHello.Response == nil {
		t.Fatal("expected request and response channels")
	}
	testutil.ExpectFalse(t, sayHello.Request.Streaming)

	chat := decl.Endpoints[1]
	testutil.ExpectTrue(t, chat.Request.Streaming)
	testutil.ExpectTrue(t, chat.Response.Streaming)
	if chat.Alias == nil {
		t.Fatal("expected endpoint alias")
	}
	testutil.ExpectEq(t, "chat_v2", chat.Alias.Get())

	ping := decl.Endpoints[2]
	if ping.Request != nil {
		t.Fatal("expected no request channel for ping")
	}
}

func TestParseArrayAndMapTypes(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "type Box {\n\titems: [string];\n\tattrs: {string: i32};\n}\n")
	decl := file.Decls[0].(*syntax.TypeDecl)

	items := decl.Members[0].(*syntax.Field)
	if _, ok := items.Type.(*syntax.Array); !ok {
		t.Fatalf("expected *syntax.Array, got %T", items.Type)
	}

	attrs := decl.Members[1].(*syntax.Field)
	if _, ok := attrs.Type.(*syntax.Map); !ok {
		t.Fatalf("expected *syntax.Map, got %T", attrs.Type)
	}
}

func TestParseValues(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `
option a = 1;
option b = 1.5;
option c = true;
option d = "hi";
option e = [1, 2, 3];
option f = Point(x: 1, y: 2);
option g = Color::Red;
`)
	opts := file.Options
	testutil.ExpectEq(t, 7, len(opts))

	if _, ok := opts[0].Value.(*syntax.IntLit); !ok {
		t.Fatalf("expected *syntax.IntLit, got %T", opts[0].Value)
	}
	if _, ok := opts[1].Value.(*syntax.FloatLit); !ok {
		t.Fatalf("expected *syntax.FloatLit, got %T", opts[1].Value)
	}
	boolVal, ok := opts[2].Value.(*syntax.BoolLit)
	if !ok {
		t.Fatalf("expected *syntax.BoolLit, got %T", opts[2].Value)
	}
	testutil.ExpectTrue(t, boolVal.Get())
	if _, ok := opts[3].Value.(*syntax.TextLit); !ok {
		t.Fatalf("expected *syntax.TextLit, got %T", opts[3].Value)
	}
	arr, ok := opts[4].Value.(*syntax.ArrayValue)
	if !ok {
		t.Fatalf("expected *syntax.ArrayValue, got %T", opts[4].Value)
	}
	testutil.ExpectEq(t, 3, len(arr.Items))
	inst, ok := opts[5].Value.(*syntax.InstanceValue)
	if !ok {
		t.Fatalf("expected *syntax.InstanceValue, got %T", opts[5].Value)
	}
	testutil.ExpectEq(t, 2, len(inst.Fields))
	constRef, ok := opts[6].Value.(*syntax.ConstRefValue)
	if !ok {
		t.Fatalf("expected *syntax.ConstRefValue, got %T", opts[6].Value)
	}
	testutil.ExpectEq(t, "Red", constRef.Member.Get())
}

func TestParseCodeBlock(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "type Foo {\n\trust {{ #[derive(Clone)] }}\n}\n")
	decl := file.Decls[0].(*syntax.TypeDecl)
	cb, ok := decl.Members[0].(*syntax.CodeBlock)
	if !ok {
		t.Fatalf("expected *syntax.CodeBlock, got %T", decl.Members[0])
	}
	testutil.ExpectEq(t, "rust", cb.Context.Get())
	testutil.ExpectEq(t, " #[derive(Clone)] ", cb.Content)
}

func TestParseDottedAndQualifiedNames(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "type Foo {\n\tbar: geo::Point.Nested;\n}\n")
	decl := file.Decls[0].(*syntax.TypeDecl)
	field := decl.Members[0].(*syntax.Field)
	name, ok := field.Type.(*syntax.Name)
	if !ok {
		t.Fatalf("expected *syntax.Name, got %T", field.Type)
	}
	if name.Prefix == nil {
		t.Fatal("expected use-alias prefix")
	}
	testutil.ExpectEq(t, "geo", name.Prefix.Get())
	testutil.ExpectEq(t, 2, len(name.Parts))
	testutil.ExpectEq(t, "geo::Point.Nested", name.String())
}

func TestParseNestedDecl(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "type Outer {\n\ttype Inner {\n\t\tx: i32;\n\t}\n}\n")
	outer := file.Decls[0].(*syntax.TypeDecl)
	inner, ok := outer.Members[0].(*syntax.InnerDecl)
	if !ok {
		t.Fatalf("expected *syntax.InnerDecl, got %T", outer.Members[0])
	}
	testutil.ExpectEq(t, "Inner", inner.Decl.DeclName().Get())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		code uint32
	}{
		{"missing_semi", "use foo.bar\ntype X {}\n", 1100},
		{"bad_keyword", "klass Foo {}\n", 1100},
		{"unexpected_eof", "type Foo {", 1102},
		{"bad_field_alias", "type Foo {\n\tx: i32 as 5;\n}\n", 1103},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := syntax.Parse([]byte(test.src))
			testutil.AssertError(t, err)
			parseErr, ok := err.(*syntax.Error)
			if !ok {
				t.Fatalf("expected *syntax.Error, got %T", err)
			}
			testutil.ExpectEq(t, test.code, parseErr.Code())
		})
	}
}

func TestUnparseRoundTrip(t *testing.T) {
	t.Parallel()
	src := "use foo.bar;\ntype Point {\n\tx: i32;\n\ty: i32;\n}\n"
	file := mustParse(t, src)
	unparsed := syntax.Unparse(file)

	reparsed, err := syntax.Parse([]byte(unparsed))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(reparsed.Uses))
	testutil.ExpectEq(t, 1, len(reparsed.Decls))
	testutil.ExpectEq(t, "Point", reparsed.Decls[0].DeclName().Get())
}

func TestDumpJSON(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "type Foo {\n\tx: i32;\n}\n")
	decl := file.Decls[0].(*syntax.TypeDecl)

	got := string(testutil.DumpJSON(decl.Name))
	want := `{"ident": {
    "span": {"start": 5, "len": 3},
    "value": "Foo"}}`
	testutil.ExpectNoDiff(t, want, got)
}
