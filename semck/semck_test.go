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

package semck_test

import (
	"testing"

	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/ir"
	"go.reproto.dev/reproto/semck"
)

func hasRule(diags []*diagnostic.Diagnostic, rule string) bool {
	for _, d := range diags {
		if d.RuleID() == rule {
			return true
		}
	}
	return false
}

func ruleIDs(diags []*diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.RuleID()
	}
	return out
}

func strType() *ir.TypeReference {
	return &ir.TypeReference{Primitive: ir.PrimitiveString}
}

func intType(width uint32) *ir.TypeReference {
	return &ir.TypeReference{Primitive: ir.PrimitiveSigned, Width: width}
}

// field-type-change: scenario 5. A record field's declared type narrows
// from string to signed(32); the checker must flag it as breaking.
func TestFieldTypeChangeIsBreaking(t *testing.T) {
	old := ir.NewPackage("example.widgets", "1.0.0", []*ir.Decl{
		{
			Kind: ir.DeclType,
			Name: "Widget",
			Path: ir.DeclPath{"Widget"},
			Fields: []*ir.Field{
				{Name: "id", SerializationIdent: "id", Type: strType()},
			},
		},
	})
	new := ir.NewPackage("example.widgets", "1.1.0", []*ir.Decl{
		{
			Kind: ir.DeclType,
			Name: "Widget",
			Path: ir.DeclPath{"Widget"},
			Fields: []*ir.Field{
				{Name: "id", SerializationIdent: "id", Type: intType(32)},
			},
		},
	})

	diags := semck.Compare(old, new)
	if !hasRule(diags, "field-type-change") {
		t.Fatalf("expected field-type-change violation, got %v", ruleIDs(diags))
	}
}

// sub-type-discriminator-change: scenario 6. An interface sub-type's wire
// discriminator is renamed; existing encoded messages can no longer select
// the right arm, so this must be reported as breaking.
func TestSubTypeDiscriminatorChangeIsBreaking(t *testing.T) {
	old := ir.NewPackage("example.shapes", "1.0.0", []*ir.Decl{
		{
			Kind: ir.DeclInterface,
			Name: "Shape",
			Path: ir.DeclPath{"Shape"},
			SubTypes: []*ir.SubType{
				{Name: "Circle", Discriminator: "circle"},
			},
		},
	})
	new := ir.NewPackage("example.shapes", "1.1.0", []*ir.Decl{
		{
			Kind: ir.DeclInterface,
			Name: "Shape",
			Path: ir.DeclPath{"Shape"},
			SubTypes: []*ir.SubType{
				{Name: "Circle", Discriminator: "disc"},
			},
		},
	})

	diags := semck.Compare(old, new)
	if !hasRule(diags, "sub-type-discriminator-change") {
		t.Fatalf("expected sub-type-discriminator-change violation, got %v", ruleIDs(diags))
	}
}

func TestAddingOptionalFieldIsCompatible(t *testing.T) {
	old := ir.NewPackage("example.widgets", "1.0.0", []*ir.Decl{
		{Kind: ir.DeclType, Name: "Widget", Path: ir.DeclPath{"Widget"}},
	})
	new := ir.NewPackage("example.widgets", "1.1.0", []*ir.Decl{
		{
			Kind: ir.DeclType,
			Name: "Widget",
			Path: ir.DeclPath{"Widget"},
			Fields: []*ir.Field{
				{Name: "nickname", SerializationIdent: "nickname", Type: strType(), Optional: true},
			},
		},
	})

	diags := semck.Compare(old, new)
	if len(diags) != 0 {
		t.Fatalf("expected no violations, got %v", ruleIDs(diags))
	}
}

func TestAddingRequiredFieldIsBreaking(t *testing.T) {
	old := ir.NewPackage("example.widgets", "1.0.0", []*ir.Decl{
		{Kind: ir.DeclType, Name: "Widget", Path: ir.DeclPath{"Widget"}},
	})
	new := ir.NewPackage("example.widgets", "1.1.0", []*ir.Decl{
		{
			Kind: ir.DeclType,
			Name: "Widget",
			Path: ir.DeclPath{"Widget"},
			Fields: []*ir.Field{
				{Name: "id", SerializationIdent: "id", Type: strType()},
			},
		},
	})

	diags := semck.Compare(old, new)
	if !hasRule(diags, "required-field-added") {
		t.Fatalf("expected required-field-added violation, got %v", ruleIDs(diags))
	}
}

func TestEnumVariantAdditionIsCompatible(t *testing.T) {
	old := ir.NewPackage("example.colors", "1.0.0", []*ir.Decl{
		{
			Kind: ir.DeclEnum,
			Name: "Color",
			Path: ir.DeclPath{"Color"},
			Variants: []*ir.EnumVariant{
				{Name: "Red", Ordinal: "Red"},
			},
		},
	})
	new := ir.NewPackage("example.colors", "1.1.0", []*ir.Decl{
		{
			Kind: ir.DeclEnum,
			Name: "Color",
			Path: ir.DeclPath{"Color"},
			Variants: []*ir.EnumVariant{
				{Name: "Red", Ordinal: "Red"},
				{Name: "Blue", Ordinal: "Blue"},
			},
		},
	})

	diags := semck.Compare(old, new)
	if len(diags) != 0 {
		t.Fatalf("expected no violations, got %v", ruleIDs(diags))
	}
}

func TestEndpointRemovalIsBreaking(t *testing.T) {
	old := ir.NewPackage("example.rpc", "1.0.0", []*ir.Decl{
		{
			Kind: ir.DeclService,
			Name: "Widgets",
			Path: ir.DeclPath{"Widgets"},
			Endpoints: []*ir.ServiceEndpoint{
				{Identifier: "get", Alias: "get"},
			},
		},
	})
	new := ir.NewPackage("example.rpc", "1.1.0", []*ir.Decl{
		{Kind: ir.DeclService, Name: "Widgets", Path: ir.DeclPath{"Widgets"}},
	})

	diags := semck.Compare(old, new)
	if !hasRule(diags, "endpoint-removed") {
		t.Fatalf("expected endpoint-removed violation, got %v", ruleIDs(diags))
	}
}
