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

// Package semck compares two IR snapshots of the same package — old and
// new — and classifies every declaration-level change as compatible or
// breaking, per the rule table of §4.5. The result is compatible iff
// Compare returns an empty violation list.
package semck

import (
	"fmt"

	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/ir"
)

// Compare enumerates declarations of old and new and reports every rule
// violation in the §4.5 table. A declaration whose Kind changed is reported
// once, as decl-kind-change, without descending into its members: a type
// that became a tuple has no member-level comparison that means anything.
func Compare(old, new *ir.Package) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic

	oldByPath := indexDecls(old.Decls)
	newByPath := indexDecls(new.Decls)

	for path, oldDecl := range oldByPath {
		newDecl, ok := newByPath[path]
		if !ok {
			out = append(out, diagnostic.NewViolation(
				"declaration-removed",
				fmt.Sprintf("declaration %q was removed", path),
				diagnostic.Label("removed declaration", oldDecl.Span),
			))
			continue
		}
		out = append(out, compareDecl(oldDecl, newDecl)...)
	}
	// Declarations present only in new are additions: compatible by default,
	// since nothing in the §4.5 table marks "declaration added" breaking.
	return out
}

func indexDecls(decls []*ir.Decl) map[string]*ir.Decl {
	out := make(map[string]*ir.Decl, len(decls))
	for _, d := range decls {
		out[d.QualifiedName()] = d
	}
	return out
}

func compareDecl(old, new *ir.Decl) []*diagnostic.Diagnostic {
	if old.Kind != new.Kind {
		return []*diagnostic.Diagnostic{diagnostic.NewViolation(
			"decl-kind-change",
			fmt.Sprintf("declaration %q changed kind from %s to %s", old.QualifiedName(), old.Kind, new.Kind),
			diagnostic.Label("old kind", old.Span),
			diagnostic.Label("new kind", new.Span),
		)}
	}

	var out []*diagnostic.Diagnostic
	switch old.Kind {
	case ir.DeclType, ir.DeclTuple:
		out = append(out, compareFields(old.QualifiedName(), old.Fields, new.Fields)...)
	case ir.DeclInterface:
		out = append(out, compareFields(old.QualifiedName(), old.Fields, new.Fields)...)
		out = append(out, compareSubTypes(old.QualifiedName(), old.SubTypes, new.SubTypes)...)
	case ir.DeclEnum:
		out = append(out, compareEnum(old, new)...)
	case ir.DeclService:
		out = append(out, compareEndpoints(old.QualifiedName(), old.Endpoints, new.Endpoints)...)
	}
	return out
}

func compareFields(scope string, oldFields, newFields []*ir.Field) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic

	oldByName := make(map[string]*ir.Field, len(oldFields))
	for _, f := range oldFields {
		oldByName[f.Name] = f
	}
	newByName := make(map[string]*ir.Field, len(newFields))
	for _, f := range newFields {
		newByName[f.Name] = f
	}

	for name, of := range oldByName {
		nf, ok := newByName[name]
		if !ok {
			rule := "optional-field-removed"
			if !of.Optional {
				rule = "required-field-removed"
			}
			out = append(out, diagnostic.NewViolation(
				rule,
				fmt.Sprintf("field %q was removed from %q", name, scope),
				diagnostic.Label("removed field", of.Span),
			))
			continue
		}

		if !typeReferenceEqual(of.Type, nf.Type) {
			out = append(out, diagnostic.NewViolation(
				"field-type-change",
				fmt.Sprintf("field %q of %q changed type", name, scope),
				diagnostic.Label("old type", of.Span),
				diagnostic.Label("new type", nf.Span),
			))
		}

		if of.SerializationIdent != nf.SerializationIdent {
			out = append(out, diagnostic.NewViolation(
				"field-alias-change",
				fmt.Sprintf("field %q of %q changed serialization identifier from %q to %q", name, scope, of.SerializationIdent, nf.SerializationIdent),
				diagnostic.Label("old alias", of.Span),
				diagnostic.Label("new alias", nf.Span),
			))
		}

		// Optional -> required narrows what a reader may omit: breaking.
		// Required -> optional only widens it: compatible.
		if !of.Optional && nf.Optional {
			// compatible
		} else if of.Optional && !nf.Optional {
			out = append(out, diagnostic.NewViolation(
				"field-required-change",
				fmt.Sprintf("field %q of %q changed from optional to required", name, scope),
				diagnostic.Label("old", of.Span),
				diagnostic.Label("new", nf.Span),
			))
		}
	}

	for name, nf := range newByName {
		if _, ok := oldByName[name]; ok {
			continue
		}
		if !nf.Optional {
			out = append(out, diagnostic.NewViolation(
				"required-field-added",
				fmt.Sprintf("required field %q was added to %q", name, scope),
				diagnostic.Label("added field", nf.Span),
			))
		}
	}

	return out
}

func compareSubTypes(scope string, oldSubs, newSubs []*ir.SubType) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic

	oldByName := make(map[string]*ir.SubType, len(oldSubs))
	for _, s := range oldSubs {
		oldByName[s.Name] = s
	}
	newByName := make(map[string]*ir.SubType, len(newSubs))
	for _, s := range newSubs {
		newByName[s.Name] = s
	}

	for name, os := range oldByName {
		ns, ok := newByName[name]
		if !ok {
			out = append(out, diagnostic.NewViolation(
				"sub-type-removed",
				fmt.Sprintf("sub-type %q was removed from interface %q", name, scope),
				diagnostic.Label("removed sub-type", os.Span),
			))
			continue
		}

		if os.Discriminator != ns.Discriminator {
			out = append(out, diagnostic.NewViolation(
				"sub-type-discriminator-change",
				fmt.Sprintf("sub-type %q of interface %q changed discriminator from %q to %q", name, scope, os.Discriminator, ns.Discriminator),
				diagnostic.Label("old discriminator", os.Span),
				diagnostic.Label("new discriminator", ns.Span),
			))
		}

		out = append(out, compareFields(scope+"."+name, os.OwnMembers, ns.OwnMembers)...)
	}

	return out
}

func compareEnum(old, new *ir.Decl) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	scope := old.QualifiedName()

	if old.OrdinalType != new.OrdinalType {
		out = append(out, diagnostic.NewViolation(
			"enum-ordinal-type-change",
			fmt.Sprintf("enum %q changed its ordinal type", scope),
			diagnostic.Label("old", old.Span),
			diagnostic.Label("new", new.Span),
		))
	}

	oldByName := make(map[string]*ir.EnumVariant, len(old.Variants))
	for _, v := range old.Variants {
		oldByName[v.Name] = v
	}
	newByName := make(map[string]*ir.EnumVariant, len(new.Variants))
	for _, v := range new.Variants {
		newByName[v.Name] = v
	}

	for name, ov := range oldByName {
		nv, ok := newByName[name]
		if !ok {
			out = append(out, diagnostic.NewViolation(
				"enum-variant-removed",
				fmt.Sprintf("enum %q removed variant %q", scope, name),
				diagnostic.Label("removed variant", ov.Span),
			))
			continue
		}
		if fmt.Sprintf("%v", ov.Ordinal) != fmt.Sprintf("%v", nv.Ordinal) {
			out = append(out, diagnostic.NewViolation(
				"enum-variant-ordinal-change",
				fmt.Sprintf("enum %q variant %q changed ordinal from %v to %v", scope, name, ov.Ordinal, nv.Ordinal),
				diagnostic.Label("old ordinal", ov.Span),
				diagnostic.Label("new ordinal", nv.Span),
			))
		}
	}

	return out
}

func compareEndpoints(scope string, oldEPs, newEPs []*ir.ServiceEndpoint) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic

	oldByID := make(map[string]*ir.ServiceEndpoint, len(oldEPs))
	for _, e := range oldEPs {
		oldByID[e.Identifier] = e
	}
	newByID := make(map[string]*ir.ServiceEndpoint, len(newEPs))
	for _, e := range newEPs {
		newByID[e.Identifier] = e
	}

	for id, oe := range oldByID {
		ne, ok := newByID[id]
		if !ok {
			out = append(out, diagnostic.NewViolation(
				"endpoint-removed",
				fmt.Sprintf("service %q removed endpoint %q", scope, id),
				diagnostic.Label("removed endpoint", oe.Span),
			))
			continue
		}

		if oe.Alias != ne.Alias {
			out = append(out, diagnostic.NewViolation(
				"endpoint-renamed",
				fmt.Sprintf("service %q endpoint %q changed wire alias from %q to %q", scope, id, oe.Alias, ne.Alias),
				diagnostic.Label("old alias", oe.Span),
				diagnostic.Label("new alias", ne.Span),
			))
		}

		if !channelEqual(oe.Request, ne.Request) || !channelEqual(oe.Response, ne.Response) {
			out = append(out, diagnostic.NewViolation(
				"endpoint-channel-change",
				fmt.Sprintf("service %q endpoint %q changed its request or response shape", scope, id),
				diagnostic.Label("old", oe.Span),
				diagnostic.Label("new", ne.Span),
			))
		}
	}

	return out
}

func channelEqual(a, b *ir.Channel) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return a.Streaming == b.Streaming && typeReferenceEqual(a.Type, b.Type)
}

func typeReferenceEqual(a, b *ir.TypeReference) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.Primitive != b.Primitive || a.Width != b.Width || a.Package != b.Package || !a.Path.Equal(b.Path) {
		return false
	}
	if (a.Array == nil) != (b.Array == nil) {
		return false
	}
	if a.Array != nil && !typeReferenceEqual(a.Array, b.Array) {
		return false
	}
	if (a.Map == nil) != (b.Map == nil) {
		return false
	}
	if a.Map != nil {
		if !typeReferenceEqual(a.Map.Key, b.Map.Key) || !typeReferenceEqual(a.Map.Value, b.Map.Value) {
			return false
		}
	}
	return true
}
