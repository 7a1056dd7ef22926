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

// Package compiler lowers a resolved environment's AST into IR (§4.4): it
// inlines nested declarations as flattened siblings, assigns canonical
// serialization identifiers, resolves type references through the
// environment, and validates the local well-formedness rules (unique
// aliases, unique ordinals, unique endpoint identities).
package compiler

import (
	"fmt"

	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/ir"
	"go.reproto.dev/reproto/resolver"
	"go.reproto.dev/reproto/syntax"
)

var builtinTypes = map[string]ir.PrimitiveKind{
	"any":      ir.PrimitiveAny,
	"float":    ir.PrimitiveFloat,
	"double":   ir.PrimitiveDouble,
	"boolean":  ir.PrimitiveBoolean,
	"string":   ir.PrimitiveString,
	"bytes":    ir.PrimitiveBytes,
	"datetime": ir.PrimitiveDatetime,
	"signed":   ir.PrimitiveSigned,
	"signed8":  ir.PrimitiveSigned,
	"signed16": ir.PrimitiveSigned,
	"signed32": ir.PrimitiveSigned,
	"signed64": ir.PrimitiveSigned,

	"unsigned":   ir.PrimitiveUnsigned,
	"unsigned8":  ir.PrimitiveUnsigned,
	"unsigned16": ir.PrimitiveUnsigned,
	"unsigned32": ir.PrimitiveUnsigned,
	"unsigned64": ir.PrimitiveUnsigned,
}

var builtinWidths = map[string]uint32{
	"signed8": 8, "signed16": 16, "signed32": 32, "signed64": 64,
	"unsigned8": 8, "unsigned16": 16, "unsigned32": 32, "unsigned64": 64,
}

// Option customizes Compile's defaults when a file does not set the
// corresponding file-level option (§6).
type Option interface{ apply(*options) }

type option func(*options)

func (f option) apply(o *options) { f(o) }

type options struct {
	defaultFieldNaming    NamingStyle
	defaultEndpointNaming NamingStyle
}

func WithDefaultFieldNaming(style NamingStyle) Option {
	return option(func(o *options) { o.defaultFieldNaming = style })
}

func WithDefaultEndpointNaming(style NamingStyle) Option {
	return option(func(o *options) { o.defaultEndpointNaming = style })
}

// Result is the outcome of compiling one package: a frozen IR package plus
// any accumulated errors and warnings. A non-empty Errors means the
// compilation failed (§4.4 "Builder errors are collected (best-effort)").
type Result struct {
	Package  *ir.Package
	Errors   []*diagnostic.Diagnostic
	Warnings []*Warning
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

// Compile lowers every file of the named package in env into one frozen
// ir.Package.
func Compile(env *resolver.Environment, pkgName string, opts ...Option) Result {
	o := &options{}
	for _, opt := range opts {
		opt.apply(o)
	}

	pkg, ok := env.Package(pkgName)
	if !ok {
		return Result{Errors: []*diagnostic.Diagnostic{diagnostic.UnknownPackage(pkgName, syntax.Span{})}}
	}

	b := &builder{env: env, pkg: pkg}

	var decls []*ir.Decl
	for _, file := range pkg.Files {
		uses, diags := env.UseBindings(file)
		b.errors = append(b.errors, diags...)

		fieldNaming := o.defaultFieldNaming
		endpointNaming := o.defaultEndpointNaming
		for _, fopt := range file.Options {
			switch fopt.Name.Get() {
			case "field_naming":
				if style, ok := namingStyleFromValue(fopt.Value); ok {
					fieldNaming = style
				}
			case "endpoint_naming":
				if style, ok := namingStyleFromValue(fopt.Value); ok {
					endpointNaming = style
				}
			default:
				b.warnings = append(b.warnings, warnUnrecognizedOption(fopt.Name.Get(), fopt.Span()))
			}
		}

		b.usedAliases = make(map[string]bool, len(uses))
		for _, decl := range file.Decls {
			b.buildDecl(decl, nil, uses, fieldNaming, endpointNaming, &decls)
		}
		for _, use := range file.Uses {
			alias := use.Path.Parts[len(use.Path.Parts)-1].Get()
			if use.Alias != nil {
				alias = use.Alias.Get()
			}
			if !b.usedAliases[alias] {
				b.warnings = append(b.warnings, warnUnusedUse(alias, use.Span()))
			}
		}
	}

	decls = dedupQualifiedNames(b, decls)

	var version string
	if pkg.Version != nil {
		version = pkg.Version.String()
	}
	return Result{
		Package:  ir.NewPackage(pkg.Name, version, decls),
		Errors:   b.errors,
		Warnings: b.warnings,
	}
}

func dedupQualifiedNames(b *builder, decls []*ir.Decl) []*ir.Decl {
	seen := make(map[string]syntax.Span, len(decls))
	out := make([]*ir.Decl, 0, len(decls))
	for _, d := range decls {
		key := d.QualifiedName()
		if prev, dup := seen[key]; dup {
			b.errors = append(b.errors, diagnostic.DuplicateDeclaration(key, prev, d.Span))
			continue
		}
		seen[key] = d.Span
		out = append(out, d)
	}
	return out
}

func namingStyleFromValue(v syntax.Value) (NamingStyle, bool) {
	ident, ok := v.(*syntax.Ident)
	if !ok {
		return 0, false
	}
	return ParseNamingStyle(ident.Get())
}

type builder struct {
	env *resolver.Environment
	pkg *resolver.Package

	errors      []*diagnostic.Diagnostic
	warnings    []*Warning
	usedAliases map[string]bool
}

func (b *builder) buildDecl(
	d syntax.Decl,
	parentPath ir.DeclPath,
	uses map[string]*resolver.Package,
	fieldNaming, endpointNaming NamingStyle,
	out *[]*ir.Decl,
) {
	path := append(append(ir.DeclPath{}, parentPath...), d.DeclName().Get())

	switch t := d.(type) {
	case *syntax.TypeDecl:
		decl := &ir.Decl{Kind: ir.DeclType, Name: t.Name.Get(), Path: path, Span: t.Span(), Doc: docLines(t.Doc)}
		decl.Fields, decl.CodeBlocks = b.buildMembers(t.Members, path, uses, fieldNaming, endpointNaming, out)
		*out = append(*out, decl)

	case *syntax.TupleDecl:
		decl := &ir.Decl{Kind: ir.DeclTuple, Name: t.Name.Get(), Path: path, Span: t.Span(), Doc: docLines(t.Doc)}
		decl.Fields, decl.CodeBlocks = b.buildMembers(t.Members, path, uses, fieldNaming, endpointNaming, out)
		*out = append(*out, decl)

	case *syntax.InterfaceDecl:
		decl := &ir.Decl{Kind: ir.DeclInterface, Name: t.Name.Get(), Path: path, Span: t.Span(), Doc: docLines(t.Doc)}
		decl.Fields, decl.CodeBlocks = b.buildMembers(t.Members, path, uses, fieldNaming, endpointNaming, out)
		b.buildSubTypes(t, decl, path, uses, fieldNaming, endpointNaming, out)
		*out = append(*out, decl)

	case *syntax.EnumDecl:
		decl := &ir.Decl{Kind: ir.DeclEnum, Name: t.Name.Get(), Path: path, Span: t.Span(), Doc: docLines(t.Doc)}
		b.buildEnum(t, decl, uses)
		if len(t.Members) > 0 {
			decl.Fields, decl.CodeBlocks = b.buildMembers(t.Members, path, uses, fieldNaming, endpointNaming, out)
		}
		*out = append(*out, decl)

	case *syntax.ServiceDecl:
		decl := &ir.Decl{Kind: ir.DeclService, Name: t.Name.Get(), Path: path, Span: t.Span(), Doc: docLines(t.Doc)}
		b.buildService(t, decl, uses, endpointNaming)
		*out = append(*out, decl)

	default:
		b.errors = append(b.errors, diagnostic.New(diagnostic.KindBug, fmt.Sprintf("unrecognized declaration type %T", d)))
	}
}

func (b *builder) buildMembers(
	members []syntax.Member,
	path ir.DeclPath,
	uses map[string]*resolver.Package,
	fieldNaming, endpointNaming NamingStyle,
	out *[]*ir.Decl,
) ([]*ir.Field, []*ir.CodeBlock) {
	var fields []*ir.Field
	var code []*ir.CodeBlock
	seen := make(map[string]syntax.Span)
	scope := path.String()

	for _, m := range members {
		switch mm := m.(type) {
		case *syntax.Field:
			ident := fieldSerializationIdent(mm, fieldNaming)
			if prev, dup := seen[ident]; dup {
				b.errors = append(b.errors, diagnostic.ConflictingAlias(scope, ident, prev, mm.Span()))
			} else {
				seen[ident] = mm.Span()
			}
			fields = append(fields, &ir.Field{
				Name:               mm.Name.Get(),
				SerializationIdent: ident,
				Type:               b.resolveTypeExpr(mm.Type, uses),
				Optional:           mm.Optional,
				Span:               mm.Span(),
			})

		case *syntax.CodeBlock:
			code = append(code, &ir.CodeBlock{
				Context: mm.Context.Get(),
				Content: mm.Content,
				Span:    mm.Span(),
			})

		case *syntax.InnerDecl:
			b.buildDecl(mm.Decl, path, uses, fieldNaming, endpointNaming, out)

		case *syntax.Option:
			// Member-level options carry back-end-specific hints; the core
			// preserves nothing about them beyond the two naming options
			// handled at file scope (§6).
		}
	}
	return fields, code
}

func fieldSerializationIdent(f *syntax.Field, style NamingStyle) string {
	if alias, ok := f.FieldAliasName(); ok {
		return alias
	}
	return transformName(style, f.Name.Get())
}

func (b *builder) buildSubTypes(
	t *syntax.InterfaceDecl,
	decl *ir.Decl,
	path ir.DeclPath,
	uses map[string]*resolver.Package,
	fieldNaming, endpointNaming NamingStyle,
	out *[]*ir.Decl,
) {
	for _, st := range t.SubTypes {
		subPath := append(append(ir.DeclPath{}, path...), st.Name.Get())
		ownFields, _ := b.buildMembers(st.Members, subPath, uses, fieldNaming, endpointNaming, out)

		combined := make([]*ir.Field, 0, len(decl.Fields)+len(ownFields))
		combined = append(combined, decl.Fields...)
		seen := make(map[string]syntax.Span, len(combined))
		for _, f := range combined {
			seen[f.SerializationIdent] = f.Span
		}
		for _, f := range ownFields {
			if prev, dup := seen[f.SerializationIdent]; dup {
				b.errors = append(b.errors, diagnostic.ConflictingAlias(subPath.String(), f.SerializationIdent, prev, f.Span))
			}
			seen[f.SerializationIdent] = f.Span
			combined = append(combined, f)
		}

		discriminator := st.Name.Get()
		if st.Alias != nil {
			discriminator = st.Alias.Get()
		}

		decl.SubTypes = append(decl.SubTypes, &ir.SubType{
			Name:          st.Name.Get(),
			Discriminator: discriminator,
			OwnMembers:    ownFields,
			Members:       combined,
			Span:          st.Span(),
		})
	}
}

func (b *builder) buildEnum(t *syntax.EnumDecl, decl *ir.Decl, uses map[string]*resolver.Package) {
	decl.OrdinalType = ir.OrdinalIdentifier
	if t.AsType != nil {
		name, ok := t.AsType.(*syntax.Name)
		if !ok || name.Prefix != nil || len(name.Parts) != 1 {
			b.errors = append(b.errors, diagnostic.InvalidOrdinal(t.Name.Get(), t.AsType.Span(), "ordinal type must be a bare primitive name"))
		} else {
			switch name.Parts[0].Get() {
			case "string":
				decl.OrdinalType = ir.OrdinalString
			default:
				ref := b.resolveTypeExpr(t.AsType, uses)
				switch ref.Primitive {
				case ir.PrimitiveUnsigned:
					decl.OrdinalType = ir.OrdinalUnsigned
					decl.OrdinalRef = ref
				case ir.PrimitiveSigned:
					decl.OrdinalType = ir.OrdinalSigned
					decl.OrdinalRef = ref
				default:
					b.errors = append(b.errors, diagnostic.InvalidOrdinal(t.Name.Get(), t.AsType.Span(), "ordinal type must be string, signed, or unsigned"))
				}
			}
		}
	}

	seen := make(map[string]bool, len(t.Variants))
	for idx, v := range t.Variants {
		ordinal, err := enumOrdinal(decl.OrdinalType, v, idx)
		if err != "" {
			b.errors = append(b.errors, diagnostic.InvalidOrdinal(t.Name.Get(), v.Span(), err))
			continue
		}
		key := fmt.Sprintf("%v", ordinal)
		if seen[key] {
			b.errors = append(b.errors, diagnostic.InvalidOrdinal(t.Name.Get(), v.Span(), fmt.Sprintf("duplicate ordinal %v", ordinal)))
		}
		seen[key] = true
		decl.Variants = append(decl.Variants, &ir.EnumVariant{Name: v.Name.Get(), Ordinal: ordinal, Span: v.Span()})
	}
}

func enumOrdinal(ordinalType ir.EnumOrdinalType, v *syntax.EnumVariant, idx int) (any, string) {
	switch ordinalType {
	case ir.OrdinalString:
		if v.Value == nil {
			return v.Name.Get(), ""
		}
		lit, ok := v.Value.(*syntax.TextLit)
		if !ok {
			return nil, "explicit ordinal for a string-backed enum must be a string literal"
		}
		return lit.Get(), ""

	case ir.OrdinalUnsigned:
		if v.Value == nil {
			return uint64(idx), ""
		}
		lit, ok := v.Value.(*syntax.IntLit)
		if !ok {
			return nil, "explicit ordinal for an unsigned-backed enum must be an integer literal"
		}
		u, ok := lit.GetUint64()
		if !ok {
			return nil, "ordinal literal is not a valid unsigned integer"
		}
		return u, ""

	case ir.OrdinalSigned:
		if v.Value == nil {
			return int64(idx), ""
		}
		lit, ok := v.Value.(*syntax.IntLit)
		if !ok {
			return nil, "explicit ordinal for a signed-backed enum must be an integer literal"
		}
		i, ok := lit.GetInt64()
		if !ok {
			return nil, "ordinal literal is not a valid signed integer"
		}
		return i, ""

	default: // OrdinalIdentifier
		if v.Value != nil {
			return syntax.Unparse(v.Value), ""
		}
		return v.Name.Get(), ""
	}
}

func (b *builder) buildService(t *syntax.ServiceDecl, decl *ir.Decl, uses map[string]*resolver.Package, endpointNaming NamingStyle) {
	seen := make(map[string]syntax.Span, len(t.Endpoints))
	for _, ep := range t.Endpoints {
		alias := transformName(endpointNaming, ep.Name.Get())
		if ep.Alias != nil {
			alias = ep.Alias.Get()
		}
		key := ep.Name.Get() + "\x00" + alias
		if prev, dup := seen[key]; dup {
			b.errors = append(b.errors, diagnostic.ConflictingAlias(t.Name.Get(), alias, prev, ep.Span()))
		} else {
			seen[key] = ep.Span()
		}

		endpoint := &ir.ServiceEndpoint{
			Identifier: ep.Name.Get(),
			Alias:      alias,
			Span:       ep.Span(),
		}
		if ep.Request != nil {
			endpoint.Request = &ir.Channel{Type: b.resolveTypeExpr(ep.Request.Type, uses), Streaming: ep.Request.Streaming}
		}
		if ep.Response != nil {
			endpoint.Response = &ir.Channel{Type: b.resolveTypeExpr(ep.Response.Type, uses), Streaming: ep.Response.Streaming}
		} else {
			b.warnings = append(b.warnings, warnEndpointWithoutResponse(t.Name.Get(), ep.Name.Get(), ep.Span()))
		}
		decl.Endpoints = append(decl.Endpoints, endpoint)
	}
}

func (b *builder) resolveTypeExpr(te syntax.TypeExpr, uses map[string]*resolver.Package) *ir.TypeReference {
	switch t := te.(type) {
	case *syntax.Array:
		return &ir.TypeReference{Array: b.resolveTypeExpr(t.Element, uses), Span: t.Span()}

	case *syntax.Map:
		return &ir.TypeReference{
			Map:  &ir.MapType{Key: b.resolveTypeExpr(t.Key, uses), Value: b.resolveTypeExpr(t.Value, uses)},
			Span: t.Span(),
		}

	case *syntax.Name:
		if t.Prefix == nil && len(t.Parts) == 1 {
			if prim, ok := builtinTypes[t.Parts[0].Get()]; ok {
				return &ir.TypeReference{Primitive: prim, Width: builtinWidths[t.Parts[0].Get()], Span: t.Span()}
			}
		}
		if t.Prefix != nil && b.usedAliases != nil {
			b.usedAliases[t.Prefix.Get()] = true
		}
		resolved, err := resolver.ResolveName(t, b.pkg, uses)
		if err != nil {
			b.errors = append(b.errors, err)
			return &ir.TypeReference{Span: t.Span()}
		}
		return &ir.TypeReference{Package: resolved.Package.Name, Path: ir.DeclPath(resolved.Path), Span: t.Span()}

	default:
		b.errors = append(b.errors, diagnostic.New(diagnostic.KindBug, fmt.Sprintf("unrecognized type expression %T", te)))
		return &ir.TypeReference{Span: te.Span()}
	}
}

func docLines(c *syntax.Comment) []string {
	if c == nil {
		return nil
	}
	return []string{c.Text()}
}
