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

// Package ir defines the resolved, immutable intermediate representation
// produced by the compiler's builder phase. IR nodes are built in one pass
// from an AST and a resolved environment; once built they are never mutated.
package ir

import "go.reproto.dev/reproto/syntax"

// PrimitiveKind enumerates the built-in scalar types available to a type
// reference. The zero value is not a valid kind.
type PrimitiveKind uint8

const (
	PrimitiveUnknown PrimitiveKind = iota
	PrimitiveAny
	PrimitiveFloat
	PrimitiveDouble
	PrimitiveSigned
	PrimitiveUnsigned
	PrimitiveBoolean
	PrimitiveString
	PrimitiveBytes
	PrimitiveDatetime
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveAny:
		return "any"
	case PrimitiveFloat:
		return "float"
	case PrimitiveDouble:
		return "double"
	case PrimitiveSigned:
		return "signed"
	case PrimitiveUnsigned:
		return "unsigned"
	case PrimitiveBoolean:
		return "boolean"
	case PrimitiveString:
		return "string"
	case PrimitiveBytes:
		return "bytes"
	case PrimitiveDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// DeclPath names a declaration by the dotted path of nested-declaration
// names leading to it, e.g. ["Outer", "Inner"] for a declaration `Inner`
// nested inside `Outer`.
type DeclPath []string

func (p DeclPath) String() string {
	out := ""
	for i, part := range p {
		if i > 0 {
			out += "."
		}
		out += part
	}
	return out
}

func (p DeclPath) Equal(other DeclPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// TypeReference is a resolved pointer into the environment: never a
// dangling name after IR construction. A reference is either to a
// primitive, or to a declaration identified by (package, decl-path).
type TypeReference struct {
	Primitive PrimitiveKind
	Width     uint32 // bit width for Signed/Unsigned; 0 means "default"

	// Package and Path are set when Primitive == PrimitiveUnknown.
	Package string
	Path    DeclPath

	Array *TypeReference // set when this reference names an array
	Map   *MapType        // set when this reference names a map

	Span syntax.Span
}

type MapType struct {
	Key   *TypeReference
	Value *TypeReference
}

func (t *TypeReference) IsPrimitive() bool {
	return t.Primitive != PrimitiveUnknown
}

// Field is a resolved record/tuple/sub-type member.
type Field struct {
	Name               string
	SerializationIdent string
	Type               *TypeReference
	Optional           bool
	Span               syntax.Span
}

// DeclKind distinguishes the five top-level declaration shapes.
type DeclKind uint8

const (
	DeclUnknown DeclKind = iota
	DeclType
	DeclTuple
	DeclInterface
	DeclEnum
	DeclService
)

func (k DeclKind) String() string {
	switch k {
	case DeclType:
		return "type"
	case DeclTuple:
		return "tuple"
	case DeclInterface:
		return "interface"
	case DeclEnum:
		return "enum"
	case DeclService:
		return "service"
	default:
		return "unknown"
	}
}

// EnumOrdinalType is the wire type backing an enum's discriminator values.
type EnumOrdinalType uint8

const (
	OrdinalIdentifier EnumOrdinalType = iota // absent `as` clause: bare identifier discriminator
	OrdinalString
	OrdinalUnsigned
	OrdinalSigned
)

// EnumVariant carries either an explicit ordinal literal or an implicit one
// equal to the variant name (string ordinals) or its positional index
// (numeric ordinals).
type EnumVariant struct {
	Name    string
	Ordinal any // string, int64, or uint64, depending on OrdinalType
	Span    syntax.Span
}

// SubType is one arm of an IR interface. Its final member set is the
// interface's base members plus its own, and it carries the discriminator
// value written on the wire to select it.
type SubType struct {
	Name          string
	Discriminator string // wire value selecting this sub-type
	OwnMembers    []*Field
	Members       []*Field // base ⊕ own, unique serialization idents
	Span          syntax.Span
}

// Channel is the type flowing into or out of a service endpoint.
type Channel struct {
	Type      *TypeReference
	Streaming bool
}

// ServiceEndpoint is one RPC method of a service declaration.
type ServiceEndpoint struct {
	Identifier string
	Alias      string // defaults to Identifier
	Request    *Channel
	Response   *Channel
	Span       syntax.Span
}

// CodeBlock is an opaque, back-end-specific literal preserved verbatim.
type CodeBlock struct {
	Context string
	Content string
	Span    syntax.Span
}

// Decl is one fully resolved top-level (or flattened-nested) declaration.
// Exactly the fields relevant to Kind are populated.
type Decl struct {
	Kind DeclKind
	Name string
	Path DeclPath // fully qualified path within the package, e.g. ["Outer","Inner"]
	Doc  []string
	Span syntax.Span

	// DeclType, DeclTuple, and the base of DeclInterface.
	Fields     []*Field
	CodeBlocks []*CodeBlock

	// DeclInterface.
	SubTypes           []*SubType
	DiscriminatorField string // serialization ident used to carry the discriminator, "" if untagged

	// DeclEnum.
	OrdinalType EnumOrdinalType
	OrdinalRef  *TypeReference // set only when OrdinalType selects a non-identifier scalar
	Variants    []*EnumVariant

	// DeclService.
	Endpoints []*ServiceEndpoint
}

func (d *Decl) QualifiedName() string {
	return d.Path.String()
}

// Package is a frozen collection of declarations resolved for one
// (package-name, version) pair. Declarations are keyed by their fully
// qualified name, which is unique within a package.
type Package struct {
	Name    string
	Version string // empty for an unversioned local compile unit
	Decls   []*Decl

	byPath map[string]*Decl
}

// NewPackage indexes decls by qualified name. Callers must have already
// verified name uniqueness (the IR builder does, reporting
// DuplicateDeclaration and dropping the later decl) — NewPackage itself does
// not re-validate.
func NewPackage(name, version string, decls []*Decl) *Package {
	byPath := make(map[string]*Decl, len(decls))
	for _, d := range decls {
		byPath[d.QualifiedName()] = d
	}
	return &Package{
		Name:    name,
		Version: version,
		Decls:   decls,
		byPath:  byPath,
	}
}

func (p *Package) Lookup(path DeclPath) (*Decl, bool) {
	d, ok := p.byPath[path.String()]
	return d, ok
}
