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

package syntax

import (
	"bytes"
	"iter"
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s Span) Start() uint32 {
	return s.start
}

func (s Span) End() uint32 {
	return s.start + s.len
}

func (s Span) Len() uint32 {
	return s.len
}

// Node is implemented by every AST element: tokens, lists, and
// declarations alike. ChildNodes walks in source order.
type Node interface {
	Span() Span

	ChildNodes() iter.Seq[Node]

	privChildren() []Node

	UnparseTo(buf *bytes.Buffer)
}

func Unparse(node Node) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

func Walk(node Node, walkFn func(Node) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for _, child := range node.privChildren() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

func iterChildren(childNodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(_ func(Node) bool) {}
}

func (*leafNode) privChildren() []Node {
	return nil
}

// innerNode holds the already-assembled child list of a composite node;
// concrete types embed it and add their own typed accessors on top.
type innerNode struct {
	children []Node
}

func (n *innerNode) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.children)
}

func (n *innerNode) privChildren() []Node {
	return n.children
}

type ParseError struct {
	leafNode
	span Span
	err  error
}

var _ Node = (*ParseError)(nil)

func (e *ParseError) Span() Span             { return e.span }
func (e *ParseError) UnparseTo(*bytes.Buffer) { panic("ParseError.UnparseTo: unimplemented") }
func (e *ParseError) Get() error              { return e.err }

// Comment is a `//` line comment, a `///` doc comment attached to the
// following declaration, or a `//!` module-level doc comment.
type Comment struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Comment)(nil)

func (n *Comment) Span() Span {
	return Span{n.start, uint32(len(n.raw))}
}

func (n *Comment) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Comment) Text() string {
	return strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(n.raw, "///"), "//!"), "//")
}

func (n *Comment) IsDocComment() bool {
	return strings.HasPrefix(n.raw, "///")
}

func (n *Comment) IsModuleDocComment() bool {
	return strings.HasPrefix(n.raw, "//!")
}

type Ident struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Ident)(nil)
var _ Value = (*Ident)(nil)

func (n *Ident) Span() Span               { return Span{n.start, uint32(len(n.raw))} }
func (n *Ident) UnparseTo(buf *bytes.Buffer) { buf.WriteString(n.raw) }
func (n *Ident) Get() string              { return n.raw }
func (*Ident) valueNode()                 {}

type IntLit struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*IntLit)(nil)
var _ Value = (*IntLit)(nil)

func (n *IntLit) Span() Span                { return Span{n.start, uint32(len(n.raw))} }
func (n *IntLit) UnparseTo(buf *bytes.Buffer) { buf.WriteString(n.raw) }
func (*IntLit) valueNode()                  {}

func (n *IntLit) GetInt64() (int64, bool) {
	v, err := strconv.ParseInt(n.raw, 10, 64)
	return v, err == nil
}

func (n *IntLit) GetUint64() (uint64, bool) {
	v, err := strconv.ParseUint(n.raw, 10, 64)
	return v, err == nil
}

type FloatLit struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*FloatLit)(nil)
var _ Value = (*FloatLit)(nil)

func (n *FloatLit) Span() Span                { return Span{n.start, uint32(len(n.raw))} }
func (n *FloatLit) UnparseTo(buf *bytes.Buffer) { buf.WriteString(n.raw) }
func (*FloatLit) valueNode()                  {}

func (n *FloatLit) GetFloat64() (float64, bool) {
	v, err := strconv.ParseFloat(n.raw, 64)
	return v, err == nil
}

// TextLit is a double-quoted string literal. Get returns the literal
// without its surrounding quotes, with the escapes \n, \t, \r, \" and \\
// resolved. After any other backslash the next character is kept as is, so
// a \uXXXX escape comes back as uXXXX.
type TextLit struct {
	leafNode
	raw   string // includes the surrounding quotes
	start uint32
}

var _ Node = (*TextLit)(nil)
var _ Value = (*TextLit)(nil)

func (n *TextLit) Span() Span                { return Span{n.start, uint32(len(n.raw))} }
func (n *TextLit) UnparseTo(buf *bytes.Buffer) { buf.WriteString(n.raw) }
func (*TextLit) valueNode()                  {}

func (n *TextLit) Get() string {
	inner := n.raw[1 : len(n.raw)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}
	var out strings.Builder
	escaped := false
	for _, c := range inner {
		if escaped {
			switch c {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			default:
				out.WriteRune(c)
			}
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

// BoolLit is the `true`/`false` value literal.
type BoolLit struct {
	leafNode
	start uint32
	value bool
}

var _ Node = (*BoolLit)(nil)
var _ Value = (*BoolLit)(nil)

func (n *BoolLit) Span() Span {
	if n.value {
		return Span{n.start, 4}
	}
	return Span{n.start, 5}
}

func (n *BoolLit) UnparseTo(buf *bytes.Buffer) {
	if n.value {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
}

func (*BoolLit) valueNode() {}
func (n *BoolLit) Get() bool { return n.value }

// VersionReq is the raw text of a version-requirement literal following an
// `@` sigil in a `use` declaration. Parsing it into a semver constraint set
// is the Version Resolver's job, not the lexer's (§4.3/§4.4).
type VersionReq struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*VersionReq)(nil)

func (n *VersionReq) Span() Span                { return Span{n.start, uint32(len(n.raw))} }
func (n *VersionReq) UnparseTo(buf *bytes.Buffer) { buf.WriteString(n.raw) }
func (n *VersionReq) Raw() string               { return n.raw }

// PackageName is a dot-separated package path, e.g. `foo.bar.baz`.
type PackageName struct {
	innerNode
	span  Span
	Parts []*Ident
}

var _ Node = (*PackageName)(nil)

func (n *PackageName) Span() Span { return n.span }
func (n *PackageName) UnparseTo(buf *bytes.Buffer) {
	for ii, part := range n.Parts {
		if ii > 0 {
			buf.WriteByte('.')
		}
		part.UnparseTo(buf)
	}
}

func (n *PackageName) String() string {
	parts := make([]string, len(n.Parts))
	for ii, p := range n.Parts {
		parts[ii] = p.Get()
	}
	return strings.Join(parts, ".")
}

// Name is a (possibly use-alias-qualified, possibly dotted) reference to a
// type or constant, e.g. `Foo`, `Foo.Bar`, `common::Foo`. The same node
// shape is used for type expressions, instance-value constructors, and
// const references: whether a given Name denotes a built-in primitive or a
// declared type is a resolver/compiler concern (§4.3), not a grammar one.
type Name struct {
	innerNode
	span   Span
	Prefix *Ident // use-import alias, nil if unqualified
	Parts  []*Ident
}

var _ Node = (*Name)(nil)
var _ TypeExpr = (*Name)(nil)
var _ Value = (*Name)(nil)

func (n *Name) Span() Span { return n.span }
func (n *Name) UnparseTo(buf *bytes.Buffer) {
	if n.Prefix != nil {
		n.Prefix.UnparseTo(buf)
		buf.WriteString("::")
	}
	for ii, part := range n.Parts {
		if ii > 0 {
			buf.WriteByte('.')
		}
		part.UnparseTo(buf)
	}
}

func (n *Name) String() string {
	var buf bytes.Buffer
	n.UnparseTo(&buf)
	return buf.String()
}

func (*Name) typeExprNode() {}
func (*Name) valueNode()    {}

// TypeExpr is a field/endpoint/const type expression: a Name (primitive or
// declared type reference), an Array, or a Map.
type TypeExpr interface {
	Node
	typeExprNode()
}

type Array struct {
	innerNode
	span    Span
	Element TypeExpr
}

var _ Node = (*Array)(nil)
var _ TypeExpr = (*Array)(nil)

func (n *Array) Span() Span { return n.span }
func (n *Array) UnparseTo(buf *bytes.Buffer) {
	buf.WriteByte('[')
	n.Element.UnparseTo(buf)
	buf.WriteByte(']')
}
func (*Array) typeExprNode() {}

type Map struct {
	innerNode
	span  Span
	Key   TypeExpr
	Value TypeExpr
}

var _ Node = (*Map)(nil)
var _ TypeExpr = (*Map)(nil)

func (n *Map) Span() Span { return n.span }
func (n *Map) UnparseTo(buf *bytes.Buffer) {
	buf.WriteByte('{')
	n.Key.UnparseTo(buf)
	buf.WriteByte(':')
	n.Value.UnparseTo(buf)
	buf.WriteByte('}')
}
func (*Map) typeExprNode() {}

// Value is a literal or reference appearing on the right-hand side of an
// option, field default, enum-variant ordinal, or instance-value field.
type Value interface {
	Node
	valueNode()
}

type ArrayValue struct {
	innerNode
	span  Span
	Items []Value
}

var _ Node = (*ArrayValue)(nil)
var _ Value = (*ArrayValue)(nil)

func (n *ArrayValue) Span() Span { return n.span }
func (n *ArrayValue) UnparseTo(buf *bytes.Buffer) {
	buf.WriteByte('[')
	for ii, item := range n.Items {
		if ii > 0 {
			buf.WriteString(", ")
		}
		item.UnparseTo(buf)
	}
	buf.WriteByte(']')
}
func (*ArrayValue) valueNode() {}

type FieldInit struct {
	innerNode
	span  Span
	Name  *Ident
	Value Value
}

var _ Node = (*FieldInit)(nil)

func (n *FieldInit) Span() Span { return n.span }
func (n *FieldInit) UnparseTo(buf *bytes.Buffer) {
	n.Name.UnparseTo(buf)
	buf.WriteString(": ")
	n.Value.UnparseTo(buf)
}

// InstanceValue is a `Name(field: value, ...)` value literal.
type InstanceValue struct {
	innerNode
	span   Span
	Type   *Name
	Fields []*FieldInit
}

var _ Node = (*InstanceValue)(nil)
var _ Value = (*InstanceValue)(nil)

func (n *InstanceValue) Span() Span { return n.span }
func (n *InstanceValue) UnparseTo(buf *bytes.Buffer) {
	n.Type.UnparseTo(buf)
	buf.WriteByte('(')
	for ii, f := range n.Fields {
		if ii > 0 {
			buf.WriteString(", ")
		}
		f.UnparseTo(buf)
	}
	buf.WriteByte(')')
}
func (*InstanceValue) valueNode() {}

// ConstRefValue is a `Name::member` reference to an enum variant or other
// named constant.
type ConstRefValue struct {
	innerNode
	span   Span
	Type   *Name
	Member *Ident
}

var _ Node = (*ConstRefValue)(nil)
var _ Value = (*ConstRefValue)(nil)

func (n *ConstRefValue) Span() Span { return n.span }
func (n *ConstRefValue) UnparseTo(buf *bytes.Buffer) {
	n.Type.UnparseTo(buf)
	buf.WriteString("::")
	n.Member.UnparseTo(buf)
}
func (*ConstRefValue) valueNode() {}

// Option is a `name = value;` pair; it appears at file scope, inside
// declarations, and attached to service endpoints.
type Option struct {
	innerNode
	span  Span
	Name  *Ident
	Value Value
}

var _ Node = (*Option)(nil)
var _ Member = (*Option)(nil)

func (n *Option) Span() Span { return n.span }
func (n *Option) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("option ")
	n.Name.UnparseTo(buf)
	buf.WriteString(" = ")
	n.Value.UnparseTo(buf)
	buf.WriteString(";\n")
}
func (*Option) memberNode() {}

// Use is a `use pkg.path [@ version-req] [as alias];` declaration.
type Use struct {
	innerNode
	span       Span
	Doc        *Comment
	Path       *PackageName
	VersionReq *VersionReq // nil if unconstrained
	Alias      *Ident      // nil if unaliased
}

var _ Node = (*Use)(nil)

func (n *Use) Span() Span { return n.span }
func (n *Use) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("use ")
	n.Path.UnparseTo(buf)
	if n.VersionReq != nil {
		buf.WriteString(" @ ")
		n.VersionReq.UnparseTo(buf)
	}
	if n.Alias != nil {
		buf.WriteString(" as ")
		n.Alias.UnparseTo(buf)
	}
	buf.WriteString(";\n")
}

// Member is a declaration body element: a Field, an Option, a CodeBlock, or
// a nested InnerDecl.
type Member interface {
	Node
	memberNode()
}

// Field is a record/tuple/interface/sub-type field.
type Field struct {
	innerNode
	span     Span
	Doc      *Comment
	Name     *Ident
	Optional bool
	Type     TypeExpr
	Alias    Value // *Ident or *TextLit, nil if unaliased
}

var _ Node = (*Field)(nil)
var _ Member = (*Field)(nil)

func (n *Field) Span() Span { return n.span }
func (n *Field) UnparseTo(buf *bytes.Buffer) {
	n.Name.UnparseTo(buf)
	if n.Optional {
		buf.WriteByte('?')
	}
	buf.WriteString(": ")
	n.Type.UnparseTo(buf)
	if n.Alias != nil {
		buf.WriteString(" as ")
		n.Alias.UnparseTo(buf)
	}
	buf.WriteString(";\n")
}
func (*Field) memberNode() {}

// FieldAliasName returns the field's wire-name alias as a string, if any
// was declared (`as new_name` or `as "new-name"`).
func (n *Field) FieldAliasName() (string, bool) {
	switch alias := n.Alias.(type) {
	case *Ident:
		return alias.Get(), true
	case *TextLit:
		return alias.Get(), true
	default:
		return "", false
	}
}

// CodeBlock is a free-form `context {{ ... }}` member; its content is
// opaque to the compiler and carried through to back-ends verbatim (§9).
type CodeBlock struct {
	innerNode
	span    Span
	Context *Ident
	Content string
}

var _ Node = (*CodeBlock)(nil)
var _ Member = (*CodeBlock)(nil)

func (n *CodeBlock) Span() Span { return n.span }
func (n *CodeBlock) UnparseTo(buf *bytes.Buffer) {
	n.Context.UnparseTo(buf)
	buf.WriteString(" {{")
	buf.WriteString(n.Content)
	buf.WriteString("}}\n")
}
func (*CodeBlock) memberNode() {}

// InnerDecl is a declaration nested inside another declaration's body.
type InnerDecl struct {
	innerNode
	span Span
	Decl Decl
}

var _ Node = (*InnerDecl)(nil)
var _ Member = (*InnerDecl)(nil)

func (n *InnerDecl) Span() Span                { return n.span }
func (n *InnerDecl) UnparseTo(buf *bytes.Buffer) { n.Decl.UnparseTo(buf) }
func (*InnerDecl) memberNode()                 {}

// Decl is implemented by the five top-level (or nested) declaration kinds.
type Decl interface {
	Node
	DeclName() *Ident
	declNode()
}

type TypeDecl struct {
	innerNode
	span    Span
	Doc     *Comment
	Name    *Ident
	Members []Member
}

var _ Node = (*TypeDecl)(nil)
var _ Decl = (*TypeDecl)(nil)

func (n *TypeDecl) Span() Span          { return n.span }
func (n *TypeDecl) DeclName() *Ident    { return n.Name }
func (*TypeDecl) declNode()             {}
func (n *TypeDecl) UnparseTo(buf *bytes.Buffer) {
	unparseBody(buf, "type", n.Name, n.Members, nil)
}

type TupleDecl struct {
	innerNode
	span    Span
	Doc     *Comment
	Name    *Ident
	Members []Member
}

var _ Node = (*TupleDecl)(nil)
var _ Decl = (*TupleDecl)(nil)

func (n *TupleDecl) Span() Span       { return n.span }
func (n *TupleDecl) DeclName() *Ident { return n.Name }
func (*TupleDecl) declNode()          {}
func (n *TupleDecl) UnparseTo(buf *bytes.Buffer) {
	unparseBody(buf, "tuple", n.Name, n.Members, nil)
}

// SubType is an `as` variant nested inside an InterfaceDecl.
type SubType struct {
	innerNode
	span    Span
	Doc     *Comment
	Name    *Ident
	Alias   *TextLit // discriminator value sent on the wire, nil if default
	Members []Member
}

var _ Node = (*SubType)(nil)

func (n *SubType) Span() Span { return n.span }
func (n *SubType) UnparseTo(buf *bytes.Buffer) {
	n.Name.UnparseTo(buf)
	if n.Alias != nil {
		buf.WriteString(" as ")
		n.Alias.UnparseTo(buf)
	}
	buf.WriteString(" {\n")
	for _, m := range n.Members {
		m.UnparseTo(buf)
	}
	buf.WriteString("}\n")
}

type InterfaceDecl struct {
	innerNode
	span     Span
	Doc      *Comment
	Name     *Ident
	Members  []Member
	SubTypes []*SubType
}

var _ Node = (*InterfaceDecl)(nil)
var _ Decl = (*InterfaceDecl)(nil)

func (n *InterfaceDecl) Span() Span       { return n.span }
func (n *InterfaceDecl) DeclName() *Ident { return n.Name }
func (*InterfaceDecl) declNode()          {}
func (n *InterfaceDecl) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("interface ")
	n.Name.UnparseTo(buf)
	buf.WriteString(" {\n")
	for _, m := range n.Members {
		m.UnparseTo(buf)
	}
	for _, st := range n.SubTypes {
		st.UnparseTo(buf)
	}
	buf.WriteString("}\n")
}

// EnumVariant is one `Name [as value];` line inside an EnumDecl.
type EnumVariant struct {
	innerNode
	span  Span
	Doc   *Comment
	Name  *Ident
	Value Value // explicit ordinal/string value, nil if auto-assigned
}

var _ Node = (*EnumVariant)(nil)

func (n *EnumVariant) Span() Span { return n.span }
func (n *EnumVariant) UnparseTo(buf *bytes.Buffer) {
	n.Name.UnparseTo(buf)
	if n.Value != nil {
		buf.WriteString(" as ")
		n.Value.UnparseTo(buf)
	}
	buf.WriteString(";\n")
}

type EnumDecl struct {
	innerNode
	span     Span
	Doc      *Comment
	Name     *Ident
	AsType   TypeExpr // explicit backing type (`enum X as string`), nil if default
	Variants []*EnumVariant
	Members  []Member
}

var _ Node = (*EnumDecl)(nil)
var _ Decl = (*EnumDecl)(nil)

func (n *EnumDecl) Span() Span       { return n.span }
func (n *EnumDecl) DeclName() *Ident { return n.Name }
func (*EnumDecl) declNode()          {}
func (n *EnumDecl) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("enum ")
	n.Name.UnparseTo(buf)
	if n.AsType != nil {
		buf.WriteString(" as ")
		n.AsType.UnparseTo(buf)
	}
	buf.WriteString(" {\n")
	for _, v := range n.Variants {
		v.UnparseTo(buf)
	}
	for _, m := range n.Members {
		m.UnparseTo(buf)
	}
	buf.WriteString("}\n")
}

// Channel is the request or response half of a service endpoint:
// `[stream] Type`.
type Channel struct {
	innerNode
	span      Span
	Streaming bool
	Type      TypeExpr
}

var _ Node = (*Channel)(nil)

func (n *Channel) Span() Span { return n.span }
func (n *Channel) UnparseTo(buf *bytes.Buffer) {
	if n.Streaming {
		buf.WriteString("stream ")
	}
	n.Type.UnparseTo(buf)
}

// Endpoint is one RPC declared inside a ServiceDecl.
type Endpoint struct {
	innerNode
	span     Span
	Doc      *Comment
	Name     *Ident
	Request  *Channel // nil if the endpoint takes no request body
	Response *Channel // nil if the endpoint returns no response body
	Alias    *Ident   // `as name`, nil if unaliased
	Options  []*Option
}

var _ Node = (*Endpoint)(nil)

func (n *Endpoint) Span() Span { return n.span }
func (n *Endpoint) UnparseTo(buf *bytes.Buffer) {
	n.Name.UnparseTo(buf)
	buf.WriteByte('(')
	if n.Request != nil {
		n.Request.UnparseTo(buf)
	}
	buf.WriteByte(')')
	if n.Response != nil {
		buf.WriteString(" -> ")
		n.Response.UnparseTo(buf)
	}
	if n.Alias != nil {
		buf.WriteString(" as ")
		n.Alias.UnparseTo(buf)
	}
	if len(n.Options) == 0 {
		buf.WriteString(";\n")
		return
	}
	buf.WriteString(" {\n")
	for _, opt := range n.Options {
		opt.UnparseTo(buf)
	}
	buf.WriteString("}\n")
}

type ServiceDecl struct {
	innerNode
	span      Span
	Doc       *Comment
	Name      *Ident
	Endpoints []*Endpoint
}

var _ Node = (*ServiceDecl)(nil)
var _ Decl = (*ServiceDecl)(nil)

func (n *ServiceDecl) Span() Span       { return n.span }
func (n *ServiceDecl) DeclName() *Ident { return n.Name }
func (*ServiceDecl) declNode()          {}
func (n *ServiceDecl) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString("service ")
	n.Name.UnparseTo(buf)
	buf.WriteString(" {\n")
	for _, ep := range n.Endpoints {
		ep.UnparseTo(buf)
	}
	buf.WriteString("}\n")
}

func unparseBody(buf *bytes.Buffer, keyword string, name *Ident, members []Member, subTypes []*SubType) {
	buf.WriteString(keyword)
	buf.WriteByte(' ')
	name.UnparseTo(buf)
	buf.WriteString(" {\n")
	for _, m := range members {
		m.UnparseTo(buf)
	}
	for _, st := range subTypes {
		st.UnparseTo(buf)
	}
	buf.WriteString("}\n")
}

// File is the root node of a single parsed `.reproto` source file.
type File struct {
	innerNode
	span    Span
	Doc     *Comment // module-level `//!` comment, nil if absent
	Uses    []*Use
	Options []*Option
	Decls   []Decl
}

var _ Node = (*File)(nil)

func (n *File) Span() Span { return n.span }
func (n *File) UnparseTo(buf *bytes.Buffer) {
	if n.Doc != nil {
		n.Doc.UnparseTo(buf)
		buf.WriteByte('\n')
	}
	for _, use := range n.Uses {
		use.UnparseTo(buf)
	}
	for _, opt := range n.Options {
		opt.UnparseTo(buf)
	}
	for _, decl := range n.Decls {
		decl.UnparseTo(buf)
	}
}
