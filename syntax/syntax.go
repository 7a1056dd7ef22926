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

// Parse parses a single `.reproto` source file into a File. Parsing is a
// pure function of the byte slice: no filesystem or network access, one
// token of lookahead, and no error recovery (the first Error halts parsing
// of this file, per §4.2/§7).
func Parse(src []byte) (*File, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parseFile()
}

type parser struct {
	toks       *Tokens
	src        []byte
	tok        Token
	pos        uint32
	prevEnd    uint32
	pendingDoc *Comment
	fileDoc    *Comment
}

func newParser(src []byte) (*parser, error) {
	toks, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// reload fetches tokens from the cursor until it lands on one that carries
// grammar significance, stashing comments along the way. It does not touch
// prevEnd; callers that are genuinely consuming the current token go
// through bump, which updates prevEnd first.
func (p *parser) reload() error {
	for {
		p.pos = p.toks.Offset()
		var t Token
		if err := p.toks.Next(&t); err != nil {
			return err
		}
		p.tok = t
		switch p.tok.Kind {
		case T_SPACE, T_NEWLINE, T_COMMENT:
			continue
		case T_DOC_COMMENT:
			p.pendingDoc = &Comment{raw: p.text(), start: p.pos}
			continue
		case T_MOD_DOC_COMMENT:
			c := &Comment{raw: p.text(), start: p.pos}
			if p.fileDoc == nil {
				p.fileDoc = c
			} else {
				p.fileDoc.raw = p.fileDoc.raw + "\n" + c.raw
			}
			continue
		default:
			return nil
		}
	}
}

func (p *parser) bump() error {
	p.prevEnd = p.pos + uint32(p.tok.Len)
	return p.reload()
}

func (p *parser) text() string {
	return string(p.src[p.pos : p.pos+uint32(p.tok.Len)])
}

func spanFrom(start, end uint32) Span {
	return Span{start, end - start}
}

func (p *parser) takeDoc() *Comment {
	doc := p.pendingDoc
	p.pendingDoc = nil
	return doc
}

func (p *parser) isKeyword(word string) bool {
	return p.tok.Kind == T_IDENT && p.text() == word
}

func (p *parser) tryKeyword(word string) (bool, error) {
	if !p.isKeyword(word) {
		return false, nil
	}
	if err := p.bump(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *parser) expectKeyword(word string) error {
	ok, err := p.tryKeyword(word)
	if err != nil {
		return err
	}
	if !ok {
		return errExpectedKeyword(p.pos, uint32(p.tok.Len), word)
	}
	return nil
}

func (p *parser) trySigil(kind TokenKind) (bool, error) {
	if p.tok.Kind != kind {
		return false, nil
	}
	if err := p.bump(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *parser) expectSigil(kind TokenKind, what string) error {
	if p.tok.Kind == T_EOF {
		return errUnexpectedEOF(p.pos, what)
	}
	ok, err := p.trySigil(kind)
	if err != nil {
		return err
	}
	if !ok {
		return errExpectedToken(p.pos, uint32(p.tok.Len), what, p.tok.Kind)
	}
	return nil
}

func (p *parser) lowerIdent() (*Ident, error) {
	if p.tok.Kind != T_IDENT {
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "an identifier", p.tok.Kind)
	}
	n := &Ident{raw: p.text(), start: p.pos}
	if err := p.bump(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) upperIdent() (*Ident, error) {
	if p.tok.Kind != T_TYPE_IDENT {
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "a type name", p.tok.Kind)
	}
	n := &Ident{raw: p.text(), start: p.pos}
	if err := p.bump(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) textLit() (*TextLit, error) {
	if p.tok.Kind != T_TEXT_LIT {
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "a string literal", p.tok.Kind)
	}
	n := &TextLit{raw: p.text(), start: p.pos}
	if err := p.bump(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) intLitNode() (*IntLit, error) {
	if p.tok.Kind != T_INT_LIT {
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "an integer literal", p.tok.Kind)
	}
	n := &IntLit{raw: p.text(), start: p.pos}
	if err := p.bump(); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) floatLitNode() (*FloatLit, error) {
	if p.tok.Kind != T_FLOAT_LIT {
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "a float literal", p.tok.Kind)
	}
	n := &FloatLit{raw: p.text(), start: p.pos}
	if err := p.bump(); err != nil {
		return nil, err
	}
	return n, nil
}

// parseVersionReq reads a version-requirement literal following an `@`
// sigil. The underlying token cursor is positioned directly after the '@'
// byte when p.tok reports T_AT, so this bypasses the generic dispatch and
// reads the requirement text via Tokens.NextVersionReq instead of bump.
func (p *parser) parseVersionReq() (*VersionReq, error) {
	atStart := p.pos
	var tok Token
	if err := p.toks.NextVersionReq(&tok); err != nil {
		return nil, err
	}
	reqStart := atStart + 1
	raw := string(p.src[reqStart : reqStart+uint32(tok.Len)])
	p.prevEnd = reqStart + uint32(tok.Len)
	if err := p.reload(); err != nil {
		return nil, err
	}
	return &VersionReq{raw: raw, start: reqStart}, nil
}

func (p *parser) parseFile() (*File, error) {
	start := p.pos

	var uses []*Use
	for p.isKeyword("use") {
		u, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		uses = append(uses, u)
	}

	var opts []*Option
	for p.isKeyword("option") {
		o, err := p.parseOption()
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}

	var decls []Decl
	for p.tok.Kind != T_EOF {
		doc := p.takeDoc()
		d, err := p.parseDecl(doc)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}

	end := p.prevEnd
	if end < start {
		end = start
	}

	var children []Node
	if p.fileDoc != nil {
		children = append(children, p.fileDoc)
	}
	for _, u := range uses {
		children = append(children, u)
	}
	for _, o := range opts {
		children = append(children, o)
	}
	for _, d := range decls {
		children = append(children, d)
	}

	return &File{
		span:      spanFrom(start, end),
		Doc:       p.fileDoc,
		Uses:      uses,
		Options:   opts,
		Decls:     decls,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parsePackageName() (*PackageName, error) {
	start := p.pos
	first, err := p.lowerIdent()
	if err != nil {
		return nil, err
	}
	parts := []*Ident{first}
	for p.tok.Kind == T_DOT {
		if err := p.bump(); err != nil {
			return nil, err
		}
		part, err := p.lowerIdent()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	children := make([]Node, len(parts))
	for ii, part := range parts {
		children[ii] = part
	}
	return &PackageName{
		span:      spanFrom(start, p.prevEnd),
		Parts:     parts,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseUse() (*Use, error) {
	start := p.pos
	doc := p.takeDoc()
	if err := p.expectKeyword("use"); err != nil {
		return nil, err
	}
	path, err := p.parsePackageName()
	if err != nil {
		return nil, err
	}

	var vreq *VersionReq
	if p.tok.Kind == T_AT {
		vreq, err = p.parseVersionReq()
		if err != nil {
			return nil, err
		}
	}

	var alias *Ident
	if ok, err := p.tryKeyword("as"); err != nil {
		return nil, err
	} else if ok {
		alias, err = p.lowerIdent()
		if err != nil {
			return nil, err
		}
	}

	if err := p.expectSigil(T_SEMI, ";"); err != nil {
		return nil, err
	}

	children := []Node{}
	if doc != nil {
		children = append(children, doc)
	}
	children = append(children, path)
	if vreq != nil {
		children = append(children, vreq)
	}
	if alias != nil {
		children = append(children, alias)
	}

	return &Use{
		span:       spanFrom(start, p.prevEnd),
		Doc:        doc,
		Path:       path,
		VersionReq: vreq,
		Alias:      alias,
		innerNode:  innerNode{children: children},
	}, nil
}

func (p *parser) parseOption() (*Option, error) {
	start := p.pos
	if err := p.expectKeyword("option"); err != nil {
		return nil, err
	}
	name, err := p.lowerIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_EQ, "="); err != nil {
		return nil, err
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_SEMI, ";"); err != nil {
		return nil, err
	}
	return &Option{
		span:      spanFrom(start, p.prevEnd),
		Name:      name,
		Value:     value,
		innerNode: innerNode{children: []Node{name, value}},
	}, nil
}

func (p *parser) parseDecl(doc *Comment) (Decl, error) {
	switch {
	case p.isKeyword("type"):
		return p.parseTypeDecl(doc)
	case p.isKeyword("tuple"):
		return p.parseTupleDecl(doc)
	case p.isKeyword("interface"):
		return p.parseInterfaceDecl(doc)
	case p.isKeyword("enum"):
		return p.parseEnumDecl(doc)
	case p.isKeyword("service"):
		return p.parseServiceDecl(doc)
	default:
		if p.tok.Kind == T_EOF {
			return nil, errUnexpectedEOF(p.pos, "a declaration")
		}
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "a declaration (type, tuple, interface, enum, or service)", p.tok.Kind)
	}
}

func (p *parser) parseTypeDecl(doc *Comment) (*TypeDecl, error) {
	start := p.pos
	if err := p.expectKeyword("type"); err != nil {
		return nil, err
	}
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL, "{"); err != nil {
		return nil, err
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
		return nil, err
	}
	return &TypeDecl{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Members:   members,
		innerNode: innerNode{children: declChildren(doc, name, members)},
	}, nil
}

func (p *parser) parseTupleDecl(doc *Comment) (*TupleDecl, error) {
	start := p.pos
	if err := p.expectKeyword("tuple"); err != nil {
		return nil, err
	}
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL, "{"); err != nil {
		return nil, err
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
		return nil, err
	}
	return &TupleDecl{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Members:   members,
		innerNode: innerNode{children: declChildren(doc, name, members)},
	}, nil
}

func (p *parser) parseInterfaceDecl(doc *Comment) (*InterfaceDecl, error) {
	start := p.pos
	if err := p.expectKeyword("interface"); err != nil {
		return nil, err
	}
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL, "{"); err != nil {
		return nil, err
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	var subTypes []*SubType
	for p.tok.Kind == T_TYPE_IDENT {
		st, err := p.parseSubType()
		if err != nil {
			return nil, err
		}
		subTypes = append(subTypes, st)
	}
	if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
		return nil, err
	}
	children := declChildren(doc, name, members)
	for _, st := range subTypes {
		children = append(children, st)
	}
	return &InterfaceDecl{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Members:   members,
		SubTypes:  subTypes,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseSubType() (*SubType, error) {
	start := p.pos
	doc := p.takeDoc()
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	var alias *TextLit
	if ok, err := p.tryKeyword("as"); err != nil {
		return nil, err
	} else if ok {
		alias, err = p.textLit()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSigil(T_OPEN_CURL, "{"); err != nil {
		return nil, err
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
		return nil, err
	}
	children := declChildren(doc, name, nil)
	if alias != nil {
		children = append(children, alias)
	}
	for _, m := range members {
		children = append(children, m)
	}
	return &SubType{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Alias:     alias,
		Members:   members,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseEnumDecl(doc *Comment) (*EnumDecl, error) {
	start := p.pos
	if err := p.expectKeyword("enum"); err != nil {
		return nil, err
	}
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	var asType TypeExpr
	if ok, err := p.tryKeyword("as"); err != nil {
		return nil, err
	} else if ok {
		asType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSigil(T_OPEN_CURL, "{"); err != nil {
		return nil, err
	}
	var variants []*EnumVariant
	for p.tok.Kind == T_TYPE_IDENT {
		v, err := p.parseEnumVariant()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	members, err := p.parseMembers()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
		return nil, err
	}
	children := declChildren(doc, name, nil)
	if asType != nil {
		children = append(children, asType)
	}
	for _, v := range variants {
		children = append(children, v)
	}
	for _, m := range members {
		children = append(children, m)
	}
	return &EnumDecl{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		AsType:    asType,
		Variants:  variants,
		Members:   members,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseEnumVariant() (*EnumVariant, error) {
	start := p.pos
	doc := p.takeDoc()
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	var value Value
	if ok, err := p.tryKeyword("as"); err != nil {
		return nil, err
	} else if ok {
		value, err = p.parseValue()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSigil(T_SEMI, ";"); err != nil {
		return nil, err
	}
	children := []Node{}
	if doc != nil {
		children = append(children, doc)
	}
	children = append(children, name)
	if value != nil {
		children = append(children, value)
	}
	return &EnumVariant{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Value:     value,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseServiceDecl(doc *Comment) (*ServiceDecl, error) {
	start := p.pos
	if err := p.expectKeyword("service"); err != nil {
		return nil, err
	}
	name, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_CURL, "{"); err != nil {
		return nil, err
	}
	var endpoints []*Endpoint
	for p.tok.Kind != T_CLOSE_CURL && p.tok.Kind != T_EOF {
		ep, err := p.parseEndpoint()
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
		return nil, err
	}
	children := declChildren(doc, name, nil)
	for _, ep := range endpoints {
		children = append(children, ep)
	}
	return &ServiceDecl{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Endpoints: endpoints,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseEndpoint() (*Endpoint, error) {
	start := p.pos
	doc := p.takeDoc()
	name, err := p.lowerIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_OPEN_PAREN, "("); err != nil {
		return nil, err
	}
	var req *Channel
	if p.tok.Kind != T_CLOSE_PAREN {
		req, err = p.parseChannel()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSigil(T_CLOSE_PAREN, ")"); err != nil {
		return nil, err
	}
	var resp *Channel
	if ok, err := p.trySigil(T_ARROW); err != nil {
		return nil, err
	} else if ok {
		resp, err = p.parseChannel()
		if err != nil {
			return nil, err
		}
	}
	var alias *Ident
	if ok, err := p.tryKeyword("as"); err != nil {
		return nil, err
	} else if ok {
		alias, err = p.lowerIdent()
		if err != nil {
			return nil, err
		}
	}
	var opts []*Option
	if p.tok.Kind == T_OPEN_CURL {
		if err := p.bump(); err != nil {
			return nil, err
		}
		for p.isKeyword("option") {
			opt, err := p.parseOption()
			if err != nil {
				return nil, err
			}
			opts = append(opts, opt)
		}
		if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
			return nil, err
		}
	} else {
		if err := p.expectSigil(T_SEMI, ";"); err != nil {
			return nil, err
		}
	}

	children := []Node{}
	if doc != nil {
		children = append(children, doc)
	}
	children = append(children, name)
	if req != nil {
		children = append(children, req)
	}
	if resp != nil {
		children = append(children, resp)
	}
	if alias != nil {
		children = append(children, alias)
	}
	for _, opt := range opts {
		children = append(children, opt)
	}

	return &Endpoint{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Request:   req,
		Response:  resp,
		Alias:     alias,
		Options:   opts,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseChannel() (*Channel, error) {
	start := p.pos
	streaming, err := p.tryKeyword("stream")
	if err != nil {
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &Channel{
		span:      spanFrom(start, p.prevEnd),
		Streaming: streaming,
		Type:      typ,
		innerNode: innerNode{children: []Node{typ}},
	}, nil
}

// parseMembers consumes Field/Option/CodeBlock/InnerDecl members until it
// reaches a token that cannot start one: `}`, end of file, or a type name
// (T_TYPE_IDENT), which marks the start of an interface's sub-types.
func (p *parser) parseMembers() ([]Member, error) {
	var members []Member
	for {
		if p.tok.Kind == T_CLOSE_CURL || p.tok.Kind == T_EOF || p.tok.Kind == T_TYPE_IDENT {
			return members, nil
		}
		if p.tok.Kind != T_IDENT {
			return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "a member", p.tok.Kind)
		}

		doc := p.takeDoc()
		switch p.text() {
		case "option":
			opt, err := p.parseOption()
			if err != nil {
				return nil, err
			}
			members = append(members, opt)
		case "type":
			d, err := p.parseTypeDecl(doc)
			if err != nil {
				return nil, err
			}
			members = append(members, &InnerDecl{span: d.Span(), Decl: d, innerNode: innerNode{children: []Node{d}}})
		case "tuple":
			d, err := p.parseTupleDecl(doc)
			if err != nil {
				return nil, err
			}
			members = append(members, &InnerDecl{span: d.Span(), Decl: d, innerNode: innerNode{children: []Node{d}}})
		case "interface":
			d, err := p.parseInterfaceDecl(doc)
			if err != nil {
				return nil, err
			}
			members = append(members, &InnerDecl{span: d.Span(), Decl: d, innerNode: innerNode{children: []Node{d}}})
		case "enum":
			d, err := p.parseEnumDecl(doc)
			if err != nil {
				return nil, err
			}
			members = append(members, &InnerDecl{span: d.Span(), Decl: d, innerNode: innerNode{children: []Node{d}}})
		case "service":
			d, err := p.parseServiceDecl(doc)
			if err != nil {
				return nil, err
			}
			members = append(members, &InnerDecl{span: d.Span(), Decl: d, innerNode: innerNode{children: []Node{d}}})
		default:
			name, err := p.lowerIdent()
			if err != nil {
				return nil, err
			}
			if p.tok.Kind == T_CODE_BLOCK {
				cb, err := p.parseCodeBlock(doc, name)
				if err != nil {
					return nil, err
				}
				members = append(members, cb)
				continue
			}
			field, err := p.parseFieldRest(doc, name)
			if err != nil {
				return nil, err
			}
			members = append(members, field)
		}
	}
}

func (p *parser) parseFieldRest(doc *Comment, name *Ident) (*Field, error) {
	start := name.Span().Start()
	optional, err := p.trySigil(T_QUESTION)
	if err != nil {
		return nil, err
	}
	if err := p.expectSigil(T_COLON, ":"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	var alias Value
	if ok, err := p.tryKeyword("as"); err != nil {
		return nil, err
	} else if ok {
		switch p.tok.Kind {
		case T_IDENT:
			alias, err = p.lowerIdent()
		case T_TEXT_LIT:
			alias, err = p.textLit()
		default:
			return nil, errInvalidFieldAlias(p.pos, uint32(p.tok.Len))
		}
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSigil(T_SEMI, ";"); err != nil {
		return nil, err
	}
	children := []Node{}
	if doc != nil {
		children = append(children, doc)
	}
	children = append(children, name, typ)
	if alias != nil {
		children = append(children, alias)
	}
	return &Field{
		span:      spanFrom(start, p.prevEnd),
		Doc:       doc,
		Name:      name,
		Optional:  optional,
		Type:      typ,
		Alias:     alias,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseCodeBlock(doc *Comment, context *Ident) (*CodeBlock, error) {
	start := context.Span().Start()
	raw := p.text()
	content := raw[2 : len(raw)-2]
	if err := p.bump(); err != nil {
		return nil, err
	}
	children := []Node{}
	if doc != nil {
		children = append(children, doc)
	}
	children = append(children, context)
	return &CodeBlock{
		span:      spanFrom(start, p.prevEnd),
		Context:   context,
		Content:   content,
		innerNode: innerNode{children: children},
	}, nil
}

func declChildren(doc *Comment, name *Ident, members []Member) []Node {
	children := make([]Node, 0, len(members)+2)
	if doc != nil {
		children = append(children, doc)
	}
	children = append(children, name)
	for _, m := range members {
		children = append(children, m)
	}
	return children
}

// parseTypeExpr parses an array, map, or (possibly use-alias-qualified,
// possibly dotted) name type expression.
func (p *parser) parseTypeExpr() (TypeExpr, error) {
	switch p.tok.Kind {
	case T_OPEN_SQUARE:
		start := p.pos
		if err := p.bump(); err != nil {
			return nil, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_CLOSE_SQUARE, "]"); err != nil {
			return nil, err
		}
		return &Array{
			span:      spanFrom(start, p.prevEnd),
			Element:   elem,
			innerNode: innerNode{children: []Node{elem}},
		}, nil
	case T_OPEN_CURL:
		start := p.pos
		if err := p.bump(); err != nil {
			return nil, err
		}
		key, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_COLON, ":"); err != nil {
			return nil, err
		}
		value, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_CLOSE_CURL, "}"); err != nil {
			return nil, err
		}
		return &Map{
			span:      spanFrom(start, p.prevEnd),
			Key:       key,
			Value:     value,
			innerNode: innerNode{children: []Node{key, value}},
		}, nil
	default:
		return p.parseName()
	}
}

// parseName parses `ident::Type.Part`, `Type.Part`, or a bare lowercase
// primitive name. Whether a bare name is a built-in primitive or a
// declared-type reference is resolved later, by the compiler (§4.3).
func (p *parser) parseName() (*Name, error) {
	start := p.pos
	if p.tok.Kind == T_IDENT {
		id, err := p.lowerIdent()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind == T_DCOLON {
			if err := p.bump(); err != nil {
				return nil, err
			}
			parts, err := p.dottedTypeParts()
			if err != nil {
				return nil, err
			}
			children := make([]Node, 0, len(parts)+1)
			children = append(children, id)
			for _, part := range parts {
				children = append(children, part)
			}
			return &Name{
				span:      spanFrom(start, p.prevEnd),
				Prefix:    id,
				Parts:     parts,
				innerNode: innerNode{children: children},
			}, nil
		}
		return &Name{
			span:      id.Span(),
			Parts:     []*Ident{id},
			innerNode: innerNode{children: []Node{id}},
		}, nil
	}

	parts, err := p.dottedTypeParts()
	if err != nil {
		return nil, err
	}
	children := make([]Node, len(parts))
	for ii, part := range parts {
		children[ii] = part
	}
	return &Name{
		span:      spanFrom(start, p.prevEnd),
		Parts:     parts,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) dottedTypeParts() ([]*Ident, error) {
	first, err := p.upperIdent()
	if err != nil {
		return nil, err
	}
	parts := []*Ident{first}
	for p.tok.Kind == T_DOT {
		if err := p.bump(); err != nil {
			return nil, err
		}
		part, err := p.upperIdent()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (p *parser) parseValue() (Value, error) {
	start := p.pos
	switch p.tok.Kind {
	case T_OPEN_SQUARE:
		return p.parseArrayValue()
	case T_TEXT_LIT:
		return p.textLit()
	case T_INT_LIT:
		return p.intLitNode()
	case T_FLOAT_LIT:
		return p.floatLitNode()
	case T_IDENT:
		switch p.text() {
		case "true":
			if err := p.bump(); err != nil {
				return nil, err
			}
			return &BoolLit{start: start, value: true}, nil
		case "false":
			if err := p.bump(); err != nil {
				return nil, err
			}
			return &BoolLit{start: start, value: false}, nil
		}
		return p.parseNameValue()
	case T_TYPE_IDENT:
		return p.parseNameValue()
	default:
		if p.tok.Kind == T_EOF {
			return nil, errUnexpectedEOF(p.pos, "a value")
		}
		return nil, errExpectedToken(p.pos, uint32(p.tok.Len), "a value", p.tok.Kind)
	}
}

func (p *parser) parseNameValue() (Value, error) {
	start := p.pos
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	switch p.tok.Kind {
	case T_OPEN_PAREN:
		return p.parseInstanceValue(start, name)
	case T_DCOLON:
		if err := p.bump(); err != nil {
			return nil, err
		}
		member, err := p.upperIdent()
		if err != nil {
			return nil, err
		}
		return &ConstRefValue{
			span:      spanFrom(start, p.prevEnd),
			Type:      name,
			Member:    member,
			innerNode: innerNode{children: []Node{name, member}},
		}, nil
	default:
		if name.Prefix == nil && len(name.Parts) == 1 {
			return name.Parts[0], nil
		}
		return name, nil
	}
}

func (p *parser) parseInstanceValue(start uint32, name *Name) (*InstanceValue, error) {
	if err := p.bump(); err != nil { // consume '('
		return nil, err
	}
	var fields []*FieldInit
	for p.tok.Kind != T_CLOSE_PAREN {
		fieldStart := p.pos
		fname, err := p.lowerIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSigil(T_COLON, ":"); err != nil {
			return nil, err
		}
		fval, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &FieldInit{
			span:      spanFrom(fieldStart, p.prevEnd),
			Name:      fname,
			Value:     fval,
			innerNode: innerNode{children: []Node{fname, fval}},
		})
		if ok, err := p.trySigil(T_COMMA); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectSigil(T_CLOSE_PAREN, ")"); err != nil {
		return nil, err
	}
	children := make([]Node, 0, len(fields)+1)
	children = append(children, name)
	for _, f := range fields {
		children = append(children, f)
	}
	return &InstanceValue{
		span:      spanFrom(start, p.prevEnd),
		Type:      name,
		Fields:    fields,
		innerNode: innerNode{children: children},
	}, nil
}

func (p *parser) parseArrayValue() (*ArrayValue, error) {
	start := p.pos
	if err := p.bump(); err != nil { // consume '['
		return nil, err
	}
	var items []Value
	for p.tok.Kind != T_CLOSE_SQUARE {
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if ok, err := p.trySigil(T_COMMA); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectSigil(T_CLOSE_SQUARE, "]"); err != nil {
		return nil, err
	}
	children := make([]Node, len(items))
	for ii, item := range items {
		children[ii] = item
	}
	return &ArrayValue{
		span:      spanFrom(start, p.prevEnd),
		Items:     items,
		innerNode: innerNode{children: children},
	}, nil
}
