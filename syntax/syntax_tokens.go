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

// Package syntax implements the reproto lexer, recursive-descent parser,
// and the location-tracked AST the parser produces.
package syntax

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	maxSrcLen   = 0x7FFFFFFF // (2**31)-1
	maxTokenLen = int(math.MaxUint16)

	tokenFlagTextHasNoEscapes uint8 = 0x01
)

type Token struct {
	Len   uint16
	Kind  TokenKind
	flags uint8
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_SPACE
	T_NEWLINE
	T_COMMENT
	T_DOC_COMMENT
	T_MOD_DOC_COMMENT

	T_AT
	T_COLON
	T_DCOLON
	T_SEMI
	T_COMMA
	T_DOT
	T_EQ
	T_QUESTION
	T_ARROW

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_SQUARE
	T_CLOSE_SQUARE
	T_OPEN_ANGLE
	T_CLOSE_ANGLE

	T_CODE_BLOCK

	T_INT_LIT
	T_FLOAT_LIT
	T_TEXT_LIT

	T_IDENT
	T_TYPE_IDENT
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_SPACE:
		return "SPACE"
	case T_NEWLINE:
		return "NEWLINE"
	case T_COMMENT:
		return "COMMENT"
	case T_DOC_COMMENT:
		return "DOC_COMMENT"
	case T_MOD_DOC_COMMENT:
		return "MOD_DOC_COMMENT"
	case T_AT:
		return "AT"
	case T_COLON:
		return "COLON"
	case T_DCOLON:
		return "DCOLON"
	case T_SEMI:
		return "SEMI"
	case T_COMMA:
		return "COMMA"
	case T_DOT:
		return "DOT"
	case T_EQ:
		return "EQ"
	case T_QUESTION:
		return "QUESTION"
	case T_ARROW:
		return "ARROW"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_OPEN_ANGLE:
		return "OPEN_ANGLE"
	case T_CLOSE_ANGLE:
		return "CLOSE_ANGLE"
	case T_CODE_BLOCK:
		return "CODE_BLOCK"
	case T_INT_LIT:
		return "INT_LIT"
	case T_FLOAT_LIT:
		return "FLOAT_LIT"
	case T_TEXT_LIT:
		return "TEXT_LIT"
	case T_IDENT:
		return "IDENT"
	case T_TYPE_IDENT:
		return "TYPE_IDENT"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src)
	}
	return &Tokens{
		src: src,
	}, nil
}

func (t *Tokens) Offset() uint32 {
	return t.offset
}

func (t *Tokens) Next(token *Token) error {
	if len(t.src) == 0 {
		*token = Token{
			Kind: T_EOF,
		}
		return nil
	}

	c := t.src[0]
	var kind TokenKind
	switch c {
	case '\t', ' ':
		return t.nextSpace(token)
	case '\n':
		kind = T_NEWLINE
		goto len1
	case '@':
		kind = T_AT
		goto len1
	case ';':
		kind = T_SEMI
		goto len1
	case ',':
		kind = T_COMMA
		goto len1
	case '.':
		kind = T_DOT
		goto len1
	case '?':
		kind = T_QUESTION
		goto len1
	case '<':
		kind = T_OPEN_ANGLE
		goto len1
	case '>':
		kind = T_CLOSE_ANGLE
		goto len1
	case '(':
		kind = T_OPEN_PAREN
		goto len1
	case ')':
		kind = T_CLOSE_PAREN
		goto len1
	case '[':
		kind = T_OPEN_SQUARE
		goto len1
	case ']':
		kind = T_CLOSE_SQUARE
		goto len1
	case '"':
		return t.nextTextLit(token)
	case '\r':
		if len(t.src) < 2 || t.src[1] != '\n' {
			return errForbiddenControlCharacter(t.offset, c)
		}
		*token = Token{
			Kind: T_NEWLINE,
			Len:  2,
		}
		t.offset += 2
		t.src = t.src[2:]
		return nil
	case ':':
		if len(t.src) >= 2 && t.src[1] == ':' {
			*token = Token{Kind: T_DCOLON, Len: 2}
			t.offset += 2
			t.src = t.src[2:]
			return nil
		}
		kind = T_COLON
		goto len1
	case '=':
		kind = T_EQ
		goto len1
	case '-':
		if len(t.src) >= 2 && t.src[1] == '>' {
			*token = Token{Kind: T_ARROW, Len: 2}
			t.offset += 2
			t.src = t.src[2:]
			return nil
		}
		return t.nextNumLit(token)
	case '{':
		if len(t.src) >= 2 && t.src[1] == '{' {
			return t.nextCodeBlock(token)
		}
		kind = T_OPEN_CURL
		goto len1
	case '}':
		kind = T_CLOSE_CURL
		goto len1
	case '/':
		if len(t.src) >= 2 && (t.src[1] == '/' || t.src[1] == '*') {
			return t.nextComment(token)
		}
		r, _ := utf8.DecodeRune(t.src)
		return errUnexpectedCharacter(t.offset, r)
	default:
		goto big
	}

len1:
	*token = Token{
		Kind: kind,
		Len:  1,
	}
	t.offset += 1
	t.src = t.src[1:]
	return nil

big:
	if c >= '0' && c <= '9' {
		return t.nextNumLit(token)
	}

	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
		return t.nextIdent(token)
	}

	r, _ := utf8.DecodeRune(t.src)
	if r == ' ' {
		return t.nextSpace(token)
	}

	if r < 0x20 || r == 0x7F {
		return errForbiddenControlCharacter(t.offset, c)
	}
	return errUnexpectedCharacter(t.offset, r)
}

func (t *Tokens) nextSpace(token *Token) error {
	src := t.src
	for len(src) > 0 {
		if src[0] == ' ' || src[0] == '\t' {
			src = src[1:]
			continue
		}
		if r, runeLen := utf8.DecodeRune(src); r == ' ' {
			src = src[runeLen:]
			continue
		}
		break
	}
	tokenLen, err := t.checkTokenLen(len(t.src) - len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind: T_SPACE,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = src
	return nil
}

func (t *Tokens) nextComment(token *Token) error {
	src := t.src
	kind := T_COMMENT

	if src[1] == '*' {
		end := -1
		for ii := 2; ii+1 < len(src); ii++ {
			if src[ii] == '*' && src[ii+1] == '/' {
				end = ii + 2
				break
			}
		}
		if end < 0 {
			return errUnterminatedBlockComment(t.offset, uint32(len(src)))
		}
		src = src[:end]
	} else {
		if len(src) >= 3 && src[2] == '/' {
			kind = T_DOC_COMMENT
		} else if len(src) >= 3 && src[2] == '!' {
			kind = T_MOD_DOC_COMMENT
		}
		for ii, c := range src {
			if c == '\n' || c == '\r' {
				src = src[:ii]
				break
			}
		}
	}

	tokenLen, err := t.checkTokenLen(len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind: kind,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

// nextCodeBlock scans a `{{ ... }}` free-form code block verbatim, up to
// (and including) the first matching `}}`. Contents are opaque to the
// lexer: no nesting, no escapes (§9: back-end-specific code is carried
// through the compiler unparsed).
func (t *Tokens) nextCodeBlock(token *Token) error {
	src := t.src
	end := -1
	for ii := 2; ii+1 < len(src); ii++ {
		if src[ii] == '}' && src[ii+1] == '}' {
			end = ii + 2
			break
		}
	}
	if end < 0 {
		return errUnterminatedCodeBlock(t.offset, uint32(len(src)))
	}
	tokenLen, err := t.checkTokenLen(end)
	if err != nil {
		return err
	}
	*token = Token{
		Kind: T_CODE_BLOCK,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) nextNumLit(token *Token) error {
	numSrc := t.src
	tokenLen := 0
	if numSrc[0] == '-' {
		if len(numSrc) == 1 || numSrc[1] < '0' || numSrc[1] > '9' {
			return errNumLitInvalid(t.offset, t.src[:1])
		}
		tokenLen++
		numSrc = numSrc[1:]
	}

	kind := T_INT_LIT
	invalid := false
	for ii, c := range numSrc {
		if c >= '0' && c <= '9' {
			continue
		}
		if c == '.' && kind == T_INT_LIT {
			if ii+1 < len(numSrc) && numSrc[ii+1] >= '0' && numSrc[ii+1] <= '9' {
				kind = T_FLOAT_LIT
				continue
			}
			numSrc = numSrc[:ii]
			break
		}
		if c == 'e' || c == 'E' {
			kind = T_FLOAT_LIT
			continue
		}
		if (c == '+' || c == '-') && ii > 0 && (numSrc[ii-1] == 'e' || numSrc[ii-1] == 'E') {
			continue
		}
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
			invalid = true
			continue
		}
		numSrc = numSrc[:ii]
		break
	}

	if len(numSrc) == 0 || invalid {
		return errNumLitInvalid(t.offset, t.src[:tokenLen+len(numSrc)])
	}
	tokenLen += len(numSrc)

	checkedLen, err := t.checkTokenLen(tokenLen)
	if err != nil {
		return err
	}
	*token = Token{
		Kind: kind,
		Len:  checkedLen,
	}
	t.offset += uint32(checkedLen)
	t.src = t.src[checkedLen:]
	return nil
}

func (t *Tokens) nextTextLit(token *Token) error {
	src := t.src
	escaped := false
	hasEscapes := false
	ok := false
	var flags uint8
	for ii, c := range t.src {
		if ii == 0 {
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		if c == '"' {
			src = t.src[:ii+1]
			ok = true
			break
		}
		if (c <= 0x1F || c == 0x7F) && c != 0x09 {
			off := t.offset + uint32(ii)
			if c == 0x0A {
				return errTextLitContainsNewline(off, 1)
			}
			if c == 0x0D && ii+1 < len(t.src) && t.src[ii+1] == 0x0A {
				return errTextLitContainsNewline(off, 2)
			}
			return errForbiddenControlCharacter(off, c)
		}
		if c == '\\' {
			escaped = true
			hasEscapes = true
		}
	}
	if !ok {
		return errTextLitUnterminated(t.offset, uint32(len(src)))
	}

	if !hasEscapes {
		flags |= tokenFlagTextHasNoEscapes
	}

	tokenLen, err := t.checkTokenLen(len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind:  T_TEXT_LIT,
		Len:   tokenLen,
		flags: flags,
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) nextIdent(token *Token) error {
	src := t.src
	for ii, c := range src {
		if ii == 0 {
			continue
		}
		if c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			continue
		}
		src = src[:ii]
		break
	}

	kind := T_IDENT
	if src[0] >= 'A' && src[0] <= 'Z' {
		kind = T_TYPE_IDENT
	}

	tokenLen, err := t.checkTokenLen(len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind: kind,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) checkTokenLen(length int) (uint16, error) {
	if length > maxTokenLen {
		return 0, errTokenTooLong(t.offset, length)
	}
	return uint16(length), nil
}

// NextVersionReq scans a semver requirement literal directly from the
// remaining source, bypassing the generic token dispatch above. It is
// invoked by the parser immediately after consuming an '@' sigil (§4.1:
// "version-requirement literal (following @)"), since the requirement
// grammar (`^`, `~`, `*`, comma-separated ranges) overlaps with punctuation
// that has other meanings elsewhere in the file.
func (t *Tokens) NextVersionReq(token *Token) error {
	if len(t.src) == 0 {
		return errVersionReqInvalid(t.offset, nil)
	}
	isVersionReqByte := func(c byte) bool {
		switch {
		case c >= '0' && c <= '9':
			return true
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			return true
		case c == '.' || c == '-' || c == '+' || c == '*':
			return true
		case c == '^' || c == '~' || c == '=' || c == '<' || c == '>':
			return true
		case c == ',' || c == ' ':
			return true
		}
		return false
	}
	// A space inside the requirement is only significant when followed by
	// more requirement syntax (e.g. the comma-separated range
	// ">=1.0, <2.0"): a space followed by a letter marks the boundary with
	// whatever keyword comes next in the grammar (commonly `as`), not a
	// continuation of the requirement itself.
	end := 0
	for end < len(t.src) {
		c := t.src[end]
		if c == ' ' {
			next := end
			for next < len(t.src) && t.src[next] == ' ' {
				next++
			}
			if next < len(t.src) {
				nc := t.src[next]
				if (nc >= 'a' && nc <= 'z') || (nc >= 'A' && nc <= 'Z') {
					break
				}
			}
			end = next
			continue
		}
		if !isVersionReqByte(c) {
			break
		}
		end++
	}
	for end > 0 && t.src[end-1] == ' ' {
		end--
	}
	if end == 0 {
		return errVersionReqInvalid(t.offset, t.src[:1])
	}
	tokenLen, err := t.checkTokenLen(end)
	if err != nil {
		return err
	}
	*token = Token{
		Kind: T_IDENT,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}
