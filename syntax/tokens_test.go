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
	"fmt"
	"testing"

	"go.reproto.dev/reproto/internal/testutil"
	"go.reproto.dev/reproto/syntax"
)

type strToken struct {
	kind    string
	content string
}

func tokenize(t *testing.T, src string) []strToken {
	t.Helper()
	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	var got []strToken
	for {
		var token syntax.Token
		testutil.AssertNoError(t, tokens.Next(&token))
		if token.Kind == syntax.T_EOF {
			break
		}
		got = append(got, strToken{
			kind:    token.Kind.String(),
			content: src[:token.Len],
		})
		src = src[token.Len:]
	}
	return got
}

func TestTokensSigils(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want []strToken
	}{
		{"@", []strToken{{"AT", "@"}}},
		{":", []strToken{{"COLON", ":"}}},
		{"::", []strToken{{"DCOLON", "::"}}},
		{";", []strToken{{"SEMI", ";"}}},
		{",", []strToken{{"COMMA", ","}}},
		{".", []strToken{{"DOT", "."}}},
		{"=", []strToken{{"EQ", "="}}},
		{"?", []strToken{{"QUESTION", "?"}}},
		{"->", []strToken{{"ARROW", "->"}}},
		{"{", []strToken{{"OPEN_CURL", "{"}}},
		{"}", []strToken{{"CLOSE_CURL", "}"}}},
		{"(", []strToken{{"OPEN_PAREN", "("}}},
		{")", []strToken{{"CLOSE_PAREN", ")"}}},
		{"[", []strToken{{"OPEN_SQUARE", "["}}},
		{"]", []strToken{{"CLOSE_SQUARE", "]"}}},
		{"<", []strToken{{"OPEN_ANGLE", "<"}}},
		{">", []strToken{{"CLOSE_ANGLE", ">"}}},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			testutil.ExpectSliceEq(t, test.want, tokenize(t, test.src))
		})
	}
}

func TestTokensIdents(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want []strToken
	}{
		{"foo", []strToken{{"IDENT", "foo"}}},
		{"foo_bar", []strToken{{"IDENT", "foo_bar"}}},
		{"Foo", []strToken{{"TYPE_IDENT", "Foo"}}},
		{"FooBar9", []strToken{{"TYPE_IDENT", "FooBar9"}}},
		{"_private", []strToken{{"IDENT", "_private"}}},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			testutil.ExpectSliceEq(t, test.want, tokenize(t, test.src))
		})
	}
}

func TestTokensNumLiterals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want []strToken
	}{
		{"0", []strToken{{"INT_LIT", "0"}}},
		{"123", []strToken{{"INT_LIT", "123"}}},
		{"-123", []strToken{{"INT_LIT", "-123"}}},
		{"1.5", []strToken{{"FLOAT_LIT", "1.5"}}},
		{"1e10", []strToken{{"FLOAT_LIT", "1e10"}}},
		{"1.5e-10", []strToken{{"FLOAT_LIT", "1.5e-10"}}},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			testutil.ExpectSliceEq(t, test.want, tokenize(t, test.src))
		})
	}
}

func TestTokensTextLiterals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want []strToken
	}{
		{`"hello"`, []strToken{{"TEXT_LIT", `"hello"`}}},
		{`"with \"escape\""`, []strToken{{"TEXT_LIT", `"with \"escape\""`}}},
		{`""`, []strToken{{"TEXT_LIT", `""`}}},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			testutil.ExpectSliceEq(t, test.want, tokenize(t, test.src))
		})
	}
}

func TestTokensComments(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want []strToken
	}{
		{"// hi", []strToken{{"COMMENT", "// hi"}}},
		{"/// doc", []strToken{{"DOC_COMMENT", "/// doc"}}},
		{"//! mod doc", []strToken{{"MOD_DOC_COMMENT", "//! mod doc"}}},
		{"/* block */", []strToken{{"COMMENT", "/* block */"}}},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			testutil.ExpectSliceEq(t, test.want, tokenize(t, test.src))
		})
	}
}

func TestTokensCodeBlock(t *testing.T) {
	t.Parallel()
	src := "{{ raw content }}"
	testutil.ExpectSliceEq(t, []strToken{{"CODE_BLOCK", src}}, tokenize(t, src))
}

func TestTokensNewlines(t *testing.T) {
	t.Parallel()
	testutil.ExpectSliceEq(t, []strToken{{"NEWLINE", "\n"}}, tokenize(t, "\n"))
	testutil.ExpectSliceEq(t, []strToken{{"NEWLINE", "\r\n"}}, tokenize(t, "\r\n"))
}

func TestTokensSpaces(t *testing.T) {
	t.Parallel()
	testutil.ExpectSliceEq(t, []strToken{{"SPACE", "   "}}, tokenize(t, "   "))
}

func TestTokensErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		code uint32
	}{
		{"invalid_utf8", "\xff", 1001},
		{"unexpected_character", "#", 1002},
		{"control_character", "\x01", 1003},
		{"unterminated_block_comment", "/* oops", 1005},
		{"unterminated_code_block", "{{ oops", 1006},
		{"unterminated_text_lit", `"oops`, 1008},
		{"text_lit_newline", "\"oops\n\"", 1009},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tokens, err := syntax.NewTokens([]byte(test.src))
			if err == nil {
				for err == nil {
					var token syntax.Token
					err = tokens.Next(&token)
					if token.Kind == syntax.T_EOF {
						break
					}
				}
			}
			testutil.AssertError(t, err)
			parseErr, ok := err.(*syntax.Error)
			if !ok {
				t.Fatalf("expected *syntax.Error, got %T", err)
			}
			testutil.ExpectEq(t, test.code, parseErr.Code())
		})
	}
}

func TestVersionReq(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"^1.0.0", "^1.0.0"},
		{"~1.2", "~1.2"},
		{"*", "*"},
		{">=1.0, <2.0", ">=1.0, <2.0"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			tokens, err := syntax.NewTokens([]byte(test.src))
			testutil.AssertNoError(t, err)
			var token syntax.Token
			testutil.AssertNoError(t, tokens.NextVersionReq(&token))
			testutil.ExpectEq(t, test.want, test.src[:token.Len])
		})
	}
}

func TestTokenKindStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind syntax.TokenKind
		want string
	}{
		{syntax.T_EOF, "EOF"},
		{syntax.T_SPACE, "SPACE"},
		{syntax.T_NEWLINE, "NEWLINE"},
		{syntax.T_COMMENT, "COMMENT"},
		{syntax.T_DOC_COMMENT, "DOC_COMMENT"},
		{syntax.T_MOD_DOC_COMMENT, "MOD_DOC_COMMENT"},
		{syntax.T_AT, "AT"},
		{syntax.T_COLON, "COLON"},
		{syntax.T_DCOLON, "DCOLON"},
		{syntax.T_SEMI, "SEMI"},
		{syntax.T_COMMA, "COMMA"},
		{syntax.T_DOT, "DOT"},
		{syntax.T_EQ, "EQ"},
		{syntax.T_QUESTION, "QUESTION"},
		{syntax.T_ARROW, "ARROW"},
		{syntax.T_OPEN_CURL, "OPEN_CURL"},
		{syntax.T_CLOSE_CURL, "CLOSE_CURL"},
		{syntax.T_OPEN_PAREN, "OPEN_PAREN"},
		{syntax.T_CLOSE_PAREN, "CLOSE_PAREN"},
		{syntax.T_OPEN_SQUARE, "OPEN_SQUARE"},
		{syntax.T_CLOSE_SQUARE, "CLOSE_SQUARE"},
		{syntax.T_OPEN_ANGLE, "OPEN_ANGLE"},
		{syntax.T_CLOSE_ANGLE, "CLOSE_ANGLE"},
		{syntax.T_CODE_BLOCK, "CODE_BLOCK"},
		{syntax.T_INT_LIT, "INT_LIT"},
		{syntax.T_FLOAT_LIT, "FLOAT_LIT"},
		{syntax.T_TEXT_LIT, "TEXT_LIT"},
		{syntax.T_IDENT, "IDENT"},
		{syntax.T_TYPE_IDENT, "TYPE_IDENT"},
		{syntax.TokenKind(255), "TokenKind(255)"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.kind), func(t *testing.T) {
			testutil.ExpectEq(t, test.want, test.kind.String())
		})
	}
}
