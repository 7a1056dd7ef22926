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
	"fmt"
	"math"
	"unicode/utf8"
)

// Error is a parse-time failure: a numeric code, a human-readable message,
// and the source span where it was detected. Parsing halts on the first
// Error (§4.2, §7: no error recovery within a single file).
type Error struct {
	code    uint32
	message string
	span    Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() Span {
	return err.span
}

// Lexer errors: 1000-1099.

func errSourceTooLong(srcLen int) error {
	lenUint32 := uint32(math.MaxUint32)
	if uint64(srcLen) < math.MaxUint32 {
		lenUint32 = uint32(srcLen)
	}
	return &Error{
		code: 1000,
		message: fmt.Sprintf(
			"source file size (%d bytes) exceeds maximum (%d bytes)",
			srcLen, maxSrcLen,
		),
		span: Span{0, lenUint32},
	}
}

func errInvalidUtf8(src []byte) error {
	offset := uint32(0)
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += uint32(size)
		src = src[size:]
	}
	return &Error{
		code:    1001,
		message: "source file is not valid UTF-8",
		span:    Span{offset, 1},
	}
}

func errUnexpectedCharacter(offset uint32, r rune) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("unexpected character %q", r),
		span:    Span{offset, uint32(utf8.RuneLen(r))},
	}
}

func errForbiddenControlCharacter(offset uint32, c byte) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("forbidden control character 0x%02X", c),
		span:    Span{offset, 1},
	}
}

func errTokenTooLong(offset uint32, length int) error {
	return &Error{
		code: 1004,
		message: fmt.Sprintf(
			"token length (%d bytes) exceeds maximum (%d bytes)",
			length, maxTokenLen,
		),
		span: Span{offset, uint32(maxTokenLen)},
	}
}

func errUnterminatedBlockComment(offset uint32, length uint32) error {
	return &Error{
		code:    1005,
		message: "unterminated block comment",
		span:    Span{offset, length},
	}
}

func errUnterminatedCodeBlock(offset uint32, length uint32) error {
	return &Error{
		code:    1006,
		message: "unterminated code block, expected closing \"}}\"",
		span:    Span{offset, length},
	}
}

func errNumLitInvalid(offset uint32, text []byte) error {
	return &Error{
		code:    1007,
		message: fmt.Sprintf("invalid number literal %q", text),
		span:    Span{offset, uint32(len(text))},
	}
}

func errTextLitUnterminated(offset uint32, length uint32) error {
	return &Error{
		code:    1008,
		message: "unterminated string literal",
		span:    Span{offset, length},
	}
}

func errTextLitContainsNewline(offset uint32, length uint32) error {
	return &Error{
		code:    1009,
		message: "string literal contains an unescaped newline",
		span:    Span{offset, length},
	}
}

func errVersionReqInvalid(offset uint32, text []byte) error {
	return &Error{
		code:    1010,
		message: fmt.Sprintf("invalid version requirement %q", text),
		span:    Span{offset, uint32(len(text))},
	}
}

// Parser errors: 1100-1199.

func errExpectedToken(offset uint32, length uint32, expected string, got TokenKind) error {
	return &Error{
		code:    1100,
		message: fmt.Sprintf("expected %s, found %s", expected, got),
		span:    Span{offset, length},
	}
}

func errExpectedKeyword(offset uint32, length uint32, keyword string) error {
	return &Error{
		code:    1101,
		message: fmt.Sprintf("expected keyword %q", keyword),
		span:    Span{offset, length},
	}
}

func errUnexpectedEOF(offset uint32, expected string) error {
	return &Error{
		code:    1102,
		message: fmt.Sprintf("unexpected end of file, expected %s", expected),
		span:    Span{offset, 0},
	}
}

func errInvalidFieldAlias(offset uint32, length uint32) error {
	return &Error{
		code:    1103,
		message: "field alias must be an identifier or a string literal",
		span:    Span{offset, length},
	}
}

func errTrailingTokens(offset uint32, length uint32) error {
	return &Error{
		code:    1104,
		message: "unexpected trailing content after declaration",
		span:    Span{offset, length},
	}
}
