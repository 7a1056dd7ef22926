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

// Package diagnostic holds the error model shared by every front-end phase:
// a single typed Kind enumeration, a Diagnostic carrying a message and zero
// or more labeled spans, and a renderer that formats a Diagnostic against
// its source text with caret underlines.
package diagnostic

import (
	"fmt"
	"strings"

	"go.reproto.dev/reproto/syntax"
)

// Kind enumerates the sum type of front-end failure categories.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindIO
	KindLexError
	KindParseError
	KindDuplicateDeclaration
	KindUnknownName
	KindUnknownPackage
	KindUnsatisfiedVersion
	KindVersionConflict
	KindConflictingAlias
	KindInvalidOrdinal
	KindSemckViolation
	KindBug
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "Io"
	case KindLexError:
		return "LexError"
	case KindParseError:
		return "ParseError"
	case KindDuplicateDeclaration:
		return "DuplicateDeclaration"
	case KindUnknownName:
		return "UnknownName"
	case KindUnknownPackage:
		return "UnknownPackage"
	case KindUnsatisfiedVersion:
		return "UnsatisfiedVersion"
	case KindVersionConflict:
		return "VersionConflict"
	case KindConflictingAlias:
		return "ConflictingAlias"
	case KindInvalidOrdinal:
		return "InvalidOrdinal"
	case KindSemckViolation:
		return "SemckViolation"
	case KindBug:
		return "Bug"
	default:
		return "Unknown"
	}
}

// LabeledSpan is one secondary (or primary) location attached to a
// Diagnostic, in insertion order.
type LabeledSpan struct {
	Label string
	Span  syntax.Span
}

// Diagnostic is the concrete carrier for every front-end failure: a kind, a
// human message, and zero or more labeled spans (the first is primary).
type Diagnostic struct {
	kind    Kind
	ruleID  string
	message string
	spans   []LabeledSpan
}

var _ error = (*Diagnostic)(nil)

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.kind, d.message)
}

func (d *Diagnostic) Kind() Kind { return d.kind }

// RuleID is set only for KindSemckViolation; it names the compatibility
// rule that was violated (e.g. "field-type-change").
func (d *Diagnostic) RuleID() string { return d.ruleID }

func (d *Diagnostic) Message() string { return d.message }

func (d *Diagnostic) Spans() []LabeledSpan { return d.spans }

// PrimarySpan is the span of the first labeled span, or the zero Span if
// the diagnostic carries none.
func (d *Diagnostic) PrimarySpan() syntax.Span {
	if len(d.spans) == 0 {
		return syntax.Span{}
	}
	return d.spans[0].Span
}

func New(kind Kind, message string, spans ...LabeledSpan) *Diagnostic {
	return &Diagnostic{kind: kind, message: message, spans: spans}
}

func NewViolation(ruleID, message string, spans ...LabeledSpan) *Diagnostic {
	return &Diagnostic{kind: KindSemckViolation, ruleID: ruleID, message: message, spans: spans}
}

func Label(label string, span syntax.Span) LabeledSpan {
	return LabeledSpan{Label: label, Span: span}
}

// --- Constructors for the front-end's named failure modes. ---

func DuplicateDeclaration(name string, first, second syntax.Span) *Diagnostic {
	return New(
		KindDuplicateDeclaration,
		fmt.Sprintf("declaration %q is defined more than once in this package", name),
		Label("first definition", first),
		Label("duplicate definition", second),
	)
}

func UnknownName(name string, span syntax.Span) *Diagnostic {
	return New(
		KindUnknownName,
		fmt.Sprintf("cannot resolve name %q", name),
		Label("referenced here", span),
	)
}

func UnknownPackage(pkg string, span syntax.Span) *Diagnostic {
	return New(
		KindUnknownPackage,
		fmt.Sprintf("package %q is not available to the resolver", pkg),
		Label("imported here", span),
	)
}

func UnsatisfiedVersion(pkg, req string, span syntax.Span) *Diagnostic {
	return New(
		KindUnsatisfiedVersion,
		fmt.Sprintf("no version of package %q satisfies requirement %q", pkg, req),
		Label("required here", span),
	)
}

func VersionConflict(pkg, reqA, reqB string, spanA, spanB syntax.Span) *Diagnostic {
	return New(
		KindVersionConflict,
		fmt.Sprintf("package %q has conflicting requirements %q and %q", pkg, reqA, reqB),
		Label("first requirement", spanA),
		Label("second requirement", spanB),
	)
}

func ConflictingAlias(scope, alias string, first, second syntax.Span) *Diagnostic {
	return New(
		KindConflictingAlias,
		fmt.Sprintf("serialization identifier %q is used by more than one member of %q", alias, scope),
		Label("first use", first),
		Label("conflicting use", second),
	)
}

func InvalidOrdinal(enumName string, span syntax.Span, reason string) *Diagnostic {
	return New(
		KindInvalidOrdinal,
		fmt.Sprintf("invalid ordinal in enum %q: %s", enumName, reason),
		Label("here", span),
	)
}

// Render formats a diagnostic against its source text: kind, message, and a
// caret-underlined excerpt per labeled span, in insertion order.
func Render(d *Diagnostic, filename string, src []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", d.kind, d.message)
	for _, ls := range d.spans {
		line, col, lineText := locate(src, ls.Span.Start())
		fmt.Fprintf(&b, "  --> %s:%d:%d\n", filename, line, col)
		fmt.Fprintf(&b, "   | %s\n", lineText)
		fmt.Fprintf(&b, "   | %s%s %s\n", strings.Repeat(" ", col-1), caretRun(ls.Span, lineText, col), ls.Label)
	}
	return b.String()
}

func caretRun(span syntax.Span, lineText string, col int) string {
	n := int(span.Len())
	if n < 1 {
		n = 1
	}
	if col-1+n > len(lineText) {
		n = len(lineText) - (col - 1)
		if n < 1 {
			n = 1
		}
	}
	return strings.Repeat("^", n)
}

// locate converts a byte offset into a 1-based line/column pair plus the
// full text of that line, by scanning preceding newlines.
func locate(src []byte, offset uint32) (line, col int, lineText string) {
	line = 1
	lineStart := 0
	for i := 0; i < int(offset) && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := lineStart
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}
	col = int(offset) - lineStart + 1
	return line, col, string(src[lineStart:lineEnd])
}
