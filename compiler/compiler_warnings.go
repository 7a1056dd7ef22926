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

package compiler

import (
	"fmt"

	"go.reproto.dev/reproto/syntax"
)

// Warning carries a non-fatal observation about a compiled package. Unlike
// Diagnostic, warnings never fail a compilation; they exist so a caller can
// surface style and dead-code issues without blocking on them.
type Warning struct {
	code    uint32
	message string
	span    syntax.Span
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32      { return w.code }
func (w *Warning) Message() string   { return w.message }
func (w *Warning) Span() syntax.Span { return w.span }

func warnUnrecognizedOption(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4000,
		message: fmt.Sprintf("option %q is not recognized by the core and will be ignored", name),
		span:    span,
	}
}

func warnUnusedUse(alias string, span syntax.Span) *Warning {
	return &Warning{
		code:    4001,
		message: fmt.Sprintf("import aliased as %q is never referenced", alias),
		span:    span,
	}
}

func warnEndpointWithoutResponse(serviceName, endpoint string, span syntax.Span) *Warning {
	return &Warning{
		code:    4002,
		message: fmt.Sprintf("endpoint %q on service %q declares no response channel", endpoint, serviceName),
		span:    span,
	}
}
