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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.reproto.dev/reproto/syntax"
)

// DumpJSON renders an AST subtree as indented JSON, for use in table-driven
// "parse this source, compare the tree" tests. It has no dependency on a
// fixture corpus: callers supply the expected JSON inline in the test table.
func DumpJSON(node syntax.Node) []byte {
	var buf bytes.Buffer
	dumpJSON(&buf, node, 0)
	return buf.Bytes()
}

func quoteJSON(s string) []byte {
	quoted, _ := json.Marshal(s)
	return quoted
}

func dumpJSON(buf *bytes.Buffer, node syntax.Node, indent int) {
	ty := fmt.Sprintf("%T", node)
	var nameBuf strings.Builder
	for ii, c := range strings.TrimPrefix(ty, "*syntax.") {
		if c >= 'A' && c <= 'Z' {
			if ii > 0 {
				nameBuf.WriteRune('-')
			}
			nameBuf.WriteRune(c + ('a' - 'A'))
		} else {
			nameBuf.WriteRune(c)
		}
	}
	buf.WriteString(strings.Repeat("    ", indent))
	buf.WriteString("{")
	buf.Write(quoteJSON(nameBuf.String()))
	buf.WriteString(": {\n")
	dumpSpanJSON(buf, node.Span(), indent+1)

	switch node := node.(type) {
	case *syntax.Comment:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"text": `)
		buf.Write(quoteJSON(node.Text()))
	case *syntax.Ident:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"value": `)
		buf.Write(quoteJSON(node.Get()))
	case *syntax.IntLit:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"value": `)
		if value, ok := node.GetInt64(); ok {
			buf.WriteString(fmt.Sprintf("%v", value))
		} else {
			value, _ := node.GetUint64()
			buf.WriteString(fmt.Sprintf("%v", value))
		}
	case *syntax.FloatLit:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"value": `)
		value, _ := node.GetFloat64()
		buf.WriteString(fmt.Sprintf("%v", value))
	case *syntax.TextLit:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"value": `)
		buf.Write(quoteJSON(node.Get()))
	case *syntax.BoolLit:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"value": `)
		buf.WriteString(fmt.Sprintf("%v", node.Get()))
	case *syntax.VersionReq:
		buf.WriteString(",\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString(`"raw": `)
		buf.Write(quoteJSON(node.Raw()))
	default:
	}

	firstChild := true
	for child := range node.ChildNodes() {
		if firstChild {
			buf.WriteString(",\n")
			buf.WriteString(strings.Repeat("    ", indent+1))
			buf.WriteString("\"child-nodes\": [\n")
		} else {
			buf.WriteString(",\n")
		}
		firstChild = false
		dumpJSON(buf, child, indent+2)
	}
	if !firstChild {
		buf.WriteString("\n")
		buf.WriteString(strings.Repeat("    ", indent+1))
		buf.WriteString("]")
	}
	buf.WriteString("}}")
}

func dumpSpanJSON(buf *bytes.Buffer, span syntax.Span, indent int) {
	buf.WriteString(strings.Repeat("    ", indent))
	buf.WriteString(fmt.Sprintf(
		`"span": {"start": %d, "len": %d}`,
		span.Start(),
		span.Len(),
	))
}
