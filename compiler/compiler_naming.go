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

import "strings"

// NamingStyle selects the `field_naming`/`endpoint_naming` transform
// applied to a member's name to derive its serialization identifier when no
// explicit alias is given (§6). The zero value, NamingVerbatim, leaves the
// source identifier unchanged — the field_naming/endpoint_naming options
// are themselves optional per §6, so an unset option must not silently
// impose a casing convention the author never asked for.
type NamingStyle uint8

const (
	NamingVerbatim NamingStyle = iota
	NamingLowerCamel
	NamingUpperCamel
	NamingLowerSnake
	NamingUpperSnake
)

func ParseNamingStyle(s string) (NamingStyle, bool) {
	switch s {
	case "lower_camel":
		return NamingLowerCamel, true
	case "upper_camel":
		return NamingUpperCamel, true
	case "lower_snake":
		return NamingLowerSnake, true
	case "upper_snake":
		return NamingUpperSnake, true
	default:
		return NamingVerbatim, false
	}
}

// transformName splits name on underscores and before every uppercase
// letter that is not the first of a word (so "HTTPServer" becomes H, T, T,
// P, Server), then rejoins the words under style. Splitting on both
// boundary kinds lets the same function normalize source identifiers
// written in either snake_case or camelCase.
func transformName(style NamingStyle, name string) string {
	if style == NamingVerbatim {
		return name
	}
	words := splitWords(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	switch style {
	case NamingLowerSnake:
		return strings.Join(words, "_")
	case NamingUpperSnake:
		upper := make([]string, len(words))
		for i, w := range words {
			upper[i] = strings.ToUpper(w)
		}
		return strings.Join(upper, "_")
	case NamingLowerCamel:
		var b strings.Builder
		for i, w := range words {
			if i == 0 {
				b.WriteString(w)
			} else {
				b.WriteString(capitalize(w))
			}
		}
		return b.String()
	case NamingUpperCamel:
		var b strings.Builder
		for _, w := range words {
			b.WriteString(capitalize(w))
		}
		return b.String()
	default:
		return name
	}
}

func splitWords(s string) []string {
	var words []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			flush()
			continue
		}
		if c >= 'A' && c <= 'Z' && len(cur) > 0 {
			flush()
		}
		cur = append(cur, c)
	}
	flush()
	return words
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
