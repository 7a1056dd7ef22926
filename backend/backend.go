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

// Package backend defines the contract external code generators implement
// against a resolved IR package (§6). The core never ships a back-end
// itself; it only ships this interface and an OutputSink a back-end can
// write through.
package backend

import (
	"os"
	"path/filepath"

	"go.reproto.dev/reproto/ir"
)

// OutputSink receives generated file content. Paths are back-end-relative
// (e.g. "widget.go", "pkg/client.rs"); a driver joins them under whatever
// output root the manifest or CLI flag names.
type OutputSink interface {
	Write(path string, content []byte) error
}

// Backend lowers one resolved IR package into source files via out. It
// must not mutate env and must not perform its own I/O outside out: the
// core, not the back-end, owns where bytes land.
type Backend interface {
	Compile(env *ir.Package, out OutputSink) error
}

// DirSink is the trivial OutputSink used by the CLI driver: it joins each
// path under Root and writes it as a regular file, creating parent
// directories as needed.
type DirSink struct {
	Root string
}

func (d DirSink) Write(path string, content []byte) error {
	outPath := filepath.Join(d.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, content, 0o644)
}
