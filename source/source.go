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

// Package source abstracts over an input to the lexer: something that opens
// a read stream, has a stable display name, and can report a content hash
// for location tagging and cache keys.
package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Object is a single input to the parser. Implementations are opened on
// demand, read to completion, and closed before parsing returns; no
// implementation is expected to keep a long-lived file handle.
type Object interface {
	// Name is a stable display name used in diagnostics (e.g. a filesystem
	// path or "<memory>").
	Name() string

	// Open returns a fresh reader over the object's bytes. Callers must
	// close it.
	Open() (io.ReadCloser, error)

	// Hash returns a stable content hash, computed by reading the object
	// in full. Two objects with identical bytes report the same hash
	// regardless of name.
	Hash() (string, error)
}

// FileSource reads a `.reproto` file from the filesystem.
type FileSource struct {
	Path string
}

var _ Object = (*FileSource)(nil)

func (f *FileSource) Name() string { return f.Path }

func (f *FileSource) Open() (io.ReadCloser, error) {
	fp, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", f.Path, err)
	}
	return fp, nil
}

func (f *FileSource) Hash() (string, error) {
	fp, err := f.Open()
	if err != nil {
		return "", err
	}
	defer fp.Close()
	return hashReader(fp)
}

// BytesSource wraps an in-memory buffer as a Source Object, for tests and
// for content supplied without going through the filesystem.
type BytesSource struct {
	DisplayName string
	Content     []byte
}

var _ Object = (*BytesSource)(nil)

func (b *BytesSource) Name() string {
	if b.DisplayName == "" {
		return "<memory>"
	}
	return b.DisplayName
}

func (b *BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Content)), nil
}

func (b *BytesSource) Hash() (string, error) {
	sum := sha256.Sum256(b.Content)
	return hex.EncodeToString(sum[:]), nil
}

func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("source: hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadAll opens obj, reads it to completion, and closes it.
func ReadAll(obj Object) ([]byte, error) {
	fp, err := obj.Open()
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	buf, err := io.ReadAll(fp)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", obj.Name(), err)
	}
	return buf, nil
}
