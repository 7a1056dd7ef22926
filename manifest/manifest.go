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

// Package manifest loads the package-compilation configuration document
// consumed by the CLI: selected back-end language, filesystem search
// paths, output directory, and the set of packages to compile or depend on.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Language is the recognized set of back-end selectors. The core does not
// implement any of these; it only threads the selection through to an
// external collaborator.
type Language string

const (
	LangDoc    Language = "doc"
	LangJava   Language = "java"
	LangJS     Language = "js"
	LangJSON   Language = "json"
	LangPython Language = "python"
	LangRust   Language = "rust"
)

func (l Language) valid() bool {
	switch l {
	case LangDoc, LangJava, LangJS, LangJSON, LangPython, LangRust:
		return true
	default:
		return false
	}
}

// Repository holds optional remote storage endpoints. The core never
// dereferences these; they exist purely to be handed to an external
// repository client.
type Repository struct {
	Index   string `yaml:"index,omitempty"`
	Objects string `yaml:"objects,omitempty"`
}

// Manifest is the parsed form of a `reproto.yaml` configuration document.
type Manifest struct {
	Language   Language          `yaml:"language"`
	Paths      []string          `yaml:"paths"`
	Output     string            `yaml:"output"`
	Packages   map[string]string `yaml:"packages"`
	Repository *Repository       `yaml:"repository,omitempty"`
}

// Load reads and parses a manifest document from path.
func Load(path string) (*Manifest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(buf)
}

// Parse decodes a manifest document from raw YAML bytes and validates the
// fields the core cares about.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	if m.Language == "" {
		return nil, fmt.Errorf("manifest: missing required field %q", "language")
	}
	if !m.Language.valid() {
		return nil, fmt.Errorf("manifest: unrecognized language %q", m.Language)
	}
	return &m, nil
}

// PackageRequirements returns the manifest's `packages` map as
// (name, version-requirement) pairs, in a deterministic order.
func (m *Manifest) PackageRequirements() []PackageRequirement {
	out := make([]PackageRequirement, 0, len(m.Packages))
	for name, req := range m.Packages {
		out = append(out, PackageRequirement{Package: name, VersionReq: req})
	}
	sortRequirements(out)
	return out
}

type PackageRequirement struct {
	Package    string
	VersionReq string
}

func sortRequirements(reqs []PackageRequirement) {
	for i := 1; i < len(reqs); i++ {
		for j := i; j > 0 && reqs[j-1].Package > reqs[j].Package; j-- {
			reqs[j-1], reqs[j] = reqs[j], reqs[j-1]
		}
	}
}
