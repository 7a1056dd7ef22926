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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"go.reproto.dev/reproto/compiler"
	"go.reproto.dev/reproto/manifest"
	"go.reproto.dev/reproto/repository"
)

// cmdCompile resolves a package's imports and versions, lowers it to IR,
// and reports the result. Emitting target-language source is the job of an
// external back-end (§6); the core only produces and reports the IR.
type cmdCompile struct {
	manifestPath string
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile PACKAGE",
		summary: "resolve imports and versions, then lower PACKAGE to IR",
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.manifestPath, "manifest", "m", "reproto.yaml", "path to the package manifest")
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "usage: reproto compile [-m manifest] PACKAGE")
		return 1
	}
	pkgName := argv[0]

	m, err := manifest.Load(cmd.manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	repo := &repository.FilesystemRepository{Roots: m.Paths}

	env, diags := loadEnvironment(repo, m, pkgName)
	if len(diags) > 0 {
		printDiagnostics(diags)
		return 1
	}

	result := compiler.Compile(env, pkgName)
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}
	if !result.OK() {
		for _, d := range result.Errors {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return 1
	}

	fmt.Fprintf(os.Stdout, "%s: %d declaration(s) resolved for back-end %q\n", pkgName, len(result.Package.Decls), m.Language)
	return 0
}
