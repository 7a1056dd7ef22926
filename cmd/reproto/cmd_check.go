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
	"go.reproto.dev/reproto/ir"
	"go.reproto.dev/reproto/manifest"
	"go.reproto.dev/reproto/repository"
	"go.reproto.dev/reproto/semck"
)

// cmdCheck compiles the same package from two manifests — typically an old
// published version and the working tree — and reports every semantic
// compatibility violation between them (§4.5).
type cmdCheck struct {
	oldManifestPath string
	newManifestPath string
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check --old=MANIFEST --new=MANIFEST PACKAGE",
		summary: "report breaking changes between two versions of a package",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.StringVar(&cmd.oldManifestPath, "old", "", "manifest describing the published package")
	flags.StringVar(&cmd.newManifestPath, "new", "reproto.yaml", "manifest describing the candidate package")
}

func (cmd *cmdCheck) run(ctx context.Context, argv []string) int {
	if len(argv) < 1 || cmd.oldManifestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: reproto check --old=MANIFEST [--new=MANIFEST] PACKAGE")
		return 1
	}
	pkgName := argv[0]

	oldPkg, code := compilePackage(cmd.oldManifestPath, pkgName)
	if code != 0 {
		return code
	}
	newPkg, code := compilePackage(cmd.newManifestPath, pkgName)
	if code != 0 {
		return code
	}

	violations := semck.Compare(oldPkg, newPkg)
	if len(violations) == 0 {
		fmt.Fprintf(os.Stdout, "%s: compatible\n", pkgName)
		return 0
	}
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "%s: %s\n", v.RuleID(), v.Error())
	}
	return 1
}

func compilePackage(manifestPath, pkgName string) (*ir.Package, int) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 2
	}
	repo := &repository.FilesystemRepository{Roots: m.Paths}
	env, diags := loadEnvironment(repo, m, pkgName)
	if len(diags) > 0 {
		printDiagnostics(diags)
		return nil, 1
	}
	result := compiler.Compile(env, pkgName)
	if !result.OK() {
		for _, d := range result.Errors {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return nil, 1
	}
	return result.Package, 0
}
