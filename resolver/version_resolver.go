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

package resolver

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"go.reproto.dev/reproto/diagnostic"
	"go.reproto.dev/reproto/syntax"
)

// Requirement is one (package, version-requirement) tuple contributed by
// either the manifest's `packages` map or a file's `use` declaration.
type Requirement struct {
	Package    string
	VersionReq string
	Span       syntax.Span
}

// VersionSource answers "what versions of this package can be loaded",
// satisfied by repository.Repository.AvailableVersions without the
// resolver depending on the repository package directly.
type VersionSource func(pkg string) ([]*semver.Version, error)

// VersionResolver selects one concrete version per required package using
// semantic-version rules (§4.3 steps 1-2). It does not backtrack: a
// package with requirements that share no satisfying version is reported
// as VersionConflict rather than retried with a different selection
// elsewhere in the graph.
type VersionResolver struct {
	Available VersionSource
}

func NewVersionResolver(available VersionSource) *VersionResolver {
	return &VersionResolver{Available: available}
}

// Resolve groups reqs by package, intersects their constraints, and picks
// the highest available version satisfying all of them.
func (r *VersionResolver) Resolve(reqs []Requirement) (map[string]*semver.Version, []*diagnostic.Diagnostic) {
	byPkg := make(map[string][]Requirement)
	for _, req := range reqs {
		byPkg[req.Package] = append(byPkg[req.Package], req)
	}

	pkgNames := make([]string, 0, len(byPkg))
	for name := range byPkg {
		pkgNames = append(pkgNames, name)
	}
	sort.Strings(pkgNames)

	selected := make(map[string]*semver.Version, len(pkgNames))
	var diags []*diagnostic.Diagnostic

	for _, pkg := range pkgNames {
		pkgReqs := byPkg[pkg]

		available, err := r.Available(pkg)
		if err != nil {
			diags = append(diags, diagnostic.New(diagnostic.KindIO, fmt.Sprintf("listing versions of %q: %v", pkg, err)))
			continue
		}

		var constraints []*semver.Constraints
		ok := true
		for _, req := range pkgReqs {
			c, err := semver.NewConstraint(req.VersionReq)
			if err != nil {
				diags = append(diags, diagnostic.New(
					diagnostic.KindParseError,
					fmt.Sprintf("invalid version requirement %q for package %q: %v", req.VersionReq, pkg, err),
					diagnostic.Label("required here", req.Span),
				))
				ok = false
				continue
			}
			constraints = append(constraints, c)
		}
		if !ok {
			continue
		}

		best := highestSatisfying(available, constraints)
		if best == nil {
			if len(pkgReqs) > 1 {
				diags = append(diags, diagnostic.VersionConflict(
					pkg, pkgReqs[0].VersionReq, pkgReqs[1].VersionReq,
					pkgReqs[0].Span, pkgReqs[1].Span,
				))
			} else {
				diags = append(diags, diagnostic.UnsatisfiedVersion(pkg, pkgReqs[0].VersionReq, pkgReqs[0].Span))
			}
			continue
		}
		selected[pkg] = best
	}

	return selected, diags
}

func highestSatisfying(available []*semver.Version, constraints []*semver.Constraints) *semver.Version {
	var best *semver.Version
	for _, v := range available {
		satisfiesAll := true
		for _, c := range constraints {
			if !c.Check(v) {
				satisfiesAll = false
				break
			}
		}
		if !satisfiesAll {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}
