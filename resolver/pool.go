// Package resolver turns a universe of packages, an installed set and a
// request into SAT clauses, drives the engine in package/sat, and decodes
// the resulting model back into a transaction or an unsatisfiability
// explanation.
package resolver

import (
	"fmt"
	"sort"

	"github.com/satpkg/resolver/model"
)

// Pool is the bijection between packages and SAT variable ids for one
// solve (§3 "Pool"). It is built once and never mutated afterward.
type Pool struct {
	packages []model.Package // index v-1 holds the package for variable id v
	idToVar  map[string]int
	byName   map[string][]int // variable ids sharing a package name, version-ascending
}

// BuildPool constructs a Pool from the union of the given repositories and
// the installed repository. Packages are deduplicated by ID; the first
// occurrence wins its declared dependencies/conflicts.
func BuildPool(repos []*model.Repository, installed *model.Repository) (*Pool, error) {
	p := &Pool{
		idToVar: make(map[string]int),
		byName:  make(map[string][]int),
	}

	add := func(pkg model.Package) error {
		if _, ok := p.idToVar[pkg.ID()]; ok {
			return nil
		}
		v := len(p.packages) + 1
		p.packages = append(p.packages, pkg)
		p.idToVar[pkg.ID()] = v
		p.byName[pkg.Name] = append(p.byName[pkg.Name], v)
		return nil
	}

	if installed != nil {
		for _, pkg := range installed.All() {
			if err := add(pkg); err != nil {
				return nil, err
			}
		}
	}
	for _, repo := range repos {
		for _, pkg := range repo.All() {
			if err := add(pkg); err != nil {
				return nil, err
			}
		}
	}

	for name, vars := range p.byName {
		sort.Slice(vars, func(i, j int) bool {
			return p.packages[vars[i]-1].Version.LT(p.packages[vars[j]-1].Version)
		})
		p.byName[name] = vars
	}

	return p, nil
}

// NumVariables returns how many package variables the pool allocated.
func (p *Pool) NumVariables() int {
	return len(p.packages)
}

// VarOf returns the variable id for pkg, if the pool contains it.
func (p *Pool) VarOf(pkg model.Package) (int, bool) {
	v, ok := p.idToVar[pkg.ID()]
	return v, ok
}

// PackageOf returns the package bound to variable id v. Panics if v is out
// of range, which indicates a caller bug (an id the pool never allocated).
func (p *Pool) PackageOf(v int) model.Package {
	return p.packages[v-1]
}

// Packages returns every package in the pool, ordered by variable id.
func (p *Pool) Packages() []model.Package {
	return p.packages
}

// VersionsOf returns the variable ids of every package sharing name,
// ordered from oldest to newest version.
func (p *Pool) VersionsOf(name string) []int {
	return p.byName[name]
}

// WhatProvides returns every package satisfying req (§3 "what_provides").
func (p *Pool) WhatProvides(req model.Requirement) ([]model.Package, error) {
	vars, err := p.variablesFor(req)
	if err != nil {
		return nil, err
	}
	out := make([]model.Package, 0, len(vars))
	for _, v := range vars {
		out = append(out, p.packages[v-1])
	}
	return out, nil
}

// variablesFor returns the variable ids satisfying req, version-ascending.
func (p *Pool) variablesFor(req model.Requirement) ([]int, error) {
	matcher, err := req.Matcher()
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid requirement %s: %w", req, err)
	}
	var out []int
	for _, v := range p.byName[req.Name] {
		if matcher.Matches(p.packages[v-1]) {
			out = append(out, v)
		}
	}
	return out, nil
}
