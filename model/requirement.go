// Package model holds the package-metadata types consumed by the resolver:
// requirements, packages, repositories and requests. None of it encodes SAT
// or solving logic; it is the vocabulary the resolver's rule generator
// translates into clauses.
package model

import "github.com/blang/semver/v4"

// Requirement names a package and an optional version constraint. It is a
// plain comparable value (no compiled matcher) so it can be used as a map
// key and compared with ==, matching its role as an incompatibility/rule
// identity in the resolver.
type Requirement struct {
	Name       string
	Constraint string // semver range expression, e.g. ">=1.2.0 <2.0.0"; empty means "any version"
}

// NewRequirement builds a Requirement for name under constraint. An empty
// constraint matches any version of name.
func NewRequirement(name, constraint string) Requirement {
	return Requirement{Name: name, Constraint: constraint}
}

func (r Requirement) String() string {
	if r.Constraint == "" {
		return r.Name
	}
	return r.Name + "@" + r.Constraint
}

// Matcher compiles the requirement's constraint into a version predicate.
// Compilation is deferred from Requirement itself because semver.Range is a
// function value and so not comparable/hashable.
func (r Requirement) Matcher() (Matcher, error) {
	if r.Constraint == "" {
		return Matcher{name: r.Name}, nil
	}
	rng, err := semver.ParseRange(r.Constraint)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{name: r.Name, rng: rng}, nil
}

// Matcher tests whether a Package satisfies a Requirement.
type Matcher struct {
	name string
	rng  semver.Range
}

// Matches reports whether p's name and version satisfy the requirement this
// matcher was compiled from.
func (m Matcher) Matches(p Package) bool {
	if p.Name != m.name {
		return false
	}
	if m.rng == nil {
		return true
	}
	return m.rng(p.Version)
}
