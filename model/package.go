package model

import "github.com/blang/semver/v4"

// Package is a single installable candidate: an identity (name + version)
// plus its declared dependencies and conflicts, each expressed as a
// Requirement the Pool will later resolve against the rest of the universe.
type Package struct {
	Name         string
	Version      semver.Version
	Dependencies []Requirement
	Conflicts    []Requirement
}

// ID returns a stable string identity for the package, suitable for use in
// logs and transaction output.
func (p Package) ID() string {
	return p.Name + "@" + p.Version.String()
}

func (p Package) String() string {
	return p.ID()
}

// SameName reports whether p and q share a package name, the criterion this
// module uses to decide whether two candidates are "versions of the same
// package" for conflict and update-pairing purposes.
func (p Package) SameName(q Package) bool {
	return p.Name == q.Name
}
