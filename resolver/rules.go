package resolver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/satpkg/resolver/model"
	"github.com/satpkg/resolver/sat"
)

// RuleGenerator translates a Pool, an installed set and a Request into SAT
// clauses (§4.F). It never touches the engine's search state directly; it
// only calls AddClause.
type RuleGenerator struct {
	pool      *Pool
	installed *model.Repository
	log       *logrus.Entry

	seen         map[string]bool   // dedup key -> emitted, see dedupKey
	descriptions map[string]string // literal-content key -> human rule description, for the explainer
}

// NewRuleGenerator returns a RuleGenerator for pool, whose installed set is
// the given repository (may be nil for an empty installed set).
func NewRuleGenerator(pool *Pool, installed *model.Repository, log *logrus.Entry) *RuleGenerator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RuleGenerator{
		pool:         pool,
		installed:    installed,
		log:          log,
		seen:         make(map[string]bool),
		descriptions: make(map[string]string),
	}
}

// Descriptions exposes the literal-content -> rule-description map built
// during Generate, consulted by the unsat explainer to annotate clauses.
func (g *RuleGenerator) Descriptions() map[string]string {
	return g.descriptions
}

func (g *RuleGenerator) annotate(lits []sat.Literal, desc string) {
	g.descriptions[litContentKey(lits)] = desc
}

func litContentKey(lits []sat.Literal) string {
	return dedupKey("", lits)
}

// Generate emits every clause for req into solver. Returns an
// InvalidInputError if a request action references a requirement with no
// providers and no package declaring it as a dependency.
func (g *RuleGenerator) Generate(solver *sat.Solver, req model.Request) error {
	if err := g.validate(req); err != nil {
		return err
	}

	for _, pkg := range g.pool.Packages() {
		if err := g.dependencyClauses(solver, pkg); err != nil {
			return err
		}
	}
	if err := g.conflictClauses(solver); err != nil {
		return err
	}
	if err := g.installedClauses(solver, req); err != nil {
		return err
	}
	if err := g.requestClauses(solver, req); err != nil {
		return err
	}
	return nil
}

func (g *RuleGenerator) validate(req model.Request) error {
	for _, action := range req.Actions {
		if action.Kind == model.ActionUpgradeAll {
			continue
		}
		providers, err := g.pool.WhatProvides(action.Requirement)
		if err != nil {
			return err
		}
		if len(providers) > 0 {
			continue
		}
		if g.declaredSomewhere(action.Requirement) {
			continue
		}
		return &InvalidInputError{
			Requirement: action.Requirement,
			Reason:      "no providers in the pool and no package declares it",
		}
	}
	return nil
}

func (g *RuleGenerator) declaredSomewhere(req model.Requirement) bool {
	for _, pkg := range g.pool.Packages() {
		for _, dep := range pkg.Dependencies {
			if dep == req {
				return true
			}
		}
	}
	return false
}

// dependencyClauses emits {¬v(P), v(Q1), ..., v(Qk)} for every dependency of
// P, or the unit {¬v(P)} if the requirement has no providers.
func (g *RuleGenerator) dependencyClauses(solver *sat.Solver, pkg model.Package) error {
	v, ok := g.pool.VarOf(pkg)
	if !ok {
		return fmt.Errorf("resolver: package %s missing from pool", pkg)
	}
	for _, dep := range pkg.Dependencies {
		providers, err := g.pool.variablesFor(dep)
		if err != nil {
			return err
		}
		lits := make([]sat.Literal, 0, len(providers)+1)
		lits = append(lits, sat.Lit(v, false))
		for _, pv := range providers {
			lits = append(lits, sat.Lit(pv, true))
		}
		if !g.dedup("dep", lits) {
			continue
		}
		g.annotate(lits, fmt.Sprintf("dependency %s of %s", dep, pkg))
		if err := solver.AddClause(lits); err != nil {
			return err
		}
	}
	return nil
}

// conflictClauses emits {¬v(P), ¬v(Q)} for every declared conflict pair and
// for every pair of distinct versions of the same package name (multi-
// version installs are not supported).
func (g *RuleGenerator) conflictClauses(solver *sat.Solver) error {
	for _, pkg := range g.pool.Packages() {
		v, _ := g.pool.VarOf(pkg)
		for _, c := range pkg.Conflicts {
			providers, err := g.pool.variablesFor(c)
			if err != nil {
				return err
			}
			for _, qv := range providers {
				if qv == v {
					continue
				}
				if err := g.emitBinary(solver, v, qv); err != nil {
					return err
				}
			}
		}
	}

	for name := range groupNames(g.pool) {
		vars := g.pool.VersionsOf(name)
		for i := 0; i < len(vars); i++ {
			for j := i + 1; j < len(vars); j++ {
				if err := g.emitBinary(solver, vars[i], vars[j]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func groupNames(pool *Pool) map[string]bool {
	names := make(map[string]bool)
	for _, pkg := range pool.Packages() {
		names[pkg.Name] = true
	}
	return names
}

func (g *RuleGenerator) emitBinary(solver *sat.Solver, a, b int) error {
	lits := []sat.Literal{sat.Lit(a, false), sat.Lit(b, false)}
	if !g.dedup("conflict", lits) {
		return nil
	}
	g.annotate(lits, fmt.Sprintf("conflict between %s and %s", g.pool.PackageOf(a), g.pool.PackageOf(b)))
	return solver.AddClause(lits)
}

// installedClauses emits the unit {v(I)} for every installed package whose
// removal the request does not explicitly allow. Under upgrade_all, the exact
// installed version is not pinned: instead it emits one providers-disjunction
// {v(Q1), ..., v(Qk)} per distinct installed package name, over every version
// of that name in the pool, so some version keeps the name installed while
// the branching policy is free to pick a newer one.
func (g *RuleGenerator) installedClauses(solver *sat.Solver, req model.Request) error {
	if g.installed == nil {
		return nil
	}
	upgradeAll := false
	for _, a := range req.Actions {
		if a.Kind == model.ActionUpgradeAll {
			upgradeAll = true
		}
	}
	seenNames := make(map[string]bool)
	for _, pkg := range g.installed.All() {
		v, ok := g.pool.VarOf(pkg)
		if !ok {
			continue
		}
		if g.removalAllowed(req, pkg) {
			continue
		}
		if upgradeAll {
			if seenNames[pkg.Name] {
				continue
			}
			seenNames[pkg.Name] = true
			if err := g.installedNameClause(solver, pkg.Name); err != nil {
				return err
			}
			continue
		}
		lits := []sat.Literal{sat.Lit(v, true)}
		if !g.dedup("installed", lits) {
			continue
		}
		g.annotate(lits, fmt.Sprintf("installed %s", pkg))
		if err := solver.AddClause(lits); err != nil {
			return err
		}
	}
	return nil
}

// installedNameClause emits {v(Q1), ..., v(Qk)} over every version of name in
// the pool, requiring some version of an installed, upgrade-all package to
// remain installed without pinning which one.
func (g *RuleGenerator) installedNameClause(solver *sat.Solver, name string) error {
	versions := g.pool.VersionsOf(name)
	lits := make([]sat.Literal, 0, len(versions))
	for _, v := range versions {
		lits = append(lits, sat.Lit(v, true))
	}
	if !g.dedup("installed-name", lits) {
		return nil
	}
	g.annotate(lits, fmt.Sprintf("installed %s (upgrade-all, any version)", name))
	return solver.AddClause(lits)
}

func (g *RuleGenerator) removalAllowed(req model.Request, pkg model.Package) bool {
	for _, a := range req.Actions {
		if a.Kind != model.ActionRemove && a.Kind != model.ActionUpgrade {
			continue
		}
		m, err := a.Requirement.Matcher()
		if err != nil {
			continue
		}
		if m.Matches(pkg) {
			return true
		}
	}
	return false
}

// requestClauses emits the §4.F request clauses: a providers-disjunction for
// install/upgrade, a negative unit for remove. upgrade_all contributes no
// clause of its own here: installedClauses already keeps each installed name
// satisfiable without pinning a version, and which version wins is the
// branching policy's job (§4.F "update...delegated to the branching policy").
func (g *RuleGenerator) requestClauses(solver *sat.Solver, req model.Request) error {
	for _, a := range req.Actions {
		switch a.Kind {
		case model.ActionInstall, model.ActionUpgrade:
			providers, err := g.pool.variablesFor(a.Requirement)
			if err != nil {
				return err
			}
			lits := make([]sat.Literal, 0, len(providers))
			for _, v := range providers {
				lits = append(lits, sat.Lit(v, true))
			}
			if !g.dedup("request", lits) {
				continue
			}
			g.annotate(lits, fmt.Sprintf("request for %s", a.Requirement))
			if err := solver.AddClause(lits); err != nil {
				return err
			}
		case model.ActionRemove:
			providers, err := g.pool.variablesFor(a.Requirement)
			if err != nil {
				return err
			}
			for _, v := range providers {
				lits := []sat.Literal{sat.Lit(v, false)}
				if !g.dedup("request", lits) {
					continue
				}
				g.annotate(lits, fmt.Sprintf("request to remove %s", a.Requirement))
				if err := solver.AddClause(lits); err != nil {
					return err
				}
			}
		case model.ActionUpgradeAll:
			// handled by installedClauses (providers-disjunction per name) and
			// the branching policy's newest-first ordering; no clause here.
		}
	}
	return nil
}

// dedup reports whether this clause (by sorted literal content and kind)
// has not already been emitted, recording it if not. All-request clauses
// share the dedup key space per §4.F "all emitted clauses are deduplicated".
func (g *RuleGenerator) dedup(kind string, lits []sat.Literal) bool {
	key := dedupKey(kind, lits)
	if g.seen[key] {
		return false
	}
	g.seen[key] = true
	return true
}

func dedupKey(kind string, lits []sat.Literal) string {
	sorted := append([]sat.Literal(nil), lits...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	key := kind
	for _, l := range sorted {
		key += fmt.Sprintf(",%d", l)
	}
	return key
}
