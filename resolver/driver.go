package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/satpkg/resolver/model"
	"github.com/satpkg/resolver/sat"
)

// Options configures a Driver's solve behaviour (§6 CLI knobs reach the
// core only as booleans on the solve call). Built with functional options,
// the shape a caller like cmd/depsolve composes from flags.
type Options struct {
	PreferInstalled bool
	Prune           bool
	Logger          *logrus.Entry
}

// Option mutates Options; see WithPreferInstalled, WithPrune, WithLogger.
type Option func(*Options)

// WithPreferInstalled toggles §4.J tier 1 (currently-installed packages get
// top decision priority). Default true.
func WithPreferInstalled(b bool) Option {
	return func(o *Options) { o.PreferInstalled = b }
}

// WithPrune toggles the §4.G step 6 pruning pass. Default true.
func WithPrune(b bool) Option {
	return func(o *Options) { o.Prune = b }
}

// WithLogger sets the logger the driver and policy use for debug output.
func WithLogger(log *logrus.Entry) Option {
	return func(o *Options) { o.Logger = log }
}

func defaultOptions() Options {
	return Options{PreferInstalled: true, Prune: true, Logger: logrus.NewEntry(logrus.StandardLogger())}
}

// NewOptions builds an Options value from defaults plus overrides.
func NewOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return o
}

// Driver orchestrates Pool construction, rule generation and the engine
// search, then decodes the model into a Transaction (§4.G).
type Driver struct {
	opts Options
}

// NewDriver returns a Driver configured with opts.
func NewDriver(opts Options) *Driver {
	return &Driver{opts: opts}
}

// Solve runs one resolution: build the Pool, generate clauses, search, and
// decode the result. Returns *UnsatisfiableError (wrapped as error) if no
// solution exists, or *InvalidInputError for a malformed request.
func (d *Driver) Solve(ctx context.Context, repos []*model.Repository, installed *model.Repository, req model.Request) (*Transaction, error) {
	pool, err := BuildPool(repos, installed)
	if err != nil {
		return nil, err
	}

	solver := sat.NewSolver(sat.DefaultOptions)
	policy := NewInstalledFirstPolicy(pool, installed, req, d.opts.PreferInstalled, d.opts.Logger)
	solver.SetPolicy(policy)
	for i := 0; i < pool.NumVariables(); i++ {
		solver.AddVariable()
	}

	gen := NewRuleGenerator(pool, installed, d.opts.Logger)
	if err := gen.Generate(solver, req); err != nil {
		return nil, err
	}

	status := solver.Solve(ctx)
	switch status {
	case sat.StatusUNSAT:
		return nil, Explain(solver, pool, gen.Descriptions())
	case sat.StatusCancelled:
		return nil, context.Canceled
	case sat.StatusSAT:
		txn := d.decode(pool, installed, solver)
		if d.opts.Prune {
			pruned, err := prune(txn, pool, req)
			if err != nil {
				return nil, err
			}
			txn = pruned
		}
		return txn, nil
	default:
		return nil, fmt.Errorf("resolver: unexpected solve status %v", status)
	}
}

// decode turns the solver's model into a Transaction (§4.G steps 4-5):
// to_install = model \ installed, to_remove = installed \ model, paired by
// shared package name into updates. Installs are ordered dependencies-
// first so a caller applying them in order never installs a package before
// something it depends on.
func (d *Driver) decode(pool *Pool, installed *model.Repository, solver *sat.Solver) *Transaction {
	assignment := solver.Model()

	installedSet := make(map[string]model.Package)
	if installed != nil {
		for _, p := range installed.All() {
			installedSet[p.ID()] = p
		}
	}

	var toInstall, toRemove []model.Package
	for v, isTrue := range assignment {
		pkg := pool.PackageOf(v)
		_, wasInstalled := installedSet[pkg.ID()]
		switch {
		case isTrue && !wasInstalled:
			toInstall = append(toInstall, pkg)
		case !isTrue && wasInstalled:
			toRemove = append(toRemove, pkg)
		}
	}

	toInstall = topoSortInstalls(pool, toInstall)
	sort.Slice(toRemove, func(i, j int) bool {
		vi, _ := pool.VarOf(toRemove[i])
		vj, _ := pool.VarOf(toRemove[j])
		return vi < vj
	})

	removeByName := make(map[string]model.Package, len(toRemove))
	for _, p := range toRemove {
		removeByName[p.Name] = p
	}

	txn := &Transaction{Pool: pool}
	paired := make(map[string]bool)
	for _, p := range toInstall {
		if r, ok := removeByName[p.Name]; ok && !paired[p.Name] {
			txn.Ops = append(txn.Ops, Op{Kind: OpUpdate, From: r, To: p})
			paired[p.Name] = true
			continue
		}
		txn.Ops = append(txn.Ops, Op{Kind: OpInstall, To: p})
	}
	for _, p := range toRemove {
		if paired[p.Name] {
			continue
		}
		txn.Ops = append(txn.Ops, Op{Kind: OpRemove, From: p})
	}
	return txn
}

// topoSortInstalls orders pkgs so that every package appears after the
// packages (among pkgs) it transitively depends on.
func topoSortInstalls(pool *Pool, pkgs []model.Package) []model.Package {
	if len(pkgs) == 0 {
		return nil
	}
	g, err := BuildGraph(pool)
	if err != nil {
		return pkgs
	}

	inSet := make(map[int]bool, len(pkgs))
	for _, p := range pkgs {
		v, _ := pool.VarOf(p)
		inSet[v] = true
	}

	sorted := append([]model.Package(nil), pkgs...)
	sort.Slice(sorted, func(i, j int) bool {
		vi, _ := pool.VarOf(sorted[i])
		vj, _ := pool.VarOf(sorted[j])
		return vi < vj
	})

	visited := make(map[int]bool, len(pkgs))
	var order []model.Package
	var visit func(v int)
	visit = func(v int) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, w := range g.edges[v] {
			if inSet[w] {
				visit(w)
			}
		}
		if inSet[v] {
			order = append(order, pool.PackageOf(v))
		}
	}
	for _, p := range sorted {
		v, _ := pool.VarOf(p)
		visit(v)
	}
	return order
}

// allowedClosure is the set of packages reachable from the request's
// install/upgrade targets, used by the pruning pass.
func allowedClosure(pool *Pool, req model.Request) (map[string]bool, error) {
	allowed := make(map[string]bool)
	for _, a := range req.Actions {
		if a.Kind != model.ActionInstall && a.Kind != model.ActionUpgrade {
			continue
		}
		providers, err := pool.WhatProvides(a.Requirement)
		if err != nil {
			return nil, err
		}
		for _, p := range providers {
			allowed[p.ID()] = true
		}
		deps, err := ComputeDependencies(pool, a.Requirement)
		if err != nil {
			return nil, err
		}
		for _, p := range deps {
			allowed[p.ID()] = true
		}
	}
	return allowed, nil
}

// prune drops Install/Update operations whose target is not reachable from
// the request's transitive dependency closure (§4.G step 6), compensating
// for the model's freedom to set "don't-care" variables True. A request
// with no install/upgrade actions (e.g. remove-only) has nothing to prune
// against and is returned unchanged.
func prune(txn *Transaction, pool *Pool, req model.Request) (*Transaction, error) {
	allowed, err := allowedClosure(pool, req)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return txn, nil
	}

	kept := make([]Op, 0, len(txn.Ops))
	for _, op := range txn.Ops {
		switch op.Kind {
		case OpInstall, OpUpdate:
			if allowed[op.To.ID()] {
				kept = append(kept, op)
			}
		default:
			kept = append(kept, op)
		}
	}
	return &Transaction{Ops: kept, Pool: txn.Pool}, nil
}
