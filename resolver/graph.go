package resolver

import "github.com/satpkg/resolver/model"

// Graph is the directed dependency graph over a Pool's variable ids: an
// edge u -> v exists iff v is among the providers of some dependency of the
// package bound to u (§4.I).
type Graph struct {
	pool  *Pool
	edges map[int][]int
	memo  map[int]map[int]bool
}

// BuildGraph constructs the dependency graph for every package in pool.
func BuildGraph(pool *Pool) (*Graph, error) {
	g := &Graph{
		pool:  pool,
		edges: make(map[int][]int),
		memo:  make(map[int]map[int]bool),
	}
	for _, pkg := range pool.Packages() {
		u, _ := pool.VarOf(pkg)
		for _, dep := range pkg.Dependencies {
			providers, err := pool.variablesFor(dep)
			if err != nil {
				return nil, err
			}
			g.edges[u] = append(g.edges[u], providers...)
		}
	}
	return g, nil
}

// reversed returns a Graph with every edge inverted, used for reverse
// dependency queries.
func (g *Graph) reversed() *Graph {
	rev := &Graph{
		pool:  g.pool,
		edges: make(map[int][]int),
		memo:  make(map[int]map[int]bool),
	}
	for u, vs := range g.edges {
		for _, v := range vs {
			rev.edges[v] = append(rev.edges[v], u)
		}
	}
	return rev
}

// reachable returns every node reachable from v in one or more steps.
// Memoized per node; the visited set during traversal makes it safe on
// cyclic graphs (a node already on the visited set is never re-expanded).
func (g *Graph) reachable(v int) map[int]bool {
	if cached, ok := g.memo[v]; ok {
		return cached
	}
	visited := make(map[int]bool)
	var visit func(int)
	visit = func(u int) {
		for _, w := range g.edges[u] {
			if visited[w] {
				continue
			}
			visited[w] = true
			visit(w)
		}
	}
	visit(v)
	g.memo[v] = visited
	return visited
}

func (g *Graph) packagesOf(vars map[int]bool) []model.Package {
	out := make([]model.Package, 0, len(vars))
	for v := range vars {
		out = append(out, g.pool.PackageOf(v))
	}
	return out
}

// ComputeDependencies returns the transitive dependency closure of every
// package satisfying req (§4.I compute_dependencies).
func ComputeDependencies(pool *Pool, req model.Requirement) ([]model.Package, error) {
	g, err := BuildGraph(pool)
	if err != nil {
		return nil, err
	}
	providers, err := pool.variablesFor(req)
	if err != nil {
		return nil, err
	}
	union := make(map[int]bool)
	for _, v := range providers {
		for w := range g.reachable(v) {
			union[w] = true
		}
	}
	return g.packagesOf(union), nil
}

// ComputeReverseDependencies returns every package that transitively depends
// on some package satisfying req (§4.I compute_reverse_dependencies).
func ComputeReverseDependencies(pool *Pool, req model.Requirement) ([]model.Package, error) {
	g, err := BuildGraph(pool)
	if err != nil {
		return nil, err
	}
	rev := g.reversed()
	providers, err := pool.variablesFor(req)
	if err != nil {
		return nil, err
	}
	union := make(map[int]bool)
	for _, v := range providers {
		for w := range rev.reachable(v) {
			union[w] = true
		}
	}
	return rev.packagesOf(union), nil
}
