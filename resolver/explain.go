package resolver

import (
	"strings"

	"github.com/satpkg/resolver/sat"
)

// Incompatibility is one node of the resolution tree built by Explain
// (§4.H): a clause together with the rule that produced it and the nodes
// whose resolution derived the literals forced against it.
type Incompatibility struct {
	Literals []sat.Literal
	Rule     string
	Causes   []*Incompatibility
}

// UnsatisfiableError carries the learned-clause resolution tree and a
// reference to the Pool, so it can be rendered with any level of detail
// (§6 "UnsatisfiabilityError").
type UnsatisfiableError struct {
	Root *Incompatibility
	Pool *Pool
}

func (e *UnsatisfiableError) Error() string {
	return "resolver: the request is unsatisfiable: " + e.describe(e.Root, 0)
}

func (e *UnsatisfiableError) describe(n *Incompatibility, depth int) string {
	if n == nil {
		return "no explanation available"
	}
	var sb strings.Builder
	sb.WriteString(n.Rule)
	for _, c := range n.Causes {
		sb.WriteString("; caused by ")
		sb.WriteString(e.describe(c, depth+1))
	}
	return sb.String()
}

// Explain builds the unsatisfiability explanation for a solver that has
// just returned sat.StatusUNSAT, annotating clauses with the rule
// descriptions recorded by a RuleGenerator during Generate.
func Explain(solver *sat.Solver, pool *Pool, descriptions map[string]string) *UnsatisfiableError {
	conflict := solver.LastConflict()
	if conflict == nil {
		return &UnsatisfiableError{Pool: pool}
	}
	visited := make(map[*sat.Clause]*Incompatibility)
	root := explainClause(conflict, descriptions, solver, visited)
	return &UnsatisfiableError{Root: root, Pool: pool}
}

func explainClause(c *sat.Clause, descriptions map[string]string, s *sat.Solver, visited map[*sat.Clause]*Incompatibility) *Incompatibility {
	if node, ok := visited[c]; ok {
		return node
	}
	node := &Incompatibility{
		Literals: append([]sat.Literal(nil), c.Literals()...),
		Rule:     describeClause(c, descriptions),
	}
	visited[c] = node
	for _, l := range c.Literals() {
		r := s.ReasonOf(l.Var())
		if r.Kind != sat.ReasonPropagated || r.Clause == nil || r.Clause == c {
			continue
		}
		node.Causes = append(node.Causes, explainClause(r.Clause, descriptions, s, visited))
	}
	return node
}

func describeClause(c *sat.Clause, descriptions map[string]string) string {
	if desc, ok := descriptions[litContentKey(c.Literals())]; ok {
		return desc
	}
	if len(c.Literals()) == 0 {
		return "an empty clause"
	}
	return c.String()
}
