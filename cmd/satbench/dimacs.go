package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rhartert/dimacs"

	"github.com/satpkg/resolver/sat"
)

func reader(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if strings.HasSuffix(filename, ".gz") {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// loadDIMACS parses a DIMACS CNF file and loads it into s, returning the
// instance's declared variable and clause counts.
func loadDIMACS(filename string, s *sat.Solver) (nVars, nClauses int, err error) {
	r, err := reader(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{solver: s}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return 0, 0, fmt.Errorf("parsing %q: %w", filename, err)
	}
	return b.nVars, b.nClauses, nil
}

// builder adapts a *sat.Solver to dimacs.Builder.
type builder struct {
	solver   *sat.Solver
	nVars    int
	nClauses int
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("not a CNF problem: %q", problem)
	}
	b.nVars, b.nClauses = nVars, nClauses
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = sat.Lit(-l, false)
		} else {
			clause[i] = sat.Lit(l, true)
		}
	}
	return b.solver.AddClause(clause)
}

func (b *builder) Comment(_ string) error {
	return nil
}
