package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satpkg/resolver/model"
	"github.com/satpkg/resolver/sat"
)

func newTestSolver(pool *Pool) *sat.Solver {
	s := sat.NewDefaultSolver()
	for i := 0; i < pool.NumVariables(); i++ {
		s.AddVariable()
	}
	return s
}

func TestGenerateDependencyClauseForcesProvider(t *testing.T) {
	repo := model.NewRepository("core")
	a := pkg(t, "a", "1.0.0")
	a.Dependencies = []model.Requirement{model.NewRequirement("b", "")}
	b := pkg(t, "b", "1.0.0")
	repo.Add(a)
	repo.Add(b)

	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, nil, nil)
	var req model.Request
	req.Install(model.NewRequirement("a", ""))
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	require.Equal(t, sat.StatusSAT, status)

	va, _ := pool.VarOf(a)
	vb, _ := pool.VarOf(b)
	assignment := s.Model()
	assert.True(t, assignment[va])
	assert.True(t, assignment[vb])
}

func TestGenerateDependencyWithNoProvidersIsUnsat(t *testing.T) {
	repo := model.NewRepository("core")
	a := pkg(t, "a", "1.0.0")
	a.Dependencies = []model.Requirement{model.NewRequirement("missing", "")}
	repo.Add(a)

	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, nil, nil)
	var req model.Request
	req.Install(model.NewRequirement("a", ""))
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	assert.Equal(t, sat.StatusUNSAT, status)
}

func TestGenerateSameNameVersionsConflict(t *testing.T) {
	repo := model.NewRepository("core")
	a1 := pkg(t, "a", "1.0.0")
	a2 := pkg(t, "a", "2.0.0")
	repo.Add(a1)
	repo.Add(a2)

	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, nil, nil)
	var req model.Request
	req.Install(model.NewRequirement("a", ""))
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	require.Equal(t, sat.StatusSAT, status)

	va1, _ := pool.VarOf(a1)
	va2, _ := pool.VarOf(a2)
	m := s.Model()
	assert.NotEqual(t, m[va1], m[va2])
}

func TestGenerateExplicitConflictClause(t *testing.T) {
	repo := model.NewRepository("core")
	a := pkg(t, "a", "1.0.0")
	a.Conflicts = []model.Requirement{model.NewRequirement("b", "")}
	b := pkg(t, "b", "1.0.0")
	repo.Add(a)
	repo.Add(b)

	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, nil, nil)
	var req model.Request
	req.Install(model.NewRequirement("a", ""))
	req.Install(model.NewRequirement("b", ""))
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	assert.Equal(t, sat.StatusUNSAT, status)
}

func TestGenerateInstalledPackageStaysUnlessRemoved(t *testing.T) {
	installed := model.NewRepository("installed")
	a := pkg(t, "a", "1.0.0")
	installed.Add(a)

	pool, err := BuildPool(nil, installed)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, installed, nil)
	var req model.Request
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	require.Equal(t, sat.StatusSAT, status)

	va, _ := pool.VarOf(a)
	assert.True(t, s.Model()[va])
}

func TestGenerateRemoveRequestDropsInstalled(t *testing.T) {
	installed := model.NewRepository("installed")
	a := pkg(t, "a", "1.0.0")
	installed.Add(a)

	pool, err := BuildPool(nil, installed)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, installed, nil)
	var req model.Request
	req.Remove(model.NewRequirement("a", ""))
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	require.Equal(t, sat.StatusSAT, status)

	va, _ := pool.VarOf(a)
	assert.False(t, s.Model()[va])
}

func TestGenerateUpgradeAllKeepsSomeVersionInstalled(t *testing.T) {
	installed := model.NewRepository("installed")
	a1 := pkg(t, "a", "1.0.0")
	installed.Add(a1)

	repo := model.NewRepository("core")
	a2 := pkg(t, "a", "2.0.0")
	repo.Add(a2)

	pool, err := BuildPool([]*model.Repository{repo}, installed)
	require.NoError(t, err)

	s := newTestSolver(pool)
	gen := NewRuleGenerator(pool, installed, nil)
	var req model.Request
	req.UpgradeAll()
	require.NoError(t, gen.Generate(s, req))

	status := s.Solve(context.Background())
	require.Equal(t, sat.StatusSAT, status)

	va1, _ := pool.VarOf(a1)
	va2, _ := pool.VarOf(a2)
	m := s.Model()
	assert.True(t, m[va1] || m[va2], "upgrade-all must keep some version of an installed package installed")
}

func TestValidateRejectsUnknownRequirement(t *testing.T) {
	repo := model.NewRepository("core")
	repo.Add(pkg(t, "a", "1.0.0"))
	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	gen := NewRuleGenerator(pool, nil, nil)
	var req model.Request
	req.Install(model.NewRequirement("ghost", ""))

	s := newTestSolver(pool)
	err = gen.Generate(s, req)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestDescriptionsPopulatedAfterGenerate(t *testing.T) {
	repo := model.NewRepository("core")
	a := pkg(t, "a", "1.0.0")
	repo.Add(a)
	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	gen := NewRuleGenerator(pool, nil, nil)
	var req model.Request
	req.Install(model.NewRequirement("a", ""))
	s := newTestSolver(pool)
	require.NoError(t, gen.Generate(s, req))

	assert.NotEmpty(t, gen.Descriptions())
}
