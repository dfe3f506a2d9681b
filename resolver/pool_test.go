package resolver

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satpkg/resolver/model"
)

func mustVersion(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.Parse(s)
	require.NoError(t, err)
	return v
}

func pkg(t *testing.T, name, version string) model.Package {
	t.Helper()
	return model.Package{Name: name, Version: mustVersion(t, version)}
}

func TestBuildPoolAssignsVariablesInsertionOrder(t *testing.T) {
	repoA := model.NewRepository("core")
	a1 := pkg(t, "a", "1.0.0")
	b1 := pkg(t, "b", "1.0.0")
	repoA.Add(a1)
	repoA.Add(b1)

	pool, err := BuildPool([]*model.Repository{repoA}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, pool.NumVariables())
	va, ok := pool.VarOf(a1)
	require.True(t, ok)
	vb, ok := pool.VarOf(b1)
	require.True(t, ok)
	assert.Equal(t, 1, va)
	assert.Equal(t, 2, vb)
	assert.Equal(t, a1, pool.PackageOf(va))
}

func TestBuildPoolDedupesByID(t *testing.T) {
	repo1 := model.NewRepository("r1")
	repo2 := model.NewRepository("r2")
	a1 := pkg(t, "a", "1.0.0")
	repo1.Add(a1)
	repo2.Add(a1)

	pool, err := BuildPool([]*model.Repository{repo1, repo2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.NumVariables())
}

func TestBuildPoolInstalledComesFirst(t *testing.T) {
	installed := model.NewRepository("installed")
	a1 := pkg(t, "a", "1.0.0")
	installed.Add(a1)

	repo := model.NewRepository("core")
	b1 := pkg(t, "b", "1.0.0")
	repo.Add(b1)

	pool, err := BuildPool([]*model.Repository{repo}, installed)
	require.NoError(t, err)

	va, _ := pool.VarOf(a1)
	vb, _ := pool.VarOf(b1)
	assert.Equal(t, 1, va)
	assert.Equal(t, 2, vb)
}

func TestVersionsOfOrderedAscending(t *testing.T) {
	repo := model.NewRepository("core")
	a2 := pkg(t, "a", "2.0.0")
	a1 := pkg(t, "a", "1.0.0")
	repo.Add(a2)
	repo.Add(a1)

	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	vars := pool.VersionsOf("a")
	require.Len(t, vars, 2)
	assert.Equal(t, a1, pool.PackageOf(vars[0]))
	assert.Equal(t, a2, pool.PackageOf(vars[1]))
}

func TestWhatProvidesFiltersByConstraint(t *testing.T) {
	repo := model.NewRepository("core")
	a1 := pkg(t, "a", "1.0.0")
	a2 := pkg(t, "a", "2.0.0")
	repo.Add(a1)
	repo.Add(a2)

	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	providers, err := pool.WhatProvides(model.NewRequirement("a", ">=2.0.0"))
	require.NoError(t, err)
	assert.Equal(t, []model.Package{a2}, providers)
}

func TestWhatProvidesInvalidConstraint(t *testing.T) {
	repo := model.NewRepository("core")
	repo.Add(pkg(t, "a", "1.0.0"))
	pool, err := BuildPool([]*model.Repository{repo}, nil)
	require.NoError(t, err)

	_, err = pool.WhatProvides(model.NewRequirement("a", "not-a-range"))
	assert.Error(t, err)
}
