package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepositoryAddAndAll(t *testing.T) {
	repo := NewRepository("core")
	assert.Empty(t, repo.All())

	a := Package{Name: "a", Version: mustVersion(t, "1.0.0")}
	b := Package{Name: "b", Version: mustVersion(t, "1.0.0")}
	repo.Add(a)
	repo.Add(b)

	assert.Equal(t, []Package{a, b}, repo.All())
	assert.Equal(t, "core", repo.Name)
}
