package model

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
)

func mustVersion(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.Parse(s)
	if err != nil {
		t.Fatalf("parsing version %q: %s", s, err)
	}
	return v
}

func TestPackageID(t *testing.T) {
	p := Package{Name: "foo", Version: mustVersion(t, "1.2.3")}
	assert.Equal(t, "foo@1.2.3", p.ID())
	assert.Equal(t, p.ID(), p.String())
}

func TestPackageSameName(t *testing.T) {
	a := Package{Name: "foo", Version: mustVersion(t, "1.0.0")}
	b := Package{Name: "foo", Version: mustVersion(t, "2.0.0")}
	c := Package{Name: "bar", Version: mustVersion(t, "1.0.0")}

	assert.True(t, a.SameName(b))
	assert.False(t, a.SameName(c))
}
