package model

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementString(t *testing.T) {
	assert.Equal(t, "foo", NewRequirement("foo", "").String())
	assert.Equal(t, "foo@>=1.0.0", NewRequirement("foo", ">=1.0.0").String())
}

func TestMatcherAnyVersion(t *testing.T) {
	m, err := NewRequirement("foo", "").Matcher()
	require.NoError(t, err)

	v1, _ := semver.Parse("1.0.0")
	v2, _ := semver.Parse("2.3.4")
	assert.True(t, m.Matches(Package{Name: "foo", Version: v1}))
	assert.True(t, m.Matches(Package{Name: "foo", Version: v2}))
	assert.False(t, m.Matches(Package{Name: "bar", Version: v1}))
}

func TestMatcherConstrained(t *testing.T) {
	m, err := NewRequirement("foo", ">=1.0.0 <2.0.0").Matcher()
	require.NoError(t, err)

	inRange, _ := semver.Parse("1.5.0")
	tooNew, _ := semver.Parse("2.0.0")
	assert.True(t, m.Matches(Package{Name: "foo", Version: inRange}))
	assert.False(t, m.Matches(Package{Name: "foo", Version: tooNew}))
	assert.False(t, m.Matches(Package{Name: "other", Version: inRange}))
}

func TestMatcherInvalidConstraint(t *testing.T) {
	_, err := NewRequirement("foo", "not-a-range").Matcher()
	assert.Error(t, err)
}
