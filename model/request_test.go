package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestBuildersChain(t *testing.T) {
	var req Request
	req.Install(NewRequirement("foo", ">=1.0.0")).
		Remove(NewRequirement("bar", "")).
		Upgrade(NewRequirement("baz", "")).
		UpgradeAll()

	require := []Action{
		{Kind: ActionInstall, Requirement: NewRequirement("foo", ">=1.0.0")},
		{Kind: ActionRemove, Requirement: NewRequirement("bar", "")},
		{Kind: ActionUpgrade, Requirement: NewRequirement("baz", "")},
		{Kind: ActionUpgradeAll},
	}
	assert.Equal(t, require, req.Actions)
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "install", ActionInstall.String())
	assert.Equal(t, "remove", ActionRemove.String())
	assert.Equal(t, "upgrade", ActionUpgrade.String())
	assert.Equal(t, "upgrade-all", ActionUpgradeAll.String())
	assert.Equal(t, "unknown", ActionKind(99).String())
}
