package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
)

func TestPermissionKind_Valid(t *testing.T) {
	for _, k := range types.Kinds {
		assert.True(t, k.Valid(), "kind %q", k)
	}
	assert.False(t, types.PermissionKind("bluetooth").Valid())
	assert.False(t, types.PermissionKind("").Valid())
	assert.False(t, types.PermissionKind("Camera").Valid())
}

func TestActionKind_Valid(t *testing.T) {
	for _, a := range types.Actions {
		assert.True(t, a.Valid(), "action %q", a)
	}
	assert.False(t, types.ActionKind("paused").Valid())
	assert.False(t, types.ActionKind("").Valid())
}
