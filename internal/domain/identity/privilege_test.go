package identity

import (
	"errors"
	"testing"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAdminRoleName(t *testing.T) {
	assert.True(t, IsAdminRoleName("Admin"))
	assert.True(t, IsAdminRoleName(" Super Admin "))
	assert.False(t, IsAdminRoleName("storekeeper"))
}

func TestModulePrivileges_Check(t *testing.T) {
	privs := NewModulePrivileges([]RolePrivilege{
		{Module: "Inventory Inward", CanView: true, CanAdd: true},
		{Module: "Inventory Outward", CanView: true},
	})

	assert.NoError(t, privs.Check("inventory inward", ActionAdd))
	assert.NoError(t, privs.Check(ModuleInventoryOutward, ActionView))

	err := privs.Check(ModuleInventoryOutward, ActionAdd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	err = privs.Check(ModuleStockTransfer, ActionView)
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, ModuleStockTransfer, de.Details["module"])
}

func TestValidatePrivileges(t *testing.T) {
	privs := []RolePrivilege{{Module: " Inventory "}, {Module: "Stock Transfer"}}
	require.NoError(t, ValidatePrivileges(4, privs))
	assert.Equal(t, uint64(4), privs[0].RoleID)
	assert.Equal(t, "Inventory", privs[0].Module)

	assert.Error(t, ValidatePrivileges(4, []RolePrivilege{{Module: "A"}, {Module: "a"}}))
	assert.Error(t, ValidatePrivileges(4, []RolePrivilege{{Module: ""}}))
}
