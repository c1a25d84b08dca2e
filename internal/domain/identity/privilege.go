package identity

import (
	"strings"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Action is an operation a privilege can grant on a module
type Action string

const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Module names gated by the ledger's HTTP surface
const (
	ModuleInventory        = "Inventory"
	ModuleInventoryInward  = "Inventory Inward"
	ModuleInventoryOutward = "Inventory Outward"
	ModuleStockTransfer    = "Stock Transfer"
)

// RolePrivilege grants a role actions on one module
type RolePrivilege struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	RoleID      uint64 `gorm:"not null;uniqueIndex:idx_role_privilege_module,priority:1"`
	Module      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_role_privilege_module,priority:2"`
	ModuleGroup string `gorm:"type:varchar(100)"`
	SortOrder   int    `gorm:"not null;default:0"`
	CanView     bool   `gorm:"not null;default:false"`
	CanAdd      bool   `gorm:"not null;default:false"`
	CanEdit     bool   `gorm:"not null;default:false"`
	CanDelete   bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RolePrivilege) TableName() string {
	return "role_privileges"
}

// Allows reports whether the privilege grants the action
func (p RolePrivilege) Allows(action Action) bool {
	switch action {
	case ActionView:
		return p.CanView
	case ActionAdd:
		return p.CanAdd
	case ActionEdit:
		return p.CanEdit
	case ActionDelete:
		return p.CanDelete
	}
	return false
}

// ModulePrivileges is a role's privileges indexed by normalized module name
type ModulePrivileges map[string]RolePrivilege

// NewModulePrivileges indexes privileges by module
func NewModulePrivileges(privs []RolePrivilege) ModulePrivileges {
	m := make(ModulePrivileges, len(privs))
	for _, p := range privs {
		m[normalizeModule(p.Module)] = p
	}
	return m
}

// Lookup returns the privilege configured for a module
func (m ModulePrivileges) Lookup(module string) (RolePrivilege, bool) {
	p, ok := m[normalizeModule(module)]
	return p, ok
}

// Check returns nil when the module is configured and grants the action.
func (m ModulePrivileges) Check(module string, action Action) error {
	p, ok := m.Lookup(module)
	if !ok {
		return shared.ErrForbidden.WithDetail("module", module)
	}
	if !p.Allows(action) {
		return shared.ErrForbidden.
			WithDetail("module", module).
			WithDetail("action", string(action))
	}
	return nil
}

// ValidatePrivileges checks a replacement privilege set for a role
func ValidatePrivileges(roleID uint64, privs []RolePrivilege) error {
	seen := make(map[string]struct{}, len(privs))
	for i := range privs {
		name := normalizeModule(privs[i].Module)
		if name == "" {
			return shared.NewDomainError("INVALID_INPUT", "Privilege module cannot be empty")
		}
		if _, dup := seen[name]; dup {
			return shared.NewDomainErrorWithDetails("INVALID_INPUT", "Module listed more than once",
				map[string]any{"module": privs[i].Module})
		}
		seen[name] = struct{}{}
		privs[i].RoleID = roleID
		privs[i].Module = strings.TrimSpace(privs[i].Module)
	}
	return nil
}

func normalizeModule(module string) string {
	return strings.ToLower(strings.TrimSpace(module))
}
