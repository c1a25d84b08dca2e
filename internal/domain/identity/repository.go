package identity

import "context"

// RoleRepository provides access to roles and their privileges
type RoleRepository interface {
	FindByID(ctx context.Context, id uint64) (*Role, error)
	FindPrivileges(ctx context.Context, roleID uint64) ([]RolePrivilege, error)
	// ReplacePrivileges atomically swaps the role's privilege set
	ReplacePrivileges(ctx context.Context, roleID uint64, privs []RolePrivilege) error
}
