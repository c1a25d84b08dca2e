package identity

import (
	"strings"
	"time"
)

// adminRoleNames are role names that bypass module privilege checks
var adminRoleNames = map[string]struct{}{
	"admin":       {},
	"super admin": {},
	"superadmin":  {},
}

// Role is a named set of module privileges assigned to users
type Role struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	RoleName  string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// IsAdmin reports whether the role bypasses privilege checks
func (r *Role) IsAdmin() bool {
	return IsAdminRoleName(r.RoleName)
}

// IsAdminRoleName reports whether a role name denotes an administrator
func IsAdminRoleName(name string) bool {
	_, ok := adminRoleNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
