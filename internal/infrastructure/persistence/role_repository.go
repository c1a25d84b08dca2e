package persistence

import (
	"context"

	"github.com/stockledger/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by id
func (r *GormRoleRepository) FindByID(ctx context.Context, id uint64) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &role, nil
}

// FindPrivileges returns the role's privileges in display order
func (r *GormRoleRepository) FindPrivileges(ctx context.Context, roleID uint64) ([]identity.RolePrivilege, error) {
	var privs []identity.RolePrivilege
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("sort_order ASC").Order("module ASC").
		Find(&privs).Error
	if err != nil {
		return nil, err
	}
	return privs, nil
}

// ReplacePrivileges deletes the role's privileges and inserts privs in one transaction
func (r *GormRoleRepository) ReplacePrivileges(ctx context.Context, roleID uint64, privs []identity.RolePrivilege) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&identity.RolePrivilege{}).Error; err != nil {
			return err
		}
		if len(privs) == 0 {
			return nil
		}
		for i := range privs {
			privs[i].ID = 0
			privs[i].RoleID = roleID
		}
		return TranslateError(tx.Create(&privs).Error)
	})
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)
