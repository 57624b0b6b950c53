package repository

import (
	"context"

	"projecthub/internal/model"

	"gorm.io/gorm"
)

// RoleRepository defines data access for roles, modules and permissions
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*model.Role, error)
	Create(ctx context.Context, role *model.Role) error
	GetOrCreateModule(ctx context.Context, name string) (*model.Module, error)
	UpsertPermission(ctx context.Context, perm *model.Permission) error
	ListPermissionsByRole(ctx context.Context, roleID uint) ([]model.Permission, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).
		Preload("Permissions.Module").
		First(&role, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) GetOrCreateModule(ctx context.Context, name string) (*model.Module, error) {
	var mod model.Module
	err := GetDB(ctx, r.db).Where("name = ?", name).First(&mod).Error
	if err == nil {
		return &mod, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	mod = model.Module{Name: name}
	if err := GetDB(ctx, r.db).Create(&mod).Error; err != nil {
		return nil, err
	}
	return &mod, nil
}

// UpsertPermission creates the (role, module) permission row if absent and
// leaves an existing row untouched, preserving the one-row-per-pair
// invariant.
func (r *roleRepository) UpsertPermission(ctx context.Context, perm *model.Permission) error {
	var existing model.Permission
	err := GetDB(ctx, r.db).
		Where("role_id = ? AND module_id = ?", perm.RoleID, perm.ModuleID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *roleRepository) ListPermissionsByRole(ctx context.Context, roleID uint) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).
		Preload("Module").
		Where("role_id = ?", roleID).
		Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}
