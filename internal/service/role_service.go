package service

import (
	"context"
	"fmt"
	"log"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"

	"gorm.io/gorm"
)

// --- DTOs ---

type ModulePermissionResponse struct {
	Module    string `json:"module"`
	CanView   bool   `json:"can_view"`
	CanCreate bool   `json:"can_create"`
	CanUpdate bool   `json:"can_update"`
	CanDelete bool   `json:"can_delete"`
}

type RoleResponse struct {
	ID          uint                       `json:"id"`
	Name        string                     `json:"name"`
	Permissions []ModulePermissionResponse `json:"permissions"`
}

// modulePermission is one row of the seed matrix
type modulePermission struct {
	module    string
	canView   bool
	canCreate bool
	canUpdate bool
	canDelete bool
}

// defaultRoleMatrix is the permission grid seeded on startup. Admins get
// full access to the user module only; managers own projects, tasks and
// memberships; developers read and update tasks they work on.
var defaultRoleMatrix = map[string][]modulePermission{
	model.RoleAdmin: {
		{module: model.ModuleUser, canView: true, canCreate: true, canUpdate: true, canDelete: true},
		{module: model.ModuleTaskHistory, canView: true},
	},
	model.RoleProjectManager: {
		{module: model.ModuleProject, canView: true, canCreate: true, canUpdate: true, canDelete: true},
		{module: model.ModuleTask, canView: true, canCreate: true, canUpdate: true, canDelete: true},
		{module: model.ModuleTeamMember, canView: true, canCreate: true, canUpdate: true, canDelete: true},
		{module: model.ModuleTaskHistory, canView: true},
		{module: model.ModuleUser, canView: true},
	},
	model.RoleDeveloper: {
		{module: model.ModuleProject, canView: true},
		{module: model.ModuleTask, canView: true, canUpdate: true},
		{module: model.ModuleTaskHistory, canView: true},
	},
}

// RoleService exposes role lookups and seeds the default role matrix
type RoleService interface {
	GetRole(ctx context.Context, name string) (*RoleResponse, error)
	SeedDefaultRolesAndPermissions(ctx context.Context) error
}

type roleService struct {
	roleRepo  repository.RoleRepository
	txManager repository.TransactionManager
}

func NewRoleService(roleRepo repository.RoleRepository, txManager repository.TransactionManager) RoleService {
	return &roleService{roleRepo: roleRepo, txManager: txManager}
}

func (s *roleService) GetRole(ctx context.Context, name string) (*RoleResponse, error) {
	role, err := s.roleRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "Role not found: %s", name)
	}

	rows, err := s.roleRepo.ListPermissionsByRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions for role '%s': %w", name, err)
	}

	perms := make([]ModulePermissionResponse, 0, len(rows))
	for _, p := range rows {
		perms = append(perms, ModulePermissionResponse{
			Module:    p.Module.Name,
			CanView:   p.CanView,
			CanCreate: p.CanCreate,
			CanUpdate: p.CanUpdate,
			CanDelete: p.CanDelete,
		})
	}

	return &RoleResponse{ID: role.ID, Name: role.Name, Permissions: perms}, nil
}

// SeedDefaultRolesAndPermissions creates the default roles, modules and
// permission rows if not already present. Safe to run on every startup.
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for roleName, grants := range defaultRoleMatrix {
			role, err := s.roleRepo.GetByName(txCtx, roleName)
			if err != nil {
				if err != gorm.ErrRecordNotFound {
					return fmt.Errorf("failed to look up role '%s': %w", roleName, err)
				}
				role = &model.Role{Name: roleName}
				if err := s.roleRepo.Create(txCtx, role); err != nil {
					return fmt.Errorf("failed to seed role '%s': %w", roleName, err)
				}
				log.Printf("Seeded role %s", roleName)
			}

			for _, grant := range grants {
				mod, err := s.roleRepo.GetOrCreateModule(txCtx, grant.module)
				if err != nil {
					return fmt.Errorf("failed to seed module '%s': %w", grant.module, err)
				}
				perm := &model.Permission{
					RoleID:    role.ID,
					ModuleID:  mod.ID,
					CanView:   grant.canView,
					CanCreate: grant.canCreate,
					CanUpdate: grant.canUpdate,
					CanDelete: grant.canDelete,
				}
				if err := s.roleRepo.UpsertPermission(txCtx, perm); err != nil {
					return fmt.Errorf("failed to seed permission for role '%s' module '%s': %w",
						roleName, grant.module, err)
				}
			}
		}
		return nil
	})
}
