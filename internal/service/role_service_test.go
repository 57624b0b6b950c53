package service

import (
	"context"
	"testing"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
)

func TestSeedDefaultRolesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.roleSvc().SeedDefaultRolesAndPermissions(ctx); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := env.roleSvc().SeedDefaultRolesAndPermissions(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var permCount int64
	if err := env.db.Model(&model.Permission{}).Count(&permCount).Error; err != nil {
		t.Fatalf("counting permissions: %v", err)
	}
	want := int64(0)
	for _, grants := range defaultRoleMatrix {
		want += int64(len(grants))
	}
	if permCount != want {
		t.Errorf("permission rows = %d after double seed, want %d", permCount, want)
	}
}

func TestGetRoleReturnsPermissionGrid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	svc := env.roleSvc()
	if err := svc.SeedDefaultRolesAndPermissions(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	role, err := svc.GetRole(ctx, model.RoleDeveloper)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if role.Name != model.RoleDeveloper {
		t.Errorf("name = %s", role.Name)
	}

	byModule := make(map[string]ModulePermissionResponse, len(role.Permissions))
	for _, p := range role.Permissions {
		byModule[p.Module] = p
	}
	task, ok := byModule[model.ModuleTask]
	if !ok {
		t.Fatal("developer has no TASK permission row")
	}
	if !task.CanView || !task.CanUpdate || task.CanCreate || task.CanDelete {
		t.Errorf("developer TASK grant = %+v, want view+update only", task)
	}
	if _, ok := byModule[model.ModuleUser]; ok {
		t.Error("developer should have no USER module grant")
	}

	if _, err := svc.GetRole(ctx, "INTERN"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown role = %v, want NOT_FOUND", err)
	}
}

func (env *testEnv) roleSvc() RoleService {
	return NewRoleService(env.roleRepo, env.txManager)
}
