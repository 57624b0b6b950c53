package service

import (
	"context"
	"testing"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
)

func TestListUsersForTeamSelectionExcludesAdmins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "Root", model.RoleAdmin)
	env.createUser(t, "Mai", model.RoleProjectManager)
	env.createUser(t, "Dana", model.RoleDeveloper)

	svc := NewUserService(env.userRepo)
	users, total, err := svc.ListUsersForTeamSelection(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("ListUsersForTeamSelection failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			t.Errorf("admin %s leaked into team selection", u.Name)
		}
	}
}

func TestListUsersForTeamSelectionSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "Mai", model.RoleProjectManager)
	env.createUser(t, "Dana", model.RoleDeveloper)
	env.createUser(t, "Danielle", model.RoleDeveloper)

	svc := NewUserService(env.userRepo)
	users, total, err := svc.ListUsersForTeamSelection(ctx, "dan", 1, 10)
	if err != nil {
		t.Fatalf("ListUsersForTeamSelection failed: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("got %d users (total %d), want 2 for search 'dan'", len(users), total)
	}
	// Ordered by name
	if users[0].Name != "Dana" || users[1].Name != "Danielle" {
		t.Errorf("order = [%s, %s], want [Dana, Danielle]", users[0].Name, users[1].Name)
	}
}

func TestGetProfileCarriesPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	if err := env.db.Create(&model.Module{Name: model.ModuleTask}).Error; err != nil {
		t.Fatalf("failed to create module: %v", err)
	}
	var mod model.Module
	if err := env.db.First(&mod, "name = ?", model.ModuleTask).Error; err != nil {
		t.Fatalf("failed to load module: %v", err)
	}
	if err := env.db.Create(&model.Permission{
		RoleID:    env.roles[model.RoleDeveloper].ID,
		ModuleID:  mod.ID,
		CanView:   true,
		CanUpdate: true,
	}).Error; err != nil {
		t.Fatalf("failed to create permission: %v", err)
	}

	svc := NewUserService(env.userRepo)
	profile, err := svc.GetProfile(ctx, dev.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Email != dev.Email || profile.Role != model.RoleDeveloper {
		t.Errorf("profile = %+v", profile.UserResponse)
	}
	if len(profile.Permissions) != 1 {
		t.Fatalf("permissions = %+v, want one TASK claim", profile.Permissions)
	}
	claim := profile.Permissions[0]
	if claim.Module != model.ModuleTask || !claim.CanView || !claim.CanUpdate || claim.CanCreate {
		t.Errorf("claim = %+v, want TASK view+update", claim)
	}

	if _, err := svc.GetProfile(ctx, 9999); !apperr.Is(err, apperr.UserNotFound) {
		t.Errorf("unknown user = %v, want USER_NOT_FOUND", err)
	}
}
