package service

import (
	"context"
	"testing"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
)

// Viewing your own tasks through the member-tasks operation is always
// rejected, regardless of role or membership.
func TestCanViewMemberTasksRejectsSelfView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	if _, err := env.authz.CanViewMemberTasks(ctx, dev.ID, project.ID, dev.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("developer self-view = %v, want UNAUTHORIZED", err)
	}

	// Even the project's own manager cannot use it on themselves
	env.addMember(t, manager, project)
	if _, err := env.authz.CanViewMemberTasks(ctx, manager.ID, project.ID, manager.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("manager self-view = %v, want UNAUTHORIZED", err)
	}
}

func TestCanViewMemberTasksManagerCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	ok, err := env.authz.CanViewMemberTasks(ctx, manager.ID, project.ID, dev.ID)
	if err != nil {
		t.Fatalf("CanViewMemberTasks failed: %v", err)
	}
	if !ok {
		t.Error("project creator should be allowed to view a member's tasks")
	}
}

func TestCanViewMemberTasksFellowMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev1 := env.createUser(t, "Dana", model.RoleDeveloper)
	dev2 := env.createUser(t, "Drew", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev1, project)
	env.addMember(t, dev2, project)

	ok, err := env.authz.CanViewMemberTasks(ctx, dev1.ID, project.ID, dev2.ID)
	if err != nil {
		t.Fatalf("CanViewMemberTasks failed: %v", err)
	}
	if !ok {
		t.Error("a member should be allowed to view a fellow member's tasks")
	}
}

func TestCanViewMemberTasksRejectsOutsiders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	otherManager := env.createUser(t, "Omar", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	outsider := env.createUser(t, "Oz", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	// A manager who did not create the project has no access
	if _, err := env.authz.CanViewMemberTasks(ctx, otherManager.ID, project.ID, dev.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("foreign manager = %v, want UNAUTHORIZED", err)
	}

	// A developer outside the project has no access
	if _, err := env.authz.CanViewMemberTasks(ctx, outsider.ID, project.ID, dev.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("outsider developer = %v, want UNAUTHORIZED", err)
	}
}

func TestCanViewMemberTasksRejectsNonMemberTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	outsider := env.createUser(t, "Oz", model.RoleDeveloper)
	project := env.createProject(t, manager)

	if _, err := env.authz.CanViewMemberTasks(ctx, manager.ID, project.ID, outsider.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("non-member target = %v, want UNAUTHORIZED", err)
	}
}

func TestCanViewMemberTasksUnknownProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)

	if _, err := env.authz.CanViewMemberTasks(ctx, manager.ID, 9999, dev.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown project = %v, want NOT_FOUND", err)
	}
}

func TestHasRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)

	if !env.authz.HasRole(ctx, manager.ID, model.RoleProjectManager) {
		t.Error("HasRole(manager, PROJECT_MANAGER) = false, want true")
	}
	if env.authz.HasRole(ctx, manager.ID, model.RoleAdmin) {
		t.Error("HasRole(manager, ADMIN) = true, want false")
	}
	if env.authz.HasRole(ctx, 9999, model.RoleAdmin) {
		t.Error("HasRole(unknown user) = true, want false")
	}
}
