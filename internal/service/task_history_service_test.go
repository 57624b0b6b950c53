package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
)

func TestHistoryMessageRendering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	loaded := env.reloadTask(t, task.ID)
	if _, err := env.history.RecordStatusChange(ctx, loaded, model.TaskStatusTodo, model.TaskStatusInProgress, dev.ID); err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}
	if _, err := env.history.RecordStatusChange(ctx, loaded, model.TaskStatusInProgress, model.TaskStatusCompleted, dev.ID); err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}

	entries, err := env.history.GetTaskHistory(ctx, manager.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTaskHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// The completion entry uses the dedicated wording, the other the
	// generic transition wording.
	completedPrefix := "Dana has completed Write docs at "
	updatePrefix := fmt.Sprintf("Dana has updated Write docs's status from %s to %s at ", model.TaskStatusTodo, model.TaskStatusInProgress)

	var sawCompleted, sawUpdate bool
	for _, entry := range entries {
		switch {
		case strings.HasPrefix(entry.Message, completedPrefix):
			sawCompleted = true
		case strings.HasPrefix(entry.Message, updatePrefix):
			sawUpdate = true
		default:
			t.Errorf("unexpected message %q", entry.Message)
		}
	}
	if !sawCompleted || !sawUpdate {
		t.Errorf("missing expected messages, sawCompleted=%v sawUpdate=%v", sawCompleted, sawUpdate)
	}
}

func TestGetTaskHistoryDeveloperGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	other := env.createUser(t, "Drew", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	env.addMember(t, other, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	loaded := env.reloadTask(t, task.ID)
	if _, err := env.history.RecordStatusChange(ctx, loaded, model.TaskStatusTodo, model.TaskStatusInProgress, dev.ID); err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}

	// The assignee can read it
	if _, err := env.history.GetTaskHistory(ctx, dev.ID, task.ID); err != nil {
		t.Errorf("assignee GetTaskHistory failed: %v", err)
	}

	// Another developer cannot
	if _, err := env.history.GetTaskHistory(ctx, other.ID, task.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("other developer GetTaskHistory = %v, want UNAUTHORIZED", err)
	}

	// The manager can
	if _, err := env.history.GetTaskHistory(ctx, manager.ID, task.ID); err != nil {
		t.Errorf("manager GetTaskHistory failed: %v", err)
	}
}

func TestGetTaskHistoryUnknownTask(t *testing.T) {
	env := newTestEnv(t)
	manager := env.createUser(t, "Mai", model.RoleProjectManager)

	if _, err := env.history.GetTaskHistory(context.Background(), manager.ID, 9999); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown task = %v, want NOT_FOUND", err)
	}
}

func TestRecentHistoryScopes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	otherManager := env.createUser(t, "Omar", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	myProject := env.createProject(t, manager)
	otherProject := env.createProject(t, otherManager)
	env.addMember(t, dev, myProject)
	env.addMember(t, dev, otherProject)

	mine := env.createTask(t, myProject, "Mine", model.TaskStatusTodo, dev)
	foreign := env.createTask(t, otherProject, "Foreign", model.TaskStatusTodo, dev)

	loadedMine := env.reloadTask(t, mine.ID)
	loadedForeign := env.reloadTask(t, foreign.ID)
	if _, err := env.history.RecordStatusChange(ctx, loadedMine, model.TaskStatusTodo, model.TaskStatusInProgress, dev.ID); err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}
	if _, err := env.history.RecordStatusChange(ctx, loadedForeign, model.TaskStatusTodo, model.TaskStatusInProgress, otherManager.ID); err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}

	all, err := env.history.GetRecentHistory(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentHistory failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("global recent = %d entries, want 2", len(all))
	}

	scoped, err := env.history.GetRecentHistoryForMyProjects(ctx, manager.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentHistoryForMyProjects failed: %v", err)
	}
	if len(scoped) != 1 {
		t.Errorf("my-projects recent = %d entries, want 1", len(scoped))
	}

	byActor, err := env.history.GetMyRecentHistory(ctx, otherManager.ID, 10)
	if err != nil {
		t.Fatalf("GetMyRecentHistory failed: %v", err)
	}
	if len(byActor) != 1 {
		t.Errorf("actor recent = %d entries, want 1", len(byActor))
	}
}

func TestRecordStatusChangeRequiresKnownActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	loaded := env.reloadTask(t, task.ID)
	if _, err := env.history.RecordStatusChange(ctx, loaded, model.TaskStatusTodo, model.TaskStatusInProgress, 9999); !apperr.Is(err, apperr.UserNotFound) {
		t.Errorf("RecordStatusChange with unknown actor = %v, want USER_NOT_FOUND", err)
	}
}
