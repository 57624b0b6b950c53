package service

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
)

func TestCreateTaskWithoutAssigneeStartsUnassigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	project := env.createProject(t, manager)

	task, err := env.tasks.CreateTask(ctx, manager.ID, project.ID, CreateTaskRequest{Title: "Write docs"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if task.Status != model.TaskStatusUnassigned {
		t.Errorf("task.Status = %s, want UNASSIGNED", task.Status)
	}
	if task.Assignee != nil {
		t.Errorf("task.Assignee = %+v, want nil", task.Assignee)
	}
	if task.Priority != model.TaskPriorityMedium {
		t.Errorf("task.Priority = %s, want MEDIUM default", task.Priority)
	}
}

func TestCreateTaskWithAssigneeStartsTodo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	task, err := env.tasks.CreateTask(ctx, manager.ID, project.ID, CreateTaskRequest{
		Title:      "Implement login",
		AssigneeID: &dev.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if task.Status != model.TaskStatusTodo {
		t.Errorf("task.Status = %s, want TODO", task.Status)
	}
	if task.Assignee == nil || task.Assignee.ID != dev.ID {
		t.Errorf("task.Assignee = %+v, want user %d", task.Assignee, dev.ID)
	}
}

func TestCreateTaskRejectsNonMemberAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	outsider := env.createUser(t, "Oz", model.RoleDeveloper)
	project := env.createProject(t, manager)

	_, err := env.tasks.CreateTask(ctx, manager.ID, project.ID, CreateTaskRequest{
		Title:      "Implement login",
		AssigneeID: &outsider.ID,
	})
	if !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("CreateTask with outsider assignee = %v, want UNAUTHORIZED", err)
	}
}

func TestCreateTaskRejectsDuplicateTitleInProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	project := env.createProject(t, manager)
	env.createTask(t, project, "Write docs", model.TaskStatusUnassigned, nil)

	_, err := env.tasks.CreateTask(ctx, manager.ID, project.ID, CreateTaskRequest{Title: "Write docs"})
	if !apperr.Is(err, apperr.DuplicateEntity) {
		t.Errorf("CreateTask with duplicate title = %v, want DUPLICATE_ENTITY", err)
	}

	// Same title in a different project is fine
	other := env.createProject(t, manager)
	if _, err := env.tasks.CreateTask(ctx, manager.ID, other.ID, CreateTaskRequest{Title: "Write docs"}); err != nil {
		t.Errorf("CreateTask with same title in other project failed: %v", err)
	}
}

func TestCreateTaskRejectsStartAfterDue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	project := env.createProject(t, manager)

	start := time.Now().AddDate(0, 0, 5)
	due := time.Now().AddDate(0, 0, 1)
	_, err := env.tasks.CreateTask(ctx, manager.ID, project.ID, CreateTaskRequest{
		Title:     "Backwards dates",
		StartDate: &start,
		DueDate:   &due,
	})
	if !apperr.Is(err, apperr.InvalidRequest) {
		t.Errorf("CreateTask with start after due = %v, want INVALID_REQUEST", err)
	}
}

func TestCreateTaskRejectsNonOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	other := env.createUser(t, "Omar", model.RoleProjectManager)
	project := env.createProject(t, manager)

	_, err := env.tasks.CreateTask(ctx, other.ID, project.ID, CreateTaskRequest{Title: "Not mine"})
	if !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("CreateTask by non-owner = %v, want UNAUTHORIZED", err)
	}
}

func TestAssignTaskMovesToTodoAndRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusUnassigned, nil)

	res, err := env.tasks.AssignTask(ctx, manager.ID, task.ID, AssignTaskRequest{UserID: dev.ID})
	if err != nil {
		t.Fatalf("AssignTask failed: %v", err)
	}

	if res.Status != model.TaskStatusTodo {
		t.Errorf("task.Status = %s, want TODO", res.Status)
	}
	if res.Assignee == nil || res.Assignee.ID != dev.ID {
		t.Errorf("task.Assignee = %+v, want user %d", res.Assignee, dev.ID)
	}

	rows, err := env.historyRepo.ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("history rows = %d, want 1", len(rows))
	}
	if rows[0].OldStatus != model.TaskStatusUnassigned || rows[0].NewStatus != model.TaskStatusTodo {
		t.Errorf("history transition = %s -> %s, want UNASSIGNED -> TODO", rows[0].OldStatus, rows[0].NewStatus)
	}
	if rows[0].ChangedByID != manager.ID {
		t.Errorf("history actor = %d, want manager %d", rows[0].ChangedByID, manager.ID)
	}
}

func TestAssignTaskRejectsAlreadyAssigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	dev2 := env.createUser(t, "Drew", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	env.addMember(t, dev2, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	_, err := env.tasks.AssignTask(ctx, manager.ID, task.ID, AssignTaskRequest{UserID: dev2.ID})
	if !apperr.Is(err, apperr.InvalidKey) {
		t.Errorf("AssignTask on assigned task = %v, want INVALID_KEY", err)
	}
}

func TestUpdateTaskStatusHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	// The assigned developer advances the task
	res, err := env.tasks.UpdateTaskStatus(ctx, dev.ID, task.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusInProgress})
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if res.Status != model.TaskStatusInProgress {
		t.Errorf("task.Status = %s, want IN_PROGRESS", res.Status)
	}

	res, err = env.tasks.UpdateTaskStatus(ctx, dev.ID, task.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusCompleted})
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if res.Status != model.TaskStatusCompleted {
		t.Errorf("task.Status = %s, want COMPLETED", res.Status)
	}

	rows, err := env.historyRepo.ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("history rows = %d, want 2", len(rows))
	}
}

func TestUpdateTaskStatusRejectsUnassignedTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	project := env.createProject(t, manager)
	task := env.createTask(t, project, "Write docs", model.TaskStatusUnassigned, nil)

	_, err := env.tasks.UpdateTaskStatus(ctx, manager.ID, task.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusInProgress})
	if !apperr.Is(err, apperr.InvalidKey) {
		t.Errorf("UpdateTaskStatus on unassigned task = %v, want INVALID_KEY", err)
	}
}

func TestUpdateTaskStatusRejectsProjectMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	otherProject := env.createProject(t, manager)
	env.addMember(t, dev, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	_, err := env.tasks.UpdateTaskStatus(ctx, manager.ID, task.ID, otherProject.ID, UpdateTaskStatusRequest{Status: model.TaskStatusInProgress})
	if err == nil {
		t.Fatal("UpdateTaskStatus with wrong project succeeded, want error")
	}
}

func TestUnassignedOnlyReachableFromArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	// From an active state the transition is rejected
	active := env.createTask(t, project, "Active task", model.TaskStatusInProgress, dev)
	_, err := env.tasks.UpdateTaskStatus(ctx, manager.ID, active.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusUnassigned})
	if !apperr.Is(err, apperr.InvalidKey) {
		t.Errorf("IN_PROGRESS -> UNASSIGNED = %v, want INVALID_KEY", err)
	}

	// From ARCHIVED it succeeds and clears the assignee
	archived := env.createTask(t, project, "Archived task", model.TaskStatusArchived, dev)
	res, err := env.tasks.UpdateTaskStatus(ctx, manager.ID, archived.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusUnassigned})
	if err != nil {
		t.Fatalf("ARCHIVED -> UNASSIGNED failed: %v", err)
	}
	if res.Status != model.TaskStatusUnassigned {
		t.Errorf("task.Status = %s, want UNASSIGNED", res.Status)
	}
	if res.Assignee != nil {
		t.Errorf("task.Assignee = %+v, want nil after unassigning", res.Assignee)
	}
}

func TestArchiveReachableFromAnyActiveState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	for i, from := range []model.TaskStatus{model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusCompleted} {
		task := env.createTask(t, project, "Task "+string(rune('A'+i)), from, dev)
		res, err := env.tasks.UpdateTaskStatus(ctx, manager.ID, task.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusArchived})
		if err != nil {
			t.Fatalf("%s -> ARCHIVED failed: %v", from, err)
		}
		if res.Status != model.TaskStatusArchived {
			t.Errorf("task.Status = %s, want ARCHIVED", res.Status)
		}
	}
}

// A manager may update tasks only in projects they created; a developer
// only tasks assigned to them.
func TestUpdateTaskStatusAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	otherManager := env.createUser(t, "Omar", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	otherDev := env.createUser(t, "Drew", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	env.addMember(t, otherDev, project)
	task := env.createTask(t, project, "Write docs", model.TaskStatusTodo, dev)

	cases := []struct {
		name    string
		actorID uint
		allowed bool
	}{
		{"owning manager", manager.ID, true},
		{"other manager", otherManager.ID, false},
		{"assigned developer", dev.ID, true},
		{"other developer", otherDev.ID, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tasks.UpdateTaskStatus(ctx, tc.actorID, task.ID, project.ID, UpdateTaskStatusRequest{Status: model.TaskStatusInProgress})
			if tc.allowed && err != nil {
				t.Errorf("expected success, got %v", err)
			}
			if !tc.allowed && !apperr.Is(err, apperr.Unauthorized) {
				t.Errorf("expected UNAUTHORIZED, got %v", err)
			}
		})
	}
}

func TestGetMyTasksRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	outsider := env.createUser(t, "Oz", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	env.createTask(t, project, "Mine", model.TaskStatusTodo, dev)
	env.createTask(t, project, "Unassigned", model.TaskStatusUnassigned, nil)

	tasks, err := env.tasks.GetMyTasksInProject(ctx, dev.ID, project.ID)
	if err != nil {
		t.Fatalf("GetMyTasksInProject failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Mine" {
		t.Errorf("got %d tasks, want exactly the assigned one", len(tasks))
	}

	if _, err := env.tasks.GetMyTasksInProject(ctx, outsider.ID, project.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("outsider GetMyTasksInProject = %v, want UNAUTHORIZED", err)
	}
}

func TestGetMyUpcomingDueTasksWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)

	soon := time.Now().AddDate(0, 0, 1)
	far := time.Now().AddDate(0, 0, 10)
	past := time.Now().AddDate(0, 0, -1)

	inWindow := env.createTask(t, project, "Due soon", model.TaskStatusTodo, dev)
	env.db.Model(inWindow).Update("due_date", soon)
	outOfWindow := env.createTask(t, project, "Due later", model.TaskStatusTodo, dev)
	env.db.Model(outOfWindow).Update("due_date", far)
	overdue := env.createTask(t, project, "Overdue", model.TaskStatusTodo, dev)
	env.db.Model(overdue).Update("due_date", past)
	done := env.createTask(t, project, "Done", model.TaskStatusCompleted, dev)
	env.db.Model(done).Update("due_date", soon)

	tasks, err := env.tasks.GetMyUpcomingDueTasks(ctx, dev.ID)
	if err != nil {
		t.Fatalf("GetMyUpcomingDueTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Due soon" {
		titles := make([]string, 0, len(tasks))
		for _, task := range tasks {
			titles = append(titles, task.Title)
		}
		t.Errorf("upcoming tasks = %v, want [Due soon]", titles)
	}
}

func TestGetUnassignedTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.createUser(t, "Mai", model.RoleProjectManager)
	dev := env.createUser(t, "Dana", model.RoleDeveloper)
	project := env.createProject(t, manager)
	env.addMember(t, dev, project)
	env.createTask(t, project, "Open A", model.TaskStatusUnassigned, nil)
	env.createTask(t, project, "Open B", model.TaskStatusUnassigned, nil)
	env.createTask(t, project, "Taken", model.TaskStatusTodo, dev)

	tasks, total, err := env.tasks.GetUnassignedTasks(ctx, project.ID, "", "", 1, 10)
	if err != nil {
		t.Fatalf("GetUnassignedTasks failed: %v", err)
	}
	if total != 2 || len(tasks) != 2 {
		t.Errorf("unassigned = %d (total %d), want 2", len(tasks), total)
	}
}
