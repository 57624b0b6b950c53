package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"projecthub/internal/model"
	"projecthub/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires repositories and services against a throwaway sqlite
// database so service behavior is exercised end to end.
type testEnv struct {
	db *gorm.DB

	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	projectRepo    repository.ProjectRepository
	teamMemberRepo repository.TeamMemberRepository
	taskRepo       repository.TaskRepository
	historyRepo    repository.TaskHistoryRepository

	authz      AuthzService
	history    TaskHistoryService
	tasks      TaskService
	teams      TeamMemberService
	projects   ProjectService
	roles      map[string]*model.Role
	userSerial int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Role{}, &model.Module{}, &model.Permission{},
		&model.User{}, &model.Project{}, &model.Specialization{},
		&model.TeamMember{}, &model.Task{}, &model.TaskHistory{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	env := &testEnv{
		db:             db,
		txManager:      repository.NewTransactionManager(db),
		userRepo:       repository.NewUserRepository(db),
		roleRepo:       repository.NewRoleRepository(db),
		projectRepo:    repository.NewProjectRepository(db),
		teamMemberRepo: repository.NewTeamMemberRepository(db),
		taskRepo:       repository.NewTaskRepository(db),
		historyRepo:    repository.NewTaskHistoryRepository(db),
		roles:          make(map[string]*model.Role),
	}

	env.authz = NewAuthzService(env.userRepo, env.projectRepo, env.taskRepo, env.teamMemberRepo)
	env.history = NewTaskHistoryService(env.historyRepo, env.taskRepo, env.userRepo, env.authz)
	env.tasks = NewTaskService(env.taskRepo, env.projectRepo, env.userRepo, env.teamMemberRepo, env.history, env.authz, env.txManager, nil)
	env.teams = NewTeamMemberService(env.teamMemberRepo, env.projectRepo, env.userRepo, env.taskRepo, env.history, env.txManager)
	env.projects = NewProjectService(env.projectRepo, env.txManager)

	for _, name := range []string{model.RoleAdmin, model.RoleProjectManager, model.RoleDeveloper} {
		role := &model.Role{Name: name}
		if err := db.Create(role).Error; err != nil {
			t.Fatalf("failed to seed role %s: %v", name, err)
		}
		env.roles[name] = role
	}

	return env
}

func (env *testEnv) createUser(t *testing.T, name, roleName string) *model.User {
	t.Helper()
	env.userSerial++
	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s%d@example.com", roleName, env.userSerial),
		Password: "hashed",
		RoleID:   env.roles[roleName].ID,
		Verified: true,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	user.Role = *env.roles[roleName]
	return user
}

func (env *testEnv) createProject(t *testing.T, owner *model.User) *model.Project {
	t.Helper()
	project := &model.Project{
		Name:        "Project of " + owner.Name,
		Status:      model.ProjectStatusActive,
		CreatedByID: owner.ID,
	}
	if err := env.db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

func (env *testEnv) addMember(t *testing.T, user *model.User, project *model.Project) *model.TeamMember {
	t.Helper()
	member := &model.TeamMember{UserID: user.ID, ProjectID: project.ID}
	if err := env.db.Create(member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	return member
}

func (env *testEnv) createTask(t *testing.T, project *model.Project, title string, status model.TaskStatus, assignee *model.User) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:       title,
		Priority:    model.TaskPriorityMedium,
		Status:      status,
		ProjectID:   project.ID,
		CreatedByID: project.CreatedByID,
	}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	if err := env.db.Create(task).Error; err != nil {
		t.Fatalf("failed to create task %s: %v", title, err)
	}
	return task
}

func (env *testEnv) reloadTask(t *testing.T, id uint) *model.Task {
	t.Helper()
	task, err := env.taskRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload task %d: %v", id, err)
	}
	return task
}
