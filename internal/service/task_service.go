package service

import (
	"context"
	"log"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// --- DTOs ---

type CreateTaskRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Priority    model.TaskPriority `json:"priority"`
	StartDate   *time.Time         `json:"start_date"`
	DueDate     *time.Time         `json:"due_date"`
	AssigneeID  *uint              `json:"assignee_id"`
}

type AssignTaskRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type UpdateTaskStatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required"`
}

type TaskFilterRequest struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	Priority      string `form:"priority"`
	SortBy        string `form:"sort_by"`
	SortDirection string `form:"sort_direction"`
}

type AssigneeResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TaskResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    model.TaskPriority `json:"priority"`
	Status      model.TaskStatus   `json:"status"`
	StartDate   *time.Time         `json:"start_date"`
	DueDate     *time.Time         `json:"due_date"`
	ProjectID   uint               `json:"project_id"`
	Assignee    *AssigneeResponse  `json:"assignee"`
	CreatedByID uint               `json:"created_by_id"`
	CreatedAt   string             `json:"created_at"`
}

// TaskEvent is broadcast to connected websocket clients on every
// successful status transition.
type TaskEvent struct {
	Type      string           `json:"type"`
	ProjectID uint             `json:"project_id"`
	TaskID    uint             `json:"task_id"`
	OldStatus model.TaskStatus `json:"old_status"`
	NewStatus model.TaskStatus `json:"new_status"`
	ActorID   uint             `json:"actor_id"`
}

// TaskEventBroadcaster pushes task events to live subscribers. The
// websocket hub satisfies this; a nil broadcaster disables the feed.
type TaskEventBroadcaster interface {
	BroadcastTaskEvent(event TaskEvent)
}

// TaskService owns the task state machine:
//
//	UNASSIGNED -> TODO -> IN_PROGRESS -> COMPLETED
//
// ARCHIVED is reachable from any active state; UNASSIGNED is re-entered
// only from ARCHIVED (or via the team-member-removal override). Every
// state-changing sequence runs in one transaction and appends history.
type TaskService interface {
	CreateTask(ctx context.Context, actorID, projectID uint, req CreateTaskRequest) (*TaskResponse, error)
	AssignTask(ctx context.Context, actorID, taskID uint, req AssignTaskRequest) (*TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, actorID, taskID, projectID uint, req UpdateTaskStatusRequest) (*TaskResponse, error)
	GetUnassignedTasks(ctx context.Context, projectID uint, search string, priority model.TaskPriority, page, limit int) ([]TaskResponse, int64, error)
	GetProjectTasks(ctx context.Context, projectID uint, filter TaskFilterRequest, page, limit int) ([]TaskResponse, int64, error)
	GetMyTasksInProject(ctx context.Context, actorID, projectID uint) ([]TaskResponse, error)
	GetMemberTasksInProject(ctx context.Context, actorID, projectID, userID uint) ([]TaskResponse, error)
	GetMyUpcomingDueTasks(ctx context.Context, actorID uint) ([]TaskResponse, error)
}

type taskService struct {
	taskRepo       repository.TaskRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	teamMemberRepo repository.TeamMemberRepository
	history        TaskHistoryService
	authz          AuthzService
	txManager      repository.TransactionManager
	broadcaster    TaskEventBroadcaster
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	teamMemberRepo repository.TeamMemberRepository,
	history TaskHistoryService,
	authz AuthzService,
	txManager repository.TransactionManager,
	broadcaster TaskEventBroadcaster,
) TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		teamMemberRepo: teamMemberRepo,
		history:        history,
		authz:          authz,
		txManager:      txManager,
		broadcaster:    broadcaster,
	}
}

func taskToResponse(task *model.Task) *TaskResponse {
	resp := &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		ProjectID:   task.ProjectID,
		CreatedByID: task.CreatedByID,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
	}
	if task.Assignee != nil {
		resp.Assignee = &AssigneeResponse{
			ID:    task.Assignee.ID,
			Name:  task.Assignee.Name,
			Email: task.Assignee.Email,
		}
	}
	return resp
}

func tasksToResponses(tasks []model.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, *taskToResponse(&tasks[i]))
	}
	return responses
}

// CreateTask creates a task in the actor's own project. No assignee means
// UNASSIGNED; a valid in-project assignee means TODO. The two fields are
// never set independently.
func (s *taskService) CreateTask(ctx context.Context, actorID, projectID uint, req CreateTaskRequest) (*TaskResponse, error) {
	var task *model.Task

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, projectID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
		}

		if project.CreatedByID != actorID {
			log.Printf("User ID %d attempted to create task in project ID %d created by user ID %d",
				actorID, projectID, project.CreatedByID)
			return apperr.New(apperr.Unauthorized, "You are not authorized to create tasks in this project")
		}

		exists, err := s.taskRepo.ExistsByTitleAndProject(txCtx, req.Title, projectID)
		if err != nil {
			return apperr.New(apperr.Internal, "")
		}
		if exists {
			return apperr.New(apperr.DuplicateEntity, "Task with this title already exists in the project")
		}

		if req.StartDate != nil && req.DueDate != nil && req.StartDate.After(*req.DueDate) {
			return apperr.New(apperr.InvalidRequest, "Start date cannot be after due date")
		}

		status := model.TaskStatusUnassigned
		var assigneeID *uint

		if req.AssigneeID != nil {
			if _, err := s.userRepo.GetByID(txCtx, *req.AssigneeID); err != nil {
				return apperr.Newf(apperr.UserNotFound, "User not found with ID: %d", *req.AssigneeID)
			}
			isMember, err := s.teamMemberRepo.ExistsByUserAndProject(txCtx, *req.AssigneeID, projectID)
			if err != nil {
				return apperr.New(apperr.Internal, "")
			}
			if !isMember {
				return apperr.New(apperr.Unauthorized,
					"Cannot assign task to a user who is not a member of the project")
			}
			assigneeID = req.AssigneeID
			status = model.TaskStatusTodo
		}

		priority := req.Priority
		if priority == "" {
			priority = model.TaskPriorityMedium
		}
		if !priority.IsValid() {
			return apperr.Newf(apperr.InvalidRequest, "Unknown priority: %s", priority)
		}

		task = &model.Task{
			Title:       req.Title,
			Description: req.Description,
			Priority:    priority,
			Status:      status,
			StartDate:   req.StartDate,
			DueDate:     req.DueDate,
			ProjectID:   projectID,
			AssigneeID:  assigneeID,
			CreatedByID: actorID,
		}
		if err := s.taskRepo.Create(txCtx, task); err != nil {
			return apperr.New(apperr.Internal, "Failed to create task")
		}

		log.Printf("Created new task with ID %d in project ID %d by user ID %d", task.ID, projectID, actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		return taskToResponse(task), nil
	}
	return taskToResponse(created), nil
}

// AssignTask gives an unassigned task to a project member and forces the
// status to TODO. Reassignment is not allowed through this path: the task
// must be unassigned first.
func (s *taskService) AssignTask(ctx context.Context, actorID, taskID uint, req AssignTaskRequest) (*TaskResponse, error) {
	var (
		task      *model.Task
		oldStatus model.TaskStatus
	)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		task, err = s.taskRepo.GetByID(txCtx, taskID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "Task not found with ID: %d", taskID)
		}

		if task.AssigneeID != nil {
			log.Printf("Task ID %d already has an assignee (User ID: %d)", taskID, *task.AssigneeID)
			return apperr.New(apperr.InvalidKey, "This task already has an assignee")
		}

		if task.Project.CreatedByID != actorID {
			return apperr.New(apperr.Unauthorized, "You are not authorized to assign tasks in this project")
		}

		if _, err := s.userRepo.GetByID(txCtx, req.UserID); err != nil {
			return apperr.Newf(apperr.UserNotFound, "User not found with ID: %d", req.UserID)
		}

		isMember, err := s.teamMemberRepo.ExistsByUserAndProject(txCtx, req.UserID, task.ProjectID)
		if err != nil {
			return apperr.New(apperr.Internal, "")
		}
		if !isMember {
			return apperr.New(apperr.Unauthorized,
				"Cannot assign task to a user who is not a member of the project")
		}

		oldStatus = task.Status
		userID := req.UserID
		task.AssigneeID = &userID
		task.Status = model.TaskStatusTodo
		if err := s.taskRepo.Update(txCtx, task); err != nil {
			return apperr.New(apperr.Internal, "Failed to assign task")
		}

		if _, err := s.history.RecordStatusChange(txCtx, task, oldStatus, task.Status, actorID); err != nil {
			return err
		}

		log.Printf("Assigned task ID %d to user ID %d", taskID, req.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(TaskEvent{
		Type:      "task_assigned",
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		OldStatus: oldStatus,
		NewStatus: task.Status,
		ActorID:   actorID,
	})

	updated, err := s.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		return taskToResponse(task), nil
	}
	return taskToResponse(updated), nil
}

// UpdateTaskStatus validates and applies one state transition. The only
// legal path into UNASSIGNED here is from ARCHIVED, and entering
// UNASSIGNED always clears the assignee. Exactly one history row is
// written per successful change.
func (s *taskService) UpdateTaskStatus(ctx context.Context, actorID, taskID, projectID uint, req UpdateTaskStatusRequest) (*TaskResponse, error) {
	if !req.Status.IsValid() {
		return nil, apperr.Newf(apperr.InvalidRequest, "Unknown status: %s", req.Status)
	}

	if !s.authz.CanUpdateTaskStatus(ctx, actorID, taskID, projectID) {
		return nil, apperr.New(apperr.Unauthorized, "You are not authorized to update this task's status")
	}

	var (
		task      *model.Task
		oldStatus model.TaskStatus
	)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		task, err = s.taskRepo.GetByID(txCtx, taskID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "Task not found with ID: %d", taskID)
		}

		if task.ProjectID != projectID {
			return apperr.New(apperr.InvalidKey, "Task does not belong to the specified project")
		}

		if task.AssigneeID == nil {
			return apperr.New(apperr.InvalidKey, "Cannot update status of an unassigned task")
		}

		oldStatus = task.Status
		newStatus := req.Status

		if newStatus == model.TaskStatusUnassigned && oldStatus != model.TaskStatusArchived {
			log.Printf("Rejected transition to UNASSIGNED for task ID %d from status %s", taskID, oldStatus)
			return apperr.New(apperr.InvalidKey,
				"Task status can only be changed to UNASSIGNED from ARCHIVED status")
		}

		if newStatus == model.TaskStatusUnassigned {
			log.Printf("Removing assignee (User ID: %d) from task ID %d as status is being set to UNASSIGNED",
				*task.AssigneeID, taskID)
			task.AssigneeID = nil
			task.Assignee = nil
		}

		task.Status = newStatus
		if err := s.taskRepo.Update(txCtx, task); err != nil {
			return apperr.New(apperr.Internal, "Failed to update task status")
		}

		if _, err := s.history.RecordStatusChange(txCtx, task, oldStatus, newStatus, actorID); err != nil {
			return err
		}

		log.Printf("Updated status of task ID %d from %s to %s", taskID, oldStatus, newStatus)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(TaskEvent{
		Type:      "task_status_changed",
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		OldStatus: oldStatus,
		NewStatus: task.Status,
		ActorID:   actorID,
	})

	updated, err := s.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		return taskToResponse(task), nil
	}
	return taskToResponse(updated), nil
}

func (s *taskService) GetUnassignedTasks(ctx context.Context, projectID uint, search string, priority model.TaskPriority, page, limit int) ([]TaskResponse, int64, error) {
	tasks, total, err := s.taskRepo.ListUnassigned(ctx, projectID, search, priority, page, limit)
	if err != nil {
		return nil, 0, apperr.New(apperr.Internal, "Failed to retrieve unassigned tasks")
	}
	return tasksToResponses(tasks), total, nil
}

func (s *taskService) GetProjectTasks(ctx context.Context, projectID uint, filter TaskFilterRequest, page, limit int) ([]TaskResponse, int64, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, 0, apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
	}

	repoFilter := repository.TaskFilter{
		Search:   filter.Search,
		Status:   model.TaskStatus(filter.Status),
		Priority: model.TaskPriority(filter.Priority),
		SortBy:   filter.SortBy,
		SortDesc: filter.SortDirection == "desc",
	}

	tasks, total, err := s.taskRepo.ListByProject(ctx, projectID, repoFilter, page, limit)
	if err != nil {
		return nil, 0, apperr.New(apperr.Internal, "Failed to retrieve tasks")
	}
	return tasksToResponses(tasks), total, nil
}

// GetMyTasksInProject lists the actor's own assigned tasks; membership in
// the project is required.
func (s *taskService) GetMyTasksInProject(ctx context.Context, actorID, projectID uint) ([]TaskResponse, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
	}

	isMember, err := s.teamMemberRepo.ExistsByUserAndProject(ctx, actorID, projectID)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "")
	}
	if !isMember {
		return nil, apperr.New(apperr.Unauthorized, "You are not authorized to view tasks in this project")
	}

	tasks, err := s.taskRepo.ListByProjectAndAssignee(ctx, projectID, actorID)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve assigned tasks")
	}
	return tasksToResponses(tasks), nil
}

// GetMemberTasksInProject lists another member's tasks; the relational
// authorization gate runs first and self-view is rejected there.
func (s *taskService) GetMemberTasksInProject(ctx context.Context, actorID, projectID, userID uint) ([]TaskResponse, error) {
	ok, err := s.authz.CanViewMemberTasks(ctx, actorID, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "You are not authorized to view this member's tasks")
	}

	tasks, err := s.taskRepo.ListByProjectAndAssignee(ctx, projectID, userID)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve assigned tasks")
	}
	return tasksToResponses(tasks), nil
}

// GetMyUpcomingDueTasks lists the actor's open tasks due within 3 days
func (s *taskService) GetMyUpcomingDueTasks(ctx context.Context, actorID uint) ([]TaskResponse, error) {
	now := time.Now()
	tasks, err := s.taskRepo.ListUpcomingDue(ctx, actorID, now, now.AddDate(0, 0, 3))
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve upcoming due tasks")
	}
	return tasksToResponses(tasks), nil
}

func (s *taskService) publish(event TaskEvent) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastTaskEvent(event)
	}
}
