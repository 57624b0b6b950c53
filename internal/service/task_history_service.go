package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// historyTimeFormat is the fixed timestamp layout of rendered messages.
const historyTimeFormat = "2006-01-02 15:04:05"

// TaskHistoryResponse is the display form of an audit entry. Clients show
// the rendered message, not the raw row.
type TaskHistoryResponse struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	ChangedAt time.Time `json:"changed_at"`
}

// TaskHistoryService appends immutable audit records for task status
// transitions and renders them for display, newest first.
type TaskHistoryService interface {
	RecordStatusChange(ctx context.Context, task *model.Task, oldStatus, newStatus model.TaskStatus, actorID uint) (*model.TaskHistory, error)
	RecordBulkUnassign(ctx context.Context, tasks []model.Task, newStatus model.TaskStatus, actorID uint) (int, error)
	GetTaskHistory(ctx context.Context, actorID, taskID uint) ([]TaskHistoryResponse, error)
	GetRecentHistory(ctx context.Context, limit int) ([]TaskHistoryResponse, error)
	GetRecentHistoryForMyProjects(ctx context.Context, actorID uint, limit int) ([]TaskHistoryResponse, error)
	GetMyRecentHistory(ctx context.Context, actorID uint, limit int) ([]TaskHistoryResponse, error)
}

type taskHistoryService struct {
	historyRepo repository.TaskHistoryRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	authz       AuthzService
}

func NewTaskHistoryService(
	historyRepo repository.TaskHistoryRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	authz AuthzService,
) TaskHistoryService {
	return &taskHistoryService{
		historyRepo: historyRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		authz:       authz,
	}
}

// RecordStatusChange appends exactly one audit row for a status transition
func (s *taskHistoryService) RecordStatusChange(ctx context.Context, task *model.Task, oldStatus, newStatus model.TaskStatus, actorID uint) (*model.TaskHistory, error) {
	if _, err := s.userRepo.GetByID(ctx, actorID); err != nil {
		return nil, apperr.New(apperr.UserNotFound, "")
	}

	entry := &model.TaskHistory{
		TaskID:      task.ID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedByID: actorID,
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		log.Printf("Error creating task history record for task ID %d: %v", task.ID, err)
		return nil, apperr.New(apperr.Internal, "Failed to create task history record")
	}

	log.Printf("Created task history record ID %d for task ID %d: status changed from %s to %s by user ID %d",
		entry.ID, task.ID, oldStatus, newStatus, actorID)
	return entry, nil
}

// RecordBulkUnassign writes one audit row per task being force-unassigned
// on team-member removal, each carrying the task's pre-removal status.
// The change is attributed to the acting user performing the removal.
func (s *taskHistoryService) RecordBulkUnassign(ctx context.Context, tasks []model.Task, newStatus model.TaskStatus, actorID uint) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	entries := make([]model.TaskHistory, 0, len(tasks))
	for _, task := range tasks {
		entries = append(entries, model.TaskHistory{
			TaskID:      task.ID,
			OldStatus:   task.Status,
			NewStatus:   newStatus,
			ChangedByID: actorID,
		})
	}

	if err := s.historyRepo.CreateBatch(ctx, entries); err != nil {
		log.Printf("Error creating task history records for team member removal: %v", err)
		return 0, apperr.New(apperr.Internal, "Failed to create task history records")
	}

	log.Printf("Created %d task history records for team member removal", len(entries))
	return len(entries), nil
}

// GetTaskHistory returns a task's audit trail, newest first. Developers
// may only read history of tasks currently assigned to them.
func (s *taskHistoryService) GetTaskHistory(ctx context.Context, actorID, taskID uint) ([]TaskHistoryResponse, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "Task not found")
	}

	if s.authz.HasRole(ctx, actorID, model.RoleDeveloper) {
		if task.AssigneeID == nil || *task.AssigneeID != actorID {
			return nil, apperr.New(apperr.Unauthorized, "You can only view history of tasks assigned to you")
		}
	}

	entries, err := s.historyRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve task history")
	}
	return renderAll(entries), nil
}

// GetRecentHistory returns up to limit entries; fewer exist, fewer return.
func (s *taskHistoryService) GetRecentHistory(ctx context.Context, limit int) ([]TaskHistoryResponse, error) {
	entries, err := s.historyRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve recent task history")
	}
	return renderAll(entries), nil
}

func (s *taskHistoryService) GetRecentHistoryForMyProjects(ctx context.Context, actorID uint, limit int) ([]TaskHistoryResponse, error) {
	entries, err := s.historyRepo.ListRecentForOwnedProjects(ctx, actorID, limit)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve recent task history")
	}
	return renderAll(entries), nil
}

func (s *taskHistoryService) GetMyRecentHistory(ctx context.Context, actorID uint, limit int) ([]TaskHistoryResponse, error) {
	entries, err := s.historyRepo.ListRecentByActor(ctx, actorID, limit)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve recent task history")
	}
	return renderAll(entries), nil
}

func renderAll(entries []model.TaskHistory) []TaskHistoryResponse {
	responses := make([]TaskHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, renderHistory(entry))
	}
	return responses
}

// renderHistory formats the audit entry into the message clients display.
// Completions get a dedicated phrasing.
func renderHistory(entry model.TaskHistory) TaskHistoryResponse {
	actor := entry.ChangedBy.Name
	title := entry.Task.Title
	when := entry.ChangedAt.Format(historyTimeFormat)

	var message string
	if entry.NewStatus == model.TaskStatusCompleted {
		message = fmt.Sprintf("%s has completed %s at %s", actor, title, when)
	} else {
		message = fmt.Sprintf("%s has updated %s's status from %s to %s at %s",
			actor, title, entry.OldStatus, entry.NewStatus, when)
	}

	return TaskHistoryResponse{
		ID:        entry.ID,
		Message:   message,
		ChangedAt: entry.ChangedAt,
	}
}
