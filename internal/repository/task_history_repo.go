package repository

import (
	"context"

	"projecthub/internal/model"

	"gorm.io/gorm"
)

// TaskHistoryRepository defines append-and-read access to the audit trail.
// There is deliberately no update or delete: history rows are immutable.
type TaskHistoryRepository interface {
	Create(ctx context.Context, entry *model.TaskHistory) error
	CreateBatch(ctx context.Context, entries []model.TaskHistory) error
	ListByTask(ctx context.Context, taskID uint) ([]model.TaskHistory, error)
	ListRecent(ctx context.Context, limit int) ([]model.TaskHistory, error)
	ListRecentForOwnedProjects(ctx context.Context, ownerID uint, limit int) ([]model.TaskHistory, error)
	ListRecentByActor(ctx context.Context, actorID uint, limit int) ([]model.TaskHistory, error)
}

type taskHistoryRepository struct {
	db *gorm.DB
}

func NewTaskHistoryRepository(db *gorm.DB) TaskHistoryRepository {
	return &taskHistoryRepository{db: db}
}

func (r *taskHistoryRepository) Create(ctx context.Context, entry *model.TaskHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *taskHistoryRepository) CreateBatch(ctx context.Context, entries []model.TaskHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&entries).Error
}

func (r *taskHistoryRepository) ListByTask(ctx context.Context, taskID uint) ([]model.TaskHistory, error) {
	var entries []model.TaskHistory
	if err := GetDB(ctx, r.db).
		Preload("Task").
		Preload("ChangedBy").
		Where("task_id = ?", taskID).
		Order("changed_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *taskHistoryRepository) ListRecent(ctx context.Context, limit int) ([]model.TaskHistory, error) {
	var entries []model.TaskHistory
	if err := GetDB(ctx, r.db).
		Preload("Task").
		Preload("ChangedBy").
		Order("changed_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *taskHistoryRepository) ListRecentForOwnedProjects(ctx context.Context, ownerID uint, limit int) ([]model.TaskHistory, error) {
	var entries []model.TaskHistory
	if err := GetDB(ctx, r.db).
		Joins("JOIN tasks ON tasks.id = task_histories.task_id").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.created_by_id = ?", ownerID).
		Preload("Task").
		Preload("ChangedBy").
		Order("task_histories.changed_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *taskHistoryRepository) ListRecentByActor(ctx context.Context, actorID uint, limit int) ([]model.TaskHistory, error) {
	var entries []model.TaskHistory
	if err := GetDB(ctx, r.db).
		Preload("Task").
		Preload("ChangedBy").
		Where("changed_by_id = ?", actorID).
		Order("changed_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
