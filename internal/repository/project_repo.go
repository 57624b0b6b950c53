package repository

import (
	"context"

	"projecthub/internal/model"

	"gorm.io/gorm"
)

// ProjectRepository defines data access for Project entities
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uint) (*model.Project, error)
	List(ctx context.Context, createdByID uint, name string, status model.ProjectStatus, page, limit int) ([]model.Project, int64, error)
	ListForDropdown(ctx context.Context, createdByID uint) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).
		Preload("CreatedBy").
		First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects created by the given user, filtered by an optional
// name substring and status, newest first.
func (r *projectRepository) List(ctx context.Context, createdByID uint, name string, status model.ProjectStatus, page, limit int) ([]model.Project, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.Project{}).Where("created_by_id = ?", createdByID)
	if name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []model.Project
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *projectRepository) ListForDropdown(ctx context.Context, createdByID uint) ([]model.Project, error) {
	var projects []model.Project
	if err := GetDB(ctx, r.db).
		Select("id", "name").
		Where("created_by_id = ? AND status = ?", createdByID, model.ProjectStatusActive).
		Order("name ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Save(project).Error
}
