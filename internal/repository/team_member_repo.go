package repository

import (
	"context"

	"projecthub/internal/model"

	"gorm.io/gorm"
)

// TeamMemberRepository defines data access for project team membership
type TeamMemberRepository interface {
	CreateBatch(ctx context.Context, members []model.TeamMember) error
	GetByID(ctx context.Context, id uint) (*model.TeamMember, error)
	ExistsByUserAndProject(ctx context.Context, userID, projectID uint) (bool, error)
	ListByProject(ctx context.Context, projectID uint, search string, specializationID uint, page, limit int) ([]model.TeamMember, int64, error)
	Delete(ctx context.Context, member *model.TeamMember) error
	SpecializationExists(ctx context.Context, id uint) (bool, error)
}

type teamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepository{db: db}
}

func (r *teamMemberRepository) CreateBatch(ctx context.Context, members []model.TeamMember) error {
	return GetDB(ctx, r.db).Create(&members).Error
}

func (r *teamMemberRepository) GetByID(ctx context.Context, id uint) (*model.TeamMember, error) {
	var member model.TeamMember
	if err := GetDB(ctx, r.db).
		Preload("User").
		Preload("Project.CreatedBy").
		Preload("Specialization").
		First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamMemberRepository) ExistsByUserAndProject(ctx context.Context, userID, projectID uint) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.TeamMember{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *teamMemberRepository) ListByProject(ctx context.Context, projectID uint, search string, specializationID uint, page, limit int) ([]model.TeamMember, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.TeamMember{}).
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.project_id = ?", projectID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(users.name) LIKE LOWER(?) OR LOWER(users.email) LIKE LOWER(?)", like, like)
	}
	if specializationID != 0 {
		query = query.Where("team_members.specialization_id = ?", specializationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.TeamMember
	offset := (page - 1) * limit
	if err := query.
		Preload("User").
		Preload("Specialization").
		Order("team_members.added_at ASC").
		Offset(offset).Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *teamMemberRepository) Delete(ctx context.Context, member *model.TeamMember) error {
	return GetDB(ctx, r.db).Delete(member).Error
}

func (r *teamMemberRepository) SpecializationExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Specialization{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
