package repository

import (
	"context"

	"projecthub/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, roles []string, search string, page, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).
		Preload("Role.Permissions.Module").
		Preload("Role").
		First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).
		Preload("Role.Permissions.Module").
		Preload("Role").
		First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users whose role is in roles, optionally filtered by a
// case-insensitive name/email search, newest first.
func (r *userRepository) List(ctx context.Context, roles []string, search string, page, limit int) ([]model.User, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.User{}).
		Joins("JOIN roles ON roles.id = users.role_id")
	if len(roles) > 0 {
		query = query.Where("roles.name IN ?", roles)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(users.name) LIKE LOWER(?) OR LOWER(users.email) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	offset := (page - 1) * limit
	if err := query.Preload("Role").
		Order("users.name ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}
