package repository

import (
	"context"
	"time"

	"projecthub/internal/model"

	"gorm.io/gorm"
)

// TaskFilter narrows task listings; zero values mean "no filter".
type TaskFilter struct {
	Search   string
	Status   model.TaskStatus
	Priority model.TaskPriority
	SortBy   string
	SortDesc bool
}

// TaskRepository defines data access for Task entities
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	ExistsByTitleAndProject(ctx context.Context, title string, projectID uint) (bool, error)
	ExistsOwnedTask(ctx context.Context, taskID, projectID, ownerID uint) (bool, error)
	ExistsAssignedTask(ctx context.Context, taskID, projectID, assigneeID uint) (bool, error)
	ListByProject(ctx context.Context, projectID uint, filter TaskFilter, page, limit int) ([]model.Task, int64, error)
	ListUnassigned(ctx context.Context, projectID uint, search string, priority model.TaskPriority, page, limit int) ([]model.Task, int64, error)
	ListByProjectAndAssignee(ctx context.Context, projectID, assigneeID uint) ([]model.Task, error)
	ListUpcomingDue(ctx context.Context, assigneeID uint, from, to time.Time) ([]model.Task, error)
	UnassignAllForMember(ctx context.Context, assigneeID, projectID uint) (int64, error)
	CountOpenByAssigneeAndProject(ctx context.Context, assigneeID, projectID uint) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).
		Preload("Project.CreatedBy").
		Preload("Assignee").
		First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}

func (r *taskRepository) ExistsByTitleAndProject(ctx context.Context, title string, projectID uint) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Task{}).
		Where("title = ? AND project_id = ?", title, projectID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsOwnedTask reports whether the task lives in the given project and
// that project was created by ownerID.
func (r *taskRepository) ExistsOwnedTask(ctx context.Context, taskID, projectID, ownerID uint) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.id = ? AND tasks.project_id = ? AND projects.created_by_id = ?", taskID, projectID, ownerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taskRepository) ExistsAssignedTask(ctx context.Context, taskID, projectID, assigneeID uint) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Task{}).
		Where("id = ? AND project_id = ? AND assignee_id = ?", taskID, projectID, assigneeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID uint, filter TaskFilter, page, limit int) ([]model.Task, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.Task{}).Where("project_id = ?", projectID)
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := sortColumn(filter.SortBy)
	if filter.SortDesc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	var tasks []model.Task
	offset := (page - 1) * limit
	if err := query.Preload("Assignee").
		Order(order).
		Offset(offset).Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// sortColumn whitelists sortable columns so user input never reaches the
// ORDER BY clause directly.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "title":
		return "title"
	case "priority":
		return "priority"
	case "status":
		return "status"
	case "start_date":
		return "start_date"
	case "created_at":
		return "created_at"
	default:
		return "due_date"
	}
}

func (r *taskRepository) ListUnassigned(ctx context.Context, projectID uint, search string, priority model.TaskPriority, page, limit int) ([]model.Task, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.Task{}).
		Where("project_id = ? AND status = ?", projectID, model.TaskStatusUnassigned)
	if search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}
	if priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	offset := (page - 1) * limit
	if err := query.Order("due_date ASC").Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) ListByProjectAndAssignee(ctx context.Context, projectID, assigneeID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Where("project_id = ? AND assignee_id = ?", projectID, assigneeID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListUpcomingDue(ctx context.Context, assigneeID uint, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := GetDB(ctx, r.db).
		Where("assignee_id = ? AND due_date >= ? AND due_date <= ?", assigneeID, from, to).
		Where("status NOT IN ?", []model.TaskStatus{model.TaskStatusCompleted, model.TaskStatusArchived}).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UnassignAllForMember clears the assignee and forces UNASSIGNED on every
// task the user holds in the project. Returns the number of affected rows.
func (r *taskRepository) UnassignAllForMember(ctx context.Context, assigneeID, projectID uint) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Task{}).
		Where("assignee_id = ? AND project_id = ?", assigneeID, projectID).
		Updates(map[string]any{
			"assignee_id": nil,
			"status":      model.TaskStatusUnassigned,
		})
	return res.RowsAffected, res.Error
}

func (r *taskRepository) CountOpenByAssigneeAndProject(ctx context.Context, assigneeID, projectID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Task{}).
		Where("assignee_id = ? AND project_id = ?", assigneeID, projectID).
		Where("status NOT IN ?", []model.TaskStatus{model.TaskStatusCompleted, model.TaskStatusArchived}).
		Count(&count).Error
	return count, err
}
