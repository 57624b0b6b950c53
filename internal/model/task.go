package model

import (
	"time"
)

// TaskStatus enumerates the task state machine's states
type TaskStatus string

const (
	TaskStatusUnassigned TaskStatus = "UNASSIGNED"
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusArchived   TaskStatus = "ARCHIVED"
)

// IsValid reports whether s is a known task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusUnassigned, TaskStatusTodo, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusArchived:
		return true
	}
	return false
}

// TaskPriority enumerates task priorities
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// IsValid reports whether p is a known task priority
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task belongs to a project; its title is unique within the project.
// Invariant held at every mutation path: AssigneeID is nil iff
// Status == UNASSIGNED.
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_tasks_project_title" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'UNASSIGNED'" json:"status"`
	StartDate   *time.Time   `json:"start_date"`
	DueDate     *time.Time   `json:"due_date"`
	ProjectID   uint         `gorm:"not null;uniqueIndex:idx_tasks_project_title;index" json:"project_id"`
	Project     Project      `gorm:"foreignKey:ProjectID" json:"-"`
	AssigneeID  *uint        `gorm:"index" json:"assignee_id"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee"`
	CreatedByID uint         `gorm:"not null" json:"created_by_id"`
	CreatedBy   User         `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
