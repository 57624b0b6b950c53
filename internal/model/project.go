package model

import (
	"time"
)

// ProjectStatus enumerates project lifecycle states
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
)

// Project is owned by its creator; only the owner may mutate its
// membership and tasks.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedByID uint          `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   User          `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// Specialization labels a team member's function within a project
type Specialization struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// TeamMember links a user to a project. A user may appear at most once
// per project; removal cascades to unassigning the user's tasks there.
type TeamMember struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"not null;uniqueIndex:idx_team_members_user_project" json:"user_id"`
	User             User            `gorm:"foreignKey:UserID" json:"user"`
	ProjectID        uint            `gorm:"not null;uniqueIndex:idx_team_members_user_project" json:"project_id"`
	Project          Project         `gorm:"foreignKey:ProjectID" json:"-"`
	SpecializationID *uint           `json:"specialization_id"`
	Specialization   *Specialization `gorm:"foreignKey:SpecializationID" json:"specialization"`
	AddedAt          time.Time       `gorm:"autoCreateTime" json:"added_at"`
}
