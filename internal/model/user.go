package model

import (
	"time"
)

// Role names seeded at startup.
const (
	RoleAdmin          = "ADMIN"
	RoleProjectManager = "PROJECT_MANAGER"
	RoleDeveloper      = "DEVELOPER"
)

// Module names used for permission scoping.
const (
	ModuleProject     = "PROJECT"
	ModuleTask        = "TASK"
	ModuleTeamMember  = "TEAM_MEMBER"
	ModuleTaskHistory = "TASK_HISTORY"
	ModuleUser        = "USER"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	RoleID    uint      `gorm:"not null;index" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID" json:"role"`
	Verified  bool      `gorm:"default:false" json:"verified"` // Set after OTP email verification
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Role represents a user role owning a set of module permissions
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Module is a named resource category (e.g. "TASK") permissions attach to
type Module struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// Permission holds the CRUD flags a role has on a module.
// At most one row may exist per (role, module) pair.
type Permission struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RoleID    uint   `gorm:"not null;uniqueIndex:idx_permissions_role_module" json:"role_id"`
	ModuleID  uint   `gorm:"not null;uniqueIndex:idx_permissions_role_module" json:"module_id"`
	Module    Module `gorm:"foreignKey:ModuleID" json:"module"`
	CanView   bool   `gorm:"not null;default:false" json:"can_view"`
	CanCreate bool   `gorm:"not null;default:false" json:"can_create"`
	CanUpdate bool   `gorm:"not null;default:false" json:"can_update"`
	CanDelete bool   `gorm:"not null;default:false" json:"can_delete"`
}
