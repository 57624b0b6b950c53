package model

import (
	"time"
)

// TaskHistory is an immutable, append-only audit record of a task status
// transition. Rows are only ever created, never updated or deleted.
type TaskHistory struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      uint       `gorm:"not null;index" json:"task_id"`
	Task        Task       `gorm:"foreignKey:TaskID" json:"-"`
	OldStatus   TaskStatus `gorm:"type:varchar(20)" json:"old_status"`
	NewStatus   TaskStatus `gorm:"type:varchar(20)" json:"new_status"`
	ChangedByID uint       `gorm:"not null" json:"changed_by_id"`
	ChangedBy   User       `gorm:"foreignKey:ChangedByID" json:"-"`
	ChangedAt   time.Time  `gorm:"autoCreateTime;index" json:"changed_at"`
}
