package database

import (
	"log"

	"projecthub/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Role{},
		&model.Module{},
		&model.Permission{},
		&model.User{},
		&model.Project{},
		&model.Specialization{},
		&model.TeamMember{},
		&model.Task{},
		&model.TaskHistory{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
