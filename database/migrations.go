package database

import (
	"fmt"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	models := []any{
		&User{},
		&Batch{},
		&ForceSubChannel{},
		&AdminState{},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrate %T: %w", m, err)
		}
	}

	return nil
}
