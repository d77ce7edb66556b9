package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStateStore keeps admin ingest state in the admin_states table.
type GormStateStore struct {
	db *gorm.DB
}

func NewGormStateStore(db *gorm.DB) *GormStateStore {
	return &GormStateStore{db: db}
}

// Read returns the stored state, or the implicit normal/empty state when
// the admin has none yet.
func (s *GormStateStore) Read(ctx context.Context, adminID int64) (AdminState, error) {
	var st AdminState
	err := s.db.WithContext(ctx).Where("state_key = ?", AdminStateKey(adminID)).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewAdminState(), nil
	}
	if err != nil {
		return AdminState{}, fmt.Errorf("read admin state %d: %w", adminID, err)
	}
	if st.PendingFiles == nil {
		st.PendingFiles = []string{}
	}
	return st, nil
}

func (s *GormStateStore) Write(ctx context.Context, adminID int64, st AdminState) error {
	st.Key = AdminStateKey(adminID)
	if st.PendingFiles == nil {
		st.PendingFiles = []string{}
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "pending_files", "updated_at"}),
	}).Create(&st).Error
	if err != nil {
		return fmt.Errorf("write admin state %d: %w", adminID, err)
	}
	return nil
}
