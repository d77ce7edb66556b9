package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BatchRepository persists batches in the batches table.
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts batch. It returns ErrDuplicateBatchID when the id is taken.
func (r *BatchRepository) Create(ctx context.Context, batch *Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Batch{}).Where("batch_id = ?", batch.BatchID).Count(&count).Error; err != nil {
			return fmt.Errorf("check batch id: %w", err)
		}
		if count > 0 {
			return ErrDuplicateBatchID
		}
		return insertBatch(tx, batch)
	})
}

// insertBatch relies on the unique index when a concurrent writer took the
// id after the count check.
func insertBatch(tx *gorm.DB, batch *Batch) error {
	err := tx.Create(batch).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateBatchID
	}
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) Get(ctx context.Context, batchID string) (*Batch, error) {
	var batch Batch
	err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", batchID, err)
	}
	return &batch, nil
}

func (r *BatchRepository) IncrementViews(ctx context.Context, batchID string) error {
	res := r.db.WithContext(ctx).Model(&Batch{}).
		Where("batch_id = ?", batchID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment views of %s: %w", batchID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored batches.
func (r *BatchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Batch{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return count, nil
}
