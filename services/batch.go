package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"filelinkbot/database"
	"filelinkbot/utils"
)

// mintAttempts bounds retries when a generated batch id already exists.
const mintAttempts = 5

type BatchRegistry interface {
	Create(ctx context.Context, batch *database.Batch) error
	Get(ctx context.Context, batchID string) (*database.Batch, error)
	IncrementViews(ctx context.Context, batchID string) error
}

type BatchService struct {
	registry BatchRegistry
	newID    func() string
	logger   *zap.Logger
}

func NewBatchService(registry BatchRegistry, logger *zap.Logger) *BatchService {
	return &BatchService{
		registry: registry,
		newID:    utils.NewBatchID,
		logger:   logger,
	}
}

// Mint persists files under a fresh batch id and returns the id.
func (s *BatchService) Mint(ctx context.Context, files FileSet, caption *string) (string, error) {
	if files.Len() == 0 {
		return "", ErrEmptyBatch
	}

	if caption != nil {
		c := utils.NormalizeText(*caption)
		if c == "" {
			caption = nil
		} else {
			caption = &c
		}
	}

	for attempt := 1; attempt <= mintAttempts; attempt++ {
		batch := &database.Batch{
			BatchID: s.newID(),
			FileIDs: files.Refs(),
			Caption: caption,
		}

		err := s.registry.Create(ctx, batch)
		if err == nil {
			s.logger.Info("batch minted",
				zap.String("batch_id", batch.BatchID),
				zap.Int("files", files.Len()))
			return batch.BatchID, nil
		}
		if !errors.Is(err, ErrDuplicateBatchID) {
			return "", fmt.Errorf("create batch: %w", err)
		}
		s.logger.Warn("batch id collision, retrying",
			zap.String("batch_id", batch.BatchID),
			zap.Int("attempt", attempt))
	}

	return "", fmt.Errorf("create batch: %w after %d attempts", ErrDuplicateBatchID, mintAttempts)
}

// Resolve returns the batch behind batchID or ErrNotFound.
func (s *BatchService) Resolve(ctx context.Context, batchID string) (*database.Batch, error) {
	if batchID == "" {
		return nil, ErrNotFound
	}
	batch, err := s.registry.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *BatchService) RecordView(ctx context.Context, batchID string) error {
	if err := s.registry.IncrementViews(ctx, batchID); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}
