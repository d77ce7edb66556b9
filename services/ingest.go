package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"filelinkbot/database"
)

// DefaultBatchCaption is used when a batch is finalized without a caption.
const DefaultBatchCaption = "Batch Collection"

// StateStore is durable per-admin storage of the ingest state. Read must
// return the implicit normal/empty state for an unknown admin and must
// observe every earlier Write for the same admin.
type StateStore interface {
	Read(ctx context.Context, adminID int64) (database.AdminState, error)
	Write(ctx context.Context, adminID int64, st database.AdminState) error
}

// Backup forwards an uploaded file to the backup channel.
type Backup interface {
	Forward(ctx context.Context, file SubmittedFile) (BackupReceipt, error)
}

// Minter creates a batch from a non-empty file set.
type Minter interface {
	Mint(ctx context.Context, files FileSet, caption *string) (string, error)
}

// SubmittedFile is a file the admin just sent to the bot.
type SubmittedFile struct {
	ChatID    int64
	MessageID int
	FileID    string
	Caption   string
}

// BackupReceipt proves that a file reached the backup channel.
type BackupReceipt struct {
	FileID          string
	Caption         string
	BackupMessageID int
}

// ReceiveResult tells the admin what happened to an uploaded file. In
// batching mode Pending holds the new batch size; in normal mode BatchID
// names the single-file batch that was created.
type ReceiveResult struct {
	Mode    database.IngestMode
	Pending int
	BatchID string
}

type FinalizeResult struct {
	BatchID string
	Files   int
}

type IngestOptions struct {
	// RestartAllowed lets BeginBatch discard files of an unfinished batch
	// instead of failing with ErrBatchInProgress.
	RestartAllowed bool
}

// IngestService is the admin upload state machine. Every transition is a
// read-modify-write against the StateStore; nothing is cached in memory.
type IngestService struct {
	store  StateStore
	backup Backup
	minter Minter
	opts   IngestOptions
	locks  keyedMutex
	logger *zap.Logger
}

func NewIngestService(store StateStore, backup Backup, minter Minter, opts IngestOptions, logger *zap.Logger) *IngestService {
	return &IngestService{
		store:  store,
		backup: backup,
		minter: minter,
		opts:   opts,
		locks:  keyedMutex{locks: make(map[int64]*sync.Mutex)},
		logger: logger.With(zap.String("component", "ingest")),
	}
}

// Submit forwards file to the backup channel and, only if that succeeded,
// feeds it to ReceiveFile. A failed forward returns *BackupError and leaves
// the admin state untouched.
func (s *IngestService) Submit(ctx context.Context, adminID int64, file SubmittedFile) (ReceiveResult, error) {
	if file.FileID == "" {
		return ReceiveResult{}, ErrInvalidFileRef
	}

	receipt, err := s.backup.Forward(ctx, file)
	if err != nil {
		s.logger.Warn("backup forward failed",
			zap.Int64("admin_id", adminID),
			zap.Int("message_id", file.MessageID),
			zap.Error(err))
		return ReceiveResult{}, &BackupError{Err: err}
	}

	return s.ReceiveFile(ctx, adminID, receipt)
}

// ReceiveFile records a backed-up file. While batching it is appended to the
// pending files; otherwise a single-file batch is minted right away and the
// state is left as it is.
func (s *IngestService) ReceiveFile(ctx context.Context, adminID int64, receipt BackupReceipt) (ReceiveResult, error) {
	files, err := NewFileSet(receipt.FileID)
	if err != nil {
		return ReceiveResult{}, err
	}

	unlock := s.locks.lock(adminID)
	defer unlock()

	st, err := s.read(ctx, adminID)
	if err != nil {
		return ReceiveResult{}, err
	}

	if st.Mode == database.ModeBatching {
		st.PendingFiles = append(st.PendingFiles, receipt.FileID)
		if err := s.write(ctx, adminID, st); err != nil {
			return ReceiveResult{}, err
		}
		s.logger.Debug("file added to batch",
			zap.Int64("admin_id", adminID),
			zap.Int("pending", len(st.PendingFiles)))
		return ReceiveResult{Mode: database.ModeBatching, Pending: len(st.PendingFiles)}, nil
	}

	var caption *string
	if receipt.Caption != "" {
		c := receipt.Caption
		caption = &c
	}
	batchID, err := s.minter.Mint(ctx, files, caption)
	if err != nil {
		return ReceiveResult{}, err
	}
	return ReceiveResult{Mode: database.ModeNormal, BatchID: batchID}, nil
}

// BeginBatch switches the admin to batching mode with no pending files. If
// a batch is already being collected it fails with ErrBatchInProgress, or
// restarts it when RestartAllowed is set; discarded reports how many pending
// files were dropped by such a restart.
func (s *IngestService) BeginBatch(ctx context.Context, adminID int64) (discarded int, err error) {
	unlock := s.locks.lock(adminID)
	defer unlock()

	st, err := s.read(ctx, adminID)
	if err != nil {
		return 0, err
	}

	if st.Mode == database.ModeBatching && len(st.PendingFiles) > 0 {
		if !s.opts.RestartAllowed {
			return 0, fmt.Errorf("%w: %d files pending", ErrBatchInProgress, len(st.PendingFiles))
		}
		discarded = len(st.PendingFiles)
		s.logger.Warn("batch restarted, pending files dropped",
			zap.Int64("admin_id", adminID),
			zap.Int("discarded", discarded))
	}

	next := database.AdminState{Mode: database.ModeBatching, PendingFiles: []string{}}
	if err := s.write(ctx, adminID, next); err != nil {
		return 0, err
	}
	return discarded, nil
}

// FinalizeBatch mints the pending files as one batch, in the order they were
// received, and resets the admin to normal mode. An empty caption falls back
// to DefaultBatchCaption.
func (s *IngestService) FinalizeBatch(ctx context.Context, adminID int64, caption string) (FinalizeResult, error) {
	unlock := s.locks.lock(adminID)
	defer unlock()

	st, err := s.read(ctx, adminID)
	if err != nil {
		return FinalizeResult{}, err
	}

	if st.Mode != database.ModeBatching || len(st.PendingFiles) == 0 {
		return FinalizeResult{}, ErrInvalidState
	}

	files, err := NewFileSet(st.PendingFiles...)
	if err != nil {
		return FinalizeResult{}, err
	}

	if caption == "" {
		caption = DefaultBatchCaption
	}
	batchID, err := s.minter.Mint(ctx, files, &caption)
	if err != nil {
		return FinalizeResult{}, err
	}

	if err := s.write(ctx, adminID, database.NewAdminState()); err != nil {
		s.logger.Error("batch minted but state not reset",
			zap.Int64("admin_id", adminID),
			zap.String("batch_id", batchID),
			zap.Error(err))
		return FinalizeResult{}, err
	}

	return FinalizeResult{BatchID: batchID, Files: files.Len()}, nil
}

// CancelBatch drops the pending files and returns to normal mode. Calling it
// outside batching mode is a no-op reported through cancelled=false.
func (s *IngestService) CancelBatch(ctx context.Context, adminID int64) (discarded int, cancelled bool, err error) {
	unlock := s.locks.lock(adminID)
	defer unlock()

	st, err := s.read(ctx, adminID)
	if err != nil {
		return 0, false, err
	}

	if st.Mode != database.ModeBatching {
		return 0, false, nil
	}

	if err := s.write(ctx, adminID, database.NewAdminState()); err != nil {
		return 0, false, err
	}
	return len(st.PendingFiles), true, nil
}

// Status returns the admin's current state without changing it.
func (s *IngestService) Status(ctx context.Context, adminID int64) (database.AdminState, error) {
	return s.read(ctx, adminID)
}

func (s *IngestService) read(ctx context.Context, adminID int64) (database.AdminState, error) {
	st, err := s.store.Read(ctx, adminID)
	if err != nil {
		return database.AdminState{}, storeError(err)
	}
	if st.Mode == "" {
		st.Mode = database.ModeNormal
	}
	// normal mode never carries pending files
	if st.Mode == database.ModeNormal {
		st.PendingFiles = []string{}
	}
	return st, nil
}

func (s *IngestService) write(ctx context.Context, adminID int64, st database.AdminState) error {
	if err := s.store.Write(ctx, adminID, st); err != nil {
		return storeError(err)
	}
	return nil
}

func storeError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// keyedMutex serialises state transitions per admin id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
