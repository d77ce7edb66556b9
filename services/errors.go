package services

import (
	"errors"

	"filelinkbot/database"
)

var (
	// ErrInvalidState is returned when a batch is finalized while the admin
	// is not batching or has not sent any file yet.
	ErrInvalidState = errors.New("not batching or empty")

	// ErrBatchInProgress is returned by BeginBatch while files are still
	// pending and restarting is not allowed.
	ErrBatchInProgress = errors.New("batch already in progress")

	// ErrStoreUnavailable wraps any failure of the admin state store.
	ErrStoreUnavailable = errors.New("state store unavailable")

	ErrEmptyBatch       = errors.New("batch needs at least one file")
	ErrInvalidFileRef   = errors.New("empty file reference")
	ErrInvalidChannel   = errors.New("invalid channel")
	ErrBadCredentials   = errors.New("invalid username or password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrNotFound         = database.ErrNotFound
	ErrDuplicateBatchID = database.ErrDuplicateBatchID
)

// BackupError reports that a file could not be forwarded to the backup
// channel. Nothing was recorded for that file.
type BackupError struct {
	Err error
}

func (e *BackupError) Error() string {
	return "backup failed: " + e.Err.Error()
}

func (e *BackupError) Unwrap() error {
	return e.Err
}
