package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var adminStateBucket = []byte("admin_state")

// BoltStateStore keeps admin ingest state as JSON documents in a bbolt file.
type BoltStateStore struct {
	db *bolt.DB
}

func OpenBoltStateStore(path string) (*BoltStateStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(adminStateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStateStore{db: db}, nil
}

func (s *BoltStateStore) Read(ctx context.Context, adminID int64) (AdminState, error) {
	if err := ctx.Err(); err != nil {
		return AdminState{}, err
	}

	st := NewAdminState()
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(adminStateBucket).Get([]byte(AdminStateKey(adminID)))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &st)
	})
	if err != nil {
		return AdminState{}, fmt.Errorf("read admin state %d: %w", adminID, err)
	}
	if st.PendingFiles == nil {
		st.PendingFiles = []string{}
	}
	st.Key = AdminStateKey(adminID)
	return st, nil
}

func (s *BoltStateStore) Write(ctx context.Context, adminID int64, st AdminState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if st.PendingFiles == nil {
		st.PendingFiles = []string{}
	}
	st.UpdatedAt = time.Now()
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode admin state: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(adminStateBucket).Put([]byte(AdminStateKey(adminID)), raw)
	})
	if err != nil {
		return fmt.Errorf("write admin state %d: %w", adminID, err)
	}
	return nil
}

func (s *BoltStateStore) Close() error {
	return s.db.Close()
}
