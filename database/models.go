package database

import (
	"fmt"
	"time"
)

// IngestMode is the admin's upload mode.
type IngestMode string

const (
	ModeNormal   IngestMode = "normal"
	ModeBatching IngestMode = "batching"
)

// AdminState holds one admin's ingest mode and the files collected so far.
// PendingFiles is empty whenever Mode is ModeNormal.
type AdminState struct {
	Key          string     `gorm:"column:state_key;primaryKey;size:64" json:"-"`
	Mode         IngestMode `gorm:"size:16;not null;default:normal" json:"mode"`
	PendingFiles []string   `gorm:"serializer:json;type:text" json:"pending_files"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewAdminState returns the implicit state of an admin that never uploaded.
func NewAdminState() AdminState {
	return AdminState{Mode: ModeNormal, PendingFiles: []string{}}
}

// Batch is a named, ordered group of telegram file ids behind one deep link.
type Batch struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	BatchID   string    `gorm:"uniqueIndex;size:32;not null" json:"batch_id"`
	FileIDs   []string  `gorm:"serializer:json;type:text;not null" json:"file_ids"`
	Caption   *string   `gorm:"type:text" json:"caption,omitempty"`
	Views     int64     `gorm:"default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
}

// ForceSubChannel is a channel users must join before files are delivered.
type ForceSubChannel struct {
	ChannelID  int64     `gorm:"primaryKey;autoIncrement:false" json:"channel_id"`
	InviteLink string    `gorm:"not null" json:"invite_link"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// User is anyone who pressed /start.
type User struct {
	TelegramID int64     `gorm:"primaryKey;autoIncrement:false" json:"telegram_id"`
	FirstName  string    `json:"first_name"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AdminState) TableName() string {
	return "admin_states"
}

func (Batch) TableName() string {
	return "batches"
}

func (ForceSubChannel) TableName() string {
	return "force_sub_channels"
}

func (User) TableName() string {
	return "users"
}

// AdminStateKey is the document key of an admin's ingest state.
func AdminStateKey(adminID int64) string {
	return fmt.Sprintf("admin_state_%d", adminID)
}
