package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxForceSubChannels bounds how many channels a membership check consults.
const MaxForceSubChannels = 20

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// List returns up to MaxForceSubChannels channels in insertion order.
func (r *ChannelRepository) List(ctx context.Context) ([]ForceSubChannel, error) {
	var channels []ForceSubChannel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(MaxForceSubChannels).
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// Upsert adds the channel or replaces its invite link.
func (r *ChannelRepository) Upsert(ctx context.Context, channelID int64, inviteLink string) error {
	ch := ForceSubChannel{ChannelID: channelID, InviteLink: inviteLink}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"invite_link", "updated_at"}),
	}).Create(&ch).Error
	if err != nil {
		return fmt.Errorf("upsert channel %d: %w", channelID, err)
	}
	return nil
}

// Delete removes the channel. It returns ErrNotFound if it was not stored.
func (r *ChannelRepository) Delete(ctx context.Context, channelID int64) error {
	res := r.db.WithContext(ctx).Delete(&ForceSubChannel{}, "channel_id = ?", channelID)
	if res.Error != nil {
		return fmt.Errorf("delete channel %d: %w", channelID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
