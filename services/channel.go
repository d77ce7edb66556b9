package services

import (
	"context"
	"fmt"

	"filelinkbot/database"
	"filelinkbot/utils"
)

type ChannelRepository interface {
	List(ctx context.Context) ([]database.ForceSubChannel, error)
	Upsert(ctx context.Context, channelID int64, inviteLink string) error
	Delete(ctx context.Context, channelID int64) error
}

// ChannelService manages the channels users must join before delivery.
type ChannelService struct {
	repo ChannelRepository
}

func NewChannelService(repo ChannelRepository) *ChannelService {
	return &ChannelService{repo: repo}
}

func (s *ChannelService) List(ctx context.Context) ([]database.ForceSubChannel, error) {
	return s.repo.List(ctx)
}

func (s *ChannelService) Add(ctx context.Context, channelID int64, inviteLink string) error {
	if channelID == 0 {
		return fmt.Errorf("%w: channel id is required", ErrInvalidChannel)
	}
	if !utils.ValidateInviteLink(inviteLink) {
		return fmt.Errorf("%w: invite link must look like https://t.me/...", ErrInvalidChannel)
	}
	return s.repo.Upsert(ctx, channelID, inviteLink)
}

func (s *ChannelService) Remove(ctx context.Context, channelID int64) error {
	return s.repo.Delete(ctx, channelID)
}
