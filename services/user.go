package services

import (
	"context"
	"time"

	"filelinkbot/utils"
)

type UserRepository interface {
	Touch(ctx context.Context, telegramID int64, firstName string, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// Touch records that the user talked to the bot.
func (s *UserService) Touch(ctx context.Context, telegramID int64, firstName string) error {
	return s.repo.Touch(ctx, telegramID, utils.NormalizeText(firstName), s.now())
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
