package services

import (
	"context"
	"fmt"
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Stats struct {
	Users   int64 `json:"users"`
	Batches int64 `json:"batches"`
}

// StatsService aggregates counters for the admin panel.
type StatsService struct {
	users   Counter
	batches Counter
}

func NewStatsService(users, batches Counter) *StatsService {
	return &StatsService{users: users, batches: batches}
}

func (s *StatsService) Get(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	batches, err := s.batches.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count batches: %w", err)
	}
	return Stats{Users: users, Batches: batches}, nil
}
