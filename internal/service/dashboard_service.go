package service

import (
	"context"
	"fmt"
	"strconv"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"

	"github.com/go-redis/redis/v8"
)

// DashboardService keeps a per-package leaderboard of completed scores in a
// Redis sorted set and aggregates per-user history stats.
type DashboardService struct {
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.QuizAttemptRepository
	Redis       *redis.Client
}

func NewDashboardService(userRepo *repository.UserRepository, attemptRepo *repository.QuizAttemptRepository, rdb *redis.Client) *DashboardService {
	return &DashboardService{
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		Redis:       rdb,
	}
}

type LeaderboardEntry struct {
	UserID   uint   `json:"userId"`
	UserName string `json:"userName"`
	Score    int    `json:"score"`
}

type UserStats struct {
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	TimedOut   int64 `json:"timedOut"`
}

func leaderboardKey(packageID uint) string {
	return fmt.Sprintf("quizhub:leaderboard:package:%d", packageID)
}

// RecordScore stores the user's latest completed score for the package.
func (s *DashboardService) RecordScore(packageID, userID uint, score int) error {
	if s.Redis == nil {
		return nil
	}
	ctx := context.Background()
	return s.Redis.ZAdd(ctx, leaderboardKey(packageID), &redis.Z{
		Score:  float64(score),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
}

// GetLeaderboard returns the top completed scores for a package, best first.
func (s *DashboardService) GetLeaderboard(packageID uint, limit int) ([]LeaderboardEntry, error) {
	if s.Redis == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	ctx := context.Background()
	zs, err := s.Redis.ZRevRangeWithScores(ctx, leaderboardKey(packageID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 32)
		if err != nil {
			continue
		}
		entry := LeaderboardEntry{UserID: uint(id), Score: int(z.Score)}
		if user, err := s.UserRepo.FindByID(uint(id)); err == nil {
			entry.UserName = user.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *DashboardService) GetUserStats(userID uint) (*UserStats, error) {
	inProgress, err := s.AttemptRepo.CountByUserAndStatus(userID, model.AttemptInProgress)
	if err != nil {
		return nil, err
	}
	completed, err := s.AttemptRepo.CountByUserAndStatus(userID, model.AttemptCompleted)
	if err != nil {
		return nil, err
	}
	timedOut, err := s.AttemptRepo.CountByUserAndStatus(userID, model.AttemptTimedOut)
	if err != nil {
		return nil, err
	}
	return &UserStats{
		InProgress: inProgress,
		Completed:  completed,
		TimedOut:   timedOut,
	}, nil
}
