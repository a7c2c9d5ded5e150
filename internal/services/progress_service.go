package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linguabridge/learning-service/internal/cache"
	"github.com/linguabridge/learning-service/internal/models"
	"github.com/linguabridge/learning-service/internal/progress"
)

const (
	progressCacheTTL = 5 * time.Minute

	// DefaultRecentLimit caps the recent-activity listing.
	DefaultRecentLimit = 5
)

type progressService struct {
	engine *progress.Engine
	cache  cache.CacheService
	logger *slog.Logger
}

func NewProgressService(engine *progress.Engine, cacheService cache.CacheService, logger *slog.Logger) ProgressService {
	return &progressService{
		engine: engine,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *progressService) Snapshot(ctx context.Context, userID string) ([]*models.UnitProgress, error) {
	key := fmt.Sprintf("progress:%s:snapshot", userID)

	var cached []*models.UnitProgress
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Progress cache read failed", "user_id", userID, "error", err)
	}

	docs, err := s.engine.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, docs, progressCacheTTL); err != nil {
		s.logger.Warn("Progress cache write failed", "user_id", userID, "error", err)
	}
	return docs, nil
}

func (s *progressService) Recent(ctx context.Context, userID string, limit int) ([]models.CompletedSubtopic, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	key := fmt.Sprintf("progress:%s:recent:%d", userID, limit)

	var cached []models.CompletedSubtopic
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Progress cache read failed", "user_id", userID, "error", err)
	}

	recent, err := s.engine.RecentCompletions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, recent, progressCacheTTL); err != nil {
		s.logger.Warn("Progress cache write failed", "user_id", userID, "error", err)
	}
	return recent, nil
}

func (s *progressService) Init(ctx context.Context, userID string) error {
	if err := s.engine.EnsureInitialProgress(ctx, userID); err != nil {
		return err
	}
	if err := s.cache.DeletePattern(ctx, progressCachePattern(userID)); err != nil {
		s.logger.Warn("Failed to invalidate progress cache", "user_id", userID, "error", err)
	}
	return nil
}
