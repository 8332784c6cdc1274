package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type StatsUseCase struct {
	urlRepo urlRepository
	cache   urlCache
	limiter rateLimiter
	settings
}

func NewStatsUseCase(urlRepo urlRepository, cache urlCache, limiter rateLimiter, opts ...Option) *StatsUseCase {
	return &StatsUseCase{
		urlRepo:  urlRepo,
		cache:    cache,
		limiter:  limiter,
		settings: newSettings(opts),
	}
}

func (uc *StatsUseCase) Analytics(ctx context.Context, shortCode string) (*entity.URLStats, error) {
	const op = "usecase.StatsUseCase.Analytics"

	url, err := uc.urlRepo.FindByCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find url: %w", op, err)
	}

	return &entity.URLStats{
		ShortCode:  url.ShortCode,
		ClickCount: url.ClickCount,
		LastClick:  url.LastAccessedAt,
	}, nil
}

// AnalyticsPage lists URLs by click count. page starts at 1 and limit must
// be between 1 and MaxPageSize.
func (uc *StatsUseCase) AnalyticsPage(ctx context.Context, page, limit int) (*entity.URLPage, error) {
	const op = "usecase.StatsUseCase.AnalyticsPage"

	if page < 1 {
		return nil, fmt.Errorf("%s: %w", op, entity.NewValidationError("page", "must be at least 1"))
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, fmt.Errorf("%s: %w", op,
			entity.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxPageSize)))
	}

	p, err := uc.urlRepo.ListPaged(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return p, nil
}

func (uc *StatsUseCase) CacheStats() cache.Stats {
	return uc.cache.Stats()
}

func (uc *StatsUseCase) ClearCache() {
	uc.cache.Clear()
}

// CheckRate counts a request for key against the rate limit.
func (uc *StatsUseCase) CheckRate(key string) ratelimit.Decision {
	return uc.limiter.Allow(key)
}

func (uc *StatsUseCase) RateLimitStats() ratelimit.Stats {
	return uc.limiter.Stats()
}

// CleanupExpired physically deletes expired URLs and evicts their codes from
// the cache. It returns the number of deleted URLs.
func (uc *StatsUseCase) CleanupExpired(ctx context.Context) (int, error) {
	const op = "usecase.StatsUseCase.CleanupExpired"

	codes, err := uc.urlRepo.DeleteExpired(ctx, uc.now())
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete expired urls: %w", op, err)
	}

	for _, code := range codes {
		uc.cache.Invalidate(code)
	}

	return len(codes), nil
}
