// Package usecase holds the application logic of the shortener: resolving
// and redirecting short codes, creating and deleting them, and the
// analytics and admin operations built on top of the store and the cache.
package usecase

import (
	"context"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
)

type urlRepository interface {
	Create(ctx context.Context, url *entity.URL) (*entity.URL, error)
	FindByCode(ctx context.Context, shortCode string) (*entity.URL, error)
	FindByURL(ctx context.Context, originalURL string) (string, error)
	Delete(ctx context.Context, shortCode string) error
	ListPaged(ctx context.Context, page, pageSize int) (*entity.URLPage, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

type urlCache interface {
	Get(code string) (cache.Entry, bool)
	Epoch() uint64
	PutIfEpoch(code string, e cache.Entry, epoch uint64) bool
	Invalidate(code string)
	Clear()
	Stats() cache.Stats
}

type clickRecorder interface {
	RecordAsync(click entity.Click) bool
}

type rateLimiter interface {
	Allow(key string) ratelimit.Decision
	Stats() ratelimit.Stats
}

type settings struct {
	now func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type Option func(*settings)

// WithClock overrides the clock used for expiry checks and click timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}
