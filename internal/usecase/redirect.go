package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// AccessMeta describes the client that followed a short link.
type AccessMeta struct {
	UserAgent string
	IPAddress string
	Referrer  string
}

type RedirectUseCase struct {
	urlRepo  urlRepository
	cache    urlCache
	recorder clickRecorder
	settings
}

func NewRedirectUseCase(urlRepo urlRepository, cache urlCache, recorder clickRecorder, opts ...Option) *RedirectUseCase {
	return &RedirectUseCase{
		urlRepo:  urlRepo,
		cache:    cache,
		recorder: recorder,
		settings: newSettings(opts),
	}
}

// Resolve looks the code up in the cache and falls back to the store on a
// miss. Expiry is checked on every call, cached or not. A URL served from
// the cache carries only its code, original URL and expiry.
func (uc *RedirectUseCase) Resolve(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.RedirectUseCase.Resolve"

	now := uc.now()

	if e, ok := uc.cache.Get(shortCode); ok {
		if e.Absent {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		url := &entity.URL{
			ShortCode:   shortCode,
			OriginalURL: e.OriginalURL,
			ExpiresAt:   e.ExpiresAt,
		}
		if url.Expired(now) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLExpired)
		}

		return url, nil
	}

	epoch := uc.cache.Epoch()

	url, err := uc.urlRepo.FindByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			uc.cache.PutIfEpoch(shortCode, cache.Tombstone, epoch)
		}

		return nil, fmt.Errorf("%s: failed to find url: %w", op, err)
	}

	uc.cache.PutIfEpoch(shortCode, cache.Entry{
		OriginalURL: url.OriginalURL,
		ExpiresAt:   url.ExpiresAt,
	}, epoch)

	if url.Expired(now) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLExpired)
	}

	return url, nil
}

// RecordAccess hands the click to the recorder without waiting for it to be
// stored. It reports false when the click was dropped.
func (uc *RedirectUseCase) RecordAccess(shortCode string, meta AccessMeta) bool {
	return uc.recorder.RecordAsync(entity.Click{
		ShortCode: shortCode,
		ClickedAt: uc.now(),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		Referrer:  meta.Referrer,
	})
}

// Redirect resolves the code and records the access. It returns the URL to
// redirect to.
func (uc *RedirectUseCase) Redirect(ctx context.Context, shortCode string, meta AccessMeta) (string, error) {
	const op = "usecase.RedirectUseCase.Redirect"

	url, err := uc.Resolve(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uc.RecordAccess(shortCode, meta)

	return url.OriginalURL, nil
}
