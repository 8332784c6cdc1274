package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/shortcode"
)

type codeGenerator interface {
	Generate() (string, error)
	Reserve(ctx context.Context, claimer shortcode.Claimer, url *entity.URL) (*entity.URL, bool, error)
	ValidateCustom(code string) error
	MaxAttempts() int
}

type ShortenInput struct {
	OriginalURL string
	CustomCode  string
	ExpiresAt   *time.Time
}

type ShortenResult struct {
	URL *entity.URL
	// Existing is set when the URL had already been shortened and its first
	// code was returned instead of a new one.
	Existing bool
}

type ShortenUseCase struct {
	urlRepo urlRepository
	cache   urlCache
	codeGen codeGenerator
	settings
}

func NewShortenUseCase(urlRepo urlRepository, cache urlCache, codeGen codeGenerator, opts ...Option) *ShortenUseCase {
	return &ShortenUseCase{
		urlRepo:  urlRepo,
		cache:    cache,
		codeGen:  codeGen,
		settings: newSettings(opts),
	}
}

func (uc *ShortenUseCase) Shorten(ctx context.Context, in ShortenInput) (*ShortenResult, error) {
	const op = "usecase.ShortenUseCase.Shorten"

	if err := uc.validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := uc.findExisting(ctx, in.OriginalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return &ShortenResult{URL: existing, Existing: true}, nil
	}

	var url *entity.URL
	if in.CustomCode != "" {
		url, err = uc.reserveCustom(ctx, in)
	} else {
		url, err = uc.reserveGenerated(ctx, in)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uc.cache.Invalidate(url.ShortCode)

	return &ShortenResult{URL: url}, nil
}

func (uc *ShortenUseCase) validate(in ShortenInput) error {
	if err := entity.ValidateOriginalURL(in.OriginalURL); err != nil {
		return err
	}

	if in.CustomCode != "" {
		if err := uc.codeGen.ValidateCustom(in.CustomCode); err != nil {
			return err
		}
	}

	if in.ExpiresAt != nil && !in.ExpiresAt.After(uc.now()) {
		return entity.NewValidationError("expires_at", "must be in the future")
	}

	return nil
}

func (uc *ShortenUseCase) findExisting(ctx context.Context, originalURL string) (*entity.URL, error) {
	shortCode, err := uc.urlRepo.FindByURL(ctx, originalURL)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to look up existing url: %w", err)
	}

	url, err := uc.urlRepo.FindByCode(ctx, shortCode)
	if err != nil {
		// Deleted since FindByURL.
		if errors.Is(err, entity.ErrURLNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load existing url: %w", err)
	}

	return url, nil
}

func (uc *ShortenUseCase) reserveCustom(ctx context.Context, in ShortenInput) (*entity.URL, error) {
	url, ok, err := uc.codeGen.Reserve(ctx, uc.urlRepo, &entity.URL{
		ShortCode:   in.CustomCode,
		OriginalURL: in.OriginalURL,
		IsCustom:    true,
		ExpiresAt:   in.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%q: %w", in.CustomCode, entity.ErrShortCodeTaken)
	}

	return url, nil
}

func (uc *ShortenUseCase) reserveGenerated(ctx context.Context, in ShortenInput) (*entity.URL, error) {
	for i := 0; i < uc.codeGen.MaxAttempts(); i++ {
		shortCode, err := uc.codeGen.Generate()
		if err != nil {
			return nil, err
		}

		url, ok, err := uc.codeGen.Reserve(ctx, uc.urlRepo, &entity.URL{
			ShortCode:   shortCode,
			OriginalURL: in.OriginalURL,
			ExpiresAt:   in.ExpiresAt,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			return url, nil
		}
	}

	return nil, entity.ErrCodeExhausted
}

// Delete removes the URL and its clicks and drops the code from the cache.
func (uc *ShortenUseCase) Delete(ctx context.Context, shortCode string) error {
	const op = "usecase.ShortenUseCase.Delete"

	err := uc.urlRepo.Delete(ctx, shortCode)
	if err == nil || errors.Is(err, entity.ErrURLNotFound) {
		uc.cache.Invalidate(shortCode)
	}
	if err != nil {
		return fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	return nil
}
